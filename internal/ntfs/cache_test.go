package ntfs

import "testing"

func TestMFTCacheGetPut(t *testing.T) {
	c := newMFTCache(2)

	if _, ok := c.get(1); ok {
		t.Fatal("expected miss on empty cache")
	}

	r1 := &MFTRecord{Index: 1}
	c.put(1, r1)

	got, ok := c.get(1)
	if !ok || got != r1 {
		t.Fatalf("expected hit returning same pointer, got %+v ok=%v", got, ok)
	}
}

func TestMFTCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newMFTCache(2)

	c.put(1, &MFTRecord{Index: 1})
	c.put(2, &MFTRecord{Index: 2})
	c.get(1) // touch 1, making 2 the least recently used
	c.put(3, &MFTRecord{Index: 3})

	if _, ok := c.get(2); ok {
		t.Error("expected record 2 to be evicted")
	}
	if _, ok := c.get(1); !ok {
		t.Error("expected record 1 to survive eviction")
	}
	if _, ok := c.get(3); !ok {
		t.Error("expected record 3 to be present")
	}
	if c.len() != 2 {
		t.Errorf("expected cache length 2, got %d", c.len())
	}
}

func TestMFTCacheWriteOnceDoesNotOverwrite(t *testing.T) {
	c := newMFTCache(4)
	first := &MFTRecord{Index: 1}
	second := &MFTRecord{Index: 1}

	c.put(1, first)
	c.put(1, second)

	got, ok := c.get(1)
	if !ok || got != first {
		t.Errorf("expected first-written record to remain cached, got %+v", got)
	}
}

func TestMFTCacheDefaultsCapacity(t *testing.T) {
	c := newMFTCache(0)
	if c.capacity != defaultCacheCapacity {
		t.Errorf("expected default capacity %d, got %d", defaultCacheCapacity, c.capacity)
	}
}
