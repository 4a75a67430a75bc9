package ntfs

import (
	"reflect"
	"testing"
)

func TestParseDataRunsSingleRun(t *testing.T) {
	// header 0x31: length field 1 byte, offset field 3 bytes.
	buf := []byte{0x31, 0x10, 0x00, 0x10, 0x00, 0x00}
	runs, err := parseDataRuns(buf)
	if err != nil {
		t.Fatalf("parseDataRuns: %v", err)
	}
	want := []DataRun{{LCN: 0x001000, Length: 0x10}}
	if !reflect.DeepEqual(runs, want) {
		t.Errorf("got %+v, want %+v", runs, want)
	}
}

func TestParseDataRunsCumulativeOffset(t *testing.T) {
	buf := []byte{
		0x31, 0x10, 0x00, 0x10, 0x00, // run 1: length 0x10, LCN +0x1000 -> 0x1000
		0x31, 0x08, 0xF6, 0xFF, 0xFF, // run 2: length 0x08, LCN -10 -> 0xFF6
	}
	runs, err := parseDataRuns(buf)
	if err != nil {
		t.Fatalf("parseDataRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].LCN != 0x1000 {
		t.Errorf("run 0 LCN = %d, want %d", runs[0].LCN, 0x1000)
	}
	if runs[1].LCN != 0x1000-10 {
		t.Errorf("run 1 LCN = %d, want %d", runs[1].LCN, 0x1000-10)
	}
}

func TestParseDataRunsSparse(t *testing.T) {
	// header 0x01: length field 1 byte, offset field 0 bytes (sparse).
	buf := []byte{0x01, 0x05, 0x00}
	runs, err := parseDataRuns(buf)
	if err != nil {
		t.Fatalf("parseDataRuns: %v", err)
	}
	want := []DataRun{{LCN: -1, Length: 0x05}}
	if !reflect.DeepEqual(runs, want) {
		t.Errorf("got %+v, want %+v", runs, want)
	}
}

func TestParseDataRunsStopsAtZeroHeader(t *testing.T) {
	buf := []byte{0x00, 0xFF, 0xFF, 0xFF}
	runs, err := parseDataRuns(buf)
	if err != nil {
		t.Fatalf("parseDataRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %+v", runs)
	}
}

func TestParseDataRunsRejectsZeroLength(t *testing.T) {
	buf := []byte{0x31, 0x00, 0x00, 0x00, 0x10}
	if _, err := parseDataRuns(buf); err == nil {
		t.Fatal("expected error for zero-length run")
	}
}

func TestParseDataRunsRejectsTruncatedLengthField(t *testing.T) {
	buf := []byte{0x32} // claims a 2-byte length field but nothing follows
	if _, err := parseDataRuns(buf); err == nil {
		t.Fatal("expected error for truncated length field")
	}
}

func TestDecodeSignedSignExtension(t *testing.T) {
	cases := []struct {
		in   []byte
		want int64
	}{
		{[]byte{0x10}, 0x10},
		{[]byte{0xF6}, -10},
		{[]byte{0x00, 0x10}, 0x1000},
		{[]byte{0xF6, 0xFF}, -10},
	}
	for _, c := range cases {
		got := decodeSigned(c.in)
		if got != c.want {
			t.Errorf("decodeSigned(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}
