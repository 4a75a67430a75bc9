package ntfs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessageFormatting(t *testing.T) {
	err := newError(NotFound, "path %q not found", "/foo")
	want := "ntfs: NotFound: path \"/foo\" not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapErrorIncludesCause(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := wrapError(IoError, cause, "read failed")
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return the wrapped cause")
	}
}

func TestErrorIsMatchesByKind(t *testing.T) {
	sentinel := &Error{Kind: NotFound}
	err := wrapError(NotFound, fmt.Errorf("boom"), "lookup failed")

	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to match by Kind")
	}

	other := &Error{Kind: CorruptVolume}
	if errors.Is(err, other) {
		t.Error("did not expect errors.Is to match a different Kind")
	}
}
