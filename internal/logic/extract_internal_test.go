package logic

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDestination(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("out", "dir")

	got, err := destination(dir, "a/b/c.txt")
	if err != nil {
		t.Fatalf("destination() error: %v", err)
	}

	if want := filepath.Join(dir, "a", "b", "c.txt"); got != want {
		t.Errorf("destination() = %q, want %q", got, want)
	}

	for _, name := range []string{"../escape.txt", "a/../../escape.txt", ".."} {
		if _, err := destination(dir, name); !errors.Is(err, ErrUnsafePath) {
			t.Errorf("destination(%q) error = %v, want %v", name, err, ErrUnsafePath)
		}
	}
}
