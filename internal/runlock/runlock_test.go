package runlock_test

import (
	"errors"
	"path/filepath"
	"testing"

	"navidromefm/internal/runlock"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "test.lock")

	lock, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	// Reacquire after release succeeds.
	lock, err = runlock.Acquire(path)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}
}

func TestAcquireHeldLockFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	lock, err := runlock.Acquire(path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer lock.Release()

	if _, err := runlock.Acquire(path); !errors.Is(err, runlock.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestReleaseNil(t *testing.T) {
	var lock *runlock.Lock
	if err := lock.Release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}
