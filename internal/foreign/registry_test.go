package foreign

import (
	"errors"
	"testing"

	"github.com/danmuck/mlbridge/internal/testutil/testlog"
)

func nilFactory(Options) Runtime { return nil }

func TestRegisterResolveAndDuplicate(t *testing.T) {
	testlog.Start(t)
	if err := Register("test.registry-a", nilFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := Register("test.registry-a", nilFactory); !errors.Is(err, ErrBackendExists) {
		t.Fatalf("expected ErrBackendExists, got %v", err)
	}
	if _, err := Resolve("test.registry-a", Options{}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
}

func TestResolveMissingBackend(t *testing.T) {
	testlog.Start(t)
	if _, err := Resolve("test.missing", Options{}); !errors.Is(err, ErrBackendNotFound) {
		t.Fatalf("expected ErrBackendNotFound, got %v", err)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	testlog.Start(t)
	if err := Register("test.nil", nil); !errors.Is(err, ErrBackendNil) {
		t.Fatalf("expected ErrBackendNil, got %v", err)
	}
	for _, name := range []string{"", "Sim", ".sim", "sim.", "a..b", "a b"} {
		if err := Register(name, nilFactory); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("expected ErrInvalidName for %q, got %v", name, err)
		}
	}
}

func TestNamesSorted(t *testing.T) {
	testlog.Start(t)
	_ = Register("test.sort-z", nilFactory)
	_ = Register("test.sort-a", nilFactory)
	names := Names()
	ia, iz := -1, -1
	for i, n := range names {
		switch n {
		case "test.sort-a":
			ia = i
		case "test.sort-z":
			iz = i
		}
	}
	if ia < 0 || iz < 0 || ia > iz {
		t.Fatalf("names not sorted: %v", names)
	}
}
