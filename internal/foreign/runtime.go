package foreign

import (
	"context"

	"github.com/danmuck/mlbridge/internal/value"
)

// RootScanner is a set of native cells the collector must treat as roots
// and update in place when it moves their targets.
type RootScanner interface {
	ScanRoots(visit func(cell *value.Raw))
}

// Runtime is the narrow set of entry points the interop layer consumes from
// an embedded runtime. Every method except AcquireRuntime and
// LeaveBlockingSection requires the caller to hold the master lock.
type Runtime interface {
	Startup(argv []string) error
	Shutdown()
	RootsSetup()
	RootsTeardown()

	// Alloc returns a block of wosize fields, each initialised to value.Unit.
	// Any allocation may run the collector.
	Alloc(wosize int, tag uint8) value.Raw
	AllocString(b []byte) value.Raw
	AllocDouble(f float64) value.Raw
	AllocBoxed64(bits uint64) value.Raw

	Tag(v value.Raw) uint8
	Size(v value.Raw) int
	Field(v value.Raw, i int) value.Raw
	StoreField(v value.Raw, i int, x value.Raw)
	Double(v value.Raw) float64
	Boxed64(v value.Raw) uint64
	StringBytes(v value.Raw) []byte

	RegisterGlobalRoot(cell *value.Raw)
	RemoveGlobalRoot(cell *value.Raw)
	// PushLocalRoots adds a scanner to the local root stack and returns its
	// depth. PopLocalRoots takes that depth and must pop the innermost scope.
	PushLocalRoots(s RootScanner) int
	PopLocalRoots(depth int)

	EnterBlockingSection()
	LeaveBlockingSection()
	AcquireRuntime(ctx context.Context) error
	ReleaseRuntime()

	// NamedValue returns the registered cell for name. The cell stays valid
	// and rooted for the life of the runtime.
	NamedValue(name string) (*value.Raw, bool)
	// Callback applies closure to args. exn reports that the call raised;
	// the returned value is then the exception.
	Callback(closure value.Raw, args ...value.Raw) (result value.Raw, exn bool)

	Collect()
	Stats() Stats
}

// Stats is a snapshot of backend bookkeeping.
type Stats struct {
	Backend          string `json:"backend"`
	Started          bool   `json:"started"`
	RootsReady       bool   `json:"roots_ready"`
	HeapWords        int    `json:"heap_words"`
	UsedWords        int    `json:"used_words"`
	Collections      uint64 `json:"collections"`
	Allocations      uint64 `json:"allocations"`
	RootRegistered   uint64 `json:"root_registered"`
	RootRemoved      uint64 `json:"root_removed"`
	LiveGlobalRoots  int    `json:"live_global_roots"`
	LocalRootScopes  int    `json:"local_root_scopes"`
	LockReleases     uint64 `json:"lock_releases"`
	LockReacquires   uint64 `json:"lock_reacquires"`
	Callbacks        uint64 `json:"callbacks"`
	CallbackFailures uint64 `json:"callback_failures"`
}
