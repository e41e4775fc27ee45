package interop

import (
	"github.com/danmuck/mlbridge/internal/foreign"
	"github.com/danmuck/mlbridge/internal/value"
)

// LifecycleSetup is the entry point a foreign-driven program calls to set
// up root tracking when the runtime itself was started by foreign code. It
// takes and returns unit.
func LifecycleSetup(b foreign.Runtime, _ value.Raw) value.Raw {
	b.RootsSetup()
	return value.Unit
}

// LifecycleTeardown undoes LifecycleSetup. It takes and returns unit.
func LifecycleTeardown(b foreign.Runtime, _ value.Raw) value.Raw {
	b.RootsTeardown()
	return value.Unit
}
