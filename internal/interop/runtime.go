package interop

import (
	"fmt"
	"sync"

	"github.com/danmuck/mlbridge/internal/config"
	"github.com/danmuck/mlbridge/internal/foreign"
	"github.com/danmuck/mlbridge/internal/observability"
	"github.com/danmuck/mlbridge/internal/value"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// startupArgv is the argument vector the embedding ABI expects: a program
// name placeholder. The backend supplies the terminator.
var startupArgv = []string{"ocaml"}

// Runtime is the capability to touch the foreign heap. Holding a *Runtime
// means holding the runtime lock, except inside ReleasingRuntime.
//
// A Runtime is not safe for concurrent use; goroutines other than the one
// that called Init go through Locked.
type Runtime struct {
	backend  foreign.Runtime
	name     string
	checks   bool
	metrics  bool
	epoch    uint64
	released bool
	log      zerolog.Logger
}

var (
	initOnce sync.Once
	live     *Runtime
	initErr  error
)

// Init starts the runtime selected by cfg once per process and returns its
// handle. Later calls return the same handle and error.
func Init(cfg config.Config) (*Runtime, error) {
	initOnce.Do(func() {
		b, err := foreign.Resolve(cfg.Backend, config.BackendOptions(cfg))
		if err != nil {
			initErr = err
			log.Error().Err(err).Str("backend", cfg.Backend).Msg("interop: backend unavailable")
			return
		}
		live, initErr = attach(cfg.Backend, b, cfg.CheckStale, cfg.Metrics.Enabled)
	})
	return live, initErr
}

// Recover returns the handle created by Init, or nil before Init.
func Recover() *Runtime {
	return live
}

func attach(name string, b foreign.Runtime, checks, metrics bool) (*Runtime, error) {
	if err := b.Startup(startupArgv); err != nil {
		return nil, fmt.Errorf("interop: startup %s: %w", name, err)
	}
	b.RootsSetup()
	if metrics {
		observability.RegisterMetrics()
	}
	cr := &Runtime{
		backend: b,
		name:    name,
		checks:  checks,
		metrics: metrics,
		log:     log.Logger.With().Str("backend", name).Logger(),
	}
	cr.log.Info().Bool("check_stale", checks).Msg("interop: runtime initialised")
	return cr, nil
}

// Shutdown tears down the root subsystem and the runtime. It must be the
// last operation on the runtime: no frame, root or value may be used
// afterwards, and it must not be called twice.
func (cr *Runtime) Shutdown() {
	cr.backend.RootsTeardown()
	cr.backend.Shutdown()
	cr.log.Info().Uint64("epoch", cr.epoch).Msg("interop: runtime shut down")
}

func (cr *Runtime) Backend() foreign.Runtime {
	return cr.backend
}

func (cr *Runtime) Name() string {
	return cr.name
}

func (cr *Runtime) Stats() foreign.Stats {
	return cr.heap().Stats()
}

// Collect forces a collection. Every unrooted handle is stale afterwards.
func (cr *Runtime) Collect() {
	cr.heap().Collect()
	cr.epoch++
}

// Epoch counts allocating operations since startup.
func (cr *Runtime) Epoch() uint64 {
	return cr.epoch
}

func (cr *Runtime) CheckStale() bool {
	return cr.checks
}

// heap is the only path to the backend for heap operations.
func (cr *Runtime) heap() foreign.Runtime {
	if cr.released {
		panic(ErrRuntimeReleased)
	}
	return cr.backend
}

// allocated records an allocation; handles issued before it are stale.
func (cr *Runtime) allocated() uint64 {
	cr.epoch++
	return cr.epoch
}

func (cr *Runtime) check(s scope, epoch uint64, raw value.Raw) {
	if !cr.checks {
		return
	}
	if s != nil && s.closed() {
		panic(ErrScopeClosed)
	}
	if value.IsBlock(raw) && epoch != cr.epoch {
		panic(fmt.Errorf("%w: issued at %d, runtime at %d", ErrStaleHandle, epoch, cr.epoch))
	}
}
