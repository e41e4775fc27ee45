package sim

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/danmuck/mlbridge/internal/foreign"
	"github.com/danmuck/mlbridge/internal/value"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const BackendName = "sim"

var (
	ErrNotStarted      = errors.New("sim: runtime not started")
	ErrDangling        = errors.New("sim: dangling block pointer")
	ErrNotBlock        = errors.New("sim: value is not a block")
	ErrFieldRange      = errors.New("sim: field index out of range")
	ErrTagMismatch     = errors.New("sim: unexpected block tag")
	ErrBadSize         = errors.New("sim: invalid block size")
	ErrDoubleRegister  = errors.New("sim: global root registered twice")
	ErrNotRegistered   = errors.New("sim: global root not registered")
	ErrRootsDown       = errors.New("sim: root subsystem not set up")
	ErrLocalRootsOrder = errors.New("sim: local roots popped out of order")
	ErrLockNotHeld     = errors.New("sim: master lock not held")
)

const (
	genShift  = 40
	indexMask = 1<<genShift - 1
	genMask   = 1<<(64-genShift) - 1

	forwardedHeader = ^uint64(0)

	defaultInitialWords = 1024
)

func init() {
	foreign.MustRegister(BackendName, func(opts foreign.Options) foreign.Runtime {
		return New(Options{InitialWords: opts.InitialWords, Stress: opts.Stress})
	})
}

// Options configures a simulated runtime.
type Options struct {
	// InitialWords sizes the first semispace.
	InitialWords int
	// Stress runs a full moving collection before every allocation.
	Stress bool
	Logger *zerolog.Logger
}

// Heap is an in-process runtime with a semispace copying collector. Every
// collection moves every live block, so a native pointer that was not rooted
// across an allocation is detected on its next use.
type Heap struct {
	opts Options
	log  zerolog.Logger

	space []uint64
	top   int
	gen   uint64

	globals  map[*value.Raw]struct{}
	locals   []foreign.RootScanner
	argRoots [][]value.Raw
	named    map[string]*value.Raw
	funcs    []Func

	lock       chan struct{}
	started    bool
	rootsReady bool

	collections    atomic.Uint64
	allocations    atomic.Uint64
	rootRegistered atomic.Uint64
	rootRemoved    atomic.Uint64
	lockReleases   atomic.Uint64
	lockReacquires atomic.Uint64
	callbacks      atomic.Uint64
	callbackFails  atomic.Uint64
}

var _ foreign.Runtime = (*Heap)(nil)

// New builds an unstarted heap.
func New(opts Options) *Heap {
	if opts.InitialWords <= 0 {
		opts.InitialWords = defaultInitialWords
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Heap{
		opts:    opts,
		log:     logger.With().Str("backend", BackendName).Logger(),
		globals: make(map[*value.Raw]struct{}),
		named:   make(map[string]*value.Raw),
		lock:    make(chan struct{}, 1),
	}
}

// Startup creates the first semispace and takes the master lock for the
// calling goroutine.
func (h *Heap) Startup(argv []string) error {
	if h.started {
		return nil
	}
	if len(argv) == 0 {
		return fmt.Errorf("sim: startup requires a program name")
	}
	h.space = make([]uint64, h.opts.InitialWords)
	h.gen = 1
	h.top = 0
	h.started = true
	h.lock <- struct{}{}
	h.log.Info().
		Str("argv0", argv[0]).
		Int("initial_words", h.opts.InitialWords).
		Bool("stress", h.opts.Stress).
		Msg("sim: runtime started")
	return nil
}

func (h *Heap) Shutdown() {
	if !h.started {
		return
	}
	h.started = false
	h.space = nil
	select {
	case <-h.lock:
	default:
	}
	h.log.Info().Uint64("collections", h.collections.Load()).Msg("sim: runtime shut down")
}

func (h *Heap) RootsSetup() {
	h.rootsReady = true
}

func (h *Heap) RootsTeardown() {
	h.rootsReady = false
}

// Held reports whether some goroutine currently holds the master lock.
func (h *Heap) Held() bool {
	return len(h.lock) == 1
}

func (h *Heap) mustStarted() {
	if !h.started {
		panic(ErrNotStarted)
	}
}

func (h *Heap) addr(idx int) value.Raw {
	return value.Raw(h.gen<<genShift | uint64(idx)<<3)
}

// nextGen advances the space generation, wrapping inside the pointer's
// generation bits. Zero is never a live generation.
func nextGen(gen uint64) uint64 {
	gen = (gen + 1) & genMask
	if gen == 0 {
		gen = 1
	}
	return gen
}

// index resolves a block pointer to the word index of its first field.
func (h *Heap) index(v value.Raw) int {
	h.mustStarted()
	if !value.IsBlock(v) {
		panic(fmt.Errorf("%w: %#x", ErrNotBlock, uint64(v)))
	}
	gen := uint64(v) >> genShift
	idx := int((uint64(v) & indexMask) >> 3)
	if gen != h.gen || idx < 1 || idx >= h.top {
		panic(fmt.Errorf("%w: %#x (live generation %d)", ErrDangling, uint64(v), h.gen))
	}
	return idx
}

func (h *Heap) Alloc(wosize int, tag uint8) value.Raw {
	h.mustStarted()
	if wosize < 1 {
		panic(fmt.Errorf("%w: %d", ErrBadSize, wosize))
	}
	need := wosize + 1
	if h.opts.Stress || h.top+need > len(h.space) {
		h.collect(need)
	}
	hd := h.top
	h.space[hd] = value.MakeHeader(wosize, tag)
	for i := 1; i <= wosize; i++ {
		h.space[hd+i] = uint64(value.Unit)
	}
	h.top += need
	h.allocations.Add(1)
	return h.addr(hd + 1)
}

func (h *Heap) AllocString(b []byte) value.Raw {
	ws := value.StringWords(len(b))
	v := h.Alloc(ws, value.TagString)
	idx := h.index(v)
	buf := make([]byte, ws*value.WordSize)
	copy(buf, b)
	buf[len(buf)-1] = value.PaddingByte(ws, len(b))
	for i := 0; i < ws; i++ {
		h.space[idx+i] = binary.LittleEndian.Uint64(buf[i*value.WordSize:])
	}
	return v
}

func (h *Heap) AllocDouble(f float64) value.Raw {
	v := h.Alloc(1, value.TagDouble)
	h.space[h.index(v)] = math.Float64bits(f)
	return v
}

func (h *Heap) AllocBoxed64(bits uint64) value.Raw {
	v := h.Alloc(1, value.TagCustom)
	h.space[h.index(v)] = bits
	return v
}

func (h *Heap) header(v value.Raw) (int, uint64) {
	idx := h.index(v)
	return idx, h.space[idx-1]
}

func (h *Heap) Tag(v value.Raw) uint8 {
	_, hd := h.header(v)
	return value.HeaderTag(hd)
}

func (h *Heap) Size(v value.Raw) int {
	_, hd := h.header(v)
	return value.HeaderSize(hd)
}

func (h *Heap) slot(v value.Raw, i int) int {
	idx, hd := h.header(v)
	if i < 0 || i >= value.HeaderSize(hd) {
		panic(fmt.Errorf("%w: %d of %d", ErrFieldRange, i, value.HeaderSize(hd)))
	}
	return idx + i
}

func (h *Heap) Field(v value.Raw, i int) value.Raw {
	return value.Raw(h.space[h.slot(v, i)])
}

func (h *Heap) StoreField(v value.Raw, i int, x value.Raw) {
	h.space[h.slot(v, i)] = uint64(x)
}

func (h *Heap) expectTag(v value.Raw, tag uint8) int {
	idx, hd := h.header(v)
	if value.HeaderTag(hd) != tag {
		panic(fmt.Errorf("%w: got %d want %d", ErrTagMismatch, value.HeaderTag(hd), tag))
	}
	return idx
}

func (h *Heap) Double(v value.Raw) float64 {
	return math.Float64frombits(h.space[h.expectTag(v, value.TagDouble)])
}

func (h *Heap) Boxed64(v value.Raw) uint64 {
	return h.space[h.expectTag(v, value.TagCustom)]
}

func (h *Heap) StringBytes(v value.Raw) []byte {
	idx := h.expectTag(v, value.TagString)
	ws := h.Size(v)
	buf := make([]byte, ws*value.WordSize)
	for i := 0; i < ws; i++ {
		binary.LittleEndian.PutUint64(buf[i*value.WordSize:], h.space[idx+i])
	}
	n := value.StringLen(ws, buf[len(buf)-1])
	return buf[:n]
}

// StringLen is the byte length of a string block.
func (h *Heap) StringLen(v value.Raw) int {
	idx := h.expectTag(v, value.TagString)
	ws := h.Size(v)
	last := byte(h.space[idx+ws-1] >> 56)
	return value.StringLen(ws, last)
}

// SetByte mutates byte i of a string block in place.
func (h *Heap) SetByte(v value.Raw, i int, c byte) {
	idx := h.expectTag(v, value.TagString)
	if i < 0 || i >= h.StringLen(v) {
		panic(fmt.Errorf("%w: byte %d", ErrFieldRange, i))
	}
	w := idx + i/value.WordSize
	shift := uint(i%value.WordSize) * 8
	h.space[w] = h.space[w]&^(0xff<<shift) | uint64(c)<<shift
}

// Byte reads byte i of a string block.
func (h *Heap) Byte(v value.Raw, i int) byte {
	idx := h.expectTag(v, value.TagString)
	if i < 0 || i >= h.StringLen(v) {
		panic(fmt.Errorf("%w: byte %d", ErrFieldRange, i))
	}
	return byte(h.space[idx+i/value.WordSize] >> (uint(i%value.WordSize) * 8))
}

func (h *Heap) RegisterGlobalRoot(cell *value.Raw) {
	h.mustStarted()
	if !h.rootsReady {
		panic(ErrRootsDown)
	}
	if _, ok := h.globals[cell]; ok {
		panic(ErrDoubleRegister)
	}
	h.globals[cell] = struct{}{}
	h.rootRegistered.Add(1)
}

func (h *Heap) RemoveGlobalRoot(cell *value.Raw) {
	if _, ok := h.globals[cell]; !ok {
		panic(ErrNotRegistered)
	}
	delete(h.globals, cell)
	h.rootRemoved.Add(1)
}

// IsGlobalRoot reports whether cell is currently registered.
func (h *Heap) IsGlobalRoot(cell *value.Raw) bool {
	_, ok := h.globals[cell]
	return ok
}

func (h *Heap) PushLocalRoots(s foreign.RootScanner) int {
	h.locals = append(h.locals, s)
	return len(h.locals)
}

// PopLocalRoots pops by depth so scanners need not be comparable.
func (h *Heap) PopLocalRoots(depth int) {
	n := len(h.locals)
	if n == 0 || depth != n {
		panic(fmt.Errorf("%w: pop depth %d, stack depth %d", ErrLocalRootsOrder, depth, n))
	}
	h.locals[n-1] = nil
	h.locals = h.locals[:n-1]
}

func (h *Heap) EnterBlockingSection() {
	select {
	case <-h.lock:
		h.lockReleases.Add(1)
	default:
		panic(ErrLockNotHeld)
	}
}

func (h *Heap) LeaveBlockingSection() {
	h.lock <- struct{}{}
	h.lockReacquires.Add(1)
}

func (h *Heap) AcquireRuntime(ctx context.Context) error {
	select {
	case h.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Heap) ReleaseRuntime() {
	select {
	case <-h.lock:
	default:
		panic(ErrLockNotHeld)
	}
}

func (h *Heap) Collect() {
	h.mustStarted()
	h.collect(0)
}

// collect evacuates every live block into a fresh semispace with room for
// need more words.
func (h *Heap) collect(need int) {
	old := h.space
	oldGen := h.gen
	size := len(old)
	if h.top+need > size {
		size = 2 * (h.top + need)
	}
	to := make([]uint64, size)
	h.gen = nextGen(h.gen)
	next := 0

	forward := func(v value.Raw) value.Raw {
		if value.IsImmediate(v) {
			return v
		}
		gen := uint64(v) >> genShift
		idx := int((uint64(v) & indexMask) >> 3)
		if gen != oldGen || idx < 1 || idx >= h.top {
			panic(fmt.Errorf("%w: root holds %#x during collection", ErrDangling, uint64(v)))
		}
		if old[idx-1] == forwardedHeader {
			return value.Raw(old[idx])
		}
		ws := value.HeaderSize(old[idx-1])
		copy(to[next:next+ws+1], old[idx-1:idx+ws])
		moved := h.addr(next + 1)
		next += ws + 1
		old[idx-1] = forwardedHeader
		old[idx] = uint64(moved)
		return moved
	}
	visit := func(cell *value.Raw) {
		*cell = forward(*cell)
	}

	for cell := range h.globals {
		visit(cell)
	}
	for _, s := range h.locals {
		s.ScanRoots(visit)
	}
	for _, cell := range h.named {
		visit(cell)
	}
	for _, args := range h.argRoots {
		for i := range args {
			visit(&args[i])
		}
	}

	for scan := 0; scan < next; {
		hd := to[scan]
		ws := value.HeaderSize(hd)
		if value.Scannable(value.HeaderTag(hd)) {
			for i := 1; i <= ws; i++ {
				to[scan+i] = uint64(forward(value.Raw(to[scan+i])))
			}
		}
		scan += ws + 1
	}

	h.space = to
	h.top = next
	n := h.collections.Add(1)
	h.log.Debug().
		Uint64("collection", n).
		Int("live_words", next).
		Int("space_words", size).
		Msg("sim: collection")
}

func (h *Heap) Stats() foreign.Stats {
	return foreign.Stats{
		Backend:          BackendName,
		Started:          h.started,
		RootsReady:       h.rootsReady,
		HeapWords:        len(h.space),
		UsedWords:        h.top,
		Collections:      h.collections.Load(),
		Allocations:      h.allocations.Load(),
		RootRegistered:   h.rootRegistered.Load(),
		RootRemoved:      h.rootRemoved.Load(),
		LiveGlobalRoots:  len(h.globals),
		LocalRootScopes:  len(h.locals),
		LockReleases:     h.lockReleases.Load(),
		LockReacquires:   h.lockReacquires.Load(),
		Callbacks:        h.callbacks.Load(),
		CallbackFailures: h.callbackFails.Load(),
	}
}
