// Package interop owns the native view of values living in the embedded
// runtime's heap.
//
// Ownership boundary:
// - runtime handle (process-wide startup, shutdown, lock possession)
// - temporary frames and frame-scoped handles
// - persistent roots
// - blocking sections
// - named closure lookup and application
//
// Handle discipline. A Value is valid only until the next allocation, since
// any allocation may run the moving collector. Anything that must survive an
// allocation is first stored in a frame slot (Keep) or a persistent root
// (NewRoot) and re-read afterwards through the Runtime. With stale checks
// enabled the Runtime counts allocations and panics on the use of a block
// handle issued before the latest one.
package interop
