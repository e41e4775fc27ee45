// Package foreign owns the contract with the embedded runtime.
//
// Ownership boundary:
// - allocation, field access and root primitives
// - master lock and blocking section primitives
// - named value lookup and callback primitives
// - backend registry
package foreign
