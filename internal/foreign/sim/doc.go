// Package sim is an in-process runtime backend with a moving collector.
//
// Ownership boundary:
// - semispace heap and Cheney collection
// - global and local root bookkeeping
// - master lock token
// - named closures implemented in Go
package sim
