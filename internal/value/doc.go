// Package value owns the raw word encoding of foreign runtime values.
//
// Ownership boundary:
// - immediate vs block predicates
// - tagged integer encoding
// - block header and tag layout
// - string/bytes padding layout
package value
