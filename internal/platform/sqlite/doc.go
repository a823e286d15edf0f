// Package sqlite provides an embedded implementation of the practice record
// store on top of the pure-Go modernc.org/sqlite driver. It serves offline
// and single-node deployments and backs the package tests of the layers above.
//
// Dates are stored as YYYY-MM-DD text and timestamps as RFC 3339 text in UTC,
// so lexical order matches chronological order. The pool is limited to one
// connection, which serializes writers and lets in-memory databases be shared.
package sqlite
