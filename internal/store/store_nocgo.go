//go:build !cgo

package store

// Without cgo the sqlite3 driver is a stub that cannot open a database or
// surface sqlite error codes, so no error can ever be a constraint violation.
func isConstraint(error) bool { return false }
