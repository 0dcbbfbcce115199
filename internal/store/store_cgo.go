//go:build cgo

package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

func isConstraint(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint
}
