// Package repository implements the data access layer on top of
// database/sql.  Sentinel errors defined here let handlers distinguish
// failure scenarios without inspecting driver-specific error strings.
// Lookups that find nothing pass sql.ErrNoRows through to the caller.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an identity sync would violate the unique
// email constraint (two provider subjects claiming the same address).
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).  The driver does not expose a typed error for this, so the
// code is matched in the message, as elsewhere in this layer.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
