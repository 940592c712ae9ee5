// Package common defines the sentinel errors shared by every store.
// Callers should use errors.Is to match these values; stores wrap them
// with fmt.Errorf("%w: ...") to add detail.
package common

import "errors"

var (
	// ErrValidation reports malformed input. No state was mutated.
	ErrValidation = errors.New("validation error")

	// ErrAuthorization reports a missing capability or failed admin
	// verification. The denial has been audited and no state was mutated.
	ErrAuthorization = errors.New("authorization error")

	// ErrNotFound reports a reference to a record that does not exist.
	ErrNotFound = errors.New("not found")
)
