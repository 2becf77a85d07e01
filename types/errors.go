package types

import "errors"

// ErrNotFound is returned by every lookup in this module when the named
// resource does not exist. Lookups never report absence through a nil
// result or a zero value; test with errors.Is.
var ErrNotFound = errors.New("resource not found")

// IsNotFound reports whether err is an absence result from a lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
