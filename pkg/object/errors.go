package object

import "errors"

// ErrObjectNotFound indicates a referenced hash is absent from the store,
// meaning either store corruption or a bad reference.
var ErrObjectNotFound = errors.New("object not found")

// ErrMalformedObject indicates stored bytes that fail to decode per the
// object's schema. There is no auto-repair; the error surfaces to the caller.
var ErrMalformedObject = errors.New("malformed object")
