package errs

import "errors"

var ErrValidation = errors.New("validation failed")

var ErrNotFound = errors.New("not found")

var ErrAlreadyExists = errors.New("already exists")

// ErrConcurrency marks lock-wait timeouts and serialization failures.
// The whole operation is safe to retry.
var ErrConcurrency = errors.New("concurrent update conflict")

var ErrUnauthorized = errors.New("credentials do not match")

var ErrInternal = errors.New("internal error")
