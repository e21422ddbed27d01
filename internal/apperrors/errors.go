package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrImmutableRecord indicates an attempted mutation of a ledger entry that has
// already been frozen into a version. The operation always fails; it is never
// downgraded to a no-op.
var ErrImmutableRecord = errors.New("record is frozen in a version and cannot be modified")

// ErrConflict indicates a serialization failure from a concurrent
// snapshot/edit collision. Callers may retry once.
var ErrConflict = errors.New("operation conflicted with a concurrent change")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
