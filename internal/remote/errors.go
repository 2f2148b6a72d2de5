package remote

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("item not found")
)

// Error codes describing why a store operation failed. The sync cache only
// needs commit-or-rollback semantics, but callers surface these to the UI.
const (
	CodeNetwork  = "network"
	CodeRejected = "rejected"
	CodeNotFound = "not_found"
)

// StoreError is the structured failure returned by every adapter.
type StoreError struct {
	Op   string // "list", "create", "delete", "update_status"
	Code string
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s (%s): %v", e.Op, e.Code, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewError builds a StoreError; adapters in subpackages use this so the
// cache sees one failure shape regardless of backend.
func NewError(op, code string, err error) *StoreError {
	return &StoreError{Op: op, Code: code, Err: err}
}

// NotFound builds the canonical missing-item failure for op.
func NotFound(op string) *StoreError {
	return NewError(op, CodeNotFound, ErrNotFound)
}
