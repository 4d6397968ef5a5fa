package store

import "errors"

var (
	// ErrFieldNotFound reports an operation on an id absent from the collection.
	// Callers usually treat it as a stale reference and ignore it.
	ErrFieldNotFound = errors.New("store: field not found")
	// ErrDuplicateName reports a rename onto a name another field already uses.
	ErrDuplicateName = errors.New("store: duplicate field name")
	// ErrUnknownFieldType reports a kind outside the closed set.
	ErrUnknownFieldType = errors.New("store: unknown field type")
	// ErrDuplicateID reports a replacement collection with repeated ids.
	ErrDuplicateID = errors.New("store: duplicate field id")
)
