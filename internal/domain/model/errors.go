package model

import "errors"

// Storage-level sentinels shared by repositories and in-memory stores.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with existing data")
)
