package models

import "errors"

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the write collides with existing state.
var ErrConflict = errors.New("conflict")

// ErrInvalidInput indicates a request failed domain validation.
var ErrInvalidInput = errors.New("invalid input")
