package service

import "errors"

var (
	// ErrEmptyMessage is returned when a chat message is blank.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrUpdatePanicked wraps a panic recovered while applying a map update.
	ErrUpdatePanicked = errors.New("map update panicked")
)
