package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no recipe exists with the requested ID
	ErrNotFound = errors.New("recipe not found")

	// ErrInvalidRecipe is returned when a recipe without a title is written
	ErrInvalidRecipe = errors.New("recipe title is required")

	// ErrNotifierClosed is delivered to live queries whose change feed ended unexpectedly
	ErrNotifierClosed = errors.New("change notifier closed")

	// ErrClosed is delivered to live queries once the repository has been closed
	ErrClosed = errors.New("recipe repository closed")
)

// PersistenceError wraps a failed write to the recipe store
type PersistenceError struct {
	Op  string
	ID  uint
	Err error
}

func (e *PersistenceError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("failed to %s recipe %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s recipe: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
