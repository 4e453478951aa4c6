package subvec

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Lookup for a word absent from the
	// vocabulary when subword features are disabled, so no vector can be
	// synthesized. Recoverable by the caller.
	ErrNotFound = errors.New("word not found")

	// ErrNotInitialized is returned when a store operation requires
	// matrices that have not been created yet.
	ErrNotInitialized = errors.New("store not initialized")
)

// ShapeError indicates a matrix whose shape disagrees with the declared
// vocabulary size, bucket count, or dimension. Shape violations risk silent
// numeric corruption and always abort the operation.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ShapeError struct {
	Rows, Cols         int
	WantRows, WantCols int
	cause              error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("matrix shape mismatch: got %dx%d, want %dx%d", e.Rows, e.Cols, e.WantRows, e.WantCols)
}

func (e *ShapeError) Unwrap() error { return e.cause }

// GrowError indicates a Grow call whose previous-size argument disagrees with
// the store's current state.
type GrowError struct {
	PreviousSize int
	CurrentRows  int
	VocabLen     int
}

func (e *GrowError) Error() string {
	return fmt.Sprintf("invalid vocabulary growth: previous size %d, current rows %d, new vocabulary %d",
		e.PreviousSize, e.CurrentRows, e.VocabLen)
}
