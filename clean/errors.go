package clean

import (
	"errors"
	"fmt"
)

var (
	// ErrInputNotFound is returned when an input path doesn't exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrUnsupportedInputKind is returned for input paths that are neither
	// structural files nor manifests (see KindOf).
	ErrUnsupportedInputKind = errors.New("unsupported input kind")

	// ErrOutputDirUnwritable is returned when the output directory or a file
	// in it can't be created or written.
	ErrOutputDirUnwritable = errors.New("output directory unwritable")
)

// EntryError records the failure of a single manifest entry in a batch.
type EntryError struct {
	Path string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
