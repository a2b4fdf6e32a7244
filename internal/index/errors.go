package index

import (
	"errors"
	"fmt"
)

var ErrSessionNotFound = errors.New("session not found")

// FileError is a file-level import failure: the file could not be opened or
// read, or a batch from it failed to commit.
type FileError struct {
	Path string
	Op   string // "open", "read", "write"
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("import %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
