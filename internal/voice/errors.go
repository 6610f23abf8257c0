package voice

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected = errors.New("not in a voice channel")
	ErrAlreadyMuted = errors.New("already muted")
	ErrNotMuted     = errors.New("not muted")
)

// BackendError wraps a failure from the voice backend or source resolution.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("voice %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
