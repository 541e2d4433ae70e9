package cpm

import (
	"errors"
	"fmt"
)

var (
	ErrNoPath      = errors.New("no path")
	ErrUnknownNode = errors.New("unknown node")
)

// NoPathError reports that End cannot be reached from Start.
type NoPathError struct {
	Start string
	End   string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("%s from %q to %q", ErrNoPath, e.Start, e.End)
}

func (e *NoPathError) Unwrap() error { return ErrNoPath }
