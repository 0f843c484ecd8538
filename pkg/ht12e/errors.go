package ht12e

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no sync pulse was found within the timeout.
	// It covers both an idle line and a line with noise never matching sync.
	ErrTimeout = errors.New("timeout waiting for sync")
	// ErrSyncLost indicates the sync pulse was found but data never started.
	ErrSyncLost = errors.New("sync lost after preamble")
	// ErrMalformedData indicates a data pulse matching neither bit window.
	ErrMalformedData = errors.New("malformed data pulse")
	// ErrCalibrationIndeterminate indicates the observed pulse ratio matched
	// no known sync-to-period ratio.
	ErrCalibrationIndeterminate = errors.New("clock period not determined")
	// ErrOutOfRange indicates the pin index is beyond 0-11.
	ErrOutOfRange = errors.New("pin out of range")
	// ErrInvalidPeriod indicates a non-positive clock period or frequency.
	ErrInvalidPeriod = errors.New("invalid clock period")
)

// ErrNotConnected indicates the line never went active while calibrating.
// It matches ErrTimeout with errors.Is.
var ErrNotConnected error = &notConnectedError{}

type notConnectedError struct{}

func (e *notConnectedError) Error() string { return "device not connected" }

func (e *notConnectedError) Is(target error) bool { return target == ErrTimeout }

// ReadError wraps a decode failure from a pin read.
type ReadError struct {
	Pin int
	Err error
}

// Error implements error.
func (e *ReadError) Error() string {
	return fmt.Sprintf("read pin %d: %v", e.Pin, e.Err)
}

// Unwrap returns the decode error.
func (e *ReadError) Unwrap() error {
	return e.Err
}
