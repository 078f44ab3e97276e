package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrMissingColumn  = errors.New("required column missing")
	ErrNoRows         = errors.New("dataset has no rows")
	ErrUnknownRule    = errors.New("unknown expectation kind")
	ErrChecksumFailed = errors.New("checksum computation failed")
)

// NewMissingColumnError names the column that could not be found
func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrMissingColumn, column)
}

// IsMissingColumnError reports whether err stems from an absent column
func IsMissingColumnError(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}
