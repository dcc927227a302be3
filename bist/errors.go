package bist

import (
	"errors"
	"fmt"
)

// Configuration-time failures. Data mismatches are never errors; they are
// counted by the checker.
var (
	ErrEmptyWindow                = errors.New("window end must be above base")
	ErrWindowNotPowerOfTwo        = errors.New("window size is not a power of two")
	ErrAddressOutOfRange          = errors.New("window end exceeds the address width")
	ErrEmptyRun                   = errors.New("run length is shorter than one word")
	ErrInvalidWidths              = errors.New("unsupported port widths")
	ErrRandomAddrNeedsAlternating = errors.New(
		"random addresses need alternating generator and checker")
)

// A ConfigError tells which setting was rejected.
type ConfigError struct {
	Field  string
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}

	return fmt.Sprintf("%s: %v (%s)", e.Field, e.Err, e.Detail)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(field string, err error, format string, args ...any) error {
	return &ConfigError{
		Field:  field,
		Detail: fmt.Sprintf(format, args...),
		Err:    err,
	}
}
