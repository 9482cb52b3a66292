package splitter

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when an absent payload is supplied to Split.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrMalformedPayload is returned when a payload cannot be divided under the
	// configured strategy and no remainder policy applies.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrInvalidConfiguration is returned when a strategy rejects its configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNilPayload is the InvalidArgument error for a nil payload.
	ErrNilPayload = fmt.Errorf("%w: payload is nil", ErrInvalidArgument)
)

// MalformedPayloadError describes a payload the strategy could not divide.
//
// It matches ErrMalformedPayload with errors.Is.
type MalformedPayloadError struct {
	Strategy string
	Length   int
	AtomSize uint
	Reason   string
	cause    error
}

func (e *MalformedPayloadError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("malformed payload for %s: %s: %v", e.Strategy, e.Reason, e.cause)
	}
	return fmt.Sprintf("malformed payload for %s: %s (length %d, atom size %d)", e.Strategy, e.Reason, e.Length, e.AtomSize)
}

func (e *MalformedPayloadError) Unwrap() []error {
	if e.cause != nil {
		return []error{ErrMalformedPayload, e.cause}
	}
	return []error{ErrMalformedPayload}
}

// ConfigError describes a rejected strategy setting.
//
// It matches ErrInvalidConfiguration with errors.Is.
type ConfigError struct {
	Strategy string
	Field    string
	Value    uint
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s for %s: %d %s", e.Field, e.Strategy, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// UnknownStrategyError is returned for a strategy name with no registered splitter.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy: %q", e.Name)
}

func (e *UnknownStrategyError) Unwrap() error { return ErrInvalidConfiguration }
