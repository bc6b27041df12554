package domain

import (
	"errors"
	"fmt"
)

// ErrAlreadyActivated is returned when activation is requested after it already succeeded
// or while another activation is in progress.
var ErrAlreadyActivated = errors.New("ncp is already activated")

// ConfigurationError reports an absent or unusable configured path.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CryptoError reports a failure to derive key material from the master password.
type CryptoError struct {
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("failed to derive secrets from password: %v", e.Err)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// RenderError reports a template that is missing, malformed or cannot be written.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ProbeError reports that the container runtime could not be queried.
type ProbeError struct {
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("failed to query container runtime: %v", e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// ActivationError wraps the failure of one activation step.
type ActivationError struct {
	Step string
	Err  error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activation failed at %s: %v", e.Step, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }
