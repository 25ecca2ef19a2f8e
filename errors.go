package pooppdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for capture operations.
var (
	// Request validation errors.
	//lint:ignore ST1005 printed verbatim by the CLI
	ErrNoURL         = errors.New("No url given!")
	ErrInvalidURL    = errors.New("invalid url")
	ErrInvalidOutput = errors.New("invalid output path")

	// Engine errors.
	ErrUnknownEngine = errors.New("unknown browser engine")
	ErrBrowserLaunch = errors.New("failed to launch browser")

	// Pipeline stage errors.
	ErrNavigation       = errors.New("navigation failed")
	ErrReadinessTimeout = errors.New("timed out waiting for page readiness")
	ErrReadiness        = errors.New("page readiness check failed")
	ErrPDFGeneration    = errors.New("PDF generation failed")
	ErrWritePDF         = errors.New("failed to write PDF")
)

// StageError records the pipeline state in which a capture failed.
// It wraps the underlying error, so errors.Is matches the sentinels above.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
