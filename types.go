package pooppdf

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/alnah/go-pooppdf/internal/fileutil"
)

// DefaultOutputPath is used when a CaptureRequest has no output path.
const DefaultOutputPath = "output.pdf"

// CaptureRequest describes a single page capture.
// Build one literal per invocation and call Normalize before use.
type CaptureRequest struct {
	URL             string // Absolute http, https or file URL (required)
	OutputPath      string // Local path or s3://bucket/key (default: output.pdf)
	Selector        string // CSS selector that must match before capture (optional)
	Title           string // Header title on every page (optional)
	ShowPageNumbers bool   // "Page N of M" footer
}

// Normalize validates the request and returns a copy with defaults applied.
// Relative local output paths are resolved against the working directory.
// Normalizing an already normalized request returns it unchanged.
func (r CaptureRequest) Normalize() (CaptureRequest, error) {
	if r.URL == "" {
		return CaptureRequest{}, ErrNoURL
	}
	if err := validatePageURL(r.URL); err != nil {
		return CaptureRequest{}, err
	}

	if r.OutputPath == "" {
		r.OutputPath = DefaultOutputPath
	}
	if fileutil.IsS3Location(r.OutputPath) {
		if _, _, err := fileutil.SplitS3Location(r.OutputPath); err != nil {
			return CaptureRequest{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	} else {
		abs, err := filepath.Abs(r.OutputPath)
		if err != nil {
			return CaptureRequest{}, fmt.Errorf("resolving output path: %w", err)
		}
		r.OutputPath = abs
	}

	return r, nil
}

// validatePageURL accepts absolute http, https and file URLs.
func validatePageURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
		}
	case "file":
	default:
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	return nil
}

// Margins are page margins in CSS pixels.
type Margins struct {
	Top    int
	Bottom int
}

// PrintOptions is the print layout handed to the browser engine.
// An empty template means no content for that area.
type PrintOptions struct {
	OutputPath          string
	DisplayHeaderFooter bool
	Margins             Margins
	Scale               float64
	WidthPx             int
	HeaderTemplate      string
	FooterTemplate      string
}

// State is a step of the capture pipeline.
type State int

const (
	StateIdle State = iota
	StateLaunching
	StateNavigating
	StateAwaitingReadiness
	StateRendering
	StateClosing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:              "idle",
	StateLaunching:         "launching",
	StateNavigating:        "navigating",
	StateAwaitingReadiness: "awaiting readiness",
	StateRendering:         "rendering",
	StateClosing:           "closing",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Result describes a successful capture.
type Result struct {
	OutputPath string        // Where the PDF was written (absolute path or s3:// URL)
	Bytes      int           // PDF size
	Elapsed    time.Duration // Launch to write
}
