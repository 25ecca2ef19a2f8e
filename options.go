package pooppdf

import (
	"time"

	"github.com/go-logr/logr"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// DefaultTimeout bounds one capture: launch, navigation, readiness and render.
const DefaultTimeout = 30 * time.Second

// pipelineConfig holds internal configuration for Pipeline.
type pipelineConfig struct {
	timeout time.Duration
}

// WithTimeout sets the capture timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pooppdf: WithTimeout duration must be positive")
	}
	return func(p *Pipeline) {
		p.cfg.timeout = d
	}
}

// WithEngine sets the browser engine. Defaults to rod with EngineConfig from
// the environment.
func WithEngine(e Engine) Option {
	if e == nil {
		panic("pooppdf: nil Engine in WithEngine")
	}
	return func(p *Pipeline) {
		p.engine = e
	}
}

// WithLogger sets the logger that receives pipeline events.
// The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}
