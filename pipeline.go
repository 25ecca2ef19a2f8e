package pooppdf

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/alnah/go-pooppdf/internal/storage"
)

// artifactSink stores the rendered PDF.
type artifactSink interface {
	Write(ctx context.Context, location string, data []byte) (string, error)
}

// Compile-time interface checks
var _ artifactSink = storageSink{}

// storageSink writes local paths atomically and s3:// locations to S3.
type storageSink struct{}

func (storageSink) Write(ctx context.Context, location string, data []byte) (string, error) {
	store, key, err := storage.Resolve(ctx, location)
	if err != nil {
		return "", err
	}
	return store.Put(ctx, key, data)
}

// Pipeline captures one page into a PDF.
// A Pipeline holds no per-run state and may run several requests in turn;
// every run gets its own browser session.
type Pipeline struct {
	cfg    pipelineConfig
	engine Engine
	sink   artifactSink
	log    logr.Logger
	now    func() time.Time
}

// NewPipeline creates a Pipeline with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithEngine, WithLogger).
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:  pipelineConfig{timeout: DefaultTimeout},
		sink: storageSink{},
		log:  logr.Discard(),
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Create default engine if not injected (e.g., by tests)
	if p.engine == nil {
		p.engine = newRodEngine(EngineConfig{}.withEnv(os.Getenv))
	}

	return p
}

// Timeout returns the capture timeout.
func (p *Pipeline) Timeout() time.Duration {
	return p.cfg.timeout
}

// Run captures req.URL into a PDF at req.OutputPath.
//
// The run walks Idle, Launching, Navigating, AwaitingReadiness, Rendering,
// Closing and ends in Done or Failed. The browser session is closed on every
// path out of Launching. A failed run writes nothing: a file already at the
// output path is left untouched. There is exactly one attempt.
func (p *Pipeline) Run(ctx context.Context, req CaptureRequest) (*Result, error) {
	r := &run{log: p.log.WithValues("run", uuid.NewString())}
	r.log.Info("Generating PDF for URL : " + req.URL)

	start := p.now()
	res, err := p.capture(ctx, req, r)
	if err != nil {
		r.enter(StateFailed)
		r.log.Error(err, "PDF generation failed")
		return nil, err
	}

	res.Elapsed = p.now().Sub(start)
	r.enter(StateDone)
	r.log.Info("PDF generated successfully!", "path", res.OutputPath, "bytes", res.Bytes)
	return res, nil
}

// capture runs the states between Idle and Closing.
func (p *Pipeline) capture(ctx context.Context, req CaptureRequest, r *run) (res *Result, err error) {
	// Recover from engine panics so the session still gets closed
	defer func() {
		if rec := recover(); rec != nil {
			err = r.fail(fmt.Errorf("internal error: %v", rec))
		}
	}()

	req, err = req.Normalize()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.timeout)
	defer cancel()

	r.enter(StateLaunching)
	session, err := p.engine.Launch(ctx)
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %s: %v", ErrBrowserLaunch, p.engine.Name(), err))
	}
	defer func() {
		r.enter(StateClosing)
		if cerr := session.Close(); cerr != nil {
			r.log.V(1).Info("closing browser session", "error", cerr.Error())
		}
	}()

	r.enter(StateNavigating)
	if err := session.Navigate(ctx, req.URL); err != nil {
		return nil, r.fail(fmt.Errorf("%w: %s: %v", ErrNavigation, req.URL, err))
	}

	r.enter(StateAwaitingReadiness)
	if err := AwaitReady(ctx, session, req.Selector); err != nil {
		return nil, r.fail(err)
	}

	r.enter(StateRendering)
	opts := BuildPrintOptions(req)

	// Most pages hide content under print media; render what the screen shows
	if err := session.EmulateScreenMedia(ctx); err != nil {
		return nil, r.fail(fmt.Errorf("%w: emulating screen media: %v", ErrPDFGeneration, err))
	}

	pdf, err := session.PrintPDF(ctx, opts)
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %v", ErrPDFGeneration, err))
	}

	location, err := p.sink.Write(ctx, opts.OutputPath, pdf)
	if err != nil {
		return nil, r.fail(fmt.Errorf("%w: %s: %v", ErrWritePDF, opts.OutputPath, err))
	}

	return &Result{OutputPath: location, Bytes: len(pdf)}, nil
}

// run tracks the state of one Pipeline.Run.
type run struct {
	log   logr.Logger
	state State
}

func (r *run) enter(s State) {
	r.log.V(1).Info("state transition", "from", r.state.String(), "to", s.String())
	r.state = s
}

// fail tags err with the state it happened in.
func (r *run) fail(err error) error {
	return &StageError{State: r.state, Err: err}
}
