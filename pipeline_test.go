package pooppdf

// Notes:
// - Pipeline.Run is tested with a fake engine and session; real browsers are
//   covered by the integration tests.
// - Log events are captured with logr's funcr sink.
// - The fake sink stands in for storage except where the test is about what
//   ends up on disk.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// ---------------------------------------------------------------------------
// Mock Implementations
// ---------------------------------------------------------------------------

type mockEngine struct {
	launchErr error
	session   *mockSession
	launches  int
}

func (e *mockEngine) Name() string { return "mock" }

func (e *mockEngine) Launch(ctx context.Context) (Session, error) {
	e.launches++
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	return e.session, nil
}

type mockSession struct {
	mu sync.Mutex

	navigateErr error
	idleBlocks  bool
	selectorErr error
	mediaErr    error
	printErr    error
	printPanic  bool
	pdf         []byte

	calls      []string
	printOpts  PrintOptions
	closeCalls int
}

func newMockSession() *mockSession {
	return &mockSession{pdf: []byte("%PDF-1.4 mock")}
}

func (s *mockSession) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *mockSession) Navigate(_ context.Context, url string) error {
	s.record("navigate")
	return s.navigateErr
}

func (s *mockSession) WaitNetworkIdle(ctx context.Context) error {
	s.record("idle")
	if s.idleBlocks {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *mockSession) WaitSelector(_ context.Context, selector string) error {
	s.record("selector")
	return s.selectorErr
}

func (s *mockSession) EmulateScreenMedia(context.Context) error {
	s.record("media")
	return s.mediaErr
}

func (s *mockSession) PrintPDF(_ context.Context, opts PrintOptions) ([]byte, error) {
	s.record("print")
	if s.printPanic {
		panic("renderer crashed")
	}
	s.printOpts = opts
	return s.pdf, s.printErr
}

func (s *mockSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	return nil
}

type mockSink struct {
	err      error
	location string
	data     []byte
	writes   int
}

func (m *mockSink) Write(_ context.Context, location string, data []byte) (string, error) {
	m.writes++
	if m.err != nil {
		return "", m.err
	}
	m.location = location
	m.data = data
	return location, nil
}

// logRecorder collects funcr output lines.
type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *logRecorder) logger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.lines = append(r.lines, args)
	}, funcr.Options{Verbosity: 1})
}

func (r *logRecorder) contains(s string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// newTestPipeline wires mocks into a Pipeline.
func newTestPipeline(engine Engine, sink artifactSink, log logr.Logger, opts ...Option) *Pipeline {
	p := NewPipeline(append([]Option{WithEngine(engine), WithLogger(log)}, opts...)...)
	if sink != nil {
		p.sink = sink
	}
	return p
}

const testPageURL = "http://localhost:3000/dashboard/?print=1"

// ---------------------------------------------------------------------------
// TestPipeline_Run - Success path
// ---------------------------------------------------------------------------

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	session := newMockSession()
	engine := &mockEngine{session: session}
	sink := &mockSink{}
	rec := &logRecorder{}

	p := newTestPipeline(engine, sink, rec.logger())
	res, err := p.Run(context.Background(), CaptureRequest{
		URL:             testPageURL,
		OutputPath:      "/tmp/dashboard.pdf",
		Selector:        "div.header",
		Title:           "Dashboard",
		ShowPageNumbers: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.OutputPath != "/tmp/dashboard.pdf" && res.OutputPath != filepath.FromSlash("/tmp/dashboard.pdf") {
		t.Errorf("OutputPath = %q", res.OutputPath)
	}
	if res.Bytes != len(session.pdf) {
		t.Errorf("Bytes = %d, want %d", res.Bytes, len(session.pdf))
	}
	if string(sink.data) != string(session.pdf) {
		t.Errorf("sink received %q", sink.data)
	}

	want := []string{"navigate", "idle", "selector", "media", "print"}
	if strings.Join(session.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", session.calls, want)
	}
	if session.closeCalls != 1 {
		t.Errorf("Close called %d times, want 1", session.closeCalls)
	}
	if session.printOpts.HeaderTemplate == "" || session.printOpts.FooterTemplate == "" {
		t.Errorf("print options missing templates: %+v", session.printOpts)
	}

	for _, s := range []string{
		`"Generating PDF for URL : ` + testPageURL + `"`,
		`"PDF generated successfully!"`,
		`"to"="awaiting readiness"`,
		`"to"="closing"`,
		`"to"="done"`,
	} {
		if !rec.contains(s) {
			t.Errorf("log should contain %s, got %v", s, rec.lines)
		}
	}
}

func TestPipeline_Run_Elapsed(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(&mockEngine{session: newMockSession()}, &mockSink{}, logr.Discard())
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	calls := 0
	p.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 2 * time.Second)
	}

	res, err := p.Run(context.Background(), CaptureRequest{URL: testPageURL, OutputPath: "/tmp/x.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Elapsed != 2*time.Second {
		t.Errorf("Elapsed = %v, want 2s", res.Elapsed)
	}
}

// ---------------------------------------------------------------------------
// TestPipeline_Run_Failures - Error mapping and cleanup
// ---------------------------------------------------------------------------

func TestPipeline_Run_Failures(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	tests := []struct {
		name       string
		setup      func(*mockEngine, *mockSession, *mockSink)
		timeout    time.Duration
		wantErr    error
		wantState  State
		wantCloses int
	}{
		{
			name:       "launch",
			setup:      func(e *mockEngine, _ *mockSession, _ *mockSink) { e.launchErr = errBoom },
			wantErr:    ErrBrowserLaunch,
			wantState:  StateLaunching,
			wantCloses: 0,
		},
		{
			name:       "navigation",
			setup:      func(_ *mockEngine, s *mockSession, _ *mockSink) { s.navigateErr = errBoom },
			wantErr:    ErrNavigation,
			wantState:  StateNavigating,
			wantCloses: 1,
		},
		{
			name:       "readiness timeout",
			setup:      func(_ *mockEngine, s *mockSession, _ *mockSink) { s.idleBlocks = true },
			timeout:    50 * time.Millisecond,
			wantErr:    ErrReadinessTimeout,
			wantState:  StateAwaitingReadiness,
			wantCloses: 1,
		},
		{
			name:       "selector engine error",
			setup:      func(_ *mockEngine, s *mockSession, _ *mockSink) { s.selectorErr = errBoom },
			wantErr:    ErrReadiness,
			wantState:  StateAwaitingReadiness,
			wantCloses: 1,
		},
		{
			name:       "screen media",
			setup:      func(_ *mockEngine, s *mockSession, _ *mockSink) { s.mediaErr = errBoom },
			wantErr:    ErrPDFGeneration,
			wantState:  StateRendering,
			wantCloses: 1,
		},
		{
			name:       "print",
			setup:      func(_ *mockEngine, s *mockSession, _ *mockSink) { s.printErr = errBoom },
			wantErr:    ErrPDFGeneration,
			wantState:  StateRendering,
			wantCloses: 1,
		},
		{
			name:       "write",
			setup:      func(_ *mockEngine, _ *mockSession, k *mockSink) { k.err = errBoom },
			wantErr:    ErrWritePDF,
			wantState:  StateRendering,
			wantCloses: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := newMockSession()
			engine := &mockEngine{session: session}
			sink := &mockSink{}
			tt.setup(engine, session, sink)

			rec := &logRecorder{}
			var opts []Option
			if tt.timeout > 0 {
				opts = append(opts, WithTimeout(tt.timeout))
			}
			p := newTestPipeline(engine, sink, rec.logger(), opts...)

			res, err := p.Run(context.Background(), CaptureRequest{
				URL:        testPageURL,
				OutputPath: "/tmp/out.pdf",
				Selector:   "#ready",
			})
			if res != nil {
				t.Errorf("result = %+v, want nil", res)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			var stageErr *StageError
			if !errors.As(err, &stageErr) {
				t.Fatalf("error %v is not a StageError", err)
			}
			if stageErr.State != tt.wantState {
				t.Errorf("State = %v, want %v", stageErr.State, tt.wantState)
			}
			if session.closeCalls != tt.wantCloses {
				t.Errorf("Close called %d times, want %d", session.closeCalls, tt.wantCloses)
			}
			if tt.wantErr != ErrWritePDF && sink.writes != 0 {
				t.Errorf("sink written %d times on failure", sink.writes)
			}
			if !rec.contains(`"PDF generation failed"`) {
				t.Errorf("failure not logged: %v", rec.lines)
			}
			if !rec.contains(`"to"="failed"`) {
				t.Errorf("failed state not logged: %v", rec.lines)
			}
		})
	}
}

func TestPipeline_Run_InvalidRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     CaptureRequest
		wantErr error
	}{
		{"missing url", CaptureRequest{}, ErrNoURL},
		{"s3 output without key", CaptureRequest{URL: testPageURL, OutputPath: "s3://reports"}, ErrInvalidOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			engine := &mockEngine{session: newMockSession()}
			sink := &mockSink{}
			p := newTestPipeline(engine, sink, logr.Discard())

			_, err := p.Run(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if engine.launches != 0 {
				t.Errorf("engine launched %d times for an invalid request", engine.launches)
			}
		})
	}
}

func TestPipeline_Run_Panic(t *testing.T) {
	t.Parallel()

	session := newMockSession()
	session.printPanic = true
	p := newTestPipeline(&mockEngine{session: session}, &mockSink{}, logr.Discard())

	_, err := p.Run(context.Background(), CaptureRequest{URL: testPageURL, OutputPath: "/tmp/x.pdf"})
	if err == nil || !strings.Contains(err.Error(), "renderer crashed") {
		t.Fatalf("error = %v, want recovered panic", err)
	}
	if session.closeCalls != 1 {
		t.Errorf("Close called %d times, want 1", session.closeCalls)
	}
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	t.Parallel()

	session := newMockSession()
	session.idleBlocks = true
	p := newTestPipeline(&mockEngine{session: session}, &mockSink{}, logr.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := p.Run(ctx, CaptureRequest{URL: testPageURL, OutputPath: "/tmp/x.pdf"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if session.closeCalls != 1 {
		t.Errorf("Close called %d times, want 1", session.closeCalls)
	}
}

// ---------------------------------------------------------------------------
// TestPipeline_Run_Output - What ends up on disk
// ---------------------------------------------------------------------------

func TestPipeline_Run_Output(t *testing.T) {
	t.Parallel()

	t.Run("writes the PDF", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "reports", "dashboard.pdf")
		p := newTestPipeline(&mockEngine{session: newMockSession()}, nil, logr.Discard())

		res, err := p.Run(context.Background(), CaptureRequest{URL: testPageURL, OutputPath: out})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := os.ReadFile(res.OutputPath)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if string(data) != "%PDF-1.4 mock" {
			t.Errorf("content = %q", data)
		}
	})

	t.Run("failure leaves existing file untouched", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "dashboard.pdf")
		if err := os.WriteFile(out, []byte("previous"), 0o644); err != nil {
			t.Fatalf("seeding output: %v", err)
		}

		session := newMockSession()
		session.printErr = errors.New("target crashed")
		p := newTestPipeline(&mockEngine{session: session}, nil, logr.Discard())

		if _, err := p.Run(context.Background(), CaptureRequest{URL: testPageURL, OutputPath: out}); err == nil {
			t.Fatal("expected error, got nil")
		}
		data, _ := os.ReadFile(out)
		if string(data) != "previous" {
			t.Errorf("existing file changed to %q", data)
		}
	})

	t.Run("directory output fails without partial file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		p := newTestPipeline(&mockEngine{session: newMockSession()}, nil, logr.Discard())

		_, err := p.Run(context.Background(), CaptureRequest{URL: testPageURL, OutputPath: dir})
		if !errors.Is(err, ErrWritePDF) {
			t.Fatalf("error = %v, want ErrWritePDF", err)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("directory should stay empty, has %d entries", len(entries))
		}
	})
}

// ---------------------------------------------------------------------------
// TestOptions - Functional options
// ---------------------------------------------------------------------------

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	p := NewPipeline(WithEngine(&mockEngine{}), WithTimeout(time.Minute))
	if p.Timeout() != time.Minute {
		t.Errorf("Timeout() = %v, want 1m", p.Timeout())
	}

	if got := NewPipeline(WithEngine(&mockEngine{})).Timeout(); got != DefaultTimeout {
		t.Errorf("default Timeout() = %v, want %v", got, DefaultTimeout)
	}
}

func TestOptions_Panics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func()
	}{
		{"zero timeout", func() { WithTimeout(0) }},
		{"negative timeout", func() { WithTimeout(-time.Second) }},
		{"nil engine", func() { WithEngine(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.fn()
		})
	}
}

func TestNewPipeline_DefaultEngine(t *testing.T) {
	t.Parallel()

	p := NewPipeline()
	if p.engine.Name() != EngineRod {
		t.Errorf("default engine = %q, want %q", p.engine.Name(), EngineRod)
	}
}
