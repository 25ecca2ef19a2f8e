package main

import (
	"bytes"
	"context"
	"sync"
	"testing"

	pooppdf "github.com/alnah/go-pooppdf"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake browser engine
// ---------------------------------------------------------------------------

const fakePDF = "%PDF-1.4 fake"

type fakeEngine struct {
	launchErr error
	session   *fakeSession
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Launch(context.Context) (pooppdf.Session, error) {
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	return e.session, nil
}

type fakeSession struct {
	mu        sync.Mutex
	url       string
	selector  string
	opts      pooppdf.PrintOptions
	waitErr   error
	closed    int
	navigated bool
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
	s.navigated = true
	return nil
}

func (s *fakeSession) WaitNetworkIdle(context.Context) error { return nil }

func (s *fakeSession) WaitSelector(_ context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selector = selector
	return s.waitErr
}

func (s *fakeSession) EmulateScreenMedia(context.Context) error { return nil }

func (s *fakeSession) PrintPDF(_ context.Context, opts pooppdf.PrintOptions) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	return []byte(fakePDF), nil
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// testEnv returns an Environment with captured output and a fake engine.
// The requested engine name and config are recorded in gotEngine/gotCfg.
type testEnv struct {
	*Environment
	stdout    *bytes.Buffer
	stderr    *bytes.Buffer
	engine    *fakeEngine
	gotEngine string
	gotCfg    pooppdf.EngineConfig
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		engine: &fakeEngine{session: &fakeSession{}},
	}
	te.Environment = &Environment{
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewEngine: func(name string, cfg pooppdf.EngineConfig) (pooppdf.Engine, error) {
			te.gotEngine = name
			te.gotCfg = cfg
			return te.engine, nil
		},
	}
	return te
}
