package pooppdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-pooppdf/internal/process"
)

// Compile-time interface checks
var (
	_ Engine  = (*rodEngine)(nil)
	_ Session = (*rodSession)(nil)
)

// errNotNavigated is returned when readiness is awaited before Navigate.
var errNotNavigated = errors.New("page has not been navigated")

// rodEngine launches Chrome through go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodEngine struct {
	cfg EngineConfig
}

func newRodEngine(cfg EngineConfig) *rodEngine {
	return &rodEngine{cfg: cfg}
}

func (e *rodEngine) Name() string { return EngineRod }

// Launch starts a browser and opens a blank page in it.
// The browser download, process start and CDP connection are all bounded by ctx.
func (e *rodEngine) Launch(ctx context.Context) (Session, error) {
	return launchWithin(ctx, func() (Session, error) {
		s, err := e.launch(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (e *rodEngine) launch(ctx context.Context) (*rodSession, error) {
	l := launcher.New().Context(ctx)
	if e.cfg.Bin != "" {
		l = l.Bin(e.cfg.Bin)
	}
	if e.cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		// The process may be up even though its URL never arrived
		l.Kill()
		return nil, err
	}

	s := &rodSession{launcher: l, pid: l.PID()}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("connecting: %w", err)
	}
	// Close must still reach the browser after ctx is done
	s.browser = browser.Context(context.Background())

	s.page, err = browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}
	s.page = s.page.Context(context.Background())

	return s, nil
}

// rodSession is one browser process with one page.
type rodSession struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	pid         int
	networkIdle func()
	closeOnce   sync.Once
	closeErr    error
}

// Navigate arms the network idle watcher, then starts the navigation.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	idle, err := watchNetworkIdle(page)
	if err != nil {
		return err
	}
	s.networkIdle = idle
	return page.Navigate(url)
}

// watchNetworkIdle waits for Chrome's networkIdle lifecycle event on the
// main frame: no connections for 500ms after the navigation started.
// Events from iframes and from the previous document are ignored.
func watchNetworkIdle(page *rod.Page) (func(), error) {
	if err := (proto.PageSetLifecycleEventsEnabled{Enabled: true}).Call(page); err != nil {
		return nil, fmt.Errorf("enabling lifecycle events: %w", err)
	}

	mainFrame := page.FrameID
	started := false
	wait := page.EachEvent(func(e *proto.PageLifecycleEvent) bool {
		if e.FrameID != mainFrame {
			return false
		}
		switch e.Name {
		case proto.PageLifecycleEventNameInit:
			started = true
		case proto.PageLifecycleEventNameNetworkIdle:
			return started
		}
		return false
	})
	return wait, nil
}

// WaitNetworkIdle blocks on the watcher armed by Navigate. The watcher is
// bound to the context given to Navigate.
func (s *rodSession) WaitNetworkIdle(ctx context.Context) error {
	if s.networkIdle == nil {
		return errNotNavigated
	}
	s.networkIdle()
	return ctx.Err()
}

func (s *rodSession) WaitSelector(ctx context.Context, selector string) error {
	_, err := s.page.Context(ctx).Evaluate(rod.Eval(selectorProbeJS, selector).ByPromise())
	return err
}

func (s *rodSession) EmulateScreenMedia(ctx context.Context) error {
	return proto.EmulationSetEmulatedMedia{Media: "screen"}.Call(s.page.Context(ctx))
}

// PrintPDF renders the page and reads the whole PDF stream.
func (s *rodSession) PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	reader, err := s.page.Context(ctx).PDF(buildRodPDFParams(opts))
	if err != nil {
		return nil, err
	}

	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading PDF stream: %w", err)
	}
	return buf, nil
}

// Close shuts the browser down. Chrome child processes that outlive the
// CDP close are killed with the process group.
func (s *rodSession) Close() error {
	s.closeOnce.Do(func() {
		if s.browser != nil {
			s.closeErr = s.browser.Close()
		}
		process.KillProcessGroup(s.pid)
		s.launcher.Kill()
		s.launcher.Cleanup()
	})
	return s.closeErr
}

// buildRodPDFParams converts pixel-based print options to Chrome's inches.
func buildRodPDFParams(opts PrintOptions) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		DisplayHeaderFooter: opts.DisplayHeaderFooter,
		Scale:               floatPtr(opts.Scale),
		PaperWidth:          floatPtr(pxToInches(opts.WidthPx)),
		PaperHeight:         floatPtr(paperHeightInches),
		MarginTop:           floatPtr(pxToInches(opts.Margins.Top)),
		MarginBottom:        floatPtr(pxToInches(opts.Margins.Bottom)),
		MarginLeft:          floatPtr(0),
		MarginRight:         floatPtr(0),
		HeaderTemplate:      templateOrEmpty(opts.HeaderTemplate),
		FooterTemplate:      templateOrEmpty(opts.FooterTemplate),
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
