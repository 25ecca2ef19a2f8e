package pooppdf

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Compile-time interface checks
var (
	_ Engine  = (*chromedpEngine)(nil)
	_ Session = (*chromedpSession)(nil)
)

// chromedpEngine drives an installed Chrome through chromedp.
// Unlike rod it never downloads a browser.
type chromedpEngine struct {
	cfg EngineConfig
}

func newChromedpEngine(cfg EngineConfig) *chromedpEngine {
	return &chromedpEngine{cfg: cfg}
}

func (e *chromedpEngine) Name() string { return EngineChromedp }

// Launch starts Chrome and attaches to its first tab.
// The process start is bounded by ctx; the running browser is not.
func (e *chromedpEngine) Launch(ctx context.Context) (Session, error) {
	return launchWithin(ctx, func() (Session, error) {
		s, err := e.launch(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (e *chromedpEngine) launch(ctx context.Context) (*chromedpSession, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), e.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &chromedpSession{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
	}

	// Kills the starting process when ctx ends before the browser is up
	stop := context.AfterFunc(ctx, allocCancel)
	defer stop()

	// The first Run allocates the browser. It must run on the tab context
	// itself: a derived context would kill the browser when it ends.
	if err := chromedp.Run(tabCtx); err != nil {
		_ = s.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	return s, nil
}

func (e *chromedpEngine) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
	)
	if e.cfg.Bin != "" {
		opts = append(opts, chromedp.ExecPath(e.cfg.Bin))
	}
	if e.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// chromedpSession is one Chrome process with one tab.
type chromedpSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	idle        chan struct{}
	closeOnce   sync.Once
	closeErr    error
}

// run executes actions on the tab, aborting when ctx ends.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Navigate arms the network idle watcher, then loads url.
func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, page.SetLifecycleEventsEnabled(true)); err != nil {
		return fmt.Errorf("enabling lifecycle events: %w", err)
	}

	idle := make(chan struct{})
	s.idle = idle

	// The first init event of the navigation belongs to the main frame;
	// networkIdle from iframes is ignored.
	var (
		mainFrame cdp.FrameID
		once      sync.Once
	)
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}
		switch e.Name {
		case "init":
			if mainFrame == "" {
				mainFrame = e.FrameID
			}
		case "networkIdle":
			if mainFrame != "" && e.FrameID == mainFrame {
				once.Do(func() { close(idle) })
			}
		}
	})

	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromedpSession) WaitNetworkIdle(ctx context.Context) error {
	if s.idle == nil {
		return errNotNavigated
	}
	select {
	case <-s.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *chromedpSession) WaitSelector(ctx context.Context, selector string) error {
	arg, err := json.Marshal(selector)
	if err != nil {
		return fmt.Errorf("encoding selector: %w", err)
	}
	expr := "(" + selectorProbeJS + ")(" + string(arg) + ")"

	var matched bool
	return s.run(ctx, chromedp.Evaluate(expr, &matched, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}))
}

func (s *chromedpSession) EmulateScreenMedia(ctx context.Context) error {
	return s.run(ctx, emulation.SetEmulatedMedia().WithMedia("screen"))
}

func (s *chromedpSession) PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error) {
	var buf []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = buildChromedpPDFParams(opts).Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the tab, then stops the browser process.
func (s *chromedpSession) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}

// buildChromedpPDFParams converts pixel-based print options to Chrome's inches.
// Side margins are left at zero, which is sent as 0 like the rod params.
func buildChromedpPDFParams(opts PrintOptions) *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithDisplayHeaderFooter(opts.DisplayHeaderFooter).
		WithScale(opts.Scale).
		WithPaperWidth(pxToInches(opts.WidthPx)).
		WithPaperHeight(paperHeightInches).
		WithMarginTop(pxToInches(opts.Margins.Top)).
		WithMarginBottom(pxToInches(opts.Margins.Bottom)).
		WithHeaderTemplate(templateOrEmpty(opts.HeaderTemplate)).
		WithFooterTemplate(templateOrEmpty(opts.FooterTemplate))
}
