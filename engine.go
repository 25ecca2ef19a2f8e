package pooppdf

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Engine starts browser sessions.
type Engine interface {
	Name() string
	// Launch starts a fresh browser process with one blank page.
	Launch(ctx context.Context) (Session, error)
}

// Session owns one browser process and one page. It is used by a single
// pipeline run and must be closed exactly once.
type Session interface {
	ReadinessTarget

	// Navigate loads url and returns once the navigation committed.
	// It arms the network idle watcher used by WaitNetworkIdle.
	Navigate(ctx context.Context, url string) error

	// EmulateScreenMedia makes the page use its screen stylesheets when printing.
	EmulateScreenMedia(ctx context.Context) error

	// PrintPDF renders the page and returns the complete PDF.
	PrintPDF(ctx context.Context, opts PrintOptions) ([]byte, error)

	// Close terminates the page and the browser process.
	Close() error
}

// Engine names accepted by NewEngine.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// EngineConfig configures how the browser is started.
// Empty fields fall back to ROD_BROWSER_BIN, ROD_NO_SANDBOX and CI.
type EngineConfig struct {
	Bin       string // Chrome/Chromium binary (empty = auto-detect or download)
	NoSandbox bool   // Required in most containers
}

// NewEngine returns the engine registered under name. Empty selects rod.
func NewEngine(name string, cfg EngineConfig) (Engine, error) {
	cfg = cfg.withEnv(os.Getenv)

	switch strings.ToLower(name) {
	case "", EngineRod:
		return newRodEngine(cfg), nil
	case EngineChromedp:
		return newChromedpEngine(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %s, %s)", ErrUnknownEngine, name, EngineRod, EngineChromedp)
	}
}

// withEnv fills unset fields from the environment.
func (c EngineConfig) withEnv(getenv func(string) string) EngineConfig {
	if c.Bin == "" {
		c.Bin = getenv("ROD_BROWSER_BIN")
	}
	// Pre-installed browsers in Docker/CI rarely have a usable sandbox
	if !c.NoSandbox {
		c.NoSandbox = getenv("ROD_NO_SANDBOX") == "1" || getenv("CI") == "true" || getenv("ROD_BROWSER_BIN") != ""
	}
	return c
}

// Paper geometry. Chrome takes inches; the layout is expressed in CSS pixels.
const (
	cssPixelsPerInch  = 96
	paperHeightInches = 11 // US Letter height, Chrome's default
	emptyTemplate     = "<span></span>"
)

// launchWithin runs start until it returns or ctx ends, whichever comes
// first. A session that comes up after ctx ended is closed once start returns.
func launchWithin(ctx context.Context, start func() (Session, error)) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type launched struct {
		session Session
		err     error
	}
	done := make(chan launched, 1)
	go func() {
		s, err := start()
		done <- launched{session: s, err: err}
	}()

	select {
	case l := <-done:
		return l.session, l.err
	case <-ctx.Done():
		go func() {
			if l := <-done; l.session != nil {
				_ = l.session.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func pxToInches(px int) float64 {
	return float64(px) / cssPixelsPerInch
}

// templateOrEmpty keeps the header/footer area reserved but blank when no
// template is set. Chrome would otherwise print its default date and URL.
func templateOrEmpty(tpl string) string {
	if tpl == "" {
		return emptyTemplate
	}
	return tpl
}

// selectorProbeJS resolves once document.querySelector(selector) matches.
// The check reruns on every DOM mutation; the observer disconnects itself.
const selectorProbeJS = `(selector) => new Promise((resolve) => {
	if (document.querySelector(selector)) {
		resolve(true);
		return;
	}
	const observer = new MutationObserver(() => {
		if (document.querySelector(selector)) {
			observer.disconnect();
			resolve(true);
		}
	});
	observer.observe(document, { childList: true, subtree: true, attributes: true });
})`
