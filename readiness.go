package pooppdf

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NetworkIdleWindow is how long the page must have no in-flight requests
// before the network counts as settled.
const NetworkIdleWindow = 500 * time.Millisecond

// ReadinessTarget is the part of a Session the readiness gate drives.
type ReadinessTarget interface {
	// WaitNetworkIdle blocks until the navigated page had no network
	// connections for NetworkIdleWindow.
	WaitNetworkIdle(ctx context.Context) error

	// WaitSelector blocks until document.querySelector(selector) matches.
	// Implementations re-check on DOM mutations rather than on a timer.
	WaitSelector(ctx context.Context, selector string) error
}

// AwaitReady blocks until the page is ready to be captured: network idle
// first, then the selector match when selector is non-empty.
// The context deadline bounds the whole wait; exceeding it returns
// ErrReadinessTimeout. The page is never modified.
func AwaitReady(ctx context.Context, target ReadinessTarget, selector string) error {
	if err := target.WaitNetworkIdle(ctx); err != nil {
		return readinessError(ctx, "network idle", err)
	}

	if selector == "" {
		return nil
	}

	if err := target.WaitSelector(ctx, selector); err != nil {
		return readinessError(ctx, fmt.Sprintf("selector %q", selector), err)
	}
	return nil
}

// readinessError classifies a failed wait as a timeout, a cancellation or
// an engine failure.
func readinessError(ctx context.Context, waitingFor string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrReadinessTimeout, waitingFor)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("waiting for %s: %w", waitingFor, ctxErr)
	}
	return fmt.Errorf("%w: waiting for %s: %v", ErrReadiness, waitingFor, err)
}
