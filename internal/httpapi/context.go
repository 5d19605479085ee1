package httpapi

import (
	"context"
	"time"
)

// serverBaseCtx is canceled on shutdown so in-flight batch scoring stops too.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context canceled when either a or b is done. Values
// come from b (the request), so request ids stay reachable. The returned
// cancel func must be called to release the watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(b)
	stop := context.AfterFunc(a, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// workContext joins the request with the server base context and applies the
// configured prediction timeout.
func workContext(reqCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := joinContexts(serverBaseCtx, reqCtx)
	if predictTimeout <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, time.Duration(predictTimeout)*time.Second)
	return tctx, func() {
		tcancel()
		cancel()
	}
}
