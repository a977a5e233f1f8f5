package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/supptracker/compound-registry/pkg/kit"
)

// recoverPanics converts an endpoint panic into an error so one bad
// request cannot take down the server.
func recoverPanics(name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (response any, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s: panic: %v", name, r)
				}
			}()
			return next(ctx, request)
		}
	}
}

// logCalls emits a debug line per endpoint invocation.
func logCalls(logger *slog.Logger, name string) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, request)
			logger.Debug("endpoint call",
				"endpoint", name,
				"transport", kit.GetTransport(ctx),
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return resp, err
		}
	}
}

// wrap applies the standard endpoint middleware stack.
func wrap(logger *slog.Logger, name string, ep kit.Endpoint) kit.Endpoint {
	return kit.Chain(recoverPanics(name), logCalls(logger, name))(ep)
}
