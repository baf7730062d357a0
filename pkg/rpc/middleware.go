package rpc

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/nvim-tools/nvrpc/pkg/log"
)

// CallHandler is the terminal step of an outbound call: it puts the frame
// on the wire (and, for requests, waits for the matching response).
type CallHandler func(ctx context.Context, method string, params []any) (any, error)

// Middleware wraps outbound calls made through Notify and Request.
type Middleware func(ctx context.Context, method string, params []any, next CallHandler) (any, error)

func buildCallChain(middleware []Middleware, final CallHandler) CallHandler {

	// apply middleware from first registered down to the final handler

	chain := final

	for i := len(middleware) - 1; i >= 0; i-- {
		m := middleware[i]

		next := chain
		chain = func(ctx context.Context, method string, params []any) (any, error) {
			return m(ctx, method, params, next)
		}
	}

	return chain
}

// WithLogging logs every outbound call with its duration and outcome.
func WithLogging(logger log.Logger) Middleware {
	return func(ctx context.Context, method string, params []any, next CallHandler) (any, error) {
		start := time.Now()
		result, err := next(ctx, method, params)
		elapsed := time.Since(start)
		if err != nil {
			logger.Warn(fmt.Sprintf("call %s failed after %s: %v", method, elapsed, err))
		} else {
			logger.Debug(fmt.Sprintf("call %s completed in %s", method, elapsed))
		}
		return result, err
	}
}

// WithRateLimit delays outbound calls to stay within the given limit.
func WithRateLimit(limiter *rate.Limiter) Middleware {
	return func(ctx context.Context, method string, params []any, next CallHandler) (any, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return next(ctx, method, params)
	}
}
