package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"billrecon/internal/port"
)

// circuitState tracks rate-limit backoff for a single extractor.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackOption configures a FallbackExtractor.
type FallbackOption func(*FallbackExtractor)

// WithLogger sets the logger used to report skipped and failed providers.
func WithLogger(log *zap.Logger) FallbackOption {
	return func(f *FallbackExtractor) {
		if log != nil {
			f.log = log
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) FallbackOption {
	return func(f *FallbackExtractor) {
		f.now = now
	}
}

// FallbackExtractor tries extractors in order, skipping those with open circuits.
// It implements port.PageExtractor.
type FallbackExtractor struct {
	extractors []port.PageExtractor
	circuits   []*circuitState
	names      []string
	log        *zap.Logger
	now        func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered list of extractors and their names.
func NewFallbackExtractor(extractors []port.PageExtractor, names []string, opts ...FallbackOption) *FallbackExtractor {
	circuits := make([]*circuitState, len(extractors))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	f := &FallbackExtractor{
		extractors: extractors,
		circuits:   circuits,
		names:      names,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.Named("parser.fallback")
	return f
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, ex := range f.extractors {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.log.Info("skipping provider, circuit open",
				zap.String("provider", f.names[i]),
				zap.Time("reset_at", resetAt))
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		out, err := ex.Extract(ctx, input)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		f.log.Warn("provider failed", zap.String("provider", f.names[i]), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	// lastErr == nil means every extractor was skipped due to an open circuit.
	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
	}

	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}
