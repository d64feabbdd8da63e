// Package resilient wraps an embedding provider with batching, rate limiting,
// per-call timeouts, retries and a circuit breaker.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/novelcheck/internal/adapters/driven/embedding"
	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
	"github.com/custodia-labs/novelcheck/internal/logger"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default tuning values.
const (
	DefaultInitialInterval  = 250 * time.Millisecond
	DefaultMaxInterval      = 5 * time.Second
	DefaultMaxElapsedTime   = 2 * time.Minute
	DefaultBreakerTimeout   = 30 * time.Second
	DefaultFailureThreshold = 5
)

// Config controls how calls to the wrapped provider are issued.
type Config struct {
	// BatchSize is the maximum number of texts per provider call.
	BatchSize int

	// Concurrency is the maximum number of provider calls in flight.
	Concurrency int

	// RequestsPerSecond is the sustained provider call rate.
	RequestsPerSecond float64

	// Timeout bounds each provider call.
	Timeout time.Duration

	// MaxRetries is the number of retries after a transient failure.
	MaxRetries int

	// InitialInterval and MaxInterval shape the exponential backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// ConfigFromSettings maps embedding settings onto a Config.
func ConfigFromSettings(s domain.EmbeddingSettings) Config {
	return Config{
		BatchSize:         s.BatchSize,
		Concurrency:       s.Concurrency,
		RequestsPerSecond: s.RequestsPerSecond,
		Timeout:           s.Timeout,
		MaxRetries:        s.MaxRetries,
	}
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = domain.DefaultEmbeddingBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = domain.DefaultEmbeddingConcurrency
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = domain.DefaultRequestsPerSecond
	}
	if c.Timeout <= 0 {
		c.Timeout = domain.DefaultEmbeddingTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = DefaultMaxInterval
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = DefaultBreakerTimeout
	}
	return c
}

// Service is a driven.EmbeddingService decorator.
type Service struct {
	inner   driven.EmbeddingService
	cfg     Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// New wraps inner. Zero Config fields take their defaults.
func New(inner driven.EmbeddingService, cfg Config) *Service {
	cfg = cfg.withDefaults()

	burst := cfg.Concurrency
	if burst < 1 {
		burst = 1
	}

	return &Service{
		inner:   inner,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "embedding:" + inner.ModelName(),
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.FailureThreshold
			},
			// A rejected request says nothing about provider health.
			IsSuccessful: func(err error) bool {
				return err == nil || embedding.IsPermanent(err) || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// Embed generates a vector embedding for one text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch splits texts into sub-batches, embeds them concurrently and
// reassembles the vectors in input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for start := 0; start < len(texts); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(texts))
		g.Go(func() error {
			vecs, err := s.call(gctx, texts[start:end])
			if err != nil {
				return err
			}
			if len(vecs) != end-start {
				return fmt.Errorf("%w: provider returned %d vectors for %d texts",
					domain.ErrConfiguration, len(vecs), end-start)
			}
			copy(results[start:end], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(results[0])
	for i, vec := range results {
		if len(vec) == 0 || len(vec) != dim {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				domain.ErrConfiguration, i, len(vec), dim)
		}
	}

	logger.Debug("embedded %d texts in %d batches", len(texts), (len(texts)+s.cfg.BatchSize-1)/s.cfg.BatchSize)
	return results, nil
}

// call embeds one sub-batch with rate limiting, timeout, breaker and retries.
func (s *Service) call(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32

	operation := func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		res, err := s.breaker.Execute(func() (interface{}, error) {
			callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
			return s.inner.EmbedBatch(callCtx, texts)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) ||
				errors.Is(err, gobreaker.ErrTooManyRequests) ||
				embedding.IsPermanent(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		out, _ = res.([][]float32)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.InitialInterval
	b.MaxInterval = s.cfg.MaxInterval
	b.MaxElapsedTime = DefaultMaxElapsedTime

	// #nosec G115 -- MaxRetries is clamped to be non-negative
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.cfg.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		logger.Debug("embedding call failed, retrying in %s: %v", wait.Round(time.Millisecond), err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, providerError(err)
	}
	return out, nil
}

// providerError classifies a failed call as ErrProviderUnavailable unless it
// already carries a domain kind.
func providerError(err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}

// Dimensions returns the wrapped provider's vector size.
func (s *Service) Dimensions() int {
	return s.inner.Dimensions()
}

// ModelName returns the wrapped provider's model name.
func (s *Service) ModelName() string {
	return s.inner.ModelName()
}

// Ping checks the wrapped provider within the call timeout.
func (s *Service) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := s.inner.Ping(pingCtx); err != nil {
		return providerError(err)
	}
	return nil
}

// Close releases the wrapped provider.
func (s *Service) Close() error {
	return s.inner.Close()
}
