// Package resilience wraps upstream provider calls with retry and circuit breaking.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"ratesvc/internal/metrics"
	"ratesvc/internal/provider"
)

// ErrCircuitOpen indicates the provider's breaker is open and the call was
// rejected without touching the network.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Config holds retry and breaker policy settings for one Invoker.
type Config struct {
	// RetryMaxAttempts is the number of additional attempts after the first
	// failure. Only transient failures are retried.
	RetryMaxAttempts int
	// RetryInitialBackoff is the delay before the first retry; subsequent
	// delays double (no jitter, so backoff timing is deterministic).
	RetryInitialBackoff time.Duration
	// BreakerFailureLimit is the number of consecutive transient failures
	// that opens the breaker.
	BreakerFailureLimit int
	// BreakerCooldown is how long the breaker stays open before allowing a
	// half-open trial call.
	BreakerCooldown time.Duration
}

// Invoker executes provider calls under a circuit breaker that wraps a
// bounded retry sequence. One Invoker exists per provider and is shared by
// all concurrent callers; breaker state is process-wide.
type Invoker struct {
	name    string
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
}

// NewInvoker creates an Invoker for the named provider. The metrics argument
// may be nil.
func NewInvoker(name string, cfg Config, logger *zap.SugaredLogger, m *metrics.Metrics) *Invoker {
	inv := &Invoker{
		name:    name,
		cfg:     cfg,
		log:     logger,
		metrics: m,
	}

	inv.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // single half-open trial after cooldown
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailureLimit)
		},
		// Only transient upstream failures count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, provider.ErrUpstreamUnavailable)
		},
		OnStateChange: inv.onStateChange,
	})

	return inv
}

// Do runs op under the breaker and retry policies. The breaker decides
// whether the retry sequence is attempted at all; an open breaker returns
// ErrCircuitOpen immediately.
func (i *Invoker) Do(ctx context.Context, op func(context.Context) error) error {
	_, err := i.breaker.Execute(func() (any, error) {
		return nil, i.retry(ctx, op)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: provider %s is cooling down", ErrCircuitOpen, i.name)
	}
	return err
}

func (i *Invoker) retry(ctx context.Context, op func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = i.cfg.RetryInitialBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		err := op(ctx)
		if err != nil && !errors.Is(err, provider.ErrUpstreamUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		attempt++
		i.log.Warnw("Retrying upstream call",
			"provider", i.name,
			"attempt", attempt,
			"backoff", next,
			"error", err,
		)
		if i.metrics != nil {
			i.metrics.RetriesTotal.WithLabelValues(i.name).Inc()
		}
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), uint64(i.cfg.RetryMaxAttempts))
	return backoff.RetryNotify(operation, policy, notify)
}

func (i *Invoker) onStateChange(name string, from, to gobreaker.State) {
	switch to {
	case gobreaker.StateOpen:
		i.log.Errorw("Circuit breaker opened",
			"provider", name,
			"cooldown", i.cfg.BreakerCooldown,
		)
	case gobreaker.StateClosed:
		i.log.Infow("Circuit breaker reset", "provider", name)
	case gobreaker.StateHalfOpen:
		i.log.Infow("Circuit breaker half-open", "provider", name)
	}
	if i.metrics != nil {
		i.metrics.BreakerTransitionsTotal.WithLabelValues(name, to.String()).Inc()
	}
}
