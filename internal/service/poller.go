package service

import (
	"context"
	"time"

	"github.com/distinctmentorship/payments/internal/constants"
	"github.com/distinctmentorship/payments/internal/metrics"
	"github.com/distinctmentorship/payments/internal/provider"
	"go.uber.org/zap"
)

type PollerConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

// Poller drives resolution for a caller that wants a final answer: sleep,
// resolve, repeat until the status is terminal or attempts run out.
type Poller interface {
	PollUntilTerminal(ctx context.Context, checkoutID string) (provider.Result, error)
}

type poller struct {
	resolver Resolver
	config   PollerConfig
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewPoller(resolver Resolver, config PollerConfig, log *zap.Logger, metrics *metrics.Metrics) Poller {
	if config.Interval <= 0 {
		config.Interval = 3 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 20
	}
	return &poller{resolver: resolver, config: config, log: log, metrics: metrics}
}

// PollUntilTerminal returns the first terminal result, the caller's
// cancellation error, or CONFIRMATION_TIMEOUT after exhausting attempts.
// The timeout is a "could not confirm" verdict on the polling, never on the
// charge itself: the record may still settle afterwards.
func (p *poller) PollUntilTerminal(ctx context.Context, checkoutID string) (provider.Result, error) {
	timer := time.NewTimer(p.config.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return provider.Result{}, ctx.Err()
		case <-timer.C:
		}

		result, err := p.resolver.Resolve(ctx, checkoutID)
		if err != nil {
			return provider.Result{}, err
		}

		if !result.Pending {
			p.log.Info("poll resolved terminal status",
				zap.String("checkout_id", checkoutID),
				zap.String("status", string(result.Status())),
				zap.Int("attempts", attempt),
			)
			return result, nil
		}

		timer.Reset(p.config.Interval)
	}

	p.metrics.RecordPollTimeout()
	p.log.Warn("poll exhausted without terminal status",
		zap.String("checkout_id", checkoutID),
		zap.Int("attempts", p.config.MaxAttempts),
	)

	return provider.Result{}, NewServiceError(constants.ErrCodeConfirmationTimeout, context.DeadlineExceeded)
}
