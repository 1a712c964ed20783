// AngelaMos | 2026
// poller.go

package payment

import (
	"context"
	"log/slog"
	"time"
)

type Sweeper interface {
	Sweep(ctx context.Context, limit int) (SweepResult, error)
}

// Poller periodically reconciles pending invoiced orders so a missed
// gateway notification does not leave an order stuck in pending.
type Poller struct {
	sweeper   Sweeper
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
}

func NewPoller(
	sweeper Sweeper,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		sweeper:   sweeper,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run blocks until ctx is cancelled. A zero interval disables polling.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		p.logger.Info("payment poller disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("payment poller started",
		"interval", p.interval.String(),
		"batch_size", p.batchSize,
	)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("payment poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	result, err := p.sweeper.Sweep(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.ErrorContext(ctx, "payment sweep failed", "error", err)
		}
		return
	}

	if result.Checked > 0 {
		p.logger.InfoContext(ctx, "payment sweep finished",
			"checked", result.Checked,
			"failed", result.Failed,
		)
	}
}
