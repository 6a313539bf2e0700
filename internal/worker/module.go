package worker

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/eventmart/internal/config"
	"github.com/polkiloo/eventmart/internal/metrics"
)

// Module provides the settlement tracker.
var Module = fx.Provide(newSettlementTracker)

type trackerParams struct {
	fx.In

	Checker SettlementChecker
	Config  *config.Config
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func newSettlementTracker(p trackerParams) *SettlementTracker {
	return NewSettlementTracker(
		p.Checker,
		p.Config.SettlementPollInterval,
		p.Config.SettlementTimeout,
		p.Config.SettlementWorkers,
		p.Metrics,
		p.Logger,
	)
}
