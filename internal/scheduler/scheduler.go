package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/civicworks/parkledger/internal/clock"
	ledgerdomain "github.com/civicworks/parkledger/internal/ledger/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: missing dependencies")

type Params struct {
	fx.In

	Log       *zap.Logger
	LedgerSvc ledgerdomain.Service
	Clock     clock.Clock
	Config    Config `optional:"true"`
}

// Scheduler periodically reconciles payments that have no income entry yet.
// Each sweep is independently idempotent, so an interrupted run leaves no
// partial state behind.
type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	clock     clock.Clock
	ledgerSvc ledgerdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.LedgerSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:       p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:       p.Config.withDefaults(),
		clock:     p.Clock,
		ledgerSvc: p.LedgerSvc,
	}, nil
}

// RunOnce executes a single sweep with the configured timeout.
func (s *Scheduler) RunOnce(parent context.Context) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.RunTimeout)
	defer cancel()

	report, err := s.ledgerSvc.SyncExistingPayments(ctx)
	elapsed := s.clock.Now().Sub(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.log.Warn("sync sweep interrupted",
				zap.Duration("elapsed", elapsed),
				zap.Int("created", report.Created),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	s.log.Info("sync sweep completed",
		zap.Duration("elapsed", elapsed),
		zap.Int("scanned", report.Scanned),
		zap.Int("created", report.Created),
		zap.Int("failed", report.FailureCount()),
	)
	return nil
}

// RunForever runs sweeps on the configured interval until ctx is canceled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
