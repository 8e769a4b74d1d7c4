package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicworks/parkledger/internal/clock"
	ledgerdomain "github.com/civicworks/parkledger/internal/ledger/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mockLedgerSvc struct {
	syncCalls int
	syncErr   error
	report    ledgerdomain.SyncReport
	lastCtx   context.Context
	onSync    func()
}

func (m *mockLedgerSvc) ProcessPayment(ctx context.Context, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	return ledgerdomain.IncomeEntry{}, nil
}

func (m *mockLedgerSvc) UpdateIncomeForPayment(ctx context.Context, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	return ledgerdomain.IncomeEntry{}, nil
}

func (m *mockLedgerSvc) RemoveIncomeForPayment(ctx context.Context, paymentID int64) ([]ledgerdomain.IncomeEntry, error) {
	return nil, nil
}

func (m *mockLedgerSvc) SyncExistingPayments(ctx context.Context) (ledgerdomain.SyncReport, error) {
	m.syncCalls++
	m.lastCtx = ctx
	if m.onSync != nil {
		m.onSync()
	}
	return m.report, m.syncErr
}

func newTestScheduler(t *testing.T, svc ledgerdomain.Service, cfg Config) *Scheduler {
	t.Helper()

	sched, err := New(Params{
		Log:       zap.NewNop(),
		LedgerSvc: svc,
		Clock:     clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return sched
}

func TestRunOnceDrivesSync(t *testing.T) {
	svc := &mockLedgerSvc{report: ledgerdomain.SyncReport{Scanned: 2, Created: 2}}
	sched := newTestScheduler(t, svc, Config{})

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if svc.syncCalls != 1 {
		t.Fatalf("expected 1 sync call, got %d", svc.syncCalls)
	}
}

func TestRunOncePropagatesFailure(t *testing.T) {
	svc := &mockLedgerSvc{syncErr: errors.New("store down")}
	sched := newTestScheduler(t, svc, Config{})

	if err := sched.RunOnce(context.Background()); err == nil {
		t.Fatal("expected error from failed sweep")
	}
}

func TestRunOnceSwallowsTimeout(t *testing.T) {
	svc := &mockLedgerSvc{syncErr: context.DeadlineExceeded}
	sched := newTestScheduler(t, svc, Config{})

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("timeout should be a soft failure, got %v", err)
	}
}

func TestRunOnceAppliesTimeout(t *testing.T) {
	svc := &mockLedgerSvc{}
	sched := newTestScheduler(t, svc, Config{RunTimeout: time.Second})

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if _, ok := svc.lastCtx.Deadline(); !ok {
		t.Fatal("expected a deadline on the sweep context")
	}
}

func TestRunOnceMeasuresElapsedWithInjectedClock(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := &mockLedgerSvc{onSync: func() { fake.Advance(42 * time.Second) }}

	core, logs := observer.New(zap.InfoLevel)
	sched, err := New(Params{
		Log:       zap.New(core),
		LedgerSvc: svc,
		Clock:     fake,
		Config:    Config{},
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}

	if err := sched.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	entries := logs.FilterMessage("sync sweep completed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 completion log, got %d", len(entries))
	}
	elapsed, ok := entries[0].ContextMap()["elapsed"].(time.Duration)
	if !ok {
		t.Fatal("expected an elapsed duration field")
	}
	if elapsed != 42*time.Second {
		t.Fatalf("expected elapsed 42s from the injected clock, got %v", elapsed)
	}
}

func TestNewRejectsMissingDeps(t *testing.T) {
	if _, err := New(Params{Log: zap.NewNop()}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.RunInterval != 15*time.Minute {
		t.Fatalf("unexpected interval %v", cfg.RunInterval)
	}
	if cfg.RunTimeout != 5*time.Minute {
		t.Fatalf("unexpected timeout %v", cfg.RunTimeout)
	}
}
