package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/civicworks/parkledger/internal/category/domain"
	ledgerdomain "github.com/civicworks/parkledger/internal/ledger/domain"
	obsmetrics "github.com/civicworks/parkledger/internal/observability/metrics"
	paymentdomain "github.com/civicworks/parkledger/internal/payment/domain"
	"github.com/civicworks/parkledger/internal/reference"
	"github.com/civicworks/parkledger/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sourceLabel tags generated entries so reports can tell engine-authored rows
// from hand-entered ones.
const sourceLabel = "concessions"

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	CategorySvc categorydomain.Service
	PaymentRepo paymentdomain.Repository
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	categorySvc categorydomain.Service
	paymentRepo paymentdomain.Repository
	metrics     *obsmetrics.Metrics
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ledger.service"),
		genID:       p.GenID,
		categorySvc: p.CategorySvc,
		paymentRepo: p.PaymentRepo,
		metrics:     p.Metrics,
	}
}

func (s *Service) ProcessPayment(ctx context.Context, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	return s.processPayment(ctx, s.db, paymentID)
}

func (s *Service) processPayment(ctx context.Context, conn *gorm.DB, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	joined, err := s.paymentRepo.GetWithContract(ctx, conn, paymentID)
	if err != nil {
		return ledgerdomain.IncomeEntry{}, err
	}
	payment := joined.Payment

	code := categorydomain.ResolveCode(payment.Concept, joined.Contract.ContractType)
	category, err := s.categorySvc.GetOrCreate(ctx, code)
	if err != nil {
		return ledgerdomain.IncomeEntry{}, fmt.Errorf("resolve category %s: %w", code, err)
	}

	ref := reference.Generate(reference.DomainConcession, payment.ID, payment.PaymentDate)

	existing, err := s.getByReference(ctx, conn, ref)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ledgerdomain.IncomeEntry{}, err
	}

	eventDate := payment.PaymentDate.UTC()
	entry := ledgerdomain.IncomeEntry{
		ID:              s.genID.Generate(),
		CategoryID:      category.ID,
		Concept:         reference.DomainConcession.Label() + " - " + payment.Concept,
		Amount:          payment.Amount,
		EventDate:       eventDate,
		Month:           int(eventDate.Month()),
		Year:            eventDate.Year(),
		Source:          sourceLabel,
		Description:     fmt.Sprintf("Generado desde pago de concesión #%d (%s)", payment.ID, joined.Contract.Title),
		ReferenceNumber: ref,
		SourceDomain:    string(reference.DomainConcession),
		SourceEventID:   payment.ID,
		Received:        true,
		SystemGenerated: true,
		CreatedAt:       time.Now().UTC(),
	}

	if err := conn.WithContext(ctx).Create(&entry).Error; err != nil {
		// Either unique index means the entry already exists: a concurrent
		// retry inserted the same reference first, or the payment date moved
		// upstream and the payment's entry lives under an older reference.
		// The source pair covers both; the reference read is the fallback.
		if db.IsDuplicateKeyErr(err) {
			existing, readErr := s.getBySource(ctx, conn, payment.ID)
			if readErr == nil {
				return existing, nil
			}
			return s.getByReference(ctx, conn, ref)
		}
		return ledgerdomain.IncomeEntry{}, fmt.Errorf("insert income entry: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncEntriesCreated()
	}
	s.log.Info("income entry created",
		zap.Int64("payment_id", payment.ID),
		zap.String("reference", ref),
		zap.String("category", string(code)),
		zap.Int64("amount", payment.Amount),
	)

	return entry, nil
}

func (s *Service) UpdateIncomeForPayment(ctx context.Context, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	var entry ledgerdomain.IncomeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := s.removeIncome(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		for _, old := range removed {
			s.log.Info("income entry replaced",
				zap.Int64("payment_id", paymentID),
				zap.String("reference", old.ReferenceNumber),
			)
		}

		entry, err = s.processPayment(ctx, tx, paymentID)
		return err
	})
	if err != nil {
		return ledgerdomain.IncomeEntry{}, err
	}
	return entry, nil
}

func (s *Service) RemoveIncomeForPayment(ctx context.Context, paymentID int64) ([]ledgerdomain.IncomeEntry, error) {
	var removed []ledgerdomain.IncomeEntry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = s.removeIncome(ctx, tx, paymentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, entry := range removed {
		s.log.Info("income entry removed",
			zap.Int64("payment_id", paymentID),
			zap.String("reference", entry.ReferenceNumber),
		)
	}
	return removed, nil
}

// removeIncome deletes entries by the structured (source_domain,
// source_event_id) pair and returns the deleted rows.
func (s *Service) removeIncome(ctx context.Context, tx *gorm.DB, paymentID int64) ([]ledgerdomain.IncomeEntry, error) {
	var entries []ledgerdomain.IncomeEntry
	err := tx.WithContext(ctx).
		Where("source_domain = ? AND source_event_id = ?", string(reference.DomainConcession), paymentID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	err = tx.WithContext(ctx).
		Where("source_domain = ? AND source_event_id = ?", string(reference.DomainConcession), paymentID).
		Delete(&ledgerdomain.IncomeEntry{}).Error
	if err != nil {
		return nil, fmt.Errorf("delete income entries: %w", err)
	}
	return entries, nil
}

func (s *Service) SyncExistingPayments(ctx context.Context) (ledgerdomain.SyncReport, error) {
	var report ledgerdomain.SyncReport

	missing, err := s.paymentRepo.ListMissingLedger(ctx, s.db, string(reference.DomainConcession))
	if err != nil {
		return report, fmt.Errorf("list unsynced payments: %w", err)
	}
	report.Scanned = len(missing)

	if s.metrics != nil {
		s.metrics.IncSyncRuns()
	}

	for _, paymentID := range missing {
		if err := ctx.Err(); err != nil {
			s.log.Warn("sync interrupted",
				zap.Int("created", report.Created),
				zap.Int("remaining", report.Scanned-report.Created-len(report.Failures)),
			)
			return report, err
		}

		if _, err := s.processPayment(ctx, s.db, paymentID); err != nil {
			report.Failures = append(report.Failures, ledgerdomain.SyncFailure{
				PaymentID: paymentID,
				Error:     err.Error(),
			})
			if s.metrics != nil {
				s.metrics.IncSyncFailures()
			}
			s.log.Warn("sync item failed",
				zap.Int64("payment_id", paymentID),
				zap.Error(err),
			)
			continue
		}
		report.Created++
	}

	s.log.Info("payment sync finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("created", report.Created),
		zap.Int("failed", report.FailureCount()),
	)
	return report, nil
}

func (s *Service) getBySource(ctx context.Context, conn *gorm.DB, paymentID int64) (ledgerdomain.IncomeEntry, error) {
	var entry ledgerdomain.IncomeEntry
	err := conn.WithContext(ctx).
		Where("source_domain = ? AND source_event_id = ?", string(reference.DomainConcession), paymentID).
		First(&entry).Error
	return entry, err
}

func (s *Service) getByReference(ctx context.Context, conn *gorm.DB, ref string) (ledgerdomain.IncomeEntry, error) {
	var entry ledgerdomain.IncomeEntry
	err := conn.WithContext(ctx).
		Where("reference_number = ?", ref).
		First(&entry).Error
	return entry, err
}
