package repository

import (
	"context"
	"errors"

	"github.com/civicworks/parkledger/internal/payment/domain"
	"gorm.io/gorm"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) GetWithContract(ctx context.Context, conn *gorm.DB, paymentID int64) (domain.PaymentWithContract, error) {
	var payment domain.ConcessionPayment
	err := conn.WithContext(ctx).
		Where("id = ?", paymentID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PaymentWithContract{}, domain.ErrPaymentNotFound
		}
		return domain.PaymentWithContract{}, err
	}

	var contract domain.ConcessionContract
	err = conn.WithContext(ctx).
		Where("id = ?", payment.ContractID).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PaymentWithContract{}, domain.ErrPaymentNotFound
		}
		return domain.PaymentWithContract{}, err
	}

	return domain.PaymentWithContract{Payment: payment, Contract: contract}, nil
}

// ListMissingLedger returns ids of payments with no income entry, anti-joined on
// the structured (source_domain, source_event_id) columns.
func (r *repository) ListMissingLedger(ctx context.Context, conn *gorm.DB, sourceDomain string) ([]int64, error) {
	var ids []int64
	err := conn.WithContext(ctx).Raw(
		`SELECT p.id
		 FROM concession_payments p
		 LEFT JOIN income_entries ie
		   ON ie.source_domain = ? AND ie.source_event_id = p.id
		 WHERE ie.id IS NULL
		 ORDER BY p.payment_date, p.id`,
		sourceDomain,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
