package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConcessionContract is the contract a payment belongs to. Owned by the
// contract-management side of the platform; this engine only reads it.
type ConcessionContract struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	ParkID       int64          `json:"park_id" gorm:"not null;index"`
	Title        string         `json:"title" gorm:"type:text;not null"`
	ContractType string         `json:"contract_type" gorm:"type:text;not null"`
	Metadata     datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ConcessionContract) TableName() string { return "concession_contracts" }

// ConcessionPayment is the source monetary event this engine observes. Created,
// updated and deleted entirely outside this engine.
type ConcessionPayment struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	ContractID  int64          `json:"contract_id" gorm:"not null;index"`
	Amount      int64          `json:"amount" gorm:"not null"`
	Concept     string         `json:"concept" gorm:"type:text;not null"`
	PaymentDate time.Time      `json:"payment_date" gorm:"not null"`
	Metadata    datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (ConcessionPayment) TableName() string { return "concession_payments" }

// PaymentWithContract joins a payment with its contract context.
type PaymentWithContract struct {
	Payment  ConcessionPayment
	Contract ConcessionContract
}

// Repository reads source events. All methods accept the gorm handle so the
// caller can pass a transaction.
type Repository interface {
	GetWithContract(ctx context.Context, conn *gorm.DB, paymentID int64) (PaymentWithContract, error)
	ListMissingLedger(ctx context.Context, conn *gorm.DB, sourceDomain string) ([]int64, error)
}

var (
	ErrPaymentNotFound = errors.New("payment_not_found")
)
