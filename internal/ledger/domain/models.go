package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// IncomeEntry is the canonical accounting record this engine writes, one per
// source payment. Rows with SystemGenerated set are owned exclusively by the
// sync engine; reconciliation assumes nothing else edits them.
type IncomeEntry struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	CategoryID      snowflake.ID `json:"category_id" gorm:"not null;index"`
	Concept         string       `json:"concept" gorm:"type:text;not null"`
	Amount          int64        `json:"amount" gorm:"not null"`
	EventDate       time.Time    `json:"event_date" gorm:"not null"`
	Month           int          `json:"month" gorm:"not null"`
	Year            int          `json:"year" gorm:"not null"`
	Source          string       `json:"source" gorm:"type:text;not null"`
	Description     string       `json:"description" gorm:"type:text"`
	ReferenceNumber string       `json:"reference_number" gorm:"type:text;not null;uniqueIndex:ux_income_entries_reference"`
	SourceDomain    string       `json:"source_domain" gorm:"type:text;not null;uniqueIndex:ux_income_entries_source,priority:1"`
	SourceEventID   int64        `json:"source_event_id" gorm:"not null;uniqueIndex:ux_income_entries_source,priority:2"`
	Received        bool         `json:"received" gorm:"not null;default:false"`
	SystemGenerated bool         `json:"system_generated" gorm:"not null;default:false"`
	CreatedAt       time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (IncomeEntry) TableName() string { return "income_entries" }

// SyncFailure records a single payment the reconciliation sweep could not
// process.
type SyncFailure struct {
	PaymentID int64  `json:"payment_id"`
	Error     string `json:"error"`
}

// SyncReport summarizes one reconciliation sweep.
type SyncReport struct {
	Scanned  int           `json:"scanned"`
	Created  int           `json:"created"`
	Failures []SyncFailure `json:"failures,omitempty"`
}

// FailureCount returns the number of payments that failed during the sweep.
func (r SyncReport) FailureCount() int { return len(r.Failures) }

// Service synchronizes concession payments into the accounting ledger.
type Service interface {
	// ProcessPayment creates the income entry for a payment, or returns the
	// existing one unchanged. Safe to retry.
	ProcessPayment(ctx context.Context, paymentID int64) (IncomeEntry, error)

	// UpdateIncomeForPayment replaces the entry for a payment after the
	// underlying payment changed. Remove and recreate run in one transaction.
	UpdateIncomeForPayment(ctx context.Context, paymentID int64) (IncomeEntry, error)

	// RemoveIncomeForPayment deletes all entries for a payment and returns the
	// deleted rows. Deleting zero rows is not an error.
	RemoveIncomeForPayment(ctx context.Context, paymentID int64) ([]IncomeEntry, error)

	// SyncExistingPayments backfills entries for payments that have none.
	// Per-item failures are logged and reported, never propagated.
	SyncExistingPayments(ctx context.Context) (SyncReport, error)
}
