package debt

import (
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/finance-tracker/internal"
)

const (
	StatusPending       = "PENDING"
	StatusPartiallyPaid = "PARTIALLY_PAID"
	StatusSettled       = "SETTLED"
	StatusCancelled     = "CANCELLED"
)

const DefaultPaymentMethod = "CASH"

// Debt is a tracked obligation from debtor to creditor, derived from a
// shared-expense split. The original amount never changes; payments move
// settled_cents towards it and the status follows from that pair alone.
type Debt struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	CreditorID   int64      `json:"creditor_id" gorm:"column:creditor_id;index:idx_creditor_status;not null"`
	DebtorID     int64      `json:"debtor_id" gorm:"column:debtor_id;index:idx_debtor_status;not null"`
	AmountCents  int64      `json:"amount_cents" gorm:"column:amount_cents;not null"`
	SettledCents int64      `json:"settled_cents" gorm:"column:settled_cents;default:0"`
	Status       string     `json:"status" gorm:"column:status;index:idx_creditor_status;index:idx_debtor_status;default:PENDING"`
	Description  string     `json:"description"`
	GroupID      *int64     `json:"group_id,omitempty" gorm:"column:group_id"`
	SplitID      *int64     `json:"split_id,omitempty" gorm:"column:split_id;uniqueIndex"`
	DueDate      *time.Time `json:"due_date,omitempty" gorm:"column:due_date;type:date"`
	SettledAt    *time.Time `json:"settled_at,omitempty" gorm:"column:settled_at"`
	IsDeleted    bool       `json:"is_deleted" gorm:"column:is_deleted;default:false"`
	CreatedAt    time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"column:updated_at"`

	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:DebtID"`
}

func (Debt) TableName() string {
	return "debts"
}

// Payment is one entry in a debt's append-only payment trail. The sum of a
// debt's payment amounts always equals its settled_cents.
type Payment struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	DebtID          int64     `json:"debt_id" gorm:"column:debt_id;index;not null"`
	AmountCents     int64     `json:"amount_cents" gorm:"column:amount_cents;not null"`
	PaymentMethod   string    `json:"payment_method" gorm:"column:payment_method;default:CASH"`
	ReferenceNumber string    `json:"reference_number,omitempty" gorm:"column:reference_number"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Payment) TableName() string {
	return "debt_payments"
}

func (d *Debt) RemainingCents() int64 {
	return d.AmountCents - d.SettledCents
}

func (d *Debt) IsOverdue() bool {
	if d.DueDate != nil && d.Status == StatusPending {
		return time.Now().After(*d.DueDate)
	}
	return false
}

// StatusFor returns the status implied by a settled amount. Status is a
// pure function of settled vs amount; CANCELLED sits outside this mapping
// and is only reachable through Cancel.
func StatusFor(settledCents, amountCents int64) string {
	switch {
	case settledCents <= 0:
		return StatusPending
	case settledCents < amountCents:
		return StatusPartiallyPaid
	default:
		return StatusSettled
	}
}

// ApplyPayment records a payment of amountCents against the debt, mutating
// settled_cents, status and settled_at. Overshooting the original amount is
// rejected outright; there is no refund bookkeeping.
func (d *Debt) ApplyPayment(amountCents int64) error {
	if amountCents <= 0 {
		return internal.NewValidationError("payment amount must be positive", internal.ErrCodeInvalidAmount)
	}
	if d.Status == StatusCancelled {
		return internal.NewConflictError("cannot pay a cancelled debt", internal.ErrCodeDebtCancelled)
	}
	if d.SettledCents+amountCents > d.AmountCents {
		return internal.NewValidationError(
			fmt.Sprintf("payment of %d exceeds remaining balance %d", amountCents, d.RemainingCents()),
			internal.ErrCodePaymentOvershoot)
	}

	d.SettledCents += amountCents
	d.Status = StatusFor(d.SettledCents, d.AmountCents)
	if d.Status == StatusSettled && d.SettledAt == nil {
		now := time.Now()
		d.SettledAt = &now
	}
	d.UpdatedAt = time.Now()
	return nil
}

// Cancel moves the debt to its terminal CANCELLED state. Only open debts
// can be cancelled.
func (d *Debt) Cancel() error {
	switch d.Status {
	case StatusPending, StatusPartiallyPaid:
		d.Status = StatusCancelled
		d.UpdatedAt = time.Now()
		return nil
	default:
		return internal.NewConflictError(
			fmt.Sprintf("cannot cancel a debt in status %s", d.Status),
			internal.ErrCodeDebtNotCancellable)
	}
}

// Domain errors used by the repository layer.
var (
	ErrDebtNotFound = errors.New("debt not found")
)
