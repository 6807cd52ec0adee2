package settlement

import (
	"errors"
	"time"

	"github.com/frahmantamala/finance-tracker/internal/splitcalc"
)

// SharedExpense marks an expense as split within a group. The underlying
// expense amount is authoritative and immutable once splits exist; exactly
// one SharedExpense may reference a given expense.
type SharedExpense struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ExpenseID   int64     `json:"expense_id" gorm:"column:expense_id;uniqueIndex;not null"`
	GroupID     int64     `json:"group_id" gorm:"column:group_id;index;not null"`
	PayerID     int64     `json:"payer_id" gorm:"column:payer_id;not null"`
	AmountCents int64     `json:"amount_cents" gorm:"column:amount_cents;not null"`
	SplitMethod string    `json:"split_method" gorm:"column:split_method;default:EQUAL"`
	Notes       string    `json:"notes,omitempty"`
	IsDeleted   bool      `json:"is_deleted" gorm:"column:is_deleted;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`

	Splits []Split `json:"splits" gorm:"foreignKey:SharedExpenseID"`
}

func (SharedExpense) TableName() string {
	return "shared_expenses"
}

// Split is one participant's owed share. A participant appears at most once
// per shared expense, and the split amounts always sum to the expense total.
type Split struct {
	ID              int64      `json:"id" gorm:"primaryKey"`
	SharedExpenseID int64      `json:"shared_expense_id" gorm:"column:shared_expense_id;uniqueIndex:idx_shared_expense_participant;not null"`
	ParticipantID   int64      `json:"participant_id" gorm:"column:participant_id;uniqueIndex:idx_shared_expense_participant;not null"`
	AmountCents     int64      `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Percentage      float64    `json:"percentage,omitempty" gorm:"column:percentage"`
	IsSettled       bool       `json:"is_settled" gorm:"column:is_settled;default:false"`
	SettledAt       *time.Time `json:"settled_at,omitempty" gorm:"column:settled_at"`
	SettlementNotes string     `json:"settlement_notes,omitempty" gorm:"column:settlement_notes"`
	CreatedAt       time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (Split) TableName() string {
	return "shared_expense_splits"
}

func (se *SharedExpense) IsFullySettled() bool {
	if len(se.Splits) == 0 {
		return false
	}
	for _, s := range se.Splits {
		if !s.IsSettled {
			return false
		}
	}
	return true
}

func (se *SharedExpense) HasSettledSplit() bool {
	for _, s := range se.Splits {
		if s.IsSettled {
			return true
		}
	}
	return false
}

func splitsFromShares(sharedExpenseID int64, shares []splitcalc.Share) []Split {
	splits := make([]Split, len(shares))
	for i, sh := range shares {
		splits[i] = Split{
			SharedExpenseID: sharedExpenseID,
			ParticipantID:   sh.ParticipantID,
			AmountCents:     sh.AmountCents,
			Percentage:      sh.Percentage,
		}
	}
	return splits
}

// Domain errors used by the repository layer.
var (
	ErrSharedExpenseNotFound = errors.New("shared expense not found")
)
