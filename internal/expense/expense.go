package expense

import (
	"errors"
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Expense is a single spending record. Only completed, non-deleted
// expenses count toward budgets and can back a shared expense.
type Expense struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	UserID      int64      `json:"user_id" gorm:"column:user_id;index:idx_expense_user;not null"`
	AmountCents int64      `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Description string     `json:"description" gorm:"not null"`
	Category    string     `json:"category" gorm:"index:idx_expense_user;not null"`
	Status      string     `json:"status" gorm:"default:PENDING"`
	ExpenseDate time.Time  `json:"expense_date" gorm:"column:expense_date;type:date;index"`
	CompletedAt *time.Time `json:"completed_at,omitempty" gorm:"column:completed_at"`
	Notes       string     `json:"notes,omitempty"`
	IsDeleted   bool       `json:"is_deleted" gorm:"column:is_deleted;default:false"`
	CreatedAt   time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

// IsCounted reports whether this expense contributes to budget spend.
func (e *Expense) IsCounted() bool {
	return e.Status == StatusCompleted && !e.IsDeleted
}

func (e *Expense) CanBeCompleted() bool {
	return e.Status == StatusPending
}

func (e *Expense) Complete() {
	now := time.Now()
	e.Status = StatusCompleted
	e.CompletedAt = &now
	e.UpdatedAt = now
}

func (e *Expense) Cancel() {
	e.Status = StatusCancelled
	e.UpdatedAt = time.Now()
}

var (
	ErrExpenseNotFound = errors.New("expense not found")
)
