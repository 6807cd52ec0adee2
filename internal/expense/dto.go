package expense

import (
	"fmt"
	"time"
)

type CreateExpenseDTO struct {
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ExpenseDate time.Time `json:"expense_date"`
	Notes       string    `json:"notes,omitempty"`
	Completed   bool      `json:"completed"`
}

func (dto *CreateExpenseDTO) Validate() error {
	if dto.AmountCents <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if dto.Description == "" {
		return fmt.Errorf("description is required")
	}
	if dto.Category == "" {
		return fmt.Errorf("category is required")
	}
	if dto.ExpenseDate.IsZero() {
		return fmt.Errorf("expense date is required")
	}
	return nil
}

type UpdateExpenseDTO struct {
	AmountCents *int64     `json:"amount_cents,omitempty"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ExpenseDate *time.Time `json:"expense_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

func (dto *UpdateExpenseDTO) Validate() error {
	if dto.AmountCents != nil && *dto.AmountCents <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if dto.Description != nil && *dto.Description == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if dto.Category != nil && *dto.Category == "" {
		return fmt.Errorf("category cannot be empty")
	}
	return nil
}
