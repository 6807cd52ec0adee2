package settlement

import (
	"errors"

	"github.com/frahmantamala/finance-tracker/internal/splitcalc"
)

// CreateSharedExpenseDTO is the request payload for marking an expense as
// shared. ParticipantIDs defaults to the whole group when empty.
type CreateSharedExpenseDTO struct {
	ExpenseID      int64                `json:"expense_id"`
	GroupID        int64                `json:"group_id"`
	PayerID        int64                `json:"payer_id"`
	SplitMethod    splitcalc.Method     `json:"split_method"`
	ParticipantIDs []int64              `json:"participant_ids,omitempty"`
	Overrides      []splitcalc.Override `json:"overrides,omitempty"`
	Notes          string               `json:"notes,omitempty"`
}

func (dto CreateSharedExpenseDTO) Validate() error {
	if dto.ExpenseID <= 0 {
		return errors.New("expense id is required")
	}
	if dto.GroupID <= 0 {
		return errors.New("group id is required")
	}
	if dto.PayerID <= 0 {
		return errors.New("payer id is required")
	}
	if !dto.SplitMethod.Valid() {
		return errors.New("split method must be one of EQUAL, EXACT, PERCENTAGE, SHARES")
	}
	return nil
}

// RecomputeSplitsDTO replaces the splits of a shared expense with a fresh
// computation; only allowed while nothing is settled.
type RecomputeSplitsDTO struct {
	SplitMethod    splitcalc.Method     `json:"split_method"`
	ParticipantIDs []int64              `json:"participant_ids,omitempty"`
	Overrides      []splitcalc.Override `json:"overrides,omitempty"`
}

func (dto RecomputeSplitsDTO) Validate() error {
	if !dto.SplitMethod.Valid() {
		return errors.New("split method must be one of EQUAL, EXACT, PERCENTAGE, SHARES")
	}
	return nil
}
