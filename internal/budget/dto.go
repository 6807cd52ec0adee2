package budget

import (
	"errors"
	"time"
)

type CreateBudgetDTO struct {
	UserID            int64     `json:"user_id"`
	Category          string    `json:"category"`
	Name              string    `json:"name"`
	AmountCents       int64     `json:"amount_cents"`
	Period            string    `json:"period"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	AlertThreshold80  *bool     `json:"alert_threshold_80,omitempty"`
	AlertThreshold100 *bool     `json:"alert_threshold_100,omitempty"`
	RolloverUnused    bool      `json:"rollover_unused"`
	Notes             string    `json:"notes,omitempty"`
}

func (dto CreateBudgetDTO) Validate() error {
	if dto.UserID <= 0 {
		return errors.New("user id is required")
	}
	if dto.Category == "" {
		return errors.New("category is required")
	}
	if dto.AmountCents <= 0 {
		return errors.New("budget amount must be positive")
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return errors.New("start and end dates are required")
	}
	if dto.EndDate.Before(dto.StartDate) {
		return errors.New("end date must not be before start date")
	}
	switch dto.Period {
	case "", PeriodWeekly, PeriodMonthly, PeriodQuarterly, PeriodYearly, PeriodCustom:
	default:
		return errors.New("period must be one of WEEKLY, MONTHLY, QUARTERLY, YEARLY, CUSTOM")
	}
	return nil
}

// BudgetStatusResponse is the on-demand utilization view; nothing in it is
// ever stored.
type BudgetStatusResponse struct {
	Budget             *Budget `json:"budget"`
	SpentCents         int64   `json:"spent_cents"`
	RemainingCents     int64   `json:"remaining_cents"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// SummaryResponse aggregates a user's budgets for the dashboard.
type SummaryResponse struct {
	TotalBudgetCents   int64   `json:"total_budget_cents"`
	TotalSpentCents    int64   `json:"total_spent_cents"`
	RemainingCents     int64   `json:"remaining_cents"`
	UtilizationPercent float64 `json:"utilization_percent"`
	BudgetCount        int     `json:"budget_count"`
	OverBudgetCount    int     `json:"over_budget_count"`
	NearLimitCount     int     `json:"near_limit_count"`
}

type MarkAlertsReadDTO struct {
	AlertIDs []int64 `json:"alert_ids,omitempty"`
}
