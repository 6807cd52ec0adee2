package budget

import (
	"errors"
	"fmt"
	"time"
)

const (
	PeriodWeekly    = "WEEKLY"
	PeriodMonthly   = "MONTHLY"
	PeriodQuarterly = "QUARTERLY"
	PeriodYearly    = "YEARLY"
	PeriodCustom    = "CUSTOM"
)

const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusExceeded  = "EXCEEDED"
	StatusCompleted = "COMPLETED"
)

const (
	AlertType80Percent = "80_PERCENT"
	AlertTypeExceeded  = "EXCEEDED"
	AlertTypeCustom    = "CUSTOM"
)

// Budget is a per-category spending limit over a date period. Spent amount
// and utilization are always recomputed from the matching expenses; only
// the alerted flags are stored, and those are monotonic within a period
// until an explicit reset.
type Budget struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	UserID            int64     `json:"user_id" gorm:"column:user_id;index:idx_user_status;not null"`
	Category          string    `json:"category" gorm:"not null"`
	Name              string    `json:"name" gorm:"not null"`
	AmountCents       int64     `json:"amount_cents" gorm:"column:amount_cents;not null"`
	Period            string    `json:"period" gorm:"default:MONTHLY"`
	StartDate         time.Time `json:"start_date" gorm:"column:start_date;type:date;index:idx_budget_period"`
	EndDate           time.Time `json:"end_date" gorm:"column:end_date;type:date;index:idx_budget_period"`
	Status            string    `json:"status" gorm:"index:idx_user_status;default:ACTIVE"`
	AlertThreshold80  bool      `json:"alert_threshold_80" gorm:"column:alert_threshold_80;default:true"`
	AlertThreshold100 bool      `json:"alert_threshold_100" gorm:"column:alert_threshold_100;default:true"`
	AlertedAt80       bool      `json:"alerted_at_80" gorm:"column:alerted_at_80;default:false"`
	AlertedAt100      bool      `json:"alerted_at_100" gorm:"column:alerted_at_100;default:false"`
	RolloverUnused    bool      `json:"rollover_unused" gorm:"column:rollover_unused;default:false"`
	Notes             string    `json:"notes,omitempty"`
	IsDeleted         bool      `json:"is_deleted" gorm:"column:is_deleted;default:false"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Budget) TableName() string {
	return "budgets"
}

// Alert is one threshold-crossing record. Append-only: one row per
// crossing event, not per evaluation.
type Alert struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	BudgetID     int64     `json:"budget_id" gorm:"column:budget_id;index;not null"`
	UserID       int64     `json:"user_id" gorm:"column:user_id;index:idx_user_read;not null"`
	AlertType    string    `json:"alert_type" gorm:"column:alert_type;not null"`
	Message      string    `json:"message" gorm:"not null"`
	IsRead       bool      `json:"is_read" gorm:"column:is_read;index:idx_user_read;default:false"`
	SentViaEmail bool      `json:"sent_via_email" gorm:"column:sent_via_email;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Alert) TableName() string {
	return "budget_alerts"
}

func (b *Budget) UtilizationPercent(spentCents int64) float64 {
	if b.AmountCents <= 0 {
		return 0
	}
	return float64(spentCents) / float64(b.AmountCents) * 100
}

func (b *Budget) RemainingCents(spentCents int64) int64 {
	return b.AmountCents - spentCents
}

func (b *Budget) IsOverBudget(spentCents int64) bool {
	return spentCents > b.AmountCents
}

func (b *Budget) IsActivePeriod(now time.Time) bool {
	day := now.Truncate(24 * time.Hour)
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}

// ThresholdCrossings applies both threshold checks for the given spent
// amount, mutating the alerted flags and status, and returns the alert
// rows to persist. The two checks are independent: a single expense that
// jumps utilization from below 80 straight past 100 produces both alerts
// in the same evaluation. The alerted flags are monotonic, so re-running
// with the same spend produces nothing.
func (b *Budget) ThresholdCrossings(spentCents int64) []Alert {
	utilization := b.UtilizationPercent(spentCents)
	var alerts []Alert

	if b.AlertThreshold80 && !b.AlertedAt80 && utilization >= 80 {
		b.AlertedAt80 = true
		alerts = append(alerts, Alert{
			BudgetID:  b.ID,
			UserID:    b.UserID,
			AlertType: AlertType80Percent,
			Message:   fmt.Sprintf("You've used %.0f%% of your %s budget.", utilization, b.Name),
		})
	}

	if b.AlertThreshold100 && !b.AlertedAt100 && utilization >= 100 {
		b.AlertedAt100 = true
		b.Status = StatusExceeded
		alerts = append(alerts, Alert{
			BudgetID:  b.ID,
			UserID:    b.UserID,
			AlertType: AlertTypeExceeded,
			Message:   fmt.Sprintf("Budget exceeded for %s!", b.Name),
		})
	}

	return alerts
}

// ResetAlerts clears both alerted flags for a new period. Status is left
// alone; period rollover is the budget-creation caller's concern.
func (b *Budget) ResetAlerts() {
	b.AlertedAt80 = false
	b.AlertedAt100 = false
}

// Domain errors used by the repository layer.
var (
	ErrBudgetNotFound = errors.New("budget not found")
)
