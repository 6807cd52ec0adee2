package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseRecorded    = "expense.recorded"
	EventTypeBudgetAlertCreated = "budget.alert.created"
	EventTypeDebtSettled        = "debt.settled"
)

// ExpenseRecordedEvent is published after an expense transitions into the
// completed state. Budget evaluation itself happens synchronously in the
// expense write path; this event is for passive observers only.
type ExpenseRecordedEvent struct {
	BaseEvent
	ExpenseID   int64  `json:"expense_id"`
	UserID      int64  `json:"user_id"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
}

func NewExpenseRecordedEvent(expenseID, userID int64, category string, amountCents int64) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeExpenseRecorded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id":   expenseID,
				"user_id":      userID,
				"category":     category,
				"amount_cents": amountCents,
			},
		},
		ExpenseID:   expenseID,
		UserID:      userID,
		Category:    category,
		AmountCents: amountCents,
	}
}

// BudgetAlertCreatedEvent is published after the alert row committed. The
// notification handler delivers email best-effort; the alert itself is
// already durable.
type BudgetAlertCreatedEvent struct {
	BaseEvent
	AlertID   int64  `json:"alert_id"`
	BudgetID  int64  `json:"budget_id"`
	UserID    int64  `json:"user_id"`
	AlertType string `json:"alert_type"`
	Message   string `json:"message"`
}

func NewBudgetAlertCreatedEvent(alertID, budgetID, userID int64, alertType, message string) *BudgetAlertCreatedEvent {
	return &BudgetAlertCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBudgetAlertCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"alert_id":   alertID,
				"budget_id":  budgetID,
				"user_id":    userID,
				"alert_type": alertType,
				"message":    message,
			},
		},
		AlertID:   alertID,
		BudgetID:  budgetID,
		UserID:    userID,
		AlertType: alertType,
		Message:   message,
	}
}

type DebtSettledEvent struct {
	BaseEvent
	DebtID     int64 `json:"debt_id"`
	CreditorID int64 `json:"creditor_id"`
	DebtorID   int64 `json:"debtor_id"`
	Amount     int64 `json:"amount_cents"`
}

func NewDebtSettledEvent(debtID, creditorID, debtorID, amountCents int64) *DebtSettledEvent {
	return &DebtSettledEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeDebtSettled,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"debt_id":      debtID,
				"creditor_id":  creditorID,
				"debtor_id":    debtorID,
				"amount_cents": amountCents,
			},
		},
		DebtID:     debtID,
		CreditorID: creditorID,
		DebtorID:   debtorID,
		Amount:     amountCents,
	}
}
