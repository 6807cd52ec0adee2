package expense

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/budget"
	"github.com/frahmantamala/finance-tracker/internal/core/events"
)

// BudgetEvaluator is the budget alerting hook. The expense write path
// calls it directly whenever a counted expense is created or changed, so
// the coupling is visible here instead of hidden behind a save hook.
type BudgetEvaluator interface {
	EvaluateForExpense(userID int64, category string, date time.Time) ([]budget.Alert, error)
}

// Repository defines the data access methods for expenses.
type Repository interface {
	Create(e *Expense) error
	GetByID(id int64) (*Expense, error)
	ListForUser(userID int64, limit, offset int) ([]*Expense, error)
	Update(e *Expense) error
	SoftDelete(id int64) error
}

type Service struct {
	repo    Repository
	budgets BudgetEvaluator
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, budgets BudgetEvaluator, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		budgets: budgets,
		bus:     bus,
		logger:  logger,
	}
}

// CreateExpense records a new expense. When created directly as completed
// it immediately counts toward budgets, so evaluation runs before this
// returns.
func (s *Service) CreateExpense(userID int64, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err, "user_id", userID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	e := &Expense{
		UserID:      userID,
		AmountCents: dto.AmountCents,
		Description: dto.Description,
		Category:    dto.Category,
		Status:      StatusPending,
		ExpenseDate: dto.ExpenseDate,
		Notes:       dto.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if dto.Completed {
		e.Complete()
	}

	if err := s.repo.Create(e); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("expense created",
		"expense_id", e.ID,
		"user_id", userID,
		"amount", e.AmountCents,
		"status", e.Status)

	if e.IsCounted() {
		s.afterCounted(e)
	}
	return e, nil
}

// CompleteExpense moves a pending expense to completed, at which point it
// starts counting toward budgets.
func (s *Service) CompleteExpense(id int64) (*Expense, error) {
	e, err := s.GetExpense(id)
	if err != nil {
		return nil, err
	}
	if !e.CanBeCompleted() {
		return nil, internal.NewConflictError(
			"only pending expenses can be completed",
			internal.ErrCodeInvalidExpenseStatus)
	}

	e.Complete()
	if err := s.repo.Update(e); err != nil {
		s.logger.Error("failed to complete expense", "error", err, "expense_id", id)
		return nil, err
	}

	s.logger.Info("expense completed", "expense_id", e.ID, "amount", e.AmountCents)
	s.afterCounted(e)
	return e, nil
}

// UpdateExpense edits an expense in place. If the expense is counted, any
// change to its amount, category or date can change which budgets match
// and how far along they are, so evaluation reruns against both the old
// and the new category.
func (s *Service) UpdateExpense(id int64, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	e, err := s.GetExpense(id)
	if err != nil {
		return nil, err
	}

	oldCategory := e.Category
	oldDate := e.ExpenseDate
	if dto.AmountCents != nil {
		e.AmountCents = *dto.AmountCents
	}
	if dto.Description != nil {
		e.Description = *dto.Description
	}
	if dto.Category != nil {
		e.Category = *dto.Category
	}
	if dto.ExpenseDate != nil {
		e.ExpenseDate = *dto.ExpenseDate
	}
	if dto.Notes != nil {
		e.Notes = *dto.Notes
	}
	e.UpdatedAt = time.Now()

	if err := s.repo.Update(e); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, err
	}

	if e.IsCounted() {
		if oldCategory != e.Category || !oldDate.Equal(e.ExpenseDate) {
			s.evaluateBudgets(e.UserID, oldCategory, oldDate)
		}
		s.afterCounted(e)
	}
	return e, nil
}

func (s *Service) CancelExpense(id int64) (*Expense, error) {
	e, err := s.GetExpense(id)
	if err != nil {
		return nil, err
	}
	wasCounted := e.IsCounted()
	e.Cancel()
	if err := s.repo.Update(e); err != nil {
		s.logger.Error("failed to cancel expense", "error", err, "expense_id", id)
		return nil, err
	}
	if wasCounted {
		s.evaluateBudgets(e.UserID, e.Category, e.ExpenseDate)
	}
	return e, nil
}

func (s *Service) DeleteExpense(id int64) error {
	e, err := s.GetExpense(id)
	if err != nil {
		return err
	}
	wasCounted := e.IsCounted()
	if err := s.repo.SoftDelete(id); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}
	if wasCounted {
		s.evaluateBudgets(e.UserID, e.Category, e.ExpenseDate)
	}
	return nil
}

func (s *Service) GetExpense(id int64) (*Expense, error) {
	e, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, internal.NewNotFoundError("expense not found", internal.ErrCodeExpenseNotFound)
	}
	return e, nil
}

func (s *Service) ListExpenses(userID int64, limit, offset int) ([]*Expense, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(userID, limit, offset)
}

func (s *Service) afterCounted(e *Expense) {
	s.evaluateBudgets(e.UserID, e.Category, e.ExpenseDate)
	s.publishRecorded(e)
}

// evaluateBudgets runs the budget check and logs failures without
// propagating them; the expense itself already committed.
func (s *Service) evaluateBudgets(userID int64, category string, date time.Time) {
	if s.budgets == nil {
		return
	}
	alerts, err := s.budgets.EvaluateForExpense(userID, category, date)
	if err != nil {
		s.logger.Error("budget evaluation failed after expense write",
			"error", err, "user_id", userID, "category", category)
		return
	}
	if len(alerts) > 0 {
		s.logger.Info("budget alerts triggered by expense",
			"user_id", userID, "category", category, "count", len(alerts))
	}
}

func (s *Service) publishRecorded(e *Expense) {
	if s.bus == nil {
		return
	}
	evt := events.NewExpenseRecordedEvent(e.ID, e.UserID, e.Category, e.AmountCents)
	if err := s.bus.Publish(context.Background(), evt); err != nil {
		s.logger.Warn("failed to publish expense event", "error", err, "expense_id", e.ID)
	}
}
