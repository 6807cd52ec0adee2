package budget

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/core/events"
	"github.com/frahmantamala/finance-tracker/internal/core/metrics"
)

// Repository defines the data access methods for budgets and their alerts.
// Evaluate runs its callback inside a storage transaction with the budget
// row locked; the alert rows and flag updates it produces commit
// atomically, which is what makes concurrent evaluations safe.
type Repository interface {
	Create(b *Budget) error
	GetByID(id int64) (*Budget, error)
	ListForUser(userID int64) ([]*Budget, error)
	FindActiveForExpense(userID int64, category string, date time.Time) ([]*Budget, error)
	SpentCents(b *Budget) (int64, error)
	Evaluate(budgetID int64, evaluate func(b *Budget, spentCents int64) []Alert) ([]Alert, error)
	ListEndedActive(now time.Time) ([]*Budget, error)
	MarkCompleted(budgetID int64) error
	ResetAlerts(budgetID int64) error
	ListAlerts(userID int64, unreadOnly bool) ([]Alert, error)
	MarkAlertsRead(userID int64, alertIDs []int64) error
	MarkAlertEmailed(alertID int64) error
}

// Service evaluates budget utilization against thresholds and emits
// at-most-one alert per threshold per period.
type Service struct {
	repo   Repository
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

func (s *Service) CreateBudget(dto CreateBudgetDTO) (*Budget, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("budget validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	period := dto.Period
	if period == "" {
		period = PeriodMonthly
	}
	name := dto.Name
	if name == "" {
		name = fmt.Sprintf("%s - %s", dto.Category, dto.StartDate.Format("January 2006"))
	}

	b := &Budget{
		UserID:            dto.UserID,
		Category:          dto.Category,
		Name:              name,
		AmountCents:       dto.AmountCents,
		Period:            period,
		StartDate:         dto.StartDate,
		EndDate:           dto.EndDate,
		Status:            StatusActive,
		AlertThreshold80:  dto.AlertThreshold80 == nil || *dto.AlertThreshold80,
		AlertThreshold100: dto.AlertThreshold100 == nil || *dto.AlertThreshold100,
		RolloverUnused:    dto.RolloverUnused,
		Notes:             dto.Notes,
	}

	if err := s.repo.Create(b); err != nil {
		s.logger.Error("failed to create budget", "error", err, "user_id", dto.UserID)
		return nil, err
	}

	s.logger.Info("budget created", "budget_id", b.ID, "category", b.Category, "amount", b.AmountCents)
	return b, nil
}

// CreateMonthlyBudget is a convenience for the common case: one calendar
// month starting at the first of the month containing startDate.
func (s *Service) CreateMonthlyBudget(userID int64, category string, amountCents int64, startDate time.Time) (*Budget, error) {
	if startDate.IsZero() {
		startDate = time.Now()
	}
	monthStart := time.Date(startDate.Year(), startDate.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	return s.CreateBudget(CreateBudgetDTO{
		UserID:      userID,
		Category:    category,
		AmountCents: amountCents,
		Period:      PeriodMonthly,
		StartDate:   monthStart,
		EndDate:     monthEnd,
	})
}

// Evaluate recomputes the budget's utilization from the matching expenses
// and fires whichever threshold alerts are due. The spent figure is never
// cached; each call reads it fresh from the store. Returns the alerts
// created by this call, which may be empty.
func (s *Service) Evaluate(budgetID int64) ([]Alert, error) {
	alerts, err := s.repo.Evaluate(budgetID, func(b *Budget, spentCents int64) []Alert {
		return b.ThresholdCrossings(spentCents)
	})
	if err != nil {
		s.logger.Error("budget evaluation failed", "error", err, "budget_id", budgetID)
		return nil, err
	}

	for _, a := range alerts {
		metrics.BudgetAlertsEmitted.WithLabelValues(a.AlertType).Inc()
		s.logger.Info("budget alert emitted",
			"budget_id", a.BudgetID,
			"alert_id", a.ID,
			"alert_type", a.AlertType)
		s.publishAlert(a)
	}
	return alerts, nil
}

// EvaluateForExpense finds every active budget matched by an expense's
// (owner, category, date) tuple and evaluates each. This is called
// explicitly from the expense write path rather than through any implicit
// save hook, so the dependency stays visible.
func (s *Service) EvaluateForExpense(userID int64, category string, date time.Time) ([]Alert, error) {
	budgets, err := s.repo.FindActiveForExpense(userID, category, date)
	if err != nil {
		s.logger.Error("failed to find budgets for expense", "error", err,
			"user_id", userID, "category", category)
		return nil, err
	}

	var all []Alert
	for _, b := range budgets {
		alerts, err := s.Evaluate(b.ID)
		if err != nil {
			return all, err
		}
		all = append(all, alerts...)
	}
	return all, nil
}

// RolloverDuePeriods closes every active budget whose period has ended
// and opens the next period for it. Budgets with rollover enabled carry
// their unused remainder into the new amount; the new period starts with
// clean alert flags. Returns the budgets created.
func (s *Service) RolloverDuePeriods(now time.Time) ([]*Budget, error) {
	ended, err := s.repo.ListEndedActive(now)
	if err != nil {
		s.logger.Error("failed to list ended budgets", "error", err)
		return nil, err
	}

	var created []*Budget
	for _, old := range ended {
		spent, err := s.repo.SpentCents(old)
		if err != nil {
			return created, err
		}
		if err := s.repo.MarkCompleted(old.ID); err != nil {
			return created, err
		}

		amount := old.AmountCents
		if old.RolloverUnused {
			if remaining := old.RemainingCents(spent); remaining > 0 {
				amount += remaining
			}
		}

		start, end := nextPeriod(old.Period, old.StartDate, old.EndDate)
		next := &Budget{
			UserID:            old.UserID,
			Category:          old.Category,
			Name:              fmt.Sprintf("%s - %s", old.Category, start.Format("January 2006")),
			AmountCents:       amount,
			Period:            old.Period,
			StartDate:         start,
			EndDate:           end,
			Status:            StatusActive,
			AlertThreshold80:  old.AlertThreshold80,
			AlertThreshold100: old.AlertThreshold100,
			RolloverUnused:    old.RolloverUnused,
		}
		if err := s.repo.Create(next); err != nil {
			s.logger.Error("failed to create next-period budget",
				"error", err, "previous_budget_id", old.ID)
			return created, err
		}

		s.logger.Info("budget rolled over",
			"previous_budget_id", old.ID,
			"budget_id", next.ID,
			"amount", next.AmountCents)
		created = append(created, next)
	}
	return created, nil
}

func nextPeriod(period string, start, end time.Time) (time.Time, time.Time) {
	switch period {
	case PeriodWeekly:
		return start.AddDate(0, 0, 7), end.AddDate(0, 0, 7)
	case PeriodMonthly:
		next := start.AddDate(0, 1, 0)
		return next, next.AddDate(0, 1, -1)
	case PeriodQuarterly:
		next := start.AddDate(0, 3, 0)
		return next, next.AddDate(0, 3, -1)
	case PeriodYearly:
		next := start.AddDate(1, 0, 0)
		return next, next.AddDate(1, 0, -1)
	default:
		span := end.Sub(start) + 24*time.Hour
		return end.AddDate(0, 0, 1), end.Add(span)
	}
}

// ResetAlerts clears both alerted flags; used when a new period begins.
func (s *Service) ResetAlerts(budgetID int64) error {
	if _, err := s.GetBudget(budgetID); err != nil {
		return err
	}
	if err := s.repo.ResetAlerts(budgetID); err != nil {
		s.logger.Error("failed to reset alerts", "error", err, "budget_id", budgetID)
		return err
	}
	s.logger.Info("budget alerts reset", "budget_id", budgetID)
	return nil
}

func (s *Service) GetBudget(id int64) (*Budget, error) {
	b, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get budget", "error", err, "budget_id", id)
		return nil, internal.NewNotFoundError("budget not found", internal.ErrCodeBudgetNotFound)
	}
	return b, nil
}

// BudgetStatus returns the on-demand utilization view of one budget.
func (s *Service) BudgetStatus(id int64) (*BudgetStatusResponse, error) {
	b, err := s.GetBudget(id)
	if err != nil {
		return nil, err
	}
	spent, err := s.repo.SpentCents(b)
	if err != nil {
		return nil, err
	}
	return &BudgetStatusResponse{
		Budget:             b,
		SpentCents:         spent,
		RemainingCents:     b.RemainingCents(spent),
		UtilizationPercent: b.UtilizationPercent(spent),
	}, nil
}

// Summary aggregates all of a user's budgets. Everything is recomputed per
// call; there is no cached rollup to drift.
func (s *Service) Summary(userID int64) (*SummaryResponse, error) {
	budgets, err := s.repo.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &SummaryResponse{BudgetCount: len(budgets)}
	for _, b := range budgets {
		spent, err := s.repo.SpentCents(b)
		if err != nil {
			return nil, err
		}
		summary.TotalBudgetCents += b.AmountCents
		summary.TotalSpentCents += spent
		if b.IsOverBudget(spent) {
			summary.OverBudgetCount++
		} else if b.UtilizationPercent(spent) >= 80 {
			summary.NearLimitCount++
		}
	}
	summary.RemainingCents = summary.TotalBudgetCents - summary.TotalSpentCents
	if summary.TotalBudgetCents > 0 {
		summary.UtilizationPercent = float64(summary.TotalSpentCents) / float64(summary.TotalBudgetCents) * 100
	}
	return summary, nil
}

func (s *Service) ListBudgets(userID int64) ([]*Budget, error) {
	return s.repo.ListForUser(userID)
}

func (s *Service) UnreadAlerts(userID int64) ([]Alert, error) {
	return s.repo.ListAlerts(userID, true)
}

func (s *Service) MarkAlertsRead(userID int64, dto MarkAlertsReadDTO) error {
	return s.repo.MarkAlertsRead(userID, dto.AlertIDs)
}

// MarkAlertEmailed records successful delivery; called by the notification
// handler after the mail went out.
func (s *Service) MarkAlertEmailed(alertID int64) error {
	return s.repo.MarkAlertEmailed(alertID)
}

func (s *Service) publishAlert(a Alert) {
	if s.bus == nil {
		return
	}
	evt := events.NewBudgetAlertCreatedEvent(a.ID, a.BudgetID, a.UserID, a.AlertType, a.Message)
	if err := s.bus.Publish(context.Background(), evt); err != nil {
		s.logger.Warn("failed to publish alert event", "error", err, "alert_id", a.ID)
	}
}
