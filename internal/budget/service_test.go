package budget_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/budget"
)

func TestBudgetService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "BudgetService Suite")
}

type mockBudgetRepo struct {
	budgets     map[int64]*budget.Budget
	spent       map[int64]int64
	alerts      []budget.Alert
	nextID      int64
	nextAlertID int64

	evaluateErr error
	createErr   error
}

func newMockBudgetRepo() *mockBudgetRepo {
	return &mockBudgetRepo{
		budgets: make(map[int64]*budget.Budget),
		spent:   make(map[int64]int64),
	}
}

func (m *mockBudgetRepo) Create(b *budget.Budget) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	b.ID = m.nextID
	m.budgets[b.ID] = b
	return nil
}

func (m *mockBudgetRepo) GetByID(id int64) (*budget.Budget, error) {
	b, ok := m.budgets[id]
	if !ok {
		return nil, budget.ErrBudgetNotFound
	}
	return b, nil
}

func (m *mockBudgetRepo) ListForUser(userID int64) ([]*budget.Budget, error) {
	var out []*budget.Budget
	for _, b := range m.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBudgetRepo) FindActiveForExpense(userID int64, category string, date time.Time) ([]*budget.Budget, error) {
	var out []*budget.Budget
	for _, b := range m.budgets {
		if b.UserID != userID || b.Category != category {
			continue
		}
		if b.Status != budget.StatusActive && b.Status != budget.StatusExceeded {
			continue
		}
		if date.Before(b.StartDate) || date.After(b.EndDate) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockBudgetRepo) SpentCents(b *budget.Budget) (int64, error) {
	return m.spent[b.ID], nil
}

func (m *mockBudgetRepo) Evaluate(budgetID int64, evaluate func(b *budget.Budget, spentCents int64) []budget.Alert) ([]budget.Alert, error) {
	if m.evaluateErr != nil {
		return nil, m.evaluateErr
	}
	b, ok := m.budgets[budgetID]
	if !ok {
		return nil, budget.ErrBudgetNotFound
	}
	alerts := evaluate(b, m.spent[budgetID])
	for i := range alerts {
		m.nextAlertID++
		alerts[i].ID = m.nextAlertID
		m.alerts = append(m.alerts, alerts[i])
	}
	return alerts, nil
}

func (m *mockBudgetRepo) ListEndedActive(now time.Time) ([]*budget.Budget, error) {
	day := now.Truncate(24 * time.Hour)
	var out []*budget.Budget
	for _, b := range m.budgets {
		if b.Status != budget.StatusActive && b.Status != budget.StatusExceeded {
			continue
		}
		if b.EndDate.Before(day) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBudgetRepo) MarkCompleted(budgetID int64) error {
	b, ok := m.budgets[budgetID]
	if !ok {
		return budget.ErrBudgetNotFound
	}
	b.Status = budget.StatusCompleted
	return nil
}

func (m *mockBudgetRepo) ResetAlerts(budgetID int64) error {
	b, ok := m.budgets[budgetID]
	if !ok {
		return budget.ErrBudgetNotFound
	}
	b.ResetAlerts()
	return nil
}

func (m *mockBudgetRepo) ListAlerts(userID int64, unreadOnly bool) ([]budget.Alert, error) {
	var out []budget.Alert
	for _, a := range m.alerts {
		if a.UserID != userID {
			continue
		}
		if unreadOnly && a.IsRead {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockBudgetRepo) MarkAlertsRead(userID int64, alertIDs []int64) error {
	wanted := make(map[int64]bool, len(alertIDs))
	for _, id := range alertIDs {
		wanted[id] = true
	}
	for i := range m.alerts {
		if m.alerts[i].UserID != userID {
			continue
		}
		if len(alertIDs) == 0 || wanted[m.alerts[i].ID] {
			m.alerts[i].IsRead = true
		}
	}
	return nil
}

func (m *mockBudgetRepo) MarkAlertEmailed(alertID int64) error {
	for i := range m.alerts {
		if m.alerts[i].ID == alertID {
			m.alerts[i].SentViaEmail = true
			return nil
		}
	}
	return errors.New("alert not found")
}

var _ = Describe("BudgetService", func() {
	var (
		repo    *mockBudgetRepo
		service *budget.Service
	)

	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	monthStart := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	newBudget := func(amountCents int64) *budget.Budget {
		b := &budget.Budget{
			UserID:            1,
			Category:          "groceries",
			Name:              "groceries - August 2025",
			AmountCents:       amountCents,
			Period:            budget.PeriodMonthly,
			StartDate:         monthStart,
			EndDate:           monthEnd,
			Status:            budget.StatusActive,
			AlertThreshold80:  true,
			AlertThreshold100: true,
		}
		Expect(repo.Create(b)).To(Succeed())
		return b
	}

	BeforeEach(func() {
		repo = newMockBudgetRepo()
		service = budget.NewService(repo, nil, testLogger)
	})

	Describe("CreateBudget", func() {
		It("should apply monthly period, generated name and enabled thresholds by default", func() {
			b, err := service.CreateBudget(budget.CreateBudgetDTO{
				UserID:      1,
				Category:    "groceries",
				AmountCents: 50000,
				StartDate:   monthStart,
				EndDate:     monthEnd,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(b.Period).To(Equal(budget.PeriodMonthly))
			Expect(b.Name).To(Equal("groceries - August 2025"))
			Expect(b.AlertThreshold80).To(BeTrue())
			Expect(b.AlertThreshold100).To(BeTrue())
			Expect(b.Status).To(Equal(budget.StatusActive))
		})

		It("should honor explicitly disabled thresholds", func() {
			disabled := false
			b, err := service.CreateBudget(budget.CreateBudgetDTO{
				UserID:           1,
				Category:         "dining",
				AmountCents:      20000,
				StartDate:        monthStart,
				EndDate:          monthEnd,
				AlertThreshold80: &disabled,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(b.AlertThreshold80).To(BeFalse())
			Expect(b.AlertThreshold100).To(BeTrue())
		})

		It("should reject a non-positive amount", func() {
			_, err := service.CreateBudget(budget.CreateBudgetDTO{
				UserID:      1,
				Category:    "groceries",
				AmountCents: 0,
				StartDate:   monthStart,
				EndDate:     monthEnd,
			})

			Expect(err).To(HaveOccurred())
			Expect(internal.IsValidationError(err)).To(BeTrue())
		})

		It("should reject an end date before the start date", func() {
			_, err := service.CreateBudget(budget.CreateBudgetDTO{
				UserID:      1,
				Category:    "groceries",
				AmountCents: 50000,
				StartDate:   monthEnd,
				EndDate:     monthStart,
			})

			Expect(err).To(HaveOccurred())
			Expect(internal.IsValidationError(err)).To(BeTrue())
		})
	})

	Describe("Evaluate", func() {
		It("should emit the 80 percent alert when utilization reaches 80", func() {
			b := newBudget(10000)
			repo.spent[b.ID] = 8500

			alerts, err := service.Evaluate(b.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].AlertType).To(Equal(budget.AlertType80Percent))
			Expect(b.AlertedAt80).To(BeTrue())
			Expect(b.Status).To(Equal(budget.StatusActive))
		})

		It("should emit both alerts when one expense jumps past 100", func() {
			b := newBudget(10000)
			repo.spent[b.ID] = 7000

			alerts, err := service.Evaluate(b.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(BeEmpty())

			repo.spent[b.ID] = 12000
			alerts, err = service.Evaluate(b.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(HaveLen(2))
			Expect(alerts[0].AlertType).To(Equal(budget.AlertType80Percent))
			Expect(alerts[1].AlertType).To(Equal(budget.AlertTypeExceeded))
			Expect(b.Status).To(Equal(budget.StatusExceeded))
		})

		It("should not emit duplicate alerts on re-evaluation", func() {
			b := newBudget(10000)
			repo.spent[b.ID] = 12000

			first, err := service.Evaluate(b.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(first).To(HaveLen(2))

			again, err := service.Evaluate(b.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(again).To(BeEmpty())
			Expect(repo.alerts).To(HaveLen(2))
		})

		It("should skip a disabled threshold but still fire the other", func() {
			b := newBudget(10000)
			b.AlertThreshold80 = false
			repo.spent[b.ID] = 12000

			alerts, err := service.Evaluate(b.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].AlertType).To(Equal(budget.AlertTypeExceeded))
		})

		It("should fire the thresholds again after an explicit reset", func() {
			b := newBudget(10000)
			repo.spent[b.ID] = 9000

			alerts, err := service.Evaluate(b.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(HaveLen(1))

			Expect(service.ResetAlerts(b.ID)).To(Succeed())

			alerts, err = service.Evaluate(b.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
		})
	})

	Describe("EvaluateForExpense", func() {
		It("should evaluate every budget matching the expense owner, category and date", func() {
			matching := newBudget(10000)
			repo.spent[matching.ID] = 9000

			other := newBudget(10000)
			other.Category = "transport"
			repo.spent[other.ID] = 9000

			alerts, err := service.EvaluateForExpense(1, "groceries", monthStart.AddDate(0, 0, 10))

			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(HaveLen(1))
			Expect(alerts[0].BudgetID).To(Equal(matching.ID))
			Expect(other.AlertedAt80).To(BeFalse())
		})

		It("should ignore budgets whose period does not cover the expense date", func() {
			b := newBudget(10000)
			repo.spent[b.ID] = 9000

			alerts, err := service.EvaluateForExpense(1, "groceries", monthEnd.AddDate(0, 0, 5))

			Expect(err).ToNot(HaveOccurred())
			Expect(alerts).To(BeEmpty())
		})
	})

	Describe("RolloverDuePeriods", func() {
		It("should complete the old period and open the next one with clean flags", func() {
			b := newBudget(10000)
			b.AlertedAt80 = true
			repo.spent[b.ID] = 9000

			created, err := service.RolloverDuePeriods(monthEnd.AddDate(0, 0, 2))

			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(HaveLen(1))
			Expect(b.Status).To(Equal(budget.StatusCompleted))

			next := created[0]
			Expect(next.StartDate).To(Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
			Expect(next.EndDate).To(Equal(time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC)))
			Expect(next.AmountCents).To(Equal(int64(10000)))
			Expect(next.AlertedAt80).To(BeFalse())
			Expect(next.AlertedAt100).To(BeFalse())
			Expect(next.Status).To(Equal(budget.StatusActive))
		})

		It("should carry the unused remainder when rollover is enabled", func() {
			b := newBudget(10000)
			b.RolloverUnused = true
			repo.spent[b.ID] = 6000

			created, err := service.RolloverDuePeriods(monthEnd.AddDate(0, 0, 2))

			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(HaveLen(1))
			Expect(created[0].AmountCents).To(Equal(int64(14000)))
		})

		It("should never shrink the next amount for an overspent rollover budget", func() {
			b := newBudget(10000)
			b.RolloverUnused = true
			repo.spent[b.ID] = 13000

			created, err := service.RolloverDuePeriods(monthEnd.AddDate(0, 0, 2))

			Expect(err).ToNot(HaveOccurred())
			Expect(created[0].AmountCents).To(Equal(int64(10000)))
		})

		It("should leave budgets whose period has not ended alone", func() {
			newBudget(10000)

			created, err := service.RolloverDuePeriods(monthStart.AddDate(0, 0, 10))

			Expect(err).ToNot(HaveOccurred())
			Expect(created).To(BeEmpty())
		})
	})

	Describe("BudgetStatus", func() {
		It("should recompute spend and utilization on demand", func() {
			b := newBudget(20000)
			repo.spent[b.ID] = 5000

			status, err := service.BudgetStatus(b.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(status.SpentCents).To(Equal(int64(5000)))
			Expect(status.RemainingCents).To(Equal(int64(15000)))
			Expect(status.UtilizationPercent).To(Equal(25.0))
		})

		It("should return a not found error for an unknown budget", func() {
			_, err := service.BudgetStatus(42)

			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeBudgetNotFound))
		})
	})

	Describe("Summary", func() {
		It("should count near-limit and over-budget separately", func() {
			healthy := newBudget(10000)
			repo.spent[healthy.ID] = 2000

			nearLimit := newBudget(10000)
			repo.spent[nearLimit.ID] = 8500

			over := newBudget(10000)
			repo.spent[over.ID] = 11000

			summary, err := service.Summary(1)

			Expect(err).ToNot(HaveOccurred())
			Expect(summary.BudgetCount).To(Equal(3))
			Expect(summary.TotalBudgetCents).To(Equal(int64(30000)))
			Expect(summary.TotalSpentCents).To(Equal(int64(21500)))
			Expect(summary.NearLimitCount).To(Equal(1))
			Expect(summary.OverBudgetCount).To(Equal(1))
		})
	})

	Describe("alert inbox", func() {
		It("should list unread alerts and mark them read", func() {
			b := newBudget(10000)
			repo.spent[b.ID] = 12000

			_, err := service.Evaluate(b.ID)
			Expect(err).ToNot(HaveOccurred())

			unread, err := service.UnreadAlerts(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(unread).To(HaveLen(2))

			err = service.MarkAlertsRead(1, budget.MarkAlertsReadDTO{})
			Expect(err).ToNot(HaveOccurred())

			unread, err = service.UnreadAlerts(1)
			Expect(err).ToNot(HaveOccurred())
			Expect(unread).To(BeEmpty())
		})
	})
})
