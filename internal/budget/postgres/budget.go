package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/finance-tracker/internal/budget"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(b *budget.Budget) error {
	return r.db.Create(b).Error
}

func (r *BudgetRepository) GetByID(id int64) (*budget.Budget, error) {
	var b budget.Budget
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, budget.ErrBudgetNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BudgetRepository) ListForUser(userID int64) ([]*budget.Budget, error) {
	var budgets []*budget.Budget
	err := r.db.
		Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("start_date DESC").
		Find(&budgets).Error
	return budgets, err
}

// FindActiveForExpense returns every active budget whose category and
// period window match the expense. More than one can match when periods
// overlap; callers evaluate each.
func (r *BudgetRepository) FindActiveForExpense(userID int64, category string, date time.Time) ([]*budget.Budget, error) {
	var budgets []*budget.Budget
	day := date.Truncate(24 * time.Hour)
	err := r.db.
		Where("user_id = ? AND category = ? AND is_deleted = ?", userID, category, false).
		Where("status IN ?", []string{budget.StatusActive, budget.StatusExceeded}).
		Where("start_date <= ? AND end_date >= ?", day, day).
		Find(&budgets).Error
	return budgets, err
}

// SpentCents sums the counted expenses inside the budget's window. The
// SUM runs in the database; rows are never pulled back to add up here.
func (r *BudgetRepository) SpentCents(b *budget.Budget) (int64, error) {
	return r.spentCents(r.db, b)
}

func (r *BudgetRepository) spentCents(tx *gorm.DB, b *budget.Budget) (int64, error) {
	var total int64
	err := tx.Table("expenses").
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("user_id = ? AND category = ? AND is_deleted = ?", b.UserID, b.Category, false).
		Where("status = ?", "COMPLETED").
		Where("expense_date >= ? AND expense_date <= ?", b.StartDate, b.EndDate).
		Scan(&total).Error
	return total, err
}

// Evaluate locks the budget row, computes spent inside the same
// transaction, runs the threshold callback, and persists whatever alerts
// and flag updates it produced. Two concurrent evaluations serialize on
// the row lock, so each threshold fires exactly once.
func (r *BudgetRepository) Evaluate(budgetID int64, evaluate func(b *budget.Budget, spentCents int64) []budget.Alert) ([]budget.Alert, error) {
	var alerts []budget.Alert
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var b budget.Budget
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", budgetID, false).
			First(&b).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return budget.ErrBudgetNotFound
			}
			return err
		}

		spent, err := r.spentCents(tx, &b)
		if err != nil {
			return err
		}

		alerts = evaluate(&b, spent)
		if len(alerts) == 0 {
			return nil
		}

		if err := tx.Model(&budget.Budget{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"alerted_at_80":  b.AlertedAt80,
				"alerted_at_100": b.AlertedAt100,
				"status":         b.Status,
				"updated_at":     time.Now(),
			}).Error; err != nil {
			return err
		}

		for i := range alerts {
			if err := tx.Create(&alerts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// ListEndedActive returns active budgets whose period closed before now.
func (r *BudgetRepository) ListEndedActive(now time.Time) ([]*budget.Budget, error) {
	var budgets []*budget.Budget
	day := now.Truncate(24 * time.Hour)
	err := r.db.
		Where("status IN ? AND is_deleted = ?", []string{budget.StatusActive, budget.StatusExceeded}, false).
		Where("end_date < ?", day).
		Find(&budgets).Error
	return budgets, err
}

func (r *BudgetRepository) MarkCompleted(budgetID int64) error {
	return r.db.Model(&budget.Budget{}).
		Where("id = ?", budgetID).
		Updates(map[string]interface{}{
			"status":     budget.StatusCompleted,
			"updated_at": time.Now(),
		}).Error
}

func (r *BudgetRepository) ResetAlerts(budgetID int64) error {
	return r.db.Model(&budget.Budget{}).
		Where("id = ?", budgetID).
		Updates(map[string]interface{}{
			"alerted_at_80":  false,
			"alerted_at_100": false,
			"updated_at":     time.Now(),
		}).Error
}

func (r *BudgetRepository) ListAlerts(userID int64, unreadOnly bool) ([]budget.Alert, error) {
	q := r.db.Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var alerts []budget.Alert
	err := q.Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}

// MarkAlertsRead marks the given alerts, or all unread ones when no IDs
// are passed. Scoped to the user so one user cannot touch another's rows.
func (r *BudgetRepository) MarkAlertsRead(userID int64, alertIDs []int64) error {
	q := r.db.Model(&budget.Alert{}).Where("user_id = ? AND is_read = ?", userID, false)
	if len(alertIDs) > 0 {
		q = q.Where("id IN ?", alertIDs)
	}
	return q.Update("is_read", true).Error
}

func (r *BudgetRepository) MarkAlertEmailed(alertID int64) error {
	return r.db.Model(&budget.Alert{}).
		Where("id = ?", alertID).
		Update("sent_via_email", true).Error
}
