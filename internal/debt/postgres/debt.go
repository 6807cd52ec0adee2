package postgres

import (
	"time"

	"github.com/frahmantamala/finance-tracker/internal/debt"
	"github.com/frahmantamala/finance-tracker/internal/settlement"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DebtRepository implements the debt.Repository interface using GORM
type DebtRepository struct {
	db *gorm.DB
}

func NewDebtRepository(db *gorm.DB) debt.Repository {
	return &DebtRepository{db: db}
}

func (r *DebtRepository) GetByID(id int64) (*debt.Debt, error) {
	var d debt.Debt
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, debt.ErrDebtNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DebtRepository) ListByCreditor(creditorID int64) ([]*debt.Debt, error) {
	var debts []*debt.Debt
	err := r.db.Where("creditor_id = ? AND is_deleted = ?", creditorID, false).
		Order("created_at DESC").
		Find(&debts).Error
	return debts, err
}

func (r *DebtRepository) ListByDebtor(debtorID int64) ([]*debt.Debt, error) {
	var debts []*debt.Debt
	err := r.db.Where("debtor_id = ? AND is_deleted = ?", debtorID, false).
		Order("created_at DESC").
		Find(&debts).Error
	return debts, err
}

func (r *DebtRepository) ListPayments(debtID int64) ([]debt.Payment, error) {
	var payments []debt.Payment
	err := r.db.Where("debt_id = ?", debtID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

// ApplyPayment locks the debt row, runs the transition and commits the
// debt update, the payment row and the settled-split propagation as one
// unit. Concurrent payments against the same debt serialize on the row
// lock, so settled_cents can never race past the original amount.
func (r *DebtRepository) ApplyPayment(debtID int64, transition func(d *debt.Debt) (*debt.Payment, error)) (*debt.Debt, *debt.Payment, error) {
	var (
		d       debt.Debt
		payment *debt.Payment
	)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", debtID, false).
			First(&d).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return debt.ErrDebtNotFound
			}
			return err
		}

		var err error
		payment, err = transition(&d)
		if err != nil {
			return err
		}
		if payment == nil {
			return nil // no-op transition, nothing to write
		}

		if err := tx.Save(&d).Error; err != nil {
			return err
		}
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		if d.Status == debt.StatusSettled && d.SplitID != nil {
			if err := tx.Model(&settlement.Split{}).
				Where("id = ?", *d.SplitID).
				Updates(map[string]interface{}{
					"is_settled": true,
					"settled_at": d.SettledAt,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &d, payment, nil
}

// Mutate locks the debt row, runs the transition and saves the result.
func (r *DebtRepository) Mutate(debtID int64, transition func(d *debt.Debt) error) (*debt.Debt, error) {
	var d debt.Debt
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", debtID, false).
			First(&d).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return debt.ErrDebtNotFound
			}
			return err
		}
		if err := transition(&d); err != nil {
			return err
		}
		d.UpdatedAt = time.Now()
		return tx.Save(&d).Error
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}
