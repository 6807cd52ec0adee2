package postgres

import (
	"time"

	"github.com/frahmantamala/finance-tracker/internal/debt"
	"github.com/frahmantamala/finance-tracker/internal/settlement"
	"gorm.io/gorm"
)

// SettlementRepository implements the settlement.Repository interface using GORM
type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) settlement.Repository {
	return &SettlementRepository{db: db}
}

// Create persists the shared expense, its splits and the derived debts in
// one transaction. A failure anywhere leaves no partial rows behind.
func (r *SettlementRepository) Create(se *settlement.SharedExpense, debts []debt.Debt) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(se).Error; err != nil {
			return err
		}
		linkDebtsToSplits(se.Splits, debts)
		if len(debts) > 0 {
			if err := tx.Create(&debts).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SettlementRepository) GetByID(id int64) (*settlement.SharedExpense, error) {
	var se settlement.SharedExpense
	err := r.db.Preload("Splits").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&se).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, settlement.ErrSharedExpenseNotFound
		}
		return nil, err
	}
	return &se, nil
}

func (r *SettlementRepository) GetByExpenseID(expenseID int64) (*settlement.SharedExpense, error) {
	var se settlement.SharedExpense
	err := r.db.Preload("Splits").
		Where("expense_id = ? AND is_deleted = ?", expenseID, false).
		First(&se).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, settlement.ErrSharedExpenseNotFound
		}
		return nil, err
	}
	return &se, nil
}

func (r *SettlementRepository) ListByGroup(groupID int64) ([]*settlement.SharedExpense, error) {
	var ses []*settlement.SharedExpense
	err := r.db.Preload("Splits").
		Where("group_id = ? AND is_deleted = ?", groupID, false).
		Order("created_at DESC").
		Find(&ses).Error
	return ses, err
}

// ReplaceSplits swaps the split set of a shared expense atomically: old
// debts and splits go, the new computation comes in, all in one
// transaction. Settled-split protection is enforced by the service before
// it gets here.
func (r *SettlementRepository) ReplaceSplits(se *settlement.SharedExpense, method string, splits []settlement.Split, debts []debt.Debt) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		oldSplitIDs := make([]int64, 0, len(se.Splits))
		for _, sp := range se.Splits {
			oldSplitIDs = append(oldSplitIDs, sp.ID)
		}
		if len(oldSplitIDs) > 0 {
			if err := tx.Where("split_id IN ?", oldSplitIDs).Delete(&debt.Debt{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", oldSplitIDs).Delete(&settlement.Split{}).Error; err != nil {
				return err
			}
		}

		for i := range splits {
			splits[i].ID = 0
			splits[i].SharedExpenseID = se.ID
		}
		if err := tx.Create(&splits).Error; err != nil {
			return err
		}
		linkDebtsToSplits(splits, debts)
		if len(debts) > 0 {
			for i := range debts {
				debts[i].ID = 0
			}
			if err := tx.Create(&debts).Error; err != nil {
				return err
			}
		}

		return tx.Model(&settlement.SharedExpense{}).
			Where("id = ?", se.ID).
			Updates(map[string]interface{}{
				"split_method": method,
				"updated_at":   time.Now(),
			}).Error
	})
}

// EnsureDebts creates the debts that do not exist yet, keyed on the
// (creditor, debtor, split) triple. Returns how many rows were created.
func (r *SettlementRepository) EnsureDebts(debts []debt.Debt) (int, error) {
	created := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range debts {
			d := debts[i]
			if d.SplitID == nil {
				continue
			}
			var count int64
			if err := tx.Model(&debt.Debt{}).
				Where("creditor_id = ? AND debtor_id = ? AND split_id = ?",
					d.CreditorID, d.DebtorID, *d.SplitID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&d).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func (r *SettlementRepository) SoftDelete(id int64) error {
	return r.db.Model(&settlement.SharedExpense{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"updated_at": time.Now(),
		}).Error
}

// linkDebtsToSplits fills in the split back-reference for debts built
// before their splits were persisted, matching on the debtor.
func linkDebtsToSplits(splits []settlement.Split, debts []debt.Debt) {
	byParticipant := make(map[int64]int64, len(splits))
	for _, sp := range splits {
		byParticipant[sp.ParticipantID] = sp.ID
	}
	for i := range debts {
		if debts[i].SplitID != nil {
			continue
		}
		if splitID, ok := byParticipant[debts[i].DebtorID]; ok && splitID != 0 {
			id := splitID
			debts[i].SplitID = &id
		}
	}
}
