package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/finance-tracker/internal/report"
)

// ReportRepository runs the read-model aggregates with raw SQL; the
// report surface never goes through the ORM.
type ReportRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

type memberTotal struct {
	UserID int64 `db:"user_id"`
	Total  int64 `db:"total"`
}

func (r *ReportRepository) PaidByMember(groupID int64) (map[int64]int64, error) {
	const query = `
		SELECT payer_id AS user_id, COALESCE(SUM(amount_cents), 0) AS total
		FROM shared_expenses
		WHERE group_id = $1 AND is_deleted = FALSE
		GROUP BY payer_id`

	var rows []memberTotal
	if err := r.db.Select(&rows, query, groupID); err != nil {
		return nil, err
	}
	return totalsByUser(rows), nil
}

func (r *ReportRepository) OwedByMember(groupID int64) (map[int64]int64, error) {
	const query = `
		SELECT s.participant_id AS user_id, COALESCE(SUM(s.amount_cents), 0) AS total
		FROM shared_expense_splits s
		JOIN shared_expenses se ON se.id = s.shared_expense_id
		WHERE se.group_id = $1 AND se.is_deleted = FALSE
		GROUP BY s.participant_id`

	var rows []memberTotal
	if err := r.db.Select(&rows, query, groupID); err != nil {
		return nil, err
	}
	return totalsByUser(rows), nil
}

func (r *ReportRepository) TotalShared(groupID int64) (int64, error) {
	const query = `
		SELECT COALESCE(SUM(amount_cents), 0)
		FROM shared_expenses
		WHERE group_id = $1 AND is_deleted = FALSE`

	var total int64
	err := r.db.Get(&total, query, groupID)
	return total, err
}

// DebtTotals sums the remaining amounts of non-terminal debts from both
// sides in one query.
func (r *ReportRepository) DebtTotals(userID int64) (*report.DebtSummary, error) {
	const query = `
		SELECT
			COALESCE(SUM(CASE WHEN creditor_id = $1 THEN amount_cents - settled_cents ELSE 0 END), 0) AS owed_to_you,
			COALESCE(SUM(CASE WHEN debtor_id = $1 THEN amount_cents - settled_cents ELSE 0 END), 0) AS you_owe,
			COUNT(*) AS open_count
		FROM debts
		WHERE (creditor_id = $1 OR debtor_id = $1)
		  AND status IN ('PENDING', 'PARTIALLY_PAID')`

	var row struct {
		OwedToYou int64 `db:"owed_to_you"`
		YouOwe    int64 `db:"you_owe"`
		OpenCount int   `db:"open_count"`
	}
	if err := r.db.Get(&row, query, userID); err != nil {
		return nil, err
	}
	return &report.DebtSummary{
		OwedToYouCents: row.OwedToYou,
		YouOweCents:    row.YouOwe,
		OpenDebtCount:  row.OpenCount,
	}, nil
}

func totalsByUser(rows []memberTotal) map[int64]int64 {
	totals := make(map[int64]int64, len(rows))
	for _, row := range rows {
		totals[row.UserID] = row.Total
	}
	return totals
}
