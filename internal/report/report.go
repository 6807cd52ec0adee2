package report

// MemberBalance is one member's position inside a group. Paid is the sum
// of shared-expense totals they fronted, Owed the sum of their splits
// across the group's shared expenses, and Balance the difference. A
// positive balance means the group owes them money.
type MemberBalance struct {
	UserID       int64 `json:"user_id" db:"user_id"`
	PaidCents    int64 `json:"paid_cents" db:"paid_cents"`
	OwedCents    int64 `json:"owed_cents" db:"owed_cents"`
	BalanceCents int64 `json:"balance_cents" db:"balance_cents"`
}

// GroupBalanceReport is the full per-member breakdown for a group,
// recomputed from the settlement ledger on every request.
type GroupBalanceReport struct {
	GroupID          int64           `json:"group_id"`
	TotalSharedCents int64           `json:"total_shared_cents"`
	Members          []MemberBalance `json:"members"`
}

// DebtSummary aggregates a user's open debts from both sides.
type DebtSummary struct {
	UserID         int64 `json:"user_id"`
	OwedToYouCents int64 `json:"owed_to_you_cents"`
	YouOweCents    int64 `json:"you_owe_cents"`
	NetCents       int64 `json:"net_cents"`
	OpenDebtCount  int   `json:"open_debt_count"`
}
