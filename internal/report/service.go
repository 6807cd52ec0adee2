package report

import (
	"log/slog"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/group"
)

// GroupAPI exposes only the group lookup the reporter needs.
type GroupAPI interface {
	GetGroup(id int64) (*group.ExpenseGroup, error)
}

// Repository runs the aggregate queries. All sums happen in the database;
// nothing here walks rows in memory.
type Repository interface {
	PaidByMember(groupID int64) (map[int64]int64, error)
	OwedByMember(groupID int64) (map[int64]int64, error)
	TotalShared(groupID int64) (int64, error)
	DebtTotals(userID int64) (*DebtSummary, error)
}

type Service struct {
	repo   Repository
	groups GroupAPI
	logger *slog.Logger
}

func NewService(repo Repository, groups GroupAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, groups: groups, logger: logger}
}

// BalanceSummary builds the per-member balance report for a group. Every
// member appears, even those with no shared expenses yet. The invariant
// across the report is that balances sum to zero.
func (s *Service) BalanceSummary(groupID int64) (*GroupBalanceReport, error) {
	g, err := s.groups.GetGroup(groupID)
	if err != nil {
		return nil, internal.NewNotFoundError("group not found", internal.ErrCodeGroupNotFound)
	}

	paid, err := s.repo.PaidByMember(groupID)
	if err != nil {
		s.logger.Error("failed to sum paid amounts", "error", err, "group_id", groupID)
		return nil, err
	}
	owed, err := s.repo.OwedByMember(groupID)
	if err != nil {
		s.logger.Error("failed to sum owed amounts", "error", err, "group_id", groupID)
		return nil, err
	}
	total, err := s.repo.TotalShared(groupID)
	if err != nil {
		return nil, err
	}

	rep := &GroupBalanceReport{GroupID: groupID, TotalSharedCents: total}
	for _, memberID := range g.MemberIDs() {
		p := paid[memberID]
		o := owed[memberID]
		rep.Members = append(rep.Members, MemberBalance{
			UserID:       memberID,
			PaidCents:    p,
			OwedCents:    o,
			BalanceCents: p - o,
		})
	}
	return rep, nil
}

// UserDebtSummary aggregates the open debts a user holds on either side.
func (s *Service) UserDebtSummary(userID int64) (*DebtSummary, error) {
	summary, err := s.repo.DebtTotals(userID)
	if err != nil {
		s.logger.Error("failed to build debt summary", "error", err, "user_id", userID)
		return nil, err
	}
	summary.UserID = userID
	summary.NetCents = summary.OwedToYouCents - summary.YouOweCents
	return summary, nil
}
