package settlement

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/finance-tracker/internal"
	"github.com/frahmantamala/finance-tracker/internal/core/metrics"
	"github.com/frahmantamala/finance-tracker/internal/debt"
	"github.com/frahmantamala/finance-tracker/internal/expense"
	"github.com/frahmantamala/finance-tracker/internal/group"
	"github.com/frahmantamala/finance-tracker/internal/splitcalc"
)

// GroupAPI is the slice of the group service the ledger needs: membership
// is read, never mutated, from here.
type GroupAPI interface {
	GetGroup(id int64) (*group.ExpenseGroup, error)
}

// ExpenseAPI provides the underlying expense records. The expense amount is
// treated as authoritative and immutable once a shared expense references it.
type ExpenseAPI interface {
	GetExpense(id int64) (*expense.Expense, error)
}

// Repository defines the data access methods for the settlement ledger.
// Multi-row mutations are transactional: either every row commits or none.
type Repository interface {
	Create(se *SharedExpense, debts []debt.Debt) error
	GetByID(id int64) (*SharedExpense, error)
	GetByExpenseID(expenseID int64) (*SharedExpense, error)
	ListByGroup(groupID int64) ([]*SharedExpense, error)
	ReplaceSplits(se *SharedExpense, method string, splits []Split, debts []debt.Debt) error
	EnsureDebts(debts []debt.Debt) (int, error)
	SoftDelete(id int64) error
}

// Service owns SharedExpense, Split and derived Debt creation.
type Service struct {
	repo     Repository
	groups   GroupAPI
	expenses ExpenseAPI
	logger   *slog.Logger
}

func NewService(repo Repository, groups GroupAPI, expenses ExpenseAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		groups:   groups,
		expenses: expenses,
		logger:   logger,
	}
}

// CreateSharedExpense splits an expense among group members and persists
// the shared expense, its splits and the derived debts in one transaction.
func (s *Service) CreateSharedExpense(dto CreateSharedExpenseDTO) (*SharedExpense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("shared expense validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exp, err := s.expenses.GetExpense(dto.ExpenseID)
	if err != nil {
		s.logger.Error("expense not found for sharing", "error", err, "expense_id", dto.ExpenseID)
		return nil, internal.NewNotFoundError("expense not found", internal.ErrCodeExpenseNotFound)
	}
	if !exp.IsCounted() {
		return nil, internal.NewValidationError(
			"only completed, non-deleted expenses can be shared",
			internal.ErrCodeExpenseNotCompleted)
	}

	g, err := s.groups.GetGroup(dto.GroupID)
	if err != nil {
		s.logger.Error("group not found for sharing", "error", err, "group_id", dto.GroupID)
		return nil, internal.NewNotFoundError("expense group not found", internal.ErrCodeGroupNotFound)
	}
	if !g.HasMember(dto.PayerID) {
		return nil, internal.NewValidationError(
			fmt.Sprintf("payer %d is not a member of group %d", dto.PayerID, dto.GroupID),
			internal.ErrCodeNotGroupMember)
	}

	participants := dto.ParticipantIDs
	if len(participants) == 0 {
		participants = g.MemberIDs()
	}
	for _, p := range participants {
		if !g.HasMember(p) {
			return nil, internal.NewValidationError(
				fmt.Sprintf("participant %d is not a member of group %d", p, dto.GroupID),
				internal.ErrCodeNotGroupMember)
		}
	}

	if existing, err := s.repo.GetByExpenseID(dto.ExpenseID); err == nil && existing != nil {
		return nil, internal.NewConflictError(
			fmt.Sprintf("expense %d is already shared", dto.ExpenseID),
			internal.ErrCodeExpenseAlreadyShared)
	}

	shares, err := splitcalc.Compute(exp.AmountCents, dto.SplitMethod, participants, dto.Overrides)
	if err != nil {
		return nil, err
	}

	se := &SharedExpense{
		ExpenseID:   dto.ExpenseID,
		GroupID:     dto.GroupID,
		PayerID:     dto.PayerID,
		AmountCents: exp.AmountCents,
		SplitMethod: string(dto.SplitMethod),
		Notes:       dto.Notes,
		Splits:      splitsFromShares(0, shares),
	}

	debts := s.buildDebts(se, exp.Description)

	if err := s.repo.Create(se, debts); err != nil {
		s.logger.Error("failed to create shared expense", "error", err, "expense_id", dto.ExpenseID)
		return nil, err
	}

	metrics.SharedExpensesCreated.Inc()
	s.logger.Info("shared expense created",
		"shared_expense_id", se.ID,
		"expense_id", dto.ExpenseID,
		"group_id", dto.GroupID,
		"method", dto.SplitMethod,
		"splits", len(se.Splits),
		"debts", len(debts))

	return se, nil
}

// RecomputeSplits deletes the existing unsettled splits and their derived
// debts, then recreates both from a fresh computation. A settled split
// blocks the whole operation; a paid split is never silently overwritten.
func (s *Service) RecomputeSplits(sharedExpenseID int64, dto RecomputeSplitsDTO) (*SharedExpense, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	se, err := s.GetSharedExpense(sharedExpenseID)
	if err != nil {
		return nil, err
	}
	if se.HasSettledSplit() {
		return nil, internal.NewConflictError(
			"cannot recompute splits: at least one split is already settled",
			internal.ErrCodeSplitAlreadySettled)
	}

	g, err := s.groups.GetGroup(se.GroupID)
	if err != nil {
		return nil, internal.NewNotFoundError("expense group not found", internal.ErrCodeGroupNotFound)
	}

	participants := dto.ParticipantIDs
	if len(participants) == 0 {
		participants = g.MemberIDs()
	}
	for _, p := range participants {
		if !g.HasMember(p) {
			return nil, internal.NewValidationError(
				fmt.Sprintf("participant %d is not a member of group %d", p, se.GroupID),
				internal.ErrCodeNotGroupMember)
		}
	}

	shares, err := splitcalc.Compute(se.AmountCents, dto.SplitMethod, participants, dto.Overrides)
	if err != nil {
		return nil, err
	}

	newSplits := splitsFromShares(se.ID, shares)
	replacement := *se
	replacement.SplitMethod = string(dto.SplitMethod)
	replacement.Splits = newSplits
	debts := s.buildDebts(&replacement, "")

	if err := s.repo.ReplaceSplits(se, string(dto.SplitMethod), newSplits, debts); err != nil {
		s.logger.Error("failed to recompute splits", "error", err, "shared_expense_id", sharedExpenseID)
		return nil, err
	}

	s.logger.Info("splits recomputed",
		"shared_expense_id", sharedExpenseID,
		"method", dto.SplitMethod,
		"splits", len(newSplits))

	return s.GetSharedExpense(sharedExpenseID)
}

// DeriveDebts creates the missing debts for a shared expense. Idempotent:
// a split that already has a debt is skipped, so re-running never
// duplicates obligations.
func (s *Service) DeriveDebts(sharedExpenseID int64) (int, error) {
	se, err := s.GetSharedExpense(sharedExpenseID)
	if err != nil {
		return 0, err
	}

	debts := s.buildDebts(se, "")
	created, err := s.repo.EnsureDebts(debts)
	if err != nil {
		s.logger.Error("failed to derive debts", "error", err, "shared_expense_id", sharedExpenseID)
		return 0, err
	}

	s.logger.Info("debts derived",
		"shared_expense_id", sharedExpenseID,
		"created", created,
		"total", len(debts))
	return created, nil
}

func (s *Service) GetSharedExpense(id int64) (*SharedExpense, error) {
	se, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get shared expense", "error", err, "shared_expense_id", id)
		return nil, internal.NewNotFoundError("shared expense not found", internal.ErrCodeSharedExpenseNotFound)
	}
	return se, nil
}

func (s *Service) ListGroupSharedExpenses(groupID int64) ([]*SharedExpense, error) {
	return s.repo.ListByGroup(groupID)
}

// buildDebts derives one debt per non-payer split. The payer's own split
// never becomes a debt: owing yourself is meaningless.
func (s *Service) buildDebts(se *SharedExpense, description string) []debt.Debt {
	if description == "" {
		description = fmt.Sprintf("Split of shared expense %d", se.ExpenseID)
	} else {
		description = fmt.Sprintf("Split for: %s", description)
	}

	var debts []debt.Debt
	for i := range se.Splits {
		sp := &se.Splits[i]
		if sp.ParticipantID == se.PayerID {
			continue
		}
		groupID := se.GroupID
		d := debt.Debt{
			CreditorID:  se.PayerID,
			DebtorID:    sp.ParticipantID,
			AmountCents: sp.AmountCents,
			Status:      debt.StatusPending,
			Description: description,
			GroupID:     &groupID,
		}
		// split IDs exist only after the splits are persisted; the
		// repository links freshly created splits itself
		if sp.ID != 0 {
			splitID := sp.ID
			d.SplitID = &splitID
		}
		debts = append(debts, d)
	}
	return debts
}
