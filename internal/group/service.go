package group

import (
	"fmt"
	"log/slog"

	"github.com/frahmantamala/finance-tracker/internal"
)

// Repository defines the data access methods for expense groups.
type Repository interface {
	Create(g *ExpenseGroup) error
	GetByID(id int64) (*ExpenseGroup, error)
	AddMember(groupID, userID int64) error
	RemoveMember(groupID, userID int64) error
	UpdateAdmin(groupID, newAdminID int64) error
	SoftDelete(groupID int64) error
	IsMember(groupID, userID int64) (bool, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateGroup creates a group with its initial member set. The admin is
// always inserted as a member so the admin-is-member invariant holds from
// the first row.
func (s *Service) CreateGroup(dto CreateGroupDTO) (*ExpenseGroup, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("group validation failed", "error", err)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	memberSet := map[int64]struct{}{dto.AdminID: {}}
	members := []Member{{UserID: dto.AdminID}}
	for _, id := range dto.MemberIDs {
		if _, ok := memberSet[id]; ok {
			continue
		}
		memberSet[id] = struct{}{}
		members = append(members, Member{UserID: id})
	}

	g := &ExpenseGroup{
		Name:        dto.Name,
		Description: dto.Description,
		AdminID:     dto.AdminID,
		IsActive:    true,
		Members:     members,
	}

	if err := s.repo.Create(g); err != nil {
		s.logger.Error("failed to create group", "error", err, "admin_id", dto.AdminID)
		return nil, err
	}

	s.logger.Info("group created", "group_id", g.ID, "members", len(g.Members))
	return g, nil
}

func (s *Service) GetGroup(id int64) (*ExpenseGroup, error) {
	g, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get group", "error", err, "group_id", id)
		return nil, internal.NewNotFoundError("expense group not found", internal.ErrCodeGroupNotFound)
	}
	return g, nil
}

func (s *Service) AddMember(groupID int64, dto MemberDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	g, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	if g.HasMember(dto.UserID) {
		return internal.NewConflictError(
			fmt.Sprintf("user %d is already a member", dto.UserID),
			internal.ErrCodeDuplicateMember)
	}

	if err := s.repo.AddMember(groupID, dto.UserID); err != nil {
		s.logger.Error("failed to add member", "error", err, "group_id", groupID, "user_id", dto.UserID)
		return err
	}

	s.logger.Info("member added", "group_id", groupID, "user_id", dto.UserID)
	return nil
}

// RemoveMember drops a member from the group. Removing the admin is
// forbidden until the admin role has been reassigned, which keeps the
// admin-is-member invariant intact.
func (s *Service) RemoveMember(groupID, userID int64) error {
	g, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	if !g.HasMember(userID) {
		return internal.NewValidationError(
			fmt.Sprintf("user %d is not a member of group %d", userID, groupID),
			internal.ErrCodeNotGroupMember)
	}
	if g.AdminID == userID {
		return internal.NewConflictError(
			"cannot remove the group admin; reassign the admin role first",
			internal.ErrCodeAdminStillMember)
	}

	if err := s.repo.RemoveMember(groupID, userID); err != nil {
		s.logger.Error("failed to remove member", "error", err, "group_id", groupID, "user_id", userID)
		return err
	}

	s.logger.Info("member removed", "group_id", groupID, "user_id", userID)
	return nil
}

func (s *Service) ReassignAdmin(groupID int64, dto ReassignAdminDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	g, err := s.GetGroup(groupID)
	if err != nil {
		return err
	}
	if !g.HasMember(dto.NewAdminID) {
		return internal.NewValidationError(
			fmt.Sprintf("user %d is not a member of group %d", dto.NewAdminID, groupID),
			internal.ErrCodeAdminNotMember)
	}

	if err := s.repo.UpdateAdmin(groupID, dto.NewAdminID); err != nil {
		s.logger.Error("failed to reassign admin", "error", err, "group_id", groupID)
		return err
	}

	s.logger.Info("admin reassigned", "group_id", groupID, "new_admin_id", dto.NewAdminID)
	return nil
}

func (s *Service) DeleteGroup(groupID int64) error {
	if _, err := s.GetGroup(groupID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(groupID); err != nil {
		s.logger.Error("failed to delete group", "error", err, "group_id", groupID)
		return err
	}
	s.logger.Info("group deleted", "group_id", groupID)
	return nil
}

func (s *Service) IsMember(groupID, userID int64) (bool, error) {
	return s.repo.IsMember(groupID, userID)
}
