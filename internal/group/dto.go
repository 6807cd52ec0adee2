package group

import "errors"

type CreateGroupDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AdminID     int64   `json:"admin_id"`
	MemberIDs   []int64 `json:"member_ids"`
}

func (dto CreateGroupDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("group name is required")
	}
	if len(dto.Name) > 200 {
		return errors.New("group name must be less than 200 characters")
	}
	if dto.AdminID <= 0 {
		return errors.New("admin is required")
	}
	return nil
}

type MemberDTO struct {
	UserID int64 `json:"user_id"`
}

func (dto MemberDTO) Validate() error {
	if dto.UserID <= 0 {
		return errors.New("user id is required")
	}
	return nil
}

type ReassignAdminDTO struct {
	NewAdminID int64 `json:"new_admin_id"`
}

func (dto ReassignAdminDTO) Validate() error {
	if dto.NewAdminID <= 0 {
		return errors.New("new admin id is required")
	}
	return nil
}
