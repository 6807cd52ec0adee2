package group

import (
	"errors"
	"time"
)

// ExpenseGroup is a set of members who share expenses. The admin is always
// one of the members; membership mutation is assumed to be authorized by
// the caller.
type ExpenseGroup struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	AdminID     int64     `json:"admin_id" gorm:"column:admin_id;not null"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active;default:true"`
	IsDeleted   bool      `json:"is_deleted" gorm:"column:is_deleted;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`

	Members []Member `json:"members" gorm:"foreignKey:GroupID"`
}

func (ExpenseGroup) TableName() string {
	return "expense_groups"
}

// Member is one user's membership row in a group. A (group, user) pair is
// unique.
type Member struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	GroupID   int64     `json:"group_id" gorm:"column:group_id;uniqueIndex:idx_group_user;not null"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;uniqueIndex:idx_group_user;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Member) TableName() string {
	return "expense_group_members"
}

func (g *ExpenseGroup) HasMember(userID int64) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (g *ExpenseGroup) MemberIDs() []int64 {
	ids := make([]int64, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// Domain errors used by the repository layer.
var (
	ErrGroupNotFound = errors.New("expense group not found")
)
