package user

import (
	"errors"
	"time"
)

// User is the account directory record. There is no authentication here;
// callers identify themselves by ID and the directory supplies names and
// email addresses for notifications and group membership.
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}

var ErrNotFound = errors.New("user not found")
