package postgres

import (
	"time"

	"github.com/frahmantamala/finance-tracker/internal/group"
	"gorm.io/gorm"
)

// GroupRepository implements the group.Repository interface using GORM
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) group.Repository {
	return &GroupRepository{db: db}
}

// Create saves the group and its member rows in one transaction.
func (r *GroupRepository) Create(g *group.ExpenseGroup) error {
	return r.db.Create(g).Error
}

func (r *GroupRepository) GetByID(id int64) (*group.ExpenseGroup, error) {
	var g group.ExpenseGroup
	err := r.db.Preload("Members").
		Where("id = ? AND is_deleted = ?", id, false).
		First(&g).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, group.ErrGroupNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) AddMember(groupID, userID int64) error {
	return r.db.Create(&group.Member{GroupID: groupID, UserID: userID}).Error
}

func (r *GroupRepository) RemoveMember(groupID, userID int64) error {
	return r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&group.Member{}).Error
}

func (r *GroupRepository) UpdateAdmin(groupID, newAdminID int64) error {
	return r.db.Model(&group.ExpenseGroup{}).
		Where("id = ?", groupID).
		Updates(map[string]interface{}{
			"admin_id":   newAdminID,
			"updated_at": time.Now(),
		}).Error
}

func (r *GroupRepository) SoftDelete(groupID int64) error {
	return r.db.Model(&group.ExpenseGroup{}).
		Where("id = ?", groupID).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"is_active":  false,
			"updated_at": time.Now(),
		}).Error
}

func (r *GroupRepository) IsMember(groupID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&group.Member{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}
