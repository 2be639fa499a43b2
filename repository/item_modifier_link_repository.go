// repository/item_modifier_link_repository.go
package repository

import (
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ItemModifierLinkRepository struct {
	DB *gorm.DB
}

func NewItemModifierLinkRepository(db *gorm.DB) *ItemModifierLinkRepository {
	return &ItemModifierLinkRepository{DB: db}
}

func (r *ItemModifierLinkRepository) FindAll() ([]entity.MenuItemModifierList, error) {
	var links []entity.MenuItemModifierList
	err := r.DB.Order("item_square_id asc").Find(&links).Error
	return links, err
}

// ListSquareIDsForItem returns the modifier-list external IDs linked to one
// item.
func (r *ItemModifierLinkRepository) ListSquareIDsForItem(itemSquareID string) ([]string, error) {
	var ids []string
	err := r.DB.Model(&entity.MenuItemModifierList{}).
		Where("item_square_id = ? AND enabled = ?", itemSquareID, true).
		Pluck("modifier_list_square_id", &ids).Error
	return ids, err
}

func (r *ItemModifierLinkRepository) CountForItem(itemSquareID string) (int64, error) {
	var count int64
	err := r.DB.Model(&entity.MenuItemModifierList{}).
		Where("item_square_id = ? AND enabled = ?", itemSquareID, true).
		Count(&count).Error
	return count, err
}

// DeleteOrphans removes links whose item external ID is not in the
// locally-known set. Earlier sync runs linked modifiers to items outside the
// local catalog; this repairs that damage on every run.
func (r *ItemModifierLinkRepository) DeleteOrphans(knownItemSquareIDs []string) (int64, error) {
	if len(knownItemSquareIDs) == 0 {
		res := r.DB.Where("1 = 1").Delete(&entity.MenuItemModifierList{})
		return res.RowsAffected, res.Error
	}
	res := r.DB.Where("item_square_id NOT IN ?", knownItemSquareIDs).
		Delete(&entity.MenuItemModifierList{})
	return res.RowsAffected, res.Error
}

// DeleteForItems clears existing links for exactly the given items. The
// reconciler calls this right before reinserting, so repeated runs replace
// instead of accumulate.
func (r *ItemModifierLinkRepository) DeleteForItems(itemSquareIDs []string) error {
	if len(itemSquareIDs) == 0 {
		return nil
	}
	return r.DB.Where("item_square_id IN ?", itemSquareIDs).
		Delete(&entity.MenuItemModifierList{}).Error
}

// CreateBatch inserts links, ignoring duplicates of the (item, list) pair.
func (r *ItemModifierLinkRepository) CreateBatch(links []entity.MenuItemModifierList) error {
	if len(links) == 0 {
		return nil
	}
	return r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "item_square_id"}, {Name: "modifier_list_square_id"}},
		DoNothing: true,
	}).Create(&links).Error
}
