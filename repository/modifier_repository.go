// repository/modifier_repository.go
package repository

import (
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"gorm.io/gorm"
)

type ModifierRepository struct {
	DB *gorm.DB
}

func NewModifierRepository(db *gorm.DB) *ModifierRepository {
	return &ModifierRepository{DB: db}
}

func (r *ModifierRepository) FindAllLists() ([]entity.ModifierList, error) {
	var lists []entity.ModifierList
	err := r.DB.Preload("Modifiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order asc")
	}).Order("display_order asc").Find(&lists).Error
	return lists, err
}

func (r *ModifierRepository) FindAllModifiers() ([]entity.Modifier, error) {
	var mods []entity.Modifier
	err := r.DB.Order("modifier_list_id asc, display_order asc").Find(&mods).Error
	return mods, err
}

// FindListsBySquareIDs fetches lists (with modifiers) for the given external
// IDs, used when materializing an item's customization options.
func (r *ModifierRepository) FindListsBySquareIDs(squareIDs []string) ([]entity.ModifierList, error) {
	if len(squareIDs) == 0 {
		return nil, nil
	}
	var lists []entity.ModifierList
	err := r.DB.Preload("Modifiers", func(db *gorm.DB) *gorm.DB {
		return db.Where("enabled = ?", true).Order("display_order asc")
	}).Where("square_id IN ?", squareIDs).Order("display_order asc").Find(&lists).Error
	return lists, err
}

// UpsertListBySquareID inserts or updates a modifier list keyed by external
// ID. Repeated runs with unchanged remote data converge to the same row.
func (r *ModifierRepository) UpsertListBySquareID(list *entity.ModifierList) (created bool, err error) {
	var existing entity.ModifierList
	err = r.DB.Where("square_id = ?", list.SquareID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true, r.DB.Create(list).Error
	}
	if err != nil {
		return false, err
	}
	list.ID = existing.ID
	return false, r.DB.Model(&existing).Updates(map[string]any{
		"name":           list.Name,
		"selection_type": list.SelectionType,
		"min_selections": list.MinSelections,
		"max_selections": list.MaxSelections,
		"enabled":        list.Enabled,
		"display_order":  list.DisplayOrder,
	}).Error
}

// UpsertModifierBySquareID inserts or updates a single modifier option.
func (r *ModifierRepository) UpsertModifierBySquareID(mod *entity.Modifier) (created bool, err error) {
	var existing entity.Modifier
	err = r.DB.Where("square_id = ?", mod.SquareID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true, r.DB.Create(mod).Error
	}
	if err != nil {
		return false, err
	}
	mod.ID = existing.ID
	return false, r.DB.Model(&existing).Updates(map[string]any{
		"modifier_list_id":  mod.ModifierListID,
		"name":              mod.Name,
		"price_delta_cents": mod.PriceDeltaCents,
		"enabled":           mod.Enabled,
		"display_order":     mod.DisplayOrder,
	}).Error
}
