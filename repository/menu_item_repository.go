// repository/menu_item_repository.go
package repository

import (
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"gorm.io/gorm"
)

type MenuItemRepository struct {
	DB *gorm.DB
}

func NewMenuItemRepository(db *gorm.DB) *MenuItemRepository {
	return &MenuItemRepository{DB: db}
}

func (r *MenuItemRepository) FindAll() ([]entity.MenuItem, error) {
	var items []entity.MenuItem
	err := r.DB.Order("category asc, name asc").Find(&items).Error
	return items, err
}

func (r *MenuItemRepository) FindByID(id uint) (*entity.MenuItem, error) {
	var item entity.MenuItem
	err := r.DB.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuItemRepository) FindBySquareID(squareID string) (*entity.MenuItem, error) {
	var item entity.MenuItem
	err := r.DB.Where("square_id = ?", squareID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AllSquareIDs returns the external IDs of every locally-known item. This set
// is the boundary of the database-first policy: sync only ever links against
// IDs in it.
func (r *MenuItemRepository) AllSquareIDs() ([]string, error) {
	var ids []string
	err := r.DB.Model(&entity.MenuItem{}).
		Where("square_id <> ''").
		Pluck("square_id", &ids).Error
	return ids, err
}

// UpsertBySquareID inserts or updates an item keyed by its external ID.
func (r *MenuItemRepository) UpsertBySquareID(item *entity.MenuItem) (created bool, err error) {
	var existing entity.MenuItem
	err = r.DB.Where("square_id = ?", item.SquareID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true, r.DB.Create(item).Error
	}
	if err != nil {
		return false, err
	}
	item.ID = existing.ID
	return false, r.DB.Model(&existing).Updates(map[string]any{
		"name":        item.Name,
		"description": item.Description,
		"price_cents": item.PriceCents,
		"category":    item.Category,
		"image_url":   item.ImageURL,
		"has_sizes":   item.HasSizes,
	}).Error
}

// UpdateFlags persists recomputed derived flags for one item.
func (r *MenuItemRepository) UpdateFlags(id uint, hasOptions, hasSizes bool) error {
	return r.DB.Model(&entity.MenuItem{}).Where("id = ?", id).Updates(map[string]any{
		"has_options": hasOptions,
		"has_sizes":   hasSizes,
	}).Error
}
