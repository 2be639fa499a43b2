// repository/category_repository.go
package repository

import (
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	DB *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

func (r *CategoryRepository) FindAll() ([]entity.Category, error) {
	var cats []entity.Category
	err := r.DB.Order("name asc").Find(&cats).Error
	return cats, err
}

// FindBySquareID resolves a whitelist entry. gorm.ErrRecordNotFound means the
// remote category is not whitelisted and the item must be rejected.
func (r *CategoryRepository) FindBySquareID(squareID string) (*entity.Category, error) {
	var cat entity.Category
	err := r.DB.Where("square_id = ?", squareID).First(&cat).Error
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpsertBySquareID binds or rebinds a whitelist row to its remote ID. Only
// the one-time category sync calls this.
func (r *CategoryRepository) UpsertBySquareID(cat *entity.Category) (created bool, err error) {
	var existing entity.Category
	err = r.DB.Where("square_id = ?", cat.SquareID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return true, r.DB.Create(cat).Error
	}
	if err != nil {
		return false, err
	}
	cat.ID = existing.ID
	return false, r.DB.Model(&existing).Updates(map[string]any{
		"name":         cat.Name,
		"display_name": cat.DisplayName,
	}).Error
}
