package entity

import (
	"gorm.io/gorm"
)

// Category is the local whitelist of Square catalog categories. Rows are
// seeded explicitly; the sync never invents a category from remote data.
type Category struct {
	gorm.Model
	SquareID    string `gorm:"size:64;uniqueIndex;not null" json:"squareId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	DisplayName string `gorm:"size:100" json:"displayName"`
}
