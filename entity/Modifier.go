package entity

import (
	"gorm.io/gorm"
)

type Modifier struct {
	gorm.Model
	SquareID       string `gorm:"size:64;uniqueIndex;not null" json:"squareId"`
	ModifierListID uint   `gorm:"index;not null" json:"modifierListId"`
	Name           string `gorm:"size:200;not null" json:"name"`
	// PriceDeltaCents is a signed integer amount in minor currency units.
	// No float arithmetic touches this field anywhere in the pipeline.
	PriceDeltaCents int64 `json:"priceDeltaCents"`
	Enabled         bool  `gorm:"not null;default:true" json:"enabled"`
	DisplayOrder    int   `gorm:"not null;default:0" json:"displayOrder"`
}
