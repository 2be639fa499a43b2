package entity

import (
	"gorm.io/gorm"
)

// ModifierList mirrors a Square customization group (e.g. "Milk Type").
type ModifierList struct {
	gorm.Model
	SquareID      string `gorm:"size:64;uniqueIndex;not null" json:"squareId"`
	Name          string `gorm:"size:200;not null" json:"name"`
	SelectionType string `gorm:"size:16;not null;default:SINGLE" json:"selectionType"` // SINGLE | MULTIPLE
	MinSelections int    `json:"minSelections"`
	MaxSelections *int   `json:"maxSelections"`
	Enabled       bool   `gorm:"not null;default:true" json:"enabled"`
	DisplayOrder  int    `gorm:"not null;default:0" json:"displayOrder"`

	Modifiers []Modifier `gorm:"foreignKey:ModifierListID" json:"modifiers"`
}
