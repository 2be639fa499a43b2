package entity

import (
	"gorm.io/gorm"
)

type MenuItem struct {
	gorm.Model
	// SquareID joins the row back to the remote catalog object. Unique when
	// present; legacy hand-entered items have none, so the index is partial
	// and any number of empty values may coexist.
	SquareID    string `gorm:"size:64;index:idx_menu_items_square_id,unique,where:square_id <> ''" json:"squareId"`
	Name        string `gorm:"size:200;not null" json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"priceCents"`
	Category    string `gorm:"size:100" json:"category"`
	ImageURL    string `json:"imageUrl"`

	// Derived flags. Recomputed from the link table and the remote variation
	// count after every sync; not authoritative until that pass runs.
	HasOptions bool `json:"hasOptions"`
	HasSizes   bool `json:"hasSizes"`
}
