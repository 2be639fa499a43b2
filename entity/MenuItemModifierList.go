package entity

// MenuItemModifierList links a menu item to a modifier list by Square IDs.
// It is the only table keyed purely by external IDs: links are written before
// local row IDs are guaranteed to resolve, and resolution happens lazily at
// read time.
type MenuItemModifierList struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	ItemSquareID         string `gorm:"size:64;not null;uniqueIndex:idx_item_list,priority:1" json:"itemSquareId"`
	ModifierListSquareID string `gorm:"size:64;not null;uniqueIndex:idx_item_list,priority:2" json:"modifierListSquareId"`
	Enabled              bool   `gorm:"not null;default:true" json:"enabled"`
}
