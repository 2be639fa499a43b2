package square

import (
	"strings"
)

// ObjectType discriminates the catalog object union.
type ObjectType string

const (
	TypeItem          ObjectType = "ITEM"
	TypeCategory      ObjectType = "CATEGORY"
	TypeItemVariation ObjectType = "ITEM_VARIATION"
	TypeModifierList  ObjectType = "MODIFIER_LIST"
	TypeModifier      ObjectType = "MODIFIER"
	TypeImage         ObjectType = "IMAGE"
)

// placeholderSentinel prefixes temporary IDs Square assigns to objects that
// were never committed. They must be filtered before any remote call.
const placeholderSentinel = "#"

// IsPlaceholderID reports whether id is a not-yet-committed temporary ID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderSentinel)
}

// Money is an integer amount in minor currency units.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CatalogObject is the tagged union returned by the catalog endpoints.
// Exactly one *Data payload matching Type must be present; Validate enforces
// that so a mistagged object never reaches the mapping code.
type CatalogObject struct {
	Type      ObjectType `json:"type"`
	ID        string     `json:"id"`
	IsDeleted bool       `json:"is_deleted"`

	ItemData          *ItemData          `json:"item_data,omitempty"`
	CategoryData      *CategoryData      `json:"category_data,omitempty"`
	ItemVariationData *ItemVariationData `json:"item_variation_data,omitempty"`
	ModifierListData  *ModifierListData  `json:"modifier_list_data,omitempty"`
	ModifierData      *ModifierData      `json:"modifier_data,omitempty"`
	ImageData         *ImageData         `json:"image_data,omitempty"`
}

// Validate checks the type tag against the payload that actually arrived.
func (o *CatalogObject) Validate() error {
	if o.ID == "" {
		return &DecodeError{Type: o.Type, Reason: "missing object id"}
	}
	var present bool
	switch o.Type {
	case TypeItem:
		present = o.ItemData != nil
	case TypeCategory:
		present = o.CategoryData != nil
	case TypeItemVariation:
		present = o.ItemVariationData != nil
	case TypeModifierList:
		present = o.ModifierListData != nil
	case TypeModifier:
		present = o.ModifierData != nil
	case TypeImage:
		present = o.ImageData != nil
	default:
		return &DecodeError{ObjectID: o.ID, Type: o.Type, Reason: "unknown object type"}
	}
	// Deleted objects legitimately arrive without their payload.
	if !present && !o.IsDeleted {
		return &DecodeError{ObjectID: o.ID, Type: o.Type, Reason: "missing payload for declared type"}
	}
	return nil
}

// ModifierListInfo references a modifier list from an item or variation.
type ModifierListInfo struct {
	ModifierListID       string `json:"modifier_list_id"`
	Enabled              *bool  `json:"enabled,omitempty"`
	MinSelectedModifiers int    `json:"min_selected_modifiers"`
	MaxSelectedModifiers int    `json:"max_selected_modifiers"`
}

type ItemData struct {
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	CategoryID       string             `json:"category_id"`
	ImageURL         string             `json:"image_url"`
	Variations       []CatalogObject    `json:"variations"`
	ModifierListInfo []ModifierListInfo `json:"modifier_list_info"`
}

type CategoryData struct {
	Name string `json:"name"`
}

type ItemVariationData struct {
	ItemID           string             `json:"item_id"`
	Name             string             `json:"name"`
	Ordinal          int                `json:"ordinal"`
	PriceMoney       *Money             `json:"price_money"`
	ModifierListInfo []ModifierListInfo `json:"modifier_list_info"`
}

type ModifierListData struct {
	Name               string          `json:"name"`
	Ordinal            int             `json:"ordinal"`
	SelectionType      string          `json:"selection_type"` // SINGLE | MULTIPLE
	HiddenFromCustomer bool            `json:"hidden_from_customer"`
	Modifiers          []CatalogObject `json:"modifiers"`
}

type ModifierData struct {
	Name           string `json:"name"`
	Ordinal        int    `json:"ordinal"`
	ModifierListID string `json:"modifier_list_id"`
	PriceMoney     *Money `json:"price_money"`
	OnByDefault    bool   `json:"on_by_default"`
}

type ImageData struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Inventory states that count as sellable at a location.
const (
	InventoryStateInStock = "IN_STOCK"
	InventoryStateSold    = "SOLD"
)

// InventoryCount is one row of the inventory batch lookup.
type InventoryCount struct {
	CatalogObjectID string `json:"catalog_object_id"`
	LocationID      string `json:"location_id"`
	State           string `json:"state"`
	Quantity        string `json:"quantity"`
}
