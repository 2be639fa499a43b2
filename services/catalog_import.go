package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
	"gorm.io/gorm"
)

// ErrCategoryNotWhitelisted marks an item whose remote category has no local
// whitelist entry. Such items are rejected, never bucketed into a fallback
// category: the old name-guessing fallback is what leaked another tenant's
// items into this catalog.
var ErrCategoryNotWhitelisted = errors.New("remote category not whitelisted")

// categoryWhitelist maps normalized remote category names to local display
// names. The one-time category sync binds Square IDs only for these entries;
// everything else stays unresolvable by design.
var categoryWhitelist = map[string]string{
	"coffee":      "Coffee",
	"tea":         "Tea",
	"cold drinks": "Cold Drinks",
	"food":        "Food",
	"retail":      "Retail",
}

// CatalogImporter turns raw remote items into local menu rows.
type CatalogImporter struct {
	categories *repository.CategoryRepository
	items      *repository.MenuItemRepository
}

func NewCatalogImporter(categories *repository.CategoryRepository, items *repository.MenuItemRepository) *CatalogImporter {
	return &CatalogImporter{categories: categories, items: items}
}

// SyncCategories binds whitelist rows to their remote IDs. Remote categories
// whose exact normalized name is not in the whitelist are ignored. Runs once
// at setup, not on the sync hot path.
func (imp *CatalogImporter) SyncCategories(ctx context.Context, remote []square.CatalogObject) (bound int, errs []string) {
	for _, obj := range remote {
		if obj.Type != square.TypeCategory || obj.IsDeleted {
			continue
		}
		if err := obj.Validate(); err != nil {
			errs = append(errs, err.Error())
			continue
		}
		name := strings.ToLower(strings.TrimSpace(obj.CategoryData.Name))
		display, ok := categoryWhitelist[name]
		if !ok {
			continue
		}
		cat := &entity.Category{SquareID: obj.ID, Name: name, DisplayName: display}
		if _, err := imp.categories.UpsertBySquareID(cat); err != nil {
			errs = append(errs, fmt.Sprintf("bind category %s: %v", obj.ID, err))
			continue
		}
		bound++
	}
	return bound, errs
}

// ResolveCategory looks up the whitelist by remote category ID. Unknown IDs
// fail with ErrCategoryNotWhitelisted.
func (imp *CatalogImporter) ResolveCategory(squareCategoryID string) (*entity.Category, error) {
	if squareCategoryID == "" {
		return nil, fmt.Errorf("%w: item has no category", ErrCategoryNotWhitelisted)
	}
	cat, err := imp.categories.FindBySquareID(squareCategoryID)
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotWhitelisted, squareCategoryID)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// NormalizeItem converts one remote ITEM into a MenuItem. The price is the
// first variation's amount, verbatim integer cents. HasSizes is true iff the
// item has more than one variation.
func (imp *CatalogImporter) NormalizeItem(obj square.CatalogObject) (*entity.MenuItem, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}
	if obj.Type != square.TypeItem || obj.IsDeleted {
		return nil, &square.DecodeError{ObjectID: obj.ID, Type: obj.Type, Reason: "not an active item"}
	}

	cat, err := imp.ResolveCategory(obj.ItemData.CategoryID)
	if err != nil {
		return nil, err
	}

	item := &entity.MenuItem{
		SquareID:    obj.ID,
		Name:        strings.TrimSpace(obj.ItemData.Name),
		Description: strings.TrimSpace(obj.ItemData.Description),
		Category:    cat.DisplayName,
		ImageURL:    obj.ItemData.ImageURL,
		HasSizes:    len(obj.ItemData.Variations) > 1,
	}
	if len(obj.ItemData.Variations) > 0 {
		first := obj.ItemData.Variations[0]
		if first.ItemVariationData != nil && first.ItemVariationData.PriceMoney != nil {
			item.PriceCents = first.ItemVariationData.PriceMoney.Amount
		}
	}
	return item, nil
}

// ImportItems normalizes and upserts a batch of remote items. Items that fail
// category resolution are dropped with a logged reason; one bad item never
// aborts the batch.
func (imp *CatalogImporter) ImportItems(items []square.CatalogObject) (created, updated int, errs []string) {
	for _, obj := range items {
		normalized, err := imp.NormalizeItem(obj)
		if err != nil {
			if errors.Is(err, ErrCategoryNotWhitelisted) {
				log.Printf("import: dropping item %s (%s): %v", obj.ID, itemName(obj), err)
			}
			errs = append(errs, fmt.Sprintf("item %s: %v", obj.ID, err))
			continue
		}
		wasCreated, err := imp.items.UpsertBySquareID(normalized)
		if err != nil {
			errs = append(errs, fmt.Sprintf("upsert item %s: %v", obj.ID, err))
			continue
		}
		if wasCreated {
			created++
		} else {
			updated++
		}
	}
	return created, updated, errs
}

// SizeOptionsFromItem materializes an item's size variations as modifier-like
// options: the first variation is the base price, later ones carry the price
// delta against it. Integer cents throughout.
func SizeOptionsFromItem(obj *square.CatalogObject) []entity.Modifier {
	if obj == nil || obj.ItemData == nil || len(obj.ItemData.Variations) < 2 {
		return nil
	}
	base := int64(0)
	if first := obj.ItemData.Variations[0]; first.ItemVariationData != nil && first.ItemVariationData.PriceMoney != nil {
		base = first.ItemVariationData.PriceMoney.Amount
	}

	options := make([]entity.Modifier, 0, len(obj.ItemData.Variations))
	for i, v := range obj.ItemData.Variations {
		if v.ItemVariationData == nil || v.IsDeleted {
			continue
		}
		price := base
		if v.ItemVariationData.PriceMoney != nil {
			price = v.ItemVariationData.PriceMoney.Amount
		}
		options = append(options, entity.Modifier{
			SquareID:        v.ID,
			Name:            v.ItemVariationData.Name,
			PriceDeltaCents: price - base,
			Enabled:         true,
			DisplayOrder:    i,
		})
	}
	return options
}

func itemName(obj square.CatalogObject) string {
	if obj.ItemData != nil {
		return obj.ItemData.Name
	}
	return ""
}
