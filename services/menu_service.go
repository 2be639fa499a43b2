// services/menu_service.go
package services

import (
	"context"
	"log"

	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
)

// ItemRetriever is the slice of the Square gateway the read path needs for
// on-demand size lookups.
type ItemRetriever interface {
	RetrieveObject(ctx context.Context, id string) (*square.CatalogObject, error)
}

// MenuService is the read surface the order flow and admin UI consume.
type MenuService struct {
	items      *repository.MenuItemRepository
	categories *repository.CategoryRepository
	mods       *repository.ModifierRepository
	links      *repository.ItemModifierLinkRepository
	cache      *AssociationCache
	client     ItemRetriever
}

func NewMenuService(
	items *repository.MenuItemRepository,
	categories *repository.CategoryRepository,
	mods *repository.ModifierRepository,
	links *repository.ItemModifierLinkRepository,
	cache *AssociationCache,
	client ItemRetriever,
) *MenuService {
	return &MenuService{
		items:      items,
		categories: categories,
		mods:       mods,
		links:      links,
		cache:      cache,
		client:     client,
	}
}

func (s *MenuService) GetMenuItems() ([]entity.MenuItem, error) {
	return s.items.FindAll()
}

func (s *MenuService) GetMenuItemByID(id uint) (*entity.MenuItem, error) {
	return s.items.FindByID(id)
}

func (s *MenuService) GetMenuItemBySquareID(squareID string) (*entity.MenuItem, error) {
	return s.items.FindBySquareID(squareID)
}

func (s *MenuService) GetAllCategories() ([]entity.Category, error) {
	return s.categories.FindAll()
}

// ItemOptions is one customization group for the item detail view.
type ItemOptions struct {
	Name          string            `json:"name"`
	SelectionType string            `json:"selectionType"`
	Options       []entity.Modifier `json:"options"`
}

// GetMenuItemOptions returns the item's customization groups: its linked
// modifier lists plus, for items with sizes, the size variations materialized
// as options. The link lookup goes through the association cache.
func (s *MenuService) GetMenuItemOptions(ctx context.Context, itemID uint) ([]ItemOptions, error) {
	item, err := s.items.FindByID(itemID)
	if err != nil {
		return nil, err
	}

	var groups []ItemOptions

	if item.SquareID != "" && item.HasSizes && s.client != nil {
		remote, err := s.client.RetrieveObject(ctx, item.SquareID)
		if err != nil {
			// Sizes enrich the detail view; modifier groups still render
			// without them.
			log.Printf("menu: size lookup for %s failed: %v", item.SquareID, err)
		} else if sizes := SizeOptionsFromItem(remote); len(sizes) > 0 {
			groups = append(groups, ItemOptions{
				Name:          "Size",
				SelectionType: "SINGLE",
				Options:       sizes,
			})
		}
	}

	listIDs, err := s.linkedListIDs(item.SquareID)
	if err != nil {
		return groups, err
	}
	lists, err := s.mods.FindListsBySquareIDs(listIDs)
	if err != nil {
		return groups, err
	}
	for _, list := range lists {
		if !list.Enabled || len(list.Modifiers) == 0 {
			continue
		}
		groups = append(groups, ItemOptions{
			Name:          list.Name,
			SelectionType: list.SelectionType,
			Options:       list.Modifiers,
		})
	}
	return groups, nil
}

func (s *MenuService) linkedListIDs(itemSquareID string) ([]string, error) {
	if itemSquareID == "" {
		return nil, nil
	}
	if ids, ok := s.cache.Get(itemSquareID); ok {
		return ids, nil
	}
	ids, err := s.links.ListSquareIDsForItem(itemSquareID)
	if err != nil {
		return nil, err
	}
	s.cache.Put(itemSquareID, ids)
	return ids, nil
}

// Raw sync tables, exposed for diagnostics and the reconciler itself.

func (s *MenuService) GetModifierLists() ([]entity.ModifierList, error) {
	return s.mods.FindAllLists()
}

func (s *MenuService) GetModifiers() ([]entity.Modifier, error) {
	return s.mods.FindAllModifiers()
}

func (s *MenuService) GetItemModifierLinks() ([]entity.MenuItemModifierList, error) {
	return s.links.FindAll()
}
