package services

import (
	"context"
	"fmt"
	"log"

	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
)

// modifierListChunkSize bounds batch-retrieve calls for modifier lists.
const modifierListChunkSize = 50

// CatalogRetriever is the slice of the Square gateway the extractor needs.
type CatalogRetriever interface {
	BatchRetrieve(ctx context.Context, ids []string) ([]square.CatalogObject, error)
}

// ExtractResult summarizes one modifier extraction pass. Errors accumulate;
// a single bad object never aborts the batch.
type ExtractResult struct {
	ListsCreated     int
	ListsUpdated     int
	ModifiersCreated int
	ModifiersUpdated int
	OrphansRemoved   int64
	LinksCreated     int
	Errors           []string
}

// ModifierSyncService extracts modifier lists referenced by remote items,
// persists them, and rebuilds the item link table.
type ModifierSyncService struct {
	client CatalogRetriever
	mods   *repository.ModifierRepository
	links  *repository.ItemModifierLinkRepository
	items  *repository.MenuItemRepository
}

func NewModifierSyncService(client CatalogRetriever, mods *repository.ModifierRepository, links *repository.ItemModifierLinkRepository, items *repository.MenuItemRepository) *ModifierSyncService {
	return &ModifierSyncService{client: client, mods: mods, links: links, items: items}
}

// Extract runs the whole pass: collect referenced list IDs, batch-retrieve
// their definitions, persist the survivors, then rebuild links database-first.
func (s *ModifierSyncService) Extract(ctx context.Context, remoteItems []square.CatalogObject) ExtractResult {
	var result ExtractResult

	listIDs := collectModifierListIDs(remoteItems)
	bounds := collectSelectionBounds(remoteItems)
	retrieved, errs := s.retrieveLists(ctx, listIDs)
	result.Errors = append(result.Errors, errs...)

	kept := make(map[string]bool, len(retrieved))
	for _, obj := range retrieved {
		if reason := skipListReason(obj); reason != "" {
			log.Printf("modifier sync: skipping list %s: %s", obj.ID, reason)
			continue
		}
		created, updated, modCreated, modUpdated, err := s.persistList(obj, bounds[obj.ID])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("persist list %s: %v", obj.ID, err))
			continue
		}
		kept[obj.ID] = true
		result.ListsCreated += created
		result.ListsUpdated += updated
		result.ModifiersCreated += modCreated
		result.ModifiersUpdated += modUpdated
	}

	linksCreated, orphans, linkErrs := s.RebuildLinks(remoteItems, kept)
	result.LinksCreated = linksCreated
	result.OrphansRemoved = orphans
	result.Errors = append(result.Errors, linkErrs...)
	return result
}

// collectModifierListIDs gathers unique modifier-list references from item
// and variation level, dropping placeholder IDs before any remote call.
func collectModifierListIDs(items []square.CatalogObject) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(infos []square.ModifierListInfo) {
		for _, info := range infos {
			id := info.ModifierListID
			if id == "" || square.IsPlaceholderID(id) || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, item := range items {
		if item.ItemData == nil {
			continue
		}
		add(item.ItemData.ModifierListInfo)
		for _, v := range item.ItemData.Variations {
			if v.ItemVariationData != nil {
				add(v.ItemVariationData.ModifierListInfo)
			}
		}
	}
	return ids
}

// selectionBounds carries the min/max selection counts an item declares on
// its reference to a modifier list. The list object itself does not carry
// them; they only exist item-side.
type selectionBounds struct {
	min int
	max int
}

// collectSelectionBounds gathers per-list selection bounds from item and
// variation references. The first reference declaring a bound wins.
func collectSelectionBounds(items []square.CatalogObject) map[string]selectionBounds {
	bounds := make(map[string]selectionBounds)
	add := func(infos []square.ModifierListInfo) {
		for _, info := range infos {
			id := info.ModifierListID
			if id == "" || square.IsPlaceholderID(id) {
				continue
			}
			if _, ok := bounds[id]; ok {
				continue
			}
			if info.MinSelectedModifiers > 0 || info.MaxSelectedModifiers > 0 {
				bounds[id] = selectionBounds{
					min: info.MinSelectedModifiers,
					max: info.MaxSelectedModifiers,
				}
			}
		}
	}
	for _, item := range items {
		if item.ItemData == nil {
			continue
		}
		add(item.ItemData.ModifierListInfo)
		for _, v := range item.ItemData.Variations {
			if v.ItemVariationData != nil {
				add(v.ItemVariationData.ModifierListInfo)
			}
		}
	}
	return bounds
}

// retrieveLists batch-retrieves list definitions in chunks. A failed chunk
// degrades to per-ID retries so one bad ID does not lose its whole chunk;
// IDs that still fail are recorded and skipped.
func (s *ModifierSyncService) retrieveLists(ctx context.Context, ids []string) ([]square.CatalogObject, []string) {
	var objects []square.CatalogObject
	var errs []string

	for _, chunk := range chunkStrings(ids, modifierListChunkSize) {
		retrieved, err := s.client.BatchRetrieve(ctx, chunk)
		if err == nil {
			objects = append(objects, retrieved...)
			continue
		}
		log.Printf("modifier sync: chunk of %d failed (%v), retrying individually", len(chunk), err)
		for _, id := range chunk {
			single, err := s.client.BatchRetrieve(ctx, []string{id})
			if square.IsRateLimited(err) {
				errs = append(errs, fmt.Sprintf("retrieve modifier list %s: rate limited, skipped", id))
				continue
			}
			if err != nil {
				errs = append(errs, fmt.Sprintf("retrieve modifier list %s: %v", id, err))
				continue
			}
			objects = append(objects, single...)
		}
	}
	return objects, errs
}

// skipListReason returns a non-empty reason if the list should not be
// persisted: deleted upstream, hidden from customers, or empty once deleted
// modifiers are filtered out (an empty list is stale placeholder
// configuration, not a real customization group).
func skipListReason(obj square.CatalogObject) string {
	if obj.Type != square.TypeModifierList {
		return "not a modifier list"
	}
	if obj.IsDeleted {
		return "deleted upstream"
	}
	if err := obj.Validate(); err != nil {
		return err.Error()
	}
	if obj.ModifierListData.HiddenFromCustomer {
		return "hidden from customer"
	}
	if countEnabledModifiers(obj) == 0 {
		return "no enabled modifiers"
	}
	return ""
}

func countEnabledModifiers(obj square.CatalogObject) int {
	enabled := 0
	for _, mod := range obj.ModifierListData.Modifiers {
		if mod.IsDeleted || mod.ModifierData == nil {
			continue
		}
		enabled++
	}
	return enabled
}

func (s *ModifierSyncService) persistList(obj square.CatalogObject, bounds selectionBounds) (listsCreated, listsUpdated, modsCreated, modsUpdated int, err error) {
	data := obj.ModifierListData

	list := &entity.ModifierList{
		SquareID:      obj.ID,
		Name:          data.Name,
		SelectionType: normalizeSelectionType(data.SelectionType),
		MinSelections: bounds.min,
		Enabled:       true,
		DisplayOrder:  data.Ordinal,
	}
	// Item-declared bounds win; without them a SINGLE list caps at one.
	if bounds.max > 0 {
		limit := bounds.max
		list.MaxSelections = &limit
	} else if list.SelectionType == "SINGLE" {
		one := 1
		list.MaxSelections = &one
	}
	created, err := s.mods.UpsertListBySquareID(list)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if created {
		listsCreated++
	} else {
		listsUpdated++
	}

	for _, modObj := range data.Modifiers {
		if modObj.ModifierData == nil || modObj.IsDeleted {
			continue
		}
		var delta int64
		if modObj.ModifierData.PriceMoney != nil {
			delta = modObj.ModifierData.PriceMoney.Amount
		}
		mod := &entity.Modifier{
			SquareID:        modObj.ID,
			ModifierListID:  list.ID,
			Name:            modObj.ModifierData.Name,
			PriceDeltaCents: delta,
			Enabled:         true,
			DisplayOrder:    modObj.ModifierData.Ordinal,
		}
		modCreated, err := s.mods.UpsertModifierBySquareID(mod)
		if err != nil {
			return listsCreated, listsUpdated, modsCreated, modsUpdated, err
		}
		if modCreated {
			modsCreated++
		} else {
			modsUpdated++
		}
	}
	return listsCreated, listsUpdated, modsCreated, modsUpdated, nil
}

func normalizeSelectionType(raw string) string {
	if raw == "MULTIPLE" {
		return "MULTIPLE"
	}
	return "SINGLE"
}

// RebuildLinks repairs then recreates the item link table. First it deletes
// links pointing at items absent from local storage (damage left by earlier
// sync runs), then it replaces links for exactly the items in this batch.
// Database-first: an item never normalized into local storage never gets a
// link, regardless of what the remote catalog references.
func (s *ModifierSyncService) RebuildLinks(remoteItems []square.CatalogObject, keptLists map[string]bool) (linksCreated int, orphansRemoved int64, errs []string) {
	knownIDs, err := s.items.AllSquareIDs()
	if err != nil {
		return 0, 0, []string{fmt.Sprintf("load local item ids: %v", err)}
	}
	knownSet := make(map[string]bool, len(knownIDs))
	for _, id := range knownIDs {
		knownSet[id] = true
	}

	orphansRemoved, err = s.links.DeleteOrphans(knownIDs)
	if err != nil {
		errs = append(errs, fmt.Sprintf("delete orphan links: %v", err))
	}

	var batchItemIDs []string
	var links []entity.MenuItemModifierList
	for _, item := range remoteItems {
		if item.ItemData == nil || !knownSet[item.ID] {
			continue
		}
		listIDs := collectModifierListIDs([]square.CatalogObject{item})
		batchItemIDs = append(batchItemIDs, item.ID)
		for _, listID := range listIDs {
			if keptLists != nil && !keptLists[listID] {
				continue
			}
			links = append(links, entity.MenuItemModifierList{
				ItemSquareID:         item.ID,
				ModifierListSquareID: listID,
				Enabled:              true,
			})
		}
	}

	// Replace window: clear links for exactly this batch, then reinsert, so
	// repeated runs converge instead of accumulating duplicates.
	if err := s.links.DeleteForItems(batchItemIDs); err != nil {
		errs = append(errs, fmt.Sprintf("clear links for batch: %v", err))
		return 0, orphansRemoved, errs
	}
	if err := s.links.CreateBatch(links); err != nil {
		errs = append(errs, fmt.Sprintf("insert links: %v", err))
		return 0, orphansRemoved, errs
	}
	return len(links), orphansRemoved, errs
}
