package services

import (
	"context"
	"fmt"
	"log"

	"github.com/luca0405/bean-stalker-app2-sub000/square"
)

// inventoryChunkSize bounds variation-ID batches against the inventory
// endpoint.
const inventoryChunkSize = 100

// InventoryClient is the slice of the Square gateway the filter needs.
type InventoryClient interface {
	BatchInventoryCounts(ctx context.Context, variationIDs []string, locationID string) ([]square.InventoryCount, error)
}

// LocationFilter decides which remote items are actually sellable at the
// configured location.
type LocationFilter struct {
	client     InventoryClient
	locationID string
	denylist   *TenantDenylist
}

func NewLocationFilter(client InventoryClient, locationID string, denylist *TenantDenylist) *LocationFilter {
	return &LocationFilter{client: client, locationID: locationID, denylist: denylist}
}

// FilterSellable returns the subset of items with at least one variation that
// is IN_STOCK or SOLD at the location, or that has no inventory record at all
// (untracked means always available). If every inventory lookup fails the
// result is the empty set, never the unfiltered superset: leaking another
// location's items into the local catalog is worse than showing nothing until
// the next run.
func (f *LocationFilter) FilterSellable(ctx context.Context, items []square.CatalogObject) ([]square.CatalogObject, []string) {
	var errs []string

	variationIDs := make([]string, 0, len(items))
	for _, item := range items {
		if item.ItemData == nil {
			continue
		}
		for _, v := range item.ItemData.Variations {
			if v.ID != "" && !square.IsPlaceholderID(v.ID) {
				variationIDs = append(variationIDs, v.ID)
			}
		}
	}

	states := make(map[string]string, len(variationIDs))
	// queried marks variations whose chunk succeeded; a variation with no
	// record in a successful chunk is untracked, not unknown.
	queried := make(map[string]bool, len(variationIDs))

	chunks := chunkStrings(variationIDs, inventoryChunkSize)
	failedChunks := 0
	for _, chunk := range chunks {
		counts, err := f.client.BatchInventoryCounts(ctx, chunk, f.locationID)
		if err != nil {
			failedChunks++
			errs = append(errs, fmt.Sprintf("inventory lookup failed for %d variations: %v", len(chunk), err))
			continue
		}
		for _, id := range chunk {
			queried[id] = true
		}
		for _, count := range counts {
			states[count.CatalogObjectID] = count.State
		}
	}

	if len(chunks) > 0 && failedChunks == len(chunks) {
		log.Printf("location filter: all %d inventory chunks failed, returning empty set", len(chunks))
		return nil, errs
	}

	var sellable []square.CatalogObject
	for _, item := range items {
		if item.ItemData == nil {
			continue
		}
		if f.denylist.MatchesItem(item.ItemData.Name, item.ID) {
			continue
		}
		if f.itemAvailable(item, states, queried) {
			sellable = append(sellable, item)
		}
	}
	return sellable, errs
}

func (f *LocationFilter) itemAvailable(item square.CatalogObject, states map[string]string, queried map[string]bool) bool {
	for _, v := range item.ItemData.Variations {
		if v.ID == "" || square.IsPlaceholderID(v.ID) {
			continue
		}
		state, tracked := states[v.ID]
		if tracked {
			if state == square.InventoryStateInStock || state == square.InventoryStateSold {
				return true
			}
			continue
		}
		// No inventory record and the lookup for this variation succeeded:
		// untracked, therefore available. If its chunk failed we treat the
		// variation as unknown and skip it.
		if queried[v.ID] {
			return true
		}
	}
	return false
}

func chunkStrings(ids []string, size int) [][]string {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
