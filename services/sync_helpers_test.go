package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Category{}, &entity.MenuItem{},
		&entity.ModifierList{}, &entity.Modifier{}, &entity.MenuItemModifierList{},
		&entity.SyncRun{}, &entity.SyncConfig{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, squareID, name, display string) {
	t.Helper()
	if err := db.Create(&entity.Category{SquareID: squareID, Name: name, DisplayName: display}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
}

// fakeGateway implements SquareGateway from canned data.
type fakeGateway struct {
	items      []square.CatalogObject
	categories []square.CatalogObject
	// objects returned by BatchRetrieve, keyed by ID.
	objects map[string]square.CatalogObject
	// failRetrieveIDs makes BatchRetrieve fail whenever the request includes
	// one of these IDs.
	failRetrieveIDs map[string]bool
	// inventory counts returned for any lookup; inventoryErr forces failures.
	counts       []square.InventoryCount
	inventoryErr error

	listCalls      int
	retrieveCalls  [][]string
	inventoryCalls int
}

func (g *fakeGateway) ListCatalog(ctx context.Context, types ...square.ObjectType) ([]square.CatalogObject, error) {
	g.listCalls++
	for _, t := range types {
		if t == square.TypeCategory {
			return g.categories, nil
		}
	}
	return g.items, nil
}

func (g *fakeGateway) BatchRetrieve(ctx context.Context, ids []string) ([]square.CatalogObject, error) {
	g.retrieveCalls = append(g.retrieveCalls, ids)
	for _, id := range ids {
		if g.failRetrieveIDs[id] {
			return nil, &square.UpstreamRequestError{Method: "POST", URL: "/v2/catalog/batch-retrieve", StatusCode: 500}
		}
	}
	var out []square.CatalogObject
	for _, id := range ids {
		if obj, ok := g.objects[id]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

func (g *fakeGateway) RetrieveObject(ctx context.Context, id string) (*square.CatalogObject, error) {
	objects, err := g.BatchRetrieve(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, &square.DecodeError{ObjectID: id, Reason: "object not returned"}
	}
	return &objects[0], nil
}

func (g *fakeGateway) BatchInventoryCounts(ctx context.Context, variationIDs []string, locationID string) ([]square.InventoryCount, error) {
	g.inventoryCalls++
	if g.inventoryErr != nil {
		return nil, g.inventoryErr
	}
	requested := make(map[string]bool, len(variationIDs))
	for _, id := range variationIDs {
		requested[id] = true
	}
	var out []square.InventoryCount
	for _, c := range g.counts {
		if requested[c.CatalogObjectID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// remoteItem builds an ITEM object with one variation per price.
func remoteItem(id, name, categoryID string, priceCents []int64, listIDs ...string) square.CatalogObject {
	variations := make([]square.CatalogObject, 0, len(priceCents))
	names := []string{"Small", "Large", "Extra Large"}
	for i, cents := range priceCents {
		varName := fmt.Sprintf("Variation %d", i)
		if i < len(names) {
			varName = names[i]
		}
		variations = append(variations, square.CatalogObject{
			Type: square.TypeItemVariation,
			ID:   fmt.Sprintf("%s-v%d", id, i),
			ItemVariationData: &square.ItemVariationData{
				ItemID:     id,
				Name:       varName,
				Ordinal:    i,
				PriceMoney: &square.Money{Amount: cents, Currency: "USD"},
			},
		})
	}
	infos := make([]square.ModifierListInfo, 0, len(listIDs))
	for _, listID := range listIDs {
		infos = append(infos, square.ModifierListInfo{ModifierListID: listID})
	}
	return square.CatalogObject{
		Type: square.TypeItem,
		ID:   id,
		ItemData: &square.ItemData{
			Name:             name,
			CategoryID:       categoryID,
			Variations:       variations,
			ModifierListInfo: infos,
		},
	}
}

// remoteModifierList builds a MODIFIER_LIST object; deleted flags mark the
// corresponding modifier deleted.
func remoteModifierList(id, name string, modifierNames []string, deleted []bool) square.CatalogObject {
	mods := make([]square.CatalogObject, 0, len(modifierNames))
	for i, modName := range modifierNames {
		isDeleted := i < len(deleted) && deleted[i]
		mods = append(mods, square.CatalogObject{
			Type:      square.TypeModifier,
			ID:        fmt.Sprintf("%s-m%d", id, i),
			IsDeleted: isDeleted,
			ModifierData: &square.ModifierData{
				Name:           modName,
				Ordinal:        i,
				ModifierListID: id,
				PriceMoney:     &square.Money{Amount: int64(50 * (i + 1)), Currency: "USD"},
			},
		})
	}
	return square.CatalogObject{
		Type: square.TypeModifierList,
		ID:   id,
		ModifierListData: &square.ModifierListData{
			Name:          name,
			SelectionType: "SINGLE",
			Modifiers:     mods,
		},
	}
}

// newSyncStack wires the whole pipeline over a fake gateway and a fresh DB.
func newSyncStack(t *testing.T, gw *fakeGateway) (*CatalogSyncService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)

	categories := repository.NewCategoryRepository(db)
	items := repository.NewMenuItemRepository(db)
	mods := repository.NewModifierRepository(db)
	links := repository.NewItemModifierLinkRepository(db)
	runs := repository.NewSyncRunRepository(db)

	filter := NewLocationFilter(gw, "LOC1", &TenantDenylist{})
	importer := NewCatalogImporter(categories, items)
	modSync := NewModifierSyncService(gw, mods, links, items)
	cache := NewAssociationCache(0)

	svc := NewCatalogSyncService(gw, filter, importer, modSync, cache, items, links, runs, nil)
	return svc, db
}
