package services

import (
	"context"
	"strings"
	"testing"

	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
	"gorm.io/gorm"
)

func newModifierStack(t *testing.T, gw *fakeGateway) (*ModifierSyncService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	mods := repository.NewModifierRepository(db)
	links := repository.NewItemModifierLinkRepository(db)
	items := repository.NewMenuItemRepository(db)
	return NewModifierSyncService(gw, mods, links, items), db
}

func seedMenuItem(t *testing.T, db *gorm.DB, squareID, name string) {
	t.Helper()
	if err := db.Create(&entity.MenuItem{SquareID: squareID, Name: name, Category: "Coffee"}).Error; err != nil {
		t.Fatalf("seed menu item: %v", err)
	}
}

func TestExtractKeepsListWithOneDeletedModifier(t *testing.T) {
	// M1 has two modifiers, one deleted upstream: the list survives with
	// exactly one enabled modifier, it is not dropped entirely.
	m1 := remoteModifierList("M1", "Milk Type", []string{"Oat Milk", "Soy Milk"}, []bool{false, true})
	gw := &fakeGateway{objects: map[string]square.CatalogObject{"M1": m1}}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	result := svc.Extract(context.Background(), []square.CatalogObject{
		remoteItem("I1", "Latte", "CAT1", []int64{300}, "M1"),
	})
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.ListsCreated != 1 {
		t.Fatalf("lists created = %d, want 1", result.ListsCreated)
	}
	if result.ModifiersCreated != 1 {
		t.Fatalf("modifiers created = %d, want 1 (deleted one filtered)", result.ModifiersCreated)
	}

	var mods []entity.Modifier
	db.Find(&mods)
	if len(mods) != 1 || mods[0].Name != "Oat Milk" {
		t.Fatalf("persisted modifiers: %+v", mods)
	}
}

func TestExtractSkipsHiddenAndEmptyLists(t *testing.T) {
	hidden := remoteModifierList("M_HIDDEN", "Internal", []string{"X"}, nil)
	hidden.ModifierListData.HiddenFromCustomer = true
	empty := remoteModifierList("M_EMPTY", "Stale", []string{"Gone"}, []bool{true})
	deleted := remoteModifierList("M_DEL", "Old", []string{"Y"}, nil)
	deleted.IsDeleted = true
	keep := remoteModifierList("M_OK", "Syrup", []string{"Vanilla"}, nil)

	gw := &fakeGateway{objects: map[string]square.CatalogObject{
		"M_HIDDEN": hidden, "M_EMPTY": empty, "M_DEL": deleted, "M_OK": keep,
	}}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	result := svc.Extract(context.Background(), []square.CatalogObject{
		remoteItem("I1", "Latte", "CAT1", []int64{300}, "M_HIDDEN", "M_EMPTY", "M_DEL", "M_OK"),
	})
	if result.ListsCreated != 1 {
		t.Fatalf("lists created = %d, want only M_OK", result.ListsCreated)
	}

	var lists []entity.ModifierList
	db.Find(&lists)
	if len(lists) != 1 || lists[0].SquareID != "M_OK" {
		t.Fatalf("persisted lists: %+v", lists)
	}
	// Skipped lists also never get links.
	var links []entity.MenuItemModifierList
	db.Find(&links)
	if len(links) != 1 || links[0].ModifierListSquareID != "M_OK" {
		t.Fatalf("persisted links: %+v", links)
	}
}

func TestPlaceholderIDsNeverRequested(t *testing.T) {
	gw := &fakeGateway{objects: map[string]square.CatalogObject{}}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	svc.Extract(context.Background(), []square.CatalogObject{
		remoteItem("I1", "Latte", "CAT1", []int64{300}, "#temp-uncommitted", "M1"),
	})
	for _, call := range gw.retrieveCalls {
		for _, id := range call {
			if strings.HasPrefix(id, "#") {
				t.Fatalf("placeholder id %q sent to the remote API", id)
			}
		}
	}
}

func TestChunkFailureDegradesToPerID(t *testing.T) {
	good := remoteModifierList("M_GOOD", "Syrup", []string{"Vanilla"}, nil)
	gw := &fakeGateway{
		objects:         map[string]square.CatalogObject{"M_GOOD": good},
		failRetrieveIDs: map[string]bool{"M_BAD": true},
	}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	result := svc.Extract(context.Background(), []square.CatalogObject{
		remoteItem("I1", "Latte", "CAT1", []int64{300}, "M_BAD", "M_GOOD"),
	})

	// The chunk containing M_BAD fails, the retry salvages M_GOOD, and only
	// M_BAD is recorded as an error.
	if result.ListsCreated != 1 {
		t.Fatalf("lists created = %d, want M_GOOD to survive chunk failure", result.ListsCreated)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "M_BAD") {
		t.Fatalf("expected a single M_BAD error, got %v", result.Errors)
	}
}

func TestExtractCarriesItemDeclaredSelectionBounds(t *testing.T) {
	sauces := remoteModifierList("M1", "Sauces", []string{"Caramel", "Mocha", "Hazelnut"}, nil)
	sauces.ModifierListData.SelectionType = "MULTIPLE"
	gw := &fakeGateway{objects: map[string]square.CatalogObject{"M1": sauces}}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	// The bounds live on the item's reference, not on the list object.
	item := remoteItem("I1", "Latte", "CAT1", []int64{300})
	item.ItemData.ModifierListInfo = []square.ModifierListInfo{
		{ModifierListID: "M1", MinSelectedModifiers: 1, MaxSelectedModifiers: 3},
	}

	result := svc.Extract(context.Background(), []square.CatalogObject{item})
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	var list entity.ModifierList
	if err := db.First(&list, "square_id = ?", "M1").Error; err != nil {
		t.Fatalf("list not persisted: %v", err)
	}
	if list.MinSelections != 1 {
		t.Errorf("MinSelections = %d, want 1", list.MinSelections)
	}
	if list.MaxSelections == nil || *list.MaxSelections != 3 {
		t.Errorf("MaxSelections = %v, want 3", list.MaxSelections)
	}
}

func TestExtractDefaultsSingleSelectionCap(t *testing.T) {
	milk := remoteModifierList("M1", "Milk Type", []string{"Oat"}, nil)
	gw := &fakeGateway{objects: map[string]square.CatalogObject{"M1": milk}}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	svc.Extract(context.Background(), []square.CatalogObject{
		remoteItem("I1", "Latte", "CAT1", []int64{300}, "M1"),
	})

	var list entity.ModifierList
	if err := db.First(&list, "square_id = ?", "M1").Error; err != nil {
		t.Fatalf("list not persisted: %v", err)
	}
	if list.MinSelections != 0 {
		t.Errorf("MinSelections = %d, want 0 without declared bounds", list.MinSelections)
	}
	if list.MaxSelections == nil || *list.MaxSelections != 1 {
		t.Errorf("MaxSelections = %v, want 1 for a SINGLE list", list.MaxSelections)
	}
}

func TestRebuildLinksIsDatabaseFirst(t *testing.T) {
	m1 := remoteModifierList("M1", "Milk", []string{"Oat"}, nil)
	gw := &fakeGateway{objects: map[string]square.CatalogObject{"M1": m1}}
	svc, db := newModifierStack(t, gw)

	// Only I1 exists locally. I2 is remote-only and must never be linked.
	seedMenuItem(t, db, "I1", "Latte")

	// Leftover damage from an earlier buggy run: a link to an item that was
	// never in local storage.
	db.Create(&entity.MenuItemModifierList{ItemSquareID: "GHOST", ModifierListSquareID: "M1", Enabled: true})

	result := svc.Extract(context.Background(), []square.CatalogObject{
		remoteItem("I1", "Latte", "CAT1", []int64{300}, "M1"),
		remoteItem("I2", "Remote Only", "CAT1", []int64{400}, "M1"),
	})
	if result.OrphansRemoved != 1 {
		t.Fatalf("orphans removed = %d, want 1", result.OrphansRemoved)
	}
	if result.LinksCreated != 1 {
		t.Fatalf("links created = %d, want 1", result.LinksCreated)
	}

	var links []entity.MenuItemModifierList
	db.Find(&links)
	if len(links) != 1 || links[0].ItemSquareID != "I1" {
		t.Fatalf("link table after rebuild: %+v", links)
	}
}

func TestRebuildLinksReplacesInsteadOfAccumulating(t *testing.T) {
	m1 := remoteModifierList("M1", "Milk", []string{"Oat"}, nil)
	gw := &fakeGateway{objects: map[string]square.CatalogObject{"M1": m1}}
	svc, db := newModifierStack(t, gw)
	seedMenuItem(t, db, "I1", "Latte")

	batch := []square.CatalogObject{remoteItem("I1", "Latte", "CAT1", []int64{300}, "M1")}
	svc.Extract(context.Background(), batch)
	svc.Extract(context.Background(), batch)
	svc.Extract(context.Background(), batch)

	var count int64
	db.Model(&entity.MenuItemModifierList{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 link after repeated runs, got %d", count)
	}
}
