package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
)

// ErrSyncInProgress is returned when a run is requested while another run
// holds the location. Reconciliation runs never overlap.
var ErrSyncInProgress = errors.New("catalog sync already in progress")

const lastFullSyncKey = "last_full_sync_at"

// flagCheckWorkers bounds concurrent per-item remote lookups during a
// standalone flag refresh.
const flagCheckWorkers = 4

// SquareGateway is the full remote surface the sync pipeline consumes.
type SquareGateway interface {
	ListCatalog(ctx context.Context, types ...square.ObjectType) ([]square.CatalogObject, error)
	BatchRetrieve(ctx context.Context, ids []string) ([]square.CatalogObject, error)
	BatchInventoryCounts(ctx context.Context, variationIDs []string, locationID string) ([]square.InventoryCount, error)
	RetrieveObject(ctx context.Context, id string) (*square.CatalogObject, error)
}

// SyncResult is the structured completion summary every top-level entry
// point returns. Callers always get counts, even under partial failure.
type SyncResult struct {
	RunID        string   `json:"runId"`
	Processed    int      `json:"processed"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	LinksCreated int      `json:"linksCreated"`
	FlagsChanged int      `json:"flagsChanged"`
	Errors       []string `json:"errors"`
}

// ProgressEvent is published to the admin feed as a run moves through its
// phases.
type ProgressEvent struct {
	Phase  string    `json:"phase"`
	Detail string    `json:"detail"`
	Count  int       `json:"count"`
	At     time.Time `json:"at"`
}

// ProgressPublisher receives progress events; the websocket feed implements
// it. A nil publisher is fine.
type ProgressPublisher interface {
	Publish(event ProgressEvent)
}

// CatalogSyncService orchestrates the full pipeline: fetch, filter, import,
// extract, link, recompute flags, clear the cache. Upserts are keyed by
// Square ID throughout, so running the pipeline N times on unchanged remote
// data converges after the first run.
type CatalogSyncService struct {
	client   SquareGateway
	filter   *LocationFilter
	importer *CatalogImporter
	mods     *ModifierSyncService
	cache    *AssociationCache

	items *repository.MenuItemRepository
	links *repository.ItemModifierLinkRepository
	runs  *repository.SyncRunRepository

	feed ProgressPublisher

	runM    sync.Mutex
	running bool
}

func NewCatalogSyncService(
	client SquareGateway,
	filter *LocationFilter,
	importer *CatalogImporter,
	mods *ModifierSyncService,
	cache *AssociationCache,
	items *repository.MenuItemRepository,
	links *repository.ItemModifierLinkRepository,
	runs *repository.SyncRunRepository,
	feed ProgressPublisher,
) *CatalogSyncService {
	return &CatalogSyncService{
		client:   client,
		filter:   filter,
		importer: importer,
		mods:     mods,
		cache:    cache,
		items:    items,
		links:    links,
		runs:     runs,
		feed:     feed,
	}
}

func (s *CatalogSyncService) publish(phase, detail string, count int) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(ProgressEvent{Phase: phase, Detail: detail, Count: count, At: time.Now()})
}

func (s *CatalogSyncService) tryAcquireRun() bool {
	s.runM.Lock()
	defer s.runM.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *CatalogSyncService) releaseRun() {
	s.runM.Lock()
	s.running = false
	s.runM.Unlock()
}

// FullSync runs the whole reconciliation pipeline once. Missing credentials
// or a completely failed fetch abort the run as a single hard failure;
// everything else degrades per object into result.Errors.
func (s *CatalogSyncService) FullSync(ctx context.Context) (SyncResult, error) {
	result := SyncResult{RunID: uuid.NewString()}
	if !s.tryAcquireRun() {
		return result, ErrSyncInProgress
	}
	defer s.releaseRun()

	startedAt := time.Now()
	s.publish("fetch", "listing remote catalog", 0)

	remoteItems, err := s.client.ListCatalog(ctx, square.TypeItem)
	if err != nil && len(remoteItems) == 0 {
		// Nothing fetched at all: hard failure, surfaced once.
		s.recordRun(result, startedAt)
		return result, fmt.Errorf("catalog fetch failed: %w", err)
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("pagination stopped early: %v", err))
	}
	result.Processed = len(remoteItems)
	s.publish("fetch", "remote items listed", len(remoteItems))

	sellable, filterErrs := s.filter.FilterSellable(ctx, remoteItems)
	result.Errors = append(result.Errors, filterErrs...)
	s.publish("filter", "location-sellable items", len(sellable))

	created, updated, importErrs := s.importer.ImportItems(sellable)
	result.Created += created
	result.Updated += updated
	result.Errors = append(result.Errors, importErrs...)
	s.publish("import", "items upserted", created+updated)

	extract := s.mods.Extract(ctx, sellable)
	result.Created += extract.ListsCreated + extract.ModifiersCreated
	result.Updated += extract.ListsUpdated + extract.ModifiersUpdated
	result.LinksCreated = extract.LinksCreated
	result.Errors = append(result.Errors, extract.Errors...)
	s.publish("modifiers", "links rebuilt", extract.LinksCreated)

	flagsChanged, flagErrs := s.updateFlags(sellable)
	result.FlagsChanged = flagsChanged
	result.Errors = append(result.Errors, flagErrs...)
	s.publish("flags", "derived flags recomputed", flagsChanged)

	// The next on-demand lookup must not see pre-sync associations.
	s.cache.Clear()

	s.recordRun(result, startedAt)
	if err := s.runs.SetMeta(lastFullSyncKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Printf("sync: record last sync time: %v", err)
	}
	s.publish("done", "sync complete", result.Created+result.Updated)
	return result, nil
}

// updateFlags recomputes HasOptions from the link table and HasSizes from
// the remote variation count, persisting only rows whose flags changed.
func (s *CatalogSyncService) updateFlags(remoteItems []square.CatalogObject) (changed int, errs []string) {
	variationCounts := make(map[string]int, len(remoteItems))
	for _, obj := range remoteItems {
		if obj.ItemData != nil {
			variationCounts[obj.ID] = len(obj.ItemData.Variations)
		}
	}

	localItems, err := s.items.FindAll()
	if err != nil {
		return 0, []string{fmt.Sprintf("load items for flag update: %v", err)}
	}
	for _, item := range localItems {
		if item.SquareID == "" {
			continue
		}
		linkCount, err := s.links.CountForItem(item.SquareID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("count links for %s: %v", item.SquareID, err))
			continue
		}
		hasOptions := linkCount > 0
		hasSizes := item.HasSizes
		if count, ok := variationCounts[item.SquareID]; ok {
			hasSizes = count > 1
		}
		if hasOptions == item.HasOptions && hasSizes == item.HasSizes {
			continue
		}
		if err := s.items.UpdateFlags(item.ID, hasOptions, hasSizes); err != nil {
			errs = append(errs, fmt.Sprintf("update flags for %s: %v", item.SquareID, err))
			continue
		}
		changed++
	}
	return changed, errs
}

// RefreshFlags recomputes derived flags outside a full sync, re-checking
// variation counts with bounded-concurrency direct lookups.
func (s *CatalogSyncService) RefreshFlags(ctx context.Context) (SyncResult, error) {
	result := SyncResult{RunID: uuid.NewString()}
	if !s.tryAcquireRun() {
		return result, ErrSyncInProgress
	}
	defer s.releaseRun()

	localItems, err := s.items.FindAll()
	if err != nil {
		return result, err
	}

	type lookup struct {
		squareID string
		obj      *square.CatalogObject
		err      error
	}
	jobs := make(chan string)
	results := make(chan lookup)
	var wg sync.WaitGroup
	for w := 0; w < flagCheckWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				obj, err := s.client.RetrieveObject(ctx, id)
				results <- lookup{squareID: id, obj: obj, err: err}
			}
		}()
	}
	go func() {
		for _, item := range localItems {
			if item.SquareID != "" {
				jobs <- item.SquareID
			}
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	remote := make([]square.CatalogObject, 0, len(localItems))
	for r := range results {
		if r.err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("recheck %s: %v", r.squareID, r.err))
			continue
		}
		remote = append(remote, *r.obj)
	}

	changed, errs := s.updateFlags(remote)
	result.FlagsChanged = changed
	result.Errors = append(result.Errors, errs...)
	return result, nil
}

// LastFullSyncAt returns the recorded completion time of the most recent full
// sync (RFC 3339), or "" if none has completed yet.
func (s *CatalogSyncService) LastFullSyncAt() (string, error) {
	return s.runs.GetMeta(lastFullSyncKey)
}

// SyncCategories fetches remote categories and binds whitelist rows to their
// IDs. One-time setup step, kept off the sync hot path.
func (s *CatalogSyncService) SyncCategories(ctx context.Context) (int, []string, error) {
	remote, err := s.client.ListCatalog(ctx, square.TypeCategory)
	if err != nil && len(remote) == 0 {
		return 0, nil, fmt.Errorf("category fetch failed: %w", err)
	}
	bound, errs := s.importer.SyncCategories(ctx, remote)
	if err != nil {
		errs = append(errs, fmt.Sprintf("pagination stopped early: %v", err))
	}
	return bound, errs, nil
}

// FilterCheck reports how many items the old unsafe path (everything the
// remote returns) would process versus the location- and database-scoped
// path. Diagnostic only; used to verify the filtering regression stays fixed.
type FilterCheck struct {
	RemoteTotal    int `json:"remoteTotal"`
	LocationScoped int `json:"locationScoped"`
	DatabaseScoped int `json:"databaseScoped"`
}

func (s *CatalogSyncService) TestFilterScope(ctx context.Context) (FilterCheck, error) {
	var check FilterCheck

	remoteItems, err := s.client.ListCatalog(ctx, square.TypeItem)
	if err != nil && len(remoteItems) == 0 {
		return check, fmt.Errorf("catalog fetch failed: %w", err)
	}
	check.RemoteTotal = len(remoteItems)

	sellable, _ := s.filter.FilterSellable(ctx, remoteItems)
	check.LocationScoped = len(sellable)

	knownIDs, err := s.items.AllSquareIDs()
	if err != nil {
		return check, err
	}
	knownSet := make(map[string]bool, len(knownIDs))
	for _, id := range knownIDs {
		knownSet[id] = true
	}
	for _, obj := range sellable {
		if knownSet[obj.ID] {
			check.DatabaseScoped++
		}
	}
	return check, nil
}

// ResetCatalog wipes every synced row: links, modifiers, lists, and menu
// items that came from Square. Only the operator surface calls this; the
// sync itself never deletes menu items.
func (s *CatalogSyncService) ResetCatalog() error {
	if !s.tryAcquireRun() {
		return ErrSyncInProgress
	}
	defer s.releaseRun()

	db := s.items.DB
	if err := db.Where("1 = 1").Delete(&entity.MenuItemModifierList{}).Error; err != nil {
		return err
	}
	if err := db.Where("1 = 1").Delete(&entity.Modifier{}).Error; err != nil {
		return err
	}
	if err := db.Where("1 = 1").Delete(&entity.ModifierList{}).Error; err != nil {
		return err
	}
	if err := db.Where("square_id <> ''").Delete(&entity.MenuItem{}).Error; err != nil {
		return err
	}
	s.cache.Clear()
	return nil
}

func (s *CatalogSyncService) recordRun(result SyncResult, startedAt time.Time) {
	run := &entity.SyncRun{
		ID:           result.RunID,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
		Processed:    result.Processed,
		Created:      result.Created,
		Updated:      result.Updated,
		LinksCreated: result.LinksCreated,
		ErrorCount:   len(result.Errors),
		Errors:       strings.Join(result.Errors, "\n"),
	}
	if err := s.runs.Create(run); err != nil {
		log.Printf("sync: record run %s: %v", run.ID, err)
	}
}
