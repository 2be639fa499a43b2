package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/luca0405/bean-stalker-app2-sub000/pkg/resp"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/services"

	"github.com/gin-gonic/gin"
)

// SyncController exposes the operator surface of the catalog sync engine.
type SyncController struct {
	sync *services.CatalogSyncService
	menu *services.MenuService
	runs *repository.SyncRunRepository
}

func NewSyncController(sync *services.CatalogSyncService, menu *services.MenuService, runs *repository.SyncRunRepository) *SyncController {
	return &SyncController{sync: sync, menu: menu, runs: runs}
}

// POST /admin/sync/catalog
func (s *SyncController) TriggerFullSync(c *gin.Context) {
	result, err := s.sync.FullSync(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error(), "data": result})
		return
	}
	resp.OK(c, result)
}

// POST /admin/sync/categories
func (s *SyncController) SyncCategories(c *gin.Context) {
	bound, errs, err := s.sync.SyncCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	resp.OK(c, gin.H{"bound": bound, "errors": errs})
}

// POST /admin/sync/flags
func (s *SyncController) RefreshFlags(c *gin.Context) {
	result, err := s.sync.RefreshFlags(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error(), "data": result})
		return
	}
	resp.OK(c, result)
}

// GET /admin/sync/runs?limit=
func (s *SyncController) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := s.runs.FindRecent(limit)
	if err != nil {
		resp.ServerError(c, err); return
	}
	lastSync, err := s.sync.LastFullSyncAt()
	if err != nil {
		resp.ServerError(c, err); return
	}
	resp.OK(c, gin.H{"runs": runs, "lastFullSyncAt": lastSync})
}

// GET /admin/sync/modifier-lists
func (s *SyncController) ModifierLists(c *gin.Context) {
	lists, err := s.menu.GetModifierLists()
	if err != nil {
		resp.ServerError(c, err); return
	}
	resp.OK(c, lists)
}

// GET /admin/sync/modifiers
func (s *SyncController) Modifiers(c *gin.Context) {
	mods, err := s.menu.GetModifiers()
	if err != nil {
		resp.ServerError(c, err); return
	}
	resp.OK(c, mods)
}

// GET /admin/sync/links
func (s *SyncController) Links(c *gin.Context) {
	links, err := s.menu.GetItemModifierLinks()
	if err != nil {
		resp.ServerError(c, err); return
	}
	resp.OK(c, links)
}

// GET /admin/sync/filter-check
func (s *SyncController) FilterCheck(c *gin.Context) {
	check, err := s.sync.TestFilterScope(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	resp.OK(c, check)
}

// POST /admin/sync/reset
func (s *SyncController) Reset(c *gin.Context) {
	if err := s.sync.ResetCatalog(); err != nil {
		if errors.Is(err, services.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
			return
		}
		resp.ServerError(c, err); return
	}
	resp.OK(c, gin.H{"reset": true})
}
