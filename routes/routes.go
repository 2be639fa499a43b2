package routes

import (
	"github.com/luca0405/bean-stalker-app2-sub000/configs"
	"github.com/luca0405/bean-stalker-app2-sub000/controllers"
	"github.com/luca0405/bean-stalker-app2-sub000/middlewares"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/services"
	"github.com/luca0405/bean-stalker-app2-sub000/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *configs.Config,
	menuSvc *services.MenuService,
	syncSvc *services.CatalogSyncService,
	runs *repository.SyncRunRepository,
	feed *ws.SyncFeed,
) {
	r.Use(middlewares.CORSMiddleware())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	// Controllers
	authCtrl := controllers.NewAuthController(db, cfg)
	menuCtrl := controllers.NewMenuController(menuSvc)
	syncCtrl := controllers.NewSyncController(syncSvc, menuSvc, runs)

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
	}

	// Auth (protected)
	aAuth := a.Group("", middlewares.AuthMiddleware())
	{
		aAuth.GET("/me", authCtrl.Me)
	}

	// Public menu reads
	r.GET("/menu", menuCtrl.List)
	r.GET("/menu/:id", menuCtrl.Detail)
	r.GET("/menu/:id/options", menuCtrl.Options)
	r.GET("/categories", menuCtrl.Categories)

	// Admin sync surface (admin only)
	admin := r.Group("/admin/sync", middlewares.AuthMiddleware("admin"))
	{
		admin.POST("/catalog", syncCtrl.TriggerFullSync)
		admin.POST("/categories", syncCtrl.SyncCategories)
		admin.POST("/flags", syncCtrl.RefreshFlags)
		admin.POST("/reset", syncCtrl.Reset)
		admin.GET("/runs", syncCtrl.Runs)
		admin.GET("/modifier-lists", syncCtrl.ModifierLists)
		admin.GET("/modifiers", syncCtrl.Modifiers)
		admin.GET("/links", syncCtrl.Links)
		admin.GET("/filter-check", syncCtrl.FilterCheck)
	}

	// Progress feed; token comes via query on WS upgrades
	r.GET("/admin/sync/feed", middlewares.WSAuthMiddleware(cfg.JWTSecret, "admin"), feed.HandleWebSocket)
}
