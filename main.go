package main

import (
	"fmt"
	"log"

	"github.com/luca0405/bean-stalker-app2-sub000/configs"
	"github.com/luca0405/bean-stalker-app2-sub000/repository"
	"github.com/luca0405/bean-stalker-app2-sub000/routes"
	"github.com/luca0405/bean-stalker-app2-sub000/services"
	"github.com/luca0405/bean-stalker-app2-sub000/square"
	"github.com/luca0405/bean-stalker-app2-sub000/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	// DB
	configs.ConnectionDB(cfg.DBSource)
	db := configs.DB()

	// migrate
	configs.SetupDatabase()

	if err := configs.SeedAdmin(); err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}

	// Square gateway
	if cfg.SquareAccessToken == "" {
		log.Println("SQUARE_ACCESS_TOKEN not set; catalog sync will fail until configured")
	}
	client := square.NewClient(cfg.SquareAccessToken, square.WithBaseURL(cfg.SquareAPIBase))

	denylist, err := services.LoadTenantDenylist(cfg.DenylistFile)
	if err != nil {
		log.Fatalf("load denylist failed: %v", err)
	}

	// Repositories
	categories := repository.NewCategoryRepository(db)
	items := repository.NewMenuItemRepository(db)
	mods := repository.NewModifierRepository(db)
	links := repository.NewItemModifierLinkRepository(db)
	runs := repository.NewSyncRunRepository(db)

	// Sync engine
	feed := ws.NewSyncFeed()
	go feed.Run()

	filter := services.NewLocationFilter(client, cfg.SquareLocationID, denylist)
	importer := services.NewCatalogImporter(categories, items)
	modSync := services.NewModifierSyncService(client, mods, links, items)
	cache := services.NewAssociationCache(0)
	syncSvc := services.NewCatalogSyncService(client, filter, importer, modSync, cache, items, links, runs, feed)
	menuSvc := services.NewMenuService(items, categories, mods, links, cache, client)

	// HTTP (CORS is attached inside RegisterRoutes)
	r := gin.Default()

	routes.RegisterRoutes(r, db, cfg, menuSvc, syncSvc, runs, feed)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Println("server running at", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
