package configs

import (
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var db *gorm.DB

func DB() *gorm.DB {
	return db
}

func ConnectionDB(source string) {
	database, err := gorm.Open(sqlite.Open(source), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db = database
}

func SetupDatabase() {

	// Migrate the schema
	db.AutoMigrate(
		&entity.User{},
		&entity.Category{}, &entity.MenuItem{},
		&entity.ModifierList{}, &entity.Modifier{}, &entity.MenuItemModifierList{},
		&entity.SyncRun{}, &entity.SyncConfig{},
	)
}
