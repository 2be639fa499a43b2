// repository/sync_run_repository.go
package repository

import (
	"github.com/luca0405/bean-stalker-app2-sub000/entity"
	"gorm.io/gorm"
)

type SyncRunRepository struct {
	DB *gorm.DB
}

func NewSyncRunRepository(db *gorm.DB) *SyncRunRepository {
	return &SyncRunRepository{DB: db}
}

func (r *SyncRunRepository) Create(run *entity.SyncRun) error {
	return r.DB.Create(run).Error
}

func (r *SyncRunRepository) FindRecent(limit int) ([]entity.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entity.SyncRun
	err := r.DB.Order("started_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

// SetMeta writes a sync metadata key (e.g. last_full_sync_at).
func (r *SyncRunRepository) SetMeta(key, value string) error {
	cfg := entity.SyncConfig{Key: key, Value: value}
	return r.DB.Save(&cfg).Error
}

func (r *SyncRunRepository) GetMeta(key string) (string, error) {
	var cfg entity.SyncConfig
	err := r.DB.First(&cfg, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cfg.Value, nil
}
