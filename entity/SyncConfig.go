package entity

// SyncConfig stores key/value sync metadata, e.g. last_full_sync_at.
type SyncConfig struct {
	Key   string `gorm:"primaryKey;size:255" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
