package entity

import (
	"time"
)

// SyncRun is the persisted completion summary of one catalog sync, written
// whether the run succeeded, partially failed, or aborted.
type SyncRun struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Processed    int       `json:"processed"`
	Created      int       `json:"created"`
	Updated      int       `json:"updated"`
	LinksCreated int       `json:"linksCreated"`
	ErrorCount   int       `json:"errorCount"`
	// Errors holds the accumulated per-object messages, newline separated.
	Errors string `gorm:"type:text" json:"errors"`
}
