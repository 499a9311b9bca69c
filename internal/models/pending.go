package models

import "time"

// PendingWrite is a story created while offline (or whose upload failed),
// queued for replay by the background sync engine.
type PendingWrite struct {
	// ID is assigned by the store, sequential in insertion order.
	ID          int64
	Description string
	Photo       []byte
	PhotoType   string
	Lat         *float64
	Lon         *float64
	// Token is the bearer token active when the write was queued. Replays
	// use it instead of the current session token.
	Token     string
	CreatedAt time.Time
	Synced    bool
	SyncedAt  *time.Time
}

// HasLocation reports whether both coordinates are present.
func (p *PendingWrite) HasLocation() bool {
	return p.Lat != nil && p.Lon != nil
}

// StorageInfo summarizes the durable store.
type StorageInfo struct {
	TotalFavorites      int    `json:"totalFavorites"`
	TotalOfflineStories int    `json:"totalOfflineStories"`
	DBName              string `json:"dbName"`
	DBVersion           int64  `json:"dbVersion"`
}
