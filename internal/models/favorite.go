// Package models defines the records kept by the durable local store and
// the response snapshots kept by the named caches.
package models

import "time"

// FavoriteStory is a story the user marked as favorite. SavedAt is stamped
// by the store at insertion and never changes afterwards.
type FavoriteStory struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PhotoURL    string    `json:"photoUrl"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	SavedAt     time.Time `json:"savedAt"`
}

// HasLocation reports whether both coordinates are present.
func (f *FavoriteStory) HasLocation() bool {
	return f.Lat != nil && f.Lon != nil
}

// Favorite sort keys and directions.
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
	SortBySavedAt   = "savedAt"

	SortAsc  = "asc"
	SortDesc = "desc"
)
