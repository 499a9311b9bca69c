// Package favorites stores favorited stories in the local SQLite database.
//
// Rows are returned in insertion order (rowid), which is the natural
// collection order callers rely on for tie-breaking when sorting.
package favorites
