// Package cli implements the interactive Berbagi Story client.
//
// The REPL talks to the story API through the application services. Stories
// written while the API is unreachable are queued in the local store and
// replayed by the sync engine, which runs in the background together with
// the online status watcher.
package cli
