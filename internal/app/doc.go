// Package app is the composition root of salat.
//
// New loads the optional .env file and the TOML config, points the global
// zerolog logger at the log file (or stderr for one-shot commands) and wires
// the sync stack:
//
//	kv.Open ──> cache.Manager ─┐
//	       └──> completion.Store ─┼──> syncer.Engine ──> state.Store
//	aladhan.Client ────────────┘
//	location.FromConfig, notify.Connect (optional MQTT)
//
// Every surface then builds a syncer.Session on top of the engine:
//
//   - Run: TUI; location is resolved in the background while the UI shows
//     the loading state
//   - Serve: the same session behind the chi HTTP API
//   - OpenDay: one-shot commands (show, check); location is resolved in the
//     foreground so the day is loaded when it returns
//
// Close releases the storage backend, the broker connection and the log
// file.
package app
