// Package state holds the view model shared between the sync engine, the
// Bubble Tea UI and the HTTP API.
//
// # Overview
//
// The engine writes, the UI and API read. The UI polls Snapshot on its own
// tick and after every command instead of subscribing to changes.
//
//	Producer (syncer.Engine):       Consumer (ui, httpapi):
//	┌──────────────────┐           ┌──────────────────┐
//	│ gen := Begin(d)  │           │                  │
//	│ fetch / cache    │           │                  │
//	│ Apply(gen, fn)   │──────────→│ Snapshot()       │
//	│                  │  (mutex)  │ render           │
//	└──────────────────┘           └──────────────────┘
//
// # Generations
//
// Begin bumps Snapshot.Generation and sets CurrentDay. A load that finishes
// after a newer Begin gets false from Apply and its result never reaches the
// snapshot. This is how a slow response for yesterday is kept from
// overwriting today.
//
// Update skips the generation check. Toggles and the location status use it.
//
// # Update Semantics
//
// Apply and Update mutate the snapshot in place, so an error path that only
// sets ErrorMsg and Loading keeps the previously published prayers on
// screen.
//
// # Copying
//
// Snapshot returns copies of the prayer slice and the location pointer. The
// store is ready to use as a zero value.
package state
