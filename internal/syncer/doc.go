// Package syncer reconciles location, the prayer time service and local
// storage into the published view model.
//
// # Triggers
//
// Two events start a load, and both end in Engine.LoadDay:
//
//   - location resolved: Session.LocationResolved (or ResolveLocation)
//   - day changed: the navigator callback behind PreviousDay, NextDay, GoTo
//
// Reload re-runs the current day. Nothing retries on its own.
//
// # LoadDay
//
//  1. Begin a generation for the day.
//  2. Without a coordinate publish "location unavailable" and stop.
//  3. Fresh cache entry: overlay completion marks and publish.
//  4. Otherwise publish loading, fetch (one call per cache key shared by
//     concurrent loads, bounded by a timeout), store the unchecked entries
//     in the cache, overlay and publish.
//  5. On fetch failure publish "fetch failed" and leave the cache and the
//     previous prayers untouched.
//
// A result is published only while its generation is current. Older results
// are dropped and LoadDay returns ErrSuperseded.
//
// # Toggles
//
// Engine.Toggle writes through the completion store and overlays the new
// marks on the published prayers without fetching. If storage rejects the
// write the toggle stays on screen and "storage unavailable" is shown.
package syncer
