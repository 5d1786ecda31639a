// Package kv provides the persistent key-value store salat keeps its cache
// blob and completion map in.
//
// Four backends implement Store: File (one JSON file per key), SQLite
// (modernc.org/sqlite, a single kv table), Redis (go-redis, keys namespaced
// by a prefix) and Memory. Open picks one from config.Storage. A key that was
// never written is not an error; Get reports ok=false. Backend failures are
// wrapped with ErrUnavailable so callers can match them with errors.Is.
package kv
