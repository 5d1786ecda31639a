// Package cache stores fetched prayer days in the key-value store.
//
// All days live in one JSON blob keyed by "date|latitude|longitude". Each
// entry carries its own fetchedAt and is served only while younger than the
// freshness window; the blob also records the most recent fetch. Entries are
// never evicted implicitly, Prune exists for manual cleanup.
package cache
