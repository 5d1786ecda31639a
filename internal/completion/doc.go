// Package completion remembers which prayers the user has marked done.
//
// The marks are a JSON map[string]bool stored under kv.KeyCompletion. With
// ScopeGlobal (the default) the map is keyed by prayer id alone, so a mark
// follows the prayer across days. ScopeDaily keys by date and id instead.
package completion
