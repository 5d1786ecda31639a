// Package config handles loading and parsing the salat configuration file.
//
// # Overview
//
// salat reads a TOML file to learn where the prayer time service lives, how
// to find the user's location, where to persist state and how to log. Every
// field is optional; a missing file yields a working configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/salat/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. SALAT_* environment variables override whatever the file set
//
// LoadEnvFile can be called first to export a dotenv file (".env" by
// default) into the environment, so the overrides can live next to a
// deployment instead of in the shell profile.
//
// # TOML Format
//
//	[service]
//	base_url = "https://api.aladhan.com"
//	method = 2                  # calculation method id
//	school = 0                  # optional jurisprudence id
//	timezone = "Europe/Helsinki"
//	timeout = "10s"
//
//	[location]
//	provider = "static"         # or "ip"
//	latitude = 60.1699
//	longitude = 24.9384
//	allow = true                # false behaves like a denied permission prompt
//
//	[storage]
//	backend = "file"            # file | sqlite | redis | memory
//	path = "~/.local/share/salat"
//	redis_addr = "127.0.0.1:6379"
//
//	[cache]
//	freshness = "24h"
//
//	[completion]
//	scope = "global"            # or "daily"
//
//	[mqtt]
//	broker = ""                 # empty disables publishing
//
//	[log]
//	file = "~/.local/state/salat/salat.log"
//	level = "info"
//
// # Environment Overrides
//
//   - SALAT_LATITUDE, SALAT_LONGITUDE, SALAT_LOCATION_PROVIDER
//   - SALAT_TIMEZONE, SALAT_API_BASE_URL
//   - SALAT_STORAGE_BACKEND, SALAT_STORAGE_PATH, SALAT_REDIS_ADDR, SALAT_REDIS_PASSWORD
//   - SALAT_MQTT_BROKER, SALAT_LOG_LEVEL
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML parse errors ("parse
// config"), malformed durations or numbers, and values outside the known
// sets (storage backend, completion scope, location provider). A config with
// only one of latitude/longitude is rejected.
package config
