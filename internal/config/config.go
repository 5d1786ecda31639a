package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything salat needs at startup.
type Config struct {
	Service    Service
	Location   Location
	Storage    Storage
	Cache      Cache
	Completion Completion
	MQTT       MQTT
	Log        Log
	Server     Server
}

// Service configures the prayer time service client.
type Service struct {
	BaseURL  string
	Method   int
	School   *int
	Timezone string
	Timeout  time.Duration
}

// Location configures the location provider.
type Location struct {
	Provider  string // "static" or "ip"
	Latitude  *float64
	Longitude *float64
	Allow     bool
	Endpoint  string
}

// Storage selects and configures the persistent key-value backend.
type Storage struct {
	Backend       string // "file", "sqlite", "redis" or "memory"
	Path          string
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Cache configures the prayer time cache.
type Cache struct {
	Freshness time.Duration
}

// Completion configures how checked prayers are remembered.
type Completion struct {
	Scope string // "global" or "daily"
}

// MQTT configures the optional completion publisher. An empty Broker disables it.
type MQTT struct {
	Broker   string
	Topic    string
	ClientID string
}

// Log configures the application log file.
type Log struct {
	File  string
	Level string
}

// Server configures `salat serve`.
type Server struct {
	Addr string
}

const (
	defaultConfigPath   = "~/.config/salat/config.toml"
	defaultBaseURL      = "https://api.aladhan.com"
	defaultMethod       = 2
	defaultTimeout      = 10 * time.Second
	defaultProvider     = "static"
	defaultIPEndpoint   = "http://ip-api.com/json/"
	defaultBackend      = "file"
	defaultStoragePath  = "~/.local/share/salat"
	defaultRedisAddr    = "127.0.0.1:6379"
	defaultRedisPrefix  = "salat:"
	defaultFreshness    = 24 * time.Hour
	defaultScope        = "global"
	defaultMQTTTopic    = "salat/completion"
	defaultMQTTClientID = "salat"
	defaultLogFile      = "~/.local/state/salat/salat.log"
	defaultLogLevel     = "info"
	defaultServerAddr   = "127.0.0.1:7490"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL:  defaultBaseURL,
			Method:   defaultMethod,
			Timezone: localZoneName(),
			Timeout:  defaultTimeout,
		},
		Location: Location{
			Provider: defaultProvider,
			Allow:    true,
			Endpoint: defaultIPEndpoint,
		},
		Storage: Storage{
			Backend:     defaultBackend,
			Path:        mustExpand(defaultStoragePath),
			RedisAddr:   defaultRedisAddr,
			RedisPrefix: defaultRedisPrefix,
		},
		Cache:      Cache{Freshness: defaultFreshness},
		Completion: Completion{Scope: defaultScope},
		MQTT:       MQTT{Topic: defaultMQTTTopic, ClientID: defaultMQTTClientID},
		Log:        Log{File: mustExpand(defaultLogFile), Level: defaultLogLevel},
		Server:     Server{Addr: defaultServerAddr},
	}
}

type rawConfig struct {
	Service struct {
		BaseURL  string `toml:"base_url"`
		Method   *int   `toml:"method"`
		School   *int   `toml:"school"`
		Timezone string `toml:"timezone"`
		Timeout  string `toml:"timeout"`
	} `toml:"service"`
	Location struct {
		Provider  string   `toml:"provider"`
		Latitude  *float64 `toml:"latitude"`
		Longitude *float64 `toml:"longitude"`
		Allow     *bool    `toml:"allow"`
		Endpoint  string   `toml:"endpoint"`
	} `toml:"location"`
	Storage struct {
		Backend       string `toml:"backend"`
		Path          string `toml:"path"`
		RedisAddr     string `toml:"redis_addr"`
		RedisUsername string `toml:"redis_username"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
		RedisPrefix   string `toml:"redis_prefix"`
	} `toml:"storage"`
	Cache struct {
		Freshness string `toml:"freshness"`
	} `toml:"cache"`
	Completion struct {
		Scope string `toml:"scope"`
	} `toml:"completion"`
	MQTT struct {
		Broker   string `toml:"broker"`
		Topic    string `toml:"topic"`
		ClientID string `toml:"client_id"`
	} `toml:"mqtt"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
}

// Load locates and parses the salat config, falling back to defaults when
// missing. SALAT_* environment variables override file values.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
	} else {
		defer file.Close()

		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if err := cfg.merge(raw); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) merge(raw rawConfig) error {
	if v := strings.TrimSpace(raw.Service.BaseURL); v != "" {
		c.Service.BaseURL = v
	}
	if raw.Service.Method != nil {
		c.Service.Method = *raw.Service.Method
	}
	c.Service.School = raw.Service.School
	if v := strings.TrimSpace(raw.Service.Timezone); v != "" {
		c.Service.Timezone = v
	}
	if v := strings.TrimSpace(raw.Service.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: service.timeout: %w", err)
		}
		c.Service.Timeout = d
	}

	if v := strings.TrimSpace(raw.Location.Provider); v != "" {
		c.Location.Provider = strings.ToLower(v)
	}
	c.Location.Latitude = raw.Location.Latitude
	c.Location.Longitude = raw.Location.Longitude
	if raw.Location.Allow != nil {
		c.Location.Allow = *raw.Location.Allow
	}
	if v := strings.TrimSpace(raw.Location.Endpoint); v != "" {
		c.Location.Endpoint = v
	}

	if v := strings.TrimSpace(raw.Storage.Backend); v != "" {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Storage.Path); v != "" {
		c.Storage.Path = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Storage.RedisAddr); v != "" {
		c.Storage.RedisAddr = v
	}
	c.Storage.RedisUsername = strings.TrimSpace(raw.Storage.RedisUsername)
	c.Storage.RedisPassword = raw.Storage.RedisPassword
	c.Storage.RedisDB = raw.Storage.RedisDB
	if v := strings.TrimSpace(raw.Storage.RedisPrefix); v != "" {
		c.Storage.RedisPrefix = v
	}

	if v := strings.TrimSpace(raw.Cache.Freshness); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: cache.freshness: %w", err)
		}
		c.Cache.Freshness = d
	}

	if v := strings.TrimSpace(raw.Completion.Scope); v != "" {
		c.Completion.Scope = strings.ToLower(v)
	}

	c.MQTT.Broker = strings.TrimSpace(raw.MQTT.Broker)
	if v := strings.TrimSpace(raw.MQTT.Topic); v != "" {
		c.MQTT.Topic = v
	}
	if v := strings.TrimSpace(raw.MQTT.ClientID); v != "" {
		c.MQTT.ClientID = v
	}

	if v := strings.TrimSpace(raw.Log.File); v != "" {
		c.Log.File = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		c.Log.Level = strings.ToLower(v)
	}

	if v := strings.TrimSpace(raw.Server.Addr); v != "" {
		c.Server.Addr = v
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get("SALAT_LATITUDE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SALAT_LATITUDE %q", v)
		}
		c.Location.Latitude = &f
	}
	if v, ok := get("SALAT_LONGITUDE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SALAT_LONGITUDE %q", v)
		}
		c.Location.Longitude = &f
	}
	if v, ok := get("SALAT_LOCATION_PROVIDER"); ok {
		c.Location.Provider = strings.ToLower(v)
	}
	if v, ok := get("SALAT_TIMEZONE"); ok {
		c.Service.Timezone = v
	}
	if v, ok := get("SALAT_API_BASE_URL"); ok {
		c.Service.BaseURL = v
	}
	if v, ok := get("SALAT_STORAGE_BACKEND"); ok {
		c.Storage.Backend = strings.ToLower(v)
	}
	if v, ok := get("SALAT_STORAGE_PATH"); ok {
		c.Storage.Path = mustExpand(v)
	}
	if v, ok := get("SALAT_REDIS_ADDR"); ok {
		c.Storage.RedisAddr = v
	}
	if v, ok := get("SALAT_REDIS_PASSWORD"); ok {
		c.Storage.RedisPassword = v
	}
	if v, ok := get("SALAT_MQTT_BROKER"); ok {
		c.MQTT.Broker = v
	}
	if v, ok := get("SALAT_LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	return nil
}

// Validate rejects values no component can work with.
func (c Config) Validate() error {
	switch c.Location.Provider {
	case "static", "ip":
	default:
		return fmt.Errorf("unknown location provider %q", c.Location.Provider)
	}
	switch c.Storage.Backend {
	case "file", "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Completion.Scope {
	case "global", "daily":
	default:
		return fmt.Errorf("unknown completion scope %q", c.Completion.Scope)
	}
	if c.Cache.Freshness <= 0 {
		return fmt.Errorf("cache freshness must be > 0")
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service timeout must be > 0")
	}
	if (c.Location.Latitude == nil) != (c.Location.Longitude == nil) {
		return fmt.Errorf("location needs both latitude and longitude")
	}
	return nil
}

// SQLitePath returns the database file used by the sqlite backend.
func (s Storage) SQLitePath() string {
	if strings.TrimSpace(s.Path) == "" {
		return mustExpand(defaultStoragePath + "/salat.db")
	}
	if strings.HasSuffix(s.Path, ".db") {
		return s.Path
	}
	return filepath.Join(s.Path, "salat.db")
}

func localZoneName() string {
	if tz := strings.TrimSpace(os.Getenv("TZ")); tz != "" {
		return tz
	}
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	return "UTC"
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
