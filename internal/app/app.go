package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/aladhan"
	"github.com/five82/salat/internal/cache"
	"github.com/five82/salat/internal/completion"
	"github.com/five82/salat/internal/config"
	"github.com/five82/salat/internal/httpapi"
	"github.com/five82/salat/internal/kv"
	"github.com/five82/salat/internal/location"
	"github.com/five82/salat/internal/notify"
	"github.com/five82/salat/internal/prayer"
	"github.com/five82/salat/internal/prefs"
	"github.com/five82/salat/internal/state"
	"github.com/five82/salat/internal/syncer"
	"github.com/five82/salat/internal/ui"
)

// Options configure the salat application.
type Options struct {
	ConfigPath string
	EnvFile    string // empty uses ".env" in the working directory
	PrefsPath  string // empty uses default ~/.config/salat/prefs.toml
	LogLevel   string // overrides [log] level when set

	// ConsoleLog sends logs to stderr instead of the log file. The TUI
	// owns the terminal, so only non-interactive commands set it.
	ConsoleLog bool
}

// App holds the wired collaborators shared by every command.
type App struct {
	Config     config.Config
	KV         kv.Store
	Cache      *cache.Manager
	Completion *completion.Store
	Engine     *syncer.Engine
	Location   location.Provider

	notifier *notify.Publisher
	closeLog func() error
}

// New loads configuration and builds the sync stack.
func New(opts Options) (*App, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	closeLog, err := setupLogging(cfg.Log, opts.ConsoleLog)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, closeLog: closeLog}
	if err := a.wire(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire() error {
	cfg := a.Config

	store, err := kv.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	a.KV = store

	client, err := aladhan.NewClient(cfg.Service.BaseURL, aladhan.Options{
		Method:   cfg.Service.Method,
		School:   cfg.Service.School,
		Timezone: cfg.Service.Timezone,
		Timeout:  cfg.Service.Timeout,
	})
	if err != nil {
		return fmt.Errorf("init prayer time client: %w", err)
	}

	scope, err := completion.ParseScope(cfg.Completion.Scope)
	if err != nil {
		return err
	}

	provider, err := location.FromConfig(cfg.Location)
	if err != nil {
		return err
	}
	a.Location = provider

	a.Cache = cache.New(store, cfg.Cache.Freshness)
	a.Completion = completion.New(store, scope)
	a.Engine = syncer.NewEngine(syncer.Deps{
		Fetcher:      client,
		Cache:        a.Cache,
		Completion:   a.Completion,
		Store:        &state.Store{},
		FetchTimeout: cfg.Service.Timeout,
	})

	publisher, err := notify.Connect(cfg.MQTT)
	if err != nil {
		// Notifications are optional; the tracker works without them.
		log.Warn().Err(err).Msg("completion notifications disabled")
	}
	a.notifier = publisher

	log.Info().
		Str("storage", cfg.Storage.Backend).
		Str("scope", string(a.Completion.Scope())).
		Str("location", cfg.Location.Provider).
		Dur("freshness", cfg.Cache.Freshness).
		Msg("salat started")
	return nil
}

// Close releases storage, the broker connection and the log file.
func (a *App) Close() error {
	var errs []error
	if a.notifier != nil {
		a.notifier.Close()
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if a.closeLog != nil {
		if err := a.closeLog(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewSession starts a session at day. Location is not resolved yet.
func (a *App) NewSession(ctx context.Context, day prayer.Date) *syncer.Session {
	var opts []syncer.SessionOption
	if a.notifier != nil {
		opts = append(opts, syncer.WithNotifier(a.notifier))
	}
	return syncer.NewSession(ctx, a.Engine, day, opts...)
}

// OpenDay starts a session at day and resolves the location in the
// foreground, so the returned session has already loaded the day. The
// error is the outcome of that first load.
func (a *App) OpenDay(ctx context.Context, day prayer.Date) (*syncer.Session, error) {
	session := a.NewSession(ctx, day)
	err := session.ResolveLocation(ctx, a.Location)
	return session, err
}

// startInBackground resolves the location off the caller's goroutine, the
// way the interactive surfaces need it.
func (a *App) startInBackground(ctx context.Context, session *syncer.Session) {
	go func() {
		if err := session.ResolveLocation(ctx, a.Location); err != nil {
			log.Warn().Err(err).Msg("initial load failed")
		}
	}()
}

// Run boots the TUI until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	a, err := New(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	session := a.NewSession(ctx, prayer.Today(time.Now()))
	a.startInBackground(ctx, session)

	return ui.Run(ctx, ui.Options{
		Session:   session,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   a.Config.Log.File,
	})
}

// Serve exposes the session over HTTP until ctx is cancelled. An empty addr
// uses [server] addr from the config.
func Serve(ctx context.Context, opts Options, addr string) error {
	a, err := New(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if addr == "" {
		addr = a.Config.Server.Addr
	}

	session := a.NewSession(ctx, prayer.Today(time.Now()))
	a.startInBackground(ctx, session)

	return httpapi.ListenAndServe(ctx, addr, httpapi.NewServer(session).Router())
}
