package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/salat/internal/app"
)

var (
	configPath string
	prefsPath  string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "salat",
	Short: "salat tracks the five daily prayers from your terminal",
	Long: "salat fetches the prayer times for your location, caches them per day " +
		"and remembers which prayers you have completed.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), appOptions(false))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.toml (default ~/.config/salat/config.toml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "Path to prefs.toml (default ~/.config/salat/prefs.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Dotenv file with SALAT_* overrides (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
}

// appOptions collects the persistent flags. One-shot commands log to
// stderr and stay quiet below warn unless --log-level says otherwise.
func appOptions(oneShot bool) app.Options {
	opts := app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		EnvFile:    envFile,
		LogLevel:   logLevel,
		ConsoleLog: oneShot,
	}
	if oneShot && opts.LogLevel == "" {
		opts.LogLevel = "warn"
	}
	return opts
}
