package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/salat/internal/app"
)

var pruneOlderThan time.Duration

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the prayer time cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many days are cached",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(appOptions(true))
		if err != nil {
			return err
		}
		defer a.Close()

		count, last, err := a.Cache.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\n", count)
		if last.IsZero() {
			fmt.Fprintln(cmd.OutOrStdout(), "Last fetch: never")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Last fetch: %s\n", last.Local().Format(time.RFC3339))
		}
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached days fetched longer ago than --older-than",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(appOptions(true))
		if err != nil {
			return err
		}
		defer a.Close()

		olderThan := pruneOlderThan
		if olderThan <= 0 {
			olderThan = a.Config.Cache.Freshness
		}
		removed, err := a.Cache.Prune(cmd.Context(), olderThan)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached day(s) older than %s\n", removed, olderThan)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cachePruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Age cutoff (default [cache] freshness)")
}
