package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/salat/internal/app"
	"github.com/five82/salat/internal/prayer"
	"github.com/five82/salat/internal/state"
)

var showDate string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the prayer times and completion marks of a day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDay(showDate)
		if err != nil {
			return err
		}
		a, err := app.New(appOptions(true))
		if err != nil {
			return err
		}
		defer a.Close()

		session, loadErr := a.OpenDay(cmd.Context(), day)
		printDay(cmd.OutOrStdout(), session.Snapshot())
		return loadErr
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showDate, "date", "", "Date YYYY-MM-DD (default today)")
}

func parseDay(raw string) (prayer.Date, error) {
	if raw == "" {
		return prayer.Today(time.Now()), nil
	}
	day, err := prayer.ParseDate(raw)
	if err != nil {
		return prayer.Date{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", raw)
	}
	return day, nil
}

func printDay(w io.Writer, snap state.Snapshot) {
	fmt.Fprintf(w, "Date: %s\n", snap.CurrentDay)
	if snap.Location != nil {
		fmt.Fprintf(w, "Location: %s\n", snap.Location)
	}
	fmt.Fprintf(w, "Completed Prayers: %d/%d\n", snap.Completed(), prayer.Count)
	for _, e := range snap.Prayers {
		mark := "[ ]"
		if e.Checked {
			mark = "[x]"
		}
		t := e.Time
		if t == "" {
			t = "--:--"
		}
		fmt.Fprintf(w, "%s %-8s %s\n", mark, e.Name, t)
	}
	if snap.HasError() {
		fmt.Fprintf(w, "Error: %s\n", snap.ErrorMsg)
	}
}
