package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/salat/internal/app"
	"github.com/five82/salat/internal/prayer"
)

var (
	checkDate string
	checkDone string
)

var checkCmd = &cobra.Command{
	Use:   "check <prayer>",
	Short: "Toggle or set the completion mark of a prayer",
	Long: "check flips the completion mark of one prayer (fajr, dhuhr, asr, maghrib or isha) and prints the day.\n" +
		"With --done=true or --done=false the mark is set instead, so repeated runs give the same result.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := prayer.ParseName(args[0])
		if err != nil {
			return err
		}
		day, err := parseDay(checkDate)
		if err != nil {
			return err
		}
		done, set, err := parseDone(checkDone)
		if err != nil {
			return err
		}
		a, err := app.New(appOptions(true))
		if err != nil {
			return err
		}
		defer a.Close()

		session, err := a.OpenDay(cmd.Context(), day)
		if err != nil {
			printDay(cmd.OutOrStdout(), session.Snapshot())
			return err
		}
		var markErr error
		if set {
			markErr = session.SetChecked(name.ID(), done)
		} else {
			markErr = session.Toggle(name.ID())
		}
		printDay(cmd.OutOrStdout(), session.Snapshot())
		return markErr
	},
}

// parseDone reads the --done flag. An empty value means toggle.
func parseDone(raw string) (value bool, set bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false, nil
	}
	value, err = strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("invalid --done %q (expected true or false)", raw)
	}
	return value, true, nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkDate, "date", "", "Date YYYY-MM-DD (default today)")
	checkCmd.Flags().StringVar(&checkDone, "done", "", "Set the mark to true or false instead of toggling")
}
