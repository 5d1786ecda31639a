package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/salat/internal/prayer"
)

const longDateLayout = "Monday, January 2, 2006"

// formatTime renders an HH:MM prayer time. With twelve set, "17:30" becomes
// "05:30 PM". Values that do not parse are shown as they are.
func formatTime(hhmm string, twelve bool) string {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return "--:--"
	}
	if !twelve {
		return hhmm
	}
	hourPart, minute, ok := strings.Cut(hhmm, ":")
	if !ok {
		return hhmm
	}
	h, err := strconv.Atoi(hourPart)
	if err != nil || h < 0 || h > 23 {
		return hhmm
	}
	period := "AM"
	if h >= 12 {
		period = "PM"
		if h > 12 {
			h -= 12
		}
	}
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%s %s", h, minute, period)
}

// dayLabel returns "Today" for the local current day and the long date
// otherwise.
func dayLabel(day prayer.Date, now time.Time) string {
	if day == prayer.Today(now) {
		return "Today"
	}
	return day.Time(time.Local).Format(longDateLayout)
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
