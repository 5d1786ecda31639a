package aladhan

import (
	"strings"

	"github.com/five82/salat/internal/prayer"
)

// timingsResponse accepts both the enveloped shape the public service
// returns ({"code":200,"data":{"timings":{...}}}) and a bare
// {"timings":{...}} object.
type timingsResponse struct {
	Timings map[string]string `json:"timings"`
	Data    *struct {
		Timings map[string]string `json:"timings"`
	} `json:"data"`
}

func parseTimings(raw map[string]string) Timings {
	out := make(Timings, prayer.Count)
	for key, value := range raw {
		name, err := prayer.ParseName(key)
		if err != nil {
			continue
		}
		if t := normalizeTime(value); t != "" {
			out[name] = t
		}
	}
	return out
}

// normalizeTime reduces values like "05:12 (EET)" to "05:12". Values that
// do not start with a clock time are dropped.
func normalizeTime(value string) string {
	v := strings.TrimSpace(value)
	if i := strings.IndexByte(v, ' '); i >= 0 {
		v = v[:i]
	}
	hh, mm, ok := strings.Cut(v, ":")
	if !ok || len(mm) < 2 || hh == "" || len(hh) > 2 {
		return ""
	}
	mm = mm[:2]
	if !isDigits(hh) || !isDigits(mm) {
		return ""
	}
	if len(hh) == 1 {
		hh = "0" + hh
	}
	return hh + ":" + mm
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
