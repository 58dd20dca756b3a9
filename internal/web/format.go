package web

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatDuration renders whole seconds as "1h 2m 3s", dropping leading zero
// units. Zero renders as "0s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// ParseTimeToMs converts "HH:MM:SS" (or "MM:SS") into milliseconds.
func ParseTimeToMs(value string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q, expected HH:MM:SS", value)
	}

	var total int64
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q, expected HH:MM:SS", value)
		}
		total = total*60 + int64(n)
	}
	if total == 0 {
		return 0, fmt.Errorf("duration %q must be greater than zero", value)
	}
	return total * 1000, nil
}
