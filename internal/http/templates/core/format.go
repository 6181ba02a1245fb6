package core

import (
	"fmt"
	"strings"
	"time"
)

// DateTimeLayout is the local timestamp format shown in tables and tooltips.
const DateTimeLayout = "Jan 2, 2006 3:04 PM"

// relativeUnits are checked in order; the first whose limit exceeds the age wins.
//
//nolint:gochecknoglobals // static read-only table
var relativeUnits = []struct {
	limit time.Duration
	unit  time.Duration
	name  string
}{
	{limit: time.Hour, unit: time.Minute, name: "minute"},
	{limit: 24 * time.Hour, unit: time.Hour, name: "hour"},
	{limit: 7 * 24 * time.Hour, unit: 24 * time.Hour, name: "day"},
}

// FormatDateTime renders t in local time, or "" for the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateTimeLayout)
}

// Since describes the age of t relative to now ("3 hours ago"). Anything under a
// minute, or in the future, is "just now"; a week or older falls back to FormatDateTime.
func Since(t, now time.Time) string {
	age := now.Sub(t)
	if age < time.Minute {
		return "just now"
	}
	for _, u := range relativeUnits {
		if age >= u.limit {
			continue
		}
		n := int(age / u.unit)
		if n == 1 {
			return fmt.Sprintf("1 %s ago", u.name)
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return FormatDateTime(t)
}

// Truncate shortens s to at most limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
