// Package timeparse resolves the free-form time expressions accepted by
// create_reminder into absolute instants.
package timeparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/warpdl/reminder/internal/reminder"
)

const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
	Year  = 365 * Day
)

var relativeRe = regexp.MustCompile(`(?i)^in\s+(\d+)\s+(second|seconds|minute|minutes|hour|hours|day|days|week|weeks|month|months|year|years)$`)

// unitDurations uses fixed approximations; there is no calendar arithmetic.
var unitDurations = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    Day,
	"week":   Week,
	"month":  Month,
	"year":   Year,
}

// localLayouts carry no zone information and are interpreted in local time.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.ANSIC,
}

// zonedLayouts either carry an offset or a zone abbreviation.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.UnixDate,
}

// Resolve turns expr into an absolute instant relative to now. It accepts
// "in <N> <unit>" and absolute datetimes; anything else yields an
// *reminder.InvalidTimeFormatError carrying expr verbatim.
func Resolve(expr string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(expr)
	if m := relativeRe.FindStringSubmatch(trimmed); m != nil {
		return resolveRelative(expr, m[1], m[2], now)
	}
	if t, ok := parseAbsolute(trimmed); ok {
		return t, nil
	}
	return time.Time{}, &reminder.InvalidTimeFormatError{Input: expr}
}

func resolveRelative(expr, amount, unit string, now time.Time) (time.Time, error) {
	n, err := strconv.ParseInt(amount, 10, 64)
	if err != nil {
		return time.Time{}, &reminder.InvalidTimeFormatError{Input: expr}
	}
	// Milliseconds, not time.Duration, so delays past ~292 years resolve.
	unitMs := int64(unitDurations[strings.TrimSuffix(strings.ToLower(unit), "s")] / time.Millisecond)
	nowMs := now.UnixMilli()
	if nowMs < 0 || n > (math.MaxInt64-nowMs)/unitMs {
		return time.Time{}, &reminder.InvalidTimeFormatError{Input: expr}
	}
	return time.UnixMilli(nowMs + n*unitMs), nil
}

func parseAbsolute(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	// Date-only ISO strings are UTC midnight.
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, true
	}
	return time.Time{}, false
}
