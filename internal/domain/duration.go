package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DefaultMaxHours is the hour ceiling used when the config does not set one.
	// It is also the highest ceiling allowed: the encoded date must stay
	// 1970-01-01, so a duration can never reach a full day.
	DefaultMaxHours = 23
	maxMinutes      = 59

	// WireTimestampLayout is the epoch-offset layout the work system expects
	// for time_worked values.
	WireTimestampLayout = "2006-01-02+15:04:05"
)

var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)

// Duration is a validated amount of worked time. The zero value is not valid;
// construct with ParseDuration.
type Duration struct {
	seconds int64
}

// ParseDuration parses expressions like "1h2m", "3h" or "45m". Hours may not
// exceed maxHours and minutes may not exceed 59; the total must be positive.
// A maxHours outside 1..DefaultMaxHours is treated as DefaultMaxHours.
func ParseDuration(expr string, maxHours int) (Duration, error) {
	if maxHours <= 0 || maxHours > DefaultMaxHours {
		maxHours = DefaultMaxHours
	}
	m := durationPattern.FindStringSubmatch(expr)
	if m == nil || (m[1] == "" && m[2] == "") {
		return Duration{}, &FormatError{Input: expr, Expected: "optional <hours>h followed by optional <minutes>m, e.g. 1h30m"}
	}

	hours, err := atoiOrZero(m[1])
	if err != nil {
		return Duration{}, &RangeError{Input: expr, Bounds: durationBounds(maxHours)}
	}
	minutes, err := atoiOrZero(m[2])
	if err != nil {
		return Duration{}, &RangeError{Input: expr, Bounds: durationBounds(maxHours)}
	}
	if hours > maxHours || minutes > maxMinutes {
		return Duration{}, &RangeError{Input: expr, Bounds: durationBounds(maxHours)}
	}

	total := int64(hours)*3600 + int64(minutes)*60
	if total == 0 {
		return Duration{}, &ZeroDurationError{Input: expr}
	}
	return Duration{seconds: total}, nil
}

// Seconds returns the total number of seconds.
func (d Duration) Seconds() int64 { return d.seconds }

// String renders the duration back in the compact input notation.
func (d Duration) String() string {
	h := d.seconds / 3600
	m := (d.seconds % 3600) / 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh%dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// Encode renders the duration as an offset from the Unix epoch in UTC, the
// format the work system stores time_worked in. The date part is always
// 1970-01-01 because the hour ceiling keeps durations under a day.
func (d Duration) Encode() string {
	return time.Unix(d.seconds, 0).UTC().Format(WireTimestampLayout)
}

func durationBounds(maxHours int) string {
	return fmt.Sprintf("hours must be at most %d and minutes at most %d", maxHours, maxMinutes)
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
