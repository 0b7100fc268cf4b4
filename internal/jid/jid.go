// Package jid generates and parses job ids. A jid is a 20-digit local
// timestamp, yyyymmddHHMMSS followed by six microsecond digits, optionally
// suffixed with a nonce for callers that cannot tolerate collisions between
// jobs dispatched in the same microsecond.
package jid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	secondsLayout = "20060102150405"

	// startTimeLayout is the human-facing timestamp used in formatted job info.
	startTimeLayout = "2006, Jan 02 15:04:05.000000"
)

// Gen returns a fresh jid for the current time.
func Gen() string {
	return FromTime(time.Now())
}

// GenUnique returns a fresh jid with a uuid-derived nonce appended,
// separated by an underscore.
func GenUnique() string {
	nonce := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s_%s", Gen(), nonce)
}

// FromTime returns the jid encoding of t.
func FromTime(t time.Time) string {
	return fmt.Sprintf("%s%06d", t.Format(secondsLayout), t.Nanosecond()/1000)
}

// IsJid reports whether s looks like a valid jid, ignoring any nonce suffix.
func IsJid(s string) bool {
	_, err := ParseTime(s)
	return err == nil
}

// ParseTime recovers the dispatch timestamp encoded in a jid. The nonce
// suffix, when present, is ignored.
func ParseTime(jid string) (time.Time, error) {
	base := jid
	if i := strings.IndexByte(base, '_'); i >= 0 {
		base = base[:i]
	}
	if len(base) != 20 {
		return time.Time{}, fmt.Errorf("invalid jid %q: expected 20 digits, got %d", jid, len(base))
	}
	for _, c := range base {
		if c < '0' || c > '9' {
			return time.Time{}, fmt.Errorf("invalid jid %q: non-digit character", jid)
		}
	}

	t, err := time.ParseInLocation(secondsLayout, base[:14], time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid jid %q: %w", jid, err)
	}

	var micros int
	if _, err := fmt.Sscanf(base[14:], "%06d", &micros); err != nil {
		return time.Time{}, fmt.Errorf("invalid jid %q: %w", jid, err)
	}

	return t.Add(time.Duration(micros) * time.Microsecond), nil
}

// FormatInstance builds the caller-facing job-info document for a stored
// load. Missing load fields fall back to the conventional placeholders.
// StartTime is included only when the jid parses.
func FormatInstance(jid string, load map[string]any) map[string]any {
	info := map[string]any{
		"Function":    valueOr(load, "fun", "unknown-function"),
		"Arguments":   valueOr(load, "arg", []any{}),
		"Target":      valueOr(load, "tgt", "unknown-target"),
		"Target-type": valueOr(load, "tgt_type", "list"),
		"User":        valueOr(load, "user", "root"),
	}
	if t, err := ParseTime(jid); err == nil {
		info["StartTime"] = t.Format(startTimeLayout)
	}
	return info
}

func valueOr(m map[string]any, key string, fallback any) any {
	if m != nil {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return fallback
}
