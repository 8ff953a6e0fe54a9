package util

import (
	"fmt"
	"time"
)

// isoMillis matches the browser client's Date.toISOString output.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// NowISO returns the current UTC time as an ISO-8601 string with
// millisecond precision, e.g. "2025-10-10T08:00:00.000Z".
func NowISO() string {
	return FormatISO(time.Now())
}

// FormatISO formats t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// ParseISO parses an ISO-8601 timestamp. Both millisecond and plain
// RFC 3339 forms are accepted.
func ParseISO(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// SnapshotStamp returns a file-name-safe timestamp for bulk snapshots,
// e.g. "2025-10-10T08-00-00-000Z".
func SnapshotStamp(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s-%03dZ", t.Format("2006-01-02T15-04-05"), t.Nanosecond()/int(time.Millisecond))
}

// FormatTime formats a time in a human-readable way.
func FormatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
