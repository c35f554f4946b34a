package repository

import "time"

// Timestamps are stored as RFC3339 UTC text with second precision so that
// lexicographic comparison in SQL matches chronological order.

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
