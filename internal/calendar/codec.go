// Package calendar converts civil dates to the string forms used by the dashboard
// and lays out month grids for date picking.
package calendar

import (
	"fmt"
	"time"
)

const (
	keyLayout     = "2006-01-02"
	displayLayout = "02.01.2006"
)

// Key formats a date as YYYY-MM-DD, the form used for cache and query keys
func Key(t time.Time) string {
	return t.Format(keyLayout)
}

// Display formats a date as DD.MM.YYYY
func Display(t time.Time) string {
	return t.Format(displayLayout)
}

// ParseKey parses a YYYY-MM-DD key as a local civil date at midnight
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(keyLayout, key, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// IsKey reports whether s is a well-formed date key
func IsKey(s string) bool {
	_, err := ParseKey(s)
	return err == nil
}

// Today returns the civil date of now() at local midnight
func Today(now func() time.Time) time.Time {
	return Midnight(now())
}

// Midnight truncates t to local midnight of its civil date
func Midnight(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
