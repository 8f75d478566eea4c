package utils

import (
	"fmt"
	"strings"
	"time"
)

// ReportTimestamp formats a time for report filenames, with the month as an
// uppercase three-letter abbreviation.
// Example: 2025-MAR-07_14-30-05
func ReportTimestamp(t time.Time) string {
	return fmt.Sprintf("%d-%s-%02d_%02d-%02d-%02d",
		t.Year(), strings.ToUpper(t.Format("Jan")), t.Day(),
		t.Hour(), t.Minute(), t.Second())
}

// CalculateElapsedDays calculates the number of days elapsed since a given time
func CalculateElapsedDays(since time.Time) int {
	return int(time.Since(since).Hours() / 24)
}

// GetMonthlyHours returns the number of hours in a month (approximation)
func GetMonthlyHours() float64 {
	return 730.0 // 365 days / 12 months * 24 hours
}
