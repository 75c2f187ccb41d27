package util

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/jinzhu/now"
)

// Datetime related utility functions.
// All report dates are UTC civil dates, suffix Z marks UTC helpers.
const (
	DATETIME_FORMAT_YYYYMMDD_HYPHEN string = "2006-01-02"
	DATETIME_FORMAT_YYYYMMDD        string = "20060102"
)

// TimeNowZ Return current time in UTC. Should be used everywhere to avoid
// local timezone.
func TimeNowZ() time.Time {
	return time.Now().UTC()
}

// DateNowZ Returns the current UTC civil date.
func DateNowZ() civil.Date {
	return civil.DateOf(TimeNowZ())
}

// GetDateOnlyHyphenFormatFromTimestampZ Returns date in YYYY-MM-DD format.
func GetDateOnlyHyphenFormatFromTimestampZ(timestamp int64) string {
	return time.Unix(timestamp, 0).UTC().Format(DATETIME_FORMAT_YYYYMMDD_HYPHEN)
}

// ParseDateHyphenFormat parses a YYYY-MM-DD value into a civil date.
func ParseDateHyphenFormat(value string) (civil.Date, error) {
	return civil.ParseDate(value)
}

// EndOfTodayZ Returns the last instant of today in UTC. Used as the default
// upper bound of report date ranges.
func EndOfTodayZ() time.Time {
	return now.New(TimeNowZ()).EndOfDay()
}

// BeginningOfDayZ Returns the first instant of the given time's day in UTC.
func BeginningOfDayZ(t time.Time) time.Time {
	return now.New(t.UTC()).BeginningOfDay()
}
