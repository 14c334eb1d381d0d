package timeutil

import (
	"time"

	"billing/pkg/models"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// Today returns the current calendar date in IST at midnight.
func Today() time.Time {
	now := time.Now().In(IST)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, IST)
}

// StartOfYear returns 1 January of t's year in IST.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.In(IST).Year(), time.January, 1, 0, 0, 0, 0, IST)
}

// ParseDate parses a stored YYYY-MM-DD date in IST.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(models.DateLayout, value, IST)
}

// ParseDateOrZero parses value, returning the zero time for anything
// unparsable. The zero time sorts before every real date.
func ParseDateOrZero(value string) time.Time {
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDate formats t as a stored date.
func FormatDate(t time.Time) string {
	return t.In(IST).Format(models.DateLayout)
}
