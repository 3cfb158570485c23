package form

import (
	"errors"
	"net/http"
	"time"
)

var errInvalidDateTime = errors.New("Not a valid datetime value.")

// Layouts that carry no zone information. Values in these layouts are
// localized to the configured time zone.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime parses a client-supplied timestamp and returns it in UTC.
//
// Accepted forms, tried in order:
//   - HTTP dates ("Sat, 09 Mar 2013 10:15:39 GMT", RFC 850, ANSI C), read as UTC
//   - RFC 3339 with an offset
//   - naive "2006-01-02[ T]15:04[:05]" or "2006-01-02", read in loc
//
// A nil loc means UTC.
func ParseDateTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	if t, err := http.ParseTime(s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errInvalidDateTime
}
