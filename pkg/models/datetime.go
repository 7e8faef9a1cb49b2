package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minPlausibleYear = 1970

	wireLayout       = "2006-01-02T15:04:05"
	wireOffsetLayout = "2006-01-02T15:04:05-07:00"
)

// dateTimeFormats are tried in order; the first whose shape matches and whose
// layout parses wins. The shape keeps time.Parse from accepting fractional
// seconds the layouts do not name.
var dateTimeFormats = []struct {
	example string
	layout  string
	shape   *regexp.Regexp
}{
	{"1976-05-18T23:59:00+0500", "2006-01-02T15:04:05-0700", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{4}$`)},
	{"19760518T235900+0500", "20060102T150405-0700", regexp.MustCompile(`^\d{8}T\d{6}[+-]\d{4}$`)},
	{"19760518T235900Z", "20060102T150405Z", regexp.MustCompile(`^\d{8}T\d{6}Z$`)},
	{"1976-05-18T23:59:00", "2006-01-02T15:04:05", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}$`)},
	{"19760518T235900", "20060102T150405", regexp.MustCompile(`^\d{8}T\d{6}$`)},
	{"1976-05-18", "2006-01-02", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
	{"19760518", "20060102", regexp.MustCompile(`^\d{8}$`)},
}

var datePrefix = regexp.MustCompile(`^(\d{4})-?(\d{2})-?(\d{2})`)

// ParseDateTime converts a date or date-time string in one of the accepted
// layouts into a time.Time. Strings without an offset, including the
// Z-suffixed form, are returned in UTC.
//
// Before any layout is tried the leading year, month and day are checked
// against coarse bounds: year 1970 through the current year, month 1-12 and
// day 1-31. Day 31 of a 30-day month passes that check and is rejected by the
// layout parse instead.
func ParseDateTime(s string) (time.Time, error) {
	return parseDateTime(s, time.Now())
}

func parseDateTime(s string, now time.Time) (time.Time, error) {
	m := datePrefix.FindStringSubmatch(s)
	if m == nil ||
		!inRange(m[1], minPlausibleYear, now.Year()) ||
		!inRange(m[2], 1, 12) ||
		!inRange(m[3], 1, 31) {
		return time.Time{}, invalidDateFormat(s)
	}

	for _, f := range dateTimeFormats {
		if !f.shape.MatchString(s) {
			continue
		}
		if t, err := time.Parse(f.layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, invalidDateFormat(s)
}

// MustParseDateTime is like ParseDateTime but panics on error
func MustParseDateTime(s string) time.Time {
	t, err := ParseDateTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// AcceptedDateTimeFormats returns an example of every accepted layout
func AcceptedDateTimeFormats() []string {
	examples := make([]string, len(dateTimeFormats))
	for i, f := range dateTimeFormats {
		examples[i] = f.example
	}
	return examples
}

// FormatDateTime renders t the way the gateway expects it: ISO-8601 to whole
// seconds, with a +HH:MM suffix only when the offset is non-zero. The zero
// time renders as an empty string.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.Truncate(time.Second)
	if _, offset := t.Zone(); offset != 0 {
		return t.Format(wireOffsetLayout)
	}
	return t.Format(wireLayout)
}

// parseWireDateTime reverses FormatDateTime, falling back to ParseDateTime
func parseWireDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{wireOffsetLayout, wireLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return ParseDateTime(s)
}

func inRange(digits string, lo, hi int) bool {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return false
	}
	return n >= lo && n <= hi
}

func invalidDateFormat(s string) error {
	return fmt.Errorf("%w %q, please use one of: %s",
		ErrInvalidDateFormat, s, strings.Join(AcceptedDateTimeFormats(), ", "))
}
