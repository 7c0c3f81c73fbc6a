// Package parser normalizes the German validity text found on leaflet cards
// into calendar date intervals, and validates assembled leaflet records.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnrecognizedFormat is returned when no known date pattern matches.
	ErrUnrecognizedFormat = errors.New("unrecognized date format")
	// ErrInvalidCalendarDate is returned when a matched pattern carries an
	// impossible calendar date, or a range that ends before it starts.
	ErrInvalidCalendarDate = errors.New("invalid calendar date")
)

// OpenEnd is the sentinel end date for leaflets whose end is not yet
// published. The value is part of the output contract, keep it exact.
var OpenEnd = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Interval is a closed validity window. Start never exceeds End.
type Interval struct {
	Start time.Time
	End   time.Time
}

// OpenEnded reports whether the interval has the sentinel far-future end.
func (iv Interval) OpenEnded() bool {
	return iv.End.Equal(OpenEnd)
}

var (
	fullRangeRe  = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})\s*-\s*(\d{2})\.(\d{2})\.(\d{4})`)
	shortRangeRe = regexp.MustCompile(`(\d{2})\.(\d{2})\.\s*-\s*(\d{2})\.(\d{2})\.(\d{4})`)
	singleDateRe = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})`)

	weekdayRe = regexp.MustCompile(`(?i)\b(montag|dienstag|mittwoch|donnerstag|freitag|samstag|sonntag)\b`)
	markerRe  = regexp.MustCompile(`(?i)\b(von|ab|seit)\b`)

	dashFold = strings.NewReplacer("–", "-", "—", "-")
)

// ParseRange converts a raw validity string into an Interval.
//
// Recognized shapes, tried most specific first:
//
//	"02.02.2026 - 07.02.2026"   full range, both years explicit
//	"02.02. - 07.02.2026"       short range, start year taken from the end;
//	                            decremented once when the range wraps a year
//	                            boundary ("28.12. - 03.01.2026")
//	"von Mittwoch 01.10.2025"   single date after an introductory marker,
//	                            open-ended: End is the far-future sentinel
//
// referenceYear is the capture year; every shape above carries an explicit
// trailing year, so it is only reserved for year-less formats.
func ParseRange(raw string, referenceYear int) (Interval, error) {
	_ = referenceYear
	text := normalize(raw)

	if m := fullRangeRe.FindStringSubmatch(text); m != nil {
		start, err := calendarDate(m[3], m[2], m[1])
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
		}
		end, err := calendarDate(m[6], m[5], m[4])
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
		}
		if start.After(end) {
			return Interval{}, fmt.Errorf("%w: range ends before it starts: %q", ErrInvalidCalendarDate, raw)
		}
		return Interval{Start: start, End: end}, nil
	}

	if m := shortRangeRe.FindStringSubmatch(text); m != nil {
		end, err := calendarDate(m[5], m[4], m[3])
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
		}
		start, err := calendarDate(m[5], m[2], m[1])
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
		}
		if start.After(end) {
			// The source never states the start year for short ranges;
			// a start past the end means the range wraps a year boundary.
			start, err = calendarDate(strconv.Itoa(end.Year()-1), m[2], m[1])
			if err != nil || start.After(end) {
				return Interval{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
			}
		}
		return Interval{Start: start, End: end}, nil
	}

	if m := singleDateRe.FindAllStringSubmatch(text, -1); len(m) == 1 {
		start, err := calendarDate(m[0][3], m[0][2], m[0][1])
		if err != nil {
			return Interval{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
		}
		return Interval{Start: start, End: OpenEnd}, nil
	}

	return Interval{}, fmt.Errorf("%w: %q", ErrUnrecognizedFormat, raw)
}

// normalize trims the text, folds dash variants to a plain hyphen, and
// strips weekday names and the von/ab/seit markers.
func normalize(raw string) string {
	text := dashFold.Replace(strings.TrimSpace(raw))
	text = weekdayRe.ReplaceAllString(text, " ")
	text = markerRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// calendarDate builds a UTC date from decimal strings, rejecting values
// time.Date would silently normalize (32.01., 13th month, 31.04.).
func calendarDate(year, month, day string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, err
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, err
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, fmt.Errorf("no such date: %02d.%02d.%04d", d, m, y)
	}
	return t, nil
}
