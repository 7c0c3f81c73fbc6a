package parser

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		year      int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "full range",
			raw:       "02.02.2026 - 07.02.2026",
			year:      2026,
			wantStart: date(2026, time.February, 2),
			wantEnd:   date(2026, time.February, 7),
		},
		{
			name:      "full range across years",
			raw:       "28.12.2025 - 03.01.2026",
			year:      2026,
			wantStart: date(2025, time.December, 28),
			wantEnd:   date(2026, time.January, 3),
		},
		{
			name:      "short range same year",
			raw:       "02.02. - 07.02.2026",
			year:      2026,
			wantStart: date(2026, time.February, 2),
			wantEnd:   date(2026, time.February, 7),
		},
		{
			name:      "short range cross-year wraparound",
			raw:       "28.12. - 03.01.2026",
			year:      2026,
			wantStart: date(2025, time.December, 28),
			wantEnd:   date(2026, time.January, 3),
		},
		{
			name:      "short range same day",
			raw:       "07.02. - 07.02.2026",
			year:      2026,
			wantStart: date(2026, time.February, 7),
			wantEnd:   date(2026, time.February, 7),
		},
		{
			name:      "open-ended with weekday marker",
			raw:       "von Mittwoch 01.10.2025",
			year:      2025,
			wantStart: date(2025, time.October, 1),
			wantEnd:   OpenEnd,
		},
		{
			name:      "open-ended ab prefix",
			raw:       "ab 01.10.2025",
			year:      2025,
			wantStart: date(2025, time.October, 1),
			wantEnd:   OpenEnd,
		},
		{
			name:      "open-ended with surrounding text",
			raw:       "  gültig seit Samstag 15.11.2025 ",
			year:      2025,
			wantStart: date(2025, time.November, 15),
			wantEnd:   OpenEnd,
		},
		{
			name:      "en-dash separator",
			raw:       "02.02. – 07.02.2026",
			year:      2026,
			wantStart: date(2026, time.February, 2),
			wantEnd:   date(2026, time.February, 7),
		},
		{
			name:      "no space around dash",
			raw:       "02.02.2026-07.02.2026",
			year:      2026,
			wantStart: date(2026, time.February, 2),
			wantEnd:   date(2026, time.February, 7),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := ParseRange(tt.raw, tt.year)
			if err != nil {
				t.Fatalf("ParseRange(%q) error: %v", tt.raw, err)
			}
			if !iv.Start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", iv.Start, tt.wantStart)
			}
			if !iv.End.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", iv.End, tt.wantEnd)
			}
			if iv.Start.After(iv.End) {
				t.Errorf("interval violates start <= end: %v > %v", iv.Start, iv.End)
			}
		})
	}
}

func TestParseRangeErrors(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "day 32", raw: "32.01.2026 - 05.02.2026", wantErr: ErrInvalidCalendarDate},
		{name: "month 13", raw: "01.13.2026 - 05.02.2027", wantErr: ErrInvalidCalendarDate},
		{name: "day 31 in 30-day month", raw: "31.04.2026 - 05.05.2026", wantErr: ErrInvalidCalendarDate},
		{name: "feb 29 off leap year", raw: "29.02.2025 - 05.03.2025", wantErr: ErrInvalidCalendarDate},
		{name: "short range bad start day", raw: "31.04. - 05.05.2026", wantErr: ErrInvalidCalendarDate},
		{name: "short range bad end", raw: "01.02. - 30.02.2026", wantErr: ErrInvalidCalendarDate},
		{name: "full range reversed", raw: "07.02.2026 - 02.02.2026", wantErr: ErrInvalidCalendarDate},
		{name: "open-ended bad date", raw: "ab 32.10.2025", wantErr: ErrInvalidCalendarDate},
		{name: "no date token", raw: "demnächst verfügbar", wantErr: ErrUnrecognizedFormat},
		{name: "empty", raw: "", wantErr: ErrUnrecognizedFormat},
		{name: "two dates without separator", raw: "01.10.2025 05.11.2025", wantErr: ErrUnrecognizedFormat},
		{name: "short date only", raw: "ab 01.10.", wantErr: ErrUnrecognizedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := ParseRange(tt.raw, 2026)
			if err == nil {
				t.Fatalf("ParseRange(%q) = %v, want error %v", tt.raw, iv, tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseRange(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestParseRangeReparseRoundTrip(t *testing.T) {
	iv, err := ParseRange("28.12. - 03.01.2026", 2026)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	rendered := fmt.Sprintf("%s - %s", iv.Start.Format("02.01.2006"), iv.End.Format("02.01.2006"))
	again, err := ParseRange(rendered, 2026)
	if err != nil {
		t.Fatalf("re-parse %q: %v", rendered, err)
	}
	if !again.Start.Equal(iv.Start) || !again.End.Equal(iv.End) {
		t.Errorf("re-parse of %q = %v..%v, want %v..%v", rendered, again.Start, again.End, iv.Start, iv.End)
	}
}

func TestIntervalOpenEnded(t *testing.T) {
	open := Interval{Start: date(2025, time.October, 1), End: OpenEnd}
	if !open.OpenEnded() {
		t.Errorf("interval ending at sentinel should be open-ended")
	}

	closed := Interval{Start: date(2025, time.October, 1), End: date(2025, time.October, 8)}
	if closed.OpenEnded() {
		t.Errorf("interval with published end should not be open-ended")
	}
}
