// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var isoDateRegex = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})$`)

// flexibleLayouts are tried in order by ParseFlexible. Single-digit day and month
// components are accepted, as are month abbreviations in any letter case.
var flexibleLayouts = []string{
	"2Jan06",   // 20Dec25
	"1/2/2006", // 10/09/2025
	"1/2/06",   // 10/09/25
	"2-Jan-06", // 20-Dec-25
	"2/1/2006", // 20/12/2025
	"2006-1-2", // 2025-12-20
	"2Jan2006", // 20Dec2025
	"1-2-2006", // 10-09-2025
}

type ErrInvalidDate string

func (e ErrInvalidDate) Error() string {
	return fmt.Sprintf("invalid date string: %q", string(e))
}

type ErrInvalidClock string

func (e ErrInvalidClock) Error() string {
	return fmt.Sprintf("invalid HHMM time: %q", string(e))
}

// Date is a calendar date without any time-of-day or zone information.
// The zero value represents a missing date.
type Date struct {
	Y    uint16
	M, D uint8
}

func DateOf(t time.Time) Date {
	return Date{uint16(t.Year()), uint8(t.Month()), uint8(t.Day())}
}

// ParseFlexible parses a date in any of the formats found in schedule exports.
// An empty (or all-whitespace) string is not an error; it yields the zero Date.
func ParseFlexible(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	for _, layout := range flexibleLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, ErrInvalidDate(s)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) IsValid() bool {
	return d.M >= 1 && d.M <= 12 && d.D >= 1 && d.D <= DaysInMonth(d.Y, d.M)
}

func (d Date) String() string {
	return d.StringSeparator("-")
}

func (d Date) StringSeparator(sep string) string {
	return fmt.Sprintf("%04d%s%02d%s%02d", d.Y, sep, d.M, sep, d.D)
}

// SSIM formats the date as used in SSIM records, e.g. "20DEC25".
func (d Date) SSIM() string {
	return strings.ToUpper(d.Time().Format("02Jan06"))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	s := string(text)
	m := isoDateRegex.FindStringSubmatch(s)
	if m == nil {
		return ErrInvalidDate(s)
	}

	year, _ := strconv.ParseUint(m[1], 10, 16)
	month, _ := strconv.ParseUint(m[2], 10, 8)
	day, _ := strconv.ParseUint(m[3], 10, 8)

	parsed := Date{uint16(year), uint8(month), uint8(day)}
	if !parsed.IsValid() {
		return ErrInvalidDate(s)
	}
	*d = parsed
	return nil
}

// Time returns midnight of the date, as a naive wall-clock time in UTC.
func (d Date) Time() time.Time {
	return d.In(time.UTC)
}

// In returns local midnight of the date in the provided location.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(int(d.Y), time.Month(d.M), int(d.D), 0, 0, 0, 0, loc)
}

// WithClock combines the date with a zero-padded "HHMM" string into a naive
// wall-clock time (stored in UTC). Characters past the hour are the minutes,
// so "12345" is rejected as minute 345.
func (d Date) WithClock(hhmm string) (time.Time, error) {
	if len(hhmm) < 3 {
		return time.Time{}, ErrInvalidClock(hhmm)
	}

	hour, err := strconv.Atoi(hhmm[:2])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, ErrInvalidClock(hhmm)
	}

	minute, err := strconv.Atoi(hhmm[2:])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, ErrInvalidClock(hhmm)
	}

	return time.Date(int(d.Y), time.Month(d.M), int(d.D), hour, minute, 0, 0, time.UTC), nil
}

func (d Date) Weekday() time.Weekday {
	return time.Date(int(d.Y), time.Month(d.M), int(d.D), 12, 0, 0, 0, time.UTC).Weekday()
}

// ISOWeekday returns the day of week numbered from 1 (Monday) to 7 (Sunday).
func (d Date) ISOWeekday() int {
	if wd := d.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}

func (d Date) After(o Date) bool {
	return d.Y > o.Y || (d.Y == o.Y && d.M > o.M) || (d.Y == o.Y && d.M == o.M && d.D > o.D)
}

func (d Date) Before(o Date) bool {
	return d.Y < o.Y || (d.Y == o.Y && d.M < o.M) || (d.Y == o.Y && d.M == o.M && d.D < o.D)
}

// ZeroPadClock left-pads a time-of-day string with zeros to 4 characters.
func ZeroPadClock(s string) string {
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}

func IsLeap(y uint16) bool {
	return y%4 == 0 && (y%100 != 0 || y%400 == 0)
}

func DaysInMonth(y uint16, m uint8) uint8 {
	switch m {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31

	case 4, 6, 9, 11:
		return 30

	case 2:
		if IsLeap(y) {
			return 29
		}
		return 28

	default:
		return 0
	}
}
