// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package ssim

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/schedule"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

// LineLength is the length of every SSIM line, excluding the newline.
const LineLength = 200

const (
	banner            = "1AIRLINE STANDARD SCHEDULE DATA SET"
	bannerSerial      = "001000001"
	headerSuffix      = "EN1140000002"
	dataSetSerial     = "0008"
	segmentDataID     = "997"
	configSuffix      = "VV10"
	trailerAirline    = "DL"
	trailerCheckRef   = "000999"
	trailerContinuous = "E"
)

// record accumulates fixed-width fields of a single SSIM line.
// Widths are counted in characters, not bytes.
type record struct {
	strings.Builder
}

// right writes s left-aligned in a field of n characters,
// keeping the leftmost characters if s is too long.
func (r *record) right(s string, n int) {
	r.WriteString(PadRight(s, n))
}

// left writes s right-aligned in a field of n characters,
// keeping the rightmost characters if s is too long.
func (r *record) left(s string, n int) {
	r.WriteString(PadLeft(s, n, ' '))
}

// zero is like left, but pads with zeros.
func (r *record) zero(s string, n int) {
	r.WriteString(PadLeft(s, n, '0'))
}

func (r *record) blank(n int) {
	r.WriteString(strings.Repeat(" ", n))
}

func (r *record) line() string {
	return PadRight(r.String(), LineLength)
}

func PadRight(s string, n int) string {
	runes := []rune(s)
	if len(runes) >= n {
		return string(runes[:n])
	}
	return s + strings.Repeat(" ", n-len(runes))
}

func PadLeft(s string, n int, fill rune) string {
	runes := []rune(s)
	if len(runes) >= n {
		return string(runes[len(runes)-n:])
	}
	return strings.Repeat(string(fill), n-len(runes)) + s
}

// Filler returns a line consisting only of zeros.
func Filler() string {
	return strings.Repeat("0", LineLength)
}

// FormatOffset formats a UTC offset in hours as ±HHMM (e.g. "-0500", "+0530").
// Unknown offsets are written as "0000".
func FormatOffset(o schedule.Offset) string {
	if !o.Valid {
		return "0000"
	}

	sign := '+'
	if o.Hours < 0 {
		sign = '-'
	}

	abs := math.Abs(o.Hours)
	hours := int(abs)
	minutes := int(math.RoundToEven((abs - float64(hours)) * 60))
	return fmt.Sprintf("%c%02d%02d", sign, hours, minutes)
}

// FormatDate formats a date-time as ddMONyy, or as 7 spaces if t is zero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "       "
	}
	return time2.DateOf(t).SSIM()
}

// Header1 returns the Type 1 (header) record.
func Header1() string {
	return PadRight(banner, LineLength-len(bannerSerial)) + bannerSerial
}

// Header2 returns the Type 2 (carrier) record.
func Header2(mode TimeMode, airline string, first, last, generated time.Time, creator string) string {
	var r record
	r.WriteString("2")
	r.WriteByte(byte(mode))
	r.right(airline, 3)
	r.blank(1)
	r.WriteString(dataSetSerial)
	r.blank(4)
	r.WriteString(FormatDate(first))
	r.WriteString(FormatDate(last))
	r.WriteString(FormatDate(generated))
	r.blank(36)
	r.WriteString(creator)
	return PadRight(r.String(), LineLength-len(headerSuffix)) + headerSuffix
}

// FlightRecord returns the Type 3 (flight leg) record of a step.
func FlightRecord(step chain.Step, serial int) string {
	l := step.Leg
	period := FormatDate(l.Departure)
	weekday := "1"
	if !l.Departure.IsZero() {
		weekday = strconv.Itoa(l.DepartureDate().ISOWeekday())
	}

	var onwardAirline, onwardFlight string
	if step.Onward != nil {
		onwardAirline = step.Onward.Row[schedule.ColAirline]
		onwardFlight = step.Onward.Row[schedule.ColFlightNumber]
	}

	var r record
	r.WriteString("3")
	r.blank(1) // operational suffix
	writeFlightDesignator(&r, l)
	r.right(period+period, 14) // period of operation
	r.left(weekday, 7)         // days of operation
	r.blank(1)                 // frequency rate
	r.right(l.DepartureAirport, 3)
	r.right(l.DepartureTime, 4) // passenger STD
	r.right(l.DepartureTime, 4) // aircraft STD
	r.right(FormatOffset(l.DepartureOffset), 5)
	r.blank(2) // departure terminal
	r.right(l.ArrivalAirport, 3)
	r.right(l.ArrivalTime, 4) // aircraft STA
	r.right(l.ArrivalTime, 4) // passenger STA
	r.right(FormatOffset(l.ArrivalOffset), 5)
	r.blank(2) // arrival terminal
	r.right(l.Equipment, 3)
	r.blank(23)
	r.blank(3) // aircraft owner
	r.blank(36)
	r.right(onwardAirline, 3)
	r.left(onwardFlight, 4)
	r.blank(1) // onward aircraft rotation layover
	r.blank(1) // onward operational suffix
	r.blank(26)
	r.right(l.Configuration+configSuffix, 20)
	r.blank(2) // date variation
	r.zero(strconv.Itoa(serial), 6)
	return r.line()
}

// SegmentRecord returns the Type 4 (segment data) record of a leg,
// carrying its reason code as data element 997.
func SegmentRecord(l *schedule.Leg, serial int) string {
	var r record
	r.WriteString("4")
	r.blank(1)
	writeFlightDesignator(&r, l)
	r.blank(13)
	r.blank(1)         // itinerary variation overflow
	r.WriteString("A") // board point indicator
	r.WriteString("B") // off point indicator
	r.WriteString(segmentDataID)
	r.right(l.DepartureAirport, 3)
	r.right(l.ArrivalAirport, 3)
	r.right(l.ReasonCode, 155)
	r.zero(strconv.Itoa(serial), 6)
	return r.line()
}

// TrailerRecord returns the Type 5 (trailer) record. The trailer always
// names DL, regardless of the airline of the carrier record.
func TrailerRecord(generated time.Time, serial int) string {
	var r record
	r.WriteString("5")
	r.blank(1)
	r.right(trailerAirline, 3)
	r.left(FormatDate(generated), 7)
	r.blank(175)
	r.WriteString(trailerCheckRef)
	r.WriteString(trailerContinuous)
	r.zero(strconv.Itoa(serial), 6)
	return r.line()
}

func writeFlightDesignator(r *record, l *schedule.Leg) {
	r.right(l.Airline, 3)
	r.left(l.FlightNumber, 4)
	r.zero(l.Rotation, 2) // itinerary variation
	r.zero(strconv.Itoa(l.Sequence), 2)
	r.right(l.ServiceType, 1)
}
