// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package ssim writes schedules as IATA SSIM (Standard Schedules Information
// Manual, chapter 7) fixed-width files.
package ssim

import (
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/schedule"
)

// TimeMode selects whether the operational period in the carrier record
// is expressed in local or UTC time.
type TimeMode byte

const (
	Local TimeMode = 'L'
	UTC   TimeMode = 'U'
)

type ErrInvalidTimeMode string

func (e ErrInvalidTimeMode) Error() string {
	return fmt.Sprintf("invalid time zone mode: %q (expected \"L\" or \"U\")", string(e))
}

func ParseTimeMode(s string) (TimeMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "L":
		return Local, nil
	case "U":
		return UTC, nil
	default:
		return 0, ErrInvalidTimeMode(s)
	}
}

func (m TimeMode) String() string {
	if m == UTC {
		return "UTC"
	}
	return "Local"
}

const (
	DefaultAirline = "DL"
	DefaultCreator = "PCreated by Python LoW-to-SSIM Converter"
)

// Number of all-zero lines around the header, data and trailer blocks.
const (
	fillerAfterHeader  = 4
	fillerAfterCarrier = 4
	fillerAfterData    = 4
	fillerAfterTrailer = 14
)

// FirstSerial is the serial number of the first flight record.
const FirstSerial = 3

type Options struct {
	Airline  string
	Creator  string
	TimeMode TimeMode

	// Now returns the generation time of the file. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) setDefaults() {
	if o.Airline == "" {
		o.Airline = DefaultAirline
	}
	if o.Creator == "" {
		o.Creator = DefaultCreator
	}
	if o.TimeMode == 0 {
		o.TimeMode = Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Stats summarizes a written SSIM file.
type Stats struct {
	Legs    int
	Chains  int
	Records int

	// FinalSerial is the serial number of the trailer record.
	FinalSerial int

	FirstOperation time.Time
	LastOperation  time.Time
}

// OperationalPeriod returns the earliest and latest departure or arrival
// date-time of all legs. In UTC mode, date-times of airports with known
// offsets are converted to UTC first. ok is false if no leg has any date.
func OperationalPeriod(legs []*schedule.Leg, mode TimeMode) (first, last time.Time, ok bool) {
	consider := func(t time.Time, o schedule.Offset) {
		if t.IsZero() {
			return
		}
		if mode == UTC && o.Valid {
			t = t.Add(-time.Duration(o.Hours * float64(time.Hour)))
		}

		if !ok || t.Before(first) {
			first = t
		}
		if !ok || t.After(last) {
			last = t
		}
		ok = true
	}

	for _, l := range legs {
		consider(l.Departure, l.DepartureOffset)
		consider(l.Arrival, l.ArrivalOffset)
	}
	return
}

// Encode writes a complete SSIM file to w: header and carrier records,
// one flight and one segment record for every step, and the trailer.
func Encode(w io.Writer, s *schedule.Schedule, steps iter.Seq[chain.Step], opts Options) (Stats, error) {
	opts.setDefaults()
	now := opts.Now()

	var stats Stats
	var ok bool
	stats.FirstOperation, stats.LastOperation, ok = OperationalPeriod(s.Legs, opts.TimeMode)
	if !ok {
		stats.FirstOperation = now
		stats.LastOperation = now.Add(24 * time.Hour)
	}
	slog.Info(
		"Operation period",
		"mode", opts.TimeMode,
		"first", FormatDate(stats.FirstOperation),
		"last", FormatDate(stats.LastOperation),
	)

	e := encoder{w: w}
	e.line(Header1())
	e.filler(fillerAfterHeader)
	e.line(Header2(opts.TimeMode, opts.Airline, stats.FirstOperation, stats.LastOperation, now, opts.Creator))
	e.filler(fillerAfterCarrier)

	serial := FirstSerial
	for step := range steps {
		e.line(FlightRecord(step, serial))
		e.line(SegmentRecord(step.Leg, serial+1))
		serial += 2

		stats.Legs++
		if step.Onward == nil {
			stats.Chains++
		}
		if e.err != nil {
			break
		}
	}

	e.filler(fillerAfterData)
	e.line(TrailerRecord(now, serial))
	e.filler(fillerAfterTrailer)

	stats.Records = serial - FirstSerial
	stats.FinalSerial = serial
	return stats, e.err
}

// encoder writes newline-terminated lines, remembering the first error.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) line(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s+"\n")
}

func (e *encoder) filler(n int) {
	for range n {
		e.line(Filler())
	}
}
