// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package schedule

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/diag"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/tz"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/mcsv"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/set"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

var ErrEmptySchedule = errors.New("no flight legs in the schedule")

// Row is a single record of the LOW file, keyed by column name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Input is the whole LOW file loaded into memory.
type Input struct {
	Name   string
	Header []string
	Rows   []Row
}

// OffsetLookup returns UTC offsets of airports, see tz.Table.
type OffsetLookup interface {
	Lookup(code string) (hours float64, ok bool)
}

// ReadRows loads all records of a LOW file. name is only used in error messages.
// Unknown columns are kept; a header without any of the RequiredColumns is rejected.
func ReadRows(name string, r io.Reader) (*Input, error) {
	reader := mcsv.NewReader(r)
	header, err := reader.Header()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	} else if header == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySchedule)
	}

	for _, column := range RequiredColumns {
		if !slices.Contains(header, column) {
			return nil, ErrMissingColumn{name, column}
		}
	}

	in := &Input{Name: name, Header: slices.Clone(header)}
	for record := range reader.Iter() {
		in.Rows = append(in.Rows, Row{Line: reader.Line(), Fields: maps.Clone(record)})
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return in, nil
}

// Scan returns all distinct, upper-cased airport codes (sorted) and the range
// of dates which could be parsed from the departure and arrival date columns.
// Unparsable dates are silently skipped; Build reports them.
func Scan(in *Input) (codes []string, period Period) {
	seen := make(set.Set[string])
	for _, row := range in.Rows {
		for _, column := range [...]string{ColDepartureAirport, ColArrivalAirport} {
			if code := strings.ToUpper(row.Fields[column]); code != "" {
				seen.Add(code)
			}
		}

		for _, column := range [...]string{ColDepartureDate, ColArrivalDate} {
			d, err := time2.ParseFlexible(row.Fields[column])
			if err != nil || d.IsZero() {
				continue
			}

			if period.First.IsZero() || d.Before(period.First) {
				period.First = d
			}
			if period.Last.IsZero() || d.After(period.Last) {
				period.Last = d
			}
		}
	}
	return set.Sorted(seen), period
}

// Build creates a Leg for every row of the input, attaches UTC offsets from
// the lookup table and groups the legs into rotations. Legs in each rotation
// are stably sorted by their sequence number.
func Build(in *Input, offsets OffsetLookup, reporter diag.Reporter) *Schedule {
	if reporter == nil {
		reporter = diag.Discard{}
	}

	s := New()
	for _, row := range in.Rows {
		s.Add(buildLeg(in.Name, row, offsets, reporter))
	}

	for _, shell := range s.Shells {
		slices.SortStableFunc(shell.Legs, func(a, b *Leg) int {
			return cmp.Compare(a.Sequence, b.Sequence)
		})
	}

	return s
}

func buildLeg(file string, row Row, offsets OffsetLookup, reporter diag.Reporter) *Leg {
	l := &Leg{
		Line:             row.Line,
		Airline:          valueOr(row, ColAirline, DefaultAirline),
		FlightNumber:     row.Fields[ColFlightNumber],
		Rotation:         row.Fields[ColLineNumber],
		Sequence:         DefaultSequence,
		ServiceType:      valueOr(row, ColServiceType, DefaultServiceType),
		DepartureAirport: row.Fields[ColDepartureAirport],
		ArrivalAirport:   row.Fields[ColArrivalAirport],
		DepartureTime:    time2.ZeroPadClock(row.Fields[ColDepartureTime]),
		ArrivalTime:      time2.ZeroPadClock(row.Fields[ColArrivalTime]),
		Equipment:        valueOr(row, ColEquipment, DefaultEquipment),
		Configuration:    row.Fields[ColConfiguration],
		ReasonCode:       valueOr(row, ColReasonCode, DefaultReasonCode),
		Row:              row.Fields,
	}

	if raw, ok := row.Fields[ColLegSequence]; ok {
		seq, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			reporter.Warn(
				diag.InvalidLegSequence,
				"error", ErrInvalidValue{file, ColLegSequence, row.Line, err},
				"value", raw,
			)
		} else {
			l.Sequence = seq
		}
	}

	l.Departure = parseDateTime(file, row, ColDepartureDate, l.DepartureTime, reporter)
	l.Arrival = parseDateTime(file, row, ColArrivalDate, l.ArrivalTime, reporter)

	if hours, ok := offsets.Lookup(l.DepartureAirport); ok {
		l.DepartureOffset = Offset{hours, true}
	}
	if hours, ok := offsets.Lookup(l.ArrivalAirport); ok {
		l.ArrivalOffset = Offset{hours, true}
	}

	return l
}

func parseDateTime(file string, row Row, column, clock string, reporter diag.Reporter) time.Time {
	raw := row.Fields[column]
	d, err := time2.ParseFlexible(raw)
	if err != nil {
		reporter.Warn(diag.UnparsableDate, "error", ErrInvalidValue{file, column, row.Line, err}, "value", raw)
		return time.Time{}
	} else if d.IsZero() {
		return time.Time{}
	}

	t, err := d.WithClock(clock)
	if err != nil {
		reporter.Warn(diag.InvalidClock, "error", ErrInvalidValue{file, column, row.Line, err}, "value", raw+" "+clock)
		return time.Time{}
	}
	return t
}

func valueOr(row Row, column, fallback string) string {
	if v, ok := row.Fields[column]; ok {
		return v
	}
	return fallback
}

// Options control how Read resolves UTC offsets of airports.
type Options struct {
	Provider tz.Provider
	Reporter diag.Reporter

	// Today is used as the reference date for UTC offsets if the file has
	// no valid dates. Defaults to the current date.
	Today time2.Date
}

// Read loads a LOW file into a Schedule: it reads all rows, resolves UTC
// offsets of all airports on the first flight date and builds the legs.
func Read(name string, r io.Reader, opts Options) (*Schedule, error) {
	if opts.Reporter == nil {
		opts.Reporter = diag.Discard{}
	}
	if opts.Provider == nil {
		opts.Provider = tz.Estimating{Reporter: opts.Reporter}
	}

	in, err := ReadRows(name, r)
	if err != nil {
		return nil, err
	} else if len(in.Rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySchedule)
	}

	codes, period := Scan(in)
	slog.Info("Scanned LOW file", "file", name, "rows", len(in.Rows), "airports", len(codes))

	ref := period.First
	if ref.IsZero() {
		ref = opts.Today
		if ref.IsZero() {
			ref = time2.DateOf(time.Now())
		}
		opts.Reporter.Warn(diag.NoDates, "file", name, "reference_date", ref)
	} else {
		slog.Info("Schedule period", "first", period.First.SSIM(), "last", period.Last.SSIM())
	}

	table := tz.BuildTable(opts.Provider, codes, ref, opts.Reporter)
	s := Build(in, table, opts.Reporter)
	s.Period = period
	s.Reference = ref

	slog.Info("Read flight legs", "legs", len(s.Legs), "rotations", len(s.Shells))
	for _, shell := range s.Shells {
		slog.Debug("Aircraft rotation", "line", shell.ID, "flights", len(shell.Legs))
	}
	return s, nil
}
