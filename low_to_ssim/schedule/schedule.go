// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package schedule loads flight legs from LOW (line-of-work) CSV exports
// and groups them into aircraft rotations.
package schedule

import (
	"fmt"
	"time"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

// Columns of the LOW file.
const (
	ColDepartureAirport = "Dept Sta"
	ColArrivalAirport   = "Arvl Sta"
	ColDepartureDate    = "Dept Date"
	ColArrivalDate      = "Arvl Date"
	ColDepartureTime    = "Dept Time"
	ColArrivalTime      = "Arvl Time"
	ColLineNumber       = "Line Num"
	ColLegSequence      = "Leg Seq num"
	ColAirline          = "Aln"
	ColFlightNumber     = "Flt Num"
	ColServiceType      = "Service Type"
	ColEquipment        = "Equip"
	ColConfiguration    = "AC Config"
	ColReasonCode       = "REASON CODE"
)

// RequiredColumns must be present in the header of every LOW file.
var RequiredColumns = [...]string{ColDepartureAirport, ColArrivalAirport, ColLineNumber}

// Values used when a column is entirely absent from the file.
const (
	DefaultAirline     = "DL"
	DefaultServiceType = "J"
	DefaultEquipment   = "73J"
	DefaultReasonCode  = " "
	DefaultSequence    = 1
)

type ErrMissingColumn struct {
	File, Column string
}

func (e ErrMissingColumn) Error() string {
	return fmt.Sprintf("%s: missing required column %q", e.File, e.Column)
}

type ErrInvalidValue struct {
	File, Column string
	Line         int
	Reason       error
}

func (e ErrInvalidValue) Error() string {
	if e.Reason == nil {
		return fmt.Sprintf("%s:%d: invalid %s", e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d: invalid %s: %s", e.File, e.Line, e.Column, e.Reason)
}

func (e ErrInvalidValue) Unwrap() error {
	return e.Reason
}

// Offset is a UTC offset in hours, which might be unknown.
type Offset struct {
	Hours float64
	Valid bool
}

// Leg is a single flight, as described by one row of the LOW file.
type Leg struct {
	Line int

	Airline      string
	FlightNumber string
	Rotation     string
	Sequence     int
	ServiceType  string

	DepartureAirport string
	ArrivalAirport   string

	// DepartureTime and ArrivalTime are the zero-padded HHMM strings
	// from the file, kept even if the corresponding date is missing.
	DepartureTime string
	ArrivalTime   string

	// Departure and Arrival are naive local date-times;
	// the zero value means the date-time is unknown.
	Departure time.Time
	Arrival   time.Time

	DepartureOffset Offset
	ArrivalOffset   Offset

	Equipment     string
	Configuration string
	ReasonCode    string

	// Row holds all original columns of the leg.
	Row map[string]string
}

func (l *Leg) String() string {
	return fmt.Sprintf("%s%s %s-%s", l.Airline, l.FlightNumber, l.DepartureAirport, l.ArrivalAirport)
}

// DepartureDate returns the local date of departure, or the zero Date if unknown.
func (l *Leg) DepartureDate() time2.Date {
	if l.Departure.IsZero() {
		return time2.Date{}
	}
	return time2.DateOf(l.Departure)
}

// DepartureUTC returns the departure moment as an absolute time. ok is false
// if either the date-time or the offset of the departure airport is unknown.
func (l *Leg) DepartureUTC() (t time.Time, ok bool) {
	return toUTC(l.Departure, l.DepartureOffset)
}

// ArrivalUTC returns the arrival moment as an absolute time. ok is false
// if either the date-time or the offset of the arrival airport is unknown.
func (l *Leg) ArrivalUTC() (t time.Time, ok bool) {
	return toUTC(l.Arrival, l.ArrivalOffset)
}

func toUTC(local time.Time, o Offset) (time.Time, bool) {
	if local.IsZero() || !o.Valid {
		return time.Time{}, false
	}
	return time.Date(
		local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), 0, 0,
		time2.FixedZone(o.Hours),
	).UTC(), true
}

// Shell is an aircraft rotation: all legs sharing a line number,
// ordered by their sequence number.
type Shell struct {
	ID   string
	Legs []*Leg
}

func (s *Shell) First() *Leg {
	if len(s.Legs) == 0 {
		return nil
	}
	return s.Legs[0]
}

func (s *Shell) Last() *Leg {
	if len(s.Legs) == 0 {
		return nil
	}
	return s.Legs[len(s.Legs)-1]
}

// Period is the range of flight dates found in a LOW file.
type Period struct {
	First, Last time2.Date
}

func (p Period) IsZero() bool {
	return p.First.IsZero() && p.Last.IsZero()
}

// Schedule contains all legs of a LOW file (in file order) and the
// rotations they form (in order of first appearance).
type Schedule struct {
	Legs   []*Leg
	Shells []*Shell

	// Period of flight dates in the file and Reference date used for
	// computing UTC offsets (the first flight date).
	Period    Period
	Reference time2.Date

	shellIndex map[string]int
}

func New() *Schedule {
	return &Schedule{shellIndex: make(map[string]int)}
}

// Add appends a leg to the schedule and to its rotation, creating the rotation
// if this is its first leg. Legs in rotations are not sorted by Add.
func (s *Schedule) Add(l *Leg) {
	if s.shellIndex == nil {
		s.shellIndex = make(map[string]int)
	}

	s.Legs = append(s.Legs, l)

	idx, ok := s.shellIndex[l.Rotation]
	if !ok {
		idx = len(s.Shells)
		s.shellIndex[l.Rotation] = idx
		s.Shells = append(s.Shells, &Shell{ID: l.Rotation})
	}
	s.Shells[idx].Legs = append(s.Shells[idx].Legs, l)
}
