// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package feed exports converted flight legs as GTFS-Realtime TripUpdates
// and as JSON, for consumers which don't read SSIM.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/spf13/afero"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/schedule"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/fsutil"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

const (
	Binary        = false
	HumanReadable = true
)

type Container struct {
	Schema    string    `json:"$schema,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Flights   []*Flight `json:"flights,omitempty"`
}

// FromSteps creates a Flight for every step, in traversal order.
func FromSteps(steps iter.Seq[chain.Step], timestamp time.Time) *Container {
	c := &Container{Timestamp: timestamp}
	for step := range steps {
		c.Flights = append(c.Flights, NewFlight(step))
	}
	return c
}

func (c *Container) AsGTFS() *gtfs.FeedMessage {
	g := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: ptr("2.0"),
			Incrementality:      ptr(gtfs.FeedHeader_FULL_DATASET),
			Timestamp:           ptr(uint64(c.Timestamp.Unix())),
		},
	}

	g.Entity = make([]*gtfs.FeedEntity, 0, len(c.Flights))
	for _, f := range c.Flights {
		g.Entity = append(g.Entity, f.AsGTFS())
	}
	return g
}

func (c *Container) DumpJSON(w io.Writer, humanReadable bool) error {
	e := json.NewEncoder(w)
	if humanReadable {
		e.SetIndent("", "\t")
	}
	return e.Encode(c)
}

func (c *Container) DumpJSONFile(fs afero.Fs, path string, humanReadable bool) error {
	return fsutil.WriteFileAtomic(fs, path, func(w io.Writer) error {
		return c.DumpJSON(w, humanReadable)
	})
}

func (c *Container) DumpGTFS(w io.Writer, humanReadable bool) error {
	var data []byte
	var err error

	if humanReadable {
		data, err = prototext.Marshal(c.AsGTFS())
	} else {
		data, err = proto.Marshal(c.AsGTFS())
	}

	if err != nil {
		return err
	}

	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

func (c *Container) DumpGTFSFile(fs afero.Fs, path string, humanReadable bool) error {
	return fsutil.WriteFileAtomic(fs, path, func(w io.Writer) error {
		return c.DumpGTFS(w, humanReadable)
	})
}

// Flight is a single leg, with its board and off points as two stop times.
type Flight struct {
	ID string `json:"id"`
	TripSelector
	RouteID   string            `json:"route_id"`
	Rotation  string            `json:"rotation"`
	Sequence  int               `json:"leg_sequence"`
	Equipment string            `json:"equipment,omitempty"`
	StopTimes []*StopTimeUpdate `json:"stop_times"`
	Onward    *TripSelector     `json:"onward,omitempty"`
}

func NewFlight(step chain.Step) *Flight {
	l := step.Leg
	f := &Flight{
		ID:           TripID(l),
		TripSelector: selectorOf(l),
		RouteID:      RouteID(l),
		Rotation:     l.Rotation,
		Sequence:     l.Sequence,
		Equipment:    l.Equipment,
	}

	board := &StopTimeUpdate{Sequence: 0, StopID: strings.ToUpper(l.DepartureAirport)}
	board.Departure, board.Confirmed = l.DepartureUTC()

	off := &StopTimeUpdate{Sequence: 1, StopID: strings.ToUpper(l.ArrivalAirport)}
	off.Arrival, off.Confirmed = l.ArrivalUTC()

	f.StopTimes = []*StopTimeUpdate{board, off}

	if step.Onward != nil {
		onward := selectorOf(step.Onward)
		f.Onward = &onward
	}
	return f
}

func (f *Flight) AsGTFS() *gtfs.FeedEntity {
	g := new(gtfs.FeedEntity)
	g.Id = ptr(f.ID)
	g.TripUpdate = new(gtfs.TripUpdate)

	g.TripUpdate.Trip = f.TripSelector.AsGTFS()
	g.TripUpdate.Trip.RouteId = ptr(f.RouteID)
	g.TripUpdate.Trip.ScheduleRelationship = ptr(gtfs.TripDescriptor_SCHEDULED)

	if f.Equipment != "" {
		g.TripUpdate.Vehicle = &gtfs.VehicleDescriptor{Label: ptr(f.Equipment)}
	}

	g.TripUpdate.StopTimeUpdate = make([]*gtfs.TripUpdate_StopTimeUpdate, len(f.StopTimes))
	for i, st := range f.StopTimes {
		g.TripUpdate.StopTimeUpdate[i] = st.AsGTFS()
	}
	return g
}

// StopTimeUpdate describes a board or off point of a flight. Times are absolute;
// Confirmed is false if the UTC offset or date of the airport is unknown.
type StopTimeUpdate struct {
	Sequence  int       `json:"stop_sequence"`
	StopID    string    `json:"stop_id,omitempty"`
	Arrival   time.Time `json:"arrival,omitzero"`
	Departure time.Time `json:"departure,omitzero"`
	Confirmed bool      `json:"confirmed,omitempty"`
}

func (s *StopTimeUpdate) AsGTFS() *gtfs.TripUpdate_StopTimeUpdate {
	g := new(gtfs.TripUpdate_StopTimeUpdate)
	g.StopSequence = ptr(uint32(s.Sequence))
	if s.StopID != "" {
		g.StopId = ptr(s.StopID)
	}

	if !s.Confirmed {
		g.ScheduleRelationship = ptr(gtfs.TripUpdate_StopTimeUpdate_NO_DATA)
		return g
	}

	if !s.Arrival.IsZero() {
		g.Arrival = &gtfs.TripUpdate_StopTimeEvent{Time: ptr(s.Arrival.Unix())}
	}
	if !s.Departure.IsZero() {
		g.Departure = &gtfs.TripUpdate_StopTimeEvent{Time: ptr(s.Departure.Unix())}
	}
	return g
}

type TripSelector struct {
	TripID    string     `json:"trip_id"`
	StartDate time2.Date `json:"start_date,omitzero"`
}

func (s TripSelector) AsGTFS() *gtfs.TripDescriptor {
	d := &gtfs.TripDescriptor{TripId: ptr(s.TripID)}
	if !s.StartDate.IsZero() {
		d.StartDate = ptr(s.StartDate.StringSeparator(""))
	}
	return d
}

// TripID identifies a leg by its flight designator, departure date and
// position in the aircraft rotation, e.g. "DL100_20251220_1_1".
func TripID(l *schedule.Leg) string {
	date := "00000000"
	if d := l.DepartureDate(); !d.IsZero() {
		date = d.StringSeparator("")
	}
	return fmt.Sprintf("%s_%s_%s_%s", RouteID(l), date, strings.TrimSpace(l.Rotation), strconv.Itoa(l.Sequence))
}

// RouteID is the flight designator of a leg, e.g. "DL100".
func RouteID(l *schedule.Leg) string {
	return strings.TrimSpace(l.Airline) + strings.TrimSpace(l.FlightNumber)
}

func selectorOf(l *schedule.Leg) TripSelector {
	return TripSelector{TripID: TripID(l), StartDate: l.DepartureDate()}
}

func ptr[T any](thing T) *T {
	return &thing
}
