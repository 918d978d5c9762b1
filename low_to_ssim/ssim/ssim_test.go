// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package ssim

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/schedule"
)

var generated = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return generated }

// field returns the characters at 1-indexed, inclusive positions of a record.
func field(line string, from, to int) string {
	return line[from-1 : to]
}

func sampleLeg() *schedule.Leg {
	return &schedule.Leg{
		Airline:          "DL",
		FlightNumber:     "100",
		Rotation:         "1",
		Sequence:         1,
		ServiceType:      "J",
		DepartureAirport: "JFK",
		ArrivalAirport:   "ATL",
		DepartureTime:    "0800",
		ArrivalTime:      "1045",
		Departure:        time.Date(2025, 12, 20, 8, 0, 0, 0, time.UTC),
		Arrival:          time.Date(2025, 12, 20, 10, 45, 0, 0, time.UTC),
		DepartureOffset:  schedule.Offset{Hours: -5, Valid: true},
		ArrivalOffset:    schedule.Offset{Hours: -5, Valid: true},
		Equipment:        "73J",
		Configuration:    "F16Y144",
		ReasonCode:       "CRWB",
		Row:              map[string]string{"Aln": "DL", "Flt Num": "100"},
	}
}

func TestPad(t *testing.T) {
	assert.Equal(t, "AB ", PadRight("AB", 3))
	assert.Equal(t, "ABC", PadRight("ABCD", 3))
	assert.Equal(t, "  12", PadLeft("12", 4, ' '))
	assert.Equal(t, "0012", PadLeft("12", 4, '0'))
	assert.Equal(t, "34", PadLeft("1234", 2, '0'))
	assert.Equal(t, "00", PadLeft("", 2, '0'))
	assert.Equal(t, "ŁÓD", PadRight("ŁÓDŹ", 3))
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		offset schedule.Offset
		want   string
	}{
		{schedule.Offset{Hours: -5, Valid: true}, "-0500"},
		{schedule.Offset{Hours: 5.5, Valid: true}, "+0530"},
		{schedule.Offset{Hours: 5.75, Valid: true}, "+0545"},
		{schedule.Offset{Hours: -3.5, Valid: true}, "-0330"},
		{schedule.Offset{Hours: 0, Valid: true}, "+0000"},
		{schedule.Offset{}, "0000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatOffset(tt.offset))
	}
}

func TestHeader1(t *testing.T) {
	h := Header1()
	assert.Len(t, h, LineLength)
	assert.True(t, strings.HasPrefix(h, "1AIRLINE STANDARD SCHEDULE DATA SET "))
	assert.Equal(t, "001000001", field(h, 192, 200))
}

func TestHeader2(t *testing.T) {
	h := Header2(
		Local,
		"DL",
		time.Date(2025, 12, 20, 8, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 21, 22, 0, 0, 0, time.UTC),
		generated,
		DefaultCreator,
	)

	want := "2LDL  0008    20DEC2521DEC2516OCT26" + strings.Repeat(" ", 36) + DefaultCreator
	want += strings.Repeat(" ", 188-len(want)) + "EN1140000002"
	assert.Equal(t, want, h)
	assert.Len(t, h, LineLength)
}

func TestFlightRecord(t *testing.T) {
	onward := sampleLeg()
	onward.Row = map[string]string{"Aln": "DL", "Flt Num": "200"}

	rec := FlightRecord(chain.Step{Leg: sampleLeg(), Onward: onward}, 3)

	want := "3 DL  1000101J20DEC2520DEC25      6 JFK08000800-0500  ATL10451045-0500  73J" +
		strings.Repeat(" ", 23+3+36) +
		"DL  200  " +
		strings.Repeat(" ", 26) +
		"F16Y144VV10         " +
		"  " +
		"000003"
	assert.Equal(t, want, rec)
	assert.Len(t, rec, LineLength)

	assert.Equal(t, "JFK", field(rec, 37, 39))
	assert.Equal(t, "-0500", field(rec, 48, 52))
	assert.Equal(t, "DL ", field(rec, 138, 140))
	assert.Equal(t, " 200", field(rec, 141, 144))
}

func TestFlightRecordWithoutOnwardAndOffsets(t *testing.T) {
	l := sampleLeg()
	l.DepartureOffset = schedule.Offset{}
	l.Rotation = "123"
	l.Sequence = 12
	l.FlightNumber = "12345"

	rec := FlightRecord(chain.Step{Leg: l}, 17)
	assert.Len(t, rec, LineLength)
	assert.Equal(t, "2345", field(rec, 6, 9))
	assert.Equal(t, "23", field(rec, 10, 11))
	assert.Equal(t, "12", field(rec, 12, 13))
	assert.Equal(t, "0000 ", field(rec, 48, 52))
	assert.Equal(t, strings.Repeat(" ", 9), field(rec, 138, 146))
	assert.Equal(t, "000017", field(rec, 195, 200))
}

func TestFlightRecordNotADate(t *testing.T) {
	l := sampleLeg()
	l.Departure = time.Time{}

	rec := FlightRecord(chain.Step{Leg: l}, 3)
	assert.Len(t, rec, LineLength)
	assert.Equal(t, strings.Repeat(" ", 14), field(rec, 15, 28))
	assert.Equal(t, "      1", field(rec, 29, 35))
	assert.Equal(t, "0800", field(rec, 40, 43))
	assert.Equal(t, "0800", field(rec, 44, 47))
}

func TestSegmentRecord(t *testing.T) {
	rec := SegmentRecord(sampleLeg(), 4)

	want := "4 DL  1000101J" + strings.Repeat(" ", 14) + "AB997JFKATL" + "CRWB" + strings.Repeat(" ", 151) + "000004"
	assert.Equal(t, want, rec)
	assert.Len(t, rec, LineLength)
}

func TestTrailerRecord(t *testing.T) {
	rec := TrailerRecord(generated, 7)
	assert.Equal(t, "5 DL 16OCT26"+strings.Repeat(" ", 175)+"000999E000007", rec)
}

func TestOperationalPeriod(t *testing.T) {
	a := sampleLeg()
	b := sampleLeg()
	b.Departure = time.Date(2025, 12, 21, 23, 0, 0, 0, time.UTC)
	b.Arrival = time.Time{}

	first, last, ok := OperationalPeriod([]*schedule.Leg{a, b}, Local)
	require.True(t, ok)
	assert.Equal(t, a.Departure, first)
	assert.Equal(t, b.Departure, last)

	first, last, ok = OperationalPeriod([]*schedule.Leg{a, b}, UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 12, 20, 13, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2025, 12, 22, 4, 0, 0, 0, time.UTC), last)

	_, _, ok = OperationalPeriod([]*schedule.Leg{{}}, Local)
	assert.False(t, ok)
}

func TestParseTimeMode(t *testing.T) {
	m, err := ParseTimeMode("u")
	require.NoError(t, err)
	assert.Equal(t, UTC, m)

	m, err = ParseTimeMode("")
	require.NoError(t, err)
	assert.Equal(t, Local, m)

	_, err = ParseTimeMode("X")
	assert.Equal(t, ErrInvalidTimeMode("X"), err)
}

func twoRotations() *schedule.Schedule {
	s := schedule.New()

	a := sampleLeg()
	s.Add(a)

	b := sampleLeg()
	b.FlightNumber = "200"
	b.Rotation = "2"
	b.DepartureAirport, b.ArrivalAirport = "ATL", "JFK"
	b.Departure = time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC)
	b.Arrival = time.Date(2025, 12, 21, 14, 30, 0, 0, time.UTC)
	b.Row = map[string]string{"Aln": "DL", "Flt Num": "200"}
	s.Add(b)

	c := sampleLeg()
	c.FlightNumber = "300"
	c.Rotation = "3"
	c.DepartureAirport, c.ArrivalAirport = "LAX", "SEA"
	c.Departure = time.Time{}
	c.Row = map[string]string{"Aln": "DL", "Flt Num": "300"}
	s.Add(c)

	return s
}

func TestEncode(t *testing.T) {
	s := twoRotations()
	var buf bytes.Buffer

	stats, err := Encode(&buf, s, chain.Chained{}.Steps(s), Options{Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, Stats{
		Legs:           3,
		Chains:         2,
		Records:        6,
		FinalSerial:    9,
		FirstOperation: time.Date(2025, 12, 20, 8, 0, 0, 0, time.UTC),
		LastOperation:  time.Date(2025, 12, 21, 14, 30, 0, 0, time.UTC),
	}, stats)

	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\n"))
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 1+4+1+4+6+4+1+14)

	for i, line := range lines {
		assert.Len(t, line, LineLength, "line %d", i+1)
	}

	assert.Equal(t, Header1(), lines[0])
	for _, i := range []int{1, 2, 3, 4, 6, 7, 8, 9, 16, 17, 18, 19} {
		assert.Equal(t, Filler(), lines[i], "line %d", i+1)
	}
	for _, line := range lines[21:] {
		assert.Equal(t, Filler(), line)
	}

	assert.Equal(t, "20DEC2521DEC2516OCT26", field(lines[5], 15, 35))

	// Record serials are contiguous, starting from 3 and ending at the trailer
	for i, line := range lines[10:16] {
		assert.Equal(t, PadLeft(strconv.Itoa(FirstSerial+i), 6, '0'), field(line, 195, 200))
	}
	assert.Equal(t, byte('5'), lines[20][0])
	assert.Equal(t, "000009", field(lines[20], 195, 200))

	// JFK-ATL leg continues with the ATL-JFK rotation
	assert.Equal(t, "DL  200", field(lines[10], 138, 144))
	assert.Equal(t, "       ", field(lines[12], 138, 144))
	assert.Equal(t, "       ", field(lines[14], 138, 144))
}

func TestEncodeSequential(t *testing.T) {
	s := twoRotations()
	var buf bytes.Buffer

	stats, err := Encode(&buf, s, chain.Sequential{}.Steps(s), Options{Now: fixedNow, Airline: "AA"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Chains)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "2LAA ", field(lines[5], 1, 5))
	assert.Equal(t, "       ", field(lines[10], 138, 144))
	assert.Equal(t, "5 DL ", field(lines[20], 1, 5))
}

func TestEncodeDeterministic(t *testing.T) {
	s := twoRotations()
	var a, b bytes.Buffer

	_, err := Encode(&a, s, chain.Chained{}.Steps(s), Options{Now: fixedNow})
	require.NoError(t, err)
	_, err = Encode(&b, s, chain.Chained{}.Steps(s), Options{Now: fixedNow})
	require.NoError(t, err)

	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestEncodeNoDates(t *testing.T) {
	s := schedule.New()
	l := sampleLeg()
	l.Departure, l.Arrival = time.Time{}, time.Time{}
	s.Add(l)

	var buf bytes.Buffer
	stats, err := Encode(&buf, s, chain.Sequential{}.Steps(s), Options{Now: fixedNow, TimeMode: UTC})
	require.NoError(t, err)

	assert.Equal(t, generated, stats.FirstOperation)
	assert.Equal(t, generated.Add(24*time.Hour), stats.LastOperation)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "2U", field(lines[5], 1, 2))
	assert.Equal(t, "16OCT2617OCT2616OCT26", field(lines[5], 15, 35))
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n == 0 {
		return 0, assert.AnError
	}
	w.n--
	return len(p), nil
}

func TestEncodeWriteError(t *testing.T) {
	s := twoRotations()
	_, err := Encode(&failingWriter{n: 3}, s, chain.Chained{}.Steps(s), Options{Now: fixedNow})
	assert.ErrorIs(t, err, assert.AnError)
}
