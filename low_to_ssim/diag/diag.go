// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package diag carries recoverable conversion problems (unparsable dates,
// unknown airports and the like) from the pipeline to the user.
package diag

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/time/rate"
)

// Warning kinds reported by the conversion pipeline.
const (
	UnparsableDate       = "unparsable_date"
	InvalidClock         = "invalid_clock"
	InvalidLegSequence   = "invalid_leg_sequence"
	NoDates              = "no_dates"
	UnknownAirportZone   = "tz_unknown_airport"
	AssumedEastern       = "tz_assumed_eastern"
	TimezoneLookupFailed = "tz_lookup_failed"
)

// Reporter receives warnings about recoverable problems.
// The args are slog-style key-value pairs describing the context.
type Reporter interface {
	Warn(kind string, args ...any)
}

// Discard ignores all warnings.
type Discard struct{}

func (Discard) Warn(string, ...any) {}

// Log reports every warning immediately through a slog.Logger
// (or the default logger, if nil).
type Log struct {
	Logger *slog.Logger
}

func (l Log) Warn(kind string, args ...any) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(describe(kind), append([]any{"kind", kind}, args...)...)
}

const maxExamples = 3

type warningInfo struct {
	count    int
	examples []string
	sample   rate.Sometimes
}

// Aggregator collects warnings and reports one summary per kind,
// instead of flooding the log with one line per leg.
type Aggregator struct {
	warnings map[string]*warningInfo
	order    []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{warnings: make(map[string]*warningInfo)}
}

func (a *Aggregator) Warn(kind string, args ...any) {
	info := a.warnings[kind]
	if info == nil {
		info = &warningInfo{
			examples: make([]string, 0, maxExamples),
			sample:   rate.Sometimes{First: maxExamples},
		}
		a.warnings[kind] = info
		a.order = append(a.order, kind)
	}

	info.count++
	info.sample.Do(func() { info.examples = append(info.examples, formatArgs(args)) })
}

// Count returns the number of warnings of the given kind.
func (a *Aggregator) Count(kind string) int {
	if info := a.warnings[kind]; info != nil {
		return info.count
	}
	return 0
}

// Kinds returns all reported kinds, in order of first occurrence.
func (a *Aggregator) Kinds() []string {
	return slices.Clone(a.order)
}

// LogAll writes one summary line per reported kind.
func (a *Aggregator) LogAll(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, kind := range a.order {
		info := a.warnings[kind]
		logger.Warn(
			describe(kind),
			"kind", kind,
			"occurrences", info.count,
			"examples", strings.Join(info.examples, "; "),
		)
	}
}

func describe(kind string) string {
	switch kind {
	case UnparsableDate:
		return "Could not parse date, treating it as absent"
	case InvalidClock:
		return "Could not combine date and time, treating date-time as absent"
	case InvalidLegSequence:
		return "Invalid leg sequence number, assuming 1"
	case NoDates:
		return "No valid dates found in the schedule, using default range"
	case UnknownAirportZone:
		return "No timezone data for airport, using estimated offset"
	case AssumedEastern:
		return "Airport not in the estimated US zone lists, assuming US Eastern time"
	case TimezoneLookupFailed:
		return "Timezone lookup failed, using estimated offset"
	default:
		return "Conversion warning"
	}
}

func formatArgs(args []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(args); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
	}
	return b.String()
}
