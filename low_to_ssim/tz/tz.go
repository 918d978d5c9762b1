// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package tz resolves UTC offsets of airports on a specific date.
package tz

import (
	"log/slog"
	"strings"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/diag"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

// Provider returns the UTC offset (in hours) observed at an airport on the
// reference date. ok is false if the provider knows nothing about the airport.
type Provider interface {
	Offset(code string, ref time2.Date) (hours float64, ok bool, err error)
}

// Fallback asks the Primary provider first, and if it doesn't know the airport
// or fails, uses the Secondary provider instead.
type Fallback struct {
	Primary   Provider
	Secondary Provider
	Reporter  diag.Reporter
}

func (f Fallback) Offset(code string, ref time2.Date) (float64, bool, error) {
	hours, ok, err := f.Primary.Offset(code, ref)
	if err == nil && ok {
		return hours, true, nil
	}

	if err != nil {
		f.warn(diag.TimezoneLookupFailed, "airport", code, "error", err)
	} else {
		f.warn(diag.UnknownAirportZone, "airport", code)
	}
	return f.Secondary.Offset(code, ref)
}

func (f Fallback) warn(kind string, args ...any) {
	if f.Reporter != nil {
		f.Reporter.Warn(kind, args...)
	}
}

// Table maps upper-case airport codes to their UTC offsets, in hours.
type Table map[string]float64

// Lookup returns the offset of the airport, matching the code case-insensitively.
func (t Table) Lookup(code string) (float64, bool) {
	hours, ok := t[strings.ToUpper(code)]
	return hours, ok
}

// BuildTable resolves every code exactly once against the reference date.
// Codes unknown to the provider are left out of the table; provider failures
// are reported and also leave the code out.
func BuildTable(p Provider, codes []string, ref time2.Date, reporter diag.Reporter) Table {
	if reporter == nil {
		reporter = diag.Discard{}
	}
	slog.Info("Calculating airport UTC offsets", "reference_date", ref, "airports", len(codes))

	t := make(Table, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(code)
		if code == "" {
			continue
		} else if _, done := t[code]; done {
			continue
		}

		hours, ok, err := p.Offset(code, ref)
		if err != nil {
			reporter.Warn(diag.TimezoneLookupFailed, "airport", code, "error", err)
			continue
		} else if !ok {
			reporter.Warn(diag.UnknownAirportZone, "airport", code)
			continue
		}

		slog.Debug("Airport UTC offset", "airport", code, "offset", hours)
		t[code] = hours
	}
	return t
}
