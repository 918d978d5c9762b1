// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package tz

import (
	"strings"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/diag"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/set"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

var (
	easternAirports = set.Of(
		"ATL", "DTW", "CHA", "CLE", "CVG", "PIT", "RIC", "ORF", "BWI",
		"BDL", "PHL", "BUF", "JFK", "LGA", "EWR", "BOS", "MIA", "FLL",
		"TPA", "MCO", "TLH", "CHS", "GRR", "RSW", "SRQ",
	)
	centralAirports = set.Of(
		"MEM", "MSP", "ORD", "DFW", "MCI", "STL", "MSY", "IAH", "HOU",
		"SAT", "AUS", "OKC", "TUL", "LIT", "BHM", "MOB", "HSV",
	)
	mountainAirports = set.Of("DEN", "PHX", "SLC", "ABQ", "BOI", "BIL", "GJT", "COS")
	pacificAirports  = set.Of("LAX", "SFO", "SEA", "LAS", "SAN", "PDX", "SMF", "OAK", "SJC")
)

// Estimating guesses the offset of US airports from a static list of codes
// per time zone. Daylight saving time is assumed to be in effect from March
// through October. Airports outside the list are treated as Eastern,
// which is reported through the (optional) Reporter.
type Estimating struct {
	Reporter diag.Reporter
}

func (e Estimating) Offset(code string, ref time2.Date) (float64, bool, error) {
	if e.Reporter != nil && !IsEstimated(code) {
		e.Reporter.Warn(diag.AssumedEastern, "airport", code)
	}
	return Estimate(code, ref), true, nil
}

// Estimate returns the estimated UTC offset of a US airport on the given date.
func Estimate(code string, ref time2.Date) float64 {
	code = strings.ToUpper(code)
	dst := ref.M >= 3 && ref.M <= 10

	switch {
	case code == "PHX":
		return -7
	case centralAirports.Has(code):
		return pick(dst, -5, -6)
	case mountainAirports.Has(code):
		return pick(dst, -6, -7)
	case pacificAirports.Has(code):
		return pick(dst, -7, -8)
	default:
		return pick(dst, -4, -5)
	}
}

// IsEstimated returns true if the code belongs to one of the built-in US zone lists.
func IsEstimated(code string) bool {
	code = strings.ToUpper(code)
	return easternAirports.Has(code) || centralAirports.Has(code) || mountainAirports.Has(code) || pacificAirports.Has(code)
}

func pick(dst bool, summer, winter float64) float64 {
	if dst {
		return summer
	}
	return winter
}
