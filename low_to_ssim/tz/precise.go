// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package tz

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/backoff"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/http2"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/mcsv"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

//go:embed airports.csv
var embeddedAirports []byte

// Dataset maps upper-case IATA airport codes to IANA time zone names.
type Dataset map[string]string

// Precise computes offsets from the IANA time zone database, using a dataset
// to find the zone of each airport. Offsets are taken at local midnight of the
// reference date, so daylight saving time follows the schedule, not the clock.
type Precise struct {
	Zones Dataset
}

func NewPrecise(zones Dataset) Precise {
	return Precise{Zones: zones}
}

func (p Precise) Offset(code string, ref time2.Date) (float64, bool, error) {
	zone := p.Zones[strings.ToUpper(code)]
	if zone == "" {
		return 0, false, nil
	}

	loc, err := time2.LoadZone(zone)
	if err != nil {
		return 0, false, err
	}

	hours, dst := time2.OffsetAt(loc, ref)
	slog.Debug("Resolved airport zone", "airport", code, "zone", zone, "offset", hours, "dst", dst)
	return hours, true, nil
}

// LoadDataset reads a CSV file with at least the "iata" and "tz" columns.
// Rows without either value are skipped.
func LoadDataset(r io.Reader) (Dataset, error) {
	reader := mcsv.NewReader(r)
	header, err := reader.Header()
	if err != nil {
		return nil, fmt.Errorf("airports: %w", err)
	}
	for _, required := range [...]string{"iata", "tz"} {
		if !slices.Contains(header, required) {
			return nil, fmt.Errorf("airports: missing %q column", required)
		}
	}

	d := make(Dataset)
	for row := range reader.Iter() {
		code := strings.ToUpper(strings.TrimSpace(row["iata"]))
		zone := strings.TrimSpace(row["tz"])
		if code != "" && zone != "" {
			d[code] = zone
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("airports: %w", err)
	}
	return d, nil
}

// EmbeddedDataset returns the airport dataset compiled into the program.
func EmbeddedDataset() Dataset {
	d, err := LoadDataset(bytes.NewReader(embeddedAirports))
	if err != nil {
		panic(fmt.Errorf("embedded airport dataset: %w", err))
	}
	return d
}

// LoadDatasetFile reads an airport dataset from the local file system.
func LoadDatasetFile(path string) (Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d, err := LoadDataset(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// FetchDataset downloads an airport dataset, retrying temporary HTTP failures
// (with exponential backoff) up to the given number of attempts.
func FetchDataset(ctx context.Context, client *http.Client, url string, attempts int, period time.Duration) (Dataset, error) {
	slog.Info("Fetching airport dataset", "url", url)

	var content []byte
	b := &backoff.Backoff{Period: period, MaxBackoffExponent: 4}
	err := backoff.Retry(ctx, b, attempts, http2.IsTemporary, func(ctx context.Context) (err error) {
		content, err = http2.GetBytes(ctx, client, url)
		if err != nil {
			slog.Warn("Failed to fetch airport dataset", "url", url, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	return LoadDataset(bytes.NewReader(content))
}
