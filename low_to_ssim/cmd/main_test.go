// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/config"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/diag"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/ssim"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/tz"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

func TestOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Input = "low.csv"
	cfg.Traversal = "sequential"
	cfg.TimeZoneMode = "U"
	cfg.Timezone.Provider = config.ProviderEstimating
	cfg.Exports.JSON = "flights.json"

	opts, err := options(cfg, diag.Discard{})
	require.NoError(t, err)

	assert.Equal(t, chain.Sequential{}, opts.Strategy)
	assert.Equal(t, tz.Estimating{Reporter: diag.Discard{}}, opts.Provider)
	assert.Equal(t, ssim.UTC, opts.SSIM.TimeMode)
	assert.Equal(t, "DL", opts.SSIM.Airline)
	assert.Equal(t, "flights.json", opts.Exports.JSON)
}

func TestTimezoneProviderFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "airports.csv")
	require.NoError(t, os.WriteFile(path, []byte("iata,tz\nWAW,Europe/Warsaw\n"), 0o644))

	agg := diag.NewAggregator()
	p, err := timezoneProvider(config.TimezoneConfig{Provider: config.ProviderPrecise, AirportsFile: path}, agg)
	require.NoError(t, err)

	hours, ok, err := p.Offset("WAW", time2.Date{Y: 2025, M: 7, D: 1})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2.0, hours)

	hours, _, _ = p.Offset("JFK", time2.Date{Y: 2025, M: 7, D: 1})
	assert.Equal(t, -4.0, hours)
	assert.Equal(t, 1, agg.Count(diag.UnknownAirportZone))
}

func TestTimezoneProviderEmbedded(t *testing.T) {
	agg := diag.NewAggregator()
	p, err := timezoneProvider(config.Default().Timezone, agg)
	require.NoError(t, err)

	hours, ok, err := p.Offset("DEL", time2.Date{Y: 2025, M: 12, D: 20})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5.5, hours)
	assert.Empty(t, agg.Kinds())
}

func TestTimezoneProviderMissingFile(t *testing.T) {
	_, err := timezoneProvider(config.TimezoneConfig{
		Provider:     config.ProviderPrecise,
		AirportsFile: filepath.Join(t.TempDir(), "nope.csv"),
	}, diag.Discard{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
