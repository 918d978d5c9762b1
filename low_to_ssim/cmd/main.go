// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	_ "time/tzdata"

	"github.com/spf13/afero"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/config"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/convert"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/diag"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/logging"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/ssim"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/tz"
)

var (
	flagConfig     = flag.String("config", "", "path to the YAML config file")
	flagInput      = flag.String("input", "", "path to the LOW file")
	flagOutput     = flag.String("output", "", "path to the SSIM file (default: output_<input> next to the input)")
	flagAirline    = flag.String("airline", "", "airline code of the carrier record")
	flagUTC        = flag.Bool("utc", false, "express the operational period in UTC")
	flagSequential = flag.Bool("sequential", false, "write aircraft rotations in file order, without chaining them")
	flagEstimate   = flag.Bool("estimate", false, "only use estimated US timezone offsets")
	flagGTFSRT     = flag.String("gtfsrt", "", "also export legs as GTFS-Realtime TripUpdates to this path")
	flagJSON       = flag.String("json", "", "also export legs as JSON to this path")
	flagReadable   = flag.Bool("readable", false, "dump exports in human-readable format")
	flagVerbose    = flag.Bool("verbose", false, "show DEBUG logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*flagConfig, applyFlags)
	if err != nil {
		log.Fatal(err)
	}

	logs, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatal(err)
	}
	defer logs.Close()

	warnings := diag.NewAggregator()
	opts, err := options(cfg, warnings)
	if err != nil {
		log.Fatal(err)
	}

	output := cfg.OutputPath()
	slog.Info("Converting LOW file", "input", cfg.Input, "output", output)
	result, err := convert.ConvertFile(afero.NewOsFs(), cfg.Input, output, opts)
	warnings.LogAll(nil)
	if err != nil {
		log.Fatal(err)
	}

	slog.Info(
		"Conversion complete",
		"legs", result.Stats.Legs,
		"records", result.Stats.Records,
		"warnings", len(warnings.Kinds()),
	)
}

func applyFlags(c *config.Config) {
	if *flagInput != "" {
		c.Input = *flagInput
	}
	if *flagOutput != "" {
		c.Output = *flagOutput
	}
	if *flagAirline != "" {
		c.Airline = *flagAirline
	}
	if *flagUTC {
		c.TimeZoneMode = string(ssim.UTC)
	}
	if *flagSequential {
		c.Traversal = "sequential"
	}
	if *flagEstimate {
		c.Timezone.Provider = config.ProviderEstimating
	}
	if *flagGTFSRT != "" {
		c.Exports.GTFSRT = *flagGTFSRT
	}
	if *flagJSON != "" {
		c.Exports.JSON = *flagJSON
	}
	if *flagReadable {
		c.Exports.Readable = true
	}
	if *flagVerbose {
		c.Logging.Level = "debug"
	}
}

func options(cfg *config.Config, reporter diag.Reporter) (convert.Options, error) {
	strategy, err := chain.ParseStrategy(cfg.Traversal)
	if err != nil {
		return convert.Options{}, err
	}

	mode, err := ssim.ParseTimeMode(cfg.TimeZoneMode)
	if err != nil {
		return convert.Options{}, err
	}

	provider, err := timezoneProvider(cfg.Timezone, reporter)
	if err != nil {
		return convert.Options{}, err
	}

	return convert.Options{
		Provider: provider,
		Strategy: strategy,
		Reporter: reporter,
		SSIM: ssim.Options{
			Airline:  cfg.Airline,
			Creator:  cfg.Creator,
			TimeMode: mode,
		},
		Exports: convert.Exports{
			GTFSRT:   cfg.Exports.GTFSRT,
			JSON:     cfg.Exports.JSON,
			Readable: cfg.Exports.Readable,
		},
	}, nil
}

func timezoneProvider(cfg config.TimezoneConfig, reporter diag.Reporter) (tz.Provider, error) {
	if cfg.Provider == config.ProviderEstimating {
		slog.Info("Using estimated timezone offsets")
		return tz.Estimating{Reporter: reporter}, nil
	}

	var dataset tz.Dataset
	var err error
	switch {
	case cfg.AirportsFile != "":
		slog.Info("Loading airport dataset", "file", cfg.AirportsFile)
		dataset, err = tz.LoadDatasetFile(cfg.AirportsFile)

	case cfg.AirportsURL != "":
		ctx := context.Background()
		if cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.FetchTimeout)
			defer cancel()
		}
		dataset, err = tz.FetchDataset(ctx, http.DefaultClient, cfg.AirportsURL, cfg.FetchAttempts, cfg.FetchBackoff)

	default:
		dataset = tz.EmbeddedDataset()
		slog.Info("Using embedded airport dataset", "airports", len(dataset))
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded airport dataset", "airports", len(dataset))
	return tz.Fallback{
		Primary:   tz.NewPrecise(dataset),
		Secondary: tz.Estimating{Reporter: reporter},
		Reporter:  reporter,
	}, nil
}
