// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package convert ties together reading LOW files and writing SSIM files.
package convert

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/afero"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/chain"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/diag"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/feed"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/schedule"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/ssim"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/tz"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/fsutil"
	"github.com/MKuranowski/LowToSSIM/low_to_ssim/util/time2"
)

var (
	ErrEmptySchedule = schedule.ErrEmptySchedule
	ErrInputNotFound = errors.New("input file not found")
)

type Options struct {
	Provider tz.Provider
	Strategy chain.Strategy
	Reporter diag.Reporter
	SSIM     ssim.Options
	Exports  Exports
}

// Exports are optional additional outputs of ConvertFile.
type Exports struct {
	GTFSRT   string
	JSON     string
	Readable bool
}

func (o *Options) setDefaults() {
	if o.Reporter == nil {
		o.Reporter = diag.Discard{}
	}
	if o.Provider == nil {
		o.Provider = tz.Estimating{Reporter: o.Reporter}
	}
	if o.Strategy == nil {
		o.Strategy = chain.Chained{}
	}
	if o.SSIM.Now == nil {
		o.SSIM.Now = time.Now
	}
}

type Result struct {
	Schedule *schedule.Schedule
	Stats    ssim.Stats

	// Steps is the traversal written to the SSIM file, reused by Export.
	Steps []chain.Step
}

// Convert reads a LOW file from r and writes the SSIM file to w.
// Nothing is written if the LOW file can't be loaded.
func Convert(name string, r io.Reader, w io.Writer, opts Options) (*Result, error) {
	opts.setDefaults()
	s, err := load(name, r, opts)
	if err != nil {
		return nil, err
	}
	return write(w, s, opts)
}

// ConvertFile converts the LOW file at in to an SSIM file at out. The output
// is first written to a temporary file, which replaces out only on success.
func ConvertFile(fsys afero.Fs, in, out string, opts Options) (*Result, error) {
	opts.setDefaults()

	f, err := fsys.Open(in)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", in, ErrInputNotFound)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := load(in, f, opts)
	if err != nil {
		return nil, err
	}

	var result *Result
	err = fsutil.WriteFileAtomic(fsys, out, func(w io.Writer) (err error) {
		result, err = write(w, s, opts)
		return
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", out, err)
	}

	slog.Info(
		"Wrote SSIM file",
		"file", out,
		"legs", result.Stats.Legs,
		"rotations", len(s.Shells),
		"chains", result.Stats.Chains,
		"records", result.Stats.Records,
		"time_mode", opts.SSIM.TimeMode,
	)

	if err := Export(fsys, result, opts); err != nil {
		return nil, err
	}
	return result, nil
}

// Export writes the GTFS-Realtime and JSON exports of a converted schedule,
// if they are configured. Flights follow the same traversal as the SSIM file.
func Export(fsys afero.Fs, result *Result, opts Options) error {
	opts.setDefaults()
	if opts.Exports.GTFSRT == "" && opts.Exports.JSON == "" {
		return nil
	}

	c := feed.FromSteps(slices.Values(result.Steps), opts.SSIM.Now())

	if path := opts.Exports.GTFSRT; path != "" {
		slog.Debug("Dumping GTFS-Realtime", "file", path)
		if err := c.DumpGTFSFile(fsys, path, opts.Exports.Readable); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	if path := opts.Exports.JSON; path != "" {
		slog.Debug("Dumping JSON", "file", path)
		if err := c.DumpJSONFile(fsys, path, opts.Exports.Readable); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return nil
}

func load(name string, r io.Reader, opts Options) (*schedule.Schedule, error) {
	return schedule.Read(name, r, schedule.Options{
		Provider: opts.Provider,
		Reporter: opts.Reporter,
		Today:    time2.DateOf(opts.SSIM.Now()),
	})
}

func write(w io.Writer, s *schedule.Schedule, opts Options) (*Result, error) {
	steps := slices.Collect(opts.Strategy.Steps(s))
	stats, err := ssim.Encode(w, s, slices.Values(steps), opts.SSIM)
	if err != nil {
		return nil, err
	}
	return &Result{Schedule: s, Stats: stats, Steps: steps}, nil
}
