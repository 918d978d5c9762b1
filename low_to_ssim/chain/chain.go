// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

// Package chain decides the order in which aircraft rotations are written,
// and which flight is "onward" of each leg.
package chain

import (
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/MKuranowski/LowToSSIM/low_to_ssim/schedule"
)

// Step is a single leg in the traversal order, together with the leg flown
// next by the same aircraft (nil if unknown).
type Step struct {
	Shell  *schedule.Shell
	Leg    *schedule.Leg
	Onward *schedule.Leg
}

type Strategy interface {
	Steps(s *schedule.Schedule) iter.Seq[Step]
}

type ErrUnknownStrategy string

func (e ErrUnknownStrategy) Error() string {
	return fmt.Sprintf("unknown traversal strategy: %q (expected \"chained\" or \"sequential\")", string(e))
}

func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "chained":
		return Chained{}, nil
	case "sequential":
		return Sequential{}, nil
	default:
		return nil, ErrUnknownStrategy(name)
	}
}

// Sequential visits rotations in the order they appear in the schedule.
// The last leg of every rotation has no onward flight.
type Sequential struct{}

func (Sequential) Steps(s *schedule.Schedule) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for _, shell := range s.Shells {
			if !yieldShell(shell, nil, yield) {
				return
			}
		}
	}
}

// Chained links rotations end-to-end. After a rotation, the next one is
// the first unvisited rotation departing from the airport where the previous
// one ended; the first leg of that rotation becomes the onward flight of the
// last leg. If no rotation connects, a new chain starts from the first
// unvisited rotation. Every rotation is visited exactly once.
type Chained struct{}

func (c Chained) Steps(s *schedule.Schedule) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		for _, chain := range c.Chains(s) {
			for i, shell := range chain {
				var next *schedule.Shell
				if i+1 < len(chain) {
					next = chain[i+1]
				}
				if !yieldShell(shell, next, yield) {
					return
				}
			}
		}
	}
}

// Chains returns the rotations grouped into chains, in traversal order.
func (Chained) Chains(s *schedule.Schedule) [][]*schedule.Shell {
	if len(s.Shells) == 0 {
		return nil
	}

	var chains [][]*schedule.Shell
	var chain []*schedule.Shell
	visited := make([]bool, len(s.Shells))
	current := 0
	slog.Debug("Starting aircraft chain", "line", s.Shells[current].ID)

	for remaining := len(s.Shells); remaining > 0; remaining-- {
		shell := s.Shells[current]
		visited[current] = true
		chain = append(chain, shell)

		if remaining == 1 {
			break
		}

		airport := shell.Last().ArrivalAirport
		if next := findConnecting(s.Shells, visited, airport); next >= 0 {
			slog.Debug("Found connection", "from", shell.ID, "to", s.Shells[next].ID, "airport", airport)
			current = next
		} else {
			slog.Debug("End of chain", "airport", airport)
			chains = append(chains, chain)
			chain = nil
			current = firstUnvisited(visited)
			slog.Debug("Starting aircraft chain", "line", s.Shells[current].ID)
		}
	}

	return append(chains, chain)
}

func findConnecting(shells []*schedule.Shell, visited []bool, airport string) int {
	for i, shell := range shells {
		if visited[i] || len(shell.Legs) == 0 {
			continue
		}
		if strings.EqualFold(shell.First().DepartureAirport, airport) {
			return i
		}
	}
	return -1
}

func firstUnvisited(visited []bool) int {
	for i, v := range visited {
		if !v {
			return i
		}
	}
	return -1
}

func yieldShell(shell, next *schedule.Shell, yield func(Step) bool) bool {
	for i, leg := range shell.Legs {
		step := Step{Shell: shell, Leg: leg}
		if i+1 < len(shell.Legs) {
			step.Onward = shell.Legs[i+1]
		} else if next != nil {
			step.Onward = next.First()
		}

		if !yield(step) {
			return false
		}
	}
	return true
}
