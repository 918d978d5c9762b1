// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package time2

import (
	"fmt"
	"math"
	"sync"
	"time"
)

var (
	zoneCacheLock sync.Mutex
	zoneCache     = make(map[string]*time.Location)
)

// LoadZone is time.LoadLocation with a process-wide cache, as a schedule
// usually references the same handful of zones over and over.
func LoadZone(name string) (*time.Location, error) {
	zoneCacheLock.Lock()
	defer zoneCacheLock.Unlock()

	if loc, ok := zoneCache[name]; ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s timezone: %w", name, err)
	}
	zoneCache[name] = loc
	return loc, nil
}

// OffsetAt returns the UTC offset (in hours) observed in loc at local midnight
// of the given date, and whether daylight saving time is in effect then.
func OffsetAt(loc *time.Location, d Date) (hours float64, dst bool) {
	t := d.In(loc)
	_, seconds := t.Zone()
	return float64(seconds) / 3600, t.IsDST()
}

// FixedZone returns a location with a constant UTC offset given in hours.
func FixedZone(hours float64) *time.Location {
	return time.FixedZone("", int(math.Round(hours*3600)))
}
