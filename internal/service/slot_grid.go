package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/careerday-api/internal/models"
	appErrors "github.com/noah-isme/careerday-api/pkg/errors"
)

// clockMinutes parses an "HH:MM" wall-clock value into minutes from
// midnight.
func clockMinutes(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock value %q out of range", raw)
	}
	return h*60 + m, nil
}

// intervalsOverlap applies the half-open overlap test to two minute
// intervals.
func intervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	lo := aStart
	if bStart > lo {
		lo = bStart
	}
	hi := aEnd
	if bEnd < hi {
		hi = bEnd
	}
	return lo < hi
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// minuteInterval is a parsed break window in minutes from midnight.
type minuteInterval struct {
	start int
	end   int
}

// slotGrid discretises one event day into fixed-granularity slot indices.
type slotGrid struct {
	date        time.Time // midnight of the event day
	dayStart    int       // minutes from midnight
	dayEnd      int
	granularity int
}

func newSlotGrid(date time.Time, dayStart, dayEnd string, granularity int) (*slotGrid, error) {
	start, err := clockMinutes(dayStart)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "invalid day start")
	}
	end, err := clockMinutes(dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfig.Code, appErrors.ErrConfig.Status, "invalid day end")
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrConfig, fmt.Sprintf("day window %s-%s is inverted", dayStart, dayEnd))
	}
	if granularity <= 0 {
		return nil, appErrors.Clone(appErrors.ErrConfig, "granularity must be positive")
	}
	return &slotGrid{
		date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()),
		dayStart:    start,
		dayEnd:      end,
		granularity: granularity,
	}, nil
}

func (g *slotGrid) numSlots() int {
	return (g.dayEnd - g.dayStart) / g.granularity
}

// slotMinute maps a slot index to minutes from midnight.
func (g *slotGrid) slotMinute(t int) int {
	return g.dayStart + t*g.granularity
}

// slotTime maps a slot index to an absolute timestamp on the event day.
func (g *slotGrid) slotTime(t int) time.Time {
	return g.date.Add(time.Duration(g.slotMinute(t)) * time.Minute)
}

// slotsNeeded returns how many base slots an interview of the given
// duration occupies, rounding up to whole slots.
func (g *slotGrid) slotsNeeded(durationMinutes int) int {
	return (durationMinutes + g.granularity - 1) / g.granularity
}

// slotIndexAt maps an absolute timestamp to the base slot covering it, or
// -1 when the timestamp falls outside the day window.
func (g *slotGrid) slotIndexAt(tm time.Time) int {
	minutes := int(tm.Sub(g.date) / time.Minute)
	if minutes < g.dayStart || minutes >= g.dayEnd {
		return -1
	}
	return (minutes - g.dayStart) / g.granularity
}

// validStartSlots lists slot indices where an interview of the given
// duration fits inside [availStart, availEnd) minutes without touching any
// break interval.
func (g *slotGrid) validStartSlots(availStart, availEnd, durationMinutes int, breaks []minuteInterval) []int {
	k := g.slotsNeeded(durationMinutes)
	n := g.numSlots()
	var out []int
	for t := 0; t < n; t++ {
		start := g.slotMinute(t)
		end := start + durationMinutes
		if start < availStart || end > availEnd {
			continue
		}
		if t+k-1 >= n {
			continue
		}
		blocked := false
		for _, b := range breaks {
			if intervalsOverlap(start, end, b.start, b.end) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		out = append(out, t)
	}
	return out
}

// parseBreaks converts HH:MM break intervals to minute intervals, skipping
// malformed entries and reporting how many were dropped.
func parseBreaks(breaks []models.BreakInterval) ([]minuteInterval, int) {
	var out []minuteInterval
	skipped := 0
	for _, b := range breaks {
		start, errStart := clockMinutes(b.Start)
		end, errEnd := clockMinutes(b.End)
		if errStart != nil || errEnd != nil || start >= end {
			skipped++
			continue
		}
		out = append(out, minuteInterval{start: start, end: end})
	}
	return out, skipped
}

// baseGranularity derives the shared grid granularity as the GCD of every
// configured panel duration and role default, so heterogeneous durations
// coexist on one grid. Floors at 5 minutes.
func baseGranularity(companies []models.Company, fallback int) int {
	g := 0
	for _, c := range companies {
		for _, r := range c.JobRoles {
			if r.DurationMinutes > 0 {
				g = gcd(g, r.DurationMinutes)
			}
		}
		for _, p := range c.Panels {
			if p.SlotDurationMinutes > 0 {
				g = gcd(g, p.SlotDurationMinutes)
			}
		}
	}
	if g == 0 {
		g = fallback
	}
	if g < 5 {
		g = 5
	}
	return g
}
