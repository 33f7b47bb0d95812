// Package scheduler runs the once-per-second schedule evaluation loop of
// spec §4.8: day-mask plus time-window matching, union-ON across
// overlapping schedules, and commands issued through the Board Dispatch at
// background priority subject to the Delay Manager.
package scheduler

import (
	"context"
	"time"

	"github.com/pentacore/bridge/internal/model"
	"github.com/rs/zerolog/log"
)

// CircuitCommander is the minimal surface the scheduler needs from Board
// Dispatch: turning a circuit on or off at background priority.
type CircuitCommander interface {
	SetCircuitState(circuitID int, on bool) error
}

// Scheduler evaluates schedules once a second against a ConfigGraph
// snapshot and the current local time.
type Scheduler struct {
	snapshot  func() *model.ConfigGraph
	commander CircuitCommander
	sun       SunCalculator
	lat, lon  float64
	now       func() time.Time
}

// New constructs a Scheduler. snapshot supplies a fresh configuration
// graph each tick (e.g. Engine.SnapshotConfig); now defaults to time.Now.
func New(snapshot func() *model.ConfigGraph, commander CircuitCommander, sun SunCalculator, lat, lon float64) *Scheduler {
	if sun == nil {
		sun = NewApproxSunCalculator()
	}
	return &Scheduler{snapshot: snapshot, commander: commander, sun: sun, lat: lat, lon: lon, now: time.Now}
}

// Run evaluates schedules once per second until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evaluate()
		}
	}
}

func (s *Scheduler) evaluate() {
	cfg := s.snapshot()
	now := s.now()

	desired := make(map[int]bool)
	for _, sched := range cfg.Schedules.All() {
		on, err := s.schedActive(sched, now)
		if err != nil {
			log.Warn().Err(err).Int("schedule", sched.ID).Msg("failed to evaluate schedule")
			continue
		}
		if on {
			desired[sched.CircuitID] = true
		} else if _, exists := desired[sched.CircuitID]; !exists {
			desired[sched.CircuitID] = false
		}
	}

	for circuitID, on := range desired {
		if on {
			if err := s.commander.SetCircuitState(circuitID, true); err != nil {
				log.Warn().Err(err).Int("circuit", circuitID).Msg("scheduled on command failed")
			}
		}
	}
	for circuitID, on := range desired {
		if !on {
			if err := s.commander.SetCircuitState(circuitID, false); err != nil {
				log.Warn().Err(err).Int("circuit", circuitID).Msg("scheduled off command failed")
			}
		}
	}
}

// schedActive reports whether sched's window currently contains now. A
// schedule whose startTime equals its endTime never turns its circuit on
// (spec §8 boundary behavior).
func (s *Scheduler) schedActive(sched model.ScheduleConfig, now time.Time) (bool, error) {
	if sched.StartTime == sched.EndTime {
		return false, nil
	}
	if !dayMaskMatches(sched.Days, now) {
		return false, nil
	}

	start, err := s.resolveTime(sched.StartTime, now)
	if err != nil {
		return false, err
	}
	end, err := s.resolveTime(sched.EndTime, now)
	if err != nil {
		return false, err
	}

	if end.Before(start) {
		// Overnight window: active if now is after start OR before end.
		return !now.Before(start) || now.Before(end), nil
	}
	return !now.Before(start) && now.Before(end), nil
}

func (s *Scheduler) resolveTime(spec string, now time.Time) (time.Time, error) {
	switch spec {
	case "sunrise":
		return s.sun.Sunrise(now, s.lat, s.lon), nil
	case "sunset":
		return s.sun.Sunset(now, s.lat, s.lon), nil
	default:
		t, err := time.ParseInLocation("15:04", spec, now.Location())
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
}

func dayMaskMatches(mask model.DayMask, now time.Time) bool {
	bit := model.DaySunday << model.DayMask(now.Weekday())
	return mask&bit != 0
}
