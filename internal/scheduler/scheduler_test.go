package scheduler

import (
	"testing"
	"time"

	"github.com/pentacore/bridge/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCommander struct {
	calls map[int]bool
}

func newFakeCommander() *fakeCommander { return &fakeCommander{calls: make(map[int]bool)} }

func (f *fakeCommander) SetCircuitState(circuitID int, on bool) error {
	f.calls[circuitID] = on
	return nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestScheduler_WithinWindowTurnsOn(t *testing.T) {
	cfg := model.NewConfigGraph()
	cfg.Schedules.Upsert(model.ScheduleConfig{
		ID: 1, CircuitID: 6, StartTime: "08:00", EndTime: "18:00",
		Days: model.DayAll,
	})

	cmd := newFakeCommander()
	s := New(func() *model.ConfigGraph { return cfg }, cmd, nil, 0, 0)
	s.now = fixedNow(time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC))

	s.evaluate()
	require.Contains(t, cmd.calls, 6)
	assert.True(t, cmd.calls[6])
}

func TestScheduler_OutsideWindowTurnsOff(t *testing.T) {
	cfg := model.NewConfigGraph()
	cfg.Schedules.Upsert(model.ScheduleConfig{
		ID: 1, CircuitID: 6, StartTime: "08:00", EndTime: "18:00",
		Days: model.DayAll,
	})

	cmd := newFakeCommander()
	s := New(func() *model.ConfigGraph { return cfg }, cmd, nil, 0, 0)
	s.now = fixedNow(time.Date(2026, 8, 6, 22, 0, 0, 0, time.UTC))

	s.evaluate()
	assert.False(t, cmd.calls[6])
}

func TestScheduler_EqualStartEndNeverOn(t *testing.T) {
	cfg := model.NewConfigGraph()
	cfg.Schedules.Upsert(model.ScheduleConfig{
		ID: 1, CircuitID: 6, StartTime: "10:00", EndTime: "10:00", Days: model.DayAll,
	})
	cmd := newFakeCommander()
	s := New(func() *model.ConfigGraph { return cfg }, cmd, nil, 0, 0)
	s.now = fixedNow(time.Date(2026, 8, 6, 10, 0, 0, 0, time.UTC))

	s.evaluate()
	assert.False(t, cmd.calls[6])
}

func TestScheduler_UnionOnAcrossOverlap(t *testing.T) {
	cfg := model.NewConfigGraph()
	cfg.Schedules.Upsert(model.ScheduleConfig{
		ID: 1, CircuitID: 6, StartTime: "08:00", EndTime: "10:00", Days: model.DayAll,
	})
	cfg.Schedules.Upsert(model.ScheduleConfig{
		ID: 2, CircuitID: 6, StartTime: "09:00", EndTime: "12:00", Days: model.DayAll,
	})

	cmd := newFakeCommander()
	s := New(func() *model.ConfigGraph { return cfg }, cmd, nil, 0, 0)
	s.now = fixedNow(time.Date(2026, 8, 6, 9, 30, 0, 0, time.UTC))

	s.evaluate()
	assert.True(t, cmd.calls[6])
}
