package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/eldoria/engine/events"
	"github.com/nathoo/eldoria/types"
)

type recorder struct {
	bus  *events.Bus
	evts []types.Event
}

func newRecorder() *recorder {
	r := &recorder{bus: events.New()}
	r.bus.Subscribe(func(ev types.Event) { r.evts = append(r.evts, ev) })
	return r
}

func (r *recorder) take(kind types.EventType) []types.Event {
	r.bus.Drain()
	out := events.Filter(r.evts, kind)
	return out
}

func at(hour, minute int) *Clock {
	return New(Options{StartHour: hour, StartMinute: minute, Scale: 1})
}

func TestAdvance_WrapsIntoNextDay(t *testing.T) {
	r := newRecorder()
	c := New(Options{Bus: r.bus, StartHour: 23, StartMinute: 50, Scale: 1})
	require.Equal(t, 1430, c.MinuteOfDay())

	c.Advance(20 * time.Second)

	assert.Equal(t, 10, c.MinuteOfDay())
	assert.Equal(t, 1, c.Day())
	days := r.take(types.EventDayChanged)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Amount)
	assert.Len(t, r.take(types.EventHourChanged), 1)
	assert.Empty(t, r.take(types.EventPeriodChanged), "night to night")
}

func TestAdvance_ScaleIsMinutesPerSecond(t *testing.T) {
	c := New(Options{StartHour: 6, Scale: 60})
	c.Advance(time.Second)
	assert.Equal(t, "07:00", c.String())

	c.Advance(500 * time.Millisecond)
	assert.Equal(t, "07:30", c.String())
}

func TestAdvance_FractionalMinutesAccumulate(t *testing.T) {
	c := at(6, 0)
	for i := 0; i < 4; i++ {
		c.Advance(250 * time.Millisecond)
	}
	assert.Equal(t, "06:01", c.String())
}

func TestAdvance_EventsOncePerCall(t *testing.T) {
	r := newRecorder()
	c := New(Options{Bus: r.bus, Scale: 1})

	c.AdvanceMinutes(3000)

	assert.Equal(t, 2, c.Day())
	assert.Equal(t, "02:00", c.String())
	assert.Len(t, r.take(types.EventDayChanged), 1)
	assert.Len(t, r.take(types.EventHourChanged), 1)
}

func TestAdvance_PeriodChange(t *testing.T) {
	r := newRecorder()
	c := New(Options{Bus: r.bus, StartHour: 5, StartMinute: 59, Scale: 1})

	c.AdvanceMinutes(1)

	periods := r.take(types.EventPeriodChanged)
	require.Len(t, periods, 1)
	assert.Equal(t, "dawn", periods[0].Name)
}

func TestPauseResume(t *testing.T) {
	c := New(Options{StartHour: 6, Scale: 10})

	c.Pause()
	assert.True(t, c.Paused())
	assert.Zero(t, c.TimeScale())
	c.Advance(time.Minute)
	assert.Equal(t, "06:00", c.String())

	c.SetTimeScale(20)
	c.Pause()
	c.Resume()
	assert.False(t, c.Paused())
	assert.Equal(t, 20.0, c.TimeScale())

	c.Advance(time.Second)
	assert.Equal(t, "06:20", c.String())

	c.Resume()
	assert.Equal(t, 20.0, c.TimeScale())
}

func TestSetTimeScale_Clamped(t *testing.T) {
	c := at(0, 0)
	c.SetTimeScale(0)
	assert.Equal(t, 1.0, c.TimeScale())
	c.SetTimeScale(1000)
	assert.Equal(t, 300.0, c.TimeScale())
	c.SetTimeScale(45)
	assert.Equal(t, 45.0, c.TimeScale())
}

func TestTimeOfDay(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         Period
	}{
		{0, 0, Night},
		{5, 59, Night},
		{6, 0, Dawn},
		{7, 59, Dawn},
		{8, 0, Day},
		{16, 0, Day},
		{16, 1, Dusk},
		{17, 59, Dusk},
		{18, 0, Night},
		{23, 59, Night},
	}
	for _, tt := range tests {
		c := at(tt.hour, tt.minute)
		assert.Equal(t, tt.want, c.TimeOfDay(), c.String())
	}
}

func TestDaylightFactor(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         float64
	}{
		{3, 0, 0},
		{5, 0, 0},
		{5, 30, 0.25},
		{6, 0, 0.5},
		{7, 0, 1},
		{12, 0, 1},
		{17, 0, 1},
		{18, 0, 0.5},
		{18, 30, 0.25},
		{19, 0, 0},
	}
	for _, tt := range tests {
		c := at(tt.hour, tt.minute)
		assert.InDelta(t, tt.want, c.DaylightFactor(), 1e-9, c.String())
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		hour                    int
		working, shop, sleeping bool
	}{
		{5, false, false, true},
		{6, false, false, false},
		{8, true, false, false},
		{9, true, true, false},
		{16, true, true, false},
		{17, true, false, false},
		{18, false, false, false},
		{22, false, false, true},
	}
	for _, tt := range tests {
		c := at(tt.hour, 0)
		assert.Equal(t, tt.working, c.IsWorkingHours(), "working %d", tt.hour)
		assert.Equal(t, tt.shop, c.IsShopOpen(), "shop %d", tt.hour)
		assert.Equal(t, tt.sleeping, c.IsSleepingHours(), "sleeping %d", tt.hour)
	}
}

func TestIsWeekend(t *testing.T) {
	c := at(0, 0)
	var weekend []int
	for d := 0; d < 14; d++ {
		if c.IsWeekend() {
			weekend = append(weekend, c.Day())
		}
		c.AdvanceMinutes(MinutesPerDay)
	}
	assert.Equal(t, []int{5, 6, 12, 13}, weekend)
}

func TestSchedule_OneShot(t *testing.T) {
	c := at(6, 0)
	fired := 0
	c.Schedule(8, 0, func() { fired++ })

	c.AdvanceMinutes(119)
	assert.Zero(t, fired)
	c.AdvanceMinutes(1)
	assert.Equal(t, 1, fired)
	c.AdvanceMinutes(MinutesPerDay * 2)
	assert.Equal(t, 1, fired)
	assert.Zero(t, c.Pending())
}

func TestSchedule_PastTimeMeansTomorrow(t *testing.T) {
	c := at(10, 0)
	fired := false
	c.Schedule(9, 0, func() { fired = true })

	c.AdvanceMinutes(12 * 60)
	assert.False(t, fired)
	c.AdvanceMinutes(11 * 60)
	assert.True(t, fired)
}

func TestSchedule_RecurringOncePerCrossing(t *testing.T) {
	c := at(6, 0)
	fired := 0
	id := c.ScheduleRecurring(7, 0, func() { fired++ })

	c.AdvanceMinutes(60)
	assert.Equal(t, 1, fired)
	c.AdvanceMinutes(30)
	assert.Equal(t, 1, fired)

	c.AdvanceMinutes(3 * MinutesPerDay)
	assert.Equal(t, 4, fired)

	assert.True(t, c.Cancel(id))
	assert.False(t, c.Cancel(id))
	c.AdvanceMinutes(MinutesPerDay)
	assert.Equal(t, 4, fired)
}

func TestSetTime(t *testing.T) {
	r := newRecorder()
	c := New(Options{Bus: r.bus, StartHour: 6, Scale: 1})
	fired := false
	c.Schedule(12, 0, func() { fired = true })

	c.SetTime(13, 30)

	assert.Equal(t, "13:30", c.String())
	assert.Zero(t, c.Day())
	assert.False(t, fired)
	assert.Len(t, r.take(types.EventHourChanged), 1)
	assert.Len(t, r.take(types.EventPeriodChanged), 1)
	assert.Empty(t, r.take(types.EventDayChanged))

	c.SetTime(25, 0)
	assert.Equal(t, "01:00", c.String())
}

func TestSnapshotRestore(t *testing.T) {
	c := New(Options{StartHour: 21, StartMinute: 15, Scale: 30})
	c.AdvanceMinutes(MinutesPerDay * 3)
	c.Pause()

	d := New(Options{})
	d.Restore(c.Snapshot())

	assert.Equal(t, c.String(), d.String())
	assert.Equal(t, 3, d.Day())
	assert.True(t, d.Paused())
	d.Resume()
	assert.Equal(t, 30.0, d.TimeScale())
}
