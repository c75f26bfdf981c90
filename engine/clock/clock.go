// Package clock keeps simulated time of day and a day counter, advanced in
// proportion to real elapsed time. NPC schedules and shop gating read its
// predicates; changes of hour, day and period are published on the bus.
package clock

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nathoo/eldoria/engine/events"
	"github.com/nathoo/eldoria/logger"
	"github.com/nathoo/eldoria/types"
)

const (
	MinutesPerDay = 1440
	Sunrise       = 360
	Sunset        = 1080

	MinScale = 1
	MaxScale = 300
)

// Period is a coarse part of the day.
type Period string

const (
	Dawn  Period = "dawn"
	Day   Period = "day"
	Dusk  Period = "dusk"
	Night Period = "night"
)

// ID identifies a scheduled event for cancellation.
type ID int

type scheduled struct {
	id        ID
	at        float64 // absolute minute for one-shots, minute of day for recurring
	recurring bool
	fn        func()
}

// Options configures a new clock.
type Options struct {
	Bus         *events.Bus
	Logger      logrus.FieldLogger
	Scale       float64 // game minutes per real second, clamped to [1,300]
	StartHour   int
	StartMinute int
}

// Clock is the simulated time of day. It is not safe for concurrent use;
// the game drives it from its single loop.
type Clock struct {
	minutes    float64 // [0, MinutesPerDay)
	day        int
	scale      float64
	savedScale float64
	paused     bool

	bus    *events.Bus
	log    logrus.FieldLogger
	nextID ID
	events []*scheduled
}

// New creates a clock at the configured start time on day 0.
func New(opts Options) *Clock {
	c := &Clock{
		scale: clampScale(opts.Scale),
		bus:   opts.Bus,
		log:   logger.OrDiscard(opts.Logger),
	}
	c.minutes = normalize(float64(opts.StartHour*60 + opts.StartMinute))
	return c
}

// Advance moves time forward by elapsed×scale game minutes (scale is game
// minutes per real second). Hour, day and period changes fire at most once
// each per call, from the before/after comparison. Scheduled events whose
// time was crossed fire after that.
func (c *Clock) Advance(elapsed time.Duration) {
	if c.paused || elapsed <= 0 {
		return
	}
	c.move(elapsed.Seconds() * c.scale)
}

// AdvanceMinutes moves time forward by a number of game minutes regardless
// of scale or pause. Used for explicit waits.
func (c *Clock) AdvanceMinutes(n int) {
	if n <= 0 {
		return
	}
	c.move(float64(n))
}

func (c *Clock) move(delta float64) {
	prevHour, prevDay, prevPeriod := c.Hour(), c.day, c.TimeOfDay()
	prevAbs := c.absolute()

	c.minutes += delta
	if c.minutes >= MinutesPerDay {
		wraps := int(c.minutes / MinutesPerDay)
		c.minutes -= float64(wraps * MinutesPerDay)
		c.day += wraps
	}

	c.publish(prevHour, prevDay, prevPeriod)
	c.fire(prevAbs, c.absolute())
}

func (c *Clock) publish(prevHour, prevDay int, prevPeriod Period) {
	if h := c.Hour(); h != prevHour {
		c.bus.Emit(types.Event{Type: types.EventHourChanged, Amount: h, Name: c.String()})
	}
	if c.day != prevDay {
		c.log.WithField("day", c.day).Info("new day")
		c.bus.Emit(types.Event{Type: types.EventDayChanged, Amount: c.day})
	}
	if p := c.TimeOfDay(); p != prevPeriod {
		c.bus.Emit(types.Event{Type: types.EventPeriodChanged, Name: string(p)})
	}
}

// fire runs one-shots whose time is at or before now and recurring events
// once per crossing of their minute in (from, to].
func (c *Clock) fire(from, to float64) {
	var due []*scheduled
	kept := c.events[:0]
	for _, ev := range c.events {
		if !ev.recurring && ev.at <= to {
			due = append(due, ev)
			continue
		}
		kept = append(kept, ev)
	}
	c.events = kept

	slices.SortStableFunc(due, func(a, b *scheduled) int {
		return cmp.Compare(a.at, b.at)
	})
	for _, ev := range due {
		ev.fn()
	}

	for _, ev := range slices.Clone(c.events) {
		if !ev.recurring {
			continue
		}
		for n := crossings(from, to, ev.at); n > 0; n-- {
			ev.fn()
		}
	}
}

// crossings counts k with from < k×day + at <= to.
func crossings(from, to, at float64) int {
	first := math.Floor((from-at)/MinutesPerDay) + 1
	last := math.Floor((to - at) / MinutesPerDay)
	if last < first {
		return 0
	}
	return int(last - first + 1)
}

// Schedule registers fn to run once, the next time the clock reaches
// hour:minute (tomorrow if that time has already passed today).
func (c *Clock) Schedule(hour, minute int, fn func()) ID {
	tod := normalize(float64(hour*60 + minute))
	at := float64(c.day*MinutesPerDay) + tod
	if tod <= c.minutes {
		at += MinutesPerDay
	}
	return c.add(&scheduled{at: at, fn: fn})
}

// ScheduleRecurring registers fn to run every day when the clock passes
// hour:minute.
func (c *Clock) ScheduleRecurring(hour, minute int, fn func()) ID {
	return c.add(&scheduled{at: normalize(float64(hour*60 + minute)), recurring: true, fn: fn})
}

func (c *Clock) add(ev *scheduled) ID {
	c.nextID++
	ev.id = c.nextID
	c.events = append(c.events, ev)
	return ev.id
}

// Cancel removes a scheduled event. It reports whether the id was pending.
func (c *Clock) Cancel(id ID) bool {
	for i, ev := range c.events {
		if ev.id == id {
			c.events = slices.Delete(c.events, i, i+1)
			return true
		}
	}
	return false
}

// Pending returns the number of scheduled events.
func (c *Clock) Pending() int { return len(c.events) }

// SetTime jumps to hour:minute on the current day. Hour and period change
// events fire; scheduled events do not.
func (c *Clock) SetTime(hour, minute int) {
	prevHour, prevPeriod := c.Hour(), c.TimeOfDay()
	c.minutes = normalize(float64(hour*60 + minute))
	c.publish(prevHour, c.day, prevPeriod)
}

// SetTimeScale sets game minutes per real second, clamped to [1,300].
// While paused the new scale takes effect on Resume.
func (c *Clock) SetTimeScale(scale float64) {
	if c.paused {
		c.savedScale = clampScale(scale)
		return
	}
	c.scale = clampScale(scale)
}

// TimeScale returns the active scale, 0 while paused.
func (c *Clock) TimeScale() float64 {
	if c.paused {
		return 0
	}
	return c.scale
}

// Pause stops Advance until Resume.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.savedScale = c.scale
	c.paused = true
}

// Resume restores the scale saved by Pause.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	c.scale = clampScale(c.savedScale)
}

// Paused reports whether the clock is paused.
func (c *Clock) Paused() bool { return c.paused }

func (c *Clock) absolute() float64 {
	return float64(c.day*MinutesPerDay) + c.minutes
}

// Hour returns the hour of day, 0..23.
func (c *Clock) Hour() int { return int(c.minutes) / 60 }

// Minute returns the minute of the hour, 0..59.
func (c *Clock) Minute() int { return int(c.minutes) % 60 }

// Day returns the number of completed days.
func (c *Clock) Day() int { return c.day }

// MinuteOfDay returns the whole minutes since midnight.
func (c *Clock) MinuteOfDay() int { return int(c.minutes) }

// String formats the time as HH:MM.
func (c *Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// TimeOfDay returns dawn for the two hours after sunrise, dusk for the two
// hours before sunset, day in between and night otherwise.
func (c *Clock) TimeOfDay() Period {
	t := c.minutes
	switch {
	case t < Sunrise || t >= Sunset:
		return Night
	case t < Sunrise+120:
		return Dawn
	case t > Sunset-120:
		return Dusk
	default:
		return Day
	}
}

// DaylightFactor ramps linearly from 0 to 1 over the hour either side of
// sunrise and back down around sunset.
func (c *Clock) DaylightFactor() float64 {
	t := c.minutes
	switch {
	case t >= Sunrise-60 && t < Sunrise+60:
		return (t - (Sunrise - 60)) / 120
	case t >= Sunrise+60 && t < Sunset-60:
		return 1
	case t >= Sunset-60 && t < Sunset+60:
		return 1 - (t-(Sunset-60))/120
	default:
		return 0
	}
}

func (c *Clock) IsWorkingHours() bool {
	h := c.Hour()
	return h >= 8 && h < 18
}

func (c *Clock) IsShopOpen() bool {
	h := c.Hour()
	return h >= 9 && h < 17
}

func (c *Clock) IsSleepingHours() bool {
	h := c.Hour()
	return h >= 22 || h < 6
}

// IsWeekend treats the last two days of every seven as the weekend.
func (c *Clock) IsWeekend() bool {
	return c.day%7 >= 5
}

// State is the persisted form of the clock. Scheduled callbacks are not
// part of it; owners re-register them after a load.
type State struct {
	Minutes    float64 `json:"minutes"`
	Day        int     `json:"day"`
	Scale      float64 `json:"scale"`
	Paused     bool    `json:"paused,omitempty"`
	SavedScale float64 `json:"saved_scale,omitempty"`
}

// Snapshot captures the clock state.
func (c *Clock) Snapshot() State {
	return State{
		Minutes:    c.minutes,
		Day:        c.day,
		Scale:      c.scale,
		Paused:     c.paused,
		SavedScale: c.savedScale,
	}
}

// Restore replaces the clock state without firing events.
func (c *Clock) Restore(s State) {
	c.minutes = normalize(s.Minutes)
	c.day = max(s.Day, 0)
	c.scale = clampScale(s.Scale)
	c.paused = s.Paused
	c.savedScale = s.SavedScale
}

func normalize(m float64) float64 {
	m = math.Mod(m, MinutesPerDay)
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

func clampScale(s float64) float64 {
	return math.Max(MinScale, math.Min(MaxScale, s))
}
