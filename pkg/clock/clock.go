// Package clock provides the engine's monotonic time source: a single type
// that behaves as a real-time clock in LIVE mode, a caller-driven virtual
// clock in BACKTEST mode, and an auto-advancing virtual clock in SIMULATED
// mode, plus a scheduler for delayed and recurring callbacks.
package clock

import (
	"container/heap"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Mode selects how a Clock's notion of "now" advances.
type Mode int

const (
	// Live reports real wall-clock time; set/advance are silent no-ops.
	Live Mode = iota
	// Backtest reports an internally stored virtual time advanced only by
	// explicit SetTime/AdvanceTime calls; wall time is never consulted.
	Backtest
	// Simulated reports virtual time that a background dispatcher advances
	// automatically at a configurable rate relative to wall-clock time.
	Simulated
)

func (m Mode) String() string {
	switch m {
	case Live:
		return "live"
	case Backtest:
		return "backtest"
	case Simulated:
		return "simulated"
	default:
		return "unknown"
	}
}

// ParseMode parses the config-file spelling of a mode ("live", "backtest",
// "simulated"), defaulting to Live on anything else.
func ParseMode(s string) Mode {
	switch s {
	case "backtest":
		return Backtest
	case "simulated":
		return Simulated
	default:
		return Live
	}
}

// Callback is a scheduled unit of work. A panicking Callback is caught and
// dropped — it never brings down the dispatcher, and a recurring Callback
// that keeps panicking keeps being rescheduled.
type Callback func()

// OnError reports a dropped callback panic; source is always "clock".
type OnError func(source, message string)

// pollInterval is the dispatcher's polling granularity in LIVE and
// SIMULATED modes, matching the ≈100µs discretization the engine's other
// background loops use.
const pollInterval = 100 * time.Microsecond

// Clock is the engine's time source and scheduler. The zero value is not
// usable; construct with New.
type Clock struct {
	mu      sync.Mutex
	mode    Mode
	virtual time.Time
	rate    float64
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	events  eventHeap
	onError OnError
}

// Option configures a Clock at construction time.
type Option func(*Clock)

// WithRate sets the SIMULATED-mode playback rate: virtual time advances at
// rate × wall-clock elapsed time. Rate is ignored in LIVE and BACKTEST.
// Defaults to 1.0 (real-time pace) when never set — the spec leaves this
// rate implementation-configurable.
func WithRate(rate float64) Option {
	return func(c *Clock) { c.rate = rate }
}

// WithStartTime sets the initial virtual time for BACKTEST/SIMULATED
// clocks. Defaults to the Unix epoch when unset.
func WithStartTime(t time.Time) Option {
	return func(c *Clock) { c.virtual = t }
}

// WithOnError registers a callback invoked when a scheduled Callback panics.
func WithOnError(f OnError) Option {
	return func(c *Clock) { c.onError = f }
}

// New constructs a Clock in the given mode.
func New(mode Mode, opts ...Option) *Clock {
	c := &Clock{
		mode:    mode,
		virtual: time.Unix(0, 0),
		rate:    1.0,
	}
	for _, opt := range opts {
		opt(c)
	}
	heap.Init(&c.events)
	return c
}

// Mode returns the clock's operating mode.
func (c *Clock) Mode() Mode { return c.mode }

// Now returns the clock's current time. Total order within one Clock
// instance; comparison across distinct Clocks is undefined.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *Clock) nowLocked() time.Time {
	if c.mode == Live {
		return time.Now()
	}
	return c.virtual
}

// SetTime sets virtual time directly. A silent no-op in LIVE mode. In
// BACKTEST mode, any callbacks now due fire synchronously, in timestamp
// order, before SetTime returns — BACKTEST has no background dispatcher,
// so this is the only point at which its callbacks ever run.
func (c *Clock) SetTime(t time.Time) {
	c.mu.Lock()
	if c.mode == Live {
		c.mu.Unlock()
		return
	}
	c.virtual = t
	due := c.popDueLocked()
	c.mu.Unlock()
	c.fireAll(due)
}

// AdvanceTime advances virtual time by d. Same no-op/synchronous-fire rules
// as SetTime.
func (c *Clock) AdvanceTime(d time.Duration) {
	c.mu.Lock()
	if c.mode == Live {
		c.mu.Unlock()
		return
	}
	c.virtual = c.virtual.Add(d)
	due := c.popDueLocked()
	c.mu.Unlock()
	c.fireAll(due)
}

// ScheduleOnce delivers cb no earlier than Now()+delay.
func (c *Clock) ScheduleOnce(delay time.Duration, cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	heap.Push(&c.events, &event{at: c.nowLocked().Add(delay), cb: cb})
}

// ScheduleRecurring delivers cb first at Now()+interval and then at
// monotonic interval steps regardless of how long each delivery took.
// Missed deliveries — the dispatcher falling behind by more than one
// interval — are coalesced into a single catch-up. The returned cancel
// function stops all future deliveries of this series; it is idempotent.
func (c *Clock) ScheduleRecurring(interval time.Duration, cb Callback) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancelled := new(int32)
	heap.Push(&c.events, &event{
		at:        c.nowLocked().Add(interval),
		interval:  interval,
		cb:        cb,
		cancelled: cancelled,
	})
	return func() { atomic.StoreInt32(cancelled, 1) }
}

// Start spawns the dispatcher in LIVE and SIMULATED modes; idempotent. In
// BACKTEST mode there is nothing to spawn — callbacks fire synchronously
// from SetTime/AdvanceTime — so Start only flips the running flag that
// keeps Start and Stop idempotent.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	mode := c.mode
	c.mu.Unlock()

	if mode == Backtest {
		close(c.doneCh)
		return
	}
	go c.dispatchLoop()
}

// Stop joins the dispatcher started by Start; idempotent. Callbacks already
// dequeued when Stop is called run to completion; nothing is preempted
// mid-execution.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	stopCh := c.stopCh
	doneCh := c.doneCh
	c.mu.Unlock()

	close(stopCh)
	<-doneCh
}

func (c *Clock) dispatchLoop() {
	defer close(c.doneCh)
	lastWall := time.Now()
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.mu.Lock()
		if c.mode == Simulated {
			now := time.Now()
			elapsed := now.Sub(lastWall)
			lastWall = now
			c.virtual = c.virtual.Add(time.Duration(float64(elapsed) * c.rate))
		}
		due := c.popDueLocked()
		c.mu.Unlock()

		c.fireAll(due)
		time.Sleep(pollInterval)
	}
}

// popDueLocked pops and returns every event due at or before the clock's
// current time, in due order, rescheduling any recurring event it pops.
// Callers must hold c.mu.
func (c *Clock) popDueLocked() []*event {
	now := c.nowLocked()
	var due []*event
	for c.events.Len() > 0 {
		next := c.events[0]
		if next.at.After(now) {
			break
		}
		heap.Pop(&c.events)
		if next.isCancelled() {
			continue
		}
		due = append(due, next)
		if next.interval > 0 {
			nextAt := next.at.Add(next.interval)
			if !nextAt.After(now) {
				// The dispatcher fell behind by one or more full intervals;
				// coalesce the backlog into a single catch-up delivery and
				// resume the cadence from now.
				nextAt = now.Add(next.interval)
			}
			heap.Push(&c.events, &event{
				at:        nextAt,
				interval:  next.interval,
				cb:        next.cb,
				cancelled: next.cancelled,
			})
		}
	}
	return due
}

func (c *Clock) fireAll(events []*event) {
	for _, e := range events {
		if e.isCancelled() {
			continue
		}
		c.safeCall(e.cb)
	}
}

func (c *Clock) safeCall(cb Callback) {
	defer func() {
		if r := recover(); r != nil && c.onError != nil {
			c.onError("clock", fmt.Sprintf("callback panic: %v", r))
		}
	}()
	cb()
}

type event struct {
	at        time.Time
	interval  time.Duration
	cb        Callback
	cancelled *int32
}

func (e *event) isCancelled() bool {
	return e.cancelled != nil && atomic.LoadInt32(e.cancelled) != 0
}

type eventHeap []*event

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}
