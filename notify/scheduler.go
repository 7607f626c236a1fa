// notify/scheduler.go - Client-side unlock notification scheduler
//
// A check pass can return several unlocks at once; the scheduler presents
// them one at a time in a single on-screen slot, with display START times
// spaced a fixed stagger apart. Display starts are scheduled relative to the
// previous item's scheduled start, never to when it actually disappeared, so
// dismissing an item early never shifts the items behind it.
package notify

import (
	"sync"
	"time"
	"vibely/models"
)

// Slot states for the displayed item.
type State int

const (
	StateIdle State = iota
	StateVisible
	StateLeaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateVisible:
		return "visible"
	case StateLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

const (
	DefaultDisplayDuration = 5 * time.Second
	DefaultStaggerInterval = 6 * time.Second
	DefaultExitDuration    = 300 * time.Millisecond
)

// Config configures a Scheduler. Zero durations fall back to the defaults;
// a nil Clock falls back to SystemClock. OnShow and OnHide drive the UI and
// may be nil.
type Config struct {
	DisplayDuration time.Duration
	StaggerInterval time.Duration
	ExitDuration    time.Duration
	Clock           Clock
	OnShow          func(models.Achievement)
	OnHide          func(models.Achievement)
}

type queuedEvent struct {
	achievement models.Achievement
	showAt      time.Time
}

// Scheduler is the single-slot notification queue. All transitions are timer
// driven; the mutex only protects state against timer callbacks, nothing
// blocks in it.
type Scheduler struct {
	displayFor time.Duration
	stagger    time.Duration
	exitFor    time.Duration
	clock      Clock
	onShow     func(models.Achievement)
	onHide     func(models.Achievement)

	mu         sync.Mutex
	state      State
	current    models.Achievement
	queue      []queuedEvent
	lastShowAt time.Time
	hideTimer  Timer
	exitTimer  Timer
	wakeTimer  Timer
	gen        uint64 // bumped on every slot transition; guards stale timers
}

func NewScheduler(cfg Config) *Scheduler {
	s := &Scheduler{
		displayFor: cfg.DisplayDuration,
		stagger:    cfg.StaggerInterval,
		exitFor:    cfg.ExitDuration,
		clock:      cfg.Clock,
		onShow:     cfg.OnShow,
		onHide:     cfg.OnHide,
		state:      StateIdle,
	}
	if s.displayFor <= 0 {
		s.displayFor = DefaultDisplayDuration
	}
	if s.stagger <= 0 {
		s.stagger = DefaultStaggerInterval
	}
	if s.exitFor <= 0 {
		s.exitFor = DefaultExitDuration
	}
	if s.clock == nil {
		s.clock = SystemClock
	}
	return s
}

// State reports the current slot state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Visible returns the achievement currently occupying the slot, if any.
func (s *Scheduler) Visible() (models.Achievement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateVisible {
		return models.Achievement{}, false
	}
	return s.current, true
}

// Pending reports how many events are queued behind the slot.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Enqueue accepts a batch of unlock events in presentation order. If the slot
// is free the first event shows immediately; every later event is scheduled
// one stagger interval after the previous event's scheduled display time.
// An empty or nil batch is a no-op.
func (s *Scheduler) Enqueue(events []models.Achievement) {
	if len(events) == 0 {
		return
	}

	var shown *models.Achievement

	s.mu.Lock()
	now := s.clock.Now()
	for _, achievement := range events {
		if s.state == StateIdle && len(s.queue) == 0 {
			s.showLocked(queuedEvent{achievement: achievement, showAt: now})
			a := achievement
			shown = &a
			continue
		}
		showAt := s.lastShowAt.Add(s.stagger)
		s.queue = append(s.queue, queuedEvent{achievement: achievement, showAt: showAt})
		s.lastShowAt = showAt
	}
	s.mu.Unlock()

	if shown != nil && s.onShow != nil {
		s.onShow(*shown)
	}
}

// Dismiss hides the visible item ahead of its auto-hide timer. Only that
// item's timer is cancelled; queued items keep their scheduled times.
func (s *Scheduler) Dismiss() {
	s.mu.Lock()
	if s.state != StateVisible {
		s.mu.Unlock()
		return
	}
	if s.hideTimer != nil {
		s.hideTimer.Stop()
		s.hideTimer = nil
	}
	hidden := s.beginLeavingLocked()
	s.mu.Unlock()

	if s.onHide != nil {
		s.onHide(hidden)
	}
}

// showLocked moves the event into the slot and arms its auto-hide timer.
func (s *Scheduler) showLocked(ev queuedEvent) {
	s.current = ev.achievement
	s.state = StateVisible
	s.lastShowAt = ev.showAt
	s.gen++
	gen := s.gen
	s.hideTimer = s.clock.AfterFunc(s.displayFor, func() {
		s.autoHide(gen)
	})
}

func (s *Scheduler) autoHide(gen uint64) {
	s.mu.Lock()
	// A dismiss or later show may have raced this timer; the generation
	// check keeps a stale callback from touching the slot.
	if gen != s.gen || s.state != StateVisible {
		s.mu.Unlock()
		return
	}
	hidden := s.beginLeavingLocked()
	s.mu.Unlock()

	if s.onHide != nil {
		s.onHide(hidden)
	}
}

func (s *Scheduler) beginLeavingLocked() models.Achievement {
	s.state = StateLeaving
	s.gen++
	gen := s.gen
	s.exitTimer = s.clock.AfterFunc(s.exitFor, func() {
		s.finishLeave(gen)
	})
	return s.current
}

func (s *Scheduler) finishLeave(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != StateLeaving {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	shown := s.promoteLocked(s.clock.Now())
	s.mu.Unlock()

	if shown != nil && s.onShow != nil {
		s.onShow(*shown)
	}
}

// promoteLocked shows the head of the queue if its scheduled time has
// arrived, or arms a wake timer for it otherwise.
func (s *Scheduler) promoteLocked(now time.Time) *models.Achievement {
	if s.wakeTimer != nil {
		s.wakeTimer.Stop()
		s.wakeTimer = nil
	}
	if len(s.queue) == 0 {
		return nil
	}

	head := s.queue[0]
	if head.showAt.After(now) {
		s.wakeTimer = s.clock.AfterFunc(head.showAt.Sub(now), s.wake)
		return nil
	}

	s.queue = s.queue[1:]
	s.showLocked(head)
	achievement := head.achievement
	return &achievement
}

func (s *Scheduler) wake() {
	s.mu.Lock()
	// The slot can still be occupied when display runs longer than the
	// stagger; the queued item then shows as soon as the slot frees.
	if s.state != StateIdle {
		s.mu.Unlock()
		return
	}
	shown := s.promoteLocked(s.clock.Now())
	s.mu.Unlock()

	if shown != nil && s.onShow != nil {
		s.onShow(*shown)
	}
}
