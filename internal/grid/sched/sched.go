// Package sched coalesces grid side effects onto the bubbletea message
// loop. Every scheduled kind has at most one live handle; scheduling a
// kind again supersedes the previous handle, and stale timer messages are
// rejected by generation.
package sched

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// FramePeriod approximates one terminal frame. Drag and scroll handling
// commit at most one state change per frame.
const FramePeriod = 16 * time.Millisecond

// FireMsg is delivered when a scheduled kind comes due. Receivers must
// pass it through Accept before acting on it.
type FireMsg struct {
	Owner string
	Kind  string
	Gen   uint64
}

type entry struct {
	gen     uint64
	pending bool
}

// Scheduler owns cancelable handles for debounced and frame-coalesced
// work. It is not safe for concurrent use; a grid touches its scheduler
// only from its own Update.
type Scheduler struct {
	owner   string
	kinds   map[string]*entry
	stopped bool
}

// New creates a scheduler. The owner tag keeps FireMsgs from one grid
// instance out of another's Update.
func New(owner string) *Scheduler {
	return &Scheduler{owner: owner, kinds: make(map[string]*entry)}
}

// Schedule arms kind to fire after d, superseding any pending schedule of
// the same kind.
func (s *Scheduler) Schedule(kind string, d time.Duration) tea.Cmd {
	if s.stopped {
		return nil
	}
	e := s.kinds[kind]
	if e == nil {
		e = &entry{}
		s.kinds[kind] = e
	}
	e.gen++
	e.pending = true
	gen := e.gen
	owner := s.owner
	return tea.Tick(d, func(time.Time) tea.Msg {
		return FireMsg{Owner: owner, Kind: kind, Gen: gen}
	})
}

// Coalesce arms kind only if it is not already pending, so repeated calls
// within the window share a single firing. Returns nil when a schedule is
// already in flight.
func (s *Scheduler) Coalesce(kind string, d time.Duration) tea.Cmd {
	if e := s.kinds[kind]; e != nil && e.pending {
		return nil
	}
	return s.Schedule(kind, d)
}

// Accept reports whether msg is the live handle for its kind and consumes
// it. Superseded or cancelled firings return false.
func (s *Scheduler) Accept(msg FireMsg) bool {
	if s.stopped || msg.Owner != s.owner {
		return false
	}
	e := s.kinds[msg.Kind]
	if e == nil || !e.pending || e.gen != msg.Gen {
		return false
	}
	e.pending = false
	return true
}

// Pending reports whether kind has a live schedule.
func (s *Scheduler) Pending(kind string) bool {
	e := s.kinds[kind]
	return e != nil && e.pending
}

// Cancel drops any pending schedule for kind. The timer may still fire,
// but Accept will reject it.
func (s *Scheduler) Cancel(kind string) {
	if e := s.kinds[kind]; e != nil {
		e.pending = false
		e.gen++
	}
}

// Stop cancels everything; used on unmount. A stopped scheduler never
// accepts or schedules again.
func (s *Scheduler) Stop() {
	s.stopped = true
	for _, e := range s.kinds {
		e.pending = false
	}
}
