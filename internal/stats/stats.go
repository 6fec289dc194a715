// Package stats keeps in-memory daily usage counters. Counters reset when
// the UTC day changes; nothing is persisted across restarts.
package stats

import (
	"sync"
	"time"
)

// Snapshot is a point-in-time view of the day's counters.
type Snapshot struct {
	Date          string `json:"date"`
	Downloads     int    `json:"downloads"`
	Visitors      int    `json:"visitors"`
	TotalRequests int    `json:"total_requests"`
}

// Tracker accumulates counters for the current day.
type Tracker struct {
	mu        sync.Mutex
	day       string
	downloads int
	requests  int
	visitors  map[string]struct{}

	// now is swappable for tests.
	now func() time.Time
}

func New() *Tracker {
	t := &Tracker{now: time.Now}
	t.day = t.today()
	t.visitors = make(map[string]struct{})
	return t
}

func (t *Tracker) today() string {
	return t.now().UTC().Format("2006-01-02")
}

// rollover resets counters when the day has changed. Callers hold mu.
func (t *Tracker) rollover() {
	today := t.today()
	if today == t.day {
		return
	}
	t.day = today
	t.downloads = 0
	t.requests = 0
	t.visitors = make(map[string]struct{})
}

// Download records one completed download.
func (t *Tracker) Download() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	t.downloads++
}

// Request records one API request.
func (t *Tracker) Request() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	t.requests++
}

// Visit records a page visit from the given client IP and reports whether
// this is the IP's first visit today. Only first visits count toward the
// visitor total.
func (t *Tracker) Visit(ip string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	if ip == "" {
		return false
	}
	if _, seen := t.visitors[ip]; seen {
		return false
	}
	t.visitors[ip] = struct{}{}
	return true
}

// Snapshot returns the current day's counters.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rollover()
	return Snapshot{
		Date:          t.day,
		Downloads:     t.downloads,
		Visitors:      len(t.visitors),
		TotalRequests: t.requests,
	}
}
