package game

import (
	"sync"
	"time"
)

// Timer names. Each is a one-shot; scheduling a name again replaces the
// previous timer.
const (
	timerCountdown     = "countdown"
	timerWagerCategory = "wager.category"
	timerWagerHint     = "wager.hint"
	timerWagerRedline  = "wager.redline"
	timerWagerClosing  = "wager.closing"
	timerWagerLock     = "wager.lock"
)

// timerSet holds a room's named one-shot timers. Callbacks re-enter the
// room through its public methods, so they serialize with event handling
// and must re-validate their preconditions.
type timerSet struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newTimerSet() *timerSet {
	return &timerSet{timers: make(map[string]*time.Timer)}
}

// schedule arms a named one-shot. Any previous timer under the same name
// is stopped first.
func (ts *timerSet) schedule(name string, d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if t, ok := ts.timers[name]; ok {
		t.Stop()
	}
	ts.timers[name] = time.AfterFunc(d, fn)
}

// cancel stops one named timer if armed
func (ts *timerSet) cancel(name string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if t, ok := ts.timers[name]; ok {
		t.Stop()
		delete(ts.timers, name)
	}
}

// cancelAll stops every armed timer. Used on room destroy and on phase
// transitions that invalidate the whole set.
func (ts *timerSet) cancelAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for name, t := range ts.timers {
		t.Stop()
		delete(ts.timers, name)
	}
}

// cancelWagerStages stops the five wager stage timers
func (ts *timerSet) cancelWagerStages() {
	for _, name := range []string{timerWagerCategory, timerWagerHint, timerWagerRedline, timerWagerClosing, timerWagerLock} {
		ts.cancel(name)
	}
}
