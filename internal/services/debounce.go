package services

import (
	"sort"
	"sync"
	"time"
)

// Debouncer runs a trailing call per key: every Schedule for a key restarts
// that key's delay, and other keys are unaffected.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[int]*time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[int]*time.Timer),
	}
}

// Schedule (re)starts the delay for key; fn runs once the delay passes
// without another Schedule for the same key.
func (d *Debouncer) Schedule(key int, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[key]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.timers[key] == t
		if current {
			delete(d.timers, key)
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})
	d.timers[key] = t
}

// Pending reports whether key has a call waiting.
func (d *Debouncer) Pending(key int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[key]
	return ok
}

// Cancel stops every waiting call and returns their keys in ascending order.
func (d *Debouncer) Cancel() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]int, 0, len(d.timers))
	for key, t := range d.timers {
		t.Stop()
		keys = append(keys, key)
	}
	d.timers = make(map[int]*time.Timer)
	sort.Ints(keys)
	return keys
}
