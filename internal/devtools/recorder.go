package devtools

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apifolio/folio/internal/state"
)

// DefaultHistory is the number of entries a Recorder keeps.
const DefaultHistory = 200

// Entry is one recorded transition.
type Entry struct {
	ID      uuid.UUID    `json:"id"`
	Seq     uint64       `json:"seq"`
	Action  string       `json:"action"`
	Payload state.Action `json:"payload"`
	State   state.State  `json:"state"`
	At      time.Time    `json:"at"`
}

// Recorder keeps a bounded history of store transitions and fans each new
// entry out to listeners.
type Recorder struct {
	mu      sync.RWMutex
	limit   int
	ring    []Entry
	next    int
	seq     uint64
	counts  map[string]uint64
	nextID  int
	listens map[int]func(Entry)
	now     func() time.Time
}

// NewRecorder keeps the last limit entries; a non-positive limit uses
// DefaultHistory.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &Recorder{
		limit:   limit,
		ring:    make([]Entry, 0, limit),
		counts:  make(map[string]uint64),
		listens: make(map[int]func(Entry)),
		now:     time.Now,
	}
}

// Attach records every transition of store until detach is called.
func (r *Recorder) Attach(store *state.Store) (detach func()) {
	return store.Subscribe(func(a state.Action, s state.State) {
		r.Record(a, s)
	})
}

// Record appends a transition and notifies listeners.
func (r *Recorder) Record(a state.Action, s state.State) Entry {
	r.mu.Lock()
	r.seq++
	e := Entry{
		ID:      uuid.New(),
		Seq:     r.seq,
		Action:  a.Name(),
		Payload: a,
		State:   s.Clone(),
		At:      r.now(),
	}
	if len(r.ring) < r.limit {
		r.ring = append(r.ring, e)
	} else {
		r.ring[r.next] = e
	}
	r.next = (r.next + 1) % r.limit
	r.counts[e.Action]++
	listeners := make([]func(Entry), 0, len(r.listens))
	ids := make([]int, 0, len(r.listens))
	for id := range r.listens {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, r.listens[id])
	}
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
	return e
}

// Entries returns up to limit of the most recent entries, oldest first. A
// non-positive limit returns everything retained.
func (r *Recorder) Entries(limit int) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.ring)
	out := make([]Entry, 0, n)
	start := 0
	if n == r.limit {
		start = r.next
	}
	for i := 0; i < n; i++ {
		out = append(out, r.ring[(start+i)%n])
	}
	if limit > 0 && limit < len(out) {
		out = out[len(out)-limit:]
	}
	return out
}

// Counts returns how many times each action has been recorded, including
// entries that have since been evicted.
func (r *Recorder) Counts() map[string]uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]uint64, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Listen registers fn for every subsequent entry.
func (r *Recorder) Listen(fn func(Entry)) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listens[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.listens, id)
		r.mu.Unlock()
	}
}
