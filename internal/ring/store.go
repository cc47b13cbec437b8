// Package ring implements the fixed-capacity FIFO store for sensor records.
//
// Store is a circular buffer of 1 to 100 slots with head/tail/count indices,
// an overwrite mode for pushes into a full store, an in-place resize that
// keeps FIFO order, and three sticky diagnostic flags.
//
// A Store has no internal locking. Callers that share one across goroutines
// must serialize access themselves.
package ring

import (
	"fmt"
	"iter"

	"github.com/xtxerr/sensorring/internal/errors"
	"github.com/xtxerr/sensorring/internal/record"
	"github.com/xtxerr/sensorring/internal/validation"
)

// Store is a fixed-capacity circular buffer of records.
//
// Invariants: 0 <= count <= len(slots), tail == (head+count) % len(slots).
// When count is 0 the store is empty whatever head and tail hold.
type Store struct {
	slots     []record.Record
	head      int // Oldest occupied slot
	tail      int // Next write position
	count     int
	overwrite bool

	flags Flags
	stats Stats
}

// Flags is a snapshot of the sticky diagnostic flags.
// A flag is set by the event it names and stays set until ClearFlags.
type Flags struct {
	Overflow       bool
	Underflow      bool
	DataLossResize bool
}

// Any reports whether at least one flag is set.
func (f Flags) Any() bool {
	return f.Overflow || f.Underflow || f.DataLossResize
}

// Stats holds lifetime counters for a store.
type Stats struct {
	Pushed    int64 // Records accepted by a push
	Popped    int64 // Records handed out by a pop
	Rejected  int64 // Pushes refused because the store was full
	Evicted   int64 // Records dropped by an overwriting push
	Discarded int64 // Records dropped by a lossy resize
}

// ResizeReport describes the outcome of a successful resize.
type ResizeReport struct {
	Retained  int
	Discarded int
}

// New creates a Store with the given capacity.
// overwrite selects what Push does on a full store.
func New(capacity int, overwrite bool) (*Store, error) {
	if err := validation.ValidateCapacity(capacity); err != nil {
		return nil, err
	}
	return &Store{
		slots:     make([]record.Record, capacity),
		overwrite: overwrite,
	}, nil
}

// MustNew is like New but panics on an out-of-range capacity.
func MustNew(capacity int, overwrite bool) *Store {
	s, err := New(capacity, overwrite)
	if err != nil {
		panic(err)
	}
	return s
}

// Push adds a record using the store's configured overwrite mode.
func (s *Store) Push(rec record.Record) error {
	return s.PushMode(rec, s.overwrite)
}

// PushMode adds a record at the tail.
//
// On a full store with overwrite false the push fails with ErrOverflow and
// the store is unchanged. With overwrite true the oldest record is dropped
// to make room. Both cases set the overflow flag.
func (s *Store) PushMode(rec record.Record, overwrite bool) error {
	if rec == nil {
		return fmt.Errorf("push: nil record: %w", errors.ErrInvalidArgs)
	}
	capacity := len(s.slots)

	if s.count == capacity {
		s.flags.Overflow = true
		if !overwrite {
			s.stats.Rejected++
			return fmt.Errorf("push %s: store full (capacity=%d): %w", rec.Kind(), capacity, errors.ErrOverflow)
		}
		// head == tail here, so the write below reuses the evicted slot.
		s.head = (s.head + 1) % capacity
		s.count--
		s.stats.Evicted++
	}

	s.slots[s.tail] = rec
	s.tail = (s.tail + 1) % capacity
	s.count++
	s.stats.Pushed++

	return nil
}

// Pop removes and returns the oldest record.
// On an empty store it sets the underflow flag and fails with ErrUnderflow.
func (s *Store) Pop() (record.Record, error) {
	if s.count == 0 {
		s.flags.Underflow = true
		return nil, fmt.Errorf("pop: store empty: %w", errors.ErrUnderflow)
	}

	rec := s.slots[s.head]
	s.slots[s.head] = nil
	s.head = (s.head + 1) % len(s.slots)
	s.count--
	s.stats.Popped++

	return rec, nil
}

// PopN removes and returns up to n oldest records in FIFO order.
// An empty store behaves like Pop.
func (s *Store) PopN(n int) ([]record.Record, error) {
	if s.count == 0 {
		s.flags.Underflow = true
		return nil, fmt.Errorf("pop: store empty: %w", errors.ErrUnderflow)
	}
	if n <= 0 {
		return nil, nil
	}

	n = min(n, s.count)
	result := make([]record.Record, 0, n)
	for range n {
		rec, _ := s.Pop()
		result = append(result, rec)
	}
	return result, nil
}

// Peek returns the oldest record without removing it.
// Returns false if the store is empty.
func (s *Store) Peek() (record.Record, bool) {
	if s.count == 0 {
		return nil, false
	}
	return s.slots[s.head], true
}

// PeekNewest returns the newest record without removing it.
// Returns false if the store is empty.
func (s *Store) PeekNewest() (record.Record, bool) {
	if s.count == 0 {
		return nil, false
	}
	idx := (s.tail - 1 + len(s.slots)) % len(s.slots)
	return s.slots[idx], true
}

// All iterates over the stored records from oldest to newest without
// removing them. The store must not be modified during iteration.
func (s *Store) All() iter.Seq2[int, record.Record] {
	return func(yield func(int, record.Record) bool) {
		for i := range s.count {
			if !yield(i, s.slots[(s.head+i)%len(s.slots)]) {
				return
			}
		}
	}
}

// Records returns a FIFO-ordered copy of the stored records.
func (s *Store) Records() []record.Record {
	out := make([]record.Record, 0, s.count)
	for _, rec := range s.All() {
		out = append(out, rec)
	}
	return out
}

// Resize replaces the backing storage with newCapacity slots, keeping FIFO order.
//
// If every record fits, all are kept. Otherwise overwrite decides: false
// fails with ErrResizeRejected and leaves the store untouched; true keeps the
// newCapacity newest records, sets the data-loss flag and reports how many
// were discarded. An out-of-range capacity fails with ErrInvalidCapacity.
func (s *Store) Resize(newCapacity int, overwrite bool) (ResizeReport, error) {
	if err := validation.ValidateCapacity(newCapacity); err != nil {
		return ResizeReport{}, fmt.Errorf("resize: %w", err)
	}

	discard := 0
	if s.count > newCapacity {
		if !overwrite {
			return ResizeReport{}, fmt.Errorf("resize to %d would discard %d of %d records: %w",
				newCapacity, s.count-newCapacity, s.count, errors.ErrResizeRejected)
		}
		discard = s.count - newCapacity
	}

	retained := s.count - discard
	slots := make([]record.Record, newCapacity)
	for i := range retained {
		slots[i] = s.slots[(s.head+discard+i)%len(s.slots)]
	}

	s.slots = slots
	s.head = 0
	s.tail = retained % newCapacity
	s.count = retained

	if discard > 0 {
		s.flags.DataLossResize = true
		s.stats.Discarded += int64(discard)
	}

	return ResizeReport{Retained: retained, Discarded: discard}, nil
}

// Flags returns a snapshot of the sticky flags.
func (s *Store) Flags() Flags {
	return s.flags
}

// ClearFlags resets all sticky flags. Nothing else changes.
func (s *Store) ClearFlags() {
	s.flags = Flags{}
}

// Len returns the current number of records in the store.
func (s *Store) Len() int {
	return s.count
}

// Cap returns the capacity of the store.
func (s *Store) Cap() int {
	return len(s.slots)
}

// Overwrite returns the store's configured push mode.
func (s *Store) Overwrite() bool {
	return s.overwrite
}

// IsEmpty returns true if the store is empty.
func (s *Store) IsEmpty() bool {
	return s.count == 0
}

// IsFull returns true if the store is full.
func (s *Store) IsFull() bool {
	return s.count == len(s.slots)
}

// UsageRatio returns the current usage as a ratio (0.0 - 1.0).
func (s *Store) UsageRatio() float64 {
	return float64(s.count) / float64(len(s.slots))
}

// Stats returns the store's lifetime counters.
func (s *Store) Stats() Stats {
	return s.stats
}

// String describes the store's occupancy and mode.
func (s *Store) String() string {
	return fmt.Sprintf("Store(size=%d/%d, overwrite=%t)", s.count, len(s.slots), s.overwrite)
}
