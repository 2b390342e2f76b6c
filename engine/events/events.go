// Package events keeps a bounded journal of script transitions.
// Front ends read it back to narrate where a session has been.
package events

import (
	"fmt"

	"github.com/nathoo/boltcore/engine/script"
)

// DefaultBound is the journal capacity used when none is given.
const DefaultBound = 256

// Record is one script transition: the entry the cursor landed on.
type Record struct {
	Cursor int
	Op     script.Op
	Label  string
	Movie  string
}

// String renders the record the way the front ends print it.
func (r Record) String() string {
	s := fmt.Sprintf("[%d] %s", r.Cursor, r.Op)
	if r.Label != "" {
		s += " " + r.Label
	}
	if r.Movie != "" {
		s += " (" + r.Movie + ")"
	}
	return s
}

// Journal is a bounded FIFO of transition records. Adding past the
// bound evicts the oldest record.
type Journal struct {
	max   int
	total int
	recs  []Record
}

// NewJournal creates a journal holding at most max records. Bounds
// below 1 fall back to DefaultBound.
func NewJournal(max int) *Journal {
	if max < 1 {
		max = DefaultBound
	}
	return &Journal{max: max}
}

// Add appends a record, evicting the oldest when the journal is full.
func (j *Journal) Add(r Record) {
	if len(j.recs) == j.max {
		copy(j.recs, j.recs[1:])
		j.recs = j.recs[:len(j.recs)-1]
	}
	j.recs = append(j.recs, r)
	j.total++
}

// Len returns the number of records held.
func (j *Journal) Len() int {
	return len(j.recs)
}

// Total counts every record ever added, including evicted ones.
// Readers tailing the journal use it to tell how far behind they are.
func (j *Journal) Total() int {
	return j.total
}

// Last returns the most recent record. ok is false when empty.
func (j *Journal) Last() (Record, bool) {
	if len(j.recs) == 0 {
		return Record{}, false
	}
	return j.recs[len(j.recs)-1], true
}

// Records returns a copy of the records, oldest first.
func (j *Journal) Records() []Record {
	out := make([]Record, len(j.recs))
	copy(out, j.recs)
	return out
}
