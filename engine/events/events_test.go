package events

import (
	"testing"

	"github.com/nathoo/boltcore/engine/script"
)

func TestJournal_AddAndReadBack(t *testing.T) {
	j := NewJournal(8)
	if j.Len() != 0 {
		t.Fatalf("expected empty journal, got %d records", j.Len())
	}
	if _, ok := j.Last(); ok {
		t.Fatal("expected Last to miss on empty journal")
	}

	j.Add(Record{Cursor: 0, Op: script.OpMovie, Movie: "INTR"})
	j.Add(Record{Cursor: 1, Op: script.OpMenu, Label: "menu"})
	j.Add(Record{Cursor: 4, Op: script.OpPuzzle, Label: "grit"})

	if j.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", j.Len())
	}
	last, ok := j.Last()
	if !ok || last.Label != "grit" {
		t.Errorf("expected last record grit, got %+v ok=%v", last, ok)
	}

	recs := j.Records()
	if len(recs) != 3 || recs[0].Movie != "INTR" || recs[2].Cursor != 4 {
		t.Errorf("unexpected records: %+v", recs)
	}
}

func TestJournal_EvictsOldest(t *testing.T) {
	j := NewJournal(3)
	for i := 0; i < 5; i++ {
		j.Add(Record{Cursor: i})
	}

	if j.Len() != 3 {
		t.Fatalf("expected bound of 3, got %d", j.Len())
	}
	if j.Total() != 5 {
		t.Errorf("expected total of 5 including evicted, got %d", j.Total())
	}
	recs := j.Records()
	for i, want := range []int{2, 3, 4} {
		if recs[i].Cursor != want {
			t.Errorf("record %d: expected cursor %d, got %d", i, want, recs[i].Cursor)
		}
	}
}

func TestJournal_DefaultBound(t *testing.T) {
	j := NewJournal(0)
	for i := 0; i < DefaultBound+10; i++ {
		j.Add(Record{Cursor: i})
	}
	if j.Len() != DefaultBound {
		t.Fatalf("expected default bound %d, got %d", DefaultBound, j.Len())
	}
}

func TestJournal_RecordsIsCopy(t *testing.T) {
	j := NewJournal(4)
	j.Add(Record{Cursor: 7})

	recs := j.Records()
	recs[0].Cursor = 99
	if got, _ := j.Last(); got.Cursor != 7 {
		t.Errorf("expected journal unchanged, got cursor %d", got.Cursor)
	}
}

func TestRecord_String(t *testing.T) {
	cases := []struct {
		rec  Record
		want string
	}{
		{Record{Cursor: 0, Op: script.OpMovie, Movie: "INTR"}, "[0] movie (INTR)"},
		{Record{Cursor: 3, Op: script.OpPuzzle, Label: "grit"}, "[3] puzzle grit"},
		{Record{Cursor: 1, Op: script.OpHub, Label: "hub", Movie: "WGRT"}, "[1] hub hub (WGRT)"},
	}
	for _, tc := range cases {
		if got := tc.rec.String(); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}
