package health

import (
	"testing"
)

func TestSnapshot_DefaultsToPerfect(t *testing.T) {
	var nilSnap Snapshot
	if got := nilSnap.Segment("A-B"); got.Score != 100 || len(got.Drivers) != 0 {
		t.Errorf("nil snapshot should default to perfect, got %+v", got)
	}
	snap := Snapshot{"A-B": {Score: 60}}
	if got := snap.Segment("B-C"); got.Score != 100 {
		t.Errorf("missing segment should default to perfect, got %+v", got)
	}
	if got := snap.Segment("A-B"); got.Score != 60 {
		t.Errorf("expected score 60, got %+v", got)
	}
}

func TestStore_ApplyClampsScores(t *testing.T) {
	store := NewStore(nil)
	store.Apply(Snapshot{
		"A-B": {Score: 120},
		"B-C": {Score: -5},
	})
	snap := store.Snapshot()
	if snap.Segment("A-B").Score != 100 {
		t.Errorf("expected clamp to 100, got %f", snap.Segment("A-B").Score)
	}
	if snap.Segment("B-C").Score != 0 {
		t.Errorf("expected clamp to 0, got %f", snap.Segment("B-C").Score)
	}
}

func TestStore_ApplyReplacesWholesale(t *testing.T) {
	store := NewStore(nil)
	store.Apply(Snapshot{"A-B": {Score: 50}})
	store.Apply(Snapshot{"B-C": {Score: 70}})
	snap := store.Snapshot()
	if snap.Segment("A-B").Score != 100 {
		t.Errorf("old segment should be gone after wholesale swap, got %f", snap.Segment("A-B").Score)
	}
	if snap.Segment("B-C").Score != 70 {
		t.Errorf("expected score 70, got %f", snap.Segment("B-C").Score)
	}
}

func TestStore_ApplyRaw(t *testing.T) {
	store := NewStore(nil)
	msg := []byte(`{"segments":{
		"A-B":{"health_score":92.5,"drivers":[{"name":"Minimal Corrosion","severity":"low","magnitude":12}]},
		"B-C":{"health_score":140}
	}}`)
	if err := store.ApplyRaw(msg); err != nil {
		t.Fatalf("ApplyRaw returned error: %v", err)
	}
	snap := store.Snapshot()
	ab := snap.Segment("A-B")
	if ab.Score != 92.5 || len(ab.Drivers) != 1 || ab.Drivers[0].Name != "Minimal Corrosion" {
		t.Errorf("unexpected A-B health: %+v", ab)
	}
	if snap.Segment("B-C").Score != 100 {
		t.Errorf("out-of-range score should clamp to 100, got %f", snap.Segment("B-C").Score)
	}
}

func TestStore_ApplyRaw_MalformedSegmentDefaultsToPerfect(t *testing.T) {
	store := NewStore(nil)
	store.Apply(Snapshot{"C-D": {Score: 40}})
	msg := []byte(`{"segments":{"C-D":"not an object","D-E":{"health_score":58}}}`)
	if err := store.ApplyRaw(msg); err != nil {
		t.Fatalf("ApplyRaw returned error: %v", err)
	}
	snap := store.Snapshot()
	if snap.Segment("C-D").Score != 100 {
		t.Errorf("malformed segment should default to perfect, got %f", snap.Segment("C-D").Score)
	}
	if snap.Segment("D-E").Score != 58 {
		t.Errorf("valid sibling segment should survive, got %f", snap.Segment("D-E").Score)
	}
}

func TestStore_ApplyRaw_UnparseableEnvelopeKeepsLastGood(t *testing.T) {
	store := NewStore(nil)
	store.Apply(Snapshot{"A-B": {Score: 80}})
	if err := store.ApplyRaw([]byte(`{{{`)); err == nil {
		t.Fatal("expected error for unparseable envelope")
	}
	if store.Snapshot().Segment("A-B").Score != 80 {
		t.Error("last good snapshot should remain active after a rejected message")
	}
}
