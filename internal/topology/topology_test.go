package topology

import "testing"

func testNodes() []Node {
	return []Node{
		{ID: "A", Name: "Pump Station Alpha", Location: "km 0", Lat: 48.2082, Lon: 16.3738},
		{ID: "B", Name: "Valve Station Bravo", Location: "km 12", Lat: 48.2310, Lon: 16.4410},
		{ID: "C", Name: "Compressor Charlie", Location: "km 25", Lat: 48.2550, Lon: 16.5120},
	}
}

func TestNew_DerivesSegments(t *testing.T) {
	p, err := New("line-1", testNodes())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	segs := p.Segments()
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Key != "A-B" || segs[1].Key != "B-C" {
		t.Errorf("unexpected segment keys: %+v", segs)
	}
	if p.ReferenceNode().ID != "A" {
		t.Errorf("expected reference node A, got %s", p.ReferenceNode().ID)
	}
}

func TestNew_RejectsInvalidTopologies(t *testing.T) {
	if _, err := New("", testNodes()); err == nil {
		t.Error("expected error for empty pipeline id")
	}
	if _, err := New("line-1", testNodes()[:1]); err == nil {
		t.Error("expected error for single-node topology")
	}
	dup := testNodes()
	dup[2].ID = "A"
	if _, err := New("line-1", dup); err == nil {
		t.Error("expected error for duplicate node id")
	}
	bad := testNodes()
	bad[1].ID = ""
	if _, err := New("line-1", bad); err == nil {
		t.Error("expected error for empty node id")
	}
}

func TestOutgoingSegment_TerminalNodeHasNone(t *testing.T) {
	p, err := New("line-1", testNodes())
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	if _, ok := p.OutgoingSegment(0); !ok {
		t.Error("expected outgoing segment for first node")
	}
	if _, ok := p.OutgoingSegment(p.Len() - 1); ok {
		t.Error("terminal node must not have an outgoing segment")
	}
}
