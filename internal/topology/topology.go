// Static pipeline graph: ordered sensor nodes and the segments between them.
package topology

import (
	"fmt"
)

// Node is one physical measurement point on the pipeline.
type Node struct {
	ID       string
	Name     string
	Location string
	Lat      float64
	Lon      float64
}

// Segment is the pipe run between two consecutive nodes. It carries no state
// of its own; health is looked up from the latest feed snapshot by Key.
type Segment struct {
	Key        string
	Upstream   string
	Downstream string
}

// Pipeline is an immutable ordered topology. The node order defines the
// cascade sequence: losses at segment i affect every node after it.
type Pipeline struct {
	ID       string
	nodes    []Node
	segments []Segment
}

// SegmentKey builds the composite key for the segment between two nodes,
// e.g. "A-B".
func SegmentKey(upstream, downstream string) string {
	return upstream + "-" + downstream
}

// New validates the node list and derives the segment list. Topology errors
// are startup-time contract violations; callers are expected to treat them
// as fatal.
func New(pipelineID string, nodes []Node) (*Pipeline, error) {
	if pipelineID == "" {
		return nil, fmt.Errorf("topology: pipeline id must not be empty")
	}
	if len(nodes) < 2 {
		return nil, fmt.Errorf("topology: need at least 2 nodes, got %d", len(nodes))
	}
	seen := make(map[string]struct{}, len(nodes))
	for i, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("topology: node %d has empty id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("topology: duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	segments := make([]Segment, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		segments = append(segments, Segment{
			Key:        SegmentKey(nodes[i].ID, nodes[i+1].ID),
			Upstream:   nodes[i].ID,
			Downstream: nodes[i+1].ID,
		})
	}
	cp := make([]Node, len(nodes))
	copy(cp, nodes)
	return &Pipeline{ID: pipelineID, nodes: cp, segments: segments}, nil
}

// Nodes returns the nodes in cascade order.
func (p *Pipeline) Nodes() []Node {
	cp := make([]Node, len(p.nodes))
	copy(cp, p.nodes)
	return cp
}

// Segments returns the segments in cascade order.
func (p *Pipeline) Segments() []Segment {
	cp := make([]Segment, len(p.segments))
	copy(cp, p.segments)
	return cp
}

// OutgoingSegment returns the segment downstream of the node at index i.
// The terminal node has no outgoing segment.
func (p *Pipeline) OutgoingSegment(i int) (Segment, bool) {
	if i < 0 || i >= len(p.segments) {
		return Segment{}, false
	}
	return p.segments[i], true
}

// ReferenceNode is the node whose readings feed the trend history. By
// convention it is the first node in cascade order.
func (p *Pipeline) ReferenceNode() Node {
	return p.nodes[0]
}

// Len returns the number of nodes.
func (p *Pipeline) Len() int {
	return len(p.nodes)
}
