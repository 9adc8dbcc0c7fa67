package signalchain

import (
	"testing"

	"github.com/sciencecorp/synapse-cpp/internal/node"
)

func srcNode() node.Node {
	return node.Node{Kind: node.KindBroadbandSource, Payload: node.BroadbandSourcePayload{SampleRate: 30000}}
}

func TestAddAutoAssignsSequentialID(t *testing.T) {
	c := New()
	id1, st := c.Add(srcNode(), 0)
	if !st.Ok() || id1 != 1 {
		t.Fatalf("got id=%d st=%v, want 1/ok", id1, st)
	}
	id2, st := c.Add(srcNode(), 0)
	if !st.Ok() || id2 != 2 {
		t.Fatalf("got id=%d st=%v, want 2/ok", id2, st)
	}
}

func TestAddExplicitIDCollision(t *testing.T) {
	c := New()
	if _, st := c.Add(srcNode(), 5); !st.Ok() {
		t.Fatalf("first add with explicit id failed: %v", st)
	}
	if _, st := c.Add(srcNode(), 5); st.Ok() {
		t.Fatalf("expected invalid_argument on colliding explicit id")
	}
}

func TestAddRejectsNodeThatAlreadyHasID(t *testing.T) {
	c := New()
	n := srcNode()
	n.ID = 9
	if _, st := c.Add(n, 0); st.Ok() {
		t.Fatalf("expected invalid_argument for node that already carries an id")
	}
}

func TestConnectTwiceRejected(t *testing.T) {
	c := New()
	a, _ := c.Add(srcNode(), 0)
	b, _ := c.Add(srcNode(), 0)
	if st := c.Connect(a, b); !st.Ok() {
		t.Fatalf("first connect failed: %v", st)
	}
	if st := c.Connect(a, b); st.Ok() {
		t.Fatalf("expected invalid_argument on duplicate connection")
	}
}

func TestConnectMissingEndpointRejected(t *testing.T) {
	c := New()
	a, _ := c.Add(srcNode(), 0)
	if st := c.Connect(a, 999); st.Ok() {
		t.Fatalf("expected invalid_argument for missing dst endpoint")
	}
}

func TestLowerThenFromSerializedRoundTrips(t *testing.T) {
	c := New()
	a, _ := c.Add(srcNode(), 0)
	b, _ := c.Add(node.Node{Kind: node.KindDiskWriter, Payload: node.DiskWriterPayload{Path: "/data/out.ndtp"}}, 0)
	if st := c.Connect(a, b); !st.Ok() {
		t.Fatalf("connect failed: %v", st)
	}

	serialized, st := c.Lower()
	if !st.Ok() {
		t.Fatalf("lower failed: %v", st)
	}

	rebuilt, st := FromSerialized(serialized)
	if !st.Ok() {
		t.Fatalf("from_serialized failed: %v", st)
	}
	if len(rebuilt.Nodes) != 2 || len(rebuilt.Connections) != 1 {
		t.Fatalf("round trip mismatch: %+v", rebuilt)
	}
	if rebuilt.Connections[0].Src != a || rebuilt.Connections[0].Dst != b {
		t.Fatalf("connection endpoints not preserved: %+v", rebuilt.Connections[0])
	}
}
