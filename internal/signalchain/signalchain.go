// Package signalchain implements Config and Connection from §3/§4.5: a
// directed graph of Nodes with ID assignment, connection validation,
// and bidirectional translation to and from a serialized
// DeviceConfiguration.
//
// Grounded on the teacher's internal/config/config.go struct-of-slices
// shape (a top-level Config holding ordered slices of typed entries)
// and internal/cip/catalog/validate.go's validation style, adapted
// here to fail fast on the first violation rather than accumulating
// every error.
package signalchain

import (
	"github.com/sciencecorp/synapse-cpp/internal/node"
	"github.com/sciencecorp/synapse-cpp/internal/status"
)

// Connection is an ordered pair of node IDs, per §3.
type Connection struct {
	Src uint32
	Dst uint32
}

// Config is the node collection plus connection list from §3: built
// empty, nodes added one at a time (auto- or explicitly-assigned id),
// connections added referring to already-present nodes.
type Config struct {
	Nodes       []node.Node
	Connections []Connection
}

// New returns an empty Config.
func New() *Config {
	return &Config{}
}

// Add inserts n into the config, assigning it id (or, if id is 0, the
// next sequential id) per §4.5. n must not already carry a non-zero
// id of its own — that would mean the caller is re-adding a node
// already owned by some Config.
func (c *Config) Add(n node.Node, id uint32) (uint32, status.Status) {
	if n.ID != 0 {
		return 0, status.New(status.InvalidArgument, "node already has an id")
	}

	assigned := id
	if assigned == 0 {
		assigned = uint32(len(c.Nodes)) + 1
	}
	for _, existing := range c.Nodes {
		if existing.ID == assigned {
			return 0, status.New(status.InvalidArgument, "id already in use")
		}
	}

	n.ID = assigned
	c.Nodes = append(c.Nodes, n)
	return assigned, status.OKStatus()
}

func (c *Config) find(id uint32) (node.Node, bool) {
	for _, n := range c.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return node.Node{}, false
}

// Connect adds the edge (src, dst), per §4.5. Both endpoints must
// already be present; duplicate edges are rejected.
func (c *Config) Connect(src, dst uint32) status.Status {
	if _, ok := c.find(src); !ok {
		return status.New(status.InvalidArgument, "connect: src node %d not present", src)
	}
	if _, ok := c.find(dst); !ok {
		return status.New(status.InvalidArgument, "connect: dst node %d not present", dst)
	}
	for _, conn := range c.Connections {
		if conn.Src == src && conn.Dst == dst {
			return status.New(status.InvalidArgument, "connection (%d, %d) already exists", src, dst)
		}
	}
	c.Connections = append(c.Connections, Connection{Src: src, Dst: dst})
	return status.OKStatus()
}

// SerializedConnection is the wire form of Connection.
type SerializedConnection struct {
	Src uint32 `yaml:"src"`
	Dst uint32 `yaml:"dst"`
}

// SerializedConfig is the DeviceConfiguration envelope transmitted
// over the RPC channel and returned back from the device.
type SerializedConfig struct {
	Nodes       []node.Envelope        `yaml:"nodes"`
	Connections []SerializedConnection `yaml:"connections"`
}

// Lower emits the serialized DeviceConfiguration, preserving insertion
// order for both nodes and connections, per §4.5 and §5's ordering
// guarantee.
func (c *Config) Lower() (SerializedConfig, status.Status) {
	envs := make([]node.Envelope, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		env, st := n.Lower()
		if !st.Ok() {
			return SerializedConfig{}, st
		}
		envs = append(envs, env)
	}

	conns := make([]SerializedConnection, len(c.Connections))
	for i, conn := range c.Connections {
		conns[i] = SerializedConnection{Src: conn.Src, Dst: conn.Dst}
	}

	return SerializedConfig{Nodes: envs, Connections: conns}, status.OKStatus()
}

// FromSerialized reconstructs a Config from a DeviceConfiguration,
// preserving each node's id from its envelope, then copying
// connections and failing if either endpoint id is unknown, per §4.5.
func FromSerialized(cfg SerializedConfig) (*Config, status.Status) {
	out := &Config{
		Nodes:       make([]node.Node, 0, len(cfg.Nodes)),
		Connections: make([]Connection, 0, len(cfg.Connections)),
	}

	ids := make(map[uint32]struct{}, len(cfg.Nodes))
	for _, env := range cfg.Nodes {
		n, st := node.Reconstruct(env)
		if !st.Ok() {
			return nil, st
		}
		out.Nodes = append(out.Nodes, n)
		ids[n.ID] = struct{}{}
	}

	for _, conn := range cfg.Connections {
		if _, ok := ids[conn.Src]; !ok {
			return nil, status.New(status.InvalidArgument, "connection references unknown src node %d", conn.Src)
		}
		if _, ok := ids[conn.Dst]; !ok {
			return nil, status.New(status.InvalidArgument, "connection references unknown dst node %d", conn.Dst)
		}
		out.Connections = append(out.Connections, Connection{Src: conn.Src, Dst: conn.Dst})
	}

	return out, status.OKStatus()
}
