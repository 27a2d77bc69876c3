package design

import (
	"fmt"
	"sort"
)

// NodeID identifies a node within a graph.
type NodeID string

// InputID identifies an input port within a graph.
type InputID string

// OutputID identifies an output port within a graph.
type OutputID string

// InputPort is an instantiated input. Constant holds the inline fallback
// value used when no connection feeds the port.
type InputPort struct {
	ID       InputID
	Node     NodeID
	Name     string
	Type     PortType
	Kind     InputKind
	Constant Value
}

// OutputPort is an instantiated output.
type OutputPort struct {
	ID   OutputID
	Node NodeID
	Name string
	Type PortType
}

// Connection is a directed edge from an output port to an input port.
type Connection struct {
	From OutputID
	To   InputID
}

// Node is an instantiated catalog kind with its ports, in signature order.
type Node struct {
	ID       NodeID
	Template Template
	Inputs   []*InputPort
	Outputs  []*OutputPort
}

// Input returns the named input port, or nil.
func (n *Node) Input(name string) *InputPort {
	for _, p := range n.Inputs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Output returns the named output port, or nil.
func (n *Node) Output(name string) *OutputPort {
	for _, p := range n.Outputs {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Graph holds nodes, ports and connections. It is a plain container: the
// only semantic enforcement it performs is the type check on Connect.
type Graph struct {
	nodes   map[NodeID]*Node
	inputs  map[InputID]*InputPort
	outputs map[OutputID]*OutputPort

	// connections keeps insertion order; the first edge into an input
	// is the one evaluation sees.
	connections []Connection

	nextID int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[NodeID]*Node),
		inputs:  make(map[InputID]*InputPort),
		outputs: make(map[OutputID]*OutputPort),
	}
}

// AddNode instantiates a catalog kind. Port IDs are derived from the node
// ID and port name, so instantiation is deterministic.
func (g *Graph) AddNode(t Template) *Node {
	g.nextID++
	id := NodeID(fmt.Sprintf("%s-%d", t, g.nextID))

	sig := t.Signature()
	node := &Node{ID: id, Template: t}

	for _, spec := range sig.Inputs {
		port := &InputPort{
			ID:       InputID(fmt.Sprintf("%s.in.%s", id, spec.Name)),
			Node:     id,
			Name:     spec.Name,
			Type:     spec.Type,
			Kind:     spec.Kind,
			Constant: spec.Default,
		}
		node.Inputs = append(node.Inputs, port)
		g.inputs[port.ID] = port
	}
	for _, spec := range sig.Outputs {
		port := &OutputPort{
			ID:   OutputID(fmt.Sprintf("%s.out.%s", id, spec.Name)),
			Node: id,
			Name: spec.Name,
			Type: spec.Type,
		}
		node.Outputs = append(node.Outputs, port)
		g.outputs[port.ID] = port
	}

	g.nodes[id] = node
	return node
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id NodeID) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes sorted by ID.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Connect adds an edge from an output port to an input port. The port
// types must match; a mismatched edge is rejected here rather than at
// evaluation time.
func (g *Graph) Connect(from OutputID, to InputID) error {
	src, ok := g.outputs[from]
	if !ok {
		return fmt.Errorf("connect: no such output %s", from)
	}
	dst, ok := g.inputs[to]
	if !ok {
		return fmt.Errorf("connect: no such input %s", to)
	}
	if src.Type != dst.Type {
		return &TypeMismatchError{Port: to, Expected: dst.Type, Actual: src.Type}
	}
	g.connections = append(g.connections, Connection{From: from, To: to})
	return nil
}

// Disconnect removes every edge into the given input port.
func (g *Graph) Disconnect(to InputID) {
	kept := g.connections[:0]
	for _, c := range g.connections {
		if c.To != to {
			kept = append(kept, c)
		}
	}
	g.connections = kept
}

// ConnectionTo returns the edge feeding an input. When several edges feed
// the same input, the first one added wins.
func (g *Graph) ConnectionTo(to InputID) (Connection, bool) {
	for _, c := range g.connections {
		if c.To == to {
			return c, true
		}
	}
	return Connection{}, false
}

// Connections returns all edges in insertion order.
func (g *Graph) Connections() []Connection {
	return append([]Connection(nil), g.connections...)
}

// SetConstant overwrites an input port's inline constant. The value is
// not type checked here; a wrong variant surfaces as a TypeMismatch when
// the port is read during evaluation.
func (g *Graph) SetConstant(id InputID, v Value) error {
	port, ok := g.inputs[id]
	if !ok {
		return fmt.Errorf("set constant: no such input %s", id)
	}
	port.Constant = v
	return nil
}

// Input returns the input port with the given ID, or nil.
func (g *Graph) Input(id InputID) *InputPort {
	return g.inputs[id]
}

// Output returns the output port with the given ID, or nil.
func (g *Graph) Output(id OutputID) *OutputPort {
	return g.outputs[id]
}

// Roots returns the output ports that feed no input, sorted by ID. The
// set is derived fresh on every call so it always reflects the current
// edges.
func (g *Graph) Roots() []OutputID {
	consumed := make(map[OutputID]bool, len(g.connections))
	for _, c := range g.connections {
		consumed[c.From] = true
	}

	var roots []OutputID
	for id := range g.outputs {
		if !consumed[id] {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}
