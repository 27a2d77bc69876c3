package design

import (
	"fmt"
	"sort"
)

// Finding is one structural problem reported by Validate.
type Finding struct {
	Code    string
	Message string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Code, f.Message)
}

// Validate checks a graph for structural problems the container does not
// prevent: cycles, connections with dangling endpoints, and inputs fed
// by more than one edge. Evaluation does not require a prior Validate;
// it simply recurses forever on a cycle and uses the first edge into a
// multiply-fed input, so editors should surface these findings.
func Validate(g *Graph) []Finding {
	var findings []Finding
	findings = append(findings, checkEndpoints(g)...)
	findings = append(findings, checkFanIn(g)...)
	findings = append(findings, checkCycles(g)...)
	return findings
}

func checkEndpoints(g *Graph) []Finding {
	var findings []Finding
	for _, c := range g.Connections() {
		if g.Output(c.From) == nil {
			findings = append(findings, Finding{
				Code:    "dangling-output",
				Message: fmt.Sprintf("connection references missing output %s", c.From),
			})
		}
		if g.Input(c.To) == nil {
			findings = append(findings, Finding{
				Code:    "dangling-input",
				Message: fmt.Sprintf("connection references missing input %s", c.To),
			})
		}
	}
	return findings
}

func checkFanIn(g *Graph) []Finding {
	seen := make(map[InputID]int)
	for _, c := range g.Connections() {
		seen[c.To]++
	}

	var ids []InputID
	for id, n := range seen {
		if n > 1 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var findings []Finding
	for _, id := range ids {
		findings = append(findings, Finding{
			Code:    "multiple-edges",
			Message: fmt.Sprintf("input %s has %d incoming edges; only the first is used", id, seen[id]),
		})
	}
	return findings
}

// checkCycles runs a three-color depth-first search over the node
// dependency graph (edges point from consumer to producer).
func checkCycles(g *Graph) []Finding {
	deps := make(map[NodeID][]NodeID)
	for _, c := range g.Connections() {
		src := g.Output(c.From)
		dst := g.Input(c.To)
		if src == nil || dst == nil {
			continue
		}
		deps[dst.Node] = append(deps[dst.Node], src.Node)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[NodeID]int)

	var cyclic []NodeID
	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		switch color[id] {
		case gray:
			return true
		case black:
			return false
		}
		color[id] = gray
		for _, dep := range deps[id] {
			if visit(dep) {
				color[id] = black
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, n := range g.Nodes() {
		if color[n.ID] == white && visit(n.ID) {
			cyclic = append(cyclic, n.ID)
		}
	}

	var findings []Finding
	for _, id := range cyclic {
		findings = append(findings, Finding{
			Code:    "cycle",
			Message: fmt.Sprintf("node %s participates in a dependency cycle", id),
		})
	}
	return findings
}
