package design

import "testing"

func findingCodes(findings []Finding) map[string]int {
	codes := make(map[string]int)
	for _, f := range findings {
		codes[f.Code]++
	}
	return codes
}

func TestValidateCleanGraph(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	center := g.AddNode(Center)
	mustConnect(t, g, cube.Output("out").ID, center.Input("in").ID)

	if findings := Validate(g); len(findings) != 0 {
		t.Errorf("clean graph reported findings: %v", findings)
	}
}

func TestValidateDetectsCycle(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Center)
	b := g.AddNode(Invert)
	mustConnect(t, g, a.Output("out").ID, b.Input("in").ID)
	mustConnect(t, g, b.Output("out").ID, a.Input("in").ID)

	codes := findingCodes(Validate(g))
	if codes["cycle"] == 0 {
		t.Error("cycle not reported")
	}
}

func TestValidateDetectsSelfLoop(t *testing.T) {
	g := NewGraph()
	n := g.AddNode(Center)
	mustConnect(t, g, n.Output("out").ID, n.Input("in").ID)

	codes := findingCodes(Validate(g))
	if codes["cycle"] == 0 {
		t.Error("self loop not reported as cycle")
	}
}

func TestValidateReportsMultipleEdges(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Cube)
	b := g.AddNode(Sphere)
	c := g.AddNode(Center)
	mustConnect(t, g, a.Output("out").ID, c.Input("in").ID)
	mustConnect(t, g, b.Output("out").ID, c.Input("in").ID)

	codes := findingCodes(Validate(g))
	if codes["multiple-edges"] != 1 {
		t.Errorf("multiple-edges findings = %d, want 1", codes["multiple-edges"])
	}
}
