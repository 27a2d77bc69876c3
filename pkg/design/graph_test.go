package design

import (
	"errors"
	"testing"
)

func TestConnectRejectsTypeMismatch(t *testing.T) {
	g := NewGraph()
	circle := g.AddNode(Circle)
	union := g.AddNode(Union)

	// Sketch output into a mesh input.
	err := g.Connect(circle.Output("out").ID, union.Input("a").ID)
	if err == nil {
		t.Fatal("expected connection to be rejected")
	}
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("error %v, want TypeMismatchError", err)
	}
	if tm.Expected != MeshType || tm.Actual != SketchType {
		t.Errorf("got expected=%s actual=%s", tm.Expected, tm.Actual)
	}
	if len(g.Connections()) != 0 {
		t.Error("rejected edge was stored")
	}
}

func TestConnectUnknownPorts(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	if err := g.Connect("nope", cube.Input("size").ID); err == nil {
		t.Error("connect from missing output succeeded")
	}
	if err := g.Connect(cube.Output("out").ID, "nope"); err == nil {
		t.Error("connect to missing input succeeded")
	}
}

func TestFirstEdgeWins(t *testing.T) {
	g := NewGraph()
	a := g.AddNode(Cube)
	b := g.AddNode(Sphere)
	c := g.AddNode(Center)

	mustConnect(t, g, a.Output("out").ID, c.Input("in").ID)
	mustConnect(t, g, b.Output("out").ID, c.Input("in").ID)

	conn, ok := g.ConnectionTo(c.Input("in").ID)
	if !ok {
		t.Fatal("no connection found")
	}
	if conn.From != a.Output("out").ID {
		t.Errorf("winning edge from %s, want %s", conn.From, a.Output("out").ID)
	}
}

func TestRootsFreshlyDerived(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	center := g.AddNode(Center)

	// Both outputs unconsumed: two roots.
	if got := g.Roots(); len(got) != 2 {
		t.Fatalf("roots = %v, want 2 entries", got)
	}

	mustConnect(t, g, cube.Output("out").ID, center.Input("in").ID)
	roots := g.Roots()
	if len(roots) != 1 || roots[0] != center.Output("out").ID {
		t.Fatalf("roots after connect = %v, want [%s]", roots, center.Output("out").ID)
	}

	// Removing the edge restores the cube output as a root.
	g.Disconnect(center.Input("in").ID)
	if got := g.Roots(); len(got) != 2 {
		t.Fatalf("roots after disconnect = %v, want 2 entries", got)
	}
}

func TestAddNodeDeterministicPorts(t *testing.T) {
	build := func() []InputID {
		g := NewGraph()
		n := g.AddNode(Cylinder)
		ids := make([]InputID, len(n.Inputs))
		for i, p := range n.Inputs {
			ids[i] = p.ID
		}
		return ids
	}
	a, b := build(), build()
	if len(a) != len(b) {
		t.Fatal("port counts differ between instantiations")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("port %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestSetConstantUncheckedWrite(t *testing.T) {
	g := NewGraph()
	sphere := g.AddNode(Sphere)
	port := sphere.Input("radius")

	// Wrong variant is accepted at write time.
	if err := g.SetConstant(port.ID, Vector3Value(Vec3{X: 1})); err != nil {
		t.Fatalf("set constant: %v", err)
	}
	if port.Constant.Type() != Vector3Type {
		t.Errorf("constant type = %s, want vec3", port.Constant.Type())
	}

	if err := g.SetConstant("missing", ScalarValue(1)); err == nil {
		t.Error("set constant on missing port succeeded")
	}
}

func TestGraphDefaultConstants(t *testing.T) {
	g := NewGraph()
	sphere := g.AddNode(Sphere)
	f, err := sphere.Input("radius").Constant.AsScalar()
	if err != nil {
		t.Fatalf("default radius: %v", err)
	}
	if f != 1 {
		t.Errorf("default radius = %g, want 1", f)
	}

	rot := g.AddNode(Rotate)
	axis, err := rot.Input("axis").Constant.AsVector3()
	if err != nil {
		t.Fatalf("default axis: %v", err)
	}
	if (axis != Vec3{Z: 1}) {
		t.Errorf("default axis = %+v, want +Z", axis)
	}
}
