package design

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/timschmidt/alumina-ui/pkg/kernel"
)

// stubSolid and stubShape are opaque handles for evaluator tests; the
// evaluator never looks inside them.
type stubSolid struct{ tag string }

func (stubSolid) BoundingBox() (min, max [3]float64) { return }

type stubShape struct{ tag string }

func (stubShape) BoundingBox() (min, max [2]float64) { return }

// stubKernel counts calls per operation and records rotation arguments,
// so tests can assert memoization and unit conversion.
type stubKernel struct {
	calls      map[string]int
	lastRotate [3]float64
	lastArray  struct {
		count      int
		dx, dy, dz float64
	}
	sphereErr error
}

func newStubKernel() *stubKernel {
	return &stubKernel{calls: make(map[string]int)}
}

func (k *stubKernel) hit(op string) { k.calls[op]++ }

func (k *stubKernel) Box(x, y, z float64) (kernel.Solid, error) {
	k.hit("box")
	return stubSolid{tag: "box"}, nil
}

func (k *stubKernel) Sphere(radius float64) (kernel.Solid, error) {
	k.hit("sphere")
	if k.sphereErr != nil {
		return nil, k.sphereErr
	}
	return stubSolid{tag: "sphere"}, nil
}

func (k *stubKernel) Cylinder(height, radius float64, segments int) (kernel.Solid, error) {
	k.hit("cylinder")
	return stubSolid{tag: "cylinder"}, nil
}

func (k *stubKernel) Circle(radius float64) (kernel.Shape, error) {
	k.hit("circle")
	return stubShape{tag: "circle"}, nil
}

func (k *stubKernel) Rectangle(w, h float64) (kernel.Shape, error) {
	k.hit("rectangle")
	return stubShape{tag: "rectangle"}, nil
}

func (k *stubKernel) Polygon(sides int, radius float64) (kernel.Shape, error) {
	k.hit("polygon")
	return stubShape{tag: "polygon"}, nil
}

func (k *stubKernel) Union(a, b kernel.Solid) kernel.Solid        { k.hit("union"); return stubSolid{tag: "union"} }
func (k *stubKernel) Difference(a, b kernel.Solid) kernel.Solid   { k.hit("difference"); return stubSolid{} }
func (k *stubKernel) Intersection(a, b kernel.Solid) kernel.Solid { k.hit("intersection"); return stubSolid{} }
func (k *stubKernel) Union2D(a, b kernel.Shape) kernel.Shape      { k.hit("union2d"); return stubShape{} }
func (k *stubKernel) Difference2D(a, b kernel.Shape) kernel.Shape {
	k.hit("difference2d")
	return stubShape{}
}
func (k *stubKernel) Intersection2D(a, b kernel.Shape) kernel.Shape {
	k.hit("intersection2d")
	return stubShape{}
}

func (k *stubKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.hit("translate")
	return stubSolid{tag: "translate"}
}

func (k *stubKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.hit("rotate")
	k.lastRotate = [3]float64{x, y, z}
	return stubSolid{tag: "rotate"}
}

func (k *stubKernel) Scale(s kernel.Solid, x, y, z float64) kernel.Solid {
	k.hit("scale")
	return stubSolid{}
}

func (k *stubKernel) Mirror(s kernel.Solid, nx, ny, nz float64) kernel.Solid {
	k.hit("mirror")
	return stubSolid{}
}

func (k *stubKernel) Center(s kernel.Solid) kernel.Solid { k.hit("center"); return stubSolid{} }
func (k *stubKernel) Float(s kernel.Solid) kernel.Solid  { k.hit("float"); return stubSolid{} }
func (k *stubKernel) Invert(s kernel.Solid) kernel.Solid { k.hit("invert"); return stubSolid{} }

func (k *stubKernel) Translate2D(s kernel.Shape, x, y float64) kernel.Shape {
	k.hit("translate2d")
	return stubShape{}
}

func (k *stubKernel) Rotate2D(s kernel.Shape, degrees float64) kernel.Shape {
	k.hit("rotate2d")
	k.lastRotate = [3]float64{0, 0, degrees}
	return stubShape{}
}

func (k *stubKernel) Scale2D(s kernel.Shape, x, y float64) kernel.Shape {
	k.hit("scale2d")
	return stubShape{}
}

func (k *stubKernel) Mirror2D(s kernel.Shape, nx, ny float64) kernel.Shape {
	k.hit("mirror2d")
	return stubShape{}
}

func (k *stubKernel) Center2D(s kernel.Shape) kernel.Shape { k.hit("center2d"); return stubShape{} }
func (k *stubKernel) Invert2D(s kernel.Shape) kernel.Shape { k.hit("invert2d"); return stubShape{} }

func (k *stubKernel) LinearArray(s kernel.Solid, count int, dx, dy, dz float64) kernel.Solid {
	k.hit("linear-array")
	k.lastArray.count = count
	k.lastArray.dx, k.lastArray.dy, k.lastArray.dz = dx, dy, dz
	return stubSolid{}
}

func (k *stubKernel) GridArray(s kernel.Solid, nx, ny, nz int, dx, dy, dz float64) kernel.Solid {
	k.hit("grid-array")
	return stubSolid{}
}

func (k *stubKernel) ArcArray(s kernel.Solid, count int, sweepDegrees float64) kernel.Solid {
	k.hit("arc-array")
	k.lastArray.count = count
	k.lastArray.dx = sweepDegrees
	return stubSolid{}
}

func (k *stubKernel) Extrude(profile kernel.Shape, height float64) (kernel.Solid, error) {
	k.hit("extrude")
	return stubSolid{tag: "extrude"}, nil
}

func (k *stubKernel) ExtrudeVector(profile kernel.Shape, dx, dy, dz float64) (kernel.Solid, error) {
	k.hit("extrude-vector")
	return stubSolid{}, nil
}

func (k *stubKernel) Revolve(profile kernel.Shape, angleDegrees float64, segments int) (kernel.Solid, error) {
	k.hit("revolve")
	return stubSolid{}, nil
}

func (k *stubKernel) Loft(bottom, top kernel.Shape, height float64) (kernel.Solid, error) {
	k.hit("loft")
	return stubSolid{}, nil
}

func (k *stubKernel) Sweep(profile, path kernel.Shape) (kernel.Solid, error) {
	k.hit("sweep")
	return stubSolid{}, nil
}

func (k *stubKernel) Flatten(s kernel.Solid) (kernel.Shape, error) {
	k.hit("flatten")
	return stubShape{tag: "flatten"}, nil
}

func (k *stubKernel) Slice(s kernel.Solid, z float64) (kernel.Shape, error) {
	k.hit("slice")
	return stubShape{tag: "slice"}, nil
}

func (k *stubKernel) Gyroid(s kernel.Solid, resolution int, period, iso float64) kernel.Solid {
	k.hit("gyroid")
	return stubSolid{}
}

func (k *stubKernel) SchwarzP(s kernel.Solid, resolution int, period, iso float64) kernel.Solid {
	k.hit("schwarz-p")
	return stubSolid{}
}

func (k *stubKernel) SchwarzD(s kernel.Solid, resolution int, period, iso float64) kernel.Solid {
	k.hit("schwarz-d")
	return stubSolid{}
}

func (k *stubKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.hit("to-mesh")
	return &kernel.Mesh{}, nil
}

// mustConnect wires an edge or fails the test.
func mustConnect(t *testing.T, g *Graph, from OutputID, to InputID) {
	t.Helper()
	if err := g.Connect(from, to); err != nil {
		t.Fatalf("connect %s -> %s: %v", from, to, err)
	}
}

func TestEvaluateDiamondMemoized(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	left := g.AddNode(Translate)
	right := g.AddNode(Translate)
	union := g.AddNode(Union)

	mustConnect(t, g, cube.Output("out").ID, left.Input("in").ID)
	mustConnect(t, g, cube.Output("out").ID, right.Input("in").ID)
	mustConnect(t, g, left.Output("out").ID, union.Input("a").ID)
	mustConnect(t, g, right.Output("out").ID, union.Input("b").ID)

	k := newStubKernel()
	ev := NewEvaluator(k)
	if _, err := ev.Evaluate(g, union.Output("out").ID); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if got := k.calls["box"]; got != 1 {
		t.Errorf("cube evaluated %d times, want 1 (memoized)", got)
	}
	if got := k.calls["translate"]; got != 2 {
		t.Errorf("translate evaluated %d times, want 2", got)
	}
	if got := k.calls["union"]; got != 1 {
		t.Errorf("union evaluated %d times, want 1", got)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	root := cube.Output("out").ID

	k := newStubKernel()
	ev := NewEvaluator(k)

	for i := 0; i < 3; i++ {
		if _, err := ev.Evaluate(g, root); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	// Fresh cache per pass: the primitive is rebuilt each time.
	if got := k.calls["box"]; got != 3 {
		t.Errorf("cube evaluated %d times over 3 passes, want 3", got)
	}
}

func TestEvaluateRootTypeMismatch(t *testing.T) {
	g := NewGraph()
	circle := g.AddNode(Circle)
	root := circle.Output("out").ID

	ev := NewEvaluator(newStubKernel())
	_, err := ev.Evaluate(g, root)
	if err == nil {
		t.Fatal("expected root type error for sketch root")
	}

	var rte *RootTypeError
	if !errors.As(err, &rte) {
		t.Fatalf("error %v, want RootTypeError", err)
	}
	if rte.Expected != MeshType || rte.Actual != SketchType {
		t.Errorf("got expected=%s actual=%s", rte.Expected, rte.Actual)
	}
	var ee *EvalError
	if !errors.As(err, &ee) || ee.Root != root {
		t.Errorf("error not wrapped in EvalError naming root %s: %v", root, err)
	}
}

func TestEvaluateSketchRoot(t *testing.T) {
	g := NewGraph()
	circle := g.AddNode(Circle)
	root := circle.Output("out").ID

	ev := NewEvaluator(newStubKernel())
	shape, err := ev.EvaluateSketch(g, root)
	if err != nil {
		t.Fatalf("evaluate sketch: %v", err)
	}
	if shape == nil {
		t.Fatal("nil shape")
	}

	// The mesh entry point must still reject this root.
	if _, err := ev.Evaluate(g, root); err == nil {
		t.Error("Evaluate accepted a sketch root")
	}
	// And the sketch entry point rejects mesh roots.
	cube := g.AddNode(Cube)
	if _, err := ev.EvaluateSketch(g, cube.Output("out").ID); err == nil {
		t.Error("EvaluateSketch accepted a mesh root")
	}
}

func TestEvaluateMissingInput(t *testing.T) {
	g := NewGraph()
	union := g.AddNode(Union)
	cube := g.AddNode(Cube)
	mustConnect(t, g, cube.Output("out").ID, union.Input("a").ID)
	// union.b left unconnected; mesh inputs have no constant fallback.

	ev := NewEvaluator(newStubKernel())
	_, err := ev.Evaluate(g, union.Output("out").ID)
	if err == nil {
		t.Fatal("expected missing input error")
	}
	var mi *MissingInputError
	if !errors.As(err, &mi) {
		t.Fatalf("error %v, want MissingInputError", err)
	}
	if mi.Node != union.ID || mi.Port != "b" {
		t.Errorf("got node=%s port=%s, want %s/b", mi.Node, mi.Port, union.ID)
	}
}

func TestMissingInputErrorMessages(t *testing.T) {
	g := NewGraph()
	union := g.AddNode(Union)
	k := newStubKernel()

	t.Run("unconnected port", func(t *testing.T) {
		_, err := NewEvaluator(k).Evaluate(g, union.Output("out").ID)
		var mi *MissingInputError
		if !errors.As(err, &mi) {
			t.Fatalf("error %v, want MissingInputError", err)
		}
		if mi.Unknown {
			t.Error("unconnected port flagged as unknown")
		}
		if !strings.Contains(mi.Error(), "not connected") {
			t.Errorf("message %q does not describe a missing connection", mi.Error())
		}
	})

	t.Run("port the node does not carry", func(t *testing.T) {
		st := &evalState{g: g, k: k, trace: nopSink{}, cache: make(map[OutputID]Value)}
		_, err := st.input(union, "bogus")
		var mi *MissingInputError
		if !errors.As(err, &mi) {
			t.Fatalf("error %v, want MissingInputError", err)
		}
		if !mi.Unknown {
			t.Error("unknown port not flagged")
		}
		if !strings.Contains(mi.Error(), "no input named") {
			t.Errorf("message %q does not describe an unknown port", mi.Error())
		}
	})
}

func TestEvaluateConstantTypeMismatch(t *testing.T) {
	g := NewGraph()
	sphere := g.AddNode(Sphere)
	radius := sphere.Input("radius")
	// Constants are not type checked on write; the mismatch surfaces
	// at evaluation, naming the port.
	if err := g.SetConstant(radius.ID, Vector3Value(Vec3{X: 1})); err != nil {
		t.Fatalf("set constant: %v", err)
	}

	ev := NewEvaluator(newStubKernel())
	_, err := ev.Evaluate(g, sphere.Output("out").ID)
	if err == nil {
		t.Fatal("expected type mismatch")
	}
	var tm *TypeMismatchError
	if !errors.As(err, &tm) {
		t.Fatalf("error %v, want TypeMismatchError", err)
	}
	if tm.Port != radius.ID {
		t.Errorf("mismatch port %s, want %s", tm.Port, radius.ID)
	}
	if tm.Expected != ScalarType || tm.Actual != Vector3Type {
		t.Errorf("got expected=%s actual=%s", tm.Expected, tm.Actual)
	}
}

func TestEvaluateKernelFailure(t *testing.T) {
	g := NewGraph()
	sphere := g.AddNode(Sphere)

	k := newStubKernel()
	k.sphereErr = errors.New("degenerate radius")
	ev := NewEvaluator(k)

	_, err := ev.Evaluate(g, sphere.Output("out").ID)
	if err == nil {
		t.Fatal("expected kernel failure")
	}
	var ke *KernelError
	if !errors.As(err, &ke) {
		t.Fatalf("error %v, want KernelError", err)
	}
	if ke.Node != sphere.ID {
		t.Errorf("kernel error node %s, want %s", ke.Node, sphere.ID)
	}
	if !errors.Is(err, k.sphereErr) {
		t.Error("kernel cause not reachable through Unwrap")
	}
}

func TestRotateConvertsRadiansAndNormalizesAxis(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	rot := g.AddNode(Rotate)
	mustConnect(t, g, cube.Output("out").ID, rot.Input("in").ID)

	// Axis (0,0,2) normalizes to +Z; pi/2 radians becomes 90 degrees.
	if err := g.SetConstant(rot.Input("axis").ID, Vector3Value(Vec3{Z: 2})); err != nil {
		t.Fatal(err)
	}
	if err := g.SetConstant(rot.Input("angle").ID, ScalarValue(math.Pi/2)); err != nil {
		t.Fatal(err)
	}

	k := newStubKernel()
	ev := NewEvaluator(k)
	if _, err := ev.Evaluate(g, rot.Output("out").ID); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	want := [3]float64{0, 0, 90}
	for i := range want {
		if math.Abs(k.lastRotate[i]-want[i]) > 1e-9 {
			t.Fatalf("rotate euler = %v, want %v", k.lastRotate, want)
		}
	}
}

func TestCountScalarTruncationAndClamp(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  int
	}{
		{"truncates toward zero", 3.9, 3},
		{"exact", 2, 2},
		{"negative clamps to zero", -2.5, 0},
		{"fraction clamps to zero", 0.9, 0},
		{"NaN collapses to zero", math.NaN(), 0},
		{"positive infinity collapses to zero", math.Inf(1), 0},
		{"negative infinity collapses to zero", math.Inf(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGraph()
			cube := g.AddNode(Cube)
			arr := g.AddNode(LinearArray)
			mustConnect(t, g, cube.Output("out").ID, arr.Input("in").ID)
			if err := g.SetConstant(arr.Input("count").ID, ScalarValue(tt.value)); err != nil {
				t.Fatal(err)
			}

			k := newStubKernel()
			ev := NewEvaluator(k)
			if _, err := ev.Evaluate(g, arr.Output("out").ID); err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if k.lastArray.count != tt.want {
				t.Errorf("count %g passed to kernel as %d, want %d", tt.value, k.lastArray.count, tt.want)
			}
		})
	}
}

func TestArcArraySweepConvertedToDegrees(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	arc := g.AddNode(ArcArray)
	mustConnect(t, g, cube.Output("out").ID, arc.Input("in").ID)
	if err := g.SetConstant(arc.Input("sweep").ID, ScalarValue(math.Pi)); err != nil {
		t.Fatal(err)
	}

	k := newStubKernel()
	ev := NewEvaluator(k)
	if _, err := ev.Evaluate(g, arc.Output("out").ID); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if math.Abs(k.lastArray.dx-180) > 1e-9 {
		t.Errorf("sweep passed as %g degrees, want 180", k.lastArray.dx)
	}
}

func TestFirstEdgeWinsAtEvaluation(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	sphere := g.AddNode(Sphere)
	center := g.AddNode(Center)

	mustConnect(t, g, cube.Output("out").ID, center.Input("in").ID)
	mustConnect(t, g, sphere.Output("out").ID, center.Input("in").ID)

	k := newStubKernel()
	ev := NewEvaluator(k)
	if _, err := ev.Evaluate(g, center.Output("out").ID); err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if k.calls["box"] != 1 {
		t.Errorf("first edge source evaluated %d times, want 1", k.calls["box"])
	}
	if k.calls["sphere"] != 0 {
		t.Errorf("second edge source evaluated %d times, want 0", k.calls["sphere"])
	}
}

// traceRecorder captures sink events for assertion.
type traceRecorder struct {
	nodes  []NodeID
	cached int
	roots  []OutputID
}

func (r *traceRecorder) NodeEvaluated(node NodeID, t Template, cached bool) {
	r.nodes = append(r.nodes, node)
	if cached {
		r.cached++
	}
}

func (r *traceRecorder) RootEvaluated(root OutputID, err error) {
	r.roots = append(r.roots, root)
}

func TestTraceSinkObservesEvaluation(t *testing.T) {
	g := NewGraph()
	cube := g.AddNode(Cube)
	left := g.AddNode(Translate)
	right := g.AddNode(Translate)
	union := g.AddNode(Union)
	mustConnect(t, g, cube.Output("out").ID, left.Input("in").ID)
	mustConnect(t, g, cube.Output("out").ID, right.Input("in").ID)
	mustConnect(t, g, left.Output("out").ID, union.Input("a").ID)
	mustConnect(t, g, right.Output("out").ID, union.Input("b").ID)

	rec := &traceRecorder{}
	ev := NewEvaluator(newStubKernel())
	ev.Trace = rec

	root := union.Output("out").ID
	if _, err := ev.Evaluate(g, root); err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	if rec.cached != 1 {
		t.Errorf("cache hits observed = %d, want 1 (shared cube)", rec.cached)
	}
	if len(rec.roots) != 1 || rec.roots[0] != root {
		t.Errorf("root events = %v, want [%s]", rec.roots, root)
	}
}
