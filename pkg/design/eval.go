package design

import (
	"fmt"
	"math"

	"github.com/timschmidt/alumina-ui/pkg/kernel"
)

// Evaluator runs a design graph against a geometry kernel. Evaluation is
// synchronous and never mutates the graph; each call uses a fresh memo
// cache, so repeated calls are idempotent.
type Evaluator struct {
	Kernel kernel.Kernel
	Trace  TraceSink
}

// NewEvaluator returns an evaluator over the given kernel with tracing
// disabled.
func NewEvaluator(k kernel.Kernel) *Evaluator {
	return &Evaluator{Kernel: k, Trace: nopSink{}}
}

// Evaluate computes the solid at a root output port. The port must carry
// a mesh value; any other variant is a root type error. All failures come
// back wrapped in an EvalError naming the root.
func (e *Evaluator) Evaluate(g *Graph, root OutputID) (kernel.Solid, error) {
	v, err := e.evaluateRoot(g, root)
	if err != nil {
		return nil, err
	}
	solid, err := v.AsMesh()
	if err != nil {
		return nil, &EvalError{Root: root, Err: &RootTypeError{
			Root: root, Expected: MeshType, Actual: v.Type(),
		}}
	}
	return solid, nil
}

// EvaluateSketch computes the planar shape at a sketch-typed root.
func (e *Evaluator) EvaluateSketch(g *Graph, root OutputID) (kernel.Shape, error) {
	v, err := e.evaluateRoot(g, root)
	if err != nil {
		return nil, err
	}
	shape, err := v.AsSketch()
	if err != nil {
		return nil, &EvalError{Root: root, Err: &RootTypeError{
			Root: root, Expected: SketchType, Actual: v.Type(),
		}}
	}
	return shape, nil
}

func (e *Evaluator) evaluateRoot(g *Graph, root OutputID) (Value, error) {
	trace := e.Trace
	if trace == nil {
		trace = nopSink{}
	}
	if g.Output(root) == nil {
		err := fmt.Errorf("no such output %s", root)
		trace.RootEvaluated(root, err)
		return Value{}, &EvalError{Root: root, Err: err}
	}

	st := &evalState{
		g:     g,
		k:     e.Kernel,
		trace: trace,
		cache: make(map[OutputID]Value),
	}
	v, err := st.evalOutput(root)
	trace.RootEvaluated(root, err)
	if err != nil {
		return Value{}, &EvalError{Root: root, Err: err}
	}
	return v, nil
}

// evalState is the per-pass context: one cache, one kernel, one sink.
type evalState struct {
	g     *Graph
	k     kernel.Kernel
	trace TraceSink
	cache map[OutputID]Value
}

// evalOutput resolves the value at an output port, memoized per pass so
// diamonds in the graph evaluate each node once.
func (st *evalState) evalOutput(out OutputID) (Value, error) {
	if v, ok := st.cache[out]; ok {
		port := st.g.Output(out)
		st.trace.NodeEvaluated(port.Node, st.g.Node(port.Node).Template, true)
		return v, nil
	}

	port := st.g.Output(out)
	node := st.g.Node(port.Node)

	h, ok := handlers[node.Template]
	if !ok {
		return Value{}, fmt.Errorf("node %s: no handler for kind %s", node.ID, node.Template)
	}
	v, err := h(st, node)
	if err != nil {
		return Value{}, err
	}

	st.cache[out] = v
	st.trace.NodeEvaluated(node.ID, node.Template, false)
	return v, nil
}

// input resolves one input port: connection first, then the inline
// constant. A port name the node does not carry is a catalog bug, and a
// connection-only port with no edge is a user error; both surface as
// MissingInputError.
func (st *evalState) input(n *Node, name string) (Value, error) {
	port := n.Input(name)
	if port == nil {
		return Value{}, &MissingInputError{Node: n.ID, Port: name, Unknown: true}
	}
	if c, ok := st.g.ConnectionTo(port.ID); ok {
		return st.evalOutput(c.From)
	}
	if port.Kind == ConnectionOnly {
		return Value{}, &MissingInputError{Node: n.ID, Port: name}
	}
	return port.Constant, nil
}

func (st *evalState) scalar(n *Node, name string) (float64, error) {
	v, err := st.input(n, name)
	if err != nil {
		return 0, err
	}
	f, err := v.AsScalar()
	if err != nil {
		return 0, attachPort(err, n, name)
	}
	return f, nil
}

func (st *evalState) vec3(n *Node, name string) (Vec3, error) {
	v, err := st.input(n, name)
	if err != nil {
		return Vec3{}, err
	}
	vec, err := v.AsVector3()
	if err != nil {
		return Vec3{}, attachPort(err, n, name)
	}
	return vec, nil
}

func (st *evalState) sketch(n *Node, name string) (kernel.Shape, error) {
	v, err := st.input(n, name)
	if err != nil {
		return nil, err
	}
	s, err := v.AsSketch()
	if err != nil {
		return nil, attachPort(err, n, name)
	}
	return s, nil
}

func (st *evalState) mesh(n *Node, name string) (kernel.Solid, error) {
	v, err := st.input(n, name)
	if err != nil {
		return nil, err
	}
	s, err := v.AsMesh()
	if err != nil {
		return nil, attachPort(err, n, name)
	}
	return s, nil
}

// count reads an integer-like scalar: truncated toward zero, clamped to
// be non-negative, with NaN and infinities collapsing to zero.
func (st *evalState) count(n *Node, name string) (int, error) {
	f, err := st.scalar(n, name)
	if err != nil {
		return 0, err
	}
	return clampCount(f), nil
}

// attachPort fills in the port ID on a type mismatch surfaced by an
// unwrap, so the error names where the wrong value arrived.
func attachPort(err error, n *Node, name string) error {
	if tm, ok := err.(*TypeMismatchError); ok && tm.Port == "" {
		if port := n.Input(name); port != nil {
			tm.Port = port.ID
		}
	}
	return err
}

// degrees converts a stored radian angle for the kernel boundary.
func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// handler computes one node's output value.
type handler func(st *evalState, n *Node) (Value, error)

// handlers is the dispatch table from node kind to implementation, built
// once at package init.
var handlers map[Template]handler

func init() {
	handlers = map[Template]handler{
		Cube:      evalCube,
		Sphere:    evalSphere,
		Cylinder:  evalCylinder,
		Circle:    evalCircle,
		Rectangle: evalRectangle,
		Polygon:   evalPolygon,

		Union:     solidBoolean(func(k kernel.Kernel, a, b kernel.Solid) kernel.Solid { return k.Union(a, b) }),
		Subtract:  solidBoolean(func(k kernel.Kernel, a, b kernel.Solid) kernel.Solid { return k.Difference(a, b) }),
		Intersect: solidBoolean(func(k kernel.Kernel, a, b kernel.Solid) kernel.Solid { return k.Intersection(a, b) }),

		SketchUnion:     sketchBoolean(func(k kernel.Kernel, a, b kernel.Shape) kernel.Shape { return k.Union2D(a, b) }),
		SketchSubtract:  sketchBoolean(func(k kernel.Kernel, a, b kernel.Shape) kernel.Shape { return k.Difference2D(a, b) }),
		SketchIntersect: sketchBoolean(func(k kernel.Kernel, a, b kernel.Shape) kernel.Shape { return k.Intersection2D(a, b) }),

		Translate: evalTranslate,
		Rotate:    evalRotate,
		Scale:     evalScale,
		Mirror:    evalMirror,
		Center:    solidUnary(func(k kernel.Kernel, s kernel.Solid) kernel.Solid { return k.Center(s) }),
		Float:     solidUnary(func(k kernel.Kernel, s kernel.Solid) kernel.Solid { return k.Float(s) }),
		Invert:    solidUnary(func(k kernel.Kernel, s kernel.Solid) kernel.Solid { return k.Invert(s) }),

		SketchTranslate: evalSketchTranslate,
		SketchRotate:    evalSketchRotate,
		SketchScale:     evalSketchScale,
		SketchMirror:    evalSketchMirror,
		SketchCenter:    sketchUnary(func(k kernel.Kernel, s kernel.Shape) kernel.Shape { return k.Center2D(s) }),
		SketchInvert:    sketchUnary(func(k kernel.Kernel, s kernel.Shape) kernel.Shape { return k.Invert2D(s) }),

		LinearArray: evalLinearArray,
		GridArray:   evalGridArray,
		ArcArray:    evalArcArray,

		Extrude:       evalExtrude,
		ExtrudeVector: evalExtrudeVector,
		Revolve:       evalRevolve,
		Loft:          evalLoft,
		Sweep:         evalSweep,

		Flatten: evalFlatten,
		Slice:   evalSlice,

		Gyroid:   lattice(func(k kernel.Kernel, s kernel.Solid, res int, period, iso float64) kernel.Solid {
			return k.Gyroid(s, res, period, iso)
		}),
		SchwarzP: lattice(func(k kernel.Kernel, s kernel.Solid, res int, period, iso float64) kernel.Solid {
			return k.SchwarzP(s, res, period, iso)
		}),
		SchwarzD: lattice(func(k kernel.Kernel, s kernel.Solid, res int, period, iso float64) kernel.Solid {
			return k.SchwarzD(s, res, period, iso)
		}),
	}
}

// solidBoolean builds a handler for two-solid combinators.
func solidBoolean(op func(kernel.Kernel, kernel.Solid, kernel.Solid) kernel.Solid) handler {
	return func(st *evalState, n *Node) (Value, error) {
		a, err := st.mesh(n, "a")
		if err != nil {
			return Value{}, err
		}
		b, err := st.mesh(n, "b")
		if err != nil {
			return Value{}, err
		}
		return MeshValue(op(st.k, a, b)), nil
	}
}

// sketchBoolean builds a handler for two-shape combinators.
func sketchBoolean(op func(kernel.Kernel, kernel.Shape, kernel.Shape) kernel.Shape) handler {
	return func(st *evalState, n *Node) (Value, error) {
		a, err := st.sketch(n, "a")
		if err != nil {
			return Value{}, err
		}
		b, err := st.sketch(n, "b")
		if err != nil {
			return Value{}, err
		}
		return SketchValue(op(st.k, a, b)), nil
	}
}

// solidUnary builds a handler for single-solid transforms.
func solidUnary(op func(kernel.Kernel, kernel.Solid) kernel.Solid) handler {
	return func(st *evalState, n *Node) (Value, error) {
		s, err := st.mesh(n, "in")
		if err != nil {
			return Value{}, err
		}
		return MeshValue(op(st.k, s)), nil
	}
}

// sketchUnary builds a handler for single-shape transforms.
func sketchUnary(op func(kernel.Kernel, kernel.Shape) kernel.Shape) handler {
	return func(st *evalState, n *Node) (Value, error) {
		s, err := st.sketch(n, "in")
		if err != nil {
			return Value{}, err
		}
		return SketchValue(op(st.k, s)), nil
	}
}

// lattice builds a handler for the TPMS infill kinds.
func lattice(op func(kernel.Kernel, kernel.Solid, int, float64, float64) kernel.Solid) handler {
	return func(st *evalState, n *Node) (Value, error) {
		s, err := st.mesh(n, "in")
		if err != nil {
			return Value{}, err
		}
		res, err := st.count(n, "resolution")
		if err != nil {
			return Value{}, err
		}
		period, err := st.scalar(n, "period")
		if err != nil {
			return Value{}, err
		}
		iso, err := st.scalar(n, "iso")
		if err != nil {
			return Value{}, err
		}
		return MeshValue(op(st.k, s, res, period, iso)), nil
	}
}

func evalCube(st *evalState, n *Node) (Value, error) {
	size, err := st.scalar(n, "size")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Box(size, size, size)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalSphere(st *evalState, n *Node) (Value, error) {
	radius, err := st.scalar(n, "radius")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Sphere(radius)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalCylinder(st *evalState, n *Node) (Value, error) {
	radius, err := st.scalar(n, "radius")
	if err != nil {
		return Value{}, err
	}
	height, err := st.scalar(n, "height")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Cylinder(height, radius, 0)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalCircle(st *evalState, n *Node) (Value, error) {
	radius, err := st.scalar(n, "radius")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Circle(radius)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return SketchValue(s), nil
}

func evalRectangle(st *evalState, n *Node) (Value, error) {
	width, err := st.scalar(n, "width")
	if err != nil {
		return Value{}, err
	}
	height, err := st.scalar(n, "height")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Rectangle(width, height)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return SketchValue(s), nil
}

func evalPolygon(st *evalState, n *Node) (Value, error) {
	sides, err := st.count(n, "sides")
	if err != nil {
		return Value{}, err
	}
	radius, err := st.scalar(n, "radius")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Polygon(sides, radius)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return SketchValue(s), nil
}

func evalTranslate(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	off, err := st.vec3(n, "offset")
	if err != nil {
		return Value{}, err
	}
	return MeshValue(st.k.Translate(s, off.X, off.Y, off.Z)), nil
}

// evalRotate turns an axis-angle rotation into the kernel's Euler form:
// the normalized axis scaled by the angle in degrees.
func evalRotate(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	axis, err := st.vec3(n, "axis")
	if err != nil {
		return Value{}, err
	}
	angle, err := st.scalar(n, "angle")
	if err != nil {
		return Value{}, err
	}
	euler := axis.Normalize().Scale(degrees(angle))
	return MeshValue(st.k.Rotate(s, euler.X, euler.Y, euler.Z)), nil
}

func evalScale(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	f, err := st.vec3(n, "factors")
	if err != nil {
		return Value{}, err
	}
	return MeshValue(st.k.Scale(s, f.X, f.Y, f.Z)), nil
}

func evalMirror(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	normal, err := st.vec3(n, "normal")
	if err != nil {
		return Value{}, err
	}
	return MeshValue(st.k.Mirror(s, normal.X, normal.Y, normal.Z)), nil
}

func evalSketchTranslate(st *evalState, n *Node) (Value, error) {
	s, err := st.sketch(n, "in")
	if err != nil {
		return Value{}, err
	}
	off, err := st.vec3(n, "offset")
	if err != nil {
		return Value{}, err
	}
	return SketchValue(st.k.Translate2D(s, off.X, off.Y)), nil
}

func evalSketchRotate(st *evalState, n *Node) (Value, error) {
	s, err := st.sketch(n, "in")
	if err != nil {
		return Value{}, err
	}
	angle, err := st.scalar(n, "angle")
	if err != nil {
		return Value{}, err
	}
	return SketchValue(st.k.Rotate2D(s, degrees(angle))), nil
}

func evalSketchScale(st *evalState, n *Node) (Value, error) {
	s, err := st.sketch(n, "in")
	if err != nil {
		return Value{}, err
	}
	f, err := st.vec3(n, "factors")
	if err != nil {
		return Value{}, err
	}
	return SketchValue(st.k.Scale2D(s, f.X, f.Y)), nil
}

func evalSketchMirror(st *evalState, n *Node) (Value, error) {
	s, err := st.sketch(n, "in")
	if err != nil {
		return Value{}, err
	}
	normal, err := st.vec3(n, "normal")
	if err != nil {
		return Value{}, err
	}
	return SketchValue(st.k.Mirror2D(s, normal.X, normal.Y)), nil
}

func evalLinearArray(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	count, err := st.count(n, "count")
	if err != nil {
		return Value{}, err
	}
	step, err := st.vec3(n, "step")
	if err != nil {
		return Value{}, err
	}
	return MeshValue(st.k.LinearArray(s, count, step.X, step.Y, step.Z)), nil
}

func evalGridArray(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	counts, err := st.vec3(n, "counts")
	if err != nil {
		return Value{}, err
	}
	step, err := st.vec3(n, "step")
	if err != nil {
		return Value{}, err
	}
	nx, ny, nz := clampCount(counts.X), clampCount(counts.Y), clampCount(counts.Z)
	return MeshValue(st.k.GridArray(s, nx, ny, nz, step.X, step.Y, step.Z)), nil
}

func evalArcArray(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	count, err := st.count(n, "count")
	if err != nil {
		return Value{}, err
	}
	sweep, err := st.scalar(n, "sweep")
	if err != nil {
		return Value{}, err
	}
	return MeshValue(st.k.ArcArray(s, count, degrees(sweep))), nil
}

func evalExtrude(st *evalState, n *Node) (Value, error) {
	profile, err := st.sketch(n, "profile")
	if err != nil {
		return Value{}, err
	}
	height, err := st.scalar(n, "height")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Extrude(profile, height)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalExtrudeVector(st *evalState, n *Node) (Value, error) {
	profile, err := st.sketch(n, "profile")
	if err != nil {
		return Value{}, err
	}
	dir, err := st.vec3(n, "direction")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.ExtrudeVector(profile, dir.X, dir.Y, dir.Z)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalRevolve(st *evalState, n *Node) (Value, error) {
	profile, err := st.sketch(n, "profile")
	if err != nil {
		return Value{}, err
	}
	angle, err := st.scalar(n, "angle")
	if err != nil {
		return Value{}, err
	}
	segments, err := st.count(n, "segments")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Revolve(profile, degrees(angle), segments)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalLoft(st *evalState, n *Node) (Value, error) {
	bottom, err := st.sketch(n, "bottom")
	if err != nil {
		return Value{}, err
	}
	top, err := st.sketch(n, "top")
	if err != nil {
		return Value{}, err
	}
	height, err := st.scalar(n, "height")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Loft(bottom, top, height)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalSweep(st *evalState, n *Node) (Value, error) {
	profile, err := st.sketch(n, "profile")
	if err != nil {
		return Value{}, err
	}
	path, err := st.sketch(n, "path")
	if err != nil {
		return Value{}, err
	}
	s, err := st.k.Sweep(profile, path)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return MeshValue(s), nil
}

func evalFlatten(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	shape, err := st.k.Flatten(s)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return SketchValue(shape), nil
}

func evalSlice(st *evalState, n *Node) (Value, error) {
	s, err := st.mesh(n, "in")
	if err != nil {
		return Value{}, err
	}
	z, err := st.scalar(n, "z")
	if err != nil {
		return Value{}, err
	}
	shape, err := st.k.Slice(s, z)
	if err != nil {
		return Value{}, &KernelError{Node: n.ID, Err: err}
	}
	return SketchValue(shape), nil
}

// clampCount collapses non-finite values to zero before converting,
// since float-to-int conversion of NaN and infinities is
// platform-defined and can saturate positive instead of negative.
func clampCount(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	c := int(f)
	if c < 0 {
		return 0
	}
	return c
}
