package design

// Template identifies a node kind in the catalog. The catalog is closed:
// every kind the engine can evaluate appears here.
type Template int

const (
	// Solid primitives.
	Cube Template = iota
	Sphere
	Cylinder

	// Sketch primitives.
	Circle
	Rectangle
	Polygon

	// Solid booleans.
	Union
	Subtract
	Intersect

	// Sketch booleans.
	SketchUnion
	SketchSubtract
	SketchIntersect

	// Solid transforms.
	Translate
	Rotate
	Scale
	Mirror
	Center
	Float
	Invert

	// Sketch transforms.
	SketchTranslate
	SketchRotate
	SketchScale
	SketchMirror
	SketchCenter
	SketchInvert

	// Distribution.
	LinearArray
	GridArray
	ArcArray

	// Lifting.
	Extrude
	ExtrudeVector
	Revolve
	Loft
	Sweep

	// Solid to sketch.
	Flatten
	Slice

	// Implicit lattices.
	Gyroid
	SchwarzP
	SchwarzD

	templateCount
)

// AllTemplates returns every catalog kind in declaration order.
func AllTemplates() []Template {
	all := make([]Template, templateCount)
	for i := range all {
		all[i] = Template(i)
	}
	return all
}

// InputKind says how an input port may be fed.
type InputKind int

const (
	// ConnectionOrConstant inputs fall back to their inline constant
	// when no edge feeds them.
	ConnectionOrConstant InputKind = iota
	// ConnectionOnly inputs must be fed by an edge.
	ConnectionOnly
)

// InputSpec describes one input port of a node kind.
type InputSpec struct {
	Name    string
	Type    PortType
	Kind    InputKind
	Default Value
}

// OutputSpec describes one output port of a node kind.
type OutputSpec struct {
	Name string
	Type PortType
}

// Signature is the full port layout of a node kind.
type Signature struct {
	Inputs  []InputSpec
	Outputs []OutputSpec
}

// sigBuilder accumulates port specs. Geometry inputs are connection-only;
// numeric inputs carry an inline constant fallback.
type sigBuilder struct {
	sig Signature
}

func newSig() *sigBuilder {
	return &sigBuilder{}
}

func (b *sigBuilder) scalarIn(name string, def float64) *sigBuilder {
	b.sig.Inputs = append(b.sig.Inputs, InputSpec{
		Name: name, Type: ScalarType, Kind: ConnectionOrConstant,
		Default: ScalarValue(def),
	})
	return b
}

func (b *sigBuilder) vec3In(name string, def Vec3) *sigBuilder {
	b.sig.Inputs = append(b.sig.Inputs, InputSpec{
		Name: name, Type: Vector3Type, Kind: ConnectionOrConstant,
		Default: Vector3Value(def),
	})
	return b
}

func (b *sigBuilder) sketchIn(name string) *sigBuilder {
	b.sig.Inputs = append(b.sig.Inputs, InputSpec{
		Name: name, Type: SketchType, Kind: ConnectionOnly,
	})
	return b
}

func (b *sigBuilder) meshIn(name string) *sigBuilder {
	b.sig.Inputs = append(b.sig.Inputs, InputSpec{
		Name: name, Type: MeshType, Kind: ConnectionOnly,
	})
	return b
}

func (b *sigBuilder) sketchOut(name string) *sigBuilder {
	b.sig.Outputs = append(b.sig.Outputs, OutputSpec{Name: name, Type: SketchType})
	return b
}

func (b *sigBuilder) meshOut(name string) *sigBuilder {
	b.sig.Outputs = append(b.sig.Outputs, OutputSpec{Name: name, Type: MeshType})
	return b
}

func (b *sigBuilder) build() Signature {
	return b.sig
}

// Signature returns the port layout for a node kind. It is pure: the same
// kind always yields the same layout.
func (t Template) Signature() Signature {
	switch t {
	case Cube:
		return newSig().scalarIn("size", 1).meshOut("out").build()
	case Sphere:
		return newSig().scalarIn("radius", 1).meshOut("out").build()
	case Cylinder:
		return newSig().scalarIn("radius", 1).scalarIn("height", 1).meshOut("out").build()

	case Circle:
		return newSig().scalarIn("radius", 1).sketchOut("out").build()
	case Rectangle:
		return newSig().scalarIn("width", 1).scalarIn("height", 1).sketchOut("out").build()
	case Polygon:
		return newSig().scalarIn("sides", 6).scalarIn("radius", 1).sketchOut("out").build()

	case Union, Subtract, Intersect:
		return newSig().meshIn("a").meshIn("b").meshOut("out").build()
	case SketchUnion, SketchSubtract, SketchIntersect:
		return newSig().sketchIn("a").sketchIn("b").sketchOut("out").build()

	case Translate:
		return newSig().meshIn("in").vec3In("offset", Vec3{}).meshOut("out").build()
	case Rotate:
		return newSig().meshIn("in").vec3In("axis", Vec3{Z: 1}).scalarIn("angle", 0).meshOut("out").build()
	case Scale:
		return newSig().meshIn("in").vec3In("factors", Vec3{X: 1, Y: 1, Z: 1}).meshOut("out").build()
	case Mirror:
		return newSig().meshIn("in").vec3In("normal", Vec3{X: 1}).meshOut("out").build()
	case Center, Float, Invert:
		return newSig().meshIn("in").meshOut("out").build()

	case SketchTranslate:
		return newSig().sketchIn("in").vec3In("offset", Vec3{}).sketchOut("out").build()
	case SketchRotate:
		return newSig().sketchIn("in").scalarIn("angle", 0).sketchOut("out").build()
	case SketchScale:
		return newSig().sketchIn("in").vec3In("factors", Vec3{X: 1, Y: 1, Z: 1}).sketchOut("out").build()
	case SketchMirror:
		return newSig().sketchIn("in").vec3In("normal", Vec3{X: 1}).sketchOut("out").build()
	case SketchCenter, SketchInvert:
		return newSig().sketchIn("in").sketchOut("out").build()

	case LinearArray:
		return newSig().meshIn("in").scalarIn("count", 2).vec3In("step", Vec3{X: 1}).meshOut("out").build()
	case GridArray:
		return newSig().meshIn("in").vec3In("counts", Vec3{X: 2, Y: 2, Z: 1}).vec3In("step", Vec3{X: 1, Y: 1, Z: 1}).meshOut("out").build()
	case ArcArray:
		return newSig().meshIn("in").scalarIn("count", 2).scalarIn("sweep", 0).meshOut("out").build()

	case Extrude:
		return newSig().sketchIn("profile").scalarIn("height", 1).meshOut("out").build()
	case ExtrudeVector:
		return newSig().sketchIn("profile").vec3In("direction", Vec3{Z: 1}).meshOut("out").build()
	case Revolve:
		return newSig().sketchIn("profile").scalarIn("angle", 0).scalarIn("segments", 32).meshOut("out").build()
	case Loft:
		return newSig().sketchIn("bottom").sketchIn("top").scalarIn("height", 1).meshOut("out").build()
	case Sweep:
		return newSig().sketchIn("profile").sketchIn("path").meshOut("out").build()

	case Flatten:
		return newSig().meshIn("in").sketchOut("out").build()
	case Slice:
		return newSig().meshIn("in").scalarIn("z", 0).sketchOut("out").build()

	case Gyroid, SchwarzP, SchwarzD:
		return newSig().meshIn("in").scalarIn("resolution", 64).scalarIn("period", 1).scalarIn("iso", 0.5).meshOut("out").build()
	}
	return Signature{}
}

// String returns the kebab-case kind name used in scripts and node IDs.
func (t Template) String() string {
	if int(t) < 0 || int(t) >= len(templateNames) {
		return "unknown"
	}
	return templateNames[t]
}

var templateNames = [...]string{
	Cube:     "cube",
	Sphere:   "sphere",
	Cylinder: "cylinder",

	Circle:    "circle",
	Rectangle: "rectangle",
	Polygon:   "polygon",

	Union:     "union",
	Subtract:  "subtract",
	Intersect: "intersect",

	SketchUnion:     "sketch-union",
	SketchSubtract:  "sketch-subtract",
	SketchIntersect: "sketch-intersect",

	Translate: "translate",
	Rotate:    "rotate",
	Scale:     "scale",
	Mirror:    "mirror",
	Center:    "center",
	Float:     "float",
	Invert:    "invert",

	SketchTranslate: "sketch-translate",
	SketchRotate:    "sketch-rotate",
	SketchScale:     "sketch-scale",
	SketchMirror:    "sketch-mirror",
	SketchCenter:    "sketch-center",
	SketchInvert:    "sketch-invert",

	LinearArray: "linear-array",
	GridArray:   "grid-array",
	ArcArray:    "arc-array",

	Extrude:       "extrude",
	ExtrudeVector: "extrude-vector",
	Revolve:       "revolve",
	Loft:          "loft",
	Sweep:         "sweep",

	Flatten: "flatten",
	Slice:   "slice",

	Gyroid:   "gyroid",
	SchwarzP: "schwarz-p",
	SchwarzD: "schwarz-d",
}

// Label returns the display name shown in node finders.
func (t Template) Label() string {
	if int(t) < 0 || int(t) >= len(templateLabels) {
		return "Unknown"
	}
	return templateLabels[t]
}

var templateLabels = [...]string{
	Cube:     "Cube",
	Sphere:   "Sphere",
	Cylinder: "Cylinder",

	Circle:    "Circle",
	Rectangle: "Rectangle",
	Polygon:   "Polygon",

	Union:     "Union",
	Subtract:  "Subtract",
	Intersect: "Intersect",

	SketchUnion:     "Sketch Union",
	SketchSubtract:  "Sketch Subtract",
	SketchIntersect: "Sketch Intersect",

	Translate: "Translate",
	Rotate:    "Rotate",
	Scale:     "Scale",
	Mirror:    "Mirror",
	Center:    "Center",
	Float:     "Float",
	Invert:    "Invert",

	SketchTranslate: "Sketch Translate",
	SketchRotate:    "Sketch Rotate",
	SketchScale:     "Sketch Scale",
	SketchMirror:    "Sketch Mirror",
	SketchCenter:    "Sketch Center",
	SketchInvert:    "Sketch Invert",

	LinearArray: "Linear Array",
	GridArray:   "Grid Array",
	ArcArray:    "Arc Array",

	Extrude:       "Extrude",
	ExtrudeVector: "Extrude Vector",
	Revolve:       "Revolve",
	Loft:          "Loft",
	Sweep:         "Sweep",

	Flatten: "Flatten",
	Slice:   "Slice",

	Gyroid:   "Gyroid",
	SchwarzP: "Schwarz P",
	SchwarzD: "Schwarz D",
}

// Category returns the node finder grouping for a kind.
func (t Template) Category() string {
	switch t {
	case Cube, Sphere, Cylinder:
		return "Solid Primitives"
	case Circle, Rectangle, Polygon:
		return "Sketch Primitives"
	case Union, Subtract, Intersect:
		return "Booleans"
	case SketchUnion, SketchSubtract, SketchIntersect:
		return "Sketch Booleans"
	case Translate, Rotate, Scale, Mirror, Center, Float, Invert:
		return "Transforms"
	case SketchTranslate, SketchRotate, SketchScale, SketchMirror, SketchCenter, SketchInvert:
		return "Sketch Transforms"
	case LinearArray, GridArray, ArcArray:
		return "Arrays"
	case Extrude, ExtrudeVector, Revolve, Loft, Sweep:
		return "Lifting"
	case Flatten, Slice:
		return "Projection"
	case Gyroid, SchwarzP, SchwarzD:
		return "Lattices"
	}
	return "Other"
}

// TemplateByName looks up a kind by its kebab-case name.
func TemplateByName(name string) (Template, bool) {
	for i, n := range templateNames {
		if n == name {
			return Template(i), true
		}
	}
	return 0, false
}
