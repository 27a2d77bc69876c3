// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx today, others behind the same interface) provide
// solid modeling, sketch modeling and boolean operations. The kernel
// abstraction allows swapping backends without changing the rest of the
// system: the evaluation engine calls these entry points with validated
// numeric/vector arguments and never looks inside a Solid or Shape.
package kernel

// Solid is an opaque handle to a geometry kernel solid (3-D).
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Shape is an opaque handle to a planar (2-D) kernel shape.
type Shape interface {
	// BoundingBox returns the axis-aligned bounding box in the plane.
	BoundingBox() (min, max [2]float64)
}

// Kernel is the abstract geometry kernel interface.
//
// Constructors and lifting operations can reject degenerate arguments and
// return an error; pure transforms and booleans always succeed. Angles are
// Euler angles in degrees throughout — callers working in radians convert
// before crossing this boundary.
type Kernel interface {
	// Solid primitives. Box and Sphere are centered at the origin;
	// Cylinder is centered with its axis along Z.
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64, segments int) (Solid, error)

	// Planar primitives, centered at the origin.
	Circle(radius float64) (Shape, error)
	Rectangle(w, h float64) (Shape, error)
	Polygon(sides int, radius float64) (Shape, error)

	// Boolean operations.
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid
	Union2D(a, b Shape) Shape
	Difference2D(a, b Shape) Shape
	Intersection2D(a, b Shape) Shape

	// Affine transforms. Mirror reflects across the plane (line in 2-D)
	// through the origin whose normal is given.
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
	Scale(s Solid, x, y, z float64) Solid
	Mirror(s Solid, nx, ny, nz float64) Solid
	Center(s Solid) Solid // bounding-box center to origin
	Float(s Solid) Solid  // drop to the z=0 plane
	Invert(s Solid) Solid // complement (inside-out)

	Translate2D(s Shape, x, y float64) Shape
	Rotate2D(s Shape, degrees float64) Shape
	Scale2D(s Shape, x, y float64) Shape
	Mirror2D(s Shape, nx, ny float64) Shape
	Center2D(s Shape) Shape
	Invert2D(s Shape) Shape

	// Distribution operations.
	LinearArray(s Solid, count int, dx, dy, dz float64) Solid
	GridArray(s Solid, nx, ny, nz int, dx, dy, dz float64) Solid
	ArcArray(s Solid, count int, sweepDegrees float64) Solid

	// Lifting operations (2-D -> 3-D).
	Extrude(profile Shape, height float64) (Solid, error)
	ExtrudeVector(profile Shape, dx, dy, dz float64) (Solid, error)
	Revolve(profile Shape, angleDegrees float64, segments int) (Solid, error)
	Loft(bottom, top Shape, height float64) (Solid, error)
	Sweep(profile, path Shape) (Solid, error)

	// Solid -> planar operations.
	Flatten(s Solid) (Shape, error)
	Slice(s Solid, z float64) (Shape, error)

	// Implicit-lattice operations: intersect the solid with a triply
	// periodic minimal surface field at the given period and iso value.
	Gyroid(s Solid, resolution int, period, iso float64) Solid
	SchwarzP(s Solid, resolution int, period, iso float64) Solid
	SchwarzD(s Solid, resolution int, period, iso float64) Solid

	// Mesh output.
	ToMesh(s Solid) (*Mesh, error)
}
