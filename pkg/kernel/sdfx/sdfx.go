// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. Solids are sdf.SDF3
// values, sketches are sdf.SDF2 values; meshing uses marching cubes.
package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/timschmidt/alumina-ui/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 200

// circleOutlinePoints is the polyline resolution used when a circle is
// employed as a sweep path.
const circleOutlinePoints = 64

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// sdfxShape wraps an sdf.SDF2 to implement kernel.Shape. The outline is a
// polyline approximation of the shape boundary, carried along through
// affine transforms so the shape can serve as a sweep path. Boolean
// results have no outline.
type sdfxShape struct {
	s       sdf.SDF2
	outline []v2.Vec
}

// BoundingBox returns the axis-aligned bounding box in the plane.
func (s *sdfxShape) BoundingBox() (min, max [2]float64) {
	bb := s.s.BoundingBox()
	min = [2]float64{bb.Min.X, bb.Min.Y}
	max = [2]float64{bb.Max.X, bb.Max.Y}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// unwrap2 extracts the underlying sdf.SDF2 from a kernel.Shape.
func unwrap2(s kernel.Shape) sdf.SDF2 {
	return s.(*sdfxShape).s
}

// wrap2 creates a kernel.Shape from an sdf.SDF2 with no outline.
func wrap2(s sdf.SDF2) kernel.Shape {
	return &sdfxShape{s: s}
}

// ---------------------------------------------------------------------------
// Solid primitives
// ---------------------------------------------------------------------------

// Box creates a box with the given dimensions, centered at the origin.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("box: %w", err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered at the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sphere: %w", err)
	}
	return wrap(s), nil
}

// Cylinder creates a cylinder centered at the origin with its axis along Z.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Cylinder(height, radius float64, segments int) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("cylinder: %w", err)
	}
	return wrap(s), nil
}

// ---------------------------------------------------------------------------
// Planar primitives
// ---------------------------------------------------------------------------

// Circle creates a circle centered at the origin.
func (k *SdfxKernel) Circle(radius float64) (kernel.Shape, error) {
	s, err := sdf.Circle2D(radius)
	if err != nil {
		return nil, fmt.Errorf("circle: %w", err)
	}
	outline := make([]v2.Vec, circleOutlinePoints+1)
	for i := 0; i <= circleOutlinePoints; i++ {
		a := 2 * math.Pi * float64(i) / circleOutlinePoints
		outline[i] = v2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return &sdfxShape{s: s, outline: outline}, nil
}

// Rectangle creates a w-by-h rectangle centered at the origin.
func (k *SdfxKernel) Rectangle(w, h float64) (kernel.Shape, error) {
	s := sdf.Box2D(v2.Vec{X: w, Y: h}, 0)
	hw, hh := w/2, h/2
	outline := []v2.Vec{
		{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}, {X: -hw, Y: -hh},
	}
	return &sdfxShape{s: s, outline: outline}, nil
}

// Polygon creates a regular polygon with the given number of sides,
// circumscribed radius, centered at the origin.
func (k *SdfxKernel) Polygon(sides int, radius float64) (kernel.Shape, error) {
	if sides < 3 {
		return nil, fmt.Errorf("polygon: need at least 3 sides, got %d", sides)
	}
	pts := make([]v2.Vec, sides)
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		pts[i] = v2.Vec{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	s, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	outline := append(append([]v2.Vec{}, pts...), pts[0])
	return &sdfxShape{s: s, outline: outline}, nil
}

// ---------------------------------------------------------------------------
// Boolean operations
// ---------------------------------------------------------------------------

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Union2D returns the union of two shapes.
func (k *SdfxKernel) Union2D(a, b kernel.Shape) kernel.Shape {
	return wrap2(sdf.Union2D(unwrap2(a), unwrap2(b)))
}

// Difference2D returns the difference a - b.
func (k *SdfxKernel) Difference2D(a, b kernel.Shape) kernel.Shape {
	return wrap2(sdf.Difference2D(unwrap2(a), unwrap2(b)))
}

// Intersection2D returns the intersection of two shapes.
func (k *SdfxKernel) Intersection2D(a, b kernel.Shape) kernel.Shape {
	return wrap2(sdf.Intersect2D(unwrap2(a), unwrap2(b)))
}

// ---------------------------------------------------------------------------
// Solid transforms
// ---------------------------------------------------------------------------

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	m := sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Scale scales a solid by per-axis factors.
func (k *SdfxKernel) Scale(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Scale3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Mirror reflects a solid across the principal plane nearest to the plane
// whose normal is (nx, ny, nz). The SDF backend has no arbitrary-plane
// reflection, so the normal snaps to its dominant axis.
func (k *SdfxKernel) Mirror(s kernel.Solid, nx, ny, nz float64) kernel.Solid {
	ax, ay, az := math.Abs(nx), math.Abs(ny), math.Abs(nz)
	var m sdf.M44
	switch {
	case ax >= ay && ax >= az:
		m = sdf.MirrorYZ()
	case ay >= az:
		m = sdf.MirrorXZ()
	default:
		m = sdf.MirrorXY()
	}
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Center translates a solid so its bounding-box center sits at the origin.
func (k *SdfxKernel) Center(s kernel.Solid) kernel.Solid {
	bb := unwrap(s).BoundingBox()
	c := v3.Vec{
		X: -(bb.Min.X + bb.Max.X) / 2,
		Y: -(bb.Min.Y + bb.Max.Y) / 2,
		Z: -(bb.Min.Z + bb.Max.Z) / 2,
	}
	return wrap(sdf.Transform3D(unwrap(s), sdf.Translate3d(c)))
}

// Float translates a solid so its bounding box rests on the z=0 plane.
func (k *SdfxKernel) Float(s kernel.Solid) kernel.Solid {
	bb := unwrap(s).BoundingBox()
	m := sdf.Translate3d(v3.Vec{Z: -bb.Min.Z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Invert returns the complement of a solid (inside-out distance field).
func (k *SdfxKernel) Invert(s kernel.Solid) kernel.Solid {
	return wrap(&invertSDF3{s: unwrap(s)})
}

// ---------------------------------------------------------------------------
// Shape transforms
// ---------------------------------------------------------------------------

// mapOutline applies f to every outline point, returning nil when the
// shape has no outline.
func mapOutline(s kernel.Shape, f func(v2.Vec) v2.Vec) []v2.Vec {
	src := s.(*sdfxShape).outline
	if src == nil {
		return nil
	}
	out := make([]v2.Vec, len(src))
	for i, p := range src {
		out[i] = f(p)
	}
	return out
}

// Translate2D moves a shape by (x, y).
func (k *SdfxKernel) Translate2D(s kernel.Shape, x, y float64) kernel.Shape {
	m := sdf.Translate2d(v2.Vec{X: x, Y: y})
	outline := mapOutline(s, func(p v2.Vec) v2.Vec {
		return v2.Vec{X: p.X + x, Y: p.Y + y}
	})
	return &sdfxShape{s: sdf.Transform2D(unwrap2(s), m), outline: outline}
}

// Rotate2D rotates a shape about the origin.
func (k *SdfxKernel) Rotate2D(s kernel.Shape, degrees float64) kernel.Shape {
	rad := degrees * math.Pi / 180.0
	sin, cos := math.Sin(rad), math.Cos(rad)
	outline := mapOutline(s, func(p v2.Vec) v2.Vec {
		return v2.Vec{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
	})
	return &sdfxShape{s: sdf.Transform2D(unwrap2(s), sdf.Rotate2d(rad)), outline: outline}
}

// Scale2D scales a shape by per-axis factors.
func (k *SdfxKernel) Scale2D(s kernel.Shape, x, y float64) kernel.Shape {
	m := sdf.Scale2d(v2.Vec{X: x, Y: y})
	outline := mapOutline(s, func(p v2.Vec) v2.Vec {
		return v2.Vec{X: p.X * x, Y: p.Y * y}
	})
	return &sdfxShape{s: sdf.Transform2D(unwrap2(s), m), outline: outline}
}

// Mirror2D reflects a shape across the axis line nearest to the line whose
// normal is (nx, ny).
func (k *SdfxKernel) Mirror2D(s kernel.Shape, nx, ny float64) kernel.Shape {
	var m sdf.M33
	var f func(v2.Vec) v2.Vec
	if math.Abs(nx) >= math.Abs(ny) {
		// Normal along X: reflect across the Y axis.
		m = sdf.MirrorY()
		f = func(p v2.Vec) v2.Vec { return v2.Vec{X: -p.X, Y: p.Y} }
	} else {
		m = sdf.MirrorX()
		f = func(p v2.Vec) v2.Vec { return v2.Vec{X: p.X, Y: -p.Y} }
	}
	return &sdfxShape{s: sdf.Transform2D(unwrap2(s), m), outline: mapOutline(s, f)}
}

// Center2D translates a shape so its bounding-box center sits at the origin.
func (k *SdfxKernel) Center2D(s kernel.Shape) kernel.Shape {
	bb := unwrap2(s).BoundingBox()
	cx := (bb.Min.X + bb.Max.X) / 2
	cy := (bb.Min.Y + bb.Max.Y) / 2
	return k.Translate2D(s, -cx, -cy)
}

// Invert2D returns the complement of a shape.
func (k *SdfxKernel) Invert2D(s kernel.Shape) kernel.Shape {
	return wrap2(&invertSDF2{s: unwrap2(s)})
}

// ---------------------------------------------------------------------------
// Distribution operations
// ---------------------------------------------------------------------------

// LinearArray unions count copies of a solid stepped by (dx, dy, dz).
func (k *SdfxKernel) LinearArray(s kernel.Solid, count int, dx, dy, dz float64) kernel.Solid {
	if count <= 1 {
		return s
	}
	copies := make([]sdf.SDF3, count)
	for i := 0; i < count; i++ {
		step := v3.Vec{X: dx * float64(i), Y: dy * float64(i), Z: dz * float64(i)}
		copies[i] = sdf.Transform3D(unwrap(s), sdf.Translate3d(step))
	}
	return wrap(sdf.Union3D(copies...))
}

// GridArray unions an nx-by-ny-by-nz grid of copies stepped by (dx, dy, dz).
func (k *SdfxKernel) GridArray(s kernel.Solid, nx, ny, nz int, dx, dy, dz float64) kernel.Solid {
	nx, ny, nz = atLeastOne(nx), atLeastOne(ny), atLeastOne(nz)
	if nx*ny*nz == 1 {
		return s
	}
	var copies []sdf.SDF3
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for l := 0; l < nz; l++ {
				step := v3.Vec{X: dx * float64(i), Y: dy * float64(j), Z: dz * float64(l)}
				copies = append(copies, sdf.Transform3D(unwrap(s), sdf.Translate3d(step)))
			}
		}
	}
	return wrap(sdf.Union3D(copies...))
}

// ArcArray unions count copies of a solid rotated about the Z axis, spread
// over sweepDegrees. The step is sweep/count so a full-circle sweep does
// not overlap its first and last copies.
func (k *SdfxKernel) ArcArray(s kernel.Solid, count int, sweepDegrees float64) kernel.Solid {
	if count <= 1 {
		return s
	}
	copies := make([]sdf.SDF3, count)
	for i := 0; i < count; i++ {
		rad := sweepDegrees * float64(i) / float64(count) * math.Pi / 180.0
		copies[i] = sdf.Transform3D(unwrap(s), sdf.RotateZ(rad))
	}
	return wrap(sdf.Union3D(copies...))
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ---------------------------------------------------------------------------
// Lifting operations
// ---------------------------------------------------------------------------

// Extrude extrudes a shape along Z. The result is centered on the z=0
// plane, spanning [-height/2, height/2].
func (k *SdfxKernel) Extrude(profile kernel.Shape, height float64) (kernel.Solid, error) {
	if height <= 0 {
		return nil, fmt.Errorf("extrude: height must be positive, got %g", height)
	}
	return wrap(sdf.Extrude3D(unwrap2(profile), height)), nil
}

// ExtrudeVector extrudes a shape from the origin along the direction
// vector; the extrusion length is the vector's magnitude.
func (k *SdfxKernel) ExtrudeVector(profile kernel.Shape, dx, dy, dz float64) (kernel.Solid, error) {
	length := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if length == 0 {
		return nil, fmt.Errorf("extrude-vector: zero-length direction")
	}
	slab := sdf.Extrude3D(unwrap2(profile), length)

	// Orient the slab's Z axis along the direction, then shift so the
	// extrusion spans origin -> direction.
	theta := math.Acos(dz / length)
	phi := math.Atan2(dy, dx)
	m := sdf.Translate3d(v3.Vec{X: dx / 2, Y: dy / 2, Z: dz / 2})
	m = m.Mul(sdf.RotateZ(phi)).Mul(sdf.RotateY(theta))
	return wrap(sdf.Transform3D(slab, m)), nil
}

// Revolve rotates a shape about the Z axis through angleDegrees.
// The segments parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Revolve(profile kernel.Shape, angleDegrees float64, segments int) (kernel.Solid, error) {
	rad := angleDegrees * math.Pi / 180.0
	s, err := sdf.RevolveTheta3D(unwrap2(profile), rad)
	if err != nil {
		return nil, fmt.Errorf("revolve: %w", err)
	}
	return wrap(s), nil
}

// Loft interpolates between a bottom and top shape over the given height.
func (k *SdfxKernel) Loft(bottom, top kernel.Shape, height float64) (kernel.Solid, error) {
	if height <= 0 {
		return nil, fmt.Errorf("loft: height must be positive, got %g", height)
	}
	s, err := sdf.Loft3D(unwrap2(bottom), unwrap2(top), height, 0)
	if err != nil {
		return nil, fmt.Errorf("loft: %w", err)
	}
	return wrap(s), nil
}

// Sweep extrudes a profile along the path shape's outline polyline. The
// path must carry an outline (primitives and their affine transforms do;
// boolean results do not).
func (k *SdfxKernel) Sweep(profile, path kernel.Shape) (kernel.Solid, error) {
	outline := path.(*sdfxShape).outline
	if len(outline) < 2 {
		return nil, fmt.Errorf("sweep: path has no usable outline")
	}

	var segments []sdf.SDF3
	for i := 0; i+1 < len(outline); i++ {
		p0, p1 := outline[i], outline[i+1]
		dx, dy := p1.X-p0.X, p1.Y-p0.Y
		length := math.Sqrt(dx*dx + dy*dy)
		if length == 0 {
			continue
		}
		slab := sdf.Extrude3D(unwrap2(profile), length)
		phi := math.Atan2(dy, dx)
		mid := v3.Vec{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}
		m := sdf.Translate3d(mid)
		m = m.Mul(sdf.RotateZ(phi)).Mul(sdf.RotateY(math.Pi / 2))
		segments = append(segments, sdf.Transform3D(slab, m))
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("sweep: path outline is degenerate")
	}
	return wrap(sdf.Union3D(segments...)), nil
}

// ---------------------------------------------------------------------------
// Solid -> planar operations
// ---------------------------------------------------------------------------

// Flatten projects a solid onto the z=0 plane (its shadow).
func (k *SdfxKernel) Flatten(s kernel.Solid) (kernel.Shape, error) {
	sdf3 := unwrap(s)
	bb := sdf3.BoundingBox()
	if bb.Max.Z <= bb.Min.Z {
		return nil, fmt.Errorf("flatten: solid has no z extent")
	}
	return wrap2(&projectSDF2{s: sdf3, zMin: bb.Min.Z, zMax: bb.Max.Z}), nil
}

// Slice intersects a solid with the z=offset plane, yielding the planar
// cross-section.
func (k *SdfxKernel) Slice(s kernel.Solid, z float64) (kernel.Shape, error) {
	sdf3 := unwrap(s)
	bb := sdf3.BoundingBox()
	if z < bb.Min.Z || z > bb.Max.Z {
		return nil, fmt.Errorf("slice: plane z=%g outside solid bounds [%g, %g]", z, bb.Min.Z, bb.Max.Z)
	}
	return wrap2(&sliceSDF2{s: sdf3, z: z}), nil
}

// ---------------------------------------------------------------------------
// Implicit lattices
// ---------------------------------------------------------------------------

// Gyroid intersects a solid with a gyroid lattice field. The resolution
// parameter is ignored since SDF represents smooth surfaces.
func (k *SdfxKernel) Gyroid(s kernel.Solid, resolution int, period, iso float64) kernel.Solid {
	return wrap(newLattice(unwrap(s), latticeGyroid, period, iso))
}

// SchwarzP intersects a solid with a Schwarz P lattice field.
func (k *SdfxKernel) SchwarzP(s kernel.Solid, resolution int, period, iso float64) kernel.Solid {
	return wrap(newLattice(unwrap(s), latticeSchwarzP, period, iso))
}

// SchwarzD intersects a solid with a Schwarz D lattice field.
func (k *SdfxKernel) SchwarzD(s kernel.Solid, resolution int, period, iso float64) kernel.Solid {
	return wrap(newLattice(unwrap(s), latticeSchwarzD, period, iso))
}

// ---------------------------------------------------------------------------
// Mesh output
// ---------------------------------------------------------------------------

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(defaultMeshCells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
