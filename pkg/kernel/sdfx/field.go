package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Custom signed distance fields backing the operations sdfx has no
// combinator for: complements, planar cross-sections, shadow projection
// and triply periodic minimal surface lattices.

// invertSDF3 negates a distance field, turning inside into outside.
type invertSDF3 struct {
	s sdf.SDF3
}

func (n *invertSDF3) Evaluate(p v3.Vec) float64 {
	return -n.s.Evaluate(p)
}

// BoundingBox keeps the wrapped field's box. The complement is unbounded;
// downstream booleans re-bound it against finite solids.
func (n *invertSDF3) BoundingBox() sdf.Box3 {
	return n.s.BoundingBox()
}

// invertSDF2 is the planar complement.
type invertSDF2 struct {
	s sdf.SDF2
}

func (n *invertSDF2) Evaluate(p v2.Vec) float64 {
	return -n.s.Evaluate(p)
}

func (n *invertSDF2) BoundingBox() sdf.Box2 {
	return n.s.BoundingBox()
}

// sliceSDF2 is the cross-section of a solid at a fixed z plane.
type sliceSDF2 struct {
	s sdf.SDF3
	z float64
}

func (c *sliceSDF2) Evaluate(p v2.Vec) float64 {
	return c.s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: c.z})
}

func (c *sliceSDF2) BoundingBox() sdf.Box2 {
	bb := c.s.BoundingBox()
	return sdf.Box2{
		Min: v2.Vec{X: bb.Min.X, Y: bb.Min.Y},
		Max: v2.Vec{X: bb.Max.X, Y: bb.Max.Y},
	}
}

// projectZSteps is the number of z samples used by the shadow projection.
const projectZSteps = 32

// projectSDF2 approximates the shadow of a solid on the z=0 plane by
// taking the minimum field value over sampled z planes through the
// solid's extent.
type projectSDF2 struct {
	s          sdf.SDF3
	zMin, zMax float64
}

func (c *projectSDF2) Evaluate(p v2.Vec) float64 {
	step := (c.zMax - c.zMin) / float64(projectZSteps)
	d := math.MaxFloat64
	for i := 0; i <= projectZSteps; i++ {
		z := c.zMin + step*float64(i)
		if v := c.s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: z}); v < d {
			d = v
		}
	}
	return d
}

func (c *projectSDF2) BoundingBox() sdf.Box2 {
	bb := c.s.BoundingBox()
	return sdf.Box2{
		Min: v2.Vec{X: bb.Min.X, Y: bb.Min.Y},
		Max: v2.Vec{X: bb.Max.X, Y: bb.Max.Y},
	}
}

// latticeKind selects a TPMS surface family.
type latticeKind int

const (
	latticeGyroid latticeKind = iota
	latticeSchwarzP
	latticeSchwarzD
)

// latticeSDF3 intersects a bounding solid with a TPMS field thickened to
// the given iso value. The field is scaled so one unit cell spans period.
type latticeSDF3 struct {
	s     sdf.SDF3
	kind  latticeKind
	scale float64 // period / 2*pi
	iso   float64
}

// newLattice builds the lattice intersection. A non-positive period falls
// back to a unit cell of 1.
func newLattice(s sdf.SDF3, kind latticeKind, period, iso float64) sdf.SDF3 {
	if period <= 0 {
		period = 1
	}
	return &latticeSDF3{
		s:     s,
		kind:  kind,
		scale: period / (2 * math.Pi),
		iso:   iso,
	}
}

func (l *latticeSDF3) field(p v3.Vec) float64 {
	x := p.X / l.scale
	y := p.Y / l.scale
	z := p.Z / l.scale
	switch l.kind {
	case latticeSchwarzP:
		return math.Cos(x) + math.Cos(y) + math.Cos(z)
	case latticeSchwarzD:
		return math.Sin(x)*math.Sin(y)*math.Sin(z) +
			math.Sin(x)*math.Cos(y)*math.Cos(z) +
			math.Cos(x)*math.Sin(y)*math.Cos(z) +
			math.Cos(x)*math.Cos(y)*math.Sin(z)
	default:
		return math.Sin(x)*math.Cos(y) +
			math.Sin(y)*math.Cos(z) +
			math.Sin(z)*math.Cos(x)
	}
}

func (l *latticeSDF3) Evaluate(p v3.Vec) float64 {
	// Approximate distance to the thickened surface |f| <= iso. The
	// field gradient is O(1/scale), so rescaling keeps the marching
	// cubes step honest.
	surf := (math.Abs(l.field(p)) - l.iso) * l.scale
	return math.Max(surf, l.s.Evaluate(p))
}

func (l *latticeSDF3) BoundingBox() sdf.Box3 {
	return l.s.BoundingBox()
}
