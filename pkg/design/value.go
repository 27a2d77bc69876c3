// Package design implements the typed node-graph model and its
// evaluation engine: a catalog of node kinds with typed ports, a graph
// container with type-checked connections, and a recursive memoizing
// evaluator that drives an abstract geometry kernel.
package design

import (
	"math"

	"github.com/timschmidt/alumina-ui/pkg/kernel"
)

// PortType identifies the data type carried by a port.
type PortType int

const (
	ScalarType PortType = iota
	Vector3Type
	SketchType
	MeshType
)

// String returns a human-readable type name.
func (t PortType) String() string {
	switch t {
	case ScalarType:
		return "scalar"
	case Vector3Type:
		return "vec3"
	case SketchType:
		return "sketch"
	case MeshType:
		return "mesh"
	}
	return "unknown"
}

// Vec3 is a 3-component vector used for offsets, axes, scale factors and
// plane normals.
type Vec3 struct {
	X, Y, Z float64
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalize returns the unit vector in v's direction. The result for a
// zero vector is undefined; supplying one is a modeling error upstream.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	return Vec3{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Scale returns v scaled by f.
func (v Vec3) Scale(f float64) Vec3 {
	return Vec3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

// Value is the closed tagged union flowing along graph edges. The zero
// Value is Scalar(0). There is no coercion between variants: unwrapping
// the wrong variant yields a TypeMismatchError.
type Value struct {
	typ    PortType
	scalar float64
	vec    Vec3
	sketch kernel.Shape
	solid  kernel.Solid
}

// ScalarValue wraps a scalar.
func ScalarValue(f float64) Value {
	return Value{typ: ScalarType, scalar: f}
}

// Vector3Value wraps a vector.
func Vector3Value(v Vec3) Value {
	return Value{typ: Vector3Type, vec: v}
}

// SketchValue wraps a planar shape handle.
func SketchValue(s kernel.Shape) Value {
	return Value{typ: SketchType, sketch: s}
}

// MeshValue wraps a solid handle.
func MeshValue(s kernel.Solid) Value {
	return Value{typ: MeshType, solid: s}
}

// Type returns the variant tag.
func (v Value) Type() PortType {
	return v.typ
}

// AsScalar unwraps the scalar variant.
func (v Value) AsScalar() (float64, error) {
	if v.typ != ScalarType {
		return 0, &TypeMismatchError{Expected: ScalarType, Actual: v.typ}
	}
	return v.scalar, nil
}

// AsVector3 unwraps the vector variant.
func (v Value) AsVector3() (Vec3, error) {
	if v.typ != Vector3Type {
		return Vec3{}, &TypeMismatchError{Expected: Vector3Type, Actual: v.typ}
	}
	return v.vec, nil
}

// AsSketch unwraps the sketch variant.
func (v Value) AsSketch() (kernel.Shape, error) {
	if v.typ != SketchType {
		return nil, &TypeMismatchError{Expected: SketchType, Actual: v.typ}
	}
	return v.sketch, nil
}

// AsMesh unwraps the mesh variant.
func (v Value) AsMesh() (kernel.Solid, error) {
	if v.typ != MeshType {
		return nil, &TypeMismatchError{Expected: MeshType, Actual: v.typ}
	}
	return v.solid, nil
}
