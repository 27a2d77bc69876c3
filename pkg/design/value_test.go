package design

import (
	"errors"
	"math"
	"testing"
)

func TestZeroValueIsScalarZero(t *testing.T) {
	var v Value
	if v.Type() != ScalarType {
		t.Fatalf("zero value type = %s, want scalar", v.Type())
	}
	f, err := v.AsScalar()
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if f != 0 {
		t.Errorf("zero value scalar = %g, want 0", f)
	}
}

func TestValueUnwrapMismatch(t *testing.T) {
	tests := []struct {
		name   string
		value  Value
		unwrap func(Value) error
		actual PortType
	}{
		{
			name:   "scalar as vector",
			value:  ScalarValue(1),
			unwrap: func(v Value) error { _, err := v.AsVector3(); return err },
			actual: ScalarType,
		},
		{
			name:   "vector as scalar",
			value:  Vector3Value(Vec3{X: 1}),
			unwrap: func(v Value) error { _, err := v.AsScalar(); return err },
			actual: Vector3Type,
		},
		{
			name:   "scalar as mesh",
			value:  ScalarValue(1),
			unwrap: func(v Value) error { _, err := v.AsMesh(); return err },
			actual: ScalarType,
		},
		{
			name:   "scalar as sketch",
			value:  ScalarValue(1),
			unwrap: func(v Value) error { _, err := v.AsSketch(); return err },
			actual: ScalarType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.unwrap(tt.value)
			if err == nil {
				t.Fatal("expected mismatch error")
			}
			var tm *TypeMismatchError
			if !errors.As(err, &tm) {
				t.Fatalf("error %v, want TypeMismatchError", err)
			}
			if tm.Actual != tt.actual {
				t.Errorf("actual = %s, want %s", tm.Actual, tt.actual)
			}
		})
	}
}

func TestValueRoundTrip(t *testing.T) {
	if f, err := ScalarValue(2.5).AsScalar(); err != nil || f != 2.5 {
		t.Errorf("scalar round trip: %g, %v", f, err)
	}
	want := Vec3{X: 1, Y: 2, Z: 3}
	if v, err := Vector3Value(want).AsVector3(); err != nil || v != want {
		t.Errorf("vector round trip: %v, %v", v, err)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{X: 3, Y: 0, Z: 4}.Normalize()
	if math.Abs(v.Length()-1) > 1e-12 {
		t.Fatalf("normalized length = %g", v.Length())
	}
	if math.Abs(v.X-0.6) > 1e-12 || math.Abs(v.Z-0.8) > 1e-12 {
		t.Errorf("normalized = %+v", v)
	}
}
