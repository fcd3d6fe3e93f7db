package cpu

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAddRow(t *testing.T) {
	backend := newTestBackend()
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	backend.AddRow(x, mat.NewVecDense(2, []float64{10, 20}))

	expected := []float64{11, 22, 13, 24}
	if !float64SliceEqual(x.RawMatrix().Data, expected) {
		t.Errorf("Expected %v, got %v", expected, x.RawMatrix().Data)
	}
}

func TestAddRow_ShapeMismatch(t *testing.T) {
	backend := newTestBackend()
	expectShapeError(t, func() {
		backend.AddRow(mat.NewDense(2, 2, nil), mat.NewVecDense(3, nil))
	})
}

func TestScaleRows(t *testing.T) {
	backend := newTestBackend()

	t.Run("per row", func(t *testing.T) {
		x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		backend.ScaleRows(x, mat.NewVecDense(2, []float64{2, -1}))
		expected := []float64{2, 4, -3, -4}
		if !float64SliceEqual(x.RawMatrix().Data, expected) {
			t.Errorf("Expected %v, got %v", expected, x.RawMatrix().Data)
		}
	})

	t.Run("scalar", func(t *testing.T) {
		x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		backend.ScaleRows(x, mat.NewVecDense(1, []float64{0.5}))
		expected := []float64{0.5, 1, 1.5, 2}
		if !float64SliceEqual(x.RawMatrix().Data, expected) {
			t.Errorf("Expected %v, got %v", expected, x.RawMatrix().Data)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		expectShapeError(t, func() {
			backend.ScaleRows(mat.NewDense(2, 2, nil), mat.NewVecDense(3, nil))
		})
	})
}

func TestScaleElems(t *testing.T) {
	backend := newTestBackend()
	x := mat.NewVecDense(3, []float64{1, 2, 3})
	backend.ScaleElems(x, mat.NewVecDense(3, []float64{1, 0, -1}))
	if !float64SliceEqual(x.RawVector().Data, []float64{1, 0, -3}) {
		t.Errorf("got %v", x.RawVector().Data)
	}
}

func TestDivRow(t *testing.T) {
	backend := newTestBackend()
	x := mat.NewDense(2, 2, []float64{2, 4, 6, 8})

	result := backend.DivRow(x, mat.NewVecDense(2, []float64{2, 4}))

	if !float64SliceEqual(result.RawMatrix().Data, []float64{1, 1, 3, 2}) {
		t.Errorf("got %v", result.RawMatrix().Data)
	}
	if x.At(0, 0) != 2 {
		t.Error("DivRow modified its input")
	}
}

func TestExp(t *testing.T) {
	backend := newTestBackend()
	v := mat.NewVecDense(2, []float64{0, 2})

	got := backend.Exp(v, 0.5).RawVector().Data
	expected := []float64{1, math.E}
	if !float64SliceEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestApply(t *testing.T) {
	backend := newTestBackend()
	x := mat.NewDense(1, 3, []float64{-1, 0, 2})

	result := backend.Apply(x, math.Abs)

	if !float64SliceEqual(result.RawMatrix().Data, []float64{1, 0, 2}) {
		t.Errorf("got %v", result.RawMatrix().Data)
	}
	if x.At(0, 0) != -1 {
		t.Error("Apply modified its input")
	}
}
