package qmath

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Matrix is a dense complex matrix stored in row-major order.
//
// Matrix values are immutable by convention: no method mutates its
// receiver, and callers must not modify the slice returned by Data.
type Matrix struct {
	rows, cols int
	data       []complex128
}

// NewMatrix creates a rows x cols matrix from row-major data.
// It panics if len(data) != rows*cols; dimensions are a caller invariant.
func NewMatrix(rows, cols int, data []complex128) Matrix {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		panic(fmt.Sprintf("qmath: matrix data length %d does not match %dx%d", len(data), rows, cols))
	}
	return Matrix{rows: rows, cols: cols, data: data}
}

// FromRows creates a matrix from a slice of equal-length rows.
func FromRows(rows [][]complex128) Matrix {
	if len(rows) == 0 {
		return Matrix{}
	}
	cols := len(rows[0])
	data := make([]complex128, 0, len(rows)*cols)
	for i, r := range rows {
		if len(r) != cols {
			panic(fmt.Sprintf("qmath: row %d has length %d, want %d", i, len(r), cols))
		}
		data = append(data, r...)
	}
	return Matrix{rows: len(rows), cols: cols, data: data}
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	data := make([]complex128, n*n)
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return Matrix{rows: n, cols: n, data: data}
}

// Rows returns the number of rows.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m Matrix) Cols() int { return m.cols }

// At returns the element at row r, column c.
func (m Matrix) At(r, c int) complex128 {
	return m.data[r*m.cols+c]
}

// Data returns the backing row-major slice. Callers must not modify it.
func (m Matrix) Data() []complex128 { return m.data }

// Mul returns the matrix product m * o.
// It panics if the inner dimensions do not match.
func (m Matrix) Mul(o Matrix) Matrix {
	if m.cols != o.rows {
		panic(fmt.Sprintf("qmath: cannot multiply %dx%d by %dx%d", m.rows, m.cols, o.rows, o.cols))
	}
	data := make([]complex128, m.rows*o.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			for j := 0; j < o.cols; j++ {
				data[i*o.cols+j] += a * o.data[k*o.cols+j]
			}
		}
	}
	return Matrix{rows: m.rows, cols: o.cols, data: data}
}

// Tensor returns the Kronecker product m ⊗ o.
//
// With wire 0 as the least significant bit, the operator acting on a
// higher wire is the left factor: U(wire1) ⊗ U(wire0).
func (m Matrix) Tensor(o Matrix) Matrix {
	rows := m.rows * o.rows
	cols := m.cols * o.cols
	data := make([]complex128, rows*cols)
	for mi := 0; mi < m.rows; mi++ {
		for mj := 0; mj < m.cols; mj++ {
			a := m.data[mi*m.cols+mj]
			if a == 0 {
				continue
			}
			for oi := 0; oi < o.rows; oi++ {
				for oj := 0; oj < o.cols; oj++ {
					r := mi*o.rows + oi
					c := mj*o.cols + oj
					data[r*cols+c] = a * o.data[oi*o.cols+oj]
				}
			}
		}
	}
	return Matrix{rows: rows, cols: cols, data: data}
}

// Adjoint returns the conjugate transpose of m.
func (m Matrix) Adjoint() Matrix {
	data := make([]complex128, len(m.data))
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			data[j*m.rows+i] = cmplx.Conj(m.data[i*m.cols+j])
		}
	}
	return Matrix{rows: m.cols, cols: m.rows, data: data}
}

// ApplyTo returns m * v as a new vector.
// It panics if len(v) != m.Cols().
func (m Matrix) ApplyTo(v Vector) Vector {
	if len(v) != m.cols {
		panic(fmt.Sprintf("qmath: cannot apply %dx%d to vector of length %d", m.rows, m.cols, len(v)))
	}
	out := make(Vector, m.rows)
	for i := 0; i < m.rows; i++ {
		var sum complex128
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, a := range row {
			if a != 0 {
				sum += a * v[j]
			}
		}
		out[i] = sum
	}
	return out
}

// ApproxEqual reports whether m and o have the same shape and all
// elements within eps of each other.
func (m Matrix) ApproxEqual(o Matrix, eps float64) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if cmplx.Abs(m.data[i]-o.data[i]) > eps {
			return false
		}
	}
	return true
}

// IsUnitary reports whether m is square and m† m ≈ I within eps.
func (m Matrix) IsUnitary(eps float64) bool {
	if m.rows != m.cols {
		return false
	}
	return m.Adjoint().Mul(m).ApproxEqual(Identity(m.rows), eps)
}

// String returns a human-readable rendering, mainly for test failures.
func (m Matrix) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Matrix %dx%d [", m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString("; ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%v", m.data[i*m.cols+j])
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// SwapMatrix returns the 4x4 operator exchanging two adjacent wires.
func SwapMatrix() Matrix {
	return FromRows([][]complex128{
		{1, 0, 0, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
	})
}

// ControlledExpand lifts a 2^k x 2^k operator acting on the given target
// wires into the full 2^numWires space, restricted to the control
// subspace described by controlMask and controlValue: basis states whose
// bits under controlMask differ from controlValue pass through unchanged.
//
// Targets are wire indices, least significant first with respect to the
// operator's own index space. Targets must be distinct and disjoint from
// the control mask.
func ControlledExpand(op Matrix, targets []int, numWires int, controlMask, controlValue int) Matrix {
	if op.rows != op.cols || op.rows != 1<<len(targets) {
		panic(fmt.Sprintf("qmath: operator %dx%d does not cover %d target wires", op.rows, op.cols, len(targets)))
	}
	n := 1 << numWires
	data := make([]complex128, n*n)
	for col := 0; col < n; col++ {
		if col&controlMask != controlValue&controlMask {
			data[col*n+col] = 1
			continue
		}
		// Extract the operator-space column index from the target bits.
		sub := 0
		for bit, w := range targets {
			if col&(1<<w) != 0 {
				sub |= 1 << bit
			}
		}
		base := col
		for _, w := range targets {
			base &^= 1 << w
		}
		for subRow := 0; subRow < op.rows; subRow++ {
			a := op.data[subRow*op.cols+sub]
			if a == 0 {
				continue
			}
			row := base
			for bit, w := range targets {
				if subRow&(1<<bit) != 0 {
					row |= 1 << w
				}
			}
			data[row*n+col] = a
		}
	}
	return Matrix{rows: n, cols: n, data: data}
}

// phase returns e^(i*theta) as a complex128.
func phase(theta float64) complex128 {
	return cmplx.Exp(complex(0, theta))
}

// invSqrt2 is 1/sqrt(2), the Hadamard normalization factor.
var invSqrt2 = complex(1/math.Sqrt2, 0)
