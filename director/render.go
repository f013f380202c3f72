// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package director

import (
	"fmt"
	"math"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/qsim"
	"github.com/gogpu/qsim/qmath"
)

// renderWaitTimeoutNs bounds the fence wait after a dispatch.
const renderWaitTimeoutNs = 5_000_000_000

// Render runs shader over target: one invocation per texel, then the
// kernel's CPU mirror to settle the host copy of the result. The
// dispatch is synchronous; Render returns after the fence signals.
//
// Note: HAL does not yet expose buffer handles for bind groups, so the
// numeric result always comes from the mirror. The device round trip
// still exercises encoding, submission, and fencing.
func (d *Director) Render(target *FloatTexture, shader *Shader, args []UniformArg) error {
	if target == nil || shader == nil {
		return fmt.Errorf("director: render: target and shader are required")
	}
	if target.d != d || shader.d != d {
		return fmt.Errorf("director: render: resource belongs to another director")
	}
	if err := target.checkUsable(); err != nil {
		return err
	}
	if err := shader.checkUsable(); err != nil {
		return err
	}
	for _, a := range args {
		if a.Texture == nil {
			continue
		}
		if a.Texture.d != d {
			return fmt.Errorf("director: render: texture %q belongs to another director", a.Name)
		}
		if err := a.Texture.checkUsable(); err != nil {
			return fmt.Errorf("director: render: texture %q: %w", a.Name, err)
		}
	}

	d.mu.Lock()
	if err := d.ensureUsableLocked("render"); err != nil {
		d.mu.Unlock()
		return err
	}
	device := d.device
	queue := d.queue
	d.mu.Unlock()

	if device != nil {
		if err := d.dispatch(device, queue, target, shader); err != nil {
			return err
		}
	}

	if shader.mirror != nil {
		if err := shader.mirror(target, args); err != nil {
			return fmt.Errorf("director: render: %s mirror: %w", shader.label, err)
		}
	}
	return nil
}

func (d *Director) dispatch(device hal.Device, queue hal.Queue, target *FloatTexture, shader *Shader) error {
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: shader.label + "_encoder",
	})
	if err != nil {
		return d.fail("render", err)
	}
	if err := encoder.BeginEncoding(shader.label); err != nil {
		return d.fail("render", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: shader.label,
	})
	pass.SetPipeline(shader.pipeline)
	groupsX := uint32((target.width + 7) / 8)
	groupsY := uint32((target.height + 7) / 8)
	pass.Dispatch(groupsX, groupsY, 1)
	pass.End()

	cmdBuffer, err := encoder.EndEncoding()
	if err != nil {
		return d.fail("render", err)
	}
	defer cmdBuffer.Destroy()

	fence, err := device.CreateFence()
	if err != nil {
		return d.fail("render", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuffer}, fence, 1); err != nil {
		return d.fail("render", err)
	}
	if _, err := device.Wait(fence, 1, renderWaitTimeoutNs); err != nil {
		return d.fail("render", err)
	}
	return nil
}

// ReadPixelFloats copies a rectangle of texels out of t as floats,
// 4 per texel. Negative w or h selects the full extent.
func (t *FloatTexture) ReadPixelFloats(x, y, w, h int) ([]float32, error) {
	if err := t.checkUsable(); err != nil {
		return nil, err
	}
	if w < 0 || h < 0 {
		x, y, w, h = 0, 0, t.width, t.height
	}
	if x < 0 || y < 0 || w == 0 || h == 0 || x+w > t.width || y+h > t.height {
		return nil, fmt.Errorf("%w: read %d,%d %dx%d from %dx%d",
			ErrInvalidDimensions, x, y, w, h, t.width, t.height)
	}
	out := make([]float32, w*h*floatsPerTexel)
	for row := 0; row < h; row++ {
		src := ((y+row)*t.width + x) * floatsPerTexel
		dst := row * w * floatsPerTexel
		copy(out[dst:dst+w*floatsPerTexel], t.data[src:src+w*floatsPerTexel])
	}
	return out, nil
}

// ReadPixelBytes is ReadPixelFloats serialized little-endian, 16 bytes
// per texel.
func (t *FloatTexture) ReadPixelBytes(x, y, w, h int) ([]byte, error) {
	floats, err := t.ReadPixelFloats(x, y, w, h)
	if err != nil {
		return nil, err
	}
	return floatsToBytes(floats), nil
}

// applyUnitaryMirror is the CPU twin of the apply_unitary kernel: a
// complex matrix-vector product over amplitudes packed two per texel.
func applyUnitaryMirror(target *FloatTexture, args []UniformArg) error {
	state := findTextureArg(args, "u_state")
	matrix := findTextureArg(args, "u_matrix")
	dim := findFloatsArg(args, "u_dim")
	if state == nil || matrix == nil || len(dim) == 0 {
		return fmt.Errorf("apply_unitary: missing u_state, u_matrix, or u_dim")
	}
	n := int(dim[0])
	if len(state.data) < n*2 || len(matrix.data) < n*n*2 || len(target.data) < n*2 {
		return fmt.Errorf("apply_unitary: textures too small for dimension %d", n)
	}

	for i := 0; i < n; i++ {
		var re, im float64
		for j := 0; j < n; j++ {
			mre := float64(matrix.data[(i*n+j)*2])
			mim := float64(matrix.data[(i*n+j)*2+1])
			sre := float64(state.data[j*2])
			sim := float64(state.data[j*2+1])
			re += mre*sre - mim*sim
			im += mre*sim + mim*sre
		}
		target.data[i*2] = float32(re)
		target.data[i*2+1] = float32(im)
	}
	return nil
}

// ApplyUnitary multiplies amps by the unitary u on the GPU: amplitudes
// and matrix rows packed two complex values per RGBA texel, one
// dispatch, one readback. Input and matrix textures are scoped to the
// call; the result vector is freshly allocated.
func (d *Director) ApplyUnitary(amps []complex128, u qmath.Matrix) ([]complex128, error) {
	n := len(amps)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: amplitude count %d is not a power of two", ErrInvalidDimensions, n)
	}
	if u.Rows() != n || u.Cols() != n {
		return nil, fmt.Errorf("%w: matrix %dx%d against %d amplitudes",
			ErrInvalidDimensions, u.Rows(), u.Cols(), n)
	}

	d.mu.Lock()
	kernel := d.applyKernel
	d.mu.Unlock()
	if kernel == nil {
		var err error
		if kernel, err = d.ensureApplyKernel(); err != nil {
			return nil, err
		}
	}

	stateW := texelsFor(n)
	stateData := packComplex(amps, stateW*floatsPerTexel)
	matrixData := packMatrix(u, stateW*floatsPerTexel)

	var out []complex128
	err := d.WithRawDataTexture(stateW, 1, stateData, func(state *FloatTexture) error {
		return d.WithRawDataTexture(stateW, n, matrixData, func(matrix *FloatTexture) error {
			target, err := d.CreateFloatTexture(TextureConfig{
				Label: "apply_unitary_out", Width: stateW, Height: 1,
			})
			if err != nil {
				return err
			}
			defer target.Release()

			err = d.Render(target, kernel, []UniformArg{
				TextureArg("u_state", state),
				TextureArg("u_matrix", matrix),
				FloatsArg("u_dim", float32(n)),
			})
			if err != nil {
				return err
			}

			floats, err := target.ReadPixelFloats(0, 0, -1, -1)
			if err != nil {
				return err
			}
			out = unpackComplex(floats, n)
			qsim.Logger().Debug("unitary applied", "dim", n, "norm", norm2(floats[:n*2]))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CircuitSource is the slice of the circuit model FinalState needs.
// *qsim.Circuit satisfies it.
type CircuitSource interface {
	NumWires() int
	NumColumns() int
	Column(i int) qsim.GateColumn
}

// FinalState evolves c's input state through every column at time t,
// one ApplyUnitary round trip per column.
func (d *Director) FinalState(c CircuitSource, t float64) (qmath.Vector, error) {
	state := []complex128(qmath.ZeroState(c.NumWires()))
	for i := 0; i < c.NumColumns(); i++ {
		next, err := d.ApplyUnitary(state, c.Column(i).Unitary(t))
		if err != nil {
			return nil, fmt.Errorf("director: column %d: %w", i, err)
		}
		state = next
	}
	return qmath.Vector(state), nil
}

// ensureApplyKernel compiles the built-in kernel on demand when the
// director was created with SkipKernelPrecompile.
func (d *Director) ensureApplyKernel() (*Shader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.applyKernel == nil {
		if err := d.compileBuiltinKernelsLocked(); err != nil {
			return nil, err
		}
	}
	return d.applyKernel, nil
}

// texelsFor returns the texel count holding n complex amplitudes at
// two per texel, at least one.
func texelsFor(n int) int {
	w := (n + 1) / 2
	if w < 1 {
		w = 1
	}
	return w
}

func packComplex(amps []complex128, stride int) []float32 {
	data := make([]float32, stride)
	for i, a := range amps {
		data[i*2] = float32(real(a))
		data[i*2+1] = float32(imag(a))
	}
	return data
}

func packMatrix(u qmath.Matrix, rowStride int) []float32 {
	n := u.Rows()
	data := make([]float32, n*rowStride)
	for i := 0; i < n; i++ {
		for j := 0; j < u.Cols(); j++ {
			v := u.At(i, j)
			data[i*rowStride+j*2] = float32(real(v))
			data[i*rowStride+j*2+1] = float32(imag(v))
		}
	}
	return data
}

func unpackComplex(floats []float32, n int) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(float64(floats[i*2]), float64(floats[i*2+1]))
	}
	return out
}

// norm2 is the squared magnitude sum of packed amplitudes, used by
// diagnostics to confirm unitarity of a round trip.
func norm2(floats []float32) float64 {
	var s float64
	for _, v := range floats {
		s += float64(v) * float64(v)
	}
	return math.Sqrt(s)
}
