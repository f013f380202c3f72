// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package director

import (
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/qsim"
)

// Config controls Director creation.
type Config struct {
	// SkipKernelPrecompile delays compiling the built-in kernels until
	// first use instead of doing it in New.
	SkipKernelPrecompile bool
}

// Director owns a GPU device and drives compute dispatches over float
// textures. Lifecycle, generation, and fault queries are safe for
// concurrent use; dispatch, readback, and resource release follow the
// single-streamed device underneath and must be serialized by the
// caller.
//
// A nil device and queue put the Director in stub mode: resources are
// host-backed and kernels run through their CPU mirrors. Everything
// else, including the error and generation machinery, behaves the same.
type Director struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	closed bool

	// generation counts context lifetimes. Resources remember the
	// generation they were created under and refuse to operate after
	// the context was lost and restored.
	generation  uint64
	contextLost bool

	// First recorded device fault; sticky until the context is
	// restored.
	faultCode ErrorCode
	faultOp   string

	applyKernel *Shader

	// Index stream for the full-target quad, used by render-attachment
	// backends. The compute path dispatches per texel instead.
	quadIndexBuffer hal.Buffer
}

// quadIndices is the two-triangle index list covering a full quad.
var quadIndices = [6]uint16{0, 1, 2, 2, 1, 3}

// New creates a Director on the given device and queue. Pass nil for
// both to get a stub-mode director. Passing only one of them is an
// error.
func New(device hal.Device, queue hal.Queue, config Config) (*Director, error) {
	if (device == nil) != (queue == nil) {
		return nil, fmt.Errorf("director: device and queue must both be set or both nil")
	}

	d := &Director{
		device:     device,
		queue:      queue,
		generation: 1,
	}

	if device != nil {
		if err := d.createQuadIndexBuffer(); err != nil {
			return nil, err
		}
	}
	if !config.SkipKernelPrecompile {
		if err := d.compileBuiltinKernels(); err != nil {
			d.Close()
			return nil, err
		}
	}

	qsim.Logger().Info("director ready", "stub", device == nil)
	return d, nil
}

// SetDeviceProvider switches the director to a shared GPU device from
// an external provider (e.g. gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. Existing textures and shaders become stale; the context
// generation is bumped.
func (d *Director) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("director: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("director: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("director: provider HalQueue is not hal.Queue")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	d.destroyKernelsLocked()
	d.device = device
	d.queue = queue
	d.generation++
	d.contextLost = false
	d.faultCode = ErrorCodeNone
	d.faultOp = ""

	if err := d.createQuadIndexBufferLocked(); err != nil {
		return err
	}
	if err := d.compileBuiltinKernelsLocked(); err != nil {
		return err
	}
	qsim.Logger().Info("director attached to shared device", "generation", d.generation)
	return nil
}

// Close releases all GPU resources. The director is unusable after.
func (d *Director) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.destroyKernelsLocked()
	if d.device != nil && d.quadIndexBuffer != nil {
		d.device.DestroyBuffer(d.quadIndexBuffer)
		d.quadIndexBuffer = nil
	}
	d.closed = true
}

// IsStub reports whether the director runs without a GPU device.
func (d *Director) IsStub() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.device == nil
}

// Generation returns the current context generation. It changes only
// when the context is lost and restored or the device is swapped.
func (d *Director) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// NotifyContextLost records that the device context was lost. All
// operations fail with a CONTEXT_LOST fault until
// NotifyContextRestored is called.
func (d *Director) NotifyContextLost() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.contextLost {
		return
	}
	d.contextLost = true
	d.recordFaultLocked("context", ErrorCodeContextLost)
	qsim.Logger().Warn("device context lost", "generation", d.generation)
}

// NotifyContextRestored clears a context loss: the fault is cleared
// and the generation bumped, so resources from before the loss report
// ErrStaleGeneration instead of being used with a dead context.
func (d *Director) NotifyContextRestored() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.contextLost {
		return
	}
	d.contextLost = false
	d.faultCode = ErrorCodeNone
	d.faultOp = ""
	d.generation++
	d.destroyKernelsLocked()
	if err := d.compileBuiltinKernelsLocked(); err != nil {
		qsim.Logger().Warn("kernel recompile after context restore failed", "err", err)
	}
	qsim.Logger().Info("device context restored", "generation", d.generation)
}

// CheckForError returns the recorded device fault, or nil. Faults are
// sticky: once something failed, every later check reports it until
// the context is restored.
func (d *Director) CheckForError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.faultCode == ErrorCodeNone {
		return nil
	}
	return &DeviceError{Op: d.faultOp, Code: d.faultCode}
}

// fail classifies err as a device fault, records it, and returns a
// wrapped error naming the operation.
func (d *Director) fail(op string, err error) error {
	d.mu.Lock()
	d.recordFaultLocked(op, classifyDeviceError(err))
	d.mu.Unlock()
	return fmt.Errorf("director: %s: %w", op, err)
}

func (d *Director) recordFaultLocked(op string, code ErrorCode) {
	if d.faultCode != ErrorCodeNone || code == ErrorCodeNone {
		return
	}
	d.faultCode = code
	d.faultOp = op
	qsim.Logger().Warn("device fault recorded",
		"op", op, "code", code.String(), "value", uint32(code))
}

// ensureUsableLocked gates every operation on lifecycle state.
func (d *Director) ensureUsableLocked(op string) error {
	if d.closed {
		return ErrClosed
	}
	if d.contextLost {
		return &DeviceError{Op: op, Code: ErrorCodeContextLost}
	}
	return nil
}

func (d *Director) createQuadIndexBuffer() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createQuadIndexBufferLocked()
}

func (d *Director) createQuadIndexBufferLocked() error {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "director_quad_indices",
		Size:  uint64(len(quadIndices) * 2),
		Usage: types.BufferUsageIndex | types.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("director: create quad index buffer: %w", err)
	}
	data := make([]byte, len(quadIndices)*2)
	for i, v := range quadIndices {
		data[i*2] = byte(v)
		data[i*2+1] = byte(v >> 8)
	}
	d.queue.WriteBuffer(buf, 0, data)
	d.quadIndexBuffer = buf
	return nil
}

func (d *Director) compileBuiltinKernels() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compileBuiltinKernelsLocked()
}

func (d *Director) compileBuiltinKernelsLocked() error {
	kernel, err := d.compileShaderLocked(applyUnitaryWGSL, "cs_apply", "apply_unitary", applyUnitaryMirror)
	if err != nil {
		return err
	}
	d.applyKernel = kernel
	return nil
}

func (d *Director) destroyKernelsLocked() {
	if d.applyKernel != nil {
		d.applyKernel.destroy()
		d.applyKernel = nil
	}
}
