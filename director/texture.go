// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package director

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/qsim"
)

// floatsPerTexel is the RGBA channel count; each texel packs two
// complex amplitudes as (re0, im0, re1, im1).
const floatsPerTexel = 4

// TextureConfig describes a float texture to create.
type TextureConfig struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the texture dimensions in texels.
	Width  int
	Height int

	// Usage specifies how the texture will be used. Zero means
	// copy source, copy destination, and shader binding.
	Usage gputypes.TextureUsage
}

// FloatTexture is a 32-bit float RGBA texture owned by a Director,
// with a host-side mirror of its contents. In stub mode the mirror is
// the texture.
type FloatTexture struct {
	d        *Director
	tex      hal.Texture
	width    int
	height   int
	label    string
	gen      uint64
	released atomic.Bool

	// data is the host mirror, len width*height*4. Kernels in stub
	// mode read and write it directly; uploads keep it in sync in
	// device mode so readback never depends on HAL buffer mapping.
	data []float32
}

// CreateFloatTexture creates a zero-filled float texture.
func (d *Director) CreateFloatTexture(config TextureConfig) (*FloatTexture, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, config.Width, config.Height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ensureUsableLocked("createFloatTexture"); err != nil {
		return nil, err
	}

	t := &FloatTexture{
		d:      d,
		width:  config.Width,
		height: config.Height,
		label:  config.Label,
		gen:    d.generation,
		data:   make([]float32, config.Width*config.Height*floatsPerTexel),
	}

	if d.device != nil {
		tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
			Label: config.Label,
			Size: hal.Extent3D{
				Width:              uint32(config.Width),
				Height:             uint32(config.Height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     types.TextureDimension2D,
			Format:        types.TextureFormatRGBA32Float,
			Usage:         convertTextureUsage(config.Usage),
		})
		if err != nil {
			d.recordFaultLocked("createFloatTexture", classifyDeviceError(err))
			return nil, fmt.Errorf("director: createFloatTexture: %w", err)
		}
		t.tex = tex
	}

	qsim.Logger().Debug("float texture created",
		"label", config.Label, "width", config.Width, "height", config.Height)
	return t, nil
}

// CreateRawFloatTexture creates a texture initialized with data, which
// must hold exactly width*height*4 floats.
func (d *Director) CreateRawFloatTexture(width, height int, data []float32, label string) (*FloatTexture, error) {
	if len(data) != width*height*floatsPerTexel {
		return nil, fmt.Errorf("%w: got %d floats for %dx%d",
			ErrDataSizeMismatch, len(data), width, height)
	}
	t, err := d.CreateFloatTexture(TextureConfig{Label: label, Width: width, Height: height})
	if err != nil {
		return nil, err
	}
	if err := t.WriteFloats(data); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// WithRawDataTexture creates a texture from data, hands it to fn, and
// releases it when fn returns, even on error or panic. This is the
// scoped acquisition pattern for short-lived inputs: matrices, control
// masks, intermediate states.
func (d *Director) WithRawDataTexture(width, height int, data []float32, fn func(*FloatTexture) error) error {
	t, err := d.CreateRawFloatTexture(width, height, data, "scoped_raw_data")
	if err != nil {
		return err
	}
	defer t.Release()
	return fn(t)
}

// Width returns the texture width in texels.
func (t *FloatTexture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *FloatTexture) Height() int { return t.height }

// Label returns the debug label.
func (t *FloatTexture) Label() string { return t.label }

// Generation returns the context generation the texture was created
// under.
func (t *FloatTexture) Generation() uint64 { return t.gen }

// IsReleased reports whether Release has been called.
func (t *FloatTexture) IsReleased() bool { return t.released.Load() }

// Release frees the texture. Safe to call more than once; later calls
// are no-ops.
func (t *FloatTexture) Release() {
	if t.released.Swap(true) {
		return
	}
	t.d.mu.Lock()
	device := t.d.device
	sameGen := t.gen == t.d.generation
	t.d.mu.Unlock()

	// A texture from a lost generation has no live GPU object to free.
	if device != nil && t.tex != nil && sameGen {
		device.DestroyTexture(t.tex)
	}
	t.tex = nil
	t.data = nil
}

// checkUsable verifies the texture can still be operated on.
func (t *FloatTexture) checkUsable() error {
	if t.released.Load() {
		return ErrTextureReleased
	}
	t.d.mu.Lock()
	stale := t.gen != t.d.generation
	t.d.mu.Unlock()
	if stale {
		return ErrStaleGeneration
	}
	return nil
}

// WriteFloats replaces the texture's full contents. data must hold
// exactly width*height*4 floats.
func (t *FloatTexture) WriteFloats(data []float32) error {
	if err := t.checkUsable(); err != nil {
		return err
	}
	if len(data) != t.width*t.height*floatsPerTexel {
		return fmt.Errorf("%w: got %d floats for %dx%d",
			ErrDataSizeMismatch, len(data), t.width, t.height)
	}
	copy(t.data, data)

	t.d.mu.Lock()
	device := t.d.device
	queue := t.d.queue
	t.d.mu.Unlock()
	if device == nil {
		return nil
	}

	queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   types.TextureAspectAll,
		},
		floatsToBytes(data),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.width * floatsPerTexel * 4),
			RowsPerImage: uint32(t.height),
		},
		&hal.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(t.height),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// convertTextureUsage maps the public gputypes usage bits onto the HAL
// equivalents. Shader binding becomes storage binding: compute kernels
// access these textures as storage, not sampled images.
func convertTextureUsage(usage gputypes.TextureUsage) types.TextureUsage {
	if usage == 0 {
		return types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageStorageBinding
	}
	var result types.TextureUsage
	if usage&gputypes.TextureUsageCopySrc != 0 {
		result |= types.TextureUsageCopySrc
	}
	if usage&gputypes.TextureUsageCopyDst != 0 {
		result |= types.TextureUsageCopyDst
	}
	if usage&gputypes.TextureUsageTextureBinding != 0 {
		result |= types.TextureUsageStorageBinding
	}
	return result
}

func floatsToBytes(data []float32) []byte {
	buf := make([]byte, len(data)*4)
	for i, v := range data {
		bits := math.Float32bits(v)
		buf[i*4] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return buf
}
