// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package director

import (
	_ "embed"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/qsim"
)

//go:embed shaders/apply_unitary.wgsl
var applyUnitaryWGSL string

// UniformArg is one named kernel argument: either a float vector or a
// texture binding.
type UniformArg struct {
	Name    string
	Floats  []float32
	Texture *FloatTexture
}

// FloatsArg creates a float-vector argument.
func FloatsArg(name string, values ...float32) UniformArg {
	return UniformArg{Name: name, Floats: values}
}

// TextureArg creates a texture argument.
func TextureArg(name string, t *FloatTexture) UniformArg {
	return UniformArg{Name: name, Texture: t}
}

// findTextureArg returns the texture bound under name, or nil.
func findTextureArg(args []UniformArg, name string) *FloatTexture {
	for _, a := range args {
		if a.Name == name && a.Texture != nil {
			return a.Texture
		}
	}
	return nil
}

// findFloatsArg returns the float vector bound under name, or nil.
func findFloatsArg(args []UniformArg, name string) []float32 {
	for _, a := range args {
		if a.Name == name && a.Texture == nil {
			return a.Floats
		}
	}
	return nil
}

// KernelMirror is the CPU twin of a compute kernel: the same
// algorithm as the WGSL source, writing the target's host mirror.
// Stub-mode directors run only the mirror; device-mode directors run
// it after the dispatch so readback has the data regardless of HAL
// buffer mapping support.
type KernelMirror func(target *FloatTexture, args []UniformArg) error

// Shader is a compiled compute kernel plus its CPU mirror.
type Shader struct {
	d          *Director
	label      string
	entryPoint string
	source     string
	mirror     KernelMirror
	gen        uint64
	released   atomic.Bool

	// Device-mode objects; all nil in stub mode.
	spirv          []uint32
	module         hal.ShaderModule
	inputLayout    hal.BindGroupLayout
	outputLayout   hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline
}

// CompileShader compiles WGSL source into a compute kernel with the
// given entry point. mirror may be nil for kernels whose results are
// never read back. In stub mode the source is kept but not compiled.
func (d *Director) CompileShader(source, entryPoint, label string, mirror KernelMirror) (*Shader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compileShaderLocked(source, entryPoint, label, mirror)
}

func (d *Director) compileShaderLocked(source, entryPoint, label string, mirror KernelMirror) (*Shader, error) {
	if err := d.ensureUsableLocked("compileShader"); err != nil {
		return nil, err
	}

	s := &Shader{
		d:          d,
		label:      label,
		entryPoint: entryPoint,
		source:     source,
		mirror:     mirror,
		gen:        d.generation,
	}
	if d.device == nil {
		return s, nil
	}

	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("director: compile %s: %w", label, err)
	}
	s.spirv = make([]uint32, len(spirvBytes)/4)
	for i := range s.spirv {
		s.spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	if err := s.createDeviceObjects(d.device); err != nil {
		s.destroy()
		d.recordFaultLocked("compileShader", classifyDeviceError(err))
		return nil, fmt.Errorf("director: compileShader: %w", err)
	}

	qsim.Logger().Debug("kernel compiled",
		"label", label, "entry", entryPoint, "spirvWords", len(s.spirv))
	return s, nil
}

func (s *Shader) createDeviceObjects(device hal.Device) error {
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  s.label,
		Source: hal.ShaderSource{SPIRV: s.spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	s.module = module

	// Group 0: a uniform config block plus read-only inputs.
	inputLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: s.label + "_input_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type:           types.BufferBindingTypeUniform,
					MinBindingSize: 16,
				},
			},
			{
				Binding:    1,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
			{
				Binding:    2,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create input bind group layout: %w", err)
	}
	s.inputLayout = inputLayout

	// Group 1: the output amplitudes.
	outputLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: s.label + "_output_layout",
		Entries: []types.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: types.ShaderStageCompute,
				Buffer: &types.BufferBindingLayout{
					Type: types.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create output bind group layout: %w", err)
	}
	s.outputLayout = outputLayout

	pipelineLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            s.label + "_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.inputLayout, s.outputLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	s.pipelineLayout = pipelineLayout

	pipeline, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  s.label + "_pipeline",
		Layout: s.pipelineLayout,
		Compute: hal.ComputeState{
			Module:     s.module,
			EntryPoint: s.entryPoint,
		},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	s.pipeline = pipeline
	return nil
}

// Label returns the shader's debug label.
func (s *Shader) Label() string { return s.label }

// Generation returns the context generation the shader was compiled
// under.
func (s *Shader) Generation() uint64 { return s.gen }

// IsReleased reports whether Release has been called.
func (s *Shader) IsReleased() bool { return s.released.Load() }

// SPIRVCode returns the compiled SPIR-V words, or nil in stub mode.
func (s *Shader) SPIRVCode() []uint32 { return s.spirv }

// Release frees the shader's GPU objects. Safe to call more than once.
func (s *Shader) Release() {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.destroy()
}

// destroy frees device objects. Caller holds d.mu (or the shader was
// never shared). Objects from a lost generation are already gone.
func (s *Shader) destroy() {
	if s.released.Swap(true) {
		return
	}
	device := s.d.device
	if device == nil || s.gen != s.d.generation {
		return
	}
	if s.pipeline != nil {
		device.DestroyComputePipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipelineLayout != nil {
		device.DestroyPipelineLayout(s.pipelineLayout)
		s.pipelineLayout = nil
	}
	if s.inputLayout != nil {
		device.DestroyBindGroupLayout(s.inputLayout)
		s.inputLayout = nil
	}
	if s.outputLayout != nil {
		device.DestroyBindGroupLayout(s.outputLayout)
		s.outputLayout = nil
	}
	if s.module != nil {
		device.DestroyShaderModule(s.module)
		s.module = nil
	}
}

// checkUsable verifies the shader can still be dispatched.
func (s *Shader) checkUsable() error {
	if s.released.Load() {
		return ErrShaderReleased
	}
	s.d.mu.Lock()
	stale := s.gen != s.d.generation
	s.d.mu.Unlock()
	if stale {
		return ErrStaleGeneration
	}
	return nil
}
