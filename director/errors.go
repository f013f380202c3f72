// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package director

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the director. Callers match them with
// errors.Is; device faults carry a *DeviceError instead.
var (
	// ErrNoDevice is returned when an operation needs a GPU device and
	// the director was created in stub mode.
	ErrNoDevice = errors.New("director: no GPU device attached")

	// ErrFloatTexturesUnsupported is returned when the device cannot
	// create 32-bit float textures.
	ErrFloatTexturesUnsupported = errors.New("director: float textures not supported")

	// ErrTextureReleased is returned when using a texture after its
	// Release or after its scope ended.
	ErrTextureReleased = errors.New("director: texture already released")

	// ErrShaderReleased is returned when using a shader after Release.
	ErrShaderReleased = errors.New("director: shader already released")

	// ErrStaleGeneration is returned when a resource created before a
	// context loss is used after the context was restored.
	ErrStaleGeneration = errors.New("director: resource from a lost context generation")

	// ErrInvalidDimensions is returned for non-positive texture sizes
	// or out-of-range readback rectangles.
	ErrInvalidDimensions = errors.New("director: invalid dimensions")

	// ErrDataSizeMismatch is returned when raw texture data does not
	// match width*height*4 floats.
	ErrDataSizeMismatch = errors.New("director: data size does not match texture dimensions")

	// ErrClosed is returned after the director has been closed.
	ErrClosed = errors.New("director: closed")
)

// ErrorCode is a numeric device fault category, using the error
// numbering of the underlying graphics context so logs line up with
// native tooling.
type ErrorCode uint32

const (
	ErrorCodeNone                        ErrorCode = 0
	ErrorCodeInvalidEnum                 ErrorCode = 0x0500
	ErrorCodeInvalidValue                ErrorCode = 0x0501
	ErrorCodeInvalidOperation            ErrorCode = 0x0502
	ErrorCodeOutOfMemory                 ErrorCode = 0x0505
	ErrorCodeInvalidFramebufferOperation ErrorCode = 0x0506
	ErrorCodeContextLost                 ErrorCode = 0x9242
)

// String returns the code's name.
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeNone:
		return "NO_ERROR"
	case ErrorCodeInvalidEnum:
		return "INVALID_ENUM"
	case ErrorCodeInvalidValue:
		return "INVALID_VALUE"
	case ErrorCodeInvalidOperation:
		return "INVALID_OPERATION"
	case ErrorCodeOutOfMemory:
		return "OUT_OF_MEMORY"
	case ErrorCodeInvalidFramebufferOperation:
		return "INVALID_FRAMEBUFFER_OPERATION"
	case ErrorCodeContextLost:
		return "CONTEXT_LOST"
	default:
		return "UNKNOWN"
	}
}

// DeviceError is a sticky device fault. Once recorded it is reported
// by every subsequent CheckForError until the context is restored.
type DeviceError struct {
	// Op is the operation during which the fault was first noticed.
	Op string
	// Code is the numeric fault category.
	Code ErrorCode
}

// Error includes both the symbolic name and the numeric code.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("director: %s: device error %s (0x%04X)", e.Op, e.Code, uint32(e.Code))
}

// classifyDeviceError maps an error from the HAL into a numeric fault
// category. Unrecognized errors count as invalid operations.
func classifyDeviceError(err error) ErrorCode {
	if err == nil {
		return ErrorCodeNone
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "out of memory") || strings.Contains(msg, "allocation"):
		return ErrorCodeOutOfMemory
	case strings.Contains(msg, "lost") || strings.Contains(msg, "removed"):
		return ErrorCodeContextLost
	case strings.Contains(msg, "framebuffer"):
		return ErrorCodeInvalidFramebufferOperation
	case strings.Contains(msg, "enum") || strings.Contains(msg, "format"):
		return ErrorCodeInvalidEnum
	case strings.Contains(msg, "value") || strings.Contains(msg, "size") || strings.Contains(msg, "range"):
		return ErrorCodeInvalidValue
	default:
		return ErrorCodeInvalidOperation
	}
}
