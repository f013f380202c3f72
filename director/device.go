// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package director

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// It is an alias for gpucontext.DeviceProvider, giving the director a
// local name for the interface while staying fully compatible with the
// gpucontext ecosystem. Handles that additionally expose
// HalDevice() any and HalQueue() any can be attached directly.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle with no device behind it. Useful
// as an explicit placeholder where a handle is required but rendering
// should stay in stub mode.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns the undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo returns zero adapter info for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{}
}

// Attach binds the director to handle's device. Handles without HAL
// access, including NullDeviceHandle, are rejected; the director then
// keeps whatever device it already had.
func (d *Director) Attach(handle DeviceHandle) error {
	if handle == nil {
		return ErrNoDevice
	}
	return d.SetDeviceProvider(handle)
}
