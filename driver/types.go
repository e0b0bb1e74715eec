// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import "math"

// Format is a pixel format. Values match their Vulkan counterparts.
type Format uint32

// Pixel formats the renderer cares about
const (
	FormatUndefined     Format = 0
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

// ColorSpace is the colour space of a presentable image.
type ColorSpace uint32

// Colour spaces
const (
	ColorSpaceSrgbNonlinear ColorSpace = 0
)

// SurfaceFormat pairs a pixel format with its colour space.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PresentMode is the swapchain presentation mode.
type PresentMode uint32

// Presentation modes, FIFO is the only one guaranteed to exist
const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

// SurfaceTransform is a surface transform bit.
type SurfaceTransform uint32

// SurfaceTransformIdentity leaves the image as is.
const SurfaceTransformIdentity SurfaceTransform = 1

// UndefinedExtent marks an extent the surface leaves up to the swapchain.
const UndefinedExtent = math.MaxUint32

// Extent2D is a two dimensional size in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// SurfaceCapabilities describes what swapchains a surface supports.
type SurfaceCapabilities struct {
	MinImageCount    uint32
	MaxImageCount    uint32
	CurrentExtent    Extent2D
	MinImageExtent   Extent2D
	MaxImageExtent   Extent2D
	CurrentTransform SurfaceTransform
}

// QueueFamily describes one queue family of a physical device.
type QueueFamily struct {
	Index      uint32
	QueueCount uint32
	Graphics   bool
	Compute    bool
	Transfer   bool
}

// DeviceType is the kind of physical device.
type DeviceType uint32

// Device types
const (
	DeviceTypeOther DeviceType = iota
	DeviceTypeIntegratedGPU
	DeviceTypeDiscreteGPU
	DeviceTypeVirtualGPU
	DeviceTypeCPU
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGPU:
		return "integrated"
	case DeviceTypeDiscreteGPU:
		return "discrete"
	case DeviceTypeVirtualGPU:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	}
	return "other"
}

// DeviceInfo carries the general properties of a physical device.
type DeviceInfo struct {
	Name          string
	Type          DeviceType
	DeviceID      uint32
	VendorID      uint32
	DriverVersion uint32
	APIVersion    uint32

	// Memory is the sum of all memory heaps in bytes
	Memory uint64
}
