// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package drivertest

import (
	"github.com/devblok/trigon/driver"
)

// SwapchainExtension is the device extension presentation requires
const SwapchainExtension = "VK_KHR_swapchain"

// NewPhysicalDevice returns a device that can do everything the renderer
// needs with a single queue family: a graphics queue that can present,
// the swapchain extension, an 800x600 surface with two to eight images,
// a B8G8R8A8 unorm format and both FIFO and mailbox presentation.
func NewPhysicalDevice(name string) *PhysicalDevice {
	return &PhysicalDevice{
		Counter: NewCounter(),
		DeviceInfo: driver.DeviceInfo{
			Name: name,
			Type: driver.DeviceTypeDiscreteGPU,
		},
		Families: []driver.QueueFamily{
			{Index: 0, QueueCount: 1, Graphics: true, Compute: true, Transfer: true},
		},
		PresentFamilies:  map[uint32]bool{0: true},
		DeviceExtensions: []string{SwapchainExtension},
		Capabilities: driver.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    8,
			CurrentExtent:    driver.Extent2D{Width: 800, Height: 600},
			MinImageExtent:   driver.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   driver.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: driver.SurfaceTransformIdentity,
		},
		Formats: []driver.SurfaceFormat{
			{Format: driver.FormatB8G8R8A8Unorm, ColorSpace: driver.ColorSpaceSrgbNonlinear},
		},
		Modes: []driver.PresentMode{driver.PresentModeFifo, driver.PresentModeMailbox},
	}
}

// PhysicalDevice implements driver.PhysicalDevice. Fields can be changed
// by tests at any time, the next query sees the change.
type PhysicalDevice struct {
	Counter          *Counter
	DeviceInfo       driver.DeviceInfo
	Families         []driver.QueueFamily
	PresentFamilies  map[uint32]bool
	DeviceExtensions []string
	Capabilities     driver.SurfaceCapabilities
	Formats          []driver.SurfaceFormat
	Modes            []driver.PresentMode

	// Query failures
	ExtensionsErr   error
	SupportErr      error
	CapabilitiesErr error
	FormatsErr      error
	ModesErr        error

	// CreateErr is returned from CreateDevice when set
	CreateErr error

	// WithoutQueues makes created devices return no queues
	WithoutQueues bool

	// Created records every CreateDevice request
	Created []driver.DeviceCreateInfo

	// Device is the last device created
	Device *Device
}

// Info implements interface
func (p *PhysicalDevice) Info() driver.DeviceInfo {
	return p.DeviceInfo
}

// QueueFamilies implements interface
func (p *PhysicalDevice) QueueFamilies() []driver.QueueFamily {
	return p.Families
}

// Extensions implements interface
func (p *PhysicalDevice) Extensions() ([]string, error) {
	if p.ExtensionsErr != nil {
		return nil, p.ExtensionsErr
	}
	return p.DeviceExtensions, nil
}

// SurfaceSupport implements interface
func (p *PhysicalDevice) SurfaceSupport(family uint32, _ driver.Surface) (bool, error) {
	if p.SupportErr != nil {
		return false, p.SupportErr
	}
	return p.PresentFamilies[family], nil
}

// SurfaceCapabilities implements interface
func (p *PhysicalDevice) SurfaceCapabilities(_ driver.Surface) (driver.SurfaceCapabilities, error) {
	if p.CapabilitiesErr != nil {
		return driver.SurfaceCapabilities{}, p.CapabilitiesErr
	}
	return p.Capabilities, nil
}

// SurfaceFormats implements interface
func (p *PhysicalDevice) SurfaceFormats(_ driver.Surface) ([]driver.SurfaceFormat, error) {
	if p.FormatsErr != nil {
		return nil, p.FormatsErr
	}
	return p.Formats, nil
}

// PresentModes implements interface
func (p *PhysicalDevice) PresentModes(_ driver.Surface) ([]driver.PresentMode, error) {
	if p.ModesErr != nil {
		return nil, p.ModesErr
	}
	return p.Modes, nil
}

// CreateDevice implements interface
func (p *PhysicalDevice) CreateDevice(info driver.DeviceCreateInfo) (driver.Device, error) {
	p.Created = append(p.Created, info)
	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	d := &Device{
		resource: newResource(p.Counter, KindDevice),
		Info:     info,
		Fail:     map[string]error{},
		queues:   map[uint32]*Queue{},
	}
	if !p.WithoutQueues {
		for _, family := range info.QueueFamilies {
			d.queues[family] = &Queue{Family: family, device: d}
		}
	}
	p.Device = d
	return d, nil
}
