// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/devblok/trigon/driver"
	"github.com/pkg/errors"
)

// NoQueueFamily marks a queue family index that was not found
const NoQueueFamily = -1

// ErrMissingExtension is returned when a required extension or layer is not available
var ErrMissingExtension = errors.New("required extension is not available")

// DeviceProperties is what a physical device can offer for rendering
// to a particular surface
type DeviceProperties struct {
	GraphicsQueueFamilyIndex     int
	PresentationQueueFamilyIndex int
	SupportsRequiredExtensions   bool

	SurfaceCapabilities driver.SurfaceCapabilities
	SurfaceFormats      []driver.SurfaceFormat
	PresentationModes   []driver.PresentMode

	// ExtensionNames are the extensions to enable on the logical device,
	// the required ones followed by the optional ones that are available
	ExtensionNames []string
}

// NewDeviceProperties returns properties with no queue families found
func NewDeviceProperties() DeviceProperties {
	return DeviceProperties{
		GraphicsQueueFamilyIndex:     NoQueueFamily,
		PresentationQueueFamilyIndex: NoQueueFamily,
	}
}

// MeetsMinimumRequirements tells if the device can render and present at all
func (p DeviceProperties) MeetsMinimumRequirements() bool {
	return p.GraphicsQueueFamilyIndex != NoQueueFamily &&
		p.PresentationQueueFamilyIndex != NoQueueFamily &&
		p.SupportsRequiredExtensions &&
		len(p.SurfaceFormats) > 0 &&
		len(p.PresentationModes) > 0
}

// MeetsOptimumQueueRequirements tells if one queue family does both graphics and presentation
func (p DeviceProperties) MeetsOptimumQueueRequirements() bool {
	return p.GraphicsQueueFamilyIndex != NoQueueFamily &&
		p.GraphicsQueueFamilyIndex == p.PresentationQueueFamilyIndex
}

// QueueFamilies returns the distinct queue families that are in use,
// the graphics family first
func (p DeviceProperties) QueueFamilies() []uint32 {
	var families []uint32
	if p.GraphicsQueueFamilyIndex != NoQueueFamily {
		families = append(families, uint32(p.GraphicsQueueFamilyIndex))
	}
	if p.PresentationQueueFamilyIndex != NoQueueFamily && !p.MeetsOptimumQueueRequirements() {
		families = append(families, uint32(p.PresentationQueueFamilyIndex))
	}
	return families
}

// BuildExtensionSet checks that every required name is available and returns
// the required names followed by the optional names that are available.
// The first missing required name fails the whole set.
func BuildExtensionSet(available, required, optional []string) ([]string, error) {
	has := make(map[string]bool, len(available))
	for _, name := range available {
		has[name] = true
	}

	set := make([]string, 0, len(required)+len(optional))
	for _, name := range required {
		if !has[name] {
			return nil, errors.Wrap(ErrMissingExtension, name)
		}
		set = append(set, name)
	}
	for _, name := range optional {
		if has[name] {
			set = append(set, name)
		}
	}
	return set, nil
}
