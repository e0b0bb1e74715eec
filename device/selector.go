// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/devblok/trigon/driver"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrNoSuitableDevice is returned when no physical device can render to the surface
var ErrNoSuitableDevice = errors.New("no suitable physical device")

// SwapchainExtensionName is the device extension needed to present at all
const SwapchainExtensionName = "VK_KHR_swapchain"

// Requirements lists the device extensions a candidate must and may have
type Requirements struct {
	RequiredExtensions []string
	OptionalExtensions []string
}

// DefaultRequirements is what the renderer asks of a device
func DefaultRequirements() Requirements {
	return Requirements{
		RequiredExtensions: []string{SwapchainExtensionName},
	}
}

// ExtractProperties queries pd for everything the selection needs.
// Failing queries leave the corresponding properties empty, which in turn
// fails the minimum requirements.
func ExtractProperties(pd driver.PhysicalDevice, surface driver.Surface, req Requirements) DeviceProperties {
	props := NewDeviceProperties()

	for _, family := range pd.QueueFamilies() {
		if family.QueueCount == 0 {
			continue
		}
		if family.Graphics && props.GraphicsQueueFamilyIndex == NoQueueFamily {
			props.GraphicsQueueFamilyIndex = int(family.Index)
		}
		if props.PresentationQueueFamilyIndex == NoQueueFamily {
			if supported, err := pd.SurfaceSupport(family.Index, surface); err == nil && supported {
				props.PresentationQueueFamilyIndex = int(family.Index)
			}
		}
		if props.MeetsOptimumQueueRequirements() {
			break
		}
	}

	if caps, err := pd.SurfaceCapabilities(surface); err == nil {
		props.SurfaceCapabilities = caps
	}
	if formats, err := pd.SurfaceFormats(surface); err == nil {
		props.SurfaceFormats = formats
	}
	if modes, err := pd.PresentModes(surface); err == nil {
		props.PresentationModes = modes
	}

	if available, err := pd.Extensions(); err == nil {
		if names, err := BuildExtensionSet(available, req.RequiredExtensions, req.OptionalExtensions); err == nil {
			props.SupportsRequiredExtensions = true
			props.ExtensionNames = names
		}
	}
	return props
}

// ScorePhysicalDevice rates a device by its properties, 1 if it
// meets the minimum requirements and 0 if it does not
func ScorePhysicalDevice(props DeviceProperties) int {
	if props.MeetsMinimumRequirements() {
		return 1
	}
	return 0
}

// SelectBestDevice scores every candidate and returns the best one with its
// properties. Of equally scored devices the first one enumerated wins.
func SelectBestDevice(candidates []driver.PhysicalDevice, surface driver.Surface, req Requirements, logger log.FieldLogger) (driver.PhysicalDevice, DeviceProperties, error) {
	var (
		best      driver.PhysicalDevice
		bestProps DeviceProperties
		bestScore int
	)
	for _, pd := range candidates {
		props := ExtractProperties(pd, surface, req)
		score := ScorePhysicalDevice(props)
		if logger != nil {
			logger.WithField("device", pd.Info().Name).Debugf("scored %d", score)
		}
		if score > bestScore {
			best, bestProps, bestScore = pd, props, score
		}
	}
	if best == nil {
		return nil, NewDeviceProperties(), ErrNoSuitableDevice
	}
	return best, bestProps, nil
}
