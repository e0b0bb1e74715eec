// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"github.com/devblok/trigon/driver"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

type physicalDevice struct {
	handle vk.PhysicalDevice
}

func surfaceHandle(s driver.Surface) vk.Surface {
	return s.(*surface).handle
}

// Info implements interface
func (p *physicalDevice) Info() driver.DeviceInfo {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(p.handle, &properties)
	properties.Deref()

	info := driver.DeviceInfo{
		Name:          vk.ToString(properties.DeviceName[:]),
		Type:          driver.DeviceType(properties.DeviceType),
		DeviceID:      properties.DeviceID,
		VendorID:      properties.VendorID,
		DriverVersion: properties.DriverVersion,
		APIVersion:    properties.ApiVersion,
	}

	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(p.handle, &memoryProperties)
	memoryProperties.Deref()
	for idx := uint32(0); idx < memoryProperties.MemoryHeapCount; idx++ {
		memoryProperties.MemoryHeaps[idx].Deref()
		info.Memory += uint64(memoryProperties.MemoryHeaps[idx].Size)
	}
	return info
}

// QueueFamilies implements interface
func (p *physicalDevice) QueueFamilies() []driver.QueueFamily {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(p.handle, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(p.handle, &count, properties)

	families := make([]driver.QueueFamily, 0, len(properties))
	for idx, family := range properties {
		family.Deref()
		families = append(families, driver.QueueFamily{
			Index:      uint32(idx),
			QueueCount: family.QueueCount,
			Graphics:   family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0,
			Compute:    family.QueueFlags&vk.QueueFlags(vk.QueueComputeBit) != 0,
			Transfer:   family.QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0,
		})
	}
	return families
}

// Extensions implements interface
func (p *physicalDevice) Extensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.handle, "", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateDeviceExtensionProperties(p.handle, "", &count, properties)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateDeviceExtensionProperties()")
	}
	return extensionNames(properties), nil
}

// SurfaceSupport implements interface
func (p *physicalDevice) SurfaceSupport(family uint32, s driver.Surface) (bool, error) {
	var supported vk.Bool32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceSupport(p.handle, family, surfaceHandle(s), &supported)); err != nil {
		return false, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceSupport()")
	}
	return supported.B(), nil
}

// SurfaceCapabilities implements interface
func (p *physicalDevice) SurfaceCapabilities(s driver.Surface) (driver.SurfaceCapabilities, error) {
	var caps vk.SurfaceCapabilities
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceCapabilities(p.handle, surfaceHandle(s), &caps)); err != nil {
		return driver.SurfaceCapabilities{}, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceCapabilities()")
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	return driver.SurfaceCapabilities{
		MinImageCount:    caps.MinImageCount,
		MaxImageCount:    caps.MaxImageCount,
		CurrentExtent:    extent(caps.CurrentExtent),
		MinImageExtent:   extent(caps.MinImageExtent),
		MaxImageExtent:   extent(caps.MaxImageExtent),
		CurrentTransform: driver.SurfaceTransform(caps.CurrentTransform),
	}, nil
}

func extent(e vk.Extent2D) driver.Extent2D {
	return driver.Extent2D{Width: e.Width, Height: e.Height}
}

// SurfaceFormats implements interface
func (p *physicalDevice) SurfaceFormats(s driver.Surface) ([]driver.SurfaceFormat, error) {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.handle, surfaceHandle(s), &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}
	formats := make([]vk.SurfaceFormat, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfaceFormats(p.handle, surfaceHandle(s), &count, formats)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfaceFormats()")
	}

	result := make([]driver.SurfaceFormat, 0, len(formats))
	for _, f := range formats {
		f.Deref()
		result = append(result, driver.SurfaceFormat{
			Format:     driver.Format(f.Format),
			ColorSpace: driver.ColorSpace(f.ColorSpace),
		})
	}
	return result, nil
}

// PresentModes implements interface
func (p *physicalDevice) PresentModes(s driver.Surface) ([]driver.PresentMode, error) {
	var count uint32
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(p.handle, surfaceHandle(s), &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes()")
	}
	modes := make([]vk.PresentMode, count)
	if err := vk.Error(vk.GetPhysicalDeviceSurfacePresentModes(p.handle, surfaceHandle(s), &count, modes)); err != nil {
		return nil, errors.Wrap(err, "vk.GetPhysicalDeviceSurfacePresentModes()")
	}

	result := make([]driver.PresentMode, 0, len(modes))
	for _, m := range modes {
		result = append(result, driver.PresentMode(m))
	}
	return result, nil
}

// CreateDevice implements interface
func (p *physicalDevice) CreateDevice(info driver.DeviceCreateInfo) (driver.Device, error) {
	queueInfos := make([]vk.DeviceQueueCreateInfo, 0, len(info.QueueFamilies))
	for _, family := range info.QueueFamilies {
		queueInfos = append(queueInfos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	dci := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var handle vk.Device
	if err := vk.Error(vk.CreateDevice(p.handle, &dci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateDevice()")
	}

	families := make(map[uint32]bool, len(info.QueueFamilies))
	for _, family := range info.QueueFamilies {
		families[family] = true
	}
	return &device{
		handle:   handle,
		physical: p.handle,
		families: families,
	}, nil
}
