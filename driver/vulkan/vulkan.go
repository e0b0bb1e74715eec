// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vulkan implements the driver interfaces on top of vulkan-go.
package vulkan

import (
	"unsafe"

	"github.com/devblok/trigon/driver"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// Names of the debug facilities
const (
	ValidationLayerName      = "VK_LAYER_LUNARG_standard_validation"
	DebugReportExtensionName = "VK_EXT_debug_report"
	SwapchainExtensionName   = "VK_KHR_swapchain"
)

// New loads the Vulkan entry points. procAddr is the vkGetInstanceProcAddr
// provided by the window system, when nil the default loader is used.
func New(procAddr unsafe.Pointer) (*API, error) {
	if procAddr == nil {
		if err := vk.SetDefaultGetInstanceProcAddr(); err != nil {
			return nil, errors.Wrap(err, "vk.SetDefaultGetInstanceProcAddr()")
		}
	} else {
		vk.SetGetInstanceProcAddr(procAddr)
	}

	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "vk.Init()")
	}
	return &API{}, nil
}

// API is the Vulkan implementation of driver.API.
type API struct{}

// InstanceExtensions implements interface
func (API) InstanceExtensions() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	properties := make([]vk.ExtensionProperties, count)
	if err := vk.Error(vk.EnumerateInstanceExtensionProperties("", &count, properties)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceExtensionProperties()")
	}
	return extensionNames(properties), nil
}

// InstanceLayers implements interface
func (API) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}
	properties := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, properties)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumerateInstanceLayerProperties()")
	}

	names := make([]string, 0, len(properties))
	for _, layer := range properties {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, nil
}

// CreateInstance implements interface
func (API) CreateInstance(info driver.InstanceInfo) (driver.Instance, error) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         vk.MakeVersion(1, 0, 0),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PApplicationName:   safeString(info.ApplicationName),
		PEngineName:        "Trigon\x00",
		EngineVersion:      vk.MakeVersion(1, 0, 0),
	}

	instanceInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var handle vk.Instance
	if err := vk.Error(vk.CreateInstance(&instanceInfo, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateInstance()")
	}
	if err := vk.InitInstance(handle); err != nil {
		vk.DestroyInstance(handle, nil)
		return nil, errors.Wrap(err, "vk.InitInstance()")
	}

	in := &instance{handle: handle}
	if info.DebugReport != nil {
		report := info.DebugReport
		drcci := vk.DebugReportCallbackCreateInfo{
			SType: vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags: vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: func(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
				object uint, location uint, messageCode int32, layerPrefix string,
				message string, userData unsafe.Pointer) vk.Bool32 {
				report(message)
				return vk.False
			},
		}

		var callback vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(handle, &drcci, nil, &callback)); err != nil {
			vk.DestroyInstance(handle, nil)
			return nil, errors.Wrap(err, "vk.CreateDebugReportCallback()")
		}
		in.debugCallback = callback
		in.hasDebugCallback = true
	}
	return in, nil
}

type instance struct {
	handle           vk.Instance
	debugCallback    vk.DebugReportCallback
	hasDebugCallback bool
}

// Handle implements interface
func (i *instance) Handle() interface{} {
	return i.handle
}

// WrapSurface implements interface
func (i *instance) WrapSurface(handle uintptr) driver.Surface {
	return &surface{
		instance: i.handle,
		handle:   vk.SurfaceFromPointer(handle),
	}
}

// PhysicalDevices implements interface
func (i *instance) PhysicalDevices() ([]driver.PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.handle, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}
	handles := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(i.handle, &count, handles)); err != nil {
		return nil, errors.Wrap(err, "vk.EnumeratePhysicalDevices()")
	}

	devices := make([]driver.PhysicalDevice, 0, len(handles))
	for _, h := range handles {
		devices = append(devices, &physicalDevice{handle: h})
	}
	return devices, nil
}

// Destroy implements interface
func (i *instance) Destroy() {
	if i.handle == nil {
		return
	}
	if i.hasDebugCallback {
		vk.DestroyDebugReportCallback(i.handle, i.debugCallback, nil)
		i.hasDebugCallback = false
	}
	vk.DestroyInstance(i.handle, nil)
	i.handle = nil
}

type surface struct {
	instance vk.Instance
	handle   vk.Surface
}

// Destroy implements interface
func (s *surface) Destroy() {
	if s.handle == vk.NullSurface {
		return
	}
	vk.DestroySurface(s.instance, s.handle, nil)
	s.handle = vk.NullSurface
}
