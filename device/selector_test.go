// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/devblok/trigon/driver/drivertest"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

var errQuery = errors.New("query failed")

func candidates(pds ...*drivertest.PhysicalDevice) []driver.PhysicalDevice {
	list := make([]driver.PhysicalDevice, 0, len(pds))
	for _, pd := range pds {
		list = append(list, pd)
	}
	return list
}

func TestMinimumRequirements(t *testing.T) {
	c := qt.New(t)

	props := device.NewDeviceProperties()
	props.GraphicsQueueFamilyIndex = -1
	props.PresentationQueueFamilyIndex = 2
	props.SupportsRequiredExtensions = true
	props.SurfaceFormats = []driver.SurfaceFormat{{}}
	props.PresentationModes = []driver.PresentMode{driver.PresentModeFifo}
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, false)
	c.Assert(device.ScorePhysicalDevice(props), qt.Equals, 0)

	props.GraphicsQueueFamilyIndex = 0
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, true)
	c.Assert(props.MeetsOptimumQueueRequirements(), qt.Equals, false)
	c.Assert(props.QueueFamilies(), qt.DeepEquals, []uint32{0, 2})
}

func TestScoreIsConjunction(t *testing.T) {
	c := qt.New(t)

	full := func() device.DeviceProperties {
		return device.DeviceProperties{
			GraphicsQueueFamilyIndex:     0,
			PresentationQueueFamilyIndex: 0,
			SupportsRequiredExtensions:   true,
			SurfaceFormats:               []driver.SurfaceFormat{{Format: driver.FormatB8G8R8A8Unorm}},
			PresentationModes:            []driver.PresentMode{driver.PresentModeFifo},
		}
	}
	c.Assert(device.ScorePhysicalDevice(full()), qt.Equals, 1)

	breakers := map[string]func(*device.DeviceProperties){
		"graphics":   func(p *device.DeviceProperties) { p.GraphicsQueueFamilyIndex = device.NoQueueFamily },
		"present":    func(p *device.DeviceProperties) { p.PresentationQueueFamilyIndex = device.NoQueueFamily },
		"extensions": func(p *device.DeviceProperties) { p.SupportsRequiredExtensions = false },
		"formats":    func(p *device.DeviceProperties) { p.SurfaceFormats = nil },
		"modes":      func(p *device.DeviceProperties) { p.PresentationModes = nil },
	}
	for name, breakIt := range breakers {
		c.Run(name, func(c *qt.C) {
			props := full()
			breakIt(&props)
			c.Assert(device.ScorePhysicalDevice(props), qt.Equals, 0)
		})
	}
}

func TestExtractProperties(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	surface := drivertest.NewSurface(pd.Counter)

	props := device.ExtractProperties(pd, surface, device.DefaultRequirements())
	c.Assert(props.GraphicsQueueFamilyIndex, qt.Equals, 0)
	c.Assert(props.PresentationQueueFamilyIndex, qt.Equals, 0)
	c.Assert(props.SupportsRequiredExtensions, qt.Equals, true)
	c.Assert(props.ExtensionNames, qt.DeepEquals, []string{device.SwapchainExtensionName})
	c.Assert(props.SurfaceCapabilities, qt.Equals, pd.Capabilities)
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, true)
}

func TestExtractPropertiesSeparateFamilies(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.Families = []driver.QueueFamily{
		{Index: 0, QueueCount: 0, Graphics: true},
		{Index: 1, QueueCount: 1, Transfer: true},
		{Index: 2, QueueCount: 4, Graphics: true},
		{Index: 3, QueueCount: 1, Graphics: true},
	}
	pd.PresentFamilies = map[uint32]bool{0: true, 1: true, 3: true}

	props := device.ExtractProperties(pd, nil, device.DefaultRequirements())
	c.Assert(props.GraphicsQueueFamilyIndex, qt.Equals, 2)
	c.Assert(props.PresentationQueueFamilyIndex, qt.Equals, 1)
	c.Assert(props.QueueFamilies(), qt.DeepEquals, []uint32{2, 1})
}

func TestExtractPropertiesQueryFailures(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.FormatsErr = errQuery
	pd.ModesErr = errQuery

	props := device.ExtractProperties(pd, nil, device.DefaultRequirements())
	c.Assert(props.SurfaceFormats, qt.HasLen, 0)
	c.Assert(props.PresentationModes, qt.HasLen, 0)
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, false)

	pd = drivertest.NewPhysicalDevice("gpu")
	pd.ExtensionsErr = errQuery
	props = device.ExtractProperties(pd, nil, device.DefaultRequirements())
	c.Assert(props.SupportsRequiredExtensions, qt.Equals, false)
}

func TestExtractPropertiesOptionalExtensions(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.DeviceExtensions = []string{"VK_KHR_maintenance1", device.SwapchainExtensionName}

	props := device.ExtractProperties(pd, nil, device.Requirements{
		RequiredExtensions: []string{device.SwapchainExtensionName},
		OptionalExtensions: []string{"VK_KHR_maintenance1", "VK_EXT_unknown"},
	})
	c.Assert(props.SupportsRequiredExtensions, qt.Equals, true)
	c.Assert(props.ExtensionNames, qt.DeepEquals, []string{device.SwapchainExtensionName, "VK_KHR_maintenance1"})

	pd.DeviceExtensions = []string{"VK_KHR_maintenance1"}
	props = device.ExtractProperties(pd, nil, device.DefaultRequirements())
	c.Assert(props.SupportsRequiredExtensions, qt.Equals, false)
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, false)
}

func TestBuildExtensionSet(t *testing.T) {
	c := qt.New(t)

	set, err := device.BuildExtensionSet([]string{"a", "b", "c"}, []string{"b"}, []string{"x", "a"})
	c.Assert(err, qt.IsNil)
	c.Assert(set, qt.DeepEquals, []string{"b", "a"})

	_, err = device.BuildExtensionSet([]string{"a"}, []string{"a", "b"}, nil)
	c.Assert(errors.Cause(err), qt.Equals, device.ErrMissingExtension)
	c.Assert(err, qt.ErrorMatches, "b: .*")
}

func TestSelectBestDeviceFirstWins(t *testing.T) {
	c := qt.New(t)
	broken := drivertest.NewPhysicalDevice("broken")
	broken.Modes = nil
	first := drivertest.NewPhysicalDevice("first")
	second := drivertest.NewPhysicalDevice("second")

	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	pd, props, err := device.SelectBestDevice(candidates(broken, first, second), nil, device.DefaultRequirements(), logger)
	c.Assert(err, qt.IsNil)
	c.Assert(pd, qt.Equals, driver.PhysicalDevice(first))
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, true)
	c.Assert(hook.AllEntries(), qt.HasLen, 3)
	c.Assert(hook.AllEntries()[0].Data["device"], qt.Equals, "broken")
}

func TestSelectBestDeviceNoneSuitable(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.PresentFamilies = nil

	_, props, err := device.SelectBestDevice(candidates(pd), nil, device.DefaultRequirements(), nil)
	c.Assert(err, qt.Equals, device.ErrNoSuitableDevice)
	c.Assert(props.GraphicsQueueFamilyIndex, qt.Equals, device.NoQueueFamily)

	_, _, err = device.SelectBestDevice(nil, nil, device.DefaultRequirements(), nil)
	c.Assert(err, qt.Equals, device.ErrNoSuitableDevice)
}

func TestDescribe(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.DeviceInfo.APIVersion = 1<<22 | 1<<12 | 70

	info := device.DescribeWithSurface(pd, nil, device.DefaultRequirements())
	c.Assert(info.Name, qt.Equals, "gpu")
	c.Assert(info.Type, qt.Equals, "discrete")
	c.Assert(info.APIVersion, qt.Equals, "1.1.70")
	c.Assert(info.QueueFamilies, qt.HasLen, 1)
	c.Assert(info.Invalid, qt.Equals, false)
	c.Assert(info.Surface.Suitable, qt.Equals, true)
	c.Assert(info.Surface.Score, qt.Equals, 1)

	pd.ExtensionsErr = errQuery
	c.Assert(device.Describe(pd).Invalid, qt.Equals, true)
}
