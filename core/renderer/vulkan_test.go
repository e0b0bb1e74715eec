// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer_test

import (
	"testing"
	"unsafe"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/core/renderer"
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/devblok/trigon/driver/drivertest"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type rendererFixture struct {
	api      *drivertest.API
	system   *fakeSystem
	renderer *renderer.Vulkan
	hook     *test.Hook
}

func newRenderer(devices ...*drivertest.PhysicalDevice) *rendererFixture {
	if len(devices) == 0 {
		devices = []*drivertest.PhysicalDevice{drivertest.NewPhysicalDevice("gpu")}
	}
	f := &rendererFixture{
		api: drivertest.NewAPI(devices...),
		system: &fakeSystem{
			hasMode: true,
			mode: core.VideoMode{
				DisplayMode: core.DisplayMode{Width: 1920, Height: 1080, RefreshRate: 60},
				ColorBits:   core.ColorBits{Red: 8, Green: 8, Blue: 8},
			},
		},
	}
	f.api.Layers = []string{renderer.ValidationLayerName}
	f.api.Extensions = append(f.api.Extensions, renderer.DebugReportExtensionName)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	f.hook = hook

	newAPI := func(unsafe.Pointer) (driver.API, error) { return f.api, nil }
	f.renderer = renderer.NewVulkanRenderer(f.system, newAPI, triangleLoader(), logger)
	return f
}

func (f *rendererFixture) device() *drivertest.Device {
	return f.api.Devices[0].Device
}

func (f *rendererFixture) assertReleased(c *qt.C) {
	c.Assert(f.api.Counter.TotalLive(), qt.Equals, 0)
	c.Assert(f.api.Counter.DoubleDestroys(), qt.Equals, 0)
	c.Assert(f.system.window.destroyed, qt.Equals, 1)
}

func TestRendererLifecycle(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()

	c.Assert(f.renderer.Initialize(core.RendererConfig{Windowed: true}), qt.IsNil)
	cfg := f.renderer.GetConfig()
	c.Assert(cfg.WindowName, qt.Equals, core.DefaultWindowName)
	c.Assert(cfg.WindowWidth, qt.Equals, 1920)
	c.Assert(cfg.RefreshRate, qt.Equals, 60)
	c.Assert(f.system.createCfg.Resizable, qt.Equals, true)

	info := f.api.Instance.Info
	c.Assert(info.Extensions, qt.DeepEquals, []string{"VK_KHR_surface"})
	c.Assert(info.Layers, qt.HasLen, 0)
	c.Assert(info.DebugReport, qt.IsNil)
	c.Assert(f.api.Devices[0].Created[0].Layers, qt.HasLen, 0)

	c.Assert(f.renderer.HandleInput(), qt.Equals, true)
	c.Assert(f.renderer.RenderFrame(), qt.Equals, true)
	c.Assert(f.renderer.RenderFrame(), qt.Equals, true)
	presented, rebuilds := f.renderer.FrameStats()
	c.Assert(presented, qt.Equals, uint64(2))
	c.Assert(rebuilds, qt.Equals, uint64(0))

	c.Assert(f.renderer.Initialize(core.RendererConfig{}), qt.Equals, renderer.ErrAlreadyInitialized)

	f.renderer.Shutdown()
	f.renderer.Shutdown()
	f.assertReleased(c)
	c.Assert(f.renderer.HandleInput(), qt.Equals, false)
	c.Assert(f.renderer.RenderFrame(), qt.Equals, false)
}

func TestRendererDebugLevel(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()

	err := f.renderer.Initialize(core.RendererConfig{DebugLevel: core.DebugLevelDebug, Windowed: true})
	c.Assert(err, qt.IsNil)
	defer f.renderer.Shutdown()

	info := f.api.Instance.Info
	c.Assert(info.Extensions, qt.DeepEquals, []string{"VK_KHR_surface", renderer.DebugReportExtensionName})
	c.Assert(info.Layers, qt.DeepEquals, []string{renderer.ValidationLayerName})
	c.Assert(f.api.Devices[0].Created[0].Layers, qt.DeepEquals, []string{renderer.ValidationLayerName})

	info.DebugReport("something is off")
	c.Assert(f.hook.LastEntry().Level, qt.Equals, log.DebugLevel)
	c.Assert(f.hook.LastEntry().Message, qt.Equals, "Vulkan validation layer: something is off")
}

func TestRendererMissingValidationLayer(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()
	f.api.Layers = nil

	err := f.renderer.Initialize(core.RendererConfig{DebugLevel: core.DebugLevelDebug})
	c.Assert(errors.Cause(err), qt.Equals, device.ErrMissingExtension)
	f.renderer.Shutdown()
	f.assertReleased(c)
}

func TestRendererNoSuitableDevice(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.DeviceExtensions = nil
	f := newRenderer(pd)

	err := f.renderer.Initialize(core.RendererConfig{})
	c.Assert(errors.Cause(err), qt.Equals, device.ErrNoSuitableDevice)
	f.renderer.Shutdown()
	f.assertReleased(c)
}

func TestRendererMissingShader(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()
	f.renderer = renderer.NewVulkanRenderer(f.system, func(unsafe.Pointer) (driver.API, error) {
		return f.api, nil
	}, fakeLoader{}, log.New())

	err := f.renderer.Initialize(core.RendererConfig{})
	c.Assert(errors.Cause(err), qt.Equals, errNotFound)
	f.renderer.Shutdown()
	f.assertReleased(c)
}

func TestRendererSwapchainFailure(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.Modes = []driver.PresentMode{driver.PresentModeFifo}
	f := newRenderer(pd)
	pd.Capabilities.CurrentExtent = driver.Extent2D{}

	err := f.renderer.Initialize(core.RendererConfig{})
	c.Assert(errors.Cause(err), qt.Equals, renderer.ErrSurfaceHidden)
	f.renderer.Shutdown()
	f.assertReleased(c)
}

func TestRendererUnsupportedAPI(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()

	err := f.renderer.Initialize(core.RendererConfig{API: core.OpenGL})
	c.Assert(errors.Cause(err), qt.Equals, core.ErrUnsupportedAPI)
	f.renderer.Shutdown()
	c.Assert(f.api.Counter.TotalLive(), qt.Equals, 0)
}

func TestRendererResize(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()
	c.Assert(f.renderer.Initialize(core.RendererConfig{Windowed: true}), qt.IsNil)
	defer f.renderer.Shutdown()

	f.api.Devices[0].Capabilities.CurrentExtent = driver.Extent2D{Width: 1280, Height: 720}
	f.system.window.resize(0, 0)
	c.Assert(f.renderer.RenderFrame(), qt.Equals, true)
	_, rebuilds := f.renderer.FrameStats()
	c.Assert(rebuilds, qt.Equals, uint64(0))

	f.system.window.resize(1280, 720)
	c.Assert(f.renderer.RenderFrame(), qt.Equals, true)
	_, rebuilds = f.renderer.FrameStats()
	c.Assert(rebuilds, qt.Equals, uint64(1))
	c.Assert(f.device().Swapchains[1].Extent, qt.Equals, driver.Extent2D{Width: 1280, Height: 720})
}

func TestRendererRebuildFailureStops(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()
	c.Assert(f.renderer.Initialize(core.RendererConfig{}), qt.IsNil)

	f.device().Fail[drivertest.KindSwapchain] = errors.New("out of memory")
	f.device().ScriptPresent(driver.ErrOutOfDate)
	c.Assert(f.renderer.RenderFrame(), qt.Equals, false)

	f.renderer.Shutdown()
	f.assertReleased(c)
}

func TestRendererRun(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()
	c.Assert(f.renderer.Initialize(core.RendererConfig{Windowed: true}), qt.IsNil)
	defer f.renderer.Shutdown()

	f.system.window.closeAfter = 4
	f.renderer.Run()

	presented, _ := f.renderer.FrameStats()
	c.Assert(presented, qt.Equals, uint64(3))
	c.Assert(f.system.window.polls, qt.Equals, 4)
}

func TestRendererDisplayModes(t *testing.T) {
	c := qt.New(t)
	f := newRenderer()
	c.Assert(f.renderer.EnumerateDisplayModes(), qt.DeepEquals, []core.DisplayMode{})

	f.system.modes = []core.DisplayMode{{Width: 1920, Height: 1080, RefreshRate: 60}}
	c.Assert(f.renderer.EnumerateDisplayModes(), qt.DeepEquals, f.system.modes)
}
