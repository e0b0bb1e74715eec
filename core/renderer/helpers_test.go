// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer_test

import (
	"unsafe"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/core/renderer"
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver/drivertest"
	"github.com/devblok/trigon/platform"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
)

var errNotFound = errors.New("not found")

var shaderCode = []byte{0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00}

type fixture struct {
	pd        *drivertest.PhysicalDevice
	surface   *drivertest.Surface
	ld        *device.LogicalDevice
	swapchain *renderer.Swapchain
	width     int
	height    int
}

func (f *fixture) device() *drivertest.Device {
	return f.pd.Device
}

func (f *fixture) framebufferSize() (int, int) {
	return f.width, f.height
}

// newFixture creates a logical device on pd and an unbuilt swapchain for it
func newFixture(c *qt.C, pd *drivertest.PhysicalDevice) *fixture {
	logger, _ := test.NewNullLogger()
	f := &fixture{
		pd:      pd,
		surface: drivertest.NewSurface(pd.Counter),
		width:   800,
		height:  600,
	}

	props := device.ExtractProperties(pd, f.surface, device.DefaultRequirements())
	c.Assert(props.MeetsMinimumRequirements(), qt.Equals, true)

	var err error
	f.ld, err = device.CreateLogicalDevice(pd, props, nil)
	c.Assert(err, qt.IsNil)

	f.swapchain = renderer.NewSwapchain(f.ld, pd, props, f.surface, f.framebufferSize, renderer.SwapchainConfig{
		VertexShader:   shaderCode,
		FragmentShader: shaderCode,
		ClearColor:     renderer.DefaultClearColor,
	}, logger)
	return f
}

type fakeLoader map[string][]byte

func (l fakeLoader) Load(name string) ([]byte, error) {
	if data, ok := l[name]; ok {
		return data, nil
	}
	return nil, errNotFound
}

func triangleLoader() fakeLoader {
	return fakeLoader{
		core.ShaderPath(core.TriangleShader, core.VertexShaderType):   shaderCode,
		core.ShaderPath(core.TriangleShader, core.FragmentShaderType): shaderCode,
	}
}

type fakeSystem struct {
	mode      core.VideoMode
	hasMode   bool
	modes     []core.DisplayMode
	window    *fakeWindow
	createCfg platform.WindowConfig
}

func (s *fakeSystem) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	s.createCfg = cfg
	s.window = &fakeWindow{width: cfg.Width, height: cfg.Height}
	return s.window, nil
}

func (s *fakeSystem) PrimaryVideoMode() (core.VideoMode, bool) {
	return s.mode, s.hasMode
}

func (s *fakeSystem) DisplayModes() []core.DisplayMode {
	return s.modes
}

func (s *fakeSystem) VulkanProcAddr() unsafe.Pointer {
	return nil
}

func (s *fakeSystem) Terminate() {}

type fakeWindow struct {
	width     int
	height    int
	closed    bool
	polls     int
	destroyed int
	onResize  func(width, height int)

	// closeAfter closes the window after that many polls, when not zero
	closeAfter int
}

func (w *fakeWindow) ShouldClose() bool {
	return w.closed
}

func (w *fakeWindow) PollEvents() {
	w.polls++
	if w.closeAfter > 0 && w.polls >= w.closeAfter {
		w.closed = true
	}
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func (w *fakeWindow) SetResizeCallback(fn func(width, height int)) {
	w.onResize = fn
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return []string{"VK_KHR_surface"}
}

func (w *fakeWindow) CreateSurface(instance interface{}) (uintptr, error) {
	return 1, nil
}

func (w *fakeWindow) Destroy() {
	w.destroyed++
}

func (w *fakeWindow) resize(width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
