// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer holds the Vulkan implementation of core.Renderer:
// the swapchain with everything depending on it, and the frame loop
// that acquires, submits and presents.
package renderer

import (
	"context"
	"unsafe"

	"github.com/devblok/trigon/assets"
	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/devblok/trigon/platform"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrAlreadyInitialized is returned when Initialize is called twice
var ErrAlreadyInitialized = errors.New("renderer is already initialised")

// APIFactory loads a graphics API with the loader entry point
// the window system found
type APIFactory func(procAddr unsafe.Pointer) (driver.API, error)

// NewVulkanRenderer creates a Vulkan API renderer. It's created
// only with internal values set, it needs to be initialised with
// Initialize() before use.
func NewVulkanRenderer(system platform.System, newAPI APIFactory, loader assets.Loader, logger log.FieldLogger) *Vulkan {
	return &Vulkan{
		system:       system,
		newAPI:       newAPI,
		loader:       loader,
		logger:       logger,
		requirements: device.DefaultRequirements(),
	}
}

var _ core.Renderer = (*Vulkan)(nil)

// Vulkan is a Vulkan API renderer
type Vulkan struct {
	system       platform.System
	newAPI       APIFactory
	loader       assets.Loader
	logger       log.FieldLogger
	requirements device.Requirements

	config      core.RendererConfig
	initialized bool
	limiter     *core.FrameRateLimiter

	window    platform.Window
	instance  driver.Instance
	surface   driver.Surface
	physical  driver.PhysicalDevice
	props     device.DeviceProperties
	device    *device.LogicalDevice
	swapchain *Swapchain
	frames    *FrameLoop
}

// Initialize implements interface
func (v *Vulkan) Initialize(cfg core.RendererConfig) error {
	if v.initialized {
		return ErrAlreadyInitialized
	}
	v.initialized = true

	if mode, ok := v.system.PrimaryVideoMode(); ok {
		cfg = cfg.FillIn(mode)
	} else {
		cfg = cfg.FillIn(core.VideoMode{})
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	v.config = cfg
	if cfg.TargetFrameRate > 0 {
		v.limiter = core.NewFrameRateLimiter(cfg.TargetFrameRate)
	}

	window, err := v.system.CreateWindow(platform.WindowConfigFrom(cfg))
	if err != nil {
		return errors.Wrap(err, "creating window")
	}
	v.window = window
	v.window.SetResizeCallback(v.onResize)

	layers, err := v.createInstance()
	if err != nil {
		return err
	}

	surfaceHandle, err := v.window.CreateSurface(v.instance.Handle())
	if err != nil {
		return errors.Wrap(err, "creating surface")
	}
	v.surface = v.instance.WrapSurface(surfaceHandle)

	candidates, err := v.instance.PhysicalDevices()
	if err != nil {
		return errors.Wrap(err, "enumerating physical devices")
	}
	v.physical, v.props, err = device.SelectBestDevice(candidates, v.surface, v.requirements, v.logger)
	if err != nil {
		return err
	}
	v.logger.WithField("device", v.physical.Info().Name).Info("Physical device selected")

	if v.device, err = device.CreateLogicalDevice(v.physical, v.props, layers); err != nil {
		return err
	}

	vertex, fragment, err := loadShaders(v.loader, core.TriangleShader)
	if err != nil {
		return err
	}

	v.swapchain = NewSwapchain(v.device, v.physical, v.props, v.surface, v.window.FramebufferSize, SwapchainConfig{
		VertexShader:   vertex,
		FragmentShader: fragment,
		ClearColor:     DefaultClearColor,
	}, v.logger)
	if err := v.swapchain.Build(); err != nil {
		return errors.Wrap(err, "building swapchain")
	}

	if v.frames, err = NewFrameLoop(v.device, v.swapchain, cfg.DebugLevel == core.DebugLevelDebug, v.logger); err != nil {
		return err
	}
	return nil
}

// createInstance creates the instance and returns the layers that
// should be enabled on the device as well
func (v *Vulkan) createInstance() ([]string, error) {
	api, err := v.newAPI(v.system.VulkanProcAddr())
	if err != nil {
		return nil, errors.Wrap(err, "loading vulkan")
	}

	extensions, layers, err := instanceRequirements(api, v.window.RequiredInstanceExtensions(), v.config.DebugLevel)
	if err != nil {
		return nil, err
	}

	info := driver.InstanceInfo{
		ApplicationName: v.config.WindowName,
		Extensions:      extensions,
		Layers:          layers,
	}
	if v.config.DebugLevel == core.DebugLevelDebug {
		info.DebugReport = func(message string) {
			v.logger.Debugf("Vulkan validation layer: %s", message)
		}
	}

	if v.instance, err = api.CreateInstance(info); err != nil {
		return nil, errors.Wrap(err, "creating instance")
	}
	return layers, nil
}

func (v *Vulkan) onResize(width, height int) {
	if v.frames != nil {
		v.frames.Invalidate(width, height)
	}
}

// HandleInput implements interface
func (v *Vulkan) HandleInput() bool {
	if v.window == nil {
		return false
	}
	v.window.PollEvents()
	return !v.window.ShouldClose()
}

// RenderFrame implements interface
func (v *Vulkan) RenderFrame() bool {
	if v.frames == nil {
		return false
	}
	return v.frames.Step() != FrameFailed
}

// Run implements interface
func (v *Vulkan) Run() {
	core.Loop(context.Background(), v, v.limiter)
}

// Shutdown implements interface
func (v *Vulkan) Shutdown() {
	if v.device != nil {
		if err := v.device.WaitIdle(); err != nil {
			v.logger.WithError(err).Warn("Waiting for device before shutdown failed")
		}
	}
	if v.frames != nil {
		v.frames.Destroy()
		v.frames = nil
	}
	if v.swapchain != nil {
		v.swapchain.Teardown()
		v.swapchain = nil
	}
	if v.device != nil {
		v.device.Destroy()
		v.device = nil
	}
	if v.surface != nil {
		v.surface.Destroy()
		v.surface = nil
	}
	if v.instance != nil {
		v.instance.Destroy()
		v.instance = nil
	}
	if v.window != nil {
		v.window.SetResizeCallback(nil)
		v.window.Destroy()
		v.window = nil
	}
}

// GetConfig implements interface
func (v *Vulkan) GetConfig() core.RendererConfig {
	return v.config
}

// EnumerateDisplayModes implements interface
func (v *Vulkan) EnumerateDisplayModes() []core.DisplayMode {
	modes := v.system.DisplayModes()
	if modes == nil {
		return []core.DisplayMode{}
	}
	return modes
}

// FrameStats returns frames presented and swapchain rebuilds so far
func (v *Vulkan) FrameStats() (presented, rebuilds uint64) {
	if v.frames == nil {
		return 0, 0
	}
	return v.frames.Presented(), v.frames.Rebuilds()
}
