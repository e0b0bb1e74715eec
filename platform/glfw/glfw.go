// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package glfw is the GLFW window system.
package glfw

import (
	"unsafe"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/platform"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// ErrVulkanUnsupported is returned when GLFW found no Vulkan loader.
var ErrVulkanUnsupported = errors.New("glfw: vulkan is not supported")

// New initialises GLFW. Must be called from the main thread,
// which will also have to poll events.
func New(sink platform.ErrorSink) (*System, error) {
	s := &System{sink: sink}
	if err := glfw.Init(); err != nil {
		s.report(err)
		return nil, errors.Wrap(err, "glfw.Init()")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return nil, ErrVulkanUnsupported
	}
	return s, nil
}

// System implements platform.System with GLFW.
type System struct {
	sink platform.ErrorSink
}

// report forwards err to the sink, keeping the GLFW error code if there is one
func (s *System) report(err error) {
	if s.sink == nil || err == nil {
		return
	}
	if ge, ok := err.(*glfw.Error); ok {
		s.sink.ReportError(int(ge.Code), ge.Desc)
		return
	}
	s.sink.ReportError(-1, err.Error())
}

// recoverError turns the panics GLFW raises for failed calls into reports,
// and into *err when err is not nil. Panics of any other kind are passed on.
func (s *System) recoverError(err *error) {
	if r := recover(); r != nil {
		ge, ok := r.(*glfw.Error)
		if !ok {
			panic(r)
		}
		s.report(ge)
		if err != nil {
			*err = errors.Wrap(ge, "glfw")
		}
	}
}

// CreateWindow implements interface
func (s *System) CreateWindow(cfg platform.WindowConfig) (w platform.Window, err error) {
	defer s.recoverError(&err)

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	if cfg.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}
	if cfg.ColorBits.Red > 0 {
		glfw.WindowHint(glfw.RedBits, cfg.ColorBits.Red)
	}
	if cfg.ColorBits.Green > 0 {
		glfw.WindowHint(glfw.GreenBits, cfg.ColorBits.Green)
	}
	if cfg.ColorBits.Blue > 0 {
		glfw.WindowHint(glfw.BlueBits, cfg.ColorBits.Blue)
	}
	if cfg.RefreshRate > 0 {
		glfw.WindowHint(glfw.RefreshRate, cfg.RefreshRate)
	}

	var monitor *glfw.Monitor
	if !cfg.Windowed {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, monitor, nil)
	if err != nil {
		s.report(err)
		return nil, errors.Wrap(err, "glfw.CreateWindow()")
	}
	return &Window{system: s, handle: handle}, nil
}

// PrimaryVideoMode implements interface
func (s *System) PrimaryVideoMode() (mode core.VideoMode, ok bool) {
	defer s.recoverError(nil)

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return core.VideoMode{}, false
	}
	vm := monitor.GetVideoMode()
	if vm == nil {
		return core.VideoMode{}, false
	}
	return videoMode(vm), true
}

// DisplayModes implements interface
func (s *System) DisplayModes() (modes []core.DisplayMode) {
	modes = []core.DisplayMode{}
	defer s.recoverError(nil)

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		return modes
	}
	for _, vm := range monitor.GetVideoModes() {
		modes = append(modes, videoMode(vm).DisplayMode)
	}
	return modes
}

func videoMode(vm *glfw.VidMode) core.VideoMode {
	return core.VideoMode{
		DisplayMode: core.DisplayMode{
			Width:       vm.Width,
			Height:      vm.Height,
			RefreshRate: vm.RefreshRate,
		},
		ColorBits: core.ColorBits{
			Red:   vm.RedBits,
			Green: vm.GreenBits,
			Blue:  vm.BlueBits,
		},
	}
}

// VulkanProcAddr implements interface
func (s *System) VulkanProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// Terminate implements interface
func (s *System) Terminate() {
	glfw.Terminate()
}
