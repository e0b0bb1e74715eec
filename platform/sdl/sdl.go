// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sdl is the SDL2 window system.
package sdl

import (
	"math/bits"
	"unsafe"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/platform"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

const primaryDisplay = 0

// New initialises SDL video and events and loads the Vulkan library.
// Must be called from the thread that will poll events.
func New(sink platform.ErrorSink) (*System, error) {
	s := &System{sink: sink}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		s.report(err)
		return nil, errors.Wrap(err, "sdl.Init()")
	}
	if err := sdl.VulkanLoadLibrary(""); err != nil {
		s.report(err)
		sdl.Quit()
		return nil, errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	return s, nil
}

// System implements platform.System with SDL2.
type System struct {
	sink platform.ErrorSink
}

func (s *System) report(err error) {
	if s.sink != nil && err != nil {
		s.sink.ReportError(-1, err.Error())
	}
}

// CreateWindow implements interface
func (s *System) CreateWindow(cfg platform.WindowConfig) (platform.Window, error) {
	var flags uint32 = sdl.WINDOW_VULKAN
	if cfg.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}
	if !cfg.Windowed {
		flags |= sdl.WINDOW_FULLSCREEN
	}

	handle, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Width),
		int32(cfg.Height),
		flags)
	if err != nil {
		s.report(err)
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}
	return &Window{system: s, handle: handle, id: windowID(handle)}, nil
}

func windowID(w *sdl.Window) uint32 {
	id, err := w.GetID()
	if err != nil {
		return 0
	}
	return id
}

// PrimaryVideoMode implements interface
func (s *System) PrimaryVideoMode() (core.VideoMode, bool) {
	mode, err := sdl.GetDesktopDisplayMode(primaryDisplay)
	if err != nil {
		s.report(err)
		return core.VideoMode{}, false
	}
	return videoMode(mode), true
}

// DisplayModes implements interface
func (s *System) DisplayModes() []core.DisplayMode {
	count, err := sdl.GetNumDisplayModes(primaryDisplay)
	if err != nil {
		s.report(err)
		return []core.DisplayMode{}
	}

	modes := make([]core.DisplayMode, 0, count)
	for idx := 0; idx < count; idx++ {
		mode, err := sdl.GetDisplayMode(primaryDisplay, idx)
		if err != nil {
			s.report(err)
			continue
		}
		modes = append(modes, videoMode(mode).DisplayMode)
	}
	return modes
}

func videoMode(mode sdl.DisplayMode) core.VideoMode {
	vm := core.VideoMode{
		DisplayMode: core.DisplayMode{
			Width:       int(mode.W),
			Height:      int(mode.H),
			RefreshRate: int(mode.RefreshRate),
		},
	}
	if _, r, g, b, _, err := sdl.PixelFormatEnumToMasks(uint(mode.Format)); err == nil {
		vm.ColorBits = core.ColorBits{
			Red:   bits.OnesCount32(r),
			Green: bits.OnesCount32(g),
			Blue:  bits.OnesCount32(b),
		}
	}
	return vm
}

// VulkanProcAddr implements interface
func (s *System) VulkanProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

// Terminate implements interface
func (s *System) Terminate() {
	sdl.VulkanUnloadLibrary()
	sdl.Quit()
}
