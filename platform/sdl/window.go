// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package sdl

import (
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Window implements platform.Window with SDL2.
type Window struct {
	system *System
	handle *sdl.Window
	id     uint32

	shouldClose bool
	onResize    func(width, height int)
}

// ShouldClose implements interface
func (w *Window) ShouldClose() bool {
	return w.shouldClose
}

// PollEvents implements interface
func (w *Window) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.QuitEvent:
			w.shouldClose = true
		case *sdl.KeyboardEvent:
			if et.Type == sdl.KEYDOWN && et.Keysym.Sym == sdl.K_ESCAPE {
				w.shouldClose = true
			}
		case *sdl.WindowEvent:
			if et.WindowID != w.id {
				continue
			}
			switch et.Event {
			case sdl.WINDOWEVENT_CLOSE:
				w.shouldClose = true
			case sdl.WINDOWEVENT_SIZE_CHANGED:
				if w.onResize != nil {
					w.onResize(int(et.Data1), int(et.Data2))
				}
			}
		}
	}
}

// FramebufferSize implements interface
func (w *Window) FramebufferSize() (int, int) {
	width, height := w.handle.VulkanGetDrawableSize()
	return int(width), int(height)
}

// SetResizeCallback implements interface
func (w *Window) SetResizeCallback(fn func(width, height int)) {
	w.onResize = fn
}

// RequiredInstanceExtensions implements interface
func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.VulkanGetInstanceExtensions()
}

// CreateSurface implements interface
func (w *Window) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := w.handle.VulkanCreateSurface(instance)
	if err != nil {
		w.system.report(err)
		return 0, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return uintptr(surface), nil
}

// Destroy implements interface
func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}
	if err := w.handle.Destroy(); err != nil {
		w.system.report(err)
	}
	w.handle = nil
}
