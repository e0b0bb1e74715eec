// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package glfw

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// Window implements platform.Window with GLFW.
type Window struct {
	system *System
	handle *glfw.Window
}

// ShouldClose implements interface
func (w *Window) ShouldClose() bool {
	return w.handle.ShouldClose()
}

// PollEvents implements interface
func (w *Window) PollEvents() {
	defer w.system.recoverError(nil)
	glfw.PollEvents()
}

// FramebufferSize implements interface
func (w *Window) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

// SetResizeCallback implements interface
func (w *Window) SetResizeCallback(fn func(width, height int)) {
	if fn == nil {
		w.handle.SetSizeCallback(nil)
		return
	}
	w.handle.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(width, height)
	})
}

// RequiredInstanceExtensions implements interface
func (w *Window) RequiredInstanceExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

// CreateSurface implements interface
func (w *Window) CreateSurface(instance interface{}) (uintptr, error) {
	surface, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		w.system.report(err)
		return 0, errors.Wrap(err, "glfw.CreateWindowSurface()")
	}
	return surface, nil
}

// Destroy implements interface
func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
}
