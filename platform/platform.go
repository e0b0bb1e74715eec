// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package platform describes the window system the renderer presents to.
// Backends live in the sdl and glfw subpackages.
package platform

import (
	"unsafe"

	"github.com/devblok/trigon/core"
)

// WindowConfig carries window creation hints.
type WindowConfig struct {
	Title       string
	Width       int
	Height      int
	RefreshRate int
	ColorBits   core.ColorBits

	// Windowed false creates a fullscreen window on the primary display
	Windowed  bool
	Resizable bool
}

// WindowConfigFrom derives the window hints from a renderer configuration.
func WindowConfigFrom(cfg core.RendererConfig) WindowConfig {
	return WindowConfig{
		Title:       cfg.WindowName,
		Width:       cfg.WindowWidth,
		Height:      cfg.WindowHeight,
		RefreshRate: cfg.RefreshRate,
		ColorBits:   cfg.ColorBits,
		Windowed:    cfg.Windowed,
		Resizable:   cfg.Windowed,
	}
}

// System is an initialised window system.
type System interface {
	// CreateWindow creates a window without a client API attached
	CreateWindow(WindowConfig) (Window, error)

	// PrimaryVideoMode returns the current mode of the primary display,
	// false when there is no display
	PrimaryVideoMode() (core.VideoMode, bool)

	// DisplayModes lists the modes the primary display supports
	DisplayModes() []core.DisplayMode

	// VulkanProcAddr returns vkGetInstanceProcAddr as loaded by the system
	VulkanProcAddr() unsafe.Pointer

	// Terminate releases the window system, windows must be destroyed first
	Terminate()
}

// Window is a native window with a Vulkan presentable surface.
type Window interface {
	// ShouldClose reports whether a close was requested
	ShouldClose() bool

	// PollEvents processes pending events, resize callbacks run from here
	PollEvents()

	// FramebufferSize is the drawable size in pixels
	FramebufferSize() (width, height int)

	// SetResizeCallback registers fn to run on every window size change
	SetResizeCallback(fn func(width, height int))

	// RequiredInstanceExtensions lists the instance extensions surfaces need
	RequiredInstanceExtensions() []string

	// CreateSurface creates a surface for instance, a native instance handle
	CreateSurface(instance interface{}) (uintptr, error)

	Destroy()
}
