// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrUnsupportedAPI is returned for renderer API types that have no backend yet.
var ErrUnsupportedAPI = errors.New("renderer API is not supported")

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialize() before use.
type Renderer interface {
	// Initialize creates the window and every GPU resource.
	// It is meant to be called once, call Shutdown even when it fails.
	Initialize(RendererConfig) error

	// HandleInput polls window events, false means a close was requested
	HandleInput() bool

	// RenderFrame renders and presents one frame, false means
	// rendering cannot continue and the loop should exit
	RenderFrame() bool

	// Run loops HandleInput and RenderFrame until either returns false
	Run()

	// Shutdown destroys everything Initialize created, in reverse
	Shutdown()

	// GetConfig returns the configuration in use, with defaults filled in
	GetConfig() RendererConfig

	// EnumerateDisplayModes lists the modes of the primary display,
	// empty when there is no display
	EnumerateDisplayModes() []DisplayMode
}

// RendererAPIType names a graphics API a renderer is built on
type RendererAPIType int

// Graphics APIs
const (
	Vulkan RendererAPIType = iota
	OpenGL
	DirectX
)

func (t RendererAPIType) String() string {
	switch t {
	case Vulkan:
		return "vulkan"
	case OpenGL:
		return "opengl"
	case DirectX:
		return "directx"
	}
	return "unknown"
}

// ParseRendererAPIType parses the String form of a RendererAPIType.
func ParseRendererAPIType(s string) (RendererAPIType, error) {
	for _, t := range []RendererAPIType{Vulkan, OpenGL, DirectX} {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return Vulkan, errors.Errorf("unknown renderer API %q", s)
}

// DebugLevel controls the diagnostics a renderer enables
type DebugLevel int

// Debug levels, validation layers are loaded only with DebugLevelDebug
const (
	DebugLevelNone DebugLevel = iota
	DebugLevelDebug
)

func (l DebugLevel) String() string {
	if l == DebugLevelDebug {
		return "debug"
	}
	return "none"
}

// ParseDebugLevel parses the String form of a DebugLevel.
func ParseDebugLevel(s string) (DebugLevel, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return DebugLevelNone, nil
	case "debug":
		return DebugLevelDebug, nil
	}
	return DebugLevelNone, errors.Errorf("unknown debug level %q", s)
}

// DisplayMode is a resolution and refresh rate a display supports
type DisplayMode struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	RefreshRate int `json:"refreshRate"`
}

// VideoMode is a DisplayMode with the colour depth of each channel
type VideoMode struct {
	DisplayMode
	ColorBits ColorBits
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

// Suffix is the stage suffix compiled shader files are named with
func (t ShaderType) Suffix() string {
	switch t {
	case VertexShaderType:
		return "vert"
	case FragmentShaderType:
		return "frag"
	}
	return ""
}
