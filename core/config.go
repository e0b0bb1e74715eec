// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Configuration keys, looked up in the environment first
// and in the loaded dotenv files second
const (
	KeyAPI          = "TRIGON_API"
	KeyDebugLevel   = "TRIGON_DEBUG_LEVEL"
	KeyWindowName   = "TRIGON_WINDOW_NAME"
	KeyWindowWidth  = "TRIGON_WINDOW_WIDTH"
	KeyWindowHeight = "TRIGON_WINDOW_HEIGHT"
	KeyRefreshRate  = "TRIGON_REFRESH_RATE"
	KeyRedBits      = "TRIGON_RED_BITS"
	KeyGreenBits    = "TRIGON_GREEN_BITS"
	KeyBlueBits     = "TRIGON_BLUE_BITS"
	KeyWindowed     = "TRIGON_WINDOWED"
	KeyTargetFPS    = "TRIGON_TARGET_FPS"
	KeyShaderSource = "TRIGON_SHADER_SOURCE"
	KeyWindowSystem = "TRIGON_WINDOW_SYSTEM"
)

// DefaultWindowName is used when no window name is configured
const DefaultWindowName = "Trigon"

// ColorBits is the colour depth of each channel
type ColorBits struct {
	Red   int
	Green int
	Blue  int
}

// RendererConfig is used to configure the renderer. It is handed over once
// to Initialize and not changed after. Zero sizes, refresh rate and colour
// depths are filled in from the primary display.
type RendererConfig struct {
	API        RendererAPIType
	DebugLevel DebugLevel

	WindowName   string
	WindowWidth  int
	WindowHeight int
	RefreshRate  int
	ColorBits    ColorBits
	Windowed     bool

	// TargetFrameRate caps frames per second that is put out
	// To unlimit, set to 0
	TargetFrameRate int

	// ShaderSource is a directory or a kar archive holding the
	// compiled shaders, empty means the bundled ones
	ShaderSource string

	// WindowSystem names the window system backend, sdl or glfw.
	// It is read by the application that picks the platform.
	WindowSystem string
}

// LoadConfig builds a RendererConfig from dotenv files, with the process
// environment taking precedence. Files that do not exist are skipped.
func LoadConfig(files ...string) (RendererConfig, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}

	values := map[string]string{}
	if len(existing) > 0 {
		read, err := godotenv.Read(existing...)
		if err != nil {
			return RendererConfig{}, errors.Wrap(err, "godotenv.Read()")
		}
		values = read
	}

	lookup := func(key string) string {
		return envy.Get(key, values[key])
	}

	cfg := RendererConfig{
		WindowName:   lookup(KeyWindowName),
		ShaderSource: lookup(KeyShaderSource),
		WindowSystem: lookup(KeyWindowSystem),
		Windowed:     true,
	}

	var err error
	if cfg.API, err = ParseRendererAPIType(orDefault(lookup(KeyAPI), Vulkan.String())); err != nil {
		return RendererConfig{}, err
	}
	if cfg.DebugLevel, err = ParseDebugLevel(lookup(KeyDebugLevel)); err != nil {
		return RendererConfig{}, err
	}
	if v := lookup(KeyWindowed); v != "" {
		if cfg.Windowed, err = strconv.ParseBool(v); err != nil {
			return RendererConfig{}, errors.Wrapf(err, "parsing %s", KeyWindowed)
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{KeyWindowWidth, &cfg.WindowWidth},
		{KeyWindowHeight, &cfg.WindowHeight},
		{KeyRefreshRate, &cfg.RefreshRate},
		{KeyRedBits, &cfg.ColorBits.Red},
		{KeyGreenBits, &cfg.ColorBits.Green},
		{KeyBlueBits, &cfg.ColorBits.Blue},
		{KeyTargetFPS, &cfg.TargetFrameRate},
	}
	for _, i := range ints {
		v := lookup(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return RendererConfig{}, errors.Wrapf(err, "parsing %s", i.key)
		}
		if n < 0 {
			return RendererConfig{}, errors.Errorf("%s must not be negative, got %d", i.key, n)
		}
		*i.dst = n
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FillIn returns cfg with every unset field taken from mode.
func (cfg RendererConfig) FillIn(mode VideoMode) RendererConfig {
	if cfg.WindowName == "" {
		cfg.WindowName = DefaultWindowName
	}
	if cfg.WindowWidth == 0 {
		cfg.WindowWidth = mode.Width
	}
	if cfg.WindowHeight == 0 {
		cfg.WindowHeight = mode.Height
	}
	if cfg.RefreshRate == 0 {
		cfg.RefreshRate = mode.RefreshRate
	}
	if cfg.ColorBits.Red == 0 {
		cfg.ColorBits.Red = mode.ColorBits.Red
	}
	if cfg.ColorBits.Green == 0 {
		cfg.ColorBits.Green = mode.ColorBits.Green
	}
	if cfg.ColorBits.Blue == 0 {
		cfg.ColorBits.Blue = mode.ColorBits.Blue
	}
	return cfg
}

// Validate checks that cfg describes a window that can be created.
func (cfg RendererConfig) Validate() error {
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return errors.Errorf("invalid window size %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}
	if cfg.API != Vulkan {
		return errors.Wrap(ErrUnsupportedAPI, cfg.API.String())
	}
	return nil
}
