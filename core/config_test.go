// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/devblok/trigon/core"
	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"
	"github.com/pkg/errors"
)

const dotenv = `TRIGON_API=vulkan
TRIGON_DEBUG_LEVEL=debug
TRIGON_WINDOW_NAME="Hello triangle"
TRIGON_WINDOW_WIDTH=800
TRIGON_WINDOW_HEIGHT=600
TRIGON_WINDOWED=false
TRIGON_TARGET_FPS=60
TRIGON_SHADER_SOURCE=shaders.kar
TRIGON_WINDOW_SYSTEM=glfw
`

func writeDotenv(c *qt.C, content string) string {
	file := filepath.Join(c.Mkdir(), ".env")
	c.Assert(ioutil.WriteFile(file, []byte(content), 0644), qt.IsNil)
	return file
}

func TestLoadConfig(t *testing.T) {
	c := qt.New(t)
	defer c.Done()
	file := writeDotenv(c, dotenv)

	cfg, err := core.LoadConfig(file, filepath.Join(filepath.Dir(file), "missing.env"))
	c.Assert(err, qt.IsNil)
	c.Assert(cfg, qt.DeepEquals, core.RendererConfig{
		API:             core.Vulkan,
		DebugLevel:      core.DebugLevelDebug,
		WindowName:      "Hello triangle",
		WindowWidth:     800,
		WindowHeight:    600,
		Windowed:        false,
		TargetFrameRate: 60,
		ShaderSource:    "shaders.kar",
		WindowSystem:    "glfw",
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	c := qt.New(t)

	cfg, err := core.LoadConfig()
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.API, qt.Equals, core.Vulkan)
	c.Assert(cfg.DebugLevel, qt.Equals, core.DebugLevelNone)
	c.Assert(cfg.Windowed, qt.Equals, true)
	c.Assert(cfg.WindowWidth, qt.Equals, 0)
}

func TestLoadConfigEnvironmentWins(t *testing.T) {
	c := qt.New(t)
	defer c.Done()
	file := writeDotenv(c, dotenv)

	envy.Temp(func() {
		envy.Set(core.KeyWindowWidth, "1024")
		envy.Set(core.KeyDebugLevel, "none")

		cfg, err := core.LoadConfig(file)
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.WindowWidth, qt.Equals, 1024)
		c.Assert(cfg.WindowHeight, qt.Equals, 600)
		c.Assert(cfg.DebugLevel, qt.Equals, core.DebugLevelNone)
	})
}

func TestLoadConfigErrors(t *testing.T) {
	c := qt.New(t)
	defer c.Done()

	for _, content := range []string{
		"TRIGON_WINDOW_WIDTH=wide\n",
		"TRIGON_WINDOW_HEIGHT=-1\n",
		"TRIGON_API=glide\n",
		"TRIGON_DEBUG_LEVEL=verbose\n",
		"TRIGON_WINDOWED=maybe\n",
	} {
		_, err := core.LoadConfig(writeDotenv(c, content))
		c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("%q", content))
	}
}

func TestFillIn(t *testing.T) {
	c := qt.New(t)
	mode := core.VideoMode{
		DisplayMode: core.DisplayMode{Width: 1920, Height: 1080, RefreshRate: 144},
		ColorBits:   core.ColorBits{Red: 8, Green: 8, Blue: 8},
	}

	cfg := core.RendererConfig{WindowWidth: 640, ColorBits: core.ColorBits{Red: 5}}.FillIn(mode)
	c.Assert(cfg.WindowName, qt.Equals, core.DefaultWindowName)
	c.Assert(cfg.WindowWidth, qt.Equals, 640)
	c.Assert(cfg.WindowHeight, qt.Equals, 1080)
	c.Assert(cfg.RefreshRate, qt.Equals, 144)
	c.Assert(cfg.ColorBits, qt.Equals, core.ColorBits{Red: 5, Green: 8, Blue: 8})

	c.Assert(cfg.FillIn(core.VideoMode{}), qt.DeepEquals, cfg)
}

func TestValidate(t *testing.T) {
	c := qt.New(t)
	cfg := core.RendererConfig{WindowWidth: 640, WindowHeight: 480}
	c.Assert(cfg.Validate(), qt.IsNil)

	cfg.API = core.DirectX
	c.Assert(errors.Cause(cfg.Validate()), qt.Equals, core.ErrUnsupportedAPI)

	cfg = core.RendererConfig{WindowWidth: 640}
	c.Assert(cfg.Validate(), qt.ErrorMatches, "invalid window size 640x0")
}

func TestParseEnums(t *testing.T) {
	c := qt.New(t)
	api, err := core.ParseRendererAPIType("OpenGL")
	c.Assert(err, qt.IsNil)
	c.Assert(api, qt.Equals, core.OpenGL)

	level, err := core.ParseDebugLevel("DEBUG")
	c.Assert(err, qt.IsNil)
	c.Assert(level, qt.Equals, core.DebugLevelDebug)
	c.Assert(level.String(), qt.Equals, "debug")
}
