// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"testing"

	"github.com/devblok/trigon/platform/backend"
	qt "github.com/frankban/quicktest"
)

func TestCheckBackground(t *testing.T) {
	c := qt.New(t)
	c.Assert(checkBackground(false, backend.GLFW, "darwin"), qt.IsNil)
	c.Assert(checkBackground(true, backend.SDL, "darwin"), qt.IsNil)
	c.Assert(checkBackground(true, backend.GLFW, "linux"), qt.IsNil)
	c.Assert(checkBackground(true, backend.GLFW, "windows"), qt.ErrorMatches,
		"glfw needs the main thread on windows, use sdl or drop -background")
}
