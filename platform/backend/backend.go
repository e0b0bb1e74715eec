// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package backend picks a window system implementation by name.
package backend

import (
	"strings"

	"github.com/devblok/trigon/platform"
	"github.com/devblok/trigon/platform/glfw"
	"github.com/devblok/trigon/platform/sdl"
	"github.com/pkg/errors"
)

// Window system names
const (
	SDL  = "sdl"
	GLFW = "glfw"
)

// Default is the window system used when none is named
const Default = SDL

// ErrUnknownSystem is returned for names that are not SDL or GLFW
var ErrUnknownSystem = errors.New("unknown window system")

// Normalize checks name and returns it in its canonical form,
// an empty name gives Default.
func Normalize(name string) (string, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "":
		return Default, nil
	case SDL, GLFW:
		return n, nil
	default:
		return "", errors.Wrap(ErrUnknownSystem, name)
	}
}

// Open initialises the named window system, reporting its errors to sink.
func Open(name string, sink platform.ErrorSink) (platform.System, error) {
	n, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	if n == GLFW {
		s, err := glfw.New(sink)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := sdl.New(sink)
	if err != nil {
		return nil, err
	}
	return s, nil
}
