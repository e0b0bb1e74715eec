// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/trigon/assets"
	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/pkg/errors"
)

// Debug configuration requirements
const (
	ValidationLayerName      = "VK_LAYER_LUNARG_standard_validation"
	DebugReportExtensionName = "VK_EXT_debug_report"
)

// instanceRequirements returns the instance extensions and layers to enable.
// The window system's extensions are always required, validation only
// when debugging.
func instanceRequirements(api driver.API, windowExtensions []string, level core.DebugLevel) (extensions, layers []string, err error) {
	requiredExtensions := append([]string{}, windowExtensions...)
	var requiredLayers []string
	if level == core.DebugLevelDebug {
		requiredExtensions = append(requiredExtensions, DebugReportExtensionName)
		requiredLayers = append(requiredLayers, ValidationLayerName)
	}

	available, err := api.InstanceExtensions()
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing instance extensions")
	}
	if extensions, err = device.BuildExtensionSet(available, requiredExtensions, nil); err != nil {
		return nil, nil, errors.Wrap(err, "instance extension")
	}

	if len(requiredLayers) == 0 {
		return extensions, nil, nil
	}
	available, err = api.InstanceLayers()
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing instance layers")
	}
	if layers, err = device.BuildExtensionSet(available, requiredLayers, nil); err != nil {
		return nil, nil, errors.Wrap(err, "instance layer")
	}
	return extensions, layers, nil
}

// loadShaders reads the vertex and fragment binaries of a shader pair
func loadShaders(loader assets.Loader, name string) (vertex, fragment []byte, err error) {
	if vertex, err = loader.Load(core.ShaderPath(name, core.VertexShaderType)); err != nil {
		return nil, nil, errors.Wrap(err, "loading vertex shader")
	}
	if fragment, err = loader.Load(core.ShaderPath(name, core.FragmentShaderType)); err != nil {
		return nil, nil, errors.Wrap(err, "loading fragment shader")
	}
	return vertex, fragment, nil
}
