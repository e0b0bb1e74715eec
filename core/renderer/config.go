// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	glm "github.com/go-gl/mathgl/mgl32"
)

// DefaultClearColor is opaque black
var DefaultClearColor = glm.Vec4{0, 0, 0, 1}

// SwapchainConfig describes what the swapchain renders
type SwapchainConfig struct {
	// VertexShader and FragmentShader are SPIR-V binaries
	VertexShader   []byte
	FragmentShader []byte

	ClearColor glm.Vec4
}
