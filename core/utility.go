// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"path"
	"unsafe"
)

const shaderSuffix = ".spv"

// ShaderDirectory is where compiled shaders live, relative to the
// working directory or the root of a shader archive
const ShaderDirectory = "resources/shaders"

// TriangleShader is the name of the hard coded triangle shader pair
const TriangleShader = "hard_coded_triangle"

// ShaderPath returns the path of a compiled shader, name_stage.spv
// inside ShaderDirectory
func ShaderPath(name string, shaderType ShaderType) string {
	return path.Join(ShaderDirectory, name+"_"+shaderType.Suffix()+shaderSuffix)
}

type sliceHeader struct {
	Data uintptr
	Len  int
	Cap  int
}

// SliceUint32 reslices bytes into a uint32, that is used
// to sumbit vulkan shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	const m = 0x7fffffff
	return (*[m / 4]uint32)(unsafe.Pointer((*sliceHeader)(unsafe.Pointer(&data)).Data))[:len(data)/4]
}
