// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/driver"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// CreateRenderPass implements interface
func (d *device) CreateRenderPass(format driver.Format) (driver.RenderPass, error) {
	attachments := []vk.AttachmentDescription{{
		Format:         vk.Format(format),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	// the image is only written once the presentation engine let go of it
	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	rpci := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var handle vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(d.handle, &rpci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateRenderPass()")
	}
	return &renderPass{device: d.handle, handle: handle}, nil
}

type renderPass struct {
	device vk.Device
	handle vk.RenderPass
}

// Destroy implements interface
func (r *renderPass) Destroy() {
	if r.handle == nil {
		return
	}
	vk.DestroyRenderPass(r.device, r.handle, nil)
	r.handle = nil
}

// CreateShaderModule implements interface
func (d *device) CreateShaderModule(code []byte) (driver.ShaderModule, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("vk.CreateShaderModule(): invalid SPIR-V size %d", len(code))
	}

	smci := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    core.SliceUint32(code),
	}

	var handle vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(d.handle, &smci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateShaderModule()")
	}
	return &shaderModule{device: d.handle, handle: handle}, nil
}

type shaderModule struct {
	device vk.Device
	handle vk.ShaderModule
}

// Destroy implements interface
func (s *shaderModule) Destroy() {
	if s.handle == nil {
		return
	}
	vk.DestroyShaderModule(s.device, s.handle, nil)
	s.handle = nil
}

// CreatePipelineLayout implements interface
func (d *device) CreatePipelineLayout() (driver.PipelineLayout, error) {
	plci := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	var handle vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(d.handle, &plci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreatePipelineLayout()")
	}
	return &pipelineLayout{device: d.handle, handle: handle}, nil
}

type pipelineLayout struct {
	device vk.Device
	handle vk.PipelineLayout
}

// Destroy implements interface
func (p *pipelineLayout) Destroy() {
	if p.handle == nil {
		return
	}
	vk.DestroyPipelineLayout(p.device, p.handle, nil)
	p.handle = nil
}

// CreatePipeline implements interface
func (d *device) CreatePipeline(info driver.PipelineInfo) (driver.Pipeline, error) {
	stages := []vk.PipelineShaderStageCreateInfo{{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageVertexBit,
		Module: info.Vertex.(*shaderModule).handle,
		PName:  "main\x00",
	}, {
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  vk.ShaderStageFragmentBit,
		Module: info.Fragment.(*shaderModule).handle,
		PName:  "main\x00",
	}}

	viewport := vk.Viewport{
		X:        0,
		Y:        0,
		Width:    float32(info.Extent.Width),
		Height:   float32(info.Extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
	}

	gpci := []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: uint32(len(stages)),
		PStages:    stages,
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleList,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			PViewports:    []vk.Viewport{viewport},
			ScissorCount:  1,
			PScissors:     []vk.Rect2D{scissor},
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeBackBit),
			FrontFace:   vk.FrontFaceClockwise,
			LineWidth:   1.0,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
			MinSampleShading:     1.0,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			LogicOpEnable:   vk.False,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit |
					vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
				BlendEnable: vk.False,
			}},
		},
		Layout:     info.Layout.(*pipelineLayout).handle,
		RenderPass: info.RenderPass.(*renderPass).handle,
		Subpass:    0,
	}}

	pipelines := make([]vk.Pipeline, len(gpci))
	if err := vk.Error(vk.CreateGraphicsPipelines(d.handle, nil, uint32(len(gpci)), gpci, nil, pipelines)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateGraphicsPipelines()")
	}
	return &pipeline{device: d.handle, handle: pipelines[0]}, nil
}

type pipeline struct {
	device vk.Device
	handle vk.Pipeline
}

// Destroy implements interface
func (p *pipeline) Destroy() {
	if p.handle == nil {
		return
	}
	vk.DestroyPipeline(p.device, p.handle, nil)
	p.handle = nil
}

// CreateFramebuffer implements interface
func (d *device) CreateFramebuffer(pass driver.RenderPass, view driver.ImageView, ext driver.Extent2D) (driver.Framebuffer, error) {
	attachments := []vk.ImageView{view.(*imageView).handle}
	fci := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      pass.(*renderPass).handle,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           ext.Width,
		Height:          ext.Height,
		Layers:          1,
	}

	var handle vk.Framebuffer
	if err := vk.Error(vk.CreateFramebuffer(d.handle, &fci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateFramebuffer()")
	}
	return &framebuffer{device: d.handle, handle: handle}, nil
}

type framebuffer struct {
	device vk.Device
	handle vk.Framebuffer
}

// Destroy implements interface
func (f *framebuffer) Destroy() {
	if f.handle == nil {
		return
	}
	vk.DestroyFramebuffer(f.device, f.handle, nil)
	f.handle = nil
}
