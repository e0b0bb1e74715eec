// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"github.com/devblok/trigon/driver"
	vk "github.com/devblok/vulkan"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// CreateCommandPool implements interface
func (d *device) CreateCommandPool(family uint32) (driver.CommandPool, error) {
	cpci := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
	}

	var handle vk.CommandPool
	if err := vk.Error(vk.CreateCommandPool(d.handle, &cpci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateCommandPool()")
	}
	return &commandPool{device: d.handle, handle: handle}, nil
}

type commandPool struct {
	device vk.Device
	handle vk.CommandPool
}

// Allocate implements interface
func (p *commandPool) Allocate(count int) ([]driver.CommandBuffer, error) {
	cbai := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        p.handle,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: uint32(count),
	}

	handles := make([]vk.CommandBuffer, count)
	if err := vk.Error(vk.AllocateCommandBuffers(p.device, &cbai, handles)); err != nil {
		return nil, errors.Wrap(err, "vk.AllocateCommandBuffers()")
	}

	buffers := make([]driver.CommandBuffer, 0, count)
	for _, h := range handles {
		buffers = append(buffers, &commandBuffer{handle: h})
	}
	return buffers, nil
}

// Free implements interface
func (p *commandPool) Free(buffers []driver.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	handles := make([]vk.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		handles = append(handles, b.(*commandBuffer).handle)
	}
	vk.FreeCommandBuffers(p.device, p.handle, uint32(len(handles)), handles)
}

// Destroy implements interface
func (p *commandPool) Destroy() {
	if p.handle == nil {
		return
	}
	vk.DestroyCommandPool(p.device, p.handle, nil)
	p.handle = nil
}

type commandBuffer struct {
	handle vk.CommandBuffer
}

// Begin implements interface
func (c *commandBuffer) Begin() error {
	cbbi := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	}
	if err := vk.Error(vk.BeginCommandBuffer(c.handle, &cbbi)); err != nil {
		return errors.Wrap(err, "vk.BeginCommandBuffer()")
	}
	return nil
}

// BeginRenderPass implements interface
func (c *commandBuffer) BeginRenderPass(pass driver.RenderPass, fb driver.Framebuffer, ext driver.Extent2D, clear glm.Vec4) {
	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(clear[:])

	rpbi := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  pass.(*renderPass).handle,
		Framebuffer: fb.(*framebuffer).handle,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: ext.Width, Height: ext.Height},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(c.handle, &rpbi, vk.SubpassContentsInline)
}

// BindPipeline implements interface
func (c *commandBuffer) BindPipeline(p driver.Pipeline) {
	vk.CmdBindPipeline(c.handle, vk.PipelineBindPointGraphics, p.(*pipeline).handle)
}

// Draw implements interface
func (c *commandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	vk.CmdDraw(c.handle, vertexCount, instanceCount, firstVertex, firstInstance)
}

// EndRenderPass implements interface
func (c *commandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(c.handle)
}

// End implements interface
func (c *commandBuffer) End() error {
	if err := vk.Error(vk.EndCommandBuffer(c.handle)); err != nil {
		return errors.Wrap(err, "vk.EndCommandBuffer()")
	}
	return nil
}
