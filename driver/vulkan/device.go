// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"github.com/devblok/trigon/driver"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

type device struct {
	handle   vk.Device
	physical vk.PhysicalDevice
	families map[uint32]bool
}

// Queue implements interface
func (d *device) Queue(family uint32) driver.Queue {
	if !d.families[family] {
		return nil
	}
	var q vk.Queue
	vk.GetDeviceQueue(d.handle, family, 0, &q)
	if q == nil {
		return nil
	}
	return &queue{handle: q}
}

// WaitIdle implements interface
func (d *device) WaitIdle() error {
	if err := vk.Error(vk.DeviceWaitIdle(d.handle)); err != nil {
		return errors.Wrap(err, "vk.DeviceWaitIdle()")
	}
	return nil
}

// CreateSemaphore implements interface
func (d *device) CreateSemaphore() (driver.Semaphore, error) {
	sci := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var s vk.Semaphore
	if err := vk.Error(vk.CreateSemaphore(d.handle, &sci, nil, &s)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSemaphore()")
	}
	return &semaphore{device: d.handle, handle: s}, nil
}

// Destroy implements interface
func (d *device) Destroy() {
	if d.handle == nil {
		return
	}
	vk.DestroyDevice(d.handle, nil)
	d.handle = nil
}

type semaphore struct {
	device vk.Device
	handle vk.Semaphore
}

// Destroy implements interface
func (s *semaphore) Destroy() {
	if s.handle == nil {
		return
	}
	vk.DestroySemaphore(s.device, s.handle, nil)
	s.handle = nil
}

type queue struct {
	handle vk.Queue
}

// Submit implements interface
func (q *queue) Submit(buffer driver.CommandBuffer, wait, signal driver.Semaphore) error {
	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.(*semaphore).handle},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{buffer.(*commandBuffer).handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{signal.(*semaphore).handle},
	}}

	if err := vk.Error(vk.QueueSubmit(q.handle, 1, submit, nil)); err != nil {
		return errors.Wrap(err, "vk.QueueSubmit()")
	}
	return nil
}

// Present implements interface
func (q *queue) Present(sc driver.Swapchain, imageIndex uint32, wait driver.Semaphore) error {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait.(*semaphore).handle},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.(*swapchain).handle},
		PImageIndices:      []uint32{imageIndex},
	}
	return presentationError(vk.QueuePresent(q.handle, &presentInfo), "vk.QueuePresent()")
}

// WaitIdle implements interface
func (q *queue) WaitIdle() error {
	if err := vk.Error(vk.QueueWaitIdle(q.handle)); err != nil {
		return errors.Wrap(err, "vk.QueueWaitIdle()")
	}
	return nil
}
