// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package driver defines the graphics API surface the renderer is built on.
// Handles are opaque: a backend hands them out and only accepts its own
// handles back. Every handle that owns GPU memory is released with Destroy,
// which must run before the owning device or instance is destroyed.
package driver

import glm "github.com/go-gl/mathgl/mgl32"

// Destroyer is anything that releases an API object.
type Destroyer interface {
	Destroy()
}

// API is the entry point of a backend, it is what instances are made from.
type API interface {
	// InstanceExtensions lists the instance extensions the loader exposes
	InstanceExtensions() ([]string, error)

	// InstanceLayers lists the available instance layers
	InstanceLayers() ([]string, error)

	// CreateInstance creates an instance with the given extensions and layers enabled
	CreateInstance(InstanceInfo) (Instance, error)
}

// InstanceInfo configures instance creation.
type InstanceInfo struct {
	ApplicationName string
	Extensions      []string
	Layers          []string

	// DebugReport receives validation layer errors and warnings.
	// Requires the debug report extension to be enabled, ignored when nil.
	DebugReport func(message string)
}

// Instance is a live API instance.
type Instance interface {
	Destroyer

	// Handle returns the native instance handle, window systems need it
	// to create surfaces
	Handle() interface{}

	// WrapSurface adopts a native surface created by a window system.
	// The returned Surface is owned by the caller.
	WrapSurface(handle uintptr) Surface

	// PhysicalDevices enumerates devices in the order the API reports them
	PhysicalDevices() ([]PhysicalDevice, error)
}

// Surface is a presentation target bound to a window.
type Surface interface {
	Destroyer
}

// PhysicalDevice is a GPU as reported by the API.
type PhysicalDevice interface {
	Info() DeviceInfo
	QueueFamilies() []QueueFamily
	Extensions() ([]string, error)

	SurfaceSupport(family uint32, surface Surface) (bool, error)
	SurfaceCapabilities(surface Surface) (SurfaceCapabilities, error)
	SurfaceFormats(surface Surface) ([]SurfaceFormat, error)
	PresentModes(surface Surface) ([]PresentMode, error)

	CreateDevice(DeviceCreateInfo) (Device, error)
}

// DeviceCreateInfo configures logical device creation.
type DeviceCreateInfo struct {
	// QueueFamilies must be distinct, one queue is created in each
	QueueFamilies []uint32
	Extensions    []string
	Layers        []string
}

// Device is a logical device.
type Device interface {
	Destroyer

	// Queue returns the first queue of a family, nil if there is none
	Queue(family uint32) Queue

	// WaitIdle blocks until all work submitted to the device has finished
	WaitIdle() error

	CreateSwapchain(SwapchainInfo) (Swapchain, error)
	CreateImageView(image Image, format Format) (ImageView, error)
	CreateRenderPass(format Format) (RenderPass, error)
	CreateShaderModule(code []byte) (ShaderModule, error)
	CreatePipelineLayout() (PipelineLayout, error)
	CreatePipeline(PipelineInfo) (Pipeline, error)
	CreateFramebuffer(pass RenderPass, view ImageView, extent Extent2D) (Framebuffer, error)
	CreateCommandPool(family uint32) (CommandPool, error)
	CreateSemaphore() (Semaphore, error)
}

// SwapchainInfo configures swapchain creation.
type SwapchainInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        SurfaceFormat
	Extent        Extent2D
	PreTransform  SurfaceTransform
	PresentMode   PresentMode

	// SharingFamilies lists the queue families sharing the images
	// concurrently. Empty means exclusive ownership.
	SharingFamilies []uint32
}

// PipelineInfo configures the fixed triangle pipeline.
type PipelineInfo struct {
	RenderPass RenderPass
	Layout     PipelineLayout
	Vertex     ShaderModule
	Fragment   ShaderModule
	Extent     Extent2D
}

// Swapchain is a chain of presentable images.
type Swapchain interface {
	Destroyer

	// Images returns the images owned by the swapchain, in order
	Images() ([]Image, error)

	// AcquireNextImage returns the index of the next presentable image.
	// ErrOutOfDate and ErrSuboptimal are returned as is. With ErrSuboptimal
	// the image is still acquired and signal gets signalled.
	AcquireNextImage(timeout uint64, signal Semaphore) (uint32, error)
}

// Image is a presentable image, it is owned by its swapchain.
type Image interface{}

// ImageView is a view of a swapchain image.
type ImageView interface {
	Destroyer
}

// RenderPass is a single subpass, single colour attachment render pass.
type RenderPass interface {
	Destroyer
}

// ShaderModule holds compiled SPIR-V code.
type ShaderModule interface {
	Destroyer
}

// PipelineLayout is an empty pipeline layout.
type PipelineLayout interface {
	Destroyer
}

// Pipeline is a graphics pipeline.
type Pipeline interface {
	Destroyer
}

// Framebuffer binds an image view to a render pass.
type Framebuffer interface {
	Destroyer
}

// Semaphore is a binary GPU-GPU synchronisation primitive.
type Semaphore interface {
	Destroyer
}

// CommandPool allocates primary command buffers.
type CommandPool interface {
	Destroyer

	Allocate(count int) ([]CommandBuffer, error)
	Free(buffers []CommandBuffer)
}

// CommandBuffer records commands for later submission.
type CommandBuffer interface {
	// Begin starts recording a buffer that may be submitted repeatedly
	Begin() error
	BeginRenderPass(pass RenderPass, framebuffer Framebuffer, extent Extent2D, clear glm.Vec4)
	BindPipeline(pipeline Pipeline)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	EndRenderPass()
	End() error
}

// Queue accepts work for the device.
type Queue interface {
	// Submit queues buffer to run after wait is signalled at the colour
	// attachment output stage, signal is signalled on completion
	Submit(buffer CommandBuffer, wait, signal Semaphore) error

	// Present queues imageIndex for presentation after wait is signalled.
	// ErrOutOfDate and ErrSuboptimal are returned as is.
	Present(swapchain Swapchain, imageIndex uint32, wait Semaphore) error

	WaitIdle() error
}
