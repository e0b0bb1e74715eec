// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrSurfaceHidden is returned by Rebuild while the surface has no area,
// usually because the window is minimised
var ErrSurfaceHidden = errors.New("surface has a zero extent")

// PreferredSurfaceFormat is picked whenever the surface allows it
var PreferredSurfaceFormat = driver.SurfaceFormat{
	Format:     driver.FormatB8G8R8A8Unorm,
	ColorSpace: driver.ColorSpaceSrgbNonlinear,
}

// SelectSwapSurfaceFormat picks the preferred format if the surface has
// no preference or lists it, otherwise the first format reported.
func SelectSwapSurfaceFormat(formats []driver.SurfaceFormat) driver.SurfaceFormat {
	if len(formats) == 0 {
		return PreferredSurfaceFormat
	}
	if len(formats) == 1 && formats[0].Format == driver.FormatUndefined {
		return PreferredSurfaceFormat
	}
	for _, f := range formats {
		if f == PreferredSurfaceFormat {
			return f
		}
	}
	return formats[0]
}

// SelectSwapPresentationMode prefers mailbox and falls
// back to FIFO, which is always available
func SelectSwapPresentationMode(modes []driver.PresentMode) driver.PresentMode {
	for _, m := range modes {
		if m == driver.PresentModeMailbox {
			return m
		}
	}
	return driver.PresentModeFifo
}

// SelectSwapExtent returns the current extent of the surface, unless the
// surface leaves it up to the swapchain. Then the framebuffer size is used,
// clamped to what the surface supports.
func SelectSwapExtent(caps driver.SurfaceCapabilities, framebufferWidth, framebufferHeight int) driver.Extent2D {
	if caps.CurrentExtent.Width != driver.UndefinedExtent {
		return caps.CurrentExtent
	}
	return driver.Extent2D{
		Width:  clamp(uint32(nonNegative(framebufferWidth)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(nonNegative(framebufferHeight)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// SelectImageCount asks for one image more than the minimum,
// a MaxImageCount of 0 means there is no maximum
func SelectImageCount(caps driver.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// NewSwapchain prepares a swapchain for the device and surface.
// Nothing is created until Build is called.
func NewSwapchain(
	ld *device.LogicalDevice,
	pd driver.PhysicalDevice,
	props device.DeviceProperties,
	surface driver.Surface,
	framebufferSize func() (int, int),
	cfg SwapchainConfig,
	logger log.FieldLogger,
) *Swapchain {
	return &Swapchain{
		device:          ld,
		physical:        pd,
		surface:         surface,
		framebufferSize: framebufferSize,
		config:          cfg,
		logger:          logger,
		caps:            props.SurfaceCapabilities,
		format:          SelectSwapSurfaceFormat(props.SurfaceFormats),
		presentMode:     SelectSwapPresentationMode(props.PresentationModes),
	}
}

// Swapchain owns the swapchain and everything that depends on it: image
// views, render pass, pipeline, framebuffers and pre-recorded command
// buffers, one of each per image. All of it is built and torn down together.
type Swapchain struct {
	device          *device.LogicalDevice
	physical        driver.PhysicalDevice
	surface         driver.Surface
	framebufferSize func() (int, int)
	config          SwapchainConfig
	logger          log.FieldLogger

	caps        driver.SurfaceCapabilities
	format      driver.SurfaceFormat
	presentMode driver.PresentMode
	extent      driver.Extent2D

	handle         driver.Swapchain
	images         []driver.Image
	views          []driver.ImageView
	renderPass     driver.RenderPass
	pipelineLayout driver.PipelineLayout
	pipeline       driver.Pipeline
	framebuffers   []driver.Framebuffer
	commandPool    driver.CommandPool
	commandBuffers []driver.CommandBuffer
}

// Handle is the swapchain itself, nil when not built
func (s *Swapchain) Handle() driver.Swapchain {
	return s.handle
}

// Built reports whether the swapchain is ready to render with
func (s *Swapchain) Built() bool {
	return s.handle != nil
}

// Format is the surface format of the images
func (s *Swapchain) Format() driver.SurfaceFormat {
	return s.format
}

// PresentMode is the presentation mode in use
func (s *Swapchain) PresentMode() driver.PresentMode {
	return s.presentMode
}

// Extent is the size of the images
func (s *Swapchain) Extent() driver.Extent2D {
	return s.extent
}

// ImageCount is the number of images in the swapchain
func (s *Swapchain) ImageCount() int {
	return len(s.images)
}

// Counts returns the number of images, image views, framebuffers
// and command buffers, which are all the same when built
func (s *Swapchain) Counts() (images, views, framebuffers, commandBuffers int) {
	return len(s.images), len(s.views), len(s.framebuffers), len(s.commandBuffers)
}

// CommandBuffer returns the pre-recorded command buffer of an image
func (s *Swapchain) CommandBuffer(imageIndex uint32) (driver.CommandBuffer, error) {
	if int(imageIndex) >= len(s.commandBuffers) {
		return nil, errors.Errorf("image index %d out of %d", imageIndex, len(s.commandBuffers))
	}
	return s.commandBuffers[imageIndex], nil
}

// Build creates the swapchain and everything depending on it. When a step
// fails, whatever was built is torn down again.
func (s *Swapchain) Build() (err error) {
	if s.Built() {
		return errors.New("swapchain is already built")
	}
	defer func() {
		if err != nil {
			s.Teardown()
		}
	}()

	width, height := s.framebufferSize()
	s.extent = SelectSwapExtent(s.caps, width, height)
	if s.extent.Width == 0 || s.extent.Height == 0 {
		return ErrSurfaceHidden
	}

	if err := s.createSwapchain(); err != nil {
		return err
	}
	if err := s.createImageViews(); err != nil {
		return err
	}
	if s.renderPass, err = s.device.Device.CreateRenderPass(s.format.Format); err != nil {
		return errors.Wrap(err, "creating render pass")
	}
	if err := s.createPipeline(); err != nil {
		return err
	}
	if err := s.createFramebuffers(); err != nil {
		return err
	}
	if s.commandPool, err = s.device.Device.CreateCommandPool(s.device.GraphicsFamily); err != nil {
		return errors.Wrap(err, "creating command pool")
	}
	if err := s.recordCommandBuffers(); err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{
		"images": len(s.images),
		"width":  s.extent.Width,
		"height": s.extent.Height,
		"mode":   s.presentMode,
	}).Debug("Swapchain built")
	return nil
}

func (s *Swapchain) createSwapchain() error {
	info := driver.SwapchainInfo{
		Surface:       s.surface,
		MinImageCount: SelectImageCount(s.caps),
		Format:        s.format,
		Extent:        s.extent,
		PreTransform:  s.caps.CurrentTransform,
		PresentMode:   s.presentMode,
	}
	if !s.device.SharesQueueFamily() {
		info.SharingFamilies = []uint32{s.device.GraphicsFamily, s.device.PresentFamily}
	}

	handle, err := s.device.Device.CreateSwapchain(info)
	if err != nil {
		return errors.Wrap(err, "creating swapchain")
	}
	s.handle = handle

	if s.images, err = handle.Images(); err != nil {
		return errors.Wrap(err, "getting swapchain images")
	}
	return nil
}

func (s *Swapchain) createImageViews() error {
	s.views = make([]driver.ImageView, 0, len(s.images))
	for _, image := range s.images {
		view, err := s.device.Device.CreateImageView(image, s.format.Format)
		if err != nil {
			return errors.Wrap(err, "creating image view")
		}
		s.views = append(s.views, view)
	}
	return nil
}

func (s *Swapchain) createPipeline() (err error) {
	vertex, err := s.device.Device.CreateShaderModule(s.config.VertexShader)
	if err != nil {
		return errors.Wrap(err, "creating vertex shader module")
	}
	defer vertex.Destroy()

	fragment, err := s.device.Device.CreateShaderModule(s.config.FragmentShader)
	if err != nil {
		return errors.Wrap(err, "creating fragment shader module")
	}
	defer fragment.Destroy()

	if s.pipelineLayout, err = s.device.Device.CreatePipelineLayout(); err != nil {
		return errors.Wrap(err, "creating pipeline layout")
	}
	s.pipeline, err = s.device.Device.CreatePipeline(driver.PipelineInfo{
		RenderPass: s.renderPass,
		Layout:     s.pipelineLayout,
		Vertex:     vertex,
		Fragment:   fragment,
		Extent:     s.extent,
	})
	if err != nil {
		return errors.Wrap(err, "creating pipeline")
	}
	return nil
}

func (s *Swapchain) createFramebuffers() error {
	s.framebuffers = make([]driver.Framebuffer, 0, len(s.views))
	for _, view := range s.views {
		fb, err := s.device.Device.CreateFramebuffer(s.renderPass, view, s.extent)
		if err != nil {
			return errors.Wrap(err, "creating framebuffer")
		}
		s.framebuffers = append(s.framebuffers, fb)
	}
	return nil
}

func (s *Swapchain) recordCommandBuffers() error {
	buffers, err := s.commandPool.Allocate(len(s.framebuffers))
	if err != nil {
		return errors.Wrap(err, "allocating command buffers")
	}
	s.commandBuffers = buffers

	for idx, cb := range s.commandBuffers {
		if err := cb.Begin(); err != nil {
			return errors.Wrapf(err, "beginning command buffer %d", idx)
		}
		cb.BeginRenderPass(s.renderPass, s.framebuffers[idx], s.extent, s.config.ClearColor)
		cb.BindPipeline(s.pipeline)
		cb.Draw(3, 1, 0, 0)
		cb.EndRenderPass()
		if err := cb.End(); err != nil {
			return errors.Wrapf(err, "ending command buffer %d", idx)
		}
	}
	return nil
}

// Teardown destroys everything Build created in reverse order.
// It can be called any number of times, and on a partial build.
func (s *Swapchain) Teardown() {
	if s.commandPool != nil {
		if len(s.commandBuffers) > 0 {
			s.commandPool.Free(s.commandBuffers)
		}
		s.commandPool.Destroy()
	}
	s.commandBuffers = nil
	s.commandPool = nil

	for _, fb := range s.framebuffers {
		fb.Destroy()
	}
	s.framebuffers = nil

	if s.pipeline != nil {
		s.pipeline.Destroy()
		s.pipeline = nil
	}
	if s.pipelineLayout != nil {
		s.pipelineLayout.Destroy()
		s.pipelineLayout = nil
	}
	if s.renderPass != nil {
		s.renderPass.Destroy()
		s.renderPass = nil
	}

	for _, view := range s.views {
		view.Destroy()
	}
	s.views = nil
	s.images = nil

	if s.handle != nil {
		s.handle.Destroy()
		s.handle = nil
	}
}

// Rebuild replaces the swapchain after the surface changed. It waits for
// the device to be idle, tears everything down, queries the surface again
// and builds anew.
func (s *Swapchain) Rebuild() error {
	if err := s.device.WaitIdle(); err != nil {
		return errors.Wrap(err, "waiting for device")
	}
	s.Teardown()

	caps, err := s.physical.SurfaceCapabilities(s.surface)
	if err != nil {
		return errors.Wrap(err, "querying surface capabilities")
	}
	s.caps = caps
	return s.Build()
}
