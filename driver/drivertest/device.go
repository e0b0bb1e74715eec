// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package drivertest

import (
	"fmt"
	"sync"

	"github.com/devblok/trigon/driver"
	glm "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Device implements driver.Device
type Device struct {
	resource
	Info driver.DeviceCreateInfo

	// Fail makes creation of an object kind return the error
	Fail map[string]error

	// ImageCount overrides the number of images a swapchain gets,
	// by default it is the requested minimum
	ImageCount int

	// Swapchains records every swapchain request
	Swapchains []driver.SwapchainInfo

	mutex     sync.Mutex
	queues    map[uint32]*Queue
	waitIdles int
	submitted int
	presented int

	acquire script
	submit  script
	present script
}

// ScriptAcquire queues results for the following image acquisitions
func (d *Device) ScriptAcquire(errs ...error) { d.acquire.push(errs...) }

// ScriptSubmit queues results for the following submissions
func (d *Device) ScriptSubmit(errs ...error) { d.submit.push(errs...) }

// ScriptPresent queues results for the following presentations
func (d *Device) ScriptPresent(errs ...error) { d.present.push(errs...) }

// WaitIdles is the number of WaitIdle calls on the device
func (d *Device) WaitIdles() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.waitIdles
}

// Submitted is the number of successful submissions on all queues
func (d *Device) Submitted() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.submitted
}

// Presented is the number of successful presentations on all queues
func (d *Device) Presented() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.presented
}

func (d *Device) fail(kind string) error {
	if err, ok := d.Fail[kind]; ok && err != nil {
		return err
	}
	return nil
}

// Queue implements interface
func (d *Device) Queue(family uint32) driver.Queue {
	q, ok := d.queues[family]
	if !ok {
		return nil
	}
	return q
}

// WaitIdle implements interface
func (d *Device) WaitIdle() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.waitIdles++
	return nil
}

// CreateSwapchain implements interface
func (d *Device) CreateSwapchain(info driver.SwapchainInfo) (driver.Swapchain, error) {
	d.Swapchains = append(d.Swapchains, info)
	if err := d.fail(KindSwapchain); err != nil {
		return nil, err
	}
	count := int(info.MinImageCount)
	if d.ImageCount > 0 {
		count = d.ImageCount
	}
	images := make([]driver.Image, count)
	for i := range images {
		images[i] = &Image{Index: i}
	}
	return &Swapchain{
		resource: newResource(d.counter, KindSwapchain),
		Info:     info,
		images:   images,
		device:   d,
	}, nil
}

// CreateImageView implements interface
func (d *Device) CreateImageView(image driver.Image, format driver.Format) (driver.ImageView, error) {
	if err := d.fail(KindImageView); err != nil {
		return nil, err
	}
	if _, ok := image.(*Image); !ok {
		return nil, errors.Errorf("drivertest: foreign image %T", image)
	}
	return &object{resource: newResource(d.counter, KindImageView)}, nil
}

// CreateRenderPass implements interface
func (d *Device) CreateRenderPass(format driver.Format) (driver.RenderPass, error) {
	if err := d.fail(KindRenderPass); err != nil {
		return nil, err
	}
	return &object{resource: newResource(d.counter, KindRenderPass)}, nil
}

// CreateShaderModule implements interface
func (d *Device) CreateShaderModule(code []byte) (driver.ShaderModule, error) {
	if err := d.fail(KindShaderModule); err != nil {
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Errorf("drivertest: shader code of %d bytes", len(code))
	}
	return &object{resource: newResource(d.counter, KindShaderModule)}, nil
}

// CreatePipelineLayout implements interface
func (d *Device) CreatePipelineLayout() (driver.PipelineLayout, error) {
	if err := d.fail(KindPipelineLayout); err != nil {
		return nil, err
	}
	return &object{resource: newResource(d.counter, KindPipelineLayout)}, nil
}

// CreatePipeline implements interface
func (d *Device) CreatePipeline(info driver.PipelineInfo) (driver.Pipeline, error) {
	if err := d.fail(KindPipeline); err != nil {
		return nil, err
	}
	if info.RenderPass == nil || info.Layout == nil || info.Vertex == nil || info.Fragment == nil {
		return nil, errors.New("drivertest: incomplete pipeline info")
	}
	return &Pipeline{
		resource: newResource(d.counter, KindPipeline),
		Info:     info,
	}, nil
}

// CreateFramebuffer implements interface
func (d *Device) CreateFramebuffer(pass driver.RenderPass, view driver.ImageView, extent driver.Extent2D) (driver.Framebuffer, error) {
	if err := d.fail(KindFramebuffer); err != nil {
		return nil, err
	}
	return &object{resource: newResource(d.counter, KindFramebuffer)}, nil
}

// CreateCommandPool implements interface
func (d *Device) CreateCommandPool(family uint32) (driver.CommandPool, error) {
	if err := d.fail(KindCommandPool); err != nil {
		return nil, err
	}
	return &CommandPool{
		resource: newResource(d.counter, KindCommandPool),
		Family:   family,
		device:   d,
	}, nil
}

// CreateSemaphore implements interface
func (d *Device) CreateSemaphore() (driver.Semaphore, error) {
	if err := d.fail(KindSemaphore); err != nil {
		return nil, err
	}
	return &Semaphore{resource: newResource(d.counter, KindSemaphore)}, nil
}

// Semaphore implements driver.Semaphore, it remembers
// whether a signal is pending
type Semaphore struct {
	resource
	pending bool
}

// Pending reports whether the semaphore was signaled and not waited on since
func (s *Semaphore) Pending() bool {
	s.counter.mutex.Lock()
	defer s.counter.mutex.Unlock()
	return s.pending
}

func signalSemaphore(s driver.Semaphore) {
	if fs, ok := s.(*Semaphore); ok {
		fs.counter.signal(&fs.pending)
	}
}

func waitSemaphore(s driver.Semaphore) {
	if fs, ok := s.(*Semaphore); ok {
		fs.counter.wait(&fs.pending)
	}
}

// object is any resource without behaviour of its own
type object struct {
	resource
}

// Image implements driver.Image
type Image struct {
	Index int
}

// Pipeline implements driver.Pipeline
type Pipeline struct {
	resource
	Info driver.PipelineInfo
}

// Swapchain implements driver.Swapchain
type Swapchain struct {
	resource
	Info driver.SwapchainInfo

	images []driver.Image
	next   uint32
	device *Device
}

// Images implements interface
func (s *Swapchain) Images() ([]driver.Image, error) {
	return s.images, nil
}

// AcquireNextImage implements interface. A scripted ErrSuboptimal
// still acquires an image and signals the semaphore.
func (s *Swapchain) AcquireNextImage(timeout uint64, signal driver.Semaphore) (uint32, error) {
	if signal == nil {
		return 0, errors.New("drivertest: acquire without a semaphore")
	}
	err := s.device.acquire.next()
	if err != nil && errors.Cause(err) != driver.ErrSuboptimal {
		return 0, err
	}
	signalSemaphore(signal)
	index := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	return index, err
}

// CommandPool implements driver.CommandPool
type CommandPool struct {
	resource
	Family uint32
	device *Device
}

// Allocate implements interface
func (p *CommandPool) Allocate(count int) ([]driver.CommandBuffer, error) {
	if err := p.device.fail(KindCommandBuffer); err != nil {
		return nil, err
	}
	buffers := make([]driver.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = &CommandBuffer{resource: newResource(p.counter, KindCommandBuffer)}
	}
	return buffers, nil
}

// Free implements interface
func (p *CommandPool) Free(buffers []driver.CommandBuffer) {
	for _, b := range buffers {
		if cb, ok := b.(*CommandBuffer); ok {
			cb.Destroy()
		}
	}
}

// CommandBuffer implements driver.CommandBuffer, it remembers
// the commands recorded into it
type CommandBuffer struct {
	resource
	Commands []string
	Clear    glm.Vec4
}

// Begin implements interface
func (b *CommandBuffer) Begin() error {
	b.Commands = append(b.Commands, "begin")
	return nil
}

// BeginRenderPass implements interface
func (b *CommandBuffer) BeginRenderPass(pass driver.RenderPass, framebuffer driver.Framebuffer, extent driver.Extent2D, clear glm.Vec4) {
	b.Clear = clear
	b.Commands = append(b.Commands, fmt.Sprintf("beginRenderPass %dx%d", extent.Width, extent.Height))
}

// BindPipeline implements interface
func (b *CommandBuffer) BindPipeline(pipeline driver.Pipeline) {
	b.Commands = append(b.Commands, "bindPipeline")
}

// Draw implements interface
func (b *CommandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	b.Commands = append(b.Commands, fmt.Sprintf("draw %d %d %d %d", vertexCount, instanceCount, firstVertex, firstInstance))
}

// EndRenderPass implements interface
func (b *CommandBuffer) EndRenderPass() {
	b.Commands = append(b.Commands, "endRenderPass")
}

// End implements interface
func (b *CommandBuffer) End() error {
	b.Commands = append(b.Commands, "end")
	return nil
}

// Queue implements driver.Queue
type Queue struct {
	Family uint32
	device *Device

	waitIdles int
}

// WaitIdles is the number of WaitIdle calls on this queue
func (q *Queue) WaitIdles() int {
	q.device.mutex.Lock()
	defer q.device.mutex.Unlock()
	return q.waitIdles
}

// Submit implements interface
func (q *Queue) Submit(buffer driver.CommandBuffer, wait, signal driver.Semaphore) error {
	if buffer == nil || wait == nil || signal == nil {
		return errors.New("drivertest: incomplete submission")
	}
	if err := q.device.submit.next(); err != nil {
		return err
	}
	waitSemaphore(wait)
	signalSemaphore(signal)
	q.device.mutex.Lock()
	defer q.device.mutex.Unlock()
	q.device.submitted++
	return nil
}

// Present implements interface
func (q *Queue) Present(swapchain driver.Swapchain, imageIndex uint32, wait driver.Semaphore) error {
	if swapchain == nil || wait == nil {
		return errors.New("drivertest: incomplete presentation")
	}
	waitSemaphore(wait)
	if err := q.device.present.next(); err != nil {
		return err
	}
	q.device.mutex.Lock()
	defer q.device.mutex.Unlock()
	q.device.presented++
	return nil
}

// WaitIdle implements interface
func (q *Queue) WaitIdle() error {
	q.device.mutex.Lock()
	defer q.device.mutex.Unlock()
	q.waitIdles++
	return nil
}
