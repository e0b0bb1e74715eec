// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

import (
	"math"

	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// FrameState is where the frame loop is within a frame
type FrameState int

// Frame states, a frame goes through all of them in order
const (
	StateIdle FrameState = iota
	StateAcquiring
	StateSubmitting
	StatePresenting
)

func (s FrameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateSubmitting:
		return "submitting"
	case StatePresenting:
		return "presenting"
	}
	return "unknown"
}

// FrameResult is the outcome of one Step
type FrameResult int

// Frame results
const (
	// FramePresented means the frame made it to the screen
	FramePresented FrameResult = iota
	// FrameRebuilt means the frame was abandoned for a swapchain rebuild
	FrameRebuilt
	// FrameSkipped means the frame was dropped, the next one may succeed
	FrameSkipped
	// FrameFailed means the swapchain could not be rebuilt, rendering is over
	FrameFailed
)

func (r FrameResult) String() string {
	switch r {
	case FramePresented:
		return "presented"
	case FrameRebuilt:
		return "rebuilt"
	case FrameSkipped:
		return "skipped"
	case FrameFailed:
		return "failed"
	}
	return "unknown"
}

// NewFrameLoop creates the semaphores one frame in flight needs. With debug
// set every presentation is followed by waiting for the present queue, so
// validation layer output lines up with the frame that caused it.
func NewFrameLoop(ld *device.LogicalDevice, swapchain *Swapchain, debug bool, logger log.FieldLogger) (*FrameLoop, error) {
	f := &FrameLoop{
		device:    ld,
		swapchain: swapchain,
		debug:     debug,
		logger:    logger,
	}

	if err := f.renewImageAvailable(); err != nil {
		return nil, err
	}
	var err error
	if f.renderFinished, err = ld.Device.CreateSemaphore(); err != nil {
		f.Destroy()
		return nil, errors.Wrap(err, "creating render finished semaphore")
	}
	return f, nil
}

// FrameLoop acquires, submits and presents one frame at a time. A stale
// swapchain is rebuilt on the spot and the frame abandoned.
type FrameLoop struct {
	device    *device.LogicalDevice
	swapchain *Swapchain
	debug     bool
	logger    log.FieldLogger

	imageAvailable driver.Semaphore
	renderFinished driver.Semaphore

	state         FrameState
	pendingResize bool
	presented     uint64
	rebuilds      uint64
}

// State is the current frame state, Idle between frames
func (f *FrameLoop) State() FrameState {
	return f.state
}

// Presented is the number of frames presented so far
func (f *FrameLoop) Presented() uint64 {
	return f.presented
}

// Rebuilds is the number of swapchain rebuilds so far
func (f *FrameLoop) Rebuilds() uint64 {
	return f.rebuilds
}

// Invalidate notes that the window was resized. The swapchain is rebuilt
// at the start of the next frame. Zero sizes are ignored.
func (f *FrameLoop) Invalidate(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	f.pendingResize = true
}

// Step renders one frame
func (f *FrameLoop) Step() FrameResult {
	defer func() { f.state = StateIdle }()

	if f.pendingResize || !f.swapchain.Built() {
		return f.rebuild()
	}

	if f.imageAvailable == nil {
		if err := f.renewImageAvailable(); err != nil {
			f.logger.WithError(err).Error("Recreating image available semaphore failed")
			return FrameFailed
		}
	}

	f.state = StateAcquiring
	imageIndex, err := f.swapchain.Handle().AcquireNextImage(math.MaxUint64, f.imageAvailable)
	if driver.IsStale(err) {
		// a suboptimal acquire leaves imageAvailable signalled with
		// nothing to wait on it, so it is replaced
		result := f.rebuild()
		if err := f.renewImageAvailable(); err != nil {
			f.logger.WithError(err).Error("Recreating image available semaphore failed")
			return FrameFailed
		}
		return result
	} else if err != nil {
		f.logger.WithError(err).Error("Acquiring next image failed")
		return FrameSkipped
	}

	f.state = StateSubmitting
	cb, err := f.swapchain.CommandBuffer(imageIndex)
	if err != nil {
		f.logger.WithError(err).Error("No command buffer for image")
		return f.dropAcquired()
	}
	if err := f.device.GraphicsQueue.Submit(cb, f.imageAvailable, f.renderFinished); err != nil {
		f.logger.WithError(err).Error("Submitting draw command buffer failed")
		return f.dropAcquired()
	}

	f.state = StatePresenting
	err = f.device.PresentQueue.Present(f.swapchain.Handle(), imageIndex, f.renderFinished)
	if driver.IsStale(err) {
		return f.rebuild()
	} else if err != nil {
		f.logger.WithError(err).Error("Presenting image failed")
		return FrameSkipped
	}

	f.presented++
	if f.debug {
		if err := f.device.PresentQueue.WaitIdle(); err != nil {
			f.logger.WithError(err).Error("Waiting for the present queue failed")
		}
	}
	return FramePresented
}

// dropAcquired skips a frame whose image was acquired but never submitted,
// nothing will wait on imageAvailable so it is replaced
func (f *FrameLoop) dropAcquired() FrameResult {
	if err := f.device.WaitIdle(); err != nil {
		f.logger.WithError(err).Error("Waiting for device failed")
	}
	if err := f.renewImageAvailable(); err != nil {
		f.logger.WithError(err).Error("Recreating image available semaphore failed")
		return FrameFailed
	}
	return FrameSkipped
}

// renewImageAvailable replaces the acquire semaphore, the device must be idle
func (f *FrameLoop) renewImageAvailable() error {
	if f.imageAvailable != nil {
		f.imageAvailable.Destroy()
		f.imageAvailable = nil
	}
	s, err := f.device.Device.CreateSemaphore()
	if err != nil {
		return errors.Wrap(err, "creating image available semaphore")
	}
	f.imageAvailable = s
	return nil
}

func (f *FrameLoop) rebuild() FrameResult {
	f.pendingResize = false
	f.rebuilds++

	err := f.swapchain.Rebuild()
	if err == ErrSurfaceHidden {
		f.logger.Debug("Surface hidden, waiting for it to come back")
		return FrameSkipped
	} else if err != nil {
		f.logger.WithError(err).Error("Rebuilding swapchain failed")
		return FrameFailed
	}
	return FrameRebuilt
}

// Destroy destroys the semaphores, the device must be idle
func (f *FrameLoop) Destroy() {
	if f.renderFinished != nil {
		f.renderFinished.Destroy()
		f.renderFinished = nil
	}
	if f.imageAvailable != nil {
		f.imageAvailable.Destroy()
		f.imageAvailable = nil
	}
}
