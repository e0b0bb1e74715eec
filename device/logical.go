// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"io"

	"github.com/devblok/trigon/driver"
	"github.com/pkg/errors"
)

// ErrMissingQueue is returned when the device has no queue in a selected
// family. Like CreationError it is not worth retrying.
var ErrMissingQueue = errors.New("logical device has no queue for a family")

// CreationError is returned when the driver refuses to create the
// logical device. Its cause is the driver error.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return "logical device creation failed: " + e.Err.Error()
}

// Cause returns the driver error
func (e *CreationError) Cause() error {
	return e.Err
}

// Format prints the driver error with its stack for %+v
func (e *CreationError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v\nlogical device creation failed", e.Err)
		return
	}
	io.WriteString(s, e.Error())
}

// IsCreationError reports whether err, or anything it wraps,
// is a CreationError
func IsCreationError(err error) bool {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if _, ok := err.(*CreationError); ok {
			return true
		}
		c, ok := err.(causer)
		if !ok {
			return false
		}
		err = c.Cause()
	}
	return false
}

// LogicalDevice is the device the renderer talks to, with its queues
type LogicalDevice struct {
	Device        driver.Device
	GraphicsQueue driver.Queue
	PresentQueue  driver.Queue

	GraphicsFamily uint32
	PresentFamily  uint32
}

// CreateLogicalDevice creates a logical device on pd with one queue in
// each family props found. Layers should only be given for debugging.
func CreateLogicalDevice(pd driver.PhysicalDevice, props DeviceProperties, layers []string) (*LogicalDevice, error) {
	if props.GraphicsQueueFamilyIndex == NoQueueFamily || props.PresentationQueueFamilyIndex == NoQueueFamily {
		return nil, errors.Wrap(ErrMissingQueue, "queue families were not selected")
	}

	device, err := pd.CreateDevice(driver.DeviceCreateInfo{
		QueueFamilies: props.QueueFamilies(),
		Extensions:    props.ExtensionNames,
		Layers:        layers,
	})
	if err != nil {
		return nil, &CreationError{Err: err}
	}

	ld := &LogicalDevice{
		Device:         device,
		GraphicsFamily: uint32(props.GraphicsQueueFamilyIndex),
		PresentFamily:  uint32(props.PresentationQueueFamilyIndex),
	}
	ld.GraphicsQueue = device.Queue(ld.GraphicsFamily)
	ld.PresentQueue = device.Queue(ld.PresentFamily)
	if ld.GraphicsQueue == nil {
		ld.Destroy()
		return nil, errors.Wrapf(ErrMissingQueue, "graphics family %d", ld.GraphicsFamily)
	}
	if ld.PresentQueue == nil {
		ld.Destroy()
		return nil, errors.Wrapf(ErrMissingQueue, "present family %d", ld.PresentFamily)
	}
	return ld, nil
}

// SharesQueueFamily is true when graphics and presentation use the same family
func (ld *LogicalDevice) SharesQueueFamily() bool {
	return ld.GraphicsFamily == ld.PresentFamily
}

// WaitIdle waits for the device to finish all submitted work
func (ld *LogicalDevice) WaitIdle() error {
	if ld == nil || ld.Device == nil {
		return nil
	}
	return ld.Device.WaitIdle()
}

// Destroy destroys the device, can be called more than once
func (ld *LogicalDevice) Destroy() {
	if ld == nil || ld.Device == nil {
		return
	}
	ld.Device.Destroy()
	ld.Device = nil
	ld.GraphicsQueue = nil
	ld.PresentQueue = nil
}
