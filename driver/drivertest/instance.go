// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package drivertest

import (
	"github.com/devblok/trigon/driver"
)

// NewAPI returns an API enumerating devices, all of them share the
// API's Counter from now on
func NewAPI(devices ...*PhysicalDevice) *API {
	counter := NewCounter()
	for _, d := range devices {
		d.Counter = counter
	}
	return &API{
		Counter:    counter,
		Devices:    devices,
		Extensions: []string{"VK_KHR_surface"},
	}
}

// API implements driver.API
type API struct {
	Counter    *Counter
	Devices    []*PhysicalDevice
	Extensions []string
	Layers     []string

	// CreateErr is returned from CreateInstance when set
	CreateErr error

	// Instance is the last instance created
	Instance *Instance
}

// InstanceExtensions implements interface
func (a *API) InstanceExtensions() ([]string, error) {
	return a.Extensions, nil
}

// InstanceLayers implements interface
func (a *API) InstanceLayers() ([]string, error) {
	return a.Layers, nil
}

// CreateInstance implements interface
func (a *API) CreateInstance(info driver.InstanceInfo) (driver.Instance, error) {
	if a.CreateErr != nil {
		return nil, a.CreateErr
	}
	a.Instance = &Instance{
		resource: newResource(a.Counter, KindInstance),
		Info:     info,
		api:      a,
	}
	return a.Instance, nil
}

// Instance implements driver.Instance
type Instance struct {
	resource
	Info driver.InstanceInfo
	api  *API
}

// Handle implements interface
func (i *Instance) Handle() interface{} {
	return i
}

// WrapSurface implements interface
func (i *Instance) WrapSurface(handle uintptr) driver.Surface {
	return &Surface{
		resource: newResource(i.counter, KindSurface),
		Handle:   handle,
	}
}

// PhysicalDevices implements interface
func (i *Instance) PhysicalDevices() ([]driver.PhysicalDevice, error) {
	devices := make([]driver.PhysicalDevice, 0, len(i.api.Devices))
	for _, d := range i.api.Devices {
		devices = append(devices, d)
	}
	return devices, nil
}

// Surface implements driver.Surface
type Surface struct {
	resource
	Handle uintptr
}

// NewSurface returns a surface that is not owned by any instance
func NewSurface(counter *Counter) *Surface {
	return &Surface{resource: newResource(counter, KindSurface)}
}
