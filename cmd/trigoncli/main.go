// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"runtime"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/driver"
	"github.com/devblok/trigon/driver/vulkan"
	"github.com/devblok/trigon/platform"
	"github.com/devblok/trigon/platform/backend"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

var (
	windowSystem = flag.String("window-system", backend.Default, "Window system to use, sdl or glfw")
	indent       = flag.Bool("indent", false, "Indent the output")
)

// report is what gets printed
type report struct {
	WindowSystem string                      `json:"windowSystem"`
	Devices      []device.PhysicalDeviceInfo `json:"devices"`
	DisplayModes []core.DisplayMode          `json:"displayModes"`
}

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	tracker := platform.NewErrorTracker(log.StandardLogger())
	r, err := inspect(*windowSystem, tracker)
	if err != nil {
		log.WithError(tracker.Annotate(err)).Fatal("Cannot inspect devices")
	}

	var bytes []byte
	if *indent {
		bytes, err = json.MarshalIndent(r, "", "  ")
	} else {
		bytes, err = json.Marshal(r)
	}
	if err != nil {
		log.WithError(err).Fatal("json.Marshal()")
	}
	fmt.Printf("%s\n", bytes)
}

// inspect creates a small window to get a surface from, and describes
// every physical device against it.
func inspect(name string, sink platform.ErrorSink) (report, error) {
	system, err := backend.Open(name, sink)
	if err != nil {
		return report{}, err
	}
	defer system.Terminate()

	window, err := system.CreateWindow(platform.WindowConfig{
		Title:    "trigoncli",
		Width:    64,
		Height:   64,
		Windowed: true,
	})
	if err != nil {
		return report{}, err
	}
	defer window.Destroy()

	api, err := vulkan.New(system.VulkanProcAddr())
	if err != nil {
		return report{}, err
	}
	instance, err := api.CreateInstance(driver.InstanceInfo{
		ApplicationName: "trigoncli",
		Extensions:      window.RequiredInstanceExtensions(),
	})
	if err != nil {
		return report{}, err
	}
	defer instance.Destroy()

	handle, err := window.CreateSurface(instance.Handle())
	if err != nil {
		return report{}, errors.Wrap(err, "creating surface")
	}
	surface := instance.WrapSurface(handle)
	defer surface.Destroy()

	devices, err := instance.PhysicalDevices()
	if err != nil {
		return report{}, err
	}

	r := report{
		WindowSystem: name,
		Devices:      make([]device.PhysicalDeviceInfo, 0, len(devices)),
		DisplayModes: system.DisplayModes(),
	}
	req := device.DefaultRequirements()
	for _, pd := range devices {
		r.Devices = append(r.Devices, device.DescribeWithSurface(pd, surface, req))
	}
	if r.DisplayModes == nil {
		r.DisplayModes = []core.DisplayMode{}
	}
	return r, nil
}
