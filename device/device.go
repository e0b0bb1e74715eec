// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device picks the physical device to render with
// and creates the logical device and its queues on it.
package device

import (
	"fmt"

	"github.com/devblok/trigon/driver"
)

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	ID            uint32              `json:"id"`
	VendorID      uint32              `json:"vendorId"`
	DriverVersion uint32              `json:"driverVersion"`
	APIVersion    string              `json:"apiVersion"`
	Name          string              `json:"name"`
	Type          string              `json:"type"`
	Invalid       bool                `json:"invalid"`
	Extensions    []string            `json:"extensions"`
	QueueFamilies []QueueFamilyInfo   `json:"queueFamilies"`
	Memory        uint64              `json:"memory"`
	Surface       *SurfaceSupportInfo `json:"surface,omitempty"`
}

// QueueFamilyInfo is the JSON friendly description of a queue family
type QueueFamilyInfo struct {
	Index    uint32 `json:"index"`
	Queues   uint32 `json:"queues"`
	Graphics bool   `json:"graphics"`
	Compute  bool   `json:"compute"`
	Transfer bool   `json:"transfer"`
}

// SurfaceSupportInfo is what a device can do with a particular surface
type SurfaceSupportInfo struct {
	Suitable     bool                       `json:"suitable"`
	Score        int                        `json:"score"`
	Capabilities driver.SurfaceCapabilities `json:"capabilities"`
	Formats      []driver.SurfaceFormat     `json:"formats"`
	PresentModes []driver.PresentMode       `json:"presentModes"`
}

// Describe collects what is known about pd. A device whose
// extensions can't be listed is marked Invalid.
func Describe(pd driver.PhysicalDevice) PhysicalDeviceInfo {
	info := pd.Info()
	pdi := PhysicalDeviceInfo{
		ID:            info.DeviceID,
		VendorID:      info.VendorID,
		DriverVersion: info.DriverVersion,
		APIVersion:    versionString(info.APIVersion),
		Name:          info.Name,
		Type:          info.Type.String(),
		Memory:        info.Memory,
	}

	extensions, err := pd.Extensions()
	if err != nil {
		pdi.Invalid = true
	}
	pdi.Extensions = extensions

	for _, f := range pd.QueueFamilies() {
		pdi.QueueFamilies = append(pdi.QueueFamilies, QueueFamilyInfo{
			Index:    f.Index,
			Queues:   f.QueueCount,
			Graphics: f.Graphics,
			Compute:  f.Compute,
			Transfer: f.Transfer,
		})
	}
	return pdi
}

// DescribeWithSurface is Describe plus how well pd can present to surface
func DescribeWithSurface(pd driver.PhysicalDevice, surface driver.Surface, req Requirements) PhysicalDeviceInfo {
	pdi := Describe(pd)
	props := ExtractProperties(pd, surface, req)
	pdi.Surface = &SurfaceSupportInfo{
		Suitable:     props.MeetsMinimumRequirements(),
		Score:        ScorePhysicalDevice(props),
		Capabilities: props.SurfaceCapabilities,
		Formats:      props.SurfaceFormats,
		PresentModes: props.PresentationModes,
	}
	return pdi
}

// versionString unpacks a version packed the way Vulkan does it
func versionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d", v>>22, (v>>12)&0x3ff, v&0xfff)
}
