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

// CreateSwapchain implements interface
func (d *device) CreateSwapchain(info driver.SwapchainInfo) (driver.Swapchain, error) {
	scci := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surfaceHandle(info.Surface),
		MinImageCount:    info.MinImageCount,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     nil,
	}

	if len(info.SharingFamilies) > 0 {
		scci.ImageSharingMode = vk.SharingModeConcurrent
		scci.QueueFamilyIndexCount = uint32(len(info.SharingFamilies))
		scci.PQueueFamilyIndices = info.SharingFamilies
	} else {
		scci.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(d.handle, &scci, nil, &handle)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateSwapchain()")
	}
	return &swapchain{device: d.handle, handle: handle}, nil
}

type swapchain struct {
	device vk.Device
	handle vk.Swapchain
}

// Images implements interface
func (s *swapchain) Images() ([]driver.Image, error) {
	var count uint32
	if err := vk.Error(vk.GetSwapchainImages(s.device, s.handle, &count, nil)); err != nil {
		return nil, errors.Wrap(err, "vk.GetSwapchainImages(num)")
	}
	handles := make([]vk.Image, count)
	if err := vk.Error(vk.GetSwapchainImages(s.device, s.handle, &count, handles)); err != nil {
		return nil, errors.Wrap(err, "vk.GetSwapchainImages(images)")
	}

	images := make([]driver.Image, 0, len(handles))
	for _, h := range handles {
		images = append(images, h)
	}
	return images, nil
}

// AcquireNextImage implements interface
func (s *swapchain) AcquireNextImage(timeout uint64, signal driver.Semaphore) (uint32, error) {
	var index uint32
	result := vk.AcquireNextImage(s.device, s.handle, uint(timeout), signal.(*semaphore).handle, nil, &index)
	return index, presentationError(result, "vk.AcquireNextImage()")
}

// Destroy implements interface
func (s *swapchain) Destroy() {
	if s.handle == nil {
		return
	}
	vk.DestroySwapchain(s.device, s.handle, nil)
	s.handle = nil
}

// CreateImageView implements interface
func (d *device) CreateImageView(image driver.Image, format driver.Format) (driver.ImageView, error) {
	ivci := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image.(vk.Image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(d.handle, &ivci, nil, &view)); err != nil {
		return nil, errors.Wrap(err, "vk.CreateImageView()")
	}
	return &imageView{device: d.handle, handle: view}, nil
}

type imageView struct {
	device vk.Device
	handle vk.ImageView
}

// Destroy implements interface
func (v *imageView) Destroy() {
	if v.handle == nil {
		return
	}
	vk.DestroyImageView(v.device, v.handle, nil)
	v.handle = nil
}
