// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer_test

import (
	"testing"

	"github.com/devblok/trigon/core/renderer"
	"github.com/devblok/trigon/driver"
	"github.com/devblok/trigon/driver/drivertest"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
)

var swapchainKinds = []string{
	drivertest.KindSwapchain,
	drivertest.KindImageView,
	drivertest.KindRenderPass,
	drivertest.KindShaderModule,
	drivertest.KindPipelineLayout,
	drivertest.KindPipeline,
	drivertest.KindFramebuffer,
	drivertest.KindCommandPool,
	drivertest.KindCommandBuffer,
}

func assertNothingLive(c *qt.C, counter *drivertest.Counter) {
	for _, kind := range swapchainKinds {
		c.Assert(counter.Live(kind), qt.Equals, 0, qt.Commentf(kind))
	}
	c.Assert(counter.DoubleDestroys(), qt.Equals, 0)
}

func TestSelectSwapExtent(t *testing.T) {
	c := qt.New(t)
	caps := driver.SurfaceCapabilities{
		CurrentExtent:  driver.Extent2D{Width: driver.UndefinedExtent, Height: driver.UndefinedExtent},
		MinImageExtent: driver.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: driver.Extent2D{Width: 4096, Height: 4096},
	}
	c.Assert(renderer.SelectSwapExtent(caps, 50, 5000), qt.Equals, driver.Extent2D{Width: 100, Height: 4096})
	c.Assert(renderer.SelectSwapExtent(caps, 640, 480), qt.Equals, driver.Extent2D{Width: 640, Height: 480})
	c.Assert(renderer.SelectSwapExtent(caps, -1, 0), qt.Equals, driver.Extent2D{Width: 100, Height: 100})

	caps.CurrentExtent = driver.Extent2D{Width: 1920, Height: 1080}
	c.Assert(renderer.SelectSwapExtent(caps, 50, 5000), qt.Equals, caps.CurrentExtent)
}

func TestSelectImageCount(t *testing.T) {
	c := qt.New(t)
	for _, test := range []struct {
		min, max, want uint32
	}{
		{2, 2, 2},
		{2, 0, 3},
		{2, 8, 3},
		{1, 3, 2},
	} {
		caps := driver.SurfaceCapabilities{MinImageCount: test.min, MaxImageCount: test.max}
		c.Assert(renderer.SelectImageCount(caps), qt.Equals, test.want, qt.Commentf("min %d max %d", test.min, test.max))
	}
}

func TestSelectSwapSurfaceFormat(t *testing.T) {
	c := qt.New(t)
	srgb := driver.SurfaceFormat{Format: driver.FormatB8G8R8A8Srgb, ColorSpace: driver.ColorSpaceSrgbNonlinear}

	for _, formats := range [][]driver.SurfaceFormat{
		{{Format: driver.FormatUndefined}},
		{srgb, renderer.PreferredSurfaceFormat},
		{srgb},
	} {
		selected := renderer.SelectSwapSurfaceFormat(formats)
		c.Assert(renderer.SelectSwapSurfaceFormat([]driver.SurfaceFormat{selected}), qt.Equals, selected)
	}

	c.Assert(renderer.SelectSwapSurfaceFormat([]driver.SurfaceFormat{{Format: driver.FormatUndefined}}), qt.Equals, renderer.PreferredSurfaceFormat)
	c.Assert(renderer.SelectSwapSurfaceFormat([]driver.SurfaceFormat{srgb, renderer.PreferredSurfaceFormat}), qt.Equals, renderer.PreferredSurfaceFormat)
	c.Assert(renderer.SelectSwapSurfaceFormat([]driver.SurfaceFormat{srgb}), qt.Equals, srgb)
}

func TestSelectSwapPresentationMode(t *testing.T) {
	c := qt.New(t)
	c.Assert(renderer.SelectSwapPresentationMode([]driver.PresentMode{driver.PresentModeFifo, driver.PresentModeMailbox}), qt.Equals, driver.PresentModeMailbox)
	c.Assert(renderer.SelectSwapPresentationMode([]driver.PresentMode{driver.PresentModeImmediate}), qt.Equals, driver.PresentModeFifo)
	c.Assert(renderer.SelectSwapPresentationMode(nil), qt.Equals, driver.PresentModeFifo)
}

func TestSwapchainBuild(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, drivertest.NewPhysicalDevice("gpu"))

	c.Assert(f.swapchain.Build(), qt.IsNil)
	c.Assert(f.swapchain.Built(), qt.Equals, true)
	c.Assert(f.swapchain.Extent(), qt.Equals, driver.Extent2D{Width: 800, Height: 600})
	c.Assert(f.swapchain.PresentMode(), qt.Equals, driver.PresentModeMailbox)

	images, views, framebuffers, buffers := f.swapchain.Counts()
	c.Assert(images, qt.Equals, 3)
	c.Assert(views, qt.Equals, images)
	c.Assert(framebuffers, qt.Equals, images)
	c.Assert(buffers, qt.Equals, images)

	info := f.device().Swapchains[0]
	c.Assert(info.MinImageCount, qt.Equals, uint32(3))
	c.Assert(info.SharingFamilies, qt.HasLen, 0)
	c.Assert(info.PreTransform, qt.Equals, driver.SurfaceTransformIdentity)

	// shader modules are only needed while the pipeline is created
	c.Assert(f.pd.Counter.Live(drivertest.KindShaderModule), qt.Equals, 0)
	c.Assert(f.pd.Counter.Created(drivertest.KindShaderModule), qt.Equals, 2)

	cb, err := f.swapchain.CommandBuffer(2)
	c.Assert(err, qt.IsNil)
	recorded := cb.(*drivertest.CommandBuffer)
	c.Assert(recorded.Commands, qt.DeepEquals, []string{
		"begin",
		"beginRenderPass 800x600",
		"bindPipeline",
		"draw 3 1 0 0",
		"endRenderPass",
		"end",
	})
	c.Assert(recorded.Clear, qt.Equals, renderer.DefaultClearColor)

	_, err = f.swapchain.CommandBuffer(3)
	c.Assert(err, qt.Not(qt.IsNil))

	c.Assert(f.swapchain.Build(), qt.ErrorMatches, "swapchain is already built")
}

func TestSwapchainConcurrentSharing(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.Families = []driver.QueueFamily{
		{Index: 0, QueueCount: 1, Graphics: true},
		{Index: 1, QueueCount: 1},
	}
	pd.PresentFamilies = map[uint32]bool{1: true}
	f := newFixture(c, pd)

	c.Assert(f.swapchain.Build(), qt.IsNil)
	c.Assert(f.device().Swapchains[0].SharingFamilies, qt.DeepEquals, []uint32{0, 1})
}

func TestSwapchainExtentFromFramebuffer(t *testing.T) {
	c := qt.New(t)
	pd := drivertest.NewPhysicalDevice("gpu")
	pd.Capabilities.CurrentExtent = driver.Extent2D{Width: driver.UndefinedExtent, Height: driver.UndefinedExtent}
	pd.Capabilities.MinImageExtent = driver.Extent2D{Width: 100, Height: 100}
	f := newFixture(c, pd)
	f.width, f.height = 50, 5000

	c.Assert(f.swapchain.Build(), qt.IsNil)
	c.Assert(f.swapchain.Extent(), qt.Equals, driver.Extent2D{Width: 100, Height: 4096})
}

func TestSwapchainDoubleTeardown(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, drivertest.NewPhysicalDevice("gpu"))

	c.Assert(f.swapchain.Build(), qt.IsNil)
	f.swapchain.Teardown()
	f.swapchain.Teardown()

	c.Assert(f.swapchain.Built(), qt.Equals, false)
	images, views, framebuffers, buffers := f.swapchain.Counts()
	c.Assert([]int{images, views, framebuffers, buffers}, qt.DeepEquals, []int{0, 0, 0, 0})
	assertNothingLive(c, f.pd.Counter)
	c.Assert(f.pd.Counter.Live(drivertest.KindDevice), qt.Equals, 1)
}

func TestSwapchainRebuild(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, drivertest.NewPhysicalDevice("gpu"))
	c.Assert(f.swapchain.Build(), qt.IsNil)

	f.pd.Capabilities.CurrentExtent = driver.Extent2D{Width: 1024, Height: 768}
	waits := f.device().WaitIdles()
	c.Assert(f.swapchain.Rebuild(), qt.IsNil)

	c.Assert(f.device().WaitIdles(), qt.Equals, waits+1)
	c.Assert(f.swapchain.Extent(), qt.Equals, driver.Extent2D{Width: 1024, Height: 768})
	images, views, framebuffers, buffers := f.swapchain.Counts()
	c.Assert(views, qt.Equals, images)
	c.Assert(framebuffers, qt.Equals, images)
	c.Assert(buffers, qt.Equals, images)

	c.Assert(f.pd.Counter.Live(drivertest.KindSwapchain), qt.Equals, 1)
	c.Assert(f.pd.Counter.Live(drivertest.KindFramebuffer), qt.Equals, images)
	c.Assert(f.pd.Counter.Live(drivertest.KindCommandBuffer), qt.Equals, images)
	c.Assert(f.pd.Counter.Created(drivertest.KindSwapchain), qt.Equals, 2)
	c.Assert(f.pd.Counter.DoubleDestroys(), qt.Equals, 0)
}

func TestSwapchainBuildFailureCleansUp(t *testing.T) {
	for _, kind := range swapchainKinds {
		kind := kind
		qt.New(t).Run(kind, func(c *qt.C) {
			f := newFixture(c, drivertest.NewPhysicalDevice("gpu"))
			injected := errors.New("injected " + kind)
			f.device().Fail[kind] = injected

			err := f.swapchain.Build()
			c.Assert(errors.Cause(err), qt.Equals, injected)
			c.Assert(f.swapchain.Built(), qt.Equals, false)
			assertNothingLive(c, f.pd.Counter)
		})
	}
}

func TestSwapchainHiddenSurface(t *testing.T) {
	c := qt.New(t)
	f := newFixture(c, drivertest.NewPhysicalDevice("gpu"))
	c.Assert(f.swapchain.Build(), qt.IsNil)

	f.pd.Capabilities.CurrentExtent = driver.Extent2D{}
	c.Assert(f.swapchain.Rebuild(), qt.Equals, renderer.ErrSurfaceHidden)
	c.Assert(f.swapchain.Built(), qt.Equals, false)
	assertNothingLive(c, f.pd.Counter)
}
