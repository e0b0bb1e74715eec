// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core_test

import (
	"context"
	"testing"

	"github.com/devblok/trigon/core"
	qt "github.com/frankban/quicktest"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeRenderer struct {
	initErr   error
	cfg       core.RendererConfig
	frames    int
	maxFrames int
	failFrame int
	shutdowns int
	cancelAt  int
	cancel    context.CancelFunc
}

func (r *fakeRenderer) Initialize(cfg core.RendererConfig) error {
	r.cfg = cfg
	return r.initErr
}

func (r *fakeRenderer) HandleInput() bool {
	return r.maxFrames == 0 || r.frames < r.maxFrames
}

func (r *fakeRenderer) RenderFrame() bool {
	r.frames++
	if r.cancel != nil && r.frames == r.cancelAt {
		r.cancel()
	}
	return r.frames != r.failFrame
}

func (r *fakeRenderer) Run() {
	core.Loop(context.Background(), r, nil)
}

func (r *fakeRenderer) Shutdown() {
	r.shutdowns++
}

func (r *fakeRenderer) GetConfig() core.RendererConfig {
	return r.cfg
}

func (r *fakeRenderer) EnumerateDisplayModes() []core.DisplayMode {
	return []core.DisplayMode{}
}

func TestLoopStopsOnClose(t *testing.T) {
	c := qt.New(t)
	r := &fakeRenderer{maxFrames: 5}
	r.Run()
	c.Assert(r.frames, qt.Equals, 5)
}

func TestLoopStopsOnFailedFrame(t *testing.T) {
	c := qt.New(t)
	r := &fakeRenderer{maxFrames: 10, failFrame: 3}
	r.Run()
	c.Assert(r.frames, qt.Equals, 3)
}

func TestLoopStopsOnCancel(t *testing.T) {
	c := qt.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &fakeRenderer{cancelAt: 2, cancel: cancel}

	core.Loop(ctx, r, nil)
	c.Assert(r.frames, qt.Equals, 2)
}

func TestLoopWithLimiter(t *testing.T) {
	c := qt.New(t)
	r := &fakeRenderer{maxFrames: 3}
	core.Loop(context.Background(), r, core.NewFrameRateLimiter(1000))
	c.Assert(r.frames, qt.Equals, 3)
}

func TestBackgroundRenderer(t *testing.T) {
	c := qt.New(t)
	logger, _ := test.NewNullLogger()
	r := &fakeRenderer{maxFrames: 4}
	b := core.NewBackgroundRenderer(r, logger)

	cfg := core.RendererConfig{WindowName: "background", TargetFrameRate: 500}
	b.Start(context.Background(), cfg)
	c.Assert(b.Join(), qt.IsNil)
	c.Assert(r.frames, qt.Equals, 4)
	c.Assert(r.shutdowns, qt.Equals, 1)
	c.Assert(r.GetConfig(), qt.DeepEquals, cfg)

	c.Assert(b.Join(), qt.IsNil)
}

func TestBackgroundRendererInitFailure(t *testing.T) {
	c := qt.New(t)
	logger, hook := test.NewNullLogger()
	initErr := errors.New("no device")
	r := &fakeRenderer{initErr: initErr}
	b := core.NewBackgroundRenderer(r, logger)

	b.Start(context.Background(), core.RendererConfig{})
	c.Assert(b.Join(), qt.Equals, initErr)
	c.Assert(r.frames, qt.Equals, 0)
	c.Assert(r.shutdowns, qt.Equals, 1)
	c.Assert(hook.LastEntry().Message, qt.Equals, "Renderer initialisation failed")
}
