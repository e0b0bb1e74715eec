// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"context"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Loop runs r until a close is requested, a frame fails or ctx is done.
// ctx is only checked between frames. When limiter is not nil
// the loop sleeps between frames to keep its pace.
func Loop(ctx context.Context, r Renderer, limiter *FrameRateLimiter) {
	for ctx.Err() == nil && r.HandleInput() {
		if !r.RenderFrame() {
			return
		}
		if limiter != nil {
			if wait := limiter.Service(); wait > 0 {
				time.Sleep(wait)
			}
		}
	}
}

// NewBackgroundRenderer creates a BackgroundRenderer driving r.
func NewBackgroundRenderer(r Renderer, logger log.FieldLogger) *BackgroundRenderer {
	return &BackgroundRenderer{
		renderer: r,
		logger:   logger,
	}
}

// BackgroundRenderer hosts a Renderer on its own goroutine, locked to one
// OS thread for its whole life. Only Start and Join may be called from
// other goroutines, the renderer itself must not be touched while running.
type BackgroundRenderer struct {
	renderer Renderer
	logger   log.FieldLogger

	group *errgroup.Group
}

// Start initialises and runs the renderer in the background. The renderer
// is shut down on the same thread once the loop exits. Calling Start
// again before Join is a no-op.
func (b *BackgroundRenderer) Start(ctx context.Context, cfg RendererConfig) {
	if b.group != nil {
		return
	}
	b.group = &errgroup.Group{}
	b.group.Go(func() error {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer b.renderer.Shutdown()

		if err := b.renderer.Initialize(cfg); err != nil {
			b.logger.WithError(err).Error("Renderer initialisation failed")
			return err
		}

		var limiter *FrameRateLimiter
		if cfg.TargetFrameRate > 0 {
			limiter = NewFrameRateLimiter(cfg.TargetFrameRate)
		}

		b.logger.Debug("Render loop started")
		Loop(ctx, b.renderer, limiter)
		b.logger.Debug("Render loop exited")
		return nil
	})
}

// Join waits for the background renderer to finish and returns its
// initialisation error, if any. It is safe to call without Start.
func (b *BackgroundRenderer) Join() error {
	if b.group == nil {
		return nil
	}
	err := b.group.Wait()
	b.group = nil
	return err
}
