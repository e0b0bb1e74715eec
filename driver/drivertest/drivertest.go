// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package drivertest is an in-memory driver for tests. It creates no GPU
// objects, it keeps count of what was created and destroyed instead, and
// lets tests script the results of acquire, submit and present.
package drivertest

import (
	"sync"

	"github.com/pkg/errors"
)

// Kinds of objects the Counter keeps track of
const (
	KindInstance       = "instance"
	KindSurface        = "surface"
	KindDevice         = "device"
	KindSwapchain      = "swapchain"
	KindImageView      = "imageview"
	KindRenderPass     = "renderpass"
	KindShaderModule   = "shadermodule"
	KindPipelineLayout = "pipelinelayout"
	KindPipeline       = "pipeline"
	KindFramebuffer    = "framebuffer"
	KindCommandPool    = "commandpool"
	KindCommandBuffer  = "commandbuffer"
	KindSemaphore      = "semaphore"
)

// ErrInjected is returned by calls a test asked to fail
var ErrInjected = errors.New("drivertest: injected failure")

// Counter tracks created and live objects per kind
type Counter struct {
	mutex         sync.Mutex
	created       map[string]int
	live          map[string]int
	doubleDestroy int
	doubleSignal  int
}

// NewCounter returns an empty Counter
func NewCounter() *Counter {
	return &Counter{
		created: map[string]int{},
		live:    map[string]int{},
	}
}

func (c *Counter) create(kind string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.created[kind]++
	c.live[kind]++
}

func (c *Counter) destroy(kind string, destroyed *bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if *destroyed {
		c.doubleDestroy++
		return
	}
	*destroyed = true
	c.live[kind]--
}

// Created is how many objects of kind were ever created
func (c *Counter) Created(kind string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.created[kind]
}

// Live is how many objects of kind exist right now
func (c *Counter) Live(kind string) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.live[kind]
}

// TotalLive is how many objects of any kind exist right now
func (c *Counter) TotalLive() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	total := 0
	for _, n := range c.live {
		total += n
	}
	return total
}

// DoubleDestroys is how many times an already destroyed object was destroyed again
func (c *Counter) DoubleDestroys() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.doubleDestroy
}

// signal marks a semaphore signaled, signaling one that is
// still pending is counted as a double signal
func (c *Counter) signal(pending *bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if *pending {
		c.doubleSignal++
	}
	*pending = true
}

func (c *Counter) wait(pending *bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	*pending = false
}

// DoubleSignals is how many times a semaphore was signaled
// again before anything waited on it
func (c *Counter) DoubleSignals() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.doubleSignal
}

// resource is embedded by every fake object that has to be destroyed
type resource struct {
	counter   *Counter
	kind      string
	destroyed bool
}

func newResource(counter *Counter, kind string) resource {
	counter.create(kind)
	return resource{counter: counter, kind: kind}
}

// Destroy implements interface
func (r *resource) Destroy() {
	r.counter.destroy(r.kind, &r.destroyed)
}

// Destroyed reports whether Destroy was called
func (r *resource) Destroyed() bool {
	r.counter.mutex.Lock()
	defer r.counter.mutex.Unlock()
	return r.destroyed
}

// script is a queue of results handed out one per call, nil once exhausted
type script struct {
	mutex   sync.Mutex
	results []error
}

func (s *script) push(errs ...error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.results = append(s.results, errs...)
}

func (s *script) next() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.results) == 0 {
		return nil
	}
	err := s.results[0]
	s.results = s.results[1:]
	return err
}
