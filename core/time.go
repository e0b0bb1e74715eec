// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"time"
)

// NewFrameRateLimiter creates a limiter pacing frames to targetFrameRate
// frames per second. The first call to Service never waits.
func NewFrameRateLimiter(targetFrameRate int) *FrameRateLimiter {
	l := &FrameRateLimiter{now: time.Now}
	l.target = targetFrameRate
	l.checkpoint = l.now().Add(-l.frameLength())
	return l
}

// FrameRateLimiter keeps a steady frame rate by telling the render
// loop how long to wait before the next frame is due.
type FrameRateLimiter struct {
	now func() time.Time

	target     int
	checkpoint time.Time
}

// Reset changes the target frame rate and restarts pacing from now
func (l *FrameRateLimiter) Reset(targetFrameRate int) {
	l.target = targetFrameRate
	l.checkpoint = l.now()
}

// Service returns how long to wait until the next frame is due. When the
// frame is due it advances the checkpoint by one frame, or resyncs it to
// now if the loop fell behind by more than a whole frame.
func (l *FrameRateLimiter) Service() time.Duration {
	frameLength := l.frameLength()
	next := l.checkpoint.Add(frameLength)
	current := l.now()

	if !next.After(current) {
		if !current.Add(-frameLength).Before(next) {
			l.checkpoint = current
		} else {
			l.checkpoint = next
		}
		return 0
	}
	return next.Sub(current)
}

func (l *FrameRateLimiter) frameLength() time.Duration {
	if l.target <= 0 {
		return 0
	}
	return time.Second / time.Duration(l.target)
}
