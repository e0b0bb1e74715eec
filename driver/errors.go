// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package driver

import "github.com/pkg/errors"

// Presentation results that call for a swapchain rebuild
var (
	ErrOutOfDate  = errors.New("swapchain is out of date")
	ErrSuboptimal = errors.New("swapchain is suboptimal")
)

// IsStale reports whether err means the swapchain no longer
// matches its surface and needs to be rebuilt.
func IsStale(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrOutOfDate || cause == ErrSuboptimal
}
