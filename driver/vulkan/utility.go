// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"strings"

	"github.com/devblok/trigon/driver"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// safeString null terminates s for the C side, unless it already is.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(sgs []string) []string {
	safe := make([]string, 0, len(sgs))
	for _, s := range sgs {
		safe = append(safe, safeString(s))
	}
	return safe
}

func extensionNames(properties []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(properties))
	for _, ext := range properties {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

// presentationError maps the results of acquire and present calls,
// leaving the stale swapchain results recognisable to callers.
func presentationError(result vk.Result, call string) error {
	switch result {
	case vk.Success:
		return nil
	case vk.ErrorOutOfDate:
		return driver.ErrOutOfDate
	case vk.Suboptimal:
		return driver.ErrSuboptimal
	}
	return errors.Wrap(vk.Error(result), call)
}
