// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package platform

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrorSink receives errors reported by a window system.
type ErrorSink interface {
	ReportError(code int, description string)
}

// Error is a window system error.
type Error struct {
	Code        int
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("window system error %d: %s", e.Code, e.Description)
}

// NewErrorTracker creates an ErrorTracker that also logs every
// report at warning level when logger is not nil.
func NewErrorTracker(logger log.FieldLogger) *ErrorTracker {
	return &ErrorTracker{logger: logger}
}

// ErrorTracker is an ErrorSink remembering the last reported error.
// Each window system owns its own tracker, it is safe for concurrent use.
type ErrorTracker struct {
	logger log.FieldLogger

	mutex sync.Mutex
	last  *Error
}

// ReportError implements ErrorSink
func (t *ErrorTracker) ReportError(code int, description string) {
	t.mutex.Lock()
	t.last = &Error{Code: code, Description: description}
	t.mutex.Unlock()

	if t.logger != nil {
		t.logger.WithField("code", code).Warn(description)
	}
}

// LastError returns the last reported error, nil when there is none
func (t *ErrorTracker) LastError() *Error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.last
}

// Clear forgets the last reported error
func (t *ErrorTracker) Clear() {
	t.mutex.Lock()
	t.last = nil
	t.mutex.Unlock()
}

// Annotate attaches the last reported error to err and clears it.
// err is returned unchanged when nothing was reported.
func (t *ErrorTracker) Annotate(err error) error {
	if err == nil {
		return nil
	}
	t.mutex.Lock()
	last := t.last
	t.last = nil
	t.mutex.Unlock()

	if last == nil {
		return err
	}
	return errors.Wrap(err, last.Error())
}
