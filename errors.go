///////////////////////////////////////////////////////////////////////////////
// Copyright © 2026 Stratus Compute                                          //
//                                                                           //
// Use of this source code is governed by a license that can be found in the //
// LICENSE file                                                              //
///////////////////////////////////////////////////////////////////////////////

package gpucrypt

import (
	"fmt"

	"github.com/pkg/errors"
)

// errors.go defines the error taxonomy for the package. Validation errors
// are detected synchronously before any device work is dispatched;
// allocation errors come out of the env wrapped with context. Internal
// invariant violations (impossible round counts and the like) are
// programmer error and panic instead, see the kernel files.

// ValidationError reports malformed input shape: wrong key length,
// missing IV, non-block-aligned data, hash size out of range.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid input: %s", e.Op, e.Reason)
}

func validationErrorf(op, format string, args ...interface{}) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err (or its cause chain) is a
// ValidationError, i.e. the input never reached the device.
func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}
