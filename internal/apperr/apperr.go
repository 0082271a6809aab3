// Package apperr defines the error taxonomy surfaced by the message service.
package apperr

import (
	"errors"
	"fmt"
)

// ErrContentRejected is returned when a message value matches the XSS
// denylist. It deliberately carries no field detail.
var ErrContentRejected = errors.New("content rejected")

// NotFoundError reports a target or message that does not exist, or exists
// but is not visible to the actor. The two cases share one shape so callers
// cannot probe for the existence of entities they cannot see.
type NotFoundError struct {
	Field string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: unknown identifier", e.Field)
}

// NotFound builds a NotFoundError naming the offending field
// ("id", "group", "company", "pkey", "node").
func NotFound(field string) error {
	return &NotFoundError{Field: field}
}

// InvalidTargetError reports an unknown target-type value or a required
// target that is missing.
type InvalidTargetError struct {
	Field string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("%s: invalid target", e.Field)
}

// InvalidTarget builds an InvalidTargetError naming the offending field.
func InvalidTarget(field string) error {
	return &InvalidTargetError{Field: field}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
