package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrDuplicateMessage  = errors.New("duplicate inbound message")
	ErrEmptyReply        = errors.New("collaborator returned an empty reply")
	ErrNoProvider        = errors.New("no AI provider configured")
	ErrMediaNotImage     = errors.New("media is not an image")
	ErrMediaTooLarge     = errors.New("media exceeds size limit")
	ErrUnsupportedMedium = errors.New("unsupported media reference")
)

// Collaborator names used in CollaboratorError.Service.
const (
	ServiceCompletion = "completion"
	ServiceVision     = "vision"
	ServiceDelivery   = "delivery"
)

// CollaboratorError reports a failure of an external service (network, auth, quota).
// It is always recovered by the caller and turned into a user-readable reply.
type CollaboratorError struct {
	Service string
	Err     error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s service: %v", e.Service, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// NewCompletionError wraps err as a completion collaborator failure.
func NewCompletionError(err error) *CollaboratorError {
	return &CollaboratorError{Service: ServiceCompletion, Err: err}
}

// NewVisionError wraps err as a vision collaborator failure.
func NewVisionError(err error) *CollaboratorError {
	return &CollaboratorError{Service: ServiceVision, Err: err}
}

// IsCollaborator reports whether err came from the named external service.
func IsCollaborator(err error, service string) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce) && ce.Service == service
}
