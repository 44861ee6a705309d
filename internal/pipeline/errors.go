package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when the cached profile finds no stored
// credential for the event's host. No network calls are made in that case.
var ErrMissingCredential = errors.New("no cached credential for host")

// AuthError indicates the authorization-code exchange with Zoom failed.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("zoom auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// ResolverError indicates a transport-level failure while fetching the
// recording list or the transcript body. Distinct from an absent transcript.
type ResolverError struct {
	Err error
}

func (e *ResolverError) Error() string { return fmt.Sprintf("resolve transcript: %v", e.Err) }
func (e *ResolverError) Unwrap() error { return e.Err }

// DeliveryError indicates a transport-level failure posting to Slack. A
// provider-reported logical failure (ok:false) is not a DeliveryError.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("slack delivery: %v", e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
