package pgcomponent

import "errors"

var (
	// ErrHostCall indicates that a waPC host invocation failed.
	ErrHostCall = errors.New("host call failed")

	// ErrHostResponseInvalid signals that the host returned an invalid or unexpected payload.
	ErrHostResponseInvalid = errors.New("host response is invalid or unexpected")

	// ErrHostError means the host completed the call but reported a failure status.
	ErrHostError = errors.New("host returned an error status")
)

// Host status codes carried in the Status message of every capability response.
const (
	StatusOK       = int32(200)
	StatusPartial  = int32(206)
	StatusBadInput = int32(400)
	StatusMissing  = int32(404)
	StatusError    = int32(500)
)
