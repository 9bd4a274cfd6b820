package inviteflow

import (
	"errors"
	"fmt"
)

// ErrEmailAlreadyInUse is returned by SignUp when an identity already exists
// for the email. The flow turns it into a "log in instead" message.
var ErrEmailAlreadyInUse = errors.New("email already in use")

// VerificationError means the backend rejected the invitation token
// (expired, malformed, unknown). Message is human-readable and shown to the
// invitee verbatim.
type VerificationError struct {
	StatusCode int
	Message    string
}

func (e *VerificationError) Error() string {
	return e.Message
}

// TimeoutError means a backend call did not complete within the attempt
// budget. Distinct from VerificationError: the token may still be valid.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: backend did not respond in time", e.Op)
}
