// Defines constants representing the types
// of errors that the server may return to a client.

package protocol

import (
	"errors"

	"github.com/spymsg/spymsg-go/merkletree"
)

// An ErrorCode is a message type that indicates the result of a
// request. ErrorCode implements error, so every code other than
// ReqSuccess can be returned and compared as an error.
type ErrorCode int

// Constants representing the results of a request.
// ReqSuccess is the only code that indicates success.
// The Check codes are the results of the consistency checks a client
// or auditor runs on server responses; only CheckPassed means success.
const (
	ReqSuccess ErrorCode = iota + 100
	ErrInvalidPayload
	ErrProofMismatch
	ErrStaleCommitment
	ErrIndexOutOfRange
	ErrNotInitialized
	ErrAlreadyInitialized
	ErrMalformedMessage
	ErrInternal

	CheckPassed
	CheckBadWitness
	CheckBadCommitment
	CheckRolledBack
	CheckBadEvent
)

var (
	errorMessages = map[ErrorCode]string{
		ReqSuccess:            "[spymsg] Successful request",
		ErrInvalidPayload:     "[spymsg] Payload violates the flag rules",
		ErrProofMismatch:      "[spymsg] Membership proof does not match the commitment",
		ErrStaleCommitment:    "[spymsg] Commitment changed since the proof was built",
		ErrIndexOutOfRange:    "[spymsg] Leaf index out of range",
		ErrNotInitialized:     "[spymsg] Registry state is not initialized",
		ErrAlreadyInitialized: "[spymsg] Registry state was already initialized",
		ErrMalformedMessage:   "[spymsg] Malformed message",
		ErrInternal:           "[spymsg] Internal server error",

		CheckPassed:        "[spymsg] Consistency checks passed",
		CheckBadWitness:    "[spymsg] Witness does not verify against its commitment",
		CheckBadCommitment: "[spymsg] Commitment does not match the expected update",
		CheckRolledBack:    "[spymsg] Commitment is older than the last verified one",
		CheckBadEvent:      "[spymsg] Event does not extend the verified history",
	}
)

// Error returns the message of e. Unknown codes are reported as
// internal errors.
func (e ErrorCode) Error() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}
	return errorMessages[ErrInternal]
}

// Known reports whether e is one of the codes defined above.
func (e ErrorCode) Known() bool {
	_, ok := errorMessages[e]
	return ok
}

// ToErrorCode maps err to the ErrorCode sent back to a client.
// A nil error maps to ReqSuccess and unknown errors to ErrInternal.
func ToErrorCode(err error) ErrorCode {
	var code ErrorCode
	switch {
	case err == nil:
		return ReqSuccess
	case errors.As(err, &code):
		return code
	case errors.Is(err, merkletree.ErrIndexOutOfRange):
		return ErrIndexOutOfRange
	default:
		return ErrInternal
	}
}
