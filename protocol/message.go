// Defines the message format of the registry protocol
// and constructors for the response messages for each
// request type.

package protocol

import (
	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/merkletree"
)

// The types of requests clients send to a registry server.
const (
	InputMsgType = iota
	CheckMsgType
	CommitmentType
	WitnessType
	EventsType
)

// A Request message defines the data a client must send to a
// registry server for a particular request.
type Request struct {
	Type    int
	Request interface{}
}

// An InputMsgRequest asks the server to replace the payload of the
// record at Index. Record is the record as it is currently committed,
// Proof its membership proof, and Commitment the commitment the proof
// was built against. The request is rejected with ErrStaleCommitment
// if the registry has moved on since Commitment was read.
//
// The response to a successful request is an InputMsgResult.
type InputMsgRequest struct {
	Payload    crypto.Field                `json:"payload"`
	Record     merkletree.LeafRecord       `json:"record"`
	Index      int                         `json:"index"`
	Proof      *merkletree.MembershipProof `json:"proof"`
	Commitment Commitment                  `json:"commitment"`
}

// A CheckMsgRequest asks the server whether Payload satisfies the
// flag rules. It never changes the registry.
//
// The response to a successful request is a CheckMsgResult.
type CheckMsgRequest struct {
	Payload crypto.Field `json:"payload"`
}

// A CommitmentRequest asks for the registry's current commitment.
// The response is a Commitment.
type CommitmentRequest struct{}

// A WitnessRequest asks for the record stored at Index together with
// its membership proof. The response is a Witness.
type WitnessRequest struct {
	Index int `json:"index"`
}

// An EventsRequest asks for the input-msg events with a sequence
// number strictly greater than Since. The response is an EventList.
type EventsRequest struct {
	Since uint64 `json:"since"`
}

// A Response message indicates the result of a client request
// with an appropriate error code, and carries the result payload
// of a successful request.
type Response struct {
	Error          ErrorCode
	ResultResponse `json:",omitempty"`
}

// A ResultResponse is the request-specific part of a Response.
type ResultResponse interface{}

// An InputMsgResult carries the commitment after an accepted update
// and the event that announced it.
type InputMsgResult struct {
	Commitment Commitment `json:"commitment"`
	Event      *Event     `json:"event"`
}

// A CheckMsgResult carries the outcome of each flag rule.
type CheckMsgResult struct {
	Valid bool       `json:"valid"`
	Rules RuleReport `json:"rules"`
}

// A Witness carries what a client needs to build an InputMsgRequest:
// the record at Index, its membership proof and the commitment the
// proof verifies against.
type Witness struct {
	Index      int                         `json:"index"`
	Record     merkletree.LeafRecord       `json:"record"`
	Proof      *merkletree.MembershipProof `json:"proof"`
	Commitment Commitment                  `json:"commitment"`
}

// An EventList carries events in increasing sequence order.
type EventList struct {
	Events []*Event `json:"events"`
}

var _ ResultResponse = (*InputMsgResult)(nil)
var _ ResultResponse = (*CheckMsgResult)(nil)
var _ ResultResponse = (*Commitment)(nil)
var _ ResultResponse = (*Witness)(nil)
var _ ResultResponse = (*EventList)(nil)

// NewErrorResponse creates a new response message indicating the error
// that occurred while the server was processing a client request.
func NewErrorResponse(e ErrorCode) *Response {
	return &Response{Error: e}
}

// NewInputMsgResponse creates the response message a server sends
// upon an accepted InputMsgRequest.
func NewInputMsgResponse(c Commitment, ev *Event) *Response {
	return &Response{
		Error: ReqSuccess,
		ResultResponse: &InputMsgResult{
			Commitment: c,
			Event:      ev,
		},
	}
}

// NewCheckMsgResponse creates the response message a server sends
// upon a CheckMsgRequest. A payload that fails the rules is still a
// successful request.
func NewCheckMsgResponse(report RuleReport) *Response {
	return &Response{
		Error: ReqSuccess,
		ResultResponse: &CheckMsgResult{
			Valid: report.Valid(),
			Rules: report,
		},
	}
}

// NewCommitmentResponse creates the response message a server sends
// upon a CommitmentRequest.
func NewCommitmentResponse(c Commitment) *Response {
	return &Response{
		Error:          ReqSuccess,
		ResultResponse: &c,
	}
}

// NewWitnessResponse creates the response message a server sends
// upon a WitnessRequest.
func NewWitnessResponse(w *Witness) *Response {
	return &Response{
		Error:          ReqSuccess,
		ResultResponse: w,
	}
}

// NewEventsResponse creates the response message a server sends
// upon an EventsRequest.
func NewEventsResponse(events []*Event) *Response {
	if events == nil {
		events = []*Event{}
	}
	return &Response{
		Error:          ReqSuccess,
		ResultResponse: &EventList{Events: events},
	}
}

// Validate returns the error carried by msg, or ErrMalformedMessage
// if a successful response is missing its result or an event.
func (msg *Response) Validate() error {
	if msg.Error != ReqSuccess {
		return msg.Error
	}
	switch r := msg.ResultResponse.(type) {
	case *Witness:
		if r.Proof == nil {
			return ErrMalformedMessage
		}
	case *InputMsgResult:
		if r.Event == nil {
			return ErrMalformedMessage
		}
	case *EventList:
		for _, ev := range r.Events {
			if ev == nil {
				return ErrMalformedMessage
			}
		}
	case *CheckMsgResult, *Commitment:
	default:
		return ErrMalformedMessage
	}
	return nil
}
