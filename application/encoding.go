// Defines methods/functions to encode/decode messages between client
// and server. Currently this module supports JSON marshal/unmarshal only.

package application

import (
	"encoding/json"

	"github.com/spymsg/spymsg-go/protocol"
)

// MarshalRequest returns a JSON encoding of the client's request.
func MarshalRequest(reqType int, request interface{}) ([]byte, error) {
	return json.Marshal(&protocol.Request{
		Type:    reqType,
		Request: request,
	})
}

// newRequest allocates the request message of type t,
// or returns nil for an unknown type.
func newRequest(t int) interface{} {
	switch t {
	case protocol.InputMsgType:
		return new(protocol.InputMsgRequest)
	case protocol.CheckMsgType:
		return new(protocol.CheckMsgRequest)
	case protocol.CommitmentType:
		return new(protocol.CommitmentRequest)
	case protocol.WitnessType:
		return new(protocol.WitnessRequest)
	case protocol.EventsType:
		return new(protocol.EventsRequest)
	}
	return nil
}

// UnmarshalRequest parses a JSON-encoded request msg and
// creates the corresponding protocol.Request, which will be handled
// by the server. Unknown request types are malformed.
func UnmarshalRequest(msg []byte) (*protocol.Request, error) {
	var content json.RawMessage
	req := protocol.Request{
		Request: &content,
	}
	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, err
	}
	request := newRequest(req.Type)
	if request == nil {
		return nil, protocol.ErrMalformedMessage
	}
	if len(content) > 0 && string(content) != "null" {
		if err := json.Unmarshal(content, request); err != nil {
			return nil, err
		}
	}
	req.Request = request
	return &req, nil
}

// MarshalResponse returns a JSON encoding of the server's response.
func MarshalResponse(response *protocol.Response) ([]byte, error) {
	return json.Marshal(response)
}

// newResult allocates the result message of a response to a request
// of type t.
func newResult(t int) protocol.ResultResponse {
	switch t {
	case protocol.InputMsgType:
		return new(protocol.InputMsgResult)
	case protocol.CheckMsgType:
		return new(protocol.CheckMsgResult)
	case protocol.CommitmentType:
		return new(protocol.Commitment)
	case protocol.WitnessType:
		return new(protocol.Witness)
	case protocol.EventsType:
		return new(protocol.EventList)
	}
	return nil
}

// UnmarshalResponse decodes the given message into a protocol.Response
// according to the given request type t. The request types are integer
// constants defined in the protocol package. A message that cannot be
// decoded yields a response with ErrMalformedMessage.
func UnmarshalResponse(t int, msg []byte) *protocol.Response {
	type Response struct {
		Error          protocol.ErrorCode
		ResultResponse json.RawMessage
	}
	var res Response
	if err := json.Unmarshal(msg, &res); err != nil {
		return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
	}

	// ResultResponse is omitted for error responses
	if res.Error != protocol.ReqSuccess {
		if !res.Error.Known() {
			return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
		}
		return protocol.NewErrorResponse(res.Error)
	}

	result := newResult(t)
	if result == nil || res.ResultResponse == nil {
		return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
	}
	if err := json.Unmarshal(res.ResultResponse, result); err != nil {
		return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
	}
	return &protocol.Response{
		Error:          res.Error,
		ResultResponse: result,
	}
}

func malformedClientMsg(err error) *protocol.Response {
	if code, ok := err.(protocol.ErrorCode); ok {
		return protocol.NewErrorResponse(code)
	}
	return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
}
