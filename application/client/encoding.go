package client

import (
	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/protocol"
)

// CreateInputMsg returns a JSON encoding of req.
func CreateInputMsg(req *protocol.InputMsgRequest) ([]byte, error) {
	return application.MarshalRequest(protocol.InputMsgType, req)
}

// CreateCheckMsg returns a JSON encoding of
// a protocol.CheckMsgRequest for the given payload.
func CreateCheckMsg(payload crypto.Field) ([]byte, error) {
	return application.MarshalRequest(protocol.CheckMsgType,
		&protocol.CheckMsgRequest{
			Payload: payload,
		})
}

// CreateCommitmentMsg returns a JSON encoding of
// a protocol.CommitmentRequest.
func CreateCommitmentMsg() ([]byte, error) {
	return application.MarshalRequest(protocol.CommitmentType,
		&protocol.CommitmentRequest{})
}

// CreateWitnessMsg returns a JSON encoding of
// a protocol.WitnessRequest for the given index.
func CreateWitnessMsg(index int) ([]byte, error) {
	return application.MarshalRequest(protocol.WitnessType,
		&protocol.WitnessRequest{
			Index: index,
		})
}

// CreateEventsMsg returns a JSON encoding of
// a protocol.EventsRequest for the events after since.
func CreateEventsMsg(since uint64) ([]byte, error) {
	return application.MarshalRequest(protocol.EventsType,
		&protocol.EventsRequest{
			Since: since,
		})
}
