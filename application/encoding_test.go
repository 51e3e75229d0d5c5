package application

import (
	"encoding/json"
	"testing"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	"github.com/spymsg/spymsg-go/merkletree"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/protocol/directory"
)

func TestUnmarshalErrorResponse(t *testing.T) {
	errResponse := protocol.NewErrorResponse(protocol.ErrStaleCommitment)
	msg, err := json.Marshal(errResponse)
	if err != nil {
		t.Fatal(err)
	}
	res := UnmarshalResponse(protocol.InputMsgType, msg)
	if res.Error != protocol.ErrStaleCommitment {
		t.Error("Expect error", protocol.ErrStaleCommitment,
			"got", res.Error)
	}
}

func TestUnmarshalMalformedErrorResponse(t *testing.T) {
	for _, msg := range []string{
		`{"Error":7}`,
		`{"Error":100}`,
		`{"Error":100,"ResultResponse":"not a commitment"}`,
		`not json`,
	} {
		res := UnmarshalResponse(protocol.CommitmentType, []byte(msg))
		if res.Error != protocol.ErrMalformedMessage {
			t.Errorf("Expect %v for %s, got %v",
				protocol.ErrMalformedMessage, msg, res.Error)
		}
	}
}

func TestUnmarshalNullEvent(t *testing.T) {
	msg := `{"Error":100,"ResultResponse":{"events":[null]}}`
	res := UnmarshalResponse(protocol.EventsType, []byte(msg))
	if err := res.Validate(); err != protocol.ErrMalformedMessage {
		t.Fatal("Expect a null event to be malformed, got", err)
	}
}

func TestUnmarshalRequest(t *testing.T) {
	payload := crypto.FieldFromUint64(0b011000)
	msg, err := MarshalRequest(protocol.CheckMsgType,
		&protocol.CheckMsgRequest{Payload: payload})
	if err != nil {
		t.Fatal(err)
	}
	req, err := UnmarshalRequest(msg)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := req.Request.(*protocol.CheckMsgRequest)
	if !ok || got.Payload != payload {
		t.Fatal("Unexpected request", "got", req.Request)
	}

	if _, err := UnmarshalRequest([]byte(`{"Type":42,"Request":{}}`)); err != protocol.ErrMalformedMessage {
		t.Error("Expect", protocol.ErrMalformedMessage, "got", err)
	}
	if _, err := UnmarshalRequest([]byte(`{"Type":3,"Request":{"index":"x"}}`)); err == nil {
		t.Error("Expect a decoding error")
	}
}

func TestUnmarshalSampleMessage(t *testing.T) {
	d := directory.NewTestDirectory(t)
	res, err := d.Witness(&protocol.WitnessRequest{Index: 2})
	if err != nil {
		t.Fatal(err)
	}
	msg, err := MarshalResponse(res)
	if err != nil {
		t.Fatal(err)
	}
	response := UnmarshalResponse(protocol.WitnessType, msg)
	if err := response.Validate(); err != nil {
		t.Fatal(err)
	}
	w := response.ResultResponse.(*protocol.Witness)
	if w.Commitment != d.Commitment() {
		t.Error("Cannot unmarshal the commitment properly")
	}
	h := poseidon.New()
	if !merkletree.Verify(h, w.Record.Hash(h), w.Proof, d.Commitment().Root) {
		t.Error("Cannot unmarshal the membership proof properly")
	}
}
