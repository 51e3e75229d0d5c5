package protocol

import (
	"time"

	"github.com/google/uuid"

	"github.com/spymsg/spymsg-go/crypto"
	"github.com/spymsg/spymsg-go/merkletree"
)

// InputMsgEvent is the name of the event emitted for every accepted
// input message.
const InputMsgEvent = "input-msg"

// An Event announces an accepted update. Seq equals the Version of the
// commitment the update produced, so events are totally ordered and
// gap free.
type Event struct {
	ID         uuid.UUID           `json:"id"`
	Name       string              `json:"name"`
	Seq        uint64              `json:"seq"`
	Index      int                 `json:"index"`
	Identity   merkletree.Identity `json:"identity"`
	Payload    crypto.Field        `json:"payload"`
	Commitment Commitment          `json:"commitment"`
	Time       time.Time           `json:"time"`

	// Attestation is the proof of the update produced by the
	// server's proof backend, if it produces one.
	Attestation []byte `json:"attestation,omitempty"`
}

// NewInputMsgEvent returns the event for an update of the record at
// index to r, which produced commitment c.
func NewInputMsgEvent(index int, r merkletree.LeafRecord, c Commitment, now time.Time) *Event {
	return &Event{
		ID:         uuid.New(),
		Name:       InputMsgEvent,
		Seq:        c.Version,
		Index:      index,
		Identity:   r.Identity,
		Payload:    r.Payload,
		Commitment: c,
		Time:       now.UTC(),
	}
}
