// Package circuit expresses the payload flag rules as a gnark circuit
// over the BN254 scalar field, and provides a registry.ProofBackend that
// checks every transition's payload against it.
package circuit

import (
	"github.com/consensys/gnark/frontend"

	"github.com/spymsg/spymsg-go/protocol"
)

// PayloadCircuit constrains Valid to equal the conjunction of the three
// flag rules over the low protocol.FlagBits bits of Payload. Payload is
// a secret input; only the verdict is public.
type PayloadCircuit struct {
	Payload frontend.Variable
	Valid   frontend.Variable `gnark:",public"`
}

// Define declares the circuit constraints.
func (c *PayloadCircuit) Define(api frontend.API) error {
	bits := api.ToBinary(c.Payload)
	b := bits[:protocol.FlagBits]

	not := func(v frontend.Variable) frontend.Variable {
		return api.Sub(1, v)
	}
	implies := func(p, q frontend.Variable) frontend.Variable {
		return api.Or(not(p), q)
	}

	anyAfterOne := api.Or(api.Or(b[1], b[2]), api.Or(api.Or(b[3], b[4]), b[5]))
	ruleA := implies(b[0], not(anyAfterOne))
	ruleB := implies(b[1], b[2])
	ruleC := implies(b[3], not(api.Or(b[4], b[5])))

	api.AssertIsEqual(c.Valid, api.And(api.And(ruleA, ruleB), ruleC))
	return nil
}
