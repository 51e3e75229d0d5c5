package circuit

import (
	"bytes"
	"context"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/spymsg/spymsg-go/protocol/registry"
)

// Backend modes.
const (
	// ModeSolve checks that the constraint system is satisfied.
	ModeSolve = "solve"
	// ModeGroth16 produces and verifies a Groth16 proof and attaches
	// it to the transition.
	ModeGroth16 = "groth16"
)

// Backend is a registry.ProofBackend built on PayloadCircuit.
// The circuit is compiled once, when the Backend is created.
type Backend struct {
	mode string
	ccs  constraint.ConstraintSystem
	pk   groth16.ProvingKey
	vk   groth16.VerifyingKey
}

var _ registry.ProofBackend = (*Backend)(nil)

// NewBackend compiles PayloadCircuit and, in ModeGroth16, runs the
// Groth16 setup for it. An empty mode means ModeSolve.
func NewBackend(mode string) (*Backend, error) {
	if mode == "" {
		mode = ModeSolve
	}
	if mode != ModeSolve && mode != ModeGroth16 {
		return nil, fmt.Errorf("[circuit] Unknown backend mode %q", mode)
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &PayloadCircuit{})
	if err != nil {
		return nil, err
	}
	b := &Backend{mode: mode, ccs: ccs}
	if mode == ModeGroth16 {
		b.pk, b.vk, err = groth16.Setup(ccs)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Mode returns the mode of b.
func (b *Backend) Mode() string {
	return b.mode
}

// Constraints returns the number of constraints of the compiled circuit.
func (b *Backend) Constraints() int {
	return b.ccs.GetNbConstraints()
}

// Prove checks t.Payload against the circuit with Valid set to 1.
// In ModeGroth16 the serialized proof is stored in t.Attestation.
func (b *Backend) Prove(ctx context.Context, t *registry.Transition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w, err := frontend.NewWitness(&PayloadCircuit{
		Payload: t.Payload.Big(),
		Valid:   1,
	}, ecc.BN254.ScalarField())
	if err != nil {
		return err
	}
	if b.mode == ModeSolve {
		return b.ccs.IsSolved(w)
	}

	proof, err := groth16.Prove(b.ccs, b.pk, w)
	if err != nil {
		return err
	}
	public, err := w.Public()
	if err != nil {
		return err
	}
	if err := groth16.Verify(proof, b.vk, public); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return err
	}
	t.Attestation = buf.Bytes()
	return nil
}
