package registry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/spymsg/spymsg-go/protocol"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	r, tree := NewTestRegistry(t, Config{Metrics: m})
	c := r.Commitment()

	if _, err := r.Apply(context.Background(), NewTestTransition(t, tree, c, 0, 0b000011)); err != protocol.ErrInvalidPayload {
		t.Fatal(err)
	}
	if _, err := r.Apply(context.Background(), NewTestTransition(t, tree, c, 0, 0b000001)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Apply(context.Background(), NewTestTransition(t, tree, c, 1, 0b000001)); err != protocol.ErrStaleCommitment {
		t.Fatal(err)
	}

	for label, want := range map[string]float64{
		"committed":        1,
		"invalid_payload":  1,
		"stale_commitment": 1,
		"proof_mismatch":   0,
	} {
		if got := testutil.ToFloat64(m.transitions.WithLabelValues(label)); got != want {
			t.Errorf("transitions{result=%q} = %v, want %v", label, got, want)
		}
	}
	if got := testutil.ToFloat64(m.version); got != 1 {
		t.Errorf("commitment_version = %v, want 1", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.observe(nil)
	m.setVersion(1)
	m.observeProving(0.1)
}
