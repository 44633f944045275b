package engine

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/predicate"
)

type countingEvaluator struct {
	calls int
}

func (c *countingEvaluator) Kind() predicate.Kind { return predicate.KindMask }
func (c *countingEvaluator) Evaluate(predicate.Candidate) bool {
	c.calls++
	return false
}

func TestRunBatchVisitsEveryPointWithEndomorphismAndSign(t *testing.T) {
	table := curve.BuildTable()
	k0 := field.NewScalarFromBig(big.NewInt(12345))
	state := NewState(0, k0, nil, table)

	counter := &countingEvaluator{}
	opts := Options{Mode: predicate.ModeCompressed, EndomorphismEnabled: true}

	err := runBatch(state, table, []predicate.Evaluator{counter}, opts)
	require.NoError(t, err)

	// One batch visits 2*Half+1 points, each dispatched with 3 endo
	// indices x 2 signs = 6 evaluator calls.
	wantPoints := 2*curve.Half + 1
	require.Equal(t, wantPoints*6, counter.calls)
}

func TestRunPassAdvancesByStepSize(t *testing.T) {
	table := curve.BuildTable()
	k0 := field.NewScalarFromBig(big.NewInt(99))
	state := NewState(0, k0, nil, table)

	wantK0 := state.K0.AddUint64(StepSize)

	err := RunPass(state, table, nil, Options{Mode: predicate.ModeCompressed})
	require.NoError(t, err)
	require.True(t, state.K0.Equal(wantK0))
}
