package engine

import (
	"github.com/cockroachdb/errors"

	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/predicate"
)

// RunTaprootPass implements the taproot search loop: no batched group
// enumeration, one scalar multiplication per candidate, advancing the
// start point by one G per iteration. This pass is available to both
// CPU and GPU worker kinds.
func RunTaprootPass(state *State, tp *predicate.TaprootPredicate, iterations uint64) error {
	if tp == nil {
		return errors.New("engine: taproot mode requires a TaprootPredicate")
	}
	p := state.P
	for i := uint64(0); i < iterations; i++ {
		cand := predicate.Candidate{
			ThreadID: state.ThreadID,
			Incr:     int64(i),
			Endo:     0,
			Sign:     1,
			K0:       state.K0,
			Offset:   state.StartPubKey != nil,
			P:        p,
		}
		tp.EvaluatePoint(p, cand)
		p = curve.Add(p, curve.Generator)
	}
	state.P = p
	state.K0 = state.K0.AddUint64(iterations)
	state.RunningCounter += iterations
	return nil
}
