package engine

import (
	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/hashadapt"
	"btc_bruteforce/internal/predicate"
)

// EndomorphismEnabled controls whether the two free endomorphic
// candidates per point (spec.md §1 item 3) are evaluated. Predicates
// that only care about y-parity-sensitive hashing still benefit; mask
// predicates benefit per spec.md §4.4's note that both signed incrs are
// still worth enumerating even though endomorphism alone does not
// change a pure-x comparison's outcome.
type Options struct {
	Mode                predicate.Mode
	EndomorphismEnabled bool
}

// RunPass executes one pass of BatchEngine: Iters batches, each
// covering 2*curve.Half candidate points via one Montgomery batch
// inversion (spec.md §4.4). On success it advances state.P and
// state.K0 by StepSize in total. On an arithmetic degeneracy (a batch
// inverse hitting zero, spec.md §4.1) it returns an error without
// mutating state further; the caller must rekey and discard the pass.
func RunPass(state *State, table *curve.Table, evaluators []predicate.Evaluator, opts Options) error {
	for iter := 0; iter < Iters; iter++ {
		if err := runBatch(state, table, evaluators, opts); err != nil {
			return err
		}
	}
	return nil
}

func runBatch(state *State, table *curve.Table, evaluators []predicate.Evaluator, opts Options) error {
	sx := state.P.X

	dx := make([]field.Element, curve.Half+1)
	for i := 0; i < curve.Half; i++ {
		dx[i] = table.Points[i].X.Sub(sx)
	}
	dx[curve.Half] = table.TwoG.X.Sub(sx)

	if err := field.BatchInverse(dx); err != nil {
		return err
	}

	// Step 3: center check, offset 0 from the pass center.
	dispatchPoint(state, table, state.P, 0, evaluators, opts)

	// Step 4 (and the "edge point" of step 5, subsumed by i == Half-1):
	// for i in [0, Half) compute P+G_i and P-G_i using the shared
	// inverse dx[i]^-1, visiting offsets +(i+1) and -(i+1).
	for i := 0; i < curve.Half; i++ {
		gi := table.Points[i]
		plus := curve.AddWithInverseDX(state.P, gi, dx[i])
		minus := curve.AddWithInverseDX(state.P, gi.Neg(), dx[i])
		dispatchPoint(state, table, plus, int64(i+1), evaluators, opts)
		dispatchPoint(state, table, minus, -int64(i+1), evaluators, opts)
	}

	state.RunningCounter += uint64(2*curve.Half + 1)

	// Step 6: advance the center by 2*Half*G using the last inverse.
	state.P = curve.AddWithInverseDX(state.P, table.TwoG, dx[curve.Half])
	state.K0 = state.K0.AddUint64(uint64(2 * curve.Half))

	return nil
}

// dispatchPoint evaluates one visited point against every endomorphism
// index and y-sign combination the options call for: up to 3 endo
// indices times 2 signs = 6 predicate candidates per point, matching
// spec.md §4.4's predicate dispatch.
func dispatchPoint(state *State, table *curve.Table, p curve.Point, incr int64, evaluators []predicate.Evaluator, opts Options) {
	endoIndices := []int{0}
	if opts.EndomorphismEnabled {
		endoIndices = append(endoIndices, 1, 2)
	}

	for _, endo := range endoIndices {
		variant := p
		if endo != 0 {
			variant = curve.Endomorphism(p, endo)
		}
		for _, sign := range [2]int8{1, -1} {
			y := variant.Y
			if sign < 0 {
				y = variant.Y.Neg()
			}
			candidatePoint := curve.Point{X: variant.X, Y: y}

			cand := predicate.Candidate{
				ThreadID: state.ThreadID,
				Incr:     incr,
				Endo:     endo,
				Sign:     sign,
				Mode:     opts.Mode,
				K0:       state.K0,
				Offset:   state.StartPubKey != nil,
				X:        variant.X,
				P:        candidatePoint,
			}
			if opts.Mode == predicate.ModeCompressed || opts.Mode == predicate.ModeBoth {
				cand.Compressed = hashadapt.SerializeCompressed(candidatePoint)
			}
			if opts.Mode == predicate.ModeUncompressed || opts.Mode == predicate.ModeBoth {
				cand.Uncompressed = hashadapt.SerializeUncompressed(candidatePoint)
			}

			for _, ev := range evaluators {
				ev.Evaluate(cand)
			}
		}
	}
}
