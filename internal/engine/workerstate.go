// Package engine implements the hot loop of spec.md §4.4: BatchEngine
// walks 2*curve.Half consecutive points per inversion and dispatches
// each to a predicate.Evaluator.
package engine

import (
	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/field"
)

// Iters is ITERS from spec.md §4.4: the number of batches per pass.
// StepSize = Iters * 2 * curve.Half candidate scalars are covered by one
// call to RunPass.
const Iters = 32

// StepSize is the number of scalars one pass of RunPass advances the
// worker's start point by.
const StepSize = Iters * 2 * curve.Half

// RekeyThresholdDefault is a rekey threshold expressed in units of
// StepSize passes. The orchestrator does not consult it: a worker is
// rekeyed by volume only when Config.RekeyMkeys is non-zero.
const RekeyThresholdDefault = 1 << 14

// State is spec.md §3's WorkerState. Only the owning worker mutates
// K0/P/RunningCounter; the orchestrator signals rekeys through its own
// per-worker flags rather than through this struct.
type State struct {
	ThreadID       uint32
	K0             field.Scalar // base scalar for the current key range.
	StartPubKey    *curve.Point // non-nil in offset-search mode.
	P              curve.Point  // current center point, (k0 + Half)*G [+ startPubKey].
	RunningCounter uint64       // total candidates visited since last rekey.
	RekeyRequest   bool         // cleared by Rekey; the orchestrator neither reads nor writes it.
}

// Phase is the worker lifecycle state machine of spec.md §4.4.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseStarting
	PhaseRunning
	PhaseRekeyPending
	PhaseStopping
	PhaseDone
)

// NewState seeds a worker's initial K0 and center point P = (k0 +
// Half)*G [+ startPubKey], per spec.md §3's WorkerState lifecycle.
func NewState(threadID uint32, k0 field.Scalar, startPubKey *curve.Point, table *curve.Table) *State {
	s := &State{ThreadID: threadID, K0: k0, StartPubKey: startPubKey}
	s.reseedCenter(table)
	return s
}

func (s *State) reseedCenter(table *curve.Table) {
	offset := field.NewScalarFromUint64(uint64(curve.Half))
	center := s.K0.Add(offset)
	p := curve.ScalarMultWindowed(center, curve.Generator)
	if s.StartPubKey != nil {
		p = curve.Add(p, *s.StartPubKey)
	}
	s.P = p
}

// Rekey replaces K0 with a fresh scalar and recenters P, clearing the
// running counter and the rekey request flag. Called by the worker
// itself at a pass boundary, never concurrently with RunPass.
func (s *State) Rekey(newK0 field.Scalar, table *curve.Table) {
	s.K0 = newK0
	s.RunningCounter = 0
	s.RekeyRequest = false
	s.reseedCenter(table)
}

