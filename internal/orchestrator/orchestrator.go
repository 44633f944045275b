// Package orchestrator implements spec.md §4.6's SearchOrchestrator:
// it spawns CPU and GPU workers, aggregates their counters, smooths the
// key rate, dispatches rekeys, collects matches, and drives cooperative
// shutdown.
package orchestrator

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"btc_bruteforce/internal/config"
	"btc_bruteforce/internal/curve"
	"btc_bruteforce/internal/engine"
	"btc_bruteforce/internal/field"
	"btc_bruteforce/internal/predicate"
)

// pollInterval matches spec.md §4.6's "once per ~500ms" counter poll.
const pollInterval = 500 * time.Millisecond

// GPULauncher is the external collaborator contract of spec.md §9:
// "launch(Predicate, WorkerSlotArray) -> MatchRecord[]". This package
// only owns the contract and the orchestration around it; no GPU kernel
// implementation lives here (spec.md §1's explicit out-of-scope list).
type GPULauncher interface {
	Launch(ctx context.Context, slot *engine.State, evaluators []predicate.Evaluator, opts engine.Options) ([]predicate.MatchRecord, error)
}

// RandomScalarFunc is swapped out in tests; production callers get a
// fresh 256-bit value from crypto/rand via this indirection (kept
// separate from math/rand, whose use is confined to tests per
// SPEC_FULL.md §A).
type RandomScalarFunc func() field.Scalar

// Orchestrator owns the worker pool and shared shutdown/metrics state.
type Orchestrator struct {
	cfg       *config.Config
	table     *curve.Table
	evaluators []predicate.Evaluator
	sink      *OutputSink
	metrics   *Metrics
	log       *logrus.Logger
	randScalar RandomScalarFunc
	gpu       GPULauncher

	endOfSearch atomic.Bool
	counters    []*atomic.Uint64 // one per worker, single-writer-per-worker (spec.md §5).
	phases      []*atomic.Int32
	rekeyAt     []*atomic.Uint64 // orchestrator-written rekey request, read by the owning worker.

	wg sync.WaitGroup
}

// New constructs an Orchestrator. evaluators is the active predicate
// set for the configured search mode; sink receives verified matches.
func New(cfg *config.Config, table *curve.Table, evaluators []predicate.Evaluator, sink *OutputSink, log *logrus.Logger, randScalar RandomScalarFunc, gpu GPULauncher) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	total := cfg.CPUThreads + cfg.GPUThreads
	o := &Orchestrator{
		cfg:        cfg,
		table:      table,
		evaluators: evaluators,
		sink:       sink,
		metrics:    NewMetrics(),
		log:        log,
		randScalar: randScalar,
		gpu:        gpu,
		counters:   make([]*atomic.Uint64, total),
		phases:     make([]*atomic.Int32, total),
		rekeyAt:    make([]*atomic.Uint64, total),
	}
	for i := range o.counters {
		o.counters[i] = &atomic.Uint64{}
		o.phases[i] = &atomic.Int32{}
		o.rekeyAt[i] = &atomic.Uint64{}
	}
	return o
}

// Metrics exposes the orchestrator's prometheus registry for wiring
// into an optional debug HTTP listener (cmd/btc_bruteforce).
func (o *Orchestrator) Metrics() *Metrics { return o.metrics }

// Run launches all workers, polls until shutdown, and returns once
// every worker has reached PhaseDone (spec.md §4.6's termination
// condition: "all workers are not-running").
func (o *Orchestrator) Run(ctx context.Context) {
	seedKey := o.randScalar()

	for i := 0; i < o.cfg.CPUThreads; i++ {
		id := uint32(i)
		o.wg.Add(1)
		go o.runCPUWorker(ctx, id, threadOffset(seedKey, id))
	}
	for i := 0; i < o.cfg.GPUThreads; i++ {
		id := uint32(o.cfg.CPUThreads + i)
		o.wg.Add(1)
		go o.runGPUWorker(ctx, id, threadOffset(seedKey, id))
	}

	o.pollLoop(ctx)
	o.wg.Wait()
}

// threadOffset bakes a unique per-thread offset into the seed, per
// spec.md §4.6: k0 <- seedKey + (thread_id << 64).
func threadOffset(seedKey field.Scalar, threadID uint32) field.Scalar {
	shift := new(big.Int).Lsh(big.NewInt(int64(threadID)), 64)
	sum := new(big.Int).Add(seedKey.Big(), shift)
	return field.NewScalarFromBig(sum)
}

func (o *Orchestrator) runCPUWorker(ctx context.Context, id uint32, k0 field.Scalar) {
	defer o.wg.Done()
	o.phases[id].Store(int32(engine.PhaseStarting))

	state := engine.NewState(id, k0, nil, o.table)
	opts := engine.Options{Mode: o.cfg.PredicateMode(), EndomorphismEnabled: true}

	o.phases[id].Store(int32(engine.PhaseRunning))
	for {
		if o.endOfSearch.Load() || ctx.Err() != nil {
			o.phases[id].Store(int32(engine.PhaseStopping))
			break
		}
		if o.rekeyAt[id].Load() != 0 {
			o.doRekey(id, state)
		}

		var err error
		if o.cfg.Mode == config.ModeTaproot {
			err = engine.RunTaprootPass(state, taprootPredicateOf(o.evaluators), engine.StepSize)
		} else {
			err = engine.RunPass(state, o.table, o.evaluators, opts)
		}
		if err != nil {
			// Arithmetic degeneracy: discard the pass, force a rekey
			// (spec.md §7).
			o.log.WithError(err).WithField("thread", id).Warn("batch inverse hit zero, forcing rekey")
			o.doRekey(id, state)
			continue
		}

		o.counters[id].Store(state.RunningCounter)
		if state.RunningCounter > o.cfg.RekeyMkeys*1_000_000 && o.cfg.RekeyMkeys > 0 {
			o.doRekey(id, state)
		}
	}
	o.phases[id].Store(int32(engine.PhaseDone))
}

func (o *Orchestrator) runGPUWorker(ctx context.Context, id uint32, k0 field.Scalar) {
	defer o.wg.Done()
	o.phases[id].Store(int32(engine.PhaseStarting))

	if o.gpu == nil {
		o.log.WithField("thread", id).Warn("no GPU launcher configured, GPU worker exiting")
		o.phases[id].Store(int32(engine.PhaseDone))
		return
	}

	state := engine.NewState(id, k0, nil, o.table)
	opts := engine.Options{Mode: o.cfg.PredicateMode(), EndomorphismEnabled: true}
	o.phases[id].Store(int32(engine.PhaseRunning))

	for {
		if o.endOfSearch.Load() || ctx.Err() != nil {
			break
		}
		records, err := o.gpu.Launch(ctx, state, o.evaluators, opts)
		if err != nil {
			// spec.md §7: GPU launch failure ends that worker; CPU
			// workers continue unaffected.
			o.log.WithError(err).WithField("thread", id).Error("GPU launch failed, worker exiting")
			break
		}
		for _, r := range records {
			o.sink.Report(r)
		}
		o.counters[id].Store(state.RunningCounter)
	}
	o.phases[id].Store(int32(engine.PhaseDone))
}

func taprootPredicateOf(evaluators []predicate.Evaluator) *predicate.TaprootPredicate {
	for _, e := range evaluators {
		if tp, ok := e.(*predicate.TaprootPredicate); ok {
			return tp
		}
	}
	return nil
}

func (o *Orchestrator) doRekey(id uint32, state *engine.State) {
	newK0 := o.randScalar()
	state.Rekey(newK0, o.table)
	o.rekeyAt[id].Store(0)
	o.metrics.Rekeys.Inc()
}

// pollLoop is spec.md §4.6's "polls counters once per ~500ms" loop: it
// smooths the aggregate key rate with an 8-sample moving average and
// terminates once every worker has reached PhaseDone.
func (o *Orchestrator) pollLoop(ctx context.Context) {
	avg := &movingAverage{}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var lastTotal uint64
	var lastHits int
	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			o.endOfSearch.Store(true)
		case <-ticker.C:
		}

		total := uint64(0)
		active := 0
		done := 0
		for i, c := range o.counters {
			total += c.Load()
			switch engine.Phase(o.phases[i].Load()) {
			case engine.PhaseRunning:
				active++
			case engine.PhaseDone:
				done++
			}
		}

		now := time.Now()
		elapsed := now.Sub(lastTime).Seconds()
		if elapsed > 0 {
			rate := float64(total-lastTotal) / elapsed / 1_000_000
			smoothed := avg.add(rate)
			o.metrics.KeyRate.Set(smoothed)
		}
		o.metrics.TotalKeys.Add(float64(total - lastTotal))
		o.metrics.ActiveWorkers.Set(float64(active))
		hits := o.sink.Hits
		o.metrics.Matches.Add(float64(hits - lastHits))
		lastHits = hits
		lastTotal = total
		lastTime = now

		if o.cfg.StopWhenFound && o.cfg.MaxFound > 0 && o.sink.Hits >= o.cfg.MaxFound {
			o.endOfSearch.Store(true)
		}

		if done == len(o.counters) {
			return
		}
		if ctx.Err() != nil && active == 0 {
			return
		}
	}
}

// Stop requests cooperative shutdown; workers observe endOfSearch at
// their next pass boundary (spec.md §5's cancellation model).
func (o *Orchestrator) Stop() { o.endOfSearch.Store(true) }

// RequestRekey marks a worker for rekey at its next pass boundary,
// satisfying spec.md §4.4's "RekeyPending is entered on orchestrator
// request" transition. Only the orchestrator writes rekeyAt; only the
// owning worker clears it, preserving the single-writer-per-worker
// invariant of spec.md §5.
func (o *Orchestrator) RequestRekey(threadID uint32) {
	if int(threadID) < len(o.rekeyAt) {
		o.rekeyAt[threadID].Store(1)
	}
}
