package generator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/qrng-team/qrng-engine/core"
	"github.com/qrng-team/qrng-engine/merge"
	"github.com/qrng-team/qrng-engine/partition"
	"github.com/qrng-team/qrng-engine/sampler"
	"github.com/qrng-team/qrng-engine/selector"
	"go.uber.org/zap"
)

const DefaultShots = 1024
const DefaultMaxGroupWidth = 10

// massWarnTolerance flags group distributions whose total mass drifted
// far from 1 after mitigation.
const massWarnTolerance = 0.05

// QRNG generates random integers in [0, numPossibleOutcomes) by
// combining measurement outcomes of bounded-width circuit groups.
// Circuit execution and readout correction are delegated to the
// collaborators; this type owns partitioning, permutation spreading,
// merging and selection.
type QRNG struct {
	numPossibleOutcomes int
	shots               int
	maxGroupWidth       int
	strategy            selector.Strategy

	executor  core.CircuitExecutor
	mitigator core.ReadoutMitigator
}

func New(sc *core.SystemComponents, numPossibleOutcomes int, conf *core.Conf, strategy selector.Strategy) (*QRNG, error) {
	var e core.CircuitExecutor
	var m core.ReadoutMitigator
	err := sc.Invoke(func(ce core.CircuitExecutor, rm core.ReadoutMitigator) error {
		e = ce
		m = rm
		return nil
	})
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to resolve collaborators/reason:%s", err.Error()))
		return nil, err
	}
	shots := conf.Shots
	maxGroupWidth := conf.MaxGroupWidth
	return NewFromCollaborators(e, m, numPossibleOutcomes, shots, maxGroupWidth, strategy)
}

func NewFromCollaborators(e core.CircuitExecutor, m core.ReadoutMitigator,
	numPossibleOutcomes, shots, maxGroupWidth int, strategy selector.Strategy) (*QRNG, error) {
	if _, err := core.BitWidthFor(numPossibleOutcomes); err != nil {
		return nil, err
	}
	if shots <= 0 {
		shots = DefaultShots
	}
	if maxGroupWidth <= 0 {
		maxGroupWidth = DefaultMaxGroupWidth
	}
	if strategy == nil {
		strategy = &selector.Mode{}
	}
	return &QRNG{
		numPossibleOutcomes: numPossibleOutcomes,
		shots:               shots,
		maxGroupWidth:       maxGroupWidth,
		strategy:            strategy,
		executor:            e,
		mitigator:           m,
	}, nil
}

// FastRandomNumber generates a random number with a single execution
// per group, skipping gate error mitigation.
func (q *QRNG) FastRandomNumber() (uint64, error) {
	number, _, _, err := q.generate(false, 0)
	return number, err
}

// GateErrorMitRandomNumber generates a random number with gate error
// spreading: each group is executed under round(level * width) permuted
// layouts and the runs are averaged.
func (q *QRNG) GateErrorMitRandomNumber(level float64) (uint64, error) {
	if level < 0 || level > 1 {
		return 0, fmt.Errorf("%w: mitigation level(%g) must be in [0,1]",
			core.ErrorInvalidInput, level)
	}
	number, _, _, err := q.generate(true, level)
	return number, err
}

func (q *QRNG) generate(gateMitigation bool, level float64) (uint64, string, float64, error) {
	groupSpec, err := partition.Partition(q.numPossibleOutcomes, q.maxGroupWidth)
	if err != nil {
		return 0, "", 0, err
	}
	zap.L().Debug(fmt.Sprintf("generating %d-bit number over %d group(s)",
		groupSpec.BitWidth, groupSpec.NumGroups()))

	groupQuasis, err := q.sampleGroups(groupSpec, gateMitigation, level)
	if err != nil {
		return 0, "", 0, err
	}

	merged, err := merge.Merge(groupQuasis...)
	if err != nil {
		return 0, "", 0, err
	}
	mass := merged.TotalMass()

	zap.L().Debug(fmt.Sprintf("selecting an outcome below %s",
		core.BoundBitstring(q.numPossibleOutcomes, groupSpec.BitWidth)))
	number, bitstring, err := selector.SelectNumber(q.strategy, merged, q.numPossibleOutcomes)
	if err != nil {
		return 0, "", mass, err
	}
	zap.L().Debug(fmt.Sprintf("selected %s -> %d by %s strategy",
		bitstring, number, q.strategy.Name()))
	return number, bitstring, mass, nil
}

// sampleGroups samples every group in its own goroutine. Groups share no
// mutable state; the only synchronization point is the join before the
// merge. A generation call is all-or-nothing: on any group failure the
// completed distributions are discarded.
func (q *QRNG) sampleGroups(groupSpec partition.GroupSpec, gateMitigation bool, level float64) ([]core.QuasiProbs, error) {
	groupQuasis := make([]core.QuasiProbs, groupSpec.NumGroups())
	groupErrs := make([]error, groupSpec.NumGroups())

	var wg sync.WaitGroup
	for i, g := range groupSpec.Groups {
		wg.Add(1)
		go func(i int, g partition.Group) {
			defer wg.Done()
			gs := sampler.NewGroupSampler(q.executor, q.mitigator)
			var quasis core.QuasiProbs
			var err error
			if gateMitigation {
				quasis, err = gs.SampleGateMitigated(g, q.shots, level)
			} else {
				quasis, err = gs.SampleFast(g, q.shots)
			}
			groupQuasis[i] = quasis
			groupErrs[i] = err
		}(i, g)
	}
	wg.Wait()

	for i, err := range groupErrs {
		if err != nil {
			zap.L().Error(fmt.Sprintf("failed to sample group %d. Reason:%s", i, err.Error()))
			return nil, err
		}
	}
	for i, quasis := range groupQuasis {
		if mass := quasis.TotalMass(); math.Abs(mass-1) > massWarnTolerance {
			zap.L().Warn(fmt.Sprintf("group %d distribution mass is %g, far from 1", i, mass))
		}
	}
	return groupQuasis, nil
}

// Process runs one generation request end to end and records the result
// on the request data.
func Process(rd *core.RequestData, conf *core.Conf, strategy selector.Strategy) {
	started := time.Now()
	sc := core.GetSystemComponents()
	if sc == nil {
		core.SetFailureWithError(rd, fmt.Errorf("system components is not initialized"))
		return
	}
	q, err := New(sc, rd.NumPossibleOutcomes, conf, strategy)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to build generator for request(%s). Reason:%s",
			rd.ID, err.Error()))
		core.SetFailureWithError(rd, err)
		return
	}
	if rd.Shots > 0 {
		q.shots = rd.Shots
	}
	if rd.MaxGroupWidth > 0 {
		q.maxGroupWidth = rd.MaxGroupWidth
	}

	var number uint64
	var bitstring string
	var mass float64
	if rd.GateMitigation {
		number, bitstring, mass, err = q.generate(true, rd.MitigationLevel)
	} else {
		number, bitstring, mass, err = q.generate(false, 0)
	}
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to process request(%s). Reason:%s", rd.ID, err.Error()))
		core.SetFailureWithError(rd, err)
		return
	}
	rd.Result.Number = number
	rd.Result.Bitstring = bitstring
	rd.Result.TotalMass = mass
	rd.Result.ExecutionTime = time.Since(started)
	rd.Status = core.SUCCEEDED
	rd.Ended = strfmt.DateTime(time.Now())
	zap.L().Debug(fmt.Sprintf("finished request(%s)/result:%s", rd.ID, rd.Result.ToString()))
}
