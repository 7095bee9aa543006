package sampler

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/qrng-team/qrng-engine/core"
	"github.com/qrng-team/qrng-engine/partition"
	"go.uber.org/zap"
)

var seedSource = rand.NewSource(time.Now().UnixNano())
var seedMutex sync.Mutex

func nextSeed() int64 {
	seedMutex.Lock()
	defer seedMutex.Unlock()
	return seedSource.Int63()
}

// GroupSampler produces one quasi-probability distribution for one
// partition group. Each sampler owns its own random source so group
// samplers can run in parallel goroutines.
type GroupSampler struct {
	executor  core.CircuitExecutor
	mitigator core.ReadoutMitigator
	rng       *rand.Rand
}

func NewGroupSampler(e core.CircuitExecutor, m core.ReadoutMitigator) *GroupSampler {
	return &GroupSampler{
		executor:  e,
		mitigator: m,
		rng:       rand.New(rand.NewSource(nextSeed())),
	}
}

// SampleFast runs the group circuit once with the identity layout and
// returns the readout-corrected quasi-probabilities unchanged.
func (s *GroupSampler) SampleFast(g partition.Group, shots int) (core.QuasiProbs, error) {
	return s.runAndCorrect(g.Width, core.NewIdentityLayout(g.Width), shots)
}

// SampleGateMitigated spreads gate bias by executing the group circuit
// under round(level * width) permuted layouts and averaging the
// corrected quasi-probabilities across the runs. Averaging over
// different physical placements of the same logical circuit cancels
// position-dependent gate bias without knowing the device error map.
func (s *GroupSampler) SampleGateMitigated(g partition.Group, shots int, level float64) (core.QuasiProbs, error) {
	layouts, err := NewPermutationSet(g.Width, level, s.rng)
	if err != nil {
		return nil, err
	}
	zap.L().Debug(fmt.Sprintf("sampling group %d with %d permuted run(s)/width:%d",
		g.Index, len(layouts), g.Width))

	runs := make([]core.QuasiProbs, 0, len(layouts))
	for _, layout := range layouts {
		quasis, err := s.runAndCorrect(g.Width, layout, shots)
		if err != nil {
			return nil, err
		}
		runs = append(runs, quasis)
	}
	return FlattenQuasis(runs)
}

func (s *GroupSampler) runAndCorrect(width int, layout core.Layout, shots int) (core.QuasiProbs, error) {
	counts, err := s.executor.Run(width, layout, shots)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to run circuit/width:%d/layout:%s/reason:%s",
			width, layout, err.Error()))
		return nil, err
	}
	quasis, err := s.mitigator.Correct(counts, width, layout)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to correct counts/width:%d/reason:%s",
			width, err.Error()))
		return nil, err
	}
	return quasis, nil
}

// FlattenQuasis accumulates per-permutation quasi-probabilities into one
// group distribution. Each bitstring's contributions are summed across
// runs and divided by the number of runs, so the flattened distribution
// sums to about 1 again. Negative quasi-probabilities pass through.
func FlattenQuasis(runs []core.QuasiProbs) (core.QuasiProbs, error) {
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no quasi-probability runs to flatten", core.ErrorEmptyDistribution)
	}
	flattened := make(core.QuasiProbs)
	for _, run := range runs {
		for k, v := range run {
			flattened[k] += v
		}
	}
	n := float64(len(runs))
	for k := range flattened {
		flattened[k] /= n
	}
	return flattened, nil
}
