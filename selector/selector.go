package selector

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/qrng-team/qrng-engine/core"
	"go.uber.org/zap"
)

// Strategy maps a merged distribution to a single bitstring. Mode is the
// engine default: the output is the single most-probable outcome, not a
// draw proportional to the distribution. WeightedSample is the
// proportional alternative; which one matches the product intent better
// is an open product question, so both are explicit and selectable.
type Strategy interface {
	Name() string
	Select(quasis core.QuasiProbs) (string, error)
}

func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "mode", "":
		return &Mode{}, nil
	case "weighted":
		return NewWeightedSample(), nil
	default:
		return nil, fmt.Errorf("%s is an unknown selection strategy", name)
	}
}

// Mode selects the bitstring with the maximum quasi-probability. Ties
// break to the lexicographically first bitstring so selection is
// deterministic for a given distribution.
type Mode struct{}

func (m *Mode) Name() string {
	return "mode"
}

func (m *Mode) Select(quasis core.QuasiProbs) (string, error) {
	if len(quasis) == 0 {
		return "", fmt.Errorf("%w: nothing to select from", core.ErrorEmptyDistribution)
	}
	best := ""
	bestValue := 0.0
	first := true
	for k, v := range quasis {
		switch {
		case first:
			best, bestValue, first = k, v, false
		case v > bestValue:
			best, bestValue = k, v
		case v == bestValue && k < best:
			best = k
		}
	}
	return best, nil
}

// WeightedSample draws a bitstring proportionally to its probability.
// Negative quasi-probabilities are treated as zero here, at the final
// selection step only; intermediate merges never clamp.
type WeightedSample struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewWeightedSample() *WeightedSample {
	return &WeightedSample{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (w *WeightedSample) Name() string {
	return "weighted"
}

func (w *WeightedSample) Select(quasis core.QuasiProbs) (string, error) {
	if len(quasis) == 0 {
		return "", fmt.Errorf("%w: nothing to select from", core.ErrorEmptyDistribution)
	}
	// iterate keys in a fixed order so the draw depends only on the rng
	keys := make([]string, 0, len(quasis))
	total := 0.0
	for k, v := range quasis {
		keys = append(keys, k)
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return "", fmt.Errorf("%w: no positive mass to sample from", core.ErrorEmptyDistribution)
	}
	sort.Strings(keys)

	w.mu.Lock()
	target := w.rng.Float64() * total
	w.mu.Unlock()

	acc := 0.0
	for _, k := range keys {
		v := quasis[k]
		if v <= 0 {
			continue
		}
		acc += v
		if target < acc {
			return k, nil
		}
	}
	// floating-point accumulation can land exactly on total
	for i := len(keys) - 1; i >= 0; i-- {
		if quasis[keys[i]] > 0 {
			return keys[i], nil
		}
	}
	return "", fmt.Errorf("%w: no positive mass to sample from", core.ErrorEmptyDistribution)
}

// FilterWithinRange drops bitstrings whose integer value is outside
// [0, numPossibleOutcomes) so the selected number always addresses a
// valid outcome.
func FilterWithinRange(quasis core.QuasiProbs, numPossibleOutcomes int) core.QuasiProbs {
	filtered := make(core.QuasiProbs)
	for k, v := range quasis {
		value, err := core.BitstringToUint(k)
		if err != nil {
			zap.L().Warn(fmt.Sprintf("dropping malformed bitstring %q from distribution", k))
			continue
		}
		if value < uint64(numPossibleOutcomes) {
			filtered[k] = v
		}
	}
	return filtered
}

// SelectNumber filters the merged distribution to the valid range,
// applies the strategy, and converts the winning bitstring to its
// MSB-first integer value.
func SelectNumber(s Strategy, quasis core.QuasiProbs, numPossibleOutcomes int) (uint64, string, error) {
	filtered := FilterWithinRange(quasis, numPossibleOutcomes)
	bitstring, err := s.Select(filtered)
	if err != nil {
		return 0, "", err
	}
	value, err := core.BitstringToUint(bitstring)
	if err != nil {
		return 0, "", err
	}
	return value, bitstring, nil
}
