package mitig

import (
	"fmt"

	"github.com/qrng-team/qrng-engine/core"
	"go.uber.org/zap"
)

// FrequencyMitigator converts raw counts to relative frequencies and
// applies no readout correction. It is the mitigator for backends whose
// counts are already trusted.
type FrequencyMitigator struct{}

func (f *FrequencyMitigator) Setup(*core.Conf) error {
	zap.L().Debug("setting up frequency mitigator")
	return nil
}

func (f *FrequencyMitigator) Correct(counts core.Counts, width int, layout core.Layout) (core.QuasiProbs, error) {
	total := counts.TotalShots()
	if total == 0 {
		zap.L().Debug("frequency mitigator got zero total shots, returning empty quasis")
		return core.QuasiProbs{}, nil
	}
	quasis := make(core.QuasiProbs, len(counts))
	for k, v := range counts {
		quasis[k] = float64(v) / float64(total)
	}
	return quasis, nil
}

// TensoredInverseMitigator corrects each qubit's readout independently
// by applying the inverse of its 2x2 assignment matrix. The per-qubit
// flip probabilities come from the backend info; qubits the backend does
// not describe fall back to the configured base flip probability.
// Corrected values are quasi-probabilities and may be slightly negative;
// they are returned as-is, never clamped.
type TensoredInverseMitigator struct {
	baseFlipProb float64
}

func (t *TensoredInverseMitigator) Setup(conf *core.Conf) error {
	zap.L().Debug("setting up tensored inverse mitigator")
	t.baseFlipProb = conf.ReadoutFlipProb
	return nil
}

func (t *TensoredInverseMitigator) Correct(counts core.Counts, width int, layout core.Layout) (core.QuasiProbs, error) {
	if width <= 0 || width > 30 {
		return nil, fmt.Errorf("unsupported width %d for tensored inverse mitigation", width)
	}
	if layout.Width() != width {
		return nil, fmt.Errorf("layout width %d does not match group width %d", layout.Width(), width)
	}
	total := counts.TotalShots()
	if total == 0 {
		zap.L().Debug("tensored inverse mitigator got zero total shots, returning empty quasis")
		return core.QuasiProbs{}, nil
	}

	size := 1 << uint(width)
	probs := make([]float64, size)
	for k, v := range counts {
		idx, err := core.BitstringToUint(k)
		if err != nil || len(k) != width {
			return nil, fmt.Errorf("count key %q does not fit width %d", k, width)
		}
		probs[idx] = float64(v) / float64(total)
	}

	for logical := 0; logical < width; logical++ {
		p10, p01 := t.flipProbs(layout[logical])
		det := 1.0 - p10 - p01
		if det <= 0 {
			return nil, fmt.Errorf("readout assignment matrix of physical qubit %d is not invertible",
				layout[logical])
		}
		bit := 1 << uint(logical)
		for j := 0; j < size; j++ {
			if j&bit != 0 {
				continue
			}
			a, b := probs[j], probs[j|bit]
			probs[j] = ((1-p01)*a - p01*b) / det
			probs[j|bit] = ((1-p10)*b - p10*a) / det
		}
	}

	// report only bitstrings that were actually observed
	quasis := make(core.QuasiProbs, len(counts))
	for k := range counts {
		idx, _ := core.BitstringToUint(k)
		quasis[k] = probs[idx]
	}
	return quasis, nil
}

func (t *TensoredInverseMitigator) flipProbs(physical int) (p10, p01 float64) {
	p10, p01 = t.baseFlipProb, t.baseFlipProb
	s := core.GetSystemComponents()
	if s == nil {
		return
	}
	bi := s.GetBackendInfo()
	if bi == nil || physical >= len(bi.ReadoutErrors) {
		return
	}
	p10 = bi.ReadoutErrors[physical].ProbMeas1Prep0
	p01 = bi.ReadoutErrors[physical].ProbMeas0Prep1
	return
}
