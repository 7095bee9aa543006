package mitig

import (
	"math"
	"testing"

	"github.com/qrng-team/qrng-engine/core"
	"github.com/stretchr/testify/assert"
)

func TestFrequencyMitigator(t *testing.T) {
	m := &FrequencyMitigator{}
	assert.Nil(t, m.Setup(&core.Conf{}))

	counts := core.Counts{"00": 512, "01": 256, "10": 256}
	quasis, err := m.Correct(counts, 2, core.NewIdentityLayout(2))
	assert.Nil(t, err)
	assert.InDelta(t, 0.50, quasis["00"], 1e-12)
	assert.InDelta(t, 0.25, quasis["01"], 1e-12)
	assert.InDelta(t, 0.25, quasis["10"], 1e-12)
	assert.InDelta(t, 1.0, quasis.TotalMass(), 1e-12)
}

func TestFrequencyMitigatorEmptyCounts(t *testing.T) {
	m := &FrequencyMitigator{}
	quasis, err := m.Correct(core.Counts{}, 2, core.NewIdentityLayout(2))
	assert.Nil(t, err)
	assert.Empty(t, quasis)
}

// applyConfusion biases an exact distribution the way a readout with
// symmetric flip probability p would, for a single qubit.
func applyConfusion(p0, p1, flip float64) (m0, m1 float64) {
	m0 = (1-flip)*p0 + flip*p1
	m1 = flip*p0 + (1-flip)*p1
	return
}

func TestTensoredInverseRecoversIdealDistribution(t *testing.T) {
	const flip = 0.1
	const shots = 100000

	m := &TensoredInverseMitigator{}
	assert.Nil(t, m.Setup(&core.Conf{ReadoutFlipProb: flip}))

	// ideal single-qubit distribution 0.7/0.3, biased by the confusion matrix
	m0, m1 := applyConfusion(0.7, 0.3, flip)
	counts := core.Counts{
		"0": uint32(math.Round(m0 * shots)),
		"1": uint32(math.Round(m1 * shots)),
	}

	quasis, err := m.Correct(counts, 1, core.NewIdentityLayout(1))
	assert.Nil(t, err)
	assert.InDelta(t, 0.7, quasis["0"], 1e-4)
	assert.InDelta(t, 0.3, quasis["1"], 1e-4)
	assert.InDelta(t, 1.0, quasis.TotalMass(), 1e-4)
}

func TestTensoredInverseCanGoNegative(t *testing.T) {
	const flip = 0.05

	m := &TensoredInverseMitigator{}
	assert.Nil(t, m.Setup(&core.Conf{ReadoutFlipProb: flip}))

	// all shots in one bitstring: correction pushes the other side negative
	counts := core.Counts{"0": 1000, "1": 0}
	quasis, err := m.Correct(counts, 1, core.NewIdentityLayout(1))
	assert.Nil(t, err)
	assert.Greater(t, quasis["0"], 1.0)
	assert.Less(t, quasis["1"], 0.0)
}

func TestTensoredInverseTwoQubits(t *testing.T) {
	const flip = 0.02

	m := &TensoredInverseMitigator{}
	assert.Nil(t, m.Setup(&core.Conf{ReadoutFlipProb: flip}))

	counts := core.Counts{"00": 250, "01": 250, "10": 250, "11": 250}
	quasis, err := m.Correct(counts, 2, core.NewIdentityLayout(2))
	assert.Nil(t, err)
	// a uniform distribution is a fixed point of the correction
	for _, k := range []string{"00", "01", "10", "11"} {
		assert.InDelta(t, 0.25, quasis[k], 1e-9)
	}
}

func TestTensoredInverseErrors(t *testing.T) {
	m := &TensoredInverseMitigator{}
	assert.Nil(t, m.Setup(&core.Conf{ReadoutFlipProb: 0.6}))

	// flip probabilities summing to >= 1 make the matrix singular
	_, err := m.Correct(core.Counts{"0": 1, "1": 1}, 1, core.NewIdentityLayout(1))
	assert.NotNil(t, err)

	m2 := &TensoredInverseMitigator{}
	assert.Nil(t, m2.Setup(&core.Conf{ReadoutFlipProb: 0.01}))

	_, err = m2.Correct(core.Counts{"000": 1}, 2, core.NewIdentityLayout(2))
	assert.NotNil(t, err)

	_, err = m2.Correct(core.Counts{"00": 1}, 2, core.NewIdentityLayout(3))
	assert.NotNil(t, err)
}

func TestTensoredInverseEmptyCounts(t *testing.T) {
	m := &TensoredInverseMitigator{}
	assert.Nil(t, m.Setup(&core.Conf{ReadoutFlipProb: 0.02}))

	quasis, err := m.Correct(core.Counts{}, 2, core.NewIdentityLayout(2))
	assert.Nil(t, err)
	assert.Empty(t, quasis)
}
