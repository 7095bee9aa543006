package merge

import (
	"testing"

	"github.com/qrng-team/qrng-engine/core"
	"github.com/stretchr/testify/assert"
)

func TestMergeProductRule(t *testing.T) {
	first := core.QuasiProbs{"0": 0.6, "1": 0.4}
	second := core.QuasiProbs{"0": 0.5, "1": 0.5}

	merged, err := Merge(first, second)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(merged))
	assert.InDelta(t, 0.30, merged["00"], 1e-12)
	assert.InDelta(t, 0.30, merged["01"], 1e-12)
	assert.InDelta(t, 0.20, merged["10"], 1e-12)
	assert.InDelta(t, 0.20, merged["11"], 1e-12)
	assert.InDelta(t, 1.0, merged.TotalMass(), 1e-12)
}

func TestMergeSingleGroupIsUnchanged(t *testing.T) {
	only := core.QuasiProbs{"00": 0.7, "11": 0.3}
	merged, err := Merge(only)
	assert.Nil(t, err)
	assert.Equal(t, only, merged)
}

func TestMergeThreeGroupsKeyOrder(t *testing.T) {
	merged, err := Merge(
		core.QuasiProbs{"1": 1.0},
		core.QuasiProbs{"00": 1.0},
		core.QuasiProbs{"0": 1.0},
	)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(merged))
	assert.InDelta(t, 1.0, merged["1000"], 1e-12)
}

func TestMergeZeroMassGroup(t *testing.T) {
	merged, err := Merge(
		core.QuasiProbs{"0": 0.5, "1": 0.5},
		core.QuasiProbs{"0": 0.0, "1": 0.0},
	)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(merged))
	assert.InDelta(t, 0.0, merged.TotalMass(), 1e-12)
}

func TestMergeKeepsNegativeArtifacts(t *testing.T) {
	merged, err := Merge(
		core.QuasiProbs{"0": 1.01, "1": -0.01},
		core.QuasiProbs{"0": 0.5, "1": 0.5},
	)
	assert.Nil(t, err)
	assert.InDelta(t, -0.005, merged["10"], 1e-12)
	assert.InDelta(t, -0.005, merged["11"], 1e-12)
}

func TestMergeNoGroups(t *testing.T) {
	_, err := Merge()
	assert.ErrorIs(t, err, core.ErrorEmptyDistribution)
}
