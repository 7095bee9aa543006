package merge

import (
	"fmt"

	"github.com/qrng-team/qrng-engine/core"
)

// Merge combines per-group quasi-probability distributions into one
// distribution over the concatenated bitstring space. Group outcomes are
// treated as statistically independent: every combination of one
// bitstring per group gets the product of the per-group probabilities,
// keyed by the concatenation in group order. This is exact combination
// of independent distributions, not an approximation.
//
// A group with zero total mass still merges into a syntactically valid
// result; emptiness only becomes fatal at selection.
func Merge(groupQuasis ...core.QuasiProbs) (core.QuasiProbs, error) {
	if len(groupQuasis) == 0 {
		return nil, fmt.Errorf("%w: no group distributions to merge", core.ErrorEmptyDistribution)
	}

	merged := groupQuasis[0].Clone()
	for _, next := range groupQuasis[1:] {
		newMerged := make(core.QuasiProbs, len(merged)*len(next))
		for key1, value1 := range merged {
			for key2, value2 := range next {
				newMerged[key1+key2] = value1 * value2
			}
		}
		merged = newMerged
	}
	return merged, nil
}
