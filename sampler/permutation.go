package sampler

import (
	"fmt"
	"math/rand"

	"github.com/qrng-team/qrng-engine/core"
)

// NewPermutationSet returns the layouts of the permuted sub-runs for a
// group of the given width. The set size is round(level * width), capped
// at width, and the identity layout is always the first entry. Layouts
// are drawn without replacement; the full width! permutation space is
// never enumerated.
func NewPermutationSet(width int, level float64, rng *rand.Rand) ([]core.Layout, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: group width(%d) must be greater than 0",
			core.ErrorInvalidInput, width)
	}
	if level < 0 || level > 1 {
		return nil, fmt.Errorf("%w: mitigation level(%g) must be in [0,1]",
			core.ErrorInvalidInput, level)
	}

	k := int(level*float64(width) + 0.5)
	if k > width {
		k = width
	}
	layouts := []core.Layout{core.NewIdentityLayout(width)}
	if k <= 1 {
		// a single identity run covers both k=0 and k=1
		return layouts, nil
	}

	seen := map[string]bool{layouts[0].Key(): true}
	for len(layouts) < k {
		l := core.Layout(rng.Perm(width))
		if seen[l.Key()] {
			continue
		}
		seen[l.Key()] = true
		layouts = append(layouts, l)
	}
	return layouts, nil
}
