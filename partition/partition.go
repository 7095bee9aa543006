package partition

import (
	"fmt"

	"github.com/qrng-team/qrng-engine/core"
	"go.uber.org/zap"
)

// Group is one bounded-width slice of the total required bit-width,
// executed as an independent circuit.
type Group struct {
	Index int
	Width int
}

// GroupSpec is an ordered sequence of groups. Concatenation of group
// bitstrings in slice order yields the full MSB-first bitstring.
type GroupSpec struct {
	BitWidth int
	Groups   []Group
}

func (gs GroupSpec) NumGroups() int {
	return len(gs.Groups)
}

// Partition splits the bit-width needed for numPossibleOutcomes into
// groups of at most maxGroupWidth qubits. All groups but the optional
// trailing remainder have exactly maxGroupWidth qubits.
func Partition(numPossibleOutcomes, maxGroupWidth int) (GroupSpec, error) {
	if maxGroupWidth <= 0 {
		return GroupSpec{}, fmt.Errorf("%w: max group width(%d) must be greater than 0",
			core.ErrorInvalidInput, maxGroupWidth)
	}
	bitWidth, err := core.BitWidthFor(numPossibleOutcomes)
	if err != nil {
		return GroupSpec{}, err
	}

	gs := GroupSpec{BitWidth: bitWidth}
	if bitWidth <= maxGroupWidth {
		gs.Groups = []Group{{Index: 0, Width: bitWidth}}
		return gs, nil
	}

	quotient, remainder := bitWidth/maxGroupWidth, bitWidth%maxGroupWidth
	for i := 0; i < quotient; i++ {
		gs.Groups = append(gs.Groups, Group{Index: i, Width: maxGroupWidth})
	}
	if remainder > 0 {
		gs.Groups = append(gs.Groups, Group{Index: quotient, Width: remainder})
	}
	zap.L().Debug(fmt.Sprintf("partitioned %d outcomes into %d groups/bit width:%d",
		numPossibleOutcomes, len(gs.Groups), bitWidth))
	return gs, nil
}
