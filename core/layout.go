package core

import (
	"fmt"

	"go.uber.org/zap"
)

// Layout assigns each logical qubit index to a physical position on the
// backend. Layout[i] is the physical position executing logical qubit i.
// A Layout is always a bijection over [0, width).
type Layout []int

func NewIdentityLayout(width int) Layout {
	l := make(Layout, width)
	for i := range l {
		l[i] = i
	}
	return l
}

func (l Layout) Width() int {
	return len(l)
}

func (l Layout) IsIdentity() bool {
	for i, p := range l {
		if i != p {
			return false
		}
	}
	return true
}

// Validate checks that the layout is a bijection over its own width.
func (l Layout) Validate() error {
	seen := make([]bool, len(l))
	for _, p := range l {
		if p < 0 || p >= len(l) {
			return fmt.Errorf("physical position %d is out of range for width %d", p, len(l))
		}
		if seen[p] {
			return fmt.Errorf("physical position %d is assigned twice", p)
		}
		seen[p] = true
	}
	return nil
}

func (l Layout) Clone() Layout {
	c := make(Layout, len(l))
	copy(c, l)
	return c
}

// Key returns a canonical string form usable as a map key when drawing
// layouts without replacement.
func (l Layout) Key() string {
	return fmt.Sprintf("%v", []int(l))
}

func (l Layout) String() string {
	st, err := jsonIter.Marshal([]int(l))
	if err != nil {
		zap.L().Error("Failed to marshal core.Layout")
		return ""
	}
	return string(st)
}
