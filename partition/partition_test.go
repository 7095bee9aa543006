package partition

import (
	"testing"

	"github.com/qrng-team/qrng-engine/core"
	"github.com/stretchr/testify/assert"
)

func TestPartitionSingleGroup(t *testing.T) {
	gs, err := Partition(1024, 10)
	assert.Nil(t, err)
	assert.Equal(t, 10, gs.BitWidth)
	assert.Equal(t, 1, gs.NumGroups())
	assert.Equal(t, 10, gs.Groups[0].Width)
}

func TestPartitionWithRemainder(t *testing.T) {
	gs, err := Partition(2000, 10)
	assert.Nil(t, err)
	assert.Equal(t, 11, gs.BitWidth)
	assert.Equal(t, 2, gs.NumGroups())
	assert.Equal(t, 10, gs.Groups[0].Width)
	assert.Equal(t, 1, gs.Groups[1].Width)
}

func TestPartitionWidthsSumToBitWidth(t *testing.T) {
	tests := []struct {
		name          string
		outcomes      int
		maxGroupWidth int
		wantBitWidth  int
		wantGroups    []int
	}{
		{name: "two outcomes", outcomes: 2, maxGroupWidth: 10, wantBitWidth: 1, wantGroups: []int{1}},
		{name: "just below the cap", outcomes: 512, maxGroupWidth: 10, wantBitWidth: 9, wantGroups: []int{9}},
		{name: "exact multiple", outcomes: 1 << 20, maxGroupWidth: 10, wantBitWidth: 20, wantGroups: []int{10, 10}},
		{name: "remainder group", outcomes: 1 << 25, maxGroupWidth: 10, wantBitWidth: 25, wantGroups: []int{10, 10, 5}},
		{name: "small cap", outcomes: 100, maxGroupWidth: 3, wantBitWidth: 7, wantGroups: []int{3, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs, err := Partition(tt.outcomes, tt.maxGroupWidth)
			assert.Nil(t, err)
			assert.Equal(t, tt.wantBitWidth, gs.BitWidth)

			widths := []int{}
			sum := 0
			narrow := 0
			for i, g := range gs.Groups {
				assert.Equal(t, i, g.Index)
				widths = append(widths, g.Width)
				sum += g.Width
				if g.Width < tt.maxGroupWidth {
					narrow++
				}
			}
			assert.Equal(t, tt.wantGroups, widths)
			assert.Equal(t, gs.BitWidth, sum)
			assert.LessOrEqual(t, narrow, 1)
		})
	}
}

func TestPartitionInvalidInput(t *testing.T) {
	_, err := Partition(1, 10)
	assert.ErrorIs(t, err, core.ErrorInvalidInput)

	_, err = Partition(-5, 10)
	assert.ErrorIs(t, err, core.ErrorInvalidInput)

	_, err = Partition(100, 0)
	assert.ErrorIs(t, err, core.ErrorInvalidInput)
}
