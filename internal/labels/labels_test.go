package labels

import (
	"testing"

	"direction-bot/internal/market"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	s := market.FromCloses(1, 1.1, 1.05, 1.2, 1.2, 1.3)

	got := Generate(s, []int{0, 1, 2, 3, 4, 5})
	want := map[int]bool{0: true, 1: false, 2: true, 3: false, 4: true}
	assert.Equal(t, want, got)
}

func TestGenerate_NeverLabelsLastIndex(t *testing.T) {
	for n := 1; n < 30; n++ {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = float64(i)
		}
		s := market.FromCloses(closes...)

		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		got := Generate(s, all)
		_, labelled := got[n-1]
		assert.False(t, labelled, "n=%d", n)
		assert.Len(t, got, n-1)
	}
}

func TestGenerate_SubsetAndOutOfRange(t *testing.T) {
	s := market.FromCloses(3, 2, 1, 2)
	got := Generate(s, []int{-1, 1, 2, 7})
	assert.Equal(t, map[int]bool{1: false, 2: true}, got)

	assert.Empty(t, Generate(s, nil))
}

func TestUp(t *testing.T) {
	s := market.FromCloses(1, 2, 2)

	up, ok := Up(s, 0)
	assert.True(t, ok)
	assert.True(t, up)

	up, ok = Up(s, 1)
	assert.True(t, ok)
	assert.False(t, up, "equal close is not up")

	_, ok = Up(s, 2)
	assert.False(t, ok)
}
