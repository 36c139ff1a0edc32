package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/edubot/internal/memory"
)

func TestRing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
		push     int
		want     []int
	}{
		{name: "empty", capacity: 3, push: 0, want: nil},
		{name: "partial", capacity: 3, push: 2, want: []int{1, 2}},
		{name: "exactly full", capacity: 3, push: 3, want: []int{1, 2, 3}},
		{name: "one eviction", capacity: 3, push: 4, want: []int{2, 3, 4}},
		{name: "wraps twice", capacity: 3, push: 8, want: []int{6, 7, 8}},
		{name: "zero capacity clamps to one", capacity: 0, push: 2, want: []int{2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := memory.NewRing[int](tc.capacity)
			for i := 1; i <= tc.push; i++ {
				r.Push(i)
				assert.LessOrEqual(t, r.Len(), r.Cap())
			}
			assert.Equal(t, tc.want, r.Items())
			assert.Equal(t, len(tc.want), r.Len())
		})
	}
}

func TestRingLast(t *testing.T) {
	t.Parallel()

	r := memory.NewRing[string](4)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		r.Push(s)
	}

	assert.Equal(t, []string{"d", "e"}, r.Last(2))
	assert.Equal(t, []string{"b", "c", "d", "e"}, r.Last(10))
	assert.Nil(t, r.Last(0))
	assert.Nil(t, r.Last(-1))

	items := r.Items()
	items[0] = "mutated"
	assert.Equal(t, "b", r.Items()[0])
}
