package zscan

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestPair_StableSort(t *testing.T) {
	t.Parallel()

	got := Pair([]float64{2.0, 1.0, 1.0, 3.0}, []float64{20, 11, 12, 30})
	want := SampleSet{
		{Distance: 1.0, Voltage: 11},
		{Distance: 1.0, Voltage: 12},
		{Distance: 2.0, Voltage: 20},
		{Distance: 3.0, Voltage: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Pair() mismatch (-want +got):\n%s", diff)
	}
}

func TestPair_TruncatesToShorter(t *testing.T) {
	t.Parallel()

	got := Pair([]float64{0, 1, 2, 3}, []float64{5, 6})
	assert.Equal(t, SampleSet{{0, 5}, {1, 6}}, got)

	got = Pair([]float64{0}, []float64{5, 6, 7})
	assert.Equal(t, SampleSet{{0, 5}}, got)

	got = Pair(nil, []float64{5})
	assert.Empty(t, got)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := []Sample{{3, 1}, {1, 2}, {2, 3}, {1, 4}}
	got := Normalize(in)
	assert.Equal(t, SampleSet{{1, 2}, {1, 4}, {2, 3}, {3, 1}}, got)
	assert.Equal(t, []Sample{{3, 1}, {1, 2}, {2, 3}, {1, 4}}, in, "input must not be reordered")
}

func TestNormalize_AlreadyOrdered(t *testing.T) {
	t.Parallel()

	in := []Sample{{0, 1}, {0.5, 2}, {0.5, 1}, {1, 0}}
	assert.Equal(t, SampleSet(in), Normalize(in))
}

func TestNormalize_DropsNonFinite(t *testing.T) {
	t.Parallel()

	in := []Sample{
		{1, 1},
		{math.NaN(), 2},
		{2, math.Inf(1)},
		{math.Inf(-1), 3},
		{0, 4},
	}
	assert.Equal(t, SampleSet{{0, 4}, {1, 1}}, Normalize(in))
}

func TestNonDecreasingOrder(t *testing.T) {
	t.Parallel()

	d := []float64{5, -1, 3.3, 3.3, 0, 12, 7, -1, 2}
	v := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	set := Pair(d, v)
	for i := 1; i < len(set); i++ {
		assert.LessOrEqual(t, set[i-1].Distance, set[i].Distance)
	}
}

func TestSampleSetAccessors(t *testing.T) {
	t.Parallel()

	set := SampleSet{{1, 10}, {2, 20}}
	d := set.Distances()
	v := set.Voltages()
	assert.Equal(t, []float64{1, 2}, d)
	assert.Equal(t, []float64{10, 20}, v)

	d[0] = 99
	v[0] = 99
	assert.Equal(t, SampleSet{{1, 10}, {2, 20}}, set)
}
