package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndSum(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Mean(nil))
	assert.InDelta(t, 25.0, Mean([]float64{100, -50, 25}), 1e-9)
	assert.InDelta(t, 75.0, Sum([]float64{100, -50, 25}), 1e-9)
}

func TestMedian(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Median(nil))
	assert.InDelta(t, 25.0, Median([]float64{100, 25, -50}), 1e-9)
	assert.InDelta(t, 62.5, Median([]float64{100, 25}), 1e-9)
}

func TestStdDevSample(t *testing.T) {
	t.Parallel()

	// 样本标准差（n-1），少于 2 个样本为 0
	assert.Zero(t, StdDev([]float64{42}))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-9)
}

func TestSkewnessAndKurtosisBoundaries(t *testing.T) {
	t.Parallel()

	assert.Zero(t, Skewness([]float64{1, 2}))       // n < 3
	assert.Zero(t, Skewness([]float64{5, 5, 5}))    // 零波动
	assert.Zero(t, Kurtosis([]float64{1, 2, 3}))    // n < 4
	assert.Zero(t, Kurtosis([]float64{5, 5, 5, 5})) // 零波动

	// 对称分布的偏度为 0
	assert.InDelta(t, 0, Skewness([]float64{-2, -1, 0, 1, 2}), 1e-9)
}

func TestMaxMinPositive(t *testing.T) {
	t.Parallel()

	values := []float64{100, -50, 25}
	assert.InDelta(t, 100, Max(values), 1e-9)
	assert.InDelta(t, -50, Min(values), 1e-9)
	assert.Equal(t, []float64{100, 25}, Positive(values))
}
