package stats

import (
	"math"
	"sort"
)

func Sum(s []float64) float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

func Mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	return Sum(s) / float64(len(s))
}

// Median 中位数，输入为空时返回 0
func Median(s []float64) float64 {
	n := len(s)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, s)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev 样本标准差（n-1），样本数不足 2 时返回 0
func StdDev(s []float64) float64 {
	n := len(s)
	if n < 2 {
		return 0
	}
	mean := Mean(s)
	var variance float64
	for _, v := range s {
		variance += math.Pow(v-mean, 2)
	}
	variance /= float64(n - 1)
	return math.Sqrt(variance)
}

// Skewness 偏度（三阶标准化矩），样本数不足 3 或标准差为 0 时返回 0
func Skewness(s []float64) float64 {
	n := len(s)
	if n < 3 {
		return 0
	}
	mean := Mean(s)
	std := StdDev(s)
	if std == 0 {
		return 0
	}
	var skew float64
	for _, v := range s {
		skew += math.Pow((v-mean)/std, 3)
	}
	return skew / float64(n)
}

// Kurtosis 超额峰度（四阶标准化矩减 3），样本数不足 4 或标准差为 0 时返回 0
func Kurtosis(s []float64) float64 {
	n := len(s)
	if n < 4 {
		return 0
	}
	mean := Mean(s)
	std := StdDev(s)
	if std == 0 {
		return 0
	}
	var kurt float64
	for _, v := range s {
		kurt += math.Pow((v-mean)/std, 4)
	}
	return kurt/float64(n) - 3
}

func Max(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	maxVal := s[0]
	for _, v := range s {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

func Min(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	minVal := s[0]
	for _, v := range s {
		if v < minVal {
			minVal = v
		}
	}
	return minVal
}

// Positive 过滤出大于 0 的值
func Positive(s []float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v > 0 {
			out = append(out, v)
		}
	}
	return out
}
