package insights

import (
	"math"
	"sort"
)

// ColumnStats holds descriptive statistics of a numeric column. Mean and
// StdDev are rounded to two decimals; Min and Max are the raw extremes.
type ColumnStats struct {
	Header       string  `json:"header"`
	Count        int     `json:"count"`
	Mean         float64 `json:"mean"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	StdDev       float64 `json:"stdDev"`
	OutlierCount int     `json:"outlierCount"`
}

// AnalyzeNumeric computes stats for every header holding at least one
// number, sorted by mean descending. Equal means keep header order.
//
// Variance is the population variance. A value is an outlier when its
// z-score exceeds 2 in absolute value; the z-score uses the unrounded mean
// and standard deviation, and no value is an outlier when the deviation
// is zero.
func AnalyzeNumeric(t *Table) []ColumnStats {
	var out []ColumnStats
	for i, h := range t.Headers {
		nums := numbers(t, i)
		if len(nums) == 0 {
			continue
		}
		out = append(out, describe(h, nums))
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Mean > out[b].Mean })
	return out
}

func numbers(t *Table, col int) []float64 {
	var nums []float64
	for _, row := range t.Rows {
		if v, ok := row[col].Float(); ok {
			nums = append(nums, v)
		}
	}
	return nums
}

func describe(header string, nums []float64) ColumnStats {
	var sum float64
	lo, hi := nums[0], nums[0]
	for _, v := range nums {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean := sum / float64(len(nums))

	var sq float64
	for _, v := range nums {
		sq += (v - mean) * (v - mean)
	}
	stdDev := math.Sqrt(sq / float64(len(nums)))

	outliers := 0
	if stdDev > 0 {
		for _, v := range nums {
			if math.Abs((v-mean)/stdDev) > 2 {
				outliers++
			}
		}
	}

	return ColumnStats{
		Header:       header,
		Count:        len(nums),
		Mean:         round(mean, 2),
		Min:          lo,
		Max:          hi,
		StdDev:       round(stdDev, 2),
		OutlierCount: outliers,
	}
}

// TotalOutliers sums outlier counts over all numeric columns.
func TotalOutliers(stats []ColumnStats) int {
	n := 0
	for _, s := range stats {
		n += s.OutlierCount
	}
	return n
}
