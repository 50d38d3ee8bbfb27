package features

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// weiExponent is the number of fractional digits of the native asset.
const weiExponent = 18

// valueStats is the min/max/avg triple of a value subset.
type valueStats struct {
	Min float64
	Max float64
	Avg float64
}

// computeStats returns min/max/avg of values. An empty input yields all zeros.
func computeStats(values []float64) valueStats {
	if len(values) == 0 {
		return valueStats{}
	}
	stats := valueStats{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Avg = computeSum(values) / float64(len(values))
	// Float rounding of the mean must not leave the [min, max] range.
	if stats.Avg < stats.Min {
		stats.Avg = stats.Min
	}
	if stats.Avg > stats.Max {
		stats.Avg = stats.Max
	}
	return stats
}

func computeSum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

// avgGapMinutes sorts timestamps ascending and returns the mean difference
// between consecutive entries in minutes. Fewer than two timestamps yield 0.
func avgGapMinutes(timestamps []time.Time) float64 {
	if len(timestamps) < 2 {
		return 0
	}
	sorted := make([]time.Time, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})

	total := 0.0
	for i := 1; i < len(sorted); i++ {
		total += sorted[i].Sub(sorted[i-1]).Minutes()
	}
	return total / float64(len(sorted)-1)
}

// spanMinutes returns the minutes between the earliest and latest timestamp.
func spanMinutes(timestamps []time.Time) float64 {
	if len(timestamps) < 2 {
		return 0
	}
	first, last := timestamps[0], timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	return last.Sub(first).Minutes()
}

// uniqueAddresses counts distinct non-empty addresses, case-insensitively.
func uniqueAddresses(addresses []string) int {
	seen := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		if a == "" {
			continue
		}
		seen[strings.ToLower(a)] = struct{}{}
	}
	return len(seen)
}

// uniqueValues counts distinct non-empty values.
func uniqueValues(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}

// mostCommon returns the most frequent non-empty value. Ties resolve to the
// value seen first; nil when every value is empty.
func mostCommon(values []string) *string {
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	var best string
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best, bestCount = v, counts[v]
		}
	}
	if bestCount == 0 {
		return nil
	}
	return &best
}

// toEther converts a wei decimal string to ether. Empty or malformed input is 0.
func toEther(wei string) float64 {
	return scaleDown(wei, weiExponent)
}

// scaleDown divides a raw integer string by 10^decimals.
func scaleDown(raw string, decimals int) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	return d.Shift(-int32(decimals)).InexactFloat64()
}
