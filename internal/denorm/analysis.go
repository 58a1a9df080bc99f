package denorm

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/stacksight/pipeline/internal/models"
)

// License-cost tiers, in display order.
var costTiers = []string{
	"Unknown",
	"Free",
	"Low (<$500)",
	"Medium ($500-$2K)",
	"High ($2K-$10K)",
	"Enterprise (>$10K)",
}

// Analyze derives the market-analysis artifact from the enriched tools:
// a cost-tier breakdown plus descriptive statistics over annual license
// cost and overall rating. Values that do not parse as numbers are
// excluded from the statistics but still count toward the Unknown tier.
func Analyze(tools []models.WebTool) models.Analysis {
	tierCounts := map[string]int{}
	var costs, ratings []float64

	for _, t := range tools {
		cost, ok := asFloat(t.Cost)
		tierCounts[costTier(cost, ok)]++
		if ok {
			costs = append(costs, cost)
		}
		if rating, ok := asFloat(t.Rating); ok {
			ratings = append(ratings, rating)
		}
	}

	tiers := make([]models.TierCount, 0, len(costTiers))
	for _, tier := range costTiers {
		tiers = append(tiers, models.TierCount{Tier: tier, Count: tierCounts[tier]})
	}

	return models.Analysis{
		CostTiers: tiers,
		Cost:      describe(costs),
		Rating:    describe(ratings),
	}
}

func costTier(cost float64, known bool) string {
	switch {
	case !known:
		return "Unknown"
	case cost == 0:
		return "Free"
	case cost < 500:
		return "Low (<$500)"
	case cost < 2000:
		return "Medium ($500-$2K)"
	case cost < 10000:
		return "High ($2K-$10K)"
	default:
		return "Enterprise (>$10K)"
	}
}

// describe computes descriptive statistics over the values, or nil when
// there are none.
func describe(values []float64) *models.FieldStats {
	if len(values) == 0 {
		return nil
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	var variance float64
	if len(sorted) > 1 {
		for _, v := range sorted {
			variance += (v - mean) * (v - mean)
		}
		variance /= float64(len(sorted) - 1)
	}

	return &models.FieldStats{
		Count:  len(sorted),
		Mean:   mean,
		Median: quantile(sorted, 0.5),
		StdDev: math.Sqrt(variance),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    quantile(sorted, 0.25),
		Q75:    quantile(sorted, 0.75),
	}
}

// quantile linearly interpolates the q-quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// asFloat coerces the numeric shapes Baserow emits: JSON numbers and
// numeric strings like "1200.00".
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
