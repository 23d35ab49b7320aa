// Package liquidity builds a volume-by-price heatmap from candle history
// and derives the support/resistance zones nearest to the current price.
package liquidity

import (
	"math"
	"sort"

	"crypto-signal-engine/internal/market"
)

// DefaultBucketCount is the standard heatmap resolution.
const DefaultBucketCount = 24

// Node is one price bucket of the heatmap. Intensity is the bucket volume
// as a percentage of the strongest bucket.
type Node struct {
	Low       float64 `json:"low"`
	High      float64 `json:"high"`
	Center    float64 `json:"center"`
	Intensity float64 `json:"intensity"`
	Volume    float64 `json:"volume"`
}

// Heatmap is the aggregated volume-by-price picture for a candle window.
// SupportZones centers sit at or below the current price, ResistanceZones
// at or above, both ordered nearest-first.
type Heatmap struct {
	MinPrice        float64 `json:"minPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	BucketCount     int     `json:"bucketCount"`
	Hotspots        []Node  `json:"hotspots"`
	SupportZones    []Node  `json:"supportZones"`
	ResistanceZones []Node  `json:"resistanceZones"`
}

// Build buckets candle volume into bucketCount equal-width price bins. Each
// candle's volume is spread evenly over every bucket its low..high range
// touches. Returns nil when the series is empty or has zero price range.
func Build(candles []market.Candle, currentPrice float64, bucketCount int) *Heatmap {
	if len(candles) == 0 || bucketCount <= 0 {
		return nil
	}

	minPrice := candles[0].Low
	maxPrice := candles[0].High
	for _, c := range candles[1:] {
		if c.Low < minPrice {
			minPrice = c.Low
		}
		if c.High > maxPrice {
			maxPrice = c.High
		}
	}
	priceRange := maxPrice - minPrice
	if priceRange <= 0 {
		return nil
	}

	bucketSize := priceRange / float64(bucketCount)
	volumes := make([]float64, bucketCount)
	for _, c := range candles {
		start := clampIndex(int(math.Floor((c.Low-minPrice)/bucketSize)), bucketCount)
		end := clampIndex(int(math.Floor((c.High-minPrice)/bucketSize)), bucketCount)
		spread := end - start + 1
		if spread < 1 {
			spread = 1
		}
		share := c.Volume / float64(spread)
		for i := start; i <= end; i++ {
			volumes[i] += share
		}
	}

	maxVolume := 1.0
	for _, v := range volumes {
		if v > maxVolume {
			maxVolume = v
		}
	}

	nodes := make([]Node, bucketCount)
	for i := range nodes {
		low := minPrice + float64(i)*bucketSize
		high := low + bucketSize
		nodes[i] = Node{
			Low:       low,
			High:      high,
			Center:    (low + high) / 2,
			Intensity: volumes[i] / maxVolume * 100,
			Volume:    volumes[i],
		}
	}

	hotspots := make([]Node, len(nodes))
	copy(hotspots, nodes)
	sort.SliceStable(hotspots, func(i, j int) bool { return hotspots[i].Volume > hotspots[j].Volume })
	if len(hotspots) > 8 {
		hotspots = hotspots[:8]
	}
	sort.SliceStable(hotspots, func(i, j int) bool { return hotspots[i].Center < hotspots[j].Center })

	var support, resistance []Node
	for _, h := range hotspots {
		if h.Center <= currentPrice {
			support = append(support, h)
		}
		if h.Center >= currentPrice {
			resistance = append(resistance, h)
		}
	}
	sort.SliceStable(support, func(i, j int) bool { return support[i].Center > support[j].Center })
	if len(support) > 3 {
		support = support[:3]
	}
	// resistance is already ascending by center, nearest first
	if len(resistance) > 3 {
		resistance = resistance[:3]
	}

	return &Heatmap{
		MinPrice:        minPrice,
		MaxPrice:        maxPrice,
		BucketCount:     bucketCount,
		Hotspots:        hotspots,
		SupportZones:    support,
		ResistanceZones: resistance,
	}
}

func clampIndex(i, bucketCount int) int {
	if i < 0 {
		return 0
	}
	if i > bucketCount-1 {
		return bucketCount - 1
	}
	return i
}
