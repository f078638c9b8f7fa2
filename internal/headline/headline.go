// Package headline turns raw (text, link) pairs into ranked-ready records
// with synthetic popularity metrics.
package headline

import (
	"math"
	"strings"
)

const (
	MinViews  = 1_000_000
	MaxViews  = 10_000_000
	MinRating = 0.5
	MaxRating = 5.0
	MinTag    = 10
	MaxTag    = 10_000

	// StarCount is the number of glyph positions in every star rendering.
	StarCount = 5
)

const (
	FullStar  = "★"
	HalfStar  = "½"
	EmptyStar = "☆"
)

// RawItem is a single extracted headline before metrics are attached.
type RawItem struct {
	Text string
	Link string
}

// Record is a headline with its synthetic metrics. Records are values;
// a re-fetch produces new records rather than updating old ones.
type Record struct {
	Text   string  `json:"text"`
	Link   string  `json:"link"`
	Views  int     `json:"views"`
	Rating float64 `json:"rating"`
	Stars  string  `json:"stars"`
	Tag    int     `json:"tag"`
}

// Rand is the subset of *math/rand/v2.Rand the synthesizer draws from.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Synthesize attaches metrics to every item, preserving order and length.
// It never filters; empty input yields an empty, non-nil slice.
func Synthesize(rng Rand, items []RawItem) []Record {
	out := make([]Record, 0, len(items))
	for _, it := range items {
		views := randInt(rng, MinViews, MaxViews)
		rating := roundTenth(MinRating + rng.Float64()*(MaxRating-MinRating))
		tag := randInt(rng, MinTag, MaxTag)
		out = append(out, Record{
			Text:   it.Text,
			Link:   it.Link,
			Views:  views,
			Rating: rating,
			Stars:  Stars(rating),
			Tag:    tag,
		})
	}
	return out
}

// Stars renders a rating as exactly five glyphs: full stars, at most one
// half star, then empty stars. Ratings outside [0, 5] are clamped.
func Stars(rating float64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > StarCount {
		rating = StarCount
	}
	full := int(math.Floor(rating))
	half := 0
	// Ratings are rounded to tenths, so compare with a small tolerance to
	// keep 2.5 from landing just below the threshold.
	if rating-float64(full) >= 0.5-1e-9 {
		half = 1
	}
	empty := StarCount - full - half

	var b strings.Builder
	b.WriteString(strings.Repeat(FullStar, full))
	b.WriteString(strings.Repeat(HalfStar, half))
	b.WriteString(strings.Repeat(EmptyStar, empty))
	return b.String()
}

// randInt returns a uniform integer in [lo, hi], inclusive.
func randInt(rng Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

func roundTenth(f float64) float64 {
	r := math.Round(f*10) / 10
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}
