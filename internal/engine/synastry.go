package engine

import "github.com/roach88/stellium/internal/astro"

// Classification assigns a nature to each aspect type.
type Classification map[astro.AspectType]astro.Nature

// DefaultClassification treats conjunctions, sextiles, trines and
// semi-sextiles as harmonious and every square-, opposition- or
// quincunx-family aspect as challenging.
func DefaultClassification() Classification {
	return Classification{
		astro.Conjunction:    astro.Harmonious,
		astro.Sextile:        astro.Harmonious,
		astro.Trine:          astro.Harmonious,
		astro.SemiSextile:    astro.Harmonious,
		astro.Square:         astro.Challenging,
		astro.Opposition:     astro.Challenging,
		astro.SemiSquare:     astro.Challenging,
		astro.Sesquiquadrate: astro.Challenging,
		astro.Quincunx:       astro.Challenging,
	}
}

var defaultClassification = DefaultClassification()

// SynastryOptions tune chart comparison.
type SynastryOptions struct {
	Aspects AspectOptions

	// Classify overrides DefaultClassification per aspect type.
	Classify Classification
}

// NatureOf returns the configured nature of an aspect type.
func (o SynastryOptions) NatureOf(t astro.AspectType) astro.Nature {
	if n, ok := o.Classify[t]; ok {
		return n
	}
	return defaultClassification[t]
}

// Overlay places each chart's bodies in the other chart's houses.
type Overlay struct {
	AInB map[astro.Body]int `json:"a_in_b"`
	BInA map[astro.Body]int `json:"b_in_a"`
}

// SynastrySummary counts aspects by nature and type.
type SynastrySummary struct {
	Total       int                      `json:"total"`
	Harmonious  int                      `json:"harmonious"`
	Challenging int                      `json:"challenging"`
	Counts      map[astro.AspectType]int `json:"counts"`
}

// Synastry is the comparison of two natal charts.
type Synastry struct {
	ChartA       astro.ChartSummary `json:"chart_a"`
	ChartB       astro.ChartSummary `json:"chart_b"`
	Aspects      []astro.Aspect     `json:"aspects"`
	ExactAspects []astro.Aspect     `json:"exact_aspects"`
	Overlay      Overlay            `json:"overlay"`
	Summary      SynastrySummary    `json:"summary"`
}

// Compare builds the synastry grid between a and b: cross aspects with A's
// bodies first, house overlays in both directions, the exact subset and
// harmonious/challenging totals.
func Compare(a, b *astro.NatalChart, opts SynastryOptions) (*Synastry, error) {
	if a == nil || b == nil {
		return nil, NewInvalidChartError("two charts are required", nil)
	}

	aInB, err := PlaceAll(a.Positions, b.Cusps)
	if err != nil {
		return nil, NewDerivationError("chart "+b.Name+" has invalid cusps", err)
	}
	bInA, err := PlaceAll(b.Positions, a.Cusps)
	if err != nil {
		return nil, NewDerivationError("chart "+a.Name+" has invalid cusps", err)
	}

	aspects := ComputeAspects(a.Positions, b.Positions, opts.Aspects)
	out := &Synastry{
		ChartA:       a.Summary(),
		ChartB:       b.Summary(),
		Aspects:      aspects,
		ExactAspects: []astro.Aspect{},
		Overlay:      Overlay{AInB: aInB, BInA: bInA},
		Summary: SynastrySummary{
			Total:  len(aspects),
			Counts: map[astro.AspectType]int{},
		},
	}
	for _, asp := range aspects {
		if asp.Exact {
			out.ExactAspects = append(out.ExactAspects, asp)
		}
		out.Summary.Counts[asp.Type]++
		switch opts.NatureOf(asp.Type) {
		case astro.Harmonious:
			out.Summary.Harmonious++
		case astro.Challenging:
			out.Summary.Challenging++
		}
	}
	return out, nil
}
