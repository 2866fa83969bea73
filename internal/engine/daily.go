package engine

import (
	"context"
	"time"

	"github.com/roach88/stellium/internal/astro"
)

// TransitPlacement describes one transiting body on a given day.
type TransitPlacement struct {
	Body       astro.Body      `json:"body"`
	Longitude  float64         `json:"longitude"`
	Sign       astro.Sign      `json:"sign"`
	Degree     float64         `json:"degree"`
	Speed      float64         `json:"speed"`
	Retrograde bool            `json:"retrograde"`
	NatalHouse int             `json:"natal_house,omitempty"`
	LifeArea   *astro.LifeArea `json:"life_area,omitempty"`
}

// DailyTransits is the sky at one instant, optionally related to a chart.
type DailyTransits struct {
	Time       time.Time          `json:"time"`
	ChartName  string             `json:"chart_name,omitempty"`
	Placements []TransitPlacement `json:"placements"`
	Aspects    []astro.Aspect     `json:"aspects"`
	Phase      astro.LunarPhase   `json:"phase"`
}

// ComputeDailyTransits returns where every body is at t. With a natal chart
// each placement gets the natal house it falls in and transit-to-natal
// aspects are listed.
func ComputeDailyTransits(ctx context.Context, positions PositionProvider, t time.Time, natal *astro.NatalChart, opts AspectOptions) (*DailyTransits, error) {
	sky, err := Snapshot(ctx, positions, t, astro.AllBodies)
	if err != nil {
		return nil, err
	}

	out := &DailyTransits{
		Time:       t,
		Placements: make([]TransitPlacement, 0, len(sky)),
		Aspects:    []astro.Aspect{},
		Phase:      LunarPhaseOf(sky[astro.Sun], sky[astro.Moon]),
	}

	var houses map[astro.Body]int
	if natal != nil {
		out.ChartName = natal.Name
		houses, err = PlaceAll(sky, natal.Cusps)
		if err != nil {
			return nil, NewDerivationError("chart "+natal.Name+" has invalid cusps", err)
		}
		opts.FixedB = true
		out.Aspects = ComputeAspects(sky, natal.Positions, opts)
	}

	for _, body := range sky.Bodies() {
		pos := sky[body]
		pl := TransitPlacement{
			Body:       body,
			Longitude:  pos.Longitude,
			Sign:       pos.Sign(),
			Degree:     astro.DegreeInSign(pos.Longitude),
			Speed:      pos.Speed,
			Retrograde: pos.Retrograde(),
		}
		if house, ok := houses[body]; ok {
			pl.NatalHouse = house
			if area, ok := astro.LifeAreaOf(house); ok {
				pl.LifeArea = &area
			}
		}
		out.Placements = append(out.Placements, pl)
	}
	return out, nil
}
