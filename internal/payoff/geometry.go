// Package payoff turns a parameter map into chart geometry, one builder per structure.
// Builders are pure: no validation, no logging, no shared state.
package payoff

import (
	"fmt"

	"payoffchart/internal/model"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// Builder computes the geometry for one structure variant.
type Builder func(p model.Params) model.Geometry

const (
	yFloor             = -1.0
	yHeadroom          = 2.0
	annotationHeadroom = 0.5

	legend        = "收益结构曲线"
	xLabelExpiry  = "标的期末价格/期初价格"
	xLabelObserve = "敲出观察日价格/期初价格"
	subtitleFmt   = "业绩报酬计提基准（年化)-费率%s%%"
)

// atTheMoney is where the vertical reference line is drawn.
const atTheMoney = 100.0

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	two   = dec("2")
	three = dec("3")
)

// knot is a curve vertex kept in decimal until it is emitted.
type knot struct {
	x, y decimal.Decimal
}

func line(markers bool, knots ...knot) model.Segment {
	seg := model.Segment{Points: make([]model.Point, 0, len(knots)), Markers: markers}
	for _, k := range knots {
		seg.Points = append(seg.Points, model.Point{X: k.x.InexactFloat64(), Y: k.y.InexactFloat64()})
	}
	return seg
}

func label(x, y decimal.Decimal, text, align string) model.Annotation {
	return model.Annotation{X: x.InexactFloat64(), Y: y.InexactFloat64(), Text: text, Align: align}
}

// valueLabels prints each knot's return just above it.
func valueLabels(knots ...knot) []model.Annotation {
	lift := dec("0.1")
	out := make([]model.Annotation, 0, len(knots))
	for _, k := range knots {
		out = append(out, label(k.x, k.y.Add(lift), fixedPct(k.y, 2), model.AlignCenter))
	}
	return out
}

// pct formats an axis value with at most two decimals and no trailing zeros.
func pct(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

func fixedPct(d decimal.Decimal, places int32) string {
	return d.StringFixed(places) + "%"
}

func ticks(vals ...decimal.Decimal) []model.Tick {
	out := make([]model.Tick, 0, len(vals))
	for _, v := range vals {
		out = append(out, model.Tick{Pos: v.InexactFloat64(), Label: pct(v)})
	}
	return out
}

func titles(p model.Params, phrase string) (string, string) {
	title := fmt.Sprintf("%s%s-%s", p.Text(model.KeyMonth), phrase, p.Text(model.KeyAsset))
	return title, fmt.Sprintf(subtitleFmt, p.Text(model.KeyCost))
}

func newGeometry(v model.Variant, p model.Params, phrase, xLabel string) model.Geometry {
	title, subtitle := titles(p, phrase)
	return model.Geometry{
		Variant:  v,
		Title:    title,
		Subtitle: subtitle,
		XLabel:   xLabel,
		Legend:   legend,
		HLines:   []float64{0},
	}
}

// finish fixes the y-range: floor at -1, ceiling two points above the highest
// curve knot, pushed further up if an annotation would otherwise clip.
func finish(g model.Geometry) model.Geometry {
	var ys []float64
	for _, s := range g.Segments {
		for _, pt := range s.Points {
			ys = append(ys, pt.Y)
		}
	}
	upper := yHeadroom
	if len(ys) > 0 {
		upper = floats.Max(ys) + yHeadroom
	}

	if len(g.Annotations) > 0 {
		ay := make([]float64, len(g.Annotations))
		for i, a := range g.Annotations {
			ay[i] = a.Y
		}
		if top := floats.Max(ay); top >= upper {
			upper = top + annotationHeadroom
		}
	}

	g.YRange = [2]float64{yFloor, upper}
	return g
}
