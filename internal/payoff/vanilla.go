package payoff

import (
	"payoffchart/internal/model"
)

const vanillaPhrase = "看涨香草"

// VanillaCall draws the floor below the strike and the participation ramp
// above it. The ramp is anchored at the 110% and 115% probe levels.
func VanillaCall(p model.Params) model.Geometry {
	strike := p.Num(model.KeyStrike)
	rate := p.Num(model.KeyParticipationRate)
	minRet := p.Num(model.KeyMinRet)

	rise1, rise2 := dec("1.1"), dec("1.15")
	one := dec("1")
	ret1 := minRet.Add(rate.Mul(rise1.Sub(one)))
	ret2 := minRet.Add(rate.Mul(rise2.Sub(one)))

	g := newGeometry(model.VanillaCall, p, vanillaPhrase, xLabelExpiry)
	g.VLines = []float64{atTheMoney}

	floor := []knot{{strike.Mul(dec("0.9")), minRet}, {strike, minRet}}
	g.Segments = []model.Segment{
		line(true, floor...),
		line(false, knot{strike, minRet}, knot{strike.Mul(rise1), ret1}, knot{strike.Mul(rise2), ret2}),
	}

	g.Annotations = valueLabels(floor...)
	g.Annotations = append(g.Annotations, label(
		strike.Add(strike.Mul(rise2)).Div(two),
		ret2.Div(two),
		participationLabel(rate, 2), model.AlignLeft,
	))

	g.XTicks = ticks(strike)
	g.YTicks = ticks(minRet)
	return finish(g)
}
