package payoff

import (
	"payoffchart/internal/model"

	"github.com/shopspring/decimal"
)

const (
	callSingleBarrier = "美式看涨单鲨（每日观察）"
	callSpread        = "欧式看涨价差（期末观察一次）"
	putSingleBarrier  = "美式看跌单鲨（每日观察）"
	putSpread         = "欧式看跌价差（期末观察一次）"
)

type sharkfinTerms struct {
	strike, knockOut, participation decimal.Decimal
	minRet, maxRet, knockRet        decimal.Decimal
	single                          bool
}

func sharkfinFrom(p model.Params) sharkfinTerms {
	return sharkfinTerms{
		strike:        p.Num(model.KeyStrike),
		knockOut:      p.Num(model.KeyKnockOut),
		participation: p.Num(model.KeyParticipationRate),
		minRet:        p.Num(model.KeyMinRet),
		maxRet:        p.Num(model.KeyMaxRet),
		knockRet:      p.Num(model.KeyKnockRet),
		single:        p.Text(model.KeyType) == model.TypeSingleBarrier,
	}
}

func participationLabel(rate decimal.Decimal, places int32) string {
	return "参与率" + fixedPct(rate, places)
}

func knockoutLabel(ret decimal.Decimal) string {
	return "敲出" + fixedPct(ret, 2)
}

// SharkfinCall draws a floor up to the strike, a participation ramp up to the
// knock-out barrier, and a flat rebate beyond it.
func SharkfinCall(p model.Params) model.Geometry {
	t := sharkfinFrom(p)
	phrase := callSpread
	if t.single {
		phrase = callSingleBarrier
	}
	g := newGeometry(model.SharkfinCall, p, phrase, xLabelExpiry)
	g.VLines = []float64{atTheMoney}

	ramp := []knot{
		{t.strike.Mul(dec("0.9")), t.minRet},
		{t.strike, t.minRet},
		{t.knockOut, t.maxRet},
	}
	rebate := []knot{
		{t.knockOut, t.knockRet},
		{t.knockOut.Mul(dec("1.05")), t.knockRet},
	}
	g.Segments = []model.Segment{line(true, ramp...), line(true, rebate...)}

	g.Annotations = valueLabels(ramp...)
	g.Annotations = append(g.Annotations, label(
		t.strike.Add(t.knockOut).Div(two).Sub(dec("0.5")),
		t.maxRet.Div(two).Add(dec("0.2")),
		participationLabel(t.participation, 1), model.AlignLeft,
	))
	if t.single {
		g.Annotations = append(g.Annotations, label(
			t.knockOut.Mul(dec("1.01")),
			t.knockRet.Add(dec("0.3")),
			knockoutLabel(t.knockRet), model.AlignLeft,
		))
	}

	g.XTicks = ticks(t.strike, t.knockOut)
	g.YTicks = ticks(t.minRet, t.maxRet)
	return finish(g)
}

// SharkfinPut mirrors SharkfinCall: rebate below the knock-out barrier, a ramp
// from the barrier down to the strike, and a floor above the strike.
func SharkfinPut(p model.Params) model.Geometry {
	t := sharkfinFrom(p)
	phrase := putSpread
	if t.single {
		phrase = putSingleBarrier
	}
	g := newGeometry(model.SharkfinPut, p, phrase, xLabelExpiry)
	g.VLines = []float64{atTheMoney}

	floorEnd := t.strike.Mul(dec("1.1"))
	g.Segments = []model.Segment{
		line(true, knot{t.knockOut.Mul(dec("0.9")), t.knockRet}, knot{t.knockOut, t.knockRet}),
		line(true, knot{t.knockOut, t.maxRet}, knot{t.strike, t.minRet}),
		line(true, knot{t.strike, t.minRet}, knot{floorEnd, t.minRet}),
	}

	g.Annotations = valueLabels(
		knot{t.knockOut, t.maxRet},
		knot{t.strike, t.minRet},
		knot{floorEnd, t.minRet},
	)
	g.Annotations = append(g.Annotations, label(
		t.strike.Add(t.knockOut).Div(two),
		t.maxRet.Mul(two).Div(three),
		participationLabel(t.participation, 1), model.AlignLeft,
	))
	if t.single {
		g.Annotations = append(g.Annotations, label(
			t.knockOut.Mul(dec("0.95")),
			t.knockRet.Mul(dec("1.1")),
			knockoutLabel(t.knockRet), model.AlignLeft,
		))
	}

	g.XTicks = ticks(t.strike, t.knockOut)
	g.YTicks = ticks(t.minRet, t.maxRet)
	return finish(g)
}
