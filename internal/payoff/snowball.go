package payoff

import (
	"payoffchart/internal/model"
)

const (
	snowballPhrase     = "三元小雪球（每月观察敲出）"
	callKnockoutPhrase = "看涨敲出（期末观察一次）"
)

// Snowball3Leg draws three flat legs: knocked in, neither in nor out, knocked out.
func Snowball3Leg(p model.Params) model.Geometry {
	knockIn, knockOut := p.Num(model.KeyKnockIn), p.Num(model.KeyKnockOut)
	ret1, ret2, ret3 := p.Num(model.KeyRet1), p.Num(model.KeyRet2), p.Num(model.KeyRet3)

	g := newGeometry(model.Snowball3Leg, p, snowballPhrase, xLabelObserve)
	g.Segments = []model.Segment{
		line(true, knot{knockIn.Mul(dec("0.8")), ret1}, knot{knockIn, ret1}),
		line(true, knot{knockIn, ret2}, knot{knockOut, ret2}),
		line(true, knot{knockOut, ret3}, knot{knockOut.Mul(dec("1.2")), ret3}),
	}

	above := dec("0.5")
	g.Annotations = []model.Annotation{
		label(knockIn.Mul(dec("0.8")), ret1.Add(above), "保底收益"+fixedPct(ret1, 2), model.AlignLeft),
		label(knockIn.Add(three), ret2.Add(above), "未敲入未敲出收益"+fixedPct(ret2, 2), model.AlignLeft),
		label(knockOut.Mul(dec("1.05")), ret3.Add(above), "敲出收益"+fixedPct(ret3, 2), model.AlignLeft),
	}

	g.XTicks = ticks(knockIn, knockOut)
	g.YTicks = ticks(ret1, ret2, ret3)
	return finish(g)
}

// CallKnockout2Leg draws a flat leg up to the knock-out level and a flat
// knocked-out leg above it.
func CallKnockout2Leg(p model.Params) model.Geometry {
	knockIn, knockOut := p.Num(model.KeyKnockIn), p.Num(model.KeyKnockOut)
	ret1, ret3 := p.Num(model.KeyRet1), p.Num(model.KeyRet3)

	g := newGeometry(model.CallKnockout2Leg, p, callKnockoutPhrase, xLabelObserve)
	g.Segments = []model.Segment{
		line(true, knot{knockIn.Mul(dec("0.9")), ret1}, knot{knockOut, ret1}),
		line(true, knot{knockOut, ret3}, knot{knockOut.Mul(dec("1.2")), ret3}),
	}

	above := dec("0.5")
	g.Annotations = []model.Annotation{
		label(knockIn.Mul(dec("0.95")), ret1.Add(above), "未敲出收益"+fixedPct(ret1, 2), model.AlignLeft),
		label(knockOut.Mul(dec("1.05")), ret3.Add(above), "敲出收益"+fixedPct(ret3, 2), model.AlignLeft),
	}

	g.XTicks = ticks(knockOut)
	g.YTicks = ticks(ret1, ret3)
	return finish(g)
}
