package payoff_test

import (
	"strings"
	"testing"

	"payoffchart/internal/model"
	"payoffchart/internal/payoff"
	"payoffchart/internal/structure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults(t *testing.T, v model.Variant) model.Params {
	t.Helper()
	p := structure.New().DefaultsFor(v)
	require.NotNil(t, p)
	return p
}

func points(pts ...float64) []model.Point {
	out := make([]model.Point, 0, len(pts)/2)
	for i := 0; i+1 < len(pts); i += 2 {
		out = append(out, model.Point{X: pts[i], Y: pts[i+1]})
	}
	return out
}

func texts(g model.Geometry) []string {
	var out []string
	for _, a := range g.Annotations {
		out = append(out, a.Text)
	}
	return out
}

func TestSharkfinCall_Defaults(t *testing.T) {
	g := payoff.SharkfinCall(defaults(t, model.SharkfinCall))

	require.Len(t, g.Segments, 2)
	assert.Equal(t, points(91.8, 1.8, 102, 1.8, 108, 4.38), g.Segments[0].Points)
	assert.Equal(t, points(108, 1.8, 113.4, 1.8), g.Segments[1].Points)
	assert.Equal(t, -1.0, g.YRange[0])
	assert.InDelta(t, 6.38, g.YRange[1], 1e-9)

	assert.Equal(t, []model.Tick{{Pos: 102, Label: "102%"}, {Pos: 108, Label: "108%"}}, g.XTicks)
	assert.Equal(t, []model.Tick{{Pos: 1.8, Label: "1.8%"}, {Pos: 4.38, Label: "4.38%"}}, g.YTicks)

	assert.Equal(t, "2025-07美式看涨单鲨（每日观察）-沪深300指数", g.Title)
	assert.Equal(t, "业绩报酬计提基准（年化)-费率0.42%", g.Subtitle)
	assert.Equal(t, []float64{100}, g.VLines)
	assert.Equal(t, []float64{0}, g.HLines)

	assert.Equal(t, []string{"1.80%", "1.80%", "4.38%", "参与率49.2%", "敲出1.80%"}, texts(g))
	ann := g.Annotations[3]
	assert.InDelta(t, 104.5, ann.X, 1e-9)
	assert.InDelta(t, 2.39, ann.Y, 1e-9)
}

func TestSharkfinCall_SpreadDropsKnockoutLabel(t *testing.T) {
	p := defaults(t, model.SharkfinCall)
	p[model.KeyType] = model.Choice(model.TypeSpread)

	g := payoff.SharkfinCall(p)
	assert.Equal(t, "2025-07欧式看涨价差（期末观察一次）-沪深300指数", g.Title)
	for _, s := range texts(g) {
		assert.False(t, strings.HasPrefix(s, "敲出"), "unexpected label %q", s)
	}
	// Curve shape does not depend on the type.
	single := payoff.SharkfinCall(defaults(t, model.SharkfinCall))
	assert.Equal(t, single.Segments, g.Segments)
}

func TestSharkfinPut_Defaults(t *testing.T) {
	g := payoff.SharkfinPut(defaults(t, model.SharkfinPut))

	require.Len(t, g.Segments, 3)
	assert.Equal(t, points(81, 2.25, 90, 2.25), g.Segments[0].Points)
	assert.Equal(t, points(90, 5.2, 100, 1), g.Segments[1].Points)
	assert.Equal(t, points(100, 1, 110, 1), g.Segments[2].Points)
	assert.InDelta(t, 7.2, g.YRange[1], 1e-9)
	assert.Equal(t, "3M美式看跌单鲨（每日观察）-黄金现货9999", g.Title)
	assert.Contains(t, texts(g), "参与率42.0%")
	assert.Contains(t, texts(g), "敲出2.25%")

	p := defaults(t, model.SharkfinPut)
	p[model.KeyType] = model.Choice(model.TypeSpread)
	spread := payoff.SharkfinPut(p)
	assert.Equal(t, "3M欧式看跌价差（期末观察一次）-黄金现货9999", spread.Title)
	assert.NotContains(t, texts(spread), "敲出2.25%")
}

func TestSnowball3Leg_Defaults(t *testing.T) {
	g := payoff.Snowball3Leg(defaults(t, model.Snowball3Leg))

	require.Len(t, g.Segments, 3)
	assert.Equal(t, points(64, 0.2, 80, 0.2), g.Segments[0].Points)
	assert.Equal(t, points(80, 4, 100, 4), g.Segments[1].Points)
	assert.Equal(t, points(100, 4.2, 120, 4.2), g.Segments[2].Points)
	assert.InDelta(t, 6.2, g.YRange[1], 1e-9)

	assert.Equal(t, []string{"保底收益0.20%", "未敲入未敲出收益4.00%", "敲出收益4.20%"}, texts(g))
	assert.Equal(t, []model.Tick{{Pos: 80, Label: "80%"}, {Pos: 100, Label: "100%"}}, g.XTicks)
	assert.Len(t, g.YTicks, 3)
	assert.Empty(t, g.VLines)
	assert.Equal(t, "敲出观察日价格/期初价格", g.XLabel)
	assert.Equal(t, "24M三元小雪球（每月观察敲出）-中证1000", g.Title)
}

func TestCallKnockout2Leg_Defaults(t *testing.T) {
	g := payoff.CallKnockout2Leg(defaults(t, model.CallKnockout2Leg))

	require.Len(t, g.Segments, 2)
	assert.Equal(t, points(90, 0.2, 101, 0.2), g.Segments[0].Points)
	assert.Equal(t, points(101, 4.15, 121.2, 4.15), g.Segments[1].Points)
	assert.Equal(t, []model.Tick{{Pos: 101, Label: "101%"}}, g.XTicks)
	assert.Equal(t, []model.Tick{{Pos: 0.2, Label: "0.2%"}, {Pos: 4.15, Label: "4.15%"}}, g.YTicks)
	assert.Equal(t, "业绩报酬计提基准（年化)-费率0.22%", g.Subtitle)
}

func TestVanillaCall_Defaults(t *testing.T) {
	g := payoff.VanillaCall(defaults(t, model.VanillaCall))

	require.Len(t, g.Segments, 2)
	assert.Equal(t, points(90, 0.05, 100, 0.05), g.Segments[0].Points)
	assert.True(t, g.Segments[0].Markers)
	assert.Equal(t, points(100, 0.05, 110, 3.75, 115, 5.6), g.Segments[1].Points)
	assert.False(t, g.Segments[1].Markers)
	assert.InDelta(t, 7.6, g.YRange[1], 1e-9)
	assert.Equal(t, []model.Tick{{Pos: 100, Label: "100%"}}, g.XTicks)
	assert.Equal(t, []model.Tick{{Pos: 0.05, Label: "0.05%"}}, g.YTicks)
	assert.Contains(t, texts(g), "参与率37.00%")
	assert.Equal(t, "10M看涨香草-中证1000", g.Title)
}

var builders = map[model.Variant]payoff.Builder{
	model.SharkfinCall:     payoff.SharkfinCall,
	model.SharkfinPut:      payoff.SharkfinPut,
	model.Snowball3Leg:     payoff.Snowball3Leg,
	model.CallKnockout2Leg: payoff.CallKnockout2Leg,
	model.VanillaCall:      payoff.VanillaCall,
}

func TestBuilders_Idempotent(t *testing.T) {
	for v, build := range builders {
		t.Run(string(v), func(t *testing.T) {
			p := defaults(t, v)
			before := p.Clone()
			assert.Equal(t, build(p), build(p))
			assert.Equal(t, before, p, "builder must not mutate params")
		})
	}
}

func TestBuilders_SegmentsDrawLeftToRight(t *testing.T) {
	for v, build := range builders {
		t.Run(string(v), func(t *testing.T) {
			g := build(defaults(t, v))
			for i, s := range g.Segments {
				for j := 1; j < len(s.Points); j++ {
					assert.LessOrEqual(t, s.Points[j-1].X, s.Points[j].X, "segment %d point %d", i, j)
				}
			}
		})
	}
}

func TestBuilders_YRangeClearsEverything(t *testing.T) {
	highRebate := defaults(t, model.SharkfinPut)
	highRebate[model.KeyKnockRet] = model.Num("40")
	highRebate[model.KeyMaxRet] = model.Num("3")

	cases := map[string]struct {
		build payoff.Builder
		p     model.Params
	}{
		"put with rebate above max": {payoff.SharkfinPut, highRebate},
	}
	for v, build := range builders {
		cases[string(v)] = struct {
			build payoff.Builder
			p     model.Params
		}{build, defaults(t, v)}
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			g := tc.build(tc.p)
			assert.Equal(t, -1.0, g.YRange[0])
			for _, s := range g.Segments {
				for _, pt := range s.Points {
					assert.Greater(t, g.YRange[1], pt.Y)
				}
			}
			for _, a := range g.Annotations {
				assert.Greater(t, g.YRange[1], a.Y, a.Text)
			}
		})
	}
}

func TestBuilders_InvertedTermsAreDrawnAsIs(t *testing.T) {
	p := defaults(t, model.SharkfinCall)
	p[model.KeyStrike] = model.Num("110")
	p[model.KeyKnockOut] = model.Num("100")

	g := payoff.SharkfinCall(p)
	require.Len(t, g.Segments, 2)
	assert.Equal(t, 110.0, g.Segments[0].Points[1].X)
	assert.Equal(t, 100.0, g.Segments[0].Points[2].X)
}
