package termsheet

import (
	"strings"

	"payoffchart/internal/model"
)

// HeaderRule maps a lower-cased header cell to a parameter. Rules are
// evaluated in order and the first match wins.
type HeaderRule struct {
	Match     func(header string) bool
	Key       model.Key
	Structure bool // captures the structure-type string instead of a parameter
	Capture   func(value string) (model.Value, error)
}

func contains(subs ...string) func(string) bool {
	return func(h string) bool {
		for _, s := range subs {
			if strings.Contains(h, s) {
				return true
			}
		}
		return false
	}
}

func containsExcept(sub, except string) func(string) bool {
	return func(h string) bool {
		return strings.Contains(h, sub) && !strings.Contains(h, except)
	}
}

func text(v string) (model.Value, error) { return model.Text(v), nil }

func tenor(v string) (model.Value, error) { return model.Text(NormalizeTenor(v)), nil }

func number(v string) (model.Value, error) {
	d, err := ParseNumber(v)
	if err != nil {
		return model.Value{}, err
	}
	return model.Number(d), nil
}

func fee(v string) (model.Value, error) {
	d, err := ParseFee(v)
	if err != nil {
		return model.Value{}, err
	}
	return model.Number(d), nil
}

// HeaderRules is the header vocabulary of exported term sheets, in priority order.
var HeaderRules = []HeaderRule{
	{Match: contains("结构"), Structure: true},
	{Match: contains("标的"), Key: model.KeyAsset, Capture: text},
	{Match: contains("期限"), Key: model.KeyMonth, Capture: tenor},
	{Match: contains("行权价"), Key: model.KeyStrike, Capture: number},
	{Match: contains("障碍价", "敲出价"), Key: model.KeyKnockOut, Capture: number},
	{Match: contains("敲入价"), Key: model.KeyKnockIn, Capture: number},
	{Match: containsExcept("保底年化收益", "期权"), Key: model.KeyMinRet, Capture: number},
	{Match: containsExcept("敲出年化收益", "期权"), Key: model.KeyKnockRet, Capture: number},
	{Match: contains("未敲入未敲出收益"), Key: model.KeyRet2, Capture: number},
	{Match: contains("敲入未敲出收益"), Key: model.KeyRet1, Capture: number},
	{Match: containsExcept("敲出收益", "敲入"), Key: model.KeyRet3, Capture: number},
	{Match: contains("参与率"), Key: model.KeyParticipationRate, Capture: number},
	{Match: contains("最高收益"), Key: model.KeyMaxRet, Capture: number},
	{Match: contains("管理费", "期权费"), Key: model.KeyCost, Capture: fee},
}

// MatchHeader returns the first rule matching a lower-cased header.
func MatchHeader(header string) (HeaderRule, bool) {
	for _, r := range HeaderRules {
		if r.Match(header) {
			return r, true
		}
	}
	return HeaderRule{}, false
}

// VariantRule maps a keyword in the structure-type string to a variant.
type VariantRule struct {
	Keyword string
	Resolve func(structure string) model.Variant
}

func fixed(v model.Variant) func(string) model.Variant {
	return func(string) model.Variant { return v }
}

// sharkfinSide picks the call or put shark-fin by the bullish marker.
func sharkfinSide(structure string) model.Variant {
	if strings.Contains(structure, "看涨") {
		return model.SharkfinCall
	}
	return model.SharkfinPut
}

// VariantRules is evaluated in order; the first keyword found wins.
var VariantRules = []VariantRule{
	{Keyword: "三元", Resolve: fixed(model.Snowball3Leg)},
	{Keyword: "看涨敲出", Resolve: fixed(model.CallKnockout2Leg)},
	{Keyword: "看涨香草", Resolve: fixed(model.VanillaCall)},
	{Keyword: "单鲨", Resolve: sharkfinSide},
	{Keyword: "价差", Resolve: sharkfinSide},
}

// InferVariant resolves a structure-type string such as "看涨单鲨".
func InferVariant(structure string) (model.Variant, bool) {
	for _, r := range VariantRules {
		if strings.Contains(structure, r.Keyword) {
			return r.Resolve(structure), true
		}
	}
	return "", false
}
