package payoff

import (
	"fmt"

	"payoffchart/internal/model"
)

// Violation is a barrier-ordering problem found by Check.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// orderRule requires params[lower] < params[upper].
type orderRule struct {
	name         string
	lower, upper model.Key
}

var orderRules = map[model.Variant][]orderRule{
	model.SharkfinCall:     {{"strike_below_knock_out", model.KeyStrike, model.KeyKnockOut}},
	model.SharkfinPut:      {{"knock_out_below_strike", model.KeyKnockOut, model.KeyStrike}},
	model.Snowball3Leg:     {{"knock_in_below_knock_out", model.KeyKnockIn, model.KeyKnockOut}},
	model.CallKnockout2Leg: {{"knock_in_below_knock_out", model.KeyKnockIn, model.KeyKnockOut}},
}

// Check reports inconsistent barrier ordering. Builders never call it; an
// inverted curve is still drawn as-is. Callers opt in.
func Check(v model.Variant, p model.Params) []Violation {
	var out []Violation
	for _, r := range orderRules[v] {
		lo, hi := p.Num(r.lower), p.Num(r.upper)
		if lo.LessThan(hi) {
			continue
		}
		out = append(out, Violation{
			Rule:    r.name,
			Message: fmt.Sprintf("%s=%s must be below %s=%s", r.lower, lo, r.upper, hi),
		})
	}
	return out
}
