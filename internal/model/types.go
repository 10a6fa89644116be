package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Variant identifies one of the supported note structures.
type Variant string

const (
	SharkfinCall     Variant = "sharkfin_call"
	SharkfinPut      Variant = "sharkfin_put"
	Snowball3Leg     Variant = "snowball_3leg"
	CallKnockout2Leg Variant = "call_knockout_2leg"
	VanillaCall      Variant = "vanilla_call"
)

// Variants lists every structure in selector order.
var Variants = []Variant{SharkfinCall, SharkfinPut, Snowball3Leg, CallKnockout2Leg, VanillaCall}

// Key names a term-sheet parameter.
type Key string

const (
	KeyStrike            Key = "strike"
	KeyKnockIn           Key = "knock_in"
	KeyKnockOut          Key = "knock_out"
	KeyParticipationRate Key = "participation_rate"
	KeyMinRet            Key = "min_ret"
	KeyMaxRet            Key = "max_ret"
	KeyKnockRet          Key = "knock_ret"
	KeyRet1              Key = "ret1"
	KeyRet2              Key = "ret2"
	KeyRet3              Key = "ret3"
	KeyMonth             Key = "month"
	KeyAsset             Key = "asset"
	KeyCost              Key = "cost"
	KeyType              Key = "type"
)

// Shark-fin flavours carried by KeyType. Only label text depends on it.
const (
	TypeSingleBarrier = "单鲨"
	TypeSpread        = "价差"
)

// Kind is the semantic type of a parameter value.
type Kind int

const (
	KindNumber Kind = iota
	KindText
	KindChoice
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "string"
	case KindChoice:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *Kind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, c := range []Kind{KindNumber, KindText, KindChoice} {
		if c.String() == s {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown field kind %q", s)
}

// Value is a single parameter value: a decimal percent level or a short text token.
type Value struct {
	Kind Kind
	Num  decimal.Decimal
	Text string
}

// Number wraps a decimal as a numeric value.
func Number(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

// Num parses a decimal literal; it panics on malformed input and is meant for static tables.
func Num(s string) Value {
	return Number(decimal.RequireFromString(s))
}

// Text wraps a free-form string value.
func Text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

// Choice wraps an enumerated string value.
func Choice(s string) Value {
	return Value{Kind: KindChoice, Text: s}
}

// IsNumber reports whether the value holds a decimal.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

func (v Value) String() string {
	if v.Kind == KindNumber {
		return v.Num.String()
	}
	return v.Text
}

// Equal compares kind and content; decimals compare numerically.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	if v.Kind == KindNumber {
		return v.Num.Equal(o.Num)
	}
	return v.Text == o.Text
}

// MarshalJSON writes numbers as bare JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == KindNumber {
		return []byte(v.Num.String()), nil
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON number (numeric value) or a JSON string (text value).
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("parameter value %s: %w", b, err)
	}
	if err := CheckRange(d); err != nil {
		return fmt.Errorf("parameter value %s: %w", b, err)
	}
	*v = Number(d)
	return nil
}

// Bounds for numeric terms. Exponents are checked before magnitude so a
// literal like 1e20000000 is rejected without expanding it.
const (
	maxExponent = 9
	minExponent = -12
)

var (
	maxMagnitude = decimal.New(1, maxExponent)

	ErrOutOfRange = errors.New("number out of range")
)

// CheckRange rejects numbers a chart cannot carry: magnitudes above 1e9 or
// more than 12 decimal places.
func CheckRange(d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > maxExponent || exp < minExponent || d.Abs().GreaterThan(maxMagnitude) {
		return ErrOutOfRange
	}
	return nil
}

// Params is a parameter map for one structure.
type Params map[Key]Value

// Clone returns an independent copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Num returns the decimal stored under k, or zero.
func (p Params) Num(k Key) decimal.Decimal {
	return p[k].Num
}

// Text returns the text stored under k, or the decimal rendering of a number.
func (p Params) Text(k Key) string {
	v, ok := p[k]
	if !ok {
		return ""
	}
	return v.String()
}

// FieldDescriptor describes one editable parameter of a structure.
type FieldDescriptor struct {
	Key     Key      `json:"key"`
	Kind    Kind     `json:"kind"`
	Label   string   `json:"label"`
	Choices []string `json:"choices,omitempty"`
}
