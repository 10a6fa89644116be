package termsheet

import (
	"fmt"
	"strings"

	"payoffchart/internal/model"

	"github.com/shopspring/decimal"
)

// FieldSep separates cells in a row copied out of a spreadsheet.
const FieldSep = "\t"

// ParseError aborts a whole parse. Header names the offending column, if any.
type ParseError struct {
	Header string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Header == "" {
		return "parse term sheet: " + e.Reason
	}
	return fmt.Sprintf("parse term sheet: column %q: %s", e.Header, e.Reason)
}

// Result is the outcome of a successful parse. Variant is nil when the
// structure column was missing or matched no known keyword.
type Result struct {
	Variant   *model.Variant `json:"variant,omitempty"`
	Fields    model.Params   `json:"fields"`
	Structure string         `json:"structure,omitempty"`
}

// Parse reads a two-row term sheet: a header row and a value row, both
// tab-separated. Only the first two non-empty lines are consulted.
// Any malformed numeric cell fails the whole parse.
func Parse(text string) (Result, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			lines = append(lines, s)
		}
	}
	if len(lines) < 2 || !strings.Contains(lines[1], FieldSep) {
		return Result{}, &ParseError{Reason: "insufficient rows"}
	}

	headers := strings.Split(lines[0], FieldSep)
	values := strings.Split(lines[1], FieldSep)

	res := Result{Fields: make(model.Params)}
	n := min(len(headers), len(values))
	for i := 0; i < n; i++ {
		header := strings.ToLower(strings.TrimSpace(headers[i]))
		value := strings.TrimSpace(values[i])
		if value == "" || value == "-" {
			continue
		}

		rule, ok := MatchHeader(header)
		if !ok {
			continue
		}
		if rule.Structure {
			res.Structure = value
			continue
		}
		v, err := rule.Capture(value)
		if err != nil {
			return Result{}, &ParseError{Header: header, Reason: err.Error()}
		}
		res.Fields[rule.Key] = v
	}

	if res.Structure != "" {
		if v, ok := InferVariant(res.Structure); ok {
			res.Variant = &v
		}
	}
	return res, nil
}

// ParseNumber applies the shared numeric cleanup: strip '%', then parse as decimal.
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	return checkedNumber(s, raw)
}

// ParseFee is ParseNumber for fee cells, which may carry a "/year" style suffix.
func ParseFee(raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(raw, "%", "")
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	return checkedNumber(strings.TrimSpace(s), raw)
}

func checkedNumber(s, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number: %q", raw)
	}
	if err := model.CheckRange(d); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", err, raw)
	}
	return d, nil
}

// NormalizeTenor rewrites the day/month tokens to D/M, e.g. "6个月" -> "6个M".
func NormalizeTenor(raw string) string {
	return strings.NewReplacer("天", "D", "月", "M").Replace(raw)
}
