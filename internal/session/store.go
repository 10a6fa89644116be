package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"payoffchart/internal/model"
	"payoffchart/internal/structure"
	"payoffchart/internal/termsheet"
)

var (
	ErrUnknownVariant  = errors.New("unknown structure variant")
	ErrUnknownField    = errors.New("unknown field")
	ErrSessionNotFound = errors.New("session not found")
)

// FieldError rejects a single field edit.
type FieldError struct {
	Key    model.Key
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Key, e.Reason)
}

// Store holds the active structure and its current terms. It always contains
// every key of the active structure's schema. A Store is not safe for
// concurrent use; each session owns one.
type Store struct {
	reg     *structure.Registry
	variant model.Variant
	params  model.Params
}

// State is a read-only snapshot of a Store.
type State struct {
	Variant model.Variant           `json:"variant"`
	Label   string                  `json:"label"`
	Params  model.Params            `json:"params"`
	Fields  []model.FieldDescriptor `json:"fields"`
}

// NewStore seeds a store with v's defaults.
func NewStore(reg *structure.Registry, v model.Variant) (*Store, error) {
	s := &Store{reg: reg}
	if err := s.Switch(v); err != nil {
		return nil, err
	}
	return s, nil
}

// Variant returns the active structure.
func (s *Store) Variant() model.Variant { return s.variant }

// Params returns a copy of the current terms.
func (s *Store) Params() model.Params { return s.params.Clone() }

// Switch selects v (an id or a display label) and resets all terms to its defaults.
func (s *Store) Switch(v model.Variant) error {
	e, ok := s.reg.Lookup(string(v))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	s.variant = e.Variant
	s.params = e.Schema.Defaults.Clone()
	return nil
}

// Merge overlays fields onto the current terms. Keys outside the active
// schema are dropped silently. It returns the keys that were applied.
func (s *Store) Merge(fields model.Params) []model.Key {
	e, _ := s.reg.Lookup(string(s.variant))
	var applied []model.Key
	for k, v := range fields {
		if !e.Schema.Has(k) {
			continue
		}
		s.params[k] = v
		applied = append(applied, k)
	}
	slices.Sort(applied)
	return applied
}

// ApplyParse switches to the inferred structure (if it is registered) and
// then merges the parsed fields. It reports whether the structure changed.
func (s *Store) ApplyParse(res termsheet.Result) (switched bool) {
	if res.Variant != nil && s.reg.Has(*res.Variant) {
		_ = s.Switch(*res.Variant)
		switched = true
	}
	s.Merge(res.Fields)
	return switched
}

// ParseAndApply runs the parser and applies its result. On error the store
// is left untouched.
func (s *Store) ParseAndApply(text string) (termsheet.Result, error) {
	res, err := termsheet.Parse(text)
	if err != nil {
		return termsheet.Result{}, err
	}
	s.ApplyParse(res)
	return res, nil
}

// Edit applies raw field edits as typed into an editor. Either every edit is
// applied or none is.
func (s *Store) Edit(edits map[model.Key]string) error {
	e, _ := s.reg.Lookup(string(s.variant))
	staged := make(model.Params, len(edits))
	for k, raw := range edits {
		f, ok := e.Schema.Field(k)
		if !ok {
			return fmt.Errorf("%w: %s is not a %s field", ErrUnknownField, k, s.variant)
		}
		v, err := convert(f, raw)
		if err != nil {
			return err
		}
		staged[k] = v
	}
	for k, v := range staged {
		s.params[k] = v
	}
	return nil
}

func convert(f model.FieldDescriptor, raw string) (model.Value, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case model.KindNumber:
		if raw == "" {
			return model.Value{}, &FieldError{Key: f.Key, Reason: "value required"}
		}
		d, err := termsheet.ParseNumber(raw)
		if err != nil {
			return model.Value{}, &FieldError{Key: f.Key, Reason: err.Error()}
		}
		return model.Number(d), nil
	case model.KindChoice:
		if !slices.Contains(f.Choices, raw) {
			return model.Value{}, &FieldError{Key: f.Key, Reason: fmt.Sprintf("must be one of %s", strings.Join(f.Choices, ", "))}
		}
		return model.Choice(raw), nil
	default:
		return model.Text(raw), nil
	}
}

// Geometry recomputes the chart from the current terms.
func (s *Store) Geometry() model.Geometry {
	return s.reg.BuilderFor(s.variant)(s.params.Clone())
}

// Snapshot returns the current state for display.
func (s *Store) Snapshot() State {
	e, _ := s.reg.Lookup(string(s.variant))
	return State{
		Variant: s.variant,
		Label:   e.Label,
		Params:  s.params.Clone(),
		Fields:  e.Schema.Fields,
	}
}
