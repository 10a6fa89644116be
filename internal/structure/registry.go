// Package structure is the static catalog of supported note structures:
// their parameter schemas, default terms and payoff builders.
package structure

import (
	"payoffchart/internal/model"
	"payoffchart/internal/payoff"
)

// Entry binds a structure to its display label, schema and builder.
type Entry struct {
	Variant model.Variant
	Label   string
	Schema  Schema
	Build   payoff.Builder
}

// Registry is read-only once built and safe for concurrent use.
type Registry struct {
	entries []Entry
	byKey   map[string]int
}

// New builds the registry of all five structures.
func New() *Registry {
	s := schemas()
	r := &Registry{byKey: make(map[string]int)}
	r.add(model.SharkfinCall, "看涨单鲨/价差", s[model.SharkfinCall], payoff.SharkfinCall)
	r.add(model.SharkfinPut, "看跌单鲨/价差", s[model.SharkfinPut], payoff.SharkfinPut)
	r.add(model.Snowball3Leg, "三元小雪球", s[model.Snowball3Leg], payoff.Snowball3Leg)
	r.add(model.CallKnockout2Leg, "看涨敲出", s[model.CallKnockout2Leg], payoff.CallKnockout2Leg)
	r.add(model.VanillaCall, "看涨香草", s[model.VanillaCall], payoff.VanillaCall)
	return r
}

func (r *Registry) add(v model.Variant, label string, s Schema, b payoff.Builder) {
	r.entries = append(r.entries, Entry{Variant: v, Label: label, Schema: s, Build: b})
	i := len(r.entries) - 1
	r.byKey[string(v)] = i
	r.byKey[label] = i
}

// Entries returns all structures in selector order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup accepts a variant id or its display label.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.byKey[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Has reports whether v is registered.
func (r *Registry) Has(v model.Variant) bool {
	_, ok := r.Lookup(string(v))
	return ok
}

// DefaultsFor returns a fresh copy of v's default terms, or nil if v is unknown.
func (r *Registry) DefaultsFor(v model.Variant) model.Params {
	e, ok := r.Lookup(string(v))
	if !ok {
		return nil
	}
	return e.Schema.Defaults.Clone()
}

// BuilderFor returns v's payoff builder, or nil if v is unknown.
func (r *Registry) BuilderFor(v model.Variant) payoff.Builder {
	e, ok := r.Lookup(string(v))
	if !ok {
		return nil
	}
	return e.Build
}
