// Package binding canonicalizes the accepted ways of saying which inputs of a
// numeric callable bind to which names.
package binding

// #region input
// Input is one of the accepted binding shapes: Positional, PositionalKeyed,
// Keyed or IndexedKeyed. Normalize resolves it once into a Spec.
type Input interface {
	shape() string
}

// Positional binds symbols to positions 0..n-1: (x, y).
type Positional []string

// PositionalKeyed is a positional list followed by named inputs: (x, {"y": 1}).
type PositionalKeyed struct {
	Args []string
	Keys []Named
}

// Keyed is a purely named mapping, in the order the keys were written: {"x": 0, "y": 1}.
type Keyed []Named

// IndexedKeyed mixes integer keys, which must cover 0..n-1, with named keys:
// {0: x, "y": 1}.
type IndexedKeyed struct {
	Indexed map[int]string
	Keys    []Named
}

// Named is a named input together with its initial value.
type Named struct {
	Name  string
	Value float64
}

func (Positional) shape() string      { return "positional" }
func (PositionalKeyed) shape() string { return "positional+keyed" }
func (Keyed) shape() string           { return "keyed" }
func (IndexedKeyed) shape() string    { return "indexed+keyed" }

// #endregion input

// #region spec
// Slot is one resolved input. Positional slots come first in ascending
// position; keyword slots follow in the order their keys were first seen.
type Slot struct {
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Keyword  bool    `json:"keyword,omitempty"`
	Value    float64 `json:"value,omitempty"`
}

// Spec is the canonical, immutable binding. Positions are contiguous from 0.
type Spec struct {
	slots []Slot
}

// #endregion spec
