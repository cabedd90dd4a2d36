package binding

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// #region normalize
// Normalize resolves any accepted input shape into the canonical Spec.
// It is pure and deterministic; a nil Input yields the empty Spec.
func Normalize(in Input) (Spec, error) {
	var args []string
	var keys []Named
	switch t := in.(type) {
	case nil:
	case Positional:
		args = t
	case PositionalKeyed:
		args, keys = t.Args, t.Keys
	case Keyed:
		keys = t
	case IndexedKeyed:
		ordered, err := fromIndexed(t.Indexed)
		if err != nil {
			return Spec{}, err
		}
		args, keys = ordered, t.Keys
	default:
		return Spec{}, fmt.Errorf("normalize: unsupported input shape %s", in.shape())
	}
	return build(args, keys)
}

// fromIndexed orders integer keys and checks they cover 0..n-1.
func fromIndexed(m map[int]string) ([]string, error) {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for i := 0; i < len(keys); i++ {
		if _, ok := m[i]; !ok {
			return nil, &GapError{Missing: i, Keys: keys}
		}
	}
	args := make([]string, len(keys))
	for i := range args {
		args[i] = m[i]
	}
	return args, nil
}

func build(args []string, keys []Named) (Spec, error) {
	claims := make(map[string]string, len(args)+len(keys))
	slots := make([]Slot, 0, len(args)+len(keys))
	claim := func(name, by string) error {
		if name == "" {
			return fmt.Errorf("%s: %w", by, ErrEmptyName)
		}
		if prev, ok := claims[name]; ok {
			return &ConflictError{Name: name, First: prev, Second: by}
		}
		claims[name] = by
		return nil
	}
	for i, name := range args {
		if err := claim(name, fmt.Sprintf("position %d", i)); err != nil {
			return Spec{}, err
		}
		slots = append(slots, Slot{Position: i, Name: name})
	}
	for _, k := range keys {
		if err := claim(k.Name, fmt.Sprintf("key %q", k.Name)); err != nil {
			return Spec{}, err
		}
		slots = append(slots, Slot{Position: len(slots), Name: k.Name, Keyword: true, Value: k.Value})
	}
	return Spec{slots: slots}, nil
}

// #endregion normalize

// #region accessors

// Slots returns a copy of the resolved slots.
func (s Spec) Slots() []Slot { return append([]Slot(nil), s.slots...) }

func (s Spec) Len() int { return len(s.slots) }

// Positional returns the names bound by position.
func (s Spec) Positional() []string {
	var out []string
	for _, sl := range s.slots {
		if !sl.Keyword {
			out = append(out, sl.Name)
		}
	}
	return out
}

// Keywords returns the named inputs with their values.
func (s Spec) Keywords() []Named {
	var out []Named
	for _, sl := range s.slots {
		if sl.Keyword {
			out = append(out, Named{Name: sl.Name, Value: sl.Value})
		}
	}
	return out
}

// Names returns every bound name in slot order.
func (s Spec) Names() []string {
	out := make([]string, len(s.slots))
	for i, sl := range s.slots {
		out[i] = sl.Name
	}
	return out
}

// Lookup returns the slot bound to name.
func (s Spec) Lookup(name string) (Slot, bool) {
	for _, sl := range s.slots {
		if sl.Name == name {
			return sl, true
		}
	}
	return Slot{}, false
}

// Equal compares the ordered slots.
func (s Spec) Equal(o Spec) bool {
	if len(s.slots) != len(o.slots) {
		return false
	}
	for i := range s.slots {
		if s.slots[i] != o.slots[i] {
			return false
		}
	}
	return true
}

// Input returns the canonical input shape that normalizes back to s.
func (s Spec) Input() Input {
	keys := s.Keywords()
	if len(keys) == 0 {
		return Positional(s.Positional())
	}
	return PositionalKeyed{Args: s.Positional(), Keys: keys}
}

// WithKeywords returns a new Spec with extra named inputs appended.
func (s Spec) WithKeywords(extra ...Named) (Spec, error) {
	return build(s.Positional(), append(s.Keywords(), extra...))
}

func (s Spec) String() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(strings.Join(s.Positional(), ", "))
	for i, k := range s.Keywords() {
		if i == 0 {
			b.WriteString("; ")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%g", k.Name, k.Value)
	}
	b.WriteByte(')')
	return b.String()
}

// #endregion accessors

// #region json

func (s Spec) MarshalJSON() ([]byte, error) {
	if s.slots == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.slots)
}

// UnmarshalJSON re-validates the slots through Normalize.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var slots []Slot
	if err := json.Unmarshal(data, &slots); err != nil {
		return err
	}
	var args []string
	var keys []Named
	for i, sl := range slots {
		if sl.Position != i {
			return &GapError{Missing: i, Keys: []int{sl.Position}}
		}
		if sl.Keyword {
			keys = append(keys, Named{Name: sl.Name, Value: sl.Value})
		} else {
			if len(keys) > 0 {
				return fmt.Errorf("unmarshal binding: positional slot %q after keyword slots", sl.Name)
			}
			args = append(args, sl.Name)
		}
	}
	spec, err := build(args, keys)
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

// #endregion json
