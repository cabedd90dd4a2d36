package params

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func declare(t *testing.T, s *Store, name string, opts ...Option) *Parameter {
	t.Helper()
	p, err := s.DeclareOrUpdate(name, opts...)
	if err != nil {
		t.Fatalf("DeclareOrUpdate(%q): %v", name, err)
	}
	return p
}

func TestCreateFillsSystemDefaults(t *testing.T) {
	s := NewStore()
	p := declare(t, s, "a", Step(0.5))
	want := Values{Value: 0, Default: 0, Min: -1, Max: 1, Step: 0.5}
	if p.Values() != want {
		t.Fatalf("values = %+v, want %+v", p.Values(), want)
	}
}

func TestCreateOmittedValue(t *testing.T) {
	cases := []struct {
		name string
		opts []Option
		want Values
	}{
		{"zero in range", []Option{Min(-5), Max(5)}, Values{Value: 0, Default: 0, Min: -5, Max: 5, Step: DefaultStep}},
		{"zero below range", []Option{Min(1), Max(2)}, Values{Value: 1, Default: 1, Min: 1, Max: 2, Step: DefaultStep}},
		{"zero above range", []Option{Min(-4), Max(-2)}, Values{Value: -2, Default: -2, Min: -4, Max: -2, Step: DefaultStep}},
		{"default supplied", []Option{Default(0.5)}, Values{Value: 0.5, Default: 0.5, Min: -1, Max: 1, Step: DefaultStep}},
		{"value and default", []Option{Value(0.25), Default(-0.5)}, Values{Value: 0.25, Default: -0.5, Min: -1, Max: 1, Step: DefaultStep}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Create("p", NewUpdate(tc.opts...))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Create = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUpdateKeepsValue(t *testing.T) {
	s := NewStore()
	declare(t, s, "a", Min(0), Max(3), Value(1.5))
	p := declare(t, s, "a", Min(1), Max(2), Step(0.001))
	if p.Value() != 1.5 {
		t.Fatalf("value changed to %g", p.Value())
	}
	if p.Min() != 1 || p.Max() != 2 || p.Step() != 0.001 {
		t.Fatalf("bounds not applied: %+v", p.Values())
	}
	if s.Len() != 1 {
		t.Fatalf("expected one parameter, got %d", s.Len())
	}
}

func TestValueAndDefaultWritePaths(t *testing.T) {
	s := NewStore()
	p := declare(t, s, "a", Value(0.2))

	if err := p.SetValue(0.7); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if p.Value() != 0.7 || p.Default() != 0.2 {
		t.Fatalf("after SetValue: %+v", p.Values())
	}

	if err := p.SetDefault(-0.3); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}
	if p.Default() != -0.3 || p.Value() != 0.7 {
		t.Fatalf("after SetDefault: %+v", p.Values())
	}

	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.Value() != -0.3 {
		t.Fatalf("Reset left value at %g", p.Value())
	}
}

func TestSetAndGetByField(t *testing.T) {
	s := NewStore()
	p := declare(t, s, "a")
	for _, f := range p.Options() {
		if _, err := p.Get(f); err != nil {
			t.Fatalf("Get(%s): %v", f, err)
		}
	}
	if err := p.Set(FieldMax, 4); err != nil {
		t.Fatalf("Set max: %v", err)
	}
	if got, _ := p.Get(FieldMax); got != 4 {
		t.Fatalf("max = %g", got)
	}
	var ue *UnknownFieldError
	if err := p.Set(Field("val"), 1); !errors.As(err, &ue) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
	if _, err := p.Get(Field("colour")); !errors.As(err, &ue) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
}

func TestOptionsListsEveryField(t *testing.T) {
	p := declare(t, NewStore(), "a")
	want := []Field{FieldValue, FieldDefault, FieldMin, FieldMax, FieldStep}
	if got := p.Options(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Options() = %v, want %v", got, want)
	}
	got := p.Options()
	got[0] = "mutated"
	if Fields()[0] != FieldValue {
		t.Fatal("Options() must return a copy")
	}
	for _, f := range want {
		if parsed, err := ParseField(string(f)); err != nil || parsed != f {
			t.Fatalf("ParseField(%q) = %q, %v", f, parsed, err)
		}
	}
}

func TestRepeatedUpdateIsIdempotent(t *testing.T) {
	s := NewStore()
	declare(t, s, "a", Value(0.5))
	opts := []Option{Min(-2), Max(2), Step(0.1), Default(1)}
	once := declare(t, s, "a", opts...).Values()
	twice := declare(t, s, "a", opts...).Values()
	if once != twice {
		t.Fatalf("second application changed state: %+v != %+v", once, twice)
	}

	s2 := NewStore()
	first := declare(t, s2, "b", Step(0.2)).Values()
	second := declare(t, s2, "b", Step(0.2)).Values()
	if first != second {
		t.Fatalf("declaration not idempotent: %+v != %+v", first, second)
	}
}

func TestRejectedUpdateKeepsPriorState(t *testing.T) {
	s := NewStore()
	p := declare(t, s, "a", Min(0), Max(3), Value(2))
	before := p.Values()

	_, err := s.DeclareOrUpdate("a", Min(5), Max(1))
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if !errors.Is(err, ErrRange) {
		t.Fatal("expected errors.Is ErrRange")
	}
	if re.Name != "a" || re.Proposed.Min != 5 || re.Proposed.Max != 1 {
		t.Fatalf("unexpected error detail: %+v", re)
	}
	if p.Values() != before {
		t.Fatalf("state changed after rejected update: %+v != %+v", p.Values(), before)
	}
}

func TestRangeViolations(t *testing.T) {
	cases := []struct {
		name string
		set  func(p *Parameter) error
	}{
		{"value above max", func(p *Parameter) error { return p.SetValue(2) }},
		{"default below min", func(p *Parameter) error { return p.SetDefault(-2) }},
		{"min above value", func(p *Parameter) error { return p.SetMin(0.5) }},
		{"max below default", func(p *Parameter) error { return p.SetMax(-0.5) }},
		{"zero step", func(p *Parameter) error { return p.SetStep(0) }},
		{"negative step", func(p *Parameter) error { return p.SetStep(-1) }},
		{"nan value", func(p *Parameter) error { return p.SetValue(math.NaN()) }},
		{"infinite max", func(p *Parameter) error { return p.SetMax(math.Inf(1)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := declare(t, NewStore(), "a")
			before := p.Values()
			if err := tc.set(p); !errors.Is(err, ErrRange) {
				t.Fatalf("expected ErrRange, got %v", err)
			}
			if p.Values() != before {
				t.Fatalf("state changed: %+v", p.Values())
			}
		})
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := NewStore()
	if _, err := s.DeclareOrUpdate("a", Value(3)); !errors.Is(err, ErrRange) {
		t.Fatalf("expected ErrRange, got %v", err)
	}
	if s.Has("a") {
		t.Fatal("rejected creation must not register the parameter")
	}
	if _, err := s.DeclareOrUpdate(""); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestStoreOrderAndRemove(t *testing.T) {
	inUse := map[string]bool{"b": true}
	s := NewStore(WithInUse(func(name string) bool { return inUse[name] }))
	for _, n := range []string{"c", "a", "b"} {
		declare(t, s, n)
	}
	if got, want := s.Names(), []string{"c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if err := s.Remove("b"); !errors.Is(err, ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if err := s.Remove("a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := s.Remove("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got, want := s.Names(), []string{"c", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if all := s.All(); len(all) != 2 || all[0].Name() != "c" {
		t.Fatalf("All() = %v", all)
	}
}

func TestOnChange(t *testing.T) {
	s := NewStore()
	var got []Change
	s.OnChange(func(c Change) { got = append(got, c) })

	p := declare(t, s, "a")
	if err := p.SetValue(0.5); err != nil {
		t.Fatal(err)
	}
	_ = p.SetValue(9) // rejected, no event
	declare(t, s, "a") // no-op update, no event
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 changes, got %d: %+v", len(got), got)
	}
	if !got[0].Created || got[1].Old.Value != 0 || got[1].New.Value != 0.5 || !got[2].Removed {
		t.Fatalf("unexpected changes: %+v", got)
	}
}
