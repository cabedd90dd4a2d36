package params

import (
	"fmt"
)

// #region parameter
// Parameter is a live handle on one entry of a Store. Each setter touches
// exactly one field and is rejected atomically when it would break the
// range invariants.
type Parameter struct {
	name   string
	values Values
	store  *Store
}

func (p *Parameter) Name() string     { return p.name }
func (p *Parameter) Value() float64   { return p.values.Value }
func (p *Parameter) Default() float64 { return p.values.Default }
func (p *Parameter) Min() float64     { return p.values.Min }
func (p *Parameter) Max() float64     { return p.values.Max }
func (p *Parameter) Step() float64    { return p.values.Step }

// Values returns a copy of the current state.
func (p *Parameter) Values() Values { return p.values }

// Options lists the field names this parameter accepts in Set and Get.
func (p *Parameter) Options() []Field { return Fields() }

// SetValue changes the live value and leaves default_value alone.
func (p *Parameter) SetValue(v float64) error { return p.Set(FieldValue, v) }

// SetDefault changes default_value and leaves the live value alone.
func (p *Parameter) SetDefault(v float64) error { return p.Set(FieldDefault, v) }

func (p *Parameter) SetMin(v float64) error  { return p.Set(FieldMin, v) }
func (p *Parameter) SetMax(v float64) error  { return p.Set(FieldMax, v) }
func (p *Parameter) SetStep(v float64) error { return p.Set(FieldStep, v) }

// Set writes one field by name.
func (p *Parameter) Set(f Field, v float64) error {
	if _, err := ParseField(string(f)); err != nil {
		return err
	}
	return p.apply(NewUpdate(Set(f, v)))
}

// Get reads one field by name.
func (p *Parameter) Get(f Field) (float64, error) {
	if _, err := ParseField(string(f)); err != nil {
		return 0, err
	}
	return p.values.Get(f), nil
}

// Reset sets the live value back to default_value.
func (p *Parameter) Reset() error { return p.SetValue(p.values.Default) }

func (p *Parameter) apply(u Update) error {
	next, err := Apply(p.name, p.values, u)
	if err != nil {
		return err
	}
	old := p.values
	p.values = next
	if p.store != nil && old != next {
		p.store.notify(Change{Name: p.name, Old: old, New: next})
	}
	return nil
}

// #endregion parameter

// #region store
// Store holds a figure's parameters in declaration order. It has no internal
// locking; callers serialize writers.
type Store struct {
	order     []string
	byName    map[string]*Parameter
	listeners []func(Change)
	inUse     func(name string) bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithInUse installs the check Remove consults before deleting a parameter.
func WithInUse(fn func(name string) bool) StoreOption {
	return func(s *Store) { s.inUse = fn }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{byName: make(map[string]*Parameter)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeclareOrUpdate creates name from the system defaults plus the supplied
// fields, or, when name exists, applies only the supplied fields. Calling it
// again with the same options leaves the parameter unchanged.
func (s *Store) DeclareOrUpdate(name string, opts ...Option) (*Parameter, error) {
	if name == "" {
		return nil, fmt.Errorf("declare parameter: empty name")
	}
	u := NewUpdate(opts...)
	if p, ok := s.byName[name]; ok {
		if err := p.apply(u); err != nil {
			return nil, err
		}
		return p, nil
	}
	v, err := Create(name, u)
	if err != nil {
		return nil, err
	}
	p := &Parameter{name: name, values: v, store: s}
	s.byName[name] = p
	s.order = append(s.order, name)
	s.notify(Change{Name: name, New: v, Created: true})
	return p, nil
}

// Get returns the parameter called name.
func (s *Store) Get(name string) (*Parameter, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Has reports whether name is declared.
func (s *Store) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Names returns parameter names in declaration order.
func (s *Store) Names() []string { return append([]string(nil), s.order...) }

// All returns the parameters in declaration order.
func (s *Store) All() []*Parameter {
	out := make([]*Parameter, len(s.order))
	for i, name := range s.order {
		out[i] = s.byName[name]
	}
	return out
}

func (s *Store) Len() int { return len(s.order) }

// Remove deletes name. It fails with ErrInUse when the owner still references it.
func (s *Store) Remove(name string) error {
	p, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("remove %q: %w", name, ErrNotFound)
	}
	if s.inUse != nil && s.inUse(name) {
		return fmt.Errorf("remove %q: %w", name, ErrInUse)
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	p.store = nil
	s.notify(Change{Name: name, Old: p.values, Removed: true})
	return nil
}

// OnChange registers fn to run after every committed change.
func (s *Store) OnChange(fn func(Change)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify(c Change) {
	for _, fn := range s.listeners {
		fn(c)
	}
}

// #endregion store
