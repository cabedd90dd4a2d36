// Package params holds the named, ranged, steppable parameters of a figure.
package params

// #region fields
// Field names a settable attribute of a parameter.
type Field string

const (
	FieldValue   Field = "value"
	FieldDefault Field = "default_value"
	FieldMin     Field = "min"
	FieldMax     Field = "max"
	FieldStep    Field = "step"
)

var fields = []Field{FieldValue, FieldDefault, FieldMin, FieldMax, FieldStep}

// Fields lists every settable parameter field.
func Fields() []Field { return append([]Field(nil), fields...) }

// ParseField resolves a field name.
func ParseField(s string) (Field, error) {
	for _, f := range fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", &UnknownFieldError{Name: s}
}

// #endregion fields

// #region defaults
const (
	DefaultMin   = -1.0
	DefaultMax   = 1.0
	DefaultStep  = 0.01
	DefaultValue = 0.0
)

// #endregion defaults

// #region values
// Values is the complete state of one parameter.
type Values struct {
	Value   float64 `json:"value"`
	Default float64 `json:"default_value"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
}

// Get returns the value of field f.
func (v Values) Get(f Field) float64 {
	switch f {
	case FieldValue:
		return v.Value
	case FieldDefault:
		return v.Default
	case FieldMin:
		return v.Min
	case FieldMax:
		return v.Max
	case FieldStep:
		return v.Step
	}
	return 0
}

// #endregion values

// #region update
// Update is a partial change. A nil field is left as it is.
type Update struct {
	Min     *float64
	Max     *float64
	Step    *float64
	Value   *float64
	Default *float64
}

// Empty reports whether no field is supplied.
func (u Update) Empty() bool {
	return u.Min == nil && u.Max == nil && u.Step == nil && u.Value == nil && u.Default == nil
}

// Option supplies one field of an Update.
type Option func(*Update)

func Min(v float64) Option     { return func(u *Update) { u.Min = &v } }
func Max(v float64) Option     { return func(u *Update) { u.Max = &v } }
func Step(v float64) Option    { return func(u *Update) { u.Step = &v } }
func Value(v float64) Option   { return func(u *Update) { u.Value = &v } }
func Default(v float64) Option { return func(u *Update) { u.Default = &v } }

// Set supplies field f.
func Set(f Field, v float64) Option {
	return func(u *Update) {
		switch f {
		case FieldValue:
			u.Value = &v
		case FieldDefault:
			u.Default = &v
		case FieldMin:
			u.Min = &v
		case FieldMax:
			u.Max = &v
		case FieldStep:
			u.Step = &v
		}
	}
}

// NewUpdate collects options into an Update.
func NewUpdate(opts ...Option) Update {
	var u Update
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

// #endregion update

// #region change
// Change describes a committed update, delivered to store listeners.
type Change struct {
	Name    string
	Old     Values
	New     Values
	Created bool
	Removed bool
}

// #endregion change
