package params

import (
	"fmt"
	"math"
)

// #region create
// Create computes the state of a new parameter: system defaults first, then
// the supplied fields on top. An omitted value falls back to the supplied
// default, then to DefaultValue, then to the nearest bound when DefaultValue
// lies outside [min, max]. An omitted default equals the initial value.
func Create(name string, u Update) (Values, error) {
	v := Values{Min: DefaultMin, Max: DefaultMax, Step: DefaultStep}
	if u.Min != nil {
		v.Min = *u.Min
	}
	if u.Max != nil {
		v.Max = *u.Max
	}
	if u.Step != nil {
		v.Step = *u.Step
	}
	switch {
	case u.Value != nil:
		v.Value = *u.Value
	case u.Default != nil:
		v.Value = *u.Default
	default:
		v.Value = nearest(DefaultValue, v.Min, v.Max)
	}
	v.Default = v.Value
	if u.Default != nil {
		v.Default = *u.Default
	}
	if err := validate(name, v); err != nil {
		return Values{}, err
	}
	return v, nil
}

func nearest(x, lo, hi float64) float64 {
	if lo > hi {
		// Left for validate to reject.
		return x
	}
	return math.Min(math.Max(x, lo), hi)
}

// #endregion create

// #region apply
// Apply is a pure function computing the result of a partial update on an
// existing parameter. Only supplied fields change. On error the caller must
// keep old.
func Apply(name string, old Values, u Update) (Values, error) {
	v := old
	if u.Min != nil {
		v.Min = *u.Min
	}
	if u.Max != nil {
		v.Max = *u.Max
	}
	if u.Step != nil {
		v.Step = *u.Step
	}
	if u.Value != nil {
		v.Value = *u.Value
	}
	if u.Default != nil {
		v.Default = *u.Default
	}
	if err := validate(name, v); err != nil {
		return old, err
	}
	return v, nil
}

// #endregion apply

// #region validate
// validate checks the invariants in order and rejects on the first violation.
func validate(name string, v Values) error {
	reject := func(format string, args ...any) error {
		return &RangeError{Name: name, Proposed: v, Reason: fmt.Sprintf(format, args...)}
	}
	for _, f := range fields {
		if x := v.Get(f); math.IsNaN(x) {
			return reject("%s is NaN", f)
		}
	}
	if math.IsInf(v.Min, 0) || math.IsInf(v.Max, 0) {
		return reject("bounds must be finite, got [%g, %g]", v.Min, v.Max)
	}
	if v.Min > v.Max {
		return reject("min %g > max %g", v.Min, v.Max)
	}
	if !(v.Step > 0) || math.IsInf(v.Step, 0) {
		return reject("step %g must be positive and finite", v.Step)
	}
	if v.Value < v.Min || v.Value > v.Max {
		return reject("value %g outside [%g, %g]", v.Value, v.Min, v.Max)
	}
	if v.Default < v.Min || v.Default > v.Max {
		return reject("default_value %g outside [%g, %g]", v.Default, v.Min, v.Max)
	}
	return nil
}

// #endregion validate
