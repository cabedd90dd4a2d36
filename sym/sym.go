package sym

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// #region constants
var (
	Pi  = &Constant{name: "pi"}
	E   = &Constant{name: "E"}
	Inf = &Constant{name: "oo"}
)

var constantValues = map[string]float64{
	"pi": math.Pi,
	"E":  math.E,
	"oo": math.Inf(1),
}

// LookupConstant returns the constant with the given name.
func LookupConstant(name string) (*Constant, bool) {
	switch name {
	case "pi":
		return Pi, true
	case "E":
		return E, true
	case "oo":
		return Inf, true
	}
	return nil, false
}

// #endregion constants

// #region functions
// functionArity lists the library functions a Call may name.
var functionArity = map[string]int{
	"sin": 1, "cos": 1, "tan": 1,
	"asin": 1, "acos": 1, "atan": 1, "atan2": 2,
	"sinh": 1, "cosh": 1, "tanh": 1,
	"exp": 1, "log": 1, "sqrt": 1, "abs": 1,
	"floor": 1, "ceil": 1, "sign": 1,
	"min": 2, "max": 2,
}

// IsFunction reports whether name is a known library function.
func IsFunction(name string) bool {
	_, ok := functionArity[name]
	return ok
}

// Arity returns the argument count of a known library function.
func Arity(name string) (int, bool) {
	n, ok := functionArity[name]
	return n, ok
}

// Functions returns the known library function names in sorted order.
func Functions() []string {
	names := make([]string, 0, len(functionArity))
	for name := range functionArity {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// #endregion functions

// #region constructors

// Symbol returns the symbol with the given name.
func Symbol(name string) *Sym { return &Sym{name: name} }

// Num returns a numeric literal.
func Num(v float64) *Number { return &Number{value: v} }

// Add returns the sum of terms. A single term is returned unchanged and an
// empty sum is zero.
func Add(terms ...Expr) Expr {
	switch len(terms) {
	case 0:
		return Num(0)
	case 1:
		return terms[0]
	}
	return &Sum{terms: append([]Expr(nil), terms...)}
}

// Sub returns a - b as a + (-b).
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// Mul returns the product of factors. A single factor is returned unchanged
// and an empty product is one.
func Mul(factors ...Expr) Expr {
	switch len(factors) {
	case 0:
		return Num(1)
	case 1:
		return factors[0]
	}
	return &Product{factors: append([]Expr(nil), factors...)}
}

func Div(num, den Expr) Expr  { return &Quotient{num: num, den: den} }
func Pow(base, exp Expr) Expr { return &Power{base: base, exp: exp} }
func Neg(x Expr) Expr         { return &Negation{x: x} }

func Sin(x Expr) Expr      { return call("sin", x) }
func Cos(x Expr) Expr      { return call("cos", x) }
func Tan(x Expr) Expr      { return call("tan", x) }
func Asin(x Expr) Expr     { return call("asin", x) }
func Acos(x Expr) Expr     { return call("acos", x) }
func Atan(x Expr) Expr     { return call("atan", x) }
func Atan2(y, x Expr) Expr { return call("atan2", y, x) }
func Sinh(x Expr) Expr     { return call("sinh", x) }
func Cosh(x Expr) Expr     { return call("cosh", x) }
func Tanh(x Expr) Expr     { return call("tanh", x) }
func Exp(x Expr) Expr      { return call("exp", x) }
func Log(x Expr) Expr      { return call("log", x) }
func Sqrt(x Expr) Expr     { return call("sqrt", x) }
func Abs(x Expr) Expr      { return call("abs", x) }
func Floor(x Expr) Expr    { return call("floor", x) }
func Ceil(x Expr) Expr     { return call("ceil", x) }
func Sign(x Expr) Expr     { return call("sign", x) }
func Min(a, b Expr) Expr   { return call("min", a, b) }
func Max(a, b Expr) Expr   { return call("max", a, b) }

func call(name string, args ...Expr) Expr {
	return &Call{name: name, args: append([]Expr(nil), args...)}
}

// Func applies the named function to args. Known library functions must be
// called with their exact arity; any other name yields an Applied node.
func Func(name string, args ...Expr) (Expr, error) {
	if n, ok := functionArity[name]; ok {
		if len(args) != n {
			return nil, &ArityError{Name: name, Want: n, Got: len(args)}
		}
		return call(name, args...), nil
	}
	return &Applied{name: name, args: append([]Expr(nil), args...)}, nil
}

// Function returns a constructor for applications of an undefined function,
// the way f(x) is written before f has an implementation.
func Function(name string) func(args ...Expr) Expr {
	return func(args ...Expr) Expr {
		return &Applied{name: name, args: append([]Expr(nil), args...)}
	}
}

// #endregion constructors

// #region accessors

func (s *Sym) Name() string        { return s.name }
func (n *Number) Value() float64   { return n.value }
func (c *Constant) Name() string   { return c.name }
func (c *Constant) Value() float64 { return constantValues[c.name] }
func (c *Call) Name() string       { return c.name }
func (a *Applied) Name() string    { return a.name }

func (s *Sym) Kind() Kind      { return KindSymbol }
func (n *Number) Kind() Kind   { return KindNumber }
func (c *Constant) Kind() Kind { return KindConstant }
func (s *Sum) Kind() Kind      { return KindAdd }
func (p *Product) Kind() Kind  { return KindMul }
func (q *Quotient) Kind() Kind { return KindDiv }
func (p *Power) Kind() Kind    { return KindPow }
func (n *Negation) Kind() Kind { return KindNeg }
func (c *Call) Kind() Kind     { return KindFunc }
func (a *Applied) Kind() Kind  { return KindUndefined }

func (s *Sym) Args() []Expr      { return nil }
func (n *Number) Args() []Expr   { return nil }
func (c *Constant) Args() []Expr { return nil }
func (s *Sum) Args() []Expr      { return append([]Expr(nil), s.terms...) }
func (p *Product) Args() []Expr  { return append([]Expr(nil), p.factors...) }
func (q *Quotient) Args() []Expr { return []Expr{q.num, q.den} }
func (p *Power) Args() []Expr    { return []Expr{p.base, p.exp} }
func (n *Negation) Args() []Expr { return []Expr{n.x} }
func (c *Call) Args() []Expr     { return append([]Expr(nil), c.args...) }
func (a *Applied) Args() []Expr  { return append([]Expr(nil), a.args...) }

// #endregion accessors

// #region equal

func (s *Sym) Equal(o Expr) bool {
	t, ok := o.(*Sym)
	return ok && t.name == s.name
}

func (n *Number) Equal(o Expr) bool {
	t, ok := o.(*Number)
	return ok && t.value == n.value
}

func (c *Constant) Equal(o Expr) bool {
	t, ok := o.(*Constant)
	return ok && t.name == c.name
}

func (s *Sum) Equal(o Expr) bool      { return sameShape(s, o) }
func (p *Product) Equal(o Expr) bool  { return sameShape(p, o) }
func (q *Quotient) Equal(o Expr) bool { return sameShape(q, o) }
func (p *Power) Equal(o Expr) bool    { return sameShape(p, o) }
func (n *Negation) Equal(o Expr) bool { return sameShape(n, o) }

func (c *Call) Equal(o Expr) bool {
	t, ok := o.(*Call)
	return ok && t.name == c.name && equalArgs(c.args, t.args)
}

func (a *Applied) Equal(o Expr) bool {
	t, ok := o.(*Applied)
	return ok && t.name == a.name && equalArgs(a.args, t.args)
}

// sameShape compares kind and children of interior nodes without names.
func sameShape(a, b Expr) bool {
	if b == nil || a.Kind() != b.Kind() {
		return false
	}
	return equalArgs(a.Args(), b.Args())
}

func equalArgs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Equal reports whether two expressions have the same structure. Nil only
// equals nil.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// #endregion equal

// #region traversal

// Walk visits e depth-first, parents before children, left to right.
// Returning false from fn skips the node's children.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, a := range e.Args() {
		Walk(a, fn)
	}
}

// FreeSymbols returns the distinct symbol names in e in first-seen order.
func FreeSymbols(e Expr) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok && !seen[s.name] {
			seen[s.name] = true
			names = append(names, s.name)
		}
		return true
	})
	return names
}

// #endregion traversal

// #region string
const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

func precedence(e Expr) int {
	switch t := e.(type) {
	case *Sum:
		return precAdd
	case *Product, *Quotient:
		return precMul
	case *Negation:
		return precNeg
	case *Number:
		if t.value < 0 {
			return precNeg
		}
		return precAtom
	case *Power:
		return precPow
	}
	return precAtom
}

// wrap renders e, adding parentheses when its precedence is below min.
func wrap(e Expr, min int) string {
	if precedence(e) < min {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// FormatNumber renders v as the shortest literal that parses back to v.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Sym) String() string      { return s.name }
func (n *Number) String() string   { return FormatNumber(n.value) }
func (c *Constant) String() string { return c.name }

func (s *Sum) String() string {
	var b strings.Builder
	for i, t := range s.terms {
		if i > 0 {
			if n, ok := t.(*Negation); ok {
				b.WriteString(" - ")
				b.WriteString(wrap(n.x, precMul))
				continue
			}
			b.WriteString(" + ")
		}
		b.WriteString(wrap(t, precAdd))
	}
	return b.String()
}

func (p *Product) String() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = wrap(f, precMul)
	}
	return strings.Join(parts, "*")
}

func (q *Quotient) String() string {
	return wrap(q.num, precMul) + "/" + wrap(q.den, precNeg)
}

func (p *Power) String() string {
	return "pow(" + p.base.String() + ", " + p.exp.String() + ")"
}

func (n *Negation) String() string { return "-" + wrap(n.x, precNeg+1) }

func (c *Call) String() string    { return c.name + "(" + joinArgs(c.args) + ")" }
func (a *Applied) String() string { return a.name + "(" + joinArgs(a.args) + ")" }

func joinArgs(args []Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// #endregion string
