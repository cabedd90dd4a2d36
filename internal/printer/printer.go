// Package printer renders expression trees as Go source calling the sym
// package. Every function and constant is qualified with the sym prefix, so
// the output compiles in any file that imports sym.
package printer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/danielpatrickdp/livefig/sym"
)

// Qualifier is the package name every emitted call is qualified with.
const Qualifier = "sym"

// #region errors
// ErrUnsupported indicates an expression outside the printable grammar.
var ErrUnsupported = errors.New("unsupported expression")

// UnsupportedExpressionError names the construct the printer refused.
type UnsupportedExpressionError struct {
	Construct string
	Reason    string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported expression %s: %s", e.Construct, e.Reason)
}

func (e *UnsupportedExpressionError) Unwrap() error { return ErrUnsupported }

// #endregion errors

// #region options
// Resolver maps a symbol name to the Go identifier holding it. Returning
// false falls back to an inline sym.Symbol call.
type Resolver func(name string) (ident string, ok bool)

type config struct {
	resolve Resolver
}

// Option configures Print.
type Option func(*config)

// WithResolver routes symbol references through r.
func WithResolver(r Resolver) Option { return func(c *config) { c.resolve = r } }

// #endregion options

// #region print
// Print renders e. It fails on undefined functions, non-finite numbers and
// any node type it does not know.
func Print(e sym.Expr, opts ...Option) (string, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	p := printer{cfg: c}
	if err := p.expr(e); err != nil {
		return "", err
	}
	return p.b.String(), nil
}

type printer struct {
	b   strings.Builder
	cfg config
}

func (p *printer) expr(e sym.Expr) error {
	switch t := e.(type) {
	case nil:
		return &UnsupportedExpressionError{Construct: "<nil>", Reason: "missing expression"}
	case *sym.Sym:
		if p.cfg.resolve != nil {
			if ident, ok := p.cfg.resolve(t.Name()); ok {
				p.b.WriteString(ident)
				return nil
			}
		}
		p.b.WriteString(Qualifier + ".Symbol(" + strconv.Quote(t.Name()) + ")")
	case *sym.Number:
		v := t.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &UnsupportedExpressionError{Construct: t.String(), Reason: "non-finite number"}
		}
		p.b.WriteString(Qualifier + ".Num(" + sym.FormatNumber(v) + ")")
	case *sym.Constant:
		ident, ok := constants[t.Name()]
		if !ok {
			return &UnsupportedExpressionError{Construct: t.Name(), Reason: "unknown constant"}
		}
		p.b.WriteString(Qualifier + "." + ident)
	case *sym.Sum:
		return p.call("Add", t.Args())
	case *sym.Product:
		return p.call("Mul", t.Args())
	case *sym.Quotient:
		return p.call("Div", t.Args())
	case *sym.Power:
		return p.call("Pow", t.Args())
	case *sym.Negation:
		return p.call("Neg", t.Args())
	case *sym.Call:
		n, ok := sym.Arity(t.Name())
		if !ok {
			return &UnsupportedExpressionError{Construct: t.String(), Reason: "unknown function " + t.Name()}
		}
		if args := t.Args(); len(args) != n {
			return &UnsupportedExpressionError{Construct: t.String(), Reason: fmt.Sprintf("%s takes %d argument(s)", t.Name(), n)}
		}
		return p.call(FuncIdent(t.Name()), t.Args())
	case *sym.Applied:
		return &UnsupportedExpressionError{Construct: t.String(), Reason: "undefined function " + t.Name()}
	default:
		return &UnsupportedExpressionError{Construct: fmt.Sprintf("%T", e), Reason: "unknown node type"}
	}
	return nil
}

func (p *printer) call(fn string, args []sym.Expr) error {
	p.b.WriteString(Qualifier + "." + fn + "(")
	for i, a := range args {
		if i > 0 {
			p.b.WriteString(", ")
		}
		if err := p.expr(a); err != nil {
			return err
		}
	}
	p.b.WriteByte(')')
	return nil
}

// #endregion print

// #region names
var constants = map[string]string{
	"pi": "Pi",
	"E":  "E",
	"oo": "Inf",
}

// ConstantIdent returns the exported sym identifier of a named constant.
func ConstantIdent(name string) (string, bool) {
	ident, ok := constants[name]
	return ident, ok
}

// FuncIdent returns the exported sym constructor for a library function,
// e.g. "atan2" -> "Atan2".
func FuncIdent(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// #endregion names
