package sym

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// Parse reads infix text such as "a*sin(x) + pow(x, 2)/3". Identifiers become
// symbols except pi, E and oo, which name constants. pow(a, b) is the power
// operator. Calls to names that are not library functions become applications
// of undefined functions.
func Parse(src string) (Expr, error) {
	node, err := parser.ParseExpr(src)
	if err != nil {
		return nil, &ParseError{Src: src, Msg: "syntax", Err: err}
	}
	return convert(src, node)
}

// MustParse is Parse for package-level fixtures; it panics on error.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

func convert(src string, n ast.Expr) (Expr, error) {
	switch t := n.(type) {
	case *ast.ParenExpr:
		return convert(src, t.X)
	case *ast.Ident:
		if c, ok := LookupConstant(t.Name); ok {
			return c, nil
		}
		return Symbol(t.Name), nil
	case *ast.BasicLit:
		if t.Kind != token.INT && t.Kind != token.FLOAT {
			return nil, &ParseError{Src: src, Msg: "unsupported literal " + t.Value}
		}
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, &ParseError{Src: src, Msg: "number", Err: err}
		}
		return Num(v), nil
	case *ast.UnaryExpr:
		x, err := convert(src, t.X)
		if err != nil {
			return nil, err
		}
		switch t.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			if num, ok := x.(*Number); ok {
				return Num(-num.value), nil
			}
			return Neg(x), nil
		}
		return nil, &ParseError{Src: src, Msg: "unsupported operator " + t.Op.String()}
	case *ast.BinaryExpr:
		return convertBinary(src, t)
	case *ast.CallExpr:
		return convertCall(src, t)
	}
	return nil, &ParseError{Src: src, Msg: "unsupported syntax"}
}

func convertBinary(src string, t *ast.BinaryExpr) (Expr, error) {
	x, err := convert(src, t.X)
	if err != nil {
		return nil, err
	}
	y, err := convert(src, t.Y)
	if err != nil {
		return nil, err
	}
	switch t.Op {
	case token.ADD:
		return Add(append(flatten(x, KindAdd), y)...), nil
	case token.SUB:
		return Add(append(flatten(x, KindAdd), Neg(y))...), nil
	case token.MUL:
		return Mul(append(flatten(x, KindMul), y)...), nil
	case token.QUO:
		return Div(x, y), nil
	}
	return nil, &ParseError{Src: src, Msg: "unsupported operator " + t.Op.String()}
}

// flatten keeps left-nested chains of the same operator n-ary.
func flatten(e Expr, k Kind) []Expr {
	if e.Kind() == k {
		return e.Args()
	}
	return []Expr{e}
}

func convertCall(src string, t *ast.CallExpr) (Expr, error) {
	id, ok := t.Fun.(*ast.Ident)
	if !ok {
		return nil, &ParseError{Src: src, Msg: "call target must be a name"}
	}
	args := make([]Expr, len(t.Args))
	for i, a := range t.Args {
		e, err := convert(src, a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	if id.Name == "pow" {
		if len(args) != 2 {
			return nil, &ArityError{Name: "pow", Want: 2, Got: len(args)}
		}
		return Pow(args[0], args[1]), nil
	}
	return Func(id.Name, args...)
}
