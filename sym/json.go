package sym

import (
	"fmt"
)

// Node is the JSON form of an expression. It preserves tree structure
// exactly, unlike the infix text.
type Node struct {
	Kind  Kind     `json:"kind"`
	Name  string   `json:"name,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Args  []Node   `json:"args,omitempty"`
}

// Encode converts e to its JSON node form.
func Encode(e Expr) Node {
	n := Node{Kind: e.Kind()}
	switch t := e.(type) {
	case *Sym:
		n.Name = t.name
	case *Number:
		v := t.value
		n.Value = &v
	case *Constant:
		n.Name = t.name
	case *Call:
		n.Name = t.name
	case *Applied:
		n.Name = t.name
	}
	for _, a := range e.Args() {
		n.Args = append(n.Args, Encode(a))
	}
	return n
}

// Decode rebuilds an expression from its node form.
func Decode(n Node) (Expr, error) {
	args := make([]Expr, len(n.Args))
	for i, a := range n.Args {
		e, err := Decode(a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	switch n.Kind {
	case KindSymbol:
		return Symbol(n.Name), nil
	case KindNumber:
		if n.Value == nil {
			return nil, fmt.Errorf("decode number: missing value")
		}
		return Num(*n.Value), nil
	case KindConstant:
		c, ok := LookupConstant(n.Name)
		if !ok {
			return nil, fmt.Errorf("decode constant: unknown %q", n.Name)
		}
		return c, nil
	case KindAdd:
		if len(args) < 2 {
			return nil, fmt.Errorf("decode add: %d terms", len(args))
		}
		return &Sum{terms: args}, nil
	case KindMul:
		if len(args) < 2 {
			return nil, fmt.Errorf("decode mul: %d factors", len(args))
		}
		return &Product{factors: args}, nil
	case KindDiv:
		if len(args) != 2 {
			return nil, fmt.Errorf("decode div: %d args", len(args))
		}
		return Div(args[0], args[1]), nil
	case KindPow:
		if len(args) != 2 {
			return nil, fmt.Errorf("decode pow: %d args", len(args))
		}
		return Pow(args[0], args[1]), nil
	case KindNeg:
		if len(args) != 1 {
			return nil, fmt.Errorf("decode neg: %d args", len(args))
		}
		return Neg(args[0]), nil
	case KindFunc:
		if !IsFunction(n.Name) {
			return nil, fmt.Errorf("decode func: unknown function %q", n.Name)
		}
		return Func(n.Name, args...)
	case KindUndefined:
		return Function(n.Name)(args...), nil
	}
	return nil, fmt.Errorf("decode: unknown kind %q", n.Kind)
}
