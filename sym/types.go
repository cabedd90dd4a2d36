// Package sym defines the immutable symbolic expression tree that plots are
// built from. Nodes are created only through the constructors in this package
// and are never modified afterwards, so a node can be shared freely between a
// live figure and any number of snapshots.
package sym

// #region kind
// Kind identifies the node type of an expression.
type Kind string

const (
	KindSymbol    Kind = "symbol"
	KindNumber    Kind = "number"
	KindConstant  Kind = "constant"
	KindAdd       Kind = "add"
	KindMul       Kind = "mul"
	KindDiv       Kind = "div"
	KindPow       Kind = "pow"
	KindNeg       Kind = "neg"
	KindFunc      Kind = "func"
	KindUndefined Kind = "undefined"
)

// #endregion kind

// #region expr
// Expr is a node of the expression tree.
type Expr interface {
	Kind() Kind
	// Args returns the direct children in order. The slice is a copy.
	Args() []Expr
	String() string
	Equal(other Expr) bool
}

// #endregion expr

// #region nodes

// Sym is a named symbolic variable.
type Sym struct{ name string }

// Number is a floating point literal.
type Number struct{ value float64 }

// Constant is a named mathematical constant such as pi.
type Constant struct{ name string }

// Sum is an n-ary addition.
type Sum struct{ terms []Expr }

// Product is an n-ary multiplication.
type Product struct{ factors []Expr }

// Quotient is a binary division.
type Quotient struct{ num, den Expr }

// Power is base raised to exp.
type Power struct{ base, exp Expr }

// Negation is unary minus.
type Negation struct{ x Expr }

// Call applies a known library function.
type Call struct {
	name string
	args []Expr
}

// Applied applies a user-declared function with no known implementation.
// It is part of the tree grammar but cannot be evaluated or printed as source.
type Applied struct {
	name string
	args []Expr
}

// #endregion nodes
