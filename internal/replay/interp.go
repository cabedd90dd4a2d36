package replay

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/internal/codegen"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/sym"
)

// #region errors
// SyntaxError reports generated source the interpreter does not understand.
type SyntaxError struct {
	Pos token.Position
	Msg string
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// #endregion errors

// #region run
// Run executes generated source and returns the figure it builds. funcName
// selects the builder function; empty means codegen's default.
//
// Only the statement forms codegen emits are understood: symbol
// declarations, figure.New, error-checked fig.Parameter, fig.Plot and
// fig.Parametric calls, fig.Info and the final return.
func Run(src, funcName string) (*figure.Figure, error) {
	if funcName == "" {
		funcName = codegen.DefaultConfig().FuncName
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "generated.go", src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parse generated source: %w", err)
	}
	var fn *ast.FuncDecl
	for _, d := range file.Decls {
		if fd, ok := d.(*ast.FuncDecl); ok && fd.Recv == nil && fd.Name.Name == funcName {
			fn = fd
		}
	}
	if fn == nil || fn.Body == nil {
		return nil, fmt.Errorf("run generated source: function %s not found", funcName)
	}

	in := &interp{fset: fset, symbols: make(map[string]sym.Expr)}
	for _, stmt := range fn.Body.List {
		done, err := in.stmt(stmt)
		if err != nil {
			return nil, err
		}
		if done {
			return in.fig, nil
		}
	}
	return nil, fmt.Errorf("run generated source: %s has no return", funcName)
}

type interp struct {
	fset    *token.FileSet
	symbols map[string]sym.Expr
	fig     *figure.Figure
	figName string
}

func (in *interp) errorf(n ast.Node, format string, args ...any) error {
	return &SyntaxError{Pos: in.fset.Position(n.Pos()), Msg: fmt.Sprintf(format, args...)}
}

// stmt executes one statement and reports whether it returned.
func (in *interp) stmt(s ast.Stmt) (bool, error) {
	switch t := s.(type) {
	case *ast.AssignStmt:
		return false, in.assign(t)
	case *ast.IfStmt:
		return false, in.checked(t)
	case *ast.ExprStmt:
		call, ok := t.X.(*ast.CallExpr)
		if !ok {
			return false, in.errorf(t, "expected a call statement")
		}
		_, err := in.figCall(call)
		return false, err
	case *ast.ReturnStmt:
		if len(t.Results) != 2 || !in.isFig(t.Results[0]) || !isIdent(t.Results[1], "nil") {
			return false, in.errorf(t, "expected return %s, nil", in.figName)
		}
		if in.fig == nil {
			return false, in.errorf(t, "return before figure construction")
		}
		return true, nil
	}
	return false, in.errorf(s, "unsupported statement %T", s)
}

func (in *interp) assign(a *ast.AssignStmt) error {
	if a.Tok != token.DEFINE || len(a.Lhs) != 1 || len(a.Rhs) != 1 {
		return in.errorf(a, "expected name := value")
	}
	name, ok := a.Lhs[0].(*ast.Ident)
	if !ok {
		return in.errorf(a, "expected identifier on the left")
	}
	call, ok := a.Rhs[0].(*ast.CallExpr)
	if !ok {
		return in.errorf(a, "expected a call on the right")
	}
	switch qualified(call.Fun) {
	case "sym.Symbol":
		if len(call.Args) != 1 {
			return in.errorf(call, "sym.Symbol takes one argument")
		}
		s, err := in.str(call.Args[0])
		if err != nil {
			return err
		}
		in.symbols[name.Name] = sym.Symbol(s)
		return nil
	case "figure.New":
		if in.fig != nil {
			return in.errorf(call, "figure constructed twice")
		}
		opts := make([]figure.Option, 0, len(call.Args))
		for _, arg := range call.Args {
			opt, err := in.figureOption(arg)
			if err != nil {
				return err
			}
			opts = append(opts, opt)
		}
		in.fig = figure.New(opts...)
		in.figName = name.Name
		return nil
	}
	return in.errorf(call, "unsupported call %s", qualified(call.Fun))
}

// checked runs `if _, err := fig.X(...); err != nil { return nil, err }`.
func (in *interp) checked(s *ast.IfStmt) error {
	init, ok := s.Init.(*ast.AssignStmt)
	if !ok || len(init.Rhs) != 1 || s.Else != nil {
		return in.errorf(s, "expected an error-checked call")
	}
	call, ok := init.Rhs[0].(*ast.CallExpr)
	if !ok {
		return in.errorf(s, "expected an error-checked call")
	}
	_, err := in.figCall(call)
	return err
}

func (in *interp) figCall(call *ast.CallExpr) (any, error) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !in.isFig(sel.X) {
		return nil, in.errorf(call, "expected a method call on the figure")
	}
	if in.fig == nil {
		return nil, in.errorf(call, "figure used before construction")
	}
	switch sel.Sel.Name {
	case "Parameter":
		if len(call.Args) < 1 {
			return nil, in.errorf(call, "Parameter needs a name")
		}
		name, err := in.str(call.Args[0])
		if err != nil {
			return nil, err
		}
		var opts []params.Option
		for _, arg := range call.Args[1:] {
			opt, err := in.paramOption(arg)
			if err != nil {
				return nil, err
			}
			opts = append(opts, opt)
		}
		return in.fig.Parameter(name, opts...)
	case "Plot", "Parametric":
		n := 1
		if sel.Sel.Name == "Parametric" {
			n = 2
		}
		if len(call.Args) < n+1 {
			return nil, in.errorf(call, "%s needs %d expression(s) and a binding", sel.Sel.Name, n)
		}
		exprs := make([]sym.Expr, n)
		for i := range exprs {
			e, err := in.expr(call.Args[i])
			if err != nil {
				return nil, err
			}
			exprs[i] = e
		}
		vars, err := in.bindingInput(call.Args[n])
		if err != nil {
			return nil, err
		}
		var opts []figure.PlotOption
		for _, arg := range call.Args[n+1:] {
			opt, err := in.plotOption(arg)
			if err != nil {
				return nil, err
			}
			opts = append(opts, opt)
		}
		if n == 2 {
			return in.fig.Parametric(exprs[0], exprs[1], vars, opts...)
		}
		return in.fig.Plot(exprs[0], vars, opts...)
	case "Info":
		segs := make([]figure.Segment, 0, len(call.Args))
		for _, arg := range call.Args {
			seg, err := in.segment(arg)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
		}
		return in.fig.Info(segs...), nil
	}
	return nil, in.errorf(call, "unsupported figure method %s", sel.Sel.Name)
}

// #endregion run

// #region options
func (in *interp) figureOption(e ast.Expr) (figure.Option, error) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return nil, in.errorf(e, "expected a figure option call")
	}
	switch qualified(call.Fun) {
	case "figure.WithTitle":
		s, err := in.strArgs(call, 1)
		if err != nil {
			return nil, err
		}
		return figure.WithTitle(s[0]), nil
	case "figure.WithSize":
		if len(call.Args) != 2 {
			return nil, in.errorf(call, "WithSize takes two arguments")
		}
		w, err := in.integer(call.Args[0])
		if err != nil {
			return nil, err
		}
		h, err := in.integer(call.Args[1])
		if err != nil {
			return nil, err
		}
		return figure.WithSize(w, h), nil
	case "figure.WithLabels":
		s, err := in.strArgs(call, 2)
		if err != nil {
			return nil, err
		}
		return figure.WithLabels(s[0], s[1]), nil
	case "figure.WithXLim", "figure.WithYLim":
		v, err := in.floatArgs(call, 2)
		if err != nil {
			return nil, err
		}
		if qualified(call.Fun) == "figure.WithXLim" {
			return figure.WithXLim(v[0], v[1]), nil
		}
		return figure.WithYLim(v[0], v[1]), nil
	case "figure.WithGrid", "figure.WithLegend":
		if len(call.Args) != 1 {
			return nil, in.errorf(call, "%s takes one argument", qualified(call.Fun))
		}
		b, err := in.boolean(call.Args[0])
		if err != nil {
			return nil, err
		}
		if qualified(call.Fun) == "figure.WithGrid" {
			return figure.WithGrid(b), nil
		}
		return figure.WithLegend(b), nil
	}
	return nil, in.errorf(call, "unsupported figure option %s", qualified(call.Fun))
}

var paramOptions = map[string]func(float64) params.Option{
	"params.Min":     params.Min,
	"params.Max":     params.Max,
	"params.Step":    params.Step,
	"params.Default": params.Default,
	"params.Value":   params.Value,
}

func (in *interp) paramOption(e ast.Expr) (params.Option, error) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return nil, in.errorf(e, "expected a parameter option call")
	}
	mk, ok := paramOptions[qualified(call.Fun)]
	if !ok {
		return nil, in.errorf(call, "unsupported parameter option %s", qualified(call.Fun))
	}
	v, err := in.floatArgs(call, 1)
	if err != nil {
		return nil, err
	}
	return mk(v[0]), nil
}

func (in *interp) plotOption(e ast.Expr) (figure.PlotOption, error) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return nil, in.errorf(e, "expected a plot option call")
	}
	switch name := qualified(call.Fun); name {
	case "figure.Label", "figure.Color", "figure.LineStyle":
		s, err := in.strArgs(call, 1)
		if err != nil {
			return nil, err
		}
		switch name {
		case "figure.Label":
			return figure.Label(s[0]), nil
		case "figure.Color":
			return figure.Color(s[0]), nil
		}
		return figure.LineStyle(s[0]), nil
	case "figure.LineWidth":
		v, err := in.floatArgs(call, 1)
		if err != nil {
			return nil, err
		}
		return figure.LineWidth(v[0]), nil
	case "figure.Samples":
		if len(call.Args) != 1 {
			return nil, in.errorf(call, "Samples takes one argument")
		}
		n, err := in.integer(call.Args[0])
		if err != nil {
			return nil, err
		}
		return figure.Samples(n), nil
	case "figure.Domain":
		v, err := in.floatArgs(call, 2)
		if err != nil {
			return nil, err
		}
		return figure.Domain(v[0], v[1]), nil
	case "figure.Hidden":
		if len(call.Args) != 1 {
			return nil, in.errorf(call, "Hidden takes one argument")
		}
		b, err := in.boolean(call.Args[0])
		if err != nil {
			return nil, err
		}
		return figure.Hidden(b), nil
	}
	return nil, in.errorf(call, "unsupported plot option %s", qualified(call.Fun))
}

func (in *interp) segment(e ast.Expr) (figure.Segment, error) {
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return figure.Segment{}, in.errorf(e, "expected an info segment call")
	}
	switch qualified(call.Fun) {
	case "figure.Text":
		s, err := in.strArgs(call, 1)
		if err != nil {
			return figure.Segment{}, err
		}
		return figure.Text(s[0]), nil
	case "figure.Placeholder":
		return figure.Placeholder(), nil
	}
	return figure.Segment{}, in.errorf(call, "unsupported info segment %s", qualified(call.Fun))
}

// #endregion options

// #region binding
func (in *interp) bindingInput(e ast.Expr) (binding.Input, error) {
	lit, ok := e.(*ast.CompositeLit)
	if !ok {
		return nil, in.errorf(e, "expected a binding literal")
	}
	switch qualified(lit.Type) {
	case "binding.Positional":
		names, err := in.strList(lit.Elts)
		if err != nil {
			return nil, err
		}
		return binding.Positional(names), nil
	case "binding.PositionalKeyed":
		var out binding.PositionalKeyed
		for _, elt := range lit.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				return nil, in.errorf(elt, "expected Field: value")
			}
			inner, ok := kv.Value.(*ast.CompositeLit)
			if !ok {
				return nil, in.errorf(kv.Value, "expected a slice literal")
			}
			switch {
			case isIdent(kv.Key, "Args"):
				names, err := in.strList(inner.Elts)
				if err != nil {
					return nil, err
				}
				out.Args = names
			case isIdent(kv.Key, "Keys"):
				for _, k := range inner.Elts {
					named, err := in.named(k)
					if err != nil {
						return nil, err
					}
					out.Keys = append(out.Keys, named)
				}
			default:
				return nil, in.errorf(kv.Key, "unknown PositionalKeyed field")
			}
		}
		return out, nil
	}
	return nil, in.errorf(lit, "unsupported binding literal")
}

func (in *interp) named(e ast.Expr) (binding.Named, error) {
	lit, ok := e.(*ast.CompositeLit)
	if !ok {
		return binding.Named{}, in.errorf(e, "expected {Name: ..., Value: ...}")
	}
	var n binding.Named
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			return binding.Named{}, in.errorf(elt, "expected Field: value")
		}
		var err error
		switch {
		case isIdent(kv.Key, "Name"):
			n.Name, err = in.str(kv.Value)
		case isIdent(kv.Key, "Value"):
			n.Value, err = in.float(kv.Value)
		default:
			err = in.errorf(kv.Key, "unknown Named field")
		}
		if err != nil {
			return binding.Named{}, err
		}
	}
	return n, nil
}

// #endregion binding

// #region expressions
var constants = map[string]sym.Expr{"sym.Pi": sym.Pi, "sym.E": sym.E, "sym.Inf": sym.Inf}

func (in *interp) expr(e ast.Expr) (sym.Expr, error) {
	switch t := e.(type) {
	case *ast.Ident:
		s, ok := in.symbols[t.Name]
		if !ok {
			return nil, in.errorf(t, "undeclared symbol variable %s", t.Name)
		}
		return s, nil
	case *ast.SelectorExpr:
		c, ok := constants[qualified(t)]
		if !ok {
			return nil, in.errorf(t, "unknown constant %s", qualified(t))
		}
		return c, nil
	case *ast.CallExpr:
		return in.exprCall(t)
	case *ast.ParenExpr:
		return in.expr(t.X)
	}
	return nil, in.errorf(e, "unsupported expression %T", e)
}

func (in *interp) exprCall(call *ast.CallExpr) (sym.Expr, error) {
	name := qualified(call.Fun)
	fn, ok := strings.CutPrefix(name, "sym.")
	if !ok {
		return nil, in.errorf(call, "unsupported call %s", name)
	}
	switch fn {
	case "Symbol":
		s, err := in.strArgs(call, 1)
		if err != nil {
			return nil, err
		}
		return sym.Symbol(s[0]), nil
	case "Num":
		v, err := in.floatArgs(call, 1)
		if err != nil {
			return nil, err
		}
		return sym.Num(v[0]), nil
	}

	args := make([]sym.Expr, len(call.Args))
	for i, a := range call.Args {
		e, err := in.expr(a)
		if err != nil {
			return nil, err
		}
		args[i] = e
	}
	arity := func(n int) error {
		if len(args) != n {
			return in.errorf(call, "%s takes %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}
	switch fn {
	case "Add":
		return sym.Add(args...), nil
	case "Mul":
		return sym.Mul(args...), nil
	case "Div", "Pow":
		if err := arity(2); err != nil {
			return nil, err
		}
		if fn == "Div" {
			return sym.Div(args[0], args[1]), nil
		}
		return sym.Pow(args[0], args[1]), nil
	case "Neg":
		if err := arity(1); err != nil {
			return nil, err
		}
		return sym.Neg(args[0]), nil
	}
	lib := strings.ToLower(fn)
	if !sym.IsFunction(lib) {
		return nil, in.errorf(call, "unknown function %s", name)
	}
	e, err := sym.Func(lib, args...)
	if err != nil {
		return nil, in.errorf(call, "%v", err)
	}
	return e, nil
}

// #endregion expressions

// #region literals
func (in *interp) isFig(e ast.Expr) bool {
	return in.figName != "" && isIdent(e, in.figName)
}

func isIdent(e ast.Expr, name string) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == name
}

// qualified renders pkg.Name for a selector on a package identifier.
func qualified(e ast.Expr) string {
	sel, ok := e.(*ast.SelectorExpr)
	if !ok {
		return ""
	}
	pkg, ok := sel.X.(*ast.Ident)
	if !ok {
		return ""
	}
	return pkg.Name + "." + sel.Sel.Name
}

func (in *interp) str(e ast.Expr) (string, error) {
	lit, ok := e.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", in.errorf(e, "expected a string literal")
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", in.errorf(e, "bad string literal: %v", err)
	}
	return s, nil
}

func (in *interp) strArgs(call *ast.CallExpr, n int) ([]string, error) {
	if len(call.Args) != n {
		return nil, in.errorf(call, "%s takes %d argument(s)", qualified(call.Fun), n)
	}
	return in.strList(call.Args)
}

func (in *interp) strList(elts []ast.Expr) ([]string, error) {
	out := make([]string, len(elts))
	for i, e := range elts {
		s, err := in.str(e)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (in *interp) float(e ast.Expr) (float64, error) {
	neg := false
	if u, ok := e.(*ast.UnaryExpr); ok && (u.Op == token.SUB || u.Op == token.ADD) {
		neg = u.Op == token.SUB
		e = u.X
	}
	lit, ok := e.(*ast.BasicLit)
	if !ok || (lit.Kind != token.INT && lit.Kind != token.FLOAT) {
		return 0, in.errorf(e, "expected a numeric literal")
	}
	v, err := strconv.ParseFloat(lit.Value, 64)
	if err != nil {
		return 0, in.errorf(e, "bad numeric literal: %v", err)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func (in *interp) floatArgs(call *ast.CallExpr, n int) ([]float64, error) {
	if len(call.Args) != n {
		return nil, in.errorf(call, "%s takes %d argument(s)", qualified(call.Fun), n)
	}
	out := make([]float64, n)
	for i, a := range call.Args {
		v, err := in.float(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (in *interp) integer(e ast.Expr) (int, error) {
	v, err := in.float(e)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, in.errorf(e, "expected an integer literal")
	}
	return int(v), nil
}

func (in *interp) boolean(e ast.Expr) (bool, error) {
	switch {
	case isIdent(e, "true"):
		return true, nil
	case isIdent(e, "false"):
		return false, nil
	}
	return false, in.errorf(e, "expected true or false")
}

// #endregion literals
