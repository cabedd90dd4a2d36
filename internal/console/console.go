// Package console interprets one-line commands against a live figure. It
// backs the figcode repl and is usable from any line-oriented front end.
package console

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/livefig/binding"
	"github.com/danielpatrickdp/livefig/figure"
	"github.com/danielpatrickdp/livefig/params"
	"github.com/danielpatrickdp/livefig/snapshot"
	"github.com/danielpatrickdp/livefig/sym"
)

// ErrUsage indicates a malformed command line.
var ErrUsage = errors.New("usage")

// #region session
// Session holds the figure a console drives.
type Session struct {
	fig *figure.Figure
	out io.Writer
}

// NewSession returns a session writing command output to out.
func NewSession(fig *figure.Figure, out io.Writer) *Session {
	return &Session{fig: fig, out: out}
}

// Figure returns the driven figure.
func (s *Session) Figure() *figure.Figure { return s.fig }

type command struct {
	usage string
	run   func(s *Session, rest string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"param":      {"param NAME [FIELD=VALUE ...]", (*Session).param},
		"set":        {"set NAME FIELD VALUE", (*Session).set},
		"get":        {"get NAME FIELD", (*Session).get},
		"fields":     {"fields NAME", (*Session).fields},
		"params":     {"params", (*Session).params},
		"plot":       {"plot VAR [NAME=VALUE ...] : EXPR", (*Session).plot},
		"parametric": {"parametric VAR [NAME=VALUE ...] : XEXPR ; YEXPR", (*Session).parametric},
		"info":       {"info TEXT (with $name for live values)", (*Session).info},
		"snapshot":   {"snapshot", (*Session).snapshot},
		"code":       {"code", (*Session).code},
		"remove":     {"remove param NAME | remove plot N", (*Session).remove},
		"help":       {"help", (*Session).help},
	}
}

// Exec runs one command line. Blank lines and lines starting with # do
// nothing.
func (s *Session) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	return cmd.run(s, strings.TrimSpace(rest))
}

// Commands lists the command names, sorted. Used for completion.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func usage(name string) error {
	return fmt.Errorf("%w: %s", ErrUsage, commands[name].usage)
}
// #endregion session

// #region parameter-commands
func (s *Session) param(rest string) error {
	words := strings.Fields(rest)
	if len(words) == 0 {
		return usage("param")
	}
	var opts []params.Option
	for _, w := range words[1:] {
		key, val, ok := strings.Cut(w, "=")
		if !ok {
			return usage("param")
		}
		f, err := params.ParseField(key)
		if err != nil {
			return err
		}
		v, err := parseFloat(val)
		if err != nil {
			return err
		}
		opts = append(opts, params.Set(f, v))
	}
	p, err := s.fig.Parameter(words[0], opts...)
	if err != nil {
		return err
	}
	s.printValues(p.Name(), p.Values())
	return nil
}

func (s *Session) set(rest string) error {
	words := strings.Fields(rest)
	if len(words) != 3 {
		return usage("set")
	}
	p, f, err := s.lookup(words[0], words[1])
	if err != nil {
		return err
	}
	v, err := parseFloat(words[2])
	if err != nil {
		return err
	}
	return p.Set(f, v)
}

func (s *Session) get(rest string) error {
	words := strings.Fields(rest)
	if len(words) != 2 {
		return usage("get")
	}
	p, f, err := s.lookup(words[0], words[1])
	if err != nil {
		return err
	}
	v, err := p.Get(f)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, sym.FormatNumber(v))
	return nil
}

func (s *Session) fields(rest string) error {
	words := strings.Fields(rest)
	if len(words) != 1 {
		return usage("fields")
	}
	p, err := s.parameter(words[0])
	if err != nil {
		return err
	}
	for _, f := range p.Options() {
		v, _ := p.Get(f)
		fmt.Fprintf(s.out, "%-13s %s\n", f, sym.FormatNumber(v))
	}
	return nil
}

func (s *Session) params(rest string) error {
	if rest != "" {
		return usage("params")
	}
	for _, p := range s.fig.Params().All() {
		s.printValues(p.Name(), p.Values())
	}
	return nil
}

func (s *Session) parameter(name string) (*params.Parameter, error) {
	p, ok := s.fig.Param(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", params.ErrNotFound, name)
	}
	return p, nil
}

func (s *Session) lookup(name, field string) (*params.Parameter, params.Field, error) {
	p, err := s.parameter(name)
	if err != nil {
		return nil, "", err
	}
	f, err := params.ParseField(field)
	if err != nil {
		return nil, "", err
	}
	return p, f, nil
}

func (s *Session) printValues(name string, v params.Values) {
	fmt.Fprintf(s.out, "%s value=%s default_value=%s min=%s max=%s step=%s\n", name,
		sym.FormatNumber(v.Value), sym.FormatNumber(v.Default),
		sym.FormatNumber(v.Min), sym.FormatNumber(v.Max), sym.FormatNumber(v.Step))
}
// #endregion parameter-commands

// #region plot-commands
func (s *Session) plot(rest string) error {
	in, body, err := parseBinding(rest)
	if err != nil {
		return usage("plot")
	}
	e, err := sym.Parse(body)
	if err != nil {
		return err
	}
	p, err := s.fig.Plot(e, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "plot %d: %s\n", len(s.fig.Plots()), p.Style().Label)
	return nil
}

func (s *Session) parametric(rest string) error {
	in, body, err := parseBinding(rest)
	if err != nil {
		return usage("parametric")
	}
	xs, ys, ok := strings.Cut(body, ";")
	if !ok {
		return usage("parametric")
	}
	x, err := sym.Parse(strings.TrimSpace(xs))
	if err != nil {
		return err
	}
	y, err := sym.Parse(strings.TrimSpace(ys))
	if err != nil {
		return err
	}
	p, err := s.fig.Parametric(x, y, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "plot %d: %s\n", len(s.fig.Plots()), p.Style().Label)
	return nil
}

// parseBinding splits "VAR [NAME=VALUE ...] : BODY".
func parseBinding(rest string) (binding.Input, string, error) {
	head, body, ok := strings.Cut(rest, ":")
	words := strings.Fields(head)
	if !ok || len(words) == 0 || strings.TrimSpace(body) == "" {
		return nil, "", ErrUsage
	}
	var keys []binding.Named
	for _, w := range words[1:] {
		name, val, ok := strings.Cut(w, "=")
		if !ok {
			return nil, "", ErrUsage
		}
		v, err := parseFloat(val)
		if err != nil {
			return nil, "", err
		}
		keys = append(keys, binding.Named{Name: name, Value: v})
	}
	if len(keys) == 0 {
		return binding.Positional{words[0]}, strings.TrimSpace(body), nil
	}
	return binding.PositionalKeyed{Args: []string{words[0]}, Keys: keys}, strings.TrimSpace(body), nil
}
// #endregion plot-commands

// #region info-commands
// info splits the text at $name references; each becomes a segment showing
// the named parameter's current value.
func (s *Session) info(rest string) error {
	var segs []figure.Segment
	for rest != "" {
		i := strings.IndexByte(rest, '$')
		if i < 0 {
			segs = append(segs, figure.Text(rest))
			break
		}
		if i > 0 {
			segs = append(segs, figure.Text(rest[:i]))
		}
		j := i + 1
		for j < len(rest) && isIdentByte(rest[j]) {
			j++
		}
		name := rest[i+1 : j]
		if name == "" {
			segs = append(segs, figure.Text("$"))
		} else {
			segs = append(segs, figure.Computed(func(v sym.Env) string { return sym.FormatNumber(v[name]) }))
		}
		rest = rest[j:]
	}
	card := s.fig.Info(segs...)
	fmt.Fprintf(s.out, "info %d: %s\n", len(s.fig.Infos()), card.Render(s.fig.Snapshot().ParamValues()))
	return nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
// #endregion info-commands

// #region output-commands
func (s *Session) snapshot(rest string) error {
	if rest != "" {
		return usage("snapshot")
	}
	data, err := snapshot.Marshal(s.fig.Snapshot())
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(data))
	return nil
}

func (s *Session) code(rest string) error {
	if rest != "" {
		return usage("code")
	}
	src, err := s.fig.Code()
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, src)
	return nil
}

func (s *Session) remove(rest string) error {
	words := strings.Fields(rest)
	if len(words) != 2 {
		return usage("remove")
	}
	switch words[0] {
	case "param":
		return s.fig.RemoveParameter(words[1])
	case "plot":
		n, err := strconv.Atoi(words[1])
		plots := s.fig.Plots()
		if err != nil || n < 1 || n > len(plots) {
			return fmt.Errorf("plot %q: %w", words[1], figure.ErrPlotNotFound)
		}
		return s.fig.RemovePlot(plots[n-1].ID())
	}
	return usage("remove")
}

func (s *Session) help(string) error {
	for _, name := range Commands() {
		fmt.Fprintf(s.out, "  %s\n", commands[name].usage)
	}
	return nil
}
// #endregion output-commands

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, s)
	}
	return v, nil
}
