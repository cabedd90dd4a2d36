package codegen

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"
)

// reserved names cannot hold a symbol: they are used by the generated body
// or would shadow something it relies on.
var reserved = map[string]bool{
	"fig": true, "err": true, "_": true,
	"sym": true, "figure": true, "params": true, "binding": true,
	"nil": true, "true": true, "false": true, "iota": true,
	"error": true, "string": true, "int": true, "float64": true, "bool": true,
	"len": true, "append": true, "make": true, "new": true, "panic": true,
}

// idents assigns each symbol name a distinct Go identifier, in order.
type idents struct {
	byName map[string]string
}

func newIdents(names []string) *idents {
	id := &idents{byName: make(map[string]string, len(names))}
	taken := make(map[string]bool, len(names))
	for _, name := range names {
		base := identFor(name)
		cand := base
		for n := 2; taken[cand] || reserved[cand] || token.IsKeyword(cand); n++ {
			cand = base + "_" + strconv.Itoa(n)
		}
		taken[cand] = true
		id.byName[name] = cand
	}
	return id
}

func (id *idents) resolve(name string) (string, bool) {
	s, ok := id.byName[name]
	return s, ok
}

// identFor keeps letters, digits and underscores of name and maps the rest
// to underscores.
func identFor(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" {
		return "s"
	}
	if r := []rune(s)[0]; unicode.IsDigit(r) {
		s = "s" + s
	}
	return s
}
