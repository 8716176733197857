// Package optic implements JsonOptic, a small path language over jsn.Jsn
// trees: a sequence of field steps, index steps, and wildcard traversal
// steps, parseable from and renderable to a dotted human form, and
// renderable to the PostgreSQL JSON-path form used by internal/sqlpredicate.
package optic

import (
	"fmt"
	"strconv"
	"strings"
)

// PartKind discriminates the three step kinds an optic can hold.
type PartKind int

const (
	PartField PartKind = iota
	PartIndex
	PartTraverse
)

// PathPart is one step of a JsonOptic.
type PathPart struct {
	Kind  PartKind
	Field string
	Index int
}

func Field(name string) PathPart  { return PathPart{Kind: PartField, Field: name} }
func Index(i int) PathPart        { return PathPart{Kind: PartIndex, Index: i} }
func Traverse() PathPart          { return PathPart{Kind: PartTraverse} }

func (p PathPart) String() string {
	switch p.Kind {
	case PartField:
		return p.Field
	case PartIndex:
		return "[" + strconv.Itoa(p.Index) + "]"
	case PartTraverse:
		return "$"
	default:
		return ""
	}
}

// JsonOptic is an ordered sequence of PathPart steps.
type JsonOptic struct {
	Parts []PathPart
}

// Root is the empty optic, referring to the whole document.
func Root() JsonOptic { return JsonOptic{} }

func New(parts ...PathPart) JsonOptic { return JsonOptic{Parts: parts} }

// Append returns a new optic with part appended.
func (o JsonOptic) Append(p PathPart) JsonOptic {
	parts := make([]PathPart, len(o.Parts)+1)
	copy(parts, o.Parts)
	parts[len(o.Parts)] = p
	return JsonOptic{Parts: parts}
}

// IsPureTraverse reports whether the optic consists solely of a single
// wildcard traversal step — the special case validate() treats as
// is_array() rather than non-emptiness-of-results.
func (o JsonOptic) IsPureTraverse() bool {
	return len(o.Parts) == 1 && o.Parts[0].Kind == PartTraverse
}

// String renders the human, dot-joined form: fields separated by ".",
// index steps rendered as "[N]", traverse steps rendered as the bare
// token "$", e.g. "a.[2].b" or "items.$.name".
func (o JsonOptic) String() string {
	segs := make([]string, len(o.Parts))
	for i, p := range o.Parts {
		segs[i] = p.String()
	}
	return strings.Join(segs, ".")
}

// ToJSONPath renders the PostgreSQL jsonpath form: "$.a[2].b",
// "$.items[*].name".
func (o JsonOptic) ToJSONPath() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, p := range o.Parts {
		switch p.Kind {
		case PartField:
			b.WriteByte('.')
			b.WriteString(p.Field)
		case PartIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(p.Index))
			b.WriteByte(']')
		case PartTraverse:
			b.WriteString("[*]")
		}
	}
	return b.String()
}

// Parse parses the dotted human form back into a JsonOptic. Grammar:
// a dot-separated sequence of segments, each either a bare field name,
// "[N]" (an index step), or "$" (a traverse step).
func Parse(s string) (JsonOptic, error) {
	if s == "" {
		return Root(), nil
	}
	segs := strings.Split(s, ".")
	parts := make([]PathPart, 0, len(segs))
	for _, seg := range segs {
		p, err := parseSegment(seg)
		if err != nil {
			return JsonOptic{}, fmt.Errorf("optic: invalid segment %q in %q: %w", seg, s, err)
		}
		parts = append(parts, p)
	}
	return JsonOptic{Parts: parts}, nil
}

func parseSegment(seg string) (PathPart, error) {
	if seg == "$" {
		return Traverse(), nil
	}
	if strings.HasPrefix(seg, "[") && strings.HasSuffix(seg, "]") {
		inner := seg[1 : len(seg)-1]
		i, err := strconv.Atoi(inner)
		if err != nil {
			return PathPart{}, fmt.Errorf("not a valid index: %q", inner)
		}
		return Index(i), nil
	}
	if seg == "" {
		return PathPart{}, fmt.Errorf("empty field name")
	}
	return Field(seg), nil
}

// MustParse is like Parse but panics on error; used for optics fixed at
// construction time (e.g. tests, compiled-in constants).
func MustParse(s string) JsonOptic {
	o, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return o
}
