// Package templater implements substitution of "${optic}"-style expressions
// embedded in JSON values against a source document, used to build stub
// response bodies and persisted state from captured request data.
//
// Three expression forms are recognized:
//
//	${optic}    resolve optic, substitute the resolved Jsn value as-is
//	$:{optic}   resolve optic, cast the result to its string rendering
//	$~{optic}   resolve optic assuming it is a string, parse that string
//	            back into a Jsn value (the inverse of $:{...}); a non-string
//	            value, or a string that does not parse, is used unchanged
//
// A string value that is *entirely* one such expression (nothing before or
// after it) is replaced by the resolved value directly, preserving its
// type — substituting "${count}" where count is 3 yields the number 3, not
// the string "3". A string containing an expression alongside other text
// (a "composite" substitution, e.g. "id-${id}") always substitutes the
// string-rendering of the resolved value, concatenated with the
// surrounding literal text, regardless of which of the three forms is
// used.
//
// When an optic fails to resolve, the composite case falls back to
// rendering the literal optic path, while the whole-string case falls
// back to rendering the literal expression text (including the "${", "$:{"
// or "$~{" delimiters). This asymmetry mirrors the original implementation
// exactly and is kept deliberately rather than unified.
package templater

import (
	"strings"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/optic"
)

type exprKind int

const (
	exprPlain exprKind = iota
	exprStringCast
	exprValueCast
)

type expr struct {
	kind      exprKind
	opticText string
	raw       string // the full "${...}"/"$:{...}"/"$~{...}" text, for fallback rendering
}

// scan finds every "${...}"/"$:{...}"/"$~{...}" span in s. Braces are not
// balanced recursively (an optic body never itself contains "{"), so a
// simple "find prefix, find matching close brace" scan suffices; this
// can't be done with regexp because the prefix varies in length ("$" vs
// "$:" vs "$~") but the close delimiter is always a single "}".
func scan(s string) []expr {
	var out []expr
	i := 0
	for i < len(s) {
		prefix, kind, ok := matchPrefix(s[i:])
		if !ok {
			i++
			continue
		}
		start := i + len(prefix)
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			i++
			continue
		}
		end += start
		out = append(out, expr{
			kind:      kind,
			opticText: s[start:end],
			raw:       s[i : end+1],
		})
		i = end + 1
	}
	return out
}

func matchPrefix(s string) (string, exprKind, bool) {
	switch {
	case strings.HasPrefix(s, "$:{"):
		return "$:{", exprStringCast, true
	case strings.HasPrefix(s, "$~{"):
		return "$~{", exprValueCast, true
	case strings.HasPrefix(s, "${"):
		return "${", exprPlain, true
	default:
		return "", 0, false
	}
}

// Resolve expands every expression found in s against source, returning
// the Jsn value the whole string should become. Whole-string substitution
// (s is exactly one expression) preserves the resolved value's type;
// composite substitution (anything else) always renders strings.
func Resolve(s string, source jsn.Jsn) jsn.Jsn {
	exprs := scan(s)
	if len(exprs) == 0 {
		return jsn.String(s)
	}

	if len(exprs) == 1 && exprs[0].raw == s {
		return resolveWhole(exprs[0], source)
	}

	var b strings.Builder
	pos := 0
	for _, e := range exprs {
		idx := strings.Index(s[pos:], e.raw)
		if idx < 0 {
			continue
		}
		idx += pos
		b.WriteString(s[pos:idx])
		b.WriteString(resolveComposite(e, source))
		pos = idx + len(e.raw)
	}
	b.WriteString(s[pos:])
	return jsn.String(b.String())
}

func resolveWhole(e expr, source jsn.Jsn) jsn.Jsn {
	o, err := optic.Parse(e.opticText)
	if err != nil {
		return jsn.String(e.raw)
	}
	val, found := optic.GetFirst(source, o)
	if !found {
		return jsn.String(e.raw)
	}
	switch e.kind {
	case exprStringCast:
		return jsn.String(val.String())
	case exprValueCast:
		s, ok := val.AsString()
		if !ok {
			return val
		}
		parsed, err := jsn.Parse([]byte(s))
		if err != nil {
			return val
		}
		return parsed
	default:
		return val
	}
}

func resolveComposite(e expr, source jsn.Jsn) string {
	o, err := optic.Parse(e.opticText)
	if err != nil {
		return e.opticText
	}
	val, found := optic.GetFirst(source, o)
	if !found {
		return e.opticText
	}
	if e.kind == exprValueCast {
		s, ok := val.AsString()
		if ok {
			if parsed, err := jsn.Parse([]byte(s)); err == nil {
				return parsed.String()
			}
		}
	}
	if s, ok := val.AsString(); ok {
		return s
	}
	return val.String()
}

// UpdateInPlace walks tree recursively, applying Resolve to every scalar
// string it encounters (leaving non-string scalars, array/object shape,
// and key names untouched), and returns the rebuilt tree.
func UpdateInPlace(tree jsn.Jsn, source jsn.Jsn) jsn.Jsn {
	switch {
	case tree.IsString():
		s, _ := tree.AsString()
		return Resolve(s, source)
	case tree.IsArray():
		arr, _ := tree.AsArray()
		out := make([]jsn.Jsn, len(arr))
		for i, el := range arr {
			out[i] = UpdateInPlace(el, source)
		}
		return jsn.Array(out)
	case tree.IsObject():
		vals, keys, _ := tree.AsObject()
		newVals := make(map[string]jsn.Jsn, len(vals))
		for k, v := range vals {
			newVals[k] = UpdateInPlace(v, source)
		}
		return jsn.Object(keys, newVals)
	default:
		return tree
	}
}

// SubstituteInPlace is UpdateInPlace restricted to a single optic target
// within tree: only the value at target is substituted (recursively, if
// it is itself a composite structure), everything else is left exactly as
// it was.
func SubstituteInPlace(tree jsn.Jsn, target optic.JsonOptic, source jsn.Jsn) jsn.Jsn {
	val, found := optic.GetFirst(tree, target)
	if !found {
		return tree
	}
	return optic.Set(tree, target, UpdateInPlace(val, source))
}

// PatchInPlace applies UpdateInPlace only at the optics named by schema,
// used when a response template should substitute some fields from the
// captured request while leaving the rest of the document as literal,
// pre-rendered JSON.
func PatchInPlace(tree jsn.Jsn, schema []optic.JsonOptic, source jsn.Jsn) jsn.Jsn {
	out := tree
	for _, o := range schema {
		out = SubstituteInPlace(out, o, source)
	}
	return out
}
