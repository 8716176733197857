// Package sqlpredicate translates the JSON predicate DSL (internal/predicate)
// into PostgreSQL jsonpath filter expressions, for pushing State lookups
// down into the store instead of scanning every row in the process.
package sqlpredicate

import (
	"fmt"
	"strings"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/optic"
)

// Keyword is the SQL-side condition operator set: JKw's comparison and
// equality operators, plus "^" (starts-with), minus the array-membership
// operators ("[_]", "![_]", "&[_]") that have no single jsonpath operator
// equivalent and are evaluated in the application layer instead.
type Keyword string

const (
	Eq      Keyword = "=="
	NotEq   Keyword = "!="
	Greater Keyword = ">"
	Gte     Keyword = ">="
	Less    Keyword = "<"
	Lte     Keyword = "<="
	Rx      Keyword = "~="
	StartsWith Keyword = "^"
)

var sqlOp = map[Keyword]string{
	Eq:      "==",
	NotEq:   "!=",
	Greater: ">",
	Gte:     ">=",
	Less:    "<",
	Lte:     "<=",
	Rx:      "like_regex",
}

// Condition is one optic-scoped SQL-side condition.
type Condition struct {
	Optic   optic.JsonOptic
	Keyword Keyword
	Arg     jsn.Jsn
}

// Spec is an ordered list of conditions, all of which must hold (an
// implicit AND), mirroring the JSON predicate's per-optic condition map.
type Spec []Condition

// Translation is a single jsonpath filter expression plus the bound
// parameter value that belongs at $N in the surrounding SQL query.
type Translation struct {
	JSONPathExpr string      // e.g. "$.method ?(@ == $1)"
	Param        interface{} // value to bind at the corresponding placeholder
}

// Translate converts spec into a list of Translations, one per condition,
// each carrying its own placeholder numbered starting at firstParamIndex.
// Every condition must use a Keyword this package supports: callers should
// reject the array-membership JKw keywords (In/NotIn/AllIn) before a
// predicate reaches persistence, since those can only be evaluated once the
// row has been fetched into the process.
func Translate(spec Spec, firstParamIndex int) ([]Translation, error) {
	out := make([]Translation, 0, len(spec))
	idx := firstParamIndex
	for _, c := range spec {
		t, err := translateOne(c, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		idx++
	}
	return out, nil
}

func translateOne(c Condition, paramIndex int) (Translation, error) {
	base := c.Optic.ToJSONPath()
	param, err := bindValue(c.Arg)
	if err != nil {
		return Translation{}, fmt.Errorf("sqlpredicate: %s %s: %w", base, c.Keyword, err)
	}

	placeholder := fmt.Sprintf("$%d", paramIndex)

	var expr string
	switch c.Keyword {
	case Eq, NotEq, Greater, Gte, Less, Lte:
		op, ok := sqlOp[c.Keyword]
		if !ok {
			return Translation{}, fmt.Errorf("sqlpredicate: unsupported keyword %s", c.Keyword)
		}
		expr = fmt.Sprintf("%s ?(@ %s %s)", base, op, placeholder)
	case Rx:
		expr = fmt.Sprintf(`%s ?(@ like_regex %s)`, base, placeholder)
	case StartsWith:
		expr = fmt.Sprintf(`%s ?(@ starts with %s)`, base, placeholder)
	default:
		return Translation{}, fmt.Errorf("sqlpredicate: keyword %s cannot be pushed down to SQL", c.Keyword)
	}

	return Translation{JSONPathExpr: expr, Param: param}, nil
}

// bindValue maps a jsn.Jsn scalar to the Go type lib/pq/database-sql binds
// as the corresponding jsonpath vars parameter: bools bind as bool, signed
// integers as int64, strings as string; arrays and objects bind as their
// canonical JSON text (for equality/inequality against composite values);
// floats bind as float64. Null cannot appear as a condition argument.
func bindValue(v jsn.Jsn) (interface{}, error) {
	switch {
	case v.IsNull():
		return nil, fmt.Errorf("null is not a valid condition argument")
	default:
	}
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	if i, ok := v.AsSigned(); ok {
		return i, nil
	}
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	if v.IsArray() || v.IsObject() {
		return v.String(), nil
	}
	if f, ok := v.AsFloat(); ok {
		return f, nil
	}
	return nil, fmt.Errorf("unsupported argument shape")
}

// CombineExprs joins a list of jsonpath filter expressions sharing a
// common root into a single AND'd WHERE fragment usable as one SQL
// predicate (e.g. across several distinct optics in the same Spec).
// Uses jsonb's containment operator "@?", whose jsonpath operand can be a
// filter expression returning a set of matched items, unlike "@@"
// (jsonb_path_match), which requires the jsonpath to evaluate to a single
// boolean.
func CombineExprs(translations []Translation, column string) string {
	exprs := make([]string, len(translations))
	for i, t := range translations {
		exprs[i] = fmt.Sprintf("%s @? '%s'", column, t.JSONPathExpr)
	}
	return strings.Join(exprs, " AND ")
}
