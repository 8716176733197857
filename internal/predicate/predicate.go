// Package predicate implements the JSON predicate DSL: a map from
// JsonOptic to a set of Keyword/argument conditions, construction-time
// admissibility validation, and evaluation against a jsn.Jsn document.
//
// Evaluation distinguishes two failure modes. A DataError means the
// document simply didn't satisfy the condition (wrong type, optic missing,
// regex didn't match) — evaluation still succeeds, it just reports false.
// A ConditionError means the condition itself cannot be evaluated at all
// (e.g. a non-numeric decimal literal baked into a ">" condition) and
// evaluation fails outright. This split lets a resolver tell "this stub
// doesn't match" apart from "this stub's predicate is broken".
package predicate

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/optic"
)

// Condition pairs a keyword with its argument.
type Condition struct {
	Keyword Keyword
	Arg     jsn.Jsn
}

// Predicate is the full construction-time contract: one optic maps to one
// or more conditions, all of which must hold for the optic's target.
type Predicate struct {
	Spec map[string]entry
}

type entry struct {
	optic      optic.JsonOptic
	conditions []Condition
}

// Conditions exposes the construction-time spec keyed by its original
// optic text, for callers that need to re-serialize a Predicate (e.g.
// persisting it alongside its owning stub).
func (p *Predicate) Conditions() map[string][]Condition {
	out := make(map[string][]Condition, len(p.Spec))
	for rawOptic, e := range p.Spec {
		out[rawOptic] = e.conditions
	}
	return out
}

// ConstructionError is returned by New when one or more optic/condition
// pairs fail admissibility, collecting every offending pair rather than
// stopping at the first.
type ConstructionError struct {
	Problems []string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("predicate construction failed: %v", e.Problems)
}

// New builds a Predicate from a set of optic-keyed condition lists,
// validating every (optic, keyword, argument) triple for admissibility
// before returning. All offending pairs are collected into a single
// ConstructionError rather than returning on the first one, so a caller
// building a predicate from user input can report every problem at once.
func New(raw map[string][]Condition) (*Predicate, error) {
	spec := make(map[string]entry, len(raw))
	var problems []string

	for rawOptic, conds := range raw {
		o, err := optic.Parse(rawOptic)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%q: %v", rawOptic, err))
			continue
		}
		for _, c := range conds {
			if err := validateCondition(c); err != nil {
				problems = append(problems, fmt.Sprintf("%s %s: %v", rawOptic, c.Keyword, err))
			}
		}
		spec[rawOptic] = entry{optic: o, conditions: conds}
	}

	if len(problems) > 0 {
		return nil, &ConstructionError{Problems: problems}
	}
	return &Predicate{Spec: spec}, nil
}

func validateCondition(c Condition) error {
	kind := classify(c.Arg)
	if !c.Keyword.admits(kind) {
		return fmt.Errorf("keyword %s does not admit argument of this shape", c.Keyword)
	}
	if c.Keyword == Rx {
		s, _ := c.Arg.AsString()
		if _, err := regexp.Compile(s); err != nil {
			return fmt.Errorf("invalid regular expression: %w", err)
		}
	}
	return nil
}

func classify(v jsn.Jsn) argKind {
	switch {
	case v.IsNumeric():
		return argNumeric
	case v.IsString():
		return argString
	case v.IsArray():
		return argArray
	default:
		if _, ok := v.AsBool(); ok {
			return argBool
		}
		return argAny
	}
}

// ConditionError means a condition could not be evaluated at all (as
// opposed to evaluating to false). It always makes Validate return an
// error, never a plain false result.
type ConditionError struct {
	Optic   string
	Keyword Keyword
	Reason  string
}

func (e *ConditionError) Error() string {
	return fmt.Sprintf("condition error at %s %s: %s", e.Optic, e.Keyword, e.Reason)
}

// Validate evaluates p against document root. Returns (true, nil) when
// every optic/condition pair holds, (false, nil) when at least one fails
// as a DataError (document mismatch, not a broken condition), and
// (false, err) with a *ConditionError when a condition itself could not be
// evaluated.
func (p *Predicate) Validate(root jsn.Jsn) (bool, error) {
	result := true
	for rawOptic, e := range p.Spec {
		target, found := optic.GetFirst(root, e.optic)
		if !found {
			target = jsn.Null()
		}
		for _, c := range e.conditions {
			ok, err := evaluateOne(target, c)
			if err != nil {
				return false, &ConditionError{Optic: rawOptic, Keyword: c.Keyword, Reason: err.Error()}
			}
			if !ok {
				result = false
			}
		}
	}
	return result, nil
}

func evaluateOne(target jsn.Jsn, c Condition) (bool, error) {
	switch c.Keyword {
	case Eq:
		return jsnEqual(target, c.Arg), nil
	case NotEq:
		return !jsnEqual(target, c.Arg), nil
	case Greater, Gte, Less, Lte:
		return compareNumeric(target, c.Arg, c.Keyword)
	case Rx:
		s, ok := target.AsString()
		if !ok {
			return false, nil
		}
		pattern, _ := c.Arg.AsString()
		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("invalid regex %q: %w", pattern, err)
		}
		return re.MatchString(s), nil
	case Size:
		n, ok := sizeOf(target)
		if !ok {
			return false, nil
		}
		want, ok := c.Arg.AsSigned()
		if !ok {
			wf, _ := c.Arg.AsFloat()
			want = int64(wf)
		}
		return int64(n) == want, nil
	case Exists:
		want, _ := c.Arg.AsBool()
		return (!target.IsNull()) == want, nil
	case In:
		return memberOf(target, c.Arg), nil
	case NotIn:
		return !memberOf(target, c.Arg), nil
	case AllIn:
		arr, ok := target.AsArray()
		if !ok {
			return false, nil
		}
		for _, el := range arr {
			if !memberOf(el, c.Arg) {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown keyword %s", c.Keyword)
	}
}

func jsnEqual(a, b jsn.Jsn) bool {
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.AsFloat()
		bf, _ := b.AsFloat()
		return decimal.NewFromFloat(af).Equal(decimal.NewFromFloat(bf))
	}
	return a.String() == b.String()
}

func compareNumeric(target, arg jsn.Jsn, kwd Keyword) (bool, error) {
	tf, ok := target.AsFloat()
	if !ok {
		return false, nil
	}
	af, ok := arg.AsFloat()
	if !ok {
		return false, fmt.Errorf("condition argument is not numeric")
	}
	t := decimal.NewFromFloat(tf)
	a := decimal.NewFromFloat(af)
	switch kwd {
	case Greater:
		return t.GreaterThan(a), nil
	case Gte:
		return t.GreaterThanOrEqual(a), nil
	case Less:
		return t.LessThan(a), nil
	case Lte:
		return t.LessThanOrEqual(a), nil
	default:
		return false, fmt.Errorf("not a comparison keyword: %s", kwd)
	}
}

func sizeOf(v jsn.Jsn) (int, bool) {
	if arr, ok := v.AsArray(); ok {
		return len(arr), true
	}
	if s, ok := v.AsString(); ok {
		return len(s), true
	}
	if obj, _, ok := v.AsObject(); ok {
		return len(obj), true
	}
	return 0, false
}

func memberOf(v jsn.Jsn, set jsn.Jsn) bool {
	arr, ok := set.AsArray()
	if !ok {
		return false
	}
	for _, el := range arr {
		if jsnEqual(v, el) {
			return true
		}
	}
	return false
}
