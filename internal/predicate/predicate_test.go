package predicate

import (
	"errors"
	"testing"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/optic"
)

func TestValidateEqualsMatch(t *testing.T) {
	p, err := New(map[string][]Condition{
		"method": {{Keyword: Eq, Arg: jsn.String("GET")}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	doc, _ := jsn.Parse([]byte(`{"method":"GET"}`))
	ok, err := p.Validate(doc)
	if err != nil || !ok {
		t.Fatalf("Validate = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestValidateMismatchIsDataErrorNotErr(t *testing.T) {
	p, _ := New(map[string][]Condition{
		"method": {{Keyword: Eq, Arg: jsn.String("GET")}},
	})
	doc, _ := jsn.Parse([]byte(`{"method":"POST"}`))
	ok, err := p.Validate(doc)
	if err != nil {
		t.Fatalf("expected nil error for a data mismatch, got %v", err)
	}
	if ok {
		t.Fatalf("expected false for mismatched method")
	}
}

func TestValidateBrokenConditionIsConditionError(t *testing.T) {
	p := &Predicate{Spec: map[string]entry{
		"count": {optic: optic.MustParse("count"), conditions: []Condition{{Keyword: Greater, Arg: jsn.String("not-a-number")}}},
	}}
	doc, _ := jsn.Parse([]byte(`{"count":5}`))
	_, err := p.Validate(doc)
	var ce *ConditionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConditionError, got %v", err)
	}
}

func TestNewRejectsInadmissibleCombination(t *testing.T) {
	_, err := New(map[string][]Condition{
		"count": {{Keyword: Size, Arg: jsn.String("nope")}},
	})
	var ce *ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConstructionError, got %v", err)
	}
}
