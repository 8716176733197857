package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/predicate"
	"github.com/danslapman/stubbery/internal/stub"
)

func TestInsertAndFindCandidatesFiltersByMethodAndPath(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.InsertStub(ctx, stub.NewStub{
		Method: stub.MethodGet,
		Path:   "/widgets",
		Scope:  stub.ScopePersistent,
	})
	assert.NoError(t, err)
	assert.NotEqual(t, created.ID.String(), "")

	matches, err := s.FindCandidates(ctx, stub.MethodGet, "/widgets")
	assert.NoError(t, err)
	assert.Len(t, matches, 1)

	none, err := s.FindCandidates(ctx, stub.MethodPost, "/widgets")
	assert.NoError(t, err)
	assert.Empty(t, none)
}

func TestDecrementCountdownDeletesStubWhenExhausted(t *testing.T) {
	s := New()
	ctx := context.Background()
	times := 1

	created, err := s.InsertStub(ctx, stub.NewStub{
		Method: stub.MethodGet,
		Path:   "/one-shot",
		Scope:  stub.ScopeCountdown,
		Times:  &times,
	})
	assert.NoError(t, err)

	_, err = s.DecrementCountdown(ctx, created.ID)
	assert.NoError(t, err)

	matches, err := s.FindCandidates(ctx, stub.MethodGet, "/one-shot")
	assert.NoError(t, err)
	assert.Empty(t, matches)
}

func TestInsertStateAndFindStatesAppliesPredicate(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.InsertState(ctx, jsn.Object([]string{"status"}, map[string]jsn.Jsn{"status": jsn.String("active")}))
	assert.NoError(t, err)
	_, err = s.InsertState(ctx, jsn.Object([]string{"status"}, map[string]jsn.Jsn{"status": jsn.String("closed")}))
	assert.NoError(t, err)

	pred, err := predicate.New(map[string][]predicate.Condition{
		"status": {{Keyword: predicate.Eq, Arg: jsn.String("active")}},
	})
	assert.NoError(t, err)

	matches, err := s.FindStates(ctx, pred)
	assert.NoError(t, err)
	assert.Len(t, matches, 1)
}
