package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danslapman/stubbery/internal/apperr"
	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/predicate"
	"github.com/danslapman/stubbery/internal/store/memstore"
	"github.com/danslapman/stubbery/internal/stub"
)

func TestCreateStubReturnsAssignedID(t *testing.T) {
	a := New(memstore.New())

	created, err := a.CreateStub(context.Background(), stub.NewStub{
		Method: stub.MethodGet,
		Path:   "/widgets",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, created.ID.String(), "")
}

func TestFetchStatesRejectsMalformedPredicate(t *testing.T) {
	a := New(memstore.New())

	_, err := a.FetchStates(context.Background(), StateSearchRequest{
		Spec: map[string][]predicate.Condition{
			"count": {{Keyword: predicate.Greater, Arg: jsn.String("not a number")}},
		},
	})
	assert.Error(t, err)
	var appErr *apperr.Error
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindPredicateConstruction, appErr.Kind)
}

func TestRecordStateThenFetchStatesFindsIt(t *testing.T) {
	a := New(memstore.New())
	ctx := context.Background()

	_, err := a.RecordState(ctx, jsn.Object([]string{"status"}, map[string]jsn.Jsn{"status": jsn.String("active")}))
	assert.NoError(t, err)

	states, err := a.FetchStates(ctx, StateSearchRequest{
		Spec: map[string][]predicate.Condition{
			"status": {{Keyword: predicate.Eq, Arg: jsn.String("active")}},
		},
	})
	assert.NoError(t, err)
	assert.Len(t, states, 1)
}
