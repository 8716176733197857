// Package admin implements the two operations the admin HTTP surface
// exposes: CreateStub and FetchStates, grounded on the original
// implementation's AdminApiHandler (a thin wrapper delegating straight to
// the store).
package admin

import (
	"context"

	"github.com/danslapman/stubbery/internal/apperr"
	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/predicate"
	"github.com/danslapman/stubbery/internal/store"
	"github.com/danslapman/stubbery/internal/stub"
)

// Admin wraps a store.Store with the admin-surface operations.
type Admin struct {
	store store.Store
}

func New(s store.Store) *Admin {
	return &Admin{store: s}
}

// CreateStub registers a new stub, returning the stored record (with its
// assigned ID and Created timestamp) on success.
func (a *Admin) CreateStub(ctx context.Context, n stub.NewStub) (stub.Stub, error) {
	created, err := a.store.InsertStub(ctx, n)
	if err != nil {
		return stub.Stub{}, apperr.Wrap(apperr.KindStoreError, "failed to create stub", err)
	}
	return created, nil
}

// StateSearchRequest is the admin surface's fetch_states input: a JSON
// predicate spec (optic -> keyword -> argument), the same shape a stub's
// query/header/body predicates use.
type StateSearchRequest struct {
	Spec map[string][]predicate.Condition
}

// FetchStates finds every recorded state matching req's predicate.
func (a *Admin) FetchStates(ctx context.Context, req StateSearchRequest) ([]stub.State, error) {
	pred, err := predicate.New(req.Spec)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPredicateConstruction, "invalid state search predicate", err)
	}

	states, err := a.store.FindStates(ctx, pred)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStoreError, "failed to search states", err)
	}
	return states, nil
}

// RecordState inserts a new state document. The exec handler's persist
// step (internal/stub.PersistOp) writes through store.InsertState directly
// rather than through this method.
func (a *Admin) RecordState(ctx context.Context, data jsn.Jsn) (stub.State, error) {
	st, err := a.store.InsertState(ctx, data)
	if err != nil {
		return stub.State{}, apperr.Wrap(apperr.KindStoreError, "failed to record state", err)
	}
	return st, nil
}
