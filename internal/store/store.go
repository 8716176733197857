// Package store defines the persistence contract stub resolution and the
// admin surface run against, satisfied by internal/store/memstore (the
// zero-config default) and internal/store/pgstore (Postgres, with
// predicate push-down via internal/sqlpredicate).
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/stub"
)

// Store is the contract spec.md's persistence component names:
// insert_stub, find_stubs (candidate narrowing's first stage), a
// transactional countdown decrement, and the admin surface's state
// search and insertion.
type Store interface {
	InsertStub(ctx context.Context, s stub.NewStub) (stub.Stub, error)

	// FindCandidates returns every non-expired stub registered for method
	// at path, in an arbitrary order — internal/resolver performs the
	// remaining staged narrowing and the scope/id tie-break.
	FindCandidates(ctx context.Context, method stub.HttpMethod, path string) ([]stub.Stub, error)

	// DecrementCountdown atomically decrements a ScopeCountdown stub's
	// remaining Times and returns the updated stub; once Times reaches
	// zero the stub is removed from future FindCandidates results.
	DecrementCountdown(ctx context.Context, id uuid.UUID) (stub.Stub, error)

	InsertState(ctx context.Context, data jsn.Jsn) (stub.State, error)
	FindStates(ctx context.Context, pred StatePredicate) ([]stub.State, error)
}

// StatePredicate evaluates against a stub.State's Data, used by
// FindStates. It is satisfied by *predicate.Predicate directly.
type StatePredicate interface {
	Validate(root jsn.Jsn) (bool, error)
}

// ErrNotFound is returned by DecrementCountdown when id no longer names a
// live stub (already expired, or never existed).
type ErrNotFound struct {
	ID uuid.UUID
}

func (e ErrNotFound) Error() string { return "no such resource: " + e.ID.String() }
