// Package memstore implements internal/store.Store in process memory,
// grounded on the teacher's internal/repository.InMemory: a mutex-guarded
// map, no persistence across restarts.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/store"
	"github.com/danslapman/stubbery/internal/stub"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu     sync.Mutex
	stubs  map[uuid.UUID]stub.Stub
	states map[uuid.UUID]stub.State
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		stubs:  make(map[uuid.UUID]stub.Stub),
		states: make(map[uuid.UUID]stub.State),
	}
}

func (s *Store) InsertStub(_ context.Context, n stub.NewStub) (stub.Stub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := stub.Stub{
		ID:              uuid.New(),
		Created:         time.Now(),
		Scope:           n.Scope,
		Times:           n.Times,
		ServiceName:     n.ServiceName,
		Name:            n.Name,
		Method:          n.Method,
		Path:            n.Path,
		PathPattern:     n.PathPattern,
		Seed:            n.Seed,
		State:           n.State,
		QueryPredicate:  n.QueryPredicate,
		HeaderPredicate: n.HeaderPredicate,
		Request:         n.Request,
		Persist:         n.Persist,
		Response:        n.Response,
		Callback:        n.Callback,
	}
	s.stubs[created.ID] = created
	return created, nil
}

func (s *Store) FindCandidates(_ context.Context, method stub.HttpMethod, path string) ([]stub.Stub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []stub.Stub
	for _, st := range s.stubs {
		if st.Method != method {
			continue
		}
		if st.Scope == stub.ScopeCountdown && st.Times != nil && *st.Times <= 0 {
			continue
		}
		if st.Path != "" && st.Path != path {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Store) DecrementCountdown(_ context.Context, id uuid.UUID) (stub.Stub, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stubs[id]
	if !ok {
		return stub.Stub{}, store.ErrNotFound{ID: id}
	}
	if st.Scope == stub.ScopeCountdown && st.Times != nil {
		remaining := *st.Times - 1
		st.Times = &remaining
		if remaining <= 0 {
			delete(s.stubs, id)
		} else {
			s.stubs[id] = st
		}
	}
	return st, nil
}

func (s *Store) InsertState(_ context.Context, data jsn.Jsn) (stub.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := stub.State{ID: uuid.New(), Created: time.Now(), Data: data}
	s.states[st.ID] = st
	return st, nil
}

func (s *Store) FindStates(_ context.Context, pred store.StatePredicate) ([]stub.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []stub.State
	for _, st := range s.states {
		ok, err := pred.Validate(st.Data)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, st)
		}
	}
	return out, nil
}
