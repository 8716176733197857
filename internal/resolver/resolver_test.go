package resolver

import (
	"context"
	"testing"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/store/memstore"
	"github.com/danslapman/stubbery/internal/stub"
)

func TestResolvePicksPathAndMethodMatch(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	created, err := st.InsertStub(ctx, stub.NewStub{
		Scope:  stub.ScopePersistent,
		Method: stub.MethodGet,
		Path:   "/hello",
		Request: stub.RequestSpec{Mode: stub.RequestNoBody},
		Response: stub.ResponseSpec{Mode: stub.ResponseRaw, StatusCode: 200, RawBody: "hi"},
	})
	if err != nil {
		t.Fatalf("InsertStub: %v", err)
	}

	got, err := Resolve(ctx, st, Request{Method: stub.MethodGet, Path: "/hello", Query: jsn.EmptyObject(), Headers: jsn.EmptyObject(), Body: jsn.Null()})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("resolved wrong stub: got %s, want %s", got.ID, created.ID)
	}
}

func TestResolveMissWhenPathDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	_, _ = st.InsertStub(ctx, stub.NewStub{
		Scope: stub.ScopePersistent, Method: stub.MethodGet, Path: "/hello",
		Request: stub.RequestSpec{Mode: stub.RequestNoBody},
		Response: stub.ResponseSpec{Mode: stub.ResponseRaw, StatusCode: 200},
	})

	_, err := Resolve(ctx, st, Request{Method: stub.MethodGet, Path: "/bye", Query: jsn.EmptyObject(), Headers: jsn.EmptyObject(), Body: jsn.Null()})
	miss, ok := err.(*Miss)
	if !ok {
		t.Fatalf("expected *Miss, got %v", err)
	}
	if miss.Stage != StagePath {
		t.Errorf("miss stage = %s, want %s", miss.Stage, StagePath)
	}
}

func TestResolveCountdownDecrementsAndExpires(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	times := 1
	_, _ = st.InsertStub(ctx, stub.NewStub{
		Scope: stub.ScopeCountdown, Times: &times, Method: stub.MethodGet, Path: "/once",
		Request: stub.RequestSpec{Mode: stub.RequestNoBody},
		Response: stub.ResponseSpec{Mode: stub.ResponseRaw, StatusCode: 200},
	})

	req := Request{Method: stub.MethodGet, Path: "/once", Query: jsn.EmptyObject(), Headers: jsn.EmptyObject(), Body: jsn.Null()}
	if _, err := Resolve(ctx, st, req); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := Resolve(ctx, st, req); err == nil {
		t.Fatalf("expected second resolve to miss after countdown exhausted")
	}
}
