package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/store/memstore"
	"github.com/danslapman/stubbery/internal/stub"
)

func TestExecReturnsRegisteredStubResponse(t *testing.T) {
	st := memstore.New()
	_, err := st.InsertStub(context.Background(), stub.NewStub{
		Method: stub.MethodGet,
		Path:   "/widgets",
		Response: stub.ResponseSpec{
			Mode:       stub.ResponseRaw,
			StatusCode: http.StatusTeapot,
			RawBody:    "hello",
		},
	})
	assert.NoError(t, err)

	h := NewExecHandler(st)
	req := httptest.NewRequest(http.MethodGet, "/exec/widgets", nil)
	rec := httptest.NewRecorder()

	h.Exec(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestExecLeavesLiteralJSONBodyUntouchedWhenNotTemplate(t *testing.T) {
	st := memstore.New()
	literal := jsn.Object([]string{"note"}, map[string]jsn.Jsn{"note": jsn.String("${not.a.template}")})
	_, err := st.InsertStub(context.Background(), stub.NewStub{
		Method: stub.MethodGet,
		Path:   "/literal",
		Response: stub.ResponseSpec{
			Mode:       stub.ResponseJSON,
			StatusCode: http.StatusOK,
			JSONBody:   literal,
			IsTemplate: false,
		},
	})
	assert.NoError(t, err)

	h := NewExecHandler(st)
	req := httptest.NewRequest(http.MethodGet, "/exec/literal", nil)
	rec := httptest.NewRecorder()

	h.Exec(rec, req)

	assert.Contains(t, rec.Body.String(), `${not.a.template}`)
}

func TestExecReturnsNotFoundWhenNothingMatches(t *testing.T) {
	h := NewExecHandler(memstore.New())
	req := httptest.NewRequest(http.MethodGet, "/exec/nothing", nil)
	rec := httptest.NewRecorder()

	h.Exec(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueryToJsnAndHeadersToJsnTakeFirstValue(t *testing.T) {
	q := queryToJsn(map[string][]string{"a": {"1", "2"}})
	obj, _, ok := q.AsObject()
	assert.True(t, ok)
	assert.Equal(t, jsn.String("1").String(), obj["a"].String())

	h := headersToJsn(http.Header{"X-Test": {"v"}})
	obj2, _, ok := h.AsObject()
	assert.True(t, ok)
	assert.Equal(t, jsn.String("v").String(), obj2["X-Test"].String())
}
