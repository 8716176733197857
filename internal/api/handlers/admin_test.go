package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danslapman/stubbery/internal/admin"
	"github.com/danslapman/stubbery/internal/store/memstore"
)

func TestCreateStubWiresResponseJSONBody(t *testing.T) {
	h := NewAdminHandler(admin.New(memstore.New()))

	body := `{
		"scope": "persistent",
		"method": "GET",
		"path": "/widgets",
		"response": {
			"mode": "json",
			"statusCode": 200,
			"jsonBody": {"ok": true}
		}
	}`
	req := httptest.NewRequest(http.MethodPost, "/admin/stub", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	h.CreateStub(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out["id"])
}

func TestCreateStubRejectsMalformedJSON(t *testing.T) {
	h := NewAdminHandler(admin.New(memstore.New()))

	req := httptest.NewRequest(http.MethodPost, "/admin/stub", bytes.NewBufferString("not json"))
	rec := httptest.NewRecorder()

	h.CreateStub(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateStubRejectsInadmissiblePredicate(t *testing.T) {
	h := NewAdminHandler(admin.New(memstore.New()))

	body := `{
		"method": "GET",
		"path": "/widgets",
		"queryPredicate": {"count": [{"keyword": ">", "arg": "not a number"}]},
		"response": {"mode": "raw", "rawBody": "ok"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/admin/stub", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	h.CreateStub(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFetchStatesSearchesRecordedStates(t *testing.T) {
	a := admin.New(memstore.New())
	h := NewAdminHandler(a)

	createReq := httptest.NewRequest(http.MethodPost, "/admin/stub", bytes.NewBufferString(`{
		"method": "GET", "path": "/x", "response": {"mode": "raw", "rawBody": "ok"}
	}`))
	h.CreateStub(httptest.NewRecorder(), createReq)

	searchBody := `{"spec": {"status": [{"keyword": "==", "arg": "active"}]}}`
	req := httptest.NewRequest(http.MethodPost, "/admin/state/search", bytes.NewBufferString(searchBody))
	rec := httptest.NewRecorder()

	h.FetchStates(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out []map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Empty(t, out)
}
