// Package handlers implements the HTTP handlers for the admin and exec
// surfaces, decoding requests into domain types and delegating to
// internal/admin and internal/resolver — grounded on the teacher's
// decode-validate-delegate-respond handler idiom (internal/api/handlers
// in go-tartuffe).
package handlers

import (
	"io"
	"net/http"

	"github.com/danslapman/stubbery/internal/admin"
	"github.com/danslapman/stubbery/internal/apperr"
	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/response"
	"github.com/danslapman/stubbery/internal/wire"
)

// AdminHandler serves POST /admin/stub and POST /admin/state/search.
type AdminHandler struct {
	admin *admin.Admin
}

func NewAdminHandler(a *admin.Admin) *AdminHandler {
	return &AdminHandler{admin: a}
}

// CreateStub handles POST /admin/stub. The body is decoded straight into
// a jsn.Jsn document and handed to internal/wire, the same decoder
// pgstore uses to reload a stub's spec column — one conversion path for
// both directions.
func (h *AdminHandler) CreateStub(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeInvalidJSON, "unable to read body")
		return
	}
	doc, err := jsn.Parse(raw)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeInvalidJSON, "unable to parse body as JSON")
		return
	}

	n, err := wire.NewStubFromJsn(doc)
	if err != nil {
		response.WriteAppError(w, apperr.Wrap(apperr.KindPredicateConstruction, "invalid stub definition", err))
		return
	}

	created, err := h.admin.CreateStub(r.Context(), n)
	if err != nil {
		response.WriteAppError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      created.ID.String(),
		"created": created.Created,
	})
}

// FetchStates handles POST /admin/state/search.
func (h *AdminHandler) FetchStates(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeInvalidJSON, "unable to read body")
		return
	}
	doc, err := jsn.Parse(raw)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeInvalidJSON, "unable to parse body as JSON")
		return
	}

	specDoc, _ := doc.Get("spec")
	spec, err := wire.ConditionsFromJsn(specDoc)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, response.ErrCodeBadData, "invalid predicate spec")
		return
	}

	states, err := h.admin.FetchStates(r.Context(), admin.StateSearchRequest{Spec: spec})
	if err != nil {
		response.WriteAppError(w, err)
		return
	}

	out := make([]map[string]interface{}, len(states))
	for i, s := range states {
		out[i] = map[string]interface{}{
			"id":      s.ID.String(),
			"created": s.Created,
			"data":    s.Data,
		}
	}
	response.WriteJSON(w, http.StatusOK, out)
}
