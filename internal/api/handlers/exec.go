package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danslapman/stubbery/internal/apperr"
	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/logging"
	"github.com/danslapman/stubbery/internal/optic"
	"github.com/danslapman/stubbery/internal/resolver"
	"github.com/danslapman/stubbery/internal/response"
	"github.com/danslapman/stubbery/internal/store"
	"github.com/danslapman/stubbery/internal/stub"
	"github.com/danslapman/stubbery/internal/templater"
)

// ExecHandler serves GET|POST /exec/<path...>, resolving the incoming
// request against the store's registered stubs and rendering the winning
// stub's response.
type ExecHandler struct {
	store store.Store
}

func NewExecHandler(s store.Store) *ExecHandler {
	return &ExecHandler{store: s}
}

func (h *ExecHandler) Exec(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/exec")

	rawBody, _ := io.ReadAll(r.Body)
	defer r.Body.Close()

	body := jsn.Null()
	if len(rawBody) > 0 {
		if parsed, err := jsn.Parse(rawBody); err == nil {
			body = parsed
		}
	}

	query := queryToJsn(r.URL.Query())
	headers := headersToJsn(r.Header)

	req := resolver.Request{
		Method:  stub.HttpMethod(r.Method),
		Path:    path,
		Query:   query,
		Headers: headers,
		Body:    body,
		RawBody: string(rawBody),
	}

	matched, err := resolver.Resolve(r.Context(), h.store, req)
	if err != nil {
		var miss *resolver.Miss
		if errors.As(err, &miss) {
			response.WriteError(w, http.StatusNotFound, response.ErrCodeNoSuchResource, err.Error())
			return
		}
		response.WriteAppError(w, apperr.Wrap(apperr.KindStoreError, "failed to resolve stub", err))
		return
	}

	if len(matched.Persist) > 0 {
		h.applyPersist(r.Context(), matched, body)
	}

	writeResponse(w, matched.Response, body)
}

// applyPersist folds a matched stub's persist schema into its current
// State, resolving any ${optic} templates against the request body before
// writing, and records the result as a new state document.
func (h *ExecHandler) applyPersist(ctx context.Context, matched stub.Stub, requestBody jsn.Jsn) {
	state := matched.State
	if state.IsNull() {
		state = jsn.EmptyObject()
	}

	for _, op := range matched.Persist {
		target, err := optic.Parse(op.Optic)
		if err != nil {
			logging.Warnf("skipping persist op with unparseable optic %q: %v", op.Optic, err)
			continue
		}
		resolved := templater.UpdateInPlace(op.Value, requestBody)
		state = optic.Set(state, target, resolved)
	}

	if _, err := h.store.InsertState(ctx, state); err != nil {
		logging.Errorf("failed to persist state for stub %s: %v", matched.ID, err)
	}
}

func writeResponse(w http.ResponseWriter, spec stub.ResponseSpec, requestBody jsn.Jsn) {
	if spec.Delay > 0 {
		time.Sleep(spec.Delay)
	}

	for k, v := range spec.Headers {
		w.Header().Set(k, v)
	}
	status := spec.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	switch spec.Mode {
	case stub.ResponseJSON:
		body := spec.JSONBody
		if spec.IsTemplate {
			body = templater.UpdateInPlace(body, requestBody)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body.String()))
	default:
		w.WriteHeader(status)
		w.Write([]byte(spec.RawBody))
	}
}

func queryToJsn(values map[string][]string) jsn.Jsn {
	keys := make([]string, 0, len(values))
	vals := make(map[string]jsn.Jsn, len(values))
	for k, v := range values {
		keys = append(keys, k)
		if len(v) > 0 {
			vals[k] = jsn.String(v[0])
		} else {
			vals[k] = jsn.Null()
		}
	}
	return jsn.Object(keys, vals)
}

func headersToJsn(h http.Header) jsn.Jsn {
	keys := make([]string, 0, len(h))
	vals := make(map[string]jsn.Jsn, len(h))
	for k, v := range h {
		keys = append(keys, k)
		if len(v) > 0 {
			vals[k] = jsn.String(v[0])
		} else {
			vals[k] = jsn.Null()
		}
	}
	return jsn.Object(keys, vals)
}
