// Package wire converts between the domain types in internal/stub and
// internal/predicate and their jsn.Jsn document form — the single
// representation used both on the admin HTTP surface's request bodies
// and in pgstore's jsonb columns, so a stub registered once persists and
// reloads with its full matching/response/persist/callback shape intact.
package wire

import (
	"fmt"
	"time"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/optic"
	"github.com/danslapman/stubbery/internal/predicate"
	"github.com/danslapman/stubbery/internal/stub"
)

func getField(doc jsn.Jsn, name string) (jsn.Jsn, bool) {
	if !doc.IsObject() {
		return jsn.Null(), false
	}
	return doc.Get(name)
}

func stringField(doc jsn.Jsn, name string) string {
	if v, ok := getField(doc, name); ok {
		if s, ok := v.AsString(); ok {
			return s
		}
	}
	return ""
}

// ConditionsFromJsn decodes a wire predicate spec: an object mapping optic
// text to an array of {keyword, arg} condition objects.
func ConditionsFromJsn(doc jsn.Jsn) (map[string][]predicate.Condition, error) {
	if doc.IsNull() {
		return nil, nil
	}
	obj, keys, ok := doc.AsObject()
	if !ok {
		return nil, fmt.Errorf("wire: predicate spec must be an object")
	}
	out := make(map[string][]predicate.Condition, len(keys))
	for _, k := range keys {
		arr, ok := obj[k].AsArray()
		if !ok {
			return nil, fmt.Errorf("wire: predicate entry %q must be an array", k)
		}
		conds := make([]predicate.Condition, 0, len(arr))
		for _, c := range arr {
			kw, _ := c.Get("keyword")
			kwText, _ := kw.AsString()
			arg, _ := c.Get("arg")
			conds = append(conds, predicate.Condition{Keyword: predicate.Keyword(kwText), Arg: arg})
		}
		out[k] = conds
	}
	return out, nil
}

// ConditionsToJsn is the inverse of ConditionsFromJsn.
func ConditionsToJsn(spec map[string][]predicate.Condition) jsn.Jsn {
	keys := make([]string, 0, len(spec))
	vals := make(map[string]jsn.Jsn, len(spec))
	for opticText, conds := range spec {
		keys = append(keys, opticText)
		els := make([]jsn.Jsn, len(conds))
		for i, c := range conds {
			els[i] = jsn.Object([]string{"keyword", "arg"}, map[string]jsn.Jsn{
				"keyword": jsn.String(string(c.Keyword)),
				"arg":     c.Arg,
			})
		}
		vals[opticText] = jsn.Array(els)
	}
	return jsn.Object(keys, vals)
}

// PredicateFromJsn builds a *predicate.Predicate from its wire form,
// returning (nil, nil) for an empty/absent spec — no predicate configured.
func PredicateFromJsn(doc jsn.Jsn) (*predicate.Predicate, error) {
	spec, err := ConditionsFromJsn(doc)
	if err != nil {
		return nil, err
	}
	if len(spec) == 0 {
		return nil, nil
	}
	return predicate.New(spec)
}

// PredicateToJsn is the inverse of PredicateFromJsn; nil becomes Null.
func PredicateToJsn(p *predicate.Predicate) jsn.Jsn {
	if p == nil {
		return jsn.Null()
	}
	return ConditionsToJsn(p.Conditions())
}

// RequestSpecFromJsn decodes a wire request spec: {mode, jsonBody, rawBody, predicate}.
func RequestSpecFromJsn(doc jsn.Jsn) (stub.RequestSpec, error) {
	mode := stringField(doc, "mode")
	switch mode {
	case "json":
		body, _ := getField(doc, "jsonBody")
		return stub.RequestSpec{Mode: stub.RequestJSON, JSONBody: body}, nil
	case "raw":
		return stub.RequestSpec{Mode: stub.RequestRaw, RawBody: stringField(doc, "rawBody")}, nil
	case "predicate":
		predDoc, _ := getField(doc, "predicate")
		pred, err := PredicateFromJsn(predDoc)
		if err != nil {
			return stub.RequestSpec{}, err
		}
		return stub.RequestSpec{Mode: stub.RequestJLens, Predicate: pred}, nil
	default:
		return stub.RequestSpec{Mode: stub.RequestNoBody}, nil
	}
}

// RequestSpecToJsn is the inverse of RequestSpecFromJsn.
func RequestSpecToJsn(spec stub.RequestSpec) jsn.Jsn {
	switch spec.Mode {
	case stub.RequestJSON:
		return jsn.Object([]string{"mode", "jsonBody"}, map[string]jsn.Jsn{
			"mode":     jsn.String("json"),
			"jsonBody": spec.JSONBody,
		})
	case stub.RequestRaw:
		return jsn.Object([]string{"mode", "rawBody"}, map[string]jsn.Jsn{
			"mode":    jsn.String("raw"),
			"rawBody": jsn.String(spec.RawBody),
		})
	case stub.RequestJLens:
		return jsn.Object([]string{"mode", "predicate"}, map[string]jsn.Jsn{
			"mode":      jsn.String("predicate"),
			"predicate": PredicateToJsn(spec.Predicate),
		})
	default:
		return jsn.Object([]string{"mode"}, map[string]jsn.Jsn{"mode": jsn.String("none")})
	}
}

func headersFromJsn(doc jsn.Jsn) map[string]string {
	obj, keys, ok := doc.AsObject()
	if !ok {
		return nil
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if s, ok := obj[k].AsString(); ok {
			out[k] = s
		}
	}
	return out
}

func headersToJsn(h map[string]string) jsn.Jsn {
	if len(h) == 0 {
		return jsn.EmptyObject()
	}
	keys := make([]string, 0, len(h))
	vals := make(map[string]jsn.Jsn, len(h))
	for k, v := range h {
		keys = append(keys, k)
		vals[k] = jsn.String(v)
	}
	return jsn.Object(keys, vals)
}

// ResponseSpecFromJsn decodes a wire response spec:
// {mode, statusCode, headers, rawBody, jsonBody, isTemplate, delayMs}.
func ResponseSpecFromJsn(doc jsn.Jsn) (stub.ResponseSpec, error) {
	status := http200
	if v, ok := getField(doc, "statusCode"); ok {
		if i, ok := v.AsSigned(); ok {
			status = int(i)
		}
	}
	var headers map[string]string
	if v, ok := getField(doc, "headers"); ok {
		headers = headersFromJsn(v)
	}
	var isTemplate bool
	if v, ok := getField(doc, "isTemplate"); ok {
		isTemplate, _ = v.AsBool()
	}
	var delay time.Duration
	if v, ok := getField(doc, "delayMs"); ok {
		if ms, ok := v.AsSigned(); ok {
			delay = time.Duration(ms) * time.Millisecond
		}
	}

	mode := stringField(doc, "mode")
	switch mode {
	case "json":
		body, _ := getField(doc, "jsonBody")
		return stub.ResponseSpec{
			Mode: stub.ResponseJSON, StatusCode: status, Headers: headers,
			JSONBody: body, IsTemplate: isTemplate, Delay: delay,
		}, nil
	default:
		return stub.ResponseSpec{
			Mode: stub.ResponseRaw, StatusCode: status, Headers: headers,
			RawBody: stringField(doc, "rawBody"), Delay: delay,
		}, nil
	}
}

const http200 = 200

// ResponseSpecToJsn is the inverse of ResponseSpecFromJsn.
func ResponseSpecToJsn(spec stub.ResponseSpec) jsn.Jsn {
	keys := []string{"mode", "statusCode", "headers", "delayMs"}
	vals := map[string]jsn.Jsn{
		"statusCode": jsn.Signed(int64(spec.StatusCode)),
		"headers":    headersToJsn(spec.Headers),
		"delayMs":    jsn.Signed(spec.Delay.Milliseconds()),
	}
	switch spec.Mode {
	case stub.ResponseJSON:
		vals["mode"] = jsn.String("json")
		keys = append(keys, "jsonBody", "isTemplate")
		vals["jsonBody"] = spec.JSONBody
		vals["isTemplate"] = jsn.Bool(spec.IsTemplate)
	default:
		vals["mode"] = jsn.String("raw")
		keys = append(keys, "rawBody")
		vals["rawBody"] = jsn.String(spec.RawBody)
	}
	return jsn.Object(keys, vals)
}

// PersistFromJsn decodes a wire persist schema: an array of {optic, value}.
func PersistFromJsn(doc jsn.Jsn) ([]stub.PersistOp, error) {
	arr, ok := doc.AsArray()
	if !ok {
		return nil, nil
	}
	out := make([]stub.PersistOp, 0, len(arr))
	for _, el := range arr {
		opticText := stringField(el, "optic")
		if _, err := optic.Parse(opticText); err != nil {
			return nil, fmt.Errorf("wire: persist op %q: %w", opticText, err)
		}
		val, _ := getField(el, "value")
		out = append(out, stub.PersistOp{Optic: opticText, Value: val})
	}
	return out, nil
}

// PersistToJsn is the inverse of PersistFromJsn.
func PersistToJsn(ops []stub.PersistOp) jsn.Jsn {
	els := make([]jsn.Jsn, len(ops))
	for i, op := range ops {
		els[i] = jsn.Object([]string{"optic", "value"}, map[string]jsn.Jsn{
			"optic": jsn.String(op.Optic),
			"value": op.Value,
		})
	}
	return jsn.Array(els)
}

// CallbackFromJsn decodes a (possibly nested) wire callback spec; Null
// decodes to a nil *stub.Callback.
func CallbackFromJsn(doc jsn.Jsn) (*stub.Callback, error) {
	if doc.IsNull() {
		return nil, nil
	}
	bodyDoc, _ := getField(doc, "body")
	body, err := ResponseSpecFromJsn(bodyDoc)
	if err != nil {
		return nil, err
	}
	var nested *stub.Callback
	if nestedDoc, ok := getField(doc, "nested"); ok {
		nested, err = CallbackFromJsn(nestedDoc)
		if err != nil {
			return nil, err
		}
	}
	return &stub.Callback{
		URL:    stringField(doc, "url"),
		Method: stub.HttpMethod(stringField(doc, "method")),
		Body:   body,
		Nested: nested,
	}, nil
}

// CallbackToJsn is the inverse of CallbackFromJsn; nil becomes Null.
func CallbackToJsn(cb *stub.Callback) jsn.Jsn {
	if cb == nil {
		return jsn.Null()
	}
	return jsn.Object([]string{"url", "method", "body", "nested"}, map[string]jsn.Jsn{
		"url":    jsn.String(cb.URL),
		"method": jsn.String(string(cb.Method)),
		"body":   ResponseSpecToJsn(cb.Body),
		"nested": CallbackToJsn(cb.Nested),
	})
}

// NewStubFromJsn decodes a full wire stub-creation document into a
// stub.NewStub, the shared shape used by both the admin HTTP handler and
// pgstore's row (de)serialization.
func NewStubFromJsn(doc jsn.Jsn) (stub.NewStub, error) {
	var times *int
	if v, ok := getField(doc, "times"); ok {
		if i, ok := v.AsSigned(); ok {
			n := int(i)
			times = &n
		}
	}

	queryPredDoc, _ := getField(doc, "queryPredicate")
	queryPred, err := PredicateFromJsn(queryPredDoc)
	if err != nil {
		return stub.NewStub{}, fmt.Errorf("wire: queryPredicate: %w", err)
	}
	headerPredDoc, _ := getField(doc, "headerPredicate")
	headerPred, err := PredicateFromJsn(headerPredDoc)
	if err != nil {
		return stub.NewStub{}, fmt.Errorf("wire: headerPredicate: %w", err)
	}

	reqDoc, _ := getField(doc, "request")
	reqSpec, err := RequestSpecFromJsn(reqDoc)
	if err != nil {
		return stub.NewStub{}, fmt.Errorf("wire: request: %w", err)
	}

	persistDoc, _ := getField(doc, "persist")
	persist, err := PersistFromJsn(persistDoc)
	if err != nil {
		return stub.NewStub{}, fmt.Errorf("wire: persist: %w", err)
	}

	respDoc, _ := getField(doc, "response")
	respSpec, err := ResponseSpecFromJsn(respDoc)
	if err != nil {
		return stub.NewStub{}, fmt.Errorf("wire: response: %w", err)
	}

	cbDoc, _ := getField(doc, "callback")
	cb, err := CallbackFromJsn(cbDoc)
	if err != nil {
		return stub.NewStub{}, fmt.Errorf("wire: callback: %w", err)
	}

	seed, _ := getField(doc, "seed")
	state, _ := getField(doc, "state")

	return stub.NewStub{
		Scope:           parseScope(stringField(doc, "scope")),
		Times:           times,
		ServiceName:     stringField(doc, "serviceName"),
		Name:            stringField(doc, "name"),
		Method:          stub.HttpMethod(stringField(doc, "method")),
		Path:            stringField(doc, "path"),
		PathPattern:     stringField(doc, "pathPattern"),
		Seed:            seed,
		State:           state,
		QueryPredicate:  queryPred,
		HeaderPredicate: headerPred,
		Request:         reqSpec,
		Persist:         persist,
		Response:        respSpec,
		Callback:        cb,
	}, nil
}

func parseScope(s string) stub.Scope {
	switch s {
	case "countdown":
		return stub.ScopeCountdown
	case "ephemeral":
		return stub.ScopeEphemeral
	default:
		return stub.ScopePersistent
	}
}

// StubToJsn renders a full stub.Stub (minus id, created, seed and state,
// which persist in their own columns) into the same wire shape
// NewStubFromJsn consumes, so
// pgstore can round-trip a row's matching/response/persist/callback
// configuration through a single jsonb blob.
func StubToJsn(s stub.Stub) jsn.Jsn {
	keys := []string{
		"scope", "serviceName", "name", "method", "path", "pathPattern",
		"queryPredicate", "headerPredicate", "request", "persist", "response", "callback",
	}
	vals := map[string]jsn.Jsn{
		"scope":           jsn.String(s.Scope.String()),
		"serviceName":     jsn.String(s.ServiceName),
		"name":            jsn.String(s.Name),
		"method":          jsn.String(string(s.Method)),
		"path":            jsn.String(s.Path),
		"pathPattern":     jsn.String(s.PathPattern),
		"queryPredicate":  PredicateToJsn(s.QueryPredicate),
		"headerPredicate": PredicateToJsn(s.HeaderPredicate),
		"request":         RequestSpecToJsn(s.Request),
		"persist":         PersistToJsn(s.Persist),
		"response":        ResponseSpecToJsn(s.Response),
		"callback":        CallbackToJsn(s.Callback),
	}
	if s.Times != nil {
		keys = append(keys, "times")
		vals["times"] = jsn.Signed(int64(*s.Times))
	}
	return jsn.Object(keys, vals)
}

// StubSpecFromJsn reloads the matching/response/persist/callback portion
// of a stub from its stored jsonb "spec" blob, leaving id/created/times
// (which have their own columns) untouched — callers overlay the result
// onto a row already carrying those fields.
func StubSpecFromJsn(doc jsn.Jsn) (stub.Stub, error) {
	n, err := NewStubFromJsn(doc)
	if err != nil {
		return stub.Stub{}, err
	}
	return stub.Stub{
		Scope:           n.Scope,
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
	}, nil
}
