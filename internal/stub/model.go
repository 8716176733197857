// Package stub holds the domain types persisted and matched against:
// Stub, Scope, HttpMethod, RequestSpec/ResponseSpec modes, Callback, and
// recorded State.
package stub

import (
	"time"

	"github.com/google/uuid"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/predicate"
)

// Scope controls a stub's lifetime and tie-break precedence. Countdown
// sorts before Ephemeral, which sorts before Persistent, so that when
// several stubs would otherwise match equally well, a one-shot countdown
// stub is preferred over a session-scoped one, which is preferred over a
// permanent one.
type Scope int

const (
	ScopeCountdown Scope = iota
	ScopeEphemeral
	ScopePersistent
)

func (s Scope) String() string {
	switch s {
	case ScopeCountdown:
		return "countdown"
	case ScopeEphemeral:
		return "ephemeral"
	case ScopePersistent:
		return "persistent"
	default:
		return "unknown"
	}
}

// HttpMethod is the closed set of HTTP methods a stub can be registered
// against.
type HttpMethod string

const (
	MethodGet     HttpMethod = "GET"
	MethodPost    HttpMethod = "POST"
	MethodHead    HttpMethod = "HEAD"
	MethodOptions HttpMethod = "OPTIONS"
	MethodPatch   HttpMethod = "PATCH"
	MethodPut     HttpMethod = "PUT"
	MethodDelete  HttpMethod = "DELETE"
)

// RequestSpecMode discriminates how a stub's request matcher interprets
// the incoming request body.
type RequestSpecMode int

const (
	RequestNoBody RequestSpecMode = iota
	RequestJSON
	RequestRaw
	RequestJLens // JSON predicate DSL applied against the parsed body
)

// RequestSpec is a tagged union over the supported body-matching modes.
// Exactly the field matching Mode is meaningful.
type RequestSpec struct {
	Mode      RequestSpecMode
	JSONBody  jsn.Jsn             // RequestJSON: exact-match body
	RawBody   string              // RequestRaw: exact-match raw text
	Predicate *predicate.Predicate // RequestJLens: predicate over the parsed body
}

// ResponseSpecMode discriminates a stub's response construction mode.
type ResponseSpecMode int

const (
	ResponseRaw ResponseSpecMode = iota
	ResponseJSON
)

// ResponseSpec is a tagged union over the two response construction modes:
// a raw literal body, sent as-is, or a JSON document, optionally run through
// internal/templater against the captured request before being sent; both
// are optionally delayed before writing.
type ResponseSpec struct {
	Mode       ResponseSpecMode
	StatusCode int
	Headers    map[string]string
	RawBody    string
	JSONBody   jsn.Jsn
	IsTemplate bool // gates templater substitution; a literal body with "${...}"-shaped strings is left untouched when false
	Delay      time.Duration
}

// Callback describes an out-of-band notification attached to a stub,
// recursively: a callback can itself carry a nested callback, mirroring the
// original HttpStub shape. Callbacks are stored and reloaded with their
// stub; the exec handler does not dispatch them.
type Callback struct {
	URL      string
	Method   HttpMethod
	Body     ResponseSpec
	Nested   *Callback
}

// Stub is the full admin-surface unit of registration: a scope, a request
// matcher (method/path/query/headers/body), a single response spec, and an
// optional countdown budget.
type Stub struct {
	ID          uuid.UUID
	Created     time.Time
	Scope       Scope
	Times       *int // remaining invocations for ScopeCountdown; nil otherwise
	ServiceName string
	Name        string
	Method      HttpMethod
	Path        string
	PathPattern string // alternative to Path: a regular expression
	Seed        jsn.Jsn
	State       jsn.Jsn

	QueryPredicate   *predicate.Predicate
	HeaderPredicate  *predicate.Predicate
	Request          RequestSpec

	Persist  []PersistOp
	Response ResponseSpec
	Callback *Callback
}

// PersistOp describes one write to apply to the stub's recorded State
// after a successful match: Value is templated against the request body
// (internal/templater) and set at Optic (internal/optic.Set).
type PersistOp struct {
	Optic string
	Value jsn.Jsn
}

// NewStub is the admin-surface input shape for stub creation, before a
// surrogate ID and Created timestamp are assigned by the store.
type NewStub struct {
	Scope       Scope
	Times       *int
	ServiceName string
	Name        string
	Method      HttpMethod
	Path        string
	PathPattern string
	Seed        jsn.Jsn
	State       jsn.Jsn

	QueryPredicate  *predicate.Predicate
	HeaderPredicate *predicate.Predicate
	Request         RequestSpec

	Persist  []PersistOp
	Response ResponseSpec
	Callback *Callback
}

// State is a recorded document, searchable by the admin surface's
// fetch_states operation via a JSON predicate.
type State struct {
	ID        uuid.UUID
	Created   time.Time
	Data      jsn.Jsn
}
