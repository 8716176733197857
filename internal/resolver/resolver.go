// Package resolver implements staged candidate narrowing: given an
// incoming request, find the single best-matching stub by applying a
// sequence of short-circuiting filters (method/path, query, headers,
// body), then breaking ties by scope precedence and id, grounded on the
// teacher's internal/imposter Matcher.
package resolver

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/danslapman/stubbery/internal/jsn"
	"github.com/danslapman/stubbery/internal/metrics"
	"github.com/danslapman/stubbery/internal/store"
	"github.com/danslapman/stubbery/internal/stub"
)

// Request is the narrowed view of an incoming exec request the resolver
// matches against — assembled by internal/api from the raw *http.Request.
type Request struct {
	Method  stub.HttpMethod
	Path    string
	Query   jsn.Jsn // object of query parameter name -> value
	Headers jsn.Jsn // object of header name -> value; the header predicate compares names and values exactly, not case-insensitively
	Body    jsn.Jsn // parsed JSON body, or jsn.Null() for non-JSON/absent bodies
	RawBody string
}

// Stage names a point at which a candidate can be eliminated, reported in
// a Miss so callers (and metrics.RecordResolverMiss) know why nothing
// matched.
type Stage string

const (
	StagePath    Stage = "path"
	StageQuery   Stage = "query"
	StageHeaders Stage = "headers"
	StageBody    Stage = "body"
)

// Miss is returned when no candidate survives every stage.
type Miss struct {
	Stage Stage
}

func (m *Miss) Error() string { return "resolver: no stub matched at stage " + string(m.Stage) }

// Resolve runs req through the staged pipeline against every candidate
// store.Store.FindCandidates returns for req.Method/req.Path, and returns
// the single winning stub, decrementing its countdown budget if it has
// one. Each stage eliminates candidates without inspecting eliminated
// ones further (a path mismatch skips query/header/body evaluation
// entirely for that candidate) — the Miss's Stage names the last stage
// that still had at least one candidate before elimination, to aid
// debugging a stub registration that almost matches.
func Resolve(ctx context.Context, st store.Store, req Request) (stub.Stub, error) {
	start := time.Now()
	defer func() {
		metrics.RecordResolveDuration(string(req.Method), time.Since(start).Seconds())
	}()
	metrics.RecordRequest(string(req.Method))

	candidates, err := st.FindCandidates(ctx, req.Method, req.Path)
	if err != nil {
		return stub.Stub{}, err
	}

	candidates = filterPath(candidates, req.Path)
	if len(candidates) == 0 {
		metrics.RecordResolverMiss(string(StagePath))
		return stub.Stub{}, &Miss{Stage: StagePath}
	}

	candidates = filterPredicate(candidates, func(s stub.Stub) bool {
		if s.QueryPredicate == nil {
			return true
		}
		ok, err := s.QueryPredicate.Validate(req.Query)
		return err == nil && ok
	})
	if len(candidates) == 0 {
		metrics.RecordResolverMiss(string(StageQuery))
		return stub.Stub{}, &Miss{Stage: StageQuery}
	}

	candidates = filterPredicate(candidates, func(s stub.Stub) bool {
		if s.HeaderPredicate == nil {
			return true
		}
		ok, err := s.HeaderPredicate.Validate(req.Headers)
		return err == nil && ok
	})
	if len(candidates) == 0 {
		metrics.RecordResolverMiss(string(StageHeaders))
		return stub.Stub{}, &Miss{Stage: StageHeaders}
	}

	candidates = filterPredicate(candidates, func(s stub.Stub) bool {
		return matchesBody(s.Request, req)
	})
	if len(candidates) == 0 {
		metrics.RecordResolverMiss(string(StageBody))
		return stub.Stub{}, &Miss{Stage: StageBody}
	}

	winner := breakTie(candidates)

	if winner.Scope == stub.ScopeCountdown {
		decremented, err := st.DecrementCountdown(ctx, winner.ID)
		if err == nil {
			winner = decremented
		}
	}

	return winner, nil
}

func filterPath(candidates []stub.Stub, path string) []stub.Stub {
	var out []stub.Stub
	for _, c := range candidates {
		if c.PathPattern != "" {
			re, err := regexp.Compile(c.PathPattern)
			if err != nil || !re.MatchString(path) {
				continue
			}
			out = append(out, c)
			continue
		}
		if c.Path == "" || c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func filterPredicate(candidates []stub.Stub, keep func(stub.Stub) bool) []stub.Stub {
	var out []stub.Stub
	for _, c := range candidates {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func matchesBody(spec stub.RequestSpec, req Request) bool {
	switch spec.Mode {
	case stub.RequestNoBody:
		return true
	case stub.RequestRaw:
		return spec.RawBody == req.RawBody
	case stub.RequestJSON:
		return spec.JSONBody.String() == req.Body.String()
	case stub.RequestJLens:
		if spec.Predicate == nil {
			return true
		}
		ok, err := spec.Predicate.Validate(req.Body)
		return err == nil && ok
	default:
		return false
	}
}

// breakTie picks the winning candidate when more than one survives every
// stage: lower Scope value first (Countdown < Ephemeral < Persistent),
// then lower id as a final deterministic tie-break.
func breakTie(candidates []stub.Stub) stub.Stub {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Scope != candidates[j].Scope {
			return candidates[i].Scope < candidates[j].Scope
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return candidates[0]
}
