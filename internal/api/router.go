package api

import (
	"net/http"
	"strings"

	"github.com/danslapman/stubbery/internal/response"
)

// Router is a simple HTTP router with path parameter support
type Router struct {
	routes []route
}

type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{}
}

// Handle registers a route
func (rt *Router) Handle(method, pattern string, handler http.HandlerFunc) {
	rt.routes = append(rt.routes, route{method, pattern, handler})
}

// GET registers a GET route
func (rt *Router) GET(pattern string, handler http.HandlerFunc) {
	rt.Handle("GET", pattern, handler)
}

// POST registers a POST route
func (rt *Router) POST(pattern string, handler http.HandlerFunc) {
	rt.Handle("POST", pattern, handler)
}

// PUT registers a PUT route
func (rt *Router) PUT(pattern string, handler http.HandlerFunc) {
	rt.Handle("PUT", pattern, handler)
}

// DELETE registers a DELETE route
func (rt *Router) DELETE(pattern string, handler http.HandlerFunc) {
	rt.Handle("DELETE", pattern, handler)
}

// ServeHTTP implements http.Handler
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, route := range rt.routes {
		if route.method != r.Method {
			continue
		}

		params, ok := match(route.pattern, r.URL.Path)
		if !ok {
			continue
		}

		// Store params in request context via query params hack
		// (In a real implementation we'd use context.WithValue)
		q := r.URL.Query()
		for k, v := range params {
			q.Set("_param_"+k, v)
		}
		r.URL.RawQuery = q.Encode()

		route.handler(w, r)
		return
	}

	// No route matched
	response.WriteError(w, http.StatusNotFound, response.ErrCodeNoSuchResource, "resource not found")
}

// match checks if a path matches a pattern and extracts parameters.
// Pattern format: "/imposters/{id}/stubs/{stubIndex}". A trailing "*"
// segment matches the rest of the path (including zero further segments),
// captured under the param name "*" — used for "/exec/*" to accept an
// arbitrary stubbed path underneath.
func match(pattern, path string) (map[string]string, bool) {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")

	params := make(map[string]string)

	if len(patternParts) > 0 && patternParts[len(patternParts)-1] == "*" {
		fixed := patternParts[:len(patternParts)-1]
		if len(pathParts) < len(fixed) {
			return nil, false
		}
		for i, part := range fixed {
			if !matchSegment(part, pathParts[i], params) {
				return nil, false
			}
		}
		params["*"] = "/" + strings.Join(pathParts[len(fixed):], "/")
		return params, true
	}

	if len(patternParts) != len(pathParts) {
		return nil, false
	}

	for i, part := range patternParts {
		if !matchSegment(part, pathParts[i], params) {
			return nil, false
		}
	}

	return params, true
}

func matchSegment(patternPart, pathPart string, params map[string]string) bool {
	if strings.HasPrefix(patternPart, "{") && strings.HasSuffix(patternPart, "}") {
		params[patternPart[1:len(patternPart)-1]] = pathPart
		return true
	}
	return patternPart == pathPart
}

// GetParam retrieves a path parameter from the request
func GetParam(r *http.Request, name string) string {
	return r.URL.Query().Get("_param_" + name)
}
