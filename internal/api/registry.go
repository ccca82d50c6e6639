package api

import (
	"net/http"
)

// Registry collects the endpoints a server exposes.
type Registry struct {
	endpoints []Endpoint
}

// NewRegistry returns a registry holding eps.
func NewRegistry(eps ...Endpoint) *Registry {
	r := &Registry{}
	for _, ep := range eps {
		r.Register(ep)
	}
	return r
}

// Register adds ep.
func (r *Registry) Register(ep Endpoint) {
	r.endpoints = append(r.endpoints, ep)
}

// RegisterRoutes mounts every endpoint on mux. Handlers of endpoints that
// need the AI provider are wrapped with requireInit.
func (r *Registry) RegisterRoutes(mux *http.ServeMux, requireInit func(http.HandlerFunc) http.HandlerFunc) {
	for _, ep := range r.endpoints {
		method, path, handler := ep.Route()
		if ep.RequiresInit() {
			handler = requireInit(handler)
		}
		mux.HandleFunc(Route{Method: method, Path: path}.Pattern(), handler)
	}
}

// Routes lists the registered routes in registration order.
func (r *Registry) Routes() []Route {
	routes := make([]Route, 0, len(r.endpoints))
	for _, ep := range r.endpoints {
		method, path, _ := ep.Route()
		routes = append(routes, Route{Method: method, Path: path, RequiresInit: ep.RequiresInit()})
	}
	return routes
}
