package providers

import (
	"net/http"
	"reactledger/internal/structures"
)

type RouterProviderInterface interface {
	Get(name, url string, handler http.Handler)
	Post(name, url string, handler http.Handler)
	GetRoutes() []structures.Route
}

// RouterProvider collects routes as method-qualified ServeMux patterns, so
// the mux itself answers 405 for known paths with the wrong method.
type RouterProvider struct {
	routes []structures.Route
}

func (rp *RouterProvider) Get(name, url string, handler http.Handler) {
	rp.add(http.MethodGet, name, url, handler)
}

func (rp *RouterProvider) Post(name, url string, handler http.Handler) {
	rp.add(http.MethodPost, name, url, handler)
}

func (rp *RouterProvider) add(method, name, url string, handler http.Handler) {
	rp.routes = append(rp.routes, structures.Route{
		Name:    name,
		Url:     method + " " + url,
		Handler: handler,
	})
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{}
}
