package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegistrarFunc adapts a plain function to the RouteRegistrar interface
type RegistrarFunc func(rg *gin.RouterGroup)

// RegisterRoutes implements RouteRegistrar
func (f RegistrarFunc) RegisterRoutes(rg *gin.RouterGroup) {
	f(rg)
}

// Router manages HTTP route registration. Registrars attach to the
// versioned API group; admin registrars attach to an /admin subgroup that
// carries its own middleware chain.
type Router struct {
	engine          *gin.Engine
	apiVersion      string
	middleware      []gin.HandlerFunc
	adminMiddleware []gin.HandlerFunc
	registrars      []RouteRegistrar
	adminRegistrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Use adds middleware applied to the whole versioned API group
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// UseAdmin adds middleware applied only to the /admin subgroup, on top of
// the API group's chain.
func (r *Router) UseAdmin(middleware ...gin.HandlerFunc) *Router {
	r.adminMiddleware = append(r.adminMiddleware, middleware...)
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterAdmin adds a RouteRegistrar whose routes go under /admin
func (r *Router) RegisterAdmin(registrar RouteRegistrar) *Router {
	r.adminRegistrars = append(r.adminRegistrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.middleware) > 0 {
		api.Use(r.middleware...)
	}

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	if len(r.adminRegistrars) == 0 {
		return
	}
	admin := api.Group("/admin")
	if len(r.adminMiddleware) > 0 {
		admin.Use(r.adminMiddleware...)
	}
	for _, registrar := range r.adminRegistrars {
		registrar.RegisterRoutes(admin)
	}
}
