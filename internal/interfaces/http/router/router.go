// Package router mounts the ledger's resource groups under a versioned API prefix.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultPrefix is where resources are mounted unless WithPrefix says otherwise.
const DefaultPrefix = "/api/v1"

// Registrar is implemented by anything that can add its routes to a group.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them in one pass.
type Router struct {
	engine     *gin.Engine
	prefix     string
	logger     *zap.Logger
	registrars []Registrar
}

// Option configures a Router.
type Option func(*Router)

// WithPrefix replaces DefaultPrefix. A missing leading slash is added.
func WithPrefix(prefix string) Option {
	return func(r *Router) {
		if !strings.HasPrefix(prefix, "/") {
			prefix = "/" + prefix
		}
		r.prefix = prefix
	}
}

// WithLogger logs the mounted route table at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, prefix: DefaultPrefix, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars; nothing is mounted until Setup.
func (r *Router) Register(registrars ...Registrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar under the prefix and returns that group.
func (r *Router) Setup() *gin.RouterGroup {
	api := r.engine.Group(r.prefix)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}

	mounted := 0
	for _, info := range r.engine.Routes() {
		if !strings.HasPrefix(info.Path, r.prefix) {
			continue
		}
		mounted++
		r.logger.Debug("Route mounted", zap.String("method", info.Method), zap.String("path", info.Path))
	}
	r.logger.Info("API routes mounted", zap.String("prefix", r.prefix), zap.Int("routes", mounted))
	return api
}

// Route is one method and path relative to its resource.
type Route struct {
	Method   string
	Path     string
	handlers []gin.HandlerFunc
}

// Resource is the route table of one top-level path such as /properties.
type Resource struct {
	prefix string
	routes []Route
}

func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

// Handle adds a route. The last handler serves the request; the ones before
// it run as route-scoped middleware.
func (res *Resource) Handle(method, path string, handlers ...gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, Route{Method: method, Path: path, handlers: handlers})
	return res
}

func (res *Resource) GET(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodGet, path, handlers...)
}

func (res *Resource) POST(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPost, path, handlers...)
}

func (res *Resource) PUT(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodPut, path, handlers...)
}

func (res *Resource) DELETE(path string, handlers ...gin.HandlerFunc) *Resource {
	return res.Handle(http.MethodDelete, path, handlers...)
}

// Routes lists the resource's routes in registration order.
func (res *Resource) Routes() []Route {
	return res.routes
}

// RegisterRoutes implements Registrar.
func (res *Resource) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(res.prefix)
	for _, route := range res.routes {
		group.Handle(route.Method, route.Path, route.handlers...)
	}
}
