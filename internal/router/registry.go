package router

import "github.com/gin-gonic/gin"

// Module is a self-contained feature group that mounts its own routes
// under the shared /api prefix.
type Module interface {
	Register(rg *gin.RouterGroup)
}

// Registry collects middleware and feature modules, then mounts them on
// the engine in one pass so ordering stays deterministic.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	middleware []gin.HandlerFunc
	modules    []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

// Use adds middleware applied to every /api route. Call before RegisterAll.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middleware = append(r.middleware, mw...)
}

func (r *Registry) Add(mods ...Module) {
	r.modules = append(r.modules, mods...)
}

func (r *Registry) RegisterAll() {
	r.API.Use(r.middleware...)
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
