// Package api is the HTTP trigger surface: effect selection, brightness,
// color and the live preview socket.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-fx/internal/app"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/ws"
)

// Selector is the effect selector driven by the routes.
type Selector interface {
	Apply(ctx context.Context, name string) error
	Next(ctx context.Context) (string, error)
	SetBrightness(ctx context.Context, level effect.Level) error
	StepBrightness(ctx context.Context, delta int) (effect.Level, error)
	SetColor(ctx context.Context, hex string) error
	Stop()
	Snapshot() app.Snapshot
}

// Catalog lists the registered effects.
type Catalog interface {
	Names() []string
	Get(name string) (*effect.Effect, error)
}

// Preview streams frames to browsers. It may be nil.
type Preview interface {
	HandleFrames(w http.ResponseWriter, r *http.Request)
	Stats() ws.Stats
}

type Router struct {
	engine  *gin.Engine
	sel     Selector
	catalog Catalog
	preview Preview
	log     zerolog.Logger
}

func NewRouter(sel Selector, catalog Catalog, preview Preview, log zerolog.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	log = log.With().Str("component", "api").Logger()
	setupMiddleware(engine, log)

	r := &Router{engine: engine, sel: sel, catalog: catalog, preview: preview, log: log}
	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.health)

	// Path kept for the keyboard-shortcut scripts.
	r.engine.GET("/nextEffect", r.nextEffect)
	r.engine.POST("/nextEffect", r.nextEffect)

	if r.preview != nil {
		r.engine.GET("/ws", gin.WrapF(r.preview.HandleFrames))
	}

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", r.health)
		v1.GET("/effects", r.listEffects)
		v1.GET("/state", r.state)
		v1.POST("/effect/:name", r.applyEffect)
		v1.POST("/stop", r.stop)
		v1.POST("/color", r.setColor)

		b := v1.Group("/brightness")
		{
			b.POST("/increase", r.stepBrightness(1))
			b.POST("/decrease", r.stepBrightness(-1))
			b.POST("/:level", r.setBrightness)
		}
	}
}

// Handler exposes the engine for http.Server and tests.
func (r *Router) Handler() http.Handler { return r.engine }
