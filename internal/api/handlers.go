package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coreman2200/arcaluminis-fx/internal/app"
	"github.com/coreman2200/arcaluminis-fx/internal/color"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
)

func (r *Router) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, effect.ErrUnknownEffect), errors.Is(err, app.ErrNoEffect):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown_effect", Message: err.Error()})
	case errors.Is(err, effect.ErrUnknownBrightness):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_brightness", Message: err.Error()})
	case errors.Is(err, color.ErrInvalidHex):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_color", Message: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "device_error", Message: err.Error()})
	}
}

// health handles GET /health
func (r *Router) health(c *gin.Context) {
	s := r.sel.Snapshot()
	resp := HealthResponse{
		Status:     "healthy",
		Effect:     s.Effect,
		State:      s.State,
		Brightness: s.Brightness,
		Frames:     s.Frames,
	}
	if r.preview != nil {
		ps := r.preview.Stats()
		resp.PreviewClients = ps.Clients
		resp.PreviewFrames = ps.Frames
		resp.Uptime = ps.Uptime
	}
	c.JSON(http.StatusOK, resp)
}

// listEffects handles GET /api/v1/effects
func (r *Router) listEffects(c *gin.Context) {
	current := r.sel.Snapshot().Effect
	var resp EffectsResponse
	for _, name := range r.catalog.Names() {
		e, err := r.catalog.Get(name)
		if err != nil {
			continue
		}
		resp.Effects = append(resp.Effects, EffectInfo{
			Name:          name,
			SupportsColor: e.SupportsColor(),
			Active:        name == current && e.State() == effect.Running,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// state handles GET /api/v1/state
func (r *Router) state(c *gin.Context) {
	c.JSON(http.StatusOK, r.sel.Snapshot())
}

// applyEffect handles POST /api/v1/effect/:name
func (r *Router) applyEffect(c *gin.Context) {
	if err := r.sel.Apply(c.Request.Context(), c.Param("name")); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r.sel.Snapshot())
}

// nextEffect handles GET|POST /nextEffect
func (r *Router) nextEffect(c *gin.Context) {
	name, err := r.sel.Next(c.Request.Context())
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, EffectResponse{Effect: name})
}

// stop handles POST /api/v1/stop
func (r *Router) stop(c *gin.Context) {
	r.sel.Stop()
	c.JSON(http.StatusOK, r.sel.Snapshot())
}

func (r *Router) stepBrightness(delta int) gin.HandlerFunc {
	return func(c *gin.Context) {
		level, err := r.sel.StepBrightness(c.Request.Context(), delta)
		if err != nil {
			r.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, BrightnessResponse{Brightness: level.String()})
	}
}

// setBrightness handles POST /api/v1/brightness/:level
func (r *Router) setBrightness(c *gin.Context) {
	level, err := effect.ParseLevel(c.Param("level"))
	if err == nil {
		err = r.sel.SetBrightness(c.Request.Context(), level)
	}
	if err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, BrightnessResponse{Brightness: level.String()})
}

// setColor handles POST /api/v1/color
func (r *Router) setColor(c *gin.Context) {
	var req ColorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := r.sel.SetColor(c.Request.Context(), req.Color); err != nil {
		r.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r.sel.Snapshot())
}
