package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-fx/internal/api"
	"github.com/coreman2200/arcaluminis-fx/internal/app"
	"github.com/coreman2200/arcaluminis-fx/internal/config"
	"github.com/coreman2200/arcaluminis-fx/internal/effect"
	"github.com/coreman2200/arcaluminis-fx/internal/effect/scenes"
	"github.com/coreman2200/arcaluminis-fx/internal/openrgb"
	"github.com/coreman2200/arcaluminis-fx/internal/topology"
	"github.com/coreman2200/arcaluminis-fx/internal/ws"
)

func main() {
	// ---- Flags (explicitly set flags win over config.yaml) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		effectName = flag.String("effect", "", "effect to start with")
		brightness = flag.String("brightness", "", "off | low | medium | high | max")
		colorHex   = flag.String("color", "", "base color as #RRGGBB")
		addr       = flag.String("addr", "", "HTTP listen address")
		orgbAddr   = flag.String("openrgb", "", "OpenRGB SDK server host:port, \"off\" to disable")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		logLevel   = flag.String("log-level", "", "trace | debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["effect"] {
		cfg.Effect = *effectName
	}
	if set["brightness"] {
		cfg.Brightness = *brightness
	}
	if set["color"] {
		cfg.Color = *colorHex
	}
	if set["addr"] {
		cfg.HTTP.Addr = *addr
	}
	if set["openrgb"] {
		cfg.OpenRGB.Enabled = *orgbAddr != "off"
		if cfg.OpenRGB.Enabled {
			cfg.OpenRGB.Addr = *orgbAddr
		}
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	logger := log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Devices ----
	devices := app.NewMulti(logger)
	var orgb *openrgb.Client
	if cfg.OpenRGB.Enabled && !*simOnly {
		orgb = openrgb.NewClient(cfg.OpenRGB.Addr, cfg.OpenRGB.ClientName, logger)
		if err := orgb.Connect(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.OpenRGB.Addr).Msg("OpenRGB not reachable; will retry on use")
		}
		devices.Add("openrgb", orgb)
	}
	bank, err := app.BuildLocal(cfg.Local, *simOnly, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("local devices")
	}
	devices.Add("local", bank)

	// ---- Effects ----
	var sink effect.Sink = devices
	var hub *ws.Hub
	var core *app.Core
	if cfg.Preview.Enabled {
		hub = ws.NewHub(logger, func() []*topology.Device { return core.Devices() })
		sink = hub.Tee(devices)
	}
	reg := scenes.Registry(sink, effect.WithLogger(logger))
	core = app.New(devices, reg, logger)

	if cfg.Brightness != "" {
		level, _ := effect.ParseLevel(cfg.Brightness)
		_ = core.SetBrightness(ctx, level)
	}
	if cfg.Color != "" {
		_ = core.SetColor(ctx, cfg.Color)
	}
	if cfg.Effect != "" {
		if err := core.Apply(ctx, cfg.Effect); err != nil {
			log.Error().Err(err).Str("effect", cfg.Effect).Msg("initial effect")
		}
	}

	// ---- HTTP ----
	var preview api.Preview
	if hub != nil {
		preview = hub
	}
	router := api.NewRouter(core, reg, preview, logger)
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if hub != nil {
		hub.Close()
	}
	core.Stop()
	reg.StopAll()
	if err := bank.Close(); err != nil {
		log.Warn().Err(err).Msg("closing local drivers")
	}
	if orgb != nil {
		_ = orgb.Close()
	}
}
