package main

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	flag "github.com/spf13/pflag"

	httpadapter "svw.info/tambola/internal/adapters/http"
	"svw.info/tambola/internal/config"
	"svw.info/tambola/internal/generator"
	"svw.info/tambola/internal/infrastructure/storage"
	"svw.info/tambola/internal/ports"
	"svw.info/tambola/internal/render"
	"svw.info/tambola/internal/usecase"
	"svw.info/tambola/internal/validator"
	"svw.info/tambola/web"
)

func main() {
	cfgPath := flag.String("config", "", "YAML config file")
	addr := flag.String("addr", "", "listen address")
	persist := flag.String("persist-path", "", "save directory")
	levelStr := flag.String("log-level", "", "debug|info|warn|error")
	genKind := flag.String("generator", "", "generator to use: joint|repair")
	storeKind := flag.String("store", "", "ticket store: fs|sqlite")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	// Flags override file and environment.
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{*addr, &cfg.Addr},
		{*persist, &cfg.DataDir},
		{*levelStr, &cfg.LogLevel},
		{*genKind, &cfg.Generator},
		{*storeKind, &cfg.Store},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	lvl, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st ports.Storage
	switch cfg.Store {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			logger.Error("sqlite dir", "err", err)
			os.Exit(1)
		}
		sq, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Error("sqlite", "err", err)
			os.Exit(1)
		}
		defer sq.Close()
		st = sq
	default:
		_ = os.MkdirAll(cfg.DataDir, 0o755)
		st = storage.NewFS(cfg.DataDir)
	}

	strategy, _ := config.ParseStrategy(cfg.Generator)

	// Wire providers → use cases → HTTP adapter
	g := generator.New(strategy)
	v := validator.New()
	uc := usecase.NewService(g, v, st, generator.NewSource, logger)
	uc.MaxBatch = cfg.MaxBatch
	h := httpadapter.New(uc)

	r := chi.NewRouter()
	r.Use(httpadapter.RequestLogger(logger))
	r.Handle("/static/*", web.Static("/static/"))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		t, _, err := uc.Generate(r.Context(), usecase.IssueRequest{})
		if err != nil {
			http.Error(w, template.HTMLEscapeString(err.Error()), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := web.Page{TicketID: t.ID, Seed: t.Seed, Rows: render.Rows(t.Grid)}
		if err := web.RenderIndex(w, page); err != nil {
			http.Error(w, template.HTMLEscapeString(err.Error()), http.StatusInternalServerError)
		}
	})
	r.Mount("/api", h.Routes())

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr, "store", cfg.Store, "generator", strategy.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
