package main

import (
	"embed"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"wintergreet/internal/config"
	"wintergreet/internal/greeting"
	"wintergreet/internal/handlers"
)

const (
	sessionIdleTimeout = 30 * time.Minute
	sweepInterval      = 5 * time.Minute
)

func main() {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")
	_ = mime.AddExtensionType(".svg", "image/svg+xml")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("scene variant=%s lights=%s snow=%d stars=%d gifts=%d",
		cfg.GiftVariant(), cfg.Lights.Shape, cfg.Snow.Count, cfg.Stars.Count, len(cfg.Gifts.Items))

	store := greeting.NewStore(cfg)
	go sweepSessions(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	staticFS, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		log.Fatal(err)
	}

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(staticFS))))

	sceneHandler := handlers.NewSceneHandler(store)
	sceneHandler.RegisterStream(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		sceneHandler.RegisterRoutes(r)
	})

	addr := ":" + strings.TrimSpace(os.Getenv("PORT"))
	if addr == ":" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("listening on http://localhost%s", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}

func sweepSessions(store *greeting.Store) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for range ticker.C {
		if n := store.Sweep(time.Now().UTC().Add(-sessionIdleTimeout)); n > 0 {
			log.Printf("closed %d idle sessions", n)
		}
	}
}

//go:embed static/*
var embeddedStatic embed.FS
