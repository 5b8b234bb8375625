package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/MediSynth-io/postsvc/internal/auth"
	"github.com/MediSynth-io/postsvc/internal/config"
	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/MediSynth-io/postsvc/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

type Api struct {
	Config config.Config
	Router *chi.Mux

	auth     *auth.Service
	store    *store.Store
	registry *prometheus.Registry
	metrics  *httpMetrics
}

func NewApi(cfg config.Config, db *database.DB) (*Api, error) {
	if cfg.APIPort == 0 {
		return nil, errors.New("Must have at least a port to start API")
	}
	if db == nil {
		return nil, errors.New("a database connection is required")
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "jwt"
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}

	st := store.New(db)
	registry := prometheus.NewRegistry()

	api := &Api{
		Config:   cfg,
		Router:   chi.NewRouter(),
		auth:     auth.NewService(st, tokens),
		store:    st,
		registry: registry,
		metrics:  newHTTPMetrics(registry),
	}

	api.setupRoutes()
	return api, nil
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// The frontend sends the session cookie, so exactly one origin may be allowed
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{api.Config.CORS.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Heartbeat("/heartbeat"))
	r.Use(api.metrics.Middleware)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(api.registry, promhttp.HandlerOpts{}))

	r.Route("/auth", func(r chi.Router) {
		r.Get("/authenticate", api.AuthenticateHandler)
		r.Post("/signup", api.SignupHandler)
		r.Post("/login", api.LoginHandler)
		r.Get("/logout", api.LogoutHandler)
	})

	r.Route("/api/posts", func(r chi.Router) {
		if api.Config.Auth.RequireSessionForPosts {
			r.Use(api.RequireSession)
		}
		r.Post("/", api.CreatePostHandler)
		r.Get("/", api.ListPostsHandler)
		r.Delete("/", api.DeleteAllPostsHandler)
		r.Get("/{id}", api.GetPostHandler)
		r.Put("/{id}", api.UpdatePostHandler)
		r.Delete("/{id}", api.DeletePostHandler)
	})
}

// Serve listens on the configured port until ctx is canceled, then drains
// in-flight requests.
func (api *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort),
		Handler: api.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting API server on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
