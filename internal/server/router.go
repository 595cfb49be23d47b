package server

import (
	"net/http"

	"github.com/postpilot/postpilot/internal/metrics"
	"github.com/postpilot/postpilot/internal/server/handlers"
)

type Router struct {
	server      *Server
	mux         *http.ServeMux
	middlewares []Middleware
}

type Middleware func(http.Handler) http.Handler

func NewRouter(srv *Server) *Router {
	r := &Router{
		server: srv,
		mux:    http.NewServeMux(),
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

func (r *Router) setupMiddleware() {
	r.Use(RecoveryMiddleware)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware)

	if r.server.cfg.Server.CORS.Enabled {
		r.Use(CORSMiddleware(r.server.cfg.Server.CORS))
	}

	if r.server.cfg.Server.MaxBodySize > 0 {
		r.Use(MaxBodySizeMiddleware(r.server.cfg.Server.MaxBodySize))
	}
}

func (r *Router) Use(mw Middleware) {
	r.middlewares = append(r.middlewares, mw)
}

func (r *Router) setupRoutes() {
	h := handlers.New(r.server.DB(), r.server.Pipeline(), r.server.Scheduler())

	r.mux.HandleFunc("GET /{$}", h.Health)
	r.mux.HandleFunc("GET /health", h.Health)
	r.mux.HandleFunc("GET /api/health", h.Health)
	r.mux.Handle("GET /metrics", metrics.Handler())

	r.mux.HandleFunc("GET /api/auth/linkedin/url", h.AuthURL)
	r.mux.HandleFunc("GET /api/auth/linkedin/callback", h.AuthCallback)
	r.mux.HandleFunc("GET /api/auth/status", h.AuthStatus)

	r.mux.HandleFunc("POST /api/generate", h.Generate)
	r.mux.HandleFunc("POST /api/post", h.Publish)
	r.mux.HandleFunc("POST /api/generate-and-post", h.GenerateAndPublish)
	r.mux.HandleFunc("GET /api/posts", h.ListPosts)

	r.mux.HandleFunc("POST /api/scheduler/start", h.SchedulerStart)
	r.mux.HandleFunc("POST /api/scheduler/stop", h.SchedulerStop)
	r.mux.HandleFunc("GET /api/scheduler/status", h.SchedulerStatus)
	r.mux.HandleFunc("POST /api/scheduler/test", h.SchedulerTest)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(r.mux)

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}

	handler.ServeHTTP(w, req)
}
