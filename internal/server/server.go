// Package server hosts the HTTP API for PostPilot.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/database"
	"github.com/postpilot/postpilot/internal/pipeline"
	"github.com/postpilot/postpilot/internal/scheduler"
)

type Server struct {
	cfg        *config.Config
	db         *database.DB
	pipeline   *pipeline.Service
	scheduler  *scheduler.Scheduler
	httpServer *http.Server
	router     *Router
}

func New(cfg *config.Config, db *database.DB, svc *pipeline.Service, sched *scheduler.Scheduler) *Server {
	srv := &Server{
		cfg:       cfg,
		db:        db,
		pipeline:  svc,
		scheduler: sched,
	}

	srv.router = NewRouter(srv)
	srv.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      srv.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return srv
}

func (s *Server) Start(ctx context.Context) error {
	log.Info().
		Str("addr", s.cfg.Server.Address()).
		Msg("Starting server")

	if s.cfg.Schedule.AutoStart {
		if err := s.scheduler.Start(); err != nil {
			return err
		}
	}

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down server")

	s.scheduler.Stop()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) DB() *database.DB {
	return s.db
}

func (s *Server) Config() *config.Config {
	return s.cfg
}

func (s *Server) Pipeline() *pipeline.Service {
	return s.pipeline
}

func (s *Server) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}
