// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"github.com/postpilot/postpilot/internal/database"
	"github.com/postpilot/postpilot/internal/pipeline"
	"github.com/postpilot/postpilot/internal/scheduler"
)

// Handlers bundles the dependencies shared by all endpoints.
type Handlers struct {
	db        *database.DB
	pipeline  *pipeline.Service
	scheduler *scheduler.Scheduler
}

func New(db *database.DB, svc *pipeline.Service, sched *scheduler.Scheduler) *Handlers {
	return &Handlers{
		db:        db,
		pipeline:  svc,
		scheduler: sched,
	}
}
