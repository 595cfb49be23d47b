package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
)

// SchedulerStart activates the daily posting job.
func (h *Handlers) SchedulerStart(w http.ResponseWriter, r *http.Request) {
	if err := h.scheduler.Start(); err != nil {
		BadRequest(w, err.Error())
		return
	}

	JSON(w, http.StatusOK, h.scheduler.Status())
}

// SchedulerStop deactivates the daily posting job.
func (h *Handlers) SchedulerStop(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Stop()

	JSON(w, http.StatusOK, h.scheduler.Status())
}

// SchedulerStatus reports the schedule settings and the next firing time.
func (h *Handlers) SchedulerStatus(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.scheduler.Status())
}

// SchedulerTest fires one pipeline run, exactly as the daily job would.
// The run proceeds detached; its outcome lands in history and the logs.
func (h *Handlers) SchedulerTest(w http.ResponseWriter, r *http.Request) {
	go func() {
		if _, err := h.scheduler.RunNow(context.Background()); err != nil {
			log.Error().Err(err).Msg("Test post run failed")
		}
	}()

	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Test post triggered",
	})
}
