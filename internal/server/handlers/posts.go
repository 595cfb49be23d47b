package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/postpilot/postpilot/internal/pipeline"
)

// Generate produces a post draft without publishing it.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.Generate(r.Context())
	if err != nil {
		InternalError(w, "failed to record generated post")
		return
	}

	if !result.Success {
		JSON(w, http.StatusInternalServerError, result)
		return
	}

	JSON(w, http.StatusOK, result)
}

type publishRequest struct {
	Content string `json:"content"`
}

// Publish posts caller-supplied content to LinkedIn.
func (h *Handlers) Publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	result, err := h.pipeline.Publish(r.Context(), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrEmptyContent):
			BadRequest(w, "Content is required")
		case errors.Is(err, pipeline.ErrNotAuthenticated):
			Unauthorized(w, "Not authenticated with LinkedIn. Visit /api/auth/linkedin/url first.")
		default:
			InternalError(w, "failed to record publish attempt")
		}
		return
	}

	if !result.Success {
		JSON(w, http.StatusInternalServerError, result)
		return
	}

	JSON(w, http.StatusOK, result)
}

// GenerateAndPublish runs the full pipeline once, on demand.
func (h *Handlers) GenerateAndPublish(w http.ResponseWriter, r *http.Request) {
	result, err := h.pipeline.GenerateAndPublish(r.Context(), pipeline.TriggerManual)
	if err != nil {
		if errors.Is(err, pipeline.ErrNotAuthenticated) {
			Unauthorized(w, "Not authenticated with LinkedIn. Visit /api/auth/linkedin/url first.")
			return
		}
		InternalError(w, "pipeline run failed")
		return
	}

	if !result.Success {
		JSON(w, http.StatusInternalServerError, result)
		return
	}

	JSON(w, http.StatusOK, result)
}

// ListPosts returns the post history, newest first.
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	entries, err := h.pipeline.History(r.Context())
	if err != nil {
		InternalError(w, "failed to read post history")
		return
	}

	JSON(w, http.StatusOK, map[string]any{
		"posts": entries,
		"count": len(entries),
	})
}
