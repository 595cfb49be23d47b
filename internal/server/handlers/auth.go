package handlers

import (
	"fmt"
	"html"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AuthURL returns the LinkedIn authorization URL the operator should open
// in a browser.
func (h *Handlers) AuthURL(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{
		"auth_url": h.pipeline.AuthURL(),
	})
}

// AuthCallback completes the OAuth flow. LinkedIn redirects the operator's
// browser here, so responses are human-readable HTML rather than JSON.
func (h *Handlers) AuthCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		desc := r.URL.Query().Get("error_description")
		if desc == "" {
			desc = errParam
		}
		log.Error().Str("error", errParam).Msg("LinkedIn authorization denied")
		writeAuthPage(w, http.StatusBadRequest, "Authentication Failed", desc)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeAuthPage(w, http.StatusBadRequest, "Authentication Failed", "Authorization code not received")
		return
	}

	if _, err := h.pipeline.CompleteAuthorization(r.Context(), code); err != nil {
		log.Error().Err(err).Msg("Authorization code exchange failed")
		writeAuthPage(w, http.StatusInternalServerError, "Authentication Failed", err.Error())
		return
	}

	writeAuthPage(w, http.StatusOK, "Authentication Successful",
		"You can close this window. Scheduled posting is now able to publish on your behalf.")
}

// AuthStatus reports whether a LinkedIn credential is stored.
func (h *Handlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	authenticated, accountID, err := h.pipeline.AuthStatus(r.Context())
	if err != nil {
		InternalError(w, "failed to read credential")
		return
	}

	resp := map[string]any{
		"authenticated": authenticated,
	}
	if authenticated {
		resp["account_id"] = accountID
	}

	JSON(w, http.StatusOK, resp)
}

func writeAuthPage(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>
`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
}
