package authapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"tenantgate/pkg/middleware"
	"tenantgate/pkg/problems"
)

// maxLoginBody bounds the login request body.
const maxLoginBody = 16 << 10

type loginRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
}

func (a *App) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody))
	if err := dec.Decode(&req); err != nil {
		a.render.Write(w, r, problems.Invalid(err))
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		a.render.Write(w, r, problems.Invalid(errors.New("trailing data after login payload")))
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.render.Write(w, r, problems.Invalid(err))
		return
	}

	res, err := a.auth.Authenticate(r.Context(), req.ClientID, req.ClientSecret)
	if err != nil {
		a.render.Write(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, res, http.StatusOK)
}

func (a *App) me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		a.render.Write(w, r, problems.ErrUnauthorized)
		return
	}
	writeJSON(w, map[string]any{"message": "You are authenticated", "tenant": id}, http.StatusOK)
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(a.started).Seconds(),
	}, http.StatusOK)
}
