package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"donationhub/internal/domain"
	"donationhub/internal/ledger"
	"donationhub/internal/middleware"
	"donationhub/internal/notify"
)

const maxBodyBytes = 1 << 20

// App carries the collaborators shared by every handler.
type App struct {
	Ledger   *ledger.Service
	Notifier *notify.Notifier
	Logger   zerolog.Logger
	// Ready reports whether backing stores are reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

func NewApp(l *ledger.Service, n *notify.Notifier, logger zerolog.Logger) *App {
	return &App{Ledger: l, Notifier: n, Logger: logger}
}

type errorPayload struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorPayload{Error: errorDetail{Code: errCode, Message: message}})
}

// fail maps ledger errors onto HTTP statuses. Unknown errors are logged and
// reported as 500 without detail.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		a.error(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrConcurrencyConflict):
		a.error(w, http.StatusConflict, "conflict", "pool is busy, retry the request")
	case errors.Is(err, domain.ErrInvalidAmount):
		a.error(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	default:
		a.logger(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

// logger prefers the request scoped logger installed by the access log middleware.
func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// actor builds the ledger caller from verified token claims.
func (a *App) actor(r *http.Request) ledger.Actor {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	actor := ledger.Actor{Locale: middleware.LocaleFromContext(r.Context())}
	if claims != nil {
		actor.ID = claims.Subject
		actor.Admin = claims.IsAdmin()
	}
	return actor
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, domain.ErrInvalidInput)
	}
	return nil
}
