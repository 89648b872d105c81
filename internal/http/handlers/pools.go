package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
)

type createPoolRequest struct {
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

type updatePoolRequest struct {
	Status string `json:"status"`
}

func (a *App) PoolsCreate(w http.ResponseWriter, r *http.Request) {
	var req createPoolRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Ledger.CreatePool(r.Context(), a.actor(r), req.Name, req.TargetAmount)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toPoolDTO(p))
}

func (a *App) PoolGet(w http.ResponseWriter, r *http.Request) {
	p, err := a.Ledger.GetPool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toPoolDTO(p))
}

func (a *App) PoolUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePoolRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	p, err := a.Ledger.SetPoolStatus(r.Context(), a.actor(r), chi.URLParam(r, "id"), domain.PoolStatus(req.Status))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toPoolDTO(p))
}
