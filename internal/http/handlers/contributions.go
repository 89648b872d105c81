package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"donationhub/internal/domain"
	"donationhub/internal/ledger"
	"donationhub/internal/middleware"
)

type contributionRequest struct {
	// ContributorID defaults to the caller; only administrators may set it.
	ContributorID string          `json:"contributor_id"`
	Amount        decimal.Decimal `json:"amount"`
	PoolOptIn     *bool           `json:"pool_opt_in"`
	Method        string          `json:"method"`
	Note          string          `json:"note"`
}

func (a *App) ContributionsCreate(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	actor := a.actor(r)
	sub := ledger.Submission{
		ContributorID: strings.TrimSpace(req.ContributorID),
		Amount:        req.Amount,
		PoolOptIn:     req.PoolOptIn,
		Method:        domain.PaymentMethod(strings.ToLower(strings.TrimSpace(req.Method))),
		Note:          strings.TrimSpace(req.Note),
		Country:       middleware.CountryFromContext(r.Context()),
	}
	c, err := a.Ledger.Submit(r.Context(), actor, sub)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, toContributionDTO(c))
}

func (a *App) ContributionGet(w http.ResponseWriter, r *http.Request) {
	c, err := a.Ledger.GetContribution(r.Context(), a.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toContributionDTO(c))
}

func (a *App) ContributionApprove(w http.ResponseWriter, r *http.Request) {
	res, err := a.Ledger.Approve(r.Context(), a.actor(r), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, toApprovalDTO(res))
}

func (a *App) ContributionReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.Ledger.Reject(r.Context(), a.actor(r), id); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"id": id, "status": string(domain.ContributionRejected)})
}
