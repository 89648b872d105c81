package handlers

import "net/http"

// Reconcile runs one reconciliation pass synchronously and returns its report.
func (a *App) Reconcile(w http.ResponseWriter, r *http.Request) {
	reports, err := a.Ledger.Reconcile(r.Context(), a.actor(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	corrected := 0
	for _, rep := range reports {
		if rep.Corrected {
			corrected++
		}
	}
	a.json(w, http.StatusOK, map[string]any{
		"pools":     len(reports),
		"corrected": corrected,
		"reports":   ToReconcileDTOs(reports),
	})
}
