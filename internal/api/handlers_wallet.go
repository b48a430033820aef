package api

import (
	"net/http"

	apperrors "github.com/wallet-roaster/internal/errors"
)

// handleGetWallet handles GET /api/wallet?address=
func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondServiceError(w, r, apperrors.NewMissingRequiredFieldError("address"))
		return
	}

	roast, err := s.wallets.Roast(r.Context(), address)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, roast)
}
