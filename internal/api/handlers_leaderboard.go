package api

import (
	"net/http"

	apperrors "github.com/wallet-roaster/internal/errors"
	"github.com/wallet-roaster/internal/models"
	"github.com/wallet-roaster/internal/service"
)

// LeaderboardResponse is the body of GET /api/leaderboard
type LeaderboardResponse struct {
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
	GlobalCount int64                     `json:"globalCount"`
}

// SubmitRequest is the body of POST /api/leaderboard
type SubmitRequest struct {
	Wallet string       `json:"wallet"`
	Roast  string       `json:"roast"`
	Stats  *SubmitStats `json:"stats"`
}

// SubmitStats carries the stats the client was shown for the wallet
type SubmitStats struct {
	WinRate        int    `json:"winRate"`
	PaperHandScore int    `json:"paperHandScore"`
	RugPulls       int    `json:"rugPulls"`
	Diagnosis      string `json:"diagnosis"`
}

// SubmitResponse is the body returned after a submission
type SubmitResponse struct {
	Success     bool                      `json:"success"`
	Data        []models.LeaderboardEntry `json:"data"`
	GlobalCount int64                     `json:"globalCount"`
}

type noWinnerResponse struct {
	Message string `json:"message"`
}

// handleGetLeaderboard handles GET /api/leaderboard. mode=last-winner is
// accepted as an alias for the last-winner route.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("mode") == "last-winner" {
		s.handleGetLastWinner(w, r)
		return
	}

	entries, count := s.leaderboard.Top(r.Context())
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	respondJSON(w, http.StatusOK, LeaderboardResponse{Leaderboard: entries, GlobalCount: count})
}

// handleGetLastWinner handles GET /api/leaderboard/last-winner
func (s *Server) handleGetLastWinner(w http.ResponseWriter, r *http.Request) {
	winner, ok := s.leaderboard.LastWinner(r.Context())
	if !ok {
		respondJSON(w, http.StatusOK, noWinnerResponse{Message: "No winner recorded yet"})
		return
	}
	respondJSON(w, http.StatusOK, winner)
}

// handleSubmitLeaderboard handles POST /api/leaderboard
func (s *Server) handleSubmitLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := parseJSONBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid JSON body", nil)
		return
	}

	switch {
	case req.Wallet == "":
		respondServiceError(w, r, apperrors.NewMissingRequiredFieldError("wallet"))
		return
	case req.Stats == nil:
		respondServiceError(w, r, apperrors.NewMissingRequiredFieldError("stats"))
		return
	}

	entries, count, err := s.leaderboard.Submit(r.Context(), service.Submission{
		Wallet:         req.Wallet,
		Roast:          req.Roast,
		RugPulls:       req.Stats.RugPulls,
		WinRate:        req.Stats.WinRate,
		PaperHandScore: req.Stats.PaperHandScore,
		Diagnosis:      req.Stats.Diagnosis,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}

	respondJSON(w, http.StatusOK, SubmitResponse{Success: true, Data: entries, GlobalCount: count})
}
