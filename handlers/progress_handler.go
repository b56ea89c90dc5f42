package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"habitLoopAPI/internal/types/progress"
	"habitLoopAPI/middleware"
	"habitLoopAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

func (h *ProgressHandler) LogProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	var req progress.LogProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.progressService.LogProgress(ctx, challengeID, userID, &req)
	if err != nil {
		log.Printf("LogProgress Handler: Service error: %v", err)
		switch {
		case errors.Is(err, services.ErrChallengeNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrNotParticipant):
			respondWithError(w, http.StatusForbidden, err.Error())
		default:
			respondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

func (h *ProgressHandler) GetChallengeProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	logs, err := h.progressService.GetChallengeProgress(ctx, challengeID, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get progress")
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

func (h *ProgressHandler) GetChallengeFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challengeID, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	logs, err := h.progressService.GetChallengeFeed(ctx, challengeID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get challenge feed")
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}

// GetChallengeStats serves the derived statistics for the authenticated
// user in one challenge. A missing challenge responds 200 with zeroed
// stats, matching the read-model contract.
func (h *ProgressHandler) GetChallengeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := challengeIDFromRequest(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	// Stats for another participant are viewable via ?userId=.
	if other := r.URL.Query().Get("userId"); other != "" {
		userID = other
	}

	challengeStats, err := h.progressService.GetChallengeStats(ctx, challengeID, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get challenge stats")
		return
	}

	respondWithJSON(w, http.StatusOK, challengeStats)
}

func (h *ProgressHandler) GetDailyProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}

	logs, err := h.progressService.GetDailyProgress(ctx, userID, date)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}
