package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// handleListPrizes returns the current prize list in wheel order.
func (s *Server) handleListPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := s.db.ListPrizes()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to load prizes", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, PrizesResponse{Prizes: prizes})
}

// handleReplacePrizes swaps the entire prize list.
func (s *Server) handleReplacePrizes(w http.ResponseWriter, r *http.Request) {
	var req ReplacePrizesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	if err := ValidateReplacePrizes(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	if err := s.db.ReplacePrizes(toStorePrizes(req.Prizes)); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to replace prizes", nil)
		return
	}

	prizes, err := s.db.ListPrizes()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to load prizes", nil)
		return
	}

	s.logger.Printf("prizes_replaced count=%d", len(prizes))
	s.writeJSON(w, http.StatusOK, PrizesResponse{Prizes: prizes})
}

// handleResetPrizes restores the default prize list.
func (s *Server) handleResetPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := s.db.ResetPrizes()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to reset prizes", nil)
		return
	}
	s.logger.Printf("prizes_reset count=%d", len(prizes))
	s.writeJSON(w, http.StatusOK, PrizesResponse{Prizes: prizes})
}

// handleListDraws returns a page of draw history, newest first.
func (s *Server) handleListDraws(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.HistoryPageSize
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "limit must be in 1..500", nil)
			return
		}
		limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "offset must be >= 0", nil)
			return
		}
		offset = n
	}

	page, err := s.db.ListDraws(limit, offset)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to load draw history", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// handleClearDraws empties the draw history.
func (s *Server) handleClearDraws(w http.ResponseWriter, r *http.Request) {
	if err := s.db.ClearDraws(); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to clear draw history", nil)
		return
	}
	s.logger.Printf("draws_cleared")
	w.WriteHeader(http.StatusNoContent)
}

// handleSpin runs a full spin simulation to settle and records the outcome.
func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	var req SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if err := ValidateSpinRequest(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	prizes, err := s.db.ListPrizes()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "failed to load prizes", nil)
		return
	}
	if len(prizes) < minPrizes {
		s.writeError(w, r, http.StatusConflict, ErrTypeConflict, "not enough prizes configured to spin", map[string]interface{}{
			"prize_count": len(prizes),
		})
		return
	}

	rng := s.newRand()
	velocity := pickVelocity(rng)
	if req.Velocity != nil {
		velocity = *req.Velocity
	}

	result, err := s.runSpin(len(prizes), velocity, rng)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "spin simulation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	winner := prizes[result.winner]
	draw := s.recordDraw(winner)

	s.logger.Printf(
		"spin_completed winner=%d prize=%q release_velocity=%.3f ticks=%d",
		result.winner, winner.Label, velocity, result.ticks,
	)

	s.writeJSON(w, http.StatusOK, SpinResponse{
		WinnerIndex:     result.winner,
		Prize:           winner,
		ReleaseVelocity: velocity,
		Rotation:        result.rotation,
		Ticks:           result.ticks,
		DurationMs:      result.durationMs(),
		Draw:            draw,
	})
}
