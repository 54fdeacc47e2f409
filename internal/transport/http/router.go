package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"quiz-royale/internal/app"
	"quiz-royale/internal/domain"
)

// NewRouter mounts the play socket and the reward read endpoints.
func NewRouter(service *app.QuizService, log logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(service, log).ServeWS)

	rewards := &RewardHandler{service: service}
	rewards.RegisterRoutes(r)
	return r
}

// RewardHandler serves the reward pool views.
type RewardHandler struct {
	service *app.QuizService
}

func (h *RewardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/reward", h.GetReward)
		r.Get("/claims/{address}", h.GetClaim)
	})
}

// GetReward returns the payout amount and whether the pool can cover it.
func (h *RewardHandler) GetReward(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.RewardOverview(r.Context())
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, overview)
}

// GetClaim reports whether an address already received the reward.
func (h *RewardHandler) GetClaim(w http.ResponseWriter, r *http.Request) {
	address, claimed, err := h.service.HasClaimed(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		Error(w, statusFor(err), err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]any{"address": address, "claimed": claimed})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
