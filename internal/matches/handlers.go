package matches

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Samuelsenhet/m-k-sub001/internal/auth"
	"github.com/Samuelsenhet/m-k-sub001/internal/common/utils"
)

type Handler struct {
	service   Service
	job       *PoolJob
	batchSize int
}

func NewHandler(service Service, job *PoolJob, batchSize int) *Handler {
	return &Handler{
		service:   service,
		job:       job,
		batchSize: batchSize,
	}
}

// DeliverDaily handles POST /matches/daily.
func (h *Handler) DeliverDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.service.DeliverDaily(r.Context(), userID)
	if err != nil {
		h.respondDeliveryError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetDaily handles GET /matches/daily.
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	resp, err := h.service.GetDaily(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get daily matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GetStatus handles GET /matches/status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status, err := h.service.Status(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get match status")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, status)
}

// GeneratePools handles POST /admin/pools/generate. Admin only.
func (h *Handler) GeneratePools(w http.ResponseWriter, r *http.Request) {
	req := GeneratePoolsRequest{BatchSize: h.batchSize}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = h.batchSize
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.job.Run(r.Context(), req.BatchSize)
	if err != nil {
		if errors.Is(err, ErrPoolJobRunning) {
			utils.RespondWithError(w, http.StatusConflict, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Pool generation failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, report)
}

// respondDeliveryError maps delivery service errors to HTTP semantics. The
// waiting state is a 202 carrying the countdown, not a failure.
func (h *Handler) respondDeliveryError(w http.ResponseWriter, err error) {
	var waiting *WaitingError
	switch {
	case errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrOnboardingIncomplete):
		utils.RespondWithError(w, http.StatusForbidden, "Complete onboarding to receive daily matches")
	case errors.As(err, &waiting):
		utils.RespondWithJSON(w, http.StatusAccepted, map[string]interface{}{
			"journey_phase":        PhaseWaiting,
			"message":              "Dina första matchningar är snart redo!",
			"time_remaining":       formatRemaining(waiting.Remaining),
			"next_match_available": waiting.NextAvailable,
		})
	case errors.Is(err, ErrDeliveryInProgress):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to deliver daily matches")
	}
}
