package handler

import (
	"errors"
	"net/http"

	"journeylens/internal/model"
	"journeylens/internal/service"
)

// FeedbackHandler handles insight feedback.
type FeedbackHandler struct {
	feedbackSvc *service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackSvc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// SubmitFeedbackRequest is the request body for POST /feedback
type SubmitFeedbackRequest struct {
	InsightID  *int64  `json:"insight_id"`
	Rating     *bool   `json:"rating"`
	ReasonCode *string `json:"reason_code"`
	Comments   string  `json:"comments"`
}

// Submit handles POST /feedback
//
//	@Summary	Rate an insight
//	@Tags		feedback
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		SubmitFeedbackRequest	true	"Feedback"
//	@Success	201		{object}	model.Feedback
//	@Failure	400		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Failure	422		{object}	map[string]string
//	@Router		/feedback [post]
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.InsightID == nil || req.Rating == nil || req.ReasonCode == nil {
		writeError(w, http.StatusUnprocessableEntity, "insight_id, rating and reason_code are required")
		return
	}

	feedback, err := h.feedbackSvc.Submit(r.Context(), model.FeedbackCreate{
		InsightID:  *req.InsightID,
		Rating:     *req.Rating,
		ReasonCode: *req.ReasonCode,
		Comments:   req.Comments,
	})
	switch {
	case errors.Is(err, service.ErrInvalidInsight):
		writeError(w, http.StatusBadRequest, "Invalid insight_id")
	case errors.Is(err, service.ErrDuplicateFeedback):
		writeError(w, http.StatusConflict, "Feedback already submitted for this insight")
	case err != nil:
		writeServerError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, feedback)
	}
}
