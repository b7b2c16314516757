package handler

import (
	"errors"
	"net/http"
	"time"

	"journeylens/internal/model"
	"journeylens/internal/service"
)

// InteractionHandler handles interaction ingestion and insight listing.
type InteractionHandler struct {
	insightSvc *service.InsightService
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(insightSvc *service.InsightService) *InteractionHandler {
	return &InteractionHandler{insightSvc: insightSvc}
}

// CreateInteractionRequest is the request body for POST /interactions
type CreateInteractionRequest struct {
	AccountID *int64     `json:"account_id"`
	ContactID *int64     `json:"contact_id"`
	Channel   string     `json:"channel"`
	Content   *string    `json:"content"`
	Timestamp *time.Time `json:"timestamp"`
}

// Create handles POST /interactions
//
//	@Summary	Ingest an interaction and analyze it
//	@Tags		interactions
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		CreateInteractionRequest	true	"Interaction"
//	@Success	201		{object}	model.Insight
//	@Failure	400		{object}	map[string]string
//	@Failure	422		{object}	map[string]string
//	@Router		/interactions [post]
func (h *InteractionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.AccountID == nil {
		writeError(w, http.StatusUnprocessableEntity, "account_id is required")
		return
	}
	if req.Content == nil {
		writeError(w, http.StatusUnprocessableEntity, "content is required")
		return
	}

	created, err := h.insightSvc.CreateInteraction(r.Context(), model.InteractionCreate{
		AccountID: *req.AccountID,
		ContactID: req.ContactID,
		Channel:   req.Channel,
		Content:   *req.Content,
		Timestamp: req.Timestamp,
	})
	switch {
	case errors.Is(err, service.ErrEmptyContent):
		writeError(w, http.StatusUnprocessableEntity, "content must not be empty")
	case errors.Is(err, service.ErrInvalidAccount):
		writeError(w, http.StatusBadRequest, "Invalid account_id")
	case err != nil:
		writeServerError(w, r, err)
	default:
		writeJSON(w, http.StatusCreated, created)
	}
}

// Recent handles GET /insights/recent
//
//	@Summary	Newest insights
//	@Tags		insights
//	@Produce	json
//	@Security	BearerAuth
//	@Param		limit	query	int	false	"Rows to return (1-50)"	default(10)
//	@Success	200		{array}	model.Insight
//	@Router		/insights/recent [get]
func (h *InteractionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", service.DefaultRecentLimit)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
		return
	}
	insights, err := h.insightSvc.Recent(r.Context(), limit)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}
