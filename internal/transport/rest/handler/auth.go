package handler

import (
	"net/http"

	"journeylens/internal/service"
)

// AuthHandler issues tickets for the live insight feed.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// StreamTicket handles POST /ws/ticket
//
//	@Summary	Issue a short-lived WebSocket ticket
//	@Tags		live
//	@Produce	json
//	@Security	BearerAuth
//	@Param		account_id	query		int	false	"Account to follow; omit for all accounts"
//	@Success	201			{object}	model.StreamTicket
//	@Router		/ws/ticket [post]
func (h *AuthHandler) StreamTicket(w http.ResponseWriter, r *http.Request) {
	accountID, ok := queryInt(r, "account_id", 0)
	if !ok || accountID < 0 {
		writeError(w, http.StatusUnprocessableEntity, "account_id must be a positive integer")
		return
	}
	ticket, err := h.authSvc.IssueStreamTicket(int64(accountID))
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}
