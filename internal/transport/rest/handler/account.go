package handler

import (
	"errors"
	"net/http"

	"journeylens/internal/service"
)

// AccountHandler handles account endpoints
type AccountHandler struct {
	accountSvc *service.AccountService
	insightSvc *service.InsightService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountSvc *service.AccountService, insightSvc *service.InsightService) *AccountHandler {
	return &AccountHandler{
		accountSvc: accountSvc,
		insightSvc: insightSvc,
	}
}

// List handles GET /accounts
//
//	@Summary	List accounts by name
//	@Tags		accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		model.Account
//	@Failure	401	{object}	map[string]string
//	@Router		/accounts [get]
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountSvc.List(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

// Get handles GET /accounts/{accountId}
//
//	@Summary	Account timeline with insights
//	@Tags		accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		accountId	path		int	true	"Account ID"
//	@Success	200			{object}	model.AccountWithInsights
//	@Failure	404			{object}	map[string]string
//	@Router		/accounts/{accountId} [get]
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "accountId")
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "Invalid account id")
		return
	}

	account, err := h.accountSvc.Get(r.Context(), id)
	if errors.Is(err, service.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

// Ask handles GET /accounts/{accountId}/rag
//
//	@Summary	Answer a question from the account's insights
//	@Tags		accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Param		accountId	path		int		true	"Account ID"
//	@Param		query		query		string	true	"Question"
//	@Success	200			{object}	model.RagResponse
//	@Failure	404			{object}	map[string]string
//	@Failure	422			{object}	map[string]string
//	@Router		/accounts/{accountId}/rag [get]
func (h *AccountHandler) Ask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "accountId")
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "Invalid account id")
		return
	}
	values := r.URL.Query()
	if !values.Has("query") {
		writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}

	resp, err := h.insightSvc.Ask(r.Context(), id, values.Get("query"))
	if errors.Is(err, service.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
