package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journeylens/internal/cache"
	"journeylens/internal/insight"
	"journeylens/internal/model"
	"journeylens/internal/repository"
	"journeylens/internal/service"
	"journeylens/internal/transport/ws"
)

const testToken = "test-token"

type testEnv struct {
	handler  http.Handler
	store    *repository.Store
	insights *service.InsightService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemoryStore()
	engine := insight.NewEngine(nil, nil)
	dashboardCache := cache.NewNopDashboardCache()
	hub := ws.NewHub(logger)
	t.Cleanup(hub.Close)

	insights := service.NewInsightService(store.Accounts, store.Interactions, store.Insights, engine, dashboardCache, logger)
	insights.SetBroadcaster(hub)

	ctx := context.Background()
	for _, a := range []*model.Account{
		{ID: 1, Name: "Acme", Industry: "Manufacturing", Status: model.AccountStatusActive},
		{ID: 2, Name: "Beta", Industry: "Retail", Status: model.AccountStatusActive},
	} {
		require.NoError(t, store.Accounts.Create(ctx, a))
	}

	h := NewRouter(&Container{
		AppName:           "JourneyLens API",
		APIVersion:        "1.0.0",
		CORSOrigins:       []string{"http://localhost:3000"},
		Logger:            logger,
		AuthService:       service.NewAuthService(testToken),
		AccountService:    service.NewAccountService(store.Accounts, store.Interactions, store.Insights),
		InsightService:    insights,
		DashboardService:  service.NewDashboardService(store.Accounts, store.Interactions, store.Insights, engine, dashboardCache, cache.NewNopRiskBoardCache(), logger),
		FeedbackService:   service.NewFeedbackService(store.Insights, store.Feedback, dashboardCache, logger),
		EvaluationService: service.NewEvaluationService(store.Interactions, store.Insights, store.Feedback, store.EvalSamples, engine, dashboardCache, logger),
		WSHub:             hub,
	})
	return &testEnv{handler: h, store: store, insights: insights}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) interact(t *testing.T, accountID int64, content string) *model.Insight {
	t.Helper()
	ts := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	created, err := e.insights.CreateInteraction(context.Background(), model.InteractionCreate{
		AccountID: accountID, Content: content, Timestamp: &ts,
	})
	require.NoError(t, err)
	return created
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[map[string]string](t, rec)["error"]
}

func TestPublicRoutes(t *testing.T) {
	e := newTestEnv(t)

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"message": "JourneyLens API", "version": "1.0.0"}, decode[map[string]string](t, rec))

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "1.0.0", health["version"])
	assert.NotEmpty(t, health["timestamp"])

	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Contains(t, doc["paths"], "/interactions")
}

func TestAuth(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		header string
		status int
		errMsg string
	}{
		{"missing", "", http.StatusUnauthorized, "Missing authorization token"},
		{"wrong scheme", "Basic " + testToken, http.StatusUnauthorized, "Missing authorization token"},
		{"wrong token", "Bearer nope", http.StatusUnauthorized, "Invalid authorization token"},
		{"valid", "Bearer " + testToken, http.StatusOK, ""},
		{"case insensitive scheme", "bearer " + testToken, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, errorMessage(t, rec))
			}
		})
	}
}

func TestAccounts(t *testing.T) {
	e := newTestEnv(t)
	e.interact(t, 1, "We want to cancel our plan.")

	rec := e.do(t, http.MethodGet, "/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decode[[]model.Account](t, rec)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Acme", accounts[0].Name)

	rec = e.do(t, http.MethodGet, "/accounts/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[model.AccountWithInsights](t, rec)
	assert.Equal(t, "Acme", detail.Name)
	require.Len(t, detail.Interactions, 1)
	require.NotNil(t, detail.Interactions[0].Insight)
	assert.Equal(t, insight.IntentChurnRisk, detail.Interactions[0].Insight.Intent)

	rec = e.do(t, http.MethodGet, "/accounts/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Account not found", errorMessage(t, rec))
}

func TestRag(t *testing.T) {
	e := newTestEnv(t)
	e.interact(t, 1, "We want to cancel our plan.")

	rec := e.do(t, http.MethodGet, "/accounts/1/rag?query=cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[model.RagResponse](t, rec)
	assert.Equal(t, "cancel", resp.Query)
	assert.Contains(t, resp.Answer, "Schedule immediate retention call")
	assert.Len(t, resp.SupportingInsights, 1)

	rec = e.do(t, http.MethodGet, "/accounts/1/rag?query=", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/accounts/1/rag", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodGet, "/accounts/99/rag?query=x", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateInteraction(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		body   string
		status int
		errMsg string
	}{
		{"created", `{"account_id":1,"channel":"chat","content":"Need help with an urgent bug"}`, http.StatusCreated, ""},
		{"unknown account", `{"account_id":99,"content":"hello"}`, http.StatusBadRequest, "Invalid account_id"},
		{"blank content", `{"account_id":1,"content":"   "}`, http.StatusCreated, ""},
		{"empty content", `{"account_id":1,"content":""}`, http.StatusUnprocessableEntity, ""},
		{"missing content", `{"account_id":1}`, http.StatusUnprocessableEntity, ""},
		{"missing account", `{"content":"hello"}`, http.StatusUnprocessableEntity, ""},
		{"invalid json", `{"account_id":`, http.StatusUnprocessableEntity, ""},
		{"wrong type", `{"account_id":"one","content":"hello"}`, http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/interactions", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.errMsg != "" {
				assert.Equal(t, tt.errMsg, errorMessage(t, rec))
			}
		})
	}

	n, err := e.store.Interactions.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestCreateInteraction_ReturnsInsight(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/interactions",
		`{"account_id":2,"content":"We want to cancel, the team is frustrated.","timestamp":"2025-05-01T10:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[model.Insight](t, rec)
	assert.Positive(t, created.ID)
	assert.Equal(t, insight.IntentChurnRisk, created.Intent)
	assert.Equal(t, insight.SentimentNegative, created.Sentiment)
	assert.Equal(t, 0.95, created.RiskScore)

	interaction, err := e.store.Interactions.GetByID(context.Background(), created.InteractionID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultChannel, interaction.Channel)
	assert.True(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC).Equal(interaction.Timestamp))
}

func TestFeedback(t *testing.T) {
	e := newTestEnv(t)
	created := e.interact(t, 1, "Need help please")
	body := func(id int64) string {
		return `{"insight_id":` + strconv.FormatInt(id, 10) + `,"rating":true,"reason_code":"accurate","comments":"thanks"}`
	}

	rec := e.do(t, http.MethodPost, "/feedback", body(created.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fb := decode[model.Feedback](t, rec)
	assert.Equal(t, model.DemoUserID, fb.UserID)
	assert.True(t, fb.Rating)

	rec = e.do(t, http.MethodPost, "/feedback", body(created.ID))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodPost, "/feedback", body(999))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid insight_id", errorMessage(t, rec))

	rec = e.do(t, http.MethodPost, "/feedback", `{"insight_id":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDashboards(t *testing.T) {
	e := newTestEnv(t)
	e.interact(t, 1, "We want to cancel our plan.")
	e.interact(t, 2, "Need help with a question.")

	rec := e.do(t, http.MethodGet, "/dashboard/csm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]model.DashboardAccount](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].AccountName)

	rec = e.do(t, http.MethodGet, "/dashboard/risk-board", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.RiskEntry](t, rec), 2)

	rec = e.do(t, http.MethodGet, "/dashboard/risk-board?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[[]model.RiskEntry](t, rec)
	require.Len(t, board, 1)
	assert.Equal(t, 1, board[0].Rank)

	rec = e.do(t, http.MethodGet, "/dashboard/risk-board?limit=abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = e.do(t, http.MethodGet, "/evaluations/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	metrics := decode[model.EvaluationMetrics](t, rec)
	assert.Equal(t, int64(2), metrics.TotalInsights)
	assert.Equal(t, 100.0, metrics.AICoverage)
}

func TestRecentInsights(t *testing.T) {
	e := newTestEnv(t)
	for range 3 {
		e.interact(t, 1, "Need help please")
	}

	rec := e.do(t, http.MethodGet, "/insights/recent", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Insight](t, rec), 3)

	rec = e.do(t, http.MethodGet, "/insights/recent?limit=-4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Insight](t, rec), 1)
}

func TestStreamTicket(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/ws/ticket?account_id=1", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	ticket := decode[model.StreamTicket](t, rec)
	assert.NotEmpty(t, ticket.Ticket)
	assert.Equal(t, int64(1), ticket.AccountID)

	rec = e.do(t, http.MethodPost, "/ws/ticket?account_id=x", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequestID(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/health", "")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	e := newTestEnv(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/accounts", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		e.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	rec = preflight("http://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	// A bare OPTIONS is not a preflight and still needs a token.
	rec = httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/accounts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
