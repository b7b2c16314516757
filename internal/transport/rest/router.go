package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	_ "journeylens/docs"
	"journeylens/internal/service"
	"journeylens/internal/transport/rest/handler"
	"journeylens/internal/transport/rest/middleware"
	"journeylens/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AppName     string
	APIVersion  string
	CORSOrigins []string
	Logger      *slog.Logger

	AuthService       *service.AuthService
	AccountService    *service.AccountService
	InsightService    *service.InsightService
	DashboardService  *service.DashboardService
	FeedbackService   *service.FeedbackService
	EvaluationService *service.EvaluationService
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	systemHandler := handler.NewSystemHandler(c.AppName, c.APIVersion)
	accountHandler := handler.NewAccountHandler(c.AccountService, c.InsightService)
	dashboardHandler := handler.NewDashboardHandler(c.DashboardService, c.EvaluationService)
	interactionHandler := handler.NewInteractionHandler(c.InsightService)
	feedbackHandler := handler.NewFeedbackHandler(c.FeedbackService)
	authHandler := handler.NewAuthHandler(c.AuthService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.CORSOrigins, c.Logger)

	authMW := middleware.NewAuthMiddleware(c.AuthService)

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(c.Logger))
	r.Use(middleware.CORS(c.CORSOrigins))

	// Public routes
	r.HandleFunc("/", systemHandler.Root).Methods("GET")
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.HandleFunc("/swagger/doc.json", systemHandler.SwaggerDoc).Methods("GET")

	// WebSocket route (ticket or token in query param)
	r.HandleFunc("/ws/insights", wsHandler.Insights).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(authMW.RequireToken)

	api.HandleFunc("/accounts", accountHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/accounts/{accountId:[0-9]+}", accountHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/accounts/{accountId:[0-9]+}/rag", accountHandler.Ask).Methods("GET", "OPTIONS")
	api.HandleFunc("/dashboard/csm", dashboardHandler.CSM).Methods("GET", "OPTIONS")
	api.HandleFunc("/dashboard/risk-board", dashboardHandler.RiskBoard).Methods("GET", "OPTIONS")
	api.HandleFunc("/evaluations/metrics", dashboardHandler.Metrics).Methods("GET", "OPTIONS")
	api.HandleFunc("/interactions", interactionHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/insights/recent", interactionHandler.Recent).Methods("GET", "OPTIONS")
	api.HandleFunc("/feedback", feedbackHandler.Submit).Methods("POST", "OPTIONS")
	api.HandleFunc("/ws/ticket", authHandler.StreamTicket).Methods("POST", "OPTIONS")

	return r
}
