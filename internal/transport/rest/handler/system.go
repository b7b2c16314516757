package handler

import (
	"net/http"
	"time"

	"github.com/swaggo/swag"
)

// SystemHandler serves the unauthenticated landing, health and API doc routes.
type SystemHandler struct {
	appName string
	version string
	now     func() time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(appName, version string) *SystemHandler {
	return &SystemHandler{
		appName: appName,
		version: version,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Root handles GET /
//
//	@Summary	Landing information
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/ [get]
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": h.appName,
		"version": h.version,
	})
}

// Health handles GET /health
//
//	@Summary	Health check
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	map[string]any
//	@Router		/health [get]
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.now(),
		"version":   h.version,
	})
}

// SwaggerDoc handles GET /swagger/doc.json
func (h *SystemHandler) SwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(doc))
}
