package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/repositories"
	"facility-maintenance/microservices/statistics-service/services"
)

type StatisticsHandler struct {
	service services.Statistics
	now     func() time.Time
}

func NewStatisticsHandler(service services.Statistics) *StatisticsHandler {
	return &StatisticsHandler{service: service, now: time.Now}
}

type errorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RegisterRoutes mounts the statistics endpoints on r.
func (h *StatisticsHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/statistics", h.GetDashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/statistics/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/statistics/user", h.GetUserStatistic).Methods(http.MethodGet)
}

// window validates the date and department of a request and computes its
// window. currentDate defaults to today (UTC).
func (h *StatisticsHandler) window(r *http.Request) (services.Window, error) {
	query := r.URL.Query()
	departmentID := strings.TrimSpace(query.Get("selectedDepartment"))

	var w services.Window
	if date := strings.TrimSpace(query.Get("currentDate")); date != "" {
		parsed, err := services.NewWindowFromString(departmentID, date)
		if err != nil {
			return services.Window{}, err
		}
		w = parsed
	} else {
		w = services.NewWindow(departmentID, h.now())
	}

	if err := h.service.ValidateDepartment(r.Context(), departmentID); err != nil {
		return services.Window{}, err
	}
	return w, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, services.NewInvalidLimitError(raw)
	}
	return limit, nil
}

func (h *StatisticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	window, err := h.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.service.Dashboard(r.Context(), window, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *StatisticsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	window, err := h.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), window)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetUserStatistic answers with an empty object when the user has no task in
// the window.
func (h *StatisticsHandler) GetUserStatistic(w http.ResponseWriter, r *http.Request) {
	window, err := h.window(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if err := h.service.ValidateUser(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.service.UserStatistic(r.Context(), window, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entry == nil {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": logging.SystemName})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_ENCODE_FAILED, Description: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, ok := services.KindOf(err)
	if !ok {
		logging.Logger.Errorf("Event ID: UNCLASSIFIED_ERROR, Description: %s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Kind: "Internal", Message: "internal server error"})
		return
	}

	status := services.HTTPStatus(kind)
	if repositories.IsBreakerOpen(err) {
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logging.Logger.Errorf("Event ID: STATISTICS_FAILED, Description: %s %s: %v", r.Method, r.URL.Path, err)
		var se *services.StatisticsError
		if errors.As(err, &se) {
			message = se.Message
		}
	} else {
		logging.Logger.Infof("Event ID: STATISTICS_REJECTED, Description: %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Kind: string(kind), Message: message})
}
