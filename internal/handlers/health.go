package handlers

import (
	"net/http"

	applog "barcraft/internal/log"
)

// Health reports service liveness and database connectivity.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := map[string]string{"status": "ok"}
	if database == nil {
		status["database"] = "unconfigured"
		writeJSON(w, http.StatusOK, status)
		return
	}

	sqlDB, err := database.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		applog.Warn(r.Context(), "database ping failed", "error", err)
		status["database"] = "unreachable"
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}

	status["database"] = "ok"
	writeJSON(w, http.StatusOK, status)
}
