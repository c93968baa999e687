package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"barcraft/internal/engine"
	applog "barcraft/internal/log"
)

var (
	sessionManager *scs.SessionManager
	database       *gorm.DB

	engineMu       sync.Mutex
	engineSessions map[string]*engine.Session
)

// Configure installs the shared dependencies used by the HTTP handlers.
func Configure(sm *scs.SessionManager, db *gorm.DB) {
	sessionManager = sm
	database = db
	engineMu.Lock()
	engineSessions = make(map[string]*engine.Session)
	engineMu.Unlock()
}

// engineSession returns the engine caches bound to the current web session,
// building them from a fresh catalog snapshot on first use. Requests without
// a session token share one anonymous session.
func engineSession(r *http.Request) (*engine.Session, error) {
	token := ""
	if sessionManager != nil {
		token = sessionManager.Token(r.Context())
	}

	engineMu.Lock()
	defer engineMu.Unlock()

	if session, ok := engineSessions[token]; ok {
		return session, nil
	}

	entries, err := loadCatalogEntries(r.Context())
	if err != nil {
		return nil, err
	}
	session := engine.NewSession(entries, &catalogStore{})
	engineSessions[token] = session
	return session, nil
}

// refreshEngineSessions discards every session cache. Handlers call this
// after a write that changes the catalog underneath the caches.
func refreshEngineSessions(ctx context.Context) {
	engineMu.Lock()
	defer engineMu.Unlock()
	if len(engineSessions) == 0 {
		return
	}
	applog.Debug(ctx, "discarding engine session caches", "sessions", len(engineSessions))
	engineSessions = make(map[string]*engine.Session)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		applog.Error(context.Background(), "failed to encode json response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
