package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"barcraft/internal/db/mock"
	"barcraft/internal/engine"
	"barcraft/models"
)

var testDBCounter atomic.Int64

func withTestSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	original := sessionManager
	sm := scs.New()
	sessionManager = sm
	t.Cleanup(func() { sessionManager = original })
	return sm
}

func withSeededDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := mock.New(context.Background())
	if err != nil {
		t.Fatalf("open seeded database: %v", err)
	}
	installTestDatabase(t, db)
	return db
}

func withEmptyDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("handlers-test-%d", testDBCounter.Add(1))
	db, err := mock.Empty(context.Background(), name)
	if err != nil {
		t.Fatalf("open empty database: %v", err)
	}
	installTestDatabase(t, db)
	return db
}

func installTestDatabase(t *testing.T, db *gorm.DB) {
	t.Helper()
	prevDB := database
	database = db
	engineMu.Lock()
	prevSessions := engineSessions
	engineSessions = make(map[string]*engine.Session)
	engineMu.Unlock()
	t.Cleanup(func() {
		database = prevDB
		engineMu.Lock()
		engineSessions = prevSessions
		engineMu.Unlock()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

// signedInRequest attaches a loaded session context to the request and signs
// the given user in on it.
func signedInRequest(t *testing.T, sm *scs.SessionManager, r *http.Request, user *models.User) *http.Request {
	t.Helper()
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("load session context: %v", err)
	}
	r = r.WithContext(ctx)
	if err := establishSession(r, user); err != nil {
		t.Fatalf("establish session: %v", err)
	}
	return r
}

func seededManager(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, "email = ?", "noa@barcraft.app").Error; err != nil {
		t.Fatalf("load seeded manager: %v", err)
	}
	return &user
}
