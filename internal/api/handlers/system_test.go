package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/testutil"
)

func TestSystemHandler_Health(t *testing.T) {
	setupHandler := func(t *testing.T) (*SystemHandler, *database.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		ss := testutil.NewTestSystemService(t, db)
		return NewSystemHandler(ss), db
	}

	t.Run("returns healthy status when database is connected", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[HealthResponse](t, w)

		if response.Status != "healthy" {
			t.Errorf("Expected status 'healthy', got '%s'", response.Status)
		}
		if response.Database != "connected" {
			t.Errorf("Expected database 'connected', got '%s'", response.Database)
		}
		if response.Error != "" {
			t.Errorf("Expected no error, got '%s'", response.Error)
		}
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		handler, db := setupHandler(t)

		// Close the database connection to simulate failure
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[HealthResponse](t, w)
		if response.Database != "disconnected" || response.Error == "" {
			t.Errorf("Expected disconnected with an error, got %+v", response)
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	t.Run("returns version information successfully", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(testutil.NewTestSystemService(t, db))

		req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
		w := httptest.NewRecorder()

		handler.Version(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.VersionInfo](t, w)

		if response.AppVersion == "" {
			t.Error("Expected appVersion to be populated")
		}
		if response.DbVersion == 0 {
			t.Error("Expected dbVersion to be populated")
		}
		if response.MigrationNeeded {
			t.Error("Expected no pending migration")
		}
	})

	t.Run("returns 500 when the schema cannot be read", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewSystemHandler(testutil.NewTestSystemService(t, db))
		db.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
		w := httptest.NewRecorder()

		handler.Version(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}
