package journal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/Subhajitincareer/sahayata-kiran-india/internal/analysis/crisis"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/i18n"
	journalservice "github.com/Subhajitincareer/sahayata-kiran-india/internal/service/journal"
	"github.com/Subhajitincareer/sahayata-kiran-india/internal/store/mood"
)

func setupRouter(t *testing.T) (*chi.Mux, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store, err := mood.NewStore(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	svc := journalservice.NewService(journalservice.Options{
		Classifier: crisis.NewClassifier(crisis.DefaultCorpus()),
		Composer:   i18n.NewComposer(i18n.DefaultTables(), i18n.English),
		Store:      store,
	})
	handler := New(svc, i18n.English)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, db
}

func TestCheckReturnsDetectionAndMessage(t *testing.T) {
	r, _ := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{"text": "everything feels hopeless", "language": "hindi"})
	req := httptest.NewRequest(http.MethodPost, "/journal/check", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Detection crisis.Result  `json:"detection"`
		Actions   crisis.Actions `json:"actions"`
		Message   string         `json:"message"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Detection.Level != crisis.LevelModerate {
		t.Fatalf("level = %s, want moderate", body.Detection.Level)
	}
	if body.Message == "" {
		t.Fatal("expected localized supportive message")
	}
}

func TestSaveAndFetchToday(t *testing.T) {
	r, _ := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{
		"userId":  "user-1",
		"mood":    "okay",
		"journal": "an ordinary day",
	})
	req := httptest.NewRequest(http.MethodPut, "/journal/entry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/journal/entry/today?userId=user-1", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var entry mood.Entry
	if err := json.Unmarshal(resp.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.Mood != "okay" || entry.UserID != "user-1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestSaveMissingMood(t *testing.T) {
	r, _ := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{"userId": "user-1"})
	req := httptest.NewRequest(http.MethodPut, "/journal/entry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSavePersistenceFailureIs500(t *testing.T) {
	r, db := setupRouter(t)

	// Closing the underlying handle makes every subsequent write fail the
	// way a broken database would.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close sql.DB: %v", err)
	}

	payload, _ := json.Marshal(map[string]string{
		"userId":  "user-1",
		"mood":    "okay",
		"journal": "an ordinary day",
	})
	req := httptest.NewRequest(http.MethodPut, "/journal/entry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestTodayMissingEntry(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/journal/entry/today?userId=nobody", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestAlertsListsCrisisEntries(t *testing.T) {
	r, _ := setupRouter(t)

	payload, _ := json.Marshal(map[string]string{
		"userId":  "user-2",
		"mood":    "terrible",
		"journal": "I feel worthless and alone",
	})
	req := httptest.NewRequest(http.MethodPut, "/journal/entry", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("save failed: %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/journal/alerts", nil)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Entries []mood.Entry `json:"entries"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].CrisisLevel != crisis.LevelModerate {
		t.Fatalf("unexpected alerts: %+v", body.Entries)
	}
}
