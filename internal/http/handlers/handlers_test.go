package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/masterok/backend/internal/conversation"
	"github.com/masterok/backend/internal/db"
	"github.com/masterok/backend/internal/knowledge"
	"github.com/masterok/backend/internal/pricing"
	"github.com/masterok/backend/internal/service"
	"github.com/masterok/backend/internal/vision"
)

func newTestRouter(t *testing.T) (*gin.Engine, *db.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	logger := zerolog.Nop()
	kb := knowledge.NewBase()
	matcher := service.NewMatcher(store, store, 5, logger)
	orchestrator := service.NewOrchestrator(
		conversation.NewEngine(logger),
		kb,
		pricing.NewEngine(500, 50000, 0.25, logger),
		matcher,
		vision.NewRuleAnalyzer(),
		vision.NullTranscriber{},
		store,
		nil,
		logger,
	)
	h := &Handler{
		Orchestrator: orchestrator,
		Terminal:     service.NewTerminal(store, matcher, logger),
		Knowledge:    kb,
		Store:        store,
		Validator:    validator.New(),
		Logger:       logger,
	}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.POST("/api/ai/messages", h.ProcessMessage)
	r.POST("/api/ai/web-form", h.WebForm)
	r.GET("/api/ai/conversations/active", h.ActiveConversations)
	r.GET("/api/ai/conversations/:client_id", h.ConversationStatus)
	r.GET("/api/knowledge/solutions", h.Solutions)
	r.GET("/api/knowledge/solutions/:problem_id", h.SolutionByID)
	r.POST("/api/masters/register", h.RegisterMaster)
	r.POST("/api/terminal/payment/process", h.ProcessPayment)
	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, w.Body.String())
	}
	return out.Error.Code
}

func TestHealthz(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decode(t, w)["status"] != "ok" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestProcessMessageEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/ai/messages", map[string]any{
		"client_id": "c1",
		"message":   "Не работает розетка на кухне",
		"channel":   "telegram",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["intent"] != "describe_problem" {
		t.Fatalf("unexpected intent %v", body["intent"])
	}
	if body["ai_response"] == "" {
		t.Fatal("expected a reply")
	}
}

func TestProcessMessageValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/ai/messages", map[string]any{
		"message": "без клиента",
		"channel": "telegram",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "INVALID_REQUEST" {
		t.Fatalf("expected INVALID_REQUEST, got %s", code)
	}
}

func TestWebFormEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/ai/web-form", map[string]any{
		"name":                "Анна",
		"phone":               "+79160000000",
		"email":               "anna@example.com",
		"category":            "plumbing",
		"problem_description": "Течет кран на кухне",
		"address":             "ул. Мира 3",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// The synthetic message fills all the slots at once.
	status := doJSON(t, r, http.MethodGet, "/api/ai/conversations/web_anna@example.com", nil)
	if status.Code != http.StatusOK {
		t.Fatalf("expected conversation to exist, got %d", status.Code)
	}
}

func TestConversationStatusNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/ai/conversations/nobody", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestSolutionsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/knowledge/solutions?category=plumbing", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["total"] != float64(3) {
		t.Fatalf("expected 3 plumbing solutions, got %v", body["total"])
	}

	w = doJSON(t, r, http.MethodGet, "/api/knowledge/solutions/plumb_faucet_leak", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/knowledge/solutions/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRegisterMasterEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	payload := map[string]any{
		"full_name":       "Иван Петров",
		"phone":           "+79160000001",
		"city":            "Москва",
		"specializations": []string{"electrical"},
	}

	w := doJSON(t, r, http.MethodPost, "/api/masters/register", payload)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["success"] != true || body["master_id"] == "" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
	if body["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", body["status"])
	}

	// Same phone again.
	w = doJSON(t, r, http.MethodPost, "/api/masters/register", payload)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate phone, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "PHONE_REGISTERED" {
		t.Fatalf("expected PHONE_REGISTERED, got %s", code)
	}
}

func TestRegisterMasterValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/masters/register", map[string]any{
		"full_name": "Иван",
		"phone":     "+79160000002",
		"city":      "Москва",
		// no specializations
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcessPaymentValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/terminal/payment/process", map[string]any{
		"job_id":         "j1",
		"payment_method": "crypto",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported method, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/terminal/payment/process", map[string]any{
		"job_id":         "missing",
		"payment_method": "cash",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown job, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestActiveConversationsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	doJSON(t, r, http.MethodPost, "/api/ai/messages", map[string]any{
		"client_id": "c1",
		"message":   "не работает свет",
		"channel":   "telegram",
	})
	w := doJSON(t, r, http.MethodGet, "/api/ai/conversations/active", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if decode(t, w)["active_conversations"] != float64(1) {
		t.Fatalf("expected 1 active conversation, got %s", w.Body.String())
	}
}
