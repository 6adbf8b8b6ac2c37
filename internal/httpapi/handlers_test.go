package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"support-assistant/internal/audit"
	"support-assistant/internal/compose"
	"support-assistant/internal/config"
	"support-assistant/internal/enrich"
	"support-assistant/internal/genai"
	"support-assistant/internal/loyalty"
	"support-assistant/internal/order"

	"github.com/gin-gonic/gin"
)

type fakeOrders struct {
	configured bool
	summary    order.Summary
	err        error
	calls      int
}

func (f *fakeOrders) Configured() bool { return f.configured }

func (f *fakeOrders) GetSummary(ctx context.Context, orderID string) (order.Summary, error) {
	f.calls++
	return f.summary, f.err
}

type fakeLoyalty struct {
	configured bool
	customer   loyalty.Customer
	customerOK bool
	txns       []loyalty.Transaction
	txnOK      bool
	err        error
	calls      int
}

func (f *fakeLoyalty) Configured() bool { return f.configured }

func (f *fakeLoyalty) GetCustomer(ctx context.Context, mobile string) (loyalty.Customer, bool, error) {
	f.calls++
	return f.customer, f.customerOK, f.err
}

func (f *fakeLoyalty) GetTransactions(ctx context.Context, mobile string) ([]loyalty.Transaction, bool, error) {
	f.calls++
	return f.txns, f.txnOK, f.err
}

// fakeGemini counts generation calls and always answers with one candidate.
func fakeGemini(t *testing.T) (*genai.Client, *int) {
	t.Helper()
	calls := new(int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"generated answer"}]}}]}`))
	}))
	t.Cleanup(srv.Close)

	client := genai.NewClient(config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-pro",
		BaseURL: srv.URL,
		Timeout: 2 * time.Second,
	}, nil, nil)
	return client, calls
}

func newTestHandlers(t *testing.T, orders *fakeOrders, ly *fakeLoyalty) (Handlers, *int) {
	t.Helper()
	gen, genCalls := fakeGemini(t)
	gateway := enrich.NewGateway(orders, ly, nil)
	h := Handlers{
		Gen:      gen,
		Gateway:  gateway,
		Composer: compose.New(gen, config.SupportConfig{NotFoundStatus: http.StatusOK}, nil),
		Audit:    audit.NewService(audit.NewMemoryRepo()),
	}
	return h, genCalls
}

func serve(t *testing.T, h Handlers, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", h.Home)
	r.POST("/calculate", h.Calculate)
	r.POST("/text", h.Text)
	r.POST("/support", h.Support)

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return out
}

func TestHome(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})
	w := serve(t, h, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Welcome to this API Service!" {
		t.Fatalf("message = %v", body["message"])
	}
}

func TestCalculate(t *testing.T) {
	h, genCalls := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})
	w := serve(t, h, http.MethodPost, "/calculate", `{"expression":"2+2"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["result"] != "generated answer" {
		t.Fatalf("result = %v", body["result"])
	}
	if *genCalls != 1 {
		t.Fatalf("generation calls = %d, want 1", *genCalls)
	}
}

func TestCalculateMissingExpression(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})
	w := serve(t, h, http.MethodPost, "/calculate", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTextMissingText(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})
	w := serve(t, h, http.MethodPost, "/text", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "No text provided" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestTextUnconfiguredKey(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})
	h.Gen = genai.NewClient(config.GeminiConfig{}, nil, nil)
	w := serve(t, h, http.MethodPost, "/text", `{"text":"hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "API key not configured" {
		t.Fatalf("error = %v", body["error"])
	}
}

func TestSupportMissingText(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})
	w := serve(t, h, http.MethodPost, "/support", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSupportGreetingSkipsProviders(t *testing.T) {
	orders := &fakeOrders{configured: true}
	ly := &fakeLoyalty{configured: true}
	h, genCalls := newTestHandlers(t, orders, ly)

	w := serve(t, h, http.MethodPost, "/support", `{"text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "I can help you with") {
		t.Fatalf("message = %q, want capability menu", msg)
	}
	if orders.calls != 0 || ly.calls != 0 || *genCalls != 0 {
		t.Fatalf("providers called on greeting: orders=%d loyalty=%d gen=%d", orders.calls, ly.calls, *genCalls)
	}
}

func TestSupportCancellationReason(t *testing.T) {
	reason := "Customer requested"
	orders := &fakeOrders{
		configured: true,
		summary: order.Summary{
			Code:               200,
			Message:            "Data found.",
			CancellationReason: &reason,
			Raw:                json.RawMessage(`{"code":200,"message":"Data found."}`),
		},
	}
	h, genCalls := newTestHandlers(t, orders, &fakeLoyalty{})

	w := serve(t, h, http.MethodPost, "/support", `{"text":"What is my cancellation reason for order 1234567?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["cancellationReason"] != "Customer requested" {
		t.Fatalf("cancellationReason = %v", body["cancellationReason"])
	}
	if body["orderId"] != "1234567" {
		t.Fatalf("orderId = %v", body["orderId"])
	}
	if *genCalls != 0 {
		t.Fatalf("generation calls = %d, want 0", *genCalls)
	}
}

func TestSupportOrderSummaryReturnsRawPayload(t *testing.T) {
	raw := `{"code":200,"message":"Data found.","orderItemDetails":[{"name":"Paracetamol"}]}`
	orders := &fakeOrders{
		configured: true,
		summary: order.Summary{
			Code:    200,
			Message: "Data found.",
			Raw:     json.RawMessage(raw),
		},
	}
	h, _ := newTestHandlers(t, orders, &fakeLoyalty{})

	w := serve(t, h, http.MethodPost, "/support", `{"text":"give me a summary for order 9876501"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Data found." {
		t.Fatalf("payload not verbatim: %v", w.Body.String())
	}
	items, ok := body["orderItemDetails"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("orderItemDetails missing from raw payload: %v", w.Body.String())
	}
}

func TestSupportCreditsBalanceNotFound(t *testing.T) {
	ly := &fakeLoyalty{configured: true, customerOK: false, txnOK: false}
	h, genCalls := newTestHandlers(t, &fakeOrders{}, ly)

	w := serve(t, h, http.MethodPost, "/support", `{"text":"balance for 9876543210"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "couldn't find details for mobile number 9876543210") {
		t.Fatalf("message = %q", msg)
	}
	if *genCalls != 0 {
		t.Fatalf("generation calls = %d, want 0", *genCalls)
	}
}

func TestSupportCreditsBalanceFound(t *testing.T) {
	ly := &fakeLoyalty{
		configured: true,
		customer:   loyalty.Customer{Name: "Asha", Tier: "Gold", AvailableCredits: 120.5},
		customerOK: true,
		txnOK:      true,
	}
	h, genCalls := newTestHandlers(t, &fakeOrders{}, ly)

	w := serve(t, h, http.MethodPost, "/support", `{"text":"what is my credits balance","mobile_number":"09876543210"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	msg, _ := body["message"].(string)
	if !strings.Contains(msg, "120.5") {
		t.Fatalf("message = %q, want credits balance", msg)
	}
	if *genCalls != 0 {
		t.Fatalf("generation calls = %d, want 0", *genCalls)
	}
}

func TestSupportGeneralFallsBackToGeneration(t *testing.T) {
	h, genCalls := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})

	w := serve(t, h, http.MethodPost, "/support", `{"text":"can you help me reset my password"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := decodeBody(t, w)
	if body["result"] != "generated answer" {
		t.Fatalf("result = %v", body["result"])
	}
	if *genCalls != 1 {
		t.Fatalf("generation calls = %d, want 1", *genCalls)
	}
}

func TestSupportOrderProviderNotConfigured(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{configured: false}, &fakeLoyalty{})

	w := serve(t, h, http.MethodPost, "/support", `{"text":"summary for order 1234567"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := decodeBody(t, w)
	errMsg, _ := body["error"].(string)
	if !strings.Contains(errMsg, "not properly configured") {
		t.Fatalf("error = %q", errMsg)
	}
}

func TestSupportProviderErrorShortCircuits(t *testing.T) {
	orders := &fakeOrders{configured: true, err: context.DeadlineExceeded}
	h, genCalls := newTestHandlers(t, orders, &fakeLoyalty{})

	w := serve(t, h, http.MethodPost, "/support", `{"text":"summary for order 1234567"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if *genCalls != 0 {
		t.Fatalf("generation calls = %d, want 0", *genCalls)
	}
}

func TestSupportAuditTrail(t *testing.T) {
	h, _ := newTestHandlers(t, &fakeOrders{}, &fakeLoyalty{})

	w := serve(t, h, http.MethodPost, "/support", `{"text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	events, err := h.Audit.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if events[0].Intent != "greeting" {
		t.Fatalf("intent = %q", events[0].Intent)
	}
}
