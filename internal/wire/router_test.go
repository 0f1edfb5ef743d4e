package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"entertainer-booking/internal/adaptor"
	"entertainer-booking/internal/data/entity"
	"entertainer-booking/internal/data/memory"
	"entertainer-booking/internal/storage"
	"entertainer-booking/internal/usecase"
	"entertainer-booking/pkg/middleware"
	"entertainer-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

const testSecret = "router-secret"

type stubReceipts struct{}

func (stubReceipts) PresignUpload(ctx context.Context, bookingID uuid.UUID, contentType string) (*storage.Upload, error) {
	key, err := storage.ReceiptKey(bookingID, contentType)
	if err != nil {
		return nil, err
	}
	return &storage.Upload{Ref: "s3://receipts/" + key, URL: "https://uploads.test/" + key, Method: http.MethodPut}, nil
}

type envelope struct {
	Status  bool            `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type harness struct {
	t      *testing.T
	router *chi.Mux
	store  *memory.Store

	client, admin uuid.UUID
	performer     entity.Performer
	service       entity.PerformerService
}

func newHarness(t *testing.T, checks map[string]adaptor.HealthCheck) *harness {
	t.Helper()
	log := zaptest.NewLogger(t)
	config := &utils.Config{
		Auth: utils.AuthConfig{JWTSecret: testSecret},
		Booking: utils.BookingConfig{
			DepositPercent:    50,
			ReferralPercent:   10,
			MinLeadHours:      24,
			ClientCancelHours: 24,
			PaymentTolerance:  0.01,
			Currency:          "AUD",
			Timezone:          "UTC",
		},
		RateLimit: utils.RateLimitConfig{PaymentsPerMinute: 60, Burst: 10},
	}

	h := &harness{t: t, store: memory.New(log)}
	h.client = h.putUser("Casey Client", entity.RoleClient)
	h.admin = h.putUser("Ada Admin", entity.RoleAdmin)
	performerUser := h.putUser("Nova", entity.RolePerformer)

	h.performer = entity.Performer{UserID: performerUser, StageName: "DJ Nova", Category: "dj", Active: true}
	h.performer.ID = uuid.New()
	h.store.PutPerformer(h.performer)

	h.service = entity.PerformerService{
		PerformerID:      h.performer.ID,
		Name:             "Club set",
		BaseRate:         decimal.NewFromInt(150),
		RateType:         entity.RateTypePerHour,
		MinDurationHours: decimal.NewFromInt(1),
		Active:           true,
	}
	h.service.ID = uuid.New()
	h.store.PutService(h.service)

	service := usecase.NewService(h.store.Repository(), nil, stubReceipts{}, config, log)
	if checks == nil {
		checks = map[string]adaptor.HealthCheck{"database": h.store.Ping}
	}
	h.router = Wiring(service, checks, config, log).Router
	return h
}

func (h *harness) putUser(name string, role entity.Role) uuid.UUID {
	u := entity.User{Name: name, Email: name + "@example.com", Role: role}
	u.ID = uuid.New()
	h.store.PutUser(u)
	return u.ID
}

func (h *harness) token(userID uuid.UUID, role entity.Role) string {
	h.t.Helper()
	claims := middleware.Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		h.t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (h *harness) do(method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			h.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		h.t.Fatalf("%s %s: decode envelope %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope, dst any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (h *harness) bookingBody() map[string]any {
	return map[string]any{
		"performer_id":   h.performer.ID.String(),
		"service_id":     h.service.ID.String(),
		"event_date":     time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"duration_hours": "2",
		"venue_address":  "12 Harbour St, Sydney",
		"guest_count":    80,
	}
}

func TestPublicQuote(t *testing.T) {
	h := newHarness(t, nil)

	code, env := h.do(http.MethodPost, "/api/quotes", "", map[string]any{
		"performer_id":   h.performer.ID.String(),
		"service_id":     h.service.ID.String(),
		"duration_hours": "2",
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", code, env.Message)
	}

	var q struct {
		BaseAmount    decimal.Decimal `json:"base_amount"`
		DepositAmount decimal.Decimal `json:"deposit_amount"`
		TotalAmount   decimal.Decimal `json:"total_amount"`
		Currency      string          `json:"currency"`
	}
	decodeData(t, env, &q)
	if !q.BaseAmount.Equal(decimal.NewFromInt(300)) || !q.TotalAmount.Equal(decimal.NewFromInt(330)) || !q.DepositAmount.Equal(decimal.NewFromInt(165)) {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Currency != "AUD" {
		t.Fatalf("expected AUD, got %s", q.Currency)
	}
}

func TestQuoteRejectsUnknownService(t *testing.T) {
	h := newHarness(t, nil)

	code, env := h.do(http.MethodPost, "/api/quotes", "", map[string]any{
		"performer_id":   h.performer.ID.String(),
		"service_id":     uuid.NewString(),
		"duration_hours": "2",
	})
	if code != http.StatusBadRequest || env.Code != "UnknownService" {
		t.Fatalf("expected 400 UnknownService, got %d %s", code, env.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t, nil)

	code, _ := h.do(http.MethodGet, "/api/bookings", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}

	code, _ = h.do(http.MethodGet, "/api/admin/payments/queue", h.token(h.client, entity.RoleClient), nil)
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for client on admin route, got %d", code)
	}
}

func TestBookingToConfirmedOverHTTP(t *testing.T) {
	h := newHarness(t, nil)
	clientToken := h.token(h.client, entity.RoleClient)
	adminToken := h.token(h.admin, entity.RoleAdmin)

	code, env := h.do(http.MethodPost, "/api/bookings", clientToken, h.bookingBody())
	if code != http.StatusCreated {
		t.Fatalf("create booking: %d %s", code, env.Message)
	}
	var booking struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeData(t, env, &booking)
	if booking.Status != "pending" {
		t.Fatalf("expected pending, got %s", booking.Status)
	}

	code, env = h.do(http.MethodPost, "/api/admin/bookings/"+booking.ID+"/quote", adminToken, map[string]any{})
	if code != http.StatusOK {
		t.Fatalf("quote booking: %d %s", code, env.Message)
	}

	code, env = h.do(http.MethodPost, "/api/bookings/"+booking.ID+"/receipts", clientToken, map[string]any{"content_type": "application/pdf"})
	if code != http.StatusCreated {
		t.Fatalf("receipt upload: %d %s", code, env.Message)
	}
	var upload struct {
		ReceiptRef string `json:"receipt_ref"`
	}
	decodeData(t, env, &upload)

	code, env = h.do(http.MethodPost, "/api/bookings/"+booking.ID+"/payments", clientToken, map[string]any{
		"amount":        "165.00",
		"method":        "payid",
		"receipt_ref":   upload.ReceiptRef,
		"payer_name":    "Casey Client",
		"payer_contact": "+61400000001",
	})
	if code != http.StatusCreated {
		t.Fatalf("submit payment: %d %s", code, env.Message)
	}
	var payment struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &payment)

	code, env = h.do(http.MethodPost, "/api/admin/payments/"+payment.ID+"/verify", adminToken, map[string]any{"outcome": "verified"})
	if code != http.StatusOK {
		t.Fatalf("verify payment: %d %s", code, env.Message)
	}
	var result struct {
		BookingStatus string `json:"booking_status"`
		PaymentStatus string `json:"booking_payment_status"`
	}
	decodeData(t, env, &result)
	if result.BookingStatus != "confirmed" || result.PaymentStatus != "deposit_paid" {
		t.Fatalf("unexpected verification %+v", result)
	}

	code, env = h.do(http.MethodGet, "/api/admin/audit/"+booking.ID, adminToken, nil)
	if code != http.StatusOK {
		t.Fatalf("audit trail: %d %s", code, env.Message)
	}
	var entries []map[string]any
	decodeData(t, env, &entries)
	if len(entries) == 0 {
		t.Fatal("expected audit entries for the booking")
	}
}

func TestAmountMismatchAnswersAccepted(t *testing.T) {
	h := newHarness(t, nil)
	clientToken := h.token(h.client, entity.RoleClient)
	adminToken := h.token(h.admin, entity.RoleAdmin)

	_, env := h.do(http.MethodPost, "/api/bookings", clientToken, h.bookingBody())
	var booking struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &booking)
	h.do(http.MethodPost, "/api/admin/bookings/"+booking.ID+"/quote", adminToken, map[string]any{})

	_, env = h.do(http.MethodPost, "/api/bookings/"+booking.ID+"/payments", clientToken, map[string]any{
		"amount":        "100.00",
		"method":        "bank_transfer",
		"receipt_ref":   "s3://receipts/r.pdf",
		"payer_name":    "Casey Client",
		"payer_contact": "casey@example.com",
	})
	var payment struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &payment)

	code, env := h.do(http.MethodPost, "/api/admin/payments/"+payment.ID+"/verify", adminToken, map[string]any{"outcome": "verified"})
	if code != http.StatusAccepted || env.Code != "AmountMismatch" {
		t.Fatalf("expected 202 AmountMismatch, got %d %s", code, env.Code)
	}

	code, env = h.do(http.MethodGet, "/api/admin/payments/flagged", adminToken, nil)
	if code != http.StatusOK {
		t.Fatalf("flagged: %d %s", code, env.Message)
	}
	var page struct {
		Data []map[string]any `json:"data"`
	}
	decodeData(t, env, &page)
	if len(page.Data) != 1 {
		t.Fatalf("expected one flagged payment, got %d", len(page.Data))
	}
}

func TestInvalidTransitionIsConflict(t *testing.T) {
	h := newHarness(t, nil)
	clientToken := h.token(h.client, entity.RoleClient)

	_, env := h.do(http.MethodPost, "/api/bookings", clientToken, h.bookingBody())
	var booking struct {
		ID string `json:"id"`
	}
	decodeData(t, env, &booking)

	code, env := h.do(http.MethodPost, "/api/bookings/"+booking.ID+"/transitions", h.token(h.admin, entity.RoleAdmin),
		map[string]any{"status": "completed"})
	if code != http.StatusConflict || env.Code != "InvalidTransition" {
		t.Fatalf("expected 409 InvalidTransition, got %d %s", code, env.Code)
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	h := newHarness(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+h.token(h.client, entity.RoleClient))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)
	code, _ := h.do(http.MethodGet, "/health", "", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	down := newHarness(t, map[string]adaptor.HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	code, env := down.do(http.MethodGet, "/health", "", nil)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	var status map[string]string
	decodeData(t, env, &status)
	if status["redis"] != "down" {
		t.Fatalf("expected redis down, got %v", status)
	}
}
