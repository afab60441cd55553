package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"order-webhook-service/config"
	"order-webhook-service/internal/adapter/http/handler"
	"order-webhook-service/internal/adapter/mailer"
	"order-webhook-service/internal/adapter/storage/memory"
	"order-webhook-service/internal/core/domain"
	"order-webhook-service/internal/core/ports"
	"order-webhook-service/internal/service"
	tmpl "order-webhook-service/internal/template"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testWebhookSecret = "whsec_test"
	testAdminPassword = "correct horse battery staple"
)

// --- in-memory collaborators ---

type fakeStore struct {
	orders     map[int64]*domain.Order
	purchasers map[int64]*domain.Purchaser
	addresses  map[int64]*domain.ShippingAddress
	items      map[int64][]domain.LineItem
}

type orderRepo struct{ s *fakeStore }

func (r orderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	return r.s.orders[id], nil
}

type purchaserRepo struct{ s *fakeStore }

func (r purchaserRepo) GetByID(_ context.Context, id int64) (*domain.Purchaser, error) {
	return r.s.purchasers[id], nil
}

type addressRepo struct{ s *fakeStore }

func (r addressRepo) GetByID(_ context.Context, id int64) (*domain.ShippingAddress, error) {
	return r.s.addresses[id], nil
}

type itemRepo struct{ s *fakeStore }

func (r itemRepo) ListByOrderID(_ context.Context, id int64) ([]domain.LineItem, error) {
	return r.s.items[id], nil
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fakeCapturer struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (c *fakeCapturer) Capture(_ context.Context, paymentID string, amount int64, currency string) (*domain.CaptureResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, paymentID)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.CaptureResult{PaymentID: paymentID, Status: "captured", Amount: amount, Currency: currency, Captured: true}, nil
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func seedStore() *fakeStore {
	return &fakeStore{
		orders: map[int64]*domain.Order{
			42: {ID: 42, UserID: int64Ptr(7), ShippingAddressID: int64Ptr(3), TotalAmount: 35.5, Status: "paid",
				CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), PaymentID: strPtr("pay_42")},
			43: {ID: 43, UserID: int64Ptr(8), ShippingAddressID: int64Ptr(3), TotalAmount: 10},
		},
		purchasers: map[int64]*domain.Purchaser{
			7: {ID: 7, Name: strPtr("Asha"), Email: strPtr("asha@example.com")},
			8: {ID: 8, Name: strPtr("No Mail")},
		},
		addresses: map[int64]*domain.ShippingAddress{
			3: {ID: 3, AddressLine1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"},
		},
		items: map[int64][]domain.LineItem{
			42: {{ID: 1, Quantity: 3, Price: 10, Product: domain.ProductSnapshot{Title: strPtr("Linen Kurta")}}},
			43: {{ID: 2, Quantity: 1, Price: 10}},
		},
	}
}

type testApp struct {
	router   *gin.Engine
	signer   *service.HMACSignatureService
	mailer   *fakeMailer
	capturer *fakeCapturer
}

// appOptions swaps collaborators out of the default wiring.
type appOptions struct {
	mailer   ports.Mailer              // nil = fakeMailer
	notifier ports.NotificationService // nil = real notifier over mailer
	timeout  time.Duration
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWith(t, appOptions{timeout: 5 * time.Second})
}

func newTestAppWith(t *testing.T, opts appOptions) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zerolog.Nop()

	store := seedStore()
	signer := service.NewHMACSignatureService()
	hashSvc := service.NewArgon2HashService()
	hash, err := hashSvc.Hash(testAdminPassword)
	require.NoError(t, err)

	fake := &fakeMailer{}
	var mail ports.Mailer = fake
	if opts.mailer != nil {
		mail = opts.mailer
	}
	capturer := &fakeCapturer{}

	bundles := service.NewOrderBundleService(orderRepo{store}, purchaserRepo{store}, addressRepo{store}, itemRepo{store}, log)
	renderer := service.NewNotificationRenderer(tmpl.NewLoader(""), service.Branding{StoreName: "Test Store"})
	var notifier ports.NotificationService = service.NewNotificationService(bundles, renderer, mail, log)
	if opts.notifier != nil {
		notifier = opts.notifier
	}
	webhooks := service.NewWebhookService(service.WebhookConfig{Secret: testWebhookSecret}, signer, capturer, notifier, nil, log)
	auth := service.NewAdminAuthService(hash, time.Hour, hashSvc,
		service.NewJWTTokenService("jwt-test-secret", "order-webhook-service"), memory.NewSessionStore())

	router := handler.SetupRouter(handler.RouterDeps{
		WebhookSvc:      webhooks,
		AdminAuthSvc:    auth,
		BundleSvc:       bundles,
		NotificationSvc: notifier,
		WebhookTimeout:  opts.timeout,
		Logger:          log,
	})

	return &testApp{router: router, signer: signer, mailer: fake, capturer: capturer}
}

func (a *testApp) postWebhook(body string, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/razorpay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(handler.HeaderGatewaySignature, signature)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) signed(body string) *httptest.ResponseRecorder {
	return a.postWebhook(body, a.signer.Sign(testWebhookSecret, []byte(body)))
}

func (a *testApp) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// --- webhook flow ---

func TestRouter_Health(t *testing.T) {
	app := newTestApp(t)
	w := app.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_CapturedSendsConfirmation(t *testing.T) {
	app := newTestApp(t)

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_42","notes":{"internal_order_id":"42"}}}}}`
	w := app.signed(body)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	require.Equal(t, 1, app.mailer.count())
	mail := app.mailer.sent[0]
	assert.Equal(t, "asha@example.com", mail.to)
	assert.Equal(t, "Order Confirmation - #42", mail.subject)
	assert.Contains(t, mail.body, "Linen Kurta")
	assert.Contains(t, mail.body, "₹30.00")
	assert.Contains(t, mail.body, "₹5.50")
	assert.Contains(t, mail.body, "Test Store")
}

func TestRouter_CapturedWithoutEmailIsServerError(t *testing.T) {
	app := newTestApp(t)

	w := app.signed(`{"event":"payment.captured","payload":{"order":{"entity":{"notes":{"internal_order_id":43}}}}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"error"`)
	assert.Zero(t, app.mailer.count())

	// The receiver keeps serving after a failed confirmation.
	w = app.signed(`{"event":"refund.created"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_UnknownOrderIsServerError(t *testing.T) {
	app := newTestApp(t)
	w := app.signed(`{"event":"payment.captured","payload":{"payment":{"entity":{"notes":{"internal_order_id":"999"}}}}}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// stallingNotifier holds every confirmation until the request deadline.
type stallingNotifier struct{ calls atomic.Int32 }

func (n *stallingNotifier) SendOrderConfirmation(ctx context.Context, _ int64) error {
	n.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (n *stallingNotifier) Preview(ctx context.Context, _ int64) (*domain.RenderedNotification, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

const capturedOrder42 = `{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_42","notes":{"internal_order_id":"42"}}}}}`

func TestRouter_ConfirmationPastDeadlineIsServerError(t *testing.T) {
	const timeout = 150 * time.Millisecond
	notifier := &stallingNotifier{}
	app := newTestAppWith(t, appOptions{notifier: notifier, timeout: timeout})

	start := time.Now()
	w := app.signed(capturedOrder42)
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"error"`)
	assert.Equal(t, int32(1), notifier.calls.Load())
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+time.Second, "the reply must follow the deadline, not the notifier")

	// The receiver keeps serving after a timed-out confirmation.
	w = app.signed(`{"event":"refund.created"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SilentMailServerIsServerError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// Accept and never greet.
			go func() {
				defer conn.Close()
				_, _ = io.Copy(io.Discard, conn)
			}()
		}
	}()

	smtp := mailer.NewSMTPMailer(config.SMTPConfig{
		Host:    "127.0.0.1",
		Port:    ln.Addr().(*net.TCPAddr).Port,
		Timeout: 30 * time.Second,
	}, "orders@shop.example")

	const timeout = 200 * time.Millisecond
	app := newTestAppWith(t, appOptions{mailer: smtp, timeout: timeout})

	start := time.Now()
	w := app.signed(capturedOrder42)
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error_code":"NTF_001"`)
	assert.Less(t, elapsed, timeout+2*time.Second)
}

func TestRouter_InvalidSignature(t *testing.T) {
	app := newTestApp(t)

	body := `{"event":"payment.captured","payload":{"payment":{"entity":{"notes":{"internal_order_id":"42"}}}}}`
	sig := app.signer.Sign(testWebhookSecret, []byte(body))

	// Re-serialised body: same JSON, different bytes.
	w := app.postWebhook(strings.Replace(body, `"event":`, `"event" : `, 1), sig)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid signature")

	w = app.postWebhook(body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, app.mailer.count())
}

func TestRouter_SignedGarbageIsBadJSON(t *testing.T) {
	app := newTestApp(t)
	w := app.signed(`not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Bad JSON")
}

func TestRouter_MissingAndInvalidOrderID(t *testing.T) {
	app := newTestApp(t)

	w := app.signed(`{"event":"payment.captured","payload":{"payment":{"entity":{"notes":{}}}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing internal_order_id")

	w = app.signed(`{"event":"payment.captured","payload":{"payment":{"entity":{"notes":{"internal_order_id":"forty-two"}}}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid internal_order_id")
}

func TestRouter_AuthorizedAlwaysAcknowledged(t *testing.T) {
	app := newTestApp(t)
	app.capturer.err = errors.New("gateway timeout")

	w := app.signed(`{"event":"payment.authorized","payload":{"payment":{"entity":{"id":"pay_9","amount":50000}}}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"captured_from_authorized"}`, w.Body.String())
	assert.Equal(t, []string{"pay_9"}, app.capturer.calls)

	// Missing payment id: no capture call, same acknowledgment.
	w = app.signed(`{"event":"payment.authorized","payload":{}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, app.capturer.calls, 1)
}

func TestRouter_UnknownEventIgnored(t *testing.T) {
	app := newTestApp(t)
	w := app.signed(`{"event":"order.paid","payload":{"payment":{"entity":{"notes":{"internal_order_id":"42"}}}}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ignored_event"}`, w.Body.String())
	assert.Zero(t, app.mailer.count())
	assert.Empty(t, app.capturer.calls)
}

// --- admin flow ---

func login(t *testing.T, app *testApp) string {
	t.Helper()
	w := app.do(http.MethodPost, "/api/v1/admin/login", "", `{"password":"`+testAdminPassword+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token     string `json:"token"`
			ExpiresAt int64  `json:"expires_at"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	assert.Greater(t, resp.Data.ExpiresAt, time.Now().Unix())
	return resp.Data.Token
}

func TestRouter_AdminSessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	w := app.do(http.MethodPost, "/api/v1/admin/login", "", `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(http.MethodGet, "/api/v1/admin/orders/42", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := login(t, app)

	w = app.do(http.MethodGet, "/api/v1/admin/orders/42", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"email":"asha@example.com"`)

	w = app.do(http.MethodGet, "/api/v1/admin/orders/999", token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(http.MethodGet, "/api/v1/admin/orders/42/preview", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Linen Kurta")
	assert.Zero(t, app.mailer.count(), "preview must not send")

	w = app.do(http.MethodPost, "/api/v1/admin/orders/42/resend-confirmation", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, app.mailer.count())

	w = app.do(http.MethodPost, "/api/v1/admin/logout", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(http.MethodGet, "/api/v1/admin/orders/42", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "revoked token must be rejected")
}

func TestRouter_MetricsAndSwagger(t *testing.T) {
	app := newTestApp(t)
	app.signed(`{"event":"something.else"}`)

	w := app.do(http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ows_webhook_events_total")

	w = app.do(http.MethodGet, "/swagger/spec", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
