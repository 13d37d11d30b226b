package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-confirm-mailer/internal/config"
	"github.com/go-confirm-mailer/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		FromName:       "G-Weather",
		FrontendURL:    "http://localhost:8080",
		AllowedOrigins: []string{"https://weather.example"},
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, ml *mockMailer) (*Router, *memory.ConfirmationStore) {
	t.Helper()
	store := memory.NewConfirmationStore(24*time.Hour, nil)
	rt := NewRouter(cfg, &Deps{Store: store, Mailer: ml})
	t.Cleanup(rt.Close)
	return rt, store
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SendConfirmReplay(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", "a@x.com", "Confirm your G-Weather subscription", mock.MatchedBy(func(b string) bool {
		return strings.Contains(b, "http://localhost:8080/confirm?code=")
	})).Return(nil)
	rt, _ := newTestRouter(t, testConfig(), ml)

	rec := do(t, rt, http.MethodPost, "/api/send-subscription-email",
		map[string]string{"email": "a@x.com", "type": "subscription"})
	require.Equal(t, http.StatusOK, rec.Code)
	var sent struct {
		ConfirmationCode string `json:"confirmationCode"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sent))
	require.NotEmpty(t, sent.ConfirmationCode)

	rec = do(t, rt, http.MethodPost, "/api/confirm-subscription",
		map[string]string{"code": sent.ConfirmationCode, "type": "subscription"})
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&confirmed))
	assert.Equal(t, "a@x.com", confirmed["email"])
	assert.Equal(t, "subscription", confirmed["type"])

	rec = do(t, rt, http.MethodPost, "/api/confirm-subscription",
		map[string]string{"code": sent.ConfirmationCode, "type": "subscription"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	ml.AssertExpectations(t)
}

func TestRouter_KindMismatchKeepsCode(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	rt, store := newTestRouter(t, testConfig(), ml)

	rec := do(t, rt, http.MethodPost, "/api/send-subscription-email",
		map[string]string{"email": "a@x.com", "type": "unsubscription"})
	require.Equal(t, http.StatusOK, rec.Code)
	var sent struct {
		ConfirmationCode string `json:"confirmationCode"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sent))

	rec = do(t, rt, http.MethodPost, "/api/confirm-subscription",
		map[string]string{"code": sent.ConfirmationCode, "type": "subscription"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, store.Len())

	rec = do(t, rt, http.MethodPost, "/api/confirm-subscription",
		map[string]string{"code": sent.ConfirmationCode, "type": "unsubscription"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	rt, _ := newTestRouter(t, testConfig(), &mockMailer{})
	rec := do(t, rt, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)
}

func TestRouter_Metrics(t *testing.T) {
	rt, _ := newTestRouter(t, testConfig(), &mockMailer{})
	rec := do(t, rt, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RateLimitsSend(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	rt, _ := newTestRouter(t, cfg, ml)

	body := map[string]string{"email": "a@x.com", "type": "subscription"}
	assert.Equal(t, http.StatusOK, do(t, rt, http.MethodPost, "/api/send-subscription-email", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, rt, http.MethodPost, "/api/send-subscription-email", body).Code)
}

func sendFrom(t *testing.T, h http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/send-subscription-email",
		strings.NewReader(`{"email":"a@x.com","type":"subscription"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "198.51.100.9:4000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_SpoofedForwardedForStillLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	rt, _ := newTestRouter(t, cfg, ml)

	assert.Equal(t, http.StatusOK, sendFrom(t, rt, map[string]string{"X-Forwarded-For": "10.0.0.1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(t, rt, map[string]string{"X-Forwarded-For": "10.0.0.2"}).Code)
	ml.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestRouter_TrustProxyKeysOnForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	cfg.TrustProxy = true
	ml := &mockMailer{}
	ml.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	rt, _ := newTestRouter(t, cfg, ml)

	assert.Equal(t, http.StatusOK, sendFrom(t, rt, map[string]string{"X-Forwarded-For": "10.0.0.1"}).Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(t, rt, map[string]string{"X-Forwarded-For": "10.0.0.1"}).Code)
	assert.Equal(t, http.StatusOK, sendFrom(t, rt, map[string]string{"X-Forwarded-For": "10.0.0.2"}).Code)
}

func TestRouter_LinkIgnoresUnlistedOrigin(t *testing.T) {
	ml := &mockMailer{}
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.MatchedBy(func(b string) bool {
		return strings.Contains(b, "http://localhost:8080/confirm?code=") && !strings.Contains(b, "attacker.example")
	})).Return(nil).Once()
	ml.On("SendEmail", "a@x.com", mock.Anything, mock.MatchedBy(func(b string) bool {
		return strings.Contains(b, "https://weather.example/confirm?code=")
	})).Return(nil).Once()
	rt, _ := newTestRouter(t, testConfig(), ml)

	assert.Equal(t, http.StatusOK, sendFrom(t, rt, map[string]string{
		"Origin":  "https://attacker.example",
		"Referer": "https://attacker.example/phish",
	}).Code)
	assert.Equal(t, http.StatusOK, sendFrom(t, rt, map[string]string{"Origin": "https://weather.example"}).Code)
	ml.AssertExpectations(t)
}

func TestRouter_CORSPreflight(t *testing.T) {
	rt, _ := newTestRouter(t, testConfig(), &mockMailer{})

	req := httptest.NewRequest(http.MethodOptions, "/api/confirm-subscription", nil)
	req.Header.Set("Origin", "https://weather.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	assert.Equal(t, "https://weather.example", rec.Header().Get("Access-Control-Allow-Origin"))
}
