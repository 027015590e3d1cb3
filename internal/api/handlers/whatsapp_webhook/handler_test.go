package whatsapp_webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/whatsapp"
	handleMessage "github.com/m04kA/SMC-CourtBookingService/internal/usecase/handle_message"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/metrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/ratelimit"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(_ context.Context, in *handleMessage.Inbound) error {
	return m.Called(in).Error(0)
}

const service = "test"

const twoMessages = `{
  "object": "whatsapp_business_account",
  "entry": [{"changes": [{"value": {
    "contacts": [{"wa_id": "56912345678", "profile": {"name": "Ana"}}],
    "messages": [
      {"from": "56912345678", "id": "m1", "type": "text", "text": {"body": "menu"}},
      {"from": "56912345678", "id": "m2", "type": "interactive", "interactive": {"type": "button_reply", "button_reply": {"id": "opt_reserve", "title": "Reservar cancha"}}}
    ]}}]}]
}`

func newTestHandler(t *testing.T, uc HandleMessageUseCase, cfg Config, perMinute, burst int) (*Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.NewWithRegistry(service, prometheus.NewRegistry())
	h := NewHandler(uc, ratelimit.New(perMinute, burst, time.Minute), m, cfg, logger.NewNop())
	return h, m
}

func post(h *Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func processed(m *metrics.Metrics, result string) float64 {
	return testutil.ToFloat64(m.WebhookMessagesTotal.WithLabelValues(service, result))
}

func TestVerify(t *testing.T) {
	h, _ := newTestHandler(t, &mockUseCase{}, Config{VerifyToken: "tok"}, 60, 10)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"ok", "hub.mode=subscribe&hub.verify_token=tok&hub.challenge=12345", http.StatusOK, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=bad&hub.challenge=1", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=tok&hub.challenge=1", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp?"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.Verify(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandle_DispatchesMessagesInOrder(t *testing.T) {
	uc := &mockUseCase{}
	var payloads []string
	uc.On("Execute", mock.AnythingOfType("*handle_message.Inbound")).
		Run(func(args mock.Arguments) {
			in := args.Get(0).(*handleMessage.Inbound)
			assert.Equal(t, "56912345678", in.From)
			assert.Equal(t, "Ana", in.DisplayName)
			payloads = append(payloads, in.Payload)
		}).
		Return(nil)

	h, m := newTestHandler(t, uc, Config{}, 60, 10)
	rec := post(h, twoMessages, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","received":2}`, rec.Body.String())
	assert.Equal(t, []string{"menu", "opt_reserve"}, payloads)
	assert.Equal(t, 2.0, processed(m, resultProcessed))
	uc.AssertNumberOfCalls(t, "Execute", 2)
}

func TestHandle_FailuresStillAcknowledge(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything).Return(errors.New("session store down"))

	h, m := newTestHandler(t, uc, Config{}, 60, 10)
	rec := post(h, twoMessages, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, processed(m, resultFailed))
}

func TestHandle_ThrottlesPerPhone(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything).Return(nil)

	h, m := newTestHandler(t, uc, Config{}, 1, 1)
	rec := post(h, twoMessages, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	uc.AssertNumberOfCalls(t, "Execute", 1)
	assert.Equal(t, 1.0, processed(m, resultProcessed))
	assert.Equal(t, 1.0, processed(m, resultThrottled))
}

func TestHandle_Signature(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything).Return(nil)
	h, m := newTestHandler(t, uc, Config{AppSecret: "secret"}, 60, 10)

	rec := post(h, twoMessages, map[string]string{"X-Hub-Signature-256": "sha256=00"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything)
	assert.Equal(t, 1.0, processed(m, resultRejected))

	rec = post(h, twoMessages, map[string]string{"X-Hub-Signature-256": whatsapp.Sign("secret", []byte(twoMessages))})
	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertNumberOfCalls(t, "Execute", 2)
}

func TestHandle_StatusCallbacksAndBadPayload(t *testing.T) {
	uc := &mockUseCase{}
	h, _ := newTestHandler(t, uc, Config{}, 60, 10)

	statuses := `{"entry":[{"changes":[{"value":{"statuses":[{"id":"s1","status":"read"}]}}]}]}`
	rec := post(h, statuses, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","received":0}`, rec.Body.String())

	rec = post(h, "{not json", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything)
}
