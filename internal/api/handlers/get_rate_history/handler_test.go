package get_rate_history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/rates/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListHistory(_ context.Context, courtID int64, limit int) (*models.RateHistoryResponse, error) {
	args := m.Called(courtID, limit)
	resp, _ := args.Get(0).(*models.RateHistoryResponse)
	return resp, args.Error(1)
}

func get(h *Handler, courtID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courts/"+courtID+"/base-rate/history"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"courtId": courtID})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

// Ограничение 50/200 применяет сервис, хендлер передаёт limit как есть
func TestHandle_LimitPassedToService(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{"absent", "", 0},
		{"zero", "?limit=0", 0},
		{"explicit", "?limit=10", 10},
		{"above cap", "?limit=1000", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("ListHistory", int64(4), tt.wantLimit).
				Return(&models.RateHistoryResponse{Records: []models.RateRecordResponse{{ID: "r-2"}, {ID: "r-1"}}}, nil)

			rec := get(NewHandler(svc, logger.NewNop()), "4", tt.query)

			require.Equal(t, http.StatusOK, rec.Code)
			var body models.RateHistoryResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Records, 2)
			assert.Equal(t, "r-2", body.Records[0].ID)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unknown court", rates.ErrCourtNotFound, http.StatusNotFound, msgCourtNotFound},
		{"internal", fmt.Errorf("%w: db", rates.ErrInternal), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("ListHistory", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := get(NewHandler(svc, logger.NewNop()), "1", "")

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantMsg != "" {
				assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), rec.Body.String())
			}
		})
	}
}

func TestHandle_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		courtID string
		query   string
		wantMsg string
	}{
		{"court id zero", "0", "", msgInvalidCourtID},
		{"limit not a number", "1", "?limit=abc", msgInvalidLimit},
		{"negative limit", "1", "?limit=-1", msgInvalidLimit},
		{"fractional limit", "1", "?limit=2.5", msgInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			rec := get(NewHandler(svc, logger.NewNop()), tt.courtID, tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), rec.Body.String())
			svc.AssertNotCalled(t, "ListHistory", mock.Anything, mock.Anything)
		})
	}
}
