package list_courts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListCourts(_ context.Context) ([]models.CourtResponse, error) {
	args := m.Called()
	courts, _ := args.Get(0).([]models.CourtResponse)
	return courts, args.Error(1)
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name       string
		courts     []models.CourtResponse
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "courts",
			courts:     []models.CourtResponse{{ID: 1, Name: "Cancha 1", Currency: "CLP"}},
			wantStatus: http.StatusOK,
			wantBody:   `[{"id":1,"name":"Cancha 1","currency":"CLP"}]`,
		},
		{
			name:       "empty catalog",
			courts:     []models.CourtResponse{},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
		{
			name:       "service failure",
			err:        errors.New("conn reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"внутренняя ошибка сервера"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("ListCourts").Return(tt.courts, tt.err)

			rec := httptest.NewRecorder()
			NewHandler(svc, logger.NewNop()).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/courts", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
