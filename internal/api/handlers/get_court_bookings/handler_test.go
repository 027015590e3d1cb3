package get_court_bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/bookings/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GetCourtBookings(_ context.Context, req *models.GetCourtBookingsRequest) (*models.BookingListResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*models.BookingListResponse)
	return resp, args.Error(1)
}

func get(h *Handler, courtID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courts/"+courtID+"/bookings"+query, nil)
	req = mux.SetURLVars(req, map[string]string{"courtId": courtID})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_PassesFilters(t *testing.T) {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	svc := &mockService{}
	svc.On("GetCourtBookings", mock.MatchedBy(func(req *models.GetCourtBookingsRequest) bool {
		return req.CourtID == 2 &&
			req.From != nil && req.From.Equal(from) &&
			req.To != nil && req.To.Equal(to) &&
			req.Status != nil && *req.Status == "pending" &&
			req.IncludeInactive
	})).Return(&models.BookingListResponse{Bookings: []models.BookingResponse{{ID: "b-1", Status: "pending"}}}, nil)

	rec := get(NewHandler(svc, logger.NewNop()), "2",
		"?from=2026-03-10T00:00:00Z&to=2026-03-11T00:00:00Z&status=pending&includeInactive=true")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "b-1", body[0].ID)
	svc.AssertExpectations(t)
}

func TestHandle_ActiveOnlyByDefault(t *testing.T) {
	svc := &mockService{}
	svc.On("GetCourtBookings", &models.GetCourtBookingsRequest{CourtID: 1}).
		Return(&models.BookingListResponse{Bookings: []models.BookingResponse{}}, nil)

	rec := get(NewHandler(svc, logger.NewNop()), "1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unknown court", bookings.ErrCourtNotFound, http.StatusNotFound, msgCourtNotFound},
		{"unknown status", bookings.ErrInvalidStatus, http.StatusBadRequest, msgInvalidStatus},
		{"inverted range", bookings.ErrInvalidTimeRange, http.StatusBadRequest, msgInvalidParams},
		{"internal", fmt.Errorf("%w: %v", bookings.ErrInternal, errors.New("conn reset")), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("GetCourtBookings", mock.Anything).Return(nil, tt.err)

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
		{"court id not a number", "x", "", msgInvalidCourtID},
		{"negative court id", "-3", "", msgInvalidCourtID},
		{"from not rfc3339", "1", "?from=2026-03-10", msgInvalidParams},
		{"to not rfc3339", "1", "?to=tomorrow", msgInvalidParams},
		{"includeInactive not bool", "1", "?includeInactive=maybe", msgInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			rec := get(NewHandler(svc, logger.NewNop()), tt.courtID, tt.query)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.wantMsg), rec.Body.String())
			svc.AssertNotCalled(t, "GetCourtBookings", mock.Anything)
		})
	}
}
