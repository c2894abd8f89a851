package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shiftbot/internal/domain"
	"shiftbot/internal/mocks"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const opsToken = "secret"

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func newOpsServer(t *testing.T, stats *mocks.StatsUseCase, pinger Pinger, token string) *echo.Echo {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	e := echo.New()
	e.Use(LoggingMiddleware(logger))
	NewAPIHandler(stats, pinger, logger).Register(e, token)
	return e
}

func doGet(e *echo.Echo, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAPI_Health(t *testing.T) {
	ok := newOpsServer(t, &mocks.StatsUseCase{}, fakePinger{}, opsToken)
	assert.Equal(t, http.StatusOK, doGet(ok, "/health", "").Code)

	down := newOpsServer(t, &mocks.StatsUseCase{}, fakePinger{err: errors.New("connection refused")}, opsToken)
	assert.Equal(t, http.StatusServiceUnavailable, doGet(down, "/health", "").Code)

	memory := newOpsServer(t, &mocks.StatsUseCase{}, nil, opsToken)
	assert.Equal(t, http.StatusOK, doGet(memory, "/health", "").Code)
}

func TestAPI_OpsRoutesRequireToken(t *testing.T) {
	stats := &mocks.StatsUseCase{}
	e := newOpsServer(t, stats, nil, opsToken)

	assert.Equal(t, http.StatusUnauthorized, doGet(e, "/stats/orgs", "wrong").Code)
	assert.GreaterOrEqual(t, doGet(e, "/stats/orgs", "").Code, http.StatusBadRequest)
	stats.AssertNotCalled(t, "GetOrgStats", mock.Anything)
}

func TestAPI_EmptyTokenDisablesOpsRoutes(t *testing.T) {
	e := newOpsServer(t, &mocks.StatsUseCase{}, nil, "")

	assert.Equal(t, http.StatusNotFound, doGet(e, "/stats/orgs", "").Code)
}

func TestAPI_GetOrgStats(t *testing.T) {
	stats := &mocks.StatsUseCase{}
	stats.On("GetOrgStats", mock.Anything).Return([]*domain.OrgStat{
		{Org: "ER", OpenShifts: 3, PendingUser: 1, Approved: 7},
	}, nil)
	e := newOpsServer(t, stats, nil, opsToken)

	rec := doGet(e, "/stats/orgs", opsToken)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stats []OrgStatDTO `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []OrgStatDTO{{Org: "ER", OpenShifts: 3, PendingUsers: 1, ApprovedUsers: 7}}, body.Stats)
}

func TestAPI_GetOpenDatesScopedByOrg(t *testing.T) {
	stats := &mocks.StatsUseCase{}
	er := domain.Org("ER")
	stats.On("ListOpenDates", mock.Anything, &er).Return([]*domain.DateCount{
		{Date: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC), Count: 2},
	}, nil)
	stats.On("ListOpenDates", mock.Anything, (*domain.Org)(nil)).Return([]*domain.DateCount{}, nil)
	e := newOpsServer(t, stats, nil, opsToken)

	rec := doGet(e, "/stats/dates?org=ER", opsToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dates":[{"date":"2025-12-10","count":2}]}`, rec.Body.String())

	rec = doGet(e, "/stats/dates", opsToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dates":[]}`, rec.Body.String())
}

func TestAPI_GetShifts(t *testing.T) {
	stats := &mocks.StatsUseCase{}
	date := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	stats.On("ListOpenShifts", mock.Anything, date, (*domain.Org)(nil)).Return([]*domain.Shift{{
		ID:      5,
		Org:     "ER",
		OwnerID: 10,
		Source:  domain.Location{ChatID: -1001, MessageID: 100},
		Date:    date,
	}}, nil)
	e := newOpsServer(t, stats, nil, opsToken)

	rec := doGet(e, "/shifts?date=2025-12-10", opsToken)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Date   string     `json:"date"`
		Shifts []ShiftDTO `json:"shifts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-12-10", body.Date)
	require.Len(t, body.Shifts, 1)
	assert.Equal(t, int64(5), body.Shifts[0].ShiftID)
	assert.Equal(t, 100, body.Shifts[0].MessageID)
}

func TestAPI_GetShiftsRejectsBadDate(t *testing.T) {
	stats := &mocks.StatsUseCase{}
	e := newOpsServer(t, stats, nil, opsToken)

	rec := doGet(e, "/shifts?date=10-12-2025", opsToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	stats.AssertNotCalled(t, "ListOpenShifts", mock.Anything, mock.Anything, mock.Anything)
}

func TestAPI_ErrorKindMapsToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: domain.ErrShiftNotFound, want: http.StatusNotFound},
		{err: domain.ErrDuplicateOpenShift, want: http.StatusConflict},
		{err: domain.ErrForbidden, want: http.StatusForbidden},
		{err: domain.ErrInvalidDate, want: http.StatusBadRequest},
		{err: domain.ErrUnreachable, want: http.StatusBadGateway},
		{err: errors.New("db down"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			stats := &mocks.StatsUseCase{}
			stats.On("GetOrgStats", mock.Anything).Return(nil, tt.err)
			e := newOpsServer(t, stats, nil, opsToken)

			rec := doGet(e, "/stats/orgs", opsToken)

			assert.Equal(t, tt.want, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, domain.KindOf(tt.err).String(), body.Error.Code)
		})
	}
}
