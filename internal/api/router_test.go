package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-wallet/internal/api/middleware"
	"travel-wallet/internal/logger"
	"travel-wallet/internal/rates"
	"travel-wallet/internal/service"
	"travel-wallet/internal/storages"
	"travel-wallet/internal/storages/memory"
	"travel-wallet/internal/storages/storagetest"
)

const testSecret = "test-secret-value"

type fixedProvider struct {
	rate float64
	err  error
}

func (p fixedProvider) FetchRate(ctx context.Context, from, to string) (float64, error) {
	return p.rate, p.err
}

func (p fixedProvider) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	return amount * p.rate, p.err
}

type apiFixture struct {
	router *gin.Engine
	jwt    *middleware.JWTMiddleware
	trips  *service.TripService
}

func newAPIFixture(t *testing.T, provider rates.Provider) *apiFixture {
	t.Helper()
	log := logger.Discard()
	trips := service.NewTripService(memory.New(log), nil, log)
	jwtMiddleware := middleware.NewJWTMiddleware(testSecret, time.Hour, log)

	return &apiFixture{
		router: SetupRouter(trips, provider, jwtMiddleware, 20, log, gin.TestMode),
		jwt:    jwtMiddleware,
		trips:  trips,
	}
}

func (f *apiFixture) get(t *testing.T, path string, userID int64) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != 0 {
		token, err := f.jwt.GenerateToken(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var body map[string]json.RawMessage
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPIFixture(t, rates.Unavailable{})

	w, body := f.get(t, "/health", 0)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t, rates.Unavailable{})

	w, _ := f.get(t, "/api/v1/trips", 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	foreign := middleware.NewJWTMiddleware("another-secret", time.Hour, logger.Discard())
	token, err := foreign.GenerateToken(1)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredTokenRejected(t *testing.T) {
	f := newAPIFixture(t, rates.Unavailable{})

	claims := middleware.Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTripsEndpoints(t *testing.T) {
	f := newAPIFixture(t, rates.Unavailable{})
	ctx := context.Background()

	w, body := f.get(t, "/api/v1/trips", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(body["trips"]))

	w, _ = f.get(t, "/api/v1/trips/active", 1)
	assert.Equal(t, http.StatusNotFound, w.Code)

	trip := storagetest.NewTrip(1)
	require.NoError(t, f.trips.CreateTrip(ctx, trip, 10000))
	for _, amount := range []float64{10, 20, 30} {
		_, err := f.trips.RecordExpense(ctx, 1, trip.ID, amount, amount/trip.Rate, "")
		require.NoError(t, err)
	}

	w, body = f.get(t, "/api/v1/trips", 1)
	require.Equal(t, http.StatusOK, w.Code)
	var trips []storages.Trip
	require.NoError(t, json.Unmarshal(body["trips"], &trips))
	require.Len(t, trips, 1)
	assert.Equal(t, "USD", trips[0].DestCurrency)

	w, body = f.get(t, "/api/v1/trips/active", 1)
	require.Equal(t, http.StatusOK, w.Code)
	var totals storages.ExpenseTotals
	require.NoError(t, json.Unmarshal(body["totals"], &totals))
	assert.InDelta(t, 60.0, totals.Dest, 1e-9)

	path := "/api/v1/trips/" + strconv.FormatInt(trip.ID, 10) + "/expenses?limit=2"
	w, body = f.get(t, path, 1)
	require.Equal(t, http.StatusOK, w.Code)
	var expenses []storages.Expense
	require.NoError(t, json.Unmarshal(body["expenses"], &expenses))
	assert.Len(t, expenses, 2)

	w, _ = f.get(t, path, 2)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.get(t, "/api/v1/trips/abc/expenses", 1)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.get(t, "/api/v1/trips/"+strconv.FormatInt(trip.ID, 10)+"/expenses?limit=-1", 1)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRatesEndpoint(t *testing.T) {
	f := newAPIFixture(t, fixedProvider{rate: 0.011})

	w, body := f.get(t, "/api/v1/rates?from=rub&to=usd", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"RUB"`, string(body["from"]))
	assert.JSONEq(t, `0.011`, string(body["rate"]))

	w, _ = f.get(t, "/api/v1/rates?from=RUB&to=XXY", 1)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f = newAPIFixture(t, rates.Unavailable{})
	w, _ = f.get(t, "/api/v1/rates?from=RUB&to=USD", 1)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
