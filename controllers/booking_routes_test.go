package controllers_test

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/homehelp/homehelp-api/controllers"
	"github.com/homehelp/homehelp-api/middleware"
	"github.com/homehelp/homehelp-api/models"
	"github.com/homehelp/homehelp-api/services"
	"github.com/homehelp/homehelp-api/testutil"
	"github.com/homehelp/homehelp-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type bookingFixture struct {
	db     *gorm.DB
	router *gin.Engine
	store  *services.MockObjectStore
}

func newBookingFixture(t *testing.T, photos bool) *bookingFixture {
	t.Helper()
	testutil.RequireTestEnvironment(t)

	db := testutil.NewTestDB(t)
	store := services.NewMockObjectStore()
	opts := []services.LedgerOption{services.WithLogger(discardLogger)}
	if photos {
		opts = append(opts, services.WithImages(services.NewImageService(store)))
	}
	ledger := testutil.NewLedger(t, db, opts...)

	return &bookingFixture{
		db:     db,
		router: controllers.NewBookingRouter(ledger, db, discardLogger, photos),
		store:  store,
	}
}

func TestHealth(t *testing.T) {
	f := newBookingFixture(t, false)

	w := performRequest(t, f.router, http.MethodGet, "/health", nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, true, decode(t, w)["ok"])

	w = performRequest(t, f.router, http.MethodGet, "/health/db", nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Contains(t, decode(t, w)["tables"], "bookings")
}

func TestCatalogRoutes(t *testing.T) {
	f := newBookingFixture(t, false)
	plumber := testutil.ServiceByName(t, f.db, "Plumber")
	proA := testutil.HelperByName(t, f.db, "Plumber Pro A")

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		expectedCode   string
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name:           "List services",
			path:           "/services",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["services"], len(services.SeedServiceNames))
			},
		},
		{
			name:           "Get service with helper count",
			path:           fmt.Sprintf("/services/%d", plumber.ID),
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				service := body["service"].(map[string]interface{})
				assert.Equal(t, "Plumber", service["name"])
				assert.Equal(t, float64(2), service["helpers"])
			},
		},
		{
			name:           "Unknown service",
			path:           "/services/9999",
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "Malformed service id",
			path:           "/services/abc",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_INPUT",
		},
		{
			name:           "Helpers for a service",
			path:           fmt.Sprintf("/services/%d/helpers", plumber.ID),
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["helpers"], 2)
			},
		},
		{
			name:           "Helpers for an unknown service",
			path:           "/services/9999/helpers",
			expectedStatus: http.StatusNotFound,
			expectedCode:   "NOT_FOUND",
		},
		{
			name:           "Get helper",
			path:           fmt.Sprintf("/helpers/%d", proA.ID),
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				helper := body["helper"].(map[string]interface{})
				assert.Equal(t, "Plumber Pro A", helper["name"])
				assert.Equal(t, "Plumber", helper["service_name"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, f.router, http.MethodGet, tt.path, nil, nil)
			requireStatus(t, w, tt.expectedStatus)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w))
			}
			if tt.check != nil {
				tt.check(t, decode(t, w))
			}
		})
	}
}

func TestProtectedRoutesRequireTrustHeaders(t *testing.T) {
	f := newBookingFixture(t, true)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/helpers/me"},
		{http.MethodPut, "/helpers/me"},
		{http.MethodPut, "/helpers/me/photo"},
		{http.MethodPost, "/listings"},
		{http.MethodGet, "/bookings"},
		{http.MethodPost, "/bookings"},
		{http.MethodPost, "/bookings/1/cancel"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			w := performRequest(t, f.router, route.method, route.path, nil, nil)
			requireStatus(t, w, http.StatusUnauthorized)
			assert.Equal(t, "UNAUTHENTICATED", errorCode(t, w))
		})
	}
}

func TestHelperMe(t *testing.T) {
	f := newBookingFixture(t, false)
	plumber := testutil.ServiceByName(t, f.db, "Plumber")

	w := performRequest(t, f.router, http.MethodGet, "/helpers/me", nil, &bob)
	requireStatus(t, w, http.StatusOK)
	assert.Nil(t, decode(t, w)["helper"])

	w = performRequest(t, f.router, http.MethodPut, "/helpers/me", gin.H{
		"service_id": plumber.ID,
		"name":       "Plumber Pro",
		"bio":        "Leaks fixed fast",
		"fee_cents":  0,
	}, &bob)
	requireStatus(t, w, http.StatusOK)
	helper := decode(t, w)["helper"].(map[string]interface{})
	assert.Equal(t, "Plumber Pro", helper["name"])
	assert.Equal(t, float64(0), helper["fee_cents"])
	assert.Equal(t, float64(bob.ID), helper["identity_id"])

	w = performRequest(t, f.router, http.MethodGet, "/helpers/me", nil, &bob)
	requireStatus(t, w, http.StatusOK)
	assert.Equal(t, "Plumber Pro", decode(t, w)["helper"].(map[string]interface{})["name"])

	tests := []struct {
		name         string
		body         interface{}
		expectedCode string
	}{
		{"Missing name", gin.H{"service_id": plumber.ID}, "MISSING_FIELDS"},
		{"Unknown service", gin.H{"service_id": 9999, "name": "X"}, "INVALID_REFERENCE"},
		{"Malformed JSON", `{"service_id":`, "INVALID_INPUT"},
		{"Wrong type", `{"service_id":"one","name":"X"}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, f.router, http.MethodPut, "/helpers/me", tt.body, &bob)
			requireStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}
}

func photoRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/helpers/me/photo", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHelperPhotoUpload(t *testing.T) {
	f := newBookingFixture(t, true)
	plumber := testutil.ServiceByName(t, f.db, "Plumber")
	png := append(utils.PNGSignature(), []byte("image-data")...)

	send := func(req *http.Request, caller models.VerifiedCaller) *httptest.ResponseRecorder {
		middleware.SetCallerHeaders(req.Header, caller)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	// no helper profile yet
	w := send(photoRequest(t, controllers.PhotoFormField, "me.png", png), bob)
	requireStatus(t, w, http.StatusNotFound)

	w = performRequest(t, f.router, http.MethodPut, "/helpers/me", gin.H{"service_id": plumber.ID, "name": "Plumber Pro"}, &bob)
	requireStatus(t, w, http.StatusOK)

	w = send(photoRequest(t, controllers.PhotoFormField, "me.png", png), bob)
	requireStatus(t, w, http.StatusOK)
	helper := decode(t, w)["helper"].(map[string]interface{})
	assert.Contains(t, helper["photo_url"], "mock=true")
	assert.Len(t, f.store.Files(), 1)

	w = send(photoRequest(t, controllers.PhotoFormField, "again.png", png), bob)
	requireStatus(t, w, http.StatusOK)
	require.Len(t, f.store.Files(), 1, "replacing a photo removes the old object")
	for key := range f.store.Files() {
		assert.Contains(t, key, "_again.png")
	}

	w = send(photoRequest(t, "photo", "me.png", png), bob)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "MISSING_FIELDS", errorCode(t, w))

	w = send(photoRequest(t, controllers.PhotoFormField, "me.png", []byte("not a png at all")), bob)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestHelperPhotoRouteNotMountedWithoutStorage(t *testing.T) {
	f := newBookingFixture(t, false)

	req := photoRequest(t, controllers.PhotoFormField, "me.png", utils.PNGSignature())
	middleware.SetCallerHeaders(req.Header, bob)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListings(t *testing.T) {
	f := newBookingFixture(t, false)
	plumber := testutil.ServiceByName(t, f.db, "Plumber")
	cleaner := testutil.ServiceByName(t, f.db, "Cleaner")

	w := performRequest(t, f.router, http.MethodPost, "/listings", gin.H{
		"service_id":  plumber.ID,
		"title":       "Emergency leak repair",
		"price_cents": 5000,
	}, &bob)
	requireStatus(t, w, http.StatusCreated)
	listing := decode(t, w)["listing"].(map[string]interface{})
	assert.Equal(t, "Emergency leak repair", listing["title"])

	tests := []struct {
		name           string
		caller         models.VerifiedCaller
		body           interface{}
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "User without helper profile",
			caller:         alice,
			body:           gin.H{"service_id": plumber.ID, "title": "Help", "price_cents": 100},
			expectedStatus: http.StatusForbidden,
			expectedCode:   "FORBIDDEN",
		},
		{
			name:           "Service differs from helper's",
			caller:         bob,
			body:           gin.H{"service_id": cleaner.ID, "title": "Tidy up", "price_cents": 100},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "INVALID_REFERENCE",
		},
		{
			name:           "Non-positive price",
			caller:         bob,
			body:           gin.H{"service_id": plumber.ID, "title": "Free", "price_cents": 0},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_FIELDS",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, f.router, http.MethodPost, "/listings", tt.body, &tt.caller)
			requireStatus(t, w, tt.expectedStatus)
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}

	w = performRequest(t, f.router, http.MethodGet, fmt.Sprintf("/listings?service_id=%d", plumber.ID), nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode(t, w)["listings"], 1)

	w = performRequest(t, f.router, http.MethodGet, fmt.Sprintf("/listings?service_id=%d", cleaner.ID), nil, nil)
	requireStatus(t, w, http.StatusOK)
	assert.Len(t, decode(t, w)["listings"], 0)

	w = performRequest(t, f.router, http.MethodGet, "/listings?limit=-1", nil, nil)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}

func TestBookings(t *testing.T) {
	f := newBookingFixture(t, false)
	plumber := testutil.ServiceByName(t, f.db, "Plumber")
	proA := testutil.HelperByName(t, f.db, "Plumber Pro A")
	carpenterPro := testutil.HelperByName(t, f.db, "Carpenter Pro A")

	w := performRequest(t, f.router, http.MethodPost, "/bookings", gin.H{
		"service_id":   plumber.ID,
		"helper_id":    proA.ID,
		"scheduled_at": "2026-11-01T10:00:00Z",
		"notes":        "leak",
	}, &alice)
	requireStatus(t, w, http.StatusCreated)
	booking := decode(t, w)["booking"].(map[string]interface{})
	assert.Equal(t, models.BookingConfirmed, booking["status"])
	assert.Equal(t, "2026-11-01T10:00:00Z", booking["scheduled_at"])
	bookingID := uint(booking["id"].(float64))

	rejects := []struct {
		name         string
		body         interface{}
		expectedCode string
	}{
		{
			name:         "Helper from another service",
			body:         gin.H{"service_id": plumber.ID, "helper_id": carpenterPro.ID, "scheduled_at": "2026-11-01T10:00:00Z"},
			expectedCode: "INVALID_REFERENCE",
		},
		{
			name:         "Missing schedule",
			body:         gin.H{"service_id": plumber.ID, "helper_id": proA.ID},
			expectedCode: "MISSING_FIELDS",
		},
		{
			name:         "Unparsable schedule",
			body:         gin.H{"service_id": plumber.ID, "helper_id": proA.ID, "scheduled_at": "tomorrow"},
			expectedCode: "INVALID_INPUT",
		},
	}
	for _, tt := range rejects {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, f.router, http.MethodPost, "/bookings", tt.body, &alice)
			requireStatus(t, w, http.StatusBadRequest)
			assert.Equal(t, tt.expectedCode, errorCode(t, w))
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	w = performRequest(t, f.router, http.MethodGet, "/bookings", nil, &alice)
	requireStatus(t, w, http.StatusOK)
	list := decode(t, w)["bookings"].([]interface{})
	require.Len(t, list, 1)
	row := list[0].(map[string]interface{})
	assert.Equal(t, "Plumber", row["service_name"])
	assert.Equal(t, "Plumber Pro A", row["helper_name"])
	assert.Equal(t, "leak", row["notes"])

	cancelPath := fmt.Sprintf("/bookings/%d/cancel", bookingID)

	w = performRequest(t, f.router, http.MethodPost, cancelPath, nil, &mallet)
	requireStatus(t, w, http.StatusNotFound)

	for i := 0; i < 2; i++ {
		w = performRequest(t, f.router, http.MethodPost, cancelPath, nil, &alice)
		requireStatus(t, w, http.StatusOK)
		assert.Equal(t, models.BookingCancelled, decode(t, w)["booking"].(map[string]interface{})["status"])
	}

	w = performRequest(t, f.router, http.MethodPost, "/bookings/0/cancel", nil, &alice)
	requireStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
}
