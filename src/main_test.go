package main

import (
	"cbe/src/db"
	"cbe/src/models"
	"cbe/src/types"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB    *gorm.DB
	Token string
}

var (
	dbi        *gorm.DB
	testJWTKey = []byte("secret")
)

const whSecret = "whsec_test"

// authMiddleware mirrors the production admin guard with a fixed test key.
func authMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return testJWTKey, nil
	})
	if err != nil || !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("admin", claims.Subject)
	ctx.Set("email", claims.Email)
	ctx.Set("role", claims.Role)
}

func generateTestJWT(email string) (string, error) {
	claims := types.Claims{
		Email: email,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(testJWTKey)
}

func (s *TestSuite) SetupSuite() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("isodate", isoDateValidatorFunc)
	}
	os.Setenv("BANCARD_WEBHOOK_SECRET", whSecret)

	dir, err := os.MkdirTemp("", "cbe-test")
	if err != nil {
		log.Fatalf("could not create temp dir: %s", err.Error())
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(dir, "test.db"))
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("could not open test database: %s", err.Error())
	}
	if err := d.AutoMigrate(
		&models.Unit{},
		&models.BlockedDate{},
		&models.SyncRun{},
		&models.BookingRequest{},
		&models.Payment{},
	); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	db.NewDB(d)
	s.DB = d
	dbi = d

	token, err := generateTestJWT("admin@example.com")
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	s.Token = token
}

func (s *TestSuite) TearDownSuite() {
	inner, err := s.DB.DB()
	if err != nil {
		log.Printf("Error accessing inner db instance: %s\n", err.Error())
		return
	}
	inner.Close()
}

func (s *TestSuite) createUnit(rate float64) *models.Unit {
	unit := models.Unit{
		Name:        "Garden Loft",
		NightlyRate: rate,
		CalendarURL: "http://feeds.local/garden.ics",
	}
	if err := dbi.Create(&unit).Error; err != nil {
		log.Fatalf("could not create unit: %s", err.Error())
	}
	return &unit
}

func (s *TestSuite) TestPingRoute() {
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := setupRouter()
	router = maintenanceModeMiddleware(router)
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestHealthRoute() {
	router := setupRouter()
	publicRoutes(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "ok", gjson.GetBytes(body, "status").String())
}

func (s *TestSuite) TestBookingRequestRoute() {
	router := setupRouter()
	publicRoutes(router)
	unit := s.createUnit(50)

	s.Run("Should reject an invalid payload with 400", func() {
		reqBody := map[string]any{
			"unit_id":       unit.ID,
			"guest_name":    "Ana Benitez",
			"check_in_date": "03/01/2027",
		}
		raw, _ := json.Marshal(&reqBody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/booking-request", strings.NewReader(string(raw)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		body, _ := io.ReadAll(w.Body)
		assert.NotEmpty(s.T(), gjson.GetBytes(body, "error").String())
	})

	s.Run("Should create a pending request with 201", func() {
		reqBody := types.CreateBookingRequestBody{
			UnitID:       unit.ID,
			GuestName:    "Ana Benitez",
			GuestEmail:   "ana@example.com",
			GuestPhone:   "+595981123456",
			CheckInDate:  "2027-03-01",
			CheckOutDate: "2027-03-04",
		}
		raw, _ := json.Marshal(&reqBody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/booking-request", strings.NewReader(string(raw)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		body, _ := io.ReadAll(w.Body)
		assert.Equal(s.T(), "pending", gjson.GetBytes(body, "data.status").String())
		assert.Equal(s.T(), float64(150), gjson.GetBytes(body, "data.total_price_usd").Float())
	})
}

func (s *TestSuite) TestAdminRoutesRequireToken() {
	router := setupRouter()
	authorized := router.Group(apiPrefix + "/admin")
	authorized.Use(authMiddleware)
	bookingAdminHandlers(authorized)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/admin/booking-requests", nil)
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 401, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/v1/admin/booking-requests", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	router.ServeHTTP(w, req)
	assert.Equal(s.T(), 200, w.Code)
}

func (s *TestSuite) TestUnitAdminRoutes() {
	router := setupRouter()
	authorized := router.Group(apiPrefix + "/admin")
	authorized.Use(authMiddleware)
	unitAdminHandlers(authorized)

	var unitID int64
	s.Run("Should create a unit with image URLs", func() {
		reqBody := types.CreateUnitRequestBody{
			Name:        "Rooftop Suite",
			NightlyRate: 120,
			CalendarURL: "http://feeds.local/rooftop.ics",
			ImageURLs:   []string{"http://img.local/1.jpg", "http://img.local/2.jpg"},
		}
		raw, _ := json.Marshal(&reqBody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/admin/units", strings.NewReader(string(raw)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		body, _ := io.ReadAll(w.Body)
		assert.Len(s.T(), gjson.GetBytes(body, "data.image_urls").Array(), 2)
		unitID = gjson.GetBytes(body, "data.id").Int()
		assert.Greater(s.T(), unitID, int64(0))
	})

	s.Run("Should replace image URLs on update", func() {
		reqBody := types.UpdateUnitRequestBody{
			ImageURLs: []string{"http://img.local/3.jpg"},
		}
		raw, _ := json.Marshal(&reqBody)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("PUT", fmt.Sprintf("/api/v1/admin/units/%d", unitID), strings.NewReader(string(raw)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)

		var stored models.Unit
		assert.Nil(s.T(), dbi.First(&stored, unitID).Error)
		assert.Equal(s.T(), types.JSONBArray{"http://img.local/3.jpg"}, stored.ImageURLs)
	})
}

func (s *TestSuite) TestManualSyncSurvivesDisconnect() {
	router := setupRouter()
	authorized := router.Group(apiPrefix + "/admin")
	authorized.Use(authMiddleware)
	syncAdminHandlers(authorized)

	stayStart := time.Now().UTC().AddDate(0, 1, 0).Truncate(24 * time.Hour)
	feed := fmt.Sprintf(`BEGIN:VCALENDAR
BEGIN:VEVENT
UID:ev-1
SUMMARY:Reserved
DTSTART;VALUE=DATE:%s
DTEND;VALUE=DATE:%s
END:VEVENT
END:VCALENDAR
`, stayStart.Format("20060102"), stayStart.AddDate(0, 0, 2).Format("20060102"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feed)
	}))
	defer srv.Close()

	unit := models.Unit{Name: "Lake Cabin", NightlyRate: 90, CalendarURL: srv.URL}
	assert.Nil(s.T(), dbi.Create(&unit).Error)

	// The admin client hangs up immediately; the sync still completes.
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	raw, _ := json.Marshal(types.ManualSyncRequestBody{UnitID: &unit.ID})
	w := httptest.NewRecorder()
	req, _ := http.NewRequestWithContext(canceled, "POST", "/api/v1/admin/sync/manual", strings.NewReader(string(raw)))
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Equal(s.T(), "success", gjson.GetBytes(body, "data.status").String())

	var count int64
	assert.Nil(s.T(), dbi.Model(&models.BlockedDate{}).Where("unit_id = ?", unit.ID).Count(&count).Error)
	assert.Equal(s.T(), int64(2), count)
}

func (s *TestSuite) TestBancardWebhook() {
	router := setupRouter()
	publicRoutes(router)
	bancardWebhookRoute(router)

	unit := s.createUnit(80)
	booking := models.BookingRequest{
		UnitID:               unit.ID,
		GuestName:            "Luis Ortiz",
		GuestEmail:           "luis@example.com",
		CheckInDate:          "2027-04-01",
		CheckOutDate:         "2027-04-03",
		TotalPrice:           160,
		Status:               types.BOOKING_PENDING,
		LastSyncAtSubmission: time.Now().UTC(),
	}
	assert.Nil(s.T(), dbi.Create(&booking).Error)
	payment := models.Payment{
		BookingID: booking.ID,
		Amount:    booking.TotalPrice,
		Status:    types.PAYMENT_PENDING,
	}
	assert.Nil(s.T(), dbi.Create(&payment).Error)

	payload, _ := json.Marshal(map[string]any{
		"external_transaction_id": payment.ID.String(),
		"status":                  "completed",
	})
	mac := hmac.New(sha256.New, []byte(whSecret))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	s.Run("Should reject missing and tampered signatures", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/bancard", strings.NewReader(string(payload)))
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 401, w.Code)

		tampered := strings.Replace(string(payload), "completed", "failed", 1)
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("POST", "/api/v1/webhook/bancard", strings.NewReader(tampered))
		req.Header.Set("X-Bancard-Signature", signature)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 401, w.Code)

		// Nothing moved.
		var stored models.Payment
		assert.Nil(s.T(), dbi.First(&stored, "id = ?", payment.ID).Error)
		assert.Equal(s.T(), types.PAYMENT_PENDING, stored.Status)
	})

	s.Run("Should apply a signed completion", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/webhook/bancard", strings.NewReader(string(payload)))
		req.Header.Set("X-Bancard-Signature", signature)
		router.ServeHTTP(w, req)
		assert.Equal(s.T(), 200, w.Code)

		var stored models.Payment
		assert.Nil(s.T(), dbi.First(&stored, "id = ?", payment.ID).Error)
		assert.Equal(s.T(), types.PAYMENT_COMPLETED, stored.Status)

		var storedBooking models.BookingRequest
		assert.Nil(s.T(), dbi.First(&storedBooking, booking.ID).Error)
		assert.Equal(s.T(), types.BOOKING_PAID, storedBooking.Status)
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

