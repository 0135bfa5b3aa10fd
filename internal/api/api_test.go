package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelperf/server/config"
	"hotelperf/server/internal/database"
	"hotelperf/server/internal/metrics"
	"hotelperf/server/internal/models"
	"hotelperf/server/internal/processor"
	"hotelperf/server/internal/queue"
	"hotelperf/server/internal/scheduler"
	"hotelperf/server/internal/sentiment"
	"hotelperf/server/internal/service"
)

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) RunNow() error {
	return m.Called().Error(0)
}

func (m *MockScraper) Status() scheduler.Status {
	return m.Called().Get(0).(scheduler.Status)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Push(batch *models.ReviewBatch) error {
	return m.Called(batch).Error(0)
}

type fixedStats processor.Stats

func (s fixedStats) Stats() processor.Stats { return processor.Stats(s) }

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, opts ...Option) *gin.Engine {
	t.Helper()

	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	lexicon, err := config.LoadLexicon("")
	require.NoError(t, err)

	m, err := metrics.NewMetrics()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	svc := service.NewService(db, sentiment.NewClassifier(lexicon), service.Options{
		ReportCacheTTL: time.Minute,
		Metrics:        m,
		Logger:         logger,
	})
	return NewRouter(NewHandler(svc, logger, opts...), m, []string{"http://localhost:3000"})
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func createHotel(t *testing.T, router *gin.Engine, name string) models.Hotel {
	t.Helper()
	w := doRequest(t, router, http.MethodPost, "/api/hotels", map[string]interface{}{
		"hotel_name": name,
		"city":       "Bandung",
		"country":    "Indonesia",
		"agoda_link": "https://agoda.test/" + name,
		"latitude":   -6.9,
		"longitude":  107.6,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var hotel models.Hotel
	decode(t, w, &hotel)
	return hotel
}

func TestHealthAndRequestID(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = doRequest(t, router, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHotelEndpoints(t *testing.T) {
	router := setupRouter(t)
	hotel := createHotel(t, router, "Mawar")
	createHotel(t, router, "Melati")

	w := doRequest(t, router, http.MethodPost, "/api/hotels", map[string]interface{}{"city": "Bandung"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/hotels/%d", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/hotels/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/hotels/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/hotels?q=melati", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page models.Page[models.Hotel]
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 15, page.Limit)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Melati", page.Data[0].HotelName)

	w = doRequest(t, router, http.MethodGet, "/api/hotels?page=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/hotels/dropdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var options []models.HotelOption
	decode(t, w, &options)
	assert.Len(t, options, 2)

	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/hotels/%d", hotel.ID), map[string]interface{}{"city": "Jakarta"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Hotel
	decode(t, w, &updated)
	assert.Equal(t, "Jakarta", updated.City)
	assert.Equal(t, "Mawar", updated.HotelName)

	w = doRequest(t, router, http.MethodGet, "/api/hotels/geojson", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fc map[string]interface{}
	decode(t, w, &fc)
	assert.Equal(t, "FeatureCollection", fc["type"])
	assert.Len(t, fc["features"], 2)

	w = doRequest(t, router, http.MethodPost, "/api/hotels/geocode", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/hotels/%d", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted models.HotelDeleteResult
	decode(t, w, &deleted)
	assert.Equal(t, int64(1), deleted.HotelDeleted)

	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/hotels/%d", hotel.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevenueEndpoints(t *testing.T) {
	router := setupRouter(t)
	hotel := createHotel(t, router, "Mawar")

	w := doRequest(t, router, http.MethodPost, "/api/revenues", map[string]interface{}{
		"hotel_id":       hotel.ID,
		"date":           "01-03-2024",
		"room_lodging":   1000000,
		"room_available": 10,
		"rooms_occupied": 8,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var record models.RevenueRecord
	decode(t, w, &record)
	assert.Equal(t, 1210000.0, record.GrandTotalRevenue)

	tests := []struct {
		name string
		body map[string]interface{}
		code int
	}{
		{"missing hotel", map[string]interface{}{"date": "01-03-2024"}, http.StatusBadRequest},
		{"unknown hotel", map[string]interface{}{"hotel_id": 999, "date": "01-03-2024"}, http.StatusNotFound},
		{"missing date", map[string]interface{}{"hotel_id": hotel.ID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/revenues", tt.body)
			assert.Equal(t, tt.code, w.Code)
			var body map[string]string
			decode(t, w, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	w = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/revenues/%d", record.ID), map[string]interface{}{"tips": 36})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &record)
	assert.Equal(t, 1210036.0, record.GrandTotalRevenue)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/hotels/%d/revenues", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []models.RevenueRecord
	decode(t, w, &records)
	assert.Len(t, records, 1)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/diagram/revenue/%d", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var diagram models.RevenueDiagram
	decode(t, w, &diagram)
	assert.Equal(t, []string{"01-03-2024"}, diagram.Dates)

	w = doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/revenues/%d", record.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/revenues/%d", record.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviewEndpointsAndMonthlyReport(t *testing.T) {
	router := setupRouter(t)
	hotel := createHotel(t, router, "Mawar")

	w := doRequest(t, router, http.MethodPost, "/api/reviews/ingest", map[string]interface{}{
		"hotel_id": hotel.ID,
		"source":   "agoda",
		"reviews": []map[string]interface{}{
			{"author": "Budi", "comment": "kamar bersih", "timestamp": "05-03-2024", "rating": 9},
			{"author": "Sari", "comment": "kamar kotor", "timestamp": "06-03-2024", "rating": 3},
			{"author": "Sari", "comment": "kamar kotor", "timestamp": "06-03-2024", "rating": 3},
			{"author": "Andi", "comment": "", "timestamp": "07-03-2024"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.IngestResult
	decode(t, w, &result)
	assert.Equal(t, 4, result.Received)
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Invalid)

	w = doRequest(t, router, http.MethodPost, "/api/reviews/ingest", map[string]interface{}{"source": "agoda"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/hotels/%d/reviews?limit=1", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reviews models.Page[models.Review]
	decode(t, w, &reviews)
	assert.Equal(t, int64(2), reviews.Total)
	require.Len(t, reviews.Data, 1)
	require.NotNil(t, reviews.Data[0].Sentiment)

	w = doRequest(t, router, http.MethodGet, "/api/hotels/999/reviews", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/diagram/reviews/%d", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var diagram models.ReviewSentimentDiagram
	decode(t, w, &diagram)
	assert.Equal(t, []int{1, 0}, diagram.Positive)
	assert.Equal(t, []int{0, 1}, diagram.Negative)

	w = doRequest(t, router, http.MethodGet, fmt.Sprintf("/api/diagram/monthly?hotel_ids=%d&year=2024", hotel.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report models.MonthlyReport
	decode(t, w, &report)
	assert.Len(t, report.Months, 12)
	assert.Equal(t, 2, report.ReviewVolume[2])
	assert.Equal(t, 2, report.Summary.TotalReviews)

	w = doRequest(t, router, http.MethodGet, "/api/diagram/monthly?hotel_ids=1,x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(t, router, http.MethodGet, "/api/diagram/monthly?year=24", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/sentiments/classify", map[string]string{"text": "pelayanan tidak ramah"})
	require.Equal(t, http.StatusOK, w.Code)
	var classified sentiment.Result
	decode(t, w, &classified)
	assert.Equal(t, sentiment.Negative, classified.Label)
}

func TestQueueReviews(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Push", mock.MatchedBy(func(b *models.ReviewBatch) bool { return b.HotelID == 1 && b.ID != "" })).Return(nil).Once()
	pub.On("Push", mock.Anything).Return(queue.ErrQueueFull).Once()

	router := setupRouter(t, WithPipeline(pub, fixedStats{Processed: 3, QueueLen: 1}))
	batch := map[string]interface{}{"hotel_id": 1, "reviews": []map[string]interface{}{{"comment": "bagus"}}}

	w := doRequest(t, router, http.MethodPost, "/api/reviews/queue", batch)
	require.Equal(t, http.StatusAccepted, w.Code)
	var body map[string]string
	decode(t, w, &body)
	assert.NotEmpty(t, body["batch_id"])

	w = doRequest(t, router, http.MethodPost, "/api/reviews/queue", batch)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	pub.AssertExpectations(t)

	w = doRequest(t, router, http.MethodGet, "/api/scrape/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Processor processor.Stats `json:"processor"`
	}
	decode(t, w, &status)
	assert.Equal(t, int64(3), status.Processor.Processed)
}

func TestScrapeEndpoints(t *testing.T) {
	router := setupRouter(t)
	w := doRequest(t, router, http.MethodPost, "/api/scrape/run", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	w = doRequest(t, router, http.MethodPost, "/api/reviews/queue", map[string]interface{}{"hotel_id": 1})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	scraper := new(MockScraper)
	scraper.On("RunNow").Return(nil).Once()
	scraper.On("RunNow").Return(scheduler.ErrRunInProgress).Once()
	scraper.On("Status").Return(scheduler.Status{Schedule: "0 3 * * *", Enabled: true})

	router = setupRouter(t, WithScraper(scraper))

	w = doRequest(t, router, http.MethodPost, "/api/scrape/run", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = doRequest(t, router, http.MethodPost, "/api/scrape/run", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/scrape/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Scheduler scheduler.Status `json:"scheduler"`
	}
	decode(t, w, &status)
	assert.Equal(t, "0 3 * * *", status.Scheduler.Schedule)
	scraper.AssertExpectations(t)

	w = doRequest(t, router, http.MethodGet, "/api/scrape-logs?status=running", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doRequest(t, router, http.MethodGet, "/api/scrape-logs?start_date=01-03-2025&end_date=31-03-2025", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs models.Page[models.ScrapeLog]
	decode(t, w, &logs)
	assert.Equal(t, int64(0), logs.Total)

	w = doRequest(t, router, http.MethodGet, "/api/scrape-logs/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doRequest(t, router, http.MethodDelete, "/api/scrape-logs/5", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupRouter(t)
	hotel := createHotel(t, router, "Mawar")

	w := doRequest(t, router, http.MethodPost, "/api/revenues", map[string]interface{}{"hotel_id": hotel.ID, "date": "01-03-2024"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `hotelperf_revenue_writes_total{operation="create"} 1`)
}
