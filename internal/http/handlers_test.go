package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/config"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/refresh"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/ws"
)

func fakeBackendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/buildings":
			json.NewEncoder(w).Encode([]telemetry.Building{{ID: 1, Name: "Main Tower", Address: "1 Main St"}})
		case "/buildings/1":
			json.NewEncoder(w).Encode(telemetry.Building{
				ID: 1, Name: "Main Tower", Address: "1 Main St",
				Sensors: []telemetry.Sensor{{ID: 1, Name: "Incline-1", Type: "inclinometer", BuildingID: 1, Status: "active"}},
			})
		case "/sensors":
			json.NewEncoder(w).Encode([]telemetry.Sensor{{ID: 1, Name: "Incline-1", Type: "inclinometer", BuildingID: 1, Status: "active"}})
		case "/sensors/1":
			json.NewEncoder(w).Encode(telemetry.Sensor{
				ID: 1, Name: "Incline-1", Type: "inclinometer", BuildingID: 1, Status: "active",
				LastReading: &telemetry.Reading{Value: 1.2, Unit: "mm", Timestamp: "2024-03-10T14:00:00Z"},
			})
		case "/sensors/1/readings":
			json.NewEncoder(w).Encode([]telemetry.Reading{
				{ID: 1, Value: 10, Unit: "mm", Timestamp: "2024-03-10T14:00:00Z"},
			})
		case "/sensors/1/approximation":
			score := 0.92
			json.NewEncoder(w).Encode(telemetry.ApproximationResponse{
				ApproximationData: telemetry.ApproximationPayload{
					Approximation: []telemetry.CurvePoint{{Timestamp: "2024-03-10T14:00:00Z", Value: 10.1}},
					QualityMetrics: &telemetry.QualityMetrics{
						QualityScore: &score,
						Method:       "polynomial",
						Degree:       telemetry.Degree{Value: 3, Known: true},
					},
				},
				TrendAnalysis: &telemetry.TrendAnalysis{Trend: "stable", Description: "Stable readings"},
			})
		case "/alerts":
			json.NewEncoder(w).Encode([]telemetry.Alert{
				{ID: 9, SensorID: 1, SensorName: "Incline-1", Value: 4.2, Unit: "mm", Timestamp: "2024-03-10T14:00:00Z"},
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func newTestServer(t *testing.T, cfg config.Config) *Server {
	backend := httptest.NewServer(fakeBackendHandler())
	t.Cleanup(backend.Close)

	client := telemetry.NewClient(backend.URL, backend.Client())
	manager := refresh.NewManager(client, nil, refresh.Defaults{TimeRangeHours: 24, CycleTimeout: 5 * time.Second})
	t.Cleanup(manager.Shutdown)

	hub := ws.NewHub()
	go hub.Run()

	return New(cfg, client, nil, manager, hub)
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, config.Config{})
	rec := doRequest(s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListBuildings(t *testing.T) {
	s := newTestServer(t, config.Config{})
	rec := doRequest(s, http.MethodGet, "/api/v1/buildings", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Buildings []telemetry.Building `json:"buildings"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Buildings, 1)
	assert.Equal(t, "Main Tower", body.Buildings[0].Name)
}

func TestGetBuildingNotFound(t *testing.T) {
	s := newTestServer(t, config.Config{})
	rec := doRequest(s, http.MethodGet, "/api/v1/buildings/42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Building not found.")
}

func TestInvalidPathID(t *testing.T) {
	s := newTestServer(t, config.Config{})
	rec := doRequest(s, http.MethodGet, "/api/v1/sensors/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertsInvalidHours(t *testing.T) {
	s := newTestServer(t, config.Config{})
	rec := doRequest(s, http.MethodGet, "/api/v1/alerts?hours=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSensorViewReachesReady(t *testing.T) {
	s := newTestServer(t, config.Config{})

	var view refresh.View
	assert.Eventually(t, func() bool {
		rec := doRequest(s, http.MethodGet, "/api/v1/sensors/1/view", "")
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			return false
		}
		return view.State == refresh.StateReady
	}, 3*time.Second, 20*time.Millisecond)

	assert.NotNil(t, view.Snapshot)
	assert.Equal(t, "excellent", string(view.Snapshot.Analysis.Quality.Tier))
	assert.Len(t, view.Snapshot.Chart.Series, 2)
}

func TestSensorViewNotFound(t *testing.T) {
	s := newTestServer(t, config.Config{})

	assert.Eventually(t, func() bool {
		rec := doRequest(s, http.MethodGet, "/api/v1/sensors/9/view", "")
		var view refresh.View
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			return false
		}
		return view.State == refresh.StateNotFound
	}, 3*time.Second, 20*time.Millisecond)
}

func TestViewParamsUpdate(t *testing.T) {
	s := newTestServer(t, config.Config{})

	rec := doRequest(s, http.MethodPut, "/api/v1/sensors/1/view/params",
		`{"time_range_hours": 48, "polynomial_degree": "3"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var view refresh.View
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 48, view.Params.TimeRangeHours)
	assert.Equal(t, 3, view.Params.PolynomialDegree)
}

func TestViewParamsRejectsBadValues(t *testing.T) {
	s := newTestServer(t, config.Config{})

	rec := doRequest(s, http.MethodPut, "/api/v1/sensors/1/view/params", `{"time_range_hours": 13}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPut, "/api/v1/sensors/1/view/params", `{"polynomial_degree": "-2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(s, http.MethodPut, "/api/v1/sensors/1/view/params", `{"auto_refresh_enabled": true, "auto_refresh_interval_seconds": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewRefreshAccepted(t *testing.T) {
	s := newTestServer(t, config.Config{})
	rec := doRequest(s, http.MethodPost, "/api/v1/sensors/1/view/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestBearerAuth(t *testing.T) {
	s := newTestServer(t, config.Config{BearerToken: "secret"})

	rec := doRequest(s, http.MethodGet, "/api/v1/buildings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/buildings", nil)
	req.Header.Set("Authorization", "Bearer secret")
	out := httptest.NewRecorder()
	s.Engine().ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)
}
