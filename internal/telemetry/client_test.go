package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetReadings(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sensors/7/readings", r.URL.Path)
		assert.Equal(t, "24", r.URL.Query().Get("hours"))
		json.NewEncoder(w).Encode([]Reading{
			{ID: 1, Value: 1.2, Unit: "mm", Timestamp: "2024-03-10T14:00:00Z"},
			{ID: 2, Value: 1.4, Unit: "mm", Timestamp: "2024-03-10T15:00:00Z", IsAlert: true},
		})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, nil)
	readings, err := client.GetReadings(context.Background(), 7, 24)

	assert.NoError(t, err)
	assert.Len(t, readings, 2)
	assert.Equal(t, 1.4, readings[1].Value)
	assert.True(t, readings[1].IsAlert)
}

func TestGetApproximationDegreeParam(t *testing.T) {
	var gotDegree []string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		degree, present := r.URL.Query()["degree"]
		if present {
			gotDegree = append(gotDegree, degree[0])
		} else {
			gotDegree = append(gotDegree, "<omitted>")
		}
		json.NewEncoder(w).Encode(ApproximationResponse{})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, nil)

	degree := 3
	_, err := client.GetApproximation(context.Background(), 7, 24, &degree)
	assert.NoError(t, err)

	// nil degree signals "let the backend choose": the param must be absent,
	// not empty.
	_, err = client.GetApproximation(context.Background(), 7, 24, nil)
	assert.NoError(t, err)

	assert.Equal(t, []string{"3", "<omitted>"}, gotDegree)
}

func TestGetApproximationErrorVariant(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// error inside a 200 body is a first-class outcome
		w.Write([]byte(`{"approximation_data": {"error": "need at least 3 data points, found: 2"}, "trend_analysis": null}`))
	}))
	defer backend.Close()

	client := NewClient(backend.URL, nil)
	resp, err := client.GetApproximation(context.Background(), 7, 24, nil)

	assert.NoError(t, err)
	assert.Equal(t, "need at least 3 data points, found: 2", resp.ApproximationData.Error)
	assert.Nil(t, resp.TrendAnalysis)
}

func TestGetSensorNotFound(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "sensor not found"}`, http.StatusNotFound)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, nil)
	_, err := client.GetSensor(context.Background(), 99)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServerErrorSurfaces(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer backend.Close()

	client := NewClient(backend.URL, nil)
	_, err := client.ListBuildings(context.Background())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestListSensorsBuildingFilter(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("building_id"))
		json.NewEncoder(w).Encode([]Sensor{{ID: 4, Name: "Crack-4", Type: SensorCrack, BuildingID: 2, Status: StatusActive}})
	}))
	defer backend.Close()

	client := NewClient(backend.URL, nil)
	buildingID := 2
	sensors, err := client.ListSensors(context.Background(), &buildingID)

	assert.NoError(t, err)
	assert.Len(t, sensors, 1)
	assert.Equal(t, SensorCrack, sensors[0].Type)
}
