package telemetry

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Sensor type vocabulary used by the monitoring backend.
const (
	SensorInclinometer = "inclinometer"
	SensorStrainGauge  = "strain_gauge"
	SensorAccelerom    = "accelerometer"
	SensorCrack        = "crack_sensor"
	SensorTemperature  = "temperature_sensor"
	SensorOther        = "other"
)

// Sensor operational status values.
const (
	StatusActive      = "active"
	StatusMaintenance = "maintenance"
)

// Building is a building record as served by the backend. The detail
// endpoint also carries the sensors installed in it.
type Building struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Address          string   `json:"address"`
	Floors           *int     `json:"floors,omitempty"`
	ConstructionYear *int     `json:"construction_year,omitempty"`
	BuildingType     string   `json:"building_type,omitempty"`
	Sensors          []Sensor `json:"sensors,omitempty"`
}

// Sensor is a sensor record. BuildingID is a weak reference resolved by a
// separate lookup; LastReading may be absent.
type Sensor struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	BuildingID  int      `json:"building_id"`
	Location    string   `json:"location"`
	Floor       *int     `json:"floor,omitempty"`
	PositionX   *float64 `json:"position_x,omitempty"`
	PositionY   *float64 `json:"position_y,omitempty"`
	Status      string   `json:"status"`
	LastReading *Reading `json:"last_reading,omitempty"`
}

// Reading is one timestamped measurement. Timestamp stays a raw string at
// this layer; normalization happens once, downstream.
type Reading struct {
	ID        int     `json:"id,omitempty"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp"`
	IsAlert   bool    `json:"is_alert"`
}

// Alert is one active alert row from the alerts feed.
type Alert struct {
	ID         int     `json:"id"`
	SensorID   int     `json:"sensor_id"`
	SensorName string  `json:"sensor_name"`
	BuildingID *int    `json:"building_id,omitempty"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Timestamp  string  `json:"timestamp"`
}

// CurvePoint is one fitted-curve sample.
type CurvePoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// ApproximationPayload is the heterogeneous curve-fit payload. A non-empty
// Error means no curve is available and every other field is untrusted.
type ApproximationPayload struct {
	Error          string          `json:"error,omitempty"`
	Approximation  []CurvePoint    `json:"approximation,omitempty"`
	QualityMetrics *QualityMetrics `json:"quality_metrics,omitempty"`
}

// QualityMetrics is the raw goodness-of-fit block. Old payload generations
// report r_squared, new ones quality_score; both live on 0..1. Never read
// these fields directly — go through NormalizeMetrics.
type QualityMetrics struct {
	QualityScore      *float64 `json:"quality_score,omitempty"`
	RSquared          *float64 `json:"r_squared,omitempty"`
	Method            string   `json:"method,omitempty"`
	Degree            Degree   `json:"degree,omitempty"`
	NumOriginalPoints int      `json:"num_original_points,omitempty"`
	NumTrainingPoints *int     `json:"num_training_points,omitempty"`
	RequestedHours    *int     `json:"requested_hours,omitempty"`
}

// TrendAnalysis is the backend's directional classification of the window.
type TrendAnalysis struct {
	Trend         string   `json:"trend"`
	Description   string   `json:"description"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	StartValue    *float64 `json:"start_value,omitempty"`
	EndValue      *float64 `json:"end_value,omitempty"`
}

// ApproximationResponse is the combined approximation endpoint body.
type ApproximationResponse struct {
	ApproximationData ApproximationPayload `json:"approximation_data"`
	TrendAnalysis     *TrendAnalysis       `json:"trend_analysis,omitempty"`
}

// Degree is a polynomial degree that arrives as a JSON number in current
// payloads and as the string "unknown" in legacy ones.
type Degree struct {
	Value int
	Known bool
}

// UnmarshalJSON accepts a number, a numeric string, or anything else as
// unknown. Decode failures never surface past this boundary.
func (d *Degree) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Degree{}
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Degree{Value: n, Known: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(s); err == nil {
			*d = Degree{Value: n, Known: true}
			return nil
		}
	}
	*d = Degree{}
	return nil
}

// MarshalJSON mirrors the wire convention: number when known, "unknown"
// otherwise.
func (d Degree) MarshalJSON() ([]byte, error) {
	if d.Known {
		return json.Marshal(d.Value)
	}
	return json.Marshal("unknown")
}

// String renders the degree for labels.
func (d Degree) String() string {
	if d.Known {
		return strconv.Itoa(d.Value)
	}
	return "unknown"
}
