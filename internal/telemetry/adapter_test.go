package telemetry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestNormalizeMetricsNilInput(t *testing.T) {
	m := NormalizeMetrics(nil)

	assert.Equal(t, 0.0, m.Score)
	assert.Equal(t, MethodPolynomial, m.Method)
	assert.False(t, m.Degree.Known)
	assert.Equal(t, 0, m.OriginalPoints)
	assert.Equal(t, 0, m.TrainingPoints)
	assert.Equal(t, 1, m.RequestedHours)
}

func TestNormalizeMetricsPrefersQualityScore(t *testing.T) {
	m := NormalizeMetrics(&QualityMetrics{
		QualityScore: floatPtr(0.91),
		RSquared:     floatPtr(0.42),
	})
	assert.Equal(t, 0.91, m.Score)
}

func TestNormalizeMetricsLegacyRSquared(t *testing.T) {
	m := NormalizeMetrics(&QualityMetrics{RSquared: floatPtr(0.55)})
	assert.Equal(t, 0.55, m.Score)
}

func TestNormalizeMetricsTrainingPointsFallback(t *testing.T) {
	m := NormalizeMetrics(&QualityMetrics{NumOriginalPoints: 40})
	assert.Equal(t, 40, m.TrainingPoints)

	m = NormalizeMetrics(&QualityMetrics{
		NumOriginalPoints: 40,
		NumTrainingPoints: intPtr(55),
	})
	// May exceed original points; informational only, passed through as-is.
	assert.Equal(t, 55, m.TrainingPoints)
}

func TestNormalizeMetricsRequestedHoursDefault(t *testing.T) {
	m := NormalizeMetrics(&QualityMetrics{})
	assert.Equal(t, 1, m.RequestedHours)

	m = NormalizeMetrics(&QualityMetrics{RequestedHours: intPtr(48)})
	assert.Equal(t, 48, m.RequestedHours)
}

func TestDegreeUnmarshal(t *testing.T) {
	var q QualityMetrics

	assert.NoError(t, json.Unmarshal([]byte(`{"degree": 3}`), &q))
	assert.True(t, q.Degree.Known)
	assert.Equal(t, 3, q.Degree.Value)
	assert.Equal(t, "3", q.Degree.String())

	assert.NoError(t, json.Unmarshal([]byte(`{"degree": "unknown"}`), &q))
	assert.False(t, q.Degree.Known)
	assert.Equal(t, "unknown", q.Degree.String())

	assert.NoError(t, json.Unmarshal([]byte(`{"degree": "4"}`), &q))
	assert.True(t, q.Degree.Known)
	assert.Equal(t, 4, q.Degree.Value)

	assert.NoError(t, json.Unmarshal([]byte(`{"degree": null}`), &q))
	assert.False(t, q.Degree.Known)
}

func TestDegreeMarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(Degree{Value: 3, Known: true})
	assert.NoError(t, err)
	assert.Equal(t, "3", string(data))

	data, err = json.Marshal(Degree{})
	assert.NoError(t, err)
	assert.Equal(t, `"unknown"`, string(data))
}
