package telemetry

// Metrics is the fully-defaulted view of QualityMetrics. Every field is
// present; code consuming it never branches on wire-level field absence.
type Metrics struct {
	Score          float64
	Method         string
	Degree         Degree
	OriginalPoints int
	TrainingPoints int
	RequestedHours int
}

// Fit methods the backend is known to fall back through.
const (
	MethodPolynomial = "polynomial"
	MethodSpline     = "spline"
	MethodLinear     = "linear"
)

// NormalizeMetrics resolves every optional quality field to its default:
// quality_score preferred over legacy r_squared (0 when both absent),
// method polynomial when blank, training points falling back to original
// points, requested hours falling back to 1. This is the only place that
// inspects field presence.
func NormalizeMetrics(raw *QualityMetrics) Metrics {
	m := Metrics{
		Method:         MethodPolynomial,
		RequestedHours: 1,
	}
	if raw == nil {
		return m
	}

	switch {
	case raw.QualityScore != nil:
		m.Score = *raw.QualityScore
	case raw.RSquared != nil:
		m.Score = *raw.RSquared
	}

	if raw.Method != "" {
		m.Method = raw.Method
	}
	m.Degree = raw.Degree
	m.OriginalPoints = raw.NumOriginalPoints

	if raw.NumTrainingPoints != nil {
		m.TrainingPoints = *raw.NumTrainingPoints
	} else {
		m.TrainingPoints = raw.NumOriginalPoints
	}
	if raw.RequestedHours != nil {
		m.RequestedHours = *raw.RequestedHours
	}
	return m
}
