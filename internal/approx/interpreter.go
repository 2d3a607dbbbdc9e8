// Package approx turns raw approximation payloads into the bounded
// vocabulary the dashboard renders: a quality tier, a method label, a trend
// classification and a list of advisories. Everything here is a pure
// function over its inputs.
package approx

import (
	"fmt"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
)

// Tier is the goodness-of-fit bucket for an approximation.
type Tier string

const (
	TierExcellent Tier = "excellent"
	TierGood      Tier = "good"
	TierFair      Tier = "fair"
	TierPoor      Tier = "poor"
)

// lowQualityThreshold gates the high-noise advisory. Kept equal to the Fair
// tier boundary so "below Fair" and "low quality" never disagree.
const lowQualityThreshold = 0.6

// Payload interpretation states.
const (
	StateLoading      = "loading"
	StateInsufficient = "insufficient_data"
	StateReady        = "ready"
)

// Trend icon classes.
const (
	IconUp   = "up"
	IconDown = "down"
	IconFlat = "flat"
)

// Trend badge severities.
const (
	BadgeSevere       = "severe"
	BadgeCaution      = "caution"
	BadgeInfo         = "informational"
	BadgeInfoEmphasis = "informational-emphasis"
	BadgeNominal      = "nominal"
)

// Advisory template codes.
const (
	AdviceStrongGrowth   = "strong_growth"
	AdviceStrongDecline  = "significant_decline"
	AdviceLowQuality     = "low_quality"
	AdviceFallbackMethod = "fallback_method"
)

// Quality describes the fit quality of an available approximation.
type Quality struct {
	Tier           Tier    `json:"tier"`
	Score          float64 `json:"score"`
	MethodLabel    string  `json:"method_label"`
	Degree         string  `json:"degree"`
	OriginalPoints int     `json:"original_points"`
	TrainingPoints int     `json:"training_points"`
	RequestedHours int     `json:"requested_hours"`
}

// TrendView is the renderable form of a trend classification.
type TrendView struct {
	Trend         string   `json:"trend"`
	Icon          string   `json:"icon"`
	Severity      string   `json:"severity"`
	Label         string   `json:"label"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	StartValue    *float64 `json:"start_value,omitempty"`
	EndValue      *float64 `json:"end_value,omitempty"`
}

// Advisory is one renderable advisory record. Code identifies the message
// template, Args its substitutions; Message is the rendered default text.
type Advisory struct {
	Severity string            `json:"severity"`
	Code     string            `json:"code"`
	Args     map[string]string `json:"args,omitempty"`
	Message  string            `json:"message"`
}

// Analysis is the full interpretation of one approximation payload.
type Analysis struct {
	State      string     `json:"state"`
	Message    string     `json:"message,omitempty"`
	Quality    *Quality   `json:"quality,omitempty"`
	Trend      *TrendView `json:"trend,omitempty"`
	Advisories []Advisory `json:"advisories"`
}

// TierFor buckets a quality score. Highest matching threshold wins.
func TierFor(score float64) Tier {
	switch {
	case score >= 0.9:
		return TierExcellent
	case score >= 0.8:
		return TierGood
	case score >= 0.6:
		return TierFair
	default:
		return TierPoor
	}
}

// MethodLabel renders the fit method for display.
func MethodLabel(method string, degree telemetry.Degree) string {
	switch method {
	case telemetry.MethodPolynomial:
		return fmt.Sprintf("polynomial, degree %s", degree)
	case telemetry.MethodSpline:
		return "spline interpolation"
	case telemetry.MethodLinear:
		return "linear interpolation"
	default:
		return fmt.Sprintf("%s, degree %s", method, degree)
	}
}

// Interpret maps a payload plus trend analysis into an Analysis. A nil
// payload means the fetch has not settled yet; a payload with Error set
// means the backend could not fit a curve, and its other fields are ignored
// even when present.
func Interpret(payload *telemetry.ApproximationPayload, trend *telemetry.TrendAnalysis, sensorType string) Analysis {
	if payload == nil {
		return Analysis{State: StateLoading, Advisories: []Advisory{}}
	}
	if payload.Error != "" {
		return Analysis{
			State:      StateInsufficient,
			Message:    payload.Error,
			Advisories: []Advisory{},
		}
	}

	m := telemetry.NormalizeMetrics(payload.QualityMetrics)
	quality := &Quality{
		Tier:           TierFor(m.Score),
		Score:          m.Score,
		MethodLabel:    MethodLabel(m.Method, m.Degree),
		Degree:         m.Degree.String(),
		OriginalPoints: m.OriginalPoints,
		TrainingPoints: m.TrainingPoints,
		RequestedHours: m.RequestedHours,
	}

	return Analysis{
		State:      StateReady,
		Quality:    quality,
		Trend:      trendView(trend),
		Advisories: advisories(m, trend, sensorType),
	}
}

func trendView(trend *telemetry.TrendAnalysis) *TrendView {
	if trend == nil {
		return &TrendView{
			Trend:    "",
			Icon:     IconFlat,
			Severity: BadgeNominal,
			Label:    "trend is being computed",
		}
	}

	view := &TrendView{
		Trend:         trend.Trend,
		Label:         trend.Description,
		ChangePercent: trend.ChangePercent,
		StartValue:    trend.StartValue,
		EndValue:      trend.EndValue,
	}
	switch trend.Trend {
	case "strongly_increasing":
		view.Icon, view.Severity = IconUp, BadgeSevere
	case "increasing":
		view.Icon, view.Severity = IconUp, BadgeCaution
	case "decreasing":
		view.Icon, view.Severity = IconDown, BadgeInfo
	case "strongly_decreasing":
		view.Icon, view.Severity = IconDown, BadgeInfoEmphasis
	default:
		view.Icon, view.Severity = IconFlat, BadgeNominal
	}
	if view.Label == "" {
		view.Label = "trend is being computed"
	}
	return view
}

// advisories evaluates the four independent predicates. Several may fire at
// once; none suppresses another. Order is fixed: trend warnings first, then
// data-quality notices.
func advisories(m telemetry.Metrics, trend *telemetry.TrendAnalysis, sensorType string) []Advisory {
	out := []Advisory{}

	if trend != nil && trend.Trend == "strongly_increasing" {
		out = append(out, Advisory{
			Severity: "warning",
			Code:     AdviceStrongGrowth,
			Args:     map[string]string{"sensor_type": sensorType},
			Message:  fmt.Sprintf("Strong growth in %s readings; an additional system check is recommended.", sensorType),
		})
	}
	if trend != nil && trend.Trend == "strongly_decreasing" {
		out = append(out, Advisory{
			Severity: "info",
			Code:     AdviceStrongDecline,
			Args:     map[string]string{"sensor_type": sensorType},
			Message:  fmt.Sprintf("Significant decline in %s readings; operating conditions may have changed.", sensorType),
		})
	}
	if m.Score < lowQualityThreshold {
		out = append(out, Advisory{
			Severity: "info",
			Code:     AdviceLowQuality,
			Args:     map[string]string{"score": fmt.Sprintf("%.2f", m.Score)},
			Message:  "Low approximation quality suggests noisy data; widen the analysis window or check the sensor.",
		})
	}
	if m.Method != telemetry.MethodPolynomial {
		out = append(out, Advisory{
			Severity: "info",
			Code:     AdviceFallbackMethod,
			Args:     map[string]string{"method": m.Method},
			Message:  fmt.Sprintf("Fallback %s interpolation was used; collect more data for a polynomial fit.", m.Method),
		})
	}
	return out
}
