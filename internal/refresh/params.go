package refresh

import "fmt"

// DegreeAuto is the polynomial-degree sentinel that lets the backend pick.
const DegreeAuto = 0

const maxDegree = 10

// allowedTimeRanges are the selectable analysis windows, in hours.
var allowedTimeRanges = []int{1, 6, 12, 24, 48, 72, 168}

// Params is the mutable query-parameter set one controller owns. It is
// mutated only through the controller's transition methods and snapshotted
// at the start of every fetch cycle.
type Params struct {
	SensorID                   int  `json:"sensor_id"`
	TimeRangeHours             int  `json:"time_range_hours"`
	PolynomialDegree           int  `json:"polynomial_degree"` // DegreeAuto or 1..10
	AutoRefreshEnabled         bool `json:"auto_refresh_enabled"`
	AutoRefreshIntervalSeconds int  `json:"auto_refresh_interval_seconds"`
}

// ValidTimeRange reports whether hours is one of the selectable windows.
func ValidTimeRange(hours int) bool {
	for _, h := range allowedTimeRanges {
		if h == hours {
			return true
		}
	}
	return false
}

func validateTimeRange(hours int) error {
	if !ValidTimeRange(hours) {
		return fmt.Errorf("time range %dh not in allowed set %v", hours, allowedTimeRanges)
	}
	return nil
}

func validateDegree(degree int) error {
	if degree == DegreeAuto {
		return nil
	}
	if degree < 1 || degree > maxDegree {
		return fmt.Errorf("polynomial degree must be auto or 1..%d, got %d", maxDegree, degree)
	}
	return nil
}

func validateInterval(seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %d", seconds)
	}
	return nil
}
