// Package refresh owns the per-sensor fetch state machine: the mutable
// query parameters, the auto-refresh timer, and the fetch cycles that race
// against each other. Only the most recently started cycle whose three
// backend calls all succeed may commit; everything older is discarded at
// commit time.
package refresh

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/approx"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/chart"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/metrics"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
)

// View-level states observed by the HTTP layer.
const (
	StateLoading  = "loading"
	StateError    = "error"
	StateNotFound = "not_found"
	StateReady    = "ready"
)

// errorMessage is the single user-visible message for a failed cycle.
// Individual call failures are not distinguished to the user.
const errorMessage = "Failed to load sensor data. Check the connection to the monitoring backend and retry."

// Broadcaster receives every committed snapshot. The ws hub implements it;
// nil disables push.
type Broadcaster interface {
	BroadcastSnapshot(sensorID int, snapshot any)
}

// Snapshot is the committed result of one fully successful fetch cycle.
type Snapshot struct {
	SensorID  int               `json:"sensor_id"`
	Cycle     uint64            `json:"cycle"`
	Sensor    *telemetry.Sensor `json:"sensor"`
	Analysis  approx.Analysis   `json:"analysis"`
	Chart     chart.Model       `json:"chart"`
	Params    Params            `json:"params"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// View is what the HTTP layer renders: the current state, the last
// committed snapshot if any, and the live parameter set.
type View struct {
	State    string    `json:"state"`
	Error    string    `json:"error,omitempty"`
	Params   Params    `json:"params"`
	Snapshot *Snapshot `json:"snapshot,omitempty"`
}

// Controller drives fetch cycles for one sensor.
type Controller struct {
	client  *telemetry.Client
	hub     Broadcaster
	timeout time.Duration

	mu        sync.Mutex
	params    Params
	seq       uint64 // number of the most recently started cycle
	committed *Snapshot
	lastErr   string
	notFound  bool
	timerStop chan struct{}
}

// newController builds a controller and starts its first cycle.
func newController(client *telemetry.Client, hub Broadcaster, params Params, timeout time.Duration) *Controller {
	c := &Controller{
		client:  client,
		hub:     hub,
		params:  params,
		timeout: timeout,
	}
	c.trigger("initial")
	return c
}

// View returns the current renderable state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{Params: c.params, Snapshot: c.committed}
	switch {
	case c.notFound:
		v.State = StateNotFound
		v.Error = "Sensor not found."
	case c.lastErr != "":
		v.State = StateError
		v.Error = c.lastErr
	case c.committed == nil:
		v.State = StateLoading
	default:
		v.State = StateReady
	}
	return v
}

// Params returns a copy of the live parameter set.
func (c *Controller) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// SetTimeRange switches the analysis window and starts a cycle. An
// in-flight cycle is not aborted; the supersession check makes it inert.
func (c *Controller) SetTimeRange(hours int) error {
	if err := validateTimeRange(hours); err != nil {
		return err
	}
	c.mu.Lock()
	c.params.TimeRangeHours = hours
	c.mu.Unlock()
	c.trigger("params")
	return nil
}

// SetDegree switches the polynomial-degree hint and starts a cycle.
func (c *Controller) SetDegree(degree int) error {
	if err := validateDegree(degree); err != nil {
		return err
	}
	c.mu.Lock()
	c.params.PolynomialDegree = degree
	c.mu.Unlock()
	c.trigger("params")
	return nil
}

// SetAutoRefresh enables or disables the refresh timer. The previous timer
// is always cancelled first, so exactly one timer exists per controller.
// Enabling triggers an immediate cycle rather than waiting for the first
// tick. Disabling cancels only the timer, never an in-flight cycle.
func (c *Controller) SetAutoRefresh(enabled bool, intervalSeconds int) error {
	if err := validateInterval(intervalSeconds); err != nil {
		return err
	}

	c.mu.Lock()
	c.stopTimerLocked()
	c.params.AutoRefreshEnabled = enabled
	c.params.AutoRefreshIntervalSeconds = intervalSeconds
	if enabled {
		c.startTimerLocked(time.Duration(intervalSeconds) * time.Second)
	}
	c.mu.Unlock()

	if enabled {
		c.trigger("params")
	}
	return nil
}

// Refresh starts a cycle on user demand. This is also the retry affordance
// after a failed cycle.
func (c *Controller) Refresh() {
	c.trigger("manual")
}

// Stop cancels the auto-refresh timer. In-flight cycles settle on their
// own and are discarded by the sequence guard if stale.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopTimerLocked()
	c.params.AutoRefreshEnabled = false
	c.mu.Unlock()
}

func (c *Controller) startTimerLocked(interval time.Duration) {
	stop := make(chan struct{})
	c.timerStop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.trigger("timer")
			case <-stop:
				return
			}
		}
	}()
}

func (c *Controller) stopTimerLocked() {
	if c.timerStop != nil {
		close(c.timerStop)
		c.timerStop = nil
	}
}

// trigger snapshots the parameters, allocates the next cycle number and
// launches the cycle. Timer ticks and user triggers are equivalent: only
// the start order decides precedence.
func (c *Controller) trigger(source string) {
	c.mu.Lock()
	c.seq++
	n := c.seq
	params := c.params
	c.mu.Unlock()

	metrics.CyclesStarted.WithLabelValues(source).Inc()
	go c.runCycle(n, params, source)
}

// runCycle performs the three backend calls and commits all-or-nothing.
// The supersession check happens at commit time, not launch time: a cycle
// that was overtaken while in flight must not overwrite newer state.
func (c *Controller) runCycle(n uint64, params Params, source string) {
	start := time.Now()
	traceID := uuid.NewString()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var (
		sensor     *telemetry.Sensor
		readings   []telemetry.Reading
		approxResp *telemetry.ApproximationResponse
		errSensor  error
		errRead    error
		errApprox  error
	)

	var degree *int
	if params.PolynomialDegree != DegreeAuto {
		d := params.PolynomialDegree
		degree = &d
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		sensor, errSensor = c.client.GetSensor(ctx, params.SensorID)
	}()
	go func() {
		defer wg.Done()
		readings, errRead = c.client.GetReadings(ctx, params.SensorID, params.TimeRangeHours)
	}()
	go func() {
		defer wg.Done()
		approxResp, errApprox = c.client.GetApproximation(ctx, params.SensorID, params.TimeRangeHours, degree)
	}()
	wg.Wait()

	metrics.CycleDuration.Observe(time.Since(start).Seconds())

	if err := firstError(errSensor, errRead, errApprox); err != nil {
		c.failCycle(n, err, traceID, source)
		return
	}

	unit := ""
	if sensor.LastReading != nil {
		unit = sensor.LastReading.Unit
	}

	analysis := approx.Interpret(&approxResp.ApproximationData, approxResp.TrendAnalysis, sensor.Type)
	model := chart.Compose(
		readings,
		approxResp.ApproximationData.Approximation,
		analysis.State == approx.StateReady,
		unit,
	)

	snapshot := &Snapshot{
		SensorID:  params.SensorID,
		Cycle:     n,
		Sensor:    sensor,
		Analysis:  analysis,
		Chart:     model,
		Params:    params,
		UpdatedAt: time.Now().UTC(),
	}

	c.mu.Lock()
	if n != c.seq {
		c.mu.Unlock()
		metrics.CyclesSuperseded.Inc()
		log.Printf("cycle %s superseded (sensor=%d seq=%d latest=%d)", traceID, params.SensorID, n, c.seq)
		return
	}
	c.committed = snapshot
	c.lastErr = ""
	c.notFound = false
	c.mu.Unlock()

	metrics.CyclesCommitted.Inc()
	log.Printf("cycle %s committed (sensor=%d seq=%d trigger=%s hours=%d)", traceID, params.SensorID, n, source, params.TimeRangeHours)

	if c.hub != nil {
		c.hub.BroadcastSnapshot(params.SensorID, snapshot)
	}
}

// failCycle records the single error outcome for a failed cycle. Prior
// committed state is retained; a stale failure is discarded like a stale
// success.
func (c *Controller) failCycle(n uint64, err error, traceID, source string) {
	metrics.CyclesFailed.Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if n != c.seq {
		metrics.CyclesSuperseded.Inc()
		return
	}
	if errors.Is(err, telemetry.ErrNotFound) {
		c.notFound = true
		c.lastErr = ""
	} else {
		c.lastErr = errorMessage
	}
	log.Printf("cycle %s failed (seq=%d trigger=%s): %v", traceID, n, source, err)
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
