package refresh

import (
	"sync"
	"time"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/metrics"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
)

// Defaults seed the parameter set of a controller created on first access.
type Defaults struct {
	TimeRangeHours  int
	IntervalSeconds int
	CycleTimeout    time.Duration
}

// Manager keys refresh controllers by sensor id. Controllers are created on
// demand and live until Shutdown, which stops every timer so no orphaned
// ticker survives teardown.
type Manager struct {
	client   *telemetry.Client
	hub      Broadcaster
	defaults Defaults

	mu          sync.Mutex
	controllers map[int]*Controller
}

// NewManager builds an empty manager.
func NewManager(client *telemetry.Client, hub Broadcaster, defaults Defaults) *Manager {
	if defaults.TimeRangeHours == 0 {
		defaults.TimeRangeHours = 24
	}
	if defaults.IntervalSeconds == 0 {
		defaults.IntervalSeconds = 5
	}
	if defaults.CycleTimeout == 0 {
		defaults.CycleTimeout = 15 * time.Second
	}
	return &Manager{
		client:      client,
		hub:         hub,
		defaults:    defaults,
		controllers: make(map[int]*Controller),
	}
}

// Get returns the controller for a sensor, creating it (and firing its
// first cycle) on first access.
func (m *Manager) Get(sensorID int) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[sensorID]; ok {
		return c
	}
	c := newController(m.client, m.hub, Params{
		SensorID:                   sensorID,
		TimeRangeHours:             m.defaults.TimeRangeHours,
		PolynomialDegree:           DegreeAuto,
		AutoRefreshIntervalSeconds: m.defaults.IntervalSeconds,
	}, m.defaults.CycleTimeout)
	m.controllers[sensorID] = c
	metrics.ActiveControllers.Inc()
	return c
}

// Lookup returns an existing controller without creating one.
func (m *Manager) Lookup(sensorID int) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.controllers[sensorID]
	return c, ok
}

// Shutdown stops every controller's timer.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.controllers {
		c.Stop()
		delete(m.controllers, id)
		metrics.ActiveControllers.Dec()
	}
}
