package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/refresh"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/ws"
)

// handleSensorView returns the current view model for a sensor: state,
// committed snapshot (analysis + chart) and live parameters. First access
// creates the controller and fires its initial fetch cycle, so the first
// response is usually "loading".
func (s *Server) handleSensorView(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.manager.Get(sensorID).View())
}

type viewParamsRequest struct {
	TimeRangeHours             *int    `json:"time_range_hours"`
	PolynomialDegree           *string `json:"polynomial_degree"` // "auto" or a positive integer
	AutoRefreshEnabled         *bool   `json:"auto_refresh_enabled"`
	AutoRefreshIntervalSeconds *int    `json:"auto_refresh_interval_seconds"`
}

// handleViewParams mutates the refresh parameters. Each provided field is
// applied through its transition function; every applied change triggers a
// fresh fetch cycle, and stale in-flight cycles become inert.
func (s *Server) handleViewParams(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}

	var req viewParamsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctrl := s.manager.Get(sensorID)

	if req.TimeRangeHours != nil {
		if err := ctrl.SetTimeRange(*req.TimeRangeHours); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.PolynomialDegree != nil {
		degree, err := parseDegree(*req.PolynomialDegree)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := ctrl.SetDegree(degree); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.AutoRefreshEnabled != nil || req.AutoRefreshIntervalSeconds != nil {
		params := ctrl.Params()
		enabled := params.AutoRefreshEnabled
		interval := params.AutoRefreshIntervalSeconds
		if req.AutoRefreshEnabled != nil {
			enabled = *req.AutoRefreshEnabled
		}
		if req.AutoRefreshIntervalSeconds != nil {
			interval = *req.AutoRefreshIntervalSeconds
		}
		if err := ctrl.SetAutoRefresh(enabled, interval); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, ctrl.View())
}

// handleViewRefresh triggers one manual fetch cycle. This is also the retry
// affordance after a failed cycle.
func (s *Server) handleViewRefresh(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}
	ctrl := s.manager.Get(sensorID)
	ctrl.Refresh()
	c.JSON(http.StatusAccepted, ctrl.View())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleViewSocket upgrades to a WebSocket subscribed to the sensor's
// committed snapshots.
func (s *Server) handleViewSocket(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return // Upgrade already wrote the error response
	}

	// Ensure a controller exists so subscribers start receiving snapshots.
	s.manager.Get(sensorID)

	client := ws.NewClient(s.hub, conn, sensorID)
	s.hub.RegisterClient(client)
	go client.WritePump()
	go client.ReadPump()
}

// parseDegree maps the wire form ("auto" or digits) to the controller's
// degree value.
func parseDegree(raw string) (int, error) {
	if raw == "auto" {
		return refresh.DegreeAuto, nil
	}
	degree, err := strconv.Atoi(raw)
	if err != nil || degree < 1 {
		return 0, errInvalidDegree
	}
	return degree, nil
}

var errInvalidDegree = &paramError{"polynomial_degree must be \"auto\" or a positive integer"}

type paramError struct{ msg string }

func (e *paramError) Error() string { return e.msg }
