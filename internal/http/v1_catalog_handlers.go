package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/cache"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
)

const catalogTimeout = 10 * time.Second

func (s *Server) handleListBuildings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	key := cache.Key("buildings")
	var buildings []telemetry.Building
	if !s.cache.GetJSON(ctx, key, &buildings) {
		var err error
		buildings, err = s.client.ListBuildings(ctx)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.cache.SetJSON(ctx, key, buildings)
	}

	c.JSON(http.StatusOK, gin.H{"buildings": buildings})
}

func (s *Server) handleGetBuilding(c *gin.Context) {
	buildingID, ok := pathID(c, "building_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	key := cache.Key("building", strconv.Itoa(buildingID))
	var building telemetry.Building
	if !s.cache.GetJSON(ctx, key, &building) {
		got, err := s.client.GetBuilding(ctx, buildingID)
		if err != nil {
			writeBackendError(c, err, "Building not found.")
			return
		}
		building = *got
		s.cache.SetJSON(ctx, key, building)
	}

	c.JSON(http.StatusOK, building)
}

func (s *Server) handleListSensors(c *gin.Context) {
	var buildingID *int
	keyPart := "all"
	if idStr := c.Query("building_id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid building_id"})
			return
		}
		buildingID = &id
		keyPart = idStr
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	key := cache.Key("sensors", keyPart)
	var sensors []telemetry.Sensor
	if !s.cache.GetJSON(ctx, key, &sensors) {
		var err error
		sensors, err = s.client.ListSensors(ctx, buildingID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.cache.SetJSON(ctx, key, sensors)
	}

	c.JSON(http.StatusOK, gin.H{"sensors": sensors})
}

func (s *Server) handleGetSensor(c *gin.Context) {
	sensorID, ok := pathID(c, "sensor_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	sensor, err := s.client.GetSensor(ctx, sensorID)
	if err != nil {
		writeBackendError(c, err, "Sensor not found.")
		return
	}

	c.JSON(http.StatusOK, sensor)
}

func (s *Server) handleListAlerts(c *gin.Context) {
	hours := 24
	if hoursStr := c.Query("hours"); hoursStr != "" {
		parsed, err := strconv.Atoi(hoursStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
			return
		}
		hours = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	key := cache.Key("alerts", strconv.Itoa(hours))
	var alerts []telemetry.Alert
	if !s.cache.GetJSON(ctx, key, &alerts) {
		var err error
		alerts, err = s.client.ListAlerts(ctx, hours)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.cache.SetJSON(ctx, key, alerts)
	}

	c.JSON(http.StatusOK, gin.H{"hours": hours, "alerts": alerts})
}

// pathID parses a positive integer path parameter, answering 400 itself
// when the value is unusable.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// writeBackendError maps a telemetry error to a response: not-found gets a
// single user-facing message, everything else is a gateway failure.
func writeBackendError(c *gin.Context, err error, notFoundMsg string) {
	if errors.Is(err, telemetry.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
