package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maikl88/geo-monitoring-ver3.0/internal/cache"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/config"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/metrics"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/refresh"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/telemetry"
	"github.com/maikl88/geo-monitoring-ver3.0/internal/ws"
)

// Server bundles router and dependencies for the dashboard API.
type Server struct {
	cfg     config.Config
	client  *telemetry.Client
	cache   *cache.Cache
	manager *refresh.Manager
	hub     *ws.Hub
	engine  *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, client *telemetry.Client, store *cache.Cache, manager *refresh.Manager, hub *ws.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())
	engine.Use(metricsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{
		cfg:     cfg,
		client:  client,
		cache:   store,
		manager: manager,
		hub:     hub,
		engine:  engine,
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/prometheus", gin.WrapH(promhttp.Handler()))

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/buildings", s.handleListBuildings)
		v1.GET("/buildings/:building_id", s.handleGetBuilding)
		v1.GET("/sensors", s.handleListSensors)
		v1.GET("/sensors/:sensor_id", s.handleGetSensor)
		v1.GET("/alerts", s.handleListAlerts)

		v1.GET("/sensors/:sensor_id/view", s.handleSensorView)
		v1.PUT("/sensors/:sensor_id/view/params", s.handleViewParams)
		v1.POST("/sensors/:sensor_id/view/refresh", s.handleViewRefresh)
		v1.GET("/sensors/:sensor_id/ws", s.handleViewSocket)
	}
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
