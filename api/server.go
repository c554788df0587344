package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/poiesic/campaignrec/core"
	"github.com/poiesic/campaignrec/recommend"
)

// Recommender is the slice of the recommendation orchestrator the HTTP
// layer depends on.
type Recommender interface {
	Recommend(ctx context.Context, userID string) (*core.RecommendationSet, error)
}

// Server exposes the recommendation service over HTTP.
type Server struct {
	echo        *echo.Echo
	recommender Recommender
	logger      *slog.Logger
	config      *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server.
func NewServer(recommender Recommender, logger *slog.Logger, cfg *Config) (*Server, error) {
	if recommender == nil {
		return nil, fmt.Errorf("recommender cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 8000,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(processTime)
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", duration,
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	})

	s := &Server{
		echo:        e,
		recommender: recommender,
		logger:      logger.With("component", "api"),
		config:      cfg,
	}

	s.registerRoutes()

	return s, nil
}

// processTime stamps each response with the request handling time in
// seconds, written before the body starts streaming.
func processTime(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		c.Response().Before(func() {
			elapsed := time.Since(start).Seconds()
			c.Response().Header().Set("X-Process-Time", fmt.Sprintf("%.6f", elapsed))
		})
		return next(c)
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/recommendations/:user_id", s.handleRecommendations)
}

// RootResponse is the response body for GET /.
type RootResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body returned on request failures.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{Message: "Campaign recommendation service is running"})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleRecommendations serves ranked campaign recommendations for a user.
func (s *Server) handleRecommendations(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "user_id is required"})
	}

	set, err := s.recommender.Recommend(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, recommend.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Detail: fmt.Sprintf("User %s not found", userID),
			})
		}
		s.logger.Error("recommendation failed", "user_id", userID, "err", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Detail: "Failed to compute recommendations",
		})
	}

	return c.JSON(http.StatusOK, set)
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
