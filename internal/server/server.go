// Package server exposes the parse pipeline over HTTP for presentation
// collaborators. The API only renders results; every parsing decision lives
// in the pipeline.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"incidentparse/internal/incident"
	"incidentparse/internal/logging"
	"incidentparse/internal/pipeline"
)

// Server wraps the gin router around a pipeline.
type Server struct {
	engine *gin.Engine
	pipe   *pipeline.Pipeline
}

// ParseRequest is the body for POST /api/v1/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// New creates the HTTP server around an existing pipeline.
func New(pipe *pipeline.Pipeline) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, pipe: pipe}

	engine.GET("/healthz", s.health)
	v1 := engine.Group("/api/v1")
	{
		v1.POST("/parse", s.parse)
		v1.GET("/sample", s.sample)
	}

	return s
}

// Handler returns the underlying http.Handler for embedding in http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sample returns the demo incident text for one-click testing.
func (s *Server) sample(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"text": pipeline.SampleIncident})
}

func (s *Server) parse(c *gin.Context) {
	requestID := uuid.NewString()
	log := logging.WithRequestID(logging.CategoryServer, requestID)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("malformed request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "request_id": requestID})
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "incident text is empty",
			"request_id": requestID,
		})
		return
	}

	result := s.pipe.Parse(c.Request.Context(), req.Text)

	if result.IsError() {
		status := http.StatusInternalServerError
		switch result.Err.Kind {
		case incident.ErrorEmptyInput:
			status = http.StatusBadRequest
		case incident.ErrorConfig:
			status = http.StatusServiceUnavailable
		}
		log.Error("parse failed kind=%s: %s", result.Err.Kind, result.Err.Message)
		c.JSON(status, gin.H{
			"error":      result.Err.Message,
			"kind":       result.Err.Kind,
			"request_id": requestID,
		})
		return
	}

	log.Info("parse ok source=%s severity=%s impact=%d",
		result.Source, result.Record.Severity, result.Record.ImpactCount)
	c.JSON(http.StatusOK, gin.H{
		"record":     result.Record,
		"source":     result.Source,
		"degraded":   result.Degraded(),
		"request_id": requestID,
	})
}
