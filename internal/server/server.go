// Package server exposes the orchestrator to transcript producers over HTTP
// and websocket.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"voxbot/internal/domain"
	"voxbot/internal/usecase"
)

// Server hosts the transcript webhook and the live websocket endpoint.
type Server struct {
	controller *usecase.Controller
	engine     *gin.Engine
}

func New(controller *usecase.Controller) *Server {
	s := &Server{controller: controller, engine: gin.Default()}

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.POST("/transcript", s.handleTranscript)
	s.engine.GET("/ws/:bot_id", s.handleWebsocket)
	s.engine.GET("/session/:session_id", s.handleSessionStatus)
	s.engine.POST("/session/:session_id/tool-complete", s.handleToolComplete)

	return s
}

// Run blocks serving on the given port.
func (s *Server) Run(port string) error {
	return s.engine.Run(":" + port)
}

func (s *Server) handleTranscript(c *gin.Context) {
	var event domain.TranscriptEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transcript event: " + err.Error()})
		return
	}
	prepareEvent(&event)

	directive, err := s.controller.Process(c.Request.Context(), event)
	if err != nil {
		status := http.StatusInternalServerError
		if event.SessionID == "" {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, directive)
}

func (s *Server) handleSessionStatus(c *gin.Context) {
	session, found, err := s.controller.Status(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleToolComplete(c *gin.Context) {
	session, err := s.controller.CompleteTool(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, session)
}

// prepareEvent fills host-assigned fields: an event id for de-duplication
// and a receive timestamp.
func prepareEvent(event *domain.TranscriptEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
}
