package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voxbot/internal/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// handleWebsocket streams transcript events in and directives out for one
// bot instance. The session id defaults to the bot id when the sender omits
// it, so a meeting bot can connect without managing ids.
func (s *Server) handleWebsocket(c *gin.Context) {
	botID := c.Param("bot_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed for bot %s: %v", botID, err)
		return
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("websocket read error for bot %s: %v", botID, err)
			}
			return
		}

		var event domain.TranscriptEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Printf("dropping malformed transcript frame for bot %s: %v", botID, err)
			continue
		}
		if event.BotID == "" {
			event.BotID = botID
		}
		if event.SessionID == "" {
			event.SessionID = botID
		}
		prepareEvent(&event)

		directive, err := s.controller.Process(c.Request.Context(), event)
		if err != nil {
			log.Printf("failed to process event %s: %v", event.EventID, err)
			continue
		}

		if err := conn.WriteJSON(directive); err != nil {
			log.Printf("websocket write error for bot %s: %v", botID, err)
			return
		}
	}
}
