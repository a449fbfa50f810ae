package handlers

import (
	"net/http"
	"time"

	"zkdex-backend/internal/dto"
	"zkdex-backend/internal/events"
	"zkdex-backend/internal/models"
	"zkdex-backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	wsWriteWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer
	wsPongWait = 60 * time.Second
	// Send pings to peer with this period, must be less than wsPongWait
	wsPingPeriod = 54 * time.Second
	// Maximum message size allowed from peer
	wsMaxMessageSize = 1024
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsHandler serves the durable event log and the live websocket feed
type EventsHandler struct {
	store  repository.Store
	hub    *events.Hub
	logger *logrus.Logger
}

// NewEventsHandler creates the events handler
func NewEventsHandler(store repository.Store, hub *events.Hub, logger *logrus.Logger) *EventsHandler {
	return &EventsHandler{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// ListEventsHandler returns event rows after a sequence cursor, optionally
// filtered by kind.
func (h *EventsHandler) ListEventsHandler(c *gin.Context) {
	var query dto.EventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBindingError(c, err)
		return
	}
	if query.Limit < 1 || query.Limit > 1000 {
		query.Limit = 100
	}

	var (
		rows []models.DomainEvent
		err  error
	)
	if kind := c.Query("kind"); kind != "" {
		rows, err = h.store.Events().ListByKind(c.Request.Context(), models.EventKind(kind), query.Limit)
	} else {
		rows, err = h.store.Events().ListAfter(c.Request.Context(), query.After, query.Limit)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  rows,
	})
}

// StreamHandler upgrades the connection and feeds the client every event
// published after it connected.
func (h *EventsHandler) StreamHandler(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithField("error", err.Error()).Warn("Websocket upgrade failed")
		return
	}

	client := &events.Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
	}
	h.hub.Register(client)

	go h.writePump(conn, client)
	go h.readPump(conn, client)
}

// writePump forwards hub frames to the peer and keeps the connection alive
// with pings.
func (h *EventsHandler) writePump(conn *websocket.Conn, client *events.Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.Send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames until the peer goes away, then tears the
// client down.
func (h *EventsHandler) readPump(conn *websocket.Conn, client *events.Client) {
	defer func() {
		h.hub.Unregister(client.ID)
		close(client.Send)
		conn.Close()
	}()

	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithFields(logrus.Fields{
					"client_id": client.ID,
					"error":     err.Error(),
				}).Debug("Websocket closed unexpectedly")
			}
			return
		}
	}
}
