package notification

import (
	"encoding/json"

	"go-hrm/internal/features/approval"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// EventHub pushes approval events to connected websocket clients.
// Register/unregister/broadcast all flow through channels into the run
// loop, so the clients map is never touched from two goroutines.
type EventHub struct {
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	logger     *zap.Logger
}

func NewEventHub(logger *zap.Logger) *EventHub {
	hub := &EventHub{
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 256),
		logger:     logger,
	}

	go hub.run()

	return hub
}

func (h *EventHub) run() {
	clients := make(map[*websocket.Conn]bool)
	for {
		select {
		case conn := <-h.register:
			clients[conn] = true
		case conn := <-h.unregister:
			delete(clients, conn)
		case payload := <-h.broadcast:
			for conn := range clients {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					delete(clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// Publish implements approval.EventSink.
func (h *EventHub) Publish(event approval.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event for broadcast", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("websocket broadcast buffer full, dropping event",
			zap.String("instance_id", event.InstanceID))
	}
}

// HandleConnection parks the caller on the feed until the peer hangs
// up. Inbound messages are discarded; the feed is one-way.
func (h *EventHub) HandleConnection(c *websocket.Conn) {
	h.register <- c
	defer func() {
		h.unregister <- c
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
