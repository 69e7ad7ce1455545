package server

import (
	"log"

	"picwedding/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketHandler upgrades the connection and attaches it to the hub.
// GET /api/ws?device=<device-id>
func (s *Server) WebsocketHandler() fiber.Handler {
	upgrade := websocket.New(func(conn *websocket.Conn) {
		deviceID := conn.Query("device")
		if deviceID == "" {
			deviceID = conn.RemoteAddr().String()
		}

		client, err := s.hub.Register(deviceID, conn)
		if err != nil {
			log.Printf("websocket register failed (device %s): %v", deviceID, err)
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "connection limit reached"))
			_ = conn.Close()
			return
		}

		middleware.ActiveWebSockets.Inc()
		defer middleware.ActiveWebSockets.Dec()

		go client.WritePump()
		// ReadPump blocks for the connection's lifetime and unregisters on exit.
		client.ReadPump()
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return upgrade(c)
	}
}
