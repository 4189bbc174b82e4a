package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a connection to the hub for the given topics and blocks
// until the connection drops.
func ServeWs(hub *Hub, c *websocket.Conn, topics []string) {
	client := &Client{Hub: hub, Conn: c, Topics: topics, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
