// Package websocket streams receiver messages to websocket clients.
package websocket

import (
	"golang.org/x/net/websocket"

	"github.com/robotalks/ht12d/pkg/msgs"
)

// Conn exchanges encoded messages over a websocket connection.
type Conn websocket.Conn

// Wrap wraps websocket.Conn.
func Wrap(conn *websocket.Conn) *Conn {
	return (*Conn)(conn)
}

// Dial connects to a Hub at url, e.g. ws://host:8080/ws.
func Dial(url, origin string) (*Conn, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, err
	}
	return Wrap(conn), nil
}

// ReadPacket reads a binary message.
func (c *Conn) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive((*websocket.Conn)(c), &pkt)
	return
}

// WritePacket writes a binary message.
func (c *Conn) WritePacket(pkt []byte) error {
	return websocket.Message.Send((*websocket.Conn)(c), pkt)
}

// ReadMessage reads and decodes a message.
func (c *Conn) ReadMessage() (msgs.Message, error) {
	pkt, err := c.ReadPacket()
	if err != nil {
		return nil, err
	}
	return msgs.Decode(pkt)
}

// Close closes the connection.
func (c *Conn) Close() error {
	return (*websocket.Conn)(c).Close()
}
