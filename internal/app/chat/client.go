/*
Package chat contains the core logic for the shared chat room: user identity
allocation, the connection registry, message broadcasting, and the per-connection
session lifecycle.

This file defines the Client struct, the WebSocket-backed connection handle. It
manages the read and write loops (ReadPump and WritePump), heartbeats, and the
outbound send queue.
*/
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"stormchat/internal/pkg/logx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the outbound send queue.
	sendQueueSize = 256
)

// Client is the server side of one WebSocket connection. It implements Conn:
// the room delivers envelopes through Send, and Close tears the connection
// down via the write loop.
type Client struct {
	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	// mu guards closed. Send and Close may race from broadcasts, kicks, and shutdown.
	mu sync.Mutex

	// closed marks the send queue as closed for enqueueing.
	closed bool

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient wraps an upgraded WebSocket connection. The connID only serves log
// correlation; clients are keyed by user ID once registered in the room.
func NewClient(wsConn *websocket.Conn, connID string) *Client {
	clientLogger := logx.Logger().With().
		Str("component", "client").
		Str("conn_id", connID).
		Logger()

	return &Client{
		conn:   wsConn,
		send:   make(chan []byte, sendQueueSize),
		logger: clientLogger,
	}
}

// Send implements Conn. The envelope is marshaled and queued without blocking:
// a full queue or an already closed connection drops the frame and reports an
// error. Callers treat delivery as best-effort.
func (c *Client) Send(env Envelope) error {
	messageBytes, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling envelope for client")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("connection is closed")
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().
			Int("queue_len", len(c.send)).
			Str("msg_type", string(env.Type)).
			Msg("Client send queue full, dropping frame")
		return fmt.Errorf("client send queue full")
	}
}

// Close implements Conn. It closes the send queue, which lets WritePump flush
// the frames already queued (a ROOM_KICK notice in particular) before writing
// the close frame and releasing the socket. Calling Close more than once is
// harmless.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.send)
	return nil
}

// ReadPump reads frames from the WebSocket connection and feeds them to the
// session until the connection ends, then reports the disconnect. It handles
// heartbeats (Pong) and read deadlines. Runs on the connection's goroutine.
func (c *Client) ReadPump(sess *Session) {
	defer func() {
		if err := c.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client close error in ReadPump")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	closeCode := websocket.CloseNormalClosure

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				closeCode = closeErr.Code
			} else {
				closeCode = websocket.CloseAbnormalClosure
			}

			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Connection read ended unexpectedly")
			}
			break
		}

		if recvErr := sess.OnReceive(frameType, data); recvErr != nil {
			c.logger.Warn().
				Int("error_code", recvErr.Code).
				Int("frame_type", frameType).
				Msg("Inbound frame rejected, closing connection")

			c.abort(websocket.CloseUnsupportedData, recvErr.Message)
			closeCode = websocket.CloseUnsupportedData
			break
		}
	}

	if err := sess.OnDisconnect(closeCode); err != nil {
		c.logger.Error().Err(err).Msg("Session disconnect handling failed")
	}
}

// abort sends a close frame immediately, bypassing the send queue.
// WriteControl is safe to call concurrently with WritePump.
func (c *Client) abort(code int, reason string) {
	closeMessage := websocket.FormatCloseMessage(code, reason)

	err := c.conn.WriteControl(websocket.CloseMessage, closeMessage, time.Now().Add(writeWait))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.logger.Warn().Err(err).Msg("Failed to send close frame")
	}
}

// WritePump writes queued frames from the send channel to the WebSocket
// connection and keeps the heartbeat ticking. It owns all data writes on the
// connection and closes the socket on exit.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage handles messages pulled from the send channel, writing them to the WebSocket.
// A closed send channel produces the close frame. Returns true if the WritePump
// loop should continue, false if it should terminate.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		err := c.conn.WriteMessage(websocket.CloseMessage, []byte{})
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the connection heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
