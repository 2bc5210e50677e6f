package main

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/input"
	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 120 // keyboards may send one intent per frame
)

// Client represents a WebSocket connection: a desktop renderer driving its
// own run, or a phone paired to someone else's run as a controller
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	baseURL    string // scheme://host the client connected to
	log        zerolog.Logger
	msgCount   int
	msgResetAt time.Time

	mu           sync.Mutex
	sessionID    string
	isController bool
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr, baseURL string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		baseURL:    baseURL,
		log:        hub.log.With().Str("remote", remoteAddr).Logger(),
	}
}

func (c *Client) session() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID, c.isController
}

func (c *Client) setSession(sid string, controller bool) {
	c.mu.Lock()
	c.sessionID = sid
	c.isController = controller
	c.mu.Unlock()
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("ws read")
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log.Warn().Msg("rate limit exceeded, disconnecting")
			break
		}

		// Binary input messages: 2 bytes [0x01, flags]
		if msgType == websocket.BinaryMessage && len(message) == binaryInputLen && message[0] == binaryInputMarker {
			c.handleBinaryInput(message)
		} else {
			c.handleMessage(message)
		}
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message
// Prefixes with 0xFF marker byte so WritePump can distinguish from text
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF // binary marker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug().Err(err).Msg("unmarshal")
		return
	}

	switch env.T {
	case MsgStart:
		c.handleStart(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgControl:
		c.handleControl(env.D)
	case MsgLeave:
		c.handleLeave()
	default:
		c.log.Debug().Str("type", env.T).Msg("unknown message")
	}
}

func (c *Client) handleStart(data json.RawMessage) {
	if sid, _ := c.session(); sid != "" {
		c.sendError("already in a run")
		return
	}
	var msg StartMsg
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("bad start message")
			return
		}
	}
	mode := c.hub.defaultMode
	if msg.Mode != "" {
		m, err := sim.ParseMode(msg.Mode)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		mode = m
	}

	sess := c.hub.sessions.CreateSession(mode)
	if sess == nil {
		c.sendError("too many active sessions")
		return
	}
	c.setSession(sess.ID, false)

	var pairURL string
	if token, err := c.hub.pairer.Issue(sess.ID); err != nil {
		c.log.Error().Err(err).Msg("issue pairing token")
	} else {
		base := c.hub.publicURL
		if base == "" {
			base = c.baseURL
		}
		pairURL = PairURL(base, token)
	}

	c.SendJSON(Envelope{T: MsgStarted, Data: StartedMsg{
		SID:     sess.ID,
		Mode:    mode.String(),
		PairURL: pairURL,
	}})
	sess.Game.Start(c)
}

// handleBinaryInput decodes a compact 2-byte binary input message
func (c *Client) handleBinaryInput(msg []byte) {
	c.applyInput(input.Decode(msg[1]))
}

func (c *Client) handleInput(data json.RawMessage) {
	var in sim.Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return
	}
	c.applyInput(in)
}

func (c *Client) applyInput(in sim.Intent) {
	sid, controller := c.session()
	if sid == "" {
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		return
	}
	sess.Game.HandleInput(in, controller)
}

func (c *Client) handleControl(data json.RawMessage) {
	if sid, _ := c.session(); sid != "" {
		c.sendError("already in a run")
		return
	}
	var msg ControlMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	sid, err := c.hub.pairer.Verify(msg.Token)
	if err != nil {
		c.log.Debug().Err(err).Msg("pairing rejected")
		if errors.Is(err, ErrTokenExpired) {
			c.sendError("pairing link expired")
		} else {
			c.sendError("invalid pairing link")
		}
		return
	}
	sess := c.hub.sessions.GetSession(sid)
	if sess == nil {
		c.sendError("session not found")
		return
	}

	c.setSession(sid, true)
	sess.Game.SetController(c)
	c.SendJSON(Envelope{T: MsgControlOK, Data: ControlOKMsg{SID: sid}})
}

func (c *Client) handleLeave() {
	c.hub.detach(c)
}
