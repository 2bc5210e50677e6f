package main

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/badgerhoneymoon/retrowave-racer/sim"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// HubOptions wires a Hub to the rest of the server
type HubOptions struct {
	Sessions    *SessionManager
	Pairer      *Pairer
	DB          *DB    // nil when telemetry is disabled
	PublicURL   string // base of pairing links; empty derives it from the request
	DefaultMode sim.Mode
	Log         zerolog.Logger
}

// Hub manages all connected clients and routes them to sessions
type Hub struct {
	mu          sync.RWMutex
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	sessions    *SessionManager
	pairer      *Pairer
	db          *DB
	publicURL   string
	defaultMode sim.Mode
	log         zerolog.Logger
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
}

// NewHub creates a new Hub
func NewHub(opts HubOptions) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		sessions:    opts.Sessions,
		pairer:      opts.Pairer,
		db:          opts.DB,
		publicURL:   opts.PublicURL,
		defaultMode: opts.DefaultMode,
		log:         opts.Log,
		ipConns:     make(map[string]int),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.detach(client)
		}
	}
}

// detach removes a client from its session. A desktop leaving ends the
// run; a controller leaving only unpairs.
func (h *Hub) detach(c *Client) {
	sid, controller := c.session()
	if sid == "" {
		return
	}
	if controller {
		if sess := h.sessions.GetSession(sid); sess != nil {
			sess.Game.RemoveController(c)
		}
	} else {
		h.sessions.EndSession(sid)
	}
	c.setSession("", false)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
