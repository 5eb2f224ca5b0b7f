package ws

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"classclash/internal/config"
	"classclash/internal/metrics"
	"classclash/internal/store"
)

// Server owns all websocket connections and the room-code broadcast
// groups. It implements game.Broadcaster for the rooms.
type Server struct {
	cfg   *config.ServerConfig
	store *store.MemoryStore
	log   *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client
}

// NewServer creates the socket server. Call store.SetBroadcaster with the
// result before serving.
func NewServer(cfg *config.ServerConfig, st *store.MemoryStore, log *zap.Logger) *Server {
	return &Server{
		cfg:   cfg,
		store: st,
		log:   log.With(zap.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The party is LAN-local; players join from arbitrary origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
	}
}

// HandleWS upgrades the connection and starts its pumps
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("upgrade failed", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), s, conn)
	s.mu.Lock()
	s.clients[c.ID] = c
	s.mu.Unlock()
	metrics.Connections.Inc()

	go c.writePump()
	go c.readPump()
}

// joinGroup adds a client to a room's broadcast group
func (s *Server) joinGroup(c *Client, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[code]
	if !ok {
		g = make(map[string]*Client)
		s.groups[code] = g
	}
	g[c.ID] = c
}

// leaveGroup removes a client from one room's broadcast group
func (s *Server) leaveGroup(c *Client, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[code]
	if !ok {
		return
	}
	delete(g, c.ID)
	if len(g) == 0 {
		delete(s.groups, code)
	}
}

// leaveGroups removes a client from every group it is in
func (s *Server) leaveGroups(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for code, g := range s.groups {
		delete(g, c.ID)
		if len(g) == 0 {
			delete(s.groups, code)
		}
	}
}

// disconnect is called from the read pump on any exit path
func (s *Server) disconnect(c *Client) {
	s.mu.Lock()
	_, known := s.clients[c.ID]
	delete(s.clients, c.ID)
	s.mu.Unlock()
	if !known {
		return
	}

	s.leaveGroups(c)
	c.close()
	metrics.Connections.Dec()

	// Mark the player/host disconnected; the room survives.
	s.store.Drop(c.ID)
}

// Broadcast sends an event to every connection in the room group.
// Implements game.Broadcaster; sends never block.
func (s *Server) Broadcast(code, event string, data any) {
	s.mu.RLock()
	g := s.groups[code]
	targets := make([]*Client, 0, len(g))
	for _, c := range g {
		targets = append(targets, c)
	}
	s.mu.RUnlock()

	if len(targets) == 0 {
		return
	}
	metrics.BroadcastsSent.Inc()
	for _, c := range targets {
		c.sendJSON(Push{Event: event, Data: data})
	}
}

// Send delivers a private event to one connection
func (s *Server) Send(connID, event string, data any) {
	s.mu.RLock()
	c, ok := s.clients[connID]
	s.mu.RUnlock()
	if !ok {
		return
	}
	c.sendJSON(Push{Event: event, Data: data})
}
