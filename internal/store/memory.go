package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"classclash/internal/catalog"
	"classclash/internal/config"
	"classclash/internal/game"
	"classclash/internal/metrics"
)

// roomCodeAlphabet avoids the confusable characters I, L, O, 0 and 1
const roomCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// MemoryStore is the process-wide room registry: code -> room plus the
// reverse connection -> code map so disconnect cleanup is O(1).
type MemoryStore struct {
	mu       sync.RWMutex
	rooms    map[string]*game.Room
	connRoom map[string]string

	cfg      *config.ServerConfig
	catalog  *catalog.Catalog
	notifier game.Broadcaster
	log      *zap.Logger
}

// NewMemoryStore creates a new in-memory registry
func NewMemoryStore(cfg *config.ServerConfig, cat *catalog.Catalog, log *zap.Logger) *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]*game.Room),
		connRoom: make(map[string]string),
		cfg:      cfg,
		catalog:  cat,
		log:      log,
	}
}

// SetBroadcaster wires the outbound transport. Must be called before any
// room is created.
func (s *MemoryStore) SetBroadcaster(b game.Broadcaster) {
	s.notifier = b
}

// CreateRoom creates a room for a host. The returned host token is the
// only credential for host operations.
func (s *MemoryStore) CreateRoom(hostName, packID string) (*game.Room, string, error) {
	if s.catalog.Len() == 0 {
		return nil, "", game.ErrNoPacks
	}
	pack, ok := s.catalog.Pack(packID)
	if !ok {
		return nil, "", game.ErrNoPacks
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Generate unique room code, trying up to 10 times on collision
	var code string
	for i := 0; i < 10; i++ {
		code = s.generateRoomCode()
		if _, exists := s.rooms[code]; !exists {
			break
		}
	}
	if _, exists := s.rooms[code]; exists {
		return nil, "", game.ErrNoRoomCode
	}

	roomCfg := game.RoomConfig{
		MaxLives:         s.cfg.Game.MaxLives,
		CountdownMs:      s.cfg.Game.CountdownMs,
		StartingCoins:    s.cfg.Game.StartingCoins,
		BuybackCostCoins: s.cfg.Game.BuybackCostCoins,
		BossHP:           s.cfg.Game.BossHP,
	}
	room := game.NewRoom(code, hostName, pack.ID, roomCfg, s.cfg.Game.MaxPlayersPerRoom, s.catalog, s.notifier, s.log)
	s.rooms[code] = room

	metrics.RoomsCreated.Inc()
	metrics.LiveRooms.Set(float64(len(s.rooms)))
	s.log.Info("room created", zap.String("room", code), zap.String("pack", pack.ID))
	return room, room.HostToken(), nil
}

// GetRoom retrieves a room by code
func (s *MemoryStore) GetRoom(code string) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[code]
	if !exists {
		return nil, game.ErrRoomNotFound
	}
	return room, nil
}

// Associate binds a connection to a room for reverse lookup
func (s *MemoryStore) Associate(connID, code string) {
	s.mu.Lock()
	s.connRoom[connID] = code
	s.mu.Unlock()
}

// Dissociate removes a connection's reverse mapping without notifying the
// room. Used when a player leaves explicitly but keeps the connection.
func (s *MemoryStore) Dissociate(connID string) {
	s.mu.Lock()
	delete(s.connRoom, connID)
	s.mu.Unlock()
}

// Drop removes a connection's association and tells its room. Safe to
// call for connections that never joined a room.
func (s *MemoryStore) Drop(connID string) {
	s.mu.Lock()
	code, ok := s.connRoom[connID]
	delete(s.connRoom, connID)
	var room *game.Room
	if ok {
		room = s.rooms[code]
	}
	s.mu.Unlock()

	if room != nil {
		room.DropConn(connID)
		room.Flush()
	}
}

// RoomForConn resolves a connection to its room
func (s *MemoryStore) RoomForConn(connID string) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.connRoom[connID]
	if !ok {
		return nil, false
	}
	room, ok := s.rooms[code]
	return room, ok
}

// RoomCount returns the number of live rooms
func (s *MemoryStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// DestroyRoom cancels the room's timers and removes it plus its reverse
// mappings. After this no timer belonging to the room fires visibly.
func (s *MemoryStore) DestroyRoom(code string) {
	s.mu.Lock()
	room, ok := s.rooms[code]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, code)
	for conn, c := range s.connRoom {
		if c == code {
			delete(s.connRoom, conn)
		}
	}
	remaining := len(s.rooms)
	s.mu.Unlock()

	metrics.RoomsDestroyed.Inc()
	metrics.LiveRooms.Set(float64(remaining))

	room.Destroy()
	s.log.Info("room destroyed", zap.String("room", code))
}

// StartReaper runs the periodic cleanup sweep until ctx is done
func (s *MemoryStore) StartReaper(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Game.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(time.Now())
			}
		}
	}()
}

// CleanupExpired destroys rooms that have outlived their welcome: ended
// and idle, idle too long, or abandoned with nobody connected.
func (s *MemoryStore) CleanupExpired(now time.Time) int {
	s.mu.RLock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	s.mu.RUnlock()

	destroyed := 0
	for _, code := range codes {
		room, err := s.GetRoom(code)
		if err != nil {
			continue
		}
		idle := now.Sub(room.LastActivity())
		expired := (room.Phase() == game.PhaseEnded && idle > s.cfg.Game.EndedRoomTTL) ||
			idle > s.cfg.Game.RoomIdleTimeout ||
			(!room.HasConnections() && idle > s.cfg.Game.NoConnectionTTL)
		if expired {
			s.DestroyRoom(code)
			destroyed++
		}
	}
	return destroyed
}

// generateRoomCode generates an uppercase alphanumeric room code from the
// confusion-safe alphabet.
func (s *MemoryStore) generateRoomCode() string {
	length := s.cfg.Game.RoomCodeLength
	b := make([]byte, length)
	rand.Read(b)
	for i := range b {
		b[i] = roomCodeAlphabet[b[i]%byte(len(roomCodeAlphabet))]
	}
	return string(b)
}
