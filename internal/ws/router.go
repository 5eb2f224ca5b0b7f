package ws

import (
	"errors"

	"go.uber.org/zap"

	"classclash/internal/game"
	"classclash/internal/metrics"
)

var errUnknownEvent = errors.New("Unknown event")

// handlerFunc processes one inbound event. The returned room, if any, is
// flushed after the acknowledgement so broadcasts follow the ack.
type handlerFunc func(s *Server, c *Client, env Envelope) (any, *game.Room, error)

var handlers = map[string]handlerFunc{
	"room:create": handleRoomCreate,
	"room:join":   handleRoomJoin,
	"room:resume": handleRoomResume,
	"room:watch":  handleRoomWatch,
	"room:leave":  handleRoomLeave,

	"game:configure":  handleConfigure,
	"game:start":      handleGameStart,
	"act:start":       handleActStart,
	"boss:start":      handleBossStart,
	"question:reveal": handleReveal,
	"question:next":   handleNext,
	"shop:open":       handleShopOpen,

	"player:answer":  handleAnswer,
	"player:lockin":  handleLockIn,
	"player:buyback": handleBuyback,
	"shop:buy":       handleBuy,
	"item:use":       handleUseItem,

	"wager:set":           handleWagerSet,
	"wager:lock":          handleWagerLock,
	"wager:spotlight_end": handleSpotlightEnd,

	"revive:request": handleReviveRequest,
	"revive:approve": handleReviveApprove,
	"revive:decline": handleReviveDecline,
}

// handleEvent routes one envelope and always answers with a single ack.
// Failed operations mutate nothing, so only successes are flushed.
func (s *Server) handleEvent(c *Client, env Envelope) {
	metrics.EventsProcessed.WithLabelValues(env.Event).Inc()

	h, ok := handlers[env.Event]
	if !ok {
		metrics.EventErrors.WithLabelValues(env.Event).Inc()
		c.sendJSON(errAck(env.Seq, errUnknownEvent))
		return
	}

	data, room, err := h(s, c, env)
	if err != nil {
		metrics.EventErrors.WithLabelValues(env.Event).Inc()
		c.sendJSON(errAck(env.Seq, err))
		return
	}

	c.sendJSON(okAck(env.Seq, data))
	if room != nil {
		room.Flush()
	}
}

func (s *Server) roomFor(c *Client, env Envelope) (*game.Room, error) {
	if env.Code != "" {
		return s.store.GetRoom(env.Code)
	}
	if room, ok := s.store.RoomForConn(c.ID); ok {
		return room, nil
	}
	return nil, game.ErrRoomNotFound
}

type createPayload struct {
	HostName string `json:"hostName"`
	PackID   string `json:"packId"`
}

func handleRoomCreate(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[createPayload](env)
	if err != nil {
		return nil, nil, err
	}
	hostName, err := game.ValidateName(p.HostName)
	if err != nil {
		return nil, nil, err
	}

	room, hostKey, err := s.store.CreateRoom(hostName, p.PackID)
	if err != nil {
		return nil, nil, err
	}

	s.store.Associate(c.ID, room.Code)
	s.joinGroup(c, room.Code)
	room.AttachHost(c.ID)

	state, err := room.HostSnapshotFor(hostKey)
	if err != nil {
		return nil, nil, err
	}
	s.log.Info("room created", zap.String("room", room.Code), zap.String("host", hostName))
	return map[string]any{
		"code":    room.Code,
		"hostKey": hostKey,
		"state":   state,
	}, room, nil
}

type joinPayload struct {
	Name string `json:"name"`
}

func handleRoomJoin(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[joinPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}

	player, err := room.Join(p.Name, c.ID)
	if err != nil {
		return nil, nil, err
	}

	s.store.Associate(c.ID, room.Code)
	s.joinGroup(c, room.Code)
	return map[string]any{
		"code":     room.Code,
		"playerId": player.ID,
		"state":    room.PublicSnapshot(),
	}, room, nil
}

type resumePayload struct {
	PlayerID string `json:"playerId"`
	HostKey  string `json:"hostKey"`
}

func handleRoomResume(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[resumePayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}

	isHost, player, err := room.Resume(c.ID, p.PlayerID, p.HostKey)
	if err != nil {
		return nil, nil, err
	}

	s.store.Associate(c.ID, room.Code)
	s.joinGroup(c, room.Code)

	if isHost {
		state, err := room.HostSnapshotFor(p.HostKey)
		if err != nil {
			return nil, nil, err
		}
		return map[string]any{"role": "host", "state": state}, room, nil
	}
	return map[string]any{
		"role":     "player",
		"playerId": player.ID,
		"state":    room.PublicSnapshot(),
	}, room, nil
}

func handleRoomWatch(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	s.store.Associate(c.ID, room.Code)
	s.joinGroup(c, room.Code)
	room.Touch()
	return map[string]any{"state": room.PublicSnapshot()}, room, nil
}

type leavePayload struct {
	PlayerID string `json:"playerId"`
}

func handleRoomLeave(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[leavePayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	if p.PlayerID != "" {
		if err := room.Leave(p.PlayerID); err != nil {
			return nil, nil, err
		}
	}
	s.leaveGroup(c, room.Code)
	s.store.Dissociate(c.ID)
	return nil, room, nil
}

type hostPayload struct {
	HostKey string `json:"hostKey"`
}

type configurePayload struct {
	HostKey string           `json:"hostKey"`
	Config  game.ConfigPatch `json:"config"`
}

func handleConfigure(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[configurePayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.Configure(p.HostKey, p.Config)
}

func handleGameStart(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.StartGame(p.HostKey)
}

type actPayload struct {
	HostKey string `json:"hostKey"`
	ActID   string `json:"actId"`
}

func handleActStart(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[actPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.StartAct(p.HostKey, game.ActID(p.ActID))
}

func handleBossStart(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.StartBoss(p.HostKey)
}

func handleReveal(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.Reveal(p.HostKey)
}

func handleNext(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.NextQuestion(p.HostKey)
}

type shopOpenPayload struct {
	HostKey string `json:"hostKey"`
	Open    bool   `json:"open"`
}

func handleShopOpen(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[shopOpenPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.OpenShop(p.HostKey, p.Open)
}

type answerPayload struct {
	PlayerID    string `json:"playerId"`
	AnswerIndex int    `json:"answerIndex"`
}

func handleAnswer(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[answerPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.Answer(p.PlayerID, p.AnswerIndex)
}

type playerPayload struct {
	PlayerID string `json:"playerId"`
}

func handleLockIn(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[playerPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.LockIn(p.PlayerID)
}

func handleBuyback(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[playerPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.Buyback(p.PlayerID)
}

type itemPayload struct {
	PlayerID string `json:"playerId"`
	ItemID   string `json:"itemId"`
}

func handleBuy(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[itemPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.Buy(p.PlayerID, game.ItemID(p.ItemID))
}

func handleUseItem(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[itemPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.UseItem(p.PlayerID, game.ItemID(p.ItemID))
}

type wagerSetPayload struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

func handleWagerSet(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[wagerSetPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.SetWager(p.PlayerID, p.Amount)
}

func handleWagerLock(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.LockWagers(p.HostKey)
}

func handleSpotlightEnd(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.SpotlightEnd(p.HostKey)
}

func handleReviveRequest(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[playerPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.RequestRevive(p.PlayerID)
}

func handleReviveApprove(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.ApproveRevive(p.HostKey)
}

func handleReviveDecline(s *Server, c *Client, env Envelope) (any, *game.Room, error) {
	p, err := decode[hostPayload](env)
	if err != nil {
		return nil, nil, err
	}
	room, err := s.roomFor(c, env)
	if err != nil {
		return nil, nil, err
	}
	return nil, room, room.DeclineRevive(p.HostKey)
}
