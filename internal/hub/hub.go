package hub

import (
	"context"
	"math/rand/v2"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sketch-party-backend/internal/directory"
	"github.com/DoyleJ11/sketch-party-backend/internal/engine"
	"github.com/DoyleJ11/sketch-party-backend/internal/lobby"
	"github.com/DoyleJ11/sketch-party-backend/internal/registry"
	"github.com/DoyleJ11/sketch-party-backend/internal/types"
)

type HubMsg interface{ isHubMsg() }

// Connect registers a freshly accepted connection.
type Connect struct {
	Client *registry.Client
}

// Disconnect runs the leave cascade for every room the connection was in and
// closes its outbox.
type Disconnect struct {
	ClientID string
}

type Inbound struct {
	ClientID string
	Msg      types.ClientMessage
}

// GetRandomRoom replies with "" when no room has members.
type GetRandomRoom struct {
	Reply chan string
}

type RoomExists struct {
	RoomID string
	Reply  chan bool
}

// Inspect is for tests and diagnostics.
type Inspect struct {
	Reply chan Snapshot
}

type ShutdownHub struct{}

func (Connect) isHubMsg()       {}
func (Disconnect) isHubMsg()    {}
func (Inbound) isHubMsg()       {}
func (GetRandomRoom) isHubMsg() {}
func (RoomExists) isHubMsg()    {}
func (Inspect) isHubMsg()       {}
func (ShutdownHub) isHubMsg()   {}

type Snapshot struct {
	Connections int
	Names       map[string]string
	Rooms       []directory.Room
	Lobbies     []string
}

type Config struct {
	Defaults  engine.Settings
	LobbyTick time.Duration
	Rand      *rand.Rand
	Now       func() time.Time
	Logger    *zap.Logger
}

type Hub struct {
	inbox   chan HubMsg
	conns   *registry.Registry
	rooms   *directory.Directory
	lobbies map[string]*lobby.Lobby

	defaults  engine.Settings
	lobbyTick time.Duration
	now       func() time.Time
	log       *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Defaults == (engine.Settings{}) {
		cfg.Defaults = engine.DefaultSettings()
	}

	h := &Hub{
		inbox:     make(chan HubMsg, 256),
		conns:     registry.New(),
		rooms:     directory.New(cfg.Rand),
		lobbies:   make(map[string]*lobby.Lobby),
		defaults:  cfg.Defaults,
		lobbyTick: cfg.LobbyTick,
		now:       cfg.Now,
		log:       cfg.Logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Send enqueues m unless the hub has stopped.
func (h *Hub) Send(m HubMsg) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case h.inbox <- m:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Connect:
				h.conns.Register(msg.Client)
				h.sendTo(msg.Client.ID, types.NewMessage(types.EvtSession, types.Session{SocketID: msg.Client.ID}))
				h.log.Info("client connected", zap.String("client", msg.Client.ID), zap.Int("connections", h.conns.Len()))

			case Disconnect:
				h.disconnect(msg.ClientID)

			case Inbound:
				h.dispatch(msg.ClientID, msg.Msg)

			case GetRandomRoom:
				id, _ := h.rooms.PickRandomNonEmptyRoom()
				msg.Reply <- id

			case RoomExists:
				msg.Reply <- h.rooms.Exists(msg.RoomID)

			case Inspect:
				snap := Snapshot{
					Connections: h.conns.Len(),
					Names:       map[string]string{},
					Rooms:       h.rooms.Rooms(),
				}
				h.conns.Each(func(id string, e *registry.Entry) { snap.Names[id] = e.Name })
				for id := range h.lobbies {
					snap.Lobbies = append(snap.Lobbies, id)
				}
				slices.Sort(snap.Lobbies)
				msg.Reply <- snap

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, lb := range h.lobbies {
		lb.Send(lobby.Shutdown{})
		delete(h.lobbies, id)
	}
	h.conns.Each(func(_ string, e *registry.Entry) { e.Client.Close() })
	h.cancel()
	h.log.Info("hub stopped")
}

func (h *Hub) disconnect(id string) {
	c, ok := h.conns.Client(id)
	if !ok {
		return
	}
	name, _ := h.conns.Name(id)
	for _, roomID := range h.conns.RoomsOf(id) {
		h.leave(id, roomID, name, "has disconnected")
	}
	h.conns.Unregister(id)
	c.Close()
	h.log.Info("client disconnected", zap.String("client", id), zap.Int("connections", h.conns.Len()))
}

// leave removes connID from roomID and notifies whoever is left. It reports
// how many rooms the connection is still in.
func (h *Hub) leave(connID, roomID, name, notice string) (int, bool) {
	res, ok := h.rooms.Leave(roomID, connID)
	if !ok {
		return len(h.conns.RoomsOf(connID)), false
	}
	left := h.detach(roomID, connID, res)
	if res.Emptied {
		return left, true
	}

	if res.LeaderChanged {
		newName, _ := h.conns.Name(res.NewLeader)
		h.systemChat(roomID, newName+" is now the room leader")
	}
	h.broadcastMembers(roomID)
	h.systemChat(roomID, name+" "+notice)
	h.broadcast(roomID, types.NewMessage(types.EvtUserDisconnected, types.UserDisconnected{SocketID: connID}))
	return left, true
}

// detach drops the room from the connection and tells the lobby. An emptied
// room's lobby is stopped.
func (h *Hub) detach(roomID, connID string, res directory.LeaveResult) int {
	left := h.conns.RemoveRoom(connID, roomID)
	lb := h.lobbies[roomID]
	if lb == nil {
		return left
	}
	if res.Emptied {
		lb.Send(lobby.Shutdown{})
		delete(h.lobbies, roomID)
		h.log.Info("room closed", zap.String("room", roomID))
		return left
	}
	lb.Send(lobby.Leave{ClientID: connID})
	return left
}

func (h *Hub) ensureLobby(roomID string) *lobby.Lobby {
	if lb := h.lobbies[roomID]; lb != nil {
		return lb
	}
	lb := lobby.NewLobby(h.ctx, lobby.Config{
		RoomID: roomID,
		Tick:   h.lobbyTick,
		Now:    h.now,
		Logger: h.log,
	})
	h.lobbies[roomID] = lb
	h.log.Info("room opened", zap.String("room", roomID))
	return lb
}

func (h *Hub) sendTo(id string, msg types.ServerMessage) {
	c, ok := h.conns.Client(id)
	if !ok {
		return
	}
	if !c.Send(msg) {
		h.log.Warn("outbox full, message dropped", zap.String("client", id), zap.String("type", string(msg.Type)))
	}
}

func (h *Hub) broadcast(roomID string, msg types.ServerMessage) {
	for _, id := range h.rooms.MemberIDs(roomID) {
		h.sendTo(id, msg)
	}
}

func (h *Hub) broadcastExcept(roomID, skip string, msg types.ServerMessage) {
	for _, id := range h.rooms.MemberIDs(roomID) {
		if id != skip {
			h.sendTo(id, msg)
		}
	}
}

func (h *Hub) broadcastMembers(roomID string) {
	members := h.rooms.MembersOf(roomID, h.conns)
	out := make([]types.RoomMember, 0, len(members))
	for _, m := range members {
		out = append(out, types.RoomMember{ID: m.ID, Name: m.Name, IsLeader: m.IsLeader})
	}
	h.broadcast(roomID, types.NewMessage(types.EvtRoomMembers, out))
}

const systemName = "System"

func (h *Hub) systemChat(roomID, text string) {
	h.broadcast(roomID, types.NewMessage(types.EvtChatMessage, types.ChatMessage{
		UserName:  systemName,
		Text:      text,
		Timestamp: h.timestamp(),
	}))
}

func (h *Hub) timestamp() string {
	return h.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
