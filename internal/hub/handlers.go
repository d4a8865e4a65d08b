package hub

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sketch-party-backend/internal/directory"
	"github.com/DoyleJ11/sketch-party-backend/internal/engine"
	"github.com/DoyleJ11/sketch-party-backend/internal/lobby"
	"github.com/DoyleJ11/sketch-party-backend/internal/types"
)

var (
	errBadRequest = errors.New("bad request")
	errNotMember  = errors.New("not a member of the room")
)

const (
	maxRoomIDLen = 64
	maxNameLen   = 64
	maxChatLen   = 1000
	kickReason   = "You have been kicked by the room leader."
)

type handlerFunc func(h *Hub, from string, m types.ClientMessage) error

// handlers is the complete set of inbound events. Anything else is rejected.
var handlers = map[types.EventType]handlerFunc{
	types.EvtJoinRoom:      (*Hub).onJoinRoom,
	types.EvtJoinChat:      (*Hub).onJoinChat,
	types.EvtSendMessage:   (*Hub).onSendMessage,
	types.EvtSignal:        (*Hub).onSignal,
	types.EvtKickUser:      (*Hub).onKickUser,
	types.EvtGetRandomRoom: (*Hub).onGetRandomRoom,
	types.EvtLeaveRoom:     (*Hub).onLeaveRoom,
	types.EvtStartGame:     (*Hub).onStartGame,
	types.EvtSelectPrompt:  (*Hub).onSelectPrompt,
	types.EvtDrawingUpdate: (*Hub).onDrawingUpdate,
	types.EvtSubmitLie:     (*Hub).onSubmitLie,
	types.EvtVote:          (*Hub).onVote,
	types.EvtNextRound:     (*Hub).onNextRound,
	types.EvtEndGame:       (*Hub).onEndGame,
}

func (h *Hub) dispatch(from string, m types.ClientMessage) {
	log := h.log.With(zap.String("client", from), zap.String("type", string(m.Type)))
	if _, ok := h.conns.Client(from); !ok {
		log.Debug("event from unknown connection")
		return
	}

	fn, ok := handlers[m.Type]
	if !ok {
		log.Debug("unknown event")
		h.sendTo(from, types.Error(types.CodeBadRequest, fmt.Sprintf("unknown event %q", m.Type)))
		return
	}

	err := fn(h, from, m)
	switch {
	case err == nil:
	case errors.Is(err, errBadRequest):
		log.Debug("bad request", zap.Error(err))
		h.sendTo(from, types.Error(types.CodeBadRequest, err.Error()))
	case errors.Is(err, directory.ErrNotAuthorized):
		log.Debug("not authorized", zap.Error(err))
		h.sendTo(from, types.Error(types.CodeNotAuthorized, err.Error()))
	default:
		log.Debug("event dropped", zap.Error(err))
	}
}

func decode[T any](m types.ClientMessage) (T, error) {
	v, err := types.Decode[T](m)
	if err != nil {
		return v, fmt.Errorf("%w: %s: %v", errBadRequest, m.Type, err)
	}
	return v, nil
}

// cleanField trims s and rejects empty or overlong values.
func cleanField(field, s string, limit int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s is required", errBadRequest, field)
	}
	if utf8.RuneCountInString(s) > limit {
		return "", fmt.Errorf("%w: %s longer than %d characters", errBadRequest, field, limit)
	}
	return s, nil
}

func (h *Hub) onJoinRoom(from string, m types.ClientMessage) error {
	p, err := decode[types.JoinRoom](m)
	if err != nil {
		return err
	}
	return h.join(from, p, false)
}

func (h *Hub) onJoinChat(from string, m types.ClientMessage) error {
	p, err := decode[types.JoinRoom](m)
	if err != nil {
		return err
	}
	return h.join(from, p, true)
}

// join ignores p.IsLeader: the first member of a room leads.
func (h *Hub) join(from string, p types.JoinRoom, chat bool) error {
	roomID, err := cleanField("roomId", p.RoomID, maxRoomIDLen)
	if err != nil {
		return err
	}
	name, err := cleanField("userName", p.UserName, maxNameLen)
	if err != nil {
		return err
	}
	c, _ := h.conns.Client(from)

	h.conns.SetName(from, name)
	res := h.rooms.Join(roomID, from)
	h.conns.AddRoom(from, roomID)
	h.ensureLobby(roomID).Send(lobby.Join{ClientID: from, Name: name, Client: c})

	h.log.Info("joined room",
		zap.String("client", from),
		zap.String("room", roomID),
		zap.String("name", name),
		zap.Bool("leader", res.Leader == from),
	)

	h.broadcastMembers(roomID)
	switch {
	case chat:
		h.systemChat(roomID, name+" has joined the chat")
	case !res.AlreadyMember:
		h.broadcastExcept(roomID, from, types.NewMessage(types.EvtUserConnected, types.UserConnected{UserID: from, UserName: name}))
	}
	return nil
}

func (h *Hub) onSendMessage(from string, m types.ClientMessage) error {
	p, err := decode[types.SendMessage](m)
	if err != nil {
		return err
	}
	roomID, err := cleanField("roomId", p.RoomID, maxRoomIDLen)
	if err != nil {
		return err
	}
	if strings.TrimSpace(p.Text) == "" {
		return fmt.Errorf("%w: empty message", errBadRequest)
	}
	if utf8.RuneCountInString(p.Text) > maxChatLen {
		return fmt.Errorf("%w: message longer than %d characters", errBadRequest, maxChatLen)
	}
	if !h.rooms.IsMember(roomID, from) {
		return fmt.Errorf("send-message to %q: %w", roomID, errNotMember)
	}

	userName := strings.TrimSpace(p.UserName)
	if userName == "" {
		userName, _ = h.conns.Name(from)
	}
	ts := p.Timestamp
	if ts == "" {
		ts = h.timestamp()
	}
	sender := from
	h.broadcast(roomID, types.NewMessage(types.EvtChatMessage, types.ChatMessage{
		UserName:  userName,
		Text:      p.Text,
		Timestamp: ts,
		SocketID:  &sender,
	}))
	return nil
}

func (h *Hub) onSignal(from string, m types.ClientMessage) error {
	p, err := decode[types.Signal](m)
	if err != nil {
		return err
	}
	if p.To == "" {
		return fmt.Errorf("%w: signal without a target", errBadRequest)
	}
	if _, ok := h.conns.Client(p.To); !ok {
		h.log.Debug("signal target gone", zap.String("from", from), zap.String("to", p.To))
		return nil
	}

	userName := p.UserName
	if userName == "" {
		userName, _ = h.conns.Name(from)
	}
	h.sendTo(p.To, types.NewMessage(types.EvtSignal, types.SignalRelay{
		Signal:   p.Signal,
		From:     from,
		UserName: userName,
	}))
	return nil
}

func (h *Hub) onKickUser(from string, m types.ClientMessage) error {
	p, err := decode[types.KickUser](m)
	if err != nil {
		return err
	}
	roomID, err := cleanField("roomId", p.RoomID, maxRoomIDLen)
	if err != nil {
		return err
	}

	target := p.UserToKickID
	res, removed, err := h.rooms.Kick(roomID, from, target)
	if err != nil {
		return fmt.Errorf("kick in %q: %w", roomID, err)
	}
	if !removed {
		return nil
	}

	name, _ := h.conns.Name(target)
	h.sendTo(target, types.NewMessage(types.EvtKickedFromRoom, types.KickedFromRoom{RoomID: roomID, Reason: kickReason}))
	if h.detach(roomID, target, res) == 0 {
		h.conns.SetName(target, "")
	}
	h.log.Info("kicked", zap.String("room", roomID), zap.String("by", from), zap.String("client", target))

	h.systemChat(roomID, name+" has been kicked from the room")
	h.broadcastMembers(roomID)
	return nil
}

func (h *Hub) onGetRandomRoom(from string, _ types.ClientMessage) error {
	var out types.RandomRoom
	if id, ok := h.rooms.PickRandomNonEmptyRoom(); ok {
		out.RoomID = &id
	}
	h.sendTo(from, types.NewMessage(types.EvtRandomRoom, out))
	return nil
}

func (h *Hub) onLeaveRoom(from string, m types.ClientMessage) error {
	p, err := decode[types.LeaveRoom](m)
	if err != nil {
		return err
	}
	roomID, err := cleanField("roomId", p.RoomID, maxRoomIDLen)
	if err != nil {
		return err
	}

	name, _ := h.conns.Name(from)
	left, ok := h.leave(from, roomID, name, "has left the room")
	if !ok {
		return fmt.Errorf("leave-room %q: %w", roomID, errNotMember)
	}
	if left == 0 {
		h.conns.SetName(from, "")
	}
	h.log.Info("left room", zap.String("client", from), zap.String("room", roomID))
	return nil
}

// forward stamps cmd with the sender, its leadership and the time, and hands
// it to the room's lobby.
func (h *Hub) forward(from, roomID string, cmd engine.Command) error {
	roomID, err := cleanField("roomId", roomID, maxRoomIDLen)
	if err != nil {
		return err
	}
	lb := h.lobbies[roomID]
	if lb == nil || !h.rooms.IsMember(roomID, from) {
		return fmt.Errorf("%s in %q: %w", cmd.Type, roomID, errNotMember)
	}
	cmd.PlayerID = from
	cmd.FromLeader = h.rooms.Leader(roomID) == from
	cmd.At = h.now()
	lb.Send(lobby.FromClient{Cmd: cmd})
	return nil
}

func (h *Hub) onStartGame(from string, m types.ClientMessage) error {
	p, err := decode[types.StartGame](m)
	if err != nil {
		return err
	}
	s := p.Settings
	return h.forward(from, p.RoomID, engine.Command{
		Type:     engine.CmdStartGame,
		Settings: engine.ResolveSettings(h.defaults, s.PromptTime, s.DrawingTime, s.SubmittingTime, s.VotingTime, s.Rounds),
	})
}

func (h *Hub) onSelectPrompt(from string, m types.ClientMessage) error {
	p, err := decode[types.SelectPrompt](m)
	if err != nil {
		return err
	}
	return h.forward(from, p.RoomID, engine.Command{Type: engine.CmdSelectPrompt, Text: p.Prompt})
}

// onDrawingUpdate accepts a missing roomId when the drawer is in exactly one
// room.
func (h *Hub) onDrawingUpdate(from string, m types.ClientMessage) error {
	p, err := decode[types.DrawingUpdate](m)
	if err != nil {
		return err
	}
	roomID := p.RoomID
	if strings.TrimSpace(roomID) == "" {
		rooms := h.conns.RoomsOf(from)
		if len(rooms) != 1 {
			return fmt.Errorf("%w: drawing-update needs a roomId", errBadRequest)
		}
		roomID = rooms[0]
	}
	return h.forward(from, roomID, engine.Command{Type: engine.CmdUpdateDrawing, Text: p.DataURL})
}

func (h *Hub) onSubmitLie(from string, m types.ClientMessage) error {
	p, err := decode[types.SubmitLie](m)
	if err != nil {
		return err
	}
	return h.forward(from, p.RoomID, engine.Command{Type: engine.CmdSubmitLie, Text: p.Lie})
}

func (h *Hub) onVote(from string, m types.ClientMessage) error {
	p, err := decode[types.Vote](m)
	if err != nil {
		return err
	}
	return h.forward(from, p.RoomID, engine.Command{Type: engine.CmdVote, LieID: p.LieID})
}

func (h *Hub) onNextRound(from string, m types.ClientMessage) error {
	p, err := decode[types.RoomRef](m)
	if err != nil {
		return err
	}
	return h.forward(from, p.RoomID, engine.Command{Type: engine.CmdNextRound})
}

func (h *Hub) onEndGame(from string, m types.ClientMessage) error {
	p, err := decode[types.RoomRef](m)
	if err != nil {
		return err
	}
	return h.forward(from, p.RoomID, engine.Command{Type: engine.CmdEndGame})
}
