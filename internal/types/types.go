package types

import (
	"encoding/json"
	"errors"
)

type EventType string

// Client -> Server
const (
	EvtJoinRoom      EventType = "join-room"
	EvtJoinChat      EventType = "join-chat"
	EvtSendMessage   EventType = "send-message"
	EvtSignal        EventType = "signal"
	EvtKickUser      EventType = "kick-user"
	EvtGetRandomRoom EventType = "get-random-room"
	EvtLeaveRoom     EventType = "leave-room"
	EvtStartGame     EventType = "start-game"
	EvtSelectPrompt  EventType = "select-prompt"
	EvtDrawingUpdate EventType = "drawing-update"
	EvtSubmitLie     EventType = "submit-lie"
	EvtVote          EventType = "vote"
	EvtNextRound     EventType = "next-round"
	EvtEndGame       EventType = "end-game"
)

// Server -> Client. EvtSignal and EvtDrawingUpdate are used in both directions.
const (
	EvtSession          EventType = "session"
	EvtRoomMembers      EventType = "room-members"
	EvtChatMessage      EventType = "chat-message"
	EvtUserConnected    EventType = "user-connected"
	EvtUserDisconnected EventType = "user-disconnected"
	EvtKickedFromRoom   EventType = "kicked-from-room"
	EvtRandomRoom       EventType = "random-room"
	EvtGameStateUpdate  EventType = "game-state-update"
	EvtLiesUpdate       EventType = "lies-update"
	EvtRoundResults     EventType = "round-results"
	EvtTimerUpdate      EventType = "timer-update"
	EvtGameReset        EventType = "game-reset"
	EvtError            EventType = "error"
)

var ErrEmptyPayload = errors.New("empty payload")

type ClientMessage struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type ServerMessage struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// Decode unmarshals the payload of an inbound frame into T.
func Decode[T any](m ClientMessage) (T, error) {
	var v T
	if len(m.Data) == 0 {
		return v, ErrEmptyPayload
	}
	err := json.Unmarshal(m.Data, &v)
	return v, err
}

func NewMessage(t EventType, data any) ServerMessage {
	return ServerMessage{Type: t, Data: data}
}

func Error(code, message string) ServerMessage {
	return ServerMessage{Type: EvtError, Data: ErrorPayload{Code: code, Message: message}}
}

// Error codes sent to the acting client.
const (
	CodeBadRequest      = "bad_request"
	CodeNotAuthorized   = "not_authorized"
	CodeDuplicateAction = "duplicate_action"
	CodeNotEnoughPlayer = "not_enough_players"
	CodeInvalidLie      = "invalid_lie"
	CodeRateLimited     = "rate_limited"
)
