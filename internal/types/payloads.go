package types

import "encoding/json"

type JoinRoom struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
	IsLeader bool   `json:"isLeader,omitempty"` // hint only, the server decides
}

type SendMessage struct {
	RoomID    string `json:"roomId"`
	UserName  string `json:"userName"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	SocketID  string `json:"socketId"`
}

type Signal struct {
	To       string          `json:"to"`
	From     string          `json:"from"`
	Signal   json.RawMessage `json:"signal"`
	UserName string          `json:"userName"`
}

type KickUser struct {
	RoomID       string `json:"roomId"`
	UserToKickID string `json:"userToKickId"`
}

type LeaveRoom struct {
	RoomID   string `json:"roomId"`
	UserName string `json:"userName"`
}

// RoomRef is the payload of next-round and end-game.
type RoomRef struct {
	RoomID string `json:"roomId"`
}

// GameSettings durations are seconds; zero means "use the server default".
type GameSettings struct {
	DrawingTime    int `json:"drawingTime"`
	SubmittingTime int `json:"submittingTime"`
	VotingTime     int `json:"votingTime"`
	PromptTime     int `json:"promptTime,omitempty"`
	Rounds         int `json:"rounds,omitempty"`
}

type StartGame struct {
	RoomID   string       `json:"roomId"`
	Settings GameSettings `json:"settings"`
}

type SelectPrompt struct {
	RoomID string `json:"roomId"`
	Prompt string `json:"prompt"`
}

type DrawingUpdate struct {
	RoomID  string `json:"roomId,omitempty"`
	DataURL string `json:"dataUrl"`
}

type SubmitLie struct {
	RoomID        string `json:"roomId"`
	Lie           string `json:"lie"`
	SubmitterID   string `json:"submitterId"`
	SubmitterName string `json:"submitterName"`
}

type Vote struct {
	RoomID    string `json:"roomId"`
	LieID     string `json:"lieId"`
	VoterID   string `json:"voterId"`
	VoterName string `json:"voterName"`
}

// Outbound

type Session struct {
	SocketID string `json:"socketId"`
}

type RoomMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsLeader bool   `json:"isLeader"`
}

// ChatMessage has a nil SocketID for system messages.
type ChatMessage struct {
	UserName  string  `json:"userName"`
	Text      string  `json:"text"`
	Timestamp string  `json:"timestamp"`
	SocketID  *string `json:"socketId"`
}

type UserConnected struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

type UserDisconnected struct {
	SocketID string `json:"socketId"`
}

type KickedFromRoom struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type SignalRelay struct {
	Signal   json.RawMessage `json:"signal"`
	From     string          `json:"from"`
	UserName string          `json:"userName"`
}

type RandomRoom struct {
	RoomID *string `json:"roomId"`
}

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type GameStateUpdate struct {
	GameState      string   `json:"gameState"`
	ActivePlayer   *Player  `json:"activePlayer,omitempty"`
	CurrentRound   int      `json:"currentRound,omitempty"`
	TotalRounds    int      `json:"totalRounds,omitempty"`
	Countdown      *int     `json:"countdown,omitempty"`
	Prompt         string   `json:"prompt,omitempty"`
	DrawingPrompts []string `json:"drawingPrompts,omitempty"`
}

type LieEntry struct {
	ID         string `json:"id"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Text       string `json:"text,omitempty"`
}

type VoteEntry struct {
	VoterID   string `json:"voterId"`
	VoterName string `json:"voterName"`
}

type ResultLie struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	PlayerName string      `json:"playerName"`
	IsCorrect  bool        `json:"isCorrect"`
	Votes      []VoteEntry `json:"votes"`
}

type ScoreEntry struct {
	Name       string `json:"name"`
	Total      int    `json:"total"`
	RoundScore int    `json:"roundScore"`
}

type RoundResults struct {
	Prompt string                `json:"prompt"`
	Lies   []ResultLie           `json:"lies"`
	Scores map[string]ScoreEntry `json:"scores"`
}

type TimerUpdate struct {
	SecondsRemaining int `json:"secondsRemaining"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
