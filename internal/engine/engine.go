package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

var ErrNotAuthorized = errors.New("not authorized")
var ErrNotFound = errors.New("not found")
var ErrInvalidState = errors.New("invalid state")
var ErrDuplicateAction = errors.New("duplicate action")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrInvalidLie = errors.New("invalid lie")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Phase string

const (
	PhaseWaiting         Phase = "waiting"
	PhasePromptSelection Phase = "prompt_selection"
	PhaseDrawing         Phase = "drawing"
	PhaseSubmittingLies  Phase = "submitting_lies"
	PhaseVoting          Phase = "voting"
	PhaseResults         Phase = "results"
)

const (
	MinPlayers        = 2
	CorrectVotePoints = 500
	DecoyVotePoints   = 100
	MaxLieLength      = 120
)

type Settings struct {
	PromptTime     time.Duration
	DrawingTime    time.Duration
	SubmittingTime time.Duration
	VotingTime     time.Duration
	Rounds         int
	PromptChoices  int
}

// Lie is a voting option. The true prompt is stored as a Lie with Correct set,
// authored by the active player.
type Lie struct {
	ID       string
	AuthorID string
	Text     string
	Correct  bool
}

type Score struct {
	Total int
	Round int
}

type State struct {
	Phase       Phase
	Round       int
	TotalRounds int
	Settings    Settings

	Members []string          // current room members, join order
	Names   map[string]string // everyone seen this game, kept after they leave
	Seats   []string          // drawing rotation

	ActivePlayer  string
	PromptChoices []string
	Prompt        string
	Drawing       string

	Lies        map[string]Lie    // lie id -> lie
	LieByAuthor map[string]string // author -> lie id
	Options     []string          // shuffled lie ids offered in VOTING
	Votes       map[string]string // voter -> lie id
	Scores      map[string]Score

	Deadline time.Time
}

type CommandType string

const (
	CmdStartGame      CommandType = "StartGame"
	CmdSelectPrompt   CommandType = "SelectPrompt"
	CmdUpdateDrawing  CommandType = "UpdateDrawing"
	CmdSubmitLie      CommandType = "SubmitLie"
	CmdVote           CommandType = "Vote"
	CmdNextRound      CommandType = "NextRound"
	CmdEndGame        CommandType = "EndGame"
	CmdTimeoutAdvance CommandType = "TimeoutAdvance"
	CmdMemberJoined   CommandType = "MemberJoined"
	CmdMemberLeft     CommandType = "MemberLeft"
)

/*
	CmdStartGame      -> EvtPhaseChanged(prompt_selection)
	CmdSelectPrompt   -> EvtPhaseChanged(drawing)
	CmdUpdateDrawing  -> EvtDrawingUpdated
	CmdSubmitLie      -> EvtLieSubmitted [-> EvtPhaseChanged(voting)]
	CmdVote           -> EvtVoteCast [-> EvtPhaseChanged(results) -> EvtRoundScored]
	CmdTimeoutAdvance -> EvtPhaseChanged(next) [-> EvtRoundScored]
	CmdNextRound      -> EvtPhaseChanged(prompt_selection) | EvtGameReset
	CmdEndGame        -> EvtGameReset
	CmdMemberLeft     -> may complete SUBMITTING_LIES / VOTING like the last submission would
*/

type Command struct {
	Type       CommandType
	PlayerID   string
	PlayerName string
	FromLeader bool
	At         time.Time
	Settings   Settings
	Text       string // prompt, lie or drawing data URL
	LieID      string
}

type EventType string

const (
	EvtPhaseChanged   EventType = "PhaseChanged"
	EvtDrawingUpdated EventType = "DrawingUpdated"
	EvtLieSubmitted   EventType = "LieSubmitted"
	EvtVoteCast       EventType = "VoteCast"
	EvtRoundScored    EventType = "RoundScored"
	EvtGameReset      EventType = "GameReset"
)

type Event struct {
	Type     EventType
	Phase    Phase
	PlayerID string
	LieID    string
}

// Apply validates cmd against s and returns the resulting events and state.
// s itself is never modified; on error the original state is returned.
func Apply(s State, cmd Command) ([]Event, State, error) {
	n := cloneState(s)

	switch cmd.Type {
	case CmdMemberJoined:
		return n.memberJoined(cmd)
	case CmdMemberLeft:
		return n.memberLeft(cmd)

	case CmdStartGame:
		if !cmd.FromLeader {
			return nil, s, ErrNotAuthorized
		}
		if s.Phase != PhaseWaiting {
			return nil, s, ErrInvalidState
		}
		if len(s.Members) < MinPlayers {
			return nil, s, ErrNotEnoughPlayers
		}
		n.Settings = cmd.Settings
		n.TotalRounds = cmd.Settings.Rounds
		n.Seats = slices.Clone(s.Members)
		n.Scores = make(map[string]Score, len(s.Members))
		for _, id := range s.Members {
			n.Scores[id] = Score{}
		}
		return n.beginRound(cmd.At), n, nil

	case CmdSelectPrompt:
		if s.Phase != PhasePromptSelection {
			return nil, s, ErrInvalidState
		}
		if cmd.PlayerID != s.ActivePlayer {
			return nil, s, ErrNotAuthorized
		}
		if !slices.Contains(s.PromptChoices, cmd.Text) {
			return nil, s, fmt.Errorf("prompt %q: %w", cmd.Text, ErrNotFound)
		}
		return n.enterDrawing(cmd.At, cmd.Text), n, nil

	case CmdUpdateDrawing:
		if s.Phase != PhaseDrawing {
			return nil, s, ErrInvalidState
		}
		if cmd.PlayerID != s.ActivePlayer {
			return nil, s, ErrNotAuthorized
		}
		n.Drawing = cmd.Text
		return []Event{{Type: EvtDrawingUpdated, PlayerID: cmd.PlayerID}}, n, nil

	case CmdSubmitLie:
		if s.Phase != PhaseSubmittingLies {
			return nil, s, ErrInvalidState
		}
		if cmd.PlayerID == s.ActivePlayer {
			return nil, s, ErrNotAuthorized
		}
		if !s.IsMember(cmd.PlayerID) {
			return nil, s, ErrNotFound
		}
		if _, ok := s.LieByAuthor[cmd.PlayerID]; ok {
			return nil, s, ErrDuplicateAction
		}
		text, err := validateLie(cmd.Text, s.Prompt)
		if err != nil {
			return nil, s, err
		}
		id := newLieID()
		n.Lies[id] = Lie{ID: id, AuthorID: cmd.PlayerID, Text: text}
		n.LieByAuthor[cmd.PlayerID] = id

		events := []Event{{Type: EvtLieSubmitted, PlayerID: cmd.PlayerID, LieID: id}}
		if n.allLiesIn() {
			events = append(events, n.enterVoting(cmd.At)...)
		}
		return events, n, nil

	case CmdVote:
		if s.Phase != PhaseVoting {
			return nil, s, ErrInvalidState
		}
		if cmd.PlayerID == s.ActivePlayer {
			return nil, s, ErrNotAuthorized
		}
		if !s.IsMember(cmd.PlayerID) {
			return nil, s, ErrNotFound
		}
		if _, ok := s.Votes[cmd.PlayerID]; ok {
			return nil, s, ErrDuplicateAction
		}
		lie, ok := s.Lies[cmd.LieID]
		if !ok {
			return nil, s, fmt.Errorf("lie %q: %w", cmd.LieID, ErrNotFound)
		}
		if lie.AuthorID == cmd.PlayerID {
			return nil, s, fmt.Errorf("voting for own lie: %w", ErrNotAuthorized)
		}
		n.Votes[cmd.PlayerID] = cmd.LieID

		events := []Event{{Type: EvtVoteCast, PlayerID: cmd.PlayerID, LieID: cmd.LieID}}
		if n.allVotesIn() {
			events = append(events, n.enterResults()...)
		}
		return events, n, nil

	case CmdTimeoutAdvance:
		switch s.Phase {
		case PhasePromptSelection:
			return n.enterDrawing(cmd.At, autoSelect(s.PromptChoices)), n, nil
		case PhaseDrawing:
			return n.enterSubmitting(cmd.At), n, nil
		case PhaseSubmittingLies:
			return n.enterVoting(cmd.At), n, nil
		case PhaseVoting:
			return n.enterResults(), n, nil
		default:
			return nil, s, ErrInvalidState
		}

	case CmdNextRound:
		if !cmd.FromLeader {
			return nil, s, ErrNotAuthorized
		}
		if s.Phase != PhaseResults {
			return nil, s, ErrInvalidState
		}
		if s.Round >= s.TotalRounds || len(s.Members) < MinPlayers {
			return n.reset(), n, nil
		}
		return n.beginRound(cmd.At), n, nil

	case CmdEndGame:
		if !cmd.FromLeader {
			return nil, s, ErrNotAuthorized
		}
		if s.Phase == PhaseWaiting {
			return nil, s, ErrInvalidState
		}
		return n.reset(), n, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

func (s *State) memberJoined(cmd Command) ([]Event, State, error) {
	if cmd.PlayerName != "" {
		s.Names[cmd.PlayerID] = cmd.PlayerName
	}
	if s.IsMember(cmd.PlayerID) {
		return nil, *s, nil
	}
	s.Members = append(s.Members, cmd.PlayerID)
	if s.Phase != PhaseWaiting {
		if !slices.Contains(s.Seats, cmd.PlayerID) {
			s.Seats = append(s.Seats, cmd.PlayerID)
		}
		if _, ok := s.Scores[cmd.PlayerID]; !ok {
			s.Scores[cmd.PlayerID] = Score{}
		}
	}
	return nil, *s, nil
}

// memberLeft keeps the leaver's seat, lie, votes and score; the rotation
// skips seats that are no longer members.
func (s *State) memberLeft(cmd Command) ([]Event, State, error) {
	i := slices.Index(s.Members, cmd.PlayerID)
	if i < 0 {
		return nil, *s, nil
	}
	s.Members = slices.Delete(s.Members, i, i+1)

	switch {
	case s.Phase == PhaseWaiting:
		delete(s.Names, cmd.PlayerID)
		return nil, *s, nil
	case len(s.Members) == 0:
		return s.reset(), *s, nil
	case s.Phase == PhaseSubmittingLies && s.allLiesIn():
		return s.enterVoting(cmd.At), *s, nil
	case s.Phase == PhaseVoting && s.allVotesIn():
		return s.enterResults(), *s, nil
	}
	return nil, *s, nil
}

func (s *State) beginRound(at time.Time) []Event {
	s.Round++
	s.ActivePlayer = nextActive(s.Seats, s.Members, s.ActivePlayer)
	s.clearRound()
	for id, sc := range s.Scores {
		sc.Round = 0
		s.Scores[id] = sc
	}
	s.PromptChoices = drawPrompts(s.Settings.PromptChoices)
	s.Phase = PhasePromptSelection
	s.Deadline = at.Add(s.Settings.PromptTime)
	return []Event{{Type: EvtPhaseChanged, Phase: s.Phase}}
}

func (s *State) enterDrawing(at time.Time, prompt string) []Event {
	s.Prompt = prompt
	s.Drawing = ""
	s.Phase = PhaseDrawing
	s.Deadline = at.Add(s.Settings.DrawingTime)
	return []Event{{Type: EvtPhaseChanged, Phase: s.Phase}}
}

// enterSubmitting moves straight on to voting when nobody is left to submit.
func (s *State) enterSubmitting(at time.Time) []Event {
	s.Phase = PhaseSubmittingLies
	s.Deadline = at.Add(s.Settings.SubmittingTime)
	events := []Event{{Type: EvtPhaseChanged, Phase: s.Phase}}
	if s.allLiesIn() {
		events = append(events, s.enterVoting(at)...)
	}
	return events
}

func (s *State) enterVoting(at time.Time) []Event {
	id := newLieID()
	s.Lies[id] = Lie{ID: id, AuthorID: s.ActivePlayer, Text: s.Prompt, Correct: true}

	ids := make([]string, 0, len(s.Lies))
	for lieID := range s.Lies {
		ids = append(ids, lieID)
	}
	slices.Sort(ids)
	shuffleOptions(ids)
	s.Options = ids

	s.Phase = PhaseVoting
	s.Deadline = at.Add(s.Settings.VotingTime)
	events := []Event{{Type: EvtPhaseChanged, Phase: s.Phase}}
	if s.allVotesIn() {
		events = append(events, s.enterResults()...)
	}
	return events
}

// enterResults credits the drawer for every vote on the true prompt and each
// decoy's author for every vote on their lie. Voters earn nothing.
func (s *State) enterResults() []Event {
	for _, lieID := range s.Votes {
		lie, ok := s.Lies[lieID]
		if !ok {
			continue
		}
		if lie.Correct {
			s.addPoints(s.ActivePlayer, CorrectVotePoints)
		} else {
			s.addPoints(lie.AuthorID, DecoyVotePoints)
		}
	}
	s.Phase = PhaseResults
	s.Deadline = time.Time{}
	return []Event{
		{Type: EvtPhaseChanged, Phase: s.Phase},
		{Type: EvtRoundScored},
	}
}

func (s *State) addPoints(id string, pts int) {
	sc := s.Scores[id]
	sc.Round += pts
	sc.Total += pts
	s.Scores[id] = sc
}

func (s *State) reset() []Event {
	names := make(map[string]string, len(s.Members))
	for _, id := range s.Members {
		if name, ok := s.Names[id]; ok {
			names[id] = name
		}
	}
	*s = State{
		Phase:   PhaseWaiting,
		Members: s.Members,
		Names:   names,
	}
	s.ensureMaps()
	return []Event{{Type: EvtGameReset}}
}

func (s *State) clearRound() {
	s.PromptChoices = nil
	s.Prompt = ""
	s.Drawing = ""
	s.Lies = map[string]Lie{}
	s.LieByAuthor = map[string]string{}
	s.Options = nil
	s.Votes = map[string]string{}
}

func (s *State) allLiesIn() bool {
	for _, id := range s.Members {
		if id == s.ActivePlayer {
			continue
		}
		if _, ok := s.LieByAuthor[id]; !ok {
			return false
		}
	}
	return true
}

func (s *State) allVotesIn() bool {
	for _, id := range s.Members {
		if id == s.ActivePlayer {
			continue
		}
		if _, ok := s.Votes[id]; !ok {
			return false
		}
	}
	return true
}

func validateLie(text, prompt string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty: %w", ErrInvalidLie)
	}
	if utf8.RuneCountInString(text) > MaxLieLength {
		return "", fmt.Errorf("longer than %d characters: %w", MaxLieLength, ErrInvalidLie)
	}
	if prompt != "" && levenshtein.ComputeDistance(strings.ToLower(text), strings.ToLower(prompt)) <= 1 {
		return "", fmt.Errorf("too close to the prompt: %w", ErrInvalidLie)
	}
	return text, nil
}
