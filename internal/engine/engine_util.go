package engine

import (
	"maps"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/sketch-party-backend/internal/prompts"
)

// Swapped out in tests.
var (
	drawPrompts    = prompts.Pick
	newLieID       = uuid.NewString
	shuffleOptions = func(ids []string) {
		rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	autoSelect = func(choices []string) string {
		if len(choices) == 0 {
			return ""
		}
		return choices[rand.IntN(len(choices))]
	}
)

const (
	minPhaseTime = 5 * time.Second
	maxPhaseTime = 300 * time.Second
	maxRounds    = 20
)

func NewEmptyState() State {
	s := State{Phase: PhaseWaiting}
	s.ensureMaps()
	return s
}

// DefaultSettings mirrors the timings the web client ships with.
func DefaultSettings() Settings {
	return Settings{
		PromptTime:     20 * time.Second,
		DrawingTime:    60 * time.Second,
		SubmittingTime: 45 * time.Second,
		VotingTime:     30 * time.Second,
		Rounds:         3,
		PromptChoices:  3,
	}
}

// ResolveSettings applies client-supplied seconds on top of defaults. Zero or
// negative values keep the default; everything else is clamped.
func ResolveSettings(defaults Settings, promptSec, drawingSec, submittingSec, votingSec, rounds int) Settings {
	s := defaults
	s.PromptTime = pickDuration(defaults.PromptTime, promptSec)
	s.DrawingTime = pickDuration(defaults.DrawingTime, drawingSec)
	s.SubmittingTime = pickDuration(defaults.SubmittingTime, submittingSec)
	s.VotingTime = pickDuration(defaults.VotingTime, votingSec)
	if rounds > 0 {
		s.Rounds = min(rounds, maxRounds)
	}
	if s.Rounds < 1 {
		s.Rounds = 1
	}
	return s
}

func pickDuration(def time.Duration, sec int) time.Duration {
	if sec <= 0 {
		return def
	}
	return min(max(time.Duration(sec)*time.Second, minPhaseTime), maxPhaseTime)
}

func (s State) IsMember(id string) bool {
	return slices.Contains(s.Members, id)
}

func (s State) InGame() bool {
	return s.Phase != PhaseWaiting
}

// SecondsRemaining rounds up so a client never sees 0 before the phase ends.
func (s State) SecondsRemaining(now time.Time) (int, bool) {
	if s.Deadline.IsZero() {
		return 0, false
	}
	left := s.Deadline.Sub(now)
	if left <= 0 {
		return 0, true
	}
	return int(math.Ceil(left.Seconds())), true
}

// VotersFor lists voters for a lie in a stable order.
func (s State) VotersFor(lieID string) []string {
	var out []string
	for voter, id := range s.Votes {
		if id == lieID {
			out = append(out, voter)
		}
	}
	slices.Sort(out)
	return out
}

func (s *State) ensureMaps() {
	if s.Names == nil {
		s.Names = map[string]string{}
	}
	if s.Lies == nil {
		s.Lies = map[string]Lie{}
	}
	if s.LieByAuthor == nil {
		s.LieByAuthor = map[string]string{}
	}
	if s.Votes == nil {
		s.Votes = map[string]string{}
	}
	if s.Scores == nil {
		s.Scores = map[string]Score{}
	}
}

func cloneState(s State) State {
	n := s
	n.Members = slices.Clone(s.Members)
	n.Seats = slices.Clone(s.Seats)
	n.PromptChoices = slices.Clone(s.PromptChoices)
	n.Options = slices.Clone(s.Options)
	n.Names = maps.Clone(s.Names)
	n.Lies = maps.Clone(s.Lies)
	n.LieByAuthor = maps.Clone(s.LieByAuthor)
	n.Votes = maps.Clone(s.Votes)
	n.Scores = maps.Clone(s.Scores)
	n.ensureMaps()
	return n
}
