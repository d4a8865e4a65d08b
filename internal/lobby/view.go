package lobby

import (
	"slices"
	"time"

	"github.com/DoyleJ11/sketch-party-backend/internal/engine"
	"github.com/DoyleJ11/sketch-party-backend/internal/types"
)

// publish turns engine events into outbound messages. Messages whose content
// depends on who is looking are built per recipient.
func (l *Lobby) publish(events []engine.Event) {
	s := l.state
	for _, ev := range events {
		switch ev.Type {
		case engine.EvtPhaseChanged:
			// A phase that completed on entry is passed through silently.
			if ev.Phase != s.Phase {
				continue
			}
			l.sendStateToAll()
			switch ev.Phase {
			case engine.PhaseSubmittingLies:
				l.broadcast(types.NewMessage(types.EvtLiesUpdate, submittedLies(s)))
			case engine.PhaseVoting:
				for id := range l.clients {
					l.sendTo(id, types.NewMessage(types.EvtLiesUpdate, votingOptions(s, id)))
				}
			}

		case engine.EvtDrawingUpdated:
			msg := types.NewMessage(types.EvtDrawingUpdate, types.DrawingUpdate{DataURL: s.Drawing})
			for id := range l.clients {
				if id != s.ActivePlayer {
					l.sendTo(id, msg)
				}
			}

		case engine.EvtLieSubmitted:
			l.broadcast(types.NewMessage(types.EvtLiesUpdate, submittedLies(s)))

		case engine.EvtRoundScored:
			l.broadcast(types.NewMessage(types.EvtRoundResults, roundResults(s)))

		case engine.EvtGameReset:
			l.broadcast(types.NewMessage(types.EvtGameReset, struct{}{}))
			l.sendStateToAll()
		}
	}
}

func (l *Lobby) sendStateToAll() {
	now := l.now()
	for id := range l.clients {
		l.sendTo(id, types.NewMessage(types.EvtGameStateUpdate, stateFor(l.state, id, now)))
	}
}

// catchUp brings a (re)joining member up to date with the running game.
func (l *Lobby) catchUp(id string) {
	s := l.state
	l.sendTo(id, types.NewMessage(types.EvtGameStateUpdate, stateFor(s, id, l.now())))

	switch s.Phase {
	case engine.PhaseDrawing, engine.PhaseSubmittingLies, engine.PhaseVoting:
		if s.Drawing != "" && id != s.ActivePlayer {
			l.sendTo(id, types.NewMessage(types.EvtDrawingUpdate, types.DrawingUpdate{DataURL: s.Drawing}))
		}
	}
	switch s.Phase {
	case engine.PhaseSubmittingLies:
		l.sendTo(id, types.NewMessage(types.EvtLiesUpdate, submittedLies(s)))
	case engine.PhaseVoting:
		l.sendTo(id, types.NewMessage(types.EvtLiesUpdate, votingOptions(s, id)))
	case engine.PhaseResults:
		l.sendTo(id, types.NewMessage(types.EvtRoundResults, roundResults(s)))
	}
}

// stateFor hides the prompt from everyone but the drawer until the results,
// and the prompt choices from everyone but the drawer.
func stateFor(s engine.State, recipient string, now time.Time) types.GameStateUpdate {
	u := types.GameStateUpdate{GameState: string(s.Phase)}
	if !s.InGame() {
		return u
	}

	u.CurrentRound = s.Round
	u.TotalRounds = s.TotalRounds
	if s.ActivePlayer != "" {
		u.ActivePlayer = &types.Player{ID: s.ActivePlayer, Name: s.Names[s.ActivePlayer]}
	}
	if secs, ok := s.SecondsRemaining(now); ok {
		u.Countdown = &secs
	}

	drawer := recipient == s.ActivePlayer
	if drawer && s.Phase == engine.PhasePromptSelection {
		u.DrawingPrompts = slices.Clone(s.PromptChoices)
	}
	if drawer || s.Phase == engine.PhaseResults {
		u.Prompt = s.Prompt
	}
	return u
}

// submittedLies lists who has submitted, in seat order, without the text.
func submittedLies(s engine.State) []types.LieEntry {
	out := make([]types.LieEntry, 0, len(s.LieByAuthor))
	for _, author := range s.Seats {
		id, ok := s.LieByAuthor[author]
		if !ok {
			continue
		}
		out = append(out, types.LieEntry{ID: id, PlayerID: author, PlayerName: s.Names[author]})
	}
	return out
}

// votingOptions lists every option's text. Only the recipient's own lie
// carries an author.
func votingOptions(s engine.State, recipient string) []types.LieEntry {
	out := make([]types.LieEntry, 0, len(s.Options))
	for _, id := range s.Options {
		lie := s.Lies[id]
		e := types.LieEntry{ID: id, Text: lie.Text}
		if lie.AuthorID == recipient {
			e.PlayerID = recipient
		}
		out = append(out, e)
	}
	return out
}

func roundResults(s engine.State) types.RoundResults {
	res := types.RoundResults{
		Prompt: s.Prompt,
		Lies:   make([]types.ResultLie, 0, len(s.Options)),
		Scores: make(map[string]types.ScoreEntry, len(s.Scores)),
	}
	for _, id := range s.Options {
		lie := s.Lies[id]
		votes := make([]types.VoteEntry, 0)
		for _, voter := range s.VotersFor(id) {
			votes = append(votes, types.VoteEntry{VoterID: voter, VoterName: s.Names[voter]})
		}
		res.Lies = append(res.Lies, types.ResultLie{
			ID:         id,
			Text:       lie.Text,
			PlayerName: s.Names[lie.AuthorID],
			IsCorrect:  lie.Correct,
			Votes:      votes,
		})
	}
	for id, sc := range s.Scores {
		res.Scores[id] = types.ScoreEntry{Name: s.Names[id], Total: sc.Total, RoundScore: sc.Round}
	}
	return res
}
