package engine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func stubHooks(t *testing.T) {
	t.Helper()
	oldPrompts, oldID, oldShuffle, oldAuto := drawPrompts, newLieID, shuffleOptions, autoSelect
	n := 0
	drawPrompts = func(k int) []string {
		all := []string{"banana", "castle", "robot"}
		return all[:min(k, len(all))]
	}
	newLieID = func() string {
		n++
		return fmt.Sprintf("lie-%d", n)
	}
	shuffleOptions = func([]string) {}
	autoSelect = func(c []string) string { return c[0] }
	t.Cleanup(func() {
		drawPrompts, newLieID, shuffleOptions, autoSelect = oldPrompts, oldID, oldShuffle, oldAuto
	})
}

func mustApply(t *testing.T, s State, cmd Command) ([]Event, State) {
	t.Helper()
	events, next, err := Apply(s, cmd)
	require.NoError(t, err, "apply %s", cmd.Type)
	return events, next
}

func withMembers(ids ...string) State {
	s := NewEmptyState()
	for _, id := range ids {
		_, s, _ = Apply(s, Command{Type: CmdMemberJoined, PlayerID: id, PlayerName: "name-" + id})
	}
	return s
}

func testSettings() Settings {
	s := DefaultSettings()
	s.Rounds = 3
	return s
}

// started returns a game in PROMPT_SELECTION with ids[0] drawing.
func started(t *testing.T, ids ...string) State {
	t.Helper()
	_, s := mustApply(t, withMembers(ids...), Command{Type: CmdStartGame, FromLeader: true, At: t0, Settings: testSettings()})
	return s
}

// drawing returns a game in DRAWING with prompt "banana".
func drawing(t *testing.T, ids ...string) State {
	t.Helper()
	s := started(t, ids...)
	_, s = mustApply(t, s, Command{Type: CmdSelectPrompt, PlayerID: s.ActivePlayer, Text: "banana", At: t0})
	return s
}

func timeout(t *testing.T, s State) State {
	t.Helper()
	_, s = mustApply(t, s, Command{Type: CmdTimeoutAdvance, At: t0})
	return s
}

func hasEvent(events []Event, typ EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestStartGame(t *testing.T) {
	stubHooks(t)

	cases := []struct {
		name    string
		setup   State
		leader  bool
		wantErr error
	}{
		{name: "non-leader cannot start", setup: withMembers("a", "b"), leader: false, wantErr: ErrNotAuthorized},
		{name: "needs two members", setup: withMembers("a"), leader: true, wantErr: ErrNotEnoughPlayers},
		{name: "already running", setup: started(t, "a", "b"), leader: true, wantErr: ErrInvalidState},
		{name: "ok", setup: withMembers("a", "b"), leader: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, s, err := Apply(tc.setup, Command{Type: CmdStartGame, FromLeader: tc.leader, At: t0, Settings: testSettings()})
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			require.NoError(t, err)
			assert.True(t, hasEvent(events, EvtPhaseChanged))
			assert.Equal(t, PhasePromptSelection, s.Phase)
			assert.Equal(t, 1, s.Round)
			assert.Equal(t, 3, s.TotalRounds)
			assert.Equal(t, "a", s.ActivePlayer)
			assert.Equal(t, []string{"banana", "castle", "robot"}, s.PromptChoices)
			assert.Equal(t, t0.Add(testSettings().PromptTime), s.Deadline)
			assert.Equal(t, map[string]Score{"a": {}, "b": {}}, s.Scores)
		})
	}
}

func TestSelectPrompt(t *testing.T) {
	stubHooks(t)
	s := started(t, "a", "b")

	_, _, err := Apply(s, Command{Type: CmdSelectPrompt, PlayerID: "b", Text: "banana"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, _, err = Apply(s, Command{Type: CmdSelectPrompt, PlayerID: "a", Text: "not offered"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, next := mustApply(t, s, Command{Type: CmdSelectPrompt, PlayerID: "a", Text: "castle", At: t0})
	assert.Equal(t, PhaseDrawing, next.Phase)
	assert.Equal(t, "castle", next.Prompt)
	assert.Equal(t, t0.Add(testSettings().DrawingTime), next.Deadline)
}

func TestPromptTimeout_AutoSelects(t *testing.T) {
	stubHooks(t)
	s := timeout(t, started(t, "a", "b"))
	assert.Equal(t, PhaseDrawing, s.Phase)
	assert.Equal(t, "banana", s.Prompt)
}

func TestDrawingUpdate_LastWriteWins(t *testing.T) {
	stubHooks(t)
	s := drawing(t, "a", "b")

	_, _, err := Apply(s, Command{Type: CmdUpdateDrawing, PlayerID: "b", Text: "data:b"})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, s = mustApply(t, s, Command{Type: CmdUpdateDrawing, PlayerID: "a", Text: "data:1"})
	events, s := mustApply(t, s, Command{Type: CmdUpdateDrawing, PlayerID: "a", Text: "data:2"})
	assert.True(t, hasEvent(events, EvtDrawingUpdated))
	assert.Equal(t, "data:2", s.Drawing)
}

func TestDrawingTimeout_MovesToLiesWithoutDrawing(t *testing.T) {
	stubHooks(t)
	s := drawing(t, "a", "b", "c")
	require.Empty(t, s.Drawing)

	s = timeout(t, s)
	assert.Equal(t, PhaseSubmittingLies, s.Phase)
	assert.Equal(t, t0.Add(testSettings().SubmittingTime), s.Deadline)
}

func TestSubmitLie_Rules(t *testing.T) {
	stubHooks(t)
	base := timeout(t, drawing(t, "a", "b", "c"))

	cases := []struct {
		name    string
		setup   State
		player  string
		text    string
		wantErr error
	}{
		{name: "drawer cannot lie", setup: base, player: "a", text: "apple", wantErr: ErrNotAuthorized},
		{name: "stranger", setup: base, player: "zzz", text: "apple", wantErr: ErrNotFound},
		{name: "empty", setup: base, player: "b", text: "   ", wantErr: ErrInvalidLie},
		{name: "same as prompt", setup: base, player: "b", text: "Banana", wantErr: ErrInvalidLie},
		{name: "one edit away from prompt", setup: base, player: "b", text: "bananas", wantErr: ErrInvalidLie},
		{name: "wrong phase", setup: drawing(t, "a", "b", "c"), player: "b", text: "apple", wantErr: ErrInvalidState},
		{name: "ok", setup: base, player: "b", text: "  plantain "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, s, err := Apply(tc.setup, Command{Type: CmdSubmitLie, PlayerID: tc.player, Text: tc.text, At: t0})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, hasEvent(events, EvtLieSubmitted))
			lie := s.Lies[s.LieByAuthor["b"]]
			assert.Equal(t, "plantain", lie.Text)
			assert.Equal(t, PhaseSubmittingLies, s.Phase, "c has not submitted yet")
		})
	}
}

func TestSubmitLie_SecondSubmissionRejected(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c"))

	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
	_, after, err := Apply(s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "mango", At: t0})

	assert.ErrorIs(t, err, ErrDuplicateAction)
	assert.Len(t, after.Lies, 1)
	assert.Equal(t, "plantain", after.Lies[after.LieByAuthor["b"]].Text)
}

func TestSubmitLie_AllInMovesToVoting(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c"))

	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
	events, s := mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "c", Text: "mango", At: t0})

	assert.True(t, hasEvent(events, EvtPhaseChanged))
	assert.Equal(t, PhaseVoting, s.Phase)
	assert.Len(t, s.Options, 3, "two lies plus the prompt")

	correct := 0
	for _, id := range s.Options {
		if s.Lies[id].Correct {
			correct++
			assert.Equal(t, "banana", s.Lies[id].Text)
			assert.Equal(t, "a", s.Lies[id].AuthorID)
		}
	}
	assert.Equal(t, 1, correct)
}

func TestScoring_BananaPlantain(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c", "d"))

	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
	s = timeout(t, s)
	require.Equal(t, PhaseVoting, s.Phase)

	var bananaID, plantainID string
	for id, lie := range s.Lies {
		if lie.Correct {
			bananaID = id
		} else {
			plantainID = id
		}
	}

	_, s = mustApply(t, s, Command{Type: CmdVote, PlayerID: "b", LieID: bananaID})
	_, s = mustApply(t, s, Command{Type: CmdVote, PlayerID: "c", LieID: bananaID})
	events, s := mustApply(t, s, Command{Type: CmdVote, PlayerID: "d", LieID: plantainID})

	assert.True(t, hasEvent(events, EvtRoundScored))
	assert.Equal(t, PhaseResults, s.Phase)
	assert.True(t, s.Deadline.IsZero())
	assert.Equal(t, Score{Total: 1000, Round: 1000}, s.Scores["a"])
	assert.Equal(t, Score{Total: 100, Round: 100}, s.Scores["b"])
	assert.Equal(t, Score{}, s.Scores["c"], "voting correctly earns nothing")
	assert.Equal(t, Score{}, s.Scores["d"])
	assert.Equal(t, []string{"b", "c"}, s.VotersFor(bananaID))
}

func TestVote_Rules(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c"))
	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
	s = timeout(t, s)
	own := s.LieByAuthor["b"]

	cases := []struct {
		name    string
		player  string
		lie     string
		wantErr error
	}{
		{name: "drawer cannot vote", player: "a", lie: own, wantErr: ErrNotAuthorized},
		{name: "own lie", player: "b", lie: own, wantErr: ErrNotAuthorized},
		{name: "unknown lie", player: "c", lie: "nope", wantErr: ErrNotFound},
		{name: "stranger", player: "zzz", lie: own, wantErr: ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Apply(s, Command{Type: CmdVote, PlayerID: tc.player, LieID: tc.lie})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("second vote rejected", func(t *testing.T) {
		// with three players c's vote would finish the round
		s4 := timeout(t, drawing(t, "a", "b", "c", "d"))
		s4 = timeout(t, s4)
		var correct string
		for id := range s4.Lies {
			correct = id
		}
		_, s4 = mustApply(t, s4, Command{Type: CmdVote, PlayerID: "c", LieID: correct})
		_, after, err := Apply(s4, Command{Type: CmdVote, PlayerID: "c", LieID: correct})
		assert.ErrorIs(t, err, ErrDuplicateAction)
		assert.Equal(t, correct, after.Votes["c"])
	})

	t.Run("vote before voting phase", func(t *testing.T) {
		_, _, err := Apply(drawing(t, "a", "b"), Command{Type: CmdVote, PlayerID: "b", LieID: own})
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestVotingTimeout_TalliesWhatExists(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c", "d"))
	s = timeout(t, s) // no lies at all
	require.Equal(t, PhaseVoting, s.Phase)
	require.Len(t, s.Options, 1)

	_, s = mustApply(t, s, Command{Type: CmdVote, PlayerID: "b", LieID: s.Options[0]})
	s = timeout(t, s)

	assert.Equal(t, PhaseResults, s.Phase)
	assert.Equal(t, 500, s.Scores["a"].Total)
}

func playRound(t *testing.T, s State) State {
	t.Helper()
	for s.Phase != PhaseResults {
		s = timeout(t, s)
	}
	return s
}

func TestRotation_SkipsDepartedPlayer(t *testing.T) {
	stubHooks(t)
	s := playRound(t, started(t, "a", "b", "c"))
	require.Equal(t, "a", s.ActivePlayer)

	_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "b"})
	_, s = mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
	assert.Equal(t, "c", s.ActivePlayer, "b left and is skipped")
	assert.Equal(t, 2, s.Round)

	s = playRound(t, s)
	_, s = mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
	assert.Equal(t, "a", s.ActivePlayer)
}

func TestRotation_LateJoinerGetsASeat(t *testing.T) {
	stubHooks(t)
	s := started(t, "a", "b")
	_, s = mustApply(t, s, Command{Type: CmdMemberJoined, PlayerID: "c", PlayerName: "Carol"})
	assert.Equal(t, []string{"a", "b", "c"}, s.Seats)
	assert.Contains(t, s.Scores, "c")

	for _, want := range []string{"b", "c", "a"} {
		s = playRound(t, s)
		s.TotalRounds = 10
		_, s = mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
		assert.Equal(t, want, s.ActivePlayer)
	}
}

func TestActivePlayerLeavesMidRound(t *testing.T) {
	stubHooks(t)
	s := drawing(t, "a", "b", "c")

	_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "a"})
	assert.Equal(t, PhaseDrawing, s.Phase, "timer still drives the round")

	s = timeout(t, s)
	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "c", Text: "mango", At: t0})
	require.Equal(t, PhaseVoting, s.Phase)

	var correct string
	for id, lie := range s.Lies {
		if lie.Correct {
			correct = id
		}
	}
	_, s = mustApply(t, s, Command{Type: CmdVote, PlayerID: "b", LieID: correct})
	_, s = mustApply(t, s, Command{Type: CmdVote, PlayerID: "c", LieID: s.LieByAuthor["b"]})

	assert.Equal(t, PhaseResults, s.Phase)
	assert.Equal(t, 500, s.Scores["a"].Total, "departed drawer keeps credit")
	assert.Equal(t, 100, s.Scores["b"].Total)
	assert.Equal(t, "name-a", s.Names["a"])

	_, s = mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
	assert.Equal(t, "b", s.ActivePlayer)
}

func TestMemberLeft_CompletesPhase(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c"))
	_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})

	events, s := mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "c", At: t0})
	assert.True(t, hasEvent(events, EvtPhaseChanged))
	assert.Equal(t, PhaseVoting, s.Phase)
	assert.Contains(t, s.Lies, s.LieByAuthor["b"])
}

func TestMemberLeft_LastOneResets(t *testing.T) {
	stubHooks(t)
	s := drawing(t, "a", "b")
	_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "a"})
	events, s := mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "b"})
	assert.True(t, hasEvent(events, EvtGameReset))
	assert.Equal(t, PhaseWaiting, s.Phase)
}

func TestDrawerAlone_SkipsToResults(t *testing.T) {
	stubHooks(t)

	t.Run("others leave while drawing", func(t *testing.T) {
		s := drawing(t, "a", "b", "c")
		_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "b", At: t0})
		_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "c", At: t0})
		require.Equal(t, PhaseDrawing, s.Phase)

		events, s := mustApply(t, s, Command{Type: CmdTimeoutAdvance, At: t0})
		var phases []Phase
		for _, e := range events {
			if e.Type == EvtPhaseChanged {
				phases = append(phases, e.Phase)
			}
		}
		assert.Equal(t, []Phase{PhaseSubmittingLies, PhaseVoting, PhaseResults}, phases)
		assert.True(t, hasEvent(events, EvtRoundScored))
		assert.Equal(t, PhaseResults, s.Phase)
		assert.True(t, s.Deadline.IsZero())
		assert.Zero(t, s.Scores["a"].Total)
	})

	t.Run("others leave while submitting", func(t *testing.T) {
		s := timeout(t, drawing(t, "a", "b", "c"))
		_, s = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
		_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "b", At: t0})
		require.Equal(t, PhaseSubmittingLies, s.Phase)

		events, s := mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "c", At: t0})
		assert.True(t, hasEvent(events, EvtRoundScored))
		assert.Equal(t, PhaseResults, s.Phase)
		assert.Len(t, s.Lies, 2, "departed player's lie is still shown")
	})
}

func TestNextRound(t *testing.T) {
	stubHooks(t)

	t.Run("only leader", func(t *testing.T) {
		s := playRound(t, started(t, "a", "b"))
		_, _, err := Apply(s, Command{Type: CmdNextRound, FromLeader: false})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("only from results", func(t *testing.T) {
		_, _, err := Apply(started(t, "a", "b"), Command{Type: CmdNextRound, FromLeader: true})
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("last round resets", func(t *testing.T) {
		s := playRound(t, started(t, "a", "b"))
		s.TotalRounds = 1
		events, s := mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
		assert.True(t, hasEvent(events, EvtGameReset))
		assert.Equal(t, PhaseWaiting, s.Phase)
		assert.Equal(t, []string{"a", "b"}, s.Members)
		assert.Empty(t, s.Scores)
		assert.Zero(t, s.Round)
	})

	t.Run("too few players resets", func(t *testing.T) {
		s := playRound(t, started(t, "a", "b"))
		_, s = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "b"})
		events, s := mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
		assert.True(t, hasEvent(events, EvtGameReset))
		assert.Equal(t, PhaseWaiting, s.Phase)
	})

	t.Run("round scores reset, totals carry", func(t *testing.T) {
		s := timeout(t, drawing(t, "a", "b"))
		s = timeout(t, s)
		_, s = mustApply(t, s, Command{Type: CmdVote, PlayerID: "b", LieID: s.Options[0]})
		require.Equal(t, 500, s.Scores["a"].Round)

		_, s = mustApply(t, s, Command{Type: CmdNextRound, FromLeader: true, At: t0})
		assert.Equal(t, Score{Total: 500}, s.Scores["a"])
		assert.Equal(t, "b", s.ActivePlayer)
	})
}

func TestEndGame(t *testing.T) {
	stubHooks(t)
	s := drawing(t, "a", "b")

	_, _, err := Apply(s, Command{Type: CmdEndGame, FromLeader: false})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	events, s := mustApply(t, s, Command{Type: CmdEndGame, FromLeader: true})
	assert.True(t, hasEvent(events, EvtGameReset))
	assert.Equal(t, PhaseWaiting, s.Phase)
	assert.True(t, s.Deadline.IsZero())

	_, _, err = Apply(s, Command{Type: CmdEndGame, FromLeader: true})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestTimeout_InWaitingIsInvalid(t *testing.T) {
	_, _, err := Apply(withMembers("a", "b"), Command{Type: CmdTimeoutAdvance, At: t0})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	stubHooks(t)
	s := timeout(t, drawing(t, "a", "b", "c"))

	_, _ = mustApply(t, s, Command{Type: CmdSubmitLie, PlayerID: "b", Text: "plantain", At: t0})
	assert.Empty(t, s.Lies)
	assert.Empty(t, s.LieByAuthor)

	_, _ = mustApply(t, s, Command{Type: CmdMemberLeft, PlayerID: "c"})
	assert.Equal(t, []string{"a", "b", "c"}, s.Members)
}

func TestApply_UnsupportedCommand(t *testing.T) {
	_, _, err := Apply(NewEmptyState(), Command{Type: "Teleport"})
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestNextActive(t *testing.T) {
	cases := []struct {
		name    string
		seats   []string
		members []string
		prev    string
		want    string
	}{
		{name: "first round", seats: []string{"a", "b", "c"}, members: []string{"a", "b", "c"}, want: "a"},
		{name: "next seat", seats: []string{"a", "b", "c"}, members: []string{"a", "b", "c"}, prev: "a", want: "b"},
		{name: "wraps", seats: []string{"a", "b", "c"}, members: []string{"a", "b", "c"}, prev: "c", want: "a"},
		{name: "skips departed", seats: []string{"a", "b", "c"}, members: []string{"a", "c"}, prev: "a", want: "c"},
		{name: "departed prev", seats: []string{"a", "b", "c"}, members: []string{"a", "c"}, prev: "b", want: "c"},
		{name: "nobody left", seats: []string{"a"}, members: nil, prev: "a", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nextActive(tc.seats, tc.members, tc.prev); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveSettings(t *testing.T) {
	def := DefaultSettings()

	got := ResolveSettings(def, 0, 0, 0, 0, 0)
	assert.Equal(t, def, got)

	got = ResolveSettings(def, 1, 90, 1000, 40, 50)
	assert.Equal(t, 5*time.Second, got.PromptTime, "clamped up")
	assert.Equal(t, 90*time.Second, got.DrawingTime)
	assert.Equal(t, 300*time.Second, got.SubmittingTime, "clamped down")
	assert.Equal(t, 40*time.Second, got.VotingTime)
	assert.Equal(t, 20, got.Rounds)
}

func TestSecondsRemaining(t *testing.T) {
	s := NewEmptyState()
	_, ok := s.SecondsRemaining(t0)
	assert.False(t, ok)

	s.Deadline = t0.Add(2500 * time.Millisecond)
	secs, ok := s.SecondsRemaining(t0)
	assert.True(t, ok)
	assert.Equal(t, 3, secs)

	secs, _ = s.SecondsRemaining(t0.Add(time.Hour))
	assert.Zero(t, secs)
}
