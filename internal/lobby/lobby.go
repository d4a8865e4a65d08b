package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/sketch-party-backend/internal/engine"
	"github.com/DoyleJ11/sketch-party-backend/internal/registry"
	"github.com/DoyleJ11/sketch-party-backend/internal/types"
)

type Msg interface{ isLobbyMsg() }

type FromClient struct {
	Cmd engine.Command
}

func (FromClient) isLobbyMsg() {}

// Join adds (or renames) a member. Client is where this member's game
// messages go.
type Join struct {
	ClientID string
	Name     string
	Client   *registry.Client
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// TimerFired is enqueued by the phase timer. Gen must match the lobby's
// current generation or the fire is ignored.
type TimerFired struct{ Gen int }

func (TimerFired) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

type View struct {
	Version    int
	NumClients int
	TimerGen   int
	TimerArmed bool
	State      engine.State
}

type Config struct {
	RoomID string
	Tick   time.Duration // countdown interval, defaults to 1s
	Now    func() time.Time
	Logger *zap.Logger
}

type Lobby struct {
	roomID  string
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]*registry.Client

	timer    *time.Timer
	timerGen int
	tick     time.Duration
	ticker   *time.Ticker
	now      func() time.Time

	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLobby(parent context.Context, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	l := &Lobby{
		roomID:  cfg.RoomID,
		inbox:   make(chan Msg, 256),
		state:   engine.NewEmptyState(),
		clients: make(map[string]*registry.Client),
		tick:    cfg.Tick,
		now:     cfg.Now,
		log:     cfg.Logger.With(zap.String("room", cfg.RoomID)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		var tickC <-chan time.Time
		if l.ticker != nil {
			tickC = l.ticker.C
		}

		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-tickC:
			l.sendCountdown()

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.clients[msg.ClientID] = msg.Client
				l.apply(engine.Command{
					Type:       engine.CmdMemberJoined,
					PlayerID:   msg.ClientID,
					PlayerName: msg.Name,
					At:         l.now(),
				})
				l.catchUp(msg.ClientID)

			case Leave:
				delete(l.clients, msg.ClientID)
				l.apply(engine.Command{Type: engine.CmdMemberLeft, PlayerID: msg.ClientID, At: l.now()})

			case FromClient:
				l.apply(msg.Cmd)

			case TimerFired:
				if msg.Gen != l.timerGen {
					l.log.Debug("stale timer fire", zap.Int("gen", msg.Gen), zap.Int("current", l.timerGen))
					break
				}
				l.timer = nil
				l.apply(engine.Command{Type: engine.CmdTimeoutAdvance, At: l.now()})

			case GetState:
				// test-only: reflect internal state without data races
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					TimerGen:   l.timerGen,
					TimerArmed: l.timer != nil,
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) apply(cmd engine.Command) {
	prev := l.state
	events, next, err := engine.Apply(l.state, cmd)
	if err != nil {
		l.reject(cmd, err)
		return
	}
	l.state = next
	l.version++

	l.publish(events)

	if !next.Deadline.Equal(prev.Deadline) {
		l.armTimer()
	}
	if cmd.Type == engine.CmdStartGame || (len(events) > 0 && events[len(events)-1].Type == engine.EvtGameReset) {
		l.log.Info("game phase", zap.String("phase", string(next.Phase)), zap.Int("round", next.Round))
	}
}

// reject tells the actor about errors they can act on. The rest are races
// with the timer or stale clients and only get logged.
func (l *Lobby) reject(cmd engine.Command, err error) {
	var code string
	switch {
	case errors.Is(err, engine.ErrNotAuthorized):
		code = types.CodeNotAuthorized
	case errors.Is(err, engine.ErrDuplicateAction):
		code = types.CodeDuplicateAction
	case errors.Is(err, engine.ErrNotEnoughPlayers):
		code = types.CodeNotEnoughPlayer
	case errors.Is(err, engine.ErrInvalidLie):
		code = types.CodeInvalidLie
	}

	log := l.log.With(zap.String("cmd", string(cmd.Type)), zap.String("player", cmd.PlayerID), zap.Error(err))
	if code == "" {
		log.Debug("command dropped")
		return
	}
	log.Debug("command rejected")
	if c := l.clients[cmd.PlayerID]; c != nil {
		c.Send(types.Error(code, err.Error()))
	}
}

func (l *Lobby) armTimer() {
	l.timerGen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.state.Deadline.IsZero() {
		l.stopTicker()
		return
	}

	gen := l.timerGen
	l.timer = time.AfterFunc(max(l.state.Deadline.Sub(l.now()), 0), func() {
		select {
		case l.inbox <- TimerFired{Gen: gen}:
		case <-l.ctx.Done():
		}
	})
	if l.ticker == nil {
		l.ticker = time.NewTicker(l.tick)
	}
}

func (l *Lobby) stopTicker() {
	if l.ticker != nil {
		l.ticker.Stop()
		l.ticker = nil
	}
}

func (l *Lobby) sendCountdown() {
	secs, ok := l.state.SecondsRemaining(l.now())
	if !ok {
		l.stopTicker()
		return
	}
	l.broadcast(types.NewMessage(types.EvtTimerUpdate, types.TimerUpdate{SecondsRemaining: secs}))
}

func (l *Lobby) shutdown() {
	l.timerGen++
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.stopTicker()
	clear(l.clients) // outboxes belong to the hub
	l.cancel()
}

func (l *Lobby) broadcast(msg types.ServerMessage) {
	for id, c := range l.clients {
		if !c.Send(msg) {
			l.log.Warn("outbox full, message dropped", zap.String("client", id), zap.String("type", string(msg.Type)))
		}
	}
}

func (l *Lobby) sendTo(id string, msg types.ServerMessage) {
	if c := l.clients[id]; c != nil && !c.Send(msg) {
		l.log.Warn("outbox full, message dropped", zap.String("client", id), zap.String("type", string(msg.Type)))
	}
}

// Inbox is kept for tests; other packages use Send.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Send enqueues m unless the lobby has already stopped.
func (l *Lobby) Send(m Msg) {
	select {
	case l.inbox <- m:
	case <-l.ctx.Done():
	}
}

// Done is closed once the lobby goroutine has exited.
func (l *Lobby) Done() <-chan struct{} { return l.done }
