package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/DoyleJ11/sketch-party-backend/internal/engine"
)

const EnvPrefix = "SKETCH"

type Config struct {
	Bind            string
	Port            int
	LogLevel        string
	Dev             bool
	PublicURL       string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// Game defaults, used when start-game leaves a value out.
	PromptTime     time.Duration
	DrawingTime    time.Duration
	SubmittingTime time.Duration
	VotingTime     time.Duration
	Rounds         int
	PromptChoices  int

	// Per connection.
	MaxMessageBytes int64
	OutboxSize      int
	EventsPerSecond float64
	EventBurst      int
	PingInterval    time.Duration
}

func Default() Config {
	game := engine.DefaultSettings()
	return Config{
		Bind:            "0.0.0.0",
		Port:            8080,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,

		PromptTime:     game.PromptTime,
		DrawingTime:    game.DrawingTime,
		SubmittingTime: game.SubmittingTime,
		VotingTime:     game.VotingTime,
		Rounds:         game.Rounds,
		PromptChoices:  game.PromptChoices,

		MaxMessageBytes: 2 << 20,
		OutboxSize:      256,
		EventsPerSecond: 40,
		EventBurst:      80,
		PingInterval:    25 * time.Second,
	}
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

func (c Config) GameDefaults() engine.Settings {
	return engine.Settings{
		PromptTime:     c.PromptTime,
		DrawingTime:    c.DrawingTime,
		SubmittingTime: c.SubmittingTime,
		VotingTime:     c.VotingTime,
		Rounds:         c.Rounds,
		PromptChoices:  c.PromptChoices,
	}
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Port < 1 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port))
	}
	if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if c.PublicURL != "" {
		if u, perr := url.Parse(c.PublicURL); perr != nil || u.Scheme == "" || u.Host == "" {
			err = multierr.Append(err, fmt.Errorf("invalid public url %q", c.PublicURL))
		}
	}
	for _, p := range []struct {
		name string
		d    time.Duration
	}{
		{"prompt-time", c.PromptTime},
		{"drawing-time", c.DrawingTime},
		{"submitting-time", c.SubmittingTime},
		{"voting-time", c.VotingTime},
	} {
		if p.d < 5*time.Second || p.d > 300*time.Second {
			err = multierr.Append(err, fmt.Errorf("%s must be between 5s and 300s: %s", p.name, p.d))
		}
	}
	if c.Rounds < 1 || c.Rounds > 20 {
		err = multierr.Append(err, fmt.Errorf("rounds must be between 1 and 20: %d", c.Rounds))
	}
	if c.PromptChoices < 1 || c.PromptChoices > 10 {
		err = multierr.Append(err, fmt.Errorf("prompt-choices must be between 1 and 10: %d", c.PromptChoices))
	}
	if c.MaxMessageBytes < 1024 {
		err = multierr.Append(err, fmt.Errorf("max-message-bytes too small: %d", c.MaxMessageBytes))
	}
	if c.OutboxSize < 1 {
		err = multierr.Append(err, fmt.Errorf("outbox-size must be positive: %d", c.OutboxSize))
	}
	if c.EventsPerSecond <= 0 || c.EventBurst < 1 {
		err = multierr.Append(err, fmt.Errorf("events-per-second and event-burst must be positive"))
	}
	if c.PingInterval <= 0 || c.ShutdownTimeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("ping-interval and shutdown-timeout must be positive"))
	}
	return err
}

func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&c.Bind, "bind", "b", c.Bind, "address to bind to (env: SKETCH_BIND)")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "port to listen on (env: SKETCH_PORT)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error (env: SKETCH_LOG_LEVEL)")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "human readable logs (env: SKETCH_DEV)")
	fs.StringVar(&c.PublicURL, "public-url", c.PublicURL, "base URL used in room share links (env: SKETCH_PUBLIC_URL)")
	fs.StringSliceVar(&c.AllowedOrigins, "allowed-origins", c.AllowedOrigins, "extra websocket origin patterns, e.g. localhost:5173 (env: SKETCH_ALLOWED_ORIGINS)")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "grace period for in-flight requests (env: SKETCH_SHUTDOWN_TIMEOUT)")

	fs.DurationVar(&c.PromptTime, "prompt-time", c.PromptTime, "default prompt selection time (env: SKETCH_PROMPT_TIME)")
	fs.DurationVar(&c.DrawingTime, "drawing-time", c.DrawingTime, "default drawing time (env: SKETCH_DRAWING_TIME)")
	fs.DurationVar(&c.SubmittingTime, "submitting-time", c.SubmittingTime, "default lie submission time (env: SKETCH_SUBMITTING_TIME)")
	fs.DurationVar(&c.VotingTime, "voting-time", c.VotingTime, "default voting time (env: SKETCH_VOTING_TIME)")
	fs.IntVar(&c.Rounds, "rounds", c.Rounds, "default number of rounds (env: SKETCH_ROUNDS)")
	fs.IntVar(&c.PromptChoices, "prompt-choices", c.PromptChoices, "prompts offered to the drawer (env: SKETCH_PROMPT_CHOICES)")

	fs.Int64Var(&c.MaxMessageBytes, "max-message-bytes", c.MaxMessageBytes, "largest accepted websocket frame (env: SKETCH_MAX_MESSAGE_BYTES)")
	fs.IntVar(&c.OutboxSize, "outbox-size", c.OutboxSize, "queued messages per connection before dropping (env: SKETCH_OUTBOX_SIZE)")
	fs.Float64Var(&c.EventsPerSecond, "events-per-second", c.EventsPerSecond, "sustained inbound events per connection (env: SKETCH_EVENTS_PER_SECOND)")
	fs.IntVar(&c.EventBurst, "event-burst", c.EventBurst, "inbound event burst per connection (env: SKETCH_EVENT_BURST)")
	fs.DurationVar(&c.PingInterval, "ping-interval", c.PingInterval, "websocket keepalive interval (env: SKETCH_PING_INTERVAL)")
}

func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// ApplyEnv fills every flag not given on the command line from the
// environment. Call it after the flags are parsed.
func ApplyEnv(fs *pflag.FlagSet, v *viper.Viper) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindEnv(f.Name)
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if serr := fs.Set(f.Name, v.GetString(f.Name)); serr != nil {
			err = multierr.Append(err, fmt.Errorf("env %s_%s: %w", EnvPrefix, strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_")), serr))
		}
	})
	return err
}
