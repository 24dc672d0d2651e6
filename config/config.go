// Package config loads the process configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"trivia/game"
)

// Config is the full process configuration.
type Config struct {
	ListenAddr     string   `env:"LISTEN_ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool     `env:"LOG_PRETTY" envDefault:"false"`

	JServiceURL string `env:"JSERVICE_URL" envDefault:"https://jservice.io"`

	// Storage selects where scores and history live: "file" or "postgres".
	Storage     string `env:"STORAGE" envDefault:"file"`
	DataDir     string `env:"DATA_DIR" envDefault:"data"`
	PostgresURL string `env:"POSTGRES_URL"`

	Game      Game
	Templates game.TemplateConfig
}

// Game carries the per-channel game defaults; a start command can override
// most of them per game.
type Game struct {
	Questions       int     `env:"GAME_QUESTIONS" envDefault:"10"`
	DefaultPoints   int     `env:"GAME_DEFAULT_POINTS" envDefault:"100"`
	Hints           int     `env:"GAME_HINTS" envDefault:"3"`
	TimeoutSec      int     `env:"GAME_TIMEOUT" envDefault:"90"`
	DelaySec        int     `env:"GAME_DELAY" envDefault:"3"`
	HintFraction    float64 `env:"GAME_HINT_FRACTION" envDefault:"0.25"`
	HintReduction   float64 `env:"GAME_HINT_REDUCTION" envDefault:"0.25"`
	Flexibility     float64 `env:"GAME_FLEXIBILITY" envDefault:"0.8"`
	TimeReplies     int     `env:"GAME_TIME_REPLIES" envDefault:"2"`
	InactiveShutoff int     `env:"GAME_INACTIVE_SHUTOFF" envDefault:"7"`
	BlankChar       string  `env:"GAME_BLANK_CHAR" envDefault:"*"`
	ShowHints       bool    `env:"GAME_SHOW_HINTS" envDefault:"true"`
	ShowBlank       bool    `env:"GAME_SHOW_BLANK" envDefault:"false"`
	ShowTime        bool    `env:"GAME_SHOW_TIME" envDefault:"true"`
	KeepHistory     bool    `env:"GAME_KEEP_HISTORY" envDefault:"true"`
	Shuffle         bool    `env:"GAME_SHUFFLE" envDefault:"false"`
	AutoRestart     bool    `env:"GAME_AUTO_RESTART" envDefault:"false"`
	ShowScores      bool    `env:"GAME_SHOW_SCORES" envDefault:"true"`
	TopFinishers    int     `env:"GAME_TOP_FINISHERS" envDefault:"3"`
}

// Load reads .env if present, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Defaults converts the environment values into the game engine's config.
func (g Game) Defaults() game.Config {
	blank := '*'
	for _, r := range g.BlankChar {
		blank = r
		break
	}
	return game.Config{
		Num:             g.Questions,
		Hints:           g.Hints,
		Timeout:         time.Duration(g.TimeoutSec) * time.Second,
		Delay:           time.Duration(g.DelaySec) * time.Second,
		HintFraction:    g.HintFraction,
		HintReduction:   g.HintReduction,
		Flexibility:     g.Flexibility,
		TimeReplies:     g.TimeReplies,
		InactiveShutoff: g.InactiveShutoff,
		ShowHints:       g.ShowHints,
		ShowBlank:       g.ShowBlank,
		ShowTime:        g.ShowTime,
		KeepHistory:     g.KeepHistory,
		Shuffle:         g.Shuffle,
		Restart:         g.AutoRestart,
		ShowScores:      g.ShowScores,
		TopFinishers:    g.TopFinishers,
		BlankChar:       blank,
	}
}
