package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"

	"trivia/chat"
	"trivia/clues"
	"trivia/config"
	"trivia/game"
	"trivia/jservice"
	"trivia/logger"
	"trivia/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logg := logger.New(cfg.LogLevel, cfg.LogPretty)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	var store storage.Store
	switch cfg.Storage {
	case "postgres":
		pg, err := storage.NewPostgresStore(context.Background(), cfg.PostgresURL)
		if err != nil {
			logg.Fatal().Err(err).Msg("postgres init failed")
		}
		defer pg.Close()
		store = pg
	case "file":
		fs, err := storage.NewFileStore(cfg.DataDir)
		if err != nil {
			logg.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("data dir init failed")
		}
		store = fs
	default:
		logg.Fatal().Str("storage", cfg.Storage).Msg("unknown storage backend")
	}

	client := jservice.NewClient(cfg.JServiceURL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	drawer := clues.NewDrawer(client, cfg.Game.DefaultPoints, rng, logg)

	tmpl, err := game.ParseTemplates(cfg.Templates)
	if err != nil {
		logg.Fatal().Err(err).Msg("bad message template")
	}

	hub := chat.NewHub(logg)
	games := game.NewManager(drawer, client, store, hub, tmpl, cfg.Game.Defaults(), logg)
	handler := chat.NewHandler(hub, games, store, cfg.AllowedOrigins, logg)

	r := handler.Router(cfg.AllowedOrigins)
	logg.Info().Str("addr", cfg.ListenAddr).Str("storage", cfg.Storage).Msg("trivia listening")
	if err := r.Run(cfg.ListenAddr); err != nil {
		logg.Fatal().Err(err).Msg("server exited")
	}
}
