package chat

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"trivia/game"
	"trivia/storage"
)

// Handler owns the HTTP surface: the websocket join endpoint and the
// score lookup endpoint.
type Handler struct {
	hub      *Hub
	games    GameService
	store    storage.Store
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(hub *Hub, games GameService, store storage.Store, allowedOrigins []string, log zerolog.Logger) *Handler {
	return &Handler{
		hub:   hub,
		games: games,
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		log: log,
	}
}

// Router builds the gin engine with all routes mounted.
func (h *Handler) Router(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
		}))
	}

	r.GET("/ws/:channel", h.JoinChannel)
	r.GET("/stats/:channel", h.ChannelStats)
	return r
}

// JoinChannel upgrades the request and attaches the connection to the
// channel under the display name from the query string.
func (h *Handler) JoinChannel(ctx *gin.Context) {
	channel := ctx.Param("channel")
	name := strings.TrimSpace(ctx.Query("name"))
	if name == "" {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Str("channel", channel).Msg("websocket upgrade failed")
		return
	}

	c := newClient(channel, name, conn, h.hub, h, h.log)
	h.hub.join(c)
	go c.writePump()
	go c.readPump()
}

// ChannelStats serves the channel's persisted scores as JSON.
func (h *Handler) ChannelStats(ctx *gin.Context) {
	channel := ctx.Param("channel")
	scores, err := h.store.LoadScores(channel)
	if err != nil {
		h.log.Error().Err(err).Str("channel", channel).Msg("score load failed")
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "scores unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"channel": channel, "scores": scores})
}

// dispatch routes one inbound line: a !command drives the game, anything
// else is a guess.
func (h *Handler) dispatch(c *client, line string) {
	if !strings.HasPrefix(line, "!") {
		h.games.Answer(c.channel, c.name, line)
		return
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "!start":
		opts := game.ParseStartArgs(fields[1:])
		// clue acquisition can take a while, keep the read pump free
		go func() {
			if err := h.games.Start(context.Background(), c.channel, opts); err != nil {
				h.log.Debug().Err(err).Str("channel", c.channel).Msg("start rejected")
			}
		}()
	case "!stop":
		if err := h.games.Stop(c.channel); errors.Is(err, game.ErrNoSession) {
			h.hub.Notify(c.channel, "No game running here.")
		}
	case "!hint":
		h.games.Hint(c.channel)
	case "!question":
		h.games.Question(c.channel)
	case "!skip":
		h.games.Skip(c.channel)
	case "!report":
		go h.games.Report(context.Background(), c.channel)
	case "!stats":
		var player string
		var topN int
		for _, arg := range fields[1:] {
			if n, err := strconv.Atoi(arg); err == nil {
				topN = n
			} else {
				player = arg
			}
		}
		h.games.Stats(c.channel, player, topN)
	default:
		h.log.Debug().Str("channel", c.channel).Str("command", fields[0]).Msg("unknown command")
	}
}
