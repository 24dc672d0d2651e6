package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia/game"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type chatHarness struct {
	hub    *Hub
	games  *recordingGame
	store  *fakeScoreStore
	router *gin.Engine
	srv    *httptest.Server
}

func newChatHarness(t *testing.T) *chatHarness {
	t.Helper()
	h := &chatHarness{
		hub:   NewHub(zerolog.Nop()),
		games: &recordingGame{},
		store: &fakeScoreStore{scores: map[string]map[string]int{}},
	}
	handler := NewHandler(h.hub, h.games, h.store, nil, zerolog.Nop())
	h.router = handler.Router(nil)
	h.srv = httptest.NewServer(h.router)
	t.Cleanup(h.srv.Close)
	return h
}

func (h *chatHarness) dial(t *testing.T, channel, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws/" + channel + "?name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealth(t *testing.T) {
	h := newChatHarness(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())
}

func TestChannelStats(t *testing.T) {
	h := newChatHarness(t)
	h.store.scores["general"] = map[string]int{"alice": 400, "bob": 200}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats/general", nil)
	h.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Channel string         `json:"channel"`
		Scores  map[string]int `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "general", body.Channel)
	assert.Equal(t, map[string]int{"alice": 400, "bob": 200}, body.Scores)
}

func TestChannelStatsStoreError(t *testing.T) {
	h := newChatHarness(t)
	h.store.err = errors.New("disk gone")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats/general", nil)
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJoinRequiresName(t *testing.T) {
	h := newChatHarness(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws/general", nil)
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuessesAndCommandsReachTheGame(t *testing.T) {
	h := newChatHarness(t)
	alice := h.dial(t, "general", "alice")
	bob := h.dial(t, "general", "bob")

	// each connection stays within its inbound rate limit burst
	for _, line := range []string{"paris", "!hint", "!question", "!skip", "!report"} {
		require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte(line)))
	}
	for _, line := range []string{"!start --num 5 784", "!stats carol 3"} {
		require.NoError(t, bob.WriteMessage(websocket.TextMessage, []byte(line)))
	}

	expected := []string{
		"answer general alice paris",
		"hint general",
		"question general",
		"skip general",
		"report general",
		"start general num=5 categories=784",
		"stats general player=carol top=3",
	}
	for _, call := range expected {
		call := call
		assert.Eventually(t, func() bool { return h.games.has(call) },
			time.Second, 5*time.Millisecond, "missing call %q", call)
	}
}

func TestStopWithoutGameAnnounces(t *testing.T) {
	h := newChatHarness(t)
	h.games.stopErr = game.ErrNoSession
	conn := h.dial(t, "general", "alice")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("!stop")))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "No game running here.", string(data))
}

func TestHubBroadcast(t *testing.T) {
	h := newChatHarness(t)
	alice := h.dial(t, "general", "alice")
	bob := h.dial(t, "general", "bob")
	other := h.dial(t, "elsewhere", "carol")

	assert.Eventually(t, func() bool { return h.hub.Occupants("general") == 2 },
		time.Second, 5*time.Millisecond)

	h.hub.Notify("general", "[1/10] History for 100: capital of France")

	for _, conn := range []*websocket.Conn{alice, bob} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "[1/10] History for 100: capital of France", string(data))
	}

	other.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, _, err := other.ReadMessage()
	assert.Error(t, err)
}

func TestLeaveRemovesConnection(t *testing.T) {
	h := newChatHarness(t)
	conn := h.dial(t, "general", "alice")

	assert.Eventually(t, func() bool { return h.hub.Occupants("general") == 1 },
		time.Second, 5*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return h.hub.Occupants("general") == 0 },
		time.Second, 5*time.Millisecond)
}
