package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()

	cfg := testConfig()
	cfg.RateLimitMessages = 1000
	cfg.RateLimitWindow = time.Second

	app := New(cfg, testLogger())
	srv := httptest.NewServer(app.Routes())
	t.Cleanup(srv.Close)
	return srv, app
}

// wireMessage mirrors ServerMessage after a trip through JSON.
type wireMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func dialWS(t *testing.T, ctx context.Context, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + srv.URL[len("http"):] + "/websocket"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func sendWS(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(ClientMessage{Type: msgType, Payload: raw})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

// readUntil consumes messages until one of the wanted type arrives. Broadcasts
// like playersUpdate interleave with direct replies, so callers skip past
// whatever they are not waiting for.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) wireMessage {
	t.Helper()

	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err, "waiting for %s", msgType)

		var msg wireMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status      string `json:"status"`
		Rooms       int    `json:"rooms"`
		Connections int    `json:"connections"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Zero(t, body.Rooms)
}

func TestCategoriesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/categories")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body.Categories, "comida")
	assert.Contains(t, body.Categories, "animales")
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/health", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestWebsocketPing(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, srv)
	sendWS(t, ctx, conn, "ping", struct{}{})
	readUntil(t, ctx, conn, "pong")
}

func TestWebsocketUnknownMessageType(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, srv)
	sendWS(t, ctx, conn, "doSomethingWeird", struct{}{})

	msg := readUntil(t, ctx, conn, "error")
	var errPayload ErrorMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.Contains(t, errPayload.Message, "doSomethingWeird")
}

func TestWebsocketCreateAndJoinRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := dialWS(t, ctx, srv)
	sendWS(t, ctx, host, "createRoom", CreateRoomRequest{Nickname: "Alice", Category: "comida"})

	created := readUntil(t, ctx, host, "roomCreated")
	var createdPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &createdPayload))
	require.NoError(t, ValidateRoomCode(createdPayload.RoomCode))
	assert.True(t, createdPayload.Player.IsHost)
	assert.NotEmpty(t, createdPayload.Categories)

	guest := dialWS(t, ctx, srv)
	sendWS(t, ctx, guest, "joinRoom", JoinRoomRequest{RoomCode: createdPayload.RoomCode, Nickname: "Bob"})

	joined := readUntil(t, ctx, guest, "roomJoined")
	var joinedPayload RoomJoinedPayload
	require.NoError(t, json.Unmarshal(joined.Payload, &joinedPayload))
	assert.Equal(t, createdPayload.RoomCode, joinedPayload.RoomCode)
	assert.False(t, joinedPayload.Player.IsHost)

	// The host hears about the new member.
	update := readUntil(t, ctx, host, "playersUpdate")
	var updatePayload PlayersUpdatePayload
	require.NoError(t, json.Unmarshal(update.Payload, &updatePayload))
	for len(updatePayload.Players) < 2 {
		update = readUntil(t, ctx, host, "playersUpdate")
		require.NoError(t, json.Unmarshal(update.Payload, &updatePayload))
	}
	assert.Equal(t, "Alice", updatePayload.Players[0].Nickname)
	assert.Equal(t, "Bob", updatePayload.Players[1].Nickname)
}

func TestWebsocketJoinUnknownRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, srv)
	sendWS(t, ctx, conn, "joinRoom", JoinRoomRequest{RoomCode: "ZZZZ", Nickname: "Bob"})

	msg := readUntil(t, ctx, conn, "error")
	var errPayload ErrorMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.True(t, strings.HasPrefix(errPayload.Message, "ROOM_NOT_FOUND"), errPayload.Message)
}

func TestWebsocketStartGameRequiresEnoughPlayers(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := dialWS(t, ctx, srv)
	sendWS(t, ctx, host, "createRoom", CreateRoomRequest{Nickname: "Alice"})

	created := readUntil(t, ctx, host, "roomCreated")
	var createdPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &createdPayload))

	sendWS(t, ctx, host, "startGame", StartGameRequest{RoomCode: createdPayload.RoomCode})

	msg := readUntil(t, ctx, host, "error")
	var errPayload ErrorMessage
	require.NoError(t, json.Unmarshal(msg.Payload, &errPayload))
	assert.True(t, strings.HasPrefix(errPayload.Message, "NOT_ENOUGH_PLAYERS"), errPayload.Message)
}

func TestWebsocketDisconnectLeavesRoom(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := dialWS(t, ctx, srv)
	sendWS(t, ctx, host, "createRoom", CreateRoomRequest{Nickname: "Alice"})
	created := readUntil(t, ctx, host, "roomCreated")
	var createdPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &createdPayload))

	guest := dialWS(t, ctx, srv)
	sendWS(t, ctx, guest, "joinRoom", JoinRoomRequest{RoomCode: createdPayload.RoomCode, Nickname: "Bob"})
	readUntil(t, ctx, guest, "roomJoined")

	guest.Close(websocket.StatusNormalClosure, "leaving")

	// The transport-level close eventually shows up as a membership change.
	for {
		update := readUntil(t, ctx, host, "playersUpdate")
		var updatePayload PlayersUpdatePayload
		require.NoError(t, json.Unmarshal(update.Payload, &updatePayload))
		if len(updatePayload.Players) == 1 {
			assert.Equal(t, "Alice", updatePayload.Players[0].Nickname)
			return
		}
	}
}

func TestWebsocketSecondCreateLeavesFirstRoom(t *testing.T) {
	srv, app := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, srv)
	sendWS(t, ctx, conn, "createRoom", CreateRoomRequest{Nickname: "Alice"})
	first := readUntil(t, ctx, conn, "roomCreated")
	var firstPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(first.Payload, &firstPayload))

	// Creating again from the same connection abandons the first room; it
	// was a sole-member room, so it dies and its code frees up.
	sendWS(t, ctx, conn, "createRoom", CreateRoomRequest{Nickname: "Alice"})
	second := readUntil(t, ctx, conn, "roomCreated")
	var secondPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(second.Payload, &secondPayload))

	assert.NotEqual(t, firstPayload.RoomCode, secondPayload.RoomCode)
	assert.Equal(t, 1, app.roomManager.RoomCount())
	assert.Nil(t, app.roomManager.getRoom(firstPayload.RoomCode))
}

func TestWebsocketJoinWhileInRoomLeavesOldRoom(t *testing.T) {
	srv, app := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dialWS(t, ctx, srv)
	sendWS(t, ctx, alice, "createRoom", CreateRoomRequest{Nickname: "Alice"})
	first := readUntil(t, ctx, alice, "roomCreated")
	var firstPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(first.Payload, &firstPayload))

	bob := dialWS(t, ctx, srv)
	sendWS(t, ctx, bob, "joinRoom", JoinRoomRequest{RoomCode: firstPayload.RoomCode, Nickname: "Bob"})
	readUntil(t, ctx, bob, "roomJoined")

	carol := dialWS(t, ctx, srv)
	sendWS(t, ctx, carol, "createRoom", CreateRoomRequest{Nickname: "Carol"})
	second := readUntil(t, ctx, carol, "roomCreated")
	var secondPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(second.Payload, &secondPayload))

	// Bob hops rooms in one intent; membership in the first room ends.
	sendWS(t, ctx, bob, "joinRoom", JoinRoomRequest{RoomCode: secondPayload.RoomCode, Nickname: "Bob"})
	joined := readUntil(t, ctx, bob, "roomJoined")
	var joinedPayload RoomJoinedPayload
	require.NoError(t, json.Unmarshal(joined.Payload, &joinedPayload))
	assert.Equal(t, secondPayload.RoomCode, joinedPayload.RoomCode)

	rs := app.roomManager.getRoom(firstPayload.RoomCode)
	require.NotNil(t, rs)
	rs.mu.Lock()
	assert.Len(t, rs.room.Players, 1)
	assert.Nil(t, rs.room.FindPlayer(joinedPayload.Player.ID))
	rs.mu.Unlock()

	// Alice saw Bob leave.
	for {
		update := readUntil(t, ctx, alice, "playersUpdate")
		var updatePayload PlayersUpdatePayload
		require.NoError(t, json.Unmarshal(update.Payload, &updatePayload))
		if len(updatePayload.Players) == 1 {
			assert.Equal(t, "Alice", updatePayload.Players[0].Nickname)
			break
		}
	}
}

func TestWebsocketLeaveRoomMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	host := dialWS(t, ctx, srv)
	sendWS(t, ctx, host, "createRoom", CreateRoomRequest{Nickname: "Alice"})
	created := readUntil(t, ctx, host, "roomCreated")
	var createdPayload RoomCreatedPayload
	require.NoError(t, json.Unmarshal(created.Payload, &createdPayload))

	guest := dialWS(t, ctx, srv)
	sendWS(t, ctx, guest, "joinRoom", JoinRoomRequest{RoomCode: createdPayload.RoomCode, Nickname: "Bob"})
	readUntil(t, ctx, guest, "roomJoined")

	sendWS(t, ctx, guest, "leaveRoom", struct{}{})

	for {
		update := readUntil(t, ctx, host, "playersUpdate")
		var updatePayload PlayersUpdatePayload
		require.NoError(t, json.Unmarshal(update.Payload, &updatePayload))
		if len(updatePayload.Players) == 1 {
			return
		}
	}
}
