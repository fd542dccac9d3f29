package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stormchat/internal/app/chat"
)

// wireEnvelope mirrors the frames a WebSocket client receives.
type wireEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, res, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	if res != nil {
		res.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// readEnvelope reads the next frame, failing the test if none arrives in time.
func readEnvelope(t *testing.T, conn *websocket.Conn) wireEnvelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env wireEnvelope
	require.NoError(t, json.Unmarshal(raw, &env))

	return env
}

func envelopeData(t *testing.T, env wireEnvelope) map[string]any {
	t.Helper()

	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))

	return data
}

func TestWebSocketLifecycle(t *testing.T) {
	srv, room := newTestServer(t)

	alice := dialWS(t, srv)
	env := readEnvelope(t, alice)
	require.Equal(t, "ROOM_JOIN", env.Type)
	assert.Equal(t, "user_0", envelopeData(t, env)["user_id"])

	bob := dialWS(t, srv)
	env = readEnvelope(t, bob)
	require.Equal(t, "ROOM_JOIN", env.Type)
	assert.Equal(t, "user_1", envelopeData(t, env)["user_id"])

	// The newcomer is announced to existing members only.
	env = readEnvelope(t, alice)
	require.Equal(t, "USER_JOIN", env.Type)
	assert.Equal(t, "user_1", envelopeData(t, env)["user_id"])

	require.Eventually(t, func() bool {
		_, ok := room.GetUser("user_1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// A spoken message reaches everyone, the speaker included.
	require.NoError(t, alice.WriteMessage(websocket.TextMessage, []byte("hello")))

	for _, conn := range []*websocket.Conn{alice, bob} {
		env = readEnvelope(t, conn)
		require.Equal(t, "MESSAGE", env.Type)
		data := envelopeData(t, env)
		assert.Equal(t, "user_0", data["user_id"])
		assert.Equal(t, "hello", data["msg"])
	}

	// A departing member is removed and announced to the rest.
	require.NoError(t, bob.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	env = readEnvelope(t, alice)
	require.Equal(t, "USER_LEAVE", env.Type)
	assert.Equal(t, "user_1", envelopeData(t, env)["user_id"])

	_, ok := room.GetUser("user_1")
	assert.False(t, ok)
	_, ok = room.GetUser("user_0")
	assert.True(t, ok)
}

func TestWebSocketKick(t *testing.T) {
	srv, room := newTestServer(t)

	alice := dialWS(t, srv)
	env := readEnvelope(t, alice)
	require.Equal(t, "ROOM_JOIN", env.Type)

	bob := dialWS(t, srv)
	env = readEnvelope(t, bob)
	require.Equal(t, "ROOM_JOIN", env.Type)

	// Alice hearing about Bob proves she is fully registered.
	env = readEnvelope(t, alice)
	require.Equal(t, "USER_JOIN", env.Type)

	status, parsed := doJSON(t, http.MethodPost, srv.URL+"/users/user_0/kick", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 0, parsed.Code)

	// The kicked connection hears the notice, then the server closes it.
	env = readEnvelope(t, alice)
	require.Equal(t, "ROOM_KICK", env.Type)
	assert.Equal(t, chat.KickNotice, envelopeData(t, env)["msg"])

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := alice.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err,
		websocket.CloseNoStatusReceived, websocket.CloseNormalClosure),
		"expected a close frame, got %v", err)

	// The rest of the room sees an ordinary departure.
	env = readEnvelope(t, bob)
	require.Equal(t, "USER_LEAVE", env.Type)
	assert.Equal(t, "user_0", envelopeData(t, env)["user_id"])

	_, ok := room.GetUser("user_0")
	assert.False(t, ok)
}

func TestWebSocketBinaryRejected(t *testing.T) {
	srv, room := newTestServer(t)

	conn := dialWS(t, srv)
	env := readEnvelope(t, conn)
	require.Equal(t, "ROOM_JOIN", env.Type)
	userID, ok := envelopeData(t, env)["user_id"].(string)
	require.True(t, ok)

	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseUnsupportedData),
		"expected a 1003 close, got %v", err)

	require.Eventually(t, func() bool {
		_, present := room.GetUser(userID)
		return !present
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketConnectRateLimit(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < ConnectBurst; i++ {
		conn := dialWS(t, srv)
		env := readEnvelope(t, conn)
		require.Equal(t, "ROOM_JOIN", env.Type)
	}

	conn, res, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.Error(t, err)
	require.Nil(t, conn)
	require.NotNil(t, res)
	defer res.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
}
