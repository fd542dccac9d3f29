package chat

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_OnConnect(t *testing.T) {
	t.Run("greets the joiner and announces to the rest", func(t *testing.T) {
		room := NewRoom()
		resident := &fakeConn{}
		require.Nil(t, room.AddUser("user_0", resident))
		require.Equal(t, "user_0", room.NextUserID())

		joiner := &fakeConn{}
		sess := NewSession(room, joiner, "conn-a")

		require.Nil(t, sess.OnConnect())
		assert.Equal(t, "user_1", sess.UserID())

		// The joiner hears ROOM_JOIN with its own identity and nothing else.
		envs := joiner.envelopes()
		require.Len(t, envs, 1)
		assert.Equal(t, TypeRoomJoin, envs[0].Type)
		assert.Equal(t, UserPayload{UserID: "user_1"}, envs[0].Data)
		assert.Empty(t, joiner.envelopesOfType(TypeUserJoin))

		// Existing members hear USER_JOIN for the newcomer.
		joins := resident.envelopesOfType(TypeUserJoin)
		require.Len(t, joins, 1)
		assert.Equal(t, UserPayload{UserID: "user_1"}, joins[0].Data)

		_, ok := room.GetUser("user_1")
		assert.True(t, ok)
	})

	t.Run("connecting twice fails", func(t *testing.T) {
		room := NewRoom()
		sess := NewSession(room, &fakeConn{}, "conn-a")

		require.Nil(t, sess.OnConnect())

		customErr := sess.OnConnect()
		require.NotNil(t, customErr)
		assert.Equal(t, 3001, customErr.Code)
	})
}

func TestSession_OnReceive(t *testing.T) {
	t.Run("text frames broadcast to everyone, sender included", func(t *testing.T) {
		room := NewRoom()
		listener := &fakeConn{}
		require.Nil(t, room.AddUser("user_0", listener))

		speaker := &fakeConn{}
		sess := NewSession(room, speaker, "conn-a")
		require.Nil(t, sess.OnConnect())

		require.Nil(t, sess.OnReceive(websocket.TextMessage, []byte("hello")))

		want := MessagePayload{UserID: sess.UserID(), Msg: "hello"}
		for _, conn := range []*fakeConn{listener, speaker} {
			messages := conn.envelopesOfType(TypeMessage)
			require.Len(t, messages, 1)
			assert.Equal(t, want, messages[0].Data)
		}
	})

	t.Run("binary frames are rejected", func(t *testing.T) {
		room := NewRoom()
		listener := &fakeConn{}
		require.Nil(t, room.AddUser("user_0", listener))

		speaker := &fakeConn{}
		sess := NewSession(room, speaker, "conn-a")
		require.Nil(t, sess.OnConnect())

		customErr := sess.OnReceive(websocket.BinaryMessage, []byte{0x01, 0x02})
		require.NotNil(t, customErr)
		assert.Equal(t, 2201, customErr.Code)

		assert.Empty(t, listener.envelopesOfType(TypeMessage))
	})

	t.Run("receiving before connect fails", func(t *testing.T) {
		sess := NewSession(NewRoom(), &fakeConn{}, "conn-a")

		customErr := sess.OnReceive(websocket.TextMessage, []byte("hello"))
		require.NotNil(t, customErr)
		assert.Equal(t, 3001, customErr.Code)
	})
}

func TestSession_OnDisconnect(t *testing.T) {
	t.Run("removes the user, then tells the room", func(t *testing.T) {
		room := NewRoom()
		listener := &fakeConn{}
		require.Nil(t, room.AddUser("user_0", listener))

		leaver := &fakeConn{}
		sess := NewSession(room, leaver, "conn-a")
		require.Nil(t, sess.OnConnect())
		userID := sess.UserID()

		require.Nil(t, sess.OnDisconnect(websocket.CloseNormalClosure))

		_, ok := room.GetUser(userID)
		assert.False(t, ok)

		leaves := listener.envelopesOfType(TypeUserLeave)
		require.Len(t, leaves, 1)
		assert.Equal(t, UserPayload{UserID: userID}, leaves[0].Data)

		// The departed connection must not hear its own leave event.
		assert.Empty(t, leaver.envelopesOfType(TypeUserLeave))
	})

	t.Run("disconnecting before connect fails", func(t *testing.T) {
		sess := NewSession(NewRoom(), &fakeConn{}, "conn-a")

		customErr := sess.OnDisconnect(websocket.CloseGoingAway)
		require.NotNil(t, customErr)
		assert.Equal(t, 3001, customErr.Code)
	})

	t.Run("disconnecting twice fails", func(t *testing.T) {
		sess := NewSession(NewRoom(), &fakeConn{}, "conn-a")
		require.Nil(t, sess.OnConnect())

		require.Nil(t, sess.OnDisconnect(websocket.CloseNormalClosure))

		customErr := sess.OnDisconnect(websocket.CloseNormalClosure)
		require.NotNil(t, customErr)
		assert.Equal(t, 3001, customErr.Code)
	})
}

// TestSession_Lifecycle drives a full connect, speak, disconnect pass and
// checks that an observer sees exactly one event of each kind.
func TestSession_Lifecycle(t *testing.T) {
	room := NewRoom()
	observer := &fakeConn{}
	require.Nil(t, room.AddUser("user_0", observer))

	conn := &fakeConn{}
	sess := NewSession(room, conn, "conn-a")

	require.Nil(t, sess.OnConnect())
	userID := sess.UserID()
	_, ok := room.GetUser(userID)
	require.True(t, ok)

	require.Nil(t, sess.OnReceive(websocket.TextMessage, []byte("hello")))
	require.Nil(t, sess.OnDisconnect(websocket.CloseNormalClosure))

	_, ok = room.GetUser(userID)
	assert.False(t, ok)

	joins := observer.envelopesOfType(TypeUserJoin)
	require.Len(t, joins, 1)
	assert.Equal(t, UserPayload{UserID: userID}, joins[0].Data)

	messages := observer.envelopesOfType(TypeMessage)
	require.Len(t, messages, 1)
	assert.Equal(t, MessagePayload{UserID: userID, Msg: "hello"}, messages[0].Data)

	leaves := observer.envelopesOfType(TypeUserLeave)
	require.Len(t, leaves, 1)
	assert.Equal(t, UserPayload{UserID: userID}, leaves[0].Data)
}
