package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"egov-portal/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialWS(t *testing.T, server *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_DeliversNotifications(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	conn, _, err := dialWS(t, server, env.token(t, citizenID))
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, MessageConnected, readMessage(t, conn).Type)
	assert.Eventually(t, func() bool {
		return env.hub.ConnectedClients(citizenID) == 1
	}, time.Second, 10*time.Millisecond)

	// Сповіщення іншому користувачу сюди не потрапляє
	require.NoError(t, env.hub.Publish(context.Background(), models.Notification{
		ID: "other", UserID: officerID, Title: "Other", Message: "Other", Type: models.NotificationInfo,
	}))
	require.NoError(t, env.hub.Publish(context.Background(), models.Notification{
		ID: "mine", UserID: citizenID, Title: "Mine", Message: "Mine", Type: models.NotificationSuccess,
	}))

	msg := readMessage(t, conn)
	assert.Equal(t, MessageNotification, msg.Type)
	data := msg.Data.(map[string]interface{})
	assert.Equal(t, "mine", data["id"])

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "ping"}))
	assert.Equal(t, MessagePong, readMessage(t, conn).Type)
}

func TestWebSocket_StatusChangeIsPushed(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	conn, _, err := dialWS(t, server, env.token(t, citizenID))
	require.NoError(t, err)
	defer conn.Close()

	readMessage(t, conn)
	assert.Eventually(t, func() bool {
		return env.hub.ConnectedClients(citizenID) == 1
	}, time.Second, 10*time.Millisecond)

	w := env.request(http.MethodPut, "/officer/documents/2/status", map[string]string{"status": "rejected"}, env.token(t, officerID))
	require.Equal(t, http.StatusOK, w.Code)

	msg := readMessage(t, conn)
	assert.Equal(t, MessageNotification, msg.Type)
	assert.Equal(t, "error", msg.Data.(map[string]interface{})["type"])
}

func TestWebSocket_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	_, resp, err := dialWS(t, server, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = dialWS(t, server, "garbage")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	conn, _, err := dialWS(t, server, env.token(t, adminID))
	require.NoError(t, err)
	defer conn.Close()

	readMessage(t, conn)
	assert.Eventually(t, func() bool {
		return env.hub.Connections() == 1
	}, time.Second, 10*time.Millisecond)

	env.hub.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	err = env.hub.Publish(context.Background(), models.Notification{UserID: adminID})
	assert.Error(t, err)
}
