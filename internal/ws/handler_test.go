package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/identity"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/middleware"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/ws"
	"github.com/kollektive-hackathon/morra-backend/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hub *ws.WebSocketNotificationHub) *httptest.Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/morra-api"), hub, middleware.VerifyAuthToken(identity.HeaderVerifier{}), []string{"https://morra.example"})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server, path string, header http.Header) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/morra-api" + path
	return websocket.DefaultDialer.Dial(url, header)
}

func waitForListener(t *testing.T, hub *ws.WebSocketNotificationHub, topic string) {
	require.Eventually(t, func() bool { return hub.ListenerCount(topic) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestGameStream(t *testing.T) {
	hub := ws.NewNotificationHub()
	server := newServer(t, hub)

	conn, _, err := dial(t, server, "/ws/game/g42", http.Header{"Authorization": {"Bearer alice"}})
	require.NoError(t, err)
	waitForListener(t, hub, "g42")

	hub.Publish("g42", map[string]string{"type": "join"})

	var got map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "join", got["type"])

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ListenerCount("g42") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWalletStreamUsesCallerTopic(t *testing.T) {
	hub := ws.NewNotificationHub()
	server := newServer(t, hub)

	conn, _, err := dial(t, server, "/ws/wallet", http.Header{"Authorization": {"Bearer bob"}})
	require.NoError(t, err)
	defer conn.Close()
	waitForListener(t, hub, wallet.NotificationTopic("bob"))
	assert.Zero(t, hub.ListenerCount(wallet.NotificationTopic("alice")))
}

func TestStreamRejections(t *testing.T) {
	server := newServer(t, ws.NewNotificationHub())

	_, res, err := dial(t, server, "/ws/game/g1", nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	_, res, err = dial(t, server, "/ws/game/g1", http.Header{
		"Authorization": {"Bearer alice"},
		"Origin":        {"https://evil.example"},
	})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
