package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/ws"
	"github.com/kollektive-hackathon/morra-backend/internal/wallet"
	"github.com/rs/zerolog/log"
)

type wsHandler struct {
	notificationHub *ws.WebSocketNotificationHub
	upgrader        websocket.Upgrader
}

// RegisterRoutes streams game events on /ws/game/:id and the caller's own
// balance changes on /ws/wallet. allowedOrigins follows the CORS setting;
// "*" accepts any origin.
func RegisterRoutes(rg *gin.RouterGroup, hub *ws.WebSocketNotificationHub, auth gin.HandlerFunc, allowedOrigins []string) {
	handler := wsHandler{
		notificationHub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}

	routes := rg.Group("/ws", auth)
	routes.GET("/game/:id", handler.serveGame)
	routes.GET("/wallet", handler.serveWallet)
}

func (wsh *wsHandler) serveGame(c *gin.Context) {
	wsh.serve(c, c.Param("id"))
}

func (wsh *wsHandler) serveWallet(c *gin.Context) {
	wsh.serve(c, wallet.NotificationTopic(utils.GetPartyId(c)))
}

func (wsh *wsHandler) serve(c *gin.Context, topic string) {
	conn, err := wsh.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Error upgrading ws connection")
		return
	}
	defer conn.Close()

	wsh.notificationHub.RegisterListener(topic, conn)
	defer wsh.notificationHub.UnregisterListener(topic, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("topic", topic).Msg("Error reading ws message")
			}
			return
		}
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := map[string]bool{}
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}
