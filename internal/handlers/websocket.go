package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"egov-portal/internal/middleware"
	"egov-portal/internal/models"
	"egov-portal/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Origin перевіряє CORS на рівні роутера
		return true
	},
}

// Типи повідомлень push-каналу
const (
	MessageConnected    = "connected"
	MessageNotification = "notification"
	MessagePong         = "pong"
)

// Hub тримає живі з'єднання по користувачах і доставляє їм сповіщення.
// Реалізує services.Publisher.
type Hub struct {
	// Зареєстровані клієнти по користувачах
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	deliver    chan *Delivery

	done     chan struct{}
	stopOnce sync.Once

	mutex sync.RWMutex
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	userID string
}

// Delivery - готове повідомлення для всіх з'єднань користувача
type Delivery struct {
	UserID  string
	Payload []byte
}

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan *Delivery, 256),
		done:       make(chan struct{}),
	}
}

var _ services.Publisher = (*Hub)(nil)

var errHubStopped = errors.New("push hub is stopped")

func (hub *Hub) Run() {
	for {
		select {
		case client := <-hub.register:
			hub.mutex.Lock()
			if hub.clients[client.userID] == nil {
				hub.clients[client.userID] = make(map[*Client]bool)
			}
			hub.clients[client.userID][client] = true
			hub.mutex.Unlock()
			logrus.WithField("user_id", client.userID).Debug("WebSocket клієнт підключився")

		case client := <-hub.unregister:
			hub.remove(client)
			logrus.WithField("user_id", client.userID).Debug("WebSocket клієнт відключився")

		case delivery := <-hub.deliver:
			hub.mutex.RLock()
			clients := make([]*Client, 0, len(hub.clients[delivery.UserID]))
			for client := range hub.clients[delivery.UserID] {
				clients = append(clients, client)
			}
			hub.mutex.RUnlock()

			for _, client := range clients {
				select {
				case client.send <- delivery.Payload:
				default:
					// Клієнт не встигає читати
					hub.remove(client)
				}
			}

		case <-hub.done:
			hub.mutex.Lock()
			for userID, clients := range hub.clients {
				for client := range clients {
					close(client.done)
				}
				delete(hub.clients, userID)
			}
			hub.mutex.Unlock()
			return
		}
	}
}

func (hub *Hub) remove(client *Client) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	clients, ok := hub.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.done)
	if len(clients) == 0 {
		delete(hub.clients, client.userID)
	}
}

// Shutdown закриває всі з'єднання і зупиняє Run
func (hub *Hub) Shutdown() {
	hub.stopOnce.Do(func() {
		close(hub.done)
	})
}

// Publish ставить сповіщення в чергу доставки власнику.
// Користувач без з'єднань просто нічого не отримає.
func (hub *Hub) Publish(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(WSMessage{
		Type: MessageNotification,
		Data: n,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	select {
	case <-hub.done:
		return errHubStopped
	default:
	}

	select {
	case hub.deliver <- &Delivery{UserID: n.UserID, Payload: payload}:
		return nil
	case <-hub.done:
		return errHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectedClients - кількість живих з'єднань користувача
func (hub *Hub) ConnectedClients(userID string) int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()
	return len(hub.clients[userID])
}

// Connections - загальна кількість живих з'єднань
func (hub *Hub) Connections() int {
	hub.mutex.RLock()
	defer hub.mutex.RUnlock()

	total := 0
	for _, clients := range hub.clients {
		total += len(clients)
	}
	return total
}

type WebSocketHandler struct {
	hub         *Hub
	authService *services.AuthService
}

func NewWebSocketHandler(hub *Hub, authService *services.AuthService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
	}
}

// HandleWebSocket - браузер не передає заголовки при upgrade, тому токен йде в ?token=
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		middleware.AbortWithError(c, http.StatusUnauthorized, "auth.required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.authService.Authenticate(ctx, token)
	if err != nil {
		middleware.AbortWithError(c, http.StatusUnauthorized, "auth.invalid_token")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("WebSocket upgrade error")
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		done:   make(chan struct{}),
		userID: user.ID,
	}

	// Привітання стоїть у черзі першим, до будь-якого сповіщення
	welcome, _ := json.Marshal(WSMessage{
		Type: MessageConnected,
		Data: gin.H{"user_id": user.ID, "role": user.Role},
	})
	client.send <- welcome

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return
	}

	// Запускаємо горутини для читання і запису
	go client.writePump()
	go client.readPump()
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// readPump лише підтримує з'єднання: клієнт може надсилати {"type":"ping"}
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var wsMsg WSMessage
		if err := c.conn.ReadJSON(&wsMsg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("WebSocket error")
			}
			return
		}

		if wsMsg.Type == "ping" {
			select {
			case c.send <- []byte(`{"type":"` + MessagePong + `"}`):
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
