package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const defaultWriteTimeout = 5 * time.Second

// WebSocketNotificationHub fans events out to the sockets listening on a
// topic. Each connection has its own write lock because gorilla supports only
// one concurrent writer, and the hub lock is never held while writing.
type WebSocketNotificationHub struct {
	mu           sync.Mutex
	listeners    map[string][]*listener
	writeTimeout time.Duration
}

type listener struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewNotificationHub() *WebSocketNotificationHub {
	return &WebSocketNotificationHub{
		listeners:    make(map[string][]*listener),
		writeTimeout: defaultWriteTimeout,
	}
}

// WithWriteTimeout bounds how long one slow socket can hold up a publish.
func (hub *WebSocketNotificationHub) WithWriteTimeout(d time.Duration) *WebSocketNotificationHub {
	hub.writeTimeout = d
	return hub
}

func (hub *WebSocketNotificationHub) RegisterListener(topic string, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.listeners[topic] = append(hub.listeners[topic], &listener{conn: conn})
}

func (hub *WebSocketNotificationHub) UnregisterListener(topic string, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	remaining := hub.listeners[topic][:0]
	for _, l := range hub.listeners[topic] {
		if l.conn != conn {
			remaining = append(remaining, l)
		}
	}
	if len(remaining) == 0 {
		delete(hub.listeners, topic)
		return
	}
	hub.listeners[topic] = remaining
}

func (hub *WebSocketNotificationHub) ListenerCount(topic string) int {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	return len(hub.listeners[topic])
}

// Publish writes event to every listener of topic. A socket that cannot take
// the write within the timeout is dropped and closed, which also ends its
// read loop.
func (hub *WebSocketNotificationHub) Publish(topic string, event any) {
	hub.mu.Lock()
	listeners := append([]*listener{}, hub.listeners[topic]...)
	hub.mu.Unlock()

	for _, l := range listeners {
		if err := hub.write(l, event); err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("Failed to push ws event")
			hub.UnregisterListener(topic, l.conn)
			_ = l.conn.Close()
		}
	}
}

func (hub *WebSocketNotificationHub) write(l *listener, event any) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.conn.SetWriteDeadline(time.Now().Add(hub.writeTimeout)); err != nil {
		return err
	}
	return l.conn.WriteJSON(event)
}
