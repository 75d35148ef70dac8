package game

import (
	"context"
	"time"

	"github.com/kollektive-hackathon/morra-backend/internal/pkg/model"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/pubsub"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/ws"
	"github.com/rs/zerolog/log"
)

const (
	ActionCreate = "create"
	ActionJoin   = "join"
	ActionCommit = "commit"
	ActionReveal = "reveal"
	ActionSettle = "settle"
	ActionExpire = "expire"
	ActionCancel = "cancel"
)

type GameEvent struct {
	Type    string           `json:"type"`
	GameId  string           `json:"gameId"`
	Actor   string           `json:"actor"`
	Status  model.GameStatus `json:"status"`
	Winner  *string          `json:"winner,omitempty"`
	Settled bool             `json:"settled"`
	At      time.Time        `json:"at"`

	topic string
}

func (e GameEvent) GetEventTopicName() string {
	return e.topic
}

func newGameEvent(action string, actor string, g model.Game) GameEvent {
	return GameEvent{
		Type:    action,
		GameId:  g.Id,
		Actor:   actor,
		Status:  g.Status,
		Winner:  g.Winner,
		Settled: g.Settled,
		At:      g.LastActionAt,
	}
}

// Notifier tells the outside world about committed game changes.
type Notifier interface {
	Notify(ctx context.Context, event GameEvent)
}

type gameEventBridge struct {
	hub    *ws.WebSocketNotificationHub
	pubsub *pubsub.Client
	topic  string
}

// NewNotifier pushes events to websocket listeners of the game and, when a
// Pub/Sub client is given, to topic.
func NewNotifier(hub *ws.WebSocketNotificationHub, client *pubsub.Client, topic string) Notifier {
	return &gameEventBridge{hub: hub, pubsub: client, topic: topic}
}

func (b *gameEventBridge) Notify(ctx context.Context, event GameEvent) {
	if b.hub != nil {
		b.hub.Publish(event.GameId, event)
	}
	if b.pubsub == nil {
		return
	}

	event.topic = b.topic
	if err := b.pubsub.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.Warn().Err(err).Str("gameId", event.GameId).Msg("Failed to publish game event")
	}
}
