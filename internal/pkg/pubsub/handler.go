package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
)

type SubscriptionHandler struct {
	SubscriptionId string
	Handler        func(ctx context.Context, message *pubsub.Message)
}

type Publishable interface {
	GetEventTopicName() string
}
