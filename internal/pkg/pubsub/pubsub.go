package pubsub

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/utils"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type Client struct {
	client *pubsub.Client

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func NewClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("pub sub missing projectID to initialize")
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("initializing pub sub connection: %w", err)
	}
	log.Info().Str("projectId", projectID).Msg("Successful pubsub init")
	return &Client{client: client, topics: map[string]*pubsub.Topic{}}, nil
}

// Subscribe blocks receiving messages until ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, subscriptionHandler SubscriptionHandler) error {
	sub := c.client.Subscription(subscriptionHandler.SubscriptionId)
	err := sub.Receive(ctx, subscriptionHandler.Handler)
	if err != nil {
		log.Error().Err(err).Str("subscription", subscriptionHandler.SubscriptionId).Msg("Subscriber error")
	}
	return err
}

// Publish queues the message and returns without waiting for the server.
// Delivery failures are logged.
func (c *Client) Publish(ctx context.Context, message Publishable) error {
	result, err := c.PublishResult(ctx, message)
	if err != nil {
		return err
	}

	go func(res *pubsub.PublishResult) {
		if _, err := res.Get(context.Background()); err != nil {
			log.Warn().Err(err).Str("topic", message.GetEventTopicName()).Msg("Failed to publish message")
		}
	}(result)
	return nil
}

func (c *Client) PublishResult(ctx context.Context, message Publishable) (*pubsub.PublishResult, error) {
	t, err := c.topic(ctx, message.GetEventTopicName())
	if err != nil {
		return nil, err
	}
	return t.Publish(ctx, &pubsub.Message{Data: utils.JsonEncode(message)}), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	for _, t := range c.topics {
		t.Stop()
	}
	c.topics = map[string]*pubsub.Topic{}
	c.mu.Unlock()

	return c.client.Close()
}

// Raw exposes the underlying client for administrative calls.
func (c *Client) Raw() *pubsub.Client {
	return c.client
}

func (c *Client) topic(ctx context.Context, topicName string) (*pubsub.Topic, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.topics[topicName]; ok {
		return t, nil
	}

	t := c.client.Topic(topicName)
	exists, err := t.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking topic %s: %w", topicName, err)
	}
	if !exists {
		log.Info().Str("topic", topicName).Msg("Topic does not exist. Creating new")
		t, err = c.client.CreateTopic(ctx, topicName)
		if err != nil {
			return nil, fmt.Errorf("creating topic %s: %w", topicName, err)
		}
	}
	c.topics[topicName] = t
	return t, nil
}
