package pubsub

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type testEvent struct {
	Name string `json:"name"`
}

func (testEvent) GetEventTopicName() string {
	return "morra.test.events"
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	client, err := NewClient(context.Background(), "test-project", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPublishCreatesTopicAndDelivers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client := newTestClient(t)

	result, err := client.PublishResult(ctx, testEvent{Name: "created"})
	require.NoError(t, err)
	_, err = result.Get(ctx)
	require.NoError(t, err)

	topic := client.Raw().Topic(testEvent{}.GetEventTopicName())
	_, err = client.Raw().CreateSubscription(ctx, "test-sub", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, testEvent{Name: "joined"}))

	received := make(chan string, 1)
	subCtx, stop := context.WithCancel(ctx)
	go func() {
		_ = client.Subscribe(subCtx, SubscriptionHandler{
			SubscriptionId: "test-sub",
			Handler: func(_ context.Context, message *pubsub.Message) {
				message.Ack()
				select {
				case received <- string(message.Data):
				default:
				}
			},
		})
	}()
	defer stop()

	select {
	case data := <-received:
		assert.JSONEq(t, `{"name":"joined"}`, data)
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestNewClientRequiresProject(t *testing.T) {
	_, err := NewClient(context.Background(), "")
	assert.Error(t, err)
}
