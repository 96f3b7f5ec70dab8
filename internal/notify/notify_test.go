package notify

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/plant_shop/internal/models"
	"github.com/Skotchmaster/plant_shop/pkg/events"
)

type recordingPub struct {
	mu     sync.Mutex
	topics []string
	events []any
}

func (r *recordingPub) Publish(_ context.Context, topic, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.events = append(r.events, event)
	return nil
}

func TestEmailNotifier_PublishesRequest(t *testing.T) {
	t.Parallel()

	pub := &recordingPub{}
	n := &EmailNotifier{Pub: pub, From: "shop@example.com"}

	uid := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     &uid,
		Status:     models.OrderStatusCancelled,
		TotalPrice: decimal.RequireFromString("250"),
	}

	require.NoError(t, n.OrderStatusChanged(context.Background(), order, models.OrderStatusCreated))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TopicNotify, pub.topics[0])

	req, ok := pub.events[0].(EmailRequest)
	require.True(t, ok)
	assert.Equal(t, "order_status_email", req.Type)
	assert.Equal(t, uid.String(), req.UserID)
	assert.Equal(t, "Cancelled", req.Status)
	assert.Equal(t, "Created", req.PrevStatus)
	assert.Equal(t, "250.00", req.TotalPrice)
}

func TestEmailNotifier_DisabledWithoutSender(t *testing.T) {
	t.Parallel()

	pub := &recordingPub{}
	n := &EmailNotifier{Pub: pub}

	require.NoError(t, n.OrderCreated(context.Background(), &models.Order{ID: uuid.New()}))
	assert.Empty(t, pub.events)
}
