package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestProducer_ReusesWriterPerTopic(t *testing.T) {
	t.Parallel()

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	defer p.Close()

	w1 := p.writer(TopicOrders)
	w2 := p.writer(TopicOrders)
	w3 := p.writer(TopicPayments)

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Equal(t, TopicPayments, w3.Topic)
}

func TestDiscard_Publish(t *testing.T) {
	t.Parallel()

	var pub Publisher = Discard{}
	assert.NoError(t, pub.Publish(context.Background(), TopicCarts, "k", map[string]any{"type": "x"}))
}
