package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutBrokersIsNop(t *testing.T) {
	p := New(nil)
	_, ok := p.(NopPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), TopicCartCreated, "c-1", CartEvent{}))
}

func TestNewWithBrokersIsKafka(t *testing.T) {
	p := New([]string{"localhost:9092"})
	_, ok := p.(*KafkaPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.Close())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.Publish(context.Background(), TopicCartItemAdded, "c-1", CartEvent{CartID: "c-1"}))
	require.NoError(t, r.Publish(context.Background(), TopicOrderCreated, "o-1", OrderCreatedEvent{OrderID: "o-1"}))

	assert.Equal(t, []string{TopicCartItemAdded, TopicOrderCreated}, r.Topics())

	r.Err = errors.New("broker down")
	assert.Error(t, r.Publish(context.Background(), TopicCartDeleted, "c-1", nil))
	assert.Len(t, r.Events(), 2)
}

func TestCartEventJSON(t *testing.T) {
	ev := CartEvent{
		CartID:     "c-1",
		TotalDelta: decimal.RequireFromString("-9"),
		Timestamp:  time.Date(2024, 3, 24, 15, 57, 30, 0, time.UTC),
	}
	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var back CartEvent
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.TotalDelta.Equal(ev.TotalDelta))
	assert.Equal(t, "c-1", back.CartID)
}

func TestKafkaWriterFlushesSingleEvents(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"})
	defer p.Close()

	assert.Equal(t, 5*time.Millisecond, p.writer.BatchTimeout)
	assert.False(t, p.writer.Async)
	assert.Equal(t, DefaultPublishTimeout, p.timeout)
}

func TestKafkaPublishIsBounded(t *testing.T) {
	// Nothing listens on port 1.
	p := NewKafkaPublisher([]string{"127.0.0.1:1"}).WithTimeout(200 * time.Millisecond)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := p.Publish(ctx, TopicCartCreated, "c-1", CartEvent{CartID: "c-1"})
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
