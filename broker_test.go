package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publishN(t *testing.T, b Broker, topic string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, b.Publish(context.Background(), topic, []byte{byte('a' + i)}, []byte{byte(i)}))
	}
}

func TestMemBrokerDeliversInOrder(t *testing.T) {
	b := newMemBroker()
	ctx := context.Background()
	require.NoError(t, b.EnsureTopics(ctx, "t"))
	publishN(t, b, "t", 3)

	c, err := b.Subscribe(ctx, "g", "t")
	require.NoError(t, err)
	defer c.Close()

	msgs, err := c.Poll(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, int64(i), m.Offset)
		assert.Equal(t, []byte{byte('a' + i)}, m.Key)
	}
}

func TestMemBrokerPollTimesOutEmpty(t *testing.T) {
	b := newMemBroker()
	c, err := b.Subscribe(context.Background(), "g", "t")
	require.NoError(t, err)

	start := time.Now()
	msgs, err := c.Poll(context.Background(), 30*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMemBrokerCommitSurvivesResubscribe(t *testing.T) {
	b := newMemBroker()
	ctx := context.Background()
	publishN(t, b, "t", 3)

	c1, err := b.Subscribe(ctx, "g", "t")
	require.NoError(t, err)
	msgs, err := c1.Poll(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// Commit only the first message, then drop the consumer.
	require.NoError(t, c1.Commit(ctx, msgs[:1]))
	require.NoError(t, c1.Close())

	c2, err := b.Subscribe(ctx, "g", "t")
	require.NoError(t, err)
	msgs, err = c2.Poll(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 2, "uncommitted messages are redelivered")
	assert.Equal(t, int64(1), msgs[0].Offset)
}

func TestMemBrokerGroupsAreIndependent(t *testing.T) {
	b := newMemBroker()
	ctx := context.Background()
	publishN(t, b, "t", 2)

	c1, _ := b.Subscribe(ctx, "g1", "t")
	msgs, err := c1.Poll(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, c1.Commit(ctx, msgs))

	c2, _ := b.Subscribe(ctx, "g2", "t")
	msgs, err = c2.Poll(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Len(t, msgs, 2, "another group starts from the beginning")
}

func TestMemBrokerPublishAfterCloseFails(t *testing.T) {
	b := newMemBroker()
	require.NoError(t, b.Close())
	assert.Error(t, b.Publish(context.Background(), "t", nil, nil))
}

func TestMemBrokerPollWakesOnLatePublish(t *testing.T) {
	b := newMemBroker()
	ctx := context.Background()
	c, err := b.Subscribe(ctx, "g", "t")
	require.NoError(t, err)

	go func() {
		time.Sleep(15 * time.Millisecond)
		_ = b.Publish(ctx, "t", []byte("k"), []byte("v"))
	}()

	msgs, err := c.Poll(ctx, 500*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, []byte("v"), msgs[0].Value)
}
