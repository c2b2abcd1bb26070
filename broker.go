package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Message is one record on a topic.
type Message struct {
	Topic  string
	Key    []byte
	Value  []byte
	Offset int64

	raw *kgo.Record
}

// Broker abstracts the streaming transport. The Kafka implementation is
// used in production; the in-process one backs direct mode and tests.
type Broker interface {
	// EnsureTopics creates the topics if they do not exist.
	EnsureTopics(ctx context.Context, topics ...string) error

	// Publish writes one message, blocking until it is durable.
	Publish(ctx context.Context, topic string, key, value []byte) error

	// Subscribe opens a consumer for the group, resuming after the
	// group's last committed offsets.
	Subscribe(ctx context.Context, group string, topics ...string) (Consumer, error)

	Close() error
}

// Consumer reads messages from subscribed topics. Messages are redelivered
// to the next subscriber unless committed.
type Consumer interface {
	// Poll returns buffered messages, waiting up to timeout when none
	// are available. An empty slice on return is not an error.
	Poll(ctx context.Context, timeout time.Duration) ([]Message, error)

	// Commit marks the messages consumed.
	Commit(ctx context.Context, msgs []Message) error

	Close() error
}

// kafkaBroker talks to a Kafka cluster through franz-go.
type kafkaBroker struct {
	brokers []string
	client  *kgo.Client
}

func newKafkaBroker(brokers []string) (*kafkaBroker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &kafkaBroker{brokers: brokers, client: client}, nil
}

func (b *kafkaBroker) EnsureTopics(ctx context.Context, topics ...string) error {
	admin := kadm.NewClient(b.client)
	for _, topic := range topics {
		_, err := admin.CreateTopics(ctx, 1, 1, nil, topic)
		if err != nil && !strings.Contains(err.Error(), "TOPIC_ALREADY_EXISTS") {
			return fmt.Errorf("create topic %s: %w", topic, err)
		}
	}
	return nil
}

func (b *kafkaBroker) Publish(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := b.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (b *kafkaBroker) Subscribe(_ context.Context, group string, topics ...string) (Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(b.brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return &kafkaConsumer{client: client}, nil
}

func (b *kafkaBroker) Close() error {
	b.client.Close()
	return nil
}

type kafkaConsumer struct {
	client *kgo.Client
}

func (c *kafkaConsumer) Poll(ctx context.Context, timeout time.Duration) ([]Message, error) {
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fetches := c.client.PollFetches(pollCtx)
	if err := fetches.Err0(); err != nil {
		if pollCtx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("poll: %w", err)
	}

	var msgs []Message
	fetches.EachRecord(func(r *kgo.Record) {
		msgs = append(msgs, Message{
			Topic:  r.Topic,
			Key:    r.Key,
			Value:  r.Value,
			Offset: r.Offset,
			raw:    r,
		})
	})
	return msgs, nil
}

func (c *kafkaConsumer) Commit(ctx context.Context, msgs []Message) error {
	recs := make([]*kgo.Record, 0, len(msgs))
	for _, m := range msgs {
		if m.raw != nil {
			recs = append(recs, m.raw)
		}
	}
	if len(recs) == 0 {
		return nil
	}
	if err := c.client.CommitRecords(ctx, recs...); err != nil {
		return fmt.Errorf("commit offsets: %w", err)
	}
	return nil
}

func (c *kafkaConsumer) Close() error {
	c.client.Close()
	return nil
}

// memBroker is an in-process broker with one partition per topic, so
// per-key ordering matches what a keyed Kafka topic guarantees. Committed
// offsets are tracked per group and survive resubscription, which is what
// lets a paused migration resume where it stopped.
type memBroker struct {
	mu        sync.Mutex
	topics    map[string][]Message
	committed map[string]int64 // group|topic -> next offset to read
	closed    bool
}

func newMemBroker() *memBroker {
	return &memBroker{
		topics:    make(map[string][]Message),
		committed: make(map[string]int64),
	}
}

func (b *memBroker) EnsureTopics(_ context.Context, topics ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range topics {
		if _, ok := b.topics[t]; !ok {
			b.topics[t] = nil
		}
	}
	return nil
}

func (b *memBroker) Publish(_ context.Context, topic string, key, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("broker closed")
	}
	b.topics[topic] = append(b.topics[topic], Message{
		Topic:  topic,
		Key:    append([]byte(nil), key...),
		Value:  append([]byte(nil), value...),
		Offset: int64(len(b.topics[topic])),
	})
	return nil
}

func (b *memBroker) Subscribe(_ context.Context, group string, topics ...string) (Consumer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c := &memConsumer{broker: b, group: group, pos: make(map[string]int64, len(topics))}
	for _, t := range topics {
		c.pos[t] = b.committed[group+"|"+t]
	}
	return c, nil
}

func (b *memBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

type memConsumer struct {
	broker *memBroker
	group  string
	pos    map[string]int64 // topic -> next offset to deliver
}

func (c *memConsumer) Poll(ctx context.Context, timeout time.Duration) ([]Message, error) {
	deadline := time.Now().Add(timeout)
	for {
		c.broker.mu.Lock()
		var msgs []Message
		for topic, next := range c.pos {
			queue := c.broker.topics[topic]
			for int(next) < len(queue) {
				msgs = append(msgs, queue[next])
				next++
			}
			c.pos[topic] = next
		}
		c.broker.mu.Unlock()

		if len(msgs) > 0 {
			return msgs, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func (c *memConsumer) Commit(_ context.Context, msgs []Message) error {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	for _, m := range msgs {
		key := c.group + "|" + m.Topic
		if m.Offset+1 > c.broker.committed[key] {
			c.broker.committed[key] = m.Offset + 1
		}
	}
	return nil
}

func (c *memConsumer) Close() error { return nil }
