// Package kafka is the cluster bridge (§3.3): a sharded simulation
// publishes its per-tick worldstate delta to a topic so sibling shards'
// accumulators can fold in cross-shard mutations before broadcast. This
// Consumer is the subscribing half, grounded on
// ws/kafka/consumer.go and ws/internal/shared/kafka/consumer.go.
package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/TimonPost/net-sync/internal/types"
	"github.com/TimonPost/net-sync/serialization"
	"github.com/TimonPost/net-sync/worldstate"
)

// ShardDelta is the wire record a shard publishes for one entity
// mutation. Records are folded in the order they are polled; Change and
// AddComponent keep only the latest record per entity, so when two
// records touch the same entity the later one wins. Component is carried as a ComponentRecord rather than a resolved
// types.ComponentData since the publishing shard's ComponentId
// assignment may not match this process's.
type ShardDelta struct {
	Entity    types.EntityId
	Component ComponentRecord
	Kind      DeltaKind
}

// DeltaKind tags which worldstate.State method a ShardDelta replays.
type DeltaKind int

const (
	DeltaChanged DeltaKind = iota
	DeltaComponentAdded
)

// Config holds the consumer's construction parameters.
type Config struct {
	Brokers       []string
	ConsumerGroup string
	Topic         string
	Serialization serialization.Strategy
	Registry      *Registry
}

// Consumer wraps a franz-go client subscribed to Topic, folding every
// record it receives into a shared worldstate.State via the same
// Change/AddComponent calls the simulation loop uses.
type Consumer struct {
	client   *kgo.Client
	logger   zerolog.Logger
	codec    serialization.Strategy
	registry *Registry
	state    *worldstate.State
	mu       *sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Consumer subscribed to cfg.Topic. state and mu are
// the simulation loop's shared accumulator and its guarding mutex;
// records are folded in under mu so the loop can safely read State
// between ticks. Returns (nil, nil) when cfg.Brokers is empty so a
// single-process server can run without a broker.
func New(cfg Config, state *worldstate.State, mu *sync.Mutex, logger zerolog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	if cfg.ConsumerGroup == "" {
		return nil, fmt.Errorf("kafka: consumer group is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}

	ctx, cancel := context.WithCancel(context.Background())

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.ConsumerGroup),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
		kgo.FetchMaxWait(500*time.Millisecond),
		kgo.FetchMinBytes(1),
		kgo.FetchMaxBytes(10*1024*1024),
		kgo.SessionTimeout(30*time.Second),
		kgo.RebalanceTimeout(60*time.Second),
		kgo.OnPartitionsAssigned(func(_ context.Context, _ *kgo.Client, assigned map[string][]int32) {
			logger.Info().Interface("partitions", assigned).Msg("kafka partitions assigned")
		}),
		kgo.OnPartitionsRevoked(func(_ context.Context, _ *kgo.Client, revoked map[string][]int32) {
			logger.Info().Interface("partitions", revoked).Msg("kafka partitions revoked")
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("kafka: failed to create client: %w", err)
	}

	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry(nil)
	}

	return &Consumer{
		client:   client,
		logger:   logger,
		codec:    cfg.Serialization,
		registry: registry,
		state:    state,
		mu:       mu,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins the background poll loop.
func (c *Consumer) Start() {
	c.wg.Add(1)
	go c.consumeLoop()
}

// Stop cancels the poll loop, waits for it to exit, and closes the client.
func (c *Consumer) Stop() {
	c.cancel()
	c.wg.Wait()
	c.client.Close()
}

func (c *Consumer) consumeLoop() {
	defer c.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("kafka consume loop recovered from panic")
		}
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		fetches := c.client.PollFetches(c.ctx)
		if c.ctx.Err() != nil {
			return
		}

		for _, err := range fetches.Errors() {
			c.logger.Error().Err(err.Err).Str("topic", err.Topic).Int32("partition", err.Partition).Msg("kafka fetch error")
		}

		fetches.EachRecord(c.applyRecord)
	}
}

func (c *Consumer) applyRecord(record *kgo.Record) {
	var delta ShardDelta
	if err := c.codec.Deserialize(record.Value, &delta); err != nil {
		c.logger.Error().Err(err).Str("topic", record.Topic).Msg("failed to deserialize shard delta")
		return
	}

	component, ok := c.registry.Resolve(delta.Component)
	if !ok {
		c.logger.Warn().Uint32("register_id", delta.Component.RegisterID).Msg("shard delta references unknown register id, dropped")
		return
	}

	c.mu.Lock()
	switch delta.Kind {
	case DeltaComponentAdded:
		c.state.AddComponent(delta.Entity, component)
	default:
		c.state.Change(delta.Entity, component)
	}
	c.mu.Unlock()
}
