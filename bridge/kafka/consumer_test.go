package kafka

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewReturnsNilConsumerWithoutBrokers(t *testing.T) {
	c, err := New(Config{}, nil, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c != nil {
		t.Fatal("expected nil consumer when no brokers configured")
	}
}

func TestNewRejectsMissingConsumerGroup(t *testing.T) {
	_, err := New(Config{Brokers: []string{"localhost:9092"}}, nil, nil, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for missing consumer group")
	}
}

func TestNewRejectsMissingTopic(t *testing.T) {
	_, err := New(Config{Brokers: []string{"localhost:9092"}, ConsumerGroup: "g"}, nil, nil, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for missing topic")
	}
}
