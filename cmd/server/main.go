// Command server is the reference entrypoint wiring the synchronization
// core's pieces into a runnable process: config, logging, metrics,
// resource guard, transport, and the optional cluster/event-bus bridges.
// Grounded on ws/main.go's load-config/build-server/wait-for-signal
// shape; net-sync's own core is wire-message-agnostic, so this binary
// instantiates it with a minimal concrete message/command set (raw byte
// payloads) rather than an application protocol.
package main

import (
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/TimonPost/net-sync/bridge/kafka"
	"github.com/TimonPost/net-sync/bridge/nats"
	"github.com/TimonPost/net-sync/clock"
	"github.com/TimonPost/net-sync/compression/lz4"
	"github.com/TimonPost/net-sync/config"
	"github.com/TimonPost/net-sync/guard"
	"github.com/TimonPost/net-sync/limits"
	"github.com/TimonPost/net-sync/logging"
	"github.com/TimonPost/net-sync/metrics"
	"github.com/TimonPost/net-sync/packer"
	"github.com/TimonPost/net-sync/postal"
	"github.com/TimonPost/net-sync/serialization/jsoncodec"
	"github.com/TimonPost/net-sync/transport"
	"github.com/TimonPost/net-sync/worldstate"
)

// ServerMsg, ClientMsg and Command are the concrete wire types this
// binary instantiates the generic core with. A real deployment swaps
// these for its own application message/command types.
type ServerMsg = string
type ClientMsg = string
type Command = []byte

// splitBrokers parses a comma-separated broker list, grounded on
// ws/main.go's helper of the same name.
func splitBrokers(brokers string) []string {
	var result []string
	for _, b := range strings.Split(brokers, ",") {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func main() {
	startupLog := logging.New("info", "console")

	cfg, err := config.Load(&startupLog)
	if err != nil {
		startupLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	cfg.LogFields(log)

	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr).Msg("failed to listen")
	}
	registry := transport.NewRegistry(listener)
	office := postal.NewPostOffice[ServerMsg, ClientMsg, Command]()
	events := postal.NewEventQueue()
	pack := packer.New(jsoncodec.Codec{}, &lz4.Strategy{})
	ticker := clock.New(cfg.SimulationSpeedMs)
	rateLimiter := limits.New(limits.Config{PerSecond: float64(cfg.SessionCommandsPerSec), Burst: cfg.SessionBurst}, log)
	resourceGuard := guard.New(guard.Config{
		MaxSessions:        cfg.MaxSessions,
		CPURejectThreshold: cfg.CPURejectThreshold,
		MemoryRejectBytes:  cfg.MemoryRejectBytes,
	}, log)

	var stateMu sync.Mutex
	state := worldstate.New(0)

	if cfg.KafkaBrokers != "" {
		kafkaConsumer, err := kafka.New(kafka.Config{
			Brokers:       splitBrokers(cfg.KafkaBrokers),
			ConsumerGroup: cfg.ConsumerGroup,
			Topic:         cfg.WorldStateTopic,
			Serialization: pack.Serialization(),
		}, state, &stateMu, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to start cluster bridge consumer")
		}
		if kafkaConsumer != nil {
			kafkaConsumer.Start()
			defer kafkaConsumer.Stop()
		}
	}

	eventMirror, err := nats.Connect(cfg.NatsURL, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect event bus mirror, continuing without it")
	}
	if eventMirror != nil {
		defer eventMirror.Close()
	}

	go func() {
		if err := metrics.Serve(cfg.MetricsAddr); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	guardSampleInterval := cfg.MetricsInterval
	if guardSampleInterval <= 0 {
		guardSampleInterval = 5 * time.Second
	}
	guardTicker := time.NewTicker(guardSampleInterval)
	defer guardTicker.Stop()

	loopInterval := time.Duration(cfg.SimulationSpeedMs) * time.Millisecond
	if loopInterval <= 0 {
		loopInterval = time.Millisecond
	}
	loopTicker := time.NewTicker(loopInterval)
	defer loopTicker.Stop()

	log.Info().Str("addr", cfg.Addr).Msg("server listening")

	for {
		select {
		case <-shutdown:
			log.Info().Msg("shutting down")
			return
		case <-guardTicker.C:
			resourceGuard.Sample()
			metrics.SessionsConnected.Set(float64(office.ClientCount()))
		case <-loopTicker.C:
			if accept, reason := resourceGuard.ShouldAcceptSession(office.ClientCount()); accept {
				transport.AcceptLoop(registry, office, events, log)
			} else {
				log.Debug().Str("reason", reason).Msg("rejecting new sessions this tick")
			}

			transport.ServerRecv(registry, office, pack, ticker.CommandFrame(), events, log, rateLimiter.Allow)

			for _, event := range events.Drain() {
				if event.Kind == postal.Disconnected {
					office.RemoveClient(event.ClientID)
					rateLimiter.Remove(event.ClientID)
				}
				if eventMirror != nil {
					eventMirror.Publish(event)
				}
			}

			if ticker.TryTick() {
				stateMu.Lock()
				if !state.IsEmpty() {
					office.Broadcast(postal.NewStateUpdate[ServerMsg](state))
					state.Reset()
				}
				stateMu.Unlock()
			}

			transport.ServerSend(registry, office, pack, events, log)
		}
	}
}
