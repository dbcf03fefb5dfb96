// Package watermillsignal bridges a watermill message bus to a wait
// signal, so producers can poke a consumer loop across whatever transport
// the bus runs on. Message payloads are ignored: the signal carries no
// data, only "resume" and "abort".
package watermillsignal

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/davidroman0O/waitsignal"
)

const (
	DefaultReleaseTopic = "waitsignal.release"
	DefaultCancelTopic  = "waitsignal.cancel"
)

// Bridge subscribes to a release topic and a cancel topic and drives the
// target signal: release messages call EndWait, cancel messages call
// Cancel. A cancel is terminal for the signal, as always.
type Bridge struct {
	sub          message.Subscriber
	signal       *waitsignal.Signal
	releaseTopic string
	cancelTopic  string
	logger       watermill.LoggerAdapter
}

type BridgeOption func(*Bridge)

func WithReleaseTopic(topic string) BridgeOption {
	return func(b *Bridge) {
		b.releaseTopic = topic
	}
}

func WithCancelTopic(topic string) BridgeOption {
	return func(b *Bridge) {
		b.cancelTopic = topic
	}
}

func WithLogger(logger watermill.LoggerAdapter) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

func NewBridge(sub message.Subscriber, s *waitsignal.Signal, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		sub:          sub,
		signal:       s,
		releaseTopic: DefaultReleaseTopic,
		cancelTopic:  DefaultCancelTopic,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = watermill.NewStdLogger(false, false)
	}
	return b
}

// Run subscribes to both topics and pumps messages into the signal until
// the context fires or the subscriber is closed.
func (b *Bridge) Run(ctx context.Context) error {
	releases, err := b.sub.Subscribe(ctx, b.releaseTopic)
	if err != nil {
		return fmt.Errorf("error subscribing to %s: %w", b.releaseTopic, err)
	}
	cancels, err := b.sub.Subscribe(ctx, b.cancelTopic)
	if err != nil {
		return fmt.Errorf("error subscribing to %s: %w", b.cancelTopic, err)
	}

	b.logger.Debug("Bridge running", watermill.LogFields{
		"releaseTopic": b.releaseTopic,
		"cancelTopic":  b.cancelTopic,
	})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range releases {
			b.logger.Debug("Release poke", watermill.LogFields{"uuid": msg.UUID})
			b.signal.EndWait()
			msg.Ack()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for msg := range cancels {
			b.logger.Debug("Cancel poke", watermill.LogFields{"uuid": msg.UUID})
			b.signal.Cancel()
			msg.Ack()
		}
	}()

	wg.Wait()
	b.logger.Debug("Bridge stopped", nil)
	return nil
}

// Poke publishes a payload-free message on the given topic.
func Poke(pub message.Publisher, topic string) error {
	return pub.Publish(topic, message.NewMessage(watermill.NewUUID(), nil))
}
