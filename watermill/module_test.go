package watermillsignal

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidroman0O/waitsignal"
)

func TestBridge(t *testing.T) {
	t.Run("ReleasePokeWakesWaiter", func(t *testing.T) {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		defer pubSub.Close()

		s, err := waitsignal.New()
		require.NoError(t, err)
		defer s.Dispose()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		b := NewBridge(pubSub, s)
		bridgeDone := make(chan error, 1)
		go func() {
			bridgeDone <- b.Run(ctx)
		}()
		// let the subscriptions settle before poking
		time.Sleep(100 * time.Millisecond)

		results := make(chan error, 1)
		go func() {
			results <- s.Wait(context.Background())
		}()
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, Poke(pubSub, DefaultReleaseTopic))

		select {
		case err := <-results:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("release poke did not wake the waiter")
		}
		assert.False(t, s.IsCancelled())

		cancel()
		pubSub.Close()
		select {
		case err := <-bridgeDone:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("bridge did not stop")
		}
	})

	t.Run("CancelPokeIsTerminal", func(t *testing.T) {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
		defer pubSub.Close()

		s, err := waitsignal.New()
		require.NoError(t, err)
		defer s.Dispose()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		b := NewBridge(pubSub, s, WithCancelTopic("custom.cancel"))
		go func() {
			_ = b.Run(ctx)
		}()
		time.Sleep(100 * time.Millisecond)

		require.NoError(t, Poke(pubSub, "custom.cancel"))

		assert.Eventually(t, s.IsCancelled, 2*time.Second, 10*time.Millisecond)
		assert.ErrorIs(t, s.Wait(context.Background()), waitsignal.ErrCancelled)
	})
}
