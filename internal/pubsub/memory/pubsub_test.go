package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/invoicer/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSub_DeliversPublishedMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ps := NewPubSub(logger.NewNopLogger())
	defer ps.Close()

	// published before subscribing, persistence replays it
	require.NoError(t, ps.Publish(ctx, "invoice_events", message.NewMessage("m1", []byte(`{"ok":true}`))))

	ch, err := ps.Subscribe(ctx, "invoice_events")
	require.NoError(t, err)

	select {
	case msg := <-ch:
		assert.Equal(t, "m1", msg.UUID)
		assert.JSONEq(t, `{"ok":true}`, string(msg.Payload))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("message was not delivered")
	}
}
