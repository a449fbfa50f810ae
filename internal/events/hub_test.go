package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zkdex-backend/internal/models"
)

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	a := &Client{ID: "a", Send: make(chan []byte, 4)}
	b := &Client{ID: "b", Send: make(chan []byte, 4)}
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, 2, hub.ClientCount())

	payload := []byte(`{"pool_id":"p1"}`)
	hub.Publish(context.Background(), models.EventPoolCreated, payload)

	for _, client := range []*Client{a, b} {
		select {
		case raw := <-client.Send:
			var frame StreamFrame
			require.NoError(t, json.Unmarshal(raw, &frame))
			assert.Equal(t, "event", frame.Type)
			assert.Equal(t, models.EventPoolCreated, frame.Kind)
			assert.NotEmpty(t, frame.MessageID)
			assert.JSONEq(t, string(payload), string(frame.Data))
		default:
			t.Fatalf("client %s received no frame", client.ID)
		}
	}
}

func TestHubSkipsSlowSubscriber(t *testing.T) {
	hub := NewHub()
	slow := &Client{ID: "slow", Send: make(chan []byte)}
	fast := &Client{ID: "fast", Send: make(chan []byte, 1)}
	hub.Register(slow)
	hub.Register(fast)

	// Nobody reads from slow; the publish must not block on it.
	hub.Publish(context.Background(), models.EventSwapExecuted, []byte(`{}`))

	select {
	case <-fast.Send:
	default:
		t.Fatal("fast client received no frame")
	}
	assert.Empty(t, slow.Send)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	client := &Client{ID: "a", Send: make(chan []byte, 1)}
	hub.Register(client)
	hub.Unregister("a")
	hub.Unregister("a")
	assert.Zero(t, hub.ClientCount())

	hub.Publish(context.Background(), models.EventPoolCreated, []byte(`{}`))
	assert.Empty(t, client.Send)
}

func TestRecorderKeepsPayloadCopies(t *testing.T) {
	rec := NewRecorder()
	payload := []byte(`{"n":1}`)
	rec.Publish(context.Background(), models.EventAssetLocked, payload)
	payload[0] = 'X'

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventAssetLocked, events[0].Kind)
	assert.Equal(t, `{"n":1}`, string(events[0].Payload))
	assert.Equal(t, []models.EventKind{models.EventAssetLocked}, rec.Kinds())
}

func TestMultiSinkForwardsInOrder(t *testing.T) {
	first := NewRecorder()
	second := NewRecorder()
	sink := NewMultiSink(first, second)

	sink.Publish(context.Background(), models.EventSwapCommitted, []byte(`{}`))
	sink.Publish(context.Background(), models.EventSwapExecuted, []byte(`{}`))

	want := []models.EventKind{models.EventSwapCommitted, models.EventSwapExecuted}
	assert.Equal(t, want, first.Kinds())
	assert.Equal(t, want, second.Kinds())
}
