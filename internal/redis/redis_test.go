package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	_, err = Connect(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestShotEventsRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := Connect(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()

	bus := NewEventBus(client, zerolog.Nop())
	got := make(chan models.ShotEvent, 1)
	require.NoError(t, bus.Subscribe(ctx, func(ev models.ShotEvent) { got <- ev }))

	sent := models.ShotEvent{Type: "shot_completed", GameID: 3, GameName: "g", ShotID: 9, PlayerName: "ann", FirstFrame: 10, LastFrame: 42, Duration: 0.33}
	require.NoError(t, bus.PublishShot(ctx, sent))

	select {
	case ev := <-got:
		assert.Equal(t, sent, ev)
	case <-time.After(2 * time.Second):
		t.Fatal("shot event not delivered")
	}
}
