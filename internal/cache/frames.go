// Package cache keeps reconstructed frames in Redis so replays do not rebuild
// the same table from the database over and over.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Frames is a cache-aside store of frames keyed by frame id. A Frames with
// no client caches nothing and always loads.
type Frames struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewFrames(client *redis.Client, ttl time.Duration, log zerolog.Logger) *Frames {
	return &Frames{client: client, ttl: ttl, log: log.With().Str("component", "frame_cache").Logger()}
}

func frameKey(id int) string {
	return fmt.Sprintf("frame:%d", id)
}

// Load returns frame id from the cache, or calls load and caches the result.
// Cache failures are logged and fall through to load.
func (f *Frames) Load(ctx context.Context, id int, load func(ctx context.Context, id int) (billiards.Table, error)) (billiards.Table, error) {
	if t, ok := f.get(ctx, id); ok {
		return t, nil
	}

	t, err := load(ctx, id)
	if err != nil {
		return billiards.Table{}, err
	}
	f.set(ctx, id, t)
	return t, nil
}

func (f *Frames) get(ctx context.Context, id int) (billiards.Table, bool) {
	if f == nil || f.client == nil {
		return billiards.Table{}, false
	}

	data, err := f.client.Get(ctx, frameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return billiards.Table{}, false
	}
	if err != nil {
		f.log.Warn().Err(err).Int("frame_id", id).Msg("cache read failed")
		return billiards.Table{}, false
	}

	var t billiards.Table
	if err := json.Unmarshal(data, &t); err != nil {
		f.log.Warn().Err(err).Int("frame_id", id).Msg("dropping undecodable cache entry")
		f.client.Del(ctx, frameKey(id))
		return billiards.Table{}, false
	}
	return t, true
}

func (f *Frames) set(ctx context.Context, id int, t billiards.Table) {
	if f == nil || f.client == nil {
		return
	}

	data, err := json.Marshal(t)
	if err != nil {
		f.log.Warn().Err(err).Int("frame_id", id).Msg("cannot encode frame")
		return
	}
	if err := f.client.Set(ctx, frameKey(id), data, f.ttl).Err(); err != nil {
		f.log.Warn().Err(err).Int("frame_id", id).Msg("cache write failed")
	}
}
