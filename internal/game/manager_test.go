package game

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/database"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/playmatatu/billiards/internal/physics"
	"github.com/playmatatu/billiards/internal/shot"
	"github.com/playmatatu/billiards/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ShotEvent
	err    error
}

func (p *recordingPublisher) PublishShot(_ context.Context, ev models.ShotEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func newTestManager(t *testing.T, events Publisher) (*Manager, *store.Store) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "game.db") + "?_pragma=foreign_keys(1)&_pragma=synchronous(OFF)"
	db, err := database.Connect(database.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(db, zerolog.Nop())
	require.NoError(t, st.CreateSchema(context.Background()))

	sim := shot.NewSimulator(physics.NewEngine(), zerolog.Nop())
	return NewManager(st, sim, events, zerolog.Nop()), st
}

func TestNewGameRacksTable(t *testing.T) {
	ctx := context.Background()
	m, st := newTestManager(t, nil)

	res, err := m.NewGame(ctx, " friday ", "ann", "bob")
	require.NoError(t, err)
	assert.Equal(t, "friday", res.Game.Name)
	assert.Equal(t, "ann", res.Game.Player1Name)
	assert.Equal(t, "bob", res.Game.Player2Name)
	assert.Equal(t, 0, res.OpeningFrame)

	sess, err := st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	opening, err := sess.ReadFrame(ctx, res.OpeningFrame)
	require.NoError(t, err)
	assert.Equal(t, res.Table, opening)
	assert.Equal(t, billiards.NumBalls+10, opening.Len())
}

func TestNewGameRejectsBadNames(t *testing.T) {
	m, _ := newTestManager(t, nil)
	ctx := context.Background()

	_, err := m.NewGame(ctx, "", "ann", "bob")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = m.NewGame(ctx, "g", "ann", "ann")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = m.NewGame(ctx, "g", string(make([]byte, 65)), "bob")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestTakeShotRecordsEveryFrame(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, st := newTestManager(t, pub)

	game, err := m.NewGame(ctx, "g", "ann", "bob")
	require.NoError(t, err)

	// straight up the table, stopping well short of the rack
	res, err := m.TakeShot(ctx, "g", "ann", -1, billiards.NewCoordinate(0, -300))
	require.NoError(t, err)
	assert.Equal(t, game.OpeningFrame, res.FromFrame)
	assert.Equal(t, "ann", res.Shot.PlayerName)
	require.NotEmpty(t, res.FrameIDs)
	assert.Len(t, res.FrameIDs, len(res.Result.Frames))
	assert.Equal(t, len(res.FrameIDs), res.Shot.Frames)
	assert.Equal(t, 0.0, res.Result.Frames[0].Time, "shot clock starts at zero")

	sess, err := st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()

	ids, err := sess.ShotFrames(ctx, res.Shot.ID)
	require.NoError(t, err)
	assert.Equal(t, res.FrameIDs, ids)

	last, err := sess.ReadFrame(ctx, ids[len(ids)-1])
	require.NoError(t, err)
	assert.Zero(t, last.Rolling(), "replay ends at rest")
	_, cue, ok := last.FindBall(billiards.CueBall)
	require.True(t, ok)
	assert.InDelta(t, 2025-300*300/(2*billiards.Drag), cue.Position().Y, 1)

	latest, err := sess.LatestFrame(ctx, game.Game.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[len(ids)-1], latest)

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, EventShotCompleted, ev.Type)
	assert.Equal(t, res.Shot.ID, ev.ShotID)
	assert.Equal(t, ids[0], ev.FirstFrame)
	assert.Equal(t, ids[len(ids)-1], ev.LastFrame)
}

func TestTakeShotContinuesFromLatestFrame(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	_, err := m.NewGame(ctx, "g", "ann", "bob")
	require.NoError(t, err)
	first, err := m.TakeShot(ctx, "g", "ann", -1, billiards.NewCoordinate(0, -100))
	require.NoError(t, err)

	second, err := m.TakeShot(ctx, "g", "bob", -1, billiards.NewCoordinate(100, 0))
	require.NoError(t, err)
	assert.Equal(t, first.FrameIDs[len(first.FrameIDs)-1], second.FromFrame)

	_, start, _ := second.Result.Frames[0].FindBall(billiards.CueBall)
	_, end, _ := first.Result.Final().FindBall(billiards.CueBall)
	assert.Equal(t, end.Position(), start.Position())
}

func TestTakeShotErrors(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, st := newTestManager(t, pub)

	_, err := m.TakeShot(ctx, "missing", "ann", -1, billiards.NewCoordinate(1, 1))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.NewGame(ctx, "g", "ann", "bob")
	require.NoError(t, err)

	_, err = m.TakeShot(ctx, "g", "cat", -1, billiards.NewCoordinate(1, 1))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.TakeShot(ctx, "g", "ann", 500, billiards.NewCoordinate(1, 1))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = m.TakeShot(ctx, "g", "ann", -1, billiards.NewCoordinate(1e200, 0))
	assert.ErrorIs(t, err, billiards.ErrInvalidBall)

	// the game's latest frame has lost its cue ball
	sess, err := st.Session(ctx)
	require.NoError(t, err)
	game, err := sess.FindGame(ctx, "g")
	require.NoError(t, err)
	pocketed, err := sess.NewShotInGame(ctx, game.ID, "bob")
	require.NoError(t, err)
	_, err = sess.RecordShotFrame(ctx, pocketed.ID, billiards.NewTable())
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	_, err = m.TakeShot(ctx, "g", "ann", -1, billiards.NewCoordinate(1, 1))
	assert.ErrorIs(t, err, shot.ErrDegenerateShot)

	sess, err = st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	shots, err := sess.GameShots(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, shots, 1, "no shot row for a rejected shot")
	assert.Equal(t, pocketed.ID, shots[0].ID)
	assert.Empty(t, pub.events)
}

func TestTakeShotUsesLatestGameWithName(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	m, st := newTestManager(t, pub)

	older, err := m.NewGame(ctx, "g", "ann", "bob")
	require.NoError(t, err)
	newer, err := m.NewGame(ctx, "g", "cat", "dan")
	require.NoError(t, err)

	_, err = m.TakeShot(ctx, "g", "ann", -1, billiards.NewCoordinate(0, -300))
	assert.ErrorIs(t, err, store.ErrNotFound, "ann only plays the older game")

	res, err := m.TakeShot(ctx, "g", "cat", -1, billiards.NewCoordinate(0, -300))
	require.NoError(t, err)
	assert.Equal(t, newer.Game.ID, res.Game.ID)
	assert.Equal(t, newer.Game.ID, res.Shot.GameID)
	assert.Equal(t, newer.OpeningFrame, res.FromFrame)

	sess, err := st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	shots, err := sess.GameShots(ctx, older.Game.ID)
	require.NoError(t, err)
	assert.Empty(t, shots)
	shots, err = sess.GameShots(ctx, newer.Game.ID)
	require.NoError(t, err)
	require.Len(t, shots, 1)
	assert.Equal(t, res.Shot.ID, shots[0].ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, newer.Game.ID, pub.events[0].GameID)
}

func TestTakeShotRejectsForeignFrames(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	first, err := m.NewGame(ctx, "first", "ann", "bob")
	require.NoError(t, err)
	second, err := m.NewGame(ctx, "second", "cat", "dan")
	require.NoError(t, err)

	racked := billiards.NewTable()
	require.NoError(t, billiards.Rack(&racked))
	loose, err := m.Simulate(ctx, racked)
	require.NoError(t, err)
	require.NotEmpty(t, loose.FrameIDs)

	_, err = m.TakeShot(ctx, "second", "cat", first.OpeningFrame, billiards.NewCoordinate(0, -300))
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = m.TakeShot(ctx, "second", "cat", loose.FrameIDs[0], billiards.NewCoordinate(0, -300))
	assert.ErrorIs(t, err, store.ErrNotFound)

	res, err := m.TakeShot(ctx, "second", "cat", second.OpeningFrame, billiards.NewCoordinate(0, -300))
	require.NoError(t, err)
	last := res.FrameIDs[len(res.FrameIDs)-1]

	_, err = m.TakeShot(ctx, "second", "dan", last, billiards.NewCoordinate(0, 300))
	assert.NoError(t, err, "frames of the game's own shots are valid starts")
}

func TestPublishFailureDoesNotFailShot(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("redis down")}
	m, _ := newTestManager(t, pub)

	_, err := m.NewGame(ctx, "g", "ann", "bob")
	require.NoError(t, err)
	_, err = m.TakeShot(ctx, "g", "ann", -1, billiards.NewCoordinate(0, -50))
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestSimulateStoresLooseFrames(t *testing.T) {
	ctx := context.Background()
	m, st := newTestManager(t, nil)

	table := billiards.NewTable()
	require.NoError(t, table.Append(billiards.StillBall{Number: 0, Pos: billiards.NewCoordinate(675, 675)}))
	require.NoError(t, table.Append(billiards.RollingBall{Number: 1, Pos: billiards.NewCoordinate(675, 400), Vel: billiards.NewCoordinate(0, -100)}))

	res, err := m.Simulate(ctx, table)
	require.NoError(t, err)
	require.Len(t, res.FrameIDs, len(res.Result.Frames))

	sess, err := st.Session(ctx)
	require.NoError(t, err)
	defer sess.Close()
	for i, id := range res.FrameIDs {
		got, err := sess.ReadFrame(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, res.Result.Frames[i].Time, got.Time)
	}
}
