package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/models"
	"github.com/playmatatu/billiards/internal/shot"
	"github.com/playmatatu/billiards/internal/store"
	"github.com/rs/zerolog"
)

// ErrInvalidName is returned for empty or overlong game and player names.
var ErrInvalidName = errors.New("invalid name")

// maxNameLength matches the VARCHAR(64) name columns.
const maxNameLength = 64

// EventShotCompleted is the type of the event published after each shot.
const EventShotCompleted = "shot_completed"

// Publisher announces resolved shots. It may be nil.
type Publisher interface {
	PublishShot(ctx context.Context, ev models.ShotEvent) error
}

// Manager runs games: it creates them, resolves shots and records every frame.
type Manager struct {
	store  *store.Store
	sim    *shot.Simulator
	events Publisher
	log    zerolog.Logger
}

func NewManager(st *store.Store, sim *shot.Simulator, events Publisher, log zerolog.Logger) *Manager {
	return &Manager{
		store:  st,
		sim:    sim,
		events: events,
		log:    log.With().Str("component", "game").Logger(),
	}
}

// NewGameResult describes a freshly racked game.
type NewGameResult struct {
	Game         models.Game
	OpeningFrame int
	Table        billiards.Table
}

// NewGame creates a game for two players and stores the racked table as its
// opening frame.
func (m *Manager) NewGame(ctx context.Context, name, player1, player2 string) (NewGameResult, error) {
	name, player1, player2 = strings.TrimSpace(name), strings.TrimSpace(player1), strings.TrimSpace(player2)
	for _, n := range []string{name, player1, player2} {
		if err := checkName(n); err != nil {
			return NewGameResult{}, err
		}
	}
	if player1 == player2 {
		return NewGameResult{}, fmt.Errorf("%w: both players are called %q", ErrInvalidName, player1)
	}

	table := billiards.NewTable()
	if err := billiards.Rack(&table); err != nil {
		return NewGameResult{}, err
	}

	sess, err := m.store.Session(ctx)
	if err != nil {
		return NewGameResult{}, err
	}
	defer sess.Close()

	gameID, frameID, err := sess.CreateGameFrom(ctx, name, player1, player2, table)
	if err != nil {
		return NewGameResult{}, err
	}
	game, err := sess.GetGame(ctx, gameID)
	if err != nil {
		return NewGameResult{}, err
	}

	m.log.Info().Int("game_id", gameID).Int("frame_id", frameID).Msg("table racked")
	return NewGameResult{Game: game, OpeningFrame: frameID, Table: table}, nil
}

// ShotResult describes a resolved and persisted shot.
type ShotResult struct {
	Game      models.Game
	Shot      models.Shot
	FromFrame int
	FrameIDs  []int
	Result    shot.Result
}

// TakeShot strikes the cue ball with vel on the table stored as fromFrame,
// or on the game's latest frame when fromFrame is negative. fromFrame must
// belong to the game. The shot's clock
// starts at zero. Every frame is persisted and linked to the new shot as it
// is produced.
func (m *Manager) TakeShot(ctx context.Context, gameName, playerName string, fromFrame int, vel billiards.Coordinate) (ShotResult, error) {
	if err := billiards.CheckVelocity(vel); err != nil {
		return ShotResult{}, fmt.Errorf("cue ball: %w", err)
	}

	sess, err := m.store.Session(ctx)
	if err != nil {
		return ShotResult{}, err
	}
	defer sess.Close()

	game, err := sess.FindGame(ctx, strings.TrimSpace(gameName))
	if err != nil {
		return ShotResult{}, err
	}
	if fromFrame < 0 {
		if fromFrame, err = sess.LatestFrame(ctx, game.ID); err != nil {
			return ShotResult{}, err
		}
	} else if err := sess.CheckGameFrame(ctx, game.ID, fromFrame); err != nil {
		return ShotResult{}, err
	}
	table, err := sess.ReadFrame(ctx, fromFrame)
	if err != nil {
		return ShotResult{}, err
	}
	table = table.WithTime(0)
	if _, _, ok := table.FindBall(billiards.CueBall); !ok {
		return ShotResult{}, shot.ErrDegenerateShot
	}

	sh, err := sess.NewShotInGame(ctx, game.ID, strings.TrimSpace(playerName))
	if err != nil {
		return ShotResult{}, err
	}

	res := ShotResult{Game: game, Shot: sh, FromFrame: fromFrame}
	sink := shot.FrameSinkFunc(func(ctx context.Context, frame billiards.Table) error {
		id, err := sess.RecordShotFrame(ctx, sh.ID, frame)
		if err != nil {
			return err
		}
		res.FrameIDs = append(res.FrameIDs, id)
		return nil
	})

	res.Result, err = m.sim.Shoot(ctx, table, vel, sink)
	if err != nil {
		m.log.Error().Err(err).Int("shot_id", sh.ID).Int("frames_written", len(res.FrameIDs)).Msg("shot aborted")
		return res, err
	}
	res.Shot.Frames = len(res.FrameIDs)

	m.log.Info().
		Int("game_id", game.ID).
		Int("shot_id", sh.ID).
		Str("player", sh.PlayerName).
		Int("frames", len(res.FrameIDs)).
		Msg("shot recorded")
	m.publish(ctx, res)
	return res, nil
}

func (m *Manager) publish(ctx context.Context, res ShotResult) {
	if m.events == nil || len(res.FrameIDs) == 0 {
		return
	}
	ev := models.ShotEvent{
		Type:       EventShotCompleted,
		GameID:     res.Game.ID,
		GameName:   res.Game.Name,
		ShotID:     res.Shot.ID,
		PlayerName: res.Shot.PlayerName,
		FirstFrame: res.FrameIDs[0],
		LastFrame:  res.FrameIDs[len(res.FrameIDs)-1],
		Duration:   res.Result.Duration(),
	}
	if err := m.events.PublishShot(ctx, ev); err != nil {
		m.log.Warn().Err(err).Int("shot_id", res.Shot.ID).Msg("shot event not published")
	}
}

// SimulationResult is a free-standing simulation outside any game.
type SimulationResult struct {
	FrameIDs []int
	Result   shot.Result
}

// Simulate resolves the motion already on table and stores every frame
// without attaching it to a shot.
func (m *Manager) Simulate(ctx context.Context, table billiards.Table) (SimulationResult, error) {
	sess, err := m.store.Session(ctx)
	if err != nil {
		return SimulationResult{}, err
	}
	defer sess.Close()

	var res SimulationResult
	sink := shot.FrameSinkFunc(func(ctx context.Context, frame billiards.Table) error {
		id, err := sess.WriteFrame(ctx, frame)
		if err != nil {
			return err
		}
		res.FrameIDs = append(res.FrameIDs, id)
		return nil
	})

	res.Result, err = m.sim.Run(ctx, table, sink)
	if err != nil {
		return res, err
	}
	return res, nil
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidName, name, maxNameLength)
	}
	return nil
}
