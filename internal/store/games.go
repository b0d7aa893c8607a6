package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/models"
)

// CreateGame inserts a game and its two players in one transaction. Player 1
// is inserted first, so it always holds the smaller player id.
func (s *Session) CreateGame(ctx context.Context, name, player1, player2 string) (int, error) {
	var gameID int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.createGame(ctx, tx, name, player1, player2)
		gameID = id
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info().Int("game_id", gameID).Str("game_name", name).Msg("game created")
	return gameID, nil
}

// CreateGameFrom creates a game like CreateGame and stores opening as its
// opening frame, all in one transaction. It returns the game and frame ids.
func (s *Session) CreateGameFrom(ctx context.Context, name, player1, player2 string, opening billiards.Table) (int, int, error) {
	var gameID, frameID int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if gameID, err = s.createGame(ctx, tx, name, player1, player2); err != nil {
			return err
		}
		if frameID, err = s.writeFrame(ctx, tx, opening); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, s.rebind(`UPDATE games SET opening_frame = ? WHERE game_id = ?`), internalFrameID(frameID), gameID)
		if err != nil {
			return fmt.Errorf("set opening frame of game %d: %w", gameID, err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	s.log.Info().Int("game_id", gameID).Int("frame_id", frameID).Str("game_name", name).Msg("game created")
	return gameID, frameID, nil
}

func (s *Session) createGame(ctx context.Context, tx *sqlx.Tx, name, player1, player2 string) (int, error) {
	id, err := s.insertID(ctx, tx, `INSERT INTO games (game_name) VALUES (?) RETURNING game_id`, name)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w", err)
	}
	for _, player := range []string{player1, player2} {
		if _, err := s.insertID(ctx, tx, `INSERT INTO players (game_id, player_name) VALUES (?, ?) RETURNING player_id`, id, player); err != nil {
			return 0, fmt.Errorf("insert player %q: %w", player, err)
		}
	}
	return id, nil
}

// GetGame returns a game with its players; Player1Name belongs to the player
// with the smaller id.
func (s *Session) GetGame(ctx context.Context, gameID int) (models.Game, error) {
	var g models.Game
	err := sqlx.GetContext(ctx, s.conn, &g, s.rebind(`
		SELECT g.game_id, g.game_name, p1.player_name AS player1_name, p2.player_name AS player2_name
		FROM games g
		JOIN players p1 ON p1.game_id = g.game_id
		JOIN players p2 ON p2.game_id = g.game_id AND p1.player_id < p2.player_id
		WHERE g.game_id = ?`), gameID)
	if err != nil {
		return models.Game{}, notFound(err, "game %d", gameID)
	}
	return g, nil
}

// FindGame returns the most recent game called name.
func (s *Session) FindGame(ctx context.Context, name string) (models.Game, error) {
	id, err := s.latestGameID(ctx, name)
	if err != nil {
		return models.Game{}, err
	}
	return s.GetGame(ctx, id)
}

func (s *Session) latestGameID(ctx context.Context, name string) (int, error) {
	var id int
	err := sqlx.GetContext(ctx, s.conn, &id,
		s.rebind(`SELECT game_id FROM games WHERE game_name = ? ORDER BY game_id DESC LIMIT 1`), name)
	if err != nil {
		return 0, notFound(err, "game %q", name)
	}
	return id, nil
}

// LatestFrame is the last frame of the game's most recent shot, or its
// opening frame before any shot was taken.
func (s *Session) LatestFrame(ctx context.Context, gameID int) (int, error) {
	var rowID sql.NullInt64
	err := sqlx.GetContext(ctx, s.conn, &rowID, s.rebind(`
		SELECT COALESCE(
			(SELECT MAX(fs.frame_id) FROM frame_shots fs JOIN shots sh ON sh.shot_id = fs.shot_id WHERE sh.game_id = g.game_id),
			g.opening_frame)
		FROM games g
		WHERE g.game_id = ?`), gameID)
	if err != nil {
		return 0, notFound(err, "game %d", gameID)
	}
	if !rowID.Valid {
		return 0, fmt.Errorf("%w: game %d has no frames", ErrNotFound, gameID)
	}
	return externalFrameID(int(rowID.Int64)), nil
}

// CheckGameFrame returns ErrNotFound unless frameID is the game's opening
// frame or a frame of one of its shots.
func (s *Session) CheckGameFrame(ctx context.Context, gameID, frameID int) error {
	rowID := internalFrameID(frameID)
	err := s.exists(ctx, `
		SELECT g.game_id FROM games g
		WHERE g.game_id = ? AND (g.opening_frame = ? OR EXISTS (
			SELECT 1 FROM frame_shots fs JOIN shots sh ON sh.shot_id = fs.shot_id
			WHERE sh.game_id = g.game_id AND fs.frame_id = ?))`, gameID, rowID, rowID)
	if err != nil {
		return notFound(err, "frame %d in game %d", frameID, gameID)
	}
	return nil
}

// NewShot records a shot by playerName in the most recent game called
// gameName. A player who is not in that game is not found, even if an older
// game of the same name has them.
func (s *Session) NewShot(ctx context.Context, gameName, playerName string) (models.Shot, error) {
	gameID, err := s.latestGameID(ctx, gameName)
	if err != nil {
		return models.Shot{}, err
	}
	return s.NewShotInGame(ctx, gameID, playerName)
}

// NewShotInGame records a shot by playerName in gameID.
func (s *Session) NewShotInGame(ctx context.Context, gameID int, playerName string) (models.Shot, error) {
	var shot models.Shot
	err := sqlx.GetContext(ctx, s.conn, &shot, s.rebind(`
		SELECT game_id, player_id, player_name
		FROM players
		WHERE game_id = ? AND player_name = ?
		ORDER BY player_id
		LIMIT 1`), gameID, playerName)
	if err != nil {
		return models.Shot{}, notFound(err, "player %q in game %d", playerName, gameID)
	}

	shot.ID, err = s.insertID(ctx, s.conn, `INSERT INTO shots (player_id, game_id) VALUES (?, ?) RETURNING shot_id`, shot.PlayerID, shot.GameID)
	if err != nil {
		return models.Shot{}, fmt.Errorf("insert shot: %w", err)
	}
	return shot, nil
}

// GameShots lists a game's shots in the order they were taken, with the
// number of frames each produced.
func (s *Session) GameShots(ctx context.Context, gameID int) ([]models.Shot, error) {
	if err := s.exists(ctx, `SELECT game_id FROM games WHERE game_id = ?`, gameID); err != nil {
		return nil, notFound(err, "game %d", gameID)
	}

	shots := []models.Shot{}
	err := sqlx.SelectContext(ctx, s.conn, &shots, s.rebind(`
		SELECT sh.shot_id, sh.player_id, sh.game_id, p.player_name, COUNT(fs.frame_id) AS frames
		FROM shots sh
		JOIN players p ON p.player_id = sh.player_id
		LEFT JOIN frame_shots fs ON fs.shot_id = sh.shot_id
		WHERE sh.game_id = ?
		GROUP BY sh.shot_id, sh.player_id, sh.game_id, p.player_name
		ORDER BY sh.shot_id`), gameID)
	if err != nil {
		return nil, fmt.Errorf("read shots of game %d: %w", gameID, err)
	}
	return shots, nil
}

// GetShot returns one shot.
func (s *Session) GetShot(ctx context.Context, shotID int) (models.Shot, error) {
	var shot models.Shot
	err := sqlx.GetContext(ctx, s.conn, &shot, s.rebind(`
		SELECT sh.shot_id, sh.player_id, sh.game_id, p.player_name, COUNT(fs.frame_id) AS frames
		FROM shots sh
		JOIN players p ON p.player_id = sh.player_id
		LEFT JOIN frame_shots fs ON fs.shot_id = sh.shot_id
		WHERE sh.shot_id = ?
		GROUP BY sh.shot_id, sh.player_id, sh.game_id, p.player_name`), shotID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Shot{}, fmt.Errorf("%w: shot %d", ErrNotFound, shotID)
	}
	if err != nil {
		return models.Shot{}, fmt.Errorf("read shot %d: %w", shotID, err)
	}
	return shot, nil
}
