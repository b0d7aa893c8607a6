package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/models"
)

// Frame ids handed out by this package are zero based; the frames table
// numbers rows from one.
func internalFrameID(frameID int) int { return frameID + 1 }
func externalFrameID(rowID int) int   { return rowID - 1 }

// WriteFrame stores a snapshot of t and returns its frame id. Only balls are
// stored; table geometry is rebuilt on read.
func (s *Session) WriteFrame(ctx context.Context, t billiards.Table) (int, error) {
	var frameID int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.writeFrame(ctx, tx, t)
		frameID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return frameID, nil
}

// RecordShotFrame stores a snapshot of t and links it to shotID in one
// transaction.
func (s *Session) RecordShotFrame(ctx context.Context, shotID int, t billiards.Table) (int, error) {
	var frameID int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		id, err := s.writeFrame(ctx, tx, t)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO frame_shots (frame_id, shot_id) VALUES (?, ?)`), internalFrameID(id), shotID); err != nil {
			return fmt.Errorf("link frame %d to shot %d: %w", id, shotID, err)
		}
		frameID = id
		return nil
	})
	if err != nil {
		return 0, err
	}
	return frameID, nil
}

func (s *Session) writeFrame(ctx context.Context, tx *sqlx.Tx, t billiards.Table) (int, error) {
	rowID, err := s.insertID(ctx, tx, `INSERT INTO frames (sim_time) VALUES (?) RETURNING frame_id`, t.Time)
	if err != nil {
		return 0, fmt.Errorf("insert frame: %w", err)
	}

	for _, b := range t.Balls() {
		row := models.BallRow{Number: b.BallNumber(), XPos: b.Position().X, YPos: b.Position().Y}
		if rb, ok := b.(billiards.RollingBall); ok {
			row.XVel = sql.NullFloat64{Float64: rb.Vel.X, Valid: true}
			row.YVel = sql.NullFloat64{Float64: rb.Vel.Y, Valid: true}
		}

		ballID, err := s.insertID(ctx, tx,
			`INSERT INTO balls (ball_no, xpos, ypos, xvel, yvel) VALUES (?, ?, ?, ?, ?) RETURNING ball_id`,
			row.Number, row.XPos, row.YPos, row.XVel, row.YVel)
		if err != nil {
			return 0, fmt.Errorf("insert ball %d: %w", row.Number, err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO frame_balls (ball_id, frame_id) VALUES (?, ?)`), ballID, rowID); err != nil {
			return 0, fmt.Errorf("link ball %d: %w", row.Number, err)
		}
	}

	return externalFrameID(rowID), nil
}

// ReadFrame rebuilds the table stored as frameID: the standard geometry plus
// the stored balls in insertion order. Rolling balls get their acceleration
// recomputed from the stored velocity.
func (s *Session) ReadFrame(ctx context.Context, frameID int) (billiards.Table, error) {
	var frame models.FrameRow
	err := sqlx.GetContext(ctx, s.conn, &frame,
		s.rebind(`SELECT frame_id, sim_time FROM frames WHERE frame_id = ?`), internalFrameID(frameID))
	if err != nil {
		return billiards.Table{}, notFound(err, "frame %d", frameID)
	}

	var rows []models.BallRow
	err = sqlx.SelectContext(ctx, s.conn, &rows, s.rebind(`
		SELECT b.ball_id, b.ball_no, b.xpos, b.ypos, b.xvel, b.yvel
		FROM balls b
		JOIN frame_balls fb ON fb.ball_id = b.ball_id
		WHERE fb.frame_id = ?
		ORDER BY b.ball_id`), frame.ID)
	if err != nil {
		return billiards.Table{}, fmt.Errorf("read balls of frame %d: %w", frameID, err)
	}

	t := billiards.NewTable().WithTime(frame.SimTime)
	for _, row := range rows {
		pos := billiards.NewCoordinate(row.XPos, row.YPos)
		var ball billiards.Object = billiards.StillBall{Number: row.Number, Pos: pos}
		if row.Rolling() {
			ball = billiards.RollingBall{Number: row.Number, Pos: pos, Vel: billiards.NewCoordinate(row.XVel.Float64, row.YVel.Float64)}
		}
		if err := t.Append(ball); err != nil {
			return billiards.Table{}, fmt.Errorf("frame %d: %w", frameID, err)
		}
	}
	return t, nil
}

// ShotFrames lists the frames of a shot in the order they were produced.
func (s *Session) ShotFrames(ctx context.Context, shotID int) ([]int, error) {
	var rowIDs []int
	err := sqlx.SelectContext(ctx, s.conn, &rowIDs,
		s.rebind(`SELECT frame_id FROM frame_shots WHERE shot_id = ? ORDER BY frame_id`), shotID)
	if err != nil {
		return nil, fmt.Errorf("read frames of shot %d: %w", shotID, err)
	}
	if len(rowIDs) == 0 {
		if err := s.exists(ctx, `SELECT shot_id FROM shots WHERE shot_id = ?`, shotID); err != nil {
			return nil, notFound(err, "shot %d", shotID)
		}
	}

	ids := make([]int, len(rowIDs))
	for i, id := range rowIDs {
		ids[i] = externalFrameID(id)
	}
	return ids, nil
}

// exists returns sql.ErrNoRows when query selects nothing.
func (s *Session) exists(ctx context.Context, query string, args ...interface{}) error {
	var id int
	return sqlx.GetContext(ctx, s.conn, &id, s.rebind(query), args...)
}
