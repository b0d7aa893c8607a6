package models

import (
	"database/sql"
)

// BallRow is one stored ball. Both velocity columns are NULL for a still
// ball and both are set for a rolling one.
type BallRow struct {
	ID     int             `db:"ball_id" json:"ball_id"`
	Number int             `db:"ball_no" json:"ball_no"`
	XPos   float64         `db:"xpos" json:"xpos"`
	YPos   float64         `db:"ypos" json:"ypos"`
	XVel   sql.NullFloat64 `db:"xvel" json:"xvel"`
	YVel   sql.NullFloat64 `db:"yvel" json:"yvel"`
}

// Rolling reports whether the row stores a velocity.
func (b BallRow) Rolling() bool {
	return b.XVel.Valid && b.YVel.Valid
}

// FrameRow is one persisted table snapshot.
type FrameRow struct {
	ID      int     `db:"frame_id" json:"frame_id"`
	SimTime float64 `db:"sim_time" json:"sim_time"`
}

// Game represents a game between two players
type Game struct {
	ID          int    `db:"game_id" json:"game_id"`
	Name        string `db:"game_name" json:"game_name"`
	Player1Name string `db:"player1_name" json:"player1_name"`
	Player2Name string `db:"player2_name" json:"player2_name"`
}

// Player represents a named player within one game
type Player struct {
	ID     int    `db:"player_id" json:"player_id"`
	GameID int    `db:"game_id" json:"game_id"`
	Name   string `db:"player_name" json:"player_name"`
}

// Shot represents one strike of the cue ball
type Shot struct {
	ID         int    `db:"shot_id" json:"shot_id"`
	PlayerID   int    `db:"player_id" json:"player_id"`
	GameID     int    `db:"game_id" json:"game_id"`
	PlayerName string `db:"player_name" json:"player_name"`
	Frames     int    `db:"frames" json:"frames"`
}

// ShotEvent is published when a shot has been resolved and persisted
type ShotEvent struct {
	Type       string  `json:"type"`
	GameID     int     `json:"game_id"`
	GameName   string  `json:"game_name"`
	ShotID     int     `json:"shot_id"`
	PlayerName string  `json:"player_name"`
	FirstFrame int     `json:"first_frame"`
	LastFrame  int     `json:"last_frame"`
	Duration   float64 `json:"duration"`
}
