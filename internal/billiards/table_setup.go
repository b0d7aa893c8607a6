package billiards

import "math"

// NewTable creates the standard table geometry: the four cushions in slots
// 0-3 and the six holes (corners and side middles) in slots 4-9.
func NewTable() Table {
	var t Table
	geometry := []Object{
		HCushion{Y: 0},
		HCushion{Y: TableLength},
		VCushion{X: 0},
		VCushion{X: TableWidth},
		Hole{Pos: NewCoordinate(0, 0)},
		Hole{Pos: NewCoordinate(0, TableLength/2)},
		Hole{Pos: NewCoordinate(0, TableLength)},
		Hole{Pos: NewCoordinate(TableWidth, 0)},
		Hole{Pos: NewCoordinate(TableWidth, TableLength/2)},
		Hole{Pos: NewCoordinate(TableWidth, TableLength)},
	}
	copy(t.slots[:], geometry)
	return t
}

// rackRows lists ball numbers row by row from the apex, left to right.
var rackRows = [][]int{
	{1},
	{15, 2},
	{10, 8, 5},
	{6, 9, 7, 4},
	{3, 13, 11, 12, 14},
}

// RackPositions returns the opening position of all 16 balls: the cue ball
// on the centre line of the near half, the triangle with its apex on the
// centre line of the far half. Fixed offsets, no jitter, so every game opens
// from the same layout.
func RackPositions() [NumBalls]Coordinate {
	var pos [NumBalls]Coordinate

	spread := 1.01 // keeps neighbours just apart so the rack is not a collision
	dx := BallDiameter * spread
	dy := BallDiameter * spread * math.Sqrt(3) / 2
	apex := NewCoordinate(TableWidth/2, TableLength/4)

	pos[CueBall] = NewCoordinate(TableWidth/2, TableLength*3/4)
	for row, numbers := range rackRows {
		y := apex.Y - float64(row)*dy
		for col, n := range numbers {
			x := apex.X + (float64(col)-float64(row)/2)*dx
			pos[n] = NewCoordinate(x, y)
		}
	}
	return pos
}

// Rack appends all 16 balls at their opening positions.
func Rack(t *Table) error {
	for n, p := range RackPositions() {
		if err := t.Append(StillBall{Number: n, Pos: p}); err != nil {
			return err
		}
	}
	return nil
}
