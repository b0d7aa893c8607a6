package billiards

import "fmt"

// Kind identifies the variant held by an Object.
type Kind int

const (
	KindStillBall Kind = iota
	KindRollingBall
	KindHole
	KindHCushion
	KindVCushion
)

var kindNames = [...]string{
	KindStillBall:   "still_ball",
	KindRollingBall: "rolling_ball",
	KindHole:        "hole",
	KindHCushion:    "hcushion",
	KindVCushion:    "vcushion",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Object is anything that can occupy a table slot. The set of
// implementations is closed: StillBall, RollingBall, Hole, HCushion and
// VCushion. All of them are plain values, so copying an Object copies its
// state.
type Object interface {
	Kind() Kind
	String() string
	object()
}

// Ball is implemented by StillBall and RollingBall.
type Ball interface {
	Object
	BallNumber() int
	Position() Coordinate
}

// StillBall is a ball at rest.
type StillBall struct {
	Number int
	Pos    Coordinate
}

// RollingBall is a ball in motion. Its acceleration is not part of its state;
// Acc derives it from Vel.
type RollingBall struct {
	Number int
	Pos    Coordinate
	Vel    Coordinate
}

// Hole is a pocket.
type Hole struct {
	Pos Coordinate
}

// HCushion is a horizontal cushion along one of the short sides.
type HCushion struct {
	Y float64
}

// VCushion is a vertical cushion along one of the long sides.
type VCushion struct {
	X float64
}

func (StillBall) Kind() Kind   { return KindStillBall }
func (RollingBall) Kind() Kind { return KindRollingBall }
func (Hole) Kind() Kind        { return KindHole }
func (HCushion) Kind() Kind    { return KindHCushion }
func (VCushion) Kind() Kind    { return KindVCushion }

func (StillBall) object()   {}
func (RollingBall) object() {}
func (Hole) object()        {}
func (HCushion) object()    {}
func (VCushion) object()    {}

func (b StillBall) BallNumber() int        { return b.Number }
func (b StillBall) Position() Coordinate   { return b.Pos }
func (b RollingBall) BallNumber() int      { return b.Number }
func (b RollingBall) Position() Coordinate { return b.Pos }

// Acc is the drag deceleration acting on the ball.
func (b RollingBall) Acc() Coordinate {
	return Acceleration(b.Vel)
}

// Roll converts a still ball into a rolling one with the given velocity.
func (b StillBall) Roll(vel Coordinate) RollingBall {
	return RollingBall{Number: b.Number, Pos: b.Pos, Vel: vel}
}

// Stop converts a rolling ball into a still ball at its current position.
func (b RollingBall) Stop() StillBall {
	return StillBall{Number: b.Number, Pos: b.Pos}
}

func (b StillBall) String() string {
	return fmt.Sprintf("STILL_BALL (%d,%6.1f,%6.1f)", b.Number, b.Pos.X, b.Pos.Y)
}

func (b RollingBall) String() string {
	acc := b.Acc()
	return fmt.Sprintf("ROLLING_BALL (%d,%6.1f,%6.1f,%6.1f,%6.1f,%6.1f,%6.1f)",
		b.Number, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, acc.X, acc.Y)
}

func (h Hole) String() string {
	return fmt.Sprintf("HOLE (%6.1f,%6.1f)", h.Pos.X, h.Pos.Y)
}

func (c HCushion) String() string {
	return fmt.Sprintf("HCUSHION (%6.1f)", c.Y)
}

func (c VCushion) String() string {
	return fmt.Sprintf("VCUSHION (%6.1f)", c.X)
}
