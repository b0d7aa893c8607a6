package billiards

import (
	"fmt"
	"math"
)

// Coordinate is a 2D vector used for positions, velocities and accelerations.
type Coordinate struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewCoordinate(x, y float64) Coordinate {
	return Coordinate{X: x, Y: y}
}

func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

func (c Coordinate) Scale(s float64) Coordinate {
	return Coordinate{X: c.X * s, Y: c.Y * s}
}

func (c Coordinate) Dot(o Coordinate) float64 {
	return c.X*o.X + c.Y*o.Y
}

// Length is the Euclidean norm of c.
func (c Coordinate) Length() float64 {
	return math.Hypot(c.X, c.Y)
}

func (c Coordinate) IsZero() bool {
	return c.X == 0 && c.Y == 0
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

// CheckVelocity rejects velocities that are not finite or faster than
// MaxSpeed.
func CheckVelocity(vel Coordinate) error {
	if !vel.IsFinite() {
		return fmt.Errorf("%w: velocity is not finite", ErrInvalidBall)
	}
	if speed := vel.Length(); speed > MaxSpeed {
		return fmt.Errorf("%w: speed %g exceeds %g", ErrInvalidBall, speed, MaxSpeed)
	}
	return nil
}

// Acceleration derives the drag deceleration for a ball moving at vel:
// magnitude Drag, opposing the motion, zero once the ball is effectively
// stopped. Every place that needs a rolling ball's acceleration goes through
// here; acceleration is never stored or set independently.
func Acceleration(vel Coordinate) Coordinate {
	speed := vel.Length()
	if speed > VelEpsilon {
		return Coordinate{
			X: -vel.X / speed * Drag,
			Y: -vel.Y / speed * Drag,
		}
	}
	return Coordinate{}
}
