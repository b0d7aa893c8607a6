package physics

import (
	"math"

	"github.com/playmatatu/billiards/internal/billiards"
)

// roll moves a ball for dt seconds under its drag deceleration. A velocity
// component that would change sign is clamped to zero, and its position
// component is held at the point where it stopped.
func roll(b billiards.RollingBall, dt float64) billiards.RollingBall {
	acc := b.Acc()
	next := b
	next.Pos.X, next.Vel.X = rollAxis(b.Pos.X, b.Vel.X, acc.X, dt)
	next.Pos.Y, next.Vel.Y = rollAxis(b.Pos.Y, b.Vel.Y, acc.Y, dt)
	return next
}

func rollAxis(pos, vel, acc, dt float64) (float64, float64) {
	newVel := vel + acc*dt
	if (vel < 0) != (newVel < 0) {
		if acc == 0 {
			return pos, 0
		}
		return pos - vel*vel/(2*acc), 0
	}
	return pos + vel*dt + 0.5*acc*dt*dt, newVel
}

func stopped(b billiards.RollingBall) bool {
	return b.Vel.Length() < billiards.VelEpsilon
}

// distance is the gap between a rolling ball's surface and another object.
// Negative means they touch.
func distance(b billiards.RollingBall, o billiards.Object) float64 {
	switch v := o.(type) {
	case billiards.StillBall:
		return b.Pos.Sub(v.Pos).Length() - billiards.BallDiameter
	case billiards.RollingBall:
		return b.Pos.Sub(v.Pos).Length() - billiards.BallDiameter
	case billiards.Hole:
		return b.Pos.Sub(v.Pos).Length() - billiards.HoleRadius
	case billiards.HCushion:
		return math.Abs(b.Pos.Y-v.Y) - billiards.BallRadius
	case billiards.VCushion:
		return math.Abs(b.Pos.X-v.X) - billiards.BallRadius
	}
	return math.Inf(1)
}

// approaching reports whether the rolling ball is moving into the object, so
// that a contact which is already separating is not resolved a second time.
func approaching(b billiards.RollingBall, o billiards.Object) bool {
	switch v := o.(type) {
	case billiards.StillBall:
		return b.Vel.Dot(v.Pos.Sub(b.Pos)) > 0
	case billiards.RollingBall:
		return b.Vel.Sub(v.Vel).Dot(v.Pos.Sub(b.Pos)) > 0
	case billiards.HCushion:
		return b.Vel.Y*(v.Y-b.Pos.Y) > 0
	case billiards.VCushion:
		return b.Vel.X*(v.X-b.Pos.X) > 0
	case billiards.Hole:
		return true
	}
	return false
}

// bounce resolves contact between the rolling ball in slot i and the object
// in slot j and returns the updated table.
func bounce(t billiards.Table, i, j int) billiards.Table {
	a := t.Get(i).(billiards.RollingBall)

	switch b := t.Get(j).(type) {
	case billiards.HCushion:
		a.Vel.Y = -a.Vel.Y
		return t.With(i, a)
	case billiards.VCushion:
		a.Vel.X = -a.Vel.X
		return t.With(i, a)
	case billiards.Hole:
		return t.With(i, nil)
	case billiards.StillBall:
		return collide(t, i, a, j, b.Roll(billiards.Coordinate{}))
	case billiards.RollingBall:
		return collide(t, i, a, j, b)
	}
	return t
}

// collide exchanges the velocity components along the line of centres of two
// equal-mass balls.
func collide(t billiards.Table, i int, a billiards.RollingBall, j int, b billiards.RollingBall) billiards.Table {
	rab := a.Pos.Sub(b.Pos)
	n := rab.Scale(1 / rab.Length())
	vRelN := a.Vel.Sub(b.Vel).Dot(n)

	a.Vel = a.Vel.Sub(n.Scale(vRelN))
	b.Vel = b.Vel.Add(n.Scale(vRelN))
	return t.With(i, a).With(j, b)
}
