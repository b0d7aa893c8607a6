package physics

import (
	"github.com/playmatatu/billiards/internal/billiards"
)

// Engine is the event-driven billiards kernel. It is stateless; every call
// works on its own copy of the table it is given.
type Engine struct{}

// NewEngine creates a physics engine.
func NewEngine() *Engine {
	return &Engine{}
}

// NextEvent advances t to the next physically significant event: a ball
// coming to rest, a ball touching a cushion, hole or another ball. It returns
// false when nothing on the table is rolling. Balls are rolled from their
// state at the start of the segment in SimRate steps; if no event occurs
// within MaxTime the rolled table is returned at that time.
func (e *Engine) NextEvent(t billiards.Table) (billiards.Table, bool) {
	if t.Rolling() == 0 {
		return billiards.Table{}, false
	}

	next := t
	elapsed := 0.0
	for step := 1; ; step++ {
		elapsed = float64(step) * billiards.SimRate
		if elapsed > billiards.MaxTime {
			break
		}

		for i, b := range t.Balls() {
			rb, ok := b.(billiards.RollingBall)
			if !ok {
				continue
			}
			next = next.With(i, roll(rb, elapsed))
		}

		for i, b := range next.Balls() {
			rb, ok := b.(billiards.RollingBall)
			if !ok {
				continue
			}
			if stopped(rb) {
				return next.With(i, rb.Stop()).WithTime(t.Time + elapsed), true
			}
			for j, o := range next.All() {
				if j == i {
					continue
				}
				if distance(rb, o) < 0 && approaching(rb, o) {
					return bounce(next, i, j).WithTime(t.Time + elapsed), true
				}
			}
		}
	}
	return next.WithTime(t.Time + billiards.MaxTime), true
}

// Advance rolls every moving ball on t by dt seconds without looking for
// events. Balls that slow below VelEpsilon come to rest; everything else is
// copied unchanged.
func (e *Engine) Advance(t billiards.Table, dt float64) billiards.Table {
	next := t.WithTime(t.Time + dt)
	for i, b := range t.Balls() {
		rb, ok := b.(billiards.RollingBall)
		if !ok {
			continue
		}
		rolled := roll(rb, dt)
		if stopped(rolled) {
			next = next.With(i, rolled.Stop())
			continue
		}
		next = next.With(i, rolled)
	}
	return next
}
