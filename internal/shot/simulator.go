package shot

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/rs/zerolog"
)

var (
	// ErrDegenerateShot is returned when the table has no cue ball to strike.
	ErrDegenerateShot = errors.New("degenerate shot: no cue ball on the table")
	// ErrTimeReversed is returned when the kernel reports an event earlier
	// than the table it was given.
	ErrTimeReversed = errors.New("kernel moved time backwards")
)

// Kernel is the physics engine the simulator drives. Both methods must be
// pure and deterministic.
type Kernel interface {
	// NextEvent returns the table at the next physically significant event,
	// or false once nothing is moving.
	NextEvent(t billiards.Table) (billiards.Table, bool)
	// Advance rolls every moving ball on t by dt seconds.
	Advance(t billiards.Table, dt float64) billiards.Table
}

// FrameSink receives every frame of a shot in the order it is produced.
type FrameSink interface {
	RecordFrame(ctx context.Context, frame billiards.Table) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(ctx context.Context, frame billiards.Table) error

func (f FrameSinkFunc) RecordFrame(ctx context.Context, frame billiards.Table) error {
	return f(ctx, frame)
}

// Result is everything a resolved shot produced.
type Result struct {
	// Frames are the tables sampled every FrameRate seconds, followed by the
	// settled table at the end of the shot.
	Frames []billiards.Table
	// Events are the tables the kernel returned, one per segment.
	Events []billiards.Table
}

// Final is the settled table at the end of the shot.
func (r Result) Final() billiards.Table {
	if len(r.Frames) == 0 {
		return billiards.Table{}
	}
	return r.Frames[len(r.Frames)-1]
}

// Duration is the simulated length of the shot in seconds.
func (r Result) Duration() float64 {
	if len(r.Frames) == 0 {
		return 0
	}
	return r.Final().Time - r.Frames[0].Time
}

// Simulator resolves shots by driving a Kernel from event to event and
// sampling frames between events.
type Simulator struct {
	kernel    Kernel
	frameRate float64
	log       zerolog.Logger
}

// NewSimulator creates a simulator sampling at billiards.FrameRate.
func NewSimulator(kernel Kernel, log zerolog.Logger) *Simulator {
	return &Simulator{
		kernel:    kernel,
		frameRate: billiards.FrameRate,
		log:       log.With().Str("component", "shot").Logger(),
	}
}

// Shoot strikes the cue ball with vel and resolves the shot. The cue ball
// becomes a rolling ball at its current position; the input table itself is
// not modified.
func (s *Simulator) Shoot(ctx context.Context, table billiards.Table, vel billiards.Coordinate, sink FrameSink) (Result, error) {
	i, cue, ok := table.FindBall(billiards.CueBall)
	if !ok {
		return Result{}, ErrDegenerateShot
	}
	if err := billiards.CheckVelocity(vel); err != nil {
		return Result{}, fmt.Errorf("cue ball: %w", err)
	}

	struck := billiards.RollingBall{Number: billiards.CueBall, Pos: cue.Position(), Vel: vel}
	s.log.Debug().
		Float64("vx", vel.X).Float64("vy", vel.Y).
		Float64("ax", struck.Acc().X).Float64("ay", struck.Acc().Y).
		Msg("cue ball struck")

	return s.Run(ctx, table.With(i, struck), sink)
}

// Run resolves whatever motion is already on the table. Each segment between
// kernel events contributes floor(length/FrameRate) frames, the first one at
// the segment start; once the kernel reports nothing moving, the settled
// table is emitted as the closing frame. Frames go to sink (which may be nil)
// as they are produced; a sink error stops the shot. Rolling balls faster
// than MaxSpeed are rejected before anything is emitted.
func (s *Simulator) Run(ctx context.Context, table billiards.Table, sink FrameSink) (Result, error) {
	for _, b := range table.Balls() {
		if rb, ok := b.(billiards.RollingBall); ok {
			if err := billiards.CheckVelocity(rb.Vel); err != nil {
				return Result{}, fmt.Errorf("ball %d: %w", rb.Number, err)
			}
		}
	}

	var res Result

	emit := func(frame billiards.Table) error {
		res.Frames = append(res.Frames, frame)
		if sink == nil {
			return nil
		}
		if err := sink.RecordFrame(ctx, frame); err != nil {
			return fmt.Errorf("record frame %d: %w", len(res.Frames)-1, err)
		}
		return nil
	}

	for {
		next, ok := s.kernel.NextEvent(table)
		if !ok {
			break
		}

		start, end := table.Time, next.Time
		if end < start {
			return res, fmt.Errorf("%w: %.6f -> %.6f", ErrTimeReversed, start, end)
		}

		count := int(math.Floor((end - start) / s.frameRate))
		for i := 0; i < count; i++ {
			dt := float64(i) * s.frameRate
			frame := s.kernel.Advance(table, dt).WithTime(start + dt)
			if err := emit(frame); err != nil {
				return res, err
			}
		}

		res.Events = append(res.Events, next)
		table = next
	}

	if err := emit(table); err != nil {
		return res, err
	}

	s.log.Info().
		Int("frames", len(res.Frames)).
		Int("events", len(res.Events)).
		Float64("duration", res.Duration()).
		Msg("shot resolved")
	return res, nil
}
