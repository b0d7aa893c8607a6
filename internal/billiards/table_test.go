package billiards

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccelerationOpposesVelocity(t *testing.T) {
	acc := Acceleration(NewCoordinate(300, -400))

	assert.InDelta(t, Drag, acc.Length(), 1e-9)
	assert.InDelta(t, -300.0/500*Drag, acc.X, 1e-9)
	assert.InDelta(t, 400.0/500*Drag, acc.Y, 1e-9)
	assert.Less(t, acc.Dot(NewCoordinate(300, -400)), 0.0)
}

func TestAccelerationZeroWhenStopped(t *testing.T) {
	assert.Equal(t, Coordinate{}, Acceleration(Coordinate{}))
	assert.Equal(t, Coordinate{}, Acceleration(NewCoordinate(VelEpsilon/2, 0)))
}

func TestHugeVelocityStillDecelerates(t *testing.T) {
	vel := NewCoordinate(1e200, 0)

	assert.Equal(t, 1e200, vel.Length())
	acc := Acceleration(vel)
	assert.InDelta(t, -Drag, acc.X, 1e-9)
	assert.Zero(t, acc.Y)
}

func TestCheckVelocity(t *testing.T) {
	assert.NoError(t, CheckVelocity(Coordinate{}))
	assert.NoError(t, CheckVelocity(NewCoordinate(0, -MaxSpeed)))
	assert.NoError(t, CheckVelocity(NewCoordinate(6000, 8000)))

	for _, vel := range []Coordinate{
		NewCoordinate(MaxSpeed, 1),
		NewCoordinate(8000, -8000),
		NewCoordinate(1e200, 0),
		NewCoordinate(math.Inf(-1), 0),
		NewCoordinate(0, math.NaN()),
	} {
		assert.ErrorIs(t, CheckVelocity(vel), ErrInvalidBall, "%v", vel)
	}
}

func TestNewTableGeometry(t *testing.T) {
	table := NewTable()

	assert.Equal(t, 10, table.Len())
	assert.Equal(t, 0.0, table.Time)
	assert.Equal(t, HCushion{Y: 0}, table.Get(0))
	assert.Equal(t, VCushion{X: TableWidth}, table.Get(3))
	assert.Equal(t, Hole{Pos: NewCoordinate(TableWidth, TableLength)}, table.Get(9))
	assert.Nil(t, table.Get(10))
	assert.Nil(t, table.Get(-1))
	assert.Nil(t, table.Get(MaxObjects))
}

func TestAppendCapacityExceeded(t *testing.T) {
	table := NewTable()
	require.NoError(t, Rack(&table))
	assert.Equal(t, MaxObjects, table.Len())

	err := table.Append(Hole{Pos: NewCoordinate(1, 1)})
	assert.True(t, errors.Is(err, ErrCapacityExceeded), "got %v", err)
}

func TestAppendRejectsInvalidBalls(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Append(StillBall{Number: 3, Pos: NewCoordinate(100, 100)}))

	cases := map[string]Object{
		"duplicate":    RollingBall{Number: 3, Pos: NewCoordinate(200, 200)},
		"negative":     StillBall{Number: -1},
		"too large":    StillBall{Number: NumBalls},
		"nan position": StillBall{Number: 4, Pos: NewCoordinate(math.NaN(), 0)},
		"inf velocity": RollingBall{Number: 5, Vel: NewCoordinate(0, math.Inf(1))},
	}
	for name, obj := range cases {
		t.Run(name, func(t *testing.T) {
			err := table.Append(obj)
			assert.True(t, errors.Is(err, ErrInvalidBall), "got %v", err)
		})
	}
	assert.Equal(t, 11, table.Len())
}

func TestIterationIsRestartable(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Append(StillBall{Number: 0, Pos: NewCoordinate(675, 675)}))

	count := func() int {
		n := 0
		for range table.All() {
			n++
		}
		return n
	}
	assert.Equal(t, 11, count())
	assert.Equal(t, 11, count())

	// Two interleaved traversals do not disturb each other.
	var outer, inner int
	for range table.All() {
		outer++
		for range table.All() {
			inner++
		}
	}
	assert.Equal(t, 11, outer)
	assert.Equal(t, 11*11, inner)
}

func TestIterationStopsEarly(t *testing.T) {
	table := NewTable()
	seen := 0
	for i := range table.All() {
		seen++
		if i == 2 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestCopiesAreIndependent(t *testing.T) {
	original := NewTable()
	require.NoError(t, original.Append(RollingBall{Number: 1, Pos: NewCoordinate(10, 10), Vel: NewCoordinate(5, 0)}))

	copied := original
	require.NoError(t, copied.Append(StillBall{Number: 2, Pos: NewCoordinate(20, 20)}))
	moved := copied.With(10, RollingBall{Number: 1, Pos: NewCoordinate(99, 99)}).WithTime(3)

	assert.Equal(t, 11, original.Len())
	assert.Equal(t, 12, copied.Len())
	assert.Equal(t, NewCoordinate(10, 10), original.Get(10).(RollingBall).Pos)
	assert.Equal(t, NewCoordinate(10, 10), copied.Get(10).(RollingBall).Pos)
	assert.Equal(t, NewCoordinate(99, 99), moved.Get(10).(RollingBall).Pos)
	assert.Equal(t, 0.0, copied.Time)
}

func TestRollAndStopKeepPosition(t *testing.T) {
	sb := StillBall{Number: 0, Pos: NewCoordinate(675, 2025)}
	rb := sb.Roll(NewCoordinate(0, -1000))

	assert.Equal(t, sb.Pos, rb.Pos)
	assert.Equal(t, Acceleration(rb.Vel), rb.Acc())
	assert.Equal(t, sb, rb.Stop())
}

func TestRackLayout(t *testing.T) {
	pos := RackPositions()

	for i := 0; i < NumBalls; i++ {
		p := pos[i]
		assert.Greater(t, p.X, BallRadius)
		assert.Less(t, p.X, TableWidth-BallRadius)
		assert.Greater(t, p.Y, BallRadius)
		assert.Less(t, p.Y, TableLength-BallRadius)
		for j := i + 1; j < NumBalls; j++ {
			assert.Greater(t, p.Sub(pos[j]).Length(), BallDiameter,
				"balls %d and %d overlap", i, j)
		}
	}
	assert.Equal(t, NewCoordinate(TableWidth/2, TableLength/4), pos[1])
}

func TestTableJSONRoundTrip(t *testing.T) {
	table := NewTable().WithTime(1.25)
	require.NoError(t, table.Append(StillBall{Number: 0, Pos: NewCoordinate(675, 675)}))
	require.NoError(t, table.Append(RollingBall{Number: 1, Pos: NewCoordinate(675, 400), Vel: NewCoordinate(0, -500)}))

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"rolling_ball"`)
	assert.Contains(t, string(data), `"y":150}`)

	var decoded Table
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, table, decoded)
}

func TestTableJSONRejectsUnknownType(t *testing.T) {
	var decoded Table
	err := json.Unmarshal([]byte(`{"time":0,"objects":[{"slot":0,"type":"triangle"}]}`), &decoded)
	assert.Error(t, err)
}

func TestTableString(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.Append(RollingBall{Number: 1, Pos: NewCoordinate(675, 400), Vel: NewCoordinate(0, -500)}))

	s := table.String()
	assert.Contains(t, s, "time =    0.0;")
	assert.Contains(t, s, "[10] = ROLLING_BALL (1, 675.0, 400.0,   0.0,-500.0,  -0.0, 150.0)")
	assert.Contains(t, s, "[25] = NULL;")
}
