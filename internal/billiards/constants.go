package billiards

// Table, ball and simulation constants. Lengths are millimetres, times are
// seconds.
const (
	BallRadius   = 28.5
	BallDiameter = 2 * BallRadius
	HoleRadius   = 2 * BallDiameter
	TableLength  = 2700.0
	TableWidth   = TableLength / 2.0

	SimRate    = 0.0001  // kernel step
	VelEpsilon = 0.01    // mm/s, below this a ball is at rest
	Drag       = 150.0   // mm/s^2
	MaxTime    = 600.0   // longest segment the kernel will search
	FrameRate  = 0.01    // replay sampling interval
	MaxSpeed   = 10000.0 // mm/s, fastest ball the simulator accepts

	MaxObjects = 26 // 16 balls, 4 cushions, 6 holes
	NumBalls   = 16 // 0=cue, 1-7=solids, 8=eight, 9-15=stripes
	CueBall    = 0
)
