package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSVGDocument(t *testing.T) {
	svg := SVG(billiards.NewTable())
	assert.True(t, strings.HasPrefix(svg, `<?xml version="1.0"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>\n"))
	assert.Equal(t, 6, strings.Count(svg, `fill="black"`), "six holes")
	assert.Equal(t, 4, strings.Count(svg, `fill="darkgreen"`), "four cushions")
}

func TestCushionPlacement(t *testing.T) {
	assert.Equal(t, ` <rect width="1400" height="25" x="-25" y="-25" fill="darkgreen" />`+"\n", Object(billiards.HCushion{Y: 0}))
	assert.Equal(t, ` <rect width="1400" height="25" x="-25" y="2700" fill="darkgreen" />`+"\n", Object(billiards.HCushion{Y: billiards.TableLength}))
	assert.Equal(t, ` <rect width="25" height="2750" x="-25" y="-25" fill="darkgreen" />`+"\n", Object(billiards.VCushion{X: 0}))
	assert.Equal(t, ` <rect width="25" height="2750" x="1350" y="-25" fill="darkgreen" />`+"\n", Object(billiards.VCushion{X: billiards.TableWidth}))
}

func TestBallsAndHoles(t *testing.T) {
	assert.Equal(t, ` <circle cx="675" cy="2025" r="28" fill="WHITE" />`+"\n",
		Object(billiards.StillBall{Number: 0, Pos: billiards.NewCoordinate(675.9, 2025.2)}))
	assert.Equal(t, ` <circle cx="10" cy="20" r="28" fill="SANDYBROWN" />`+"\n",
		Object(billiards.RollingBall{Number: 15, Pos: billiards.NewCoordinate(10, 20), Vel: billiards.NewCoordinate(1, 1)}))
	assert.Equal(t, ` <circle cx="0" cy="1350" r="114" fill="black" />`+"\n",
		Object(billiards.Hole{Pos: billiards.NewCoordinate(0, 1350)}))
	assert.Empty(t, Object(nil))
}

func TestSVGIsDeterministic(t *testing.T) {
	table := billiards.NewTable()
	require.NoError(t, billiards.Rack(&table))
	assert.Equal(t, SVG(table), SVG(table))
	for _, c := range BallColours {
		assert.Contains(t, SVG(table), `fill="`+c+`"`)
	}
}

func TestWriteFramesReplacesOldFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"table-0.svg", "table-7.svg", "keep.svg", "table-notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("old"), 0o644))
	}

	frames := make([]billiards.Table, 12)
	for i := range frames {
		frames[i] = billiards.NewTable().WithTime(float64(i) * billiards.FrameRate)
	}
	names, err := WriteFrames(dir, frames)
	require.NoError(t, err)
	require.Len(t, names, 12)
	assert.Equal(t, "table-0.svg", names[0])
	assert.Equal(t, "table-11.svg", names[11])

	listed, err := FrameFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, names, listed, "numeric, not lexical, order")

	_, err = os.Stat(filepath.Join(dir, "keep.svg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "table-notes.txt"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "table-7.svg"))
	require.NoError(t, err)
	assert.NotEqual(t, "old", string(data))

	names, err = WriteFrames(dir, frames[:2])
	require.NoError(t, err)
	listed, err = FrameFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, names, listed)
}

func TestFrameFilesMissingDir(t *testing.T) {
	names, err := FrameFiles(filepath.Join(t.TempDir(), "nope"))
	assert.NoError(t, err)
	assert.Empty(t, names)
}
