// Package render draws tables as SVG.
package render

import (
	"fmt"
	"strings"

	"github.com/playmatatu/billiards/internal/billiards"
)

const header = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN"
"http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<svg width="700" height="1375" viewBox="-25 -25 1400 2750"
xmlns="http://www.w3.org/2000/svg"
xmlns:xlink="http://www.w3.org/1999/xlink">
<rect width="1350" height="2700" x="0" y="0" fill="#C0D0C0" />`

const footer = "</svg>\n"

// cushionWidth is how far a cushion reaches outside the playing surface.
const cushionWidth = 25

// BallColours maps a ball number to its fill colour.
var BallColours = [billiards.NumBalls]string{
	"WHITE",
	"YELLOW",
	"BLUE",
	"RED",
	"PURPLE",
	"ORANGE",
	"GREEN",
	"BROWN",
	"BLACK",
	"LIGHTYELLOW",
	"LIGHTBLUE",
	"PINK",
	"MEDIUMPURPLE",
	"LIGHTSALMON",
	"LIGHTGREEN",
	"SANDYBROWN",
}

// SVG renders t as a complete SVG document. Objects are drawn in slot order;
// anything that is not a ball, hole or cushion is skipped.
func SVG(t billiards.Table) string {
	var b strings.Builder
	b.WriteString(header)
	for _, o := range t.All() {
		b.WriteString(Object(o))
	}
	b.WriteString(footer)
	return b.String()
}

// Object renders a single table object, or "" for an unknown kind.
// Coordinates are truncated to whole pixels.
func Object(o billiards.Object) string {
	switch v := o.(type) {
	case billiards.StillBall:
		return circle(v.Pos, billiards.BallRadius, colour(v.Number))
	case billiards.RollingBall:
		return circle(v.Pos, billiards.BallRadius, colour(v.Number))
	case billiards.Hole:
		return circle(v.Pos, billiards.HoleRadius, "black")
	case billiards.HCushion:
		y := billiards.TableLength
		if v.Y == 0 {
			y = -cushionWidth
		}
		return fmt.Sprintf(" <rect width=\"%d\" height=\"%d\" x=\"%d\" y=\"%d\" fill=\"darkgreen\" />\n",
			int(billiards.TableWidth)+2*cushionWidth, cushionWidth, -cushionWidth, int(y))
	case billiards.VCushion:
		x := billiards.TableWidth
		if v.X == 0 {
			x = -cushionWidth
		}
		return fmt.Sprintf(" <rect width=\"%d\" height=\"%d\" x=\"%d\" y=\"%d\" fill=\"darkgreen\" />\n",
			cushionWidth, int(billiards.TableLength)+2*cushionWidth, int(x), -cushionWidth)
	}
	return ""
}

func circle(pos billiards.Coordinate, r float64, fill string) string {
	return fmt.Sprintf(" <circle cx=\"%d\" cy=\"%d\" r=\"%d\" fill=\"%s\" />\n", int(pos.X), int(pos.Y), int(r), fill)
}

func colour(number int) string {
	if number < 0 || number >= len(BallColours) {
		return "GRAY"
	}
	return BallColours[number]
}
