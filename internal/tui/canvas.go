package tui

import (
	"math"
	"strings"

	"github.com/terrapen/go-terrapen/pkg/sim"
)

// Terminal cells are roughly twice as tall as wide; vertical distances
// are compressed by this factor so circles look round.
const aspectRatio = 2.0

// Margin in millimeters around the drawing when fitting the view.
const viewPaddingMM = 20.0

// canvas rasterizes the workspace into a cell grid. The view is
// auto-fitted: it always contains the origin, the robot, and the whole
// trail.
type canvas struct {
	width, height int

	// World window.
	centerX, centerY float64
	mmPerCell        float64
}

// newCanvas fits a view window over the trail and robot position.
func newCanvas(width, height int, trail []sim.Point, robotX, robotY float64) canvas {
	minX, maxX := math.Min(0, robotX), math.Max(0, robotX)
	minY, maxY := math.Min(0, robotY), math.Max(0, robotY)
	for _, p := range trail {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	minX -= viewPaddingMM
	maxX += viewPaddingMM
	minY -= viewPaddingMM
	maxY += viewPaddingMM

	scaleX := (maxX - minX) / float64(width)
	scaleY := (maxY - minY) * aspectRatio / float64(height)
	scale := math.Max(scaleX, scaleY)
	if scale <= 0 {
		scale = 1
	}

	return canvas{
		width:     width,
		height:    height,
		centerX:   (minX + maxX) / 2,
		centerY:   (minY + maxY) / 2,
		mmPerCell: scale,
	}
}

// cell maps a workspace point to grid coordinates. Rows grow downward
// while workspace Y grows upward.
func (c canvas) cell(x, y float64) (col, row int) {
	col = c.width/2 + int(math.Round((x-c.centerX)/c.mmPerCell))
	row = c.height/2 - int(math.Round((y-c.centerY)/(c.mmPerCell*aspectRatio)))
	return col, row
}

func (c canvas) inBounds(col, row int) bool {
	return col >= 0 && col < c.width && row >= 0 && row < c.height
}

// robotGlyph picks an arrow for the robot's heading. Heading 0 points
// along +X and positive headings turn counter-clockwise.
func robotGlyph(heading float64) rune {
	sector := (int(math.Round(heading/(math.Pi/4)))%8 + 8) % 8
	switch sector {
	case 0: // east
		return '>'
	case 1: // northeast
		return '/'
	case 2: // north
		return '^'
	case 3: // northwest
		return '\\'
	case 4: // west
		return '<'
	case 5: // southwest
		return '/'
	case 6: // south
		return 'v'
	case 7: // southeast
		return '\\'
	default:
		return '>'
	}
}

// render draws the trail, origin marker, and robot into a styled block
// of text.
func render(width, height int, trail []sim.Point, robotX, robotY, heading float64) string {
	if width < 10 || height < 5 {
		return ""
	}
	cv := newCanvas(width, height, trail, robotX, robotY)

	// 0 empty, 1 trail, 2 origin, 3 robot.
	grid := make([]uint8, width*height)
	mark := func(col, row int, kind uint8) {
		if cv.inBounds(col, row) && grid[row*width+col] < kind {
			grid[row*width+col] = kind
		}
	}

	for _, p := range trail {
		col, row := cv.cell(p.X, p.Y)
		mark(col, row, 1)
	}
	oc, or := cv.cell(0, 0)
	mark(oc, or, 2)
	rc, rr := cv.cell(robotX, robotY)
	mark(rc, rr, 3)

	glyph := robotGlyph(heading)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			switch grid[row*width+col] {
			case 3:
				sb.WriteString(styleRobot.Render(string(glyph)))
			case 2:
				sb.WriteString(styleGrid.Render("+"))
			case 1:
				sb.WriteString(styleTrail.Render("."))
			default:
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
