package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille Patterns: 2x4 dots per cell
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBase = 0x2800

// Canvas is a character grid mixing braille sub-pixel drawing with plain
// text cells. Text wins: once a cell holds a non-braille rune, Set leaves
// it alone. Each cell carries an optional foreground color.
type Canvas struct {
	Width, Height int
	cells         [][]rune
	colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		cells:  make([][]rune, h),
		colors: make([][]string, h),
	}
	for i := range c.cells {
		c.cells[i] = make([]rune, w)
		c.colors[i] = make([]string, w)
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBase
		}
	}
	return c
}

// Set lights one sub-pixel. Coordinates are in sub-pixels; the canvas is
// (Width*2) x (Height*4) sub-pixels.
func (c *Canvas) Set(x, y int) {
	c.SetColored(x, y, "")
}

func (c *Canvas) SetColored(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}
	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}
	r := c.cells[row][col]
	if r < brailleBase || r > brailleBase+0xFF {
		return
	}
	c.cells[row][col] = r | rune(pixelMap[y%4][x%2])
	if color != "" {
		c.colors[row][col] = color
	}
}

// WriteText places a string at cell coordinates, overwriting whatever is
// under it. Text past the right edge is clipped.
func (c *Canvas) WriteText(col, row int, s string, color string) {
	if row < 0 || row >= c.Height {
		return
	}
	for _, r := range s {
		if col >= c.Width {
			return
		}
		if col >= 0 {
			c.cells[row][col] = r
			c.colors[row][col] = color
		}
		col++
	}
}

func (c *Canvas) Clear() {
	for i := range c.cells {
		for j := range c.cells[i] {
			c.cells[i][j] = brailleBase
			c.colors[i][j] = ""
		}
	}
}

// DrawLine draws a sub-pixel line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color string) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColored(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Cell returns the rune at cell coordinates, 0 when out of bounds.
func (c *Canvas) Cell(col, row int) rune {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return 0
	}
	return c.cells[row][col]
}

func (c *Canvas) String() string {
	var b strings.Builder
	for row := range c.cells {
		col := 0
		for col < c.Width {
			color := c.colors[row][col]
			run := col
			for run < c.Width && c.colors[row][run] == color {
				run++
			}
			text := string(c.cells[row][col:run])
			if color == "" {
				b.WriteString(text)
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text))
			}
			col = run
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
