// Package fb implements the 256x256 ARGB framebuffer co-processor: the
// pixel grid, pen state (current color plus draw position), pixel/line
// drawing, and the PPM dump used as the program's graphical output.
//
// This is the "external collaborator" spec.md calls out as specified
// only by its interface — pixel set, Bresenham line, and PPM encoding are
// standard, well-known algorithms, not part of the protected ISA/pipeline
// core.
package fb

import (
	"bufio"
	"fmt"
	"io"
)

// Width and Height are the framebuffer's fixed dimensions.
const (
	Width  = 256
	Height = 256
)

// Color is a packed 0xAARRGGBB pixel.
type Color uint32

// RGB builds an opaque color from 8-bit components.
func RGB(r, g, b uint8) Color {
	return 0xFF000000 | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// Framebuffer is the pixel grid plus pen state described in spec.md §3.
// Only one caller is ever permitted to mutate it at a time: the executor
// under the single-cycle driver, or the IO stage under the pipelined
// driver (spec.md §5, §9).
type Framebuffer struct {
	pixels       [Width * Height]Color
	CurrentColor Color
	DrawX        int
	DrawY        int
}

// New returns a framebuffer with the pen at the origin and the default
// white current color, matching the original graphics co-processor's
// reset state.
func New() *Framebuffer {
	return &Framebuffer{CurrentColor: 0xFFFFFFFF}
}

// Clear zeroes every pixel. It does not touch pen state.
func (f *Framebuffer) Clear() {
	for i := range f.pixels {
		f.pixels[i] = 0
	}
}

// InBounds reports whether (x, y) addresses a real pixel.
func InBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// SetPixel writes color at (x, y). Out-of-bounds coordinates are
// silently ignored, matching the original fb_set_pixel.
func (f *Framebuffer) SetPixel(x, y int, color Color) {
	if !InBounds(x, y) {
		return
	}
	f.pixels[y*Width+x] = color
}

// Pixel reads the color at (x, y), or 0 if out of bounds.
func (f *Framebuffer) Pixel(x, y int) Color {
	if !InBounds(x, y) {
		return 0
	}
	return f.pixels[y*Width+x]
}

// SetColor changes the current drawing color; it does not plot anything.
func (f *Framebuffer) SetColor(c Color) {
	f.CurrentColor = c
}

// DrawPixel plots a single pixel at (x, y) with the current color.
func (f *Framebuffer) DrawPixel(x, y int) {
	f.SetPixel(x, y, f.CurrentColor)
}

// DrawLine draws a Bresenham line between two points with the current
// color. It does not move the pen.
func (f *Framebuffer) DrawLine(x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := -1
	if x1 < x2 {
		sx = 1
	}
	sy := -1
	if y1 < y2 {
		sy = 1
	}
	err := dx - dy

	x, y := x1, y1
	for {
		f.SetPixel(x, y, f.CurrentColor)
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// MoveTo repositions the pen without plotting.
func (f *Framebuffer) MoveTo(x, y int) {
	f.DrawX, f.DrawY = x, y
}

// LineTo draws from the pen to (x, y) and leaves the pen there.
func (f *Framebuffer) LineTo(x, y int) {
	f.DrawLine(f.DrawX, f.DrawY, x, y)
	f.DrawX, f.DrawY = x, y
}

// Step draws from the pen by the given (dx, dy) offset and leaves the pen
// at the new position.
func (f *Framebuffer) Step(dx, dy int) {
	f.LineTo(f.DrawX+dx, f.DrawY+dy)
}

// Equal reports whether f and other hold identical pixels and pen state.
// Used to check the single-cycle/pipelined equivalence property.
func (f *Framebuffer) Equal(other *Framebuffer) bool {
	return *f == *other
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// WritePPM dumps the framebuffer as a binary PPM (P6), RGB8 per pixel,
// dropping alpha, per spec.md §6.
func (f *Framebuffer) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", Width, Height); err != nil {
		return err
	}
	var row [Width * 3]byte
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			p := f.pixels[y*Width+x]
			row[x*3+0] = byte(p >> 16)
			row[x*3+1] = byte(p >> 8)
			row[x*3+2] = byte(p)
		}
		if _, err := bw.Write(row[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteASCII renders a coarse 4x8-block preview of the framebuffer: a
// block is printed solid if any pixel within it is non-zero. This is the
// ASCII preview original_source/src/graphics.c offered alongside the PPM
// dump (fb_dump_ascii) — a CLI convenience, not part of the simulated
// core.
func (f *Framebuffer) WriteASCII(w io.Writer) {
	const blockW, blockH = 4, 8
	for by := 0; by < Height; by += blockH {
		for bx := 0; bx < Width; bx += blockW {
			hit := false
			for dy := 0; dy < blockH && by+dy < Height && !hit; dy++ {
				for dx := 0; dx < blockW && bx+dx < Width; dx++ {
					if f.pixels[(by+dy)*Width+bx+dx] != 0 {
						hit = true
						break
					}
				}
			}
			if hit {
				fmt.Fprint(w, "#")
			} else {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintln(w)
	}
}
