package plotter

import (
	"unsafe"

	"github.com/hajimehoshi/ebiten/v2"
)

// cpu_context is a scanline rasterizer with a depth buffer. Pixels are
// packed ABGR so the buffer can be written to an image directly.
type cpu_context struct {
	buffer      *ebiten.Image
	pixels      []uint32
	depth       []float
	pixels_raw  []byte
	width       int
	height      int
	left, right int
	top, bottom int
}

func (ctx *cpu_context) draw(vertices []ebiten.Vertex, target *ebiten.Image) {
	dst_bounds := target.Bounds()
	if ctx.buffer == nil || ctx.buffer.Bounds() != dst_bounds {
		ctx.buffer = ebiten.NewImageWithOptions(dst_bounds, &ebiten.NewImageOptions{
			Unmanaged: true,
		})
	}

	ctx.rasterize(vertices, dst_bounds.Dx(), dst_bounds.Dy())

	ctx.buffer.WritePixels(ctx.pixels_raw)
	target.DrawImage(ctx.buffer, nil)
}

// rasterize fills the pixel and depth buffers from a triangle list.
func (ctx *cpu_context) rasterize(vertices []ebiten.Vertex, width, height int) {
	dst_size := width * height
	if len(ctx.pixels) != dst_size {
		ctx.pixels = make([]uint32, dst_size)
		ctx.depth = make([]float, dst_size)
		ctx.pixels_raw = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(ctx.pixels))), len(ctx.pixels)*4)
	}

	ctx.width = width
	ctx.height = height
	ctx.left = 0
	ctx.right = width - 1
	ctx.top = 0
	ctx.bottom = height - 1

	clear(ctx.pixels)
	clear(ctx.depth)

	for i := 0; i+2 < len(vertices); i += 3 {
		ctx.fill_triangle(vertices[i], vertices[i+1], vertices[i+2])
	}
}

// edge walks one side of a triangle a scanline at a time, carrying x in
// 16.16 fixed point and the barycentric weights of the current row.
type edge struct {
	x, x_step int
	w, w_step vec3
}

type corner struct {
	x, y int
	w    vec3
}

func new_edge(from, to corner) edge {
	e := edge{x: from.x << 16, w: from.w}
	if d := to.y - from.y; d != 0 {
		e.x_step = ((to.x - from.x) << 16) / d
		e.w_step = to.w.Sub(from.w).Mul(1 / float(d))
	}
	return e
}

func (e *edge) advance(rows int) {
	e.x += e.x_step * rows
	e.w = e.w.Add(e.w_step.Mul(float(rows)))
}

func (ctx *cpu_context) fill_triangle(a, b, c ebiten.Vertex) {
	top := corner{int(a.DstX), int(a.DstY), vec3{1, 0, 0}}
	mid := corner{int(b.DstX), int(b.DstY), vec3{0, 1, 0}}
	bot := corner{int(c.DstX), int(c.DstY), vec3{0, 0, 1}}
	if top.y > bot.y {
		top, bot = bot, top
	}
	if top.y > mid.y {
		top, mid = mid, top
	}
	if mid.y > bot.y {
		mid, bot = bot, mid
	}

	if top.y >= ctx.bottom || bot.y < ctx.top {
		return
	}

	long := new_edge(top, bot)
	upper := new_edge(top, mid)
	lower := new_edge(mid, bot)

	y0, y1, y2 := top.y, mid.y, min(bot.y, ctx.bottom)
	if trim := ctx.top - y0; trim > 0 {
		long.advance(trim)
		upper.advance(trim)
		y0 += trim
	}
	if trim := ctx.top - y1; trim > 0 {
		lower.advance(trim)
		y1 += trim
	}
	y1 = min(y1, ctx.bottom)

	offset := y0 * ctx.width
	for y := y0; y < y1; y++ {
		ctx.draw_scanline(offset, upper, long, a, b, c)
		upper.advance(1)
		long.advance(1)
		offset += ctx.width
	}
	for y := y1; y < y2; y++ {
		ctx.draw_scanline(offset, lower, long, a, b, c)
		lower.advance(1)
		long.advance(1)
		offset += ctx.width
	}
}

// draw_scanline fills the row at offset between two edges, keeping the
// nearest fragment per pixel.
func (ctx *cpu_context) draw_scanline(offset int, left, right edge, a, b, c ebiten.Vertex) {
	x0, x1 := left.x>>16, right.x>>16
	w0, w1 := left.w, right.w
	if x0 == x1 {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		w0, w1 = w1, w0
	}

	step := w1.Sub(w0).Mul(1 / float(x1-x0))
	if trim := ctx.left - x0; trim > 0 {
		w0 = w0.Add(step.Mul(float(trim)))
		x0 = ctx.left
	}
	x1 = min(x1, ctx.right-1)

	offset += x0
	for x := x0; x < x1; x++ {
		// Custom3 holds 1/w, weighting by it makes the color interpolation perspective correct
		wa := w0.X() * a.Custom3
		wb := w0.Y() * b.Custom3
		wc := w0.Z() * c.Custom3
		depth := wa + wb + wc

		if ctx.depth[offset] < depth {
			inv_depth := 1.0 / depth

			red := (wa*a.ColorR + wb*b.ColorR + wc*c.ColorR) * inv_depth
			green := (wa*a.ColorG + wb*b.ColorG + wc*c.ColorG) * inv_depth
			blue := (wa*a.ColorB + wb*b.ColorB + wc*c.ColorB) * inv_depth

			ctx.pixels[offset] = (0xFF << 24) | uint32(to_byte(blue))<<16 | uint32(to_byte(green))<<8 | uint32(to_byte(red))
			ctx.depth[offset] = depth
		}
		w0 = w0.Add(step)
		offset++
	}
}

func to_byte(c float) uint8 {
	return uint8(min(1, max(0, c))*255 + 0.5)
}
