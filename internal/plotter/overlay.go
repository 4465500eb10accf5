package plotter

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/thedaneeffect/femur-viewer/internal/mesh"
)

const (
	grid_divisions = 10
	axes_length    = 40
	axes_margin    = 60
	text_margin    = 8
	// basicfont is 13 pixels tall, which is what a font size of 10 maps to
	base_font_size = 10
)

var (
	grid_color = color.RGBA{160, 160, 160, 255}
	axes_x     = color.RGBA{230, 60, 60, 255}
	axes_y     = color.RGBA{60, 200, 60, 255}
	axes_z     = color.RGBA{70, 110, 240, 255}
	text_color = color.White
)

var face = text.NewGoXFace(basicfont.Face7x13)

type segment struct {
	a, b vec3
}

// grid_segments returns the floor grid under box and the box outline.
func grid_segments(box mesh.Box) []segment {
	var out []segment
	lo, hi := box.Min, box.Max
	y := lo.Y()

	for i := 0; i <= grid_divisions; i++ {
		t := float(i) / grid_divisions
		x := lo.X() + t*(hi.X()-lo.X())
		z := lo.Z() + t*(hi.Z()-lo.Z())
		out = append(out,
			segment{vec3{x, y, lo.Z()}, vec3{x, y, hi.Z()}},
			segment{vec3{lo.X(), y, z}, vec3{hi.X(), y, z}},
		)
	}

	box_corner := func(i int) vec3 {
		p := lo
		for axis := range 3 {
			if i&(1<<axis) != 0 {
				p[axis] = hi[axis]
			}
		}
		return p
	}
	for i := range 8 {
		for axis := range 3 {
			if j := i | 1<<axis; j != i {
				out = append(out, segment{box_corner(i), box_corner(j)})
			}
		}
	}
	return out
}

func (ctx *context) draw_grid(target *ebiten.Image, box mesh.Box) {
	model_view_project := ctx.proj_matrix.Mul4(ctx.view_matrix)
	for _, s := range grid_segments(box) {
		a, b, ok := clip_segment(
			model_view_project.Mul4x1(s.a.Vec4(1)),
			model_view_project.Mul4x1(s.b.Vec4(1)),
		)
		if !ok {
			continue
		}
		x0, y0 := ctx.to_screen(a)
		x1, y1 := ctx.to_screen(b)
		vector.StrokeLine(target, x0, y0, x1, y1, 1, grid_color, true)
	}
}

// axes_directions returns the screen space direction of each world axis,
// y pointing down.
func axes_directions(view mat4) [3]vec2 {
	var out [3]vec2
	for axis := range 3 {
		var dir vec4
		dir[axis] = 1
		v := view.Mul4x1(dir)
		out[axis] = vec2{v.X(), -v.Y()}
	}
	return out
}

func (ctx *context) draw_axes(target *ebiten.Image) {
	ox := float(axes_margin)
	oy := float(ctx.viewport.h - axes_margin)
	labels := [3]string{"X", "Y", "Z"}
	colors := [3]color.Color{axes_x, axes_y, axes_z}

	for axis, dir := range axes_directions(ctx.view_matrix) {
		x := ox + dir.X()*axes_length
		y := oy + dir.Y()*axes_length
		vector.StrokeLine(target, ox, oy, x, y, 3, colors[axis], true)

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(x+dir.X()*8-3), float64(y+dir.Y()*8-6))
		op.ColorScale.ScaleWithColor(colors[axis])
		text.Draw(target, labels[axis], face, op)
	}
}

// text_origin returns where the top left of a w x h label goes.
func text_origin(pos Position, w, h, screen_w, screen_h float64) (float64, float64) {
	const m = text_margin
	switch pos {
	case UpperRight:
		return screen_w - w - m, m
	case LowerLeft:
		return m, screen_h - h - m
	case LowerRight:
		return screen_w - w - m, screen_h - h - m
	case UpperEdge:
		return (screen_w - w) / 2, m
	case LowerEdge:
		return (screen_w - w) / 2, screen_h - h - m
	}
	return m, m
}

func (ctx *context) draw_text(target *ebiten.Image, a *Actor) {
	scale := float64(max(a.FontSize, 1)) / base_font_size
	w, h := text.Measure(a.Text, face, face.Metrics().HLineGap+face.Metrics().HAscent+face.Metrics().HDescent)
	w, h = w*scale, h*scale

	x, y := text_origin(a.Position, w, h, float64(ctx.viewport.w), float64(ctx.viewport.h))

	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(text_color)
	text.Draw(target, a.Text, face, op)
}
