package plotter

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	ambient_light = 0.3
	diffuse_light = 0.7

	// ebiten indexes vertices with uint16
	max_batch_vertices = 3 * (math.MaxUint16 / 3)
)

type vertex struct {
	pos  vec4
	rgba vec4
}

type viewport struct {
	x      int
	y      int
	w      int
	h      int
	w_half int
	h_half int
}

type screen_triangle struct {
	v1, v2, v3 vertex
}

// drawn_triangle is a triangle in screen space waiting to be rasterized.
type drawn_triangle struct {
	vertices [3]ebiten.Vertex
	depth    float // mean 1/w, larger is nearer
	edges    bool
}

type context struct {
	view_matrix mat4
	proj_matrix mat4
	eye         vec3
	// viewport is used to convert normalized device coordinates to screen coordinates
	viewport viewport

	// statistics
	drawn_triangles int

	// the following are not required to be stored here,
	// they serve as buffers to reduce overall allocations.

	clipper           clipper
	triangle_buffer   []screen_triangle
	clip_space_points []vec4
	shades            []vec4
	triangles         []drawn_triangle
	vertices          []ebiten.Vertex
	indices           []uint16

	white   *ebiten.Image
	use_cpu bool
	cpu     cpu_context
}

func (c *context) set_viewport(x, y, w, h int) {
	c.viewport.x = x
	c.viewport.y = y
	c.viewport.w = w
	c.viewport.h = h
	c.viewport.w_half = w / 2
	c.viewport.h_half = h / 2
}

// project maps a world position to screen coordinates. ok is false for
// points behind the near plane.
func (ctx *context) project(p vec3) (x, y float, ok bool) {
	clip := ctx.proj_matrix.Mul4(ctx.view_matrix).Mul4x1(p.Vec4(1))
	if !near_plane.test(clip) {
		return 0, 0, false
	}
	x, y = ctx.to_screen(clip)
	return x, y, true
}

func (ctx *context) to_screen(clip vec4) (float, float) {
	inv_w := 1 / clip.W()
	x := viewport_transform(clip.X()*inv_w, float(ctx.viewport.w_half))
	y := float(ctx.viewport.h) - viewport_transform(clip.Y()*inv_w, float(ctx.viewport.h_half))
	return x, y
}

// shade returns the lit color of a surface with normal n, seen from the
// camera. Lighting is two sided since mesh winding is not guaranteed.
func (ctx *context) shade(base vec3, n, at vec3) vec4 {
	light := ctx.eye.Sub(at)
	intensity := float(ambient_light)
	if light.Len() > 0 && n.Len() > 0 {
		intensity += diffuse_light * float(math.Abs(float64(n.Dot(light.Normalize()))))
	}
	c := base.Mul(min(intensity, 1))
	return vec4{c.X(), c.Y(), c.Z(), 1}
}

func (ctx *context) push_mesh(a *Actor) {
	m := a.Mesh
	r, g, b := a.Style.Color.Clamped().LinearRgb()
	base := vec3{float(r), float(g), float(b)}
	// shading happens in linear space, convert back when writing colors
	to_srgb := func(c vec4) vec4 {
		return vec4{srgb(c.X()), srgb(c.Y()), srgb(c.Z()), c.W()}
	}

	model_view_project := ctx.proj_matrix.Mul4(ctx.view_matrix)

	// transform all the mesh points into clip space
	for _, point := range m.Points {
		ctx.clip_space_points = append(ctx.clip_space_points, model_view_project.Mul4x1(point.Vec4(1)))
	}

	if a.Style.SmoothShading {
		for i, point := range m.Points {
			ctx.shades = append(ctx.shades, to_srgb(ctx.shade(base, m.Normals[i], point)))
		}
	}

	for _, t := range m.Triangles {
		v1 := vertex{pos: ctx.clip_space_points[t.V1]}
		v2 := vertex{pos: ctx.clip_space_points[t.V2]}
		v3 := vertex{pos: ctx.clip_space_points[t.V3]}

		if a.Style.SmoothShading {
			v1.rgba = ctx.shades[t.V1]
			v2.rgba = ctx.shades[t.V2]
			v3.rgba = ctx.shades[t.V3]
		} else {
			center := m.Points[t.V1].Add(m.Points[t.V2]).Add(m.Points[t.V3]).Mul(1.0 / 3)
			flat := to_srgb(ctx.shade(base, m.FaceNormal(t), center))
			v1.rgba, v2.rgba, v3.rgba = flat, flat, flat
		}

		if out_of_bounds(v1.pos) || out_of_bounds(v2.pos) || out_of_bounds(v3.pos) {
			polygon := ctx.clipper.clip(v1.pos, v2.pos, v3.pos)
			for i := 2; i < len(polygon); i++ {
				ctx.triangle_buffer = append(ctx.triangle_buffer, screen_triangle{
					v1: interpolate_vertex(v1, v2, v3, polygon[0].weight),
					v2: interpolate_vertex(v1, v2, v3, polygon[i-1].weight),
					v3: interpolate_vertex(v1, v2, v3, polygon[i].weight),
				})
			}
		} else {
			ctx.triangle_buffer = append(ctx.triangle_buffer, screen_triangle{v1: v1, v2: v2, v3: v3})
		}

		for _, st := range ctx.triangle_buffer {
			var dt drawn_triangle
			for i, v := range [3]vertex{st.v1, st.v2, st.v3} {
				inv_w := 1.0 / v.pos.W()
				x, y := ctx.to_screen(v.pos)
				dt.vertices[i] = ebiten.Vertex{
					DstX:    x,
					DstY:    y,
					SrcX:    1,
					SrcY:    1,
					ColorR:  v.rgba.X(),
					ColorG:  v.rgba.Y(),
					ColorB:  v.rgba.Z(),
					ColorA:  v.rgba.W(),
					Custom3: inv_w,
				}
				dt.depth += inv_w / 3
			}

			// degenerate in screen space, the negated test also drops NaN
			r1, r2, r3 := dt.vertices[0], dt.vertices[1], dt.vertices[2]
			if area := (r2.DstX-r1.DstX)*(r3.DstY-r1.DstY) - (r3.DstX-r1.DstX)*(r2.DstY-r1.DstY); !(area != 0) {
				continue
			}

			dt.edges = a.Style.ShowEdges
			ctx.triangles = append(ctx.triangles, dt)
		}

		ctx.triangle_buffer = ctx.triangle_buffer[:0]
	}

	ctx.clip_space_points = ctx.clip_space_points[:0]
	ctx.shades = ctx.shades[:0]
}

func (ctx *context) draw(target *ebiten.Image) {
	if !ctx.use_cpu {
		// no depth buffer on this path, paint far to near
		sort.Slice(ctx.triangles, func(i, j int) bool {
			return ctx.triangles[i].depth < ctx.triangles[j].depth
		})
	}

	for _, t := range ctx.triangles {
		ctx.vertices = append(ctx.vertices, t.vertices[:]...)
	}

	if ctx.use_cpu {
		ctx.cpu.draw(ctx.vertices, target)
	} else {
		ctx.draw_gpu(target)
	}

	ctx.draw_edges(target)

	ctx.drawn_triangles = len(ctx.triangles)
	ctx.triangles = ctx.triangles[:0]
	ctx.vertices = ctx.vertices[:0]
	ctx.indices = ctx.indices[:0]
}

func (ctx *context) draw_gpu(target *ebiten.Image) {
	if ctx.white == nil {
		white := ebiten.NewImage(3, 3)
		white.Fill(color.White)
		ctx.white = white.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}

	for start := 0; start < len(ctx.vertices); start += max_batch_vertices {
		batch := ctx.vertices[start:min(start+max_batch_vertices, len(ctx.vertices))]
		ctx.indices = ctx.indices[:0]
		for i := range batch {
			ctx.indices = append(ctx.indices, uint16(i))
		}
		target.DrawTriangles(batch, ctx.indices, ctx.white, &ebiten.DrawTrianglesOptions{
			AntiAlias: false,
		})
	}
}

func (ctx *context) draw_edges(target *ebiten.Image) {
	edge_color := color.RGBA{0, 0, 0, 255}
	for _, t := range ctx.triangles {
		if !t.edges {
			continue
		}
		for i := range 3 {
			a, b := t.vertices[i], t.vertices[(i+1)%3]
			vector.StrokeLine(target, a.DstX, a.DstY, b.DstX, b.DstY, 1, edge_color, false)
		}
	}
}

func srgb(linear float) float {
	c := float64(linear)
	if c <= 0.0031308 {
		return float(12.92 * c)
	}
	return float(1.055*math.Pow(c, 1/2.4) - 0.055)
}
