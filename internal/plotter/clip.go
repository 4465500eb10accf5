package plotter

func interpolate_vec4(v1, v2, v3 vec4, f vec3) (result vec4) {
	result = result.Add(v1.Mul(f.X()))
	result = result.Add(v2.Mul(f.Y()))
	result = result.Add(v3.Mul(f.Z()))
	return
}

func interpolate_vertex(v1, v2, v3 vertex, f vec3) (result vertex) {
	result.pos = interpolate_vec4(v1.pos, v2.pos, v3.pos, f)
	result.rgba = interpolate_vec4(v1.rgba, v2.rgba, v3.rgba, f)
	return
}

func out_of_bounds(a vec4) bool {
	x, y, z, w := a.X(), a.Y(), a.Z(), a.W()
	return x < -w || x > w || y < -w || y > w || z < -w || z > w
}

func viewport_transform(ndc, dimension_half float) float {
	return dimension_half*ndc + dimension_half
}

// clip_plane is the half space dot(p, v) > 0 of homogeneous clip space.
type clip_plane vec4

func (p clip_plane) test(v vec4) bool {
	return vec4(p).Dot(v) > 0
}

// intersection returns where the segment a->b crosses the plane, and how
// far along the segment that is. a and b must be on opposite sides.
func (p clip_plane) intersection(a, b vec4) (vec4, float) {
	da, db := vec4(p).Dot(a), vec4(p).Dot(b)
	t := da / (da - db)
	return a.Add(b.Sub(a).Mul(t)), t
}

var clip_planes = [...]clip_plane{
	{-1, 0, 0, 1}, // x < w
	{1, 0, 0, 1},  // x > -w
	{0, -1, 0, 1}, // y < w
	{0, 1, 0, 1},  // y > -w
	{0, 0, -1, 1}, // z < w
	{0, 0, 1, 1},  // z > -w, near
}

var near_plane = clip_planes[5]

// clip_vertex is a corner of a clipped polygon, with its barycentric
// weights relative to the triangle it was cut from.
type clip_vertex struct {
	pos    vec4
	weight vec3
}

// clipper cuts triangles down to the view volume, reusing its buffers
// between calls.
type clipper struct {
	in, out []clip_vertex
}

// clip returns the convex polygon left of p1 p2 p3 inside every clip plane,
// or nil when less than a triangle is left. The result is only valid until
// the next call.
func (c *clipper) clip(p1, p2, p3 vec4) []clip_vertex {
	c.out = append(c.out[:0],
		clip_vertex{p1, vec3{1, 0, 0}},
		clip_vertex{p2, vec3{0, 1, 0}},
		clip_vertex{p3, vec3{0, 0, 1}},
	)
	for _, plane := range clip_planes {
		c.in, c.out = c.out, c.in[:0]
		if len(c.in) < 3 {
			return nil
		}
		prev := c.in[len(c.in)-1]
		prev_inside := plane.test(prev.pos)
		for _, v := range c.in {
			inside := plane.test(v.pos)
			if inside != prev_inside {
				pos, t := plane.intersection(prev.pos, v.pos)
				c.out = append(c.out, clip_vertex{
					pos:    pos,
					weight: prev.weight.Add(v.weight.Sub(prev.weight).Mul(t)),
				})
			}
			if inside {
				c.out = append(c.out, v)
			}
			prev, prev_inside = v, inside
		}
	}
	if len(c.out) < 3 {
		return nil
	}
	return c.out
}

// clip_segment trims the segment a->b to the part in front of the near
// plane. ok is false when nothing is left.
func clip_segment(a, b vec4) (vec4, vec4, bool) {
	in_a, in_b := near_plane.test(a), near_plane.test(b)
	switch {
	case in_a && in_b:
		return a, b, true
	case in_a:
		p, _ := near_plane.intersection(a, b)
		return a, p, true
	case in_b:
		p, _ := near_plane.intersection(a, b)
		return p, b, true
	}
	return a, b, false
}
