package plotter

import (
	"math"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/thedaneeffect/femur-viewer/internal/mesh"
)

const (
	camera_fov       = math.Pi / 6
	camera_min_pitch = -math.Pi/2 + 0.01
	camera_max_pitch = math.Pi/2 - 0.01
)

// camera orbits a target point. pitch and yaw are in radians.
type camera struct {
	pitch    float
	yaw      float
	distance float
	target   vec3

	drag_x   int
	drag_y   int
	dragging bool

	eye     vec3
	up      vec3
	forward vec3
	right   vec3

	view_matrix mat4

	home camera_home
}

type camera_home struct {
	pitch, yaw, distance float
	radius               float
	target               vec3
}

// fit points the camera at the center of box from far enough away to see all of it.
func (c *camera) fit(box mesh.Box) {
	radius := max(box.Radius(), 1e-3)
	c.home = camera_home{
		pitch:    0.35,
		yaw:      -0.6,
		distance: 1.1 * radius / float(math.Sin(camera_fov/2)),
		radius:   radius,
		target:   box.Center(),
	}
	c.reset()
}

func (c *camera) reset() {
	c.pitch = c.home.pitch
	c.yaw = c.home.yaw
	c.distance = c.home.distance
	c.target = c.home.target
	c.update_view()
}

func (c *camera) rotate(dx, dy float) {
	c.pitch = mgl.Clamp(c.pitch+dy, camera_min_pitch, camera_max_pitch)
	c.yaw += dx
	c.update_view()
}

// zoom scales the orbit distance, positive steps move closer.
func (c *camera) zoom(steps float) {
	c.distance *= float(math.Pow(0.9, float64(steps)))
	c.distance = mgl.Clamp(c.distance, c.home.distance/100, c.home.distance*20)
	c.update_view()
}

// pan moves the target along the screen axes, in fractions of the orbit distance.
func (c *camera) pan(dx, dy float) {
	c.target = c.target.Add(c.right.Mul(dx * c.distance)).Add(c.up.Mul(dy * c.distance))
	c.update_view()
}

func (c *camera) update_view() {
	sp, cp := math.Sincos(float64(c.pitch))
	sy, cy := math.Sincos(float64(c.yaw))
	offset := vec3{float(cp * sy), float(sp), float(cp * cy)}

	c.eye = c.target.Add(offset.Mul(c.distance))
	c.view_matrix = mgl.LookAtV(c.eye, c.target, vec3{0, 1, 0})

	c.right = c.view_matrix.Row(0).Vec3()
	c.up = c.view_matrix.Row(1).Vec3()
	c.forward = c.view_matrix.Row(2).Vec3().Mul(-1)
}

// projection returns the perspective matrix for the given aspect ratio,
// with clip planes placed around the scene.
func (c *camera) projection(aspect float) mat4 {
	near := max(c.distance/1000, 1e-4)
	far := c.distance + 4*c.home.radius
	return mgl.Perspective(camera_fov, aspect, near, far)
}
