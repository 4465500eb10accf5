// Package plotter is the display surface: a small scene graph of actors
// rendered in an ebiten window with an orbit camera.
package plotter

import (
	"image/color"
	"os"
	"runtime"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/thedaneeffect/femur-viewer/internal/mesh"
)

type (
	float = float32
	vec2  = mgl.Vec2
	vec3  = mgl.Vec3
	vec4  = mgl.Vec4
	mat4  = mgl.Mat4
)

var (
	// ErrDisplay is returned when no window can be opened or the display loop fails.
	ErrDisplay = errors.New("display unavailable")
	// ErrShown is returned by a second call to Show.
	ErrShown = errors.New("plotter already shown")
)

// Options configure the window.
type Options struct {
	Width      int
	Height     int
	Title      string
	Background color.Color
}

// ActorKind identifies what an actor draws.
type ActorKind int

const (
	ActorMesh ActorKind = iota
	ActorAxes
	ActorGrid
	ActorText
)

func (k ActorKind) String() string {
	switch k {
	case ActorMesh:
		return "mesh"
	case ActorAxes:
		return "axes"
	case ActorGrid:
		return "grid"
	case ActorText:
		return "text"
	}
	return "unknown"
}

// MeshStyle is the appearance of a mesh actor.
type MeshStyle struct {
	Color         colorful.Color
	SmoothShading bool
	ShowEdges     bool
}

// Position anchors a text actor to a corner or edge of the window.
type Position int

const (
	UpperLeft Position = iota
	UpperRight
	LowerLeft
	LowerRight
	UpperEdge
	LowerEdge
)

// Actor is one element of the scene. Only the fields matching Kind are set.
type Actor struct {
	Kind     ActorKind
	Mesh     *mesh.Mesh
	Style    MeshStyle
	Text     string
	Position Position
	FontSize int
}

// Plotter owns the scene and the window it is shown in.
type Plotter struct {
	opts   Options
	logger *zap.SugaredLogger
	actors []*Actor
	shown  bool
}

// New returns an empty plotter. Nothing is opened until Show.
func New(opts Options, logger *zap.SugaredLogger) (*Plotter, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.Errorf("invalid window size %dx%d", opts.Width, opts.Height)
	}
	if opts.Background == nil {
		opts.Background = color.RGBA{77, 77, 77, 255}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Plotter{opts: opts, logger: logger}, nil
}

func (p *Plotter) Options() Options { return p.opts }

// AddMesh adds m to the scene. The mesh is drawn as it is at render time.
func (p *Plotter) AddMesh(m *mesh.Mesh, style MeshStyle) (*Actor, error) {
	if m == nil || m.NumFaces() == 0 {
		return nil, errors.New("add mesh: mesh is empty")
	}
	if len(m.Normals) != len(m.Points) {
		m.ComputeNormals()
	}
	return p.add(&Actor{Kind: ActorMesh, Mesh: m, Style: style}), nil
}

// AddAxes adds an orientation triad in the lower left corner.
func (p *Plotter) AddAxes() *Actor {
	return p.add(&Actor{Kind: ActorAxes})
}

// ShowGrid adds a floor grid and bounding box around the meshes.
func (p *Plotter) ShowGrid() *Actor {
	return p.add(&Actor{Kind: ActorGrid})
}

// AddText adds a static label.
func (p *Plotter) AddText(text string, pos Position, font_size int) *Actor {
	return p.add(&Actor{Kind: ActorText, Text: text, Position: pos, FontSize: font_size})
}

func (p *Plotter) add(a *Actor) *Actor {
	p.actors = append(p.actors, a)
	p.logger.Debugw("actor added", "kind", a.Kind, "actors", len(p.actors))
	return a
}

// Actors returns the scene in insertion order.
func (p *Plotter) Actors() []*Actor {
	return append([]*Actor(nil), p.actors...)
}

// Count returns how many actors of kind are in the scene.
func (p *Plotter) Count(kind ActorKind) int {
	n := 0
	for _, a := range p.actors {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

// Bounds returns the box enclosing every mesh actor, or a unit box around
// the origin when there are none.
func (p *Plotter) Bounds() mesh.Box {
	var box mesh.Box
	found := false
	for _, a := range p.actors {
		if a.Kind != ActorMesh {
			continue
		}
		b := a.Mesh.Bounds()
		if !found {
			box, found = b, true
			continue
		}
		for i := range 3 {
			box.Min[i] = min(box.Min[i], b.Min[i])
			box.Max[i] = max(box.Max[i], b.Max[i])
		}
	}
	if !found || box.Empty() {
		c := box.Center()
		return mesh.Box{Min: c.Sub(vec3{1, 1, 1}), Max: c.Add(vec3{1, 1, 1})}
	}
	return box
}

// display_available reports why no window could be opened, if anything.
var display_available = func() error {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			return errors.New("neither DISPLAY nor WAYLAND_DISPLAY is set")
		}
	}
	return nil
}

// Show opens the window and blocks until it is closed.
func (p *Plotter) Show() (err error) {
	if p.shown {
		return ErrShown
	}
	p.shown = true

	if err := display_available(); err != nil {
		return errors.Wrap(ErrDisplay, err.Error())
	}

	// the graphics driver panics when it cannot create a context
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrDisplay, "%v", r)
		}
	}()

	ebiten.SetWindowTitle(p.opts.Title)
	ebiten.SetWindowSize(p.opts.Width, p.opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	g := new_game(p)
	p.logger.Debugw("starting display loop", "title", p.opts.Title, "width", p.opts.Width, "height", p.opts.Height)

	if err := ebiten.RunGameWithOptions(g, &ebiten.RunGameOptions{}); err != nil {
		return errors.Wrapf(ErrDisplay, "%v", err)
	}
	return nil
}
