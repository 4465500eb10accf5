// Package viewer loads a mesh file and shows it in a plotter window.
package viewer

import (
	"os"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/thedaneeffect/femur-viewer/internal/config"
	"github.com/thedaneeffect/femur-viewer/internal/mesh"
	"github.com/thedaneeffect/femur-viewer/internal/plotter"
)

// Viewer owns one mesh file, the mesh loaded from it and the plotter it is
// shown in. It is not safe for concurrent use.
type Viewer struct {
	Path string

	cfg     config.Config
	logger  *zap.SugaredLogger
	mesh    *mesh.Mesh
	plotter *plotter.Plotter

	// base_points is the vertex positions at load time. A future
	// deformation computes new shapes as base_points + displacement.
	base_points []mgl.Vec3
}

// New checks that cfg.Path names an existing file. Nothing is read yet.
func New(cfg config.Config, logger *zap.SugaredLogger) (*Viewer, error) {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fail(KindNotFound, cfg.Path, err)
	}
	if info.IsDir() {
		return nil, fail(KindNotFound, cfg.Path, errors.Errorf("%s is a directory", cfg.Path))
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Viewer{Path: cfg.Path, cfg: cfg, logger: logger}, nil
}

// Load reads the mesh file, replacing any previously loaded mesh.
func (v *Viewer) Load() error {
	v.logger.Infof("[Info] Loading mesh from: %s...", v.Path)

	m, err := mesh.Load(v.Path)
	if err != nil {
		return fail(KindLoad, v.Path, err)
	}

	v.mesh = m
	v.base_points = mesh.CopyPoints(m.Points)

	v.logger.Infof("[Success] Mesh loaded. Vertices: %d, Faces: %d", m.NumPoints(), m.NumFaces())
	return nil
}

// SetupScene creates the plotter and adds the mesh and decorations to it.
func (v *Viewer) SetupScene() error {
	if v.mesh == nil {
		return fail(KindLoad, v.Path, errors.New("setup scene: no mesh loaded"))
	}

	c, err := config.ParseColor(v.cfg.Color)
	if err != nil {
		return fail(KindDisplay, v.Path, err)
	}

	p, err := plotter.New(plotter.Options{
		Width:  v.cfg.Width,
		Height: v.cfg.Height,
		Title:  v.cfg.Title,
	}, v.logger.Named("plotter"))
	if err != nil {
		return fail(KindDisplay, v.Path, err)
	}

	_, err = p.AddMesh(v.mesh, plotter.MeshStyle{
		Color:         c,
		SmoothShading: v.cfg.SmoothShading,
		ShowEdges:     v.cfg.ShowEdges,
	})
	if err != nil {
		return fail(KindDisplay, v.Path, err)
	}

	p.AddAxes()
	p.ShowGrid()
	p.AddText(v.cfg.Label, plotter.UpperLeft, v.cfg.FontSize)

	v.plotter = p
	return nil
}

// Run loads the mesh, builds the scene and blocks until the window is closed.
func (v *Viewer) Run() error {
	if err := v.Load(); err != nil {
		return err
	}
	if err := v.SetupScene(); err != nil {
		return err
	}

	v.logger.Info("[Info] Starting visualization window...")
	v.logger.Info("[Tip] Press 'q' to close the window.")

	if err := v.plotter.Show(); err != nil {
		return fail(KindDisplay, v.Path, err)
	}
	return nil
}

// Mesh returns the live mesh, nil before Load.
func (v *Viewer) Mesh() *mesh.Mesh { return v.mesh }

// BasePoints returns the vertex positions captured by the last Load.
func (v *Viewer) BasePoints() []mgl.Vec3 { return v.base_points }

// Plotter returns the display surface, nil before SetupScene.
func (v *Viewer) Plotter() *plotter.Plotter { return v.plotter }
