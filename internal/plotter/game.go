package plotter

import (
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	drag_sensitivity = 1.0 / 100
	pan_speed        = 0.02
)

type game struct {
	plotter    *Plotter
	context    *context
	camera     camera
	frametime  time.Duration
	show_stats bool
}

func new_game(p *Plotter) *game {
	g := &game{
		plotter: p,
		context: &context{},
	}
	g.camera.fit(p.Bounds())
	return g
}

func (g *game) Layout(outerWidth, outerHeight int) (int, int) {
	return outerWidth, outerHeight
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.context.use_cpu = !g.context.use_cpu
		g.plotter.logger.Debugw("rasterizer switched", "cpu", g.context.use_cpu)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.show_stats = !g.show_stats
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.camera.reset()
	}

	if _, yoff := ebiten.Wheel(); yoff != 0 {
		g.camera.zoom(float(yoff))
	}

	var pan_x, pan_y float
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight) {
		pan_x += pan_speed
	} else if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft) {
		pan_x -= pan_speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyUp) {
		pan_y += pan_speed
	} else if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown) {
		pan_y -= pan_speed
	}
	if pan_x != 0 || pan_y != 0 {
		g.camera.pan(pan_x, pan_y)
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		cx, cy := ebiten.CursorPosition()

		// doing the logic in the next update ensures we don't get some crazy snapping
		if !g.camera.dragging {
			g.camera.dragging = true
		} else {
			dx := float(cx-g.camera.drag_x) * drag_sensitivity
			dy := float(cy-g.camera.drag_y) * drag_sensitivity
			g.camera.rotate(-dx, dy)
		}

		g.camera.drag_x = cx
		g.camera.drag_y = cy
	} else {
		g.camera.dragging = false
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	defer func(t time.Time) {
		ft := time.Since(t)
		if g.frametime == 0 {
			g.frametime = ft
		} else {
			g.frametime += (ft - g.frametime) / 2
		}
	}(time.Now())

	ctx := g.context

	w := screen.Bounds().Dx()
	h := screen.Bounds().Dy()
	if w == 0 || h == 0 {
		return
	}

	ctx.set_viewport(0, 0, w, h)
	ctx.proj_matrix = g.camera.projection(float(w) / float(h))
	ctx.view_matrix = g.camera.view_matrix
	ctx.eye = g.camera.eye

	screen.Fill(g.plotter.opts.Background)

	actors := g.plotter.actors
	bounds := g.plotter.Bounds()

	for _, a := range actors {
		if a.Kind == ActorGrid {
			ctx.draw_grid(screen, bounds)
		}
	}

	for _, a := range actors {
		if a.Kind == ActorMesh {
			ctx.push_mesh(a)
		}
	}
	ctx.draw(screen)

	for _, a := range actors {
		switch a.Kind {
		case ActorAxes:
			ctx.draw_axes(screen)
		case ActorText:
			ctx.draw_text(screen, a)
		}
	}

	if g.show_stats {
		x := w - 200
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f CPU: %v", ebiten.ActualFPS(), ctx.use_cpu), x, 0)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Ft: %v", g.frametime), x, 14)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Triangles: %d", ctx.drawn_triangles), x, 28)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Eye: %.2f, %.2f", g.camera.pitch, g.camera.yaw), x, 42)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Dist: %.2f", g.camera.distance), x, 56)
	}
}
