// Package renderer draws the colony with raylib. It only reads simulation
// state through the game's views.
package renderer

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/game"
)

var (
	backgroundColor = rl.Color{R: 18, G: 16, B: 14, A: 255}
	nestColor       = rl.Color{R: 150, G: 90, B: 40, A: 255}
	foodColor       = rl.Color{R: 90, G: 200, B: 90, A: 255}
	scoutColor      = rl.Color{R: 120, G: 170, B: 255, A: 255}
	workerColor     = rl.Color{R: 230, G: 200, B: 150, A: 255}
	cargoColor      = rl.Color{R: 140, G: 255, B: 140, A: 255}
)

// antSize is the drawn half-length of an ant in world units.
const antSize = 3.0

// Renderer draws one frame of the simulation.
type Renderer struct {
	cam    *camera.Camera
	trails *TrailOverlay

	ShowTrails bool

	// Reused view buffers
	ants  []game.AntView
	foods []game.FoodView
}

// New creates a renderer drawing through cam.
func New(cam *camera.Camera) *Renderer {
	return &Renderer{
		cam:        cam,
		trails:     NewTrailOverlay(),
		ShowTrails: true,
	}
}

// Camera returns the camera the renderer draws through.
func (r *Renderer) Camera() *camera.Camera {
	return r.cam
}

// Draw renders the game and HUD.
func (r *Renderer) Draw(g *game.Game) {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	if r.ShowTrails {
		r.trails.Update(g.Field())
		r.trails.Draw(r.cam)
	}

	r.drawNest(g.Nest())

	r.foods = g.AppendFoods(r.foods[:0])
	for _, f := range r.foods {
		r.drawFood(f)
	}

	r.ants = g.AppendAnts(r.ants[:0])
	for _, a := range r.ants {
		r.drawAnt(a)
	}

	r.drawHUD(g)

	rl.EndDrawing()
}

func (r *Renderer) drawNest(n game.NestView) {
	x, y := r.cam.WorldToScreen(float32(n.X), float32(n.Y))
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, r.cam.WorldToScreenLength(float32(n.Radius)), nestColor)
}

func (r *Renderer) drawFood(f game.FoodView) {
	if !r.cam.IsVisible(float32(f.X), float32(f.Y), float32(f.Radius)) {
		return
	}
	x, y := r.cam.WorldToScreen(float32(f.X), float32(f.Y))
	rl.DrawCircleV(rl.Vector2{X: x, Y: y}, max(r.cam.WorldToScreenLength(float32(f.Radius)), 1), foodColor)
}

// drawAnt draws an oriented triangle, plus a dot ahead of it while carrying.
func (r *Renderer) drawAnt(a game.AntView) {
	if !r.cam.IsVisible(float32(a.X), float32(a.Y), antSize*2) {
		return
	}

	color := workerColor
	if a.Kind == components.KindScout {
		color = scoutColor
	}
	drawOrientedTriangle(r.cam, a.X, a.Y, a.Heading, antSize, color)

	if a.Carrying() {
		cx := a.X + math.Cos(a.Heading)*antSize*1.5
		cy := a.Y + math.Sin(a.Heading)*antSize*1.5
		sx, sy := r.cam.WorldToScreen(float32(cx), float32(cy))
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, max(r.cam.WorldToScreenLength(1.2), 1), cargoColor)
	}
}

// drawOrientedTriangle draws a triangle pointing along heading, in world units.
func drawOrientedTriangle(cam *camera.Camera, x, y, heading, size float64, color rl.Color) {
	point := func(angle, dist float64) rl.Vector2 {
		sx, sy := cam.WorldToScreen(float32(x+math.Cos(angle)*dist), float32(y+math.Sin(angle)*dist))
		return rl.Vector2{X: sx, Y: sy}
	}

	front := point(heading, size*1.5)
	backLeft := point(heading+math.Pi*0.8, size)
	backRight := point(heading-math.Pi*0.8, size)

	// The camera flips Y, so world counter-clockwise becomes screen clockwise
	rl.DrawTriangle(front, backLeft, backRight, color)
}

func (r *Renderer) drawHUD(g *game.Game) {
	pop := g.Population()
	rl.DrawText(fmt.Sprintf("Tick: %d  (%.0fs)", g.Tick(), g.SimTime()), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Scouts: %d  Workers: %d", pop[components.KindScout], pop[components.KindWorker]), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Nest food: %.2f", g.Nest().Food), 10, 60, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]", g.StepsPerUpdate()), 10, 85, 20, rl.White)
	if g.Paused() {
		rl.DrawText("PAUSED", 10, 110, 20, rl.Yellow)
	}
}

// Unload frees GPU resources.
func (r *Renderer) Unload() {
	r.trails.Unload()
}
