package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
	"github.com/pthm-cable/colony/systems"
)

// TrailOverlay renders the pheromone field as a false-color texture:
// nest trail in red, food trail in green, alpha from the stronger channel.
type TrailOverlay struct {
	tex        rl.Texture2D
	texW, texH int
	pixels     []color.RGBA

	initialized bool
}

// NewTrailOverlay creates an overlay; the texture is allocated on first update.
func NewTrailOverlay() *TrailOverlay {
	return &TrailOverlay{}
}

// init allocates the texture (must be called after the raylib window is created).
func (t *TrailOverlay) init(gridW, gridH int) {
	t.texW = gridW
	t.texH = gridH
	t.pixels = make([]color.RGBA, gridW*gridH)

	img := rl.GenImageColor(gridW, gridH, rl.Blank)
	t.tex = rl.LoadTextureFromImage(img)
	rl.SetTextureFilter(t.tex, rl.FilterBilinear)
	rl.UnloadImage(img)

	t.initialized = true
}

// trailColor maps one cell to an overlay pixel.
func trailColor(c systems.Cell) color.RGBA {
	return color.RGBA{
		R: uint8(c.Nest * 255),
		G: uint8(c.Food * 255),
		A: uint8(c.Strongest() * 255),
	}
}

// Update uploads the current field to the GPU texture. Row 0 of the field
// is the top of the world, which is also row 0 of the texture.
func (t *TrailOverlay) Update(field *systems.PheromoneField) {
	w, h := field.Size()
	if !t.initialized {
		t.init(w, h)
	}
	if w != t.texW || h != t.texH {
		return
	}

	for i, c := range field.Cells() {
		t.pixels[i] = trailColor(c)
	}
	rl.UpdateTexture(t.tex, t.pixels)
}

// Draw stretches the texture over the world rectangle as seen by cam.
func (t *TrailOverlay) Draw(cam *camera.Camera) {
	if !t.initialized {
		return
	}

	x, y := cam.WorldToScreen(-cam.WorldW/2, cam.WorldH/2)
	srcRect := rl.Rectangle{X: 0, Y: 0, Width: float32(t.texW), Height: float32(t.texH)}
	dstRect := rl.Rectangle{
		X:      x,
		Y:      y,
		Width:  cam.WorldToScreenLength(cam.WorldW),
		Height: cam.WorldToScreenLength(cam.WorldH),
	}
	rl.DrawTexturePro(t.tex, srcRect, dstRect, rl.Vector2{}, 0, rl.White)
}

// Unload frees GPU resources.
func (t *TrailOverlay) Unload() {
	if !t.initialized {
		return
	}
	rl.UnloadTexture(t.tex)
	t.initialized = false
}
