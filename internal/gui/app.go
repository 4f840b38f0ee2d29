// Package gui is the windowed front-end. Unlike the terminal it sees real
// key-down and key-up events, so held keys map one to one onto attractor
// activation.
package gui

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/musclemesh/internal/dynamo"
	"github.com/san-kum/musclemesh/internal/metrics"
	"github.com/san-kum/musclemesh/internal/sim"
	"github.com/san-kum/musclemesh/internal/swarm"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColGrid    = rl.NewColor(45, 45, 45, 255)
	ColTendon  = rl.NewColor(70, 70, 90, 255)
)

const (
	fontPath     = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
	glowCount    = 12
	glowSize     = 48
	maxTelemetry = 200
)

type Options struct {
	AssetDir string
	Title    string
}

type App struct {
	Sim  *sim.Sim
	Font rl.Font

	Running       bool
	ShowPartition bool
	Telemetry     []float64

	assets  []swarm.Asset
	glowTex rl.Texture2D
	margin  float64
	center  bool
}

func initWindow(w, h int32, title string) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(w, h, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(rl.KeyEscape)
}

func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens a window sized to the simulation domain and blocks until it is
// closed. Sprite assets are loaded from opts.AssetDir once the GL context
// exists; when none load, generated glow sprites are used.
func Run(s *sim.Sim, opts Options) error {
	b := s.Bounds()
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("window size %gx%g: %w", b.Width, b.Height, dynamo.ErrParameterBounds)
	}
	title := opts.Title
	if title == "" {
		title = "musclemesh"
	}
	initWindow(int32(b.Width), int32(b.Height), title)
	defer rl.CloseWindow()

	app := NewApp(s, opts.AssetDir)
	defer app.Close()
	app.RunLoop()
	return nil
}

func NewApp(s *sim.Sim, assetDir string) *App {
	cfg := s.Config()
	app := &App{
		Sim:           s,
		Font:          loadFont(),
		Running:       true,
		ShowPartition: s.PartitionEnabled(),
		Telemetry:     make([]float64, 0, maxTelemetry),
		margin:        cfg.Domain.Margin,
		center:        cfg.Domain.Centered,
	}

	app.assets = loadAssets(assetDir)
	if len(app.assets) == 0 {
		app.assets = glowAssets(glowCount, glowSize)
	}
	s.SetAssets(app.assets)

	img := rl.GenImageGradientRadial(64, 64, 0.0, rl.White, rl.NewColor(0, 0, 0, 0))
	app.glowTex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)

	if len(s.Metrics()) == 0 {
		for _, m := range metrics.Default() {
			s.AddMetric(m)
		}
	}
	return app
}

func (a *App) Close() {
	unloadAssets(a.assets)
	rl.UnloadTexture(a.glowTex)
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		b := dynamo.NewBounds(float64(w), float64(h), a.margin, a.center)
		a.Sim.Resize(b)
		slog.Debug("resized", "width", w, "height", h)
	}

	for k := int32(rl.KeyA); k <= rl.KeyZ; k++ {
		if rl.IsKeyPressed(k) {
			a.Sim.Press(keyRune(k))
		}
		if rl.IsKeyReleased(k) {
			a.Sim.Release(keyRune(k))
		}
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ShowPartition = !a.ShowPartition
		a.Sim.SetPartition(a.ShowPartition)
	}

	if !a.Running {
		return
	}
	f := a.Sim.Tick(time.Now())
	a.Telemetry = append(a.Telemetry, f.Grid.Energy())
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

// keyRune maps a raylib letter key code to its lower-case symbol.
func keyRune(k int32) rune { return rune('a' + (k - rl.KeyA)) }

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	f := a.Sim.Frame()
	if a.ShowPartition {
		a.drawPartition(f)
	}
	a.drawGrid(f)
	a.drawTendons(f)
	a.drawParticles(f)
	a.drawNodes(f)
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
	name := a.Sim.Config().Name
	if name == "" {
		name = "custom"
	}
	a.drawText("musclemesh", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", name), 190, 34, 16, ColText)

	status, col := "RUNNING", ColSelect
	if !a.Running {
		status, col = "PAUSED", ColTextDim
	}
	a.drawText(status, w-130, 30, 16, col)
	a.drawText(fmt.Sprintf("reshuffles %d", a.Sim.Reshuffles()), w-130, 52, 14, ColTextDim)

	a.DrawTelemetry(30, h-100)
	a.drawText("[A-Z] PULL  [SPACE] PAUSE  [TAB] PARTITION  [ESC] QUIT", w-520, h-40, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, h-40, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color color.RGBA) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

func (a *App) DrawTelemetry(rectX, rectY int) {
	if len(a.Telemetry) < 2 {
		return
	}
	width, height := 300, 50

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal, maxVal = min(minVal, v), max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}
	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
