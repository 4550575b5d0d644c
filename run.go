package glyphwave

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig holds window settings for Run.
type RunConfig struct {
	// Title is the window title.
	Title string
	// Width and Height are the window size in logical pixels.
	Width, Height int
	// Config supplies the mount parameters and the DPR cap.
	Config Config
	// ShowFPS draws the hero and host frame rates in the corner.
	ShowFPS bool
	// ThemeFade is the theme transition in seconds. Zero uses DefaultThemeFade.
	ThemeFade float32
	// Metrics, if set, receives the hero's gauges and counters.
	Metrics *Metrics
	// Setup, if set, is called with the mounted hero before the loop starts.
	Setup func(h *Hero)
}

// heroGame adapts a Hero to ebiten.Game and draws the themed accent bar the
// UI layer would normally own.
type heroGame struct {
	hero    *Hero
	cfg     RunConfig
	fader   *ThemeFader
	overlay fpsOverlay
	bar     *ebiten.Image
	w, h    int
}

func (g *heroGame) Update() error {
	g.fader.Update(float32(1 / float64(ebiten.TPS())))
	return g.hero.Update()
}

func (g *heroGame) Draw(screen *ebiten.Image) {
	g.hero.Draw(screen)

	accent := g.fader.Theme().Accent
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(screen.Bounds().Dx()), 4)
	op.ColorScale.Scale(float32(accent.R), float32(accent.G), float32(accent.B), 1)
	screen.DrawImage(g.bar, &op)

	if g.cfg.ShowFPS {
		ev, _ := g.hero.Scene()
		g.overlay.draw(screen, ev.FPS, g.hero.Mode())
	}
}

// Layout renders at device resolution with the DPR capped, and forwards size
// changes to the hero.
func (g *heroGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	dpr := ebiten.Monitor().DeviceScaleFactor()
	w, h := g.cfg.Config.CanvasSize(outsideWidth, outsideHeight, dpr)
	if w != g.w || h != g.h {
		g.w, g.h = w, h
		g.hero.Resize(w, h)
	}
	return w, h
}

// Run opens a window showing a hero and blocks until it is closed.
func Run(cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 1280, 720
	}
	if cfg.Config == (Config{}) {
		cfg.Config = DefaultConfig()
	}
	if cfg.ThemeFade == 0 {
		cfg.ThemeFade = DefaultThemeFade
	}
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	w, h := cfg.Config.CanvasSize(cfg.Width, cfg.Height, ebiten.Monitor().DeviceScaleFactor())
	opts := cfg.Config.Options(w, h)
	opts.Metrics = cfg.Metrics
	hero := NewHero(opts)
	fader := NewThemeFader(SceneWater, cfg.ThemeFade, nil)
	hero.OnScene(fader.Handle)
	hero.Mount()
	defer hero.Unmount()
	if cfg.Setup != nil {
		cfg.Setup(hero)
	}

	bar := ebiten.NewImage(1, 1)
	bar.Fill(Color{1, 1, 1}.RGBA())
	return ebiten.RunGame(&heroGame{hero: hero, cfg: cfg, fader: fader, bar: bar, w: w, h: h})
}
