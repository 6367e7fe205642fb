//go:build cgo

package shell

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/banshee-data/handvox/internal/sculpt/pipeline"
	"github.com/banshee-data/handvox/internal/sculpt/render"
	"github.com/banshee-data/handvox/internal/sculpt/sources"
)

var ebitenKeys = map[string]ebiten.Key{
	"Q":      ebiten.KeyQ,
	"Escape": ebiten.KeyEscape,
	"Z":      ebiten.KeyZ,
	"Y":      ebiten.KeyY,
	"C":      ebiten.KeyC,
	"R":      ebiten.KeyR,
	"X":      ebiten.KeyX,
}

func justPressed(name string) bool {
	key, ok := ebitenKeys[name]
	return ok && inpututil.IsKeyJustPressed(key)
}

type game struct {
	ctx      context.Context
	loop     *Loop
	pipeline *pipeline.Pipeline
	renderer *render.Renderer
	width    int
	height   int
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	for _, name := range PressedKeys(justPressed) {
		if g.loop.Key(name) {
			return ebiten.Termination
		}
	}
	g.loop.Tick(g.ctx)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.pipeline.Snapshot())
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.renderer.Width, g.renderer.Height = g.width, g.height
	return g.width, g.height
}

// RunWindow opens the editor window and blocks until it closes, the
// user quits or ctx ends. The window stays open after the source ends
// so the finished scene can still be edited from the keyboard.
func RunWindow(ctx context.Context, cfg WindowConfig, p *pipeline.Pipeline, src sources.Source) error {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := StartFeeder(ctx, src)
	g := &game{
		ctx:      ctx,
		loop:     NewLoop(p, feed),
		pipeline: p,
		renderer: render.NewRenderer(cfg.Width, cfg.Height),
		width:    cfg.Width,
		height:   cfg.Height,
	}

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(cfg.TPS)
	opsf("window %dx%d at %d ticks/s", cfg.Width, cfg.Height, cfg.TPS)

	err := ebiten.RunGame(g)
	cancel()
	<-feed.Done()
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err != nil {
		return err
	}
	return feed.Err()
}
