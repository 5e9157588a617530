//go:build !tinygo && cgo

package sim

import (
	"context"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/tuffrabit/tinygo-nixie-clock/internal/buildinfo"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/pins"
)

// RunWindow shows board until the window closes or ctx is done.
// It must be called from the main goroutine.
func RunWindow(ctx context.Context, board *pins.SimBoard) error {
	ebiten.SetWindowTitle("Nixie clock (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(Width*2, Height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(&game{ctx: ctx, board: board})
}

type game struct {
	ctx   context.Context
	board *pins.SimBoard
}

func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	for pos := 0; pos < 4; pos++ {
		v := g.board.Tube(pos)
		for s, r := range segmentRects(pos) {
			c := colorOff
			if v.Segments[s] {
				c = colorGlow
			}
			vector.DrawFilledRect(screen, r.X, r.Y, r.W, r.H, c, false)
		}
		d := dotRect(pos)
		c := colorOff
		if v.Dot {
			c = colorGlow
		}
		vector.DrawFilledRect(screen, d.X, d.Y, d.W, d.H, c, false)
	}

	cx, cy := ledCenter()
	vector.DrawFilledCircle(screen, cx, cy, ledR, scale(colorLED, g.board.LEDDuty()), true)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return Width, Height
}
