package behavior

import (
	"fmt"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/lexigraph/internal/spatial"
	"github.com/san-kum/lexigraph/internal/statebus"
)

const fpsWindow = 60

// Debug renders the diagnostic overlay: frame rate, alpha, node and index
// counters, and a kinetic-energy sparkline. It is off until the shared
// debug flag is set.
type Debug struct {
	opts    Options
	cache   *spatial.Cache
	enabled bool
	frames  []time.Time
	sub     *statebus.Subscription
	now     func() time.Time
}

func NewDebug(opts Options) Behavior {
	b := &Debug{
		opts:  opts,
		cache: opts.State("spatialindex").(*spatial.Cache),
		now:   time.Now,
	}
	if v, ok := opts.Bus.Get("debug").(bool); ok {
		b.enabled = v
	}
	b.sub = opts.Bus.Observe("debug", func(v any) {
		on, ok := v.(bool)
		b.enabled = ok && on
	})
	return b
}

func (b *Debug) Name() string { return "debug" }

func (b *Debug) RenderTick() {
	if !b.enabled {
		return
	}
	b.frames = append(b.frames, b.now())
	if len(b.frames) > fpsWindow {
		b.frames = b.frames[1:]
	}
}

func (b *Debug) fps() float64 {
	if len(b.frames) < 2 {
		return 0
	}
	span := b.frames[len(b.frames)-1].Sub(b.frames[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(b.frames)-1) / span
}

func (b *Debug) Status() []string {
	if !b.enabled {
		return nil
	}
	stats := b.cache.Stats()
	lines := []string{
		fmt.Sprintf("fps      %.1f", b.fps()),
		fmt.Sprintf("alpha    %.4f", b.opts.Sim.Alpha()),
		fmt.Sprintf("nodes    %d", len(b.opts.Nodes())),
		fmt.Sprintf("links    %d", len(b.opts.Links())),
		fmt.Sprintf("leaves   %d", stats.Leaves),
		fmt.Sprintf("repairs  %d", stats.Repairs),
		fmt.Sprintf("searches %d", stats.Searches),
		fmt.Sprintf("forces   %s", strings.Join(b.opts.Sim.ForceNames(), " ")),
	}
	if hist := b.opts.EnergyHistory(); len(hist) > 1 {
		if len(hist) > 40 {
			hist = hist[len(hist)-40:]
		}
		chart := asciigraph.Plot(hist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("energy"))
		lines = append(lines, "", chart)
	}
	return lines
}
