package behavior

import (
	"github.com/san-kum/lexigraph/internal/sim"
	"github.com/san-kum/lexigraph/internal/spatial"
	"github.com/san-kum/lexigraph/internal/statebus"
)

const reheatAlpha = 0.5

type CollideState struct {
	Started bool
}

// Collide installs the rectangle collision force over the shared spatial
// index. Listener work is routed through Schedule so it lands at the end
// of a render frame, never inside a simulation tick.
type Collide struct {
	opts  Options
	force *sim.CollisionForce
	sub   *statebus.Subscription
}

func NewCollide(opts Options, strength float64, margin float64, quiescence int) Behavior {
	cache := opts.State("spatialindex").(*spatial.Cache)
	b := &Collide{opts: opts}
	b.force = sim.NewCollisionForce(cache, strength)
	if margin > 0 {
		b.force.Margin = margin
	}
	b.force.SetQuiescence(quiescence)
	if opts.Schedule != nil {
		b.force.Schedule = opts.Schedule
	}

	b.sub = opts.Bus.On("reheat", func(any) {
		opts.Sim.Reheat(reheatAlpha)
	})
	return b
}

func (b *Collide) Name() string { return "collide" }

func (b *Collide) State() any {
	return CollideState{Started: b.force.Started()}
}

func (b *Collide) VisualsReady() {
	// registered here, after the renderer installed link, charge and
	// center, so collision always applies last within a tick
	b.opts.Sim.AddForce("collide", b.force)
	// the node set changed; quiescence restarts and the start listener
	// must fire again once the new layout settles
	b.force.OnStart(func() {
		b.opts.Bus.Emit("collide:start", nil)
	})
}
