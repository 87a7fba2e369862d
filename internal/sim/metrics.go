package sim

import (
	"math"

	"github.com/san-kum/lexigraph/internal/graph"
)

// KineticEnergy tracks the node set's total kinetic energy per tick. The
// debug overlay plots its history as a settling indicator.
type KineticEnergy struct {
	last    float64
	history []float64
	cap     int
}

func NewKineticEnergy(historyCap int) *KineticEnergy {
	if historyCap <= 0 {
		historyCap = 120
	}
	return &KineticEnergy{cap: historyCap}
}

func (k *KineticEnergy) Name() string { return "kinetic_energy" }

func (k *KineticEnergy) Observe(nodes []*graph.Node, alpha float64) {
	total := 0.0
	for _, n := range nodes {
		total += 0.5 * (n.VX*n.VX + n.VY*n.VY)
	}
	k.last = total
	k.history = append(k.history, total)
	if len(k.history) > k.cap {
		k.history = k.history[len(k.history)-k.cap:]
	}
}

func (k *KineticEnergy) Value() float64 { return k.last }

// History returns the recent per-tick values, oldest first.
func (k *KineticEnergy) History() []float64 { return k.history }

func (k *KineticEnergy) Reset() {
	k.last = 0
	k.history = k.history[:0]
}

// MeanMovement tracks the average per-tick displacement, a cheap proxy for
// "has the layout settled".
type MeanMovement struct {
	prev map[*graph.Node][2]float64
	last float64
}

func NewMeanMovement() *MeanMovement {
	return &MeanMovement{prev: make(map[*graph.Node][2]float64)}
}

func (m *MeanMovement) Name() string { return "mean_movement" }

func (m *MeanMovement) Observe(nodes []*graph.Node, alpha float64) {
	if len(nodes) == 0 {
		m.last = 0
		return
	}
	total := 0.0
	for _, n := range nodes {
		if p, ok := m.prev[n]; ok {
			total += math.Hypot(n.X-p[0], n.Y-p[1])
		}
		m.prev[n] = [2]float64{n.X, n.Y}
	}
	m.last = total / float64(len(nodes))
}

func (m *MeanMovement) Value() float64 { return m.last }

func (m *MeanMovement) Reset() {
	m.prev = make(map[*graph.Node][2]float64)
	m.last = 0
}
