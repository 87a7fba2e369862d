package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lexigraph/internal/behavior"
	"github.com/san-kum/lexigraph/internal/geom"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/logging"
	"github.com/san-kum/lexigraph/internal/render"
	"github.com/san-kum/lexigraph/internal/snapshot"
	"github.com/san-kum/lexigraph/internal/statebus"
)

const (
	panelWidth  = 36
	zoomStep    = 1.25
	arrowPanPx  = 12
	defaultFPS  = 30
	canvasPadX  = 2
	canvasPadY  = 1
	statusFade  = 90 // frames a transient status line stays visible
	helpOverlay = `
 mouse       drag nodes, pan empty space
 shift+drag  rectangle-select
 click       toggle selection
 wheel +/-   zoom
 arrows      pan
 esc         clear selection
 d           debug overlay
 s           save layout snapshot
 r           reheat layout
 R           recompute layout
 ?           toggle this help
 q           quit`
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(canvasPadY, canvasPadX)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(panelWidth)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model is the interactive graph viewer: one render ticker drives frames,
// mouse events feed the behavior stack, keys drive camera and app state.
type Model struct {
	renderer *render.Renderer
	manager  *behavior.Manager
	camera   *render.Camera
	bus      *statebus.Scoped
	store    *snapshot.Store
	log      logging.Logger

	canvas    *render.Canvas
	frameRate int
	title     string

	mouseDown bool
	last      geom.Vec
	rectOn    bool
	rectStart geom.Vec

	notice    string
	noticeTTL int
	showHelp  bool
}

func NewModel(title string, renderer *render.Renderer, manager *behavior.Manager, store *snapshot.Store, bus *statebus.Scoped, log logging.Logger, frameRate int) Model {
	if frameRate <= 0 {
		frameRate = defaultFPS
	}
	return Model{
		renderer:  renderer,
		manager:   manager,
		camera:    renderer.Camera(),
		bus:       bus,
		store:     store,
		log:       log,
		canvas:    render.NewCanvas(80, 24),
		frameRate: frameRate,
		title:     title,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - panelWidth - 2*canvasPadX - 1
		h := msg.Height - 2*canvasPadY - 1
		if w < 20 {
			w = 20
		}
		if h < 10 {
			h = 10
		}
		m.canvas = render.NewCanvas(w, h)
		m.camera.SetViewport(w*2, h*4)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		m.renderer.Frame()
		if m.noticeTTL > 0 {
			m.noticeTTL--
			if m.noticeTTL == 0 {
				m.notice = ""
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.manager.Key("esc")
	case "+", "=":
		m.setZoom(m.camera.Zoom * zoomStep)
	case "-", "_":
		m.setZoom(m.camera.Zoom / zoomStep)
	case "up":
		m.pan(0, arrowPanPx)
	case "down":
		m.pan(0, -arrowPanPx)
	case "left":
		m.pan(arrowPanPx, 0)
	case "right":
		m.pan(-arrowPanPx, 0)
	case "d":
		on, _ := m.bus.Get("debug").(bool)
		m.bus.Set("debug", !on)
	case "r":
		m.bus.Emit("reheat", nil)
		m.say("layout reheated")
	case "R":
		m.bus.Emit("reload", nil)
		m.say("layout recomputed")
	case "s":
		m.saveSnapshot()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	p := geom.Vec{
		X: float64((msg.X - canvasPadX) * 2),
		Y: float64((msg.Y - canvasPadY) * 4),
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.setZoom(m.camera.Zoom * zoomStep)
		return
	case tea.MouseButtonWheelDown:
		m.setZoom(m.camera.Zoom / zoomStep)
		return
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if msg.Shift {
			m.rectOn = true
			m.rectStart = p
			m.last = p
			return
		}
		m.mouseDown = true
		m.last = p
		m.manager.PointerDown(p)
	case tea.MouseActionMotion:
		if m.rectOn {
			m.last = p
			return
		}
		delta := p.Sub(m.last)
		m.last = p
		m.manager.PointerMove(p)
		if m.mouseDown && !m.panPaused() {
			m.pan(delta.X, delta.Y)
		}
	case tea.MouseActionRelease:
		if m.rectOn {
			m.rectOn = false
			m.bus.Emit("selection:rect", m.worldRect(m.rectStart, p))
			return
		}
		if !m.mouseDown {
			return
		}
		m.mouseDown = false
		m.manager.PointerUp(p)
	}
}

func (m *Model) panPaused() bool {
	paused, _ := m.bus.Get("pan_paused").(bool)
	return paused
}

func (m *Model) pan(dx, dy float64) {
	m.camera.Pan(dx, dy)
	m.bus.Set("translation", m.camera.Center)
}

func (m *Model) setZoom(z float64) {
	m.camera.SetZoom(z)
	// footprints are zoom-scaled; the index behavior rebuilds on this key
	m.bus.Set("zoom", m.camera.Zoom)
}

func (m *Model) worldRect(a, b geom.Vec) geom.Rect {
	wa := m.camera.ScreenToWorld(a)
	wb := m.camera.ScreenToWorld(b)
	x0, x1 := wa.X, wb.X
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	y0, y1 := wa.Y, wb.Y
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return geom.RectAt(x0, y0, x1-x0, y1-y0)
}

func (m *Model) saveSnapshot() {
	// the renderer answers positions:request synchronously on this bus
	var p snapshot.Positions
	sub := m.bus.On("positions:response", func(v any) { p, _ = v.(snapshot.Positions) })
	m.bus.Emit("positions:request", nil)
	sub.Cancel()
	if p == nil {
		m.say("no layout to save")
		return
	}

	name := time.Now().Format("2006-01-02 15:04:05")
	id, err := m.store.Save(name, p)
	if err != nil {
		m.log.Error("snapshot save failed", logging.F("error", err.Error()))
		m.say("snapshot save failed")
		return
	}
	m.say("saved snapshot " + id[:8])
}

func (m *Model) say(s string) {
	m.notice = s
	m.noticeTTL = statusFade
}

func (m Model) View() string {
	m.canvas.Clear()
	m.manager.Paint(m.canvas)
	m.renderer.Draw(m.canvas)
	if m.rectOn {
		m.drawRect()
	}
	canvasView := canvasStyle.Render(m.canvas.String())

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	g := m.renderer.Graph()
	if g != nil {
		b.WriteString(labelStyle.Render("Articles") + valueStyle.Render(fmt.Sprintf("%d", len(g.Nodes))) + "\n")
		b.WriteString(labelStyle.Render("Links") + valueStyle.Render(fmt.Sprintf("%d", len(g.Links))) + "\n")
	}
	b.WriteString(labelStyle.Render("Zoom") + valueStyle.Render(fmt.Sprintf("%.2fx", m.camera.Zoom)) + "\n")
	state := "settled"
	if m.renderer.Simulation().Active() {
		state = fmt.Sprintf("alpha %.3f", m.renderer.Simulation().Alpha())
	}
	b.WriteString(labelStyle.Render("Layout") + valueStyle.Render(state) + "\n")
	if keys, ok := m.bus.Get("selected").([]graph.NodeKey); ok && len(keys) > 0 {
		b.WriteString(labelStyle.Render("Selected") + valueStyle.Render(fmt.Sprintf("%d", len(keys))) + "\n")
	}

	if lines := m.manager.Status(); len(lines) > 0 {
		b.WriteString("\n" + strings.Join(lines, "\n") + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice) + "\n")
	}
	if m.showHelp {
		b.WriteString(helpStyle.Render(helpOverlay))
	} else {
		b.WriteString(helpStyle.Render("\n?:Help D:Debug S:Save Q:Quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(b.String()))
}

func (m *Model) drawRect() {
	x0, y0 := int(m.rectStart.X), int(m.rectStart.Y)
	x1, y1 := int(m.last.X), int(m.last.Y)
	m.canvas.DrawLine(x0, y0, x1, y0, "205")
	m.canvas.DrawLine(x1, y0, x1, y1, "205")
	m.canvas.DrawLine(x1, y1, x0, y1, "205")
	m.canvas.DrawLine(x0, y1, x0, y0, "205")
}
