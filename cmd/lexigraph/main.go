package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/lexigraph/internal/behavior"
	"github.com/san-kum/lexigraph/internal/config"
	"github.com/san-kum/lexigraph/internal/graph"
	"github.com/san-kum/lexigraph/internal/logging"
	"github.com/san-kum/lexigraph/internal/render"
	"github.com/san-kum/lexigraph/internal/snapshot"
	"github.com/san-kum/lexigraph/internal/statebus"
	"github.com/san-kum/lexigraph/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	dataFile   string
	demoNodes  int
	seed       int64
	snapshotID string
	frameRate  int
	zoom       float64
	debug      bool
	ticks      int
	saveName   string
	encode     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lexigraph",
		Short: "force-directed dictionary graph viewer",
		RunE:  runView,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.lexigraph)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "tuning preset")

	viewCmd := &cobra.Command{
		Use:   "view",
		Short: "interactive graph viewer",
		RunE:  runView,
	}
	for _, c := range []*cobra.Command{rootCmd, viewCmd} {
		c.Flags().StringVar(&dataFile, "data", "", "graph json file (default: demo graph)")
		c.Flags().IntVar(&demoNodes, "nodes", 0, "demo graph size")
		c.Flags().Int64Var(&seed, "seed", 0, "demo graph seed")
		c.Flags().StringVar(&snapshotID, "snapshot", "", "restore a saved layout snapshot")
		c.Flags().IntVar(&frameRate, "fps", 0, "frame rate")
		c.Flags().Float64Var(&zoom, "zoom", 0, "initial zoom")
		c.Flags().BoolVar(&debug, "debug", false, "start with the debug overlay on")
	}

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "compute a layout headlessly",
		RunE:  runLayout,
	}
	layoutCmd.Flags().StringVar(&dataFile, "data", "", "graph json file (default: demo graph)")
	layoutCmd.Flags().IntVar(&demoNodes, "nodes", 0, "demo graph size")
	layoutCmd.Flags().Int64Var(&seed, "seed", 0, "demo graph seed")
	layoutCmd.Flags().IntVar(&ticks, "ticks", 600, "maximum simulation ticks")
	layoutCmd.Flags().StringVar(&saveName, "save", "", "save the result as a named snapshot")
	layoutCmd.Flags().BoolVar(&encode, "encode", false, "print the layout as a shareable text code")

	snapshotsCmd := &cobra.Command{
		Use:   "snapshots",
		Short: "manage saved layout snapshots",
	}
	snapshotsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list snapshots",
			RunE:  listSnapshots,
		},
		&cobra.Command{
			Use:   "show [id]",
			Short: "print snapshot details and its text code",
			Args:  cobra.ExactArgs(1),
			RunE:  showSnapshot,
		},
		&cobra.Command{
			Use:   "delete [id]",
			Short: "delete a snapshot",
			Args:  cobra.ExactArgs(1),
			RunE:  deleteSnapshot,
		},
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "write the active configuration to a yaml file",
		RunE:  runInit,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list tuning presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(viewCmd, layoutCmd, snapshotsCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dataFile != "" {
		cfg.Data = dataFile
	}
	if cmd.Flags().Changed("nodes") {
		cfg.DemoNodes = demoNodes
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("fps") {
		cfg.FrameRate = frameRate
	}
	if cmd.Flags().Changed("zoom") {
		cfg.Zoom = zoom
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, cfg.Validate()
}

func loadGraph(cfg *config.Config) (*graph.Graph, error) {
	if cfg.Data != "" {
		return graph.LoadFile(cfg.Data)
	}
	return graph.Demo(cfg.DemoNodes, cfg.Seed), nil
}

func openLogger(cfg *config.Config) (logging.Logger, func()) {
	path := filepath.Join(cfg.DataDir, "lexigraph.log")
	log, closer, err := logging.NewFile(path, logging.ParseLevel(cfg.LogLevel))
	if err != nil {
		return logging.Discard(), func() {}
	}
	return log, func() { closer.Close() }
}

// viewer assembles the full stack: bus, renderer, behavior registry in the
// documented order, then the data set.
func viewer(cfg *config.Config, g *graph.Graph, saved snapshot.Positions, store *snapshot.Store, log logging.Logger) (*render.Renderer, *behavior.Manager, *statebus.Scoped, error) {
	bus := statebus.New(log).Scoped("graph")

	camera := render.NewCamera()
	camera.SetZoom(cfg.Zoom)

	renderer := render.NewRenderer(camera, bus, log, render.Params{
		LinkDistance:   cfg.Forces.LinkDistance,
		ChargeStrength: cfg.Forces.ChargeStrength,
		ChargeTheta:    cfg.Forces.ChargeTheta,
		WarmupTicks:    cfg.WarmupTicks,
	})

	sel := behavior.NewSelection()
	m := behavior.NewManager(renderer, sel, behavior.Options{Bus: bus, Log: log})
	register := []struct {
		name  string
		build func(behavior.Options) behavior.Behavior
	}{
		{"spatialindex", behavior.NewSpatialIndex},
		{"drag", behavior.NewDrag},
		{"selection", behavior.NewSelect},
		{"tint", behavior.NewTint},
		{"collide", func(o behavior.Options) behavior.Behavior {
			return behavior.NewCollide(o, cfg.Forces.CollideStrength, cfg.Forces.CollideMargin, cfg.Forces.Quiescence)
		}},
		{"grid", behavior.NewGrid},
		{"debug", behavior.NewDebug},
	}
	for _, r := range register {
		if err := m.Register(r.name, r.build); err != nil {
			return nil, nil, nil, err
		}
	}
	renderer.SetHooks(m)

	if cfg.Debug {
		bus.Set("debug", true)
	}
	bus.Set("zoom", camera.Zoom)

	renderer.SetData(g, saved)
	return renderer, m, bus, nil
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := loadGraph(cfg)
	if err != nil {
		return err
	}

	log, closeLog := openLogger(cfg)
	defer closeLog()

	store := snapshot.NewStore(filepath.Join(cfg.DataDir, "snapshots"))
	if err := store.Init(); err != nil {
		return err
	}

	var saved snapshot.Positions
	if snapshotID != "" {
		_, saved, err = store.Load(snapshotID)
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", snapshotID, err)
		}
	}

	renderer, manager, bus, err := viewer(cfg, g, saved, store, log)
	if err != nil {
		return err
	}

	model := tui.NewModel("lexigraph", renderer, manager, store, bus, log, cfg.FrameRate)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := configFile
	if path == "" {
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return err
		}
		path = filepath.Join(cfg.DataDir, "config.yaml")
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

// layoutProgress logs decay progress during a headless run.
type layoutProgress struct {
	log   logging.Logger
	ticks int
}

func (p *layoutProgress) OnTick(alpha float64) {
	p.ticks++
	if p.ticks%100 == 0 {
		p.log.Debug("layout progress",
			logging.F("ticks", p.ticks),
			logging.F("alpha", alpha))
	}
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	g, err := loadGraph(cfg)
	if err != nil {
		return err
	}

	log, closeLog := openLogger(cfg)
	defer closeLog()

	store := snapshot.NewStore(filepath.Join(cfg.DataDir, "snapshots"))
	if err := store.Init(); err != nil {
		return err
	}

	renderer, _, _, err := viewer(cfg, g, nil, store, log)
	if err != nil {
		return err
	}

	fmt.Printf("laying out %d nodes, %d links...\n", len(g.Nodes), len(g.Links))
	start := time.Now()
	s := renderer.Simulation()
	s.AddObserver(&layoutProgress{log: log})
	ran := 0
	for i := 0; i < ticks && s.Active(); i++ {
		renderer.Frame()
		ran++
	}
	fmt.Printf("settled after %d ticks in %v (alpha %.4f)\n", ran, time.Since(start), s.Alpha())

	positions := renderer.CapturePositions()
	if saveName != "" {
		id, err := store.Save(saveName, positions)
		if err != nil {
			return err
		}
		fmt.Printf("snapshot id: %s\n", id)
	}
	if encode {
		fmt.Println(snapshot.EncodeText(positions))
	}
	return nil
}

func snapshotStore() (*snapshot.Store, error) {
	cfg := config.DefaultConfig()
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	s := snapshot.NewStore(filepath.Join(cfg.DataDir, "snapshots"))
	return s, s.Init()
}

func listSnapshots(cmd *cobra.Command, args []string) error {
	store, err := snapshotStore()
	if err != nil {
		return err
	}
	metas, err := store.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("no snapshots")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tNODES")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			m.ID, m.Name, m.CreatedAt.Format("2006-01-02 15:04:05"), m.NodeCount)
	}
	return w.Flush()
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	store, err := snapshotStore()
	if err != nil {
		return err
	}
	meta, positions, err := store.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("id:      %s\n", meta.ID)
	fmt.Printf("name:    %s\n", meta.Name)
	fmt.Printf("created: %s\n", meta.CreatedAt.Format(time.RFC3339))
	fmt.Printf("nodes:   %d\n", meta.NodeCount)
	fmt.Printf("code:    %s\n", snapshot.EncodeText(positions))
	return nil
}

func deleteSnapshot(cmd *cobra.Command, args []string) error {
	store, err := snapshotStore()
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}
