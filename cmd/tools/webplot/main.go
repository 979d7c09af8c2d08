// Command webplot renders a static PNG of one configured detection web:
// every node in its lattice as a point, plus a faint point at each end of
// every live node-site link. It is grounded on the teacher's
// lidar grid visualizers (internal/lidar/monitor/gridplotter.go), adapted
// from a time-series-per-cell plot to a one-shot geographic scatter.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/usgs/neic-glass3-sub001/internal/config"
	"github.com/usgs/neic-glass3-sub001/internal/db"
	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/taper"
	"github.com/usgs/neic-glass3-sub001/internal/travel"
	"github.com/usgs/neic-glass3-sub001/internal/web"
)

var (
	configFile = flag.String("config", "", "path to the glass-app Configuration file")
	gridName   = flag.String("grid", "", "Name of the Grid to plot")
	dbPathFlag = flag.String("db-path", "glass.db", "path to the sqlite DB holding the site registry")
	outFile    = flag.String("out", "web.png", "output PNG path")
)

func main() {
	flag.Parse()
	if *configFile == "" || *gridName == "" {
		fmt.Fprintln(os.Stderr, "usage: webplot --config <configfile> --grid <name> [--db-path glass.db] [--out web.png]")
		os.Exit(1)
	}
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webplot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root, err := config.LoadRoot(*configFile)
	if err != nil {
		return fmt.Errorf("load root config: %w", err)
	}
	initCfg, err := config.LoadInitialize(root)
	if err != nil {
		return fmt.Errorf("load initialize file: %w", err)
	}
	grids, err := config.LoadGrids(root)
	if err != nil {
		return fmt.Errorf("load grid files: %w", err)
	}
	g := findGrid(grids, *gridName)
	if g == nil {
		return fmt.Errorf("no Grid named %q in %s", *gridName, *configFile)
	}

	tbl, err := loadTravelTable(root, initCfg.DefaultNucleationPhase.TravFile)
	if err != nil {
		return fmt.Errorf("load travel table: %w", err)
	}
	ttt := travel.NewTTT()
	if err := ttt.AddPhase(tbl); err != nil {
		return fmt.Errorf("add phase: %w", err)
	}

	database, err := db.NewDB(*dbPathFlag)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	registry := site.NewRegistry(initCfg.GetSitePickMax())
	persisted, err := database.LoadSites()
	if err != nil {
		return fmt.Errorf("load sites: %w", err)
	}
	for _, p := range persisted {
		s, _ := registry.Upsert(p.Key, p.Point)
		s.SetEnabled(p.Enabled)
		s.SetUseForTeleseismic(p.UseForTeleseismic)
	}

	w := buildWeb(g, ttt)
	registry.Watch(w)
	w.RefreshEligible(registry)
	points, depths := gridPoints(g)
	w.LoadGrid(points, depths)

	return plotWeb(w, *outFile)
}

func findGrid(grids []*config.Grid, name string) *config.Grid {
	for _, g := range grids {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func loadTravelTable(root *config.Root, travFile string) (*travel.Table, error) {
	resolved, err := root.ResolvePath(travFile)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("open travel table %s: %w", resolved, err)
	}
	defer f.Close()
	return travel.ReadTable(f)
}

func buildWeb(g *config.Grid, ttt *travel.TTT) *web.Web {
	cfg := web.DefaultConfig()
	cfg.ResolutionKM = g.GetResolution()
	cfg.DetectN = g.GetDetect()
	cfg.NCut = g.GetNucleate()
	cfg.DThresh = g.GetThresh()
	cfg.PrimaryPhase = g.NucleationPhases.Phase1
	cfg.SecondaryPhase = g.NucleationPhases.Phase2
	cfg.TeleseismicOnly = g.GetUseOnlyTeleseismicStations()
	cfg.AllowedNetworks = g.Nets
	cfg.AllowedStations = g.Sites
	if g.MaximumDepth != nil {
		cfg.MaxDepthKM = *g.MaximumDepth
	}
	if g.AzimuthGapTaper != nil {
		t := *g.AzimuthGapTaper
		cfg.AzimuthTaper = &taper.CosineRange{X1: t[0], X2: t[1], X3: t[2], X4: t[3]}
		cfg.AzimuthWindowDeg = t[3]
	}
	return web.New(g.Name, cfg, ttt)
}

func gridPoints(g *config.Grid) ([]geo.Point, []float64) {
	depths := g.Z
	if len(depths) == 0 {
		depths = []float64{0}
	}
	switch g.Cmd {
	case config.GridGlobal:
		return web.FibonacciLatticePoints(g.GetResolution()), depths
	case config.GridRegional:
		center := geo.Point{Lat: *g.CenterLat, Lon: *g.CenterLon}
		span := 2 * (*g.RadiusDeg) * geo.KMPerDegreeLat
		n := int(span/g.GetResolution()) + 1
		if n < 1 {
			n = 1
		}
		return web.RegionalGridPoints(center, n, n, g.GetResolution()), depths
	case config.GridExplicit:
		points := make([]geo.Point, len(g.Points))
		for i, p := range g.Points {
			points[i] = geo.Point{Lat: p.Latitude, Lon: p.Longitude, Depth: p.Depth}
		}
		return points, depths
	default:
		return nil, depths
	}
}

// plotWeb renders every node as a red point and, for each currently linked
// site, the node and site positions as faint grey points (no connecting
// lines are drawn, and nodes are not colored by link count), following
// generateRingPlot's plot.New/Save shape.
func plotWeb(w *web.Web, outPath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Web %q node lattice", w.Name)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	nodes := w.Nodes()

	linkLines := make(plotter.XYs, 0, len(nodes)*2)
	for _, n := range nodes {
		for _, link := range n.Links() {
			linkLines = append(linkLines, plotter.XY{X: n.Point.Lon, Y: n.Point.Lat})
			linkLines = append(linkLines, plotter.XY{X: link.Site.Point.Lon, Y: link.Site.Point.Lat})
		}
	}
	if len(linkLines) > 0 {
		linkScatter, err := plotter.NewScatter(linkLines)
		if err != nil {
			return fmt.Errorf("build link scatter: %w", err)
		}
		linkScatter.Color = color.RGBA{R: 180, G: 180, B: 180, A: 120}
		linkScatter.Radius = vg.Points(1)
		p.Add(linkScatter)
	}

	nodePts := make(plotter.XYs, len(nodes))
	for i, n := range nodes {
		nodePts[i] = plotter.XY{X: n.Point.Lon, Y: n.Point.Lat}
	}
	nodeScatter, err := plotter.NewScatter(nodePts)
	if err != nil {
		return fmt.Errorf("build node scatter: %w", err)
	}
	nodeScatter.Color = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	nodeScatter.Radius = vg.Points(2)
	p.Add(nodeScatter)
	p.Legend.Add(fmt.Sprintf("%d nodes", len(nodes)), nodeScatter)

	if err := p.Save(14*vg.Inch, 10*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
