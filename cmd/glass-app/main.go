// Command glass-app is the nucleation core's standalone process: it loads
// a Configuration file, builds the travel-time tables and detection webs
// it names, rehydrates the site registry from SQLite, and runs the
// nucleation/hypo thread pools until signalled to stop.
//
// Usage mirrors the historical CLI contract exactly:
//
//	glass-app <configfile> [logname] [noconsole]
//
// configfile is required; logname (default "glass-app.log") names a file
// every log line is teed to in addition to stdout, unless "noconsole" is
// also given, in which case stdout is suppressed and only the log file is
// written. Flags (grounded on cmd/radar's flag-set style) override a
// handful of runtime knobs the legacy contract leaves to the operator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/usgs/neic-glass3-sub001/internal/api"
	"github.com/usgs/neic-glass3-sub001/internal/config"
	"github.com/usgs/neic-glass3-sub001/internal/db"
	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/monitoring"
	"github.com/usgs/neic-glass3-sub001/internal/nucleate"
	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/taper"
	"github.com/usgs/neic-glass3-sub001/internal/timeutil"
	"github.com/usgs/neic-glass3-sub001/internal/transport/triggerstream"
	"github.com/usgs/neic-glass3-sub001/internal/travel"
	"github.com/usgs/neic-glass3-sub001/internal/trigger"
	"github.com/usgs/neic-glass3-sub001/internal/version"
	"github.com/usgs/neic-glass3-sub001/internal/web"
	"github.com/usgs/neic-glass3-sub001/internal/workpool"
)

var (
	listen      = flag.String("listen", ":8080", "HTTP listen address for the admin/debug surface")
	grpcListen  = flag.String("grpc-listen", ":50051", "gRPC listen address for trigger streaming")
	dbPathFlag  = flag.String("db-path", "glass.db", "path to sqlite DB file for site/hypo persistence")
	pickQueue   = flag.Int("pick-queue-capacity", 1000, "bounded pick queue capacity (§6 backpressure)")
	versionFlag = flag.Bool("version", false, "print version information and exit")
)

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Printf("glass-app v%s (git SHA: %s)\n", version.Version, version.GitSHA)
		os.Exit(0)
	}

	configFile := flag.Arg(0)
	if configFile == "" {
		fmt.Fprintln(os.Stderr, "usage: glass-app <configfile> [logname] [noconsole]")
		os.Exit(1)
	}
	logName := "glass-app.log"
	if flag.Arg(1) != "" {
		logName = flag.Arg(1)
	}
	noConsole := flag.Arg(2) == "noconsole"

	logFile, err := configureLogging(logName, noConsole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	if err := run(configFile); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

// configureLogging tees log output to logName in the working directory,
// additionally writing to stdout unless noConsole suppresses it,
// grounded on cmd/radar's VELOCITY_DEBUG_LOG file-plus-stdout wiring.
func configureLogging(logName string, noConsole bool) (*os.File, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	f, err := os.OpenFile(logName, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", logName, err)
	}
	if noConsole {
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	return f, nil
}

func run(configFile string) error {
	log.Printf("glass-app v%s (git SHA: %s) starting with config %s", version.Version, version.GitSHA, configFile)

	root, err := config.LoadRoot(configFile)
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

	ttt, err := buildTTT(root, initCfg)
	if err != nil {
		return fmt.Errorf("build travel-time tables: %w", err)
	}

	database, err := db.NewDB(*dbPathFlag)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	registry := site.NewRegistry(initCfg.GetSitePickMax())
	if err := rehydrateRegistry(registry, database); err != nil {
		return fmt.Errorf("rehydrate site registry: %w", err)
	}

	webs := make(map[string]*web.Web, len(grids))
	for _, g := range grids {
		w, err := buildWeb(g, ttt, initCfg)
		if err != nil {
			return fmt.Errorf("build web %q: %w", g.Name, err)
		}
		registry.Watch(w)
		w.RefreshEligible(registry)
		points, depths := gridPoints(g)
		w.LoadGrid(points, depths)
		webs[g.Name] = w
		log.Printf("web %q: %d nodes loaded", g.Name, len(w.Nodes()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	depthPrior := trigger.NewRunningDepthPrior(10)
	recorder := api.NewTriggerRecorder(0)
	streamServer := triggerstream.NewServer()
	forwarder := fanoutForwarder{recorder, depthPriorForwarder{depthPrior}, streamServer}

	sink := trigger.NewChannelSink(initCfg.GetHypoMax(), forwarder)
	sink.Start(ctx)
	defer sink.Stop()

	nuc := nucleate.New(webs, sink)
	queue := pick.NewQueue(*pickQueue)

	pool, err := workpool.New(initCfg.GetNumNucleationThreads(), 0)
	if err != nil {
		return fmt.Errorf("build nucleation pool: %w", err)
	}
	pool.Start(ctx)
	defer pool.Close()

	supervisor := workpool.NewSupervisor(pool, 30*time.Second, timeutil.RealClock{}, func(queueDepth int) {
		log.Printf("nucleation pool stalled: queue depth %d, stopping", queueDepth)
		stop()
	})
	go supervisor.Run(ctx)

	for i := 0; i < initCfg.GetNumNucleationThreads(); i++ {
		pool.Submit(func() { drainPicks(ctx, queue, registry, nuc) })
	}

	go func() {
		if err := ingestPicks(ctx, os.Stdin, registry, queue); err != nil {
			log.Printf("pick ingest stopped: %v", err)
		}
	}()

	grpcServer := grpc.NewServer()
	triggerstream.RegisterService(grpcServer, streamServer)
	lis, err := net.Listen("tcp", *grpcListen)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", *grpcListen, err)
	}
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("triggerstream gRPC server stopped: %v", err)
		}
	}()
	defer grpcServer.GracefulStop()

	adminServer := api.NewServer(database, recorder)
	mux := http.NewServeMux()
	adminServer.AttachAdminRoutes(mux)
	httpServer := &http.Server{Addr: *listen, Handler: mux}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("admin HTTP server stopped: %v", err)
		}
	}()

	log.Printf("glass-app ready: admin=%s grpc=%s webs=%d", *listen, *grpcListen, len(webs))

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	return nil
}

// drainPicks is one nucleation-thread iteration loop (§6 "Nucleation
// pool ... goroutines pop from the pick queue").
func drainPicks(ctx context.Context, queue *pick.Queue, registry *site.Registry, nuc *nucleate.Nucleator) {
	for {
		p, ok := queue.Pop(ctx)
		if !ok {
			return
		}
		s := registry.Get(site.ParseKey(p.SiteKey))
		if s == nil {
			monitoring.Logf("glass-app: pick %s references unknown site %s", p.ID, p.SiteKey)
			continue
		}
		for _, err := range nuc.HandlePick(ctx, s, p) {
			monitoring.Logf("glass-app: nucleation error: %v", err)
		}
	}
}

// fanoutForwarder dispatches every trigger to each of its collaborators in
// turn, so the ChannelSink's single Forwarder slot can feed the debug
// recorder, the depth-prior running statistic, and the gRPC stream at once.
type fanoutForwarder []trigger.Forwarder

func (f fanoutForwarder) Forward(ctx context.Context, t trigger.Trigger) error {
	var firstErr error
	for _, fwd := range f {
		if err := fwd.Forward(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// depthPriorForwarder adapts RunningDepthPrior.Observe to trigger.Forwarder
// so a trigger's depth feeds the running statistic as it is dispatched.
type depthPriorForwarder struct {
	prior *trigger.RunningDepthPrior
}

func (f depthPriorForwarder) Forward(_ context.Context, t trigger.Trigger) error {
	f.prior.Observe(t.Depth)
	return nil
}

// rehydrateRegistry loads every persisted site and replays it into a
// fresh registry, restoring location and usability flags (§4.3).
func rehydrateRegistry(registry *site.Registry, database *db.DB) error {
	persisted, err := database.LoadSites()
	if err != nil {
		return err
	}
	for _, p := range persisted {
		s, _ := registry.Upsert(p.Key, p.Point)
		s.SetEnabled(p.Enabled)
		s.SetUseForTeleseismic(p.UseForTeleseismic)
		s.SetQuality(p.Quality)
	}
	log.Printf("rehydrated %d sites from %s", len(persisted), *dbPathFlag)
	return nil
}

// buildTTT loads the default nucleation phase and every association
// phase's travel-time table, wiring each association phase's taper/assoc
// window from its Grid-independent Initialize-file configuration (§4.2).
func buildTTT(root *config.Root, initCfg *config.Initialize) (*travel.TTT, error) {
	ttt := travel.NewTTT()

	tbl, err := loadTravelTable(root, initCfg.DefaultNucleationPhase.TravFile)
	if err != nil {
		return nil, err
	}
	if err := ttt.AddPhase(tbl); err != nil {
		return nil, err
	}

	for _, ap := range initCfg.AssociationPhases {
		tbl, err := loadTravelTable(root, ap.TravFile)
		if err != nil {
			return nil, err
		}
		if err := ttt.AddPhase(tbl); err != nil {
			return nil, err
		}
		if ap.Range != nil {
			r := *ap.Range
			ttt.SetWeightTaper(ap.PhaseName, taper.CosineRange{X1: r[0], X2: r[1], X3: r[2], X4: r[3]})
		}
		if ap.Assoc != nil {
			a := *ap.Assoc
			ttt.SetAssocWindow(ap.PhaseName, taper.AssocWindow{Lo: a[0], Hi: a[1]})
		}
	}
	return ttt, nil
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

// buildWeb translates a Grid config into a web.Web ready for LoadGrid.
func buildWeb(g *config.Grid, ttt *travel.TTT, initCfg *config.Initialize) (*web.Web, error) {
	cfg := web.DefaultConfig()
	cfg.ResolutionKM = g.GetResolution()
	cfg.DetectN = g.GetDetect()
	cfg.NCut = g.GetNucleate()
	cfg.DThresh = g.GetThresh()
	cfg.PrimaryPhase = g.NucleationPhases.Phase1
	cfg.SecondaryPhase = g.NucleationPhases.Phase2
	cfg.TeleseismicOnly = g.GetUseOnlyTeleseismicStations()
	cfg.DynamicUpdates = g.GetUpdate()
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

	w := web.New(g.Name, cfg, ttt)
	if n := initCfg.GetNumWebThreads(); n > 0 {
		jobPool, err := workpool.New(n, 0)
		if err != nil {
			return nil, err
		}
		jobPool.Start(context.Background())
		w.SetJobRunner(jobPool)
	}
	return w, nil
}

// gridPoints translates a Grid's Cmd into the lattice of node locations
// and the cross-product depth list (§4.4.1).
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
