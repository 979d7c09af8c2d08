package main

import (
	"context"
	"testing"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/config"
	"github.com/usgs/neic-glass3-sub001/internal/nucleate"
	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/trigger"
	"github.com/usgs/neic-glass3-sub001/internal/web"
)

// TestFlagDefaults verifies every runtime-knob flag exists with the
// documented default, mirroring cmd/radar's flag-default tests.
func TestFlagDefaults(t *testing.T) {
	if listen == nil || *listen != ":8080" {
		t.Errorf("listen default = %v, want :8080", listen)
	}
	if grpcListen == nil || *grpcListen != ":50051" {
		t.Errorf("grpcListen default = %v, want :50051", grpcListen)
	}
	if dbPathFlag == nil || *dbPathFlag != "glass.db" {
		t.Errorf("dbPathFlag default = %v, want glass.db", dbPathFlag)
	}
	if pickQueue == nil || *pickQueue != 1000 {
		t.Errorf("pickQueue default = %v, want 1000", pickQueue)
	}
	if versionFlag == nil || *versionFlag != false {
		t.Errorf("versionFlag default = %v, want false", versionFlag)
	}
}

type fakeForwarder struct {
	forwarded []trigger.Trigger
	err       error
}

func (f *fakeForwarder) Forward(_ context.Context, tr trigger.Trigger) error {
	f.forwarded = append(f.forwarded, tr)
	return f.err
}

func TestFanoutForwarderDispatchesToAllCollaborators(t *testing.T) {
	a, b := &fakeForwarder{}, &fakeForwarder{}
	f := fanoutForwarder{a, b}

	tr := trigger.Trigger{WebName: "global-P", Depth: 33}
	if err := f.Forward(context.Background(), tr); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if len(a.forwarded) != 1 || a.forwarded[0] != tr {
		t.Errorf("first collaborator did not see the trigger: %+v", a.forwarded)
	}
	if len(b.forwarded) != 1 || b.forwarded[0] != tr {
		t.Errorf("second collaborator did not see the trigger: %+v", b.forwarded)
	}
}

func TestFanoutForwarderReturnsFirstError(t *testing.T) {
	wantErr := context.Canceled
	a := &fakeForwarder{err: wantErr}
	b := &fakeForwarder{}
	f := fanoutForwarder{a, b}

	err := f.Forward(context.Background(), trigger.Trigger{})
	if err != wantErr {
		t.Errorf("Forward err = %v, want %v", err, wantErr)
	}
	if len(b.forwarded) != 1 {
		t.Error("later collaborator was skipped after an earlier one errored")
	}
}

func TestDepthPriorForwarderObservesDepth(t *testing.T) {
	prior := trigger.NewRunningDepthPrior(1)
	f := depthPriorForwarder{prior}

	if err := f.Forward(context.Background(), trigger.Trigger{Depth: 42}); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	depth, ok := prior.Lookup(0, 0)
	if !ok {
		t.Fatal("Lookup reported not-ok after MinSamples observations")
	}
	if depth != 42 {
		t.Errorf("Lookup depth = %v, want 42", depth)
	}
}

func TestGridPointsDefaultsDepthToSurface(t *testing.T) {
	g := &config.Grid{Cmd: config.GridExplicit, Points: []config.ExplicitPoint{{Latitude: 1, Longitude: 2}}}
	_, depths := gridPoints(g)
	if len(depths) != 1 || depths[0] != 0 {
		t.Errorf("depths = %v, want [0] when Z is unset", depths)
	}
}

func TestGridPointsExplicitUsesConfiguredPoints(t *testing.T) {
	g := &config.Grid{
		Cmd: config.GridExplicit,
		Points: []config.ExplicitPoint{
			{Latitude: 34, Longitude: -106, Depth: 10},
			{Latitude: 35, Longitude: -107, Depth: 20},
		},
		Z: []float64{0, 50, 100},
	}
	points, depths := gridPoints(g)
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if points[0].Lat != 34 || points[0].Lon != -106 {
		t.Errorf("points[0] = %+v, want Lat=34 Lon=-106", points[0])
	}
	if len(depths) != 3 {
		t.Errorf("depths = %v, want the 3 configured values", depths)
	}
}

func TestGridPointsGlobalUsesFibonacciLattice(t *testing.T) {
	resolution := 500.0
	g := &config.Grid{Cmd: config.GridGlobal, Resolution: &resolution}
	points, _ := gridPoints(g)
	if len(points) == 0 {
		t.Error("expected a non-empty global lattice")
	}
}

func TestDrainPicksSkipsUnknownSiteWithoutPanicking(t *testing.T) {
	registry := site.NewRegistry(10)
	sink := trigger.NewChannelSink(1, &fakeForwarder{})
	sinkCtx, stopSink := context.WithCancel(context.Background())
	sink.Start(sinkCtx)
	defer stopSink()

	nuc := nucleate.New(map[string]*web.Web{}, sink)
	queue := pick.NewQueue(1)
	if err := queue.Push(&pick.Pick{ID: "p1", SiteKey: "UNKNOWN.BHZ.XX.00", Time: 1}); err != nil {
		t.Fatalf("Push: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		drainPicks(ctx, queue, registry, nuc)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drainPicks did not return after its context was cancelled")
	}
}
