package web

import (
	"testing"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/pick"
	site2 "github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/travel"
)

// buildTestNode links a single node to n synthetic sites spread around
// the node at nearly the same distance, each with a flat 10s/deg travel
// time (so tt1 ~ equal and t_org = t_pick - tt1 lands consistently).
func buildTestNode(t *testing.T, nSites int, ncut int, dthresh float64) (*Node, []*site2.Site) {
	t.Helper()
	reg := site2.NewRegistry(10)
	ttt := newFlatTTT(t)

	var sites []*site2.Site
	for i := 0; i < nSites; i++ {
		lat := 1.0 + float64(i)*0.01
		sites = append(sites, makeSite(reg, string(rune('A'+i)), lat, 0))
	}

	cfg := DefaultConfig()
	cfg.DetectN = nSites
	cfg.NCut = ncut
	cfg.DThresh = dthresh
	cfg.ResolutionKM = 20
	w := New("test", cfg, ttt)
	w.RefreshEligible(reg)
	w.LoadGrid([]geo.Point{{Lat: 0, Lon: 0}}, nil)

	return w.Nodes()[0], sites
}

func TestNucleateEmptyProducesNoTrigger(t *testing.T) {
	n, _ := buildTestNode(t, 10, 7, 2.5)
	_, ok := n.Nucleate(0)
	if ok {
		t.Fatal("Nucleate on an empty pick set fired a trigger")
	}
}

func TestNucleateFiresOnCoincidentPicks(t *testing.T) {
	n, sites := buildTestNode(t, 10, 7, 2.5)
	// Each site's link travel time is ~ delta*10s; push a pick exactly at
	// the predicted arrival for origin time 0.
	for _, l := range n.Links() {
		l.Site.PushPick(&pick.Pick{ID: l.Site.Key.Station, Time: l.TT1})
	}
	_ = sites
	trg, ok := n.Nucleate(0)
	if !ok {
		t.Fatal("Nucleate did not fire despite coincident picks on every link")
	}
	if trg.Count < 7 {
		t.Errorf("Count = %d, want >= 7", trg.Count)
	}
}

func TestNucleateRequiresMinimumCoincidence(t *testing.T) {
	n, _ := buildTestNode(t, 10, 7, 2.5)
	links := n.Links()
	// Only push picks on 3 of the 10 links: below nCut=7.
	for i := 0; i < 3; i++ {
		l := links[i]
		l.Site.PushPick(&pick.Pick{ID: l.Site.Key.Station, Time: l.TT1})
	}
	_, ok := n.Nucleate(0)
	if ok {
		t.Fatal("Nucleate fired with only 3 of 10 sites reporting (nCut=7)")
	}
}

func TestNucleateRejectsPicksPastTeleseismicWindow(t *testing.T) {
	n, _ := buildTestNode(t, 10, 7, 2.5)
	for _, l := range n.Links() {
		// 1000.01s after predicted arrival relative to tOrg: tObs > 1000.
		l.Site.PushPick(&pick.Pick{ID: l.Site.Key.Station, Time: l.TT1 + defaultTeleseismicWindowSec + 0.01})
	}
	_, ok := n.Nucleate(0)
	if ok {
		t.Fatal("Nucleate fired using a pick past the 1000s teleseismic window")
	}
}

func TestNucleateAtMostOnePickPerSiteKeepsBest(t *testing.T) {
	n, _ := buildTestNode(t, 10, 7, 2.5)
	links := n.Links()
	site := links[0].Site
	// Push a marginal pick then a spot-on one; only the better one (sig
	// closer to TT1) should count toward the contributing list.
	site.PushPick(&pick.Pick{ID: "marginal", Time: links[0].TT1 + 50})
	site.PushPick(&pick.Pick{ID: "exact", Time: links[0].TT1})
	for i := 1; i < len(links); i++ {
		links[i].Site.PushPick(&pick.Pick{ID: links[i].Site.Key.Station, Time: links[i].TT1})
	}

	trg, ok := n.Nucleate(0)
	if !ok {
		t.Fatal("Nucleate did not fire")
	}
	sawExact, sawMarginal := false, false
	for _, p := range trg.Picks {
		if p.ID == "exact" {
			sawExact = true
		}
		if p.ID == "marginal" {
			sawMarginal = true
		}
	}
	if !sawExact {
		t.Error("best-fitting pick 'exact' not present in trigger picks")
	}
	if sawMarginal {
		t.Error("a second pick from the same site leaked into the trigger picks")
	}
}

func TestNucleateDisabledNodeNeverFires(t *testing.T) {
	n, _ := buildTestNode(t, 10, 7, 2.5)
	for _, l := range n.Links() {
		l.Site.PushPick(&pick.Pick{ID: l.Site.Key.Station, Time: l.TT1})
	}
	// Force the node disabled mid-mutation (simulating a link rewrite in
	// progress).
	n.mu.Lock()
	n.enabled = false
	n.mu.Unlock()

	_, ok := n.Nucleate(0)
	if ok {
		t.Fatal("a disabled node fired a trigger")
	}
}

func TestNucleateHonorsConfiguredWindow(t *testing.T) {
	reg := site2.NewRegistry(10)
	ttt := newFlatTTT(t)

	var sites []*site2.Site
	for i := 0; i < 10; i++ {
		sites = append(sites, makeSite(reg, string(rune('A'+i)), 1.0+float64(i)*0.01, 0))
	}

	cfg := DefaultConfig()
	cfg.DetectN = 10
	cfg.NCut = 7
	cfg.DThresh = 2.5
	cfg.ResolutionKM = 20
	cfg.TeleseismicWindowSec = 10 // far tighter than the spec default of 1000s
	w := New("test", cfg, ttt)
	w.RefreshEligible(reg)
	w.LoadGrid([]geo.Point{{Lat: 0, Lon: 0}}, nil)
	n := w.Nodes()[0]

	for _, l := range n.Links() {
		// 20s late: inside the 1000s default but past this web's 10s window.
		l.Site.PushPick(&pick.Pick{ID: l.Site.Key.Station, Time: l.TT1 + 20})
	}
	if _, ok := n.Nucleate(0); ok {
		t.Fatal("Nucleate fired using a pick past the web's configured 10s window")
	}
}

// travel.NoTime is referenced to keep the travel import meaningful for
// future link-construction edge cases exercised elsewhere in this package.
var _ = travel.NoTime
