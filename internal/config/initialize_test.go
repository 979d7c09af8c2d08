package config

import (
	"testing"
	"time"
)

func TestLoadInitializeRequiresDefaultPhase(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "glass.json", `{"Configuration":"glass-app","InitializeFile":"init.json"}`)
	writeJSON(t, dir, "init.json", `{"DefaultNucleationPhase":{"PhaseName":"","TravFile":"p.trv"}}`)

	root, err := LoadRoot(dir + "/glass.json")
	if err != nil {
		t.Fatalf("LoadRoot: %v", err)
	}
	if _, err := LoadInitialize(root); err == nil {
		t.Fatal("expected an error for an empty DefaultNucleationPhase.PhaseName")
	}
}

func TestLoadInitializeAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "glass.json", `{"Configuration":"glass-app","InitializeFile":"init.json"}`)
	writeJSON(t, dir, "init.json", `{"DefaultNucleationPhase":{"PhaseName":"P","TravFile":"p.trv"}}`)

	root, err := LoadRoot(dir + "/glass.json")
	if err != nil {
		t.Fatalf("LoadRoot: %v", err)
	}
	init, err := LoadInitialize(root)
	if err != nil {
		t.Fatalf("LoadInitialize: %v", err)
	}
	if init.GetNumNucleationThreads() != 5 {
		t.Errorf("GetNumNucleationThreads() = %d, want 5", init.GetNumNucleationThreads())
	}
	if init.GetNumHypoThreads() != 3 {
		t.Errorf("GetNumHypoThreads() = %d, want 3", init.GetNumHypoThreads())
	}
	if init.Params.GetThresh() != 2.5 {
		t.Errorf("Params.GetThresh() = %v, want 2.5", init.Params.GetThresh())
	}
	if init.Params.GetNucleate() != 7 {
		t.Errorf("Params.GetNucleate() = %d, want 7", init.Params.GetNucleate())
	}
	if init.GetSiteLookupInterval() != time.Hour {
		t.Errorf("GetSiteLookupInterval() = %v, want 1h", init.GetSiteLookupInterval())
	}
}

func TestLoadInitializeOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "glass.json", `{"Configuration":"glass-app","InitializeFile":"init.json"}`)
	writeJSON(t, dir, "init.json", `{
		"DefaultNucleationPhase":{"PhaseName":"P","TravFile":"p.trv"},
		"NumNucleationThreads": 12,
		"Params": {"Thresh": 3.1, "Nucleate": 9}
	}`)

	root, err := LoadRoot(dir + "/glass.json")
	if err != nil {
		t.Fatalf("LoadRoot: %v", err)
	}
	init, err := LoadInitialize(root)
	if err != nil {
		t.Fatalf("LoadInitialize: %v", err)
	}
	if init.GetNumNucleationThreads() != 12 {
		t.Errorf("GetNumNucleationThreads() = %d, want 12", init.GetNumNucleationThreads())
	}
	if init.Params.GetThresh() != 3.1 {
		t.Errorf("Params.GetThresh() = %v, want 3.1", init.Params.GetThresh())
	}
	if init.Params.GetNucleate() != 9 {
		t.Errorf("Params.GetNucleate() = %d, want 9", init.Params.GetNucleate())
	}
}

func TestAssociationPhaseRequiresRangeOrAssoc(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "glass.json", `{"Configuration":"glass-app","InitializeFile":"init.json"}`)
	writeJSON(t, dir, "init.json", `{
		"DefaultNucleationPhase":{"PhaseName":"P","TravFile":"p.trv"},
		"AssociationPhases": [{"PhaseName":"S","TravFile":"s.trv"}]
	}`)
	root, err := LoadRoot(dir + "/glass.json")
	if err != nil {
		t.Fatalf("LoadRoot: %v", err)
	}
	if _, err := LoadInitialize(root); err == nil {
		t.Fatal("expected an error for an AssociationPhase with neither Range nor Assoc")
	}
}
