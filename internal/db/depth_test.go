package db

import "testing"

func TestRecordAndLoadRecentDepths(t *testing.T) {
	d := openTestDB(t)

	for _, depth := range []float64{10, 12, 8, 15} {
		if err := d.RecordDepthObservation(35.0, -117.0, depth); err != nil {
			t.Fatalf("RecordDepthObservation: %v", err)
		}
	}

	depths, err := d.LoadRecentDepths(10)
	if err != nil {
		t.Fatalf("LoadRecentDepths: %v", err)
	}
	want := []float64{10, 12, 8, 15}
	if len(depths) != len(want) {
		t.Fatalf("len(depths) = %d, want %d", len(depths), len(want))
	}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("depths[%d] = %v, want %v (oldest-first order)", i, depths[i], want[i])
		}
	}
}

func TestLoadRecentDepthsRespectsLimit(t *testing.T) {
	d := openTestDB(t)
	for i := 0; i < 5; i++ {
		if err := d.RecordDepthObservation(0, 0, float64(i)); err != nil {
			t.Fatalf("RecordDepthObservation: %v", err)
		}
	}
	depths, err := d.LoadRecentDepths(2)
	if err != nil {
		t.Fatalf("LoadRecentDepths: %v", err)
	}
	if len(depths) != 2 {
		t.Fatalf("len(depths) = %d, want 2", len(depths))
	}
	if depths[0] != 3 || depths[1] != 4 {
		t.Errorf("depths = %v, want the 2 most recent in ascending order [3 4]", depths)
	}
}
