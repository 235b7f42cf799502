package types

import "testing"

func TestTiers_Classify(t *testing.T) {
	tiers := Tiers{Watch: 3000, Warning: 5000, Critical: 30000}

	tests := []struct {
		name   string
		v      float64
		want   Severity
		wantOK bool
	}{
		{"below watch", 2999.99, "", false},
		{"exactly watch", 3000, SeverityWatch, true},
		{"between watch and warning", 3800, SeverityWatch, true},
		{"exactly warning", 5000, SeverityWarning, true},
		{"just below critical", 29999, SeverityWarning, true},
		{"exactly critical", 30000, SeverityCritical, true},
		{"far above critical is still one tier", 1e9, SeverityCritical, true},
		{"zero", 0, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tiers.Classify(tc.v)
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Classify(%v) = (%q, %v), want (%q, %v)", tc.v, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestSeverity_Rank(t *testing.T) {
	if !(SeverityCritical.Rank() < SeverityWarning.Rank() && SeverityWarning.Rank() < SeverityWatch.Rank()) {
		t.Errorf("ranks not ordered critical < warning < watch: %d %d %d",
			SeverityCritical.Rank(), SeverityWarning.Rank(), SeverityWatch.Rank())
	}
	if Severity("bogus").Rank() <= SeverityWatch.Rank() {
		t.Errorf("unknown severity should sort after watch")
	}
}

func TestTiers_Ascending(t *testing.T) {
	if !(Tiers{Watch: 5, Warning: 6, Critical: 10}).Ascending() {
		t.Error("5/6/10 should be ascending")
	}
	if (Tiers{Watch: 5, Warning: 5, Critical: 10}).Ascending() {
		t.Error("5/5/10 should not be ascending")
	}
}
