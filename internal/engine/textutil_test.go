package engine

import "testing"

func TestParseSalary(t *testing.T) {
	tests := []struct {
		in       string
		min, max float64
	}{
		{"R300 000 - R420 000 per annum", 300000, 420000},
		{"R25,000/month", 25000, 25000},
		{"Market related", 0, 0},
		{"", 0, 0},
		{"R420 000 - R300 000", 300000, 420000}, // reversed range
		{"up to R550000", 550000, 550000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			min, max := ParseSalary(tt.in)
			if min != tt.min || max != tt.max {
				t.Errorf("ParseSalary(%q) = (%v, %v), want (%v, %v)", tt.in, min, max, tt.min, tt.max)
			}
		})
	}
}

func TestAnnualiseSalary(t *testing.T) {
	if got := AnnualiseSalary(25000, 60000); got != 300000 {
		t.Errorf("monthly figure not annualised: got %v", got)
	}
	if got := AnnualiseSalary(300000, 60000); got != 300000 {
		t.Errorf("annual figure changed: got %v", got)
	}
	if got := AnnualiseSalary(0, 60000); got != 0 {
		t.Errorf("zero changed: got %v", got)
	}
}

func TestCleanHTML(t *testing.T) {
	got := CleanHTML("  <p>Senior <b>Go</b> Developer</p> ")
	if got != "Senior Go Developer" {
		t.Errorf("CleanHTML = %q", got)
	}
}

func TestCollapseSpaces(t *testing.T) {
	if got := CollapseSpaces("  a \n b\t\tc "); got != "a b c" {
		t.Errorf("CollapseSpaces = %q", got)
	}
}
