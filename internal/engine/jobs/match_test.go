package jobs

import (
	"strings"
	"testing"
)

var scorePrefs = Preferences{
	Keywords:   []string{"golang", "kubernetes", "postgresql"},
	Locations:  []string{"Cape Town", "Johannesburg"},
	Industries: []string{"fintech"},
	SalaryMin:  400000,
}

var scorePosting = JobPosting{
	Source:      "careers24",
	ExternalID:  "42",
	Title:       "Senior Golang Engineer",
	Company:     "Acme Fintech",
	Location:    "Cape Town, Western Cape",
	Description: "Build payment APIs in golang with kubernetes and postgresql in a fintech scale-up.",
	SalaryMin:   420000,
	SalaryMax:   560000,
	ApplyURL:    "https://careers24.com/jobs/42/apply",
}

func TestScoreFullMatch(t *testing.T) {
	score, reasons := Score(scorePosting, scorePrefs)
	if score != 100 {
		t.Errorf("score = %d, want 100 (reasons: %v)", score, reasons)
	}
	joined := strings.Join(reasons, "; ")
	for _, want := range []string{"golang", "kubernetes", "postgresql", "Cape Town", "fintech", "salary meets"} {
		if !strings.Contains(joined, want) {
			t.Errorf("reasons missing %q: %v", want, reasons)
		}
	}
}

func TestScoreBounded(t *testing.T) {
	postings := []JobPosting{
		{},
		scorePosting,
		{Title: strings.Repeat("golang ", 500), Description: strings.Repeat("kubernetes fintech cape town ", 200), Location: "Cape Town", SalaryMax: 1e9},
	}
	for _, p := range postings {
		score, _ := Score(p, scorePrefs)
		if score < 0 || score > 100 {
			t.Errorf("score %d out of [0,100] for %q", score, p.Title)
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	s1, r1 := Score(scorePosting, scorePrefs)
	s2, r2 := Score(scorePosting, scorePrefs)
	if s1 != s2 {
		t.Errorf("score not deterministic: %d != %d", s1, s2)
	}
	if strings.Join(r1, "|") != strings.Join(r2, "|") {
		t.Errorf("reasons not deterministic:\n%v\n%v", r1, r2)
	}
}

func TestScorePartialKeywords(t *testing.T) {
	p := scorePosting
	p.Description = "Build APIs in golang." // 1 of 3 keywords
	score, reasons := Score(p, scorePrefs)
	// 50/3 + 20 + 15 + 15 = 66
	if score != 66 {
		t.Errorf("score = %d, want 66 (reasons: %v)", score, reasons)
	}
	if !strings.Contains(strings.Join(reasons, ";"), "missing skills: kubernetes, postgresql") {
		t.Errorf("missing-skills reason absent: %v", reasons)
	}
}

func TestScoreSalaryBelowFloor(t *testing.T) {
	p := scorePosting
	p.SalaryMin, p.SalaryMax = 200000, 300000
	score, reasons := Score(p, scorePrefs)
	if score != 85 {
		t.Errorf("score = %d, want 85 (reasons: %v)", score, reasons)
	}
	if !strings.Contains(strings.Join(reasons, ";"), "salary below") {
		t.Errorf("expected salary-below reason: %v", reasons)
	}
}

func TestScoreSalaryUnlisted(t *testing.T) {
	p := scorePosting
	p.SalaryMin, p.SalaryMax = 0, 0
	score, _ := Score(p, scorePrefs)
	if score != 92 { // 50+20+15+7
		t.Errorf("score = %d, want 92", score)
	}
}

func TestScoreRemoteCountsAsLocationMatch(t *testing.T) {
	p := scorePosting
	p.Location = "Remote (South Africa)"
	score, reasons := Score(p, scorePrefs)
	if score != 100 {
		t.Errorf("score = %d, want 100 (reasons: %v)", score, reasons)
	}
}

func TestScoreEmptyPreferences(t *testing.T) {
	score, _ := Score(scorePosting, Preferences{})
	if score != 100 {
		t.Errorf("empty preferences should be neutral, got %d", score)
	}
}

func TestTokenizeTechSuffixes(t *testing.T) {
	kw := tokenize("We use C++ and Node.js daily")
	for _, want := range []string{"c++", "node.js", "daily"} {
		if !kw[want] {
			t.Errorf("tokenize missing %q: %v", want, kw)
		}
	}
	if kw["and"] {
		t.Error("stop word retained")
	}
}
