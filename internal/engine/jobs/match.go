package jobs

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Component weights; the total is always clamped to [0,100].
const (
	weightKeywords = 50
	weightLocation = 20
	weightIndustry = 15
	weightSalary   = 15

	// Points granted when a posting lists no salary at all: half credit
	// rather than full (the floor is unverified) or zero (most SA boards
	// omit salary, which would bury every posting).
	salaryUnlistedPoints = 7
)

// matchStopWords filters common English words that add noise to keyword matching.
var matchStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "with": true, "you": true,
	"are": true, "have": true, "will": true, "this": true, "that": true,
	"from": true, "our": true, "your": true, "their": true, "they": true,
	"work": true, "team": true, "role": true, "job": true, "join": true,
	"about": true, "which": true, "what": true, "who": true, "how": true,
	"can": true, "not": true, "but": true, "all": true, "also": true,
	"more": true, "than": true, "into": true, "has": true, "its": true,
	"was": true, "were": true, "been": true, "each": true, "new": true,
	"use": true, "using": true, "used": true, "well": true, "high": true,
	"good": true, "able": true, "get": true, "set": true, "such": true,
}

// tokenize splits text into lowercase keywords, skipping stop words.
// Preserves tech suffixes like "c++", "c#", "node.js" by treating + # . as
// word chars.
func tokenize(text string) map[string]bool {
	kw := make(map[string]bool)
	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		w = strings.TrimRight(w, ".") // drop trailing dots
		if len([]rune(w)) >= 3 && !matchStopWords[w] {
			kw[w] = true
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return kw
}

// Score computes how well a posting fits the user's preferences. Returns an
// integer in [0,100] and the ordered criteria behind it. Deterministic and
// side-effect free: equal inputs always produce equal output.
func Score(p JobPosting, prefs Preferences) (int, []string) {
	var score int
	var reasons []string

	text := tokenize(p.Title + " " + p.Description)

	// Keywords: fraction of the user's keyword set present in the posting.
	if len(prefs.Keywords) == 0 {
		score += weightKeywords
		reasons = append(reasons, "no keywords specified")
	} else {
		var matched, missing []string
		for _, k := range prefs.Keywords {
			hit := true
			for t := range tokenize(k) { // multi-word keywords need every token
				if !text[t] {
					hit = false
					break
				}
			}
			if hit {
				matched = append(matched, strings.ToLower(k))
			} else {
				missing = append(missing, strings.ToLower(k))
			}
		}
		sort.Strings(matched)
		sort.Strings(missing)
		score += weightKeywords * len(matched) / len(prefs.Keywords)
		if len(matched) > 0 {
			reasons = append(reasons, "matched skills: "+strings.Join(matched, ", "))
		}
		if len(missing) > 0 {
			reasons = append(reasons, "missing skills: "+strings.Join(missing, ", "))
		}
	}

	// Location: preferred location named in the posting, or remote work.
	loc := strings.ToLower(p.Location)
	switch {
	case len(prefs.Locations) == 0:
		score += weightLocation
	case strings.Contains(loc, "remote"):
		score += weightLocation
		reasons = append(reasons, "remote position")
	default:
		matchedLoc := ""
		for _, l := range prefs.Locations {
			if l != "" && strings.Contains(loc, strings.ToLower(l)) {
				matchedLoc = l
				break
			}
		}
		if matchedLoc != "" {
			score += weightLocation
			reasons = append(reasons, "location match: "+matchedLoc)
		} else {
			reasons = append(reasons, "outside preferred locations")
		}
	}

	// Industry: any preferred industry term in title or description.
	if len(prefs.Industries) == 0 {
		score += weightIndustry
	} else {
		matchedInd := ""
		body := strings.ToLower(p.Title + " " + p.Description)
		for _, ind := range prefs.Industries {
			if ind != "" && strings.Contains(body, strings.ToLower(ind)) {
				matchedInd = ind
				break
			}
		}
		if matchedInd != "" {
			score += weightIndustry
			reasons = append(reasons, "industry match: "+matchedInd)
		} else {
			reasons = append(reasons, "industry not mentioned")
		}
	}

	// Salary floor.
	switch {
	case prefs.SalaryMin <= 0:
		score += weightSalary
	case p.SalaryMax <= 0 && p.SalaryMin <= 0:
		score += salaryUnlistedPoints
		reasons = append(reasons, "salary not listed")
	case maxSalary(p) >= prefs.SalaryMin:
		score += weightSalary
		reasons = append(reasons, fmt.Sprintf("salary meets R%.0f minimum", prefs.SalaryMin))
	default:
		reasons = append(reasons, fmt.Sprintf("salary below R%.0f minimum", prefs.SalaryMin))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, reasons
}

func maxSalary(p JobPosting) float64 {
	if p.SalaryMax > p.SalaryMin {
		return p.SalaryMax
	}
	return p.SalaryMin
}
