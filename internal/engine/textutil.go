package engine

import (
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/anatolykoptev/go-kit/strutil"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// CleanHTML strips HTML tags and trims whitespace.
func CleanHTML(s string) string {
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// DescriptionText converts a scraped job-description HTML fragment into
// readable text, capped at Cfg.MaxContentChars. Falls back to tag stripping
// when markdown conversion fails.
func DescriptionText(rawHTML string) string {
	text, err := htmltomarkdown.ConvertString(rawHTML)
	if err != nil {
		text = CleanHTML(rawHTML)
	}
	text = strings.TrimSpace(text)
	return TruncateRunes(text, Cfg.MaxContentChars, "...")
}

// CollapseSpaces normalises runs of whitespace to single spaces.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var salaryNumRe = regexp.MustCompile(`[0-9][0-9 ,.]*[0-9]|[0-9]`)

// ParseSalary extracts a numeric (min, max) pair from free-form salary text
// like "R300 000 - R420 000 per annum" or "R25,000/month". Returns (0, 0)
// when nothing numeric is present.
func ParseSalary(text string) (min, max float64) {
	matches := salaryNumRe.FindAllString(text, -1)
	var nums []float64
	for _, m := range matches {
		m = strings.NewReplacer(" ", "", ",", "").Replace(m)
		// "300.000" style thousands separators
		if strings.Count(m, ".") == 1 && len(m)-strings.Index(m, ".") == 4 {
			m = strings.Replace(m, ".", "", 1)
		}
		n, err := strconv.ParseFloat(m, 64)
		if err != nil || n < 100 { // skip stray digits like "3 years"
			continue
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 0:
		return 0, 0
	case 1:
		return nums[0], nums[0]
	default:
		min, max = nums[0], nums[1]
		if max < min {
			min, max = max, min
		}
		return min, max
	}
}

// Monthly salary figures on SA boards are commonly quoted per month; the
// matcher compares annual floors. AnnualiseSalary converts values that look
// monthly (below the given threshold) into annual figures.
func AnnualiseSalary(v, monthlyThreshold float64) float64 {
	if v > 0 && v < monthlyThreshold {
		return v * 12
	}
	return v
}
