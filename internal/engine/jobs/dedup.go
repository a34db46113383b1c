package jobs

// Dedup collapses postings to the first occurrence per fingerprint,
// preserving source-encounter order. Pure and idempotent:
// Dedup(Dedup(x)) == Dedup(x).
func Dedup(postings []JobPosting) []JobPosting {
	seen := make(map[string]bool, len(postings))
	out := make([]JobPosting, 0, len(postings))
	for _, p := range postings {
		fp := p.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		out = append(out, p)
	}
	return out
}
