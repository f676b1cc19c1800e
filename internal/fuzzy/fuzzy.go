// Package fuzzy implements the deterministic text-matching algorithm the
// accessibility engine uses to rank candidate elements against a spoken
// target phrase, plus a library-accelerated path for larger candidate
// sets.
package fuzzy

import (
	"context"
	"strings"
	"time"

	libfuzzy "github.com/sahilm/fuzzy"
)

// Score computes a 0-100 match score between target and candidate using
// the fixed scoring ladder: identical text scores 100, containment
// scores 95, otherwise the better of token-set Jaccard similarity and a
// partial-ratio scan, each scaled to 0-100.
func Score(target, candidate string) float64 {
	target = normalize(target)
	candidate = normalize(candidate)

	if target == "" || candidate == "" {
		return 0
	}
	if target == candidate {
		return 100
	}
	if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
		return 95
	}

	jaccard := jaccardSimilarity(target, candidate) * 100
	partial := partialRatio(target, candidate) * 100

	if jaccard > partial {
		return jaccard
	}
	return partial
}

// ScoreWithTimeout evaluates Score but aborts early if ctx is already
// past its deadline, returning (0, false) — the caller should treat a
// false result as "skip this candidate", not "no match".
func ScoreWithTimeout(ctx context.Context, target, candidate string) (float64, bool) {
	select {
	case <-ctx.Done():
		return 0, false
	default:
		return Score(target, candidate), true
	}
}

// RankCandidates scores every candidate against target and returns the
// indices of candidates scoring at or above threshold, ordered best
// first. It uses sahilm/fuzzy's subsequence scoring to prune the field
// before the more expensive deterministic Score runs, which matters once
// the element count climbs into the hundreds.
func RankCandidates(ctx context.Context, target string, candidates []string, threshold float64, timeout time.Duration) []int {
	deadline := time.Now().Add(timeout)

	prefilter := libfuzzy.Find(normalize(target), normalizeAll(candidates))
	prefiltered := make([]int, 0, len(prefilter))
	for _, m := range prefilter {
		prefiltered = append(prefiltered, m.Index)
	}
	if len(prefiltered) == 0 {
		// sahilm/fuzzy requires subsequence order; fall back to scoring
		// every candidate when nothing survives the subsequence filter,
		// since exact/containment/jaccard matches may not be subsequences.
		prefiltered = allIndices(len(candidates))
	}

	type scored struct {
		index int
		score float64
	}
	results := make([]scored, 0, len(prefiltered))
	for _, idx := range prefiltered {
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			break
		default:
		}
		s := Score(target, candidates[idx])
		if s >= threshold {
			results = append(results, scored{idx, s})
		}
	}

	// stable descending sort by score
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && results[j].score > results[j-1].score; j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}

	ordered := make([]int, len(results))
	for i, r := range results {
		ordered[i] = r.index
	}
	return ordered
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = normalize(s)
	}
	return out
}

func jaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	tokens := strings.Fields(s)
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// partialRatio finds the best-aligned substring match between the
// shorter and longer string, returning the fraction of matching
// characters at the best alignment.
func partialRatio(a, b string) float64 {
	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}
	if len(shorter) == 0 {
		return 0
	}
	if len(shorter) > len(longer) {
		return 0
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := longer[start : start+len(shorter)]
		matches := 0
		for i := range shorter {
			if shorter[i] == window[i] {
				matches++
			}
		}
		if matches > best {
			best = matches
		}
	}
	return float64(best) / float64(len(shorter))
}
