// Package matching scores interest-tag overlap between profiles and jobs.
//
// The same scorer serves the recruiter tool (candidate tags against a job's
// tags) and connection suggestions (peer tags against the viewer's tags).
package matching

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Candidate is anything that can be scored: a profile against a job or a
// peer against the viewer.
type Candidate struct {
	ID   int64
	Tags []string
}

// Result is a scored candidate. Score is a percentage in [0, 100].
type Result struct {
	ID    int64
	Score int
}

// Normalize returns the set of tags in canonical form: NFC, case-folded,
// trimmed, without blanks or duplicates. First-seen order is kept.
func Normalize(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := normalizeTag(folder, tag)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func normalizeTag(folder cases.Caser, tag string) string {
	tag = strings.Join(strings.Fields(tag), " ")
	if tag == "" {
		return ""
	}
	return folder.String(norm.NFC.String(tag))
}

// Score returns round(100 * |candidate ∩ required| / |required|).
// An empty required set scores 0 for everyone.
func Score(candidateTags, requiredTags []string) int {
	required := Normalize(requiredTags)
	if len(required) == 0 {
		return 0
	}
	return scoreAgainst(toSet(Normalize(candidateTags)), required)
}

// Rank scores every candidate against requiredTags and orders them by score,
// highest first. Candidates with equal scores keep their input order.
func Rank(candidates []Candidate, requiredTags []string) []Result {
	results := make([]Result, 0, len(candidates))
	required := Normalize(requiredTags)
	for _, c := range candidates {
		score := 0
		if len(required) > 0 {
			score = scoreAgainst(toSet(Normalize(c.Tags)), required)
		}
		results = append(results, Result{ID: c.ID, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// Top keeps at most n ranked results whose score is at least minScore.
// n <= 0 means no limit.
func Top(ranked []Result, n, minScore int) []Result {
	out := make([]Result, 0, len(ranked))
	for _, r := range ranked {
		if r.Score < minScore {
			continue
		}
		if n > 0 && len(out) == n {
			break
		}
		out = append(out, r)
	}
	return out
}

func scoreAgainst(candidate map[string]struct{}, required []string) int {
	matches := 0
	for _, tag := range required {
		if _, ok := candidate[tag]; ok {
			matches++
		}
	}
	return int(math.Round(100 * float64(matches) / float64(len(required))))
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
