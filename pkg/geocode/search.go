package geocode

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// fuzzyThreshold is the minimum token-set ratio a fuzzy fallback match must
// clear. Heuristic tunable, not a guaranteed contract.
const fuzzyThreshold = 60.0

// Search runs the three-stage query pipeline: prefix match first,
// substring if prefix yields nothing, then fuzzy fallback filling any
// remaining slots up to limit.
func (idx *Index) Search(query string, limit int) []Match {
	if limit <= 0 {
		return nil
	}
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return nil
	}
	qFolded := fold(query)

	matches := idx.prefixMatch(qTokens, qFolded)
	if len(matches) == 0 {
		matches = idx.substringMatch(qFolded)
	}
	if len(matches) < limit {
		seen := make(map[int]bool, len(matches))
		for _, m := range matches {
			seen[m.entryIdx] = true
		}
		matches = append(matches, idx.fuzzyMatch(qTokens, seen, limit-len(matches))...)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if idx.entries[matches[i].entryIdx].RankTier != idx.entries[matches[j].entryIdx].RankTier {
			return idx.entries[matches[i].entryIdx].RankTier > idx.entries[matches[j].entryIdx].RankTier
		}
		return matches[i].score > matches[j].score
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Match, len(matches))
	for i, m := range matches {
		e := idx.entries[m.entryIdx]
		out[i] = Match{NodeID: e.NodeID, Lat: e.Lat, Lon: e.Lon, Address: e.Address, Kind: e.Kind, Score: m.score}
	}
	return out
}

// scoredMatch is the internal candidate shape carrying the entry index so
// later pipeline stages can deduplicate against earlier ones.
type scoredMatch struct {
	entryIdx int
	score    float64
}

func (idx *Index) prefixMatch(qTokens []string, qFolded string) []scoredMatch {
	seen := make(map[int]bool)
	var out []scoredMatch
	for _, tok := range qTokens {
		for key, ids := range idx.postings {
			if !strings.HasPrefix(key, tok) {
				continue
			}
			for _, i := range ids {
				if seen[i] {
					continue
				}
				seen[i] = true
				out = append(out, scoredMatch{entryIdx: i, score: prefixScore(idx.entries[i], qFolded)})
			}
		}
	}
	return out
}

func (idx *Index) substringMatch(qFolded string) []scoredMatch {
	var out []scoredMatch
	for i, e := range idx.entries {
		if strings.Contains(fold(e.Address), qFolded) {
			out = append(out, scoredMatch{entryIdx: i, score: prefixScore(e, qFolded)})
		}
	}
	return out
}

func (idx *Index) fuzzyMatch(qTokens []string, seen map[int]bool, need int) []scoredMatch {
	if need <= 0 {
		return nil
	}
	var candidates []scoredMatch
	for i, e := range idx.entries {
		if seen[i] {
			continue
		}
		ratio := tokenSetRatio(qTokens, e.tokens)
		if ratio >= fuzzyThreshold {
			candidates = append(candidates, scoredMatch{entryIdx: i, score: ratio})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > need {
		candidates = candidates[:need]
	}
	return candidates
}

// prefixScore blends the entry's rank tier with how much of the address the
// query actually covers, capped at 100.
func prefixScore(e Entry, qFolded string) float64 {
	addrFolded := fold(e.Address)
	if len(addrFolded) == 0 {
		return float64(e.RankTier)
	}
	coverage := float64(len(qFolded)) / float64(len(addrFolded))
	if coverage > 1 {
		coverage = 1
	}
	score := float64(e.RankTier)*0.7 + coverage*30
	if score > 100 {
		score = 100
	}
	return score
}

// tokenSetRatio splits both strings into token sets, compares the shared
// intersection against each side's unique remainder, and takes the best of
// the three pairwise ratios, so word order and repeated words do not drag
// the score down.
func tokenSetRatio(aTokens, bTokens []string) float64 {
	aSet := uniqueSorted(aTokens)
	bSet := uniqueSorted(bTokens)

	var intersection, aOnly, bOnly []string
	bSeen := make(map[string]bool, len(bSet))
	for _, t := range bSet {
		bSeen[t] = true
	}
	aSeen := make(map[string]bool, len(aSet))
	for _, t := range aSet {
		aSeen[t] = true
		if bSeen[t] {
			intersection = append(intersection, t)
		} else {
			aOnly = append(aOnly, t)
		}
	}
	for _, t := range bSet {
		if !aSeen[t] {
			bOnly = append(bOnly, t)
		}
	}

	t0 := strings.Join(intersection, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(aOnly, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(bOnly, " "))

	best := ratio(t0, t1)
	if r := ratio(t0, t2); r > best {
		best = r
	}
	if r := ratio(t1, t2); r > best {
		best = r
	}
	return best
}

func uniqueSorted(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// ratio is a 0-100 similarity score derived from edit distance normalized
// by the longer string's length.
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (1 - float64(dist)/float64(maxLen)) * 100
}
