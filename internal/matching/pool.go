package matching

import (
	"math"
	"math/rand"
	"sort"
)

// Share of a pool filled with similar matches; the rest is complementary.
const similarRatio = 0.6

// PoolGenerator builds one user's daily candidate pool from the shared
// candidate set. Selection is fully deterministic; only the final display
// order is randomized through the injected rng.
type PoolGenerator struct {
	scorer *Scorer
}

func NewPoolGenerator(scorer *Scorer) *PoolGenerator {
	return &PoolGenerator{scorer: scorer}
}

type scoredCandidate struct {
	candidate      Candidate
	compositeScore int
	similarScore   int
	complementary  int
	interestScore  int
	archetypeScore int
	breakdown      CompositeBreakdown
}

// Generate filters, scores, ranks and splits the candidate set for one
// requester. previousIDs holds the candidate ids delivered to this requester
// yesterday; they are avoided unless there is literally no alternative.
func (g *PoolGenerator) Generate(
	user Profile,
	candidates []Candidate,
	batchSize int,
	previousIDs map[string]bool,
	rng *rand.Rand,
) []PoolCandidate {
	var eligible []Candidate
	for _, c := range candidates {
		if c.UserID == user.UserID {
			continue
		}
		if PassesDealbreakers(user, c) {
			eligible = append(eligible, c)
		}
	}

	var fresh []Candidate
	for _, c := range eligible {
		if !previousIDs[c.UserID] {
			fresh = append(fresh, c)
		}
	}

	// Prefer fresh candidates; a smaller batch beats re-showing yesterday's
	// set. Repeats only when nothing fresh exists at all.
	pool := fresh
	if len(fresh) == 0 {
		pool = eligible
	}
	if len(pool) == 0 {
		return nil
	}

	scored := make([]scoredCandidate, 0, len(pool))
	for _, c := range pool {
		composite, breakdown := g.scorer.Composite(user, c)
		scored = append(scored, scoredCandidate{
			candidate:      c,
			compositeScore: composite,
			similarScore:   Similarity(user.Scores, c.Scores),
			complementary:  Complementary(user.Scores, c.Scores),
			interestScore:  InterestOverlap(user.Interests, c.Interests),
			archetypeScore: g.scorer.ArchetypeAlignment(user.Archetype, c.Archetype),
			breakdown:      breakdown,
		})
	}

	actualSize := batchSize
	if len(pool) < actualSize {
		actualSize = len(pool)
	}
	similarCount := int(math.Ceil(float64(actualSize) * similarRatio))
	complementaryCount := actualSize - similarCount

	bySimilar := make([]scoredCandidate, len(scored))
	copy(bySimilar, scored)
	sort.SliceStable(bySimilar, func(i, j int) bool {
		a, b := bySimilar[i], bySimilar[j]
		if a.similarScore != b.similarScore {
			return a.similarScore > b.similarScore
		}
		if a.interestScore != b.interestScore {
			return a.interestScore > b.interestScore
		}
		return a.archetypeScore > b.archetypeScore
	})

	selected := make([]PoolCandidate, 0, actualSize)
	similarIDs := make(map[string]bool, similarCount)
	for i := 0; i < similarCount && i < len(bySimilar); i++ {
		entry := bySimilar[i]
		similarIDs[entry.candidate.UserID] = true
		selected = append(selected, g.buildEntry(user, entry, MatchTypeSimilar))
	}

	var remaining []scoredCandidate
	for _, entry := range scored {
		if !similarIDs[entry.candidate.UserID] {
			remaining = append(remaining, entry)
		}
	}
	sort.SliceStable(remaining, func(i, j int) bool {
		a, b := remaining[i], remaining[j]
		if a.complementary != b.complementary {
			return a.complementary > b.complementary
		}
		if a.interestScore != b.interestScore {
			return a.interestScore > b.interestScore
		}
		return a.archetypeScore > b.archetypeScore
	})
	for i := 0; i < complementaryCount && i < len(remaining); i++ {
		selected = append(selected, g.buildEntry(user, remaining[i], MatchTypeComplementary))
	}

	// Presentation order only; selection above is deterministic.
	rng.Shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	return selected
}

func (g *PoolGenerator) buildEntry(user Profile, entry scoredCandidate, matchType string) PoolCandidate {
	score := entry.similarScore
	if matchType == MatchTypeComplementary {
		score = entry.complementary
	}
	return PoolCandidate{
		User:               entry.candidate,
		MatchType:          matchType,
		MatchScore:         score,
		CompositeScore:     entry.compositeScore,
		DimensionBreakdown: g.scorer.DimensionBreakdown(user, entry.candidate),
		ArchetypeScore:     entry.archetypeScore,
		AnxietyScore:       EaseScore(user.Scores, entry.candidate.Scores),
		CompatibilityFactors: g.scorer.CompatibilityFactors(
			user.Category, entry.candidate.Category, matchType),
	}
}
