package matching

import (
	"math"
	"strings"
)

// Signal weights for the composite score (must sum to 1.0). Age is a
// dealbreaker filter, not a scoring signal.
const (
	weightSimilarity = 0.40
	weightArchetype  = 0.30
	weightInterests  = 0.30
)

// Scorer computes pairwise compatibility signals. All methods are pure
// integer functions of their inputs with results in [0,100].
type Scorer struct {
	categories map[string]string
}

// NewScorer creates a scorer with the given archetype to category table.
func NewScorer(categories map[string]string) *Scorer {
	return &Scorer{categories: categories}
}

// Similarity measures how alike two personality profiles are. The maximum
// possible total difference over five dimensions is 500.
func Similarity(a, b Scores) int {
	totalDiff := abs(a.EI-b.EI) + abs(a.SN-b.SN) + abs(a.TF-b.TF) +
		abs(a.JP-b.JP) + abs(a.AT-b.AT)
	return round(float64(500-totalDiff) / 500 * 100)
}

// Complementary rewards balanced opposites: EI and AT should stay close
// (energy and identity), while SN, TF and JP score best at a moderate
// difference rather than a maximal one.
func Complementary(a, b Scores) int {
	score := 0.0
	for _, diff := range []int{abs(a.EI - b.EI), abs(a.AT - b.AT)} {
		score += float64(100-diff) / 2 // max 50 per dimension
	}
	for _, diff := range []int{abs(a.SN - b.SN), abs(a.TF - b.TF), abs(a.JP - b.JP)} {
		switch {
		case diff >= 25 && diff <= 55:
			score += 40 // ideal complementary range
		case diff >= 15 && diff <= 65:
			score += 25
		default:
			score += 10
		}
	}
	// Normalize: 2*50 + 3*40 = 220 is the maximum raw score.
	return round(score / 220 * 100)
}

// ArchetypeAlignment scores two archetype codes: 95 when identical, 80 when
// they share a category, 60 across categories, and a neutral 50 when either
// is unknown.
func (s *Scorer) ArchetypeAlignment(a1, a2 string) int {
	if a1 == "" || a2 == "" {
		return 50
	}
	if a1 == a2 {
		return 95
	}
	c1, ok1 := s.categories[a1]
	c2, ok2 := s.categories[a2]
	if ok1 && ok2 && c1 == c2 {
		return 80
	}
	return 60
}

// InterestOverlap is the case-insensitive intersection size relative to the
// smaller interest set, as a percentage. Missing data scores a neutral 50,
// never zero.
func InterestOverlap(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 50
	}
	setA := make(map[string]struct{}, len(a))
	for _, i := range a {
		setA[strings.ToLower(i)] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, i := range b {
		setB[strings.ToLower(i)] = struct{}{}
	}
	overlap := 0
	for i := range setA {
		if _, ok := setB[i]; ok {
			overlap++
		}
	}
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	if smaller == 0 {
		return 50
	}
	return round(float64(overlap) / float64(smaller) * 100)
}

// Composite is the single weighted score used to rank pools regardless of
// match type.
func (s *Scorer) Composite(user Profile, candidate Candidate) (int, CompositeBreakdown) {
	breakdown := CompositeBreakdown{
		Personality: Similarity(user.Scores, candidate.Scores),
		Archetype:   s.ArchetypeAlignment(user.Archetype, candidate.Archetype),
		Interests:   InterestOverlap(user.Interests, candidate.Interests),
	}
	total := round(float64(breakdown.Personality)*weightSimilarity +
		float64(breakdown.Archetype)*weightArchetype +
		float64(breakdown.Interests)*weightInterests)
	return total, breakdown
}

// EaseScore estimates how easily conversation will flow: average energy plus
// a bonus for close thinking/feeling styles, capped at 100.
func EaseScore(a, b Scores) int {
	avgEnergy := float64(a.EI+b.EI) / 2
	bonus := float64(100-abs(a.TF-b.TF)) / 4 // max 25
	score := round(avgEnergy + bonus)
	if score > 100 {
		return 100
	}
	return score
}

var breakdownDescriptions = map[string]map[string]string{
	"personality": {
		"high":   "Ni delar liknande personlighetsdrag",
		"medium": "Era personligheter kompletterar varandra",
		"low":    "Era personligheter är olika men kan balansera",
	},
	"archetype": {
		"high":   "Era arketyper harmonierar väl",
		"medium": "Era arketyper skapar intressant dynamik",
		"low":    "Era arketyper utmanar varandra positivt",
	},
	"interests": {
		"high":   "Många gemensamma intressen",
		"medium": "Några gemensamma intressen",
		"low":    "Möjlighet att upptäcka nya intressen",
	},
}

// DimensionBreakdown re-exposes the composite signals with a three-way
// banding and a fixed description per band, for display only.
func (s *Scorer) DimensionBreakdown(user Profile, candidate Candidate) []DimensionBreakdown {
	_, b := s.Composite(user, candidate)
	out := make([]DimensionBreakdown, 0, 3)
	for _, entry := range []struct {
		name  string
		score int
	}{
		{"personality", b.Personality},
		{"archetype", b.Archetype},
		{"interests", b.Interests},
	} {
		alignment := "low"
		if entry.score >= 75 {
			alignment = "high"
		} else if entry.score >= 50 {
			alignment = "medium"
		}
		out = append(out, DimensionBreakdown{
			Dimension:   entry.name,
			Score:       entry.score,
			Alignment:   alignment,
			Description: breakdownDescriptions[entry.name][alignment],
		})
	}
	return out
}

// CompatibilityFactors returns the short factor lines shown with a match.
func (s *Scorer) CompatibilityFactors(userCategory, candidateCategory, matchType string) []string {
	var factors []string
	if matchType == MatchTypeSimilar {
		if userCategory != "" && userCategory == candidateCategory {
			factors = append(factors, "Delar samma personlighetstyp")
		}
		factors = append(factors,
			"Liknande värderingar och kommunikationsstil",
			"Förståelse för varandras behov",
		)
	} else {
		factors = append(factors,
			"Kompletterar varandras styrkor",
			"Balanserad dynamik i relationen",
			"Möjlighet att växa tillsammans",
		)
	}
	if f, ok := pairFactors[userCategory][candidateCategory]; ok {
		factors = append(factors, f)
	}
	return factors
}

// MatchInsight builds the user-facing explanation of why the pair was
// matched, in terms of their personality categories.
func (s *Scorer) MatchInsight(userCategory, matchedCategory, matchedName, matchType string) string {
	if matchType == MatchTypeSimilar {
		if title, ok := categoryTitles[userCategory]; ok {
			return "Du och " + matchedName + " är båda " + title + " – ni är " +
				categoryTraits[userCategory] + ". Som likhetsmatch delar ni samma personlighetskategori, " +
				"vilket ofta gör det lättare att förstå varandras behov och värdesätta samma saker i en relation."
		}
		return "Ni är en likhetsmatch – ni delar liknande personlighetsdrag och värderingar, " +
			"vilket ofta gör det lättare att känna samhörighet i en relation."
	}
	pair := complementaryInsights[userCategory][matchedCategory]
	if pair == "" {
		pair = "Era olika styrkor kan komplettera varandra och ge nya perspektiv i förhållandet."
	}
	uTitle, uOK := categoryTitles[userCategory]
	mTitle, mOK := categoryTitles[matchedCategory]
	if uOK && mOK {
		return "Du är " + uTitle + " – du är " + categoryTraits[userCategory] + ". " +
			matchedName + " är " + mTitle + " – hen är " + categoryTraits[matchedCategory] + ". " +
			"Som motsatsmatch kompletterar ni varandra: " + pair
	}
	return "Ni är en motsatsmatch – era personligheter kompletterar varandra. " + pair
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round(f float64) int {
	return int(math.Round(f))
}
