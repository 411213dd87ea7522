package matching

// Scores holds the five personality dimension scores, each in [0,100].
// The dimension labels come from the personality test; the algorithm only
// cares about their count and range.
type Scores struct {
	EI int `json:"ei" db:"ei"`
	SN int `json:"sn" db:"sn"`
	TF int `json:"tf" db:"tf"`
	JP int `json:"jp" db:"jp"`
	AT int `json:"at" db:"at"`
}

// Candidate is the recipient-independent projection of a user that the
// scorer and pool generator operate on. Refreshed whenever the owning
// user's profile or personality result changes; read-only here.
type Candidate struct {
	UserID              string   `json:"user_id"`
	DisplayName         string   `json:"display_name"`
	AvatarURL           string   `json:"avatar_url,omitempty"`
	Archetype           string   `json:"archetype,omitempty"`
	Category            string   `json:"category,omitempty"`
	Scores              Scores   `json:"scores"`
	Bio                 string   `json:"bio,omitempty"`
	Age                 *int     `json:"age,omitempty"`
	Gender              string   `json:"gender,omitempty"`
	Interests           []string `json:"interests,omitempty"`
	Photos              []string `json:"photos,omitempty"`
	OnboardingCompleted bool     `json:"onboarding_completed"`
}

// Profile is a Candidate plus the stated matching preferences used on the
// requester side of scoring. Never mutated by this package.
type Profile struct {
	Candidate
	MinAge       *int   `json:"min_age,omitempty"`
	MaxAge       *int   `json:"max_age,omitempty"`
	InterestedIn string `json:"interested_in,omitempty"`
}

// Match types used to tag pool entries.
const (
	MatchTypeSimilar       = "similar"
	MatchTypeComplementary = "complementary"
)

// DimensionBreakdown is one banded composite signal, a presentation aid
// computed alongside the composite score but never used for ranking.
type DimensionBreakdown struct {
	Dimension   string `json:"dimension"`
	Score       int    `json:"score"`
	Alignment   string `json:"alignment"` // high, medium or low
	Description string `json:"description"`
}

// PoolCandidate is one ranked entry of a user's daily match pool.
type PoolCandidate struct {
	User                 Candidate            `json:"user"`
	MatchType            string               `json:"match_type"`
	MatchScore           int                  `json:"match_score"`
	CompositeScore       int                  `json:"composite_score"`
	DimensionBreakdown   []DimensionBreakdown `json:"dimension_breakdown,omitempty"`
	ArchetypeScore       int                  `json:"archetype_score"`
	AnxietyScore         int                  `json:"anxiety_score"`
	CompatibilityFactors []string             `json:"compatibility_factors,omitempty"`
}

// CompositeBreakdown carries the three weighted signals behind a composite
// score.
type CompositeBreakdown struct {
	Personality int `json:"personality"`
	Archetype   int `json:"archetype"`
	Interests   int `json:"interests"`
}
