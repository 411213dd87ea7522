package matches

import (
	"encoding/json"
	"time"

	"github.com/Samuelsenhet/m-k-sub001/internal/matching"
)

// Subscription tiers. Free users get capped delivery; plus and premium get
// the full daily pool.
const (
	TierFree    = "free"
	TierPlus    = "plus"
	TierPremium = "premium"
)

// FreeTierDeliveryCap is the number of matches a free user receives per day.
const FreeTierDeliveryCap = 5

// Match record statuses. A record starts pending; swipe flows move it on.
const (
	StatusPending = "pending"
	StatusMutual  = "mutual"
	StatusPassed  = "passed"
)

// Journey phases returned by the status endpoint and embedded in delivery
// error responses.
const (
	PhaseNotOnboarded = "NOT_ONBOARDED"
	PhaseWaiting      = "WAITING"
	PhasePoolPending  = "POOL_PENDING"
	PhaseReady        = "READY"
)

// DefaultIcebreakers are the canonical conversation openers attached to
// every delivered match.
var DefaultIcebreakers = []string{"Hej!", "Hur mår du?", "Vad gör du?"}

// PoolSnapshot is one user's ranked daily candidate pool, one row per
// (user, date). Replaced wholesale when the batch job reruns.
type PoolSnapshot struct {
	ID             int64           `json:"id" db:"id"`
	UserID         string          `json:"user_id" db:"user_id"`
	PoolDate       string          `json:"pool_date" db:"pool_date"`
	CandidatesData json.RawMessage `json:"candidates_data" db:"candidates_data"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Candidates decodes the snapshot body.
func (p *PoolSnapshot) Candidates() ([]matching.PoolCandidate, error) {
	var out []matching.PoolCandidate
	if len(p.CandidatesData) == 0 {
		return out, nil
	}
	err := json.Unmarshal(p.CandidatesData, &out)
	return out, err
}

// MatchRecord is one durable, user-visible match. Display fields are frozen
// at delivery time so later profile edits do not rewrite history.
// Uniqueness on (user_id, matched_user_id, match_date) is enforced by the
// store.
type MatchRecord struct {
	ID                    string          `json:"id" db:"id"`
	UserID                string          `json:"user_id" db:"user_id"`
	MatchedUserID         string          `json:"matched_user_id" db:"matched_user_id"`
	MatchType             string          `json:"match_type" db:"match_type"`
	MatchScore            int             `json:"match_score" db:"match_score"`
	MatchDate             string          `json:"match_date" db:"match_date"`
	Status                string          `json:"status" db:"status"`
	DimensionBreakdown    json.RawMessage `json:"dimension_breakdown,omitempty" db:"dimension_breakdown"`
	ArchetypeScore        int             `json:"archetype_score" db:"archetype_score"`
	AnxietyReductionScore int             `json:"anxiety_reduction_score" db:"anxiety_reduction_score"`
	Icebreakers           json.RawMessage `json:"icebreakers,omitempty" db:"icebreakers"`
	PersonalityInsight    string          `json:"personality_insight" db:"personality_insight"`
	MatchDisplayName      string          `json:"match_display_name" db:"match_display_name"`
	MatchAge              *int            `json:"match_age,omitempty" db:"match_age"`
	MatchArchetype        string          `json:"match_archetype" db:"match_archetype"`
	PhotoURLs             json.RawMessage `json:"photo_urls,omitempty" db:"photo_urls"`
	BioPreview            string          `json:"bio_preview" db:"bio_preview"`
	CommonInterests       json.RawMessage `json:"common_interests,omitempty" db:"common_interests"`
	CreatedAt             time.Time       `json:"created_at" db:"created_at"`
}

// DeliveryProfile is what the delivery service needs to know about the
// requesting user, resolved server-side and never taken from the client.
type DeliveryProfile struct {
	UserID                string     `db:"user_id"`
	OnboardingCompleted   bool       `db:"onboarding_completed"`
	OnboardingCompletedAt *time.Time `db:"onboarding_completed_at"`
	SubscriptionTier      string     `db:"subscription_tier"`
	Category              string     `db:"category"`
}

// IsPlus reports whether the tier removes the daily delivery cap.
func (p *DeliveryProfile) IsPlus() bool {
	return p.SubscriptionTier == TierPlus || p.SubscriptionTier == TierPremium
}

// MatchOutput is the per-match response shape delivered to clients.
type MatchOutput struct {
	MatchID                 string                        `json:"match_id"`
	ProfileID               string                        `json:"profile_id"`
	DisplayName             string                        `json:"display_name"`
	Age                     int                           `json:"age"`
	Archetype               string                        `json:"archetype"`
	CompatibilityPercentage int                           `json:"compatibility_percentage"`
	DimensionScoreBreakdown []matching.DimensionBreakdown `json:"dimension_score_breakdown"`
	ArchetypeAlignmentScore int                           `json:"archetype_alignment_score"`
	AnxietyReductionScore   int                           `json:"conversation_anxiety_reduction_score"`
	Icebreakers             []string                      `json:"ai_icebreakers"`
	PersonalityInsight      string                        `json:"personality_insight"`
	MatchReason             string                        `json:"match_reason"`
	IsFirstDayMatch         bool                          `json:"is_first_day_match"`
	ExpiresAt               *time.Time                    `json:"expires_at"`
	SpecialEffects          []string                      `json:"special_effects,omitempty"`
	PhotoURLs               []string                      `json:"photo_urls"`
	BioPreview              string                        `json:"bio_preview"`
	CommonInterests         []string                      `json:"common_interests"`
}

// DailyMatchesResponse is the batch-level delivery response.
type DailyMatchesResponse struct {
	Date                string        `json:"date"`
	BatchSize           int           `json:"batch_size"`
	UserLimit           *int          `json:"user_limit"` // nil = uncapped
	Matches             []MatchOutput `json:"matches"`
	Message             string        `json:"message,omitempty"`
	SpecialEventMessage string        `json:"special_event_message,omitempty"`
}

// StatusResponse describes where the user is in the daily match cycle.
type StatusResponse struct {
	JourneyPhase       string     `json:"journey_phase"`
	TimeRemaining      string     `json:"time_remaining,omitempty"`
	NextMatchAvailable *time.Time `json:"next_match_available,omitempty"`
	MatchesToday       int        `json:"matches_today"`
}

// GeneratePoolsRequest is the admin trigger payload. The batch size bounds
// follow the product rule of 3 to 10 candidates per daily pool.
type GeneratePoolsRequest struct {
	BatchSize int `json:"batch_size" validate:"omitempty,min=3,max=10"`
}

// PoolJobReport summarizes one batch run.
type PoolJobReport struct {
	Date          string `json:"date"`
	UsersScanned  int    `json:"users_scanned"`
	PoolsUpserted int    `json:"pools_upserted"`
	UsersSkipped  int    `json:"users_skipped"`
	BatchSize     int    `json:"batch_size"`
}
