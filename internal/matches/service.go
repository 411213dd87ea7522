package matches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/Samuelsenhet/m-k-sub001/internal/matching"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrOnboardingIncomplete = errors.New("onboarding not completed")
	ErrDeliveryInProgress   = errors.New("daily match delivery already in progress")
)

// WaitingError signals that the 24 hour post-onboarding wait has not
// elapsed yet. It carries the remaining time for the client countdown.
type WaitingError struct {
	Remaining     time.Duration
	NextAvailable time.Time
}

func (e *WaitingError) Error() string {
	return fmt.Sprintf("first daily matches available in %s", e.Remaining.Round(time.Minute))
}

const onboardingCooldown = 24 * time.Hour

const deliveryLockTTL = 2 * time.Minute

// celebrationEffects decorate a user's very first daily match delivery.
var celebrationEffects = []string{"confetti", "first_match_celebration"}

const firstMatchMessage = "Dina första dagliga matchningar är här!"

// Service delivers daily matches out of the precomputed pool snapshots.
type Service interface {
	// DeliverDaily materializes today's matches for the user. Repeat
	// calls return the delivered set, topped up if the cap has risen.
	DeliverDaily(ctx context.Context, userID string) (*DailyMatchesResponse, error)

	// GetDaily returns today's matches without triggering a delivery.
	GetDaily(ctx context.Context, userID string) (*DailyMatchesResponse, error)

	// Status reports where the user stands in the daily match cycle.
	Status(ctx context.Context, userID string) (*StatusResponse, error)
}

type service struct {
	repo    Repository
	redis   *redis.Client
	photos  PhotoResolver
	scorer  *matching.Scorer
	loc     *time.Location
	nowFunc func() time.Time
}

func NewService(repo Repository, redisClient *redis.Client, photos PhotoResolver, scorer *matching.Scorer, loc *time.Location) Service {
	return &service{
		repo:    repo,
		redis:   redisClient,
		photos:  photos,
		scorer:  scorer,
		loc:     loc,
		nowFunc: time.Now,
	}
}

func (s *service) today() string {
	return s.nowFunc().In(s.loc).Format("2006-01-02")
}

func (s *service) DeliverDaily(ctx context.Context, userID string) (*DailyMatchesResponse, error) {
	profile, err := s.repo.GetDeliveryProfile(ctx, userID)
	if err != nil {
		RecordDelivery("error")
		return nil, err
	}

	if !profile.OnboardingCompleted {
		RecordDelivery("not_onboarded")
		return nil, ErrOnboardingIncomplete
	}

	if wait := s.remainingCooldown(profile); wait != nil {
		RecordDelivery("waiting")
		return nil, wait
	}

	date := s.today()

	existing, err := s.repo.GetMatches(ctx, userID, date)
	if err != nil {
		RecordDelivery("error")
		return nil, err
	}

	snapshot, err := s.repo.GetPoolSnapshot(ctx, userID, date)
	if err != nil {
		RecordDelivery("error")
		return nil, err
	}
	if snapshot == nil {
		if len(existing) > 0 {
			RecordDelivery("ready")
			return s.buildResponse(profile, date, existing, false), nil
		}
		RecordDelivery("pool_pending")
		return &DailyMatchesResponse{
			Date:    date,
			Matches: []MatchOutput{},
			Message: "Dagens matchningar förbereds fortfarande. Kom tillbaka om en stund!",
		}, nil
	}

	return s.deliver(ctx, profile, snapshot, existing, date)
}

// deliver inserts whatever today's cap allows beyond what was already
// delivered. A tier upgrade mid-day raises the cap, so a repeat call tops
// the delivery up to the new limit instead of echoing the first batch.
func (s *service) deliver(ctx context.Context, profile *DeliveryProfile, snapshot *PoolSnapshot, existing []*MatchRecord, date string) (*DailyMatchesResponse, error) {
	candidates, err := snapshot.Candidates()
	if err != nil {
		RecordDelivery("error")
		return nil, fmt.Errorf("corrupt pool snapshot for user %s: %w", profile.UserID, err)
	}

	limit := len(candidates)
	if !profile.IsPlus() && limit > FreeTierDeliveryCap {
		limit = FreeTierDeliveryCap
	}
	candidates = candidates[:limit]

	already := make(map[string]bool, len(existing))
	for _, m := range existing {
		already[m.MatchedUserID] = true
	}

	records := make([]*MatchRecord, 0, len(candidates))
	for _, c := range candidates {
		if already[c.User.UserID] {
			continue
		}
		rec, err := s.buildRecord(profile, c, date)
		if err != nil {
			log.Printf("matches: skipping candidate %s for user %s: %v", c.User.UserID, profile.UserID, err)
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		RecordDelivery("ready")
		return s.buildResponse(profile, date, existing, false), nil
	}

	// Guard concurrent deliveries for the same user. Best effort; the
	// unique constraint on matches is the correctness backstop.
	if s.redis != nil {
		lockKey := fmt.Sprintf("matches:deliver:%s:%s", profile.UserID, date)
		ok, lockErr := s.redis.SetNX(ctx, lockKey, "1", deliveryLockTTL).Result()
		if lockErr == nil && !ok {
			RecordDelivery("in_progress")
			return nil, ErrDeliveryInProgress
		}
		if lockErr == nil {
			defer s.redis.Del(context.Background(), lockKey)
		}
	}

	inserted, err := s.repo.InsertMatches(ctx, records)
	if err != nil {
		RecordDelivery("error")
		return nil, err
	}
	for _, rec := range records {
		RecordMatchDelivered(rec.MatchType, rec.MatchScore)
	}

	// First delivery ever gets the celebration treatment.
	firstEver := false
	if total, err := s.repo.CountMatches(ctx, profile.UserID); err == nil {
		firstEver = total == inserted && inserted > 0
	}

	delivered, err := s.repo.GetMatches(ctx, profile.UserID, date)
	if err != nil {
		RecordDelivery("error")
		return nil, err
	}

	// Remember who was delivered today so tomorrow's batch avoids them.
	matchedIDs := make([]string, 0, len(delivered))
	for _, rec := range delivered {
		matchedIDs = append(matchedIDs, rec.MatchedUserID)
	}
	if err := s.repo.UpsertDeliveredSet(ctx, profile.UserID, date, matchedIDs); err != nil {
		log.Printf("matches: failed to record delivered set for user %s: %v", profile.UserID, err)
	}

	RecordDelivery("ready")
	return s.buildResponse(profile, date, delivered, firstEver), nil
}

func (s *service) buildRecord(profile *DeliveryProfile, c matching.PoolCandidate, date string) (*MatchRecord, error) {
	breakdown, err := json.Marshal(c.DimensionBreakdown)
	if err != nil {
		return nil, err
	}
	icebreakers, err := json.Marshal(DefaultIcebreakers)
	if err != nil {
		return nil, err
	}

	photos := c.User.Photos
	if len(photos) == 0 && c.User.AvatarURL != "" {
		photos = []string{c.User.AvatarURL}
	}
	photoJSON, err := json.Marshal(s.photos.Resolve(photos))
	if err != nil {
		return nil, err
	}
	interestsJSON, err := json.Marshal(c.User.Interests)
	if err != nil {
		return nil, err
	}

	insight := s.scorer.MatchInsight(profile.Category, c.User.Category, c.User.DisplayName, c.MatchType)

	return &MatchRecord{
		ID:                    uuid.New().String(),
		UserID:                profile.UserID,
		MatchedUserID:         c.User.UserID,
		MatchType:             c.MatchType,
		MatchScore:            c.MatchScore,
		MatchDate:             date,
		Status:                StatusPending,
		DimensionBreakdown:    breakdown,
		ArchetypeScore:        c.ArchetypeScore,
		AnxietyReductionScore: c.AnxietyScore,
		Icebreakers:           icebreakers,
		PersonalityInsight:    insight,
		MatchDisplayName:      c.User.DisplayName,
		MatchAge:              c.User.Age,
		MatchArchetype:        c.User.Archetype,
		PhotoURLs:             photoJSON,
		BioPreview:            bioPreview(c.User.Bio),
		CommonInterests:       interestsJSON,
	}, nil
}

func (s *service) GetDaily(ctx context.Context, userID string) (*DailyMatchesResponse, error) {
	profile, err := s.repo.GetDeliveryProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	date := s.today()
	records, err := s.repo.GetMatches(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(profile, date, records, false), nil
}

func (s *service) Status(ctx context.Context, userID string) (*StatusResponse, error) {
	profile, err := s.repo.GetDeliveryProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !profile.OnboardingCompleted {
		return &StatusResponse{JourneyPhase: PhaseNotOnboarded}, nil
	}

	if wait := s.remainingCooldown(profile); wait != nil {
		return &StatusResponse{
			JourneyPhase:       PhaseWaiting,
			TimeRemaining:      formatRemaining(wait.Remaining),
			NextMatchAvailable: &wait.NextAvailable,
		}, nil
	}

	date := s.today()
	records, err := s.repo.GetMatches(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		return &StatusResponse{JourneyPhase: PhaseReady, MatchesToday: len(records)}, nil
	}

	snapshot, err := s.repo.GetPoolSnapshot(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return &StatusResponse{JourneyPhase: PhasePoolPending}, nil
	}
	return &StatusResponse{JourneyPhase: PhaseReady}, nil
}

// remainingCooldown returns a WaitingError while the post-onboarding wait
// is still running, nil once it has elapsed. A missing completion
// timestamp counts as elapsed; the flag alone is authoritative then.
func (s *service) remainingCooldown(profile *DeliveryProfile) *WaitingError {
	if profile.OnboardingCompletedAt == nil {
		return nil
	}
	elapsed := s.nowFunc().Sub(*profile.OnboardingCompletedAt)
	if elapsed >= onboardingCooldown {
		return nil
	}
	remaining := onboardingCooldown - elapsed
	return &WaitingError{
		Remaining:     remaining,
		NextAvailable: profile.OnboardingCompletedAt.Add(onboardingCooldown),
	}
}

func (s *service) buildResponse(profile *DeliveryProfile, date string, records []*MatchRecord, firstEver bool) *DailyMatchesResponse {
	matches := make([]MatchOutput, 0, len(records))
	expiresAt := s.endOfDay(date)

	for _, rec := range records {
		out := MatchOutput{
			MatchID:                 rec.ID,
			ProfileID:               rec.MatchedUserID,
			DisplayName:             rec.MatchDisplayName,
			Archetype:               rec.MatchArchetype,
			CompatibilityPercentage: rec.MatchScore,
			ArchetypeAlignmentScore: rec.ArchetypeScore,
			AnxietyReductionScore:   rec.AnxietyReductionScore,
			PersonalityInsight:      rec.PersonalityInsight,
			MatchReason:             matchReason(rec.MatchType),
			IsFirstDayMatch:         firstEver,
			ExpiresAt:               expiresAt,
			BioPreview:              rec.BioPreview,
		}
		if rec.MatchAge != nil {
			out.Age = *rec.MatchAge
		}
		if err := json.Unmarshal(rec.DimensionBreakdown, &out.DimensionScoreBreakdown); err != nil {
			log.Printf("matches: bad dimension breakdown on match %s: %v", rec.ID, err)
		}
		if err := json.Unmarshal(rec.Icebreakers, &out.Icebreakers); err != nil {
			log.Printf("matches: bad icebreakers on match %s: %v", rec.ID, err)
		}
		if err := json.Unmarshal(rec.PhotoURLs, &out.PhotoURLs); err != nil {
			log.Printf("matches: bad photo urls on match %s: %v", rec.ID, err)
		}
		if err := json.Unmarshal(rec.CommonInterests, &out.CommonInterests); err != nil {
			log.Printf("matches: bad common interests on match %s: %v", rec.ID, err)
		}
		if out.Icebreakers == nil {
			out.Icebreakers = DefaultIcebreakers
		}
		if out.PhotoURLs == nil {
			out.PhotoURLs = []string{}
		}
		if out.CommonInterests == nil {
			out.CommonInterests = []string{}
		}
		if firstEver {
			out.SpecialEffects = celebrationEffects
		}
		matches = append(matches, out)
	}

	resp := &DailyMatchesResponse{
		Date:      date,
		BatchSize: len(matches),
		Matches:   matches,
	}
	if !profile.IsPlus() {
		limit := FreeTierDeliveryCap
		resp.UserLimit = &limit
	}
	if firstEver {
		resp.SpecialEventMessage = firstMatchMessage
	}
	return resp
}

// endOfDay returns midnight after the given date in the service timezone.
func (s *service) endOfDay(date string) *time.Time {
	t, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil
	}
	end := t.AddDate(0, 0, 1)
	return &end
}

func matchReason(matchType string) string {
	if matchType == matching.MatchTypeComplementary {
		return "Ni kompletterar varandra"
	}
	return "Ni liknar varandra"
}

func bioPreview(bio string) string {
	const max = 150
	if len(bio) <= max {
		return bio
	}
	runes := []rune(bio)
	if len(runes) <= max {
		return bio
	}
	return string(runes[:max]) + "..."
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh %dm", h, m)
}
