package matches

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Samuelsenhet/m-k-sub001/internal/matching"
)

// Repository is the persistence boundary for daily pools and matches.
type Repository interface {
	// Candidate loading for the batch job
	LoadCandidates(ctx context.Context) ([]matching.Candidate, error)
	LoadProfile(ctx context.Context, userID string) (*matching.Profile, error)
	LoadPhotos(ctx context.Context) (map[string][]string, error)
	GetDeliveredUserIDs(ctx context.Context, matchDate string) (map[string]map[string]bool, error)

	// Pool snapshots
	UpsertPoolSnapshot(ctx context.Context, userID, poolDate string, candidates []matching.PoolCandidate) error
	GetPoolSnapshot(ctx context.Context, userID, poolDate string) (*PoolSnapshot, error)

	// Matches
	GetMatches(ctx context.Context, userID, matchDate string) ([]*MatchRecord, error)
	InsertMatches(ctx context.Context, records []*MatchRecord) (int, error)
	CountMatches(ctx context.Context, userID string) (int, error)

	// Delivery bookkeeping
	UpsertDeliveredSet(ctx context.Context, userID, matchDate string, matchedIDs []string) error
	GetDeliveryProfile(ctx context.Context, userID string) (*DeliveryProfile, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// candidateRow is the flat SQL projection behind matching.Candidate.
type candidateRow struct {
	UserID              string         `db:"user_id"`
	DisplayName         sql.NullString `db:"display_name"`
	AvatarURL           sql.NullString `db:"avatar_url"`
	Archetype           sql.NullString `db:"archetype"`
	Category            sql.NullString `db:"category"`
	EI                  int            `db:"ei"`
	SN                  int            `db:"sn"`
	TF                  int            `db:"tf"`
	JP                  int            `db:"jp"`
	AT                  int            `db:"at"`
	Bio                 sql.NullString `db:"bio"`
	Age                 sql.NullInt64  `db:"age"`
	Gender              sql.NullString `db:"gender"`
	Interests           pq.StringArray `db:"interests"`
	OnboardingCompleted bool           `db:"onboarding_completed"`
	MinAge              sql.NullInt64  `db:"min_age"`
	MaxAge              sql.NullInt64  `db:"max_age"`
	InterestedIn        sql.NullString `db:"interested_in"`
}

func (row *candidateRow) toCandidate() matching.Candidate {
	c := matching.Candidate{
		UserID:              row.UserID,
		DisplayName:         row.DisplayName.String,
		AvatarURL:           row.AvatarURL.String,
		Archetype:           row.Archetype.String,
		Category:            row.Category.String,
		Scores:              matching.Scores{EI: row.EI, SN: row.SN, TF: row.TF, JP: row.JP, AT: row.AT},
		Bio:                 row.Bio.String,
		Gender:              row.Gender.String,
		Interests:           []string(row.Interests),
		OnboardingCompleted: row.OnboardingCompleted,
	}
	if row.Age.Valid {
		age := int(row.Age.Int64)
		c.Age = &age
	}
	return c
}

func (row *candidateRow) toProfile() *matching.Profile {
	p := &matching.Profile{
		Candidate:    row.toCandidate(),
		InterestedIn: row.InterestedIn.String,
	}
	if row.MinAge.Valid {
		min := int(row.MinAge.Int64)
		p.MinAge = &min
	}
	if row.MaxAge.Valid {
		max := int(row.MaxAge.Int64)
		p.MaxAge = &max
	}
	return p
}

const candidateColumns = `
	p.user_id, p.display_name, p.avatar_url, p.bio, p.age, p.gender,
	p.interests, p.onboarding_completed,
	p.min_age, p.max_age, p.interested_in,
	COALESCE(pr.archetype, '') as archetype,
	COALESCE(pr.category, '') as category,
	COALESCE(pr.ei, 0) as ei, COALESCE(pr.sn, 0) as sn,
	COALESCE(pr.tf, 0) as tf, COALESCE(pr.jp, 0) as jp,
	COALESCE(pr.at, 0) as at
`

// LoadCandidates returns every scorable user. Profiles without a
// personality result cannot be scored and are left out entirely.
func (r *postgresRepository) LoadCandidates(ctx context.Context) ([]matching.Candidate, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM profiles p
		JOIN personality_results pr ON pr.user_id = p.user_id
		WHERE p.onboarding_completed = true
	`

	var rows []candidateRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	candidates := make([]matching.Candidate, 0, len(rows))
	for i := range rows {
		candidates = append(candidates, rows[i].toCandidate())
	}
	return candidates, nil
}

func (r *postgresRepository) LoadProfile(ctx context.Context, userID string) (*matching.Profile, error) {
	query := `
		SELECT ` + candidateColumns + `
		FROM profiles p
		LEFT JOIN personality_results pr ON pr.user_id = p.user_id
		WHERE p.user_id = $1
	`

	var row candidateRow
	err := r.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toProfile(), nil
}

func (r *postgresRepository) LoadPhotos(ctx context.Context) (map[string][]string, error) {
	query := `
		SELECT user_id, photo_ref
		FROM profile_photos
		ORDER BY user_id, position ASC
	`

	type photoRow struct {
		UserID   string `db:"user_id"`
		PhotoRef string `db:"photo_ref"`
	}

	var rows []photoRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.PhotoRef)
	}
	return out, nil
}

// GetDeliveredUserIDs returns, per user, the set of matched user ids
// delivered on the given date. Used by the batch job for repeat avoidance.
func (r *postgresRepository) GetDeliveredUserIDs(ctx context.Context, matchDate string) (map[string]map[string]bool, error) {
	query := `
		SELECT user_id, delivered_ids
		FROM last_daily_matches
		WHERE match_date = $1
	`

	type deliveredRow struct {
		UserID       string          `db:"user_id"`
		DeliveredIDs json.RawMessage `db:"delivered_ids"`
	}

	var rows []deliveredRow
	if err := r.db.SelectContext(ctx, &rows, query, matchDate); err != nil {
		return nil, err
	}

	out := make(map[string]map[string]bool, len(rows))
	for _, row := range rows {
		var ids []string
		if err := json.Unmarshal(row.DeliveredIDs, &ids); err != nil {
			continue
		}
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		out[row.UserID] = set
	}
	return out, nil
}

func (r *postgresRepository) UpsertPoolSnapshot(ctx context.Context, userID, poolDate string, candidates []matching.PoolCandidate) error {
	data, err := json.Marshal(candidates)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO user_daily_match_pools (user_id, pool_date, candidates_data, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, pool_date)
		DO UPDATE SET candidates_data = EXCLUDED.candidates_data,
		              created_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.ExecContext(ctx, query, userID, poolDate, data)
	return err
}

func (r *postgresRepository) GetPoolSnapshot(ctx context.Context, userID, poolDate string) (*PoolSnapshot, error) {
	var snapshot PoolSnapshot
	query := `
		SELECT id, user_id, pool_date, candidates_data, created_at
		FROM user_daily_match_pools
		WHERE user_id = $1 AND pool_date = $2
	`

	err := r.db.GetContext(ctx, &snapshot, query, userID, poolDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *postgresRepository) GetMatches(ctx context.Context, userID, matchDate string) ([]*MatchRecord, error) {
	var records []*MatchRecord
	query := `
		SELECT *
		FROM matches
		WHERE user_id = $1 AND match_date = $2
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &records, query, userID, matchDate)
	return records, err
}

// InsertMatches inserts the given records, silently skipping any that
// collide with the (user_id, matched_user_id, match_date) constraint, and
// returns how many rows actually landed.
func (r *postgresRepository) InsertMatches(ctx context.Context, records []*MatchRecord) (int, error) {
	query := `
		INSERT INTO matches (
			id, user_id, matched_user_id, match_type, match_score, match_date,
			status, dimension_breakdown, archetype_score, anxiety_reduction_score,
			icebreakers, personality_insight, match_display_name, match_age,
			match_archetype, photo_urls, bio_preview, common_interests, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, CURRENT_TIMESTAMP
		)
		ON CONFLICT (user_id, matched_user_id, match_date) DO NOTHING
	`

	inserted := 0
	for _, m := range records {
		res, err := r.db.ExecContext(
			ctx, query,
			m.ID, m.UserID, m.MatchedUserID, m.MatchType, m.MatchScore, m.MatchDate,
			m.Status, m.DimensionBreakdown, m.ArchetypeScore, m.AnxietyReductionScore,
			m.Icebreakers, m.PersonalityInsight, m.MatchDisplayName, m.MatchAge,
			m.MatchArchetype, m.PhotoURLs, m.BioPreview, m.CommonInterests,
		)
		if err != nil {
			return inserted, err
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (r *postgresRepository) CountMatches(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM matches WHERE user_id = $1`
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

func (r *postgresRepository) UpsertDeliveredSet(ctx context.Context, userID, matchDate string, matchedIDs []string) error {
	data, err := json.Marshal(matchedIDs)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO last_daily_matches (user_id, match_date, delivered_ids, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, match_date)
		DO UPDATE SET delivered_ids = EXCLUDED.delivered_ids,
		              updated_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.ExecContext(ctx, query, userID, matchDate, data)
	return err
}

func (r *postgresRepository) GetDeliveryProfile(ctx context.Context, userID string) (*DeliveryProfile, error) {
	var profile DeliveryProfile
	query := `
		SELECT p.user_id, p.onboarding_completed, p.onboarding_completed_at,
		       COALESCE(p.subscription_tier, 'free') as subscription_tier,
		       COALESCE(pr.category, '') as category
		FROM profiles p
		LEFT JOIN personality_results pr ON pr.user_id = p.user_id
		WHERE p.user_id = $1
	`

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
