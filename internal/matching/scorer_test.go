package matching

import (
	"strings"
	"testing"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b Scores
		want int
	}{
		{
			name: "identical profiles",
			a:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
			b:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
			want: 100,
		},
		{
			name: "maximal difference",
			a:    Scores{EI: 0, SN: 0, TF: 0, JP: 0, AT: 0},
			b:    Scores{EI: 100, SN: 100, TF: 100, JP: 100, AT: 100},
			want: 0,
		},
		{
			name: "known mixed difference",
			a:    Scores{},
			b:    Scores{EI: 80, SN: 50, TF: 50, JP: 50, AT: 50},
			want: 44,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.want {
				t.Errorf("Similarity() = %d, want %d", got, tt.want)
			}
			// Order must not matter
			if got := Similarity(tt.b, tt.a); got != tt.want {
				t.Errorf("Similarity() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComplementary(t *testing.T) {
	tests := []struct {
		name string
		a, b Scores
		want int
	}{
		{
			name: "identical profiles score low on balance dimensions",
			a:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
			b:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
			want: 59, // 50+50+3*10 = 130/220
		},
		{
			name: "ideal complementary pair",
			a:    Scores{EI: 50, SN: 30, TF: 30, JP: 30, AT: 50},
			b:    Scores{EI: 50, SN: 70, TF: 70, JP: 70, AT: 50},
			want: 100, // 50+50+3*40 = 220/220
		},
		{
			name: "moderate band on balance dimensions",
			a:    Scores{EI: 50, SN: 30, TF: 30, JP: 30, AT: 50},
			b:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
			want: 80, // 50+50+3*25 = 175/220 = 79.5
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Complementary(tt.a, tt.b); got != tt.want {
				t.Errorf("Complementary() = %d, want %d", got, tt.want)
			}
			if got := Complementary(tt.b, tt.a); got != tt.want {
				t.Errorf("Complementary() reversed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArchetypeAlignment(t *testing.T) {
	s := NewScorer(DefaultArchetypeCategories())

	tests := []struct {
		name   string
		a1, a2 string
		want   int
	}{
		{"identical archetypes", "INFJ", "INFJ", 95},
		{"same category", "INFJ", "ENFP", 80},
		{"different categories", "INFJ", "ISTJ", 60},
		{"first missing", "", "INFJ", 50},
		{"second missing", "INFJ", "", 50},
		{"unknown code counts as cross category", "XXXX", "INFJ", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ArchetypeAlignment(tt.a1, tt.a2); got != tt.want {
				t.Errorf("ArchetypeAlignment(%q, %q) = %d, want %d", tt.a1, tt.a2, got, tt.want)
			}
		})
	}
}

func TestInterestOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"both empty is neutral", nil, nil, 50},
		{"one empty is neutral", []string{"musik"}, nil, 50},
		{"case insensitive full overlap", []string{"Musik", "Film"}, []string{"musik"}, 100},
		{"partial overlap relative to smaller set", []string{"a", "b"}, []string{"b", "c"}, 50},
		{"no overlap", []string{"a"}, []string{"b"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InterestOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("InterestOverlap() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComposite(t *testing.T) {
	s := NewScorer(DefaultArchetypeCategories())

	user := Profile{Candidate: Candidate{
		Archetype: "INFJ",
		Scores:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
		Interests: []string{"musik"},
	}}
	candidate := Candidate{
		Archetype: "INFJ",
		Scores:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
		Interests: []string{"Musik"},
	}

	got, breakdown := s.Composite(user, candidate)
	// 0.4*100 + 0.3*95 + 0.3*100 = 98.5
	if got != 99 {
		t.Errorf("Composite() = %d, want 99", got)
	}
	if breakdown.Personality != 100 || breakdown.Archetype != 95 || breakdown.Interests != 100 {
		t.Errorf("unexpected breakdown: %+v", breakdown)
	}
}

func TestCompositeRange(t *testing.T) {
	s := NewScorer(DefaultArchetypeCategories())
	extremes := []Scores{
		{},
		{EI: 100, SN: 100, TF: 100, JP: 100, AT: 100},
		{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
	}

	for _, a := range extremes {
		for _, b := range extremes {
			user := Profile{Candidate: Candidate{Scores: a}}
			got, _ := s.Composite(user, Candidate{Scores: b})
			if got < 0 || got > 100 {
				t.Errorf("Composite out of range for %v vs %v: %d", a, b, got)
			}
		}
	}
}

func TestEaseScore(t *testing.T) {
	tests := []struct {
		name string
		a, b Scores
		want int
	}{
		{"capped at 100", Scores{EI: 100, TF: 50}, Scores{EI: 100, TF: 50}, 100},
		{"average energy plus full bonus", Scores{EI: 50, TF: 50}, Scores{EI: 50, TF: 50}, 75},
		{"no bonus at maximal tf distance", Scores{EI: 50, TF: 0}, Scores{EI: 50, TF: 100}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EaseScore(tt.a, tt.b); got != tt.want {
				t.Errorf("EaseScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDimensionBreakdown(t *testing.T) {
	s := NewScorer(DefaultArchetypeCategories())

	user := Profile{Candidate: Candidate{
		Archetype: "INFJ",
		Scores:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
	}}
	candidate := Candidate{
		Archetype: "INFJ",
		Scores:    Scores{EI: 50, SN: 50, TF: 50, JP: 50, AT: 50},
	}

	got := s.DimensionBreakdown(user, candidate)
	if len(got) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(got))
	}

	byName := map[string]DimensionBreakdown{}
	for _, d := range got {
		byName[d.Dimension] = d
		if d.Description == "" {
			t.Errorf("missing description for %s", d.Dimension)
		}
	}

	if byName["personality"].Alignment != "high" {
		t.Errorf("personality alignment = %s, want high", byName["personality"].Alignment)
	}
	if byName["archetype"].Alignment != "high" {
		t.Errorf("archetype alignment = %s, want high", byName["archetype"].Alignment)
	}
	// Missing interests score a neutral 50 which bands as medium
	if byName["interests"].Alignment != "medium" {
		t.Errorf("interests alignment = %s, want medium", byName["interests"].Alignment)
	}
}

func TestMatchInsight(t *testing.T) {
	s := NewScorer(DefaultArchetypeCategories())

	similar := s.MatchInsight(CategoryDiplomat, CategoryDiplomat, "Kim", MatchTypeSimilar)
	if similar == "" {
		t.Fatal("expected non-empty similar insight")
	}
	if !strings.Contains(similar, "Kim") {
		t.Errorf("similar insight should mention the match name: %q", similar)
	}

	complementary := s.MatchInsight(CategoryDiplomat, CategoryStrateger, "Kim", MatchTypeComplementary)
	if complementary == "" {
		t.Fatal("expected non-empty complementary insight")
	}
	if similar == complementary {
		t.Error("similar and complementary insights should differ")
	}

	// Unknown categories still produce a generic insight
	fallback := s.MatchInsight("", "", "Kim", MatchTypeComplementary)
	if fallback == "" {
		t.Error("expected fallback insight for unknown categories")
	}
}

func TestCompatibilityFactors(t *testing.T) {
	s := NewScorer(DefaultArchetypeCategories())

	same := s.CompatibilityFactors(CategoryDiplomat, CategoryDiplomat, MatchTypeSimilar)
	if len(same) < 3 {
		t.Errorf("expected at least 3 factors for same-category similar match, got %d", len(same))
	}
	if same[0] != "Delar samma personlighetstyp" {
		t.Errorf("unexpected first factor: %q", same[0])
	}

	opp := s.CompatibilityFactors(CategoryDiplomat, CategoryStrateger, MatchTypeComplementary)
	if len(opp) < 3 {
		t.Errorf("expected at least 3 factors for complementary match, got %d", len(opp))
	}
}
